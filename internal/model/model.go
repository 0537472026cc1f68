// Package model contains the domain types shared by every layer: object
// metadata, the JSON view handed to external collaborators and the error
// taxonomy. No I/O happens here.
package model

// Conventional metadata keys written and read by the builder and the bucket layers.
const (
	KeyContentType        = "Content-Type"
	KeyContentLength      = "Content-Length"
	KeyContentDisposition = "Content-Disposition"
	KeyFileType           = "File-Type"
	KeyIdentifier         = "identifier"
	KeyOriginalName       = "Original-Name"
)

var conventionalKeys = []string{
	KeyContentType,
	KeyContentLength,
	KeyContentDisposition,
	KeyFileType,
	KeyIdentifier,
	KeyOriginalName,
}

// ObjectJSON is the representation of a stored object exposed to external
// collaborators such as an HTTP layer.
type ObjectJSON struct {
	FileLink *string   `json:"FileLink"`
	Metadata *Metadata `json:"Metadata"`
}
