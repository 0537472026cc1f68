package object

import (
	"mime"
	"strings"
)

// extensions maps a MIME type to the file extension stored in File-Type.
// Types missing here are rejected instead of guessed.
var extensions = map[string]string{
	"image/png":                "png",
	"image/jpeg":               "jpg",
	"image/jpg":                "jpg",
	"image/gif":                "gif",
	"image/webp":               "webp",
	"image/svg+xml":            "svg",
	"image/bmp":                "bmp",
	"image/tiff":               "tiff",
	"image/x-icon":             "ico",
	"image/avif":               "avif",
	"image/heic":               "heic",
	"video/mp4":                "mp4",
	"video/webm":               "webm",
	"video/quicktime":          "mov",
	"video/x-msvideo":          "avi",
	"audio/mpeg":               "mp3",
	"audio/wav":                "wav",
	"audio/ogg":                "ogg",
	"audio/aac":                "aac",
	"text/plain":               "txt",
	"text/html":                "html",
	"text/css":                 "css",
	"text/csv":                 "csv",
	"text/markdown":            "md",
	"text/javascript":          "js",
	"application/json":         "json",
	"application/xml":          "xml",
	"application/pdf":          "pdf",
	"application/zip":          "zip",
	"application/gzip":         "gz",
	"application/x-tar":        "tar",
	"application/octet-stream": "bin",
	"application/msword":       "doc",
	"application/vnd.ms-excel": "xls",
}

// ExtensionFor returns the extension registered for contentType. Parameters
// such as "; charset=utf-8" are ignored and matching is case-insensitive.
func ExtensionFor(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	ext, ok := extensions[mediaType]
	return ext, ok
}
