package cli

import (
	"encoding/json"
	"errors"
	"io"

	"s3simplified/internal/model"
)

// errorPayload is the JSON body written for a failed command.
type errorPayload struct {
	Error errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode maps an error onto a short machine-readable code.
func ErrorCode(err error) string {
	var me *model.Error
	if !errors.As(err, &me) {
		return "INTERNAL_ERROR"
	}
	switch me.Kind {
	case model.KindInvalidName:
		return "INVALID_NAME"
	case model.KindMissingBucket, model.KindMissingObject:
		return "NOT_FOUND"
	case model.KindExistingObject:
		return "CONFLICT"
	case model.KindUnsupportedPayload, model.KindUnknownContentType, model.KindMissingSize:
		return "BAD_REQUEST"
	default:
		return "TRANSPORT_ERROR"
	}
}

// WriteError writes err as a JSON error envelope.
func WriteError(w io.Writer, err error) {
	_ = json.NewEncoder(w).Encode(errorPayload{
		Error: errorEnvelope{Code: ErrorCode(err), Message: err.Error()},
	})
}
