package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeDeckNotFound       = "DECK001"
	ErrCodeValidation         = "DECK002"
	ErrCodeDecoding           = "DECK003"
	ErrCodeURLTooLong         = "DECK004"
	ErrCodeBlobNotFound       = "DECK005"
	ErrCodeUnsupportedVersion = "DECK006"
)

// Errors
var (
	ErrDeckNotFound = errors.New("deck not found")
	ErrNotShareURL  = errors.New("url carries no share payload")
)

// ValidationError reports structurally invalid input: wrong shape, missing
// required field, unknown key, unsupported format version. Path identifies
// the offending location, e.g. "cards[2].stats[0].value".
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func NewValidationError(path, message string) *ValidationError {
	return &ValidationError{Path: path, Message: message}
}

// DecodingError reports malformed base64 or JSON in a share URL or export
// file. It is distinct from "the URL carries no share payload at all",
// which is not an error (ExtractShareData returns nil for that).
type DecodingError struct {
	Message string
	Err     error
}

func (e *DecodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

func NewDecodingError(message string, err error) *DecodingError {
	return &DecodingError{Message: message, Err: err}
}
