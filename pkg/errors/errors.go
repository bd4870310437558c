// Package errors provides the coded errors shared by every dendro package.
//
// An [Error] pairs a machine-readable [Code] with a message and an optional
// cause. The CLI prints the message, the HTTP API maps the code to a status
// (see api.StatusCode) and callers branch on the code with [Is]:
//
//	m, err := matrix.New(labels, rows)
//	if errors.Is(err, errors.ErrCodeInvalidMatrix) {
//	    // NaN, infinite or negative distance
//	}
//
// Codes fall into classes: INVALID_* and PARSE_ERROR mean the input can never
// succeed as given ([IsInvalid]), *_NOT_FOUND name a missing file, node or
// widget ([IsNotFound]), NETWORK_ERROR and TIMEOUT come from remote sources.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Input
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidMatrix      Code = "INVALID_MATRIX"
	ErrCodeInvalidLinkage     Code = "INVALID_LINKAGE"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidOrientation Code = "INVALID_ORIENTATION"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeParse              Code = "PARSE_ERROR"

	// Lookup
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeWidgetNotFound Code = "WIDGET_NOT_FOUND"

	// Remote sources
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var (
	invalidCodes = map[Code]bool{
		ErrCodeInvalidInput:       true,
		ErrCodeInvalidMatrix:      true,
		ErrCodeInvalidLinkage:     true,
		ErrCodeInvalidFormat:      true,
		ErrCodeInvalidOrientation: true,
		ErrCodeInvalidConfig:      true,
		ErrCodeInvalidPath:        true,
		ErrCodeParse:              true,
	}
	notFoundCodes = map[Code]bool{
		ErrCodeNotFound:       true,
		ErrCodeFileNotFound:   true,
		ErrCodeWidgetNotFound: true,
	}
)

// Error is a coded error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// IsInvalid reports whether err is an input error: retrying with the same
// input fails the same way.
func IsInvalid(err error) bool { return invalidCodes[GetCode(err)] }

// IsNotFound reports whether err names something missing.
func IsNotFound(err error) bool { return notFoundCodes[GetCode(err)] }

// UserMessage returns the message of a coded error without its code, or the
// plain error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
