// Package apperror defines the typed errors services hand back to the
// transport layer.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Operation codes carried in the error envelope.
const (
	CodeFindAllFailed    = "FIND_ALL_FAILED"
	CodeFindOneFailed    = "FIND_ONE_FAILED"
	CodeCreateFailed     = "CREATE_FAILED"
	CodeUpdateFailed     = "UPDATE_FAILED"
	CodeDeleteFailed     = "DELETE_FAILED"
	CodeSearchFailed     = "SEARCH_FAILED"
	CodeUploadFailed     = "UPLOAD_FAILED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCode returns a copy of e reporting code.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Message: message, Details: details}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message, Details: message}
}

func Conflict(code, message, details string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message, Details: details}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: message, Details: message}
}

// Internal wraps an unexpected failure. The message is safe to show a client;
// err is only logged.
func Internal(code, message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: code, Message: message, Err: err}
}

// As extracts an *Error from err. Anything else is reported as an internal
// failure that keeps err as its cause.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "An unexpected error occurred", Err: err}
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
