package errors

import (
	stderrors "errors"
	"fmt"
	"syscall"
)

// ErrorCode represents a contacts service error code.
type ErrorCode string

const (
	ErrInvalidFormat    ErrorCode = "INVALID_FORMAT"    // 400
	ErrInvalidParameter ErrorCode = "INVALID_PARAMETER" // 400
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrFileNotFound     ErrorCode = "FILE_NOT_FOUND"    // 404
	ErrOutOfMemory      ErrorCode = "OUT_OF_MEMORY"     // 413
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrSystemIO         ErrorCode = "SYSTEM_IO"         // 500
	ErrNoSpace          ErrorCode = "NO_SPACE"          // 507
	ErrSystemTransform  ErrorCode = "SYSTEM_TRANSFORM"  // 502
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// ContactsError represents a structured error with code, status, and details.
type ContactsError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *ContactsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ContactsError) Unwrap() error {
	return e.cause
}

// NewInvalidFormat creates a 400 error for input that is not a well-formed vCard stream.
func NewInvalidFormat(msg string) *ContactsError {
	return &ContactsError{
		Code:    ErrInvalidFormat,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidParameter creates a 400 error for a nil or out-of-range argument.
func NewInvalidParameter(msg string) *ContactsError {
	return &ContactsError{
		Code:    ErrInvalidParameter,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ContactsError {
	return &ContactsError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a contact cannot be found.
func NewNotFound(identifier string) *ContactsError {
	return &ContactsError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("contact not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *ContactsError {
	return &ContactsError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewOutOfMemory creates a 413 error when a single object exceeds the buffer limit.
func NewOutOfMemory(limit int) *ContactsError {
	return &ContactsError{
		Code:    ErrOutOfMemory,
		Status:  413,
		Message: fmt.Sprintf("vcard object exceeds buffer limit of %d bytes", limit),
		Details: map[string]any{"limit_bytes": limit},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled by its caller.
func NewCancelled(op string) *ContactsError {
	return &ContactsError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewIO wraps a file system failure. A full disk is reported as NO_SPACE.
func NewIO(err error) *ContactsError {
	msg := "i/o error"
	if err != nil {
		msg = err.Error()
	}
	if stderrors.Is(err, syscall.ENOSPC) {
		return &ContactsError{
			Code:    ErrNoSpace,
			Status:  507,
			Message: msg,
			cause:   err,
		}
	}
	return &ContactsError{
		Code:    ErrSystemIO,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// NewSystemTransform creates a 502 error for a failed or timed-out photo transform.
func NewSystemTransform(err error) *ContactsError {
	msg := "photo transform failed"
	if err != nil {
		msg = fmt.Sprintf("photo transform failed: %v", err)
	}
	return &ContactsError{
		Code:    ErrSystemTransform,
		Status:  502,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ContactsError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ContactsError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a ContactsError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *ContactsError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}
