package errors

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"
)

func TestContactsError_Error(t *testing.T) {
	err := &ContactsError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "contact not found",
	}

	expected := "NOT_FOUND: contact not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidFormat(t *testing.T) {
	err := NewInvalidFormat("missing BEGIN:VCARD")

	if err.Code != ErrInvalidFormat {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidFormat)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "missing BEGIN:VCARD" {
		t.Errorf("Message = %q, want %q", err.Message, "missing BEGIN:VCARD")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01HXYZ")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01HXYZ" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01HXYZ")
	}
}

func TestNewOutOfMemory(t *testing.T) {
	err := NewOutOfMemory(1024)

	if err.Code != ErrOutOfMemory {
		t.Errorf("Code = %q, want %q", err.Code, ErrOutOfMemory)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["limit_bytes"] != 1024 {
		t.Errorf("Details[limit_bytes] = %v, want 1024", err.Details["limit_bytes"])
	}
}

func TestNewIO(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"plain", fs.ErrPermission, ErrSystemIO, 500},
		{"nil", nil, ErrSystemIO, 500},
		{"no space", syscall.ENOSPC, ErrNoSpace, 507},
		{"wrapped no space", &os.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC}, ErrNoSpace, 507},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewIO(tt.err)
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Status != tt.status {
				t.Errorf("Status = %d, want %d", err.Status, tt.status)
			}
		})
	}
}

func TestNewSystemTransform(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := NewSystemTransform(cause)

	if err.Code != ErrSystemTransform {
		t.Errorf("Code = %q, want %q", err.Code, ErrSystemTransform)
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("x")

	if !Is(err, ErrNotFound) {
		t.Error("Is(err, ErrNotFound) = false, want true")
	}
	if Is(err, ErrInvalidFormat) {
		t.Error("Is(err, ErrInvalidFormat) = true, want false")
	}
	if !Is(fmt.Errorf("wrap: %w", err), ErrNotFound) {
		t.Error("Is(wrapped, ErrNotFound) = false, want true")
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("Is(plain error, ErrNotFound) = true, want false")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is(nil, ErrNotFound) = true, want false")
	}
}
