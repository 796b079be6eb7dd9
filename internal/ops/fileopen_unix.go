//go:build !windows

package ops

import (
	stderrors "errors"
	"fmt"
	"os"
	"syscall"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

const noFollow = syscall.O_NOFOLLOW | syscall.O_CLOEXEC

// openVCard opens a validated vCard file for reading. The final component must
// not be a symlink; ValidatePath already pinned the directory.
func openVCard(path string) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY|noFollow, 0)
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, syscall.ELOOP):
		return nil, errors.NewInvalidRequest("cannot read from symlink")
	case stderrors.Is(err, syscall.ENOENT):
		return nil, errors.NewFileNotFound(path)
	}
	return nil, errors.NewIO(err)
}

// createExportTemp creates a fresh export temp file. It fails if anything,
// symlink included, already sits at path.
func createExportTemp(path string) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_WRONLY|syscall.O_CREAT|syscall.O_EXCL|noFollow, 0600)
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, syscall.ELOOP), stderrors.Is(err, syscall.EEXIST):
		return nil, errors.NewInvalidRequest("export temp file already exists")
	}
	return nil, errors.NewIO(fmt.Errorf("failed to create export file: %w", err))
}
