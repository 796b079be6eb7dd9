//go:build windows

package ops

import (
	"fmt"
	"os"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

// openVCard opens a validated vCard file for reading. Windows has no
// O_NOFOLLOW; ValidatePath rejects symlinks beforehand.
func openVCard(path string) (*os.File, error) {
	f, err := os.Open(path)
	switch {
	case err == nil:
		return f, nil
	case os.IsNotExist(err):
		return nil, errors.NewFileNotFound(path)
	}
	return nil, errors.NewIO(err)
}

// createExportTemp creates a fresh export temp file.
func createExportTemp(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	switch {
	case err == nil:
		return f, nil
	case os.IsExist(err):
		return nil, errors.NewInvalidRequest("export temp file already exists")
	}
	return nil, errors.NewIO(fmt.Errorf("failed to create export file: %w", err))
}
