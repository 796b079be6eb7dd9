package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

// PathCheckMode says whether a vCard file is about to be read or written.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import, count
	PathCheckWrite                      // export
)

// vcardExtensions are matched case-insensitively.
var vcardExtensions = []string{".vcf", ".vcard"}

// ValidatePath decides whether a vCard file may be read or written.
//
// The path must name a file (no trailing separator, no ".." component) with a
// .vcf or .vcard extension. Unless cfg.AllowUnsafePaths is set, the file must
// sit directly inside ~/.contacts/exports or one of cfg.AllowedPaths. The file
// itself is never allowed to be a symlink, whatever the config says, since
// every open uses O_NOFOLLOW.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if endsWithSeparator(path) {
		return errors.NewInvalidRequest("path must name a file, not a directory")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	if !hasVCardExtension(path) {
		return errors.NewInvalidRequest("path must have .vcf or .vcard extension")
	}

	target, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		if err := checkContainment(target, cfg); err != nil {
			return err
		}
	}

	info, err := os.Lstat(target)
	switch {
	case os.IsNotExist(err):
		if mode == PathCheckRead {
			return errors.NewFileNotFound(path)
		}
		return nil
	case err != nil:
		return errors.NewIO(err)
	case info.Mode()&os.ModeSymlink != 0:
		return errors.NewInvalidRequest("path must not be a symlink")
	case info.IsDir():
		return errors.NewInvalidRequest("path must name a file, not a directory")
	}
	return nil
}

// checkContainment requires target's directory to be exactly one of the
// permitted roots and not itself a symlink. Nested directories are refused so
// no intermediate component can be swapped between the check and the open.
func checkContainment(target string, cfg *config.Config) error {
	roots, err := permittedRoots(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	found := false
	for _, root := range roots {
		if dir == root {
			found = true
			break
		}
	}
	if !found {
		return errors.NewInvalidRequest(
			fmt.Sprintf("vCard files must be directly inside one of %v", roots))
	}

	if info, err := os.Lstat(dir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	return nil
}

// permittedRoots lists the exports dir plus every absolute allowed_paths entry.
// A root that is a symlink is replaced by its target.
func permittedRoots(cfg *config.Config) ([]string, error) {
	exports, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}

	candidates := []string{exports}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}

	roots := make([]string, 0, len(candidates))
	for _, c := range candidates {
		root, err := filepath.Abs(filepath.Clean(c))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(root); err == nil && info.Mode()&os.ModeSymlink != 0 {
			if root, err = filepath.EvalSymlinks(root); err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// DefaultExportsDir returns ~/.contacts/exports.
func DefaultExportsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(home, BaseDirName, "exports"), nil
}

func hasVCardExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range vcardExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func endsWithSeparator(path string) bool {
	return strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator))
}

// containsTraversal reports whether any component of path is "..". Forward
// slashes count as separators on every platform.
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	for _, part := range parts {
		if part == ".." {
			return true
		}
	}
	return false
}

// ExportFileStem turns a display name into a file name stem. Separators and
// ".." become dashes, control characters are dropped, dash runs collapse. An
// empty result falls back to "contact".
func ExportFileStem(name string) string {
	name = strings.ReplaceAll(name, "..", "-")
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)

	var b strings.Builder
	for _, r := range mapped {
		if r == '-' && strings.HasSuffix(b.String(), "-") {
			continue
		}
		b.WriteRune(r)
	}

	if stem := strings.Trim(b.String(), "-"); stem != "" {
		return stem
	}
	return "contact"
}
