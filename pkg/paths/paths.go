// Package paths provides path validation shared by the bank writer
// and the extractor. Member paths come from untrusted bank files, so
// resolving them against a destination root is a required gate, not an
// incidental check.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/kibank/pkg/errors"
)

// ValidateEntryPath checks that a bank member path is safe to store
// and to resolve against a destination root: relative, '/'-separated,
// free of parent traversal segments and control characters.
func ValidateEntryPath(p string) error {
	if p == "" {
		return errors.New(errors.ErrInvalidInput, "entry path cannot be empty")
	}
	if strings.ContainsRune(p, '\x00') {
		return errors.Newf(errors.ErrInvalidInput, "entry path %q contains a null byte", p)
	}
	if len(p) > 4096 {
		return errors.New(errors.ErrInvalidInput, "entry path exceeds maximum length")
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return errors.Newf(errors.ErrPathEscape, "entry path %q is absolute", p)
	}
	// Windows drive or UNC style prefixes are absolute paths too.
	if len(p) > 1 && p[1] == ':' {
		return errors.Newf(errors.ErrPathEscape, "entry path %q is absolute", p)
	}
	for _, segment := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return errors.Newf(errors.ErrPathEscape, "entry path %q contains a parent traversal segment", p)
		}
	}
	return nil
}

// SafeJoin resolves a bank member path against a destination root and
// guarantees the result stays inside the root. The member path uses
// the bank's '/' separator regardless of platform.
func SafeJoin(root, p string) (string, error) {
	if err := ValidateEntryPath(p); err != nil {
		return "", err
	}
	joined := filepath.Join(root, filepath.FromSlash(p))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve destination root %q", root)
	}
	absJoined, err := filepath.Abs(joined)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve path %q", joined)
	}
	if absJoined != absRoot && !strings.HasPrefix(absJoined, absRoot+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrPathEscape, "entry path %q escapes the destination root", p)
	}
	return joined, nil
}
