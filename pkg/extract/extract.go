// Package extract writes the members of a parsed bank to a
// destination directory tree.
//
// Policy: extraction continues past per-entry failures and reports
// them all at the end; existing files are overwritten and directories
// are created idempotently. An entry whose path would resolve outside
// the destination root fails with PATH_ESCAPE and nothing is written
// for it.
package extract

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/kibank/pkg/bank"
	"github.com/arthur-debert/kibank/pkg/errors"
	"github.com/arthur-debert/kibank/pkg/logging"
	"github.com/arthur-debert/kibank/pkg/paths"
)

// EntryError records one member that could not be extracted.
type EntryError struct {
	Path string
	Err  error
}

// Result reports what an extraction did.
type Result struct {
	// Written lists the filesystem paths created, in extraction order.
	Written []string

	// Failed lists the members that could not be extracted.
	Failed []EntryError
}

// Extract writes every member of the bank under destRoot. The
// returned error is non-nil only when at least one entry failed; the
// Result lists both the written paths and the per-entry failures.
func Extract(r *bank.Reader, destRoot string) (*Result, error) {
	log := logging.GetLogger("extract")
	result := &Result{}

	for _, entry := range r.Entries() {
		written, err := extractEntry(r, entry, destRoot)
		if err != nil {
			log.Warn().Str("path", entry.Path).Err(err).Msg("Cannot extract entry")
			result.Failed = append(result.Failed, EntryError{Path: entry.Path, Err: err})
			continue
		}
		if written != "" {
			log.Info().Str("path", entry.Path).Str("dest", written).Msg("Extracted")
			result.Written = append(result.Written, written)
		}
	}

	if len(result.Failed) > 0 {
		return result, errors.Newf(errors.ErrExtractIncomplete,
			"%d of %d entries could not be extracted", len(result.Failed), len(r.Entries()))
	}
	return result, nil
}

// extractEntry writes one member and returns the filesystem path it
// created, or "" for directory entries.
func extractEntry(r *bank.Reader, entry bank.Entry, destRoot string) (string, error) {
	destPath, err := paths.SafeJoin(destRoot, entry.Path)
	if err != nil {
		return "", err
	}

	if entry.IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", destPath)
		}
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent directory for %s", destPath)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileCreate, "cannot create %s", destPath)
	}
	if err := r.WriteContents(entry, f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", destPath)
	}
	return destPath, nil
}
