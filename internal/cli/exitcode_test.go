package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/kibank/pkg/errors"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"bad magic", errors.New(errors.ErrBadMagic, "x"), ExitRead},
		{"corrupt header", errors.New(errors.ErrCorruptHeader, "x"), ExitRead},
		{"unsupported version", errors.New(errors.ErrUnsupportedVersion, "x"), ExitRead},
		{"truncated directory", errors.New(errors.ErrTruncatedDirectory, "x"), ExitRead},
		{"corrupt entry", errors.New(errors.ErrCorruptEntry, "x"), ExitRead},
		{"bad metadata reference", errors.New(errors.ErrBadMetadataReference, "x"), ExitRead},
		{"malformed index", errors.New(errors.ErrMalformedIndex, "x"), ExitRead},
		{"empty bank", errors.New(errors.ErrEmptyBank, "x"), ExitWrite},
		{"duplicate path", errors.New(errors.ErrDuplicatePath, "x"), ExitWrite},
		{"bank sealed", errors.New(errors.ErrBankSealed, "x"), ExitWrite},
		{"path escape", errors.New(errors.ErrPathEscape, "x"), ExitExtract},
		{"extract incomplete", errors.New(errors.ErrExtractIncomplete, "x"), ExitExtract},
		{"config load", errors.New(errors.ErrConfigLoad, "x"), ExitConfig},
		{"config parse", errors.New(errors.ErrConfigParse, "x"), ExitConfig},
		{"file not found", errors.New(errors.ErrFileNotFound, "x"), ExitGeneral},
		{"plain error", stderrors.New("x"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestExitCodeUsesWrappedCode(t *testing.T) {
	err := errors.Wrap(errors.New(errors.ErrBadMagic, "inner"), errors.ErrFileAccess, "outer")
	// The outermost coded error decides the mapping.
	assert.Equal(t, ExitGeneral, ExitCodeFor(err))
}

func TestRootCommandHasAllSubcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "version")
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "info")
	assert.Contains(t, names, "extract")
	assert.Contains(t, names, "create")
}
