package cli

import (
	"fmt"
	"os"

	"github.com/arthur-debert/kibank/pkg/errors"
)

// Exit codes, stable across invocations for scripting.
const (
	ExitOK      = 0
	ExitGeneral = 1
	ExitRead    = 2
	ExitWrite   = 3
	ExitExtract = 4
	ExitConfig  = 5
)

// ExitCodeFor maps an error to the tool's exit code by its error code
// family.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errors.GetErrorCode(err) {
	case errors.ErrBadMagic,
		errors.ErrCorruptHeader,
		errors.ErrUnsupportedVersion,
		errors.ErrTruncatedDirectory,
		errors.ErrCorruptEntry,
		errors.ErrBadMetadataReference,
		errors.ErrMalformedIndex:
		return ExitRead
	case errors.ErrEmptyBank,
		errors.ErrDuplicatePath,
		errors.ErrBankSealed:
		return ExitWrite
	case errors.ErrPathEscape,
		errors.ErrExtractIncomplete:
		return ExitExtract
	case errors.ErrConfigLoad,
		errors.ErrConfigParse:
		return ExitConfig
	default:
		return ExitGeneral
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCodeFor(err)
	}
	return ExitOK
}
