package extract

import (
	"github.com/arthur-debert/kibank/pkg/bank"
	"github.com/arthur-debert/kibank/pkg/extract"
	"github.com/arthur-debert/kibank/pkg/logging"
)

// ExtractOptions defines the options for the Extract command.
type ExtractOptions struct {
	// BankPath is the bank file to extract.
	BankPath string

	// DestDir is the destination directory. Defaults to the current
	// directory when empty.
	DestDir string
}

// Extract writes the members of a bank under the destination
// directory. Existing files are overwritten; extraction continues
// past per-entry failures and reports them in the result.
func Extract(opts ExtractOptions) (*extract.Result, error) {
	log := logging.GetLogger("commands.extract")

	dest := opts.DestDir
	if dest == "" {
		dest = "."
	}
	log.Info().Str("bank", opts.BankPath).Str("dest", dest).Msg("Extracting bank")

	reader, err := bank.Open(opts.BankPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	return extract.Extract(reader, dest)
}
