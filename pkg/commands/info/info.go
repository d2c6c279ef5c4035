package info

import (
	"github.com/arthur-debert/kibank/pkg/bank"
	"github.com/arthur-debert/kibank/pkg/logging"
)

// InfoOptions defines the options for the Info command.
type InfoOptions struct {
	// BankPath is the bank file to inspect.
	BankPath string
}

// InfoResult carries the bank's resolved metadata plus the background
// image member, if the bank has one.
type InfoResult struct {
	Metadata bank.Metadata

	// BackgroundPath is the bank path of the background image, or "".
	BackgroundPath string

	EntryCount int
}

// Info reads a bank's metadata. A bank without a metadata member
// yields zero metadata rather than an error.
func Info(opts InfoOptions) (*InfoResult, error) {
	log := logging.GetLogger("commands.info")
	log.Debug().Str("bank", opts.BankPath).Msg("Reading bank info")

	reader, err := bank.Open(opts.BankPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	meta, err := reader.Metadata()
	if err != nil {
		return nil, err
	}

	result := &InfoResult{Metadata: meta, EntryCount: len(reader.Entries())}
	if bg, ok := reader.Bank().Background(); ok {
		result.BackgroundPath = bg.Path
	}
	return result, nil
}
