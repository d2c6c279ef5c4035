package list

import (
	"github.com/arthur-debert/kibank/pkg/bank"
	"github.com/arthur-debert/kibank/pkg/logging"
)

// ListOptions defines the options for the List command.
type ListOptions struct {
	// BankPath is the bank file to list.
	BankPath string
}

// EntryInfo is one line of list output.
type EntryInfo struct {
	// Path of the member; directories carry a trailing '/', matching
	// what is found in the banks rather than the OS separator.
	Path string

	Kind string

	IsDir bool
}

// ListResult holds the members of a bank in stored order.
type ListResult struct {
	Entries []EntryInfo
}

// List returns each entry of the bank in the order it is stored.
func List(opts ListOptions) (*ListResult, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Str("bank", opts.BankPath).Msg("Listing bank")

	reader, err := bank.Open(opts.BankPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	result := &ListResult{Entries: make([]EntryInfo, 0, len(reader.Entries()))}
	for _, e := range reader.Entries() {
		info := EntryInfo{Path: e.Path, Kind: e.Kind.String(), IsDir: e.IsDir()}
		if info.IsDir {
			info.Path += bank.PathSeparator
		}
		result.Entries = append(result.Entries, info)
	}

	log.Info().Str("bank", opts.BankPath).Int("entries", len(result.Entries)).Msg("Listed bank")
	return result, nil
}
