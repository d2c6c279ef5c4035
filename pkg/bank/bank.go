package bank

import (
	"path"
	"strings"
)

// Entry is one stored member of a bank: a slash-separated relative
// path plus the byte range of its payload within the container. An
// entry with Size zero is a directory.
type Entry struct {
	// Path of the member inside the bank, '/'-separated regardless of
	// platform. Member names are compared case-sensitively and must
	// be unique within a bank.
	Path string

	Kind Kind

	// Offset of the payload from the start of the bank file. Zero for
	// directories.
	Offset uint64

	// Size of the payload in bytes. Zero for directories.
	Size uint64
}

// IsDir reports whether the entry is a directory. It is a limitation
// of the format that a zero-length file cannot be told apart from a
// directory.
func (e Entry) IsDir() bool {
	return e.Size == 0
}

// IsFile reports whether the entry carries payload bytes.
func (e Entry) IsFile() bool {
	return e.Size != 0
}

// IsBackground reports whether the entry is the bank's background
// image: a file whose base name stem is "background".
func (e Entry) IsBackground() bool {
	if !e.IsFile() {
		return false
	}
	base := path.Base(e.Path)
	stem := base
	if i := strings.LastIndex(base, "."); i > 0 {
		stem = base[:i]
	}
	return strings.EqualFold(stem, BackgroundFileStem)
}

// IsMetadata reports whether the entry is the bank's metadata file.
func (e Entry) IsMetadata() bool {
	return e.IsFile() && strings.EqualFold(e.Path, MetadataFileName)
}

// Bank is the parsed directory of a bank file: the ordered member
// list plus the indexes of the special members. A Bank produced by
// the reader is a read-only view; editing a bank means reading it and
// writing a new one.
type Bank struct {
	// Entries in the order they are stored in the bank file.
	Entries []Entry

	// backgroundIndex is the index into Entries of the background
	// image, or -1.
	backgroundIndex int

	// metadataIndex is the index into Entries of the metadata member,
	// or -1.
	metadataIndex int
}

// Background returns the bank's background image entry, if any.
func (b *Bank) Background() (Entry, bool) {
	if b.backgroundIndex < 0 {
		return Entry{}, false
	}
	return b.Entries[b.backgroundIndex], true
}

// MetadataEntry returns the bank's metadata member, if any.
func (b *Bank) MetadataEntry() (Entry, bool) {
	if b.metadataIndex < 0 {
		return Entry{}, false
	}
	return b.Entries[b.metadataIndex], true
}

// Lookup finds an entry by its bank path.
func (b *Bank) Lookup(p string) (Entry, bool) {
	for _, e := range b.Entries {
		if e.Path == p {
			return e, true
		}
	}
	return Entry{}, false
}
