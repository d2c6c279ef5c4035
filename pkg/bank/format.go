// Package bank implements the Kilohearts bank container format: the
// directory model, the classifier that decides which files belong in
// a bank, and the reader and writer for the on-disk layout.
//
// The byte layout is an external contract fixed by the Kilohearts
// products that consume these files. All integers are 64-bit
// little-endian. A bank starts with a file id, a corruption check
// sequence and a format version, followed by the location table, the
// file name block and the payload section.
package bank

// fileID identifies the kind of the file.
var fileID = []byte{137, 'k', 'H', 's'}

// formatVersion appears in every bank so it seems logical it
// identifies something about the format.
var formatVersion = []byte("Bank0001")

// corruptionCheck is written as part of the header to detect incorrect
// end of line format conversion. The same sequence of bytes is used by
// the PNG format.
var corruptionCheck = []byte{0x0d, 0x0a, 0x1a, 0x0a}

const (
	// BackgroundFileStem is the first part of the background image
	// file name, without the trailing dot.
	BackgroundFileStem = "background"

	// MetadataFileName is the name of the file, inside and outside of
	// the bank, that contains the metadata.
	MetadataFileName = "index.json"

	// PathSeparator separates directories in bank member paths,
	// regardless of the separator used by the operating system.
	PathSeparator = "/"
)

// headerSize is the number of bytes before the location table: file
// id, corruption check, format version and the location count.
const headerSize = 4 + 4 + 8 + 8

// locationSize is the on-disk size of one location record: file name
// offset, data offset and data size.
const locationSize = 8 * 3

// location is one record of the bank's directory table.
type location struct {
	// nameOffset is relative to the start of the file name block.
	nameOffset uint64

	// dataOffset is absolute, from the start of the bank file.
	dataOffset uint64

	dataSize uint64
}

func (l location) dataEnd() uint64 {
	return l.dataOffset + l.dataSize
}
