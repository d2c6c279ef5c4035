package bank

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/kibank/pkg/errors"
	"github.com/arthur-debert/kibank/pkg/logging"
)

// Reader gives random access to the members of a bank file. The whole
// container is never materialized in memory: only the directory table
// and name block are parsed up front, payloads are read on demand so
// peak memory is proportional to the largest single entry.
type Reader struct {
	src    io.ReaderAt
	size   int64
	bank   *Bank
	closer io.Closer
}

// NewReader parses the bank structure from src. It fails fast on
// files that are not banks (BAD_MAGIC) and validates the directory
// table before returning.
func NewReader(src io.ReaderAt, size int64) (*Reader, error) {
	log := logging.GetLogger("bank.reader")

	magic := make([]byte, len(fileID))
	if _, err := src.ReadAt(magic, 0); err != nil {
		return nil, errors.Wrap(err, errors.ErrBadMagic, "not a Kilohearts bank")
	}
	if !bytes.Equal(magic, fileID) {
		return nil, errors.New(errors.ErrBadMagic, "not a Kilohearts bank")
	}

	header := make([]byte, headerSize)
	if _, err := src.ReadAt(header, 0); err != nil {
		return nil, errors.Wrap(err, errors.ErrTruncatedDirectory, "bank header cut short")
	}
	if !bytes.Equal(header[4:8], corruptionCheck) {
		return nil, errors.Newf(errors.ErrCorruptHeader,
			"unexpected check bytes % x, the file may have been mangled by an end-of-line conversion", header[4:8])
	}
	if !bytes.Equal(header[8:16], formatVersion) {
		return nil, errors.Newf(errors.ErrUnsupportedVersion,
			"unexpected format version %q", string(header[8:16]))
	}

	count := binary.LittleEndian.Uint64(header[16:24])
	log.Trace().Uint64("locations", count).Msg("Parsed header")
	if count > uint64(size-headerSize)/locationSize {
		return nil, errors.Newf(errors.ErrTruncatedDirectory,
			"location count %d does not fit in a %d byte file", count, size)
	}

	locBuf := make([]byte, int(count)*locationSize)
	if _, err := src.ReadAt(locBuf, headerSize); err != nil {
		return nil, errors.Wrap(err, errors.ErrTruncatedDirectory, "cannot read location table")
	}
	locations := make([]location, count)
	for i := range locations {
		rec := locBuf[i*locationSize:]
		locations[i] = location{
			nameOffset: binary.LittleEndian.Uint64(rec[0:8]),
			dataOffset: binary.LittleEndian.Uint64(rec[8:16]),
			dataSize:   binary.LittleEndian.Uint64(rec[16:24]),
		}
	}

	nameLenOff := int64(headerSize) + int64(count)*locationSize
	lenBuf := make([]byte, 8)
	if _, err := src.ReadAt(lenBuf, nameLenOff); err != nil {
		return nil, errors.Wrap(err, errors.ErrTruncatedDirectory, "cannot read file name block length")
	}
	nameLen := binary.LittleEndian.Uint64(lenBuf)
	nameStart := nameLenOff + 8
	if nameLen > uint64(size-nameStart) {
		return nil, errors.Newf(errors.ErrTruncatedDirectory,
			"file name block of %d bytes extends past end of file", nameLen)
	}
	nameBlock := make([]byte, nameLen)
	if _, err := src.ReadAt(nameBlock, nameStart); err != nil {
		return nil, errors.Wrap(err, errors.ErrTruncatedDirectory, "cannot read file name block")
	}
	dataStart := uint64(nameStart) + nameLen

	b := &Bank{
		Entries:         make([]Entry, 0, count),
		backgroundIndex: -1,
		metadataIndex:   -1,
	}
	seen := make(map[string]struct{}, count)
	for _, loc := range locations {
		if loc.nameOffset >= nameLen {
			return nil, errors.Newf(errors.ErrTruncatedDirectory,
				"file name offset %d is outside the %d byte name block", loc.nameOffset, nameLen)
		}
		name := nameBlock[loc.nameOffset:]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		if len(name) == 0 {
			return nil, errors.New(errors.ErrCorruptEntry, "zero length file name")
		}
		entryPath := string(name)
		if _, dup := seen[entryPath]; dup {
			return nil, errors.Newf(errors.ErrCorruptEntry, "duplicate path %q", entryPath)
		}
		seen[entryPath] = struct{}{}

		entry := Entry{
			Path:   entryPath,
			Offset: loc.dataOffset,
			Size:   loc.dataSize,
		}
		if entry.IsDir() {
			entry.Kind = KindForFolder(entryPath)
		} else {
			entry.Kind = KindForPath(entryPath)
			if loc.dataOffset < dataStart || loc.dataOffset > uint64(size) ||
				loc.dataSize > uint64(size)-loc.dataOffset {
				return nil, errors.Newf(errors.ErrCorruptEntry,
					"entry %q range [%d, %d) falls outside the payload section",
					entryPath, loc.dataOffset, loc.dataEnd())
			}
		}
		log.Trace().Str("path", entryPath).Uint64("offset", loc.dataOffset).
			Uint64("size", loc.dataSize).Msg("Parsed entry")
		b.Entries = append(b.Entries, entry)
	}

	if err := checkOverlaps(b.Entries); err != nil {
		return nil, err
	}

	for i, e := range b.Entries {
		if b.backgroundIndex < 0 && e.IsBackground() {
			ext := strings.TrimPrefix(path.Ext(e.Path), ".")
			if !KindBackground.HasExtension(ext) {
				return nil, errors.Newf(errors.ErrBadMetadataReference,
					"background image %q is not a supported image type", e.Path)
			}
			b.backgroundIndex = i
		}
		if b.metadataIndex < 0 && e.IsMetadata() {
			b.metadataIndex = i
		}
	}

	log.Debug().Int("entries", len(b.Entries)).Msg("Bank parsed")
	return &Reader{src: src, size: size, bank: b}, nil
}

// checkOverlaps verifies no file ranges overlap. Besides indicating a
// corrupt file, overlapping ranges also allow an amplification attack
// where many members share the same bytes and extraction consumes all
// disk space.
func checkOverlaps(entries []Entry) error {
	files := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsFile() {
			files = append(files, e)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Offset < files[j].Offset })
	for i := 1; i < len(files); i++ {
		prev, cur := files[i-1], files[i]
		if prev.Offset+prev.Size > cur.Offset {
			return errors.Newf(errors.ErrCorruptEntry,
				"bank entry %q overlaps entry %q", prev.Path, cur.Path)
		}
	}
	return nil
}

// Open opens a bank file for reading. The caller owns the returned
// reader and must Close it.
func Open(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot open bank %s", filePath)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot open bank %s", filePath)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat bank %s", filePath)
	}
	r, err := NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Bank returns the parsed directory of the bank.
func (r *Reader) Bank() *Bank {
	return r.bank
}

// Entries returns the bank members in stored order.
func (r *Reader) Entries() []Entry {
	return r.bank.Entries
}

// ReadContents reads exactly the payload bytes of one entry.
func (r *Reader) ReadContents(e Entry) ([]byte, error) {
	buf := make([]byte, e.Size)
	if _, err := r.src.ReadAt(buf, int64(e.Offset)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCorruptEntry, "cannot read contents of %q", e.Path)
	}
	return buf, nil
}

// WriteContents streams the payload bytes of one entry to w without
// buffering the whole payload.
func (r *Reader) WriteContents(e Entry, w io.Writer) error {
	section := io.NewSectionReader(r.src, int64(e.Offset), int64(e.Size))
	if _, err := io.Copy(w, section); err != nil {
		return errors.Wrapf(err, errors.ErrCorruptEntry, "cannot read contents of %q", e.Path)
	}
	return nil
}

// Metadata decodes the bank's index.json member. A bank without a
// metadata member yields zero metadata.
func (r *Reader) Metadata() (Metadata, error) {
	entry, ok := r.bank.MetadataEntry()
	if !ok {
		return Metadata{}, nil
	}
	data, err := r.ReadContents(entry)
	if err != nil {
		return Metadata{}, err
	}
	return ParseMetadata(data)
}
