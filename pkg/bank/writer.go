package bank

import (
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/arthur-debert/kibank/pkg/errors"
	"github.com/arthur-debert/kibank/pkg/logging"
	"github.com/arthur-debert/kibank/pkg/paths"
)

// member is one file queued for writing: the full bank path and a
// byte source resolved before any container byte is emitted.
type member struct {
	kind     Kind
	path     string
	contents []byte
}

// Writer builds a bank incrementally and serializes it in a single
// forward pass. Output is deterministic: members are ordered by kind
// and path, so byte-identical inputs produce byte-identical banks no
// matter in which order they were added.
type Writer struct {
	members []member

	meta    Metadata
	rawMeta []byte

	// sealed is set once the bank has been written. A writer cannot
	// be reused.
	sealed bool
}

// NewWriter returns an empty bank writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Add queues a file for inclusion. fileName is the name of the file
// within the bank, without any leading directory; the kind's folder
// is prepended automatically. Adding empty contents results in the
// member being treated as a directory, a limitation of the format.
//
// Files of KindUnknown are skipped silently: the classifier has
// already decided they are not bank material. Metadata added here
// replaces any metadata set via SetMetadata.
func (w *Writer) Add(kind Kind, fileName string, contents []byte) error {
	if w.sealed {
		return errors.New(errors.ErrBankSealed, "cannot add to a bank that has already been written")
	}
	if kind == KindUnknown {
		log := logging.GetLogger("bank.writer")
		log.Debug().Str("file", fileName).Msg("Skipping unrecognized file")
		return nil
	}
	if kind == KindMetadata {
		return w.SetMetadataJSON(contents)
	}

	memberPath := fileName
	if folder := kind.Folder(); folder != "" {
		memberPath = folder + PathSeparator + fileName
	}
	if err := paths.ValidateEntryPath(memberPath); err != nil {
		return err
	}

	w.members = append(w.members, member{kind: kind, path: memberPath, contents: contents})
	return nil
}

// AddFile queues a file whose contents are read from srcPath.
func (w *Writer) AddFile(kind Kind, fileName, srcPath string) error {
	contents, err := os.ReadFile(srcPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", srcPath)
	}
	return w.Add(kind, fileName, contents)
}

// SetMetadata records the metadata to serialize into the bank's
// index.json member. An ID derived from author and name is filled in
// when none is given.
func (w *Writer) SetMetadata(m Metadata) error {
	if w.sealed {
		return errors.New(errors.ErrBankSealed, "cannot add to a bank that has already been written")
	}
	w.meta = m
	w.rawMeta = nil
	return nil
}

// SetMetadataJSON stores pre-serialized index.json contents verbatim,
// preserving an input metadata file untouched. The bytes must still
// parse as metadata.
func (w *Writer) SetMetadataJSON(raw []byte) error {
	if w.sealed {
		return errors.New(errors.ErrBankSealed, "cannot add to a bank that has already been written")
	}
	if _, err := ParseMetadata(raw); err != nil {
		return err
	}
	w.rawMeta = raw
	return nil
}

// WriteTo serializes the bank to out and seals the writer. It fails
// with EMPTY_BANK when no member besides the metadata survives, and
// with DUPLICATE_PATH when two members share a path.
//
// The container is written in one pass without seeking backwards:
// every offset is computed from the sorted member list before the
// first directory byte is emitted.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	log := logging.GetLogger("bank.writer")
	if w.sealed {
		return 0, errors.New(errors.ErrBankSealed, "the bank has already been written")
	}
	if len(w.members) == 0 {
		return 0, errors.New(errors.ErrEmptyBank, "no recognized files to store in the bank")
	}

	metaContents := w.rawMeta
	if metaContents == nil {
		var err error
		metaContents, err = w.meta.encode()
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrInternal, "cannot serialize metadata")
		}
	}

	members := make([]member, 0, len(w.members)+1)
	members = append(members, w.members...)
	members = append(members, member{kind: KindMetadata, path: MetadataFileName, contents: metaContents})
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].kind != members[j].kind {
			return members[i].kind < members[j].kind
		}
		return members[i].path < members[j].path
	})

	for i := 1; i < len(members); i++ {
		if members[i].path == members[i-1].path {
			return 0, errors.Newf(errors.ErrDuplicatePath, "duplicate path %q", members[i].path)
		}
	}

	// Kinds present, in storage order. Each kind with a folder gets a
	// directory entry ahead of its files.
	var kinds []Kind
	for _, m := range members {
		if len(kinds) == 0 || kinds[len(kinds)-1] != m.kind {
			kinds = append(kinds, m.kind)
		}
	}

	// First pass: lay out the location table and the name block so
	// every data offset is known before a single byte goes out.
	type pending struct {
		loc      location
		contents []byte
	}
	var nameBlock []byte
	var pendings []pending
	for _, kind := range kinds {
		if folder := kind.Folder(); folder != "" {
			pendings = append(pendings, pending{loc: location{nameOffset: uint64(len(nameBlock))}})
			nameBlock = append(nameBlock, folder...)
			nameBlock = append(nameBlock, 0)
		}
		for _, m := range members {
			if m.kind != kind {
				continue
			}
			pendings = append(pendings, pending{
				loc:      location{nameOffset: uint64(len(nameBlock)), dataSize: uint64(len(m.contents))},
				contents: m.contents,
			})
			nameBlock = append(nameBlock, m.path...)
			nameBlock = append(nameBlock, 0)
		}
	}

	dataOffset := uint64(headerSize) + uint64(len(pendings))*locationSize + 8 + uint64(len(nameBlock))
	for i := range pendings {
		if pendings[i].contents != nil {
			pendings[i].loc.dataOffset = dataOffset
			dataOffset += pendings[i].loc.dataSize
		}
	}

	cw := &countingWriter{w: out}
	if err := writeAll(cw, fileID, corruptionCheck, formatVersion); err != nil {
		return cw.n, err
	}
	if err := writeUint64(cw, uint64(len(pendings))); err != nil {
		return cw.n, err
	}
	for _, p := range pendings {
		if err := writeUint64(cw, p.loc.nameOffset, p.loc.dataOffset, p.loc.dataSize); err != nil {
			return cw.n, err
		}
	}
	if err := writeUint64(cw, uint64(len(nameBlock))); err != nil {
		return cw.n, err
	}
	if err := writeAll(cw, nameBlock); err != nil {
		return cw.n, err
	}
	for _, p := range pendings {
		if err := writeAll(cw, p.contents); err != nil {
			return cw.n, err
		}
	}

	w.sealed = true
	log.Debug().Int("members", len(members)).Int64("bytes", cw.n).Msg("Bank written")
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeAll(w io.Writer, chunks ...[]byte) error {
	for _, chunk := range chunks {
		if _, err := w.Write(chunk); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "cannot write bank")
		}
	}
	return nil
}

func writeUint64(w io.Writer, values ...uint64) error {
	buf := make([]byte, 8)
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf, v)
		if _, err := w.Write(buf); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "cannot write bank")
		}
	}
	return nil
}
