// Package testutil provides fixture helpers for bank tests: input
// tree builders and a raw bank assembler that gives tests full
// control over the container bytes, including invalid ones.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree creates a directory tree from a map of relative paths to
// file contents and returns the root.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, contents := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(contents), 0644))
	}
	return root
}

// Member is one raw bank member for fixtures. A member with nil Data
// becomes a directory entry.
type Member struct {
	Path string
	Data []byte
}

// BankBytes assembles a syntactically valid bank file from the given
// members, in order, without any of the writer's sorting or folder
// synthesis. Reader tests use it to fabricate banks the writer would
// refuse to produce, such as members with traversal paths.
func BankBytes(members ...Member) []byte {
	var nameBlock []byte
	nameOffsets := make([]uint64, len(members))
	for i, m := range members {
		nameOffsets[i] = uint64(len(nameBlock))
		nameBlock = append(nameBlock, m.Path...)
		nameBlock = append(nameBlock, 0)
	}

	headerLen := 4 + 4 + 8 + 8
	dataStart := uint64(headerLen) + uint64(len(members))*24 + 8 + uint64(len(nameBlock))

	var out []byte
	out = append(out, 0x89, 'k', 'H', 's')
	out = append(out, 0x0d, 0x0a, 0x1a, 0x0a)
	out = append(out, "Bank0001"...)
	out = appendUint64(out, uint64(len(members)))

	offset := dataStart
	for i, m := range members {
		out = appendUint64(out, nameOffsets[i])
		if m.Data == nil {
			out = appendUint64(out, 0)
			out = appendUint64(out, 0)
			continue
		}
		out = appendUint64(out, offset)
		out = appendUint64(out, uint64(len(m.Data)))
		offset += uint64(len(m.Data))
	}

	out = appendUint64(out, uint64(len(nameBlock)))
	out = append(out, nameBlock...)
	for _, m := range members {
		out = append(out, m.Data...)
	}
	return out
}

// LocationField selects one field of a location record for TamperLocation.
type LocationField int

const (
	FieldNameOffset LocationField = iota
	FieldDataOffset
	FieldDataSize
)

// TamperLocation overwrites one field of the bank's i-th location
// record in place.
func TamperLocation(bankBytes []byte, i int, field LocationField, value uint64) {
	off := 24 + i*24 + int(field)*8
	binary.LittleEndian.PutUint64(bankBytes[off:], value)
}

func appendUint64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}
