package bank

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kibank/pkg/errors"
)

func buildBank(t *testing.T, add func(w *Writer)) []byte {
	t.Helper()
	w := NewWriter()
	add(w)
	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	return buf.Bytes()
}

func TestWriterHeaderBytes(t *testing.T) {
	data := buildBank(t, func(w *Writer) {
		require.NoError(t, w.Add(KindSample, "kick.wav", []byte("RIFF")))
	})

	want := append([]byte{0x89, 'k', 'H', 's', 0x0d, 0x0a, 0x1a, 0x0a}, "Bank0001"...)
	assert.Equal(t, want, data[:16])
}

func TestWriterEmptyBank(t *testing.T) {
	w := NewWriter()
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEmptyBank))
	assert.Zero(t, buf.Len())
}

func TestWriterMetadataOnlyIsStillEmpty(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.SetMetadata(Metadata{Name: "N"}))
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEmptyBank))
}

func TestWriterDuplicatePath(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Add(KindSample, "kick.wav", []byte("a")))
	require.NoError(t, w.Add(KindSample, "kick.wav", []byte("b")))
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicatePath))
}

func TestWriterSealedAfterWrite(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Add(KindSample, "kick.wav", []byte("a")))
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	err = w.Add(KindSample, "snare.wav", []byte("b"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrBankSealed))
	_, err = w.WriteTo(&buf)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBankSealed))
}

func TestWriterRejectsTraversalNames(t *testing.T) {
	w := NewWriter()
	err := w.Add(KindSample, "../evil.wav", []byte("a"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathEscape))
}

func TestWriterDeterministicAcrossAddOrder(t *testing.T) {
	first := buildBank(t, func(w *Writer) {
		require.NoError(t, w.Add(KindSample, "kick.wav", []byte("kick")))
		require.NoError(t, w.Add(KindSample, "snare.wav", []byte("snare")))
		require.NoError(t, w.Add(KindPhasePlantPreset, "lead.phaseplant", []byte("lead")))
		require.NoError(t, w.SetMetadata(Metadata{Name: "N", Author: "A"}))
	})
	second := buildBank(t, func(w *Writer) {
		require.NoError(t, w.SetMetadata(Metadata{Name: "N", Author: "A"}))
		require.NoError(t, w.Add(KindPhasePlantPreset, "lead.phaseplant", []byte("lead")))
		require.NoError(t, w.Add(KindSample, "snare.wav", []byte("snare")))
		require.NoError(t, w.Add(KindSample, "kick.wav", []byte("kick")))
	})
	assert.Equal(t, first, second)
}

func TestWriterLayout(t *testing.T) {
	data := buildBank(t, func(w *Writer) {
		require.NoError(t, w.Add(KindSample, "kick.wav", []byte("kick")))
	})

	// Members: index.json (metadata), samples directory, samples/kick.wav.
	count := binary.LittleEndian.Uint64(data[16:24])
	assert.Equal(t, uint64(3), count)

	// The name block follows the three location records and its length.
	nameLenOff := 24 + 3*24
	nameLen := binary.LittleEndian.Uint64(data[nameLenOff : nameLenOff+8])
	nameBlock := data[nameLenOff+8 : nameLenOff+8+int(nameLen)]
	assert.Equal(t, "index.json\x00samples\x00samples/kick.wav\x00", string(nameBlock))

	// Payloads are packed directly after the name block.
	assert.True(t, bytes.HasSuffix(data, []byte("kick")))
}
