package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kibank/pkg/bank"
	"github.com/arthur-debert/kibank/pkg/errors"
	"github.com/arthur-debert/kibank/pkg/testutil"
)

func openBank(t *testing.T, data []byte) *bank.Reader {
	t.Helper()
	r, err := bank.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return r
}

func TestExtractTree(t *testing.T) {
	w := bank.NewWriter()
	require.NoError(t, w.Add(bank.KindBackground, "background.png", []byte("img")))
	require.NoError(t, w.Add(bank.KindSample, "kick.wav", []byte("kick")))
	require.NoError(t, w.Add(bank.KindSample, "snare.wav", []byte("snare")))
	require.NoError(t, w.SetMetadata(bank.Metadata{Name: "T"}))
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	r := openBank(t, buf.Bytes())
	dest := t.TempDir()
	result, err := Extract(r, dest)
	require.NoError(t, err)
	assert.Empty(t, result.Failed)

	for path, want := range map[string]string{
		"background.png":    "img",
		"samples/kick.wav":  "kick",
		"samples/snare.wav": "snare",
	} {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(path)))
		require.NoError(t, err, "reading %s", path)
		assert.Equal(t, want, string(got))
	}

	info, err := os.Stat(filepath.Join(dest, "samples"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// index.json is an ordinary member and extracts like any other.
	_, err = os.Stat(filepath.Join(dest, "index.json"))
	require.NoError(t, err)

	assert.Len(t, result.Written, 4)
}

func TestExtractOverwritesExistingFiles(t *testing.T) {
	data := testutil.BankBytes(testutil.Member{Path: "samples/kick.wav", Data: []byte("new")})
	dest := t.TempDir()
	target := filepath.Join(dest, "samples", "kick.wav")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("old contents, longer"), 0644))

	r := openBank(t, data)
	_, err := Extract(r, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestExtractRejectsTraversalAndContinues(t *testing.T) {
	data := testutil.BankBytes(
		testutil.Member{Path: "../evil.wav", Data: []byte("evil")},
		testutil.Member{Path: "ok.wav", Data: []byte("ok")},
	)

	parent := t.TempDir()
	dest := filepath.Join(parent, "out")
	require.NoError(t, os.Mkdir(dest, 0755))

	r := openBank(t, data)
	result, err := Extract(r, dest)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtractIncomplete))

	// The hostile entry failed with PATH_ESCAPE and wrote nothing.
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "../evil.wav", result.Failed[0].Path)
	assert.True(t, errors.IsErrorCode(result.Failed[0].Err, errors.ErrPathEscape))
	_, statErr := os.Stat(filepath.Join(parent, "evil.wav"))
	assert.True(t, os.IsNotExist(statErr))

	// The benign entry was still extracted.
	got, err := os.ReadFile(filepath.Join(dest, "ok.wav"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}

func TestExtractEmptyDestCreatedOnDemand(t *testing.T) {
	data := testutil.BankBytes(testutil.Member{Path: "a/b/c.wav", Data: []byte("x")})
	dest := filepath.Join(t.TempDir(), "does", "not", "exist")

	r := openBank(t, data)
	_, err := Extract(r, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "a", "b", "c.wav"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}
