package create

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kibank/pkg/bank"
	"github.com/arthur-debert/kibank/pkg/errors"
	"github.com/arthur-debert/kibank/pkg/testutil"
)

func strptr(s string) *string { return &s }

func createBank(t *testing.T, opts CreateOptions) *CreateResult {
	t.Helper()
	result, err := Create(opts)
	require.NoError(t, err)
	return result
}

func readBank(t *testing.T, path string) *bank.Reader {
	t.Helper()
	r, err := bank.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func skippedPaths(result *CreateResult) []string {
	var paths []string
	for _, s := range result.Skipped {
		paths = append(paths, filepath.Base(s.Path))
	}
	return paths
}

func TestCreateFromTree(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"cover.png":       "PNG",
		"kick.wav":        "RIFF",
		"lead.phaseplant": "PRESET",
		"readme.txt":      "not bank material",
		"index.json":      `{"name":"My Bank","author":"Some One"}`,
		"sub/snare.wav":   "RIFF2",
	})
	out := filepath.Join(t.TempDir(), "test.bank")

	result := createBank(t, CreateOptions{Output: out, Inputs: []string{root}})

	assert.ElementsMatch(t, []string{
		"background.png",
		"samples/kick.wav",
		"samples/snare.wav",
		"phaseplant/lead.phaseplant",
	}, result.Added)
	assert.Equal(t, []string{"readme.txt"}, skippedPaths(result))

	r := readBank(t, out)
	meta, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "My Bank", meta.Name)
	assert.Equal(t, "Some One", meta.Author)

	bg, ok := r.Bank().Background()
	require.True(t, ok)
	assert.Equal(t, "background.png", bg.Path)
	contents, err := r.ReadContents(bg)
	require.NoError(t, err)
	assert.Equal(t, "PNG", string(contents))
}

func TestCreatePreservesIndexVerbatim(t *testing.T) {
	// Without explicit metadata flags the original index.json goes in
	// untouched, odd formatting and unknown keys included.
	raw := "{\n    \"name\": \"X\",   \"custom_key\": [1, 2]\n}"
	root := testutil.WriteTree(t, map[string]string{
		"index.json": raw,
		"kick.wav":   "RIFF",
	})
	out := filepath.Join(t.TempDir(), "test.bank")

	createBank(t, CreateOptions{Output: out, Inputs: []string{root}})

	r := readBank(t, out)
	entry, ok := r.Bank().MetadataEntry()
	require.True(t, ok)
	contents, err := r.ReadContents(entry)
	require.NoError(t, err)
	assert.Equal(t, raw, string(contents))
}

func TestCreateExplicitFieldsOverrideIndex(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"index.json": `{"name":"From Index","author":"From Index"}`,
		"kick.wav":   "RIFF",
	})
	out := filepath.Join(t.TempDir(), "test.bank")

	createBank(t, CreateOptions{
		Output: out,
		Inputs: []string{root},
		Name:   strptr("From Flag"),
	})

	meta, err := readBank(t, out).Metadata()
	require.NoError(t, err)
	assert.Equal(t, "From Flag", meta.Name)
	assert.Equal(t, "From Index", meta.Author)
}

func TestCreateDefaultAuthorFillsOnlyWhenUnset(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"kick.wav": "RIFF"})

	out := filepath.Join(t.TempDir(), "a.bank")
	createBank(t, CreateOptions{Output: out, Inputs: []string{root}, DefaultAuthor: "Config Author"})
	meta, err := readBank(t, out).Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Config Author", meta.Author)

	out2 := filepath.Join(t.TempDir(), "b.bank")
	createBank(t, CreateOptions{
		Output: out2, Inputs: []string{root},
		Author: strptr("Flag Author"), DefaultAuthor: "Config Author",
	})
	meta, err = readBank(t, out2).Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Flag Author", meta.Author)
}

func TestCreateMalformedIndex(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"index.json": `{"name": 5}`,
		"kick.wav":   "RIFF",
	})
	out := filepath.Join(t.TempDir(), "test.bank")

	_, err := Create(CreateOptions{Output: out, Inputs: []string{root}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedIndex))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateNothingToStore(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"readme.txt": "nope"})
	outDir := t.TempDir()
	out := filepath.Join(outDir, "test.bank")

	_, err := Create(CreateOptions{Output: out, Inputs: []string{root}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEmptyBank))

	// Nothing was written, not even a leftover temporary file.
	remains, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, remains)
}

func TestCreateMetadataOnlyIsStillEmpty(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"index.json": `{"name":"X"}`})
	out := filepath.Join(t.TempDir(), "test.bank")

	_, err := Create(CreateOptions{Output: out, Inputs: []string{root}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEmptyBank))
}

func TestCreateFirstBackgroundWins(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"aa.png":   "FIRST",
		"zz.jpg":   "SECOND",
		"kick.wav": "RIFF",
	})
	out := filepath.Join(t.TempDir(), "test.bank")

	result := createBank(t, CreateOptions{Output: out, Inputs: []string{root}})
	assert.Contains(t, result.Added, "background.png")
	assert.Equal(t, []string{"zz.jpg"}, skippedPaths(result))

	bg, ok := readBank(t, out).Bank().Background()
	require.True(t, ok)
	assert.Equal(t, "background.png", bg.Path)
}

func TestCreateDuplicateInputListedOnce(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"kick.wav": "RIFF"})
	kick := filepath.Join(root, "kick.wav")
	out := filepath.Join(t.TempDir(), "test.bank")

	result := createBank(t, CreateOptions{Output: out, Inputs: []string{kick, kick}})
	assert.Equal(t, []string{"samples/kick.wav"}, result.Added)
}

func TestCreateDeterministicAcrossInputOrder(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"kick.wav":        "RIFF",
		"snare.wav":       "RIFF2",
		"lead.phaseplant": "PRESET",
	})
	inputs := []string{
		filepath.Join(root, "kick.wav"),
		filepath.Join(root, "snare.wav"),
		filepath.Join(root, "lead.phaseplant"),
	}
	reversed := []string{inputs[2], inputs[1], inputs[0]}

	outA := filepath.Join(t.TempDir(), "a.bank")
	outB := filepath.Join(t.TempDir(), "b.bank")
	createBank(t, CreateOptions{Output: outA, Inputs: inputs})
	createBank(t, CreateOptions{Output: outB, Inputs: reversed})

	a, err := os.ReadFile(outA)
	require.NoError(t, err)
	b, err := os.ReadFile(outB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
