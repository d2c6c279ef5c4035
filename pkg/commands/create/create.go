package create

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/kibank/pkg/bank"
	"github.com/arthur-debert/kibank/pkg/errors"
	"github.com/arthur-debert/kibank/pkg/logging"
)

// CreateOptions defines the options for the Create command.
type CreateOptions struct {
	// Output is the file name of the new bank.
	Output string

	// Inputs are files and directories to add. Directories are walked
	// in lexical order so the resulting bank does not depend on
	// filesystem enumeration order.
	Inputs []string

	// Explicit metadata fields. A nil pointer means the flag was not
	// given, which is distinct from an explicitly empty value.
	Name        *string
	Author      *string
	Description *string
	ID          *string
	Version     *uint32
	Hash        *string

	// DefaultAuthor fills the author field when neither a flag nor an
	// input index.json supplies one. Typically from the user config.
	DefaultAuthor string
}

// SkippedFile records one input that was not stored in the bank.
type SkippedFile struct {
	Path   string
	Reason string
}

// CreateResult reports what went into the bank and what was left out.
type CreateResult struct {
	BankPath string

	// Added lists the bank paths of the stored members.
	Added []string

	// Skipped lists inputs that were filtered out. Skipping is not an
	// error: unrecognized files are deliberately excluded rather than
	// failing the whole create.
	Skipped []SkippedFile
}

// candidate is one classified input file.
type candidate struct {
	src  string
	kind bank.Kind
}

// Create builds a new bank from the given inputs. The bank is written
// to a temporary file and renamed into place, so no partial output is
// ever visible.
func Create(opts CreateOptions) (*CreateResult, error) {
	log := logging.GetLogger("commands.create")
	result := &CreateResult{BankPath: opts.Output}

	candidates := collectInputs(opts.Inputs, result)

	writer := bank.NewWriter()
	stored := 0

	background, rest := pickBackground(candidates, result)
	if background != nil {
		ext := strings.TrimPrefix(filepath.Ext(background.src), ".")
		fileName := bank.BackgroundFileStem + "." + ext
		log.Debug().Str("src", background.src).Str("file", fileName).Msg("Adding background image")
		if err := writer.AddFile(bank.KindBackground, fileName, background.src); err != nil {
			return nil, err
		}
		result.Added = append(result.Added, fileName)
		stored++
	}

	if err := resolveMetadata(opts, rest, writer, result); err != nil {
		return nil, err
	}

	for _, c := range rest {
		if c.kind == bank.KindMetadata {
			continue
		}
		fileName := filepath.Base(c.src)
		log.Debug().Str("src", c.src).Str("kind", c.kind.String()).Msg("Adding file")
		if err := writer.AddFile(c.kind, fileName, c.src); err != nil {
			return nil, err
		}
		memberPath := fileName
		if folder := c.kind.Folder(); folder != "" {
			memberPath = folder + bank.PathSeparator + fileName
		}
		result.Added = append(result.Added, memberPath)
		stored++
	}

	if stored == 0 {
		return nil, errors.New(errors.ErrEmptyBank, "no recognized files to store in the bank")
	}

	if err := commit(writer, opts.Output); err != nil {
		return nil, err
	}

	log.Info().Str("bank", opts.Output).Int("added", len(result.Added)).
		Int("skipped", len(result.Skipped)).Msg("Bank created")
	return result, nil
}

// collectInputs walks the inputs in argument order, each tree in
// lexical order, classifies every file and dedupes files listed more
// than once.
func collectInputs(inputs []string, result *CreateResult) []candidate {
	log := logging.GetLogger("commands.create")

	var candidates []candidate
	seen := make(map[string]struct{})
	for _, input := range inputs {
		err := filepath.WalkDir(input, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn().Str("path", p).Err(err).Msg("Cannot read input")
				result.Skipped = append(result.Skipped, SkippedFile{Path: p, Reason: "unreadable"})
				return nil
			}
			if d.IsDir() {
				return nil
			}
			abs, absErr := filepath.Abs(p)
			if absErr != nil {
				abs = filepath.Clean(p)
			}
			if _, dup := seen[abs]; dup {
				return nil
			}
			seen[abs] = struct{}{}

			kind := bank.KindForPath(p)
			if kind == bank.KindUnknown {
				log.Info().Str("path", p).Msg("Skipping unknown type of file")
				result.Skipped = append(result.Skipped, SkippedFile{Path: p, Reason: "unrecognized file type"})
				return nil
			}
			candidates = append(candidates, candidate{src: p, kind: kind})
			return nil
		})
		if err != nil {
			log.Warn().Str("path", input).Err(err).Msg("Cannot walk input")
			result.Skipped = append(result.Skipped, SkippedFile{Path: input, Reason: "unreadable"})
		}
	}
	return candidates
}

// pickBackground chooses the bank's background image. The first
// candidate in the deterministic input order wins; the rest are
// skipped. A candidate without a usable image extension is skipped
// too.
func pickBackground(candidates []candidate, result *CreateResult) (*candidate, []candidate) {
	log := logging.GetLogger("commands.create")

	var chosen *candidate
	rest := make([]candidate, 0, len(candidates))
	for i := range candidates {
		c := candidates[i]
		if c.kind != bank.KindBackground {
			rest = append(rest, c)
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(c.src), ".")
		if !bank.KindBackground.HasExtension(ext) {
			log.Warn().Str("path", c.src).Msg("Background image has no usable extension")
			result.Skipped = append(result.Skipped, SkippedFile{Path: c.src, Reason: "unsupported background image type"})
			continue
		}
		if chosen != nil {
			log.Warn().Str("path", c.src).Msg("More than one background image found")
			result.Skipped = append(result.Skipped, SkippedFile{Path: c.src, Reason: "additional background image"})
			continue
		}
		chosen = &candidates[i]
	}
	return chosen, rest
}

// resolveMetadata merges explicit fields with metadata from the
// inputs. With no explicit fields and exactly one index.json input,
// the original file is preserved untouched.
func resolveMetadata(opts CreateOptions, candidates []candidate, writer *bank.Writer, result *CreateResult) error {
	log := logging.GetLogger("commands.create")

	var metaFiles []candidate
	for _, c := range candidates {
		if c.kind == bank.KindMetadata {
			metaFiles = append(metaFiles, c)
		}
	}
	for _, extra := range metaFiles[min(1, len(metaFiles)):] {
		log.Warn().Str("path", extra.src).Msg("More than one metadata file found")
		result.Skipped = append(result.Skipped, SkippedFile{Path: extra.src, Reason: "additional metadata file"})
	}

	explicit := bank.ExplicitMetadata{
		Name:        opts.Name,
		Author:      opts.Author,
		Description: opts.Description,
		ID:          opts.ID,
		Version:     opts.Version,
		Hash:        opts.Hash,
	}

	var indexJSON []byte
	if len(metaFiles) > 0 {
		data, err := os.ReadFile(metaFiles[0].src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", metaFiles[0].src)
		}
		indexJSON = data
	}

	// Leave the original metadata file untouched if there is just one
	// and nothing overrides it.
	if explicit.IsZero() && opts.DefaultAuthor == "" && indexJSON != nil {
		if err := writer.SetMetadataJSON(indexJSON); err != nil {
			return errors.Wrapf(err, errors.ErrMalformedIndex,
				"cannot read %s as a metadata JSON file", metaFiles[0].src)
		}
		return nil
	}

	meta, err := bank.ResolveMetadata(explicit, indexJSON)
	if err != nil {
		if len(metaFiles) > 0 {
			return errors.Wrapf(err, errors.ErrMalformedIndex,
				"cannot read %s as a metadata JSON file", metaFiles[0].src)
		}
		return err
	}
	if meta.Author == "" && opts.DefaultAuthor != "" {
		meta.Author = opts.DefaultAuthor
	}
	return writer.SetMetadata(meta)
}

// commit writes the bank to a temporary file next to the output and
// renames it into place.
func commit(writer *bank.Writer, output string) error {
	dir := filepath.Dir(output)
	tmp, err := os.CreateTemp(dir, ".kibank-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "cannot create bank %s", output)
	}
	tmpName := tmp.Name()

	if _, err := writer.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write bank %s", output)
	}
	if err := os.Rename(tmpName, output); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot move bank into place at %s", output)
	}
	return nil
}
