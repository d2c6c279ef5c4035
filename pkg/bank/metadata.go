package bank

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/arthur-debert/kibank/pkg/errors"
)

// Metadata is the bank-level metadata stored in the index.json
// member. The format does not distinguish an empty string from an
// absent field, so empty means unset.
//
// The version and hash fields have only been found in Kilohearts
// factory content banks, not in banks created with Bank Maker.
type Metadata struct {
	// Version is only found in Kilohearts factory content banks.
	Version *uint32

	// ID is a unique identifier for the bank, typically of the form
	// "author.name".
	ID string

	Name        string
	Author      string
	Description string

	// Hash is a 160-bit hash as a hex string, only found in factory
	// content banks. The hash of a bank appears to be the same no
	// matter who downloaded it or with which version of the
	// application.
	Hash *string

	// Extra holds values found in the JSON but not part of the model.
	// They survive a read-then-rewrite round trip.
	Extra map[string]interface{}
}

type metadataJSON struct {
	Version     *uint32 `json:"version,omitempty"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Hash        *string `json:"hash,omitempty"`
}

// MarshalJSON serializes the metadata including any extra fields.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Version != nil {
		out["version"] = *m.Version
	}
	out["id"] = m.ID
	out["name"] = m.Name
	out["author"] = m.Author
	out["description"] = m.Description
	if m.Hash != nil {
		out["hash"] = *m.Hash
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the known fields and keeps everything else in
// Extra.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var known metadataJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range []string{"version", "id", "name", "author", "description", "hash"} {
		delete(raw, key)
	}
	if len(raw) == 0 {
		raw = nil
	}

	*m = Metadata{
		Version:     known.Version,
		ID:          known.ID,
		Name:        known.Name,
		Author:      known.Author,
		Description: known.Description,
		Hash:        known.Hash,
		Extra:       raw,
	}
	return nil
}

// ParseMetadata decodes the contents of an index.json member. It
// fails with MALFORMED_INDEX when the bytes are not a JSON object or
// a known field has the wrong shape.
func ParseMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, errors.Wrap(err, errors.ErrMalformedIndex, "cannot parse metadata JSON")
	}
	return m, nil
}

// SanitizeID normalizes a string for use in a bank ID. Bank IDs are
// lowercase and alphanumeric, plus a dot used as a separator.
func SanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// withDefaultID returns a copy of the metadata with the ID derived
// from the author and name when it has not been set.
func (m Metadata) withDefaultID() Metadata {
	if m.ID != "" {
		return m
	}
	parts := make([]string, 0, 2)
	if author := SanitizeID(m.Author); author != "" {
		parts = append(parts, author)
	}
	if name := SanitizeID(m.Name); name != "" {
		parts = append(parts, name)
	}
	m.ID = strings.Join(parts, ".")
	return m
}

// encode serializes the metadata the way Bank Maker does:
// pretty-printed JSON.
func (m Metadata) encode() ([]byte, error) {
	return json.MarshalIndent(m.withDefaultID(), "", "  ")
}

// ExplicitMetadata carries metadata fields given explicitly, for
// example on the command line. A nil pointer means the field was not
// given, which is distinct from a pointer to an empty string.
type ExplicitMetadata struct {
	Name        *string
	Author      *string
	Description *string
	ID          *string
	Version     *uint32
	Hash        *string
}

// IsZero reports whether no explicit field was given.
func (e ExplicitMetadata) IsZero() bool {
	return e.Name == nil && e.Author == nil && e.Description == nil &&
		e.ID == nil && e.Version == nil && e.Hash == nil
}

// ResolveMetadata merges explicitly given fields with metadata found
// in an index.json file. Explicit fields win; fields absent from both
// remain unset. indexJSON may be nil when no metadata file was among
// the inputs.
func ResolveMetadata(explicit ExplicitMetadata, indexJSON []byte) (Metadata, error) {
	var m Metadata
	if indexJSON != nil {
		var err error
		m, err = ParseMetadata(indexJSON)
		if err != nil {
			return Metadata{}, err
		}
	}

	if explicit.Name != nil {
		m.Name = *explicit.Name
	}
	if explicit.Author != nil {
		m.Author = *explicit.Author
	}
	if explicit.Description != nil {
		m.Description = *explicit.Description
	}
	if explicit.ID != nil {
		m.ID = *explicit.ID
	}
	if explicit.Version != nil {
		m.Version = explicit.Version
	}
	if explicit.Hash != nil {
		m.Hash = explicit.Hash
	}
	return m, nil
}
