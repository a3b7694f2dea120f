package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

// Entry maps a resource name to its identifier.
type Entry struct {
	Key   string
	Value string
}

// Manifest is the ordered set of entries a run accumulates. Keys are unique.
type Manifest struct {
	entries []Entry
	index   map[string]int
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{entries: make([]Entry, 0), index: make(map[string]int)}
}

// Add validates and appends an entry. Invalid or duplicate keys return an
// error matching errors.ErrArtifactBuild and leave the manifest unchanged.
func (m *Manifest) Add(key, value string) error {
	e := Entry{Key: key, Value: value}
	if err := ValidateEntry(e); err != nil {
		return err
	}
	if _, dup := m.index[key]; dup {
		return errors.WrapInvalid(
			fmt.Errorf("%w: duplicate key %q", errors.ErrArtifactBuild, key),
			"mapping", "Add", "add entry")
	}

	m.index[key] = len(m.entries)
	m.entries = append(m.entries, e)
	return nil
}

// Entries returns a copy of the entries in insertion order.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// MarshalJSON renders the manifest as a JSON object with keys in insertion
// order, indented by two spaces.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var raw bytes.Buffer
	raw.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			raw.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		raw.Write(k)
		raw.WriteByte(':')
		raw.Write(v)
	}
	raw.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, raw.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// protoKey cannot be an object literal property: it sets the prototype.
const protoKey = "__proto__"

// ValidateEntry rejects entries that cannot be embedded as string literals:
// empty keys, the prototype key, invalid UTF-8 and control characters.
func ValidateEntry(e Entry) error {
	if e.Key == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: empty key (value %q)", errors.ErrArtifactBuild, e.Value),
			"mapping", "ValidateEntry", "validate key")
	}
	if e.Key == protoKey {
		return errors.WrapInvalid(
			fmt.Errorf("%w: key %q cannot be an object literal property", errors.ErrArtifactBuild, e.Key),
			"mapping", "ValidateEntry", "validate key")
	}
	for _, f := range []struct{ field, s string }{{"key", e.Key}, {"value", e.Value}} {
		if !utf8.ValidString(f.s) {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %s %q is not valid UTF-8", errors.ErrArtifactBuild, f.field, f.s),
				"mapping", "ValidateEntry", "validate "+f.field)
		}
		for _, r := range f.s {
			if unicode.IsControl(r) {
				return errors.WrapInvalid(
					fmt.Errorf("%w: %s %q contains control character %U", errors.ErrArtifactBuild, f.field, f.s, r),
					"mapping", "ValidateEntry", "validate "+f.field)
			}
		}
	}
	return nil
}
