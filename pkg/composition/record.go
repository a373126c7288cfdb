package composition

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Label tags used by the record format.
const (
	TagEmpty      = "e"
	TagHorizontal = "H"
	TagVertical   = "V"
)

// Record is the persisted-state boundary for compositions: a JSON- and
// BSON-serializable tagged tree. Terms are omitted for the empty tile.
//
// The format is intentionally lax on input: a hand-authored record that is not
// itself canonical (e.g. with flattenable same-label runs) is canonicalized on
// load, because decoding re-invokes [Build]. Round-tripping a canonical value
// is lossless.
type Record struct {
	Label string   `json:"label" bson:"label"`
	Terms []Record `json:"terms,omitempty" bson:"terms,omitempty"`
}

// Record returns the tagged tree record for c.
func (c *Composition) Record() Record {
	r := Record{Label: c.label.String()}
	if len(c.terms) > 0 {
		r.Terms = make([]Record, len(c.terms))
		for i, t := range c.terms {
			r.Terms[i] = t.Record()
		}
	}
	return r
}

// FromRecord reconstructs a composition from its record, decoding children
// recursively and re-invoking [Build] so the result is canonical. Returns
// [ErrMalformedRecord] for unknown label tags or shapes the constructor
// rejects.
func FromRecord(r Record) (*Composition, error) {
	var label Label
	switch r.Label {
	case TagEmpty:
		label = LabelEmpty
	case TagHorizontal:
		label = LabelHorizontal
	case TagVertical:
		label = LabelVertical
	default:
		return nil, fmt.Errorf("%w: unknown label tag %q", ErrMalformedRecord, r.Label)
	}

	terms := make([]*Composition, len(r.Terms))
	for i, tr := range r.Terms {
		t, err := FromRecord(tr)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}

	c, err := Build(label, terms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return c, nil
}

// MarshalRecord encodes c as compact JSON.
func MarshalRecord(c *Composition) ([]byte, error) {
	return json.Marshal(c.Record())
}

// UnmarshalRecord decodes JSON bytes into a canonical composition.
// Syntactically invalid JSON and semantically invalid records both return
// [ErrMalformedRecord].
func UnmarshalRecord(data []byte) (*Composition, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return FromRecord(r)
}

// WriteRecord writes c as indented JSON to w.
func WriteRecord(c *Composition, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Record()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes c as an indented JSON record file at path.
func WriteFile(c *Composition, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteRecord(c, f)
}

// ReadRecord decodes a JSON record from r into a canonical composition.
func ReadRecord(r io.Reader) (*Composition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return UnmarshalRecord(data)
}

// ReadFile reads a JSON record file and returns the decoded composition.
func ReadFile(path string) (*Composition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecord(f)
}
