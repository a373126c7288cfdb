package composition

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func TestRecord_RoundTrip(t *testing.T) {
	e := Empty()

	cases := []*Composition{
		e,
		mustBuild(t, LabelHorizontal, e, e),
		mustBuild(t, LabelVertical, e, e, e),
		mustBuild(t, LabelVertical,
			mustBuild(t, LabelHorizontal, e, e, e),
			e,
			mustBuild(t, LabelHorizontal, e, mustBuild(t, LabelVertical, e, e))),
	}
	for _, c := range cases {
		decoded, err := FromRecord(c.Record())
		if err != nil {
			t.Fatalf("FromRecord(%v) error: %v", c, err)
		}
		if !decoded.Equal(c) {
			t.Errorf("round trip changed %v into %v", c, decoded)
		}
	}
}

func TestRecord_EmptyOmitsTerms(t *testing.T) {
	data, err := MarshalRecord(Empty())
	if err != nil {
		t.Fatalf("MarshalRecord() error: %v", err)
	}
	if got, want := string(data), `{"label":"e"}`; got != want {
		t.Errorf("MarshalRecord() = %s, want %s", got, want)
	}
}

func TestUnmarshalRecord_CanonicalizesOnLoad(t *testing.T) {
	// A hand-authored record with a flattenable run is not an error: decoding
	// re-invokes the constructor, so the loaded value is canonical.
	data := []byte(`{"label":"H","terms":[
		{"label":"H","terms":[{"label":"e"},{"label":"e"}]},
		{"label":"H","terms":[{"label":"e"},{"label":"e"}]}]}`)

	c, err := UnmarshalRecord(data)
	if err != nil {
		t.Fatalf("UnmarshalRecord() error: %v", err)
	}
	e := Empty()
	if want := mustBuild(t, LabelHorizontal, e, e, e, e); !c.Equal(want) {
		t.Errorf("UnmarshalRecord() = %v, want %v", c, want)
	}
}

func TestUnmarshalRecord_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown tag", `{"label":"X"}`},
		{"horizontal without terms", `{"label":"H"}`},
		{"empty with terms", `{"label":"e","terms":[{"label":"e"}]}`},
		{"nested unknown tag", `{"label":"V","terms":[{"label":"e"},{"label":"?"}]}`},
		{"invalid json", `{"label":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRecord([]byte(tt.data))
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("UnmarshalRecord() error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestRecord_JSONShape(t *testing.T) {
	e := Empty()
	c := mustBuild(t, LabelVertical, mustBuild(t, LabelHorizontal, e, e), e)

	data, err := MarshalRecord(c)
	if err != nil {
		t.Fatalf("MarshalRecord() error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if raw["label"] != "V" {
		t.Errorf("label = %v, want V", raw["label"])
	}
	terms, ok := raw["terms"].([]any)
	if !ok || len(terms) != 2 {
		t.Fatalf("terms = %v, want 2 entries", raw["terms"])
	}
}

func TestWriteReadFile(t *testing.T) {
	e := Empty()
	c := mustBuild(t, LabelVertical,
		mustBuild(t, LabelHorizontal, e, e, e),
		mustBuild(t, LabelHorizontal, e, e, e))

	path := filepath.Join(t.TempDir(), "composition.json")
	if err := WriteFile(c, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !loaded.Equal(c) {
		t.Errorf("file round trip changed %v into %v", c, loaded)
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("ReadFile() error = nil, want error for missing file")
	}
}
