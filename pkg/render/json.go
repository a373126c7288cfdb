package render

import (
	"encoding/json"

	"github.com/matzehuels/tally/pkg/composition"
	"github.com/matzehuels/tally/pkg/grid"
)

// JSONOption configures JSON export via [JSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	comp *composition.Composition
	seed uint64
	rand bool
}

// WithJSONComposition attaches the source composition, so the export carries
// its canonical record, printed form and metrics alongside the geometry.
func WithJSONComposition(c *composition.Composition) JSONOption {
	return func(r *jsonRenderer) { r.comp = c }
}

// WithJSONSeed records the generation seed in the output, enabling
// reproducible re-generation of randomly drawn compositions.
func WithJSONSeed(seed uint64) JSONOption {
	return func(r *jsonRenderer) { r.rand = true; r.seed = seed }
}

type jsonOutput struct {
	Vertices []grid.Point        `json:"vertices"`
	Edges    []grid.Edge         `json:"edges"`
	Squares  [][4]int            `json:"squares"`
	Record   *composition.Record `json:"record,omitempty"`
	Printed  string              `json:"printed,omitempty"`
	Depth    int                 `json:"depth,omitempty"`
	MaxArity int                 `json:"max_arity,omitempty"`
	Tiles    int                 `json:"tiles,omitempty"`
	Seed     uint64              `json:"seed,omitempty"`
	Random   bool                `json:"random,omitempty"`
}

// JSON exports a grid layout as a pretty-printed JSON document. With
// [WithJSONComposition] the document also carries the canonical record, so it
// can be re-imported and re-rendered identically.
func JSON(l grid.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Vertices: l.Vertices,
		Edges:    l.Edges,
		Squares:  l.Squares,
		Seed:     r.seed,
		Random:   r.rand,
	}
	if r.comp != nil {
		rec := r.comp.Record()
		out.Record = &rec
		out.Printed = r.comp.String()
		out.Depth = r.comp.Depth()
		out.MaxArity = r.comp.MaxArity()
		out.Tiles = r.comp.Tiles()
	}

	return json.MarshalIndent(out, "", "  ")
}
