package composition

import (
	"errors"
	"testing"
)

// mustBuild builds a composition or fails the test.
func mustBuild(t *testing.T, label Label, terms ...*Composition) *Composition {
	t.Helper()
	c, err := Build(label, terms)
	if err != nil {
		t.Fatalf("Build(%v, %d terms) error: %v", label, len(terms), err)
	}
	return c
}

func TestBuild_EmptyLeaf(t *testing.T) {
	c := mustBuild(t, LabelEmpty)

	if !c.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
	if c.Label() != LabelEmpty {
		t.Errorf("Label() = %v, want LabelEmpty", c.Label())
	}
	if got := c.Depth(); got != 0 {
		t.Errorf("Depth() = %d, want 0", got)
	}
	if got := c.MaxArity(); got != 0 {
		t.Errorf("MaxArity() = %d, want 0", got)
	}
	if !c.Equal(Empty()) {
		t.Error("Build(LabelEmpty) not equal to Empty()")
	}
}

func TestBuild_InvalidShape(t *testing.T) {
	e := Empty()

	tests := []struct {
		name  string
		label Label
		terms []*Composition
	}{
		{"horizontal without terms", LabelHorizontal, nil},
		{"vertical without terms", LabelVertical, nil},
		{"empty with terms", LabelEmpty, []*Composition{e}},
		{"nil term", LabelHorizontal, []*Composition{e, nil}},
		{"unknown label", Label(42), []*Composition{e}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.label, tt.terms)
			if !errors.Is(err, ErrInvalidShape) {
				t.Errorf("Build() error = %v, want ErrInvalidShape", err)
			}
		})
	}
}

func TestBuild_FlattensSameLabel(t *testing.T) {
	e := Empty()

	for _, label := range []Label{LabelHorizontal, LabelVertical} {
		t.Run(label.String(), func(t *testing.T) {
			nested := mustBuild(t, label,
				mustBuild(t, label, e, e),
				mustBuild(t, label, e, e))
			flat := mustBuild(t, label, e, e, e, e)

			if !nested.Equal(flat) {
				t.Errorf("%v != %v", nested, flat)
			}
			if got := nested.Arity(); got != 4 {
				t.Errorf("Arity() = %d, want 4", got)
			}
			if got := nested.Depth(); got != 1 {
				t.Errorf("Depth() = %d, want 1", got)
			}
		})
	}
}

func TestBuild_FlattensUniformRunsOfAnyArity(t *testing.T) {
	e := Empty()

	// H(H(e,e,e), H(e,e,e)) == H(e×6) == H(H(e,e), H(e,e), H(e,e))
	a := mustBuild(t, LabelHorizontal,
		mustBuild(t, LabelHorizontal, e, e, e),
		mustBuild(t, LabelHorizontal, e, e, e))
	b := mustBuild(t, LabelHorizontal, e, e, e, e, e, e)
	c := mustBuild(t, LabelHorizontal,
		mustBuild(t, LabelHorizontal, e, e),
		mustBuild(t, LabelHorizontal, e, e),
		mustBuild(t, LabelHorizontal, e, e))

	if !a.Equal(b) || !b.Equal(c) {
		t.Errorf("uniform runs did not flatten: %v, %v, %v", a, b, c)
	}
}

func TestBuild_FlattenRequiresUniformShape(t *testing.T) {
	e := Empty()

	// Children share the parent label but not a common arity, so the run is
	// not spliced: the construction rule only rewrites uniform grids.
	c := mustBuild(t, LabelHorizontal,
		mustBuild(t, LabelHorizontal, e, e),
		mustBuild(t, LabelHorizontal, e, e, e))

	if got := c.Arity(); got != 2 {
		t.Errorf("Arity() = %d, want 2 (no flatten for mixed arities)", got)
	}
	if got := c.Depth(); got != 2 {
		t.Errorf("Depth() = %d, want 2", got)
	}
}

func TestBuild_TransposesHorizontalOfVertical(t *testing.T) {
	e := Empty()

	// H(V(e,e), V(e,e)) == V(H(e,e), H(e,e)): a 2×2 grid built column-wise
	// normalizes into the row-wise form.
	grid := mustBuild(t, LabelHorizontal,
		mustBuild(t, LabelVertical, e, e),
		mustBuild(t, LabelVertical, e, e))
	want := mustBuild(t, LabelVertical,
		mustBuild(t, LabelHorizontal, e, e),
		mustBuild(t, LabelHorizontal, e, e))

	if grid.Label() != LabelVertical {
		t.Errorf("Label() = %v, want LabelVertical after transpose", grid.Label())
	}
	if !grid.Equal(want) {
		t.Errorf("%v != %v", grid, want)
	}
}

func TestBuild_TransposesRectangularGrid(t *testing.T) {
	e := Empty()

	// Three vertical strips of two tiles each become two rows of three.
	grid := mustBuild(t, LabelHorizontal,
		mustBuild(t, LabelVertical, e, e),
		mustBuild(t, LabelVertical, e, e),
		mustBuild(t, LabelVertical, e, e))
	want := mustBuild(t, LabelVertical,
		mustBuild(t, LabelHorizontal, e, e, e),
		mustBuild(t, LabelHorizontal, e, e, e))

	if !grid.Equal(want) {
		t.Errorf("%v != %v", grid, want)
	}
}

func TestBuild_MirrorGridIsNotTransposed(t *testing.T) {
	e := Empty()

	// The rewrite is one-directional: Vertical of same-shape Horizontal
	// children stays as constructed.
	c := mustBuild(t, LabelVertical,
		mustBuild(t, LabelHorizontal, e, e),
		mustBuild(t, LabelHorizontal, e, e))

	if c.Label() != LabelVertical {
		t.Errorf("Label() = %v, want LabelVertical", c.Label())
	}
	for i, term := range c.Terms() {
		if term.Label() != LabelHorizontal {
			t.Errorf("term %d label = %v, want LabelHorizontal", i, term.Label())
		}
	}
}

func TestBuild_IdempotentOnCanonicalForm(t *testing.T) {
	e := Empty()

	canonical := []*Composition{
		e,
		mustBuild(t, LabelHorizontal, e, e, e, e),
		mustBuild(t, LabelVertical,
			mustBuild(t, LabelHorizontal, e, e, e),
			e,
			mustBuild(t, LabelHorizontal, e, mustBuild(t, LabelVertical, e, e))),
	}
	for _, c := range canonical {
		rebuilt, err := Build(c.Label(), c.Terms())
		if err != nil {
			t.Fatalf("Build(%v) error: %v", c, err)
		}
		if !rebuilt.Equal(c) {
			t.Errorf("rebuild changed %v into %v", c, rebuilt)
		}
	}
}

func TestBuild_MixedChildrenKeptAsGiven(t *testing.T) {
	e := Empty()

	strip := mustBuild(t, LabelVertical, e, e)
	c := mustBuild(t, LabelHorizontal, e, strip)

	if got := c.Arity(); got != 2 {
		t.Errorf("Arity() = %d, want 2", got)
	}
	if c.Term(0) != e || !c.Term(1).Equal(strip) {
		t.Errorf("terms reordered or rewritten: %v", c)
	}
}

func TestEqual(t *testing.T) {
	e := Empty()
	a := mustBuild(t, LabelHorizontal, e, e)
	b := mustBuild(t, LabelHorizontal, e, e)
	c := mustBuild(t, LabelVertical, e, e)
	d := mustBuild(t, LabelHorizontal, e, e, e)

	if !a.Equal(b) {
		t.Error("identical shapes not equal")
	}
	if a.Equal(c) {
		t.Error("different labels compare equal")
	}
	if a.Equal(d) {
		t.Error("different arities compare equal")
	}
	if a.Equal(nil) {
		t.Error("non-nil equals nil")
	}
}

func TestMetrics(t *testing.T) {
	e := Empty()
	inner := mustBuild(t, LabelVertical, e, e)
	mid := mustBuild(t, LabelHorizontal, e, inner)
	c := mustBuild(t, LabelVertical,
		mustBuild(t, LabelHorizontal, e, e, e), e, mid)

	if got := c.Depth(); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
	if got := c.MaxArity(); got != 3 {
		t.Errorf("MaxArity() = %d, want 3", got)
	}
	if got := c.Tiles(); got != 7 {
		t.Errorf("Tiles() = %d, want 7", got)
	}
	if got := c.Size(); got != 11 {
		t.Errorf("Size() = %d, want 11", got)
	}
}

func TestString_FixedScenario(t *testing.T) {
	e := Empty()

	row := mustBuild(t, LabelHorizontal, e, e, e)
	mid := mustBuild(t, LabelHorizontal, e, mustBuild(t, LabelVertical, e, e))
	c := mustBuild(t, LabelVertical, row, e, mid)

	const want = "V(H(e, e, e), e, (e | (e & e)))"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	// The printed scenario must also survive its own record round trip.
	decoded, err := FromRecord(c.Record())
	if err != nil {
		t.Fatalf("FromRecord() error: %v", err)
	}
	if !decoded.Equal(c) {
		t.Errorf("round trip changed %v into %v", c, decoded)
	}
}

func TestRotate(t *testing.T) {
	e := Empty()

	rotated, err := e.Rotate()
	if err != nil {
		t.Fatalf("Rotate() error: %v", err)
	}
	if !rotated.IsEmpty() {
		t.Errorf("empty tile rotated into %v", rotated)
	}

	row := mustBuild(t, LabelHorizontal, e, e)
	rotated, err = row.Rotate()
	if err != nil {
		t.Fatalf("Rotate() error: %v", err)
	}
	if want := mustBuild(t, LabelVertical, e, e); !rotated.Equal(want) {
		t.Errorf("Rotate() = %v, want %v", rotated, want)
	}
}

func TestRotate_RenormalizesGrids(t *testing.T) {
	e := Empty()

	// V(H(e,e), H(e,e)) rotates term-wise into H(V(e,e), V(e,e)), which the
	// constructor transposes straight back: the grid law makes rotation
	// collapse both orientations onto the same canonical value.
	grid := mustBuild(t, LabelVertical,
		mustBuild(t, LabelHorizontal, e, e),
		mustBuild(t, LabelHorizontal, e, e))
	rotated, err := grid.Rotate()
	if err != nil {
		t.Fatalf("Rotate() error: %v", err)
	}
	if !rotated.Equal(grid) {
		t.Errorf("Rotate() = %v, want %v", rotated, grid)
	}
}

func TestLabelString(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{LabelEmpty, "e"},
		{LabelHorizontal, "H"},
		{LabelVertical, "V"},
	}
	for _, tt := range tests {
		if got := tt.label.String(); got != tt.want {
			t.Errorf("Label(%d).String() = %q, want %q", tt.label, got, tt.want)
		}
	}
}
