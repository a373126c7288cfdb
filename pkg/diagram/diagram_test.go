package diagram

import (
	"strings"
	"testing"

	"github.com/matzehuels/tally/pkg/composition"
)

func mustBuild(t *testing.T, label composition.Label, terms ...*composition.Composition) *composition.Composition {
	t.Helper()
	c, err := composition.Build(label, terms)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return c
}

func TestFromComposition_EmptyIsBareWire(t *testing.T) {
	d := FromComposition(composition.Empty())

	if d.Dom != 1 || d.Cod != 1 {
		t.Errorf("Dom, Cod = %d, %d, want 1, 1", d.Dom, d.Cod)
	}
	if len(d.Boxes) != 0 {
		t.Errorf("len(Boxes) = %d, want 0", len(d.Boxes))
	}
	if len(d.Wires) != 1 || d.Wires[0].Box != -1 {
		t.Errorf("Wires = %v, want one unconsumed wire", d.Wires)
	}
	if got := d.Depth(); got != 0 {
		t.Errorf("Depth() = %d, want 0", got)
	}
}

func TestFromComposition_SingleBox(t *testing.T) {
	e := composition.Empty()
	d := FromComposition(mustBuild(t, composition.LabelHorizontal, e, e, e))

	if d.Dom != 3 {
		t.Errorf("Dom = %d, want 3", d.Dom)
	}
	if len(d.Boxes) != 1 {
		t.Fatalf("len(Boxes) = %d, want 1", len(d.Boxes))
	}
	box := d.Boxes[0]
	if box.Name != "H" || box.Arity != 3 || box.Parent != -1 || box.Level != 0 {
		t.Errorf("Boxes[0] = %+v, want root H box of arity 3", box)
	}
	for i, w := range d.Wires {
		if w.Box != 0 {
			t.Errorf("wire %d feeds box %d, want 0", i, w.Box)
		}
	}
}

func TestFromComposition_NestedLevelsAndOffsets(t *testing.T) {
	e := composition.Empty()
	inner := mustBuild(t, composition.LabelHorizontal, e, e)
	d := FromComposition(mustBuild(t, composition.LabelVertical, inner, e))

	if d.Dom != 3 {
		t.Errorf("Dom = %d, want 3", d.Dom)
	}
	if len(d.Boxes) != 2 {
		t.Fatalf("len(Boxes) = %d, want 2", len(d.Boxes))
	}

	root, child := d.Boxes[0], d.Boxes[1]
	if root.Name != "V" || root.Level != 0 || root.Parent != -1 {
		t.Errorf("root box = %+v", root)
	}
	if child.Name != "H" || child.Level != 1 || child.Parent != root.ID || child.Offset != 0 {
		t.Errorf("child box = %+v", child)
	}

	// The two leftmost tiles feed the inner H box, the last one the root.
	wantBoxes := []int{child.ID, child.ID, root.ID}
	for i, w := range d.Wires {
		if w.Box != wantBoxes[i] {
			t.Errorf("wire %d feeds box %d, want %d", i, w.Box, wantBoxes[i])
		}
	}
	if got := d.Depth(); got != 2 {
		t.Errorf("Depth() = %d, want 2", got)
	}
}

func TestFromComposition_DomMatchesTiles(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		c, err := composition.Random(seed, composition.RandomOptions{MinDepth: 2, MaxDepth: 4, MaxArity: 4})
		if err != nil {
			t.Fatalf("Random(%d) error: %v", seed, err)
		}
		d := FromComposition(c)
		if d.Dom != c.Tiles() {
			t.Errorf("seed %d: Dom = %d, want %d", seed, d.Dom, c.Tiles())
		}
		if d.Cod != 1 {
			t.Errorf("seed %d: Cod = %d, want 1", seed, d.Cod)
		}
	}
}

func TestToDOT(t *testing.T) {
	e := composition.Empty()
	d := FromComposition(mustBuild(t, composition.LabelVertical,
		mustBuild(t, composition.LabelHorizontal, e, e), e))

	dot := ToDOT(d)

	for _, want := range []string{
		"digraph diagram {",
		`box0 [label="V"]`,
		`box1 [label="H"]`,
		"in0 -> box1;",
		"in2 -> box0;",
		"box1 -> box0;",
		"box0 -> out;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_BareWire(t *testing.T) {
	dot := ToDOT(FromComposition(composition.Empty()))
	if !strings.Contains(dot, "in0 -> out;") {
		t.Errorf("ToDOT() missing passthrough wire:\n%s", dot)
	}
}
