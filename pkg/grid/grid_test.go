package grid

import (
	"math"
	"testing"

	"github.com/matzehuels/tally/pkg/composition"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func mustBuild(t *testing.T, label composition.Label, terms ...*composition.Composition) *composition.Composition {
	t.Helper()
	c, err := composition.Build(label, terms)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return c
}

func TestFromComposition_EmptyTile(t *testing.T) {
	l := FromComposition(composition.Empty())

	if got := l.VertexCount(); got != 4 {
		t.Fatalf("VertexCount() = %d, want 4", got)
	}
	if got := len(l.Edges); got != 4 {
		t.Errorf("len(Edges) = %d, want 4", got)
	}
	if got := l.TileCount(); got != 1 {
		t.Errorf("TileCount() = %d, want 1", got)
	}

	want := []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	for i, p := range l.Vertices {
		if !approx(p.X, want[i].X) || !approx(p.Y, want[i].Y) {
			t.Errorf("vertex %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestFromComposition_HorizontalSplitsColumns(t *testing.T) {
	e := composition.Empty()
	l := FromComposition(mustBuild(t, composition.LabelHorizontal, e, e))

	if got := l.VertexCount(); got != 8 {
		t.Fatalf("VertexCount() = %d, want 8", got)
	}
	if got := l.TileCount(); got != 2 {
		t.Fatalf("TileCount() = %d, want 2", got)
	}

	// First tile occupies the left half, second the right.
	for _, idx := range l.Squares[0] {
		if l.Vertices[idx].X > 0.5+eps {
			t.Errorf("tile 0 vertex %v outside left column", l.Vertices[idx])
		}
	}
	for _, idx := range l.Squares[1] {
		if l.Vertices[idx].X < 0.5-eps {
			t.Errorf("tile 1 vertex %v outside right column", l.Vertices[idx])
		}
	}
}

func TestFromComposition_VerticalFirstChildOnTop(t *testing.T) {
	e := composition.Empty()
	l := FromComposition(mustBuild(t, composition.LabelVertical, e, e))

	for _, idx := range l.Squares[0] {
		if l.Vertices[idx].Y < 0.5-eps {
			t.Errorf("tile 0 vertex %v below the top row", l.Vertices[idx])
		}
	}
	for _, idx := range l.Squares[1] {
		if l.Vertices[idx].Y > 0.5+eps {
			t.Errorf("tile 1 vertex %v above the bottom row", l.Vertices[idx])
		}
	}
}

func TestFromComposition_TileCountMatchesComposition(t *testing.T) {
	e := composition.Empty()
	c := mustBuild(t, composition.LabelVertical,
		mustBuild(t, composition.LabelHorizontal, e, e, e),
		e,
		mustBuild(t, composition.LabelHorizontal, e, mustBuild(t, composition.LabelVertical, e, e)))

	l := FromComposition(c)

	if got, want := l.TileCount(), c.Tiles(); got != want {
		t.Errorf("TileCount() = %d, want %d", got, want)
	}
	if got, want := l.VertexCount(), 4*c.Tiles(); got != want {
		t.Errorf("VertexCount() = %d, want %d", got, want)
	}
	for _, p := range l.Vertices {
		if p.X < -eps || p.X > 1+eps || p.Y < -eps || p.Y > 1+eps {
			t.Errorf("vertex %v outside the unit frame", p)
		}
	}
}

func TestFromComposition_GridBands(t *testing.T) {
	e := composition.Empty()

	// H(V(e,e), V(e,e)) normalizes to a 2×2 grid; every tile must occupy
	// exactly one quarter of the frame.
	strip1 := mustBuild(t, composition.LabelVertical, e, e)
	strip2 := mustBuild(t, composition.LabelVertical, e, e)
	l := FromComposition(mustBuild(t, composition.LabelHorizontal, strip1, strip2))

	if got := l.TileCount(); got != 4 {
		t.Fatalf("TileCount() = %d, want 4", got)
	}
	for i, s := range l.Squares {
		minX, maxX := 1.0, 0.0
		minY, maxY := 1.0, 0.0
		for _, idx := range s {
			p := l.Vertices[idx]
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		if !approx(maxX-minX, 0.5) || !approx(maxY-minY, 0.5) {
			t.Errorf("tile %d spans %.2fx%.2f, want 0.50x0.50", i, maxX-minX, maxY-minY)
		}
	}
}
