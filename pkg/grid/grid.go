// Package grid lays a canonical composition out as a planar graph of unit
// squares wired edge to edge.
//
// The layout lives in the unit frame [0,1]×[0,1]. The empty tile is a single
// square (a 4-cycle with one vertex per corner). A Horizontal node splits the
// frame into equal columns along the x axis, a Vertical node into equal rows
// along the y axis with the first child on top. Downstream renderers consume
// the vertex positions directly; see pkg/render for DOT and SVG output.
package grid

import (
	"github.com/matzehuels/tally/pkg/composition"
)

// Point is a position in the unit frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge connects two vertices by index.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Layout is the planar unit-square graph of a composition.
// Vertices are indexed densely from zero; Squares lists the four corner
// indices of every tile in bottom-left, top-left, top-right, bottom-right
// order.
type Layout struct {
	Vertices []Point  `json:"vertices"`
	Edges    []Edge   `json:"edges"`
	Squares  [][4]int `json:"squares"`
}

// VertexCount returns the number of vertices in the layout.
func (l Layout) VertexCount() int { return len(l.Vertices) }

// TileCount returns the number of unit squares in the layout.
func (l Layout) TileCount() int { return len(l.Squares) }

// FromComposition computes the layout of a composition. Tiles appear in
// left-to-right, top-to-bottom traversal order of the tree.
func FromComposition(c *composition.Composition) Layout {
	if c.IsEmpty() {
		return Layout{
			Vertices: []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
			Edges:    []Edge{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
			Squares:  [][4]int{{0, 1, 2, 3}},
		}
	}

	var out Layout
	n := c.Arity()
	for i, term := range c.Terms() {
		sub := FromComposition(term)
		offset := len(out.Vertices)
		for _, p := range sub.Vertices {
			out.Vertices = append(out.Vertices, place(c.Label(), i, n, p))
		}
		for _, e := range sub.Edges {
			out.Edges = append(out.Edges, Edge{From: e.From + offset, To: e.To + offset})
		}
		for _, s := range sub.Squares {
			out.Squares = append(out.Squares, [4]int{
				s[0] + offset, s[1] + offset, s[2] + offset, s[3] + offset,
			})
		}
	}
	return out
}

// place maps a point of child i into its band of the parent frame.
// Horizontal children occupy equal columns left to right; Vertical children
// occupy equal rows top to bottom, preserving orientation.
func place(label composition.Label, i, n int, p Point) Point {
	f := float64(n)
	switch label {
	case composition.LabelHorizontal:
		return Point{X: (float64(i) + p.X) / f, Y: p.Y}
	case composition.LabelVertical:
		return Point{X: p.X, Y: (float64(n-1-i) + p.Y) / f}
	}
	return p
}
