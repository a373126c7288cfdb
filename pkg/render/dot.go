package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/tally/pkg/grid"
)

// Default scale of the unit frame, in inches.
const DefaultScale = 5.0

// Options configures grid-layout DOT generation.
type Options struct {
	// Scale is the side length of the unit frame in inches. Zero selects
	// DefaultScale.
	Scale float64
	// Detailed labels vertices with their index instead of drawing points.
	Detailed bool
}

// ToDOT converts a grid layout to Graphviz DOT with pinned positions.
// The graph is undirected and must be rendered with the neato engine
// ([EngineNeato]) so the `pos="x,y!"` pins are honored.
func ToDOT(l grid.Layout, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("graph tiles {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Detailed {
		buf.WriteString("  node [shape=circle, fontsize=10, width=0.25, fixedsize=true];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.04];\n")
	}
	buf.WriteString("\n")

	for i, p := range l.Vertices {
		attrs := fmt.Sprintf("pos=%q", fmt.Sprintf("%.4f,%.4f!", p.X*scale, p.Y*scale))
		if opts.Detailed {
			attrs = fmt.Sprintf("label=%q, %s", fmt.Sprintf("%d", i), attrs)
		}
		fmt.Fprintf(&buf, "  v%d [%s];\n", i, attrs)
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  v%d -- v%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}
