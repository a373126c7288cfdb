package diagram

import (
	"bytes"
	"fmt"
)

// ToDOT converts a diagram to Graphviz DOT, input wires at the top and the
// single output at the bottom. Boxes are rectangles, wires are points. The
// result renders with the default dot engine; see pkg/render for SVG and PNG
// conversion.
func ToDOT(d Diagram) string {
	var buf bytes.Buffer
	buf.WriteString("digraph diagram {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18];\n")
	buf.WriteString("\n")

	for _, w := range d.Wires {
		fmt.Fprintf(&buf, "  in%d [shape=point, width=0.08];\n", w.Offset)
	}
	for _, b := range d.Boxes {
		fmt.Fprintf(&buf, "  box%d [label=%q];\n", b.ID, b.Name)
	}
	buf.WriteString("  out [shape=point, width=0.08];\n")
	buf.WriteString("\n")

	for _, w := range d.Wires {
		if w.Box < 0 {
			fmt.Fprintf(&buf, "  in%d -> out;\n", w.Offset)
			continue
		}
		fmt.Fprintf(&buf, "  in%d -> box%d;\n", w.Offset, w.Box)
	}
	for _, b := range d.Boxes {
		if b.Parent < 0 {
			fmt.Fprintf(&buf, "  box%d -> out;\n", b.ID)
			continue
		}
		fmt.Fprintf(&buf, "  box%d -> box%d;\n", b.ID, b.Parent)
	}

	buf.WriteString("}\n")
	return buf.String()
}
