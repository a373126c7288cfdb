// Package render turns grid layouts and diagrams into output artifacts.
//
// Layouts from pkg/grid become undirected DOT graphs with pinned vertex
// positions, rendered by the neato engine so tiles keep their computed
// geometry. Diagrams from pkg/diagram ship their own DOT conversion and use
// the default dot engine. Both DOT flavors convert to SVG and PNG through
// goccy/go-graphviz; the JSON sink exports a layout together with its
// canonical record for external tools.
//
// The layout engine is selected by the DOT `layout` attribute: grid DOT pins
// positions and carries layout=neato, diagram DOT relies on the default.
//
//	dot := render.ToDOT(grid.FromComposition(c), render.Options{})
//	svg, err := render.SVG(dot)
package render
