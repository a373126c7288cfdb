// Package diagram encodes compositions as string diagrams.
//
// Every internal node of a composition becomes a box with one input wire per
// child and a single output wire; every empty tile becomes an identity input
// wire. The whole diagram therefore has one input wire per tile and a single
// output. The encoding is the contract handed to diagrammatic consumers (e.g.
// tensor-network or circuit backends); this package only produces the shape,
// never evaluates it.
package diagram

import (
	"github.com/matzehuels/tally/pkg/composition"
)

// Box is an internal composition node seen as a diagram box.
type Box struct {
	ID     int    `json:"id"`     // preorder index over internal nodes
	Name   string `json:"name"`   // "H" or "V"
	Arity  int    `json:"arity"`  // number of input wires
	Level  int    `json:"level"`  // distance from the root box
	Offset int    `json:"offset"` // tiles strictly left of the subtree
	Parent int    `json:"parent"` // consuming box ID, -1 for the root
}

// Wire is an input wire of the diagram, one per empty tile.
type Wire struct {
	Offset int `json:"offset"` // position among input wires, left to right
	Box    int `json:"box"`    // consuming box ID, -1 when the diagram is a bare wire
}

// Diagram is the string-diagram encoding of a composition.
type Diagram struct {
	Dom   int    `json:"dom"` // input wires, equal to the tile count
	Cod   int    `json:"cod"` // always 1
	Boxes []Box  `json:"boxes,omitempty"`
	Wires []Wire `json:"wires"`
}

// FromComposition encodes a composition as a string diagram. Boxes appear in
// preorder, wires in left-to-right tile order.
func FromComposition(c *composition.Composition) Diagram {
	d := Diagram{Cod: 1}
	encode(c, -1, 0, &d)
	d.Dom = len(d.Wires)
	return d
}

func encode(c *composition.Composition, parent, level int, d *Diagram) {
	if c.IsEmpty() {
		d.Wires = append(d.Wires, Wire{Offset: len(d.Wires), Box: parent})
		return
	}
	id := len(d.Boxes)
	d.Boxes = append(d.Boxes, Box{
		ID:     id,
		Name:   c.Label().String(),
		Arity:  c.Arity(),
		Level:  level,
		Offset: len(d.Wires),
		Parent: parent,
	})
	for _, term := range c.Terms() {
		encode(term, id, level+1, d)
	}
}

// Depth returns the number of box layers in the diagram: the deepest level
// plus one, or zero for a bare wire.
func (d Diagram) Depth() int {
	depth := 0
	for _, b := range d.Boxes {
		if b.Level+1 > depth {
			depth = b.Level + 1
		}
	}
	return depth
}
