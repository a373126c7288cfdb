package composition

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidShape is returned by [Build] when the label and terms violate
	// the constructor preconditions: Empty admits no terms, while Horizontal
	// and Vertical require at least one.
	ErrInvalidShape = errors.New("invalid composition shape")

	// ErrMalformedRecord is returned by [FromRecord] and [UnmarshalRecord]
	// when a record carries an unknown label tag or a shape that the
	// constructor rejects (e.g. an "H" record with no terms).
	ErrMalformedRecord = errors.New("malformed composition record")

	// ErrGenerationExhausted is returned by [Random] when no tree satisfying
	// the depth and arity constraints was found within the trial budget.
	// It signals an infeasible constraint combination, not a transient fault.
	ErrGenerationExhausted = errors.New("random generation exhausted")
)

// Label discriminates the three node kinds of a composition tree.
type Label uint8

const (
	// LabelEmpty marks the leaf tile. Only compositions without terms carry it.
	LabelEmpty Label = iota
	// LabelHorizontal arranges child tiles side by side along the x axis.
	LabelHorizontal
	// LabelVertical stacks child tiles top to bottom along the y axis.
	LabelVertical
)

// String returns the single-letter tag used in printed forms and records:
// "e", "H" or "V".
func (l Label) String() string {
	switch l {
	case LabelHorizontal:
		return "H"
	case LabelVertical:
		return "V"
	case LabelEmpty:
		return "e"
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// Composition is an immutable tile-arrangement tree in canonical form.
// The zero value is the empty tile; all other values must come from [Build],
// [H] or [V], which enforce the canonical-form invariants. A Composition is
// never mutated after construction and may be shared freely across goroutines.
type Composition struct {
	label Label
	terms []*Composition
}

// empty is the shared leaf value returned by [Empty].
// Sharing is safe because compositions are immutable.
var empty = &Composition{}

// Empty returns the empty tile, the unit of both composition operators.
func Empty() *Composition { return empty }

// Build constructs a composition from a label and an ordered list of child
// compositions, normalizing the result into canonical form.
//
// Preconditions: LabelEmpty requires no terms; LabelHorizontal and
// LabelVertical require at least one non-nil term. Violations return
// [ErrInvalidShape], never a silently corrected value.
//
// Normalization is a single deterministic pass. When every child carries one
// common label L and one common arity:
//
//   - label == L splices the grandchildren into this node (associativity), so
//     same-label runs of uniform shape collapse to one level;
//   - (label, L) == (Horizontal, Vertical) transposes the n×k grid of cells
//     into the Vertical-of-Horizontal form. The mirror (Vertical, Horizontal)
//     case is deliberately not rewritten.
//
// One pass suffices because children passed in are themselves results of
// Build and therefore already canonical.
func Build(label Label, terms []*Composition) (*Composition, error) {
	switch label {
	case LabelEmpty:
		if len(terms) != 0 {
			return nil, fmt.Errorf("%w: empty composition admits no terms, got %d", ErrInvalidShape, len(terms))
		}
		return empty, nil
	case LabelHorizontal, LabelVertical:
		if len(terms) == 0 {
			return nil, fmt.Errorf("%w: %s composition requires at least one term", ErrInvalidShape, label)
		}
	default:
		return nil, fmt.Errorf("%w: unknown label %d", ErrInvalidShape, uint8(label))
	}
	for i, t := range terms {
		if t == nil {
			return nil, fmt.Errorf("%w: term %d is nil", ErrInvalidShape, i)
		}
	}

	terms = slices.Clone(terms)
	childLabel, childArity, uniform := uniformShape(terms)
	if !uniform {
		return &Composition{label: label, terms: terms}, nil
	}

	if childLabel == label {
		flat := make([]*Composition, 0, len(terms)*childArity)
		for _, t := range terms {
			flat = append(flat, t.terms...)
		}
		return &Composition{label: label, terms: flat}, nil
	}

	if label == LabelHorizontal && childLabel == LabelVertical {
		rows := make([]*Composition, childArity)
		for i := range childArity {
			cells := make([]*Composition, len(terms))
			for j, t := range terms {
				cells[j] = t.terms[i]
			}
			row, err := Build(LabelHorizontal, cells)
			if err != nil {
				return nil, err
			}
			rows[i] = row
		}
		return &Composition{label: LabelVertical, terms: rows}, nil
	}

	return &Composition{label: label, terms: terms}, nil
}

// uniformShape reports whether all terms share one label and one arity.
func uniformShape(terms []*Composition) (Label, int, bool) {
	label, arity := terms[0].label, len(terms[0].terms)
	for _, t := range terms[1:] {
		if t.label != label || len(t.terms) != arity {
			return 0, 0, false
		}
	}
	return label, arity, true
}

// H composes tiles horizontally: Build(LabelHorizontal, terms).
func H(terms ...*Composition) (*Composition, error) {
	return Build(LabelHorizontal, terms)
}

// V composes tiles vertically: Build(LabelVertical, terms).
func V(terms ...*Composition) (*Composition, error) {
	return Build(LabelVertical, terms)
}

// Label returns the node's discriminant.
func (c *Composition) Label() Label { return c.label }

// Arity returns the number of direct children.
func (c *Composition) Arity() int { return len(c.terms) }

// Terms returns the ordered children as a fresh slice. The children
// themselves are immutable and shared with the receiver.
func (c *Composition) Terms() []*Composition { return slices.Clone(c.terms) }

// Term returns the i-th child.
func (c *Composition) Term(i int) *Composition { return c.terms[i] }

// IsEmpty reports whether c is the empty tile.
func (c *Composition) IsEmpty() bool { return len(c.terms) == 0 }

// Depth returns the height of the tree: 0 for the empty tile, otherwise one
// more than the deepest child.
func (c *Composition) Depth() int {
	depth := 0
	for _, t := range c.terms {
		if d := t.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// MaxArity returns the largest number of direct children at any node of the
// tree, including the root. The empty tile has max arity 0.
func (c *Composition) MaxArity() int {
	arity := len(c.terms)
	for _, t := range c.terms {
		if a := t.MaxArity(); a > arity {
			arity = a
		}
	}
	return arity
}

// Size returns the total number of nodes in the tree, leaves included.
func (c *Composition) Size() int {
	size := 1
	for _, t := range c.terms {
		size += t.Size()
	}
	return size
}

// Tiles returns the number of empty tiles in the arrangement.
func (c *Composition) Tiles() int {
	if c.IsEmpty() {
		return 1
	}
	tiles := 0
	for _, t := range c.terms {
		tiles += t.Tiles()
	}
	return tiles
}

// Equal reports structural equality: same label and termwise-equal children.
// Because every reachable value is canonical, this coincides with equality of
// the underlying tile arrangements modulo associativity and the grid law.
func (c *Composition) Equal(o *Composition) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.label != o.label || len(c.terms) != len(o.terms) {
		return false
	}
	for i := range c.terms {
		if !c.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// Rotate returns the composition with Horizontal and Vertical labels swapped
// throughout the tree, rebuilding bottom-up so the result is canonical.
// Rotating is not an involution on canonical forms: the grid law is
// one-directional, so a rotated grid may normalize into a different shape.
func (c *Composition) Rotate() (*Composition, error) {
	if c.IsEmpty() {
		return empty, nil
	}
	label := LabelHorizontal
	if c.label == LabelHorizontal {
		label = LabelVertical
	}
	terms := make([]*Composition, len(c.terms))
	for i, t := range c.terms {
		rotated, err := t.Rotate()
		if err != nil {
			return nil, err
		}
		terms[i] = rotated
	}
	return Build(label, terms)
}

// String returns the printed form: "e" for the empty tile, the infix form
// "(a | b)" / "(a & b)" for binary nodes, and the prefix form "H(a, b, c)" /
// "V(a, b, c)" for other arities. The syntax is stable and used in golden
// tests, but the core never parses it back.
func (c *Composition) String() string {
	if len(c.terms) == 0 {
		return "e"
	}
	if len(c.terms) == 2 {
		symbol := "|"
		if c.label == LabelVertical {
			symbol = "&"
		}
		return fmt.Sprintf("(%s %s %s)", c.terms[0], symbol, c.terms[1])
	}
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s(%s)", c.label, strings.Join(parts, ", "))
}
