// Package composition implements the canonical tile-composition algebra.
//
// A composition is a finite tree describing how a rectangular frame is split
// into tiles: the leaf Empty is a single tile, and internal nodes arrange
// their children side by side (Horizontal) or stacked (Vertical). Trees are
// built exclusively through [Build] (or the [H] / [V] helpers), which rewrites
// every value into a unique canonical form under two laws:
//
//   - Associativity: a node whose children all carry its own label and a
//     common arity absorbs the grandchildren, so H(H(a,b), H(c,d)) and
//     H(a,b,c,d) are the same value.
//   - Grid transpose: a Horizontal node whose children are all Vertical with a
//     common arity is rewritten into the transposed Vertical-of-Horizontal
//     form. The rewrite is one-directional: Vertical-of-Horizontal grids are
//     left as they are.
//
// Because construction is bottom-up and children are already canonical, a
// single normalization pass suffices, and structural equality ([Composition.Equal])
// coincides with equality of shapes modulo both laws.
//
// The printed form uses `|` for binary Horizontal and `&` for binary Vertical
// composition, a prefix H(...)/V(...) for other arities, and `e` for the empty
// tile:
//
//	row, _ := composition.H(composition.Empty(), composition.Empty())
//	c, _ := composition.V(row, composition.Empty())
//	fmt.Println(c) // ((e | e) & e)
//
// Compositions are immutable after construction and safe for concurrent reads.
package composition
