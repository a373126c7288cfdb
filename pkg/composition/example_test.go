package composition_test

import (
	"fmt"

	"github.com/matzehuels/tally/pkg/composition"
)

func ExampleBuild() {
	e := composition.Empty()

	// Same-label runs of uniform shape flatten to one level.
	left, _ := composition.H(e, e)
	right, _ := composition.H(e, e)
	c, _ := composition.H(left, right)
	fmt.Println(c)
	// Output: H(e, e, e, e)
}

func ExampleBuild_gridTranspose() {
	e := composition.Empty()

	// Two vertical strips side by side normalize into two horizontal rows.
	strip1, _ := composition.V(e, e)
	strip2, _ := composition.V(e, e)
	grid, _ := composition.H(strip1, strip2)
	fmt.Println(grid)
	// Output: ((e | e) & (e | e))
}

func ExampleComposition_String() {
	e := composition.Empty()

	row, _ := composition.H(e, e, e)
	inner, _ := composition.V(e, e)
	mid, _ := composition.H(e, inner)
	c, _ := composition.V(row, e, mid)
	fmt.Println(c)
	// Output: V(H(e, e, e), e, (e | (e & e)))
}

func ExampleFromRecord() {
	c, _ := composition.UnmarshalRecord([]byte(
		`{"label":"V","terms":[{"label":"e"},{"label":"e"}]}`))
	fmt.Println(c.Depth(), c)
	// Output: 1 (e & e)
}
