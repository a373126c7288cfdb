package composition

import (
	"fmt"
	"math/rand/v2"
)

// Defaults for [RandomOptions]. MaxArity is exclusive, so the default draws
// arities 2 and 3.
const (
	DefaultMinDepth  = 2
	DefaultMaxDepth  = 4
	DefaultProbEmpty = 0.25
	DefaultMaxArity  = 4
	DefaultTrials    = 64
)

// RandomOptions constrains [Random]. The zero value selects the defaults.
type RandomOptions struct {
	// MinDepth is the minimum depth of the generated tree. Zero means no
	// floor, so the empty tile becomes a possible outcome.
	MinDepth int
	// MaxDepth caps the tree height. A negative value means depth zero;
	// zero selects DefaultMaxDepth.
	MaxDepth int
	// ProbEmpty is the probability of drawing the empty tile at nodes that
	// have no minimum-depth floor. Zero selects DefaultProbEmpty; use a
	// negative value to disable empty draws entirely.
	ProbEmpty float64
	// MaxArity bounds node arity: draws come from [2, MaxArity), and any
	// candidate whose normalized max arity exceeds MaxArity is rejected.
	// Must be at least 3 for a non-empty draw range; zero selects
	// DefaultMaxArity.
	MaxArity int
	// Trials bounds the number of rejected candidates per node before
	// generation fails with ErrGenerationExhausted.
	Trials int
}

func (o *RandomOptions) applyDefaults() {
	if o.MinDepth < 0 {
		o.MinDepth = 0
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	} else if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.ProbEmpty == 0 {
		o.ProbEmpty = DefaultProbEmpty
	} else if o.ProbEmpty < 0 {
		o.ProbEmpty = 0
	}
	if o.MaxArity == 0 {
		o.MaxArity = DefaultMaxArity
	}
	if o.Trials == 0 {
		o.Trials = DefaultTrials
	}
}

// Random generates a canonical composition under depth and arity constraints,
// deterministically for a given seed. Each recursive call derives a child
// seed from (seed, trial, child index), so generation is restartable and
// independent of any global generator state.
//
// A node returns the empty tile when its depth budget is exhausted, or when it
// has no minimum-depth floor and a draw against ProbEmpty succeeds. Otherwise
// it repeatedly picks a label and an arity in [2, MaxArity), generates that
// many children with a decremented depth budget and no floor, builds the
// candidate, and accepts it only if its depth meets MinDepth and its max
// arity stays within MaxArity. Normalization can both shrink depth (flatten)
// and grow arity (splicing), so rejected candidates are expected; exhausting
// the trial budget returns [ErrGenerationExhausted].
func Random(seed uint64, opts RandomOptions) (*Composition, error) {
	opts.applyDefaults()
	if opts.MaxArity < 3 {
		return nil, fmt.Errorf("%w: max arity %d leaves no arity in [2, %d)",
			ErrGenerationExhausted, opts.MaxArity, opts.MaxArity)
	}
	if opts.MinDepth > opts.MaxDepth {
		return nil, fmt.Errorf("%w: min depth %d exceeds max depth %d",
			ErrGenerationExhausted, opts.MinDepth, opts.MaxDepth)
	}
	return randomTree(seed, opts.MinDepth, opts.MaxDepth, opts)
}

func randomTree(seed uint64, minDepth, maxDepth int, opts RandomOptions) (*Composition, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	if maxDepth == 0 || (minDepth <= 0 && rng.Float64() <= opts.ProbEmpty) {
		return Empty(), nil
	}

	for trial := 0; trial < opts.Trials; trial++ {
		label := LabelHorizontal
		if rng.IntN(2) == 1 {
			label = LabelVertical
		}
		arity := 2 + rng.IntN(opts.MaxArity-2)

		terms := make([]*Composition, arity)
		for i := range terms {
			child, err := randomTree(deriveSeed(seed, trial, i), 0, maxDepth-1, opts)
			if err != nil {
				return nil, err
			}
			terms[i] = child
		}

		c, err := Build(label, terms)
		if err != nil {
			return nil, err
		}
		if c.Depth() >= minDepth && c.MaxArity() <= opts.MaxArity {
			return c, nil
		}
	}

	return nil, fmt.Errorf("%w: no tree with depth >= %d and max arity <= %d in %d trials",
		ErrGenerationExhausted, minDepth, opts.MaxArity, opts.Trials)
}

// deriveSeed mixes a parent seed with the trial and child index using
// splitmix64 finalization, so sibling subtrees draw from independent streams.
func deriveSeed(seed uint64, trial, child int) uint64 {
	x := seed ^ uint64(trial+1)*0xbf58476d1ce4e5b9 ^ uint64(child+1)*0x94d049bb133111eb
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
