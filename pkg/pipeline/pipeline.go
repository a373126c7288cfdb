// Package pipeline provides the core composition pipeline for tally.
//
// This package implements the complete generate → layout → render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Compose: Generate a random composition or load one from a record
//  2. Layout: Compute the grid geometry of the composition
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Random:  true,
//	    Seed:    42,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tally/pkg/cache"
	"github.com/matzehuels/tally/pkg/composition"
	"github.com/matzehuels/tally/pkg/grid"
)

// Default generation parameters shared by CLI and API.
const (
	DefaultSeed = uint64(42)
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Options contains all configuration for the composition pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Compose options. Either Record carries a serialized composition, or
	// Random requests generation from Seed.
	Record []byte `json:"record,omitempty"`
	Random bool   `json:"random,omitempty"`
	Seed   uint64 `json:"seed,omitempty"`

	// Generation constraints. Zero values select the composition package
	// defaults.
	MinDepth  int     `json:"min_depth,omitempty"`
	MaxDepth  int     `json:"max_depth,omitempty"`
	MaxArity  int     `json:"max_arity,omitempty"`
	ProbEmpty float64 `json:"prob_empty,omitempty"`

	// Layout options
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Diagram bool     `json:"diagram,omitempty"` // box-and-wire view instead of the grid
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Composition is the canonical composition.
	Composition *composition.Composition

	// Hash is the content hash of the canonical record.
	Hash string

	// Layout is the grid geometry.
	Layout grid.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Tiles       int
	Depth       int
	ComposeTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ComposeHit bool
	LayoutHit  bool
	RenderHit  bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompose checks required fields for the compose stage.
func (o *Options) ValidateForCompose() error {
	if len(o.Record) == 0 && !o.Random {
		return fmt.Errorf("record or random is required")
	}
	if len(o.Record) > 0 && o.Random {
		return fmt.Errorf("record and random are mutually exclusive")
	}

	if o.Random && o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for layout and rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// RandomOptions converts the generation constraints to composition options.
func (o *Options) RandomOptions() composition.RandomOptions {
	return composition.RandomOptions{
		MinDepth:  o.MinDepth,
		MaxDepth:  o.MaxDepth,
		MaxArity:  o.MaxArity,
		ProbEmpty: o.ProbEmpty,
	}
}

// CompositionKeyOpts returns cache key options for the compose stage.
func (o *Options) CompositionKeyOpts() cache.CompositionKeyOpts {
	return cache.CompositionKeyOpts{
		Seed:      o.Seed,
		MinDepth:  o.MinDepth,
		MaxDepth:  o.MaxDepth,
		MaxArity:  o.MaxArity,
		ProbEmpty: o.ProbEmpty,
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Scale:    o.Scale,
		Detailed: o.Detailed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Scale:    o.Scale,
		Detailed: o.Detailed,
		Diagram:  o.Diagram,
	}
}
