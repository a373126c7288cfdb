package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tally/pkg/cache"
	"github.com/matzehuels/tally/pkg/composition"
	"github.com/matzehuels/tally/pkg/diagram"
	"github.com/matzehuels/tally/pkg/grid"
	"github.com/matzehuels/tally/pkg/observability"
	"github.com/matzehuels/tally/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTLs overrides the per-stage cache expiries. Zero fields keep the
	// package defaults.
	TTLs cache.TTLs
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTLs:   cache.DefaultTTLs(),
	}
}

// Execute runs the complete compose → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Compose
	composeStart := time.Now()
	observability.Pipeline().OnComposeStart(ctx, opts.Seed)
	c, composeHit, err := r.ComposeWithCacheInfo(ctx, opts)
	if err != nil {
		observability.Pipeline().OnComposeComplete(ctx, opts.Seed, 0, time.Since(composeStart), err)
		return nil, fmt.Errorf("compose: %w", err)
	}
	observability.Pipeline().OnComposeComplete(ctx, opts.Seed, c.Tiles(), time.Since(composeStart), nil)
	result.Composition = c
	result.Stats.ComposeTime = time.Since(composeStart)
	result.Stats.Tiles = c.Tiles()
	result.Stats.Depth = c.Depth()
	result.CacheInfo.ComposeHit = composeHit

	if data, err := composition.MarshalRecord(c); err == nil {
		result.Hash = cache.Hash(data)
	}

	r.Logger.Info("composed",
		"tiles", c.Tiles(),
		"depth", c.Depth(),
		"duration", result.Stats.ComposeTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, c.Tiles())
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, c, opts)
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"vertices", layout.VertexCount(),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, c, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComposeWithCacheInfo produces the composition with caching and returns
// cache hit info. Loading from a record bypasses the cache since decoding is
// already cheap.
func (r *Runner) ComposeWithCacheInfo(ctx context.Context, opts Options) (*composition.Composition, bool, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if len(opts.Record) > 0 {
		c, err := composition.UnmarshalRecord(opts.Record)
		if err != nil {
			return nil, false, err
		}
		return c, false, nil
	}

	cacheKey := r.Keyer.CompositionKey(opts.CompositionKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			c, err := composition.UnmarshalRecord(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "composition")
				return c, true, nil // Cache hit
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "composition")

	c, err := composition.Random(opts.Seed, opts.RandomOptions())
	if err != nil {
		return nil, false, err
	}

	if data, err := composition.MarshalRecord(c); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, r.TTLs.WithDefaults().Composition)
		observability.Cache().OnCacheSet(ctx, "composition", len(data))
	}

	return c, false, nil // Cache miss
}

// Compose is a convenience wrapper that discards the cache hit info.
func (r *Runner) Compose(ctx context.Context, opts Options) (*composition.Composition, error) {
	c, _, err := r.ComposeWithCacheInfo(ctx, opts)
	return c, err
}

// LayoutWithCacheInfo computes the grid layout with caching and returns
// cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, c *composition.Composition, opts Options) (grid.Layout, bool, error) {
	r.applyLogger(&opts)

	recordData, err := composition.MarshalRecord(c)
	if err != nil {
		return grid.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(recordData), opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached grid.Layout
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	layout := grid.FromComposition(c)

	if data, err := json.Marshal(layout); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, r.TTLs.WithDefaults().Layout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return layout, false, nil // Cache miss
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, c *composition.Composition, opts Options) (grid.Layout, error) {
	layout, _, err := r.LayoutWithCacheInfo(ctx, c, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout grid.Layout, c *composition.Composition, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := json.Marshal(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	cacheKeyHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := r.renderAll(layout, c, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, r.TTLs.WithDefaults().Artifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout grid.Layout, c *composition.Composition, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, c, opts)
	return artifacts, err
}

// renderAll produces every requested format.
func (r *Runner) renderAll(layout grid.Layout, c *composition.Composition, opts Options) (map[string][]byte, error) {
	var dot string
	if opts.Diagram {
		dot = diagram.ToDOT(diagram.FromComposition(c))
	} else {
		dot = render.ToDOT(layout, render.Options{Scale: opts.Scale, Detailed: opts.Detailed})
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.SVG(dot)
		case FormatPNG:
			data, err = render.PNG(dot)
		case FormatJSON:
			jsonOpts := []render.JSONOption{render.WithJSONComposition(c)}
			if opts.Random {
				jsonOpts = append(jsonOpts, render.WithJSONSeed(opts.Seed))
			}
			data, err = render.JSON(layout, jsonOpts...)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
