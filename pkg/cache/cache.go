// Package cache caches generated compositions, grid layouts and rendered
// artifacts between pipeline runs.
//
// The [Cache] interface abstracts the storage backend:
//   - file: directory-based cache for CLI usage
//   - redis: shared cache for multi-instance server deployments
//   - null: no-op cache for tests or --no-cache runs
//
// Keys are produced by a [Keyer] so every pipeline stage hashes its inputs
// the same way regardless of entry point.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Compositions and layouts are cheap to
// recompute, artifacts less so.
const (
	TTLComposition = 24 * time.Hour
	TTLLayout      = 24 * time.Hour
	TTLArtifact    = 7 * 24 * time.Hour
)

// TTLs holds the per-stage expiries passed to [Cache.Set]. Zero fields fall
// back to the package defaults, so a partially filled value is usable.
type TTLs struct {
	Composition time.Duration
	Layout      time.Duration
	Artifact    time.Duration
}

// DefaultTTLs returns the per-stage default expiries.
func DefaultTTLs() TTLs {
	return TTLs{
		Composition: TTLComposition,
		Layout:      TTLLayout,
		Artifact:    TTLArtifact,
	}
}

// WithDefaults returns t with zero fields replaced by the package defaults.
func (t TTLs) WithDefaults() TTLs {
	d := DefaultTTLs()
	if t.Composition == 0 {
		t.Composition = d.Composition
	}
	if t.Layout == 0 {
		t.Layout = d.Layout
	}
	if t.Artifact == 0 {
		t.Artifact = d.Artifact
	}
	return t
}

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// CompositionKeyOpts distinguishes cached random generations.
type CompositionKeyOpts struct {
	Seed      uint64
	MinDepth  int
	MaxDepth  int
	MaxArity  int
	ProbEmpty float64
}

// LayoutKeyOpts distinguishes cached grid layouts.
type LayoutKeyOpts struct {
	Scale    float64
	Detailed bool
}

// ArtifactKeyOpts distinguishes rendered artifacts.
type ArtifactKeyOpts struct {
	Format   string
	Scale    float64
	Detailed bool
	Diagram  bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// CompositionKey keys a random generation by its seed and constraints.
	CompositionKey(opts CompositionKeyOpts) string

	// LayoutKey keys a grid layout by the canonical composition hash and
	// layout options.
	LayoutKey(compositionHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the canonical composition hash
	// and render options.
	ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// CompositionKey generates a key for a cached random generation.
func (k *DefaultKeyer) CompositionKey(opts CompositionKeyOpts) string {
	return hashKey("composition", opts)
}

// LayoutKey generates a key for a cached grid layout.
func (k *DefaultKeyer) LayoutKey(compositionHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", compositionHash, opts)
}

// ArtifactKey generates a key for a cached rendered artifact.
func (k *DefaultKeyer) ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", compositionHash, opts)
}
