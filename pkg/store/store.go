// Package store persists canonical compositions so they can be retrieved,
// re-rendered and listed later.
//
// Two backends implement [Store]: an in-memory store for tests and
// single-process runs, and a MongoDB store for server deployments. Both
// persist the canonical record form, so anything loaded back is already
// normalized.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tally/pkg/composition"
)

// ErrNotFound indicates no composition exists with the requested ID.
var ErrNotFound = errors.New("composition not found")

// Document is a persisted composition together with derived metrics.
// The metrics are denormalized at save time so listings don't need to
// rebuild the tree.
type Document struct {
	ID        string             `json:"id" bson:"_id"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Record    composition.Record `json:"record" bson:"record"`
	Printed   string             `json:"printed" bson:"printed"`
	Depth     int                `json:"depth" bson:"depth"`
	MaxArity  int                `json:"max_arity" bson:"max_arity"`
	Tiles     int                `json:"tiles" bson:"tiles"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Composition rebuilds the canonical tree from the stored record.
func (d *Document) Composition() (*composition.Composition, error) {
	return composition.FromRecord(d.Record)
}

// NewDocument creates a document for a composition with a fresh ID and
// populated metrics.
func NewDocument(c *composition.Composition, name string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.NewString(),
		Name:      name,
		Record:    c.Record(),
		Printed:   c.String(),
		Depth:     c.Depth(),
		MaxArity:  c.MaxArity(),
		Tiles:     c.Tiles(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store is the persistence interface shared by all backends.
type Store interface {
	// Save inserts or replaces a document keyed by its ID.
	Save(ctx context.Context, doc *Document) error

	// Get retrieves a document by ID, returning [ErrNotFound] when absent.
	Get(ctx context.Context, id string) (*Document, error)

	// List returns documents ordered by creation time, newest first.
	// A limit of 0 returns all documents.
	List(ctx context.Context, limit int) ([]*Document, error)

	// Delete removes a document, returning [ErrNotFound] when absent.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
