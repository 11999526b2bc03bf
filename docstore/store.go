// Package docstore is the boundary to the backing document database. Every
// driver stores flat or shallowly nested field maps keyed by collection name
// and document id.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned when a caller passes an empty id.
	ErrInvalidID = errors.New("document id required")
	// ErrStoreUnavailable wraps connection failures at start-up.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// Document is one stored record. ID is never part of Data.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is implemented by every driver. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns ErrNotFound when the id is absent.
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	// Add stores data under a new generated id and returns it.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Set creates or fully replaces the document at id.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges fields into the document at id. Updating a missing id is
	// a silent no-op.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error
	Close(ctx context.Context) error
}

// withoutID returns data minus any "id" or "_id" key so the identifier lives
// only in the document key.
func withoutID(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if k == "id" || k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}
