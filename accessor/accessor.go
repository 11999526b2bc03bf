// Package accessor is the only path from application code to the document
// store. Every operation is total: store errors and driver panics are logged,
// counted and handed back as values, never propagated as panics.
//
// Reads are generic over the record type at the call site:
//
//	res := accessor.List[models.Tour](ctx, acc, "tours")
//	if res.Failed() { ... } // empty vs failed is explicit
package accessor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tourdesk/docstore"
	"tourdesk/metrics"
)

type Accessor struct {
	store docstore.Store
	log   *zap.Logger
}

func New(store docstore.Store, log *zap.Logger) *Accessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accessor{store: store, log: log.Named("accessor")}
}

// Result carries a value together with the error that replaced it, if any.
// On failure Value holds the empty value for its type (an empty, non-nil
// slice for List).
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) Failed() bool { return r.Err != nil }

// guard runs fn, converting a panic into an error and recording the outcome.
func (a *Accessor) guard(collection, op string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s %s: store panic: %v", op, collection, p)
		}
		metrics.ObserveStore(collection, op, start, err)
		if err != nil {
			a.log.Error("store operation failed",
				zap.String("op", op),
				zap.String("collection", collection),
				zap.Error(err))
		}
	}()
	return fn()
}

// List fetches every document in collection, each decoded into T with its
// identifier merged in as "id". Records that cannot be decoded into T are
// skipped with a warning.
func List[T any](ctx context.Context, a *Accessor, collection string) Result[[]T] {
	var docs []docstore.Document
	err := a.guard(collection, "list", func() error {
		var err error
		docs, err = a.store.List(ctx, collection)
		return err
	})
	if err != nil {
		return Result[[]T]{Value: []T{}, Err: err}
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](doc)
		if err != nil {
			a.log.Warn("skipping undecodable document",
				zap.String("collection", collection),
				zap.String("id", doc.ID),
				zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return Result[[]T]{Value: out}
}

// Get fetches one document. A missing id yields a nil Value and nil Err.
func Get[T any](ctx context.Context, a *Accessor, collection, id string) Result[*T] {
	var doc docstore.Document
	missing := false
	err := a.guard(collection, "get", func() error {
		var err error
		doc, err = a.store.Get(ctx, collection, id)
		if errors.Is(err, docstore.ErrNotFound) {
			missing = true
			return nil
		}
		return err
	})
	if err != nil || missing {
		return Result[*T]{Err: err}
	}

	v, err := decode[T](doc)
	if err != nil {
		a.log.Error("document decode failed",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		return Result[*T]{Err: err}
	}
	return Result[*T]{Value: &v}
}

// Add stores data under a store-generated id. Value is "" on failure.
func Add(ctx context.Context, a *Accessor, collection string, data any) Result[string] {
	var id string
	err := a.guard(collection, "add", func() error {
		fields, err := toFields(data)
		if err != nil {
			return err
		}
		id, err = a.store.Add(ctx, collection, fields)
		return err
	})
	if err != nil {
		return Result[string]{Err: err}
	}
	return Result[string]{Value: id}
}

// Set creates or fully overwrites the document at id.
func Set(ctx context.Context, a *Accessor, collection, id string, data any) error {
	return a.guard(collection, "set", func() error {
		fields, err := toFields(data)
		if err != nil {
			return err
		}
		return a.store.Set(ctx, collection, id, fields)
	})
}

// Update merges fields into the document at id. It does not check that the
// document exists.
func Update(ctx context.Context, a *Accessor, collection, id string, fields any) error {
	return a.guard(collection, "update", func() error {
		m, err := toFields(fields)
		if err != nil {
			return err
		}
		return a.store.Update(ctx, collection, id, m)
	})
}

// Delete removes the document at id. Unknown ids are not an error.
func Delete(ctx context.Context, a *Accessor, collection, id string) error {
	return a.guard(collection, "delete", func() error {
		return a.store.Delete(ctx, collection, id)
	})
}

func toFields(data any) (map[string]any, error) {
	if m, ok := data.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			if k == "id" {
				continue
			}
			out[k] = v
		}
		return out, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("record must encode to an object: %w", err)
	}
	delete(out, "id")
	return out, nil
}

func decode[T any](doc docstore.Document) (T, error) {
	var v T
	merged := make(map[string]any, len(doc.Data)+1)
	for k, val := range doc.Data {
		merged[k] = val
	}
	merged["id"] = doc.ID

	raw, err := json.Marshal(merged)
	if err != nil {
		return v, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return v, nil
}
