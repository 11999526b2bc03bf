// Package hooks adapts the accessor to per-consumer read subscriptions.
// A Query is mounted with Start, read through State, and unmounted with
// Close; results that arrive after unmount are dropped.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"tourdesk/accessor"
)

// State is what a consumer renders from.
type State[T any] struct {
	Data    []T
	Loading bool
	Err     error
}

// Query loads one fixed collection. Queries never share results with each
// other; two queries on the same collection fetch independently.
type Query[T any] struct {
	acc        *accessor.Accessor
	collection string

	mu      sync.Mutex
	state   State[T]
	started bool
	closed  bool
	gen     int
	cancel  context.CancelFunc
	done    chan struct{}
	owned   bool // done belongs to a fetch goroutine
}

func NewQuery[T any](acc *accessor.Accessor, collection string) *Query[T] {
	return &Query[T]{
		acc:        acc,
		collection: collection,
		state:      State[T]{Data: []T{}, Loading: true},
		done:       make(chan struct{}),
	}
}

func (q *Query[T]) Collection() string { return q.collection }

// Start issues the first fetch. Later calls are no-ops; use Refetch to load
// again. The fetch is bound to ctx: once ctx ends its result is discarded.
func (q *Query[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	q.launch(ctx)
}

// Refetch abandons any in-flight fetch and loads again.
func (q *Query[T]) Refetch(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.started = true
	if q.cancel != nil {
		q.cancel()
	}
	q.state.Loading = true
	q.launch(ctx)
}

// launch must be called with q.mu held.
func (q *Query[T]) launch(parent context.Context) {
	q.gen++
	gen := q.gen
	ctx, cancel := context.WithCancel(parent)
	q.cancel = cancel
	if q.owned {
		q.done = make(chan struct{})
	}
	q.owned = true
	done := q.done

	go func() {
		defer cancel()
		res := q.fetch(ctx)

		q.mu.Lock()
		defer q.mu.Unlock()
		defer close(done)
		if q.closed || gen != q.gen || ctx.Err() != nil {
			return
		}
		if res.Err != nil {
			q.state = State[T]{Data: []T{}, Loading: false, Err: res.Err}
			return
		}
		q.state = State[T]{Data: res.Value, Loading: false}
	}()
}

// fetch is the second guard: anything that escapes the accessor becomes an
// error state instead of a crash.
func (q *Query[T]) fetch(ctx context.Context) (res accessor.Result[[]T]) {
	defer func() {
		if p := recover(); p != nil {
			res = accessor.Result[[]T]{Value: []T{}, Err: fmt.Errorf("load %s: %v", q.collection, p)}
		}
	}()
	return accessor.List[T](ctx, q.acc, q.collection)
}

// Close unmounts the query. A fetch still in flight is cancelled and its
// result never published.
func (q *Query[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	if q.cancel != nil {
		q.cancel()
	}
	if !q.owned {
		close(q.done)
	}
}

// State returns a snapshot. Data is shared with other snapshots and must not
// be modified.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Done is closed when the fetch current at the time of the call settles or
// is abandoned.
func (q *Query[T]) Done() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.done
}

// Wait blocks until the current fetch settles or ctx ends.
func (q *Query[T]) Wait(ctx context.Context) (State[T], error) {
	select {
	case <-q.Done():
		return q.State(), nil
	case <-ctx.Done():
		return q.State(), ctx.Err()
	}
}

// Load mounts a query, waits for it, and unmounts it. It suits request
// handlers whose lifetime is the request itself.
func Load[T any](ctx context.Context, q *Query[T]) State[T] {
	q.Start(ctx)
	defer q.Close()
	st, err := q.Wait(ctx)
	if err != nil && st.Err == nil {
		st = State[T]{Data: []T{}, Loading: false, Err: err}
	}
	return st
}
