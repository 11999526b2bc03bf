package docstore

import (
	"context"
	"sync"
)

// Faulty wraps a Store and injects failures, panics or stalls per
// collection. It backs the failure-path tests of the layers above.
type Faulty struct {
	Store

	mu     sync.Mutex
	errs   map[string]error
	panics map[string]bool
	holds  map[string]chan struct{}
}

func NewFaulty(inner Store) *Faulty {
	return &Faulty{
		Store:  inner,
		errs:   make(map[string]error),
		panics: make(map[string]bool),
		holds:  make(map[string]chan struct{}),
	}
}

// FailOn makes every operation on collection return err. A nil err clears it.
func (f *Faulty) FailOn(collection string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, collection)
		return
	}
	f.errs[collection] = err
}

// PanicOn makes every operation on collection panic.
func (f *Faulty) PanicOn(collection string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panics[collection] = true
}

// Hold stalls operations on collection until the returned func is called
// or the caller's context ends.
func (f *Faulty) Hold(collection string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.holds[collection] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.holds, collection)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *Faulty) check(ctx context.Context, collection string) error {
	f.mu.Lock()
	err := f.errs[collection]
	p := f.panics[collection]
	hold := f.holds[collection]
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if p {
		panic("injected store panic on " + collection)
	}
	return err
}

func (f *Faulty) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := f.check(ctx, collection); err != nil {
		return Document{}, err
	}
	return f.Store.Get(ctx, collection, id)
}

func (f *Faulty) List(ctx context.Context, collection string) ([]Document, error) {
	if err := f.check(ctx, collection); err != nil {
		return nil, err
	}
	return f.Store.List(ctx, collection)
}

func (f *Faulty) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := f.check(ctx, collection); err != nil {
		return "", err
	}
	return f.Store.Add(ctx, collection, data)
}

func (f *Faulty) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if err := f.check(ctx, collection); err != nil {
		return err
	}
	return f.Store.Set(ctx, collection, id, data)
}

func (f *Faulty) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := f.check(ctx, collection); err != nil {
		return err
	}
	return f.Store.Update(ctx, collection, id, fields)
}

func (f *Faulty) Delete(ctx context.Context, collection, id string) error {
	if err := f.check(ctx, collection); err != nil {
		return err
	}
	return f.Store.Delete(ctx, collection, id)
}
