// Package prefetch loads the listing collections once at boot, in parallel,
// and serves the combined snapshot to every page. It keeps no link to the
// per-request hooks; both may fetch the same collection.
package prefetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tourdesk/accessor"
	"tourdesk/collections"
	"tourdesk/metrics"
	"tourdesk/models"
)

type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Ready   Status = "ready"
	Failed  Status = "failed"
)

var allStatuses = []string{string(Idle), string(Loading), string(Ready), string(Failed)}

// Kinds is the fixed batch loaded by Load.
var Kinds = []collections.Kind{
	collections.Tours,
	collections.Destinations,
	collections.BlogPosts,
	collections.ExploreDestinations,
	collections.ExploreTours,
}

// Snapshot is the shared state. Members that loaded keep their data even
// when the batch as a whole failed.
type Snapshot struct {
	Status              Status                      `json:"status"`
	Message             string                      `json:"message,omitempty"`
	Tours               []models.Tour               `json:"tours"`
	Destinations        []models.Destination        `json:"destinations"`
	BlogPosts           []models.BlogPost           `json:"blogPosts"`
	ExploreDestinations []models.ExploreDestination `json:"exploreDestinations"`
	ExploreTours        []models.ExploreTour        `json:"exploreTours"`
	Errors              map[collections.Kind]string `json:"errors,omitempty"`
	LoadedAt            time.Time                   `json:"loadedAt,omitzero"`
}

// Member describes one collection of the batch after settlement.
type Member struct {
	Kind    collections.Kind
	Settled bool
	Count   int
	Err     string
}

// Store is created once at start-up and handed to whatever needs it.
type Store struct {
	acc *accessor.Accessor
	reg collections.Registry
	log *zap.Logger

	mu       sync.RWMutex
	snap     Snapshot
	settled  map[collections.Kind]bool
	inflight chan struct{}
}

func New(acc *accessor.Accessor, reg collections.Registry, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	metrics.SetPrefetchState(string(Idle), allStatuses)
	return &Store{
		acc:     acc,
		reg:     reg,
		log:     log.Named("prefetch"),
		snap:    emptySnapshot(Idle),
		settled: make(map[collections.Kind]bool),
	}
}

func emptySnapshot(status Status) Snapshot {
	return Snapshot{
		Status:              status,
		Tours:               []models.Tour{},
		Destinations:        []models.Destination{},
		BlogPosts:           []models.BlogPost{},
		ExploreDestinations: []models.ExploreDestination{},
		ExploreTours:        []models.ExploreTour{},
	}
}

// Load runs the batch. Concurrent callers share one batch; once the store has
// settled further calls return the settled outcome without fetching again.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	switch s.snap.Status {
	case Ready:
		s.mu.Unlock()
		return nil
	case Failed:
		msg := s.snap.Message
		s.mu.Unlock()
		return fmt.Errorf("prefetch failed: %s", msg)
	case Loading:
		ch := s.inflight
		s.mu.Unlock()
		select {
		case <-ch:
			return s.Load(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.inflight = make(chan struct{})
	s.snap.Status = Loading
	s.mu.Unlock()
	metrics.SetPrefetchState(string(Loading), allStatuses)

	next := emptySnapshot(Loading)
	errs := make(map[collections.Kind]string)
	var errMu sync.Mutex

	var g errgroup.Group
	g.Go(member(ctx, s, collections.Tours, &next.Tours, errs, &errMu))
	g.Go(member(ctx, s, collections.Destinations, &next.Destinations, errs, &errMu))
	g.Go(member(ctx, s, collections.BlogPosts, &next.BlogPosts, errs, &errMu))
	g.Go(member(ctx, s, collections.ExploreDestinations, &next.ExploreDestinations, errs, &errMu))
	g.Go(member(ctx, s, collections.ExploreTours, &next.ExploreTours, errs, &errMu))
	err := g.Wait()

	if len(errs) > 0 {
		next.Errors = errs
	}
	next.LoadedAt = time.Now().UTC()
	if err != nil {
		next.Status = Failed
		next.Message = failureMessage(errs)
	} else {
		next.Status = Ready
	}

	s.mu.Lock()
	s.snap = next
	for _, k := range Kinds {
		s.settled[k] = true
	}
	close(s.inflight)
	s.mu.Unlock()
	metrics.SetPrefetchState(string(next.Status), allStatuses)

	if err != nil {
		s.log.Error("prefetch failed", zap.String("message", next.Message))
		return fmt.Errorf("prefetch failed: %s", next.Message)
	}
	s.log.Info("prefetch ready",
		zap.Int("tours", len(next.Tours)),
		zap.Int("destinations", len(next.Destinations)),
		zap.Int("blogPosts", len(next.BlogPosts)))
	return nil
}

func member[T any](ctx context.Context, s *Store, kind collections.Kind, dst *[]T, errs map[collections.Kind]string, mu *sync.Mutex) func() error {
	return func() error {
		res := accessor.List[T](ctx, s.acc, s.reg.Name(kind))
		*dst = res.Value
		if res.Err != nil {
			mu.Lock()
			errs[kind] = res.Err.Error()
			mu.Unlock()
			return fmt.Errorf("%s: %w", kind, res.Err)
		}
		return nil
	}
}

func failureMessage(errs map[collections.Kind]string) string {
	parts := make([]string, 0, len(errs))
	for _, k := range Kinds {
		if msg, ok := errs[k]; ok {
			parts = append(parts, string(k)+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// Snapshot returns the current shared state. Slices must not be modified.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Status
}

// Collection reports one collection's own outcome, independent of the batch.
func (s *Store) Collection(kind collections.Kind) Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := Member{Kind: kind, Settled: s.settled[kind]}
	if !m.Settled {
		return m
	}
	m.Err = s.snap.Errors[kind]
	switch kind {
	case collections.Tours:
		m.Count = len(s.snap.Tours)
	case collections.Destinations:
		m.Count = len(s.snap.Destinations)
	case collections.BlogPosts:
		m.Count = len(s.snap.BlogPosts)
	case collections.ExploreDestinations:
		m.Count = len(s.snap.ExploreDestinations)
	case collections.ExploreTours:
		m.Count = len(s.snap.ExploreTours)
	}
	return m
}
