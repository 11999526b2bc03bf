package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk/accessor"
	"tourdesk/collections"
	"tourdesk/docstore"
	"tourdesk/models"
)

func setup(t *testing.T) (*Hooks, *accessor.Accessor, *docstore.Faulty) {
	t.Helper()
	f := docstore.NewFaulty(docstore.NewMemory())
	acc := accessor.New(f, nil)
	return New(acc, collections.Registry{}), acc, f
}

func waitDone[T any](t *testing.T, q *Query[T]) State[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	st, err := q.Wait(ctx)
	require.NoError(t, err)
	return st
}

func TestInitialState(t *testing.T) {
	h, _, _ := setup(t)
	st := h.Tours().State()
	assert.True(t, st.Loading)
	assert.NotNil(t, st.Data)
	assert.Empty(t, st.Data)
	assert.NoError(t, st.Err)
}

func TestSuccessfulLoad(t *testing.T) {
	h, acc, _ := setup(t)
	ctx := context.Background()
	accessor.Add(ctx, acc, "faqs", models.FAQ{Question: "Best season?"})

	q := h.FAQs()
	q.Start(ctx)
	defer q.Close()
	st := waitDone(t, q)

	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	require.Len(t, st.Data, 1)
	assert.Equal(t, "Best season?", st.Data[0].Question)
}

func TestFailureState(t *testing.T) {
	h, _, f := setup(t)
	f.FailOn("cities", errors.New("offline"))

	st := Load(context.Background(), h.Cities())
	assert.False(t, st.Loading)
	assert.Error(t, st.Err)
	assert.Empty(t, st.Data)
}

func TestPanicBecomesErrorState(t *testing.T) {
	h, _, f := setup(t)
	f.PanicOn("team")

	st := Load(context.Background(), h.Team())
	assert.False(t, st.Loading)
	assert.Error(t, st.Err)
}

func TestStartIsIdempotent(t *testing.T) {
	h, acc, _ := setup(t)
	ctx := context.Background()
	q := h.Testimonials()
	q.Start(ctx)
	waitDone(t, q)

	accessor.Add(ctx, acc, "testimonials", models.Testimonial{Name: "Late"})
	q.Start(ctx)
	st := waitDone(t, q)
	assert.Empty(t, st.Data, "second Start must not refetch")

	q.Refetch(ctx)
	st = waitDone(t, q)
	assert.Len(t, st.Data, 1)
}

func TestCloseBeforeResolveDropsResult(t *testing.T) {
	h, acc, f := setup(t)
	ctx := context.Background()
	accessor.Add(ctx, acc, "tours", models.Tour{Title: "Held"})
	release := f.Hold("tours")
	defer release()

	q := h.Tours()
	q.Start(ctx)
	q.Close()
	release()

	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("fetch did not settle after close")
	}
	st := q.State()
	assert.True(t, st.Loading, "closed query must not publish")
	assert.Empty(t, st.Data)
}

func TestCancelledContextDropsResult(t *testing.T) {
	h, _, f := setup(t)
	release := f.Hold("blogPosts")
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	q := h.BlogPosts()
	q.Start(ctx)
	cancel()

	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("fetch did not settle after cancel")
	}
	assert.True(t, q.State().Loading)
	assert.NoError(t, q.State().Err)
}

func TestIndependentQueriesDoNotShare(t *testing.T) {
	h, acc, _ := setup(t)
	ctx := context.Background()
	first := h.ExploreTours()
	first.Start(ctx)
	waitDone(t, first)

	accessor.Add(ctx, acc, "exploreTours", models.ExploreTour{Title: "Dhow cruise"})
	second := h.ExploreTours()
	second.Start(ctx)
	st := waitDone(t, second)

	assert.Len(t, st.Data, 1)
	assert.Empty(t, first.State().Data)
}

func TestCloseWithoutStartUnblocksWaiters(t *testing.T) {
	h, _, _ := setup(t)
	q := h.Destinations()
	q.Close()
	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed")
	}
}

func TestEveryEntityUsesItsCollection(t *testing.T) {
	h := New(nil, collections.NewRegistry(map[string]string{"blogPosts": "posts"}))
	assert.Equal(t, "tours", h.Tours().Collection())
	assert.Equal(t, "destinations", h.Destinations().Collection())
	assert.Equal(t, "posts", h.BlogPosts().Collection())
	assert.Equal(t, "cities", h.Cities().Collection())
	assert.Equal(t, "testimonials", h.Testimonials().Collection())
	assert.Equal(t, "team", h.Team().Collection())
	assert.Equal(t, "travelEssentials", h.TravelEssentials().Collection())
	assert.Equal(t, "faqs", h.FAQs().Collection())
	assert.Equal(t, "exploreDestinations", h.ExploreDestinations().Collection())
	assert.Equal(t, "exploreTours", h.ExploreTours().Collection())
}
