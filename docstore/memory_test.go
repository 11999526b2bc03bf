package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryContract(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return NewMemory() })
}

func TestMemoryListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, m.Set(ctx, "faqs", id, map[string]any{"q": id}))
	}
	docs, err := m.List(ctx, "faqs")
	require.NoError(t, err)
	ids := []string{docs[0].ID, docs[1].ID, docs[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestMemoryReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	tags := []any{"safari"}
	require.NoError(t, m.Set(ctx, "tours", "t1", map[string]any{"tags": tags}))
	tags[0] = "changed"

	doc, err := m.Get(ctx, "tours", "t1")
	require.NoError(t, err)
	doc.Data["tags"].([]any)[0] = "mutated"

	again, err := m.Get(ctx, "tours", "t1")
	require.NoError(t, err)
	assert.Equal(t, []any{"safari"}, again.Data["tags"])
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory().List(ctx, "tours")
	assert.ErrorIs(t, err, context.Canceled)
}
