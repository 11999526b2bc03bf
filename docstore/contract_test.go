package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every driver must share.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("add then get", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Add(ctx, "tours", map[string]any{"title": "Serengeti", "price": 1200.0, "id": "ignored"})
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.NotEqual(t, "ignored", id)

		doc, err := s.Get(ctx, "tours", id)
		require.NoError(t, err)
		assert.Equal(t, id, doc.ID)
		assert.Equal(t, "Serengeti", doc.Data["title"])
		assert.NotContains(t, doc.Data, "id")
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "tours", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list empty collection", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.List(ctx, "faqs")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "cities", "fixed", map[string]any{"name": "Arusha", "country": "TZ"}))
		require.NoError(t, s.Set(ctx, "cities", "fixed", map[string]any{"name": "Moshi"}))

		doc, err := s.Get(ctx, "cities", "fixed")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "Moshi"}, doc.Data)
	})

	t.Run("update merges", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "faqs", "q1", map[string]any{"question": "Visa?", "answer": "Yes"}))
		require.NoError(t, s.Update(ctx, "faqs", "q1", map[string]any{"answer": "On arrival"}))

		doc, err := s.Get(ctx, "faqs", "q1")
		require.NoError(t, err)
		assert.Equal(t, "Visa?", doc.Data["question"])
		assert.Equal(t, "On arrival", doc.Data["answer"])
	})

	t.Run("update missing is a no-op", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(ctx, "faqs", "ghost", map[string]any{"answer": "x"}))
		_, err := s.Get(ctx, "faqs", "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Add(ctx, "team", map[string]any{"name": "Amina"})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, "team", id))
		require.NoError(t, s.Delete(ctx, "team", id))

		_, err = s.Get(ctx, "team", id)
		assert.ErrorIs(t, err, ErrNotFound)
		docs, err := s.List(ctx, "team")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("list returns every added document", func(t *testing.T) {
		s := newStore(t)
		seen := map[string]bool{}
		for i := 0; i < 4; i++ {
			id, err := s.Add(ctx, "blogPosts", map[string]any{"title": "post"})
			require.NoError(t, err)
			seen[id] = true
		}
		docs, err := s.List(ctx, "blogPosts")
		require.NoError(t, err)
		assert.Len(t, docs, 4)
		for _, d := range docs {
			assert.True(t, seen[d.ID])
		}
	})

	t.Run("empty id rejected", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Set(ctx, "tours", "", map[string]any{}), ErrInvalidID)
		assert.ErrorIs(t, s.Update(ctx, "tours", "", map[string]any{}), ErrInvalidID)
	})
}
