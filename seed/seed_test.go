package seed

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk/accessor"
	"tourdesk/blob"
	"tourdesk/collections"
	"tourdesk/docstore"
	"tourdesk/models"
)

func TestBundledFixturesDecode(t *testing.T) {
	for _, kind := range collections.Content {
		raw, err := Raw(kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, raw, kind)
		for _, rec := range raw {
			assert.NotEmpty(t, rec["id"], kind)
		}
	}

	posts, err := Fixtures[models.BlogPost](collections.BlogPosts)
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	tours, err := Fixtures[models.Tour](collections.Tours)
	require.NoError(t, err)
	assert.NotEmpty(t, tours[0].Itinerary)
}

func TestNoFixturesForInquiries(t *testing.T) {
	_, err := Raw(collections.Inquiries)
	assert.ErrorIs(t, err, ErrNoFixtures)
}

func TestOrFallback(t *testing.T) {
	fallback := []string{"a", "b", "c"}

	got, used := OrFallback([]string{}, fallback)
	assert.True(t, used)
	assert.Equal(t, fallback, got)

	got, used = OrFallback([]string{"live"}, fallback)
	assert.False(t, used)
	assert.Equal(t, []string{"live"}, got)

	got, used = OrFallback[string](nil, nil)
	assert.True(t, used)
	assert.NotNil(t, got)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

type env struct {
	store  *docstore.Faulty
	acc    *accessor.Accessor
	blobs  *blob.Filesystem
	dir    string
	images fstest.MapFS
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	fsStore, err := blob.NewFilesystem(dir, "/static/uploads")
	require.NoError(t, err)
	f := docstore.NewFaulty(docstore.NewMemory())
	return &env{
		store: f,
		acc:   accessor.New(f, nil),
		blobs: fsStore,
		dir:   dir,
		images: fstest.MapFS{
			"images/coast.png": {Data: pngBytes(t, 2400, 1200)},
			"images/small.png": {Data: pngBytes(t, 40, 20)},
		},
	}
}

func (e *env) uploader(fixtures fstest.MapFS, kinds ...collections.Kind) *Uploader {
	return &Uploader{
		Acc:      e.acc,
		Blobs:    e.blobs,
		Fixtures: fixtures,
		Images:   e.images,
		Kinds:    kinds,
	}
}

func blobFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			out = append(out, p)
		}
		return err
	})
	require.NoError(t, err)
	return out
}

func TestUploaderWritesRecordsAndImages(t *testing.T) {
	e := newEnv(t)
	fixtures := fstest.MapFS{
		"data/tours.json": {Data: []byte(`[
			{"id": "coast", "title": "Coast", "image": "images/coast.png", "gallery": ["./images/small.png", "https://cdn.example.com/x.jpg"]},
			{"title": "No id", "image": "https://cdn.example.com/y.jpg"}
		]`)},
	}

	rep, err := e.uploader(fixtures, collections.Tours, collections.FAQs).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Documents: 2, Images: 2}, rep)

	got := accessor.Get[models.Tour](context.Background(), e.acc, "tours", "coast")
	require.NoError(t, got.Err)
	require.NotNil(t, got.Value)
	assert.True(t, strings.HasPrefix(got.Value.Image, "/static/uploads/tours/"))
	assert.True(t, strings.HasSuffix(got.Value.Image, ".jpg"))
	require.Len(t, got.Value.Gallery, 2)
	assert.True(t, strings.HasPrefix(got.Value.Gallery[0], "/static/uploads/tours/"))
	assert.Equal(t, "https://cdn.example.com/x.jpg", got.Value.Gallery[1])

	all := accessor.List[models.Tour](context.Background(), e.acc, "tours")
	require.NoError(t, all.Err)
	assert.Len(t, all.Value, 2)

	files := blobFiles(t, e.dir)
	require.Len(t, files, 2)
	for _, f := range files {
		img, err := imaging.Open(f)
		require.NoError(t, err)
		assert.LessOrEqual(t, img.Bounds().Dx(), defaultMaxDim)
		assert.LessOrEqual(t, img.Bounds().Dy(), defaultMaxDim)
	}
}

func TestUploaderRollsBackOnMissingImage(t *testing.T) {
	e := newEnv(t)
	fixtures := fstest.MapFS{
		"data/tours.json": {Data: []byte(`[{"id": "a", "title": "A", "image": "images/coast.png"}]`)},
		"data/faqs.json":  {Data: []byte(`[{"id": "q1", "question": "Q"}, {"id": "q2", "question": "Q2", "image": "images/missing.png"}]`)},
	}

	_, err := e.uploader(fixtures, collections.Tours, collections.FAQs).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")

	for _, coll := range []string{"tours", "faqs"} {
		res := accessor.List[map[string]any](context.Background(), e.acc, coll)
		require.NoError(t, res.Err)
		assert.Empty(t, res.Value, coll)
	}
	assert.Empty(t, blobFiles(t, e.dir))
}

func TestUploaderRollsBackOnStoreFailure(t *testing.T) {
	e := newEnv(t)
	e.store.FailOn("faqs", errors.New("write refused"))
	fixtures := fstest.MapFS{
		"data/tours.json": {Data: []byte(`[{"id": "a", "title": "A", "image": "images/small.png"}]`)},
		"data/faqs.json":  {Data: []byte(`[{"id": "q1", "question": "Q"}]`)},
	}

	_, err := e.uploader(fixtures, collections.Tours, collections.FAQs).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write refused")

	e.store.FailOn("faqs", nil)
	res := accessor.List[map[string]any](context.Background(), e.acc, "tours")
	require.NoError(t, res.Err)
	assert.Empty(t, res.Value)
	assert.Empty(t, blobFiles(t, e.dir))
}

func TestUploaderUsesRegistryNames(t *testing.T) {
	e := newEnv(t)
	fixtures := fstest.MapFS{
		"data/blogPosts.json": {Data: []byte(`[{"id": "p1", "title": "P"}]`)},
	}
	u := e.uploader(fixtures, collections.BlogPosts)
	u.Registry = collections.NewRegistry(map[string]string{"blogPosts": "posts_v2"})

	_, err := u.Run(context.Background())
	require.NoError(t, err)

	res := accessor.List[models.BlogPost](context.Background(), e.acc, "posts_v2")
	require.NoError(t, res.Err)
	assert.Len(t, res.Value, 1)
}

func TestUploaderRollbackRestoresExistingDocuments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, accessor.Set(ctx, e.acc, "tours", "a", map[string]any{"title": "Admin edited", "price": 990}))

	fixtures := fstest.MapFS{
		"data/tours.json": {Data: []byte(`[{"id": "a", "title": "Fixture A"}, {"id": "b", "title": "Fixture B"}]`)},
		"data/faqs.json":  {Data: []byte(`[{"id": "q1", "question": "Q", "image": "images/missing.png"}]`)},
	}

	_, err := e.uploader(fixtures, collections.Tours, collections.FAQs).Run(ctx)
	require.Error(t, err)

	kept := accessor.Get[models.Tour](ctx, e.acc, "tours", "a")
	require.NoError(t, kept.Err)
	require.NotNil(t, kept.Value)
	assert.Equal(t, "Admin edited", kept.Value.Title)
	assert.Equal(t, 990.0, kept.Value.Price)

	added := accessor.Get[models.Tour](ctx, e.acc, "tours", "b")
	require.NoError(t, added.Err)
	assert.Nil(t, added.Value)
}

func TestUploaderRollbackRestoresIDWrittenTwice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, accessor.Set(ctx, e.acc, "tours", "a", map[string]any{"title": "Original"}))

	fixtures := fstest.MapFS{
		"data/tours.json": {Data: []byte(`[{"id": "a", "title": "First"}, {"id": "a", "title": "Second"}, {"id": "c", "image": "images/missing.png"}]`)},
	}

	_, err := e.uploader(fixtures, collections.Tours).Run(ctx)
	require.Error(t, err)

	res := accessor.List[models.Tour](ctx, e.acc, "tours")
	require.NoError(t, res.Err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Original", res.Value[0].Title)
}
