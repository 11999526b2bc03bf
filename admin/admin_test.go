package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk/accessor"
	"tourdesk/collections"
	"tourdesk/docstore"
	"tourdesk/models"
	"tourdesk/mq"
)

type events struct {
	mu  sync.Mutex
	got []mq.Event
}

func (e *events) Publish(_ context.Context, ev mq.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
	return nil
}

type fixture struct {
	router *httprouter.Router
	acc    *accessor.Accessor
	store  *docstore.Faulty
	events *events
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := docstore.NewFaulty(docstore.NewMemory())
	acc := accessor.New(f, nil)
	ev := &events{}
	h := New(acc, collections.Registry{}, ev, nil)

	r := httprouter.New()
	r.GET("/api/admin/content/:kind", h.List)
	r.POST("/api/admin/content/:kind", h.Create)
	r.PUT("/api/admin/content/:kind/:id", h.Update)
	r.DELETE("/api/admin/content/:kind/:id", h.Delete)
	r.GET("/api/admin/inquiries", h.Inquiries)
	return &fixture{router: r, acc: acc, store: f, events: ev}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, MutationResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var resp MutationResponse
	if rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func ids(items []Record) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		id, _ := it["id"].(string)
		out = append(out, id)
	}
	return out
}

func TestBlogFallbackThenPromotion(t *testing.T) {
	f := setup(t)

	rec, resp := f.do(t, http.MethodGet, "/api/admin/content/blogPosts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Fallback)
	require.Len(t, resp.Items, 3)

	rec, resp = f.do(t, http.MethodPost, "/api/admin/content/blogPosts", `{"title":"A fourth post","category":"News"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.Fallback)
	assert.Len(t, resp.Items, 4)
	assert.Contains(t, ids(resp.Items), resp.ID)

	live := accessor.List[models.BlogPost](context.Background(), f.acc, "blogPosts")
	require.NoError(t, live.Err)
	assert.Len(t, live.Value, 4, "fallback posts became real documents")

	rec, resp = f.do(t, http.MethodGet, "/api/admin/content/blogPosts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Fallback)
	assert.Len(t, resp.Items, 4)
}

func TestNonEmptyCollectionIsNotPromoted(t *testing.T) {
	f := setup(t)
	res := accessor.Add(context.Background(), f.acc, "faqs", models.FAQ{Question: "Mine?"})
	require.NoError(t, res.Err)

	rec, resp := f.do(t, http.MethodPost, "/api/admin/content/faqs", `{"question":"Another?"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, resp.Items, 2)
}

func TestUpdateMergesAndDeleteRemoves(t *testing.T) {
	f := setup(t)
	id := accessor.Add(context.Background(), f.acc, "cities", map[string]any{"name": "Rome", "country": "Italy"}).Value
	require.NotEmpty(t, id)

	rec, resp := f.do(t, http.MethodPut, "/api/admin/content/cities/"+id, `{"description":"Eternal city","id":"ignored"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, resp.ID)

	got := accessor.Get[models.City](context.Background(), f.acc, "cities", id)
	require.NotNil(t, got.Value)
	assert.Equal(t, "Rome", got.Value.Name)
	assert.Equal(t, "Eternal city", got.Value.Description)

	rec, resp = f.do(t, http.MethodDelete, "/api/admin/content/cities/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, ids(resp.Items), id)
	assert.Nil(t, accessor.Get[models.City](context.Background(), f.acc, "cities", id).Value)

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	require.Len(t, f.events.got, 2)
	assert.Equal(t, mq.ContentUpdated, f.events.got[0].Type)
	assert.Equal(t, mq.ContentDeleted, f.events.got[1].Type)
}

func TestBadRequests(t *testing.T) {
	f := setup(t)

	rec, _ := f.do(t, http.MethodGet, "/api/admin/content/users", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/api/admin/content/inquiries", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "inquiries are not editable content")

	rec, _ = f.do(t, http.MethodPost, "/api/admin/content/tours", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = f.do(t, http.MethodPost, "/api/admin/content/tours", `{"id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailures(t *testing.T) {
	f := setup(t)
	f.store.FailOn("tours", errors.New("unreachable"))

	rec, _ := f.do(t, http.MethodGet, "/api/admin/content/tours", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/admin/content/tours", `{"title":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInquiriesNewestFirst(t *testing.T) {
	f := setup(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := map[string]time.Duration{"old": 0, "middle": time.Hour, "newest": 2 * time.Hour}
	for _, name := range []string{"old", "newest", "middle"} {
		res := accessor.Add(context.Background(), f.acc, "inquiries", models.Inquiry{
			FullName:  name,
			Email:     "x@example.com",
			Status:    models.InquiryNew,
			CreatedAt: base.Add(offsets[name]),
		})
		require.NoError(t, res.Err)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/inquiries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []models.Inquiry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 3)
	assert.Equal(t, "newest", body.Items[0].FullName)
	assert.Equal(t, "middle", body.Items[1].FullName)
	assert.Equal(t, "old", body.Items[2].FullName)
}
