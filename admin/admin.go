// Package admin serves the content management API behind the admin gate.
// Writes go straight to the store and every mutation answers with a fresh
// listing so the screen never shows optimistic state.
package admin

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tourdesk/accessor"
	"tourdesk/collections"
	"tourdesk/models"
	"tourdesk/mq"
	"tourdesk/seed"
	"tourdesk/utils"
)

const requestTimeout = 5 * time.Second

type Record = map[string]any

// ListResponse is what the admin screens render. Fallback is set while the
// collection is empty and bundled sample records are shown instead.
type ListResponse struct {
	Items    []Record `json:"items"`
	Fallback bool     `json:"fallback"`
}

// MutationResponse carries the affected id and the list as re-read after the
// write. Stale is set when that re-read failed.
type MutationResponse struct {
	ID string `json:"id"`
	ListResponse
	Stale bool `json:"stale,omitempty"`
}

type Handler struct {
	acc *accessor.Accessor
	reg collections.Registry
	pub mq.Publisher
	log *zap.Logger
}

func New(acc *accessor.Accessor, reg collections.Registry, pub mq.Publisher, log *zap.Logger) *Handler {
	if pub == nil {
		pub = mq.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{acc: acc, reg: reg, pub: pub, log: log.Named("admin")}
}

// kind resolves the :kind route param to an editable content kind.
func (h *Handler) kind(w http.ResponseWriter, ps httprouter.Params) (collections.Kind, bool) {
	k := collections.Kind(ps.ByName("kind"))
	for _, c := range collections.Content {
		if c == k {
			return k, true
		}
	}
	utils.RespondWithError(w, http.StatusNotFound, "Unknown content type")
	return "", false
}

func (h *Handler) list(ctx context.Context, kind collections.Kind) (ListResponse, error) {
	res := accessor.List[Record](ctx, h.acc, h.reg.Name(kind))
	if res.Err != nil {
		return ListResponse{Items: []Record{}}, res.Err
	}
	fallback, err := seed.Raw(kind)
	if err != nil && !errors.Is(err, seed.ErrNoFixtures) {
		h.log.Warn("load fixtures", zap.String("kind", string(kind)), zap.Error(err))
	}
	items, used := seed.OrFallback(res.Value, fallback)
	return ListResponse{Items: items, Fallback: used}, nil
}

// List handles GET /api/admin/content/:kind.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, ok := h.kind(w, ps)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.list(ctx, kind)
	if err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to load "+string(kind))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) afterWrite(ctx context.Context, w http.ResponseWriter, status int, kind collections.Kind, id, event string) {
	mq.Emit(ctx, h.pub, h.log, mq.Event{Type: event, Collection: h.reg.Name(kind), ID: id})

	resp := MutationResponse{ID: id}
	list, err := h.list(ctx, kind)
	if err != nil {
		resp.Items = []Record{}
		resp.Stale = true
	} else {
		resp.ListResponse = list
	}
	utils.RespondWithJSON(w, status, resp)
}

// promote writes the bundled records into an empty collection so the items
// the admin was looking at become real before the first edit lands. A
// collection that already holds documents is left alone.
func (h *Handler) promote(ctx context.Context, kind collections.Kind) error {
	coll := h.reg.Name(kind)
	live := accessor.List[Record](ctx, h.acc, coll)
	if live.Err != nil {
		return live.Err
	}
	if len(live.Value) > 0 {
		return nil
	}
	fallback, err := seed.Raw(kind)
	if errors.Is(err, seed.ErrNoFixtures) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, rec := range fallback {
		id, _ := rec["id"].(string)
		if id == "" {
			continue
		}
		if err := accessor.Set(ctx, h.acc, coll, id, rec); err != nil {
			return err
		}
	}
	h.log.Info("promoted fallback records", zap.String("kind", string(kind)), zap.Int("count", len(fallback)))
	return nil
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (Record, bool) {
	var rec Record
	if err := utils.DecodeJSON(r, &rec); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return nil, false
	}
	delete(rec, "id")
	if len(rec) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No fields given")
		return nil, false
	}
	return rec, true
}

// Create handles POST /api/admin/content/:kind.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, ok := h.kind(w, ps)
	if !ok {
		return
	}
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.promote(ctx, kind); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to create item")
		return
	}
	res := accessor.Add(ctx, h.acc, h.reg.Name(kind), rec)
	if res.Err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to create item")
		return
	}
	h.log.Info("created", zap.String("kind", string(kind)), zap.String("id", res.Value))
	h.afterWrite(ctx, w, http.StatusCreated, kind, res.Value, mq.ContentCreated)
}

// Update handles PUT /api/admin/content/:kind/:id. Only the fields sent are
// changed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, ok := h.kind(w, ps)
	if !ok {
		return
	}
	id := ps.ByName("id")
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.promote(ctx, kind); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to update item")
		return
	}
	if err := accessor.Update(ctx, h.acc, h.reg.Name(kind), id, rec); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to update item")
		return
	}
	h.afterWrite(ctx, w, http.StatusOK, kind, id, mq.ContentUpdated)
}

// Delete handles DELETE /api/admin/content/:kind/:id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, ok := h.kind(w, ps)
	if !ok {
		return
	}
	id := ps.ByName("id")
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.promote(ctx, kind); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to delete item")
		return
	}
	if err := accessor.Delete(ctx, h.acc, h.reg.Name(kind), id); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to delete item")
		return
	}
	h.log.Info("deleted", zap.String("kind", string(kind)), zap.String("id", id))
	h.afterWrite(ctx, w, http.StatusOK, kind, id, mq.ContentDeleted)
}

// Inquiries handles GET /api/admin/inquiries, newest first.
func (h *Handler) Inquiries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := accessor.List[models.Inquiry](ctx, h.acc, h.reg.Name(collections.Inquiries))
	if res.Err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Failed to load inquiries")
		return
	}
	items := res.Value
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": items})
}
