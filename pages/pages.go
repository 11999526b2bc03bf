// Package pages serves the read-only JSON behind the public site.
package pages

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tourdesk/accessor"
	"tourdesk/brochure"
	"tourdesk/collections"
	"tourdesk/hooks"
	"tourdesk/models"
	"tourdesk/prefetch"
	"tourdesk/utils"
)

const requestTimeout = 5 * time.Second

// ListResponse wraps a collection. Degraded is set when the fetch failed and
// Items is empty for that reason rather than because nothing exists.
type ListResponse[T any] struct {
	Items    []T  `json:"items"`
	Degraded bool `json:"degraded"`
}

type Handler struct {
	hooks    *hooks.Hooks
	acc      *accessor.Accessor
	reg      collections.Registry
	prefetch *prefetch.Store
	siteURL  string
	log      *zap.Logger
}

func New(acc *accessor.Accessor, reg collections.Registry, pf *prefetch.Store, siteURL string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		hooks:    hooks.New(acc, reg),
		acc:      acc,
		reg:      reg,
		prefetch: pf,
		siteURL:  strings.TrimRight(siteURL, "/"),
		log:      log.Named("pages"),
	}
}

func serveList[T any](h *Handler, w http.ResponseWriter, r *http.Request, q *hooks.Query[T]) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	st := hooks.Load(ctx, q)
	if st.Err != nil {
		h.log.Warn("serving empty list", zap.String("collection", q.Collection()), zap.Error(st.Err))
	}
	utils.RespondWithJSON(w, http.StatusOK, ListResponse[T]{Items: st.Data, Degraded: st.Err != nil})
}

func (h *Handler) Tours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.Tours())
}

func (h *Handler) Destinations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.Destinations())
}

func (h *Handler) BlogPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.BlogPosts())
}

func (h *Handler) Cities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.Cities())
}

func (h *Handler) Testimonials(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.Testimonials())
}

func (h *Handler) Team(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.Team())
}

func (h *Handler) TravelEssentials(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.TravelEssentials())
}

func (h *Handler) FAQs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.FAQs())
}

func (h *Handler) ExploreDestinations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.ExploreDestinations())
}

func (h *Handler) ExploreTours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serveList(h, w, r, h.hooks.ExploreTours())
}

// Prefetch returns the boot-time snapshot as it stands; it never triggers a
// load itself.
func (h *Handler) Prefetch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, h.prefetch.Snapshot())
}

func getOne[T any](h *Handler, w http.ResponseWriter, r *http.Request, kind collections.Kind, id string) (*T, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := accessor.Get[T](ctx, h.acc, h.reg.Name(kind), id)
	switch {
	case res.Err != nil:
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Content temporarily unavailable")
		return nil, false
	case res.Value == nil:
		utils.RespondWithError(w, http.StatusNotFound, "Not found")
		return nil, false
	}
	return res.Value, true
}

func (h *Handler) Tour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if t, ok := getOne[models.Tour](h, w, r, collections.Tours, ps.ByName("id")); ok {
		utils.RespondWithJSON(w, http.StatusOK, t)
	}
}

func (h *Handler) BlogPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if p, ok := getOne[models.BlogPost](h, w, r, collections.BlogPosts, ps.ByName("id")); ok {
		utils.RespondWithJSON(w, http.StatusOK, p)
	}
}

// Brochure streams a PDF for one tour.
func (h *Handler) Brochure(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	t, ok := getOne[models.Tour](h, w, r, collections.Tours, ps.ByName("id"))
	if !ok {
		return
	}
	link := ""
	if h.siteURL != "" {
		link = h.siteURL + "/tours/" + t.ID
	}
	pdf, err := brochure.Render(*t, link)
	if err != nil {
		h.log.Error("render brochure", zap.String("id", t.ID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+brochure.Filename(*t)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
