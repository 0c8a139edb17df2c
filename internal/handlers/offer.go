package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/httpx"
	"github.com/mjaworski/window-offers/internal/policy"
	"github.com/mjaworski/window-offers/internal/render"
	"github.com/mjaworski/window-offers/internal/services"
)

type OfferHandler struct {
	DB       *gorm.DB
	Svc      *services.OfferService
	Docs     *services.DocumentResolver
	Renderer render.Renderer
}

func NewOfferHandler(db *gorm.DB, svc *services.OfferService, docs *services.DocumentResolver, renderer render.Renderer) *OfferHandler {
	return &OfferHandler{DB: db, Svc: svc, Docs: docs, Renderer: renderer}
}

// List: GET /offers?search=&date_from=&date_to=&sort_by=&sort_direction=
// Admins see every owner's offers; everyone else only their own.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := services.OfferFilter{
		Search:        q.Get("search"),
		SortBy:        q.Get("sort_by"),
		SortDirection: q.Get("sort_direction"),
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"date_from": "expected YYYY-MM-DD"})
			return
		}
		filter.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"date_to": "expected YYYY-MM-DD"})
			return
		}
		filter.DateTo = &t
	}

	var owner *uint
	if !user.IsAdmin() {
		owner = &user.ID
	}
	offers, err := h.Svc.List(r.Context(), owner, filter)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, offers)
}

// Create: POST /offers
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	var in services.OfferCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	offer, err := h.Svc.Create(r.Context(), in, user.ID)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, offer)
}

// Get: GET /offers/get?id=
func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	offer, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	if err := policy.Authorize(user, offer); err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, offer)
}

// Update: POST /offers/update?id=
func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	offer, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	if err := policy.Authorize(user, offer); err != nil {
		httpx.Problem(w, err)
		return
	}
	var in services.OfferUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updated, err := h.Svc.Update(r.Context(), offer, in)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete: POST /offers/delete?id=
func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	// existence check first: the service delete itself is a no-op on
	// missing ids, but the API reports 404
	offer, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	if err := policy.Authorize(user, offer); err != nil {
		httpx.Problem(w, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		httpx.Problem(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Document: GET /offers/document?id= — resolves the offer into its
// document model and returns the rendered bytes.
func (h *OfferHandler) Document(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	offer, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	if err := policy.Authorize(user, offer); err != nil {
		httpx.Problem(w, err)
		return
	}
	doc, err := h.Docs.ResolveOffer(r.Context(), offer)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	data, err := h.Renderer.RenderOffer(doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "render_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="Oferta_`+offer.Number+`.html"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
