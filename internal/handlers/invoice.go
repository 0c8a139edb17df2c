package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/httpx"
	"github.com/mjaworski/window-offers/internal/models"
	"github.com/mjaworski/window-offers/internal/policy"
	"github.com/mjaworski/window-offers/internal/render"
	"github.com/mjaworski/window-offers/internal/services"
)

type InvoiceHandler struct {
	DB       *gorm.DB
	Svc      *services.InvoiceService
	Offers   *services.OfferService
	Docs     *services.DocumentResolver
	Renderer render.Renderer
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, offers *services.OfferService, docs *services.DocumentResolver, renderer render.Renderer) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc, Offers: offers, Docs: docs, Renderer: renderer}
}

// authorizeViaOffer checks access to an invoice through its source offer;
// invoices have no owner of their own.
func (h *InvoiceHandler) authorizeViaOffer(w http.ResponseWriter, r *http.Request, user *models.User, offerID uint) bool {
	offer, err := h.Offers.Get(r.Context(), offerID)
	if err != nil {
		httpx.Problem(w, err)
		return false
	}
	if err := policy.Authorize(user, offer); err != nil {
		httpx.Problem(w, err)
		return false
	}
	return true
}

// Create: POST /invoices?offer_id= — derive an invoice from an offer.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	offerID, ok := idParam(w, r, "offer_id")
	if !ok {
		return
	}
	if !h.authorizeViaOffer(w, r, user, offerID) {
		return
	}
	var in services.DeriveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.Svc.DeriveFromOffer(r.Context(), offerID, in)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Get: GET /invoices/get?id=
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	if !h.authorizeViaOffer(w, r, user, inv.OfferID) {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// ListForOffer: GET /invoices/for-offer?offer_id=
func (h *InvoiceHandler) ListForOffer(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	offerID, ok := idParam(w, r, "offer_id")
	if !ok {
		return
	}
	if !h.authorizeViaOffer(w, r, user, offerID) {
		return
	}
	invs, err := h.Svc.ListForOffer(r.Context(), offerID)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invs)
}

// Delete: POST /invoices/delete?id=
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	if !h.authorizeViaOffer(w, r, user, inv.OfferID) {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		httpx.Problem(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Document: GET /invoices/document?id= — rendered invoice bytes.
func (h *InvoiceHandler) Document(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	if !h.authorizeViaOffer(w, r, user, inv.OfferID) {
		return
	}
	doc := h.Docs.ResolveInvoice(inv)
	data, err := h.Renderer.RenderInvoice(doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "render_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="Faktura_`+inv.Number+`.html"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
