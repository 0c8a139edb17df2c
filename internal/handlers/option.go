package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/catalog"
	"github.com/mjaworski/window-offers/internal/httpx"
	"github.com/mjaworski/window-offers/internal/models"
)

type OptionHandler struct {
	DB      *gorm.DB
	Catalog *catalog.Repository
}

func NewOptionHandler(db *gorm.DB, cat *catalog.Repository) *OptionHandler {
	return &OptionHandler{DB: db, Catalog: cat}
}

// requireAdmin gates the administrative catalog mutations.
func (h *OptionHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return false
	}
	if !user.IsAdmin() {
		httpx.JSONError(w, http.StatusForbidden, "not_enough_permissions", nil)
		return false
	}
	return true
}

// List: GET /options?category=
func (h *OptionHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(h.DB, w, r); !ok {
		return
	}
	opts, err := h.Catalog.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, opts)
}

// Categories: GET /options/categories
func (h *OptionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(h.DB, w, r); !ok {
		return
	}
	cats, err := h.Catalog.Categories(r.Context())
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cats)
}

// Get: GET /options/get?id=
func (h *OptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(h.DB, w, r); !ok {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	opt, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, opt)
}

// Create: POST /options (admin)
func (h *OptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var opt models.Option
	if err := json.NewDecoder(r.Body).Decode(&opt); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	created, err := h.Catalog.Create(r.Context(), opt)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// Update: POST /options/update?id= (admin)
func (h *OptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var patch struct {
		Category *string          `json:"kategoria"`
		Name     *string          `json:"nazwa"`
		NetPrice *decimal.Decimal `json:"cena_netto_eur"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updated, err := h.Catalog.Update(r.Context(), id, catalog.OptionPatch{
		Category: patch.Category,
		Name:     patch.Name,
		NetPrice: patch.NetPrice,
	})
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete: POST /options/delete?id= (admin)
func (h *OptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		httpx.Problem(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import: POST /options/import (admin) — CSV body replaces the catalog.
func (h *OptionHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	n, err := h.Catalog.ImportCSV(r.Context(), r.Body)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "import_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"imported": n})
}
