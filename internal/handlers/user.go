package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/auth"
	"github.com/mjaworski/window-offers/internal/httpx"
)

type UserHandler struct {
	DB  *gorm.DB
	Svc *auth.UserService
}

func NewUserHandler(db *gorm.DB, svc *auth.UserService) *UserHandler {
	return &UserHandler{DB: db, Svc: svc}
}

func (h *UserHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
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

// Me: GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// List: GET /users (admin)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	users, err := h.Svc.List(r.Context())
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// Get: GET /users/get?id= (admin)
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	user, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Create: POST /users (admin)
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var in auth.UserCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	user, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

// Update: POST /users/update?id= (admin)
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in auth.UserUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	user, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		httpx.Problem(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// ChangePassword: POST /users/password — self-service, verifies the
// current password first.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Svc.ChangePassword(r.Context(), user.ID, in.CurrentPassword, in.NewPassword); err != nil {
		httpx.Problem(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
