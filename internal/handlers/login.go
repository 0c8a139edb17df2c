package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/auth"
	"github.com/mjaworski/window-offers/internal/httpx"
)

type AuthHandler struct {
	DB  *gorm.DB
	Svc *auth.UserService
}

func NewAuthHandler(db *gorm.DB, svc *auth.UserService) *AuthHandler {
	return &AuthHandler{DB: db, Svc: svc}
}

// Login: POST /login — verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	user, err := h.Svc.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

// Logout: POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
