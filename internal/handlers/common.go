package handlers

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/auth"
	"github.com/mjaworski/window-offers/internal/httpx"
	"github.com/mjaworski/window-offers/internal/models"
)

// currentUser resolves the authenticated caller from the request context.
// Writes 401 and returns false when there is no valid, active user.
func currentUser(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	var user models.User
	if err := db.WithContext(r.Context()).First(&user, uid).Error; err != nil || !user.IsActive {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	return &user, true
}

// idParam parses the ?id= query parameter. Writes 400 on absence/garbage.
func idParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", map[string]string{name: "must_be_positive_integer"})
		return 0, false
	}
	return uint(id), true
}
