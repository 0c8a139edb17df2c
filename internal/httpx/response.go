// Package httpx holds the JSON response helpers shared by every handler,
// including the mapping from service error kinds to HTTP status codes.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/mjaworski/window-offers/internal/apperrors"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Problem writes a service-layer error with the status its kind maps to.
// Unknown kinds become an opaque 500; internal causes stay out of the body.
func Problem(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.CodeOf(err)
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindPermissionDenied:
		status = http.StatusForbidden
	case apperrors.KindValidationFailed:
		status = http.StatusBadRequest
	case apperrors.KindConflict:
		status = http.StatusConflict
	default:
		code = "internal_error"
	}
	JSONError(w, status, code, apperrors.DetailsOf(err))
}
