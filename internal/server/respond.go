package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/musicapp/internal/shared"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const flashCookie = "flash"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as JSON. Persistence failures keep their detail; other
// unexpected errors are logged and reported as "internal error".
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		if errors.Is(err, shared.ErrPersistence) {
			logger.Error("persistence failure", "error", err)
		} else {
			logger.Error("unhandled error", "error", err)
			message = "internal error"
		}
	}
	writeStatus(w, status, message)
}

// redirectWithFlash sends a 303 to location with a one-shot flash message cookie.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, location, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// idParam parses a path parameter as a positive ID. It reports false when the
// value is not a number, which callers answer with 404 like an unknown ID.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParam reads ?page=, falling back to 1 when it is missing or not a number.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}
