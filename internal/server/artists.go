package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/services"
)

// ArtistHandler serves the artist directory and the artist edit form.
type ArtistHandler struct {
	artists *services.ArtistService
	logger  *log.Logger
}

// NewArtistHandler creates an [ArtistHandler].
func NewArtistHandler(artists *services.ArtistService, logger *log.Logger) *ArtistHandler {
	return &ArtistHandler{artists: artists, logger: logger}
}

// Routes returns the artist routes. All of them require a signed-in user.
func (h *ArtistHandler) Routes() []Route {
	signedIn := []Middleware{RequireUser}
	return []Route{
		{Method: http.MethodGet, Path: "/artist", Handler: h.List, Middleware: signedIn},
		{Method: http.MethodGet, Path: "/artist/{artist_id}", Handler: h.Detail, Middleware: signedIn},
		{Method: http.MethodGet, Path: "/artist/{artist_id}/edit", Handler: h.EditForm, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/artist/{artist_id}/edit", Handler: h.Edit, Middleware: signedIn},
	}
}

// List handles GET /artist?page=N.
func (h *ArtistHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.artists.ListArtists(r.Context(), pageParam(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Detail handles GET /artist/{artist_id}.
func (h *ArtistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "artist_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "artist not found")
		return
	}

	detail, err := h.artists.GetArtistDetail(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// EditForm handles GET /artist/{artist_id}/edit with the current values.
func (h *ArtistHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "artist_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "artist not found")
		return
	}

	form, err := h.artists.PrepareEdit(r.Context(), id, UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// Edit handles POST /artist/{artist_id}/edit and redirects to the artist page.
func (h *ArtistHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "artist_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "artist not found")
		return
	}

	actor := UserFromContext(r.Context())
	if _, err := h.artists.PrepareEdit(r.Context(), id, actor); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	birthDate, err := formDate(r, "birth_date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	image, err := formFile(r, "image")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	form := services.ArtistForm{Name: r.FormValue("name"), BirthDate: birthDate, Image: image}
	if _, err := h.artists.EditArtist(r.Context(), id, form, actor); err != nil {
		writeError(w, h.logger, err)
		return
	}
	redirectWithFlash(w, r, fmt.Sprintf("/artist/%d", id), "Artist has been updated!")
}
