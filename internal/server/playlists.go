package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/services"
)

// PlaylistHandler serves the signed-in user's playlists.
type PlaylistHandler struct {
	playlists *services.PlaylistService
	logger    *log.Logger
}

// NewPlaylistHandler creates a [PlaylistHandler].
func NewPlaylistHandler(playlists *services.PlaylistService, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, logger: logger}
}

func (h *PlaylistHandler) Routes() []Route {
	signedIn := []Middleware{RequireUser}
	return []Route{
		{Method: http.MethodGet, Path: "/playlist", Handler: h.List, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/playlist", Handler: h.Create, Middleware: signedIn},
		{Method: http.MethodGet, Path: "/playlist/{playlist_id}", Handler: h.Detail, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/playlist/{playlist_id}/song/{song_id}", Handler: h.AddSong, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/playlist/{playlist_id}/song/{song_id}/remove", Handler: h.RemoveSong, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/playlist/{playlist_id}/delete", Handler: h.Delete, Middleware: signedIn},
	}
}

func (h *PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.List(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	playlist, err := h.playlists.Create(r.Context(), r.FormValue("name"), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/playlist/%d", playlist.ID))
	writeJSON(w, http.StatusCreated, playlist)
}

func (h *PlaylistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "playlist_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "playlist not found")
		return
	}

	detail, err := h.playlists.Get(r.Context(), id, UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *PlaylistHandler) AddSong(w http.ResponseWriter, r *http.Request) {
	playlistID, songID, ok := playlistSongParams(r)
	if !ok {
		writeStatus(w, http.StatusNotFound, "playlist or song not found")
		return
	}

	if err := h.playlists.AddSong(r.Context(), playlistID, songID, UserFromContext(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlist_id": playlistID, "song_id": songID, "added": true})
}

func (h *PlaylistHandler) RemoveSong(w http.ResponseWriter, r *http.Request) {
	playlistID, songID, ok := playlistSongParams(r)
	if !ok {
		writeStatus(w, http.StatusNotFound, "playlist or song not found")
		return
	}

	if err := h.playlists.RemoveSong(r.Context(), playlistID, songID, UserFromContext(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlist_id": playlistID, "song_id": songID, "removed": true})
}

func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "playlist_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "playlist not found")
		return
	}

	if err := h.playlists.Delete(r.Context(), id, UserFromContext(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func playlistSongParams(r *http.Request) (int64, int64, bool) {
	playlistID, ok := idParam(r, "playlist_id")
	if !ok {
		return 0, 0, false
	}
	songID, ok := idParam(r, "song_id")
	return playlistID, songID, ok
}
