package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/services"
)

// SongHandler serves songs and the likes, comments and replies attached to them.
type SongHandler struct {
	songs  *services.SongService
	social *services.SocialService
	logger *log.Logger
}

// NewSongHandler creates a [SongHandler].
func NewSongHandler(songs *services.SongService, social *services.SocialService, logger *log.Logger) *SongHandler {
	return &SongHandler{songs: songs, social: social, logger: logger}
}

// Routes returns the song routes. Browsing is public; changes require a signed-in user.
func (h *SongHandler) Routes() []Route {
	signedIn := []Middleware{RequireUser}
	return []Route{
		{Method: http.MethodGet, Path: "/song", Handler: h.List},
		{Method: http.MethodGet, Path: "/song/{song_id}", Handler: h.Detail},
		{Method: http.MethodPost, Path: "/song/upload", Handler: h.Upload, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/song/{song_id}/delete", Handler: h.Delete, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/song/{song_id}/like", Handler: h.Like, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/song/{song_id}/comment", Handler: h.Comment, Middleware: signedIn},
		{Method: http.MethodPost, Path: "/comment/{comment_id}/reply", Handler: h.Reply, Middleware: signedIn},
	}
}

func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.songs.List(r.Context(), pageParam(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *SongHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "song_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "song not found")
		return
	}

	detail, err := h.songs.Detail(r.Context(), id, UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Upload handles POST /song/upload with the audio file in the "song" field.
func (h *SongHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, err := formFile(r, "song")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	form := services.SongForm{
		Title:  r.FormValue("title"),
		Artist: r.FormValue("artist"),
		Album:  r.FormValue("album"),
		File:   file,
	}
	song, err := h.songs.Upload(r.Context(), UserFromContext(r.Context()), form)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/song/%d", song.ID))
	writeJSON(w, http.StatusCreated, song)
}

func (h *SongHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "song_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "song not found")
		return
	}

	artistDeleted, err := h.songs.Delete(r.Context(), id, UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "artist_deleted": artistDeleted})
}

// Like toggles the signed-in user's like on a song.
func (h *SongHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "song_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "song not found")
		return
	}

	liked, count, err := h.social.ToggleLike(r.Context(), id, UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": count})
}

func (h *SongHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "song_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "song not found")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.social.AddComment(r.Context(), id, r.FormValue("text"), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *SongHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "comment_id")
	if !ok {
		writeStatus(w, http.StatusNotFound, "comment not found")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	reply, err := h.social.AddReply(r.Context(), id, r.FormValue("text"), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

