package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/shared"
)

// PlaylistDetail is a playlist with its songs.
type PlaylistDetail struct {
	Playlist *models.Playlist `json:"playlist"`
	Songs    []*models.Song   `json:"songs"`
}

// PlaylistService manages user-owned playlists. Only the owner may see or change a playlist.
type PlaylistService struct {
	db        *sql.DB
	playlists *repositories.PlaylistRepository
	songs     *repositories.SongRepository
	logger    *log.Logger
}

// NewPlaylistService creates a [PlaylistService].
func NewPlaylistService(db *sql.DB, logger *log.Logger) *PlaylistService {
	return &PlaylistService{
		db:        db,
		playlists: repositories.NewPlaylistRepository(db),
		songs:     repositories.NewSongRepository(db),
		logger:    serviceLogger(logger, "playlists"),
	}
}

// Create makes an empty playlist owned by actor.
func (s *PlaylistService) Create(ctx context.Context, name string, actor *models.User) (*models.Playlist, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	playlist := &models.Playlist{Name: strings.TrimSpace(name), UserID: actor.ID}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, writeErr(err)
	}

	s.logger.Info("playlist created", "playlist_id", playlist.ID, "user_id", actor.ID)
	return playlist, nil
}

// List returns the actor's playlists.
func (s *PlaylistService) List(ctx context.Context, actor *models.User) ([]*models.Playlist, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.playlists.List(ctx, map[string]any{"user_id": actor.ID})
}

// Get returns a playlist and its songs.
func (s *PlaylistService) Get(ctx context.Context, playlistID int64, actor *models.User) (*PlaylistDetail, error) {
	playlist, err := s.owned(ctx, playlistID, actor)
	if err != nil {
		return nil, err
	}

	songs, err := s.playlists.SongsInPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return &PlaylistDetail{Playlist: playlist, Songs: songs}, nil
}

// AddSong puts a song on the playlist. Adding a song twice returns [shared.ErrConflict].
func (s *PlaylistService) AddSong(ctx context.Context, playlistID, songID int64, actor *models.User) error {
	if _, err := s.owned(ctx, playlistID, actor); err != nil {
		return err
	}
	if _, err := s.songs.Get(ctx, songID); err != nil {
		return err
	}
	if err := s.playlists.AddSong(ctx, playlistID, songID); err != nil {
		return writeErr(err)
	}
	return nil
}

// RemoveSong takes a song off the playlist.
func (s *PlaylistService) RemoveSong(ctx context.Context, playlistID, songID int64, actor *models.User) error {
	if _, err := s.owned(ctx, playlistID, actor); err != nil {
		return err
	}
	if err := s.playlists.RemoveSong(ctx, playlistID, songID); err != nil {
		return writeErr(err)
	}
	return nil
}

// Delete removes a playlist.
func (s *PlaylistService) Delete(ctx context.Context, playlistID int64, actor *models.User) error {
	if _, err := s.owned(ctx, playlistID, actor); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, playlistID); err != nil {
		return writeErr(err)
	}

	s.logger.Info("playlist deleted", "playlist_id", playlistID, "user_id", actor.ID)
	return nil
}

func (s *PlaylistService) owned(ctx context.Context, playlistID int64, actor *models.User) (*models.Playlist, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	playlist, err := s.playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != actor.ID {
		return nil, fmt.Errorf("%w: playlist %d belongs to another user", shared.ErrForbidden, playlistID)
	}
	return playlist, nil
}
