package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

// PlaylistRepository implements [models.Repository] for [models.Playlist] persistence
// and manages playlist_songs membership.
type PlaylistRepository struct {
	db DBTX
}

// NewPlaylistRepository creates a new [PlaylistRepository] with the given database connection
func NewPlaylistRepository(db DBTX) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist and sets its ID
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.ExecContext(ctx, "INSERT INTO playlists (name, user_id) VALUES (?, ?)", playlist.Name, playlist.UserID)
	if err != nil {
		return insertErr("playlist", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get playlist id: %w", err)
	}
	playlist.ID = id
	return nil
}

// Get retrieves a playlist by ID
func (r *PlaylistRepository) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	var p models.Playlist
	err := r.db.QueryRowContext(ctx, "SELECT id, name, user_id FROM playlists WHERE id = ?", id).Scan(&p.ID, &p.Name, &p.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}
	return &p, nil
}

// Update renames an existing playlist
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.ExecContext(ctx, "UPDATE playlists SET name = ? WHERE id = ?", playlist.Name, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	return expectOne(result, "playlist", playlist.ID)
}

// Delete removes a playlist and its memberships
func (r *PlaylistRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return expectOne(result, "playlist", id)
}

// List retrieves all playlists matching the given criteria
//
// Supported criteria: "user_id" (int64).
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	query := "SELECT id, name, user_id FROM playlists"
	args := []any{}

	if userID, ok := criteria["user_id"].(int64); ok {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*models.Playlist{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// AddSong adds a song to a playlist. Adding it twice returns [shared.ErrConflict].
func (r *PlaylistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO playlist_songs (song_id, playlist_id) VALUES (?, ?)", songID, playlistID)
	if err != nil {
		return insertErr("playlist song", err)
	}
	return nil
}

// RemoveSong removes a song from a playlist
func (r *PlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM playlist_songs WHERE song_id = ? AND playlist_id = ?", songID, playlistID)
	if err != nil {
		return fmt.Errorf("failed to remove playlist song: %w", err)
	}
	return expectOne(result, "playlist song", songID)
}

// SongsInPlaylist returns the songs in a playlist ordered by song ID.
func (r *PlaylistRepository) SongsInPlaylist(ctx context.Context, playlistID int64) ([]*models.Song, error) {
	query := `
		SELECT s.id, s.title, s.artist, s.album, s.filename, s.owner_id, s.artist_id, s.uploaded_at
		FROM songs s
		INNER JOIN playlist_songs ps ON ps.song_id = s.id
		WHERE ps.playlist_id = ?
		ORDER BY s.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}
