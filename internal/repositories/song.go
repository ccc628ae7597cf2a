package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

const songColumns = "id, title, artist, album, filename, owner_id, artist_id, uploaded_at"

// SongRepository implements [models.Repository] for [models.Song] persistence.
type SongRepository struct {
	db DBTX
}

// NewSongRepository creates a new [SongRepository] with the given database connection
func NewSongRepository(db DBTX) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song and sets its ID. A zero UploadedAt is stamped with the current time.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if song.UploadedAt.IsZero() {
		song.UploadedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO songs (title, artist, album, filename, owner_id, artist_id, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		song.Title, song.Artist, nullString(song.Album), song.Filename, song.OwnerID, nullInt64(song.ArtistID), song.UploadedAt,
	)
	if err != nil {
		return insertErr("song", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get song id: %w", err)
	}
	song.ID = id
	return nil
}

// Get retrieves a song by ID
func (r *SongRepository) Get(ctx context.Context, id int64) (*models.Song, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE id = ?", id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: song %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query song: %w", err)
	}
	return song, nil
}

// Update modifies the metadata of an existing song
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		UPDATE songs
		SET title = ?, artist = ?, album = ?, filename = ?, artist_id = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		song.Title, song.Artist, nullString(song.Album), song.Filename, nullInt64(song.ArtistID), song.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	return expectOne(result, "song", song.ID)
}

// Delete removes a song by ID. Likes, comments and playlist memberships cascade.
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return expectOne(result, "song", id)
}

// List retrieves songs matching the given criteria, newest first.
//
// Supported criteria: "owner_id" (int64), "artist_id" (int64).
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE 1 = 1"
	args := []any{}

	if ownerID, ok := criteria["owner_id"].(int64); ok {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}
	if artistID, ok := criteria["artist_id"].(int64); ok {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}

	query += " ORDER BY uploaded_at DESC, id DESC"
	return r.query(ctx, query, args...)
}

// Page returns at most limit songs starting at offset, newest first.
func (r *SongRepository) Page(ctx context.Context, limit, offset int) ([]*models.Song, error) {
	return r.query(ctx,
		"SELECT "+songColumns+" FROM songs ORDER BY uploaded_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
}

// Count returns the number of songs
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(id) FROM songs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

// SongsByArtist returns every song linked to the artist, ordered by ID.
func (r *SongRepository) SongsByArtist(ctx context.Context, artistID int64) ([]*models.Song, error) {
	return r.query(ctx, "SELECT "+songColumns+" FROM songs WHERE artist_id = ? ORDER BY id ASC", artistID)
}

// CountByArtist returns the number of songs linked to the artist.
func (r *SongRepository) CountByArtist(ctx context.Context, artistID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(id) FROM songs WHERE artist_id = ?", artistID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs for artist %d: %w", artistID, err)
	}
	return n, nil
}

func (r *SongRepository) query(ctx context.Context, query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
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

func scanSong(s scanner) (*models.Song, error) {
	var (
		song     models.Song
		album    sql.NullString
		artistID sql.NullInt64
	)
	err := s.Scan(&song.ID, &song.Title, &song.Artist, &album, &song.Filename, &song.OwnerID, &artistID, &song.UploadedAt)
	if err != nil {
		return nil, err
	}
	song.Album = album.String
	if artistID.Valid {
		id := artistID.Int64
		song.ArtistID = &id
	}
	return &song, nil
}
