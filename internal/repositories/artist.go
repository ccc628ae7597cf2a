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

const artistColumns = "id, name, birth_date, image"

// ArtistRepository implements [models.Repository] for [models.Artist] persistence.
type ArtistRepository struct {
	db DBTX
}

// NewArtistRepository creates a new [ArtistRepository] with the given database connection
func NewArtistRepository(db DBTX) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new artist and sets its ID
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO artists (name, birth_date, image) VALUES (?, ?, ?)",
		artist.Name, birthDate(artist.BirthDate), nullString(artist.Image),
	)
	if err != nil {
		return insertErr("artist", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get artist id: %w", err)
	}
	artist.ID = id
	return nil
}

// Get retrieves an artist by ID
func (r *ArtistRepository) Get(ctx context.Context, id int64) (*models.Artist, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+artistColumns+" FROM artists WHERE id = ?", id)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: artist %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artist: %w", err)
	}
	return artist, nil
}

// GetByName returns the lowest-id artist with exactly this name
func (r *ArtistRepository) GetByName(ctx context.Context, name string) (*models.Artist, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+artistColumns+" FROM artists WHERE name = ? ORDER BY id ASC LIMIT 1", name)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: artist %q", shared.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artist: %w", err)
	}
	return artist, nil
}

// Update overwrites name, birth date and image of an existing artist
func (r *ArtistRepository) Update(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE artists SET name = ?, birth_date = ?, image = ? WHERE id = ?",
		artist.Name, birthDate(artist.BirthDate), nullString(artist.Image), artist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}
	return expectOne(result, "artist", artist.ID)
}

// Delete removes an artist by ID. Songs keep their rows with artist_id cleared.
func (r *ArtistRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM artists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}
	return expectOne(result, "artist", id)
}

// List retrieves all artists ordered by ID.
//
// Supported criteria: "name" (string, exact match).
func (r *ArtistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Artist, error) {
	query := "SELECT " + artistColumns + " FROM artists"
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " WHERE name = ?"
		args = append(args, name)
	}

	query += " ORDER BY id ASC"
	return r.query(ctx, query, args...)
}

// Page returns at most limit artists starting at offset, ordered by primary key ascending.
func (r *ArtistRepository) Page(ctx context.Context, limit, offset int) ([]*models.Artist, error) {
	return r.query(ctx, "SELECT "+artistColumns+" FROM artists ORDER BY id ASC LIMIT ? OFFSET ?", limit, offset)
}

// Count returns the number of artists
func (r *ArtistRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(id) FROM artists").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count artists: %w", err)
	}
	return n, nil
}

func (r *ArtistRepository) query(ctx context.Context, query string, args ...any) ([]*models.Artist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := []*models.Artist{}
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return artists, nil
}

func scanArtist(s scanner) (*models.Artist, error) {
	var (
		a     models.Artist
		born  sql.NullTime
		image sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Name, &born, &image); err != nil {
		return nil, err
	}
	if born.Valid {
		t := born.Time
		a.BirthDate = &t
	}
	a.Image = image.String
	return &a, nil
}

// birthDate stores dates without a time component.
func birthDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}
