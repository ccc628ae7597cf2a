package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

// LikeRepository manages the likes join table.
type LikeRepository struct {
	db DBTX
}

// NewLikeRepository creates a new [LikeRepository] with the given database connection
func NewLikeRepository(db DBTX) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records a like. A second like for the same pair returns [shared.ErrConflict].
func (r *LikeRepository) Add(ctx context.Context, like models.Like) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO likes (user_id, song_id) VALUES (?, ?)", like.UserID, like.SongID)
	if err != nil {
		return insertErr("like", err)
	}
	return nil
}

// Remove deletes a like, returning [shared.ErrNotFound] when the pair does not exist.
func (r *LikeRepository) Remove(ctx context.Context, like models.Like) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM likes WHERE user_id = ? AND song_id = ?", like.UserID, like.SongID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: like (%d, %d)", shared.ErrNotFound, like.UserID, like.SongID)
	}
	return nil
}

// Exists reports whether the user has liked the song.
func (r *LikeRepository) Exists(ctx context.Context, like models.Like) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM likes WHERE user_id = ? AND song_id = ?", like.UserID, like.SongID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query like: %w", err)
	}
	return n > 0, nil
}

// CountForSong returns the number of likes on a song.
func (r *LikeRepository) CountForSong(ctx context.Context, songID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(user_id) FROM likes WHERE song_id = ?", songID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count likes for song %d: %w", songID, err)
	}
	return n, nil
}
