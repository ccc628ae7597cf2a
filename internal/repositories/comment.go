package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

// CommentRepository persists [models.Comment] rows.
type CommentRepository struct {
	db DBTX
}

// NewCommentRepository creates a new [CommentRepository] with the given database connection
func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and sets its ID
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := comment.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (text, user_id, song_id) VALUES (?, ?, ?)",
		comment.Text, comment.UserID, comment.SongID,
	)
	if err != nil {
		return insertErr("comment", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get comment id: %w", err)
	}
	comment.ID = id
	return nil
}

// Get retrieves a comment by ID
func (r *CommentRepository) Get(ctx context.Context, id int64) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRowContext(ctx, "SELECT id, text, user_id, song_id FROM comments WHERE id = ?", id).
		Scan(&c.ID, &c.Text, &c.UserID, &c.SongID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: comment %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query comment: %w", err)
	}
	return &c, nil
}

// Delete removes a comment and, through the schema, its replies
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectOne(result, "comment", id)
}

// CommentsForSong returns a song's comments in posting order.
func (r *CommentRepository) CommentsForSong(ctx context.Context, songID int64) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, text, user_id, song_id FROM comments WHERE song_id = ? ORDER BY id ASC", songID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.UserID, &c.SongID); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return comments, nil
}

// ReplyRepository persists [models.Reply] rows.
type ReplyRepository struct {
	db DBTX
}

// NewReplyRepository creates a new [ReplyRepository] with the given database connection
func NewReplyRepository(db DBTX) *ReplyRepository {
	return &ReplyRepository{db: db}
}

// Create inserts a reply and sets its ID
func (r *ReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	if err := reply.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO replies (text, user_id, comment_id) VALUES (?, ?, ?)",
		reply.Text, reply.UserID, reply.CommentID,
	)
	if err != nil {
		return insertErr("reply", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reply id: %w", err)
	}
	reply.ID = id
	return nil
}

// RepliesForComment returns a comment's replies in posting order.
func (r *ReplyRepository) RepliesForComment(ctx context.Context, commentID int64) ([]*models.Reply, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, text, user_id, comment_id FROM replies WHERE comment_id = ? ORDER BY id ASC", commentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	replies := []*models.Reply{}
	for rows.Next() {
		var rp models.Reply
		if err := rows.Scan(&rp.ID, &rp.Text, &rp.UserID, &rp.CommentID); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, &rp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return replies, nil
}
