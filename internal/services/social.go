package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/shared"
)

// SocialService handles likes, comments and replies.
type SocialService struct {
	db       *sql.DB
	songs    *repositories.SongRepository
	likes    *repositories.LikeRepository
	comments *repositories.CommentRepository
	replies  *repositories.ReplyRepository
	logger   *log.Logger
}

// NewSocialService creates a [SocialService].
func NewSocialService(db *sql.DB, logger *log.Logger) *SocialService {
	return &SocialService{
		db:       db,
		songs:    repositories.NewSongRepository(db),
		likes:    repositories.NewLikeRepository(db),
		comments: repositories.NewCommentRepository(db),
		replies:  repositories.NewReplyRepository(db),
		logger:   serviceLogger(logger, "social"),
	}
}

// ToggleLike likes the song, or unlikes it when already liked, and returns the new state and count.
func (s *SocialService) ToggleLike(ctx context.Context, songID int64, actor *models.User) (bool, int, error) {
	if err := requireActor(actor); err != nil {
		return false, 0, err
	}
	if _, err := s.songs.Get(ctx, songID); err != nil {
		return false, 0, err
	}

	like := models.Like{UserID: actor.ID, SongID: songID}
	var liked bool
	err := repositories.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repositories.NewLikeRepository(tx)
		err := repo.Remove(ctx, like)
		if errors.Is(err, shared.ErrNotFound) {
			liked = true
			return repo.Add(ctx, like)
		}
		return err
	})
	if err != nil {
		return false, 0, writeErr(err)
	}

	count, err := s.likes.CountForSong(ctx, songID)
	if err != nil {
		return liked, 0, err
	}
	s.logger.Debug("like toggled", "song_id", songID, "user_id", actor.ID, "liked", liked)
	return liked, count, nil
}

// AddComment posts a comment on a song.
func (s *SocialService) AddComment(ctx context.Context, songID int64, text string, actor *models.User) (*models.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.songs.Get(ctx, songID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Text: text, UserID: actor.ID, SongID: songID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, writeErr(err)
	}
	return comment, nil
}

// AddReply answers a comment.
func (s *SocialService) AddReply(ctx context.Context, commentID int64, text string, actor *models.User) (*models.Reply, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.comments.Get(ctx, commentID); err != nil {
		return nil, err
	}

	reply := &models.Reply{Text: text, UserID: actor.ID, CommentID: commentID}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, writeErr(err)
	}
	return reply, nil
}

// writeErr passes domain errors through and wraps anything else as a persistence failure.
func writeErr(err error) error {
	for _, known := range []error{shared.ErrInvalidInput, shared.ErrConflict, shared.ErrNotFound} {
		if errors.Is(err, known) {
			return err
		}
	}
	return persistenceErr(err)
}
