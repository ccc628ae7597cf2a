package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/shared"
	"github.com/desertthunder/musicapp/internal/storage"
)

// AudioExtensions lists the upload extensions accepted as songs.
var AudioExtensions = []string{".mp3", ".m4a", ".flac", ".ogg", ".wav"}

// SongForm is the upload payload. Empty text fields are filled from the file's tags.
type SongForm struct {
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Album  string  `json:"album"`
	File   *Upload `json:"-"`
}

// CommentThread is a comment with its replies.
type CommentThread struct {
	Comment *models.Comment  `json:"comment"`
	Replies []*models.Reply `json:"replies"`
}

// SongDetail is everything the song page shows.
type SongDetail struct {
	Song      *models.Song    `json:"song"`
	URL       string          `json:"url"`
	Likes     int             `json:"likes"`
	LikedByMe bool            `json:"liked_by_me"`
	Comments  []CommentThread `json:"comments"`
}

// SongService uploads, shows and deletes songs.
type SongService struct {
	db       *sql.DB
	songs    *repositories.SongRepository
	likes    *repositories.LikeRepository
	comments *repositories.CommentRepository
	replies  *repositories.ReplyRepository
	files    storage.Store
	artists  *ArtistService
	logger   *log.Logger
}

// NewSongService creates a [SongService] storing audio in files.
func NewSongService(db *sql.DB, files storage.Store, artists *ArtistService, logger *log.Logger) *SongService {
	return &SongService{
		db:       db,
		songs:    repositories.NewSongRepository(db),
		likes:    repositories.NewLikeRepository(db),
		comments: repositories.NewCommentRepository(db),
		replies:  repositories.NewReplyRepository(db),
		files:    files,
		artists:  artists,
		logger:   serviceLogger(logger, "songs"),
	}
}

// List returns one page of songs, newest first.
func (s *SongService) List(ctx context.Context, page int) (*Page[*models.Song], error) {
	total, err := s.songs.Count(ctx)
	if err != nil {
		return nil, err
	}

	if !pageInRange(page, total) {
		return newPage[*models.Song](nil, page, total), nil
	}

	songs, err := s.songs.Page(ctx, PerPage, (page-1)*PerPage)
	if err != nil {
		return nil, err
	}
	return newPage(songs, page, total), nil
}

// Detail loads a song with its like count and comment threads. viewer may be nil.
func (s *SongService) Detail(ctx context.Context, songID int64, viewer *models.User) (*SongDetail, error) {
	song, err := s.songs.Get(ctx, songID)
	if err != nil {
		return nil, err
	}

	likes, err := s.likes.CountForSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	var liked bool
	if viewer != nil {
		liked, err = s.likes.Exists(ctx, models.Like{UserID: viewer.ID, SongID: songID})
		if err != nil {
			return nil, err
		}
	}

	comments, err := s.comments.CommentsForSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	threads := make([]CommentThread, 0, len(comments))
	for _, c := range comments {
		replies, err := s.replies.RepliesForComment(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		threads = append(threads, CommentThread{Comment: c, Replies: replies})
	}

	return &SongDetail{
		Song:      song,
		URL:       s.files.URL(song.Filename),
		Likes:     likes,
		LikedByMe: liked,
		Comments:  threads,
	}, nil
}

// Upload stores an audio file and records it as a song owned by actor.
//
// The song is linked to the artist with the same name, which is created with the
// default image when missing. If the record cannot be written the stored file is removed.
func (s *SongService) Upload(ctx context.Context, actor *models.User, form SongForm) (*models.Song, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if form.File == nil {
		return nil, fmt.Errorf("%w: a song file is required", shared.ErrInvalidInput)
	}

	ext := strings.ToLower(filepath.Ext(form.File.Filename))
	if !slices.Contains(AudioExtensions, ext) {
		return nil, fmt.Errorf("%w: unsupported file type %q", shared.ErrInvalidInput, ext)
	}

	data, err := io.ReadAll(form.File.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read upload: %v", shared.ErrInvalidInput, err)
	}

	fillFromTags(&form, data)

	song := &models.Song{
		Title:   strings.TrimSpace(form.Title),
		Artist:  strings.TrimSpace(form.Artist),
		Album:   strings.TrimSpace(form.Album),
		OwnerID: actor.ID,
	}
	if song.Title == "" {
		song.Title = strings.TrimSuffix(filepath.Base(form.File.Filename), filepath.Ext(form.File.Filename))
	}
	probe := *song
	probe.Filename = form.File.Filename
	if err := probe.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	stored, err := s.files.Save(ctx, form.File.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	song.Filename = stored

	err = repositories.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		artist, err := findOrCreateArtist(ctx, repositories.NewArtistRepository(tx), song.Artist)
		if err != nil {
			return err
		}
		song.ArtistID = &artist.ID
		return repositories.NewSongRepository(tx).Create(ctx, song)
	})
	if err != nil {
		if derr := s.files.Delete(ctx, stored); derr != nil && !storage.IsNotExist(derr) {
			s.logger.Warn("failed to remove orphaned song file", "file", stored, "error", derr)
		}
		return nil, writeErr(err)
	}

	s.logger.Info("song uploaded", "song_id", song.ID, "owner", actor.ID, "artist_id", *song.ArtistID)
	return song, nil
}

// Delete removes a song owned by actor (or any song, for admins) and its audio file.
//
// The linked artist is offered for deletion first, while this song still counts
// toward its total; it is removed only when this was its last song.
// The returned bool reports whether the artist was removed.
func (s *SongService) Delete(ctx context.Context, songID int64, actor *models.User) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}

	song, err := s.songs.Get(ctx, songID)
	if err != nil {
		return false, err
	}
	if song.OwnerID != actor.ID && !actor.IsAdmin {
		return false, fmt.Errorf("%w: song %d belongs to another user", shared.ErrForbidden, songID)
	}

	var artistDeleted bool
	if song.ArtistID != nil {
		artistDeleted, err = s.artists.DeleteArtist(ctx, *song.ArtistID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return false, err
		}
	}

	err = repositories.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return repositories.NewSongRepository(tx).Delete(ctx, songID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return artistDeleted, err
		}
		return artistDeleted, persistenceErr(err)
	}

	if err := s.files.Delete(ctx, song.Filename); err != nil && !storage.IsNotExist(err) {
		s.logger.Warn("failed to remove song file", "file", song.Filename, "error", err)
	}

	s.logger.Info("song deleted", "song_id", songID, "actor", actor.ID, "artist_deleted", artistDeleted)
	return artistDeleted, nil
}

// fillFromTags copies title, artist and album from the file's metadata into empty form fields.
func fillFromTags(form *SongForm, data []byte) {
	meta, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return
	}
	if strings.TrimSpace(form.Title) == "" {
		form.Title = meta.Title()
	}
	if strings.TrimSpace(form.Artist) == "" {
		form.Artist = meta.Artist()
	}
	if strings.TrimSpace(form.Album) == "" {
		form.Album = meta.Album()
	}
}
