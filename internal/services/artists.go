package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/shared"
	"github.com/desertthunder/musicapp/internal/storage"
)

// ArtistDetail is everything the artist page shows.
type ArtistDetail struct {
	Artist     *models.Artist `json:"artist"`
	Songs      []*models.Song `json:"songs"`
	ImageURL   string         `json:"image_url"`
	NumSongs   int            `json:"num_songs"`
	TotalLikes int            `json:"total_likes"`
}

// ArtistForm is the edit form payload. Image is nil when no new file was submitted.
type ArtistForm struct {
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Image     *Upload    `json:"-"`
}

// Validate trims the name and checks it is present and at most 150 characters.
func (f *ArtistForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if utf8.RuneCountInString(f.Name) > 150 {
		return fmt.Errorf("%w: name must be at most 150 characters", shared.ErrInvalidInput)
	}
	return nil
}

// ArtistService lists, shows, edits and deletes artists.
type ArtistService struct {
	db      *sql.DB
	artists *repositories.ArtistRepository
	songs   *repositories.SongRepository
	likes   *repositories.LikeRepository
	images  storage.Store
	logger  *log.Logger
}

// NewArtistService creates an [ArtistService] storing artist images in images.
func NewArtistService(db *sql.DB, images storage.Store, logger *log.Logger) *ArtistService {
	return &ArtistService{
		db:      db,
		artists: repositories.NewArtistRepository(db),
		songs:   repositories.NewSongRepository(db),
		likes:   repositories.NewLikeRepository(db),
		images:  images,
		logger:  serviceLogger(logger, "artists"),
	}
}

// ListArtists returns one page of artists ordered by ID.
//
// Pages below 1 or past the end are empty rather than an error.
func (s *ArtistService) ListArtists(ctx context.Context, page int) (*Page[*models.Artist], error) {
	total, err := s.artists.Count(ctx)
	if err != nil {
		return nil, err
	}

	if !pageInRange(page, total) {
		return newPage[*models.Artist](nil, page, total), nil
	}

	artists, err := s.artists.Page(ctx, PerPage, (page-1)*PerPage)
	if err != nil {
		return nil, err
	}
	return newPage(artists, page, total), nil
}

// GetArtistDetail loads an artist with its songs and like totals.
func (s *ArtistService) GetArtistDetail(ctx context.Context, artistID int64) (*ArtistDetail, error) {
	artist, err := s.artists.Get(ctx, artistID)
	if err != nil {
		return nil, err
	}

	songs, err := s.songs.SongsByArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, song := range songs {
		n, err := s.likes.CountForSong(ctx, song.ID)
		if err != nil {
			return nil, err
		}
		total += n
	}

	return &ArtistDetail{
		Artist:     artist,
		Songs:      songs,
		ImageURL:   s.images.URL(artist.ImageOrDefault()),
		NumSongs:   len(songs),
		TotalLikes: total,
	}, nil
}

// PrepareEdit returns the edit form filled with the artist's current values.
func (s *ArtistService) PrepareEdit(ctx context.Context, artistID int64, actor *models.User) (*ArtistForm, error) {
	artist, err := s.authorizedArtist(ctx, artistID, actor)
	if err != nil {
		return nil, err
	}
	return &ArtistForm{Name: artist.Name, BirthDate: artist.BirthDate}, nil
}

// EditArtist overwrites name and birth date and optionally replaces the image.
//
// A replacement image is stored first. The old image is removed only after the update
// commits, and only when it is a custom image. If the commit fails the new file is
// removed again and the error wraps [shared.ErrPersistence].
func (s *ArtistService) EditArtist(ctx context.Context, artistID int64, form ArtistForm, actor *models.User) (*models.Artist, error) {
	artist, err := s.authorizedArtist(ctx, artistID, actor)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	updated := *artist
	updated.Name = form.Name
	updated.BirthDate = form.BirthDate

	var stored string
	if form.Image != nil {
		stored, err = s.images.Save(ctx, form.Image.Filename, form.Image.Body)
		if err != nil {
			return nil, err
		}
		updated.Image = stored
	}

	err = repositories.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return repositories.NewArtistRepository(tx).Update(ctx, &updated)
	})
	if err != nil {
		if stored != "" {
			s.removeImage(ctx, stored)
		}
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("artist update failed", "artist_id", artistID, "error", err)
		return nil, persistenceErr(err)
	}

	if stored != "" && artist.HasCustomImage() {
		s.removeImage(ctx, artist.Image)
	}

	s.logger.Info("artist updated", "artist_id", artistID, "actor", actor.ID, "image", stored != "")
	return &updated, nil
}

// DeleteArtist removes an artist that has at most one song.
//
// The one song allowed is the song the caller is deleting, so the caller must run this
// before deleting that song. With more songs it returns false and changes nothing.
// The custom image is removed before the record; a file that is already gone counts as
// removed, while any other storage failure aborts with the record untouched.
func (s *ArtistService) DeleteArtist(ctx context.Context, artistID int64) (bool, error) {
	artist, err := s.artists.Get(ctx, artistID)
	if err != nil {
		return false, err
	}

	n, err := s.songs.CountByArtist(ctx, artistID)
	if err != nil {
		return false, err
	}
	if n > 1 {
		s.logger.Debug("artist kept", "artist_id", artistID, "songs", n)
		return false, nil
	}

	if artist.HasCustomImage() {
		if err := s.images.Delete(ctx, artist.Image); err != nil && !storage.IsNotExist(err) {
			return false, err
		}
	}

	err = repositories.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return repositories.NewArtistRepository(tx).Delete(ctx, artistID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, err
		}
		return false, persistenceErr(err)
	}

	s.logger.Info("artist deleted", "artist_id", artistID, "name", artist.Name)
	return true, nil
}

// authorizedArtist loads the artist, then checks the actor's role.
func (s *ArtistService) authorizedArtist(ctx context.Context, artistID int64, actor *models.User) (*models.Artist, error) {
	artist, err := s.artists.Get(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.CanManageArtists() {
		return nil, fmt.Errorf("%w: user %d cannot edit artists", shared.ErrForbidden, actor.ID)
	}
	return artist, nil
}

func (s *ArtistService) removeImage(ctx context.Context, filename string) {
	if filename == "" || filename == models.DefaultArtistImage {
		return
	}
	if err := s.images.Delete(ctx, filename); err != nil && !storage.IsNotExist(err) {
		s.logger.Warn("failed to remove artist image", "file", filename, "error", err)
	}
}

// findOrCreateArtist returns the artist with this exact name, creating one with the default image.
func findOrCreateArtist(ctx context.Context, repo *repositories.ArtistRepository, name string) (*models.Artist, error) {
	artist, err := repo.GetByName(ctx, name)
	if err == nil {
		return artist, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	artist = &models.Artist{Name: name, Image: models.DefaultArtistImage}
	if err := repo.Create(ctx, artist); err != nil {
		return nil, err
	}
	return artist, nil
}
