// package models defines the data model for the music sharing web service
package models

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultArtistImage is the reserved image name meaning "no custom image".
// It is never deleted or overwritten as a per-artist file.
const DefaultArtistImage = "default.png"

// Model defines the base interface for all persistent models in the music service.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model and sets its ID
	Get(ctx context.Context, id int64) (T, error)                   // Get retrieves a model by its ID
	Update(ctx context.Context, model T) error                      // Update modifies an existing model in the database
	Delete(ctx context.Context, id int64) error                     // Delete removes a model from the database by its ID
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// User is an account that can upload songs and, with a role flag, manage artists.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	IsManager    bool   `json:"is_manager"`
}

// CanManageArtists reports whether the user may edit artist metadata.
func (u *User) CanManageArtists() bool {
	return u != nil && (u.IsAdmin || u.IsManager)
}

// Validate checks length limits and required fields.
func (u *User) Validate() error {
	if err := required("username", u.Username, 20); err != nil {
		return err
	}
	if err := required("email", u.Email, 120); err != nil {
		return err
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("email %q is not an address", u.Email)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Artist groups songs under a performer with an optional portrait.
type Artist struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Image     string     `json:"image,omitempty"`
}

// HasCustomImage is true when the artist references an uploaded image file
// that is owned by this record (anything but empty or [DefaultArtistImage]).
func (a *Artist) HasCustomImage() bool {
	return a.Image != "" && a.Image != DefaultArtistImage
}

// ImageOrDefault returns the image file name to display.
func (a *Artist) ImageOrDefault() string {
	if a.Image == "" {
		return DefaultArtistImage
	}
	return a.Image
}

func (a *Artist) Validate() error {
	return required("name", a.Name, 150)
}

// Song is an uploaded audio file owned by a user and optionally linked to an artist.
//
// Artist holds the free-text artist name as entered; ArtistID links the directory entry.
type Song struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album,omitempty"`
	Filename   string    `json:"filename"`
	OwnerID    int64     `json:"owner_id"`
	ArtistID   *int64    `json:"artist_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (s *Song) Validate() error {
	if err := required("title", s.Title, 150); err != nil {
		return err
	}
	if err := required("artist", s.Artist, 50); err != nil {
		return err
	}
	if utf8.RuneCountInString(s.Album) > 50 {
		return fmt.Errorf("album must be at most 50 characters")
	}
	if s.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if s.OwnerID == 0 {
		return fmt.Errorf("owner is required")
	}
	return nil
}

// Like records that a user liked a song. The pair is the primary key.
type Like struct {
	UserID int64 `json:"user_id"`
	SongID int64 `json:"song_id"`
}

// Comment is a short message on a song.
type Comment struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	UserID int64  `json:"user_id"`
	SongID int64  `json:"song_id"`
}

func (c *Comment) Validate() error {
	return required("text", c.Text, 140)
}

// Reply answers a comment.
type Reply struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	UserID    int64  `json:"user_id"`
	CommentID int64  `json:"comment_id"`
}

func (r *Reply) Validate() error {
	return required("text", r.Text, 140)
}

// Playlist is a named, user-owned collection of songs.
type Playlist struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
}

func (p *Playlist) Validate() error {
	if err := required("name", p.Name, 100); err != nil {
		return err
	}
	if p.UserID == 0 {
		return fmt.Errorf("owner is required")
	}
	return nil
}

func required(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}
