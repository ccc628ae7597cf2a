// package storage keeps uploaded artist images and song files on disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/desertthunder/musicapp/internal/shared"
)

// Store persists uploaded files under generated names.
//
// Delete of a missing file returns an error matching [fs.ErrNotExist].
type Store interface {
	Save(ctx context.Context, original string, body io.Reader) (string, error) // Save writes body and returns the generated file name
	Delete(ctx context.Context, filename string) error                         // Delete removes a stored file
	URL(filename string) string                                                // URL returns the public path or URL of a stored file
}

// Stores groups the two upload destinations used by the application.
type Stores struct {
	Images Store
	Songs  Store
}

// Open builds the stores selected by cfg.Provider.
func Open(ctx context.Context, cfg shared.StorageConfig) (*Stores, error) {
	switch cfg.Provider {
	case "local":
		images, err := NewLocalStore(cfg.ImageFolder, cfg.ImageURLPrefix)
		if err != nil {
			return nil, err
		}
		songs, err := NewLocalStore(cfg.SongFolder, cfg.SongURLPrefix)
		if err != nil {
			return nil, err
		}
		return &Stores{Images: images, Songs: songs}, nil
	case "s3":
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Images: NewS3Store(client, cfg.S3, "artist_images/"),
			Songs:  NewS3Store(client, cfg.S3, "songs/"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage provider %q", shared.ErrInvalidConfig, cfg.Provider)
	}
}

// IsNotExist reports whether err means the file was already gone.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
