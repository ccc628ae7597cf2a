package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/musicapp/internal/shared"
)

// LocalStore keeps files in a single directory served under URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

// NewLocalStore creates dir if needed and returns a [LocalStore] rooted there.
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", shared.ErrStorage, dir, err)
	}
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix}, nil
}

func (l *LocalStore) Save(ctx context.Context, original string, body io.Reader) (string, error) {
	name := shared.GenerateFilename(original)
	path := filepath.Join(l.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %v", shared.ErrStorage, name, err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: failed to close %s: %v", shared.ErrStorage, name, err)
	}
	return name, nil
}

func (l *LocalStore) Delete(ctx context.Context, filename string) error {
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("%w: invalid file name %q", shared.ErrStorage, filename)
	}
	if err := os.Remove(filepath.Join(l.Dir, filename)); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %w", shared.ErrStorage, filename, err)
	}
	return nil
}

func (l *LocalStore) URL(filename string) string {
	return l.URLPrefix + filename
}
