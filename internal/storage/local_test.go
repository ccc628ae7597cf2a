package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/musicapp/internal/shared"
	tu "github.com/desertthunder/musicapp/internal/testing"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Save", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "images")
		store, err := NewLocalStore(dir, "/static/artist_images/")
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		name, err := store.Save(ctx, "Portrait.JPG", strings.NewReader("jpeg bytes"))
		if err != nil {
			t.Fatalf("failed to save file: %v", err)
		}
		if !strings.HasSuffix(name, ".jpg") {
			t.Errorf("expected .jpg suffix, got %s", name)
		}
		if name == "Portrait.JPG" {
			t.Error("stored name should be generated, not the upload name")
		}

		path := filepath.Join(dir, name)
		tu.AssertFileExists(t, path)
		if got := tu.MustReadFile(t, path); got != "jpeg bytes" {
			t.Errorf("expected file contents to match, got %q", got)
		}
	})

	t.Run("URL", func(t *testing.T) {
		store := &LocalStore{Dir: t.TempDir(), URLPrefix: "/static/songs/"}
		if got := store.URL("a.mp3"); got != "/static/songs/a.mp3" {
			t.Errorf("unexpected URL %s", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocalStore(dir, "/")
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		name, err := store.Save(ctx, "a.png", strings.NewReader("png"))
		if err != nil {
			t.Fatalf("failed to save file: %v", err)
		}
		if err := store.Delete(ctx, name); err != nil {
			t.Fatalf("failed to delete file: %v", err)
		}
		tu.AssertFileMissing(t, filepath.Join(dir, name))
	})

	t.Run("Delete missing file", func(t *testing.T) {
		store := &LocalStore{Dir: t.TempDir()}
		err := store.Delete(ctx, "gone.png")
		if !IsNotExist(err) {
			t.Errorf("expected not-exist error, got %v", err)
		}
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Delete rejects paths", func(t *testing.T) {
		store := &LocalStore{Dir: t.TempDir()}
		err := store.Delete(ctx, "../config.toml")
		if err == nil || IsNotExist(err) {
			t.Errorf("expected invalid name error, got %v", err)
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("Local", func(t *testing.T) {
		dir := t.TempDir()
		cfg := shared.DefaultConfig().Storage
		cfg.ImageFolder = filepath.Join(dir, "images")
		cfg.SongFolder = filepath.Join(dir, "songs")

		stores, err := Open(ctx, cfg)
		if err != nil {
			t.Fatalf("failed to open stores: %v", err)
		}
		if stores.Images.URL("x.png") != "/static/artist_images/x.png" {
			t.Errorf("unexpected image URL %s", stores.Images.URL("x.png"))
		}
		tu.AssertFileExists(t, cfg.SongFolder)
	})

	t.Run("Unknown provider", func(t *testing.T) {
		_, err := Open(ctx, shared.StorageConfig{Provider: "ftp"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
