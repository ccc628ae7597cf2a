package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/shared"
	tu "github.com/desertthunder/musicapp/internal/testing"
)

type artistFixture struct {
	db      *sql.DB
	svc     *ArtistService
	store   *tu.MemoryStore
	repo    *repositories.ArtistRepository
	owner   int64
	manager *models.User
	plain   *models.User
}

func setupArtists(t *testing.T) *artistFixture {
	t.Helper()
	db := tu.SetupDB(t)
	store := tu.NewMemoryStore("/static/artist_images/")
	f := &artistFixture{
		db:      db,
		svc:     NewArtistService(db, store, nil),
		store:   store,
		repo:    repositories.NewArtistRepository(db),
		owner:   tu.MustCreateUser(t, db, "owner", false, false),
		manager: &models.User{ID: tu.MustCreateUser(t, db, "manager", false, true), IsManager: true},
		plain:   &models.User{ID: tu.MustCreateUser(t, db, "plain", false, false)},
	}
	return f
}

func TestListArtists(t *testing.T) {
	ctx := context.Background()
	db := tu.SetupDB(t)
	svc := NewArtistService(db, tu.NewMemoryStore("/"), nil)

	want := make(map[int64]bool)
	for i := range 30 {
		want[tu.MustCreateArtist(t, db, fmt.Sprintf("Artist %02d", i), "")] = true
	}

	t.Run("Pages concatenate to the full set", func(t *testing.T) {
		seen := make(map[int64]bool)
		var last int64
		sizes := []int{}

		for page := 1; page <= 3; page++ {
			p, err := svc.ListArtists(ctx, page)
			if err != nil {
				t.Fatalf("failed to list page %d: %v", page, err)
			}
			if len(p.Items) > PerPage {
				t.Errorf("page %d has %d items, more than %d", page, len(p.Items), PerPage)
			}
			sizes = append(sizes, len(p.Items))

			for _, a := range p.Items {
				if seen[a.ID] {
					t.Errorf("artist %d returned twice", a.ID)
				}
				if a.ID <= last {
					t.Errorf("artists out of order: %d after %d", a.ID, last)
				}
				seen[a.ID] = true
				last = a.ID
			}
		}

		if fmt.Sprint(sizes) != "[12 12 6]" {
			t.Errorf("expected page sizes [12 12 6], got %v", sizes)
		}
		if len(seen) != len(want) {
			t.Errorf("expected %d artists across pages, got %d", len(want), len(seen))
		}
		for id := range want {
			if !seen[id] {
				t.Errorf("artist %d missing from pages", id)
			}
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		p, err := svc.ListArtists(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if p.Total != 30 || p.Pages != 3 || !p.HasPrev || !p.HasNext {
			t.Errorf("unexpected page metadata: %+v", p)
		}
	})

	t.Run("Out of range pages are empty", func(t *testing.T) {
		for _, page := range []int{-1, 0, 4, 100, math.MaxInt/PerPage + 2, math.MaxInt} {
			p, err := svc.ListArtists(ctx, page)
			if err != nil {
				t.Fatalf("page %d should not fail: %v", page, err)
			}
			if len(p.Items) != 0 {
				t.Errorf("page %d: expected empty page, got %d items", page, len(p.Items))
			}
			if p.Items == nil {
				t.Errorf("page %d: items should be an empty slice, not nil", page)
			}
		}
	})

	t.Run("No artists", func(t *testing.T) {
		empty := NewArtistService(tu.SetupDB(t), tu.NewMemoryStore("/"), nil)
		p, err := empty.ListArtists(ctx, 1)
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if len(p.Items) != 0 || p.Pages != 0 || p.HasNext {
			t.Errorf("unexpected empty listing: %+v", p)
		}
	})
}

func TestGetArtistDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("No songs", func(t *testing.T) {
		db := tu.SetupDB(t)
		svc := NewArtistService(db, tu.NewMemoryStore("/static/artist_images/"), nil)
		id := tu.MustCreateArtist(t, db, "Quiet", "")

		detail, err := svc.GetArtistDetail(ctx, id)
		if err != nil {
			t.Fatalf("failed to get artist detail: %v", err)
		}
		if detail.NumSongs != 0 || detail.TotalLikes != 0 {
			t.Errorf("expected 0 songs and 0 likes, got %d and %d", detail.NumSongs, detail.TotalLikes)
		}
		if detail.ImageURL != "/static/artist_images/default.png" {
			t.Errorf("expected default image URL, got %s", detail.ImageURL)
		}
	})

	t.Run("Sums likes across songs", func(t *testing.T) {
		db := tu.SetupDB(t)
		svc := NewArtistService(db, tu.NewMemoryStore("/static/artist_images/"), nil)
		owner := tu.MustCreateUser(t, db, "owner", false, false)
		id := tu.MustCreateArtist(t, db, "Popular", "popular.jpg")

		fans := make([]int64, 5)
		for i := range fans {
			fans[i] = tu.MustCreateUser(t, db, fmt.Sprintf("fan%d", i), false, false)
		}

		for i, likes := range []int{3, 0, 5} {
			songID := tu.MustCreateSong(t, db, owner, id, fmt.Sprintf("song%d", i))
			for _, fan := range fans[:likes] {
				tu.MustLike(t, db, fan, songID)
			}
		}

		other := tu.MustCreateArtist(t, db, "Other", "")
		tu.MustLike(t, db, fans[0], tu.MustCreateSong(t, db, owner, other, "elsewhere"))

		detail, err := svc.GetArtistDetail(ctx, id)
		if err != nil {
			t.Fatalf("failed to get artist detail: %v", err)
		}
		if detail.NumSongs != 3 || len(detail.Songs) != 3 {
			t.Errorf("expected 3 songs, got %d", detail.NumSongs)
		}
		if detail.TotalLikes != 8 {
			t.Errorf("expected 8 total likes, got %d", detail.TotalLikes)
		}
		if detail.ImageURL != "/static/artist_images/popular.jpg" {
			t.Errorf("expected custom image URL, got %s", detail.ImageURL)
		}
	})

	t.Run("Unknown artist", func(t *testing.T) {
		svc := NewArtistService(tu.SetupDB(t), tu.NewMemoryStore("/"), nil)
		if _, err := svc.GetArtistDetail(ctx, 404); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestEditArtist(t *testing.T) {
	ctx := context.Background()
	born := time.Date(1933, time.February, 21, 0, 0, 0, 0, time.UTC)
	image := func(name string) *Upload {
		return &Upload{Filename: name, Body: strings.NewReader("image bytes")}
	}

	t.Run("PrepareEdit", func(t *testing.T) {
		f := setupArtists(t)
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina", BirthDate: &born})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		form, err := f.svc.PrepareEdit(ctx, id, f.manager)
		if err != nil {
			t.Fatalf("failed to prepare edit: %v", err)
		}
		if form.Name != "Nina" || form.BirthDate == nil || !form.BirthDate.Equal(born) {
			t.Errorf("unexpected form: %+v", form)
		}

		if _, err := f.svc.PrepareEdit(ctx, id, f.plain); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if _, err := f.svc.PrepareEdit(ctx, id+100, f.plain); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound before the role check, got %v", err)
		}
	})

	t.Run("Forbidden leaves artist unchanged", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put("old.jpg", []byte("old"))
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina", BirthDate: &born, Image: "old.jpg"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		before, err := f.repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}

		_, err = f.svc.EditArtist(ctx, id, ArtistForm{Name: "Renamed", Image: image("new.jpg")}, f.plain)
		if !errors.Is(err, shared.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}

		after, err := f.repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}
		if after.Name != before.Name || after.Image != before.Image || !after.BirthDate.Equal(*before.BirthDate) {
			t.Errorf("artist changed: before %+v after %+v", before, after)
		}
		if f.store.Len() != 1 || !f.store.Has("old.jpg") {
			t.Error("store should be untouched")
		}
	})

	t.Run("Admin may edit", func(t *testing.T) {
		f := setupArtists(t)
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		admin := &models.User{ID: f.owner, IsAdmin: true}
		updated, err := f.svc.EditArtist(ctx, id, ArtistForm{Name: "Nina Simone", BirthDate: &born}, admin)
		if err != nil {
			t.Fatalf("failed to edit artist: %v", err)
		}
		if updated.Name != "Nina Simone" {
			t.Errorf("expected new name, got %s", updated.Name)
		}

		stored, err := f.repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}
		if stored.Name != "Nina Simone" || stored.BirthDate == nil {
			t.Errorf("edit not persisted: %+v", stored)
		}
	})

	t.Run("Birth date is overwritten even when cleared", func(t *testing.T) {
		f := setupArtists(t)
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina", BirthDate: &born})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		if _, err := f.svc.EditArtist(ctx, id, ArtistForm{Name: "Nina"}, f.manager); err != nil {
			t.Fatalf("failed to edit artist: %v", err)
		}

		stored, err := f.repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}
		if stored.BirthDate != nil {
			t.Errorf("expected birth date cleared, got %v", stored.BirthDate)
		}
	})

	t.Run("Default image is never deleted", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put(models.DefaultArtistImage, []byte("shared default"))
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina", Image: models.DefaultArtistImage})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		updated, err := f.svc.EditArtist(ctx, id, ArtistForm{Name: "Nina", Image: image("portrait.png")}, f.manager)
		if err != nil {
			t.Fatalf("failed to edit artist: %v", err)
		}

		if !f.store.Has(models.DefaultArtistImage) {
			t.Error("default.png was removed")
		}
		for _, name := range f.store.Deleted {
			if name == models.DefaultArtistImage {
				t.Error("attempted to delete default.png")
			}
		}
		if updated.Image == models.DefaultArtistImage || !f.store.Has(updated.Image) {
			t.Errorf("expected new stored image, got %q", updated.Image)
		}
	})

	t.Run("Replacing a custom image removes the old file", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put("old.jpg", []byte("old"))
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina", Image: "old.jpg"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		updated, err := f.svc.EditArtist(ctx, id, ArtistForm{Name: "Nina", Image: image("new.jpg")}, f.manager)
		if err != nil {
			t.Fatalf("failed to edit artist: %v", err)
		}

		if f.store.Has("old.jpg") {
			t.Error("old image should be removed")
		}
		if !f.store.Has(updated.Image) || f.store.Len() != 1 {
			t.Errorf("expected only the new image, have %d files", f.store.Len())
		}

		stored, err := f.repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}
		if stored.Image != updated.Image {
			t.Errorf("expected stored image %s, got %s", updated.Image, stored.Image)
		}
	})

	t.Run("No new image keeps the current one", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put("keep.jpg", []byte("keep"))
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina", Image: "keep.jpg"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		updated, err := f.svc.EditArtist(ctx, id, ArtistForm{Name: "Nina S."}, f.manager)
		if err != nil {
			t.Fatalf("failed to edit artist: %v", err)
		}
		if updated.Image != "keep.jpg" || !f.store.Has("keep.jpg") {
			t.Errorf("image should be kept, got %q", updated.Image)
		}
	})

	t.Run("Invalid form", func(t *testing.T) {
		f := setupArtists(t)
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		if _, err := f.svc.EditArtist(ctx, id, ArtistForm{Name: "   "}, f.manager); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Persistence failure cleans up the new image", func(t *testing.T) {
		db := tu.SetupDB(t)
		store := tu.NewMemoryStore("/")
		svc := NewArtistService(db, store, nil)
		manager := &models.User{ID: tu.MustCreateUser(t, db, "manager", false, true), IsManager: true}

		store.Put("old.jpg", []byte("old"))
		id := tu.MustCreateArtist(t, db, "Nina", "old.jpg")
		tu.FailArtistUpdates(t, db)

		_, err := svc.EditArtist(ctx, id, ArtistForm{Name: "Renamed", Image: image("new.jpg")}, manager)
		if !errors.Is(err, shared.ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
		if !strings.Contains(err.Error(), "disk I/O error") {
			t.Errorf("expected underlying detail in error, got %v", err)
		}
		if !store.Has("old.jpg") || store.Len() != 1 {
			t.Errorf("expected only old.jpg to remain, have %d files", store.Len())
		}
	})

	t.Run("Unknown artist", func(t *testing.T) {
		f := setupArtists(t)
		if _, err := f.svc.EditArtist(ctx, 999, ArtistForm{Name: "x"}, f.manager); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Anonymous actor", func(t *testing.T) {
		f := setupArtists(t)
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Nina"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		if _, err := f.svc.EditArtist(ctx, id, ArtistForm{Name: "x"}, nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestDeleteArtist(t *testing.T) {
	ctx := context.Background()

	t.Run("Two songs keeps the artist", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put("face.jpg", []byte("face"))
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Busy", Image: "face.jpg"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		tu.MustCreateSong(t, f.db, f.owner, id, "one")
		tu.MustCreateSong(t, f.db, f.owner, id, "two")

		ok, err := f.svc.DeleteArtist(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected deletion to be refused")
		}
		if _, err := f.repo.Get(ctx, id); err != nil {
			t.Errorf("artist should still exist: %v", err)
		}
		if !f.store.Has("face.jpg") {
			t.Error("image should be untouched")
		}
	})

	t.Run("One song with custom image", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put("face.jpg", []byte("face"))
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Solo", Image: "face.jpg"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		tu.MustCreateSong(t, f.db, f.owner, id, "only")

		ok, err := f.svc.DeleteArtist(ctx, id)
		if err != nil {
			t.Fatalf("failed to delete artist: %v", err)
		}
		if !ok {
			t.Fatal("expected artist to be deleted")
		}
		if f.store.Has("face.jpg") {
			t.Error("image should be removed")
		}
		if _, err := f.repo.Get(ctx, id); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after deletion, got %v", err)
		}
	})

	t.Run("Default image is kept", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put(models.DefaultArtistImage, []byte("default"))
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Plain", Image: models.DefaultArtistImage})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		ok, err := f.svc.DeleteArtist(ctx, id)
		if err != nil || !ok {
			t.Fatalf("expected deletion, got %v, %v", ok, err)
		}
		if !f.store.Has(models.DefaultArtistImage) {
			t.Error("default.png must never be deleted")
		}
	})

	t.Run("Missing image file counts as removed", func(t *testing.T) {
		f := setupArtists(t)
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Ghost", Image: "vanished.jpg"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		ok, err := f.svc.DeleteArtist(ctx, id)
		if err != nil || !ok {
			t.Fatalf("expected deletion, got %v, %v", ok, err)
		}
	})

	t.Run("Storage failure leaves the record", func(t *testing.T) {
		f := setupArtists(t)
		f.store.Put("face.jpg", []byte("face"))
		f.store.DeleteErr = fmt.Errorf("%w: permission denied", shared.ErrStorage)
		id, err := createArtist(ctx, f.repo, &models.Artist{Name: "Locked", Image: "face.jpg"})
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		ok, err := f.svc.DeleteArtist(ctx, id)
		if ok || !errors.Is(err, shared.ErrStorage) {
			t.Fatalf("expected false with ErrStorage, got %v, %v", ok, err)
		}
		if _, err := f.repo.Get(ctx, id); err != nil {
			t.Errorf("artist should still exist: %v", err)
		}
	})

	t.Run("Unknown artist", func(t *testing.T) {
		f := setupArtists(t)
		ok, err := f.svc.DeleteArtist(ctx, 12345)
		if ok || !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected false with ErrNotFound, got %v, %v", ok, err)
		}
	})
}

func createArtist(ctx context.Context, repo *repositories.ArtistRepository, a *models.Artist) (int64, error) {
	if err := repo.Create(ctx, a); err != nil {
		return 0, err
	}
	return a.ID, nil
}
