// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/musicapp/internal/shared"
)

// SetupDB creates a file-backed SQLite database in a temp directory with migrations applied.
//
// A file is used instead of ":memory:" so every pooled connection sees the same data.
func SetupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// MustCreateUser inserts a user with a placeholder password hash and returns its ID.
func MustCreateUser(t *testing.T, db *sql.DB, username string, admin, manager bool) int64 {
	t.Helper()
	return mustInsert(t, db,
		"INSERT INTO users (username, email, password, is_admin, is_manager) VALUES (?, ?, ?, ?, ?)",
		username, username+"@example.com", "x", admin, manager,
	)
}

// MustCreateArtist inserts an artist and returns its ID. An empty image is stored as NULL.
func MustCreateArtist(t *testing.T, db *sql.DB, name, image string) int64 {
	t.Helper()
	var img any
	if image != "" {
		img = image
	}
	return mustInsert(t, db, "INSERT INTO artists (name, image) VALUES (?, ?)", name, img)
}

// MustCreateSong inserts a song owned by ownerID. A zero artistID leaves the song unlinked.
func MustCreateSong(t *testing.T, db *sql.DB, ownerID, artistID int64, title string) int64 {
	t.Helper()
	var aid any
	if artistID != 0 {
		aid = artistID
	}
	return mustInsert(t, db,
		"INSERT INTO songs (title, artist, filename, owner_id, artist_id) VALUES (?, ?, ?, ?, ?)",
		title, "Artist", title+".mp3", ownerID, aid,
	)
}

// MustLike records that userID liked songID.
func MustLike(t *testing.T, db *sql.DB, userID, songID int64) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO likes (user_id, song_id) VALUES (?, ?)", userID, songID); err != nil {
		t.Fatalf("failed to insert like: %v", err)
	}
}

// MustCountRows returns the number of rows in table matching where (may be empty).
func MustCountRows(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// FailArtistUpdates installs a trigger that aborts every UPDATE on artists.
func FailArtistUpdates(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		CREATE TRIGGER fail_artist_update BEFORE UPDATE ON artists
		BEGIN
			SELECT RAISE(ABORT, 'disk I/O error');
		END
	`)
	if err != nil {
		t.Fatalf("failed to create trigger: %v", err)
	}
}

func mustInsert(t *testing.T, db *sql.DB, query string, args ...any) int64 {
	t.Helper()
	result, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("failed to insert fixture: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to get fixture id: %v", err)
	}
	return id
}

// MemoryStore is an in-memory file store double.
//
// SaveErr and DeleteErr force the corresponding operation to fail.
type MemoryStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	Prefix    string
	SaveErr   error
	DeleteErr error
	Deleted   []string
}

// NewMemoryStore creates an empty [MemoryStore] whose URLs start with prefix.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte), Prefix: prefix}
}

func (m *MemoryStore) Save(ctx context.Context, original string, body io.Reader) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	name := shared.GenerateFilename(original)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return name, nil
}

func (m *MemoryStore) Delete(ctx context.Context, filename string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[filename]; !ok {
		return fmt.Errorf("%w: %s: %w", shared.ErrStorage, filename, fs.ErrNotExist)
	}
	delete(m.files, filename)
	m.Deleted = append(m.Deleted, filename)
	return nil
}

func (m *MemoryStore) URL(filename string) string {
	return m.Prefix + filename
}

// Put seeds a file.
func (m *MemoryStore) Put(filename string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filename] = bytes.Clone(data)
}

// Has reports whether a file is stored.
func (m *MemoryStore) Has(filename string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filename]
	return ok
}

// Len returns the number of stored files.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
