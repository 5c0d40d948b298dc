// Package bookmarks persists named jump targets into entries of a
// notebook. They live in a small sqlite database next to the notebook
// files so external tools can read them without parsing entry JSON.
package bookmarks

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Bookmark is one saved jump target.
type Bookmark struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entry_id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Store handles sqlite operations for bookmarks.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the bookmark database path for a notebook dir.
func DefaultDBPath(notebookDir string) string {
	return filepath.Join(notebookDir, "bookmarks.db")
}

// NewStore opens (or creates) the bookmark database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS bookmarks (
    id TEXT PRIMARY KEY,
    entry_id TEXT NOT NULL,
    label TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_entry ON bookmarks(entry_id);
`
	_, err := s.db.Exec(schema)
	return err
}

// generateID creates a new bookmark ID with "bm-" prefix and 8 hex chars.
func generateID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "bm-" + hex.EncodeToString(b), nil
}

// Add inserts a bookmark for entryID. An empty label falls back to the
// entry id itself.
func (s *Store) Add(entryID, label string) (*Bookmark, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("generate ID: %w", err)
	}
	if label == "" {
		label = entryID
	}

	bm := &Bookmark{
		ID:        id,
		EntryID:   entryID,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.Exec(`
		INSERT INTO bookmarks (id, entry_id, label, created_at)
		VALUES (?, ?, ?, ?)
	`, bm.ID, bm.EntryID, bm.Label, bm.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}
	return bm, nil
}

// Get retrieves a bookmark by ID, nil when absent.
func (s *Store) Get(id string) (*Bookmark, error) {
	var bm Bookmark
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, entry_id, label, created_at FROM bookmarks WHERE id = ?
	`, id).Scan(&bm.ID, &bm.EntryID, &bm.Label, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query bookmark: %w", err)
	}
	bm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &bm, nil
}

// List retrieves all bookmarks, newest first.
func (s *Store) List() ([]Bookmark, error) {
	rows, err := s.db.Query(`
		SELECT id, entry_id, label, created_at FROM bookmarks
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var bm Bookmark
		var createdAt string
		if err := rows.Scan(&bm.ID, &bm.EntryID, &bm.Label, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, bm)
	}
	return out, rows.Err()
}

// ForEntry retrieves the bookmarks pointing at one entry.
func (s *Store) ForEntry(entryID string) ([]Bookmark, error) {
	rows, err := s.db.Query(`
		SELECT id, entry_id, label, created_at FROM bookmarks
		WHERE entry_id = ? ORDER BY created_at DESC, id
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var bm Bookmark
		var createdAt string
		if err := rows.Scan(&bm.ID, &bm.EntryID, &bm.Label, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, bm)
	}
	return out, rows.Err()
}

// Rename updates a bookmark's label.
func (s *Store) Rename(id, label string) error {
	res, err := s.db.Exec(`UPDATE bookmarks SET label = ? WHERE id = ?`, label, id)
	if err != nil {
		return fmt.Errorf("rename bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bookmark not found: %s", id)
	}
	return nil
}

// Remove deletes a bookmark.
func (s *Store) Remove(id string) error {
	res, err := s.db.Exec(`DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bookmark not found: %s", id)
	}
	return nil
}

// RemoveForEntries deletes every bookmark pointing at the given entry
// ids. Called when a subtree is deleted so bookmarks never dangle.
func (s *Store) RemoveForEntries(entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, id := range entryIDs {
		if _, err := tx.Exec(`DELETE FROM bookmarks WHERE entry_id = ?`, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete bookmarks for %s: %w", id, err)
		}
	}
	return tx.Commit()
}
