package notebook

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const manifestVersion = 2

// ErrNotFound is returned when an entry id does not exist in the store.
var ErrNotFound = errors.New("notebook: entry not found")

// Manifest is the notebook.json root document: notebook name plus the
// ordered root entry ids.
type Manifest struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	RootIDs   []string  `json:"root_ids"`
}

// Store owns the on-disk notebook: one directory per notebook, one JSON
// file per entry under entries/<id[:2]>/<id>/entry.json. Store does all
// persistence; nothing else touches the files.
type Store struct {
	dir    string
	logger *slog.Logger
}

// Open loads an existing notebook directory.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(abs, "notebook.json")); err != nil {
		return nil, fmt.Errorf("notebook: open %s: %w", dir, err)
	}
	return &Store{dir: abs, logger: logger}, nil
}

// Create initializes a new notebook directory. The directory must not
// already contain files (avoid clobbering unrelated data).
func Create(dir, name string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if entries, err := os.ReadDir(abs); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("notebook: %s exists and is not empty", dir)
	}
	if err := os.MkdirAll(filepath.Join(abs, "entries"), 0o755); err != nil {
		return nil, err
	}
	if name == "" {
		name = filepath.Base(abs)
	}
	s := &Store{dir: abs, logger: logger}
	m := Manifest{
		Name:      name,
		Version:   manifestVersion,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.saveManifest(&m); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenOrCreate opens dir as a notebook, creating it if absent.
func OpenOrCreate(dir, name string, logger *slog.Logger) (*Store, error) {
	if _, err := os.Stat(filepath.Join(dir, "notebook.json")); err == nil {
		return Open(dir, logger)
	}
	return Create(dir, name, logger)
}

// Dir returns the notebook directory.
func (s *Store) Dir() string { return s.dir }

// EntryDir returns the directory holding one entry's file and attachments.
func (s *Store) EntryDir(id string) string {
	return filepath.Join(s.dir, "entries", id[:2], id)
}

func (s *Store) entryPath(id string) string {
	return filepath.Join(s.EntryDir(id), "entry.json")
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.dir, "notebook.json")
}

// Manifest loads notebook.json.
func (s *Store) Manifest() (*Manifest, error) {
	data, err := os.ReadFile(s.manifestPath())
	if err != nil {
		return nil, fmt.Errorf("notebook: read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("notebook: parse manifest: %w", err)
	}
	return &m, nil
}

func (s *Store) saveManifest(m *Manifest) error {
	return atomicWriteJSON(s.manifestPath(), m)
}

// RootIDs returns the ordered top-level entry ids.
func (s *Store) RootIDs() ([]string, error) {
	m, err := s.Manifest()
	if err != nil {
		return nil, err
	}
	return m.RootIDs, nil
}

// SetRootIDs replaces the root ordering.
func (s *Store) SetRootIDs(ids []string) error {
	m, err := s.Manifest()
	if err != nil {
		return err
	}
	m.RootIDs = append([]string(nil), ids...)
	return s.saveManifest(m)
}

// LoadEntry reads one entry from disk. Returns ErrNotFound for a missing id.
func (s *Store) LoadEntry(id string) (*Entry, error) {
	if len(id) < 2 {
		return nil, fmt.Errorf("notebook: load %q: %w", id, ErrNotFound)
	}
	data, err := os.ReadFile(s.entryPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("notebook: load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("notebook: load %s: %w", id, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("notebook: parse %s: %w", id, err)
	}
	return &e, nil
}

// SaveEntry writes one entry atomically, bumping its updated timestamp.
func (s *Store) SaveEntry(e *Entry) error {
	e.UpdatedAt = time.Now().UTC()
	if err := os.MkdirAll(s.EntryDir(e.ID), 0o755); err != nil {
		return err
	}
	return atomicWriteJSON(s.entryPath(e.ID), e)
}

// CreateEntry makes a new empty entry under parentID at the given child
// index (clamped; negative appends). An empty parentID creates a root.
// Returns the new id.
func (s *Store) CreateEntry(parentID string, index int) (string, error) {
	id := newID()
	now := time.Now().UTC()
	e := &Entry{
		ID:        id,
		ParentID:  parentID,
		Content:   Content{TextRun{}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := os.MkdirAll(s.EntryDir(id), 0o755); err != nil {
		return "", err
	}
	if err := atomicWriteJSON(s.entryPath(id), e); err != nil {
		return "", err
	}

	if parentID == "" {
		m, err := s.Manifest()
		if err != nil {
			return "", err
		}
		m.RootIDs = insertAt(m.RootIDs, index, id)
		if err := s.saveManifest(m); err != nil {
			return "", err
		}
		return id, nil
	}

	parent, err := s.LoadEntry(parentID)
	if err != nil {
		return "", err
	}
	parent.Children = insertAt(parent.Children, index, id)
	if err := s.SaveEntry(parent); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteEntry removes the entry and its whole subtree, unlinking it from
// its parent (or the root list) and removing the files.
func (s *Store) DeleteEntry(id string) error {
	e, err := s.LoadEntry(id)
	if err != nil {
		return err
	}

	if e.ParentID == "" {
		m, err := s.Manifest()
		if err != nil {
			return err
		}
		m.RootIDs = removeString(m.RootIDs, id)
		if err := s.saveManifest(m); err != nil {
			return err
		}
	} else {
		parent, err := s.LoadEntry(e.ParentID)
		if err == nil {
			parent.Children = removeString(parent.Children, id)
			if err := s.SaveEntry(parent); err != nil {
				return err
			}
		}
	}

	// Collect the subtree with an explicit stack; cycles in corrupt data
	// must not hang the delete.
	seen := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if ce, err := s.LoadEntry(cur); err == nil {
			stack = append(stack, ce.Children...)
		}
	}
	for eid := range seen {
		if err := os.RemoveAll(s.EntryDir(eid)); err != nil {
			s.logger.Warn("delete entry dir failed", "id", eid, "err", err)
		}
	}
	return nil
}

// SetParent reparents id under newParentID at newIndex. An empty
// newParentID moves the entry to the root list. The entry keeps its
// subtree. Moving an entry under its own descendant is rejected.
func (s *Store) SetParent(id, newParentID string, newIndex int) error {
	e, err := s.LoadEntry(id)
	if err != nil {
		return err
	}
	if newParentID != "" {
		anc, err := s.Ancestors(newParentID)
		if err != nil {
			return err
		}
		if newParentID == id {
			return fmt.Errorf("notebook: move %s under itself", id)
		}
		for _, a := range anc {
			if a == id {
				return fmt.Errorf("notebook: move %s under its descendant %s", id, newParentID)
			}
		}
	}

	// Unlink from the old position first so same-parent moves index
	// against the shortened sibling list, matching what the caller sees.
	if e.ParentID == "" {
		m, err := s.Manifest()
		if err != nil {
			return err
		}
		m.RootIDs = removeString(m.RootIDs, id)
		if err := s.saveManifest(m); err != nil {
			return err
		}
	} else {
		parent, err := s.LoadEntry(e.ParentID)
		if err != nil {
			return err
		}
		parent.Children = removeString(parent.Children, id)
		if err := s.SaveEntry(parent); err != nil {
			return err
		}
	}

	if newParentID == "" {
		m, err := s.Manifest()
		if err != nil {
			return err
		}
		m.RootIDs = insertAt(m.RootIDs, newIndex, id)
		if err := s.saveManifest(m); err != nil {
			return err
		}
	} else {
		parent, err := s.LoadEntry(newParentID)
		if err != nil {
			return err
		}
		parent.Children = insertAt(parent.Children, newIndex, id)
		if err := s.SaveEntry(parent); err != nil {
			return err
		}
	}

	e.ParentID = newParentID
	return s.SaveEntry(e)
}

// ListChildren returns the ordered child ids of id.
func (s *Store) ListChildren(id string) ([]string, error) {
	e, err := s.LoadEntry(id)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), e.Children...), nil
}

// Ancestors returns the chain of ancestor ids from id's parent up to the
// root, nearest first.
func (s *Store) Ancestors(id string) ([]string, error) {
	var out []string
	seen := map[string]bool{id: true}
	cur, err := s.LoadEntry(id)
	if err != nil {
		return nil, err
	}
	for cur.ParentID != "" {
		if seen[cur.ParentID] {
			return nil, fmt.Errorf("notebook: ancestor cycle at %s", cur.ParentID)
		}
		seen[cur.ParentID] = true
		out = append(out, cur.ParentID)
		cur, err = s.LoadEntry(cur.ParentID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newID() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

func insertAt(ids []string, index int, id string) []string {
	if index < 0 || index > len(ids) {
		index = len(ids)
	}
	ids = append(ids, "")
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func removeString(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// atomicWriteJSON writes via a temp file, fsyncs, then renames so readers
// never observe a partial entry.
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	if d, err := os.Open(filepath.Dir(path)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
