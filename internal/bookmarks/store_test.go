package bookmarks

import (
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGet(t *testing.T) {
	s := newStore(t)
	bm, err := s.Add("entry123456", "my place")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if bm.Label != "my place" || bm.EntryID != "entry123456" {
		t.Errorf("bookmark = %+v", bm)
	}

	got, err := s.Get(bm.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Label != "my place" {
		t.Errorf("got = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not round-tripped")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := newStore(t)
	got, err := s.Get("bm-missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestEmptyLabelFallsBackToEntryID(t *testing.T) {
	s := newStore(t)
	bm, err := s.Add("abc123def456", "")
	if err != nil {
		t.Fatal(err)
	}
	if bm.Label != "abc123def456" {
		t.Errorf("label = %q", bm.Label)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newStore(t)
	first, err := s.Add("e1", "first")
	if err != nil {
		t.Fatal(err)
	}
	// Second-resolution timestamps; force distinct ordering keys.
	time.Sleep(1100 * time.Millisecond)
	second, err := s.Add("e2", "second")
	if err != nil {
		t.Fatal(err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order = %s, %s", list[0].ID, list[1].ID)
	}
}

func TestForEntry(t *testing.T) {
	s := newStore(t)
	if _, err := s.Add("e1", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("e1", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("e2", "c"); err != nil {
		t.Fatal(err)
	}

	got, err := s.ForEntry("e1")
	if err != nil {
		t.Fatalf("ForEntry: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestRename(t *testing.T) {
	s := newStore(t)
	bm, err := s.Add("e1", "old")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Rename(bm.ID, "new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, err := s.Get(bm.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "new" {
		t.Errorf("label = %q", got.Label)
	}
	if err := s.Rename("bm-missing", "x"); err == nil {
		t.Error("renaming a missing bookmark should fail")
	}
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	bm, err := s.Add("e1", "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(bm.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got, _ := s.Get(bm.ID); got != nil {
		t.Errorf("bookmark survived removal: %+v", got)
	}
	if err := s.Remove(bm.ID); err == nil {
		t.Error("double remove should fail")
	}
}

func TestRemoveForEntries(t *testing.T) {
	s := newStore(t)
	for _, e := range []string{"e1", "e2", "e3"} {
		if _, err := s.Add(e, e); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RemoveForEntries([]string{"e1", "e3"}); err != nil {
		t.Fatalf("RemoveForEntries: %v", err)
	}
	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].EntryID != "e2" {
		t.Errorf("remaining = %+v", list)
	}
	if err := s.RemoveForEntries(nil); err != nil {
		t.Errorf("empty removal should be a no-op: %v", err)
	}
}
