package watch

import (
	"log/slog"
	"testing"
	"time"

	"github.com/marcus/burrow/internal/notebook"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a watch event")
	}
	return Event{}
}

func TestEntryIDFor(t *testing.T) {
	tests := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/nb/entries/ab/ab12cd34ef56/entry.json", "ab12cd34ef56", true},
		{"/nb/entries/ab/ab12cd34ef56", "ab12cd34ef56", true},
		{"/nb/entries/ab/ab12cd34ef56/photo.png", "ab12cd34ef56", true},
		{"/nb/notebook.json", "", false},
		{"/nb/entries/ab", "", false},
		{"/nb/entries/ab/zz12cd34ef56/entry.json", "", false}, // shard mismatch
	}
	for _, tt := range tests {
		id, ok := entryIDFor("/nb", tt.path)
		if id != tt.id || ok != tt.ok {
			t.Errorf("entryIDFor(%q) = (%q, %v), want (%q, %v)", tt.path, id, ok, tt.id, tt.ok)
		}
	}
}

func TestWatchSeesEntryEdit(t *testing.T) {
	dir := t.TempDir()
	store, err := notebook.Create(dir, "test", slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.CreateEntry("", -1)
	if err != nil {
		t.Fatal(err)
	}

	events, closer, err := Watch(dir, slog.Default())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer closer.Close()

	e, err := store.LoadEntry(id)
	if err != nil {
		t.Fatal(err)
	}
	e.Content = notebook.Content{notebook.TextRun{Text: "edited elsewhere"}}
	if err := store.SaveEntry(e); err != nil {
		t.Fatal(err)
	}

	ev := recvEvent(t, events)
	found := false
	for _, got := range ev.EntryIDs {
		if got == id {
			found = true
		}
	}
	if !found {
		t.Errorf("event = %+v, want entry %s", ev, id)
	}
}

func TestWatchSeesManifestChange(t *testing.T) {
	dir := t.TempDir()
	store, err := notebook.Create(dir, "test", slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	events, closer, err := Watch(dir, slog.Default())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer closer.Close()

	if err := store.SetRootIDs(nil); err != nil {
		t.Fatal(err)
	}

	if ev := recvEvent(t, events); !ev.ManifestChanged {
		t.Errorf("event = %+v, want manifest change", ev)
	}
}

func TestWatchPicksUpNewEntryDirs(t *testing.T) {
	dir := t.TempDir()
	store, err := notebook.Create(dir, "test", slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	events, closer, err := Watch(dir, slog.Default())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer closer.Close()

	// Creating an entry makes brand-new shard and entry directories;
	// the watcher must follow them. The manifest changes too.
	id, err := store.CreateEntry("", -1)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	sawEntry := false
	for !sawEntry {
		select {
		case ev := <-events:
			for _, got := range ev.EntryIDs {
				if got == id {
					sawEntry = true
				}
			}
		case <-deadline:
			t.Fatal("never saw the new entry's change event")
		}
	}
}

func TestCloseEndsStream(t *testing.T) {
	dir := t.TempDir()
	if _, err := notebook.Create(dir, "test", slog.Default()); err != nil {
		t.Fatal(err)
	}
	events, closer, err := Watch(dir, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	closer.Close()
	select {
	case _, ok := <-events:
		if ok {
			// A buffered event may sneak out first; the channel still
			// has to close after it.
			for range events {
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event channel never closed")
	}
}
