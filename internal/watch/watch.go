// Package watch raises batched change events for a notebook directory
// so the UI can pick up edits made by another process.
package watch

import (
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one debounced batch of external changes.
type Event struct {
	EntryIDs        []string // entries whose files changed
	ManifestChanged bool     // notebook.json changed (root order, rename)
}

const debounceDelay = 100 * time.Millisecond

// Watch recursively watches a notebook directory. Changes landing
// within the debounce window coalesce into a single Event. The returned
// closer stops the watcher and closes the event channel.
func Watch(dir string, logger *slog.Logger) (<-chan Event, io.Closer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	// fsnotify is not recursive; every existing directory is added up
	// front and new ones as their create events arrive.
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, nil, err
	}

	events := make(chan Event, 32)

	go func() {
		defer close(events)

		var timer *time.Timer
		var timerC <-chan time.Time
		pending := make(map[string]struct{})
		manifest := false

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					if timer != nil {
						timer.Stop()
					}
					return
				}

				dirty := false

				if event.Op&fsnotify.Create != 0 {
					// Entry dirs appear after startup; watch them and
					// anything already created inside before the Add
					// landed. A freshly discovered entry dir counts as
					// changed, covering writes raced past the watcher.
					filepath.WalkDir(event.Name, func(p string, d fs.DirEntry, err error) error {
						if err != nil || !d.IsDir() {
							return nil
						}
						watcher.Add(p)
						if id, ok := entryIDFor(dir, p); ok {
							pending[id] = struct{}{}
							dirty = true
						}
						return nil
					})
				}

				base := filepath.Base(event.Name)
				switch {
				case strings.HasSuffix(base, ".tmp"), strings.HasPrefix(base, "."):
				case base == "notebook.json":
					manifest = true
					dirty = true
				default:
					if id, ok := entryIDFor(dir, event.Name); ok {
						pending[id] = struct{}{}
						dirty = true
					}
				}
				if !dirty {
					continue
				}

				// Debounce rapid events into one batch.
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(debounceDelay)
				timerC = timer.C

			case <-timerC:
				timerC = nil
				if len(pending) == 0 && !manifest {
					continue
				}
				ev := Event{ManifestChanged: manifest}
				for id := range pending {
					ev.EntryIDs = append(ev.EntryIDs, id)
				}
				pending = make(map[string]struct{})
				manifest = false

				select {
				case events <- ev:
				default:
					// Channel full, drop the batch; the next change
					// will trigger another refresh.
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("notebook watcher error", "error", err)
			}
		}
	}()

	return events, watcher, nil
}

// entryIDFor maps a changed path to the entry id that owns it, using
// the entries/<shard>/<id>/... layout.
func entryIDFor(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 3 || parts[0] != "entries" {
		return "", false
	}
	id := parts[2]
	if len(id) < 2 || !strings.HasPrefix(id, parts[1]) {
		return "", false
	}
	return id, true
}
