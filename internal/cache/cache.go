// Package cache keeps in-memory snapshots of notebook entries together
// with their computed layout metrics, so the view can answer row-height
// queries without touching disk or re-running the layout engine.
package cache

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus/burrow/internal/layout"
	"github.com/marcus/burrow/internal/notebook"
)

// Cache is a load-through snapshot cache over a notebook store. Entry
// snapshots and layout metrics live in separate maps with separate
// lifetimes: a width change drops every layout but keeps every entry,
// while an external edit drops both for the touched ids.
//
// Layout validity is tied to a content digest taken when the layout is
// stored, so a stale layout can never be served for edited content even
// if an invalidation call was missed.
//
// All methods are safe for concurrent use.
type Cache struct {
	store  *notebook.Store
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*notebook.Entry
	layouts map[string]layoutRecord
}

type layoutRecord struct {
	metrics layout.Metrics
	digest  uint64
}

func New(store *notebook.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:   store,
		logger:  logger,
		entries: make(map[string]*notebook.Entry),
		layouts: make(map[string]layoutRecord),
	}
}

// Store returns the underlying notebook store for structural operations.
func (c *Cache) Store() *notebook.Store { return c.store }

// RootIDs reads the manifest root order from the store. Roots are not
// cached; the manifest is a single small file and callers hit this far
// less often than Entry.
func (c *Cache) RootIDs() ([]string, error) {
	return c.store.RootIDs()
}

// Entry returns the cached snapshot for id, loading it from the store
// on first use. Callers must not mutate the returned entry; edits go
// through SaveEntry.
func (c *Cache) Entry(id string) (*notebook.Entry, error) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	e, err := c.store.LoadEntry(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have loaded it meanwhile; keep the first.
	if cached, ok := c.entries[id]; ok {
		return cached, nil
	}
	c.entries[id] = e
	return e, nil
}

// SaveEntry writes e through to the store and replaces the cached
// snapshot. The layout for e is dropped only when the content digest
// actually changed, so structural edits (collapse, reparent) keep the
// computed metrics.
func (c *Cache) SaveEntry(e *notebook.Entry) error {
	if err := c.store.SaveEntry(e); err != nil {
		return err
	}
	snap := e.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snap.ID] = snap
	if rec, ok := c.layouts[snap.ID]; ok && rec.digest != contentDigest(snap) {
		delete(c.layouts, snap.ID)
	}
	return nil
}

// StoreLayout records the layout metrics for the entry's current
// content. The entry must already be cached; metrics computed against
// content the cache has never seen are dropped.
func (c *Cache) StoreLayout(id string, m layout.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		c.logger.Warn("layout stored for uncached entry, dropping", "id", id)
		return
	}
	c.layouts[id] = layoutRecord{metrics: m, digest: contentDigest(e)}
}

// LayoutValid reports whether a layout computed for the given width and
// the entry's current content is on hand.
func (c *Cache) LayoutValid(id string, width int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.layouts[id]
	if !ok || rec.metrics.ComputedFor.Width != width {
		return false
	}
	e, ok := c.entries[id]
	return ok && rec.digest == contentDigest(e)
}

// Layout returns the cached metrics for id, if any. Validity against a
// target width is the caller's concern via LayoutValid.
func (c *Cache) Layout(id string) (layout.Metrics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.layouts[id]
	return rec.metrics, ok
}

// RowHeight returns the cached row height for id in O(1).
func (c *Cache) RowHeight(id string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.layouts[id]
	if !ok {
		return 0, false
	}
	return rec.metrics.RowHeight, true
}

// InvalidateLayoutOnly drops every cached layout but keeps entry
// snapshots. Used on viewport width changes, where the content on disk
// is untouched.
func (c *Cache) InvalidateLayoutOnly() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layouts = make(map[string]layoutRecord)
}

// InvalidateEntry drops both the snapshot and the layout for id.
func (c *Cache) InvalidateEntry(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	delete(c.layouts, id)
}

// InvalidateEntries drops snapshots and layouts for all given ids.
func (c *Cache) InvalidateEntries(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
		delete(c.layouts, id)
	}
}

// InvalidateAll empties the cache. Used when the notebook directory
// changed in ways the watcher could not attribute to specific entries.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*notebook.Entry)
	c.layouts = make(map[string]layoutRecord)
}

// contentDigest hashes the entry content only; metadata and tree shape
// do not affect layout.
func contentDigest(e *notebook.Entry) uint64 {
	b, err := json.Marshal(e.Content)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}
