// Package flattree maintains the flattened, collapse-aware projection of a
// notebook hierarchy: one Row per visible entry, in pre-order. All
// structural mutations are incremental splices over the contiguous span a
// subtree occupies in a pre-order listing; a full rebuild exists only as
// the initial-load path and as the self-healing fallback.
//
// The flat tree mirrors mutations already applied to the backing store.
// It never writes to the store itself, and it assumes a single serialized
// stream of mutations (the UI update loop).
package flattree

import (
	"errors"
	"log/slog"

	"github.com/marcus/burrow/internal/notebook"
)

// Row is one visible entry in the flat projection. It references the
// entry by id only; the entry itself stays owned by the store.
type Row struct {
	EntryID     string
	Depth       int
	HasChildren bool
	Collapsed   bool
}

// Source is the read-only view of the hierarchy the flat tree mirrors.
// Both *notebook.Store (via StoreSource) and the notebook cache satisfy it.
type Source interface {
	RootIDs() ([]string, error)
	Entry(id string) (*notebook.Entry, error)
}

// StoreSource adapts a notebook.Store to the Source interface.
type StoreSource struct {
	Store *notebook.Store
}

func (s StoreSource) RootIDs() ([]string, error) { return s.Store.RootIDs() }

func (s StoreSource) Entry(id string) (*notebook.Entry, error) {
	return s.Store.LoadEntry(id)
}

// Tree is the flat row sequence plus a lazily maintained id->index map.
type Tree struct {
	src    Source
	logger *slog.Logger

	rows    []Row
	index   map[string]int
	indexOK bool
}

// New creates an empty flat tree over src. Call Rebuild to populate it.
func New(src Source, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tree{src: src, logger: logger}
}

// Len returns the visible row count.
func (t *Tree) Len() int { return len(t.rows) }

// Rows returns the live row slice. Callers must treat it as read-only and
// must not retain it across mutations.
func (t *Tree) Rows() []Row { return t.rows }

// RowAt returns the row at index i.
func (t *Tree) RowAt(i int) (Row, error) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, ErrOutOfRange
	}
	return t.rows[i], nil
}

// IndexOf returns the current row index of a visible entry. The second
// result is false when the entry has no visible row (collapsed away or
// deleted). The position map is rebuilt lazily after mutations, so reads
// between mutations are O(1).
func (t *Tree) IndexOf(entryID string) (int, bool) {
	if !t.indexOK {
		t.index = make(map[string]int, len(t.rows))
		for i, r := range t.rows {
			t.index[r.EntryID] = i
		}
		t.indexOK = true
	}
	i, ok := t.index[entryID]
	return i, ok
}

func (t *Tree) invalidateIndex() { t.indexOK = false }

// Rebuild replaces the row sequence with a fresh pre-order traversal.
// O(visible entries). Used on load and as the consistency fallback.
func (t *Tree) Rebuild() error {
	rows, err := t.flatten()
	if err != nil {
		return err
	}
	t.rows = rows
	t.invalidateIndex()
	return nil
}

// flatten produces the full visible row sequence without touching t.rows.
// Uses an explicit work stack so deep notebooks can't overflow the call
// stack.
func (t *Tree) flatten() ([]Row, error) {
	roots, err := t.src.RootIDs()
	if err != nil {
		return nil, err
	}
	var rows []Row
	type item struct {
		id    string
		depth int
	}
	stack := make([]item, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{roots[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e, err := t.src.Entry(it.id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			EntryID:     e.ID,
			Depth:       it.depth,
			HasChildren: e.HasChildren(),
			Collapsed:   e.Collapsed,
		})
		if e.Collapsed {
			continue
		}
		for i := len(e.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{e.Children[i], it.depth + 1})
		}
	}
	return rows, nil
}

// gatherSubtree returns the visible rows for the subtree rooted at id,
// with the root placed at depth.
func (t *Tree) gatherSubtree(id string, depth int) ([]Row, error) {
	var rows []Row
	type item struct {
		id    string
		depth int
	}
	stack := []item{{id, depth}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e, err := t.src.Entry(it.id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			EntryID:     e.ID,
			Depth:       it.depth,
			HasChildren: e.HasChildren(),
			Collapsed:   e.Collapsed,
		})
		if e.Collapsed {
			continue
		}
		for i := len(e.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{e.Children[i], it.depth + 1})
		}
	}
	return rows, nil
}

// Span returns the length of the contiguous row range occupied by the
// subtree whose root row is at index i: the root row plus every following
// row with a greater depth. O(span).
func (t *Tree) Span(i int) int {
	d := t.rows[i].Depth
	j := i + 1
	for j < len(t.rows) && t.rows[j].Depth > d {
		j++
	}
	return j - i
}

// InsertSubtree mirrors a store-side insertion of entryID as the child at
// index under parentID (empty parentID for a root). The store must
// already reflect the mutation. When the parent is visible but collapsed,
// only its denormalized row fields are refreshed; when the parent is
// hidden under a collapsed ancestor the call is a no-op. A parent missing
// from the store entirely returns ErrNotFound.
func (t *Tree) InsertSubtree(parentID string, index int, entryID string) error {
	if parentID == "" {
		sub, err := t.gatherSubtree(entryID, 0)
		if err != nil {
			return err
		}
		t.splice(t.rootInsertPos(index), 0, sub)
		return nil
	}

	parentIdx, visible := t.IndexOf(parentID)
	if !visible {
		// Distinguish "hidden under collapse" (benign no-op) from a
		// dangling id (caller bug).
		if _, err := t.src.Entry(parentID); err != nil {
			if errors.Is(err, notebook.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return nil
	}

	if err := t.refreshRow(parentIdx); err != nil {
		return err
	}
	if t.rows[parentIdx].Collapsed {
		return nil
	}

	sub, err := t.gatherSubtree(entryID, t.rows[parentIdx].Depth+1)
	if err != nil {
		return err
	}
	t.splice(t.childInsertPos(parentIdx, index), 0, sub)
	return nil
}

// RemoveSubtree mirrors a store-side removal: the row for entryID and its
// contiguous descendant span are spliced out. A no-op when the entry has
// no visible row. O(span).
func (t *Tree) RemoveSubtree(entryID string) error {
	i, ok := t.IndexOf(entryID)
	if !ok {
		return nil
	}
	depth := t.rows[i].Depth
	t.splice(i, t.Span(i), nil)

	// The old parent may have lost its last child; refresh its caret.
	if depth > 0 {
		for j := i - 1; j >= 0; j-- {
			if t.rows[j].Depth == depth-1 {
				if err := t.refreshRow(j); err != nil && !errors.Is(err, notebook.ErrNotFound) {
					return err
				}
				break
			}
		}
	}
	return nil
}

// MoveSubtree mirrors a reparent: the visible span for entryID is cut and
// re-spliced at its new position with depths shifted, without re-reading
// the moved descendants from the store. Rows that become hidden (moved
// under a collapsed or invisible parent) are dropped; rows that become
// visible are gathered fresh.
func (t *Tree) MoveSubtree(entryID, newParentID string, newIndex int) error {
	var cut []Row
	oldDepth := -1
	if i, ok := t.IndexOf(entryID); ok {
		oldDepth = t.rows[i].Depth
		n := t.Span(i)
		cut = append(cut, t.rows[i:i+n]...)
		t.splice(i, n, nil)
		if oldDepth > 0 {
			for j := i - 1; j >= 0; j-- {
				if t.rows[j].Depth == oldDepth-1 {
					if err := t.refreshRow(j); err != nil && !errors.Is(err, notebook.ErrNotFound) {
						return err
					}
					break
				}
			}
		}
	}

	// Destination.
	var pos, newDepth int
	if newParentID == "" {
		pos, newDepth = t.rootInsertPos(newIndex), 0
	} else {
		parentIdx, visible := t.IndexOf(newParentID)
		if !visible {
			if _, err := t.src.Entry(newParentID); err != nil {
				if errors.Is(err, notebook.ErrNotFound) {
					return ErrNotFound
				}
				return err
			}
			return nil // moved out of sight
		}
		if err := t.refreshRow(parentIdx); err != nil {
			return err
		}
		if t.rows[parentIdx].Collapsed {
			return nil
		}
		pos, newDepth = t.childInsertPos(parentIdx, newIndex), t.rows[parentIdx].Depth+1
	}

	if cut == nil {
		// Was hidden, becomes visible: gather fresh.
		sub, err := t.gatherSubtree(entryID, newDepth)
		if err != nil {
			return err
		}
		t.splice(pos, 0, sub)
		return nil
	}

	delta := newDepth - oldDepth
	for i := range cut {
		cut[i].Depth += delta
	}
	t.splice(pos, 0, cut)
	return nil
}

// SetCollapsed mirrors a collapse-state change on a visible entry.
// Collapsing removes the descendant span (the entry's own row stays);
// expanding splices the children's subtrees back in document order.
// Idempotent; a hidden entry is a no-op.
func (t *Tree) SetCollapsed(entryID string, collapsed bool) error {
	i, ok := t.IndexOf(entryID)
	if !ok {
		return nil
	}
	if t.rows[i].Collapsed == collapsed {
		return nil
	}

	if collapsed {
		t.splice(i+1, t.Span(i)-1, nil)
		t.rows[i].Collapsed = true
		return nil
	}

	e, err := t.src.Entry(entryID)
	if err != nil {
		if errors.Is(err, notebook.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	var sub []Row
	for _, child := range e.Children {
		cs, err := t.gatherSubtree(child, t.rows[i].Depth+1)
		if err != nil {
			return err
		}
		sub = append(sub, cs...)
	}
	t.splice(i+1, 0, sub)
	t.rows[i].Collapsed = false
	t.rows[i].HasChildren = e.HasChildren()
	return nil
}

// Check compares the incremental sequence against a fresh rebuild and
// returns an *InvariantError describing the first divergence, or nil.
// Comparison covers the structural fields (entry id, depth, collapsed);
// HasChildren is a display hint that is refreshed lazily for rows whose
// children changed while hidden, and is deliberately excluded.
func (t *Tree) Check() error {
	want, err := t.flatten()
	if err != nil {
		return err
	}
	if len(want) != len(t.rows) {
		return &InvariantError{Index: -1, LenGot: len(t.rows), LenWant: len(want)}
	}
	for i := range want {
		if t.rows[i].EntryID != want[i].EntryID ||
			t.rows[i].Depth != want[i].Depth ||
			t.rows[i].Collapsed != want[i].Collapsed {
			return &InvariantError{
				Index:       i,
				Incremental: t.rows[i].EntryID,
				Rebuilt:     want[i].EntryID,
				LenGot:      len(t.rows),
				LenWant:     len(want),
			}
		}
	}
	return nil
}

// SelfHeal runs Check and, on divergence, adopts the rebuilt sequence.
// Returns the invariant error (already recovered from) for reporting, or
// nil when the sequences matched. A desynchronization never crashes the
// session; the store stays authoritative.
func (t *Tree) SelfHeal() error {
	err := t.Check()
	if err == nil {
		return nil
	}
	var inv *InvariantError
	if errors.As(err, &inv) {
		t.logger.Error("flat tree diverged from store, rebuilding", "err", err)
		if rerr := t.Rebuild(); rerr != nil {
			return rerr
		}
		return err
	}
	return err
}

// rootInsertPos computes the row position for a new root at root-list
// index, by skipping the spans of the visible roots before it. A negative
// or oversized index appends, matching the store's clamping.
func (t *Tree) rootInsertPos(index int) int {
	if index < 0 {
		return len(t.rows)
	}
	pos := 0
	for seen := 0; seen < index && pos < len(t.rows); seen++ {
		pos += t.Span(pos)
	}
	return pos
}

// childInsertPos computes the row position for the child at index under
// the visible, expanded parent row at parentIdx, skipping the spans of
// the preceding siblings. Out-of-range indexes append.
func (t *Tree) childInsertPos(parentIdx, index int) int {
	pos := parentIdx + 1
	depth := t.rows[parentIdx].Depth
	for seen := 0; pos < len(t.rows) && t.rows[pos].Depth > depth; seen++ {
		if index >= 0 && seen >= index {
			break
		}
		pos += t.Span(pos)
	}
	return pos
}

// refreshRow reloads the denormalized HasChildren/Collapsed fields of one
// row from the store.
func (t *Tree) refreshRow(i int) error {
	e, err := t.src.Entry(t.rows[i].EntryID)
	if err != nil {
		return err
	}
	t.rows[i].HasChildren = e.HasChildren()
	t.rows[i].Collapsed = e.Collapsed
	return nil
}

// splice replaces t.rows[pos:pos+del] with ins.
func (t *Tree) splice(pos, del int, ins []Row) {
	tail := t.rows[pos+del:]
	out := make([]Row, 0, len(t.rows)-del+len(ins))
	out = append(out, t.rows[:pos]...)
	out = append(out, ins...)
	out = append(out, tail...)
	t.rows = out
	t.invalidateIndex()
}
