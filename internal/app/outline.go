package app

import (
	"context"
	"fmt"

	"github.com/marcus/burrow/internal/images"
	"github.com/marcus/burrow/internal/layout"
	"github.com/marcus/burrow/internal/notebook"
	"github.com/marcus/burrow/internal/state"
)

const (
	indentWidth  = 2
	caretWidth   = 2
	dateColWidth = 14
	minTextWidth = 10
)

// textWidth returns the wrap width for a row at the given depth.
func (m *Model) textWidth(depth int) int {
	w := m.width - caretWidth - depth*indentWidth
	if m.cfg != nil && m.cfg.UI.ShowDates {
		w -= dateColWidth
	}
	if w < minTextWidth {
		w = minTextWidth
	}
	return w
}

func (m *Model) layoutParams(depth int) layout.Params {
	return layout.Params{
		Width:      m.textWidth(depth),
		ThumbScale: m.sizer.MaxRows,
	}
}

// ensureRowLayout computes and caches metrics for one row if the cached
// ones are missing or stale. Image tokens on the row are queued for
// background terminal rendering.
func (m *Model) ensureRowLayout(i int) error {
	row, err := m.tree.RowAt(i)
	if err != nil {
		return err
	}
	params := m.layoutParams(row.Depth)
	if m.cache.LayoutValid(row.EntryID, params.Width) {
		return nil
	}

	e, err := m.cache.Entry(row.EntryID)
	if err != nil {
		return err
	}
	metrics, err := layout.Compute(e.Content, params, layout.CellMetrics{}, m.sizer)
	if err != nil {
		return err
	}
	m.cache.StoreLayout(row.EntryID, *metrics)

	for _, n := range e.Content {
		if tok, ok := n.(notebook.ImageToken); ok {
			m.queueImageRender(images.Path(m.store, row.EntryID, tok))
		}
	}
	return nil
}

// syncIndex recomputes every row height and rebuilds the layout index.
// Used after operations that change an unknown number of rows; single
// row churn goes through the incremental index splices instead.
func (m *Model) syncIndex() error {
	heights := make([]int, m.tree.Len())
	for i := range heights {
		if err := m.ensureRowLayout(i); err != nil {
			return err
		}
		h, ok := m.cache.RowHeight(m.tree.Rows()[i].EntryID)
		if !ok {
			h = 1 + 2*layout.RowPadding
		}
		heights[i] = h
	}
	m.index.Rebuild(heights)
	m.clampCursor()
	return nil
}

func (m *Model) clampCursor() {
	if m.cursor >= m.tree.Len() {
		m.cursor = m.tree.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	max := m.index.ContentHeight() - m.viewportHeight()
	if max < 0 {
		max = 0
	}
	if m.scrollY > max {
		m.scrollY = max
	}
	if m.scrollY < 0 {
		m.scrollY = 0
	}
}

func (m *Model) viewportHeight() int {
	h := m.height - headerHeight
	if m.cfg == nil || m.cfg.UI.ShowFooter {
		h -= footerHeight
	}
	if h < 0 {
		h = 0
	}
	return h
}

// moveCursor moves the selection by delta rows and scrolls it into view.
func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= m.tree.Len() {
		m.cursor = m.tree.Len() - 1
	}
	m.ensureCursorVisible()
}

// ensureCursorVisible scrolls so the selected row is fully on screen.
func (m *Model) ensureCursorVisible() {
	if m.cursor < 0 || m.cursor >= m.index.Len() {
		return
	}
	top := m.index.RowTop(m.cursor)
	bottom := top + m.index.RowHeight(m.cursor)
	viewH := m.viewportHeight()

	if top < m.scrollY {
		m.scrollY = top
	} else if bottom > m.scrollY+viewH {
		m.scrollY = bottom - viewH
	}
	m.clampScroll()
}

// scrollBy scrolls the viewport without moving the cursor.
func (m *Model) scrollBy(delta int) {
	m.scrollY += delta
	m.clampScroll()
}

// pageBy moves the cursor by one viewport height.
func (m *Model) pageBy(dir int) {
	viewH := m.viewportHeight()
	if viewH < 1 {
		viewH = 1
	}
	y := m.index.RowTop(m.cursor) + dir*viewH
	row, _ := m.index.RowAtY(y)
	if row < 0 {
		row = 0
	}
	m.cursor = row
	m.clampCursor()
	m.ensureCursorVisible()
}

// addSiblingAfter creates an empty sibling after the selected entry,
// selects it, and starts editing. On an empty notebook it creates the
// first root instead.
func (m *Model) addSiblingAfter() error {
	if m.tree.Len() == 0 {
		id, err := m.store.CreateEntry("", 0)
		if err != nil {
			return err
		}
		if err := m.tree.InsertSubtree("", 0, id); err != nil {
			return err
		}
		if err := m.syncIndex(); err != nil {
			return err
		}
		m.cursor = 0
		return m.beginEdit()
	}

	curID := m.SelectedEntryID()
	cur, err := m.cache.Entry(curID)
	if err != nil {
		return err
	}
	parentID := cur.ParentID

	newID, err := m.store.AddSiblingAfter(curID)
	if err != nil {
		return err
	}
	m.cache.InvalidateEntry(parentID)
	m.cache.InvalidateEntry(newID)

	idx, err := m.siblingIndex(parentID, newID)
	if err != nil {
		return err
	}
	if err := m.tree.InsertSubtree(parentID, idx, newID); err != nil {
		return err
	}

	if rowIdx, ok := m.tree.IndexOf(newID); ok {
		if err := m.ensureRowLayout(rowIdx); err != nil {
			return err
		}
		h, _ := m.cache.RowHeight(newID)
		m.index.InsertRows(rowIdx, []int{h})
		m.cursor = rowIdx
		m.ensureCursorVisible()
	}
	return m.beginEdit()
}

// siblingIndex returns the position of id among its siblings.
func (m *Model) siblingIndex(parentID, id string) (int, error) {
	var siblings []string
	var err error
	if parentID == "" {
		siblings, err = m.store.RootIDs()
	} else {
		siblings, err = m.store.ListChildren(parentID)
	}
	if err != nil {
		return 0, err
	}
	for i, s := range siblings {
		if s == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("app: %s not under %q", id, parentID)
}

// indent makes the selected entry the last child of its previous
// sibling.
func (m *Model) indent() error {
	id := m.SelectedEntryID()
	if id == "" {
		return nil
	}
	cur, err := m.cache.Entry(id)
	if err != nil {
		return err
	}
	oldParent := cur.ParentID

	// The store helper expands a collapsed target; the projection must
	// mirror that before the subtree moves under it, while the target's
	// hidden children are still its only ones.
	if err := m.expandIndentTarget(oldParent, id); err != nil {
		return err
	}

	moved, err := m.store.IndentUnderPrevSibling(id)
	if err != nil || !moved {
		return err
	}

	fresh, err := m.store.LoadEntry(id)
	if err != nil {
		return err
	}
	m.cache.InvalidateEntry(id)
	m.cache.InvalidateEntry(oldParent)
	m.cache.InvalidateEntry(fresh.ParentID)

	idx, err := m.siblingIndex(fresh.ParentID, id)
	if err != nil {
		return err
	}
	if err := m.tree.MoveSubtree(id, fresh.ParentID, idx); err != nil {
		return err
	}
	return m.afterMove(id, fresh.ParentID)
}

// expandIndentTarget expands id's previous sibling in the store and the
// projection when it is collapsed. No-op when id is the first sibling.
func (m *Model) expandIndentTarget(parentID, id string) error {
	var siblings []string
	var err error
	if parentID == "" {
		siblings, err = m.store.RootIDs()
	} else {
		siblings, err = m.store.ListChildren(parentID)
	}
	if err != nil {
		return err
	}
	pos := -1
	for i, s := range siblings {
		if s == id {
			pos = i
			break
		}
	}
	if pos <= 0 {
		return nil
	}
	prevID := siblings[pos-1]

	ridx, ok := m.tree.IndexOf(prevID)
	if !ok {
		return nil
	}
	row, err := m.tree.RowAt(ridx)
	if err != nil {
		return err
	}
	if !row.Collapsed {
		return nil
	}

	if _, err := m.store.SetCollapsed(prevID, false); err != nil {
		return err
	}
	m.cache.InvalidateEntry(prevID)
	return m.tree.SetCollapsed(prevID, false)
}

// outdent moves the selected entry up one level, after its old parent.
func (m *Model) outdent() error {
	id := m.SelectedEntryID()
	if id == "" {
		return nil
	}
	cur, err := m.cache.Entry(id)
	if err != nil {
		return err
	}
	oldParent := cur.ParentID

	moved, err := m.store.OutdentToParentSibling(id)
	if err != nil || !moved {
		return err
	}

	fresh, err := m.store.LoadEntry(id)
	if err != nil {
		return err
	}
	m.cache.InvalidateEntry(id)
	m.cache.InvalidateEntry(oldParent)
	m.cache.InvalidateEntry(fresh.ParentID)

	idx, err := m.siblingIndex(fresh.ParentID, id)
	if err != nil {
		return err
	}
	if err := m.tree.MoveSubtree(id, fresh.ParentID, idx); err != nil {
		return err
	}
	return m.afterMove(id, fresh.ParentID)
}

// afterMove re-syncs the index and parks the cursor on the moved entry,
// or on its new parent when the move landed under a collapse.
func (m *Model) afterMove(id, parentID string) error {
	if err := m.syncIndex(); err != nil {
		return err
	}
	if idx, ok := m.tree.IndexOf(id); ok {
		m.cursor = idx
	} else if idx, ok := m.tree.IndexOf(parentID); ok {
		m.cursor = idx
	}
	m.clampCursor()
	m.ensureCursorVisible()
	return nil
}

// toggleCollapse flips the collapsed flag of the selected entry.
func (m *Model) toggleCollapse() error {
	return m.setCollapsed(m.SelectedEntryID(), "")
}

// setCollapsed applies want ("" to toggle, "open", "closed") to id.
func (m *Model) setCollapsed(id, want string) error {
	if id == "" {
		return nil
	}
	ridx, ok := m.tree.IndexOf(id)
	if !ok {
		return nil
	}
	row, err := m.tree.RowAt(ridx)
	if err != nil {
		return err
	}
	if !row.HasChildren {
		return nil
	}

	target := !row.Collapsed
	switch want {
	case "open":
		target = false
	case "closed":
		target = true
	}
	if target == row.Collapsed {
		return nil
	}

	if _, err := m.store.SetCollapsed(id, target); err != nil {
		return err
	}
	m.cache.InvalidateEntry(id)
	if err := m.tree.SetCollapsed(id, target); err != nil {
		return err
	}
	if err := m.syncIndex(); err != nil {
		return err
	}
	m.ensureCursorVisible()
	return nil
}

// subtreeIDs collects id and all its descendants.
func (m *Model) subtreeIDs(id string) ([]string, error) {
	var out []string
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		e, err := m.cache.Entry(cur)
		if err != nil {
			return nil, err
		}
		for i := len(e.Children) - 1; i >= 0; i-- {
			stack = append(stack, e.Children[i])
		}
	}
	return out, nil
}

// deleteSubtree removes the pending entry, its descendants, their
// bookmarks, and the corresponding rows.
func (m *Model) deleteSubtree(id string) error {
	ids, err := m.subtreeIDs(id)
	if err != nil {
		return err
	}
	e, err := m.cache.Entry(id)
	if err != nil {
		return err
	}
	parentID := e.ParentID

	if err := m.store.DeleteEntry(id); err != nil {
		return err
	}
	if m.marks != nil {
		if err := m.marks.RemoveForEntries(ids); err != nil {
			m.logger.Warn("bookmark cleanup failed", "err", err)
		}
	}

	rowIdx, visible := m.tree.IndexOf(id)
	span := 0
	if visible {
		span = m.tree.Span(rowIdx)
	}

	m.cache.InvalidateEntries(ids)
	m.cache.InvalidateEntry(parentID)

	if err := m.tree.RemoveSubtree(id); err != nil {
		return err
	}
	if visible {
		m.index.RemoveRows(rowIdx, span)
	}
	m.clampCursor()
	return nil
}

// expandAncestors expands every collapsed ancestor of id, root-most
// first, so the entry gains a visible row.
func (m *Model) expandAncestors(id string) error {
	anc, err := m.store.Ancestors(id)
	if err != nil {
		return err
	}
	for i := len(anc) - 1; i >= 0; i-- {
		aid := anc[i]
		changed, err := m.store.SetCollapsed(aid, false)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		m.cache.InvalidateEntry(aid)
		if err := m.tree.SetCollapsed(aid, false); err != nil {
			return err
		}
	}
	return m.syncIndex()
}

// ensureVisible expands ancestors as needed and selects the entry.
func (m *Model) ensureVisible(id string) error {
	if err := m.expandAncestors(id); err != nil {
		return err
	}
	idx, ok := m.tree.IndexOf(id)
	if !ok {
		return fmt.Errorf("app: entry %s has no visible row after expansion", id)
	}
	m.cursor = idx
	m.ensureCursorVisible()
	return nil
}

// beginEdit opens the inline editor seeded with the entry's text.
func (m *Model) beginEdit() error {
	id := m.SelectedEntryID()
	if id == "" {
		return nil
	}
	e, err := m.cache.Entry(id)
	if err != nil {
		return err
	}
	m.editingID = id
	m.input = newEditInput()
	m.input.SetValue(e.PlainText())
	m.input.Width = m.textWidth(0)
	m.input.Focus()
	m.mode = ModeEdit
	return nil
}

// commitEdit writes the edited text back and leaves edit mode.
func (m *Model) commitEdit() error {
	defer func() {
		m.mode = ModeOutline
		m.editingID = ""
	}()
	return m.writeEditText()
}

// writeEditText persists the edit buffer without leaving edit mode.
// Text runs are replaced by a single plain run; image tokens survive in
// place after the text.
func (m *Model) writeEditText() error {
	e, err := m.cache.Entry(m.editingID)
	if err != nil {
		return err
	}

	var content notebook.Content
	text := m.input.Value()
	if text != "" {
		content = append(content, notebook.TextRun{Text: text})
	}
	for _, n := range e.Content {
		if tok, ok := n.(notebook.ImageToken); ok {
			content = append(content, tok)
		}
	}

	edited := e.Clone()
	edited.Content = content
	if err := m.cache.SaveEntry(edited); err != nil {
		return err
	}

	if rowIdx, ok := m.tree.IndexOf(m.editingID); ok {
		if err := m.ensureRowLayout(rowIdx); err != nil {
			return err
		}
		if h, ok := m.cache.RowHeight(m.editingID); ok {
			m.index.SetRowHeight(rowIdx, h)
		}
	}
	return nil
}

// attachImage copies the file into the entry directory and appends its
// token to the entry content.
func (m *Model) attachImage(id, srcPath string) error {
	tok, err := images.Import(m.store, id, srcPath)
	if err != nil {
		return err
	}
	e, err := m.cache.Entry(id)
	if err != nil {
		return err
	}
	edited := e.Clone()
	edited.Content = append(edited.Content, tok)
	if err := m.cache.SaveEntry(edited); err != nil {
		return err
	}

	if rowIdx, ok := m.tree.IndexOf(id); ok {
		if err := m.ensureRowLayout(rowIdx); err != nil {
			return err
		}
		if h, ok := m.cache.RowHeight(id); ok {
			m.index.SetRowHeight(rowIdx, h)
		}
	}
	return nil
}

// reload drops every cached snapshot and rebuilds the projection from
// disk. Bound to the refresh key and external manifest changes.
func (m *Model) reload() error {
	m.cache.InvalidateAll()
	if err := m.tree.Rebuild(); err != nil {
		return err
	}
	return m.syncIndex()
}

// saveUIState persists the selection and scroll position.
func (m *Model) saveUIState() {
	st := state.OutlineState{
		SelectedEntry: m.SelectedEntryID(),
		ScrollOffset:  m.scrollY,
	}
	if err := state.SetOutlineState(st); err != nil {
		m.logger.Warn("could not save ui state", "err", err)
	}
}

// restoreOutlineState reselects the entry from the previous session.
func (m *Model) restoreOutlineState() {
	st := state.GetOutlineState()
	if st.SelectedEntry != "" {
		if idx, ok := m.tree.IndexOf(st.SelectedEntry); ok {
			m.cursor = idx
		}
	}
	m.scrollY = st.ScrollOffset
}

// queueImageRender submits a background job that renders the image file
// into a terminal escape string.
func (m *Model) queueImageRender(path string) {
	if m.worker == nil || m.imagePending[path] {
		return
	}
	if _, done := m.imageRenders[path]; done {
		return
	}
	m.imagePending[path] = true
	p := path
	m.worker.Submit("img:"+p, func(ctx context.Context) (any, error) {
		return images.TerminalRender(p)
	})
}
