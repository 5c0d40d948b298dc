package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/burrow/internal/images"
	"github.com/marcus/burrow/internal/mouse"
	"github.com/marcus/burrow/internal/msg"
	"github.com/marcus/burrow/internal/ui"
)

// Update handles all messages and returns the updated model and commands.
func (m Model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch teaMsg := teaMsg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(teaMsg)

	case tea.MouseMsg:
		return m.handleMouseMsg(teaMsg)

	case tea.WindowSizeMsg:
		m.width = teaMsg.Width
		m.height = teaMsg.Height
		m.ready = true
		// Wrap widths changed, every cached layout is stale.
		m.cache.InvalidateLayoutOnly()
		if err := m.syncIndex(); err != nil {
			return m, ReportError(err)
		}
		m.ensureCursorVisible()
		if m.mode == ModeHelp {
			m.helpText = m.renderHelp()
		}
		return m, nil

	case TickMsg:
		m.ClearToast()
		return m, tickCmd()

	case msg.ToastMsg:
		if teaMsg.IsError {
			m.ShowErrorToast(teaMsg.Message, teaMsg.Duration)
		} else {
			m.ShowToast(teaMsg.Message, teaMsg.Duration)
		}
		return m, nil

	case RefreshMsg:
		if err := m.reload(); err != nil {
			return m, ReportError(err)
		}
		return m, nil

	case ErrorMsg:
		m.lastError = teaMsg.Err
		m.logger.Error("operation failed", "err", teaMsg.Err)
		m.ShowErrorToast("Error: "+teaMsg.Err.Error(), 5*time.Second)
		return m, nil

	case autosaveMsg:
		if m.mode == ModeEdit && teaMsg.seq == m.editSeq {
			if err := m.writeEditText(); err != nil {
				m.logger.Warn("autosave failed", "entry", m.editingID, "err", err)
			}
		}
		return m, nil

	case msg.ExternalChangeMsg:
		return m.handleExternalChange(teaMsg)

	case msg.JobDoneMsg:
		return m.handleJobDone(teaMsg)
	}

	return m, nil
}

// handleExternalChange applies a debounced batch of on-disk changes made
// by another process.
func (m Model) handleExternalChange(change msg.ExternalChangeMsg) (tea.Model, tea.Cmd) {
	ev := change.Event

	if ev.ManifestChanged {
		if err := m.reload(); err != nil {
			return m, tea.Batch(ReportError(err), listenWatch(m.watchEvents))
		}
	} else {
		m.cache.InvalidateEntries(ev.EntryIDs)
		if err := m.tree.SelfHeal(); err != nil {
			m.logger.Warn("flat tree healed after external change", "err", err)
		}
		if err := m.syncIndex(); err != nil {
			return m, tea.Batch(ReportError(err), listenWatch(m.watchEvents))
		}
	}

	m.ShowToast("Notebook changed on disk, view refreshed", 3*time.Second)
	return m, listenWatch(m.watchEvents)
}

// handleJobDone consumes one background worker result.
func (m Model) handleJobDone(done msg.JobDoneMsg) (tea.Model, tea.Cmd) {
	r := done.Result

	switch {
	case strings.HasPrefix(r.Key, "img:"):
		path := strings.TrimPrefix(r.Key, "img:")
		delete(m.imagePending, path)
		if r.Err != nil {
			m.logger.Warn("image render failed", "path", path, "err", r.Err)
			break
		}
		if s, ok := r.Value.(string); ok {
			m.imageRenders[path] = s
		}
	default:
		if r.Err != nil {
			return m, tea.Batch(ReportError(r.Err), listenWorker(m.worker.Results()))
		}
	}

	return m, listenWorker(m.worker.Results())
}

// handleKeyMsg routes keyboard input through the keymap for the current
// mode.
func (m Model) handleKeyMsg(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := keyMsg.String()

	// ctrl+c quits from any mode.
	if key == "ctrl+c" {
		m.saveUIState()
		return m, tea.Quit
	}

	if m.mode == ModeEdit {
		return m.handleEditKey(keyMsg)
	}

	command, ok := m.km.Lookup(m.mode.context(), key)
	if !ok {
		return m, nil
	}

	switch m.mode {
	case ModeConfirmDelete:
		return m.handleConfirmCommand(command)
	case ModeBookmarks:
		return m.handleBookmarksCommand(command)
	case ModeHelp:
		if command == "back" || command == "toggle-help" {
			m.mode = ModeOutline
		}
		return m, nil
	default:
		return m.handleOutlineCommand(command)
	}
}

// handleEditKey forwards keys to the inline editor, committing on the
// keymap's commit keys.
func (m Model) handleEditKey(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if command, ok := m.km.Lookup("edit", keyMsg.String()); ok && command == "commit-edit" {
		if err := m.commitEdit(); err != nil {
			return m, ReportError(err)
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	if m.input.Value() != before {
		m.editSeq++
		cmd = tea.Batch(cmd, autosaveCmd(m.editSeq, m.cfg.Notebook.AutosaveDelay))
	}
	return m, cmd
}

func (m Model) handleConfirmCommand(command string) (tea.Model, tea.Cmd) {
	switch command {
	case "confirm":
		id := m.pendingDelete
		m.pendingDelete = ""
		m.confirm = nil
		m.mode = ModeOutline
		if err := m.deleteSubtree(id); err != nil {
			return m, ReportError(err)
		}
		return m, msg.ShowToast("Deleted", 2*time.Second)
	case "cancel":
		m.pendingDelete = ""
		m.confirm = nil
		m.mode = ModeOutline
	}
	return m, nil
}

func (m Model) handleBookmarksCommand(command string) (tea.Model, tea.Cmd) {
	if m.marksList == nil {
		m.mode = ModeOutline
		return m, nil
	}

	switch command {
	case "cursor-down":
		m.marksList.MoveDown()
	case "cursor-up":
		m.marksList.MoveUp()
	case "jump":
		item, ok := m.marksList.Selected()
		m.marksList = nil
		m.mode = ModeOutline
		if !ok {
			return m, nil
		}
		if err := m.ensureVisible(item.Data); err != nil {
			return m, ReportError(err)
		}
	case "remove-bookmark":
		item, ok := m.marksList.Selected()
		if !ok || m.marks == nil {
			return m, nil
		}
		if err := m.marks.Remove(item.ID); err != nil {
			return m, ReportError(err)
		}
		m.marksList.RemoveSelected()
	case "back":
		m.marksList = nil
		m.mode = ModeOutline
	}
	return m, nil
}

func (m Model) handleOutlineCommand(command string) (tea.Model, tea.Cmd) {
	switch command {
	case "quit":
		m.saveUIState()
		return m, tea.Quit

	case "toggle-help":
		m.helpText = m.renderHelp()
		m.mode = ModeHelp

	case "refresh":
		return m, Refresh()

	case "cursor-down":
		m.moveCursor(1)
	case "cursor-up":
		m.moveCursor(-1)
	case "cursor-top":
		m.cursor = 0
		m.ensureCursorVisible()
	case "cursor-bottom":
		m.cursor = m.tree.Len() - 1
		m.clampCursor()
		m.ensureCursorVisible()
	case "page-down":
		m.pageBy(1)
	case "page-up":
		m.pageBy(-1)

	case "add-sibling":
		if err := m.addSiblingAfter(); err != nil {
			return m, ReportError(err)
		}
	case "indent":
		if err := m.indent(); err != nil {
			return m, ReportError(err)
		}
	case "outdent":
		if err := m.outdent(); err != nil {
			return m, ReportError(err)
		}
	case "toggle-collapse":
		if err := m.toggleCollapse(); err != nil {
			return m, ReportError(err)
		}
	case "collapse":
		if err := m.setCollapsed(m.SelectedEntryID(), "closed"); err != nil {
			return m, ReportError(err)
		}
	case "expand":
		if err := m.setCollapsed(m.SelectedEntryID(), "open"); err != nil {
			return m, ReportError(err)
		}

	case "edit-entry":
		if err := m.beginEdit(); err != nil {
			return m, ReportError(err)
		}

	case "delete-subtree":
		return m.requestDelete()

	case "yank-text":
		return m.yankSelected()

	case "import-image":
		return m.importClipboardImage()

	case "bookmark-add":
		return m.addBookmark()

	case "bookmark-list":
		return m.openBookmarkList()
	}

	return m, nil
}

// requestDelete opens the confirmation dialog for the selected subtree.
func (m Model) requestDelete() (tea.Model, tea.Cmd) {
	id := m.SelectedEntryID()
	if id == "" {
		return m, nil
	}
	ids, err := m.subtreeIDs(id)
	if err != nil {
		return m, ReportError(err)
	}

	message := "Delete this entry?"
	if n := len(ids) - 1; n == 1 {
		message = "Delete this entry and its child?"
	} else if n > 1 {
		message = fmt.Sprintf("Delete this entry and its %d descendants?", n)
	}
	dialog := ui.NewConfirmDialog("Delete entry", message)
	dialog.ConfirmLabel = " Delete "
	dialog.Danger = true
	dialog.FocusConfirm()

	m.confirm = dialog
	m.pendingDelete = id
	m.mode = ModeConfirmDelete
	return m, nil
}

// yankSelected copies the selected entry's text to the system clipboard.
func (m Model) yankSelected() (tea.Model, tea.Cmd) {
	id := m.SelectedEntryID()
	if id == "" {
		return m, nil
	}
	e, err := m.cache.Entry(id)
	if err != nil {
		return m, ReportError(err)
	}
	if err := clipboard.WriteAll(e.PlainText()); err != nil {
		return m, ReportError(err)
	}
	return m, msg.ShowToast("Copied to clipboard", 2*time.Second)
}

// importClipboardImage imports the image file whose path is on the
// system clipboard and appends it to the selected entry.
func (m Model) importClipboardImage() (tea.Model, tea.Cmd) {
	id := m.SelectedEntryID()
	if id == "" {
		return m, nil
	}
	raw, err := clipboard.ReadAll()
	if err != nil {
		return m, ReportError(err)
	}
	path := strings.TrimSpace(raw)
	if path == "" || !images.Supported(path) {
		return m, msg.ShowError("Clipboard does not hold an image path", 3*time.Second)
	}
	if err := m.attachImage(id, path); err != nil {
		return m, ReportError(err)
	}
	return m, msg.ShowToast("Image added", 2*time.Second)
}

// addBookmark bookmarks the selected entry.
func (m Model) addBookmark() (tea.Model, tea.Cmd) {
	if m.marks == nil {
		return m, msg.ShowError("Bookmarks unavailable", 3*time.Second)
	}
	id := m.SelectedEntryID()
	if id == "" {
		return m, nil
	}
	e, err := m.cache.Entry(id)
	if err != nil {
		return m, ReportError(err)
	}
	label := e.PlainText()
	if r := []rune(label); len(r) > 40 {
		label = string(r[:40])
	}
	if _, err := m.marks.Add(id, label); err != nil {
		return m, ReportError(err)
	}
	return m, msg.ShowToast("Bookmarked", 2*time.Second)
}

// openBookmarkList shows the bookmark picker.
func (m Model) openBookmarkList() (tea.Model, tea.Cmd) {
	if m.marks == nil {
		return m, msg.ShowError("Bookmarks unavailable", 3*time.Second)
	}
	bms, err := m.marks.List()
	if err != nil {
		return m, ReportError(err)
	}

	items := make([]ui.ListItem, 0, len(bms))
	for _, bm := range bms {
		items = append(items, ui.ListItem{
			Title: bm.Label,
			Desc:  bm.CreatedAt.Format("Jan 02 15:04"),
			ID:    bm.ID,
			Data:  bm.EntryID,
		})
	}
	list := ui.NewListOverlay("Bookmarks", items)
	list.EmptyText = "No bookmarks yet"

	m.marksList = list
	m.mode = ModeBookmarks
	return m, nil
}

// handleMouseMsg handles wheel scrolling and row clicks.
func (m Model) handleMouseMsg(mouseMsg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeOutline {
		return m, nil
	}

	action := m.mouseHandler.HandleMouse(mouseMsg)
	switch action.Type {
	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		m.scrollBy(action.Delta)
		return m, nil

	case mouse.ActionClick, mouse.ActionDoubleClick:
		contentY := action.Y - headerHeight + m.scrollY
		rowIdx, _ := m.index.RowAtY(contentY)
		if rowIdx < 0 || rowIdx >= m.tree.Len() {
			return m, nil
		}
		m.cursor = rowIdx
		m.ensureCursorVisible()

		row, err := m.tree.RowAt(rowIdx)
		if err != nil {
			return m, nil
		}
		caretX := row.Depth * indentWidth
		onCaret := action.X >= caretX && action.X < caretX+caretWidth
		if row.HasChildren && (onCaret || action.Type == mouse.ActionDoubleClick) {
			if err := m.toggleCollapse(); err != nil {
				return m, ReportError(err)
			}
		}
	}

	return m, nil
}
