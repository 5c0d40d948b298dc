// Package app is the bubbletea program tying the outline together:
// flat tree, layout cache, background worker, watcher, and input modes.
package app

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/burrow/internal/bookmarks"
	"github.com/marcus/burrow/internal/cache"
	"github.com/marcus/burrow/internal/config"
	"github.com/marcus/burrow/internal/flattree"
	"github.com/marcus/burrow/internal/images"
	"github.com/marcus/burrow/internal/ioworker"
	"github.com/marcus/burrow/internal/keymap"
	"github.com/marcus/burrow/internal/mouse"
	"github.com/marcus/burrow/internal/notebook"
	"github.com/marcus/burrow/internal/ui"
	"github.com/marcus/burrow/internal/view"
	"github.com/marcus/burrow/internal/watch"
)

// Mode identifies which input mode currently owns the keyboard.
type Mode int

const (
	ModeOutline Mode = iota
	ModeEdit
	ModeConfirmDelete
	ModeBookmarks
	ModeHelp
)

// context returns the keymap context for the mode.
func (m Mode) context() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeConfirmDelete:
		return "confirm"
	case ModeBookmarks:
		return "bookmarks"
	case ModeHelp:
		return "help"
	default:
		return "outline"
	}
}

// Model is the root Bubble Tea model for the burrow application.
type Model struct {
	cfg    *config.Config
	km     *keymap.Registry
	logger *slog.Logger

	store  *notebook.Store
	cache  *cache.Cache
	tree   *flattree.Tree
	index  *view.LayoutIndex
	sizer  images.CellSizer
	worker *ioworker.Worker
	marks  *bookmarks.Store // nil when the bookmark db could not open

	watchEvents <-chan watch.Event
	watchCloser io.Closer

	// UI state
	width, height int
	ready         bool
	mode          Mode
	cursor        int // row index in the flat tree
	scrollY       int // content offset in cells

	// Inline editing
	input     textinput.Model
	editingID string
	editSeq   int // bumped per keystroke, gates idle autosave

	// Subtree deletion
	confirm       *ui.ConfirmDialog
	pendingDelete string

	// Bookmark list
	marksList *ui.ListOverlay

	// Help overlay, rendered once per size change
	helpText string

	// Image rows: rendered terminal strings by absolute path
	imageRenders map[string]string
	imagePending map[string]bool

	mouseHandler *mouse.Handler

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool
	lastError     error
}

// Options carries the wired dependencies for New.
type Options struct {
	Config      *config.Config
	Keymap      *keymap.Registry
	Logger      *slog.Logger
	Store       *notebook.Store
	Cache       *cache.Cache
	Worker      *ioworker.Worker
	Bookmarks   *bookmarks.Store
	Watch       <-chan watch.Event
	WatchCloser io.Closer
}

// New creates the application model. The flat tree is built eagerly so
// the first frame can paint without waiting on the worker.
func New(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tree := flattree.New(opts.Cache, logger)
	if err := tree.Rebuild(); err != nil {
		return Model{}, err
	}

	m := Model{
		cfg:          opts.Config,
		km:           opts.Keymap,
		logger:       logger,
		store:        opts.Store,
		cache:        opts.Cache,
		tree:         tree,
		index:        &view.LayoutIndex{},
		sizer:        sizerFromConfig(opts.Config),
		worker:       opts.Worker,
		marks:        opts.Bookmarks,
		watchEvents:  opts.Watch,
		watchCloser:  opts.WatchCloser,
		input:        newEditInput(),
		imageRenders: make(map[string]string),
		imagePending: make(map[string]bool),
		mouseHandler: mouse.NewHandler(),
	}
	m.restoreOutlineState()
	return m, nil
}

func newEditInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	return ti
}

func sizerFromConfig(cfg *config.Config) images.CellSizer {
	if cfg == nil {
		return images.CellSizer{}
	}
	return images.CellSizer{
		MaxCols: cfg.Images.MaxCols,
		MaxRows: cfg.Images.MaxRows,
		CellPxW: cfg.Images.CellPxW,
		CellPxH: cfg.Images.CellPxH,
	}
}

// Init starts the clock and the worker/watcher listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.worker != nil {
		cmds = append(cmds, listenWorker(m.worker.Results()))
	}
	if m.watchEvents != nil {
		cmds = append(cmds, listenWatch(m.watchEvents))
	}
	return tea.Batch(cmds...)
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(text string, duration time.Duration) {
	m.statusMsg = text
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = false
}

// ShowErrorToast displays a temporary error message.
func (m *Model) ShowErrorToast(text string, duration time.Duration) {
	m.statusMsg = text
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = true
}

// ClearToast clears an expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// Cursor returns the selected row index.
func (m Model) Cursor() int { return m.cursor }

// Mode returns the current input mode.
func (m Model) CurrentMode() Mode { return m.mode }

// SelectedEntryID returns the id of the entry under the cursor, or "".
func (m Model) SelectedEntryID() string {
	row, err := m.tree.RowAt(m.cursor)
	if err != nil {
		return ""
	}
	return row.EntryID
}
