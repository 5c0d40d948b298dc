package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// State holds persistent user preferences and session position.
type State struct {
	// NotebookDir is the last opened notebook, restored on start when
	// no directory is given on the command line.
	NotebookDir string `json:"notebookDir,omitempty"`

	Outline OutlineState `json:"outline,omitempty"`
}

// OutlineState holds the saved position inside the outline.
type OutlineState struct {
	SelectedEntry string `json:"selectedEntry,omitempty"` // entry id under the cursor
	ScrollOffset  int    `json:"scrollOffset,omitempty"`  // content Y of the viewport top
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", "burrow"))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	path = filepath.Join(dir, "state.json")
	return Load()
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = &State{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, current)
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetNotebookDir returns the last opened notebook directory.
// Returns "" if none is saved.
func GetNotebookDir() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.NotebookDir
}

// SetNotebookDir saves the notebook directory.
func SetNotebookDir(dir string) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.NotebookDir = dir
	mu.Unlock()
	return Save()
}

// GetOutlineState returns the saved outline position.
func GetOutlineState() OutlineState {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return OutlineState{}
	}
	return current.Outline
}

// SetOutlineState saves the outline position.
func SetOutlineState(st OutlineState) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.Outline = st
	mu.Unlock()
	return Save()
}
