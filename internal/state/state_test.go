package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	originalPath := path
	originalCurrent := current

	// Use InitWithDir to avoid reading real user state
	err := InitWithDir(filepath.Join(tmpDir, ".config", "burrow"))
	if err != nil {
		t.Fatalf("InitWithDir() failed: %v", err)
	}

	if current == nil {
		t.Error("current state should be initialized")
	}
	if current.NotebookDir != "" {
		t.Errorf("default NotebookDir = %q, want empty", current.NotebookDir)
	}

	// Cleanup
	path = originalPath
	current = originalCurrent
}

func TestLoad_NonExistent(t *testing.T) {
	tmpDir := t.TempDir()
	originalPath := path
	originalCurrent := current

	path = filepath.Join(tmpDir, "nonexistent", "state.json")

	err := Load()
	if err != nil {
		t.Fatalf("Load() for non-existent file should return nil, got %v", err)
	}

	if current == nil {
		t.Error("current should be initialized with defaults")
	}

	// Cleanup
	path = originalPath
	current = originalCurrent
}

func TestLoad_ExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalPath := path
	originalCurrent := current

	stateFile := filepath.Join(tmpDir, "state.json")
	path = stateFile

	// Create a state file
	testState := State{
		NotebookDir: "/some/notebook",
		Outline:     OutlineState{SelectedEntry: "abc123def456", ScrollOffset: 42},
	}
	data, _ := json.Marshal(testState)
	if err := os.WriteFile(stateFile, data, 0644); err != nil {
		t.Fatalf("failed to write test state file: %v", err)
	}

	err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if current.NotebookDir != "/some/notebook" {
		t.Errorf("NotebookDir = %q, want /some/notebook", current.NotebookDir)
	}
	if current.Outline.SelectedEntry != "abc123def456" || current.Outline.ScrollOffset != 42 {
		t.Errorf("Outline = %+v", current.Outline)
	}

	// Cleanup
	path = originalPath
	current = originalCurrent
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	originalPath := path
	originalCurrent := current

	stateFile := filepath.Join(tmpDir, "state.json")
	path = stateFile

	// Create invalid JSON file
	if err := os.WriteFile(stateFile, []byte("invalid json"), 0644); err != nil {
		t.Fatalf("failed to write invalid JSON: %v", err)
	}

	err := Load()
	if err == nil {
		t.Error("Load() should return error for invalid JSON")
	}

	// Cleanup
	path = originalPath
	current = originalCurrent
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	originalPath := path
	originalCurrent := current

	stateFile := filepath.Join(tmpDir, "config", "burrow", "state.json")
	path = stateFile

	current = &State{NotebookDir: "/nb"}
	if err := SetOutlineState(OutlineState{SelectedEntry: "e1", ScrollOffset: 7}); err != nil {
		t.Fatalf("SetOutlineState() failed: %v", err)
	}

	// Save created parent directories and wrote the file
	if _, err := os.Stat(stateFile); err != nil {
		t.Fatalf("state file not written: %v", err)
	}

	current = nil
	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := GetNotebookDir(); got != "/nb" {
		t.Errorf("NotebookDir = %q, want /nb", got)
	}
	if got := GetOutlineState(); got.SelectedEntry != "e1" || got.ScrollOffset != 7 {
		t.Errorf("Outline = %+v", got)
	}

	// Cleanup
	path = originalPath
	current = originalCurrent
}

func TestSetNotebookDir(t *testing.T) {
	tmpDir := t.TempDir()
	originalPath := path
	originalCurrent := current

	path = filepath.Join(tmpDir, "state.json")
	current = &State{}

	if err := SetNotebookDir("/elsewhere"); err != nil {
		t.Fatalf("SetNotebookDir() failed: %v", err)
	}
	if got := GetNotebookDir(); got != "/elsewhere" {
		t.Errorf("NotebookDir = %q", got)
	}

	// Cleanup
	path = originalPath
	current = originalCurrent
}

func TestGettersOnNilState(t *testing.T) {
	originalCurrent := current
	current = nil

	if got := GetNotebookDir(); got != "" {
		t.Errorf("GetNotebookDir() = %q, want empty", got)
	}
	if got := GetOutlineState(); got != (OutlineState{}) {
		t.Errorf("GetOutlineState() = %+v, want zero", got)
	}

	current = originalCurrent
}

func TestConcurrentAccess(t *testing.T) {
	tmpDir := t.TempDir()
	originalPath := path
	originalCurrent := current

	path = filepath.Join(tmpDir, "state.json")
	current = &State{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = SetOutlineState(OutlineState{ScrollOffset: 1})
		}()
		go func() {
			defer wg.Done()
			_ = GetOutlineState()
		}()
	}
	wg.Wait()

	// Cleanup
	path = originalPath
	current = originalCurrent
}
