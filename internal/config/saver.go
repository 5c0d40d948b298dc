package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// testConfigPath overrides the save/load location in tests.
var testConfigPath string

// SetTestConfigPath points Save and Load at a fixed file. Test use only.
func SetTestConfigPath(path string) { testConfigPath = path }

// ResetTestConfigPath restores the default config location.
func ResetTestConfigPath() { testConfigPath = "" }

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Notebook saveNotebookConfig `json:"notebook"`
	Images   ImagesConfig       `json:"images"`
	Keymap   KeymapConfig       `json:"keymap"`
	UI       UIConfig           `json:"ui"`
}

type saveNotebookConfig struct {
	Dir           string `json:"dir,omitempty"`
	WatchExternal *bool  `json:"watchExternal,omitempty"`
	AutosaveDelay string `json:"autosaveDelay,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Notebook: saveNotebookConfig{
			Dir:           cfg.Notebook.Dir,
			WatchExternal: &cfg.Notebook.WatchExternal,
			AutosaveDelay: cfg.Notebook.AutosaveDelay.String(),
		},
		Images: cfg.Images,
		Keymap: cfg.Keymap,
		UI:     cfg.UI,
	}
}

// Save writes the config file, replacing only the keys this package
// manages. Unknown top-level keys written by other tools survive.
func Save(cfg *Config) error {
	path := testConfigPath
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Start from whatever is on disk so unmanaged keys round-trip.
	doc := make(map[string]json.RawMessage)
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			// Corrupt file; overwrite it wholesale.
			doc = make(map[string]json.RawMessage)
		}
	}

	sc := toSaveConfig(cfg)
	managed := map[string]any{
		"notebook": sc.Notebook,
		"images":   sc.Images,
		"keymap":   sc.Keymap,
		"ui":       sc.UI,
	}
	for key, val := range managed {
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		doc[key] = b
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(themeName string) error {
	path := testConfigPath
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return err
	}
	cfg.UI.Theme.Name = themeName
	cfg.UI.Theme.Overrides = nil
	return Save(cfg)
}
