package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/burrow"
	configFile = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary.
type rawConfig struct {
	Notebook rawNotebookConfig `json:"notebook"`
	Images   rawImagesConfig   `json:"images"`
	Keymap   KeymapConfig      `json:"keymap"`
	UI       rawUIConfig       `json:"ui"`
}

type rawNotebookConfig struct {
	Dir           string `json:"dir"`
	WatchExternal *bool  `json:"watchExternal"`
	AutosaveDelay string `json:"autosaveDelay"`
}

type rawImagesConfig struct {
	MaxRows *int `json:"maxRows"`
	MaxCols *int `json:"maxCols"`
	CellPxW *int `json:"cellPxW"`
	CellPxH *int `json:"cellPxH"`
}

type rawUIConfig struct {
	ShowFooter *bool       `json:"showFooter"`
	ShowDates  *bool       `json:"showDates"`
	Theme      ThemeConfig `json:"theme"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/burrow/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil // Return defaults on error
		}
		path = filepath.Join(home, configDir, configFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	// Merge raw config into defaults
	mergeConfig(cfg, &raw)

	cfg.Notebook.Dir = ExpandPath(cfg.Notebook.Dir)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Notebook
	if raw.Notebook.Dir != "" {
		cfg.Notebook.Dir = raw.Notebook.Dir
	}
	if raw.Notebook.WatchExternal != nil {
		cfg.Notebook.WatchExternal = *raw.Notebook.WatchExternal
	}
	if raw.Notebook.AutosaveDelay != "" {
		if d, err := time.ParseDuration(raw.Notebook.AutosaveDelay); err == nil {
			cfg.Notebook.AutosaveDelay = d
		}
	}

	// Images
	if raw.Images.MaxRows != nil {
		cfg.Images.MaxRows = *raw.Images.MaxRows
	}
	if raw.Images.MaxCols != nil {
		cfg.Images.MaxCols = *raw.Images.MaxCols
	}
	if raw.Images.CellPxW != nil {
		cfg.Images.CellPxW = *raw.Images.CellPxW
	}
	if raw.Images.CellPxH != nil {
		cfg.Images.CellPxH = *raw.Images.CellPxH
	}

	// Keymap
	if raw.Keymap.Overrides != nil {
		for k, v := range raw.Keymap.Overrides {
			cfg.Keymap.Overrides[k] = v
		}
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.ShowDates != nil {
		cfg.UI.ShowDates = *raw.UI.ShowDates
	}
	if raw.UI.Theme.Name != "" {
		cfg.UI.Theme.Name = raw.UI.Theme.Name
	}
	if raw.UI.Theme.Overrides != nil {
		for k, v := range raw.UI.Theme.Overrides {
			cfg.UI.Theme.Overrides[k] = v
		}
	}
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}
