package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Notebook NotebookConfig `json:"notebook"`
	Images   ImagesConfig   `json:"images"`
	Keymap   KeymapConfig   `json:"keymap"`
	UI       UIConfig       `json:"ui"`
}

// NotebookConfig configures where the notebook lives and how edits are
// persisted.
type NotebookConfig struct {
	Dir           string        `json:"dir"`           // notebook directory (supports ~ expansion)
	WatchExternal bool          `json:"watchExternal"` // refresh on changes from other processes
	AutosaveDelay time.Duration `json:"autosaveDelay"` // idle delay before an edited entry is written
}

// ImagesConfig configures inline image display geometry.
type ImagesConfig struct {
	MaxRows int `json:"maxRows"` // tallest an inline image row may be, in cells
	MaxCols int `json:"maxCols"` // widest, 0 means viewport-limited only
	CellPxW int `json:"cellPxW"` // assumed pixel width of one terminal cell
	CellPxH int `json:"cellPxH"` // assumed pixel height of one terminal cell
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter bool        `json:"showFooter"`
	ShowDates  bool        `json:"showDates"` // right-hand modified-date column
	Theme      ThemeConfig `json:"theme"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name      string                 `json:"name"`
	Overrides map[string]interface{} `json:"overrides,omitempty"` // user customizations on top
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Notebook: NotebookConfig{
			Dir:           "~/notebook",
			WatchExternal: true,
			AutosaveDelay: 500 * time.Millisecond,
		},
		Images: ImagesConfig{
			MaxRows: 12,
			CellPxW: 8,
			CellPxH: 16,
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter: true,
			ShowDates:  true,
			Theme: ThemeConfig{
				Name:      "default",
				Overrides: make(map[string]interface{}),
			},
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Notebook.AutosaveDelay < 0 {
		c.Notebook.AutosaveDelay = 500 * time.Millisecond
	}
	if c.Images.MaxRows <= 0 {
		c.Images.MaxRows = 12
	}
	if c.Images.MaxCols < 0 {
		c.Images.MaxCols = 0
	}
	if c.Images.CellPxW <= 0 {
		c.Images.CellPxW = 8
	}
	if c.Images.CellPxH <= 0 {
		c.Images.CellPxH = 16
	}
	return nil
}
