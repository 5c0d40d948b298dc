package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/burrow/internal/app"
	"github.com/marcus/burrow/internal/bookmarks"
	"github.com/marcus/burrow/internal/cache"
	"github.com/marcus/burrow/internal/config"
	"github.com/marcus/burrow/internal/ioworker"
	"github.com/marcus/burrow/internal/keymap"
	"github.com/marcus/burrow/internal/notebook"
	"github.com/marcus/burrow/internal/state"
	"github.com/marcus/burrow/internal/styles"
	"github.com/marcus/burrow/internal/watch"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath   = flag.String("config", "", "path to config file")
	notebookDir  = flag.String("notebook", "", "notebook directory (defaults to config)")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	shortVersion = flag.Bool("v", false, "print version and exit (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("burrow version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Theme before the first frame.
	styles.ApplyThemeWithGenericOverrides(cfg.UI.Theme.Name, cfg.UI.Theme.Overrides)

	// State is optional; a broken state file starts a fresh session.
	if err := state.Init(); err != nil {
		logger.Warn("could not load ui state", "err", err)
	}

	dir := *notebookDir
	if dir == "" {
		dir = state.GetNotebookDir()
	}
	if dir == "" {
		dir = cfg.Notebook.Dir
	}
	dir, err = filepath.Abs(config.ExpandPath(dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve notebook dir: %v\n", err)
		os.Exit(1)
	}

	store, err := notebook.OpenOrCreate(dir, filepath.Base(dir), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open notebook: %v\n", err)
		os.Exit(1)
	}
	if err := state.SetNotebookDir(dir); err != nil {
		logger.Warn("could not save notebook dir", "err", err)
	}

	worker := ioworker.New(64, logger)
	defer worker.Close()

	marks, err := bookmarks.NewStore(bookmarks.DefaultDBPath(dir))
	if err != nil {
		logger.Warn("bookmarks unavailable", "err", err)
		marks = nil
	} else {
		defer marks.Close()
	}

	opts := app.Options{
		Config:    cfg,
		Keymap:    buildKeymap(cfg),
		Logger:    logger,
		Store:     store,
		Cache:     cache.New(store, logger),
		Worker:    worker,
		Bookmarks: marks,
	}

	if cfg.Notebook.WatchExternal {
		events, closer, err := watch.Watch(dir, logger)
		if err != nil {
			logger.Warn("external change watcher disabled", "err", err)
		} else {
			defer closer.Close()
			opts.Watch = events
			opts.WatchCloser = closer
		}
	}

	model, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open outline: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func buildKeymap(cfg *config.Config) *keymap.Registry {
	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	km.ApplyOverrides(cfg.Keymap.Overrides)
	return km
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return "dev"
}
