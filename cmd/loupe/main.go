// cmd/loupe/main.go
//
// This is the entry point for the Loupe workbench.
// When you run `loupe` from a project directory, this is what executes.
//
// Flow:
// 1. Initialize the .loupe folder (config, data, logs, plugins)
// 2. Load the dataset and discover generator plugins
// 3. Launch the TUI

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kingrea/loupe/internal/config"
	"github.com/kingrea/loupe/internal/example"
	"github.com/kingrea/loupe/internal/generator"
	"github.com/kingrea/loupe/internal/logbook"
	"github.com/kingrea/loupe/internal/selection"
	"github.com/kingrea/loupe/internal/session"
	"github.com/kingrea/loupe/internal/tui"
	"github.com/kingrea/loupe/plugins"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitLoupeDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .loupe directory: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), "workbench.log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening logbook: %v\n", err)
		os.Exit(1)
	}

	store, err := openDataset(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		os.Exit(1)
	}

	pair := selection.NewPair()
	pair.SetComparisonMode(cfg.Project.Comparison)

	reg := generator.NewRegistry()
	client, err := plugins.RegisterGeneratorPlugins(reg, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading generator plugins: %v\n", err)
		os.Exit(1)
	}

	sess := session.New(client, store, pair, reg,
		session.WithLogbook(lb),
		session.WithModel(cfg.Project.Model.Name),
		session.WithModelSpec(cfg.ModelSpec(), cfg.ModelFieldOrder()),
	)
	lb.Info("Workbench opened · dataset %s (%d example(s)) · %d generator(s)",
		store.DatasetName(), store.Len(), len(reg.Names()))

	p := tea.NewProgram(
		tui.NewApp(cfg, store, sess, pair, lb),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// openDataset loads the configured dataset, falling back to an empty store
// when the file does not exist yet.
func openDataset(cfg *config.Config) (*example.Store, error) {
	path := cfg.DatasetPath()
	store, err := example.LoadDataset(cfg.Project.Dataset.Name, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return example.NewStore(cfg.Project.Dataset.Name), nil
		}
		return nil, err
	}
	return store, nil
}
