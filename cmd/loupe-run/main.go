// cmd/loupe-run/main.go
//
// Headless one-shot generation: run a single generator over selected dataset
// examples without the TUI and print the result groups as JSON. Useful for
// scripting and for exercising plugins outside the workbench.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/loupe/internal/config"
	"github.com/kingrea/loupe/internal/example"
	"github.com/kingrea/loupe/internal/generator"
	"github.com/kingrea/loupe/internal/logbook"
	"github.com/kingrea/loupe/internal/selection"
	"github.com/kingrea/loupe/internal/session"
	"github.com/kingrea/loupe/plugins"
)

// runnerTag attributes the runner's selection writes.
const runnerTag selection.Owner = "loupe-run"

func main() {
	generatorName := flag.String("generator", "", "generator name to run (required)")
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	ids := flag.String("ids", "", "comma-separated source example ids (defaults to the whole dataset)")
	commit := flag.Bool("commit", false, "commit every generated example to the dataset")
	sets := keyValueFlag{}
	flag.Var(&sets, "set", "generator config value (key=value, repeatable)")
	flag.Parse()

	if strings.TrimSpace(*generatorName) == "" {
		die("--generator is required")
	}

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitLoupeDir(absoluteProject); err != nil {
		die("init .loupe: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}
	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), "loupe-run.log"))
	if err != nil {
		die("open logbook: %v", err)
	}
	store, err := example.LoadDataset(cfg.Project.Dataset.Name, cfg.DatasetPath())
	if err != nil {
		die("load dataset: %v", err)
	}
	pair := selection.NewPair()
	pair.SetComparisonMode(cfg.Project.Comparison)
	reg := generator.NewRegistry()
	client, err := plugins.RegisterGeneratorPlugins(reg, cfg)
	if err != nil {
		die("load generator plugins: %v", err)
	}
	if _, ok := reg.Lookup(*generatorName); !ok {
		die("unknown generator %s (registered: %s)", *generatorName, strings.Join(reg.Names(), ", "))
	}

	sourceIDs := resolveSourceIDs(store, *ids)
	if len(sourceIDs) == 0 {
		die("no source examples: dataset is empty or ids did not match")
	}
	sess := session.New(client, store, pair, reg,
		session.WithLogbook(lb),
		session.WithModel(cfg.Project.Model.Name),
		session.WithModelSpec(cfg.ModelSpec(), cfg.ModelFieldOrder()),
	)
	if err := pair.Primary().SelectAndFocus(sourceIDs, runnerTag); err != nil {
		die("select sources: %v", err)
	}

	call, ok := sess.Start(*generatorName, generator.Config(sets))
	if !ok {
		die("a generation run is already in progress")
	}
	sess.Settle(call(context.Background()))
	groups := sess.Retrieved()
	if *commit {
		if err := sess.CommitAll(); err != nil {
			die("commit: %v", err)
		}
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(groups); err != nil {
		die("encode output: %v", err)
	}
	fmt.Fprintf(os.Stderr, "%s\n", sess.StatusText())
}

func resolveSourceIDs(store *example.Store, raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		var all []string
		for _, ex := range store.Examples() {
			all = append(all, ex.ID)
		}
		return all
	}
	var ids []string
	for _, part := range strings.Split(trimmed, ",") {
		id := strings.TrimSpace(part)
		if id == "" || !store.Contains(id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return fmt.Errorf("override key is empty in %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[key] = parts[1]
	return nil
}
