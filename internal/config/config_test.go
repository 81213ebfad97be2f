package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kingrea/loupe/internal/generator"
)

func TestInitLoupeDirCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	if err := InitLoupeDir(dir); err != nil {
		t.Fatalf("InitLoupeDir failed: %v", err)
	}
	for _, sub := range []string{"data", "logs", "plugins"} {
		path := filepath.Join(dir, LoupeDir, sub)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, LoupeDir, "config.yaml")); err != nil {
		t.Errorf("default config not written: %v", err)
	}
}

func TestInitLoupeDirKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	loupeDir := filepath.Join(dir, LoupeDir)
	if err := os.MkdirAll(loupeDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := "version: 1\ndataset:\n  name: mine\n  path: data/mine.jsonl\nmodel:\n  name: custom\n"
	path := filepath.Join(loupeDir, "config.yaml")
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := InitLoupeDir(dir); err != nil {
		t.Fatalf("InitLoupeDir failed: %v", err)
	}
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if cfg.Project.Dataset.Name != "mine" || cfg.Project.Model.Name != "custom" {
		t.Errorf("existing config was overwritten: %+v", cfg.Project)
	}
}

func TestNewConfigParsesProjectFile(t *testing.T) {
	dir := t.TempDir()
	if err := InitLoupeDir(dir); err != nil {
		t.Fatalf("InitLoupeDir failed: %v", err)
	}
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if cfg.Project.Dataset.Name != "dev" {
		t.Errorf("dataset name = %q", cfg.Project.Dataset.Name)
	}
	want := filepath.Join(dir, LoupeDir, "data", "dev.jsonl")
	if cfg.DatasetPath() != want {
		t.Errorf("DatasetPath = %q, want %q", cfg.DatasetPath(), want)
	}
	spec := cfg.ModelSpec()
	if spec["sentence"].Type != generator.KindTextSegment {
		t.Errorf("model spec sentence type = %q", spec["sentence"].Type)
	}
	order := cfg.ModelFieldOrder()
	if len(order) != 2 || order[0] != "sentence" || order[1] != "label" {
		t.Errorf("field order = %v", order)
	}
}

func TestNewConfigMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if cfg.Project.Dataset.Name != "dev" || cfg.Project.Version != 1 {
		t.Errorf("defaults not applied: %+v", cfg.Project)
	}
}

func TestNewConfigRejectsInvalidProject(t *testing.T) {
	dir := t.TempDir()
	loupeDir := filepath.Join(dir, LoupeDir)
	if err := os.MkdirAll(loupeDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	bad := "version: 1\ndataset:\n  path: ''\nmodel:\n  name: m\n"
	if err := os.WriteFile(filepath.Join(loupeDir, "config.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewConfig(dir); err == nil {
		t.Fatalf("expected validation error for empty dataset path")
	}
}

func TestModelFieldOrderAppendsUnlistedAlphabetically(t *testing.T) {
	cfg := &Config{Project: ProjectConfig{
		Model: ModelRef{
			Name: "m",
			Fields: map[string]generator.Field{
				"zulu":     {Type: generator.KindTextSegment},
				"alpha":    {Type: generator.KindScalar},
				"sentence": {Type: generator.KindTextSegment},
			},
			FieldOrder: []string{"sentence", "ghost"},
		},
	}}
	order := cfg.ModelFieldOrder()
	want := []string{"sentence", "alpha", "zulu"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSetDefaultGeneratorPersists(t *testing.T) {
	dir := t.TempDir()
	if err := InitLoupeDir(dir); err != nil {
		t.Fatalf("InitLoupeDir failed: %v", err)
	}
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if err := cfg.SetDefaultGenerator("  influence  "); err != nil {
		t.Fatalf("SetDefaultGenerator failed: %v", err)
	}
	reloaded, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Project.DefaultGenerator != "influence" {
		t.Errorf("persisted default = %q", reloaded.Project.DefaultGenerator)
	}
}

func TestDatasetPathAbsolutePassThrough(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.jsonl")
	cfg := &Config{
		ProjectDir: "/some/project",
		Project:    ProjectConfig{Dataset: DatasetRef{Path: abs}},
	}
	if cfg.DatasetPath() != abs {
		t.Errorf("absolute path was rewritten: %q", cfg.DatasetPath())
	}
}
