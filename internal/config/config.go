// internal/config/config.go
//
// This package handles configuration and the .loupe directory structure.
// Every project that uses Loupe gets a .loupe/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kingrea/loupe/internal/generator"
	"gopkg.in/yaml.v3"
)

// LoupeDir is the name of the directory we create in each project.
const LoupeDir = ".loupe"

const defaultConfigYAML = `# loupe project configuration
version: 1

# The working dataset. Path is relative to the project directory.
dataset:
  name: dev
  path: .loupe/data/dev.jsonl

# The active model whose schema drives field matcher vocabularies.
model:
  name: classifier
  fields:
    sentence:
      type: TextSegment
    label:
      type: CategoryLabel
  field_order: [sentence, label]

# Show the reference pane and mirror commits into it.
comparison: false
`

// DatasetRef names the working dataset and its on-disk location.
type DatasetRef struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ModelRef describes the active model: its name and its field schema.
type ModelRef struct {
	Name   string                     `yaml:"name"`
	Fields map[string]generator.Field `yaml:"fields"`
	// FieldOrder fixes the display order of the schema; YAML mappings do
	// not preserve it. Missing entries are appended alphabetically.
	FieldOrder []string `yaml:"field_order,omitempty"`
}

// ProjectConfig models .loupe/config.yaml.
type ProjectConfig struct {
	Version          int        `yaml:"version"`
	Dataset          DatasetRef `yaml:"dataset"`
	Model            ModelRef   `yaml:"model"`
	Comparison       bool       `yaml:"comparison"`
	DefaultGenerator string     `yaml:"default_generator,omitempty"`
}

// Config holds the runtime configuration for Loupe.
type Config struct {
	// ProjectDir is the directory where the user ran `loupe` from.
	ProjectDir string

	// LoupeProjectDir is ProjectDir/.loupe.
	LoupeProjectDir string

	Project ProjectConfig
}

// InitLoupeDir creates the .loupe directory structure in the given project
// directory. Called on startup.
//
// Structure created:
// .loupe/
// ├── data/      <- datasets (JSONL)
// ├── logs/      <- workbench logbook
// └── plugins/   <- generator definitions (YAML or interpreted Go)
func InitLoupeDir(projectDir string) error {
	loupeDir := filepath.Join(projectDir, LoupeDir)
	dirs := []string{
		filepath.Join(loupeDir, "data"),
		filepath.Join(loupeDir, "logs"),
		filepath.Join(loupeDir, "plugins"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(loupeDir, "config.yaml"))
}

// NewConfig creates a Config populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		LoupeProjectDir: filepath.Join(projectDir, LoupeDir),
		Project:         defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.LoupeProjectDir, "logs")
}

// PluginsDir returns the directory scanned for generator definitions.
func (c *Config) PluginsDir() string {
	return filepath.Join(c.LoupeProjectDir, "plugins")
}

// DataDir returns the directory holding bundled datasets.
func (c *Config) DataDir() string {
	return filepath.Join(c.LoupeProjectDir, "data")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.LoupeProjectDir, "config.yaml")
}

// DatasetPath resolves the dataset file location against the project dir.
func (c *Config) DatasetPath() string {
	return resolvePath(c.ProjectDir, c.Project.Dataset.Path)
}

// ModelSpec returns the active model's schema as a generator spec.
func (c *Config) ModelSpec() generator.Spec {
	spec := make(generator.Spec, len(c.Project.Model.Fields))
	for name, field := range c.Project.Model.Fields {
		spec[name] = field
	}
	return spec
}

// ModelFieldOrder returns the schema display order, with any unlisted fields
// appended alphabetically.
func (c *Config) ModelFieldOrder() []string {
	listed := map[string]struct{}{}
	order := make([]string, 0, len(c.Project.Model.Fields))
	for _, name := range c.Project.Model.FieldOrder {
		if _, ok := c.Project.Model.Fields[name]; !ok {
			continue
		}
		if _, dup := listed[name]; dup {
			continue
		}
		listed[name] = struct{}{}
		order = append(order, name)
	}
	var rest []string
	for name := range c.Project.Model.Fields {
		if _, ok := listed[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// SetDefaultGenerator persists the generator to preselect on launch.
func (c *Config) SetDefaultGenerator(name string) error {
	c.Project.DefaultGenerator = strings.TrimSpace(name)
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Dataset: DatasetRef{
			Name: "dev",
			Path: filepath.Join(LoupeDir, "data", "dev.jsonl"),
		},
		Model: ModelRef{
			Name:   "classifier",
			Fields: map[string]generator.Field{},
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Model.Fields == nil {
		pc.Model.Fields = map[string]generator.Field{}
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Dataset.Name = strings.TrimSpace(pc.Dataset.Name)
	pc.Dataset.Path = strings.TrimSpace(pc.Dataset.Path)
	pc.Model.Name = strings.TrimSpace(pc.Model.Name)
	pc.DefaultGenerator = strings.TrimSpace(pc.DefaultGenerator)
	for i := range pc.Model.FieldOrder {
		pc.Model.FieldOrder[i] = strings.TrimSpace(pc.Model.FieldOrder[i])
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if pc.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.LoupeProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure loupe dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
