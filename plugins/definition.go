package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/loupe/internal/generator"
)

// GeneratorDefinition describes a generator loaded from the plugins
// directory.
//
// The struct mirrors the on-disk schema under .loupe/plugins/*.yaml and is
// intentionally narrow so the workbench can validate plugin metadata before
// offering the generator in the picker.
type GeneratorDefinition struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Meta        generator.Spec `json:"meta" yaml:"meta"`
	Config      generator.Spec `json:"config,omitempty" yaml:"config,omitempty"`

	// Script names the interpreted Go file holding this generator's
	// Generate function. YAML definitions set it explicitly, relative to
	// the plugins directory; Go definitions inherit the declaring file.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def GeneratorDefinition) Normalized() GeneratorDefinition {
	clone := GeneratorDefinition{
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Script:      strings.TrimSpace(def.Script),
	}
	if len(def.Meta) > 0 {
		clone.Meta = def.Meta.Clone()
	}
	if len(def.Config) > 0 {
		clone.Config = def.Config.Clone()
	}
	return clone
}

// Validate ensures the definition is well-formed enough to register.
func (def GeneratorDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("plugin: generator name is required")
	}
	if len(normalized.Meta) == 0 {
		return fmt.Errorf("plugin %s: meta spec is required", normalized.Name)
	}
	for field, spec := range normalized.Meta {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("plugin %s: meta field name is empty", normalized.Name)
		}
		if strings.TrimSpace(spec.Type) == "" {
			return fmt.Errorf("plugin %s: meta field %s has no type", normalized.Name, field)
		}
	}
	for field, spec := range normalized.Config {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("plugin %s: config field name is empty", normalized.Name)
		}
		if strings.TrimSpace(spec.Type) == "" {
			return fmt.Errorf("plugin %s: config field %s has no type", normalized.Name, field)
		}
	}
	return nil
}

// Descriptor converts the definition into its registry form.
func (def GeneratorDefinition) Descriptor() generator.Descriptor {
	normalized := def.Normalized()
	return generator.Descriptor{
		Name:        normalized.Name,
		Description: normalized.Description,
		MetaSpec:    normalized.Meta,
		ConfigSpec:  normalized.Config,
	}
}
