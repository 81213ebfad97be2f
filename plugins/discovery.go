package plugins

import (
	"fmt"

	"github.com/kingrea/loupe/internal/config"
	"github.com/kingrea/loupe/internal/generator"
)

// RegisterGeneratorPlugins discovers YAML and Go generator definitions under
// .loupe/plugins, registers their descriptors, and returns a client able to
// run each one. A nil registry or config registers nothing.
func RegisterGeneratorPlugins(reg *generator.Registry, cfg *config.Config) (*ScriptClient, error) {
	client := NewScriptClient()
	if reg == nil || cfg == nil {
		return client, nil
	}
	defs, err := loadAllDefinitionFiles(cfg.PluginsDir())
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string)
	for _, file := range defs {
		def := file.Definition
		if existing, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("plugin: duplicate generator %s (%s and %s)", def.Name, existing, file.Path)
		}
		seen[def.Name] = file.Path
		if err := reg.Register(def.Descriptor()); err != nil {
			return nil, fmt.Errorf("plugin: register %s from %s: %w", def.Name, file.Path, err)
		}
		client.Bind(def.Name, def.Script)
	}
	return client, nil
}

func loadAllDefinitionFiles(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlDefs, goDefs...), nil
}
