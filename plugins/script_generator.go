package plugins

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kingrea/loupe/internal/example"
	"github.com/kingrea/loupe/internal/generator"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const goGenerateFuncName = "Generate"

// ScriptClient runs generator scripts through the interpreter. Each bound
// generator maps to one script file defining
//
//	Generate(sources []map[string]any, model, dataset, generator string,
//	         config map[string]string) ([][]map[string]any, error)
//
// Source maps carry keys id, data, meta; result maps use the same shape and
// may omit id (the session assigns one).
type ScriptClient struct {
	scripts map[string]string
}

// NewScriptClient returns an empty client; Bind attaches generators.
func NewScriptClient() *ScriptClient {
	return &ScriptClient{scripts: make(map[string]string)}
}

// Bind associates a generator name with its script file.
func (c *ScriptClient) Bind(name, script string) {
	c.scripts[name] = script
}

// Generate implements generator.Client by interpreting the bound script.
func (c *ScriptClient) Generate(ctx context.Context, sources []example.InputExample, model, dataset, name string, cfg generator.Config) ([][]example.InputExample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	script, ok := c.scripts[name]
	if !ok {
		return nil, fmt.Errorf("plugin: no script bound for generator %s", name)
	}
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(script); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", script, err)
	}
	fnValue, err := i.Eval(goGenerateFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s: %w", script, goGenerateFuncName, err)
	}
	raw, err := invokeGenerateFunc(fnValue, sources, model, dataset, name, cfg)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", script, err)
	}
	groups := make([][]example.InputExample, len(raw))
	for gi, group := range raw {
		groups[gi] = make([]example.InputExample, len(group))
		for ei, m := range group {
			ex, err := exampleFromMap(m)
			if err != nil {
				return nil, fmt.Errorf("plugin: %s: group %d example %d: %w", script, gi, ei, err)
			}
			groups[gi][ei] = ex
		}
	}
	return groups, nil
}

func invokeGenerateFunc(value reflect.Value, sources []example.InputExample, model, dataset, name string, cfg generator.Config) ([][]map[string]any, error) {
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goGenerateFuncName)
	}
	sourceMaps := make([]map[string]any, len(sources))
	for i, ex := range sources {
		sourceMaps[i] = exampleToMap(ex)
	}
	config := make(map[string]string, len(cfg))
	for key, val := range cfg {
		config[key] = val
	}
	results := value.Call([]reflect.Value{
		reflect.ValueOf(sourceMaps),
		reflect.ValueOf(model),
		reflect.ValueOf(dataset),
		reflect.ValueOf(name),
		reflect.ValueOf(config),
	})
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([][]map[string]any[, error])", goGenerateFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", goGenerateFuncName)
	}
	return asGroupSlice(results[0])
}

func asGroupSlice(value reflect.Value) ([][]map[string]any, error) {
	if groups, ok := value.Interface().([][]map[string]any); ok {
		return groups, nil
	}
	if value.Kind() == reflect.Interface {
		value = value.Elem()
	}
	if value.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s must return [][]map[string]any", goGenerateFuncName)
	}
	groups := make([][]map[string]any, value.Len())
	for i := 0; i < value.Len(); i++ {
		inner, err := asMapSlice(value.Index(i), fmt.Sprintf("%s result[%d]", goGenerateFuncName, i))
		if err != nil {
			return nil, err
		}
		groups[i] = inner
	}
	return groups, nil
}

func exampleToMap(ex example.InputExample) map[string]any {
	m := map[string]any{"id": ex.ID}
	if len(ex.Data) > 0 {
		data := make(map[string]any, len(ex.Data))
		for key, val := range ex.Data {
			data[key] = val
		}
		m["data"] = data
	}
	if len(ex.Meta) > 0 {
		meta := make(map[string]any, len(ex.Meta))
		for key, val := range ex.Meta {
			meta[key] = val
		}
		m["meta"] = meta
	}
	return m
}

func exampleFromMap(m map[string]any) (example.InputExample, error) {
	var ex example.InputExample
	if id, ok := m["id"].(string); ok {
		ex.ID = id
	}
	switch data := m["data"].(type) {
	case nil:
	case map[string]any:
		ex.Data = data
	default:
		return example.InputExample{}, fmt.Errorf("data is %T, want map[string]any", m["data"])
	}
	switch meta := m["meta"].(type) {
	case nil:
	case map[string]any:
		ex.Meta = meta
	default:
		return example.InputExample{}, fmt.Errorf("meta is %T, want map[string]any", m["meta"])
	}
	if len(ex.Data) == 0 {
		return example.InputExample{}, fmt.Errorf("data is required")
	}
	return ex, nil
}
