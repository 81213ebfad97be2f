package plugins

import (
	"context"
	"testing"

	"github.com/kingrea/loupe/internal/example"
)

func sourceFixture() []example.InputExample {
	return []example.InputExample{
		{ID: "p1", Data: map[string]any{"sentence": "hello", "score": 3}},
		{ID: "p2", Data: map[string]any{"sentence": "world"}},
	}
}

func TestScriptClientGenerate(t *testing.T) {
	dir := t.TempDir()
	script := writeGoPlugin(t, dir, "scrambler.go", goPluginSource)
	client := NewScriptClient()
	client.Bind("scrambler", script)

	groups, err := client.Generate(context.Background(), sourceFixture(), "classifier", "dev", "scrambler", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	first := groups[0][0]
	if first.Data["sentence"] != "HELLO" {
		t.Errorf("script output not applied: %v", first.Data["sentence"])
	}
	if first.ParentID() != "p1" {
		t.Errorf("parent id = %q, want p1", first.ParentID())
	}
	if first.Source() != "scrambler" {
		t.Errorf("source = %q, want scrambler", first.Source())
	}
}

func TestScriptClientUnknownGenerator(t *testing.T) {
	client := NewScriptClient()
	if _, err := client.Generate(context.Background(), sourceFixture(), "m", "d", "ghost", nil); err == nil {
		t.Fatalf("expected error for unbound generator")
	}
}

func TestScriptClientHonorsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	script := writeGoPlugin(t, dir, "scrambler.go", goPluginSource)
	client := NewScriptClient()
	client.Bind("scrambler", script)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Generate(ctx, sourceFixture(), "m", "d", "scrambler", nil); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestScriptClientPropagatesScriptError(t *testing.T) {
	dir := t.TempDir()
	source := `package main

import "errors"

func Generate(sources []map[string]interface{}, model, dataset, generator string, config map[string]string) ([][]map[string]interface{}, error) {
	return nil, errors.New("backend down")
}
`
	script := writeGoPlugin(t, dir, "failing.go", source)
	client := NewScriptClient()
	client.Bind("failing", script)

	if _, err := client.Generate(context.Background(), sourceFixture(), "m", "d", "failing", nil); err == nil {
		t.Fatalf("expected propagated script error")
	}
}

func TestScriptClientRejectsResultWithoutData(t *testing.T) {
	dir := t.TempDir()
	source := `package main

func Generate(sources []map[string]interface{}, model, dataset, generator string, config map[string]string) ([][]map[string]interface{}, error) {
	groups := make([][]map[string]interface{}, len(sources))
	for i := range sources {
		groups[i] = []map[string]interface{}{{"meta": map[string]interface{}{"parentId": "x"}}}
	}
	return groups, nil
}
`
	script := writeGoPlugin(t, dir, "dataless.go", source)
	client := NewScriptClient()
	client.Bind("dataless", script)

	if _, err := client.Generate(context.Background(), sourceFixture(), "m", "d", "dataless", nil); err == nil {
		t.Fatalf("expected error for result without data")
	}
}

func TestScriptClientPassesConfigThrough(t *testing.T) {
	dir := t.TempDir()
	source := `package main

func Generate(sources []map[string]interface{}, model, dataset, generator string, config map[string]string) ([][]map[string]interface{}, error) {
	groups := make([][]map[string]interface{}, len(sources))
	for i, src := range sources {
		id, _ := src["id"].(string)
		groups[i] = []map[string]interface{}{
			{
				"data": map[string]interface{}{"mode": config["mode"], "model": model, "dataset": dataset},
				"meta": map[string]interface{}{"parentId": id},
			},
		}
	}
	return groups, nil
}
`
	script := writeGoPlugin(t, dir, "echo.go", source)
	client := NewScriptClient()
	client.Bind("echo", script)

	groups, err := client.Generate(context.Background(), sourceFixture()[:1], "classifier", "dev", "echo",
		map[string]string{"mode": "fast"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	got := groups[0][0].Data
	if got["mode"] != "fast" || got["model"] != "classifier" || got["dataset"] != "dev" {
		t.Errorf("call arguments not threaded through: %v", got)
	}
}
