package generator

import (
	"context"
	"fmt"

	"github.com/kingrea/loupe/internal/example"
)

// Config carries free-form run-time parameters for one generation call.
type Config map[string]string

// Client performs the call to a named generator. The returned outer slice
// has one group per source example, in source order; groups may be empty.
type Client interface {
	Generate(ctx context.Context, sources []example.InputExample, model, dataset, name string, cfg Config) ([][]example.InputExample, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, sources []example.InputExample, model, dataset, name string, cfg Config) ([][]example.InputExample, error)

// Generate implements Client.
func (f ClientFunc) Generate(ctx context.Context, sources []example.InputExample, model, dataset, name string, cfg Config) ([][]example.InputExample, error) {
	return f(ctx, sources, model, dataset, name, cfg)
}

// ValidateResult checks the group-per-source shape of a generation result.
func ValidateResult(groups [][]example.InputExample, sourceCount int) error {
	if len(groups) != sourceCount {
		return fmt.Errorf("generator: result has %d groups for %d sources", len(groups), sourceCount)
	}
	return nil
}
