package session

import (
	"fmt"

	"github.com/kingrea/loupe/internal/example"
	"github.com/kingrea/loupe/internal/generator"
)

// Row is one display line of the flattened result set: the example itself,
// whether the store already holds it, and the action that commits just this
// row.
type Row struct {
	Group     int
	Index     int
	Example   example.InputExample
	Committed bool
	Commit    func() error
}

// CompatibleGenerators returns the registry subset able to produce
// influential examples, in registration order.
func (s *Session) CompatibleGenerators() []string {
	return generator.Compatible(s.registry)
}

// CanRun reports whether a run action may be offered: false unless the
// primary context has a primary selection.
func (s *Session) CanRun() bool {
	return s.selections.Primary().PrimaryID() != ""
}

// StatusText derives the single status line for the surface. Priority:
// in-flight, applied-generator summary, no compatible generators, no
// selection, nothing.
func (s *Session) StatusText() string {
	if s.running {
		return "Generating examples..."
	}
	if s.applied != "" {
		total := s.TotalGenerated()
		noun := "examples"
		if total == 1 {
			noun = "example"
		}
		return fmt.Sprintf("%d %s retrieved from %s", total, noun, s.applied)
	}
	if len(s.CompatibleGenerators()) == 0 {
		return "No compatible generators available"
	}
	if s.selections.Primary().PrimaryID() == "" {
		return "Select an example to generate new ones"
	}
	return ""
}

// FlattenedRows walks the groups in order, then each group's examples in
// order, producing one row per retrieved example. Each row carries a bound
// commit action for that single example.
func (s *Session) FlattenedRows() []Row {
	var rows []Row
	for gi, group := range s.retrieved {
		for ei, ex := range group {
			clone := ex.Clone()
			rows = append(rows, Row{
				Group:     gi,
				Index:     ei,
				Example:   clone,
				Committed: s.store.Contains(clone.ID),
				Commit: func() error {
					return s.committer.Commit([]example.InputExample{clone})
				},
			})
		}
	}
	return rows
}

// CommitAll commits every retrieved example at once.
func (s *Session) CommitAll() error {
	var all []example.InputExample
	for _, group := range s.retrieved {
		for _, ex := range group {
			if !s.store.Contains(ex.ID) {
				all = append(all, ex.Clone())
			}
		}
	}
	return s.committer.Commit(all)
}

// ConfigSpec resolves the named generator's configuration spec against the
// active model schema so matcher entries carry a concrete vocabulary.
func (s *Session) ConfigSpec(name string) (generator.Spec, error) {
	d, ok := s.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("session: unknown generator %s", name)
	}
	return d.ConfigSpec.ResolveMatchers(s.modelSpec, s.modelFieldOrder), nil
}
