package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/kingrea/loupe/internal/example"
	"github.com/kingrea/loupe/internal/generator"
	"github.com/kingrea/loupe/internal/logbook"
	"github.com/kingrea/loupe/internal/selection"
)

// MutatorTag is the owner tag this package attributes its own selection
// writes to. Selection changes carrying any other tag are treated as
// external and invalidate retrieved results.
const MutatorTag selection.Owner = "generation-session"

// Option customizes a Session.
type Option func(*Session)

// WithLogbook attaches a logbook for transition logging.
func WithLogbook(lb *logbook.Logbook) Option {
	return func(s *Session) {
		s.log = lb
	}
}

// WithModel sets the model name passed to the generation client.
func WithModel(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.model = name
		}
	}
}

// WithModelSpec supplies the active model's schema, used to resolve field
// matcher vocabularies in generator configuration specs. Order controls how
// the resolved vocabulary lists fields.
func WithModelSpec(spec generator.Spec, order []string) Option {
	return func(s *Session) {
		s.modelSpec = spec
		s.modelFieldOrder = append([]string{}, order...)
	}
}

// Session owns the generation request state machine: whether a call is in
// flight, which generator was last applied, and the retrieved examples
// grouped by the source example that produced them.
//
// All mutations happen on the caller's goroutine; the only suspension point
// is the Call returned by Start, which the caller executes and settles.
type Session struct {
	client     generator.Client
	store      *example.Store
	selections *selection.Pair
	registry   *generator.Registry
	committer  *Committer
	log        *logbook.Logbook
	model      string

	modelSpec       generator.Spec
	modelFieldOrder []string

	running   bool
	applied   string
	retrieved [][]example.InputExample
}

// Settlement carries the outcome of one generation call back to the session.
type Settlement struct {
	Generator string
	Groups    [][]example.InputExample
	Err       error
}

// Call performs the generation request and produces its settlement. It is
// safe to run off the mutating goroutine; only Settle touches session state.
type Call func(ctx context.Context) Settlement

// New wires a session to its collaborators. The session watches the primary
// selection context: a primary-selection change it did not cause clears any
// retrieved results, since they describe an example no longer in focus.
func New(client generator.Client, store *example.Store, selections *selection.Pair, registry *generator.Registry, opts ...Option) *Session {
	s := &Session{
		client:     client,
		store:      store,
		selections: selections,
		registry:   registry,
		model:      "default",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.committer = &Committer{store: store, selections: selections, log: s.log}
	selections.Primary().Observe(func(ev selection.Event) {
		if ev.Kind == selection.ChangePrimary && ev.Owner != MutatorTag {
			s.Clear()
		}
	})
	return s
}

// Running reports whether a generation call is in flight.
func (s *Session) Running() bool {
	return s.running
}

// AppliedGenerator returns the generator named by the most recent request,
// or "" when none applies.
func (s *Session) AppliedGenerator() string {
	return s.applied
}

// Retrieved returns the current result groups. Group i holds the examples
// generated from source example i of the request that produced them.
func (s *Session) Retrieved() [][]example.InputExample {
	out := make([][]example.InputExample, len(s.retrieved))
	for i, group := range s.retrieved {
		out[i] = make([]example.InputExample, len(group))
		for j, ex := range group {
			out[i][j] = ex.Clone()
		}
	}
	return out
}

// TotalGenerated returns the number of retrieved examples across all groups.
func (s *Session) TotalGenerated() int {
	total := 0
	for _, group := range s.retrieved {
		total += len(group)
	}
	return total
}

// Committer returns the commit coordinator bound to this session's
// collaborators.
func (s *Session) Committer() *Committer {
	return s.committer
}

// SourceExamples resolves the primary context's full selected set against
// the store. This is the source set a new request will carry.
func (s *Session) SourceExamples() []example.InputExample {
	return s.store.LookupAll(s.selections.Primary().SelectedIDs())
}

// Start begins a generation request for the named generator. It returns the
// call to execute plus true, or (nil, false) when a request is already
// running: a second Start while running is ignored and leaves all state
// untouched.
//
// State effects happen immediately: existing results are cleared and the
// generator is recorded as applied before the call settles, so the status
// line reflects the request optimistically.
func (s *Session) Start(name string, cfg generator.Config) (Call, bool) {
	if s.running {
		return nil, false
	}
	sources := s.SourceExamples()
	s.retrieved = nil
	s.applied = name
	s.running = true
	s.logInfo("generation started: %s over %d source(s)", name, len(sources))
	model := s.model
	dataset := s.store.DatasetName()
	client := s.client
	return func(ctx context.Context) Settlement {
		groups, err := client.Generate(ctx, sources, model, dataset, name, cfg)
		if err == nil {
			err = generator.ValidateResult(groups, len(sources))
		}
		return Settlement{Generator: name, Groups: groups, Err: err}
	}, true
}

// Settle applies a call outcome. Failures reset the running flag and leave
// the applied generator and the (already cleared) results in place; the
// failure reason is logged but not retained in session state. A settlement
// arriving after Clear still applies its groups: there is no request epoch
// guarding stale responses.
func (s *Session) Settle(st Settlement) {
	s.running = false
	if st.Err != nil {
		s.logError("generation failed: %s: %v", st.Generator, st.Err)
		return
	}
	for i := range st.Groups {
		for j := range st.Groups[i] {
			ex := &st.Groups[i][j]
			ex.MarkPending()
			if ex.ID == "" {
				ex.ID = uuid.NewString()
			}
		}
	}
	s.retrieved = st.Groups
	s.logInfo("generation settled: %s returned %d example(s)", st.Generator, s.TotalGenerated())
}

// Clear drops the applied generator and all retrieved results. Calling it
// again is a no-op. An in-flight call is not cancelled; its settlement will
// still apply.
func (s *Session) Clear() {
	if s.applied == "" && len(s.retrieved) == 0 {
		return
	}
	s.applied = ""
	s.retrieved = nil
	s.logInfo("generation results cleared")
}

// Remove drops one retrieved example. Removing the last one clears the whole
// session, matching the rule that a result set emptied by hand is stale.
func (s *Session) Remove(group, index int) bool {
	if group < 0 || group >= len(s.retrieved) {
		return false
	}
	g := s.retrieved[group]
	if index < 0 || index >= len(g) {
		return false
	}
	before := s.TotalGenerated()
	s.retrieved[group] = append(g[:index:index], g[index+1:]...)
	if before > 0 && s.TotalGenerated() <= 0 && s.applied != "" && !s.running {
		s.Clear()
	}
	return true
}

func (s *Session) logInfo(format string, args ...any) {
	if s.log != nil {
		s.log.Info(format, args...)
	}
}

func (s *Session) logError(format string, args ...any) {
	if s.log != nil {
		s.log.Error(format, args...)
	}
}
