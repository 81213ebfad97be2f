package session

import (
	"errors"
	"fmt"

	"github.com/kingrea/loupe/internal/example"
	"github.com/kingrea/loupe/internal/logbook"
	"github.com/kingrea/loupe/internal/selection"
)

// ErrMissingParent reports a commit of a generated example with no parentId
// metadata. Selection sync needs the parent, so this fails fast instead of
// degrading.
var ErrMissingParent = errors.New("generated example has no parent id")

// Committer moves accepted generated examples into the store and brings both
// selection contexts in line with the new parent/child relationships.
type Committer struct {
	store      *example.Store
	selections *selection.Pair
	log        *logbook.Logbook
}

// NewCommitter wires a standalone commit coordinator. Sessions construct
// their own; this is for headless callers.
func NewCommitter(store *example.Store, selections *selection.Pair, lb *logbook.Logbook) *Committer {
	return &Committer{store: store, selections: selections, log: lb}
}

// Commit writes the examples to the store, then selects parents and children
// in the primary context with the first committed example as its primary,
// and, when comparison mode is active, mirrors the selection into the
// reference context with the first committed example's own parent as its
// primary. An empty slice is a no-op.
func (c *Committer) Commit(examples []example.InputExample) error {
	if len(examples) == 0 {
		return nil
	}
	parentIDs := make([]string, 0, len(examples))
	seen := map[string]struct{}{}
	for i, ex := range examples {
		parent := ex.ParentID()
		if parent == "" {
			return fmt.Errorf("commit: example %d (%s): %w", i, ex.ID, ErrMissingParent)
		}
		if _, ok := seen[parent]; !ok {
			seen[parent] = struct{}{}
			parentIDs = append(parentIDs, parent)
		}
	}
	toCommit := make([]example.InputExample, len(examples))
	for i, ex := range examples {
		clone := ex.Clone()
		clone.MarkCommitted()
		toCommit[i] = clone
	}
	committed, err := c.store.CommitNewDatapoints(toCommit)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	newIDs := make([]string, len(committed))
	for i, ex := range committed {
		newIDs[i] = ex.ID
	}
	combined := append(append([]string{}, parentIDs...), newIDs...)

	primary := c.selections.Primary()
	primary.AddIDs(combined, MutatorTag)
	if err := primary.SetPrimary(newIDs[0], MutatorTag); err != nil {
		return fmt.Errorf("commit: focus primary view: %w", err)
	}
	if c.selections.ComparisonMode() {
		reference := c.selections.Reference()
		reference.AddIDs(combined, MutatorTag)
		// The reference pane must show the exact parent of the first
		// accepted child, not an arbitrary member of the parent set.
		if err := reference.SetPrimary(examples[0].ParentID(), MutatorTag); err != nil {
			return fmt.Errorf("commit: focus reference view: %w", err)
		}
	}
	if c.log != nil {
		c.log.Info("committed %d example(s) from %d parent(s)", len(newIDs), len(parentIDs))
	}
	return nil
}
