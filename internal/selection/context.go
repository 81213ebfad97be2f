package selection

import (
	"fmt"
	"strings"
)

// Owner tags the component responsible for a selection mutation. Components
// use it to tell their own writes apart from everyone else's.
type Owner string

// ChangeKind enumerates the mutations a Context can report.
type ChangeKind string

const (
	ChangeSelected ChangeKind = "selected"
	ChangePrimary  ChangeKind = "primary"
)

// Event describes one committed selection mutation.
type Event struct {
	Role  Role
	Kind  ChangeKind
	Owner Owner
}

// Observer receives selection events synchronously, after the mutation has
// been applied.
type Observer func(Event)

// Context is one independently addressable selection view: an ordered set of
// selected ids, an optional primary id (always a member of the set), and the
// owner tag of the last mutator.
type Context struct {
	role        Role
	ids         []string
	idSet       map[string]struct{}
	primary     string
	lastMutator Owner
	observers   []Observer
}

// NewContext creates an empty selection context for a role.
func NewContext(role Role) *Context {
	return &Context{
		role:  role,
		idSet: map[string]struct{}{},
	}
}

// Role returns the role this context serves.
func (c *Context) Role() Role {
	return c.role
}

// SelectedIDs returns the selected ids in selection order.
func (c *Context) SelectedIDs() []string {
	return append([]string{}, c.ids...)
}

// IsSelected reports membership of an id in the selected set.
func (c *Context) IsSelected(id string) bool {
	_, ok := c.idSet[id]
	return ok
}

// PrimaryID returns the primary selected id, or "" when absent.
func (c *Context) PrimaryID() string {
	return c.primary
}

// LastMutator returns the owner tag of the most recent mutation.
func (c *Context) LastMutator() Owner {
	return c.lastMutator
}

// SelectIDs replaces the selected set. A primary id that is no longer a
// member is dropped.
func (c *Context) SelectIDs(ids []string, owner Owner) {
	c.ids = c.ids[:0]
	c.idSet = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		c.add(id)
	}
	if _, ok := c.idSet[c.primary]; !ok {
		c.primary = ""
	}
	c.lastMutator = owner
	c.notify(Event{Role: c.role, Kind: ChangeSelected, Owner: owner})
}

// AddIDs unions ids into the selected set, preserving existing order.
func (c *Context) AddIDs(ids []string, owner Owner) {
	changed := false
	for _, id := range ids {
		if c.add(id) {
			changed = true
		}
	}
	if !changed {
		return
	}
	c.lastMutator = owner
	c.notify(Event{Role: c.role, Kind: ChangeSelected, Owner: owner})
}

// SetPrimary points the primary selection at id, which must already be a
// member of the selected set. An empty id clears the primary selection.
func (c *Context) SetPrimary(id string, owner Owner) error {
	if id != "" {
		if _, ok := c.idSet[id]; !ok {
			return fmt.Errorf("selection: %s is not selected in %s context", id, c.role)
		}
	}
	if c.primary == id {
		return nil
	}
	c.primary = id
	c.lastMutator = owner
	c.notify(Event{Role: c.role, Kind: ChangePrimary, Owner: owner})
	return nil
}

// SelectAndFocus replaces the selection with ids and points the primary at
// the first one. Convenience for user-driven single clicks.
func (c *Context) SelectAndFocus(ids []string, owner Owner) error {
	c.SelectIDs(ids, owner)
	if len(ids) == 0 {
		return c.SetPrimary("", owner)
	}
	return c.SetPrimary(ids[0], owner)
}

// Observe registers a synchronous observer. Observers run in registration
// order on the mutating goroutine.
func (c *Context) Observe(fn Observer) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

func (c *Context) add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, ok := c.idSet[id]; ok {
		return false
	}
	c.idSet[id] = struct{}{}
	c.ids = append(c.ids, id)
	return true
}

func (c *Context) notify(ev Event) {
	for _, fn := range c.observers {
		fn(ev)
	}
}
