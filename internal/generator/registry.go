package generator

import (
	"fmt"
	"strings"
	"sync"
)

// Descriptor identifies a generation backend: its registry name, the
// capability spec describing what it can produce, the configuration spec of
// its run-time parameters, and a human description.
type Descriptor struct {
	Name        string
	Description string
	MetaSpec    Spec
	ConfigSpec  Spec
}

// Validate ensures the descriptor is well-formed.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("generator: name is required")
	}
	if len(d.MetaSpec) == 0 {
		return fmt.Errorf("generator: %s declares no capabilities", d.Name)
	}
	return nil
}

// Registry maintains known generator descriptors. Unlike a plain map it
// preserves registration order, which is the display order everywhere.
type Registry struct {
	mu     sync.RWMutex
	names  []string
	byName map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Descriptor{}}
}

// Register installs a descriptor. Returns an error if the name already exists.
func (r *Registry) Register(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("generator: %s already registered", d.Name)
	}
	r.byName[d.Name] = d
	r.names = append(r.names, d.Name)
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.names...)
}

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name])
	}
	return out
}

// Compatible returns the names of generators whose capability spec declares
// at least one InfluentialExamples field, in registration order. The hosting
// surface hides itself entirely when this comes back empty.
func Compatible(r *Registry) []string {
	if r == nil {
		return nil
	}
	var names []string
	for _, d := range r.Descriptors() {
		if d.MetaSpec.DeclaresKind(KindInfluentialExamples) {
			names = append(names, d.Name)
		}
	}
	return names
}
