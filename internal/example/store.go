package example

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Store holds the canonical working dataset. Insertion order is preserved so
// views can render the dataset the way it was loaded.
type Store struct {
	dataset string
	order   []string
	byID    map[string]InputExample
}

// NewStore builds a store for a named dataset, seeded with examples.
// Examples without an id are assigned one.
func NewStore(dataset string, examples ...InputExample) *Store {
	s := &Store{
		dataset: strings.TrimSpace(dataset),
		byID:    map[string]InputExample{},
	}
	for _, ex := range examples {
		s.put(ex)
	}
	return s
}

// DatasetName returns the active dataset name.
func (s *Store) DatasetName() string {
	return s.dataset
}

// Len returns the number of datapoints in the dataset.
func (s *Store) Len() int {
	return len(s.order)
}

// Lookup returns the example with the given id.
func (s *Store) Lookup(id string) (InputExample, bool) {
	ex, ok := s.byID[id]
	if !ok {
		return InputExample{}, false
	}
	return ex.Clone(), true
}

// Contains reports whether the id names a dataset member.
func (s *Store) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Examples returns every datapoint in insertion order.
func (s *Store) Examples() []InputExample {
	out := make([]InputExample, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// LookupAll resolves a list of ids, skipping unknown ones.
func (s *Store) LookupAll(ids []string) []InputExample {
	out := make([]InputExample, 0, len(ids))
	for _, id := range ids {
		if ex, ok := s.byID[id]; ok {
			out = append(out, ex.Clone())
		}
	}
	return out
}

// CommitNewDatapoints adds examples to the dataset. Blank ids are assigned a
// fresh uuid; an id that already exists is overwritten in place, so repeating
// a commit is harmless. The committed examples are returned with their final
// ids in input order.
func (s *Store) CommitNewDatapoints(examples []InputExample) ([]InputExample, error) {
	if len(examples) == 0 {
		return nil, nil
	}
	committed := make([]InputExample, 0, len(examples))
	for i, ex := range examples {
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("store: commit datapoint %d: %w", i, err)
		}
		committed = append(committed, s.put(ex))
	}
	return committed, nil
}

func (s *Store) put(ex InputExample) InputExample {
	stored := ex.Clone()
	if strings.TrimSpace(stored.ID) == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := s.byID[stored.ID]; !exists {
		s.order = append(s.order, stored.ID)
	}
	s.byID[stored.ID] = stored
	return stored.Clone()
}

// LoadDataset reads a JSON-lines dataset file: one example object per line,
// blank lines skipped. The dataset name defaults to the file's base name when
// name is empty.
func LoadDataset(name, path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open dataset %s: %w", path, err)
	}
	defer file.Close()
	if strings.TrimSpace(name) == "" {
		name = datasetNameFromPath(path)
	}
	store := NewStore(name)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ex InputExample
		if err := json.Unmarshal([]byte(line), &ex); err != nil {
			return nil, fmt.Errorf("store: %s line %d: %w", path, lineNo, err)
		}
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("store: %s line %d: %w", path, lineNo, err)
		}
		store.put(ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("store: read dataset %s: %w", path, err)
	}
	return store, nil
}

func datasetNameFromPath(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
