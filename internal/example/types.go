package example

import (
	"fmt"
	"sort"
)

// Metadata keys attached to generated examples. Generators stamp MetaParentID
// and MetaSource when they produce an example; MetaAdded is managed by the
// commit path only.
const (
	MetaParentID = "parentId"
	MetaSource   = "source"
	MetaAdded    = "added"
)

// Added marker values stored under MetaAdded.
const (
	AddedPending   = 0
	AddedCommitted = 1
)

// InputExample is a single datapoint: a stable id, the field payload, and a
// free-form metadata map carrying provenance.
type InputExample struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Validate ensures the example carries a payload.
func (e InputExample) Validate() error {
	if len(e.Data) == 0 {
		return fmt.Errorf("example: %s has no data fields", e.ID)
	}
	return nil
}

// ParentID returns the id of the source example this one was generated from,
// or "" for original dataset members.
func (e InputExample) ParentID() string {
	return metaString(e.Meta, MetaParentID)
}

// Source returns the name of the generator that produced this example, or ""
// for original dataset members.
func (e InputExample) Source() string {
	return metaString(e.Meta, MetaSource)
}

// Committed reports whether the example carries the committed marker.
func (e InputExample) Committed() bool {
	if e.Meta == nil {
		return false
	}
	switch v := e.Meta[MetaAdded].(type) {
	case bool:
		return v
	case int:
		return v != AddedPending
	case float64:
		return int(v) != AddedPending
	default:
		return false
	}
}

// MarkPending merges the not-yet-committed marker into the metadata without
// clobbering an existing value.
func (e *InputExample) MarkPending() {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	if _, ok := e.Meta[MetaAdded]; !ok {
		e.Meta[MetaAdded] = AddedPending
	}
}

// MarkCommitted stamps the committed marker.
func (e *InputExample) MarkCommitted() {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[MetaAdded] = AddedCommitted
}

// Clone returns a deep-enough copy: the maps are duplicated, values are shared.
func (e InputExample) Clone() InputExample {
	clone := InputExample{ID: e.ID}
	if e.Data != nil {
		clone.Data = make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			clone.Data[k] = v
		}
	}
	if e.Meta != nil {
		clone.Meta = make(map[string]any, len(e.Meta))
		for k, v := range e.Meta {
			clone.Meta[k] = v
		}
	}
	return clone
}

// SortedDataKeys returns the example's field names in a stable order, for
// display surfaces that walk the payload.
func SortedDataKeys(e InputExample) []string {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
