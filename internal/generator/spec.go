package generator

import (
	"sort"
	"strings"
)

// Field kind tags used in capability and configuration specs. Kind matching
// is by substring so specialized tags (e.g. "InfluentialExamples:scored")
// still qualify.
const (
	KindInfluentialExamples = "InfluentialExamples"
	KindFieldMatcher        = "FieldMatcher"
	KindMultiFieldMatcher   = "MultiFieldMatcher"
	KindTextSegment         = "TextSegment"
	KindCategoryLabel       = "CategoryLabel"
	KindScalar              = "Scalar"
)

// Field describes one entry of a spec: its type tag plus, for matcher
// entries, the model field types it may bind to and the resolved vocabulary.
type Field struct {
	Type string `yaml:"type" json:"type"`
	// MatchTypes restricts FieldMatcher/MultiFieldMatcher entries to model
	// fields of the listed types. Empty means any field.
	MatchTypes []string `yaml:"match_types,omitempty" json:"match_types,omitempty"`
	// Vocab is the allowed-values vocabulary. For matcher entries it is
	// computed from the active model spec, not authored.
	Vocab []string `yaml:"vocab,omitempty" json:"vocab,omitempty"`
	// Default is the pre-filled configuration value, if any.
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// IsKind reports whether the field's type tag declares the given kind.
func (f Field) IsKind(kind string) bool {
	return strings.Contains(f.Type, kind)
}

// Spec maps field names to their declarations.
type Spec map[string]Field

// DeclaresKind reports whether any field in the spec carries the kind.
func (s Spec) DeclaresKind(kind string) bool {
	for _, field := range s {
		if field.IsKind(kind) {
			return true
		}
	}
	return false
}

// Clone returns a copy of the spec with duplicated slices.
func (s Spec) Clone() Spec {
	if s == nil {
		return nil
	}
	out := make(Spec, len(s))
	for name, field := range s {
		field.MatchTypes = append([]string{}, field.MatchTypes...)
		field.Vocab = append([]string{}, field.Vocab...)
		out[name] = field
	}
	return out
}

// ResolveMatchers fills the vocabulary of every FieldMatcher and
// MultiFieldMatcher entry from the model spec: the names of model fields
// whose type tag matches one of the entry's match types. The receiver is not
// mutated.
func (s Spec) ResolveMatchers(model Spec, fieldOrder []string) Spec {
	resolved := s.Clone()
	for name, field := range resolved {
		if !field.IsKind(KindFieldMatcher) && !field.IsKind(KindMultiFieldMatcher) {
			continue
		}
		field.Vocab = matchingFields(model, fieldOrder, field.MatchTypes)
		resolved[name] = field
	}
	return resolved
}

func matchingFields(model Spec, order []string, matchTypes []string) []string {
	names := order
	if len(names) == 0 {
		names = make([]string, 0, len(model))
		for name := range model {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	var vocab []string
	for _, name := range names {
		field, ok := model[name]
		if !ok {
			continue
		}
		if len(matchTypes) == 0 {
			vocab = append(vocab, name)
			continue
		}
		for _, mt := range matchTypes {
			if field.IsKind(mt) {
				vocab = append(vocab, name)
				break
			}
		}
	}
	return vocab
}
