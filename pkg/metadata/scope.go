package metadata

import (
	"fmt"
	"slices"
)

// MemberRef refers to a child entity without embedding it. The child itself
// lives once in the corpus.
type MemberRef struct {
	ID   SymbolID `json:"id"`
	Name string   `json:"name"`
}

// ChildRef is a MemberRef tagged with the child's kind, which selects the
// partition the reference belongs to.
type ChildRef struct {
	Kind InfoKind `json:"kind"`
	ID   SymbolID `json:"id"`
	Name string   `json:"name"`
}

// Ref drops the kind.
func (c ChildRef) Ref() MemberRef {
	return MemberRef{ID: c.ID, Name: c.Name}
}

// RecordScope lists the members of a class, struct or union by kind, each
// partition in declaration order.
type RecordScope struct {
	Records   []MemberRef `json:"records,omitempty"`
	Functions []MemberRef `json:"functions,omitempty"`
	Enums     []MemberRef `json:"enums,omitempty"`
	Types     []MemberRef `json:"types,omitempty"`
	Fields    []MemberRef `json:"fields,omitempty"`
	Vars      []MemberRef `json:"vars,omitempty"`
}

// Partition returns the list that holds children of the given kind.
func (s *RecordScope) Partition(kind InfoKind) (*[]MemberRef, error) {
	switch kind {
	case KindRecord:
		return &s.Records, nil
	case KindFunction:
		return &s.Functions, nil
	case KindEnum:
		return &s.Enums, nil
	case KindTypedef:
		return &s.Types, nil
	case KindField:
		return &s.Fields, nil
	case KindVariable:
		return &s.Vars, nil
	}
	return nil, fmt.Errorf("%w: a record cannot contain a %s", ErrKindMismatch, kind)
}

// Add appends a reference to the matching partition unless its ID is
// already present there. It reports whether the scope changed.
func (s *RecordScope) Add(c ChildRef) (bool, error) {
	list, err := s.Partition(c.Kind)
	if err != nil {
		return false, err
	}
	return appendRef(list, c.Ref()), nil
}

// Empty reports whether no members are recorded.
func (s *RecordScope) Empty() bool {
	return len(s.Records) == 0 && len(s.Functions) == 0 && len(s.Enums) == 0 &&
		len(s.Types) == 0 && len(s.Fields) == 0 && len(s.Vars) == 0
}

// Children returns every reference tagged with its kind, partition by partition.
func (s *RecordScope) Children() []ChildRef {
	var out []ChildRef
	out = tagRefs(out, KindRecord, s.Records)
	out = tagRefs(out, KindFunction, s.Functions)
	out = tagRefs(out, KindEnum, s.Enums)
	out = tagRefs(out, KindTypedef, s.Types)
	out = tagRefs(out, KindField, s.Fields)
	out = tagRefs(out, KindVariable, s.Vars)
	return out
}

func (s *RecordScope) clone() RecordScope {
	return RecordScope{
		Records:   slices.Clone(s.Records),
		Functions: slices.Clone(s.Functions),
		Enums:     slices.Clone(s.Enums),
		Types:     slices.Clone(s.Types),
		Fields:    slices.Clone(s.Fields),
		Vars:      slices.Clone(s.Vars),
	}
}

// NamespaceScope lists the members of a namespace by kind.
type NamespaceScope struct {
	Namespaces []MemberRef `json:"namespaces,omitempty"`
	Records    []MemberRef `json:"records,omitempty"`
	Functions  []MemberRef `json:"functions,omitempty"`
	Enums      []MemberRef `json:"enums,omitempty"`
	Typedefs   []MemberRef `json:"typedefs,omitempty"`
	Vars       []MemberRef `json:"vars,omitempty"`
}

// Partition returns the list that holds children of the given kind.
func (s *NamespaceScope) Partition(kind InfoKind) (*[]MemberRef, error) {
	switch kind {
	case KindNamespace:
		return &s.Namespaces, nil
	case KindRecord:
		return &s.Records, nil
	case KindFunction:
		return &s.Functions, nil
	case KindEnum:
		return &s.Enums, nil
	case KindTypedef:
		return &s.Typedefs, nil
	case KindVariable:
		return &s.Vars, nil
	}
	return nil, fmt.Errorf("%w: a namespace cannot contain a %s", ErrKindMismatch, kind)
}

// Add appends a reference to the matching partition unless its ID is
// already present there. It reports whether the scope changed.
func (s *NamespaceScope) Add(c ChildRef) (bool, error) {
	list, err := s.Partition(c.Kind)
	if err != nil {
		return false, err
	}
	return appendRef(list, c.Ref()), nil
}

// Empty reports whether no members are recorded.
func (s *NamespaceScope) Empty() bool {
	return len(s.Namespaces) == 0 && len(s.Records) == 0 && len(s.Functions) == 0 &&
		len(s.Enums) == 0 && len(s.Typedefs) == 0 && len(s.Vars) == 0
}

// Children returns every reference tagged with its kind, partition by partition.
func (s *NamespaceScope) Children() []ChildRef {
	var out []ChildRef
	out = tagRefs(out, KindNamespace, s.Namespaces)
	out = tagRefs(out, KindRecord, s.Records)
	out = tagRefs(out, KindFunction, s.Functions)
	out = tagRefs(out, KindEnum, s.Enums)
	out = tagRefs(out, KindTypedef, s.Typedefs)
	out = tagRefs(out, KindVariable, s.Vars)
	return out
}

func (s *NamespaceScope) clone() NamespaceScope {
	return NamespaceScope{
		Namespaces: slices.Clone(s.Namespaces),
		Records:    slices.Clone(s.Records),
		Functions:  slices.Clone(s.Functions),
		Enums:      slices.Clone(s.Enums),
		Typedefs:   slices.Clone(s.Typedefs),
		Vars:       slices.Clone(s.Vars),
	}
}

func appendRef(list *[]MemberRef, ref MemberRef) bool {
	for _, existing := range *list {
		if existing.ID == ref.ID {
			return false
		}
	}
	*list = append(*list, ref)
	return true
}

func tagRefs(out []ChildRef, kind InfoKind, refs []MemberRef) []ChildRef {
	for _, r := range refs {
		out = append(out, ChildRef{Kind: kind, ID: r.ID, Name: r.Name})
	}
	return out
}
