package metadata

import "slices"

// Location is a position in a source file
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Info holds the fields shared by every entity
type Info struct {
	ID     SymbolID `json:"id"`
	Kind   InfoKind `json:"kind"`
	Name   string   `json:"name"`
	Access Access   `json:"access,omitempty"`

	// Enclosing scopes, innermost first. The global namespace is last.
	Namespace []SymbolID `json:"namespace,omitempty"`

	DocComment string `json:"doc,omitempty"`
}

func (i *Info) clone() Info {
	c := *i
	c.Namespace = slices.Clone(i.Namespace)
	return c
}

// SymbolInfo adds source locations to Info
type SymbolInfo struct {
	Info

	// Location of the definition, if one was seen
	DefLoc *Location `json:"def_loc,omitempty"`

	// Locations of declarations that are not the definition
	Loc []Location `json:"loc,omitempty"`
}

func (s *SymbolInfo) clone() SymbolInfo {
	c := SymbolInfo{Info: s.Info.clone(), Loc: slices.Clone(s.Loc)}
	if s.DefLoc != nil {
		loc := *s.DefLoc
		c.DefLoc = &loc
	}
	return c
}

// Entity is implemented by every metadata type stored in a corpus:
// *NamespaceInfo, *RecordInfo, *FunctionInfo, *EnumInfo, *TypedefInfo,
// *VarInfo and *FieldInfo. It cannot be implemented outside this package.
type Entity interface {
	// TypeID returns the kind of the concrete type. It does not read the
	// receiver, so it may be called on a nil pointer.
	TypeID() InfoKind

	// Base returns the shared fields.
	Base() *Info

	// Clone returns a deep copy.
	Clone() Entity

	entity()
}

// KindOf returns the kind discriminator for the entity type T.
func KindOf[T Entity]() InfoKind {
	var zero T
	return zero.TypeID()
}

// NewEntity returns an empty entity of the given kind.
func NewEntity(kind InfoKind, id SymbolID, name string) (Entity, bool) {
	switch kind {
	case KindNamespace:
		return NewNamespaceInfo(id, name), true
	case KindRecord:
		return NewRecordInfo(id, name), true
	case KindFunction:
		return NewFunctionInfo(id, name), true
	case KindEnum:
		return NewEnumInfo(id, name), true
	case KindTypedef:
		return NewTypedefInfo(id, name), true
	case KindVariable:
		return NewVarInfo(id, name), true
	case KindField:
		return NewFieldInfo(id, name), true
	}
	return nil, false
}
