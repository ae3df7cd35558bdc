package metadata

import "slices"

// TypeInfo names a type as written, with the ID of the declaration it
// resolves to when that is known.
type TypeInfo struct {
	ID   SymbolID `json:"id,omitempty"`
	Name string   `json:"name"`
}

// IsZero reports whether no type was recorded.
func (t TypeInfo) IsZero() bool {
	return t.ID.IsZero() && t.Name == ""
}

// Param is a function parameter
type Param struct {
	Type    TypeInfo `json:"type"`
	Name    string   `json:"name,omitempty"`
	Default string   `json:"default,omitempty"`
}

// TParamKind distinguishes template parameter forms
type TParamKind uint8

const (
	TParamType TParamKind = iota
	TParamNonType
	TParamTemplate
)

// TParam is a template parameter
type TParam struct {
	Kind    TParamKind `json:"kind"`
	Name    string     `json:"name,omitempty"`
	IsPack  bool       `json:"is_pack,omitempty"`
	Default string     `json:"default,omitempty"`
}

// TArg is a template argument, as written
type TArg struct {
	Value string `json:"value"`
}

// SpecializationKind classifies a templated declaration
type SpecializationKind uint8

const (
	SpecializationPrimary SpecializationKind = iota
	SpecializationExplicit
	SpecializationPartial
)

func (k SpecializationKind) String() string {
	switch k {
	case SpecializationExplicit:
		return "explicit"
	case SpecializationPartial:
		return "partial"
	default:
		return "primary"
	}
}

// TemplateInfo describes the template a declaration is, or specializes.
type TemplateInfo struct {
	Params []TParam `json:"params,omitempty"`
	Args   []TArg   `json:"args,omitempty"`

	// Primary template of a specialization
	Primary *SymbolID `json:"primary,omitempty"`
}

// SpecializationKind derives the form from the parameter and argument lists.
func (t *TemplateInfo) SpecializationKind() SpecializationKind {
	if t.Primary == nil && len(t.Args) == 0 {
		return SpecializationPrimary
	}
	if len(t.Params) == 0 {
		return SpecializationExplicit
	}
	return SpecializationPartial
}

// Clone returns a deep copy. A nil receiver yields nil.
func (t *TemplateInfo) Clone() *TemplateInfo {
	if t == nil {
		return nil
	}
	c := &TemplateInfo{
		Params: slices.Clone(t.Params),
		Args:   slices.Clone(t.Args),
	}
	if t.Primary != nil {
		id := *t.Primary
		c.Primary = &id
	}
	return c
}
