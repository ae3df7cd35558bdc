package metadata

import "slices"

// EnumValueInfo is one enumerator
type EnumValueInfo struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// EnumInfo is an enumeration.
type EnumInfo struct {
	SymbolInfo

	// Set for "enum class" and "enum struct"
	Scoped bool `json:"scoped,omitempty"`

	BaseType *TypeInfo       `json:"base_type,omitempty"`
	Members  []EnumValueInfo `json:"members,omitempty"`
}

// NewEnumInfo returns an enumeration with every field at its default.
func NewEnumInfo(id SymbolID, name string) *EnumInfo {
	return &EnumInfo{
		SymbolInfo: SymbolInfo{Info: Info{ID: id, Kind: KindEnum, Name: name}},
	}
}

func (*EnumInfo) TypeID() InfoKind { return KindEnum }
func (e *EnumInfo) Base() *Info    { return &e.Info }
func (*EnumInfo) entity()          {}

func (e *EnumInfo) Clone() Entity {
	c := *e
	c.SymbolInfo = e.SymbolInfo.clone()
	if e.BaseType != nil {
		t := *e.BaseType
		c.BaseType = &t
	}
	c.Members = slices.Clone(e.Members)
	return &c
}

// TypedefInfo is a typedef or alias-declaration.
type TypedefInfo struct {
	SymbolInfo

	Underlying TypeInfo `json:"underlying"`

	// Set for "using name = type;"
	IsUsing bool `json:"is_using,omitempty"`

	// Present for alias templates
	Template *TemplateInfo `json:"template,omitempty"`
}

// NewTypedefInfo returns an alias with every field at its default.
func NewTypedefInfo(id SymbolID, name string) *TypedefInfo {
	return &TypedefInfo{
		SymbolInfo: SymbolInfo{Info: Info{ID: id, Kind: KindTypedef, Name: name}},
	}
}

func (*TypedefInfo) TypeID() InfoKind { return KindTypedef }
func (t *TypedefInfo) Base() *Info    { return &t.Info }
func (*TypedefInfo) entity()          {}

func (t *TypedefInfo) Clone() Entity {
	c := *t
	c.SymbolInfo = t.SymbolInfo.clone()
	c.Template = t.Template.Clone()
	return &c
}
