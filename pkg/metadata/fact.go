package metadata

import (
	"fmt"
	"slices"
)

// Fact is one declaration observed by a front end. Facts for the same
// identity arrive from many translation units and are merged into a single
// corpus entity. A fact is also the JSON-lines record accepted from external
// discovery tools.
type Fact struct {
	ID        SymbolID   `json:"id"`
	Kind      InfoKind   `json:"kind"`
	Name      string     `json:"name"`
	Access    Access     `json:"access,omitempty"`
	Namespace []SymbolID `json:"namespace,omitempty"`
	Doc       string     `json:"doc,omitempty"`

	Location     *Location `json:"location,omitempty"`
	IsDefinition bool      `json:"is_definition,omitempty"`

	// Enclosing namespace or record. The fact adds itself to the parent's
	// member list.
	Parent     SymbolID `json:"parent,omitempty"`
	ParentKind InfoKind `json:"parent_kind,omitempty"`
	ParentName string   `json:"parent_name,omitempty"`

	// Namespace reading of a qualified name whose last scope was not
	// declared in the same translation unit. The primary reading takes that
	// scope to be a record. See Corpus.Settle.
	Alt *FactScope `json:"alt,omitempty"`

	// Raw specifier word of the entity kind
	Specs uint32 `json:"specs,omitempty"`

	Template *TemplateInfo `json:"template,omitempty"`
	Members  []ChildRef    `json:"members,omitempty"`

	// Records
	TagType   TagKind    `json:"tag,omitempty"`
	IsTypeDef bool       `json:"is_typedef,omitempty"`
	Bases     []BaseInfo `json:"bases,omitempty"`
	Friends   []SymbolID `json:"friends,omitempty"`

	// Type of a variable or field, return type of a function, underlying
	// type of an alias, base type of an enum
	Type *TypeInfo `json:"type,omitempty"`

	// Functions
	Params   []Param `json:"params,omitempty"`
	IsMethod bool    `json:"is_method,omitempty"`

	// Enums
	Scoped      bool            `json:"scoped,omitempty"`
	Enumerators []EnumValueInfo `json:"enumerators,omitempty"`

	// Aliases
	IsUsing bool `json:"is_using,omitempty"`

	// Namespaces
	IsInline    bool `json:"is_inline,omitempty"`
	IsAnonymous bool `json:"is_anonymous,omitempty"`

	// Fields
	Default   string `json:"default,omitempty"`
	IsMutable bool   `json:"is_mutable,omitempty"`
}

// FactScope places a fact under a different parent, with the identity it
// has there.
type FactScope struct {
	ID         SymbolID   `json:"id"`
	Parent     SymbolID   `json:"parent"`
	ParentKind InfoKind   `json:"parent_kind"`
	ParentName string     `json:"parent_name,omitempty"`
	Namespace  []SymbolID `json:"namespace,omitempty"`
	IsMethod   bool       `json:"is_method,omitempty"`
}

// UseAlt moves the fact to its alternative scope. It does nothing when the
// fact has none.
func (f *Fact) UseAlt() {
	a := f.Alt
	if a == nil {
		return
	}
	f.ID = a.ID
	f.Parent = a.Parent
	f.ParentKind = a.ParentKind
	f.ParentName = a.ParentName
	f.Namespace = slices.Clone(a.Namespace)
	f.IsMethod = a.IsMethod
	f.Alt = nil
}

// Entity builds a fresh entity holding everything the fact observed.
func (f *Fact) Entity() (Entity, error) {
	if f.ID.IsZero() {
		return nil, ErrZeroID
	}
	e, ok := NewEntity(f.Kind, f.ID, f.Name)
	if !ok {
		return nil, fmt.Errorf("fact %s (%q): unknown kind %s", f.ID, f.Name, f.Kind)
	}

	info := e.Base()
	info.Access = f.Access
	info.Namespace = slices.Clone(f.Namespace)
	info.DocComment = f.Doc

	switch e := e.(type) {
	case *NamespaceInfo:
		e.IsInline = f.IsInline
		e.IsAnonymous = f.IsAnonymous
		for _, c := range f.Members {
			if _, err := e.Children.Add(c); err != nil {
				return nil, fmt.Errorf("namespace %q: %w", f.Name, err)
			}
		}
	case *RecordInfo:
		f.locate(&e.SymbolInfo)
		e.TagType = f.TagType
		e.IsTypeDef = f.IsTypeDef
		e.Template = f.Template.Clone()
		e.Specs.SetRaw(f.Specs)
		e.Bases = slices.Clone(f.Bases)
		for _, id := range f.Friends {
			e.AddFriend(id)
		}
		for _, c := range f.Members {
			if _, err := e.Members.Add(c); err != nil {
				return nil, fmt.Errorf("record %q: %w", f.Name, err)
			}
		}
	case *FunctionInfo:
		f.locate(&e.SymbolInfo)
		if f.Type != nil {
			e.ReturnType = *f.Type
		}
		e.Params = slices.Clone(f.Params)
		e.Template = f.Template.Clone()
		e.Specs.SetRaw(f.Specs)
		e.IsMethod = f.IsMethod
		if f.IsMethod {
			e.Parent = f.Parent
		}
	case *EnumInfo:
		f.locate(&e.SymbolInfo)
		e.Scoped = f.Scoped
		if f.Type != nil {
			t := *f.Type
			e.BaseType = &t
		}
		e.Members = slices.Clone(f.Enumerators)
	case *TypedefInfo:
		f.locate(&e.SymbolInfo)
		if f.Type != nil {
			e.Underlying = *f.Type
		}
		e.IsUsing = f.IsUsing
		e.Template = f.Template.Clone()
	case *VarInfo:
		f.locate(&e.SymbolInfo)
		if f.Type != nil {
			e.Type = *f.Type
		}
		e.Specs.SetRaw(f.Specs)
	case *FieldInfo:
		f.locate(&e.SymbolInfo)
		if f.Type != nil {
			e.Type = *f.Type
		}
		e.Default = f.Default
		e.IsMutable = f.IsMutable
	}

	if err := ValidateFlags(e); err != nil {
		return nil, fmt.Errorf("fact %s (%q): %w", f.ID, f.Name, err)
	}
	return e, nil
}

func (f *Fact) locate(s *SymbolInfo) {
	if f.Location == nil {
		return
	}
	loc := *f.Location
	if f.IsDefinition {
		s.DefLoc = &loc
		return
	}
	s.Loc = append(s.Loc, loc)
}

// ParentEntity returns an otherwise empty parent entity, named ParentName,
// whose member list holds this fact. It reports false when the fact names no
// parent.
func (f *Fact) ParentEntity() (Entity, bool, error) {
	if f.Parent.IsZero() {
		return nil, false, nil
	}
	ref := ChildRef{Kind: f.Kind, ID: f.ID, Name: f.Name}
	switch f.ParentKind {
	case KindNamespace:
		ns := NewNamespaceInfo(f.Parent, f.ParentName)
		if _, err := ns.Children.Add(ref); err != nil {
			return nil, false, err
		}
		return ns, true, nil
	case KindRecord:
		rec := NewRecordInfo(f.Parent, f.ParentName)
		if _, err := rec.Members.Add(ref); err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
	return nil, false, fmt.Errorf("%w: parent of %q is a %s", ErrKindMismatch, f.Name, f.ParentKind)
}

// ParseError is a diagnostic for one file that could not be fully read.
type ParseError struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// ParseResult is everything observed in one translation unit.
type ParseResult struct {
	File   string       `json:"file"`
	Facts  []Fact       `json:"facts"`
	Errors []ParseError `json:"errors,omitempty"`
}

// AddError records a diagnostic for the result's file.
func (r *ParseResult) AddError(line int, msg string) {
	r.Errors = append(r.Errors, ParseError{File: r.File, Line: line, Message: msg})
}
