package corpus

import (
	"fmt"
	"slices"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// merge folds src into dst. dst must be a private clone.
func merge(dst, src metadata.Entity) error {
	if dst.TypeID() != src.TypeID() {
		return fmt.Errorf("%w: %s is a %s, observed as a %s",
			metadata.ErrKindMismatch, dst.Base().ID, dst.TypeID(), src.TypeID())
	}
	if dst.Base().ID != src.Base().ID {
		return fmt.Errorf("%w: %s and %s", metadata.ErrIDMismatch, dst.Base().ID, src.Base().ID)
	}
	mergeInfo(dst.Base(), src.Base())

	switch d := dst.(type) {
	case *metadata.NamespaceInfo:
		s := src.(*metadata.NamespaceInfo)
		d.IsAnonymous = d.IsAnonymous || s.IsAnonymous
		d.IsInline = d.IsInline || s.IsInline
		for _, c := range s.Children.Children() {
			if _, err := d.Children.Add(c); err != nil {
				return err
			}
		}
	case *metadata.RecordInfo:
		s := src.(*metadata.RecordInfo)
		mergeSymbol(&d.SymbolInfo, &s.SymbolInfo)
		if d.TagType == metadata.TagStruct {
			d.TagType = s.TagType
		}
		if d.Template == nil {
			d.Template = s.Template.Clone()
		}
		d.IsTypeDef = d.IsTypeDef || s.IsTypeDef
		d.Specs.Fill(s.Specs)
		if len(d.Bases) == 0 {
			d.Bases = slices.Clone(s.Bases)
		}
		for _, id := range s.Friends {
			d.AddFriend(id)
		}
		for _, c := range s.Members.Children() {
			if _, err := d.Members.Add(c); err != nil {
				return err
			}
		}
	case *metadata.FunctionInfo:
		s := src.(*metadata.FunctionInfo)
		mergeSymbol(&d.SymbolInfo, &s.SymbolInfo)
		if d.ReturnType.IsZero() {
			d.ReturnType = s.ReturnType
		}
		mergeParams(d, s)
		if d.Template == nil {
			d.Template = s.Template.Clone()
		}
		d.Specs.Fill(s.Specs)
		d.IsMethod = d.IsMethod || s.IsMethod
		if d.Parent.IsZero() {
			d.Parent = s.Parent
		}
	case *metadata.EnumInfo:
		s := src.(*metadata.EnumInfo)
		mergeSymbol(&d.SymbolInfo, &s.SymbolInfo)
		d.Scoped = d.Scoped || s.Scoped
		if d.BaseType == nil && s.BaseType != nil {
			t := *s.BaseType
			d.BaseType = &t
		}
		if len(d.Members) == 0 {
			d.Members = slices.Clone(s.Members)
		}
	case *metadata.TypedefInfo:
		s := src.(*metadata.TypedefInfo)
		mergeSymbol(&d.SymbolInfo, &s.SymbolInfo)
		if d.Underlying.IsZero() {
			d.Underlying = s.Underlying
		}
		d.IsUsing = d.IsUsing || s.IsUsing
		if d.Template == nil {
			d.Template = s.Template.Clone()
		}
	case *metadata.VarInfo:
		s := src.(*metadata.VarInfo)
		mergeSymbol(&d.SymbolInfo, &s.SymbolInfo)
		if d.Type.IsZero() {
			d.Type = s.Type
		}
		d.Specs.Fill(s.Specs)
	case *metadata.FieldInfo:
		s := src.(*metadata.FieldInfo)
		mergeSymbol(&d.SymbolInfo, &s.SymbolInfo)
		if d.Type.IsZero() {
			d.Type = s.Type
		}
		if d.Default == "" {
			d.Default = s.Default
		}
		d.IsMutable = d.IsMutable || s.IsMutable
	}
	return nil
}

func mergeInfo(d, s *metadata.Info) {
	if d.Name == "" {
		d.Name = s.Name
	}
	if d.Access == metadata.AccessNone {
		d.Access = s.Access
	}
	if len(d.Namespace) == 0 {
		d.Namespace = slices.Clone(s.Namespace)
	}
	if d.DocComment == "" {
		d.DocComment = s.DocComment
	}
}

func mergeSymbol(d, s *metadata.SymbolInfo) {
	if d.DefLoc == nil && s.DefLoc != nil {
		loc := *s.DefLoc
		d.DefLoc = &loc
	}
	for _, loc := range s.Loc {
		if !slices.Contains(d.Loc, loc) {
			d.Loc = append(d.Loc, loc)
		}
	}
}

// mergeParams fills blank parameter names, defaults and types from an
// observation with the same arity.
func mergeParams(d, s *metadata.FunctionInfo) {
	if len(d.Params) == 0 {
		d.Params = slices.Clone(s.Params)
		return
	}
	if len(d.Params) != len(s.Params) {
		return
	}
	for i := range d.Params {
		if d.Params[i].Name == "" {
			d.Params[i].Name = s.Params[i].Name
		}
		if d.Params[i].Default == "" {
			d.Params[i].Default = s.Params[i].Default
		}
		if d.Params[i].Type.IsZero() {
			d.Params[i].Type = s.Params[i].Type
		}
	}
}
