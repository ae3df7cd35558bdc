package metadata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/cxxcorpus/pkg/bitfield"
)

// ConstexprKind records constexpr or consteval on a function.
type ConstexprKind uint8

const (
	ConstexprNone ConstexprKind = iota
	ConstexprSpecified
	Consteval
)

func (k ConstexprKind) Valid() bool { return k <= Consteval }

// RefQualifier is the ref-qualifier of a member function.
type RefQualifier uint8

const (
	RefNone RefQualifier = iota
	RefLValue
	RefRValue
)

func (q RefQualifier) Valid() bool { return q <= RefRValue }

var (
	fnIsVariadic        = bitfield.Flag{Offset: 0}
	fnIsVirtual         = bitfield.Flag{Offset: 1}
	fnIsPure            = bitfield.Flag{Offset: 2}
	fnIsDefaulted       = bitfield.Flag{Offset: 3}
	fnIsDeleted         = bitfield.Flag{Offset: 4}
	fnIsOverride        = bitfield.Flag{Offset: 5}
	fnHasTrailingReturn = bitfield.Flag{Offset: 6}
	fnIsConst           = bitfield.Flag{Offset: 7}
	fnIsVolatile        = bitfield.Flag{Offset: 8}
	fnIsFinal           = bitfield.Flag{Offset: 9}
	fnIsNodiscard       = bitfield.Flag{Offset: 10}
	fnIsNoexcept        = bitfield.Flag{Offset: 11}

	fnStorageClass  = bitfield.Range{Offset: 12, Width: 3}
	fnConstexprKind = bitfield.Range{Offset: 15, Width: 2}
	fnRefQualifier  = bitfield.Range{Offset: 17, Width: 2}
)

// fnBits covers every single-bit flag.
const fnBits = 1<<12 - 1

// FunctionFlags packs function specifiers.
type FunctionFlags bitfield.Word

func (f FunctionFlags) Raw() uint32      { return uint32(f) }
func (f *FunctionFlags) SetRaw(v uint32) { *f = FunctionFlags(v) }

func (f FunctionFlags) get(flag bitfield.Flag) bool {
	return flag.Get(bitfield.Word(f))
}

func (f *FunctionFlags) set(flag bitfield.Flag, v bool) {
	w := bitfield.Word(*f)
	flag.Set(&w, v)
	*f = FunctionFlags(w)
}

func (f *FunctionFlags) setRange(r bitfield.Range, v uint32) {
	w := bitfield.Word(*f)
	r.Set(&w, v)
	*f = FunctionFlags(w)
}

func (f FunctionFlags) IsVariadic() bool        { return f.get(fnIsVariadic) }
func (f FunctionFlags) IsVirtual() bool         { return f.get(fnIsVirtual) }
func (f FunctionFlags) IsPure() bool            { return f.get(fnIsPure) }
func (f FunctionFlags) IsDefaulted() bool       { return f.get(fnIsDefaulted) }
func (f FunctionFlags) IsDeleted() bool         { return f.get(fnIsDeleted) }
func (f FunctionFlags) IsOverride() bool        { return f.get(fnIsOverride) }
func (f FunctionFlags) HasTrailingReturn() bool { return f.get(fnHasTrailingReturn) }
func (f FunctionFlags) IsConst() bool           { return f.get(fnIsConst) }
func (f FunctionFlags) IsVolatile() bool        { return f.get(fnIsVolatile) }
func (f FunctionFlags) IsFinal() bool           { return f.get(fnIsFinal) }
func (f FunctionFlags) IsNodiscard() bool       { return f.get(fnIsNodiscard) }
func (f FunctionFlags) IsNoexcept() bool        { return f.get(fnIsNoexcept) }

func (f *FunctionFlags) SetIsVariadic(v bool)        { f.set(fnIsVariadic, v) }
func (f *FunctionFlags) SetIsVirtual(v bool)         { f.set(fnIsVirtual, v) }
func (f *FunctionFlags) SetIsPure(v bool)            { f.set(fnIsPure, v) }
func (f *FunctionFlags) SetIsDefaulted(v bool)       { f.set(fnIsDefaulted, v) }
func (f *FunctionFlags) SetIsDeleted(v bool)         { f.set(fnIsDeleted, v) }
func (f *FunctionFlags) SetIsOverride(v bool)        { f.set(fnIsOverride, v) }
func (f *FunctionFlags) SetHasTrailingReturn(v bool) { f.set(fnHasTrailingReturn, v) }
func (f *FunctionFlags) SetIsConst(v bool)           { f.set(fnIsConst, v) }
func (f *FunctionFlags) SetIsVolatile(v bool)        { f.set(fnIsVolatile, v) }
func (f *FunctionFlags) SetIsFinal(v bool)           { f.set(fnIsFinal, v) }
func (f *FunctionFlags) SetIsNodiscard(v bool)       { f.set(fnIsNodiscard, v) }
func (f *FunctionFlags) SetIsNoexcept(v bool)        { f.set(fnIsNoexcept, v) }

func (f FunctionFlags) StorageClass() StorageClass {
	return StorageClass(fnStorageClass.Get(bitfield.Word(f)))
}

func (f *FunctionFlags) SetStorageClass(s StorageClass) {
	f.setRange(fnStorageClass, uint32(s))
}

func (f FunctionFlags) ConstexprKind() ConstexprKind {
	return ConstexprKind(fnConstexprKind.Get(bitfield.Word(f)))
}

func (f *FunctionFlags) SetConstexprKind(k ConstexprKind) {
	f.setRange(fnConstexprKind, uint32(k))
}

func (f FunctionFlags) RefQualifier() RefQualifier {
	return RefQualifier(fnRefQualifier.Get(bitfield.Word(f)))
}

func (f *FunctionFlags) SetRefQualifier(q RefQualifier) {
	f.setRange(fnRefQualifier, uint32(q))
}

// Validate reports ErrMalformedFlags if any ranged field is out of range.
func (f FunctionFlags) Validate() error {
	if sc := f.StorageClass(); !sc.Valid() {
		return fmt.Errorf("%w: function storage class %d", ErrMalformedFlags, uint8(sc))
	}
	if k := f.ConstexprKind(); !k.Valid() {
		return fmt.Errorf("%w: constexpr kind %d", ErrMalformedFlags, uint8(k))
	}
	if q := f.RefQualifier(); !q.Valid() {
		return fmt.Errorf("%w: ref-qualifier %d", ErrMalformedFlags, uint8(q))
	}
	return nil
}

// Fill sets every single-bit flag set in o, and copies each ranged field
// from o while it is unset here.
func (f *FunctionFlags) Fill(o FunctionFlags) {
	*f |= o & fnBits
	if f.StorageClass() == StorageNone {
		f.SetStorageClass(o.StorageClass())
	}
	if f.ConstexprKind() == ConstexprNone {
		f.SetConstexprKind(o.ConstexprKind())
	}
	if f.RefQualifier() == RefNone {
		f.SetRefQualifier(o.RefQualifier())
	}
}

// FunctionInfo is a free function or a member function.
type FunctionInfo struct {
	SymbolInfo

	ReturnType TypeInfo      `json:"return_type"`
	Params     []Param       `json:"params,omitempty"`
	Template   *TemplateInfo `json:"template,omitempty"`
	Specs      FunctionFlags `json:"specs,omitempty"`

	// Set for member functions; Parent is then the owning record.
	IsMethod bool     `json:"is_method,omitempty"`
	Parent   SymbolID `json:"parent,omitempty"`
}

// NewFunctionInfo returns a function with every field at its default.
func NewFunctionInfo(id SymbolID, name string) *FunctionInfo {
	return &FunctionInfo{
		SymbolInfo: SymbolInfo{Info: Info{ID: id, Kind: KindFunction, Name: name}},
	}
}

func (*FunctionInfo) TypeID() InfoKind { return KindFunction }
func (f *FunctionInfo) Base() *Info    { return &f.Info }
func (*FunctionInfo) entity()          {}

func (f *FunctionInfo) Clone() Entity {
	c := *f
	c.SymbolInfo = f.SymbolInfo.clone()
	c.Params = slices.Clone(f.Params)
	c.Template = f.Template.Clone()
	return &c
}

// Signature renders the declaration without its enclosing scopes, e.g.
// "virtual double area() const = 0".
func (f *FunctionInfo) Signature() string {
	var b strings.Builder
	s := f.Specs

	switch s.StorageClass() {
	case StorageStatic:
		b.WriteString("static ")
	case StorageExtern:
		b.WriteString("extern ")
	}
	if s.IsVirtual() {
		b.WriteString("virtual ")
	}
	switch s.ConstexprKind() {
	case ConstexprSpecified:
		b.WriteString("constexpr ")
	case Consteval:
		b.WriteString("consteval ")
	}

	switch {
	case s.HasTrailingReturn():
		b.WriteString("auto ")
	case f.ReturnType.Name != "":
		b.WriteString(f.ReturnType.Name)
		b.WriteByte(' ')
	}

	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.Name)
		if p.Name != "" {
			b.WriteByte(' ')
			b.WriteString(p.Name)
		}
		if p.Default != "" {
			b.WriteString(" = ")
			b.WriteString(p.Default)
		}
	}
	if s.IsVariadic() {
		if len(f.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteByte(')')

	if s.IsConst() {
		b.WriteString(" const")
	}
	if s.IsVolatile() {
		b.WriteString(" volatile")
	}
	switch s.RefQualifier() {
	case RefLValue:
		b.WriteString(" &")
	case RefRValue:
		b.WriteString(" &&")
	}
	if s.IsNoexcept() {
		b.WriteString(" noexcept")
	}
	if s.HasTrailingReturn() && f.ReturnType.Name != "" {
		b.WriteString(" -> ")
		b.WriteString(f.ReturnType.Name)
	}
	if s.IsOverride() {
		b.WriteString(" override")
	}
	if s.IsFinal() {
		b.WriteString(" final")
	}
	switch {
	case s.IsPure():
		b.WriteString(" = 0")
	case s.IsDeleted():
		b.WriteString(" = delete")
	case s.IsDefaulted():
		b.WriteString(" = default")
	}
	return b.String()
}
