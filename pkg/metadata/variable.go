package metadata

import (
	"fmt"

	"github.com/dshills/cxxcorpus/pkg/bitfield"
)

// StorageClass is a declaration's storage-class specifier.
type StorageClass uint8

const (
	StorageNone StorageClass = iota
	StorageExtern
	StorageStatic
	StoragePrivateExtern
	StorageAuto
	StorageRegister
)

var storageClassNames = [...]string{
	StorageNone:          "none",
	StorageExtern:        "extern",
	StorageStatic:        "static",
	StoragePrivateExtern: "__private_extern__",
	StorageAuto:          "auto",
	StorageRegister:      "register",
}

// Valid reports whether s is a member of the enumeration.
func (s StorageClass) Valid() bool {
	return int(s) < len(storageClassNames)
}

func (s StorageClass) String() string {
	if s.Valid() {
		return storageClassNames[s]
	}
	return fmt.Sprintf("StorageClass(%d)", uint8(s))
}

// ParseStorageClass maps a specifier keyword to its StorageClass.
func ParseStorageClass(s string) (StorageClass, bool) {
	for i, name := range storageClassNames {
		if name == s {
			return StorageClass(i), true
		}
	}
	return StorageNone, false
}

var varStorageClass = bitfield.Range{Offset: 0, Width: 3}

// VarFlags packs variable specifiers.
type VarFlags bitfield.Word

// Raw returns the packed word.
func (f VarFlags) Raw() uint32 { return uint32(f) }

// SetRaw replaces the packed word.
func (f *VarFlags) SetRaw(v uint32) { *f = VarFlags(v) }

// StorageClass returns the declared storage class.
func (f VarFlags) StorageClass() StorageClass {
	return StorageClass(varStorageClass.Get(bitfield.Word(f)))
}

// SetStorageClass sets the declared storage class.
func (f *VarFlags) SetStorageClass(s StorageClass) {
	w := bitfield.Word(*f)
	varStorageClass.Set(&w, uint32(s))
	*f = VarFlags(w)
}

// Validate reports ErrMalformedFlags if the storage class is out of range.
func (f VarFlags) Validate() error {
	if sc := f.StorageClass(); !sc.Valid() {
		return fmt.Errorf("%w: variable storage class %d", ErrMalformedFlags, uint8(sc))
	}
	return nil
}

// Fill copies the storage class from o while it is unset here.
func (f *VarFlags) Fill(o VarFlags) {
	if f.StorageClass() == StorageNone {
		f.SetStorageClass(o.StorageClass())
	}
}

// VarInfo is a variable at namespace scope or a static data member.
type VarInfo struct {
	SymbolInfo

	Type  TypeInfo `json:"type"`
	Specs VarFlags `json:"specs,omitempty"`
}

// NewVarInfo returns a variable with every field at its default.
func NewVarInfo(id SymbolID, name string) *VarInfo {
	return &VarInfo{
		SymbolInfo: SymbolInfo{Info: Info{ID: id, Kind: KindVariable, Name: name}},
	}
}

func (*VarInfo) TypeID() InfoKind { return KindVariable }
func (v *VarInfo) Base() *Info    { return &v.Info }
func (*VarInfo) entity()          {}

func (v *VarInfo) Clone() Entity {
	c := *v
	c.SymbolInfo = v.SymbolInfo.clone()
	return &c
}

// FieldInfo is a non-static data member.
type FieldInfo struct {
	SymbolInfo

	Type      TypeInfo `json:"type"`
	Default   string   `json:"default,omitempty"`
	IsMutable bool     `json:"is_mutable,omitempty"`
}

// NewFieldInfo returns a field with every field at its default.
func NewFieldInfo(id SymbolID, name string) *FieldInfo {
	return &FieldInfo{
		SymbolInfo: SymbolInfo{Info: Info{ID: id, Kind: KindField, Name: name}},
	}
}

func (*FieldInfo) TypeID() InfoKind { return KindField }
func (f *FieldInfo) Base() *Info    { return &f.Info }
func (*FieldInfo) entity()          {}

func (f *FieldInfo) Clone() Entity {
	c := *f
	c.SymbolInfo = f.SymbolInfo.clone()
	return &c
}
