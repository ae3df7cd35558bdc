package metadata

import (
	"slices"

	"github.com/dshills/cxxcorpus/pkg/bitfield"
)

var (
	recIsFinal           = bitfield.Flag{Offset: 0}
	recIsFinalDestructor = bitfield.Flag{Offset: 1}
)

// RecordFlags packs record specifiers.
type RecordFlags bitfield.Word

// Raw returns the packed word.
func (f RecordFlags) Raw() uint32 { return uint32(f) }

// SetRaw replaces the packed word.
func (f *RecordFlags) SetRaw(v uint32) { *f = RecordFlags(v) }

// IsFinal reports whether the record is declared final.
func (f RecordFlags) IsFinal() bool { return recIsFinal.Get(bitfield.Word(f)) }

// SetIsFinal sets the final specifier.
func (f *RecordFlags) SetIsFinal(v bool) { f.set(recIsFinal, v) }

// IsFinalDestructor reports whether the record's destructor is final.
func (f RecordFlags) IsFinalDestructor() bool {
	return recIsFinalDestructor.Get(bitfield.Word(f))
}

// SetIsFinalDestructor sets the final destructor flag.
func (f *RecordFlags) SetIsFinalDestructor(v bool) { f.set(recIsFinalDestructor, v) }

func (f *RecordFlags) set(flag bitfield.Flag, v bool) {
	w := bitfield.Word(*f)
	flag.Set(&w, v)
	*f = RecordFlags(w)
}

// Fill sets every flag that is set in o.
func (f *RecordFlags) Fill(o RecordFlags) {
	*f |= o
}

// BaseInfo describes a direct base class.
type BaseInfo struct {
	// Zero when the base could not be resolved to a declaration
	ID        SymbolID `json:"id,omitempty"`
	Name      string   `json:"name"`
	Access    Access   `json:"access"`
	IsVirtual bool     `json:"is_virtual,omitempty"`
}

// NewBaseInfo returns a public, non-virtual base.
func NewBaseInfo(id SymbolID, name string) BaseInfo {
	return BaseInfo{ID: id, Name: name, Access: AccessPublic}
}

// RecordInfo is the metadata for a struct, class or union.
type RecordInfo struct {
	SymbolInfo

	TagType TagKind `json:"tag"`

	// Present iff the record is a template or a specialization
	Template *TemplateInfo `json:"template,omitempty"`

	// Set for "typedef struct { ... } name;": the record takes the alias name.
	IsTypeDef bool `json:"is_typedef,omitempty"`

	Specs RecordFlags `json:"specs,omitempty"`

	// Immediate bases in declaration order
	Bases []BaseInfo `json:"bases,omitempty"`

	// Friend functions, unordered
	Friends []SymbolID `json:"friends,omitempty"`

	Members RecordScope `json:"members"`
}

// NewRecordInfo returns a record with every field at its default.
func NewRecordInfo(id SymbolID, name string) *RecordInfo {
	return &RecordInfo{
		SymbolInfo: SymbolInfo{Info: Info{ID: id, Kind: KindRecord, Name: name}},
	}
}

func (*RecordInfo) TypeID() InfoKind { return KindRecord }
func (r *RecordInfo) Base() *Info    { return &r.Info }
func (*RecordInfo) entity()          {}

func (r *RecordInfo) Clone() Entity {
	c := *r
	c.SymbolInfo = r.SymbolInfo.clone()
	c.Template = r.Template.Clone()
	c.Bases = slices.Clone(r.Bases)
	c.Friends = slices.Clone(r.Friends)
	c.Members = r.Members.clone()
	return &c
}

// AddFriend records a friend function once.
func (r *RecordInfo) AddFriend(id SymbolID) bool {
	if slices.Contains(r.Friends, id) {
		return false
	}
	r.Friends = append(r.Friends, id)
	return true
}
