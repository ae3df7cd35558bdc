// Package bitfield packs boolean and small enumerated fields into a single
// fixed-width word.
//
// A Word is the storage; Flag and Range describe named views into it. Types
// that carry specifier bits declare their views as package-level variables
// and expose typed accessors on top of them:
//
//	var isFinal = bitfield.Flag{Offset: 0}
//
//	type RecordFlags bitfield.Word
//
//	func (f RecordFlags) IsFinal() bool { return isFinal.Get(bitfield.Word(f)) }
//
// The zero Word leaves every view at its unset default.
package bitfield

// Bits is the width of a Word in bits.
const Bits = 32

// Word is the raw storage shared by all views.
type Word uint32

// Raw returns the full-width value.
func (w Word) Raw() uint32 { return uint32(w) }

// SetRaw replaces every bit of the word.
func (w *Word) SetRaw(v uint32) { *w = Word(v) }

// Flag is a single-bit view.
type Flag struct {
	Offset uint
}

// Mask returns the bit owned by the flag.
func (f Flag) Mask() Word {
	return 1 << f.Offset
}

// Get reports whether the bit is set.
func (f Flag) Get(w Word) bool {
	return w&f.Mask() != 0
}

// Set sets or clears the bit, leaving all other bits untouched.
func (f Flag) Set(w *Word, on bool) {
	if on {
		*w |= f.Mask()
		return
	}
	*w &^= f.Mask()
}

// Range is a view over Width contiguous bits starting at Offset.
type Range struct {
	Offset uint
	Width  uint
}

// Max returns the largest value the range can hold.
func (r Range) Max() uint32 {
	if r.Width >= Bits {
		return ^uint32(0)
	}
	return 1<<r.Width - 1
}

// Mask returns the bits owned by the range, in place.
func (r Range) Mask() Word {
	return Word(r.Max()) << r.Offset
}

// Get returns the value stored in the range.
func (r Range) Get(w Word) uint32 {
	return uint32(w>>r.Offset) & r.Max()
}

// Set stores v into the range. Bits of v above Width are dropped; callers
// must keep v within the enumeration the range was declared for.
func (r Range) Set(w *Word, v uint32) {
	*w = (*w &^ r.Mask()) | (Word(v&r.Max()) << r.Offset)
}
