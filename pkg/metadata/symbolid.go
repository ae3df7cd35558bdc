package metadata

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// SymbolID is the stable identity of a declared entity. It is the SHA-1 of a
// linkage-significant name, so every translation unit that sees the same
// declaration computes the same ID.
type SymbolID [sha1.Size]byte

// ZeroID means "no entity".
var ZeroID SymbolID

// GlobalNamespaceID identifies the global namespace.
var GlobalNamespaceID = NewSymbolID("c:@")

// NewSymbolID hashes a USR-style linkage name into a SymbolID.
func NewSymbolID(usr string) SymbolID {
	return SymbolID(sha1.Sum([]byte(usr)))
}

// ParseSymbolID decodes the hex form produced by String.
func ParseSymbolID(s string) (SymbolID, error) {
	var id SymbolID
	if len(s) != hex.EncodedLen(len(id)) {
		return ZeroID, fmt.Errorf("invalid symbol ID %q: want %d hex digits", s, hex.EncodedLen(len(id)))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return ZeroID, fmt.Errorf("invalid symbol ID %q: %w", s, err)
	}
	return id, nil
}

// IsZero reports whether id is the zero sentinel.
func (id SymbolID) IsZero() bool {
	return id == ZeroID
}

// Compare orders IDs bytewise. It returns -1, 0 or +1.
func (id SymbolID) Compare(other SymbolID) int {
	return bytes.Compare(id[:], other[:])
}

// String returns the lowercase hex encoding.
func (id SymbolID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id SymbolID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string decodes
// to ZeroID.
func (id *SymbolID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = ZeroID
		return nil
	}
	parsed, err := ParseSymbolID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
