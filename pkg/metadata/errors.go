package metadata

import "errors"

// Domain errors for metadata lookup and decoding
var (
	// ErrNotFound is returned when an identity has no entity of the requested kind
	ErrNotFound = errors.New("symbol not found")
	// ErrMalformedFlags is returned when a packed enumerated field holds a value
	// outside its enumeration
	ErrMalformedFlags = errors.New("malformed specifier flags")
	// ErrIDMismatch is returned when merging observations of different symbols
	ErrIDMismatch = errors.New("symbol ID mismatch")
	// ErrKindMismatch is returned when an identity is observed with two kinds
	ErrKindMismatch = errors.New("symbol kind mismatch")
	// ErrZeroID is returned when an entity without an identity is stored
	ErrZeroID = errors.New("symbol ID is zero")
)
