package metadata

import "fmt"

// InfoKind discriminates entity types. The set is closed: it mirrors the
// declaration taxonomy of C++ and is not extended by callers.
type InfoKind uint8

const (
	KindDefault InfoKind = iota
	KindNamespace
	KindRecord
	KindFunction
	KindEnum
	KindTypedef
	KindVariable
	KindField
)

var infoKindNames = [...]string{
	KindDefault:   "default",
	KindNamespace: "namespace",
	KindRecord:    "record",
	KindFunction:  "function",
	KindEnum:      "enum",
	KindTypedef:   "typedef",
	KindVariable:  "variable",
	KindField:     "field",
}

func (k InfoKind) String() string {
	if int(k) < len(infoKindNames) {
		return infoKindNames[k]
	}
	return fmt.Sprintf("InfoKind(%d)", uint8(k))
}

// ParseInfoKind returns the kind named s.
func ParseInfoKind(s string) (InfoKind, error) {
	for i, name := range infoKindNames {
		if name == s {
			return InfoKind(i), nil
		}
	}
	return KindDefault, fmt.Errorf("unknown symbol kind %q", s)
}

func (k InfoKind) MarshalText() ([]byte, error) {
	if int(k) >= len(infoKindNames) {
		return nil, fmt.Errorf("invalid symbol kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *InfoKind) UnmarshalText(text []byte) error {
	parsed, err := ParseInfoKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Access is a C++ access specifier.
type Access uint8

const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

var accessNames = [...]string{
	AccessNone:      "none",
	AccessPublic:    "public",
	AccessProtected: "protected",
	AccessPrivate:   "private",
}

func (a Access) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return fmt.Sprintf("Access(%d)", uint8(a))
}

// ParseAccess returns the access level named s. The empty string is AccessNone.
func ParseAccess(s string) (Access, error) {
	if s == "" {
		return AccessNone, nil
	}
	for i, name := range accessNames {
		if name == s {
			return Access(i), nil
		}
	}
	return AccessNone, fmt.Errorf("unknown access %q", s)
}

func (a Access) MarshalText() ([]byte, error) {
	if int(a) >= len(accessNames) {
		return nil, fmt.Errorf("invalid access %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Access) UnmarshalText(text []byte) error {
	parsed, err := ParseAccess(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// TagKind is the class-key a record was declared with.
type TagKind uint8

const (
	TagStruct TagKind = iota
	TagClass
	TagUnion
	TagInterface
)

var tagKindNames = [...]string{
	TagStruct:    "struct",
	TagClass:     "class",
	TagUnion:     "union",
	TagInterface: "interface",
}

func (t TagKind) String() string {
	if int(t) < len(tagKindNames) {
		return tagKindNames[t]
	}
	return fmt.Sprintf("TagKind(%d)", uint8(t))
}

// ParseTagKind returns the tag named s. The empty string is TagStruct.
func ParseTagKind(s string) (TagKind, error) {
	if s == "" {
		return TagStruct, nil
	}
	for i, name := range tagKindNames {
		if name == s {
			return TagKind(i), nil
		}
	}
	return TagStruct, fmt.Errorf("unknown tag kind %q", s)
}

// DefaultAccess is the member access implied by the class-key.
func (t TagKind) DefaultAccess() Access {
	if t == TagClass {
		return AccessPrivate
	}
	return AccessPublic
}

func (t TagKind) MarshalText() ([]byte, error) {
	if int(t) >= len(tagKindNames) {
		return nil, fmt.Errorf("invalid tag kind %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *TagKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTagKind(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
