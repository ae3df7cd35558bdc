package frontend

import (
	"slices"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// USR fragments for each kind of declaration
const (
	usrGlobal    = "c:"
	usrNamespace = "@N@"
	usrAnonNS    = "@aN"
	usrStruct    = "@S@"
	usrUnion     = "@U@"
	usrFunction  = "@F@"
	usrEnum      = "@E@"
	usrTypedef   = "@T@"
	usrField     = "@FI@"
	usrVariable  = "@"
)

// scope is a namespace or record being walked
type scope struct {
	parent *scope
	usr    string
	id     metadata.SymbolID
	kind   metadata.InfoKind
	name   string

	// Current access section; AccessNone in namespaces
	access metadata.Access

	// Index of the record's fact, for specifiers found while walking members
	fact int

	// Record synthesized for a qualifier not declared in this file
	guessed bool
}

func newGlobalScope() *scope {
	return &scope{usr: usrGlobal, id: metadata.GlobalNamespaceID, kind: metadata.KindNamespace, fact: -1}
}

// child derives a nested scope
func (s *scope) child(fragment, name string, kind metadata.InfoKind) *scope {
	usr := s.usr + fragment + name
	return &scope{
		parent: s,
		usr:    usr,
		id:     metadata.NewSymbolID(usr),
		kind:   kind,
		name:   name,
		fact:   -1,
	}
}

// chain lists this scope and its ancestors, innermost first, ending with
// the global namespace
func (s *scope) chain() []metadata.SymbolID {
	var ids []metadata.SymbolID
	for cur := s; cur != nil; cur = cur.parent {
		ids = append(ids, cur.id)
	}
	return ids
}

// qualified returns the "::"-joined names from the global scope
func (s *scope) qualified() string {
	var names []string
	for cur := s; cur != nil && cur.parent != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	slices.Reverse(names)
	q := ""
	for i, n := range names {
		if i > 0 {
			q += "::"
		}
		q += n
	}
	return q
}

// namespace returns the nearest enclosing namespace, s itself included
func (s *scope) namespace() *scope {
	cur := s
	for cur.kind != metadata.KindNamespace {
		cur = cur.parent
	}
	return cur
}

// memberAccess is the access recorded for declarations in s
func (s *scope) memberAccess() metadata.Access {
	if s.kind == metadata.KindRecord {
		return s.access
	}
	return metadata.AccessNone
}
