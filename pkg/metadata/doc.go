// Package metadata provides the data model for C++ declarations extracted
// from a code base.
//
// Every declaration is an Entity identified by a SymbolID: a SHA-1 digest of
// a USR-like linkage string, so the same declaration observed in several
// translation units always has the same identity. The zero SymbolID never
// names an entity; the global namespace is GlobalNamespaceID.
//
// # Entity Types
//
//	*NamespaceInfo  namespaces, including the global one
//	*RecordInfo     struct, class and union
//	*FunctionInfo   free functions and member functions
//	*EnumInfo       enumerations
//	*TypedefInfo    typedef and alias declarations
//	*VarInfo        namespace-scope variables and static data members
//	*FieldInfo      non-static data members
//
// Each type reports its kind through TypeID, which does not read the
// receiver and so doubles as a type-level discriminator:
//
//	kind := metadata.KindOf[*metadata.RecordInfo]() // KindRecord
//
// Entities never embed their children. Namespaces and records hold
// MemberRef lists partitioned by kind, and children are resolved through a
// Lookup:
//
//	rec, err := metadata.Get[*metadata.RecordInfo](corpus, id)
//	if errors.Is(err, metadata.ErrNotFound) {
//	    // not in the corpus, or not a record
//	}
//
// # Specifier Flags
//
// Boolean and small enumerated specifiers are packed into a 32-bit word per
// entity (RecordFlags, FunctionFlags, VarFlags) using package bitfield. The
// zero word means every specifier is unset. Enumerated ranges can hold values
// outside their enumeration after decoding an arbitrary word; Validate and
// ValidateFlags report those as ErrMalformedFlags.
//
// # Overload Sets
//
// NamespaceOverloads groups the functions of a namespace by name, ignoring
// ASCII case, in the order defined by CompareSymbolNames:
//
//	ov, err := metadata.MakeNamespaceOverloads(ns, corpus)
//	if err != nil {
//	    return err
//	}
//	for _, set := range ov.List {
//	    fmt.Println(set.Name, len(set.Functions))
//	}
//
// The view borrows entities from the corpus and must not outlive it.
//
// # Facts
//
// A Fact is one observed declaration as produced by a front end or read
// from a JSON-lines stream. Fact.Entity builds a fresh entity from it and
// Fact.ParentEntity builds the membership edge to its enclosing scope; the
// corpus merges both.
package metadata
