package metadata

import (
	"fmt"
	"slices"
)

// Lookup resolves an identity to the corpus entity of the requested kind.
// It returns an error wrapping ErrNotFound when there is none.
type Lookup interface {
	Find(id SymbolID, kind InfoKind) (Entity, error)
}

// Get resolves id to an entity of type T.
func Get[T Entity](l Lookup, id SymbolID) (T, error) {
	var zero T
	e, err := l.Find(id, zero.TypeID())
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is a %s", ErrNotFound, id, e.TypeID())
	}
	return t, nil
}

// OverloadInfo is one overload set: the functions of a namespace whose names
// are equal ignoring ASCII case.
type OverloadInfo struct {
	// Namespace the functions are declared in
	Parent *NamespaceInfo

	// Exact spelling of the first function in sorted order
	Name string

	// Contiguous range of the owning NamespaceOverloads.Data
	Functions []*FunctionInfo
}

// NamespaceOverloads groups the functions of one namespace into overload
// sets. It holds pointers into the corpus and must not outlive it.
type NamespaceOverloads struct {
	// Functions sorted by CompareSymbolNames, declaration order within a name
	Data []*FunctionInfo

	// Overload sets in sorted order
	List []OverloadInfo
}

// NewNamespaceOverloads sorts fns by name and splits them into overload sets.
// The sort is stable, so functions with equal names keep their input order.
func NewNamespaceOverloads(ns *NamespaceInfo, fns []*FunctionInfo) *NamespaceOverloads {
	data := slices.Clone(fns)
	slices.SortStableFunc(data, func(f0, f1 *FunctionInfo) int {
		return CompareSymbolNames(f0.Name, f1.Name)
	})

	no := &NamespaceOverloads{Data: data}
	for begin := 0; begin < len(data); {
		end := begin + 1
		for end < len(data) && EqualFoldASCII(data[begin].Name, data[end].Name) {
			end++
		}
		no.List = append(no.List, OverloadInfo{
			Parent:    ns,
			Name:      data[begin].Name,
			Functions: data[begin:end:end],
		})
		begin = end
	}
	return no
}

// MakeNamespaceOverloads resolves every function of ns through l and groups
// them. It fails on the first function that cannot be resolved and returns
// no partial result.
func MakeNamespaceOverloads(ns *NamespaceInfo, l Lookup) (*NamespaceOverloads, error) {
	fns := make([]*FunctionInfo, 0, len(ns.Children.Functions))
	for _, ref := range ns.Children.Functions {
		fn, err := Get[*FunctionInfo](l, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("overloads of namespace %q: function %q (%s): %w", ns.Name, ref.Name, ref.ID, err)
		}
		fns = append(fns, fn)
	}
	return NewNamespaceOverloads(ns, fns), nil
}

// Find returns the overload set whose name equals name ignoring ASCII case.
func (no *NamespaceOverloads) Find(name string) (OverloadInfo, bool) {
	i, found := slices.BinarySearchFunc(no.List, name, func(o OverloadInfo, target string) int {
		if EqualFoldASCII(o.Name, target) {
			return 0
		}
		return CompareSymbolNames(o.Name, target)
	})
	if !found {
		return OverloadInfo{}, false
	}
	return no.List[i], true
}

// Len returns the number of overload sets.
func (no *NamespaceOverloads) Len() int {
	return len(no.List)
}
