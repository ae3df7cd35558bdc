// Package hierarchy derives the inheritance graph of the records in a corpus.
//
// Edges run from a base to the records deriving from it, so a topological
// order lists every base before its derived classes. Bases that were never
// resolved to a declaration in the corpus have no vertex; they still appear
// in Bases with a zero ID.
package hierarchy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// ErrCycle is returned when a record would be its own ancestor
var ErrCycle = errors.New("inheritance cycle")

// Hierarchy is an immutable snapshot of the inheritance graph
type Hierarchy struct {
	graph      graph.Graph[metadata.SymbolID, *metadata.RecordInfo]
	derived    map[metadata.SymbolID][]*metadata.RecordInfo
	generation uint64
}

func recordID(r *metadata.RecordInfo) metadata.SymbolID { return r.ID }

// Build snapshots the records of c
func Build(c *corpus.Corpus) (*Hierarchy, error) {
	generation := c.Generation()
	records := corpus.AllOf[*metadata.RecordInfo](c)

	g := graph.New(recordID, graph.Directed(), graph.PreventCycles())
	for _, r := range records {
		if err := g.AddVertex(r); err != nil {
			return nil, fmt.Errorf("failed to add record %s: %w", r.Name, err)
		}
	}

	for _, r := range records {
		for _, b := range r.Bases {
			if b.ID.IsZero() {
				continue
			}
			if _, err := g.Vertex(b.ID); err != nil {
				continue // not a record in this corpus
			}
			err := g.AddEdge(b.ID, r.ID)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrEdgeCreatesCycle), b.ID == r.ID:
				return nil, fmt.Errorf("%w: %s derives from %s", ErrCycle, c.QualifiedName(r), b.Name)
			default:
				return nil, fmt.Errorf("failed to add base %s of %s: %w", b.Name, r.Name, err)
			}
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	derived := make(map[metadata.SymbolID][]*metadata.RecordInfo, len(adjacency))
	for base, edges := range adjacency {
		if len(edges) == 0 {
			continue
		}
		list := make([]*metadata.RecordInfo, 0, len(edges))
		for id := range edges {
			r, err := g.Vertex(id)
			if err != nil {
				return nil, err
			}
			list = append(list, r)
		}
		slices.SortFunc(list, byName)
		derived[base] = list
	}

	return &Hierarchy{graph: g, derived: derived, generation: generation}, nil
}

func byName(a, b *metadata.RecordInfo) int {
	if c := metadata.CompareSymbolNames(a.Name, b.Name); c != 0 {
		return c
	}
	return a.ID.Compare(b.ID)
}

// Generation is the corpus generation the snapshot was built at
func (h *Hierarchy) Generation() uint64 { return h.generation }

// Record returns the record with the given identity
func (h *Hierarchy) Record(id metadata.SymbolID) (*metadata.RecordInfo, error) {
	r, err := h.graph.Vertex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: record %s", metadata.ErrNotFound, id)
	}
	return r, nil
}

// Bases returns the direct bases of a record in declaration order
func (h *Hierarchy) Bases(id metadata.SymbolID) ([]metadata.BaseInfo, error) {
	r, err := h.Record(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(r.Bases), nil
}

// Derived returns the records deriving directly from id, by name then identity
func (h *Hierarchy) Derived(id metadata.SymbolID) ([]*metadata.RecordInfo, error) {
	if _, err := h.Record(id); err != nil {
		return nil, err
	}
	return slices.Clone(h.derived[id]), nil
}

// Ancestors returns every resolved base reachable from id, breadth first in
// declaration order. A base inherited along several paths is listed once.
func (h *Hierarchy) Ancestors(id metadata.SymbolID) ([]*metadata.RecordInfo, error) {
	start, err := h.Record(id)
	if err != nil {
		return nil, err
	}
	return h.walk(start, func(r *metadata.RecordInfo) []*metadata.RecordInfo {
		var next []*metadata.RecordInfo
		for _, b := range r.Bases {
			if base, err := h.graph.Vertex(b.ID); err == nil && !b.ID.IsZero() {
				next = append(next, base)
			}
		}
		return next
	}), nil
}

// Descendants returns every record deriving from id, breadth first
func (h *Hierarchy) Descendants(id metadata.SymbolID) ([]*metadata.RecordInfo, error) {
	start, err := h.Record(id)
	if err != nil {
		return nil, err
	}
	return h.walk(start, func(r *metadata.RecordInfo) []*metadata.RecordInfo {
		return h.derived[r.ID]
	}), nil
}

func (h *Hierarchy) walk(start *metadata.RecordInfo, next func(*metadata.RecordInfo) []*metadata.RecordInfo) []*metadata.RecordInfo {
	seen := map[metadata.SymbolID]bool{start.ID: true}
	queue := []*metadata.RecordInfo{start}
	var out []*metadata.RecordInfo
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for _, n := range next(r) {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	return out
}

// TopologicalOrder lists every record after all of its bases. Records with
// no ordering constraint between them are sorted by name then identity.
func (h *Hierarchy) TopologicalOrder() ([]*metadata.RecordInfo, error) {
	ids, err := graph.StableTopologicalSort(h.graph, func(a, b metadata.SymbolID) bool {
		ra, _ := h.graph.Vertex(a)
		rb, _ := h.graph.Vertex(b)
		return byName(ra, rb) < 0
	})
	if err != nil {
		return nil, err
	}
	out := make([]*metadata.RecordInfo, len(ids))
	for i, id := range ids {
		if out[i], err = h.graph.Vertex(id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Len returns the number of records
func (h *Hierarchy) Len() int {
	n, err := h.graph.Order()
	if err != nil {
		return 0
	}
	return n
}
