// Package overloads serves overload-set views of corpus namespaces.
//
// Views are built on demand with metadata.MakeNamespaceOverloads and cached
// per namespace together with the corpus generation they were built at; a
// later merge into the corpus makes them stale. Concurrent requests for one
// namespace at one generation share a single build.
package overloads

import (
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// DefaultCacheSize bounds the number of cached namespace views.
const DefaultCacheSize = 512

type view struct {
	generation uint64
	overloads  *metadata.NamespaceOverloads
}

// Index builds and caches NamespaceOverloads for one corpus.
type Index struct {
	corpus *corpus.Corpus
	cache  *lru.Cache[metadata.SymbolID, view]
	group  singleflight.Group
}

// New creates an index over c caching up to size views.
func New(c *corpus.Corpus, size int) (*Index, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[metadata.SymbolID, view](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create overload cache: %w", err)
	}
	return &Index{corpus: c, cache: cache}, nil
}

// Namespace returns the overload sets of the namespace id.
func (x *Index) Namespace(id metadata.SymbolID) (*metadata.NamespaceOverloads, error) {
	gen := x.corpus.Generation()
	if v, ok := x.cache.Get(id); ok && v.generation == gen {
		return v.overloads, nil
	}

	res, err, _ := x.group.Do(flightKey(id, gen), func() (interface{}, error) {
		gen := x.corpus.Generation()
		ns, err := metadata.Get[*metadata.NamespaceInfo](x.corpus, id)
		if err != nil {
			return nil, err
		}
		ov, err := metadata.MakeNamespaceOverloads(ns, x.corpus)
		if err != nil {
			return nil, err
		}
		x.cache.Add(id, view{generation: gen, overloads: ov})
		return ov, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*metadata.NamespaceOverloads), nil
}

// flightKey names a build of id for callers that observed generation gen.
// A caller never joins a build started before a merge it has seen.
func flightKey(id metadata.SymbolID, gen uint64) string {
	return id.String() + "@" + strconv.FormatUint(gen, 10)
}

// Global returns the overload sets of the global namespace.
func (x *Index) Global() (*metadata.NamespaceOverloads, error) {
	return x.Namespace(metadata.GlobalNamespaceID)
}

// All returns the overload sets of every namespace in identity order. It
// fails on the first namespace that cannot be built.
func (x *Index) All() ([]*metadata.NamespaceOverloads, error) {
	namespaces := corpus.AllOf[*metadata.NamespaceInfo](x.corpus)
	out := make([]*metadata.NamespaceOverloads, 0, len(namespaces))
	for _, ns := range namespaces {
		ov, err := x.Namespace(ns.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ov)
	}
	return out, nil
}

// Purge drops every cached view.
func (x *Index) Purge() {
	x.cache.Purge()
}

// Cached returns the number of cached views.
func (x *Index) Cached() int {
	return x.cache.Len()
}
