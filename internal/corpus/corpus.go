package corpus

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

const shardCount = 64

type shard struct {
	mu       sync.RWMutex
	entities map[metadata.SymbolID]metadata.Entity
}

// Corpus is a concurrent store of entities keyed by identity.
type Corpus struct {
	shards     [shardCount]shard
	size       atomic.Int64
	generation atomic.Uint64
}

// New returns a corpus holding only the global namespace.
func New() *Corpus {
	c := &Corpus{}
	for i := range c.shards {
		c.shards[i].entities = make(map[metadata.SymbolID]metadata.Entity)
	}
	g := metadata.NewGlobalNamespace()
	c.shardFor(g.ID).entities[g.ID] = g
	c.size.Store(1)
	return c
}

func (c *Corpus) shardFor(id metadata.SymbolID) *shard {
	return &c.shards[int(id[0])%shardCount]
}

// Merge inserts e, or merges it into the entity already stored under its
// identity. It returns the stored snapshot. e itself is never retained.
// The generation is left alone when e adds nothing.
func (c *Corpus) Merge(e metadata.Entity) (metadata.Entity, error) {
	id := e.Base().ID
	if id.IsZero() {
		return nil, fmt.Errorf("merge %s %q: %w", e.TypeID(), e.Base().Name, metadata.ErrZeroID)
	}
	if err := metadata.ValidateFlags(e); err != nil {
		return nil, fmt.Errorf("merge %s %q: %w", e.TypeID(), e.Base().Name, err)
	}

	s := c.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entities[id]
	if !ok {
		stored := e.Clone()
		s.entities[id] = stored
		c.size.Add(1)
		c.generation.Add(1)
		return stored, nil
	}

	next := current.Clone()
	if err := merge(next, e); err != nil {
		return nil, err
	}
	if reflect.DeepEqual(current, next) {
		return current, nil
	}
	s.entities[id] = next
	c.generation.Add(1)
	return next, nil
}

// MergeFact merges the entity a fact describes together with the membership
// edge to its parent scope. A fact with an alternative scope is settled
// against the corpus first.
func (c *Corpus) MergeFact(f *metadata.Fact) error {
	c.Settle(f)
	e, err := f.Entity()
	if err != nil {
		return err
	}
	if _, err := c.Merge(e); err != nil {
		return err
	}
	parent, ok, err := f.ParentEntity()
	if err != nil {
		return fmt.Errorf("fact %q: %w", f.Name, err)
	}
	if ok {
		if _, err := c.Merge(parent); err != nil {
			return fmt.Errorf("parent of %q: %w", f.Name, err)
		}
	}
	return nil
}

// Settle chooses between the two readings of a fact with an alternative
// scope and clears the alternative. The namespace reading wins when that
// namespace is stored and no record is stored under the primary parent.
func (c *Corpus) Settle(f *metadata.Fact) {
	if f.Alt == nil {
		return
	}
	if _, err := c.Find(f.Parent, metadata.KindRecord); err != nil {
		if _, err := c.Find(f.Alt.Parent, metadata.KindNamespace); err == nil {
			f.UseAlt()
			return
		}
	}
	f.Alt = nil
}

// Batch merges the facts of many translation units. Facts with an
// alternative scope are held until Flush, so they settle against what every
// unit declared. A Batch is safe for concurrent use.
type Batch struct {
	c    *Corpus
	mu   sync.Mutex
	held []metadata.Fact
}

// NewBatch starts a batch merging into c.
func (c *Corpus) NewBatch() *Batch {
	return &Batch{c: c}
}

// Merge merges f, or holds a copy of it when it has an alternative scope.
func (b *Batch) Merge(f *metadata.Fact) (held bool, err error) {
	if f.Alt == nil {
		return false, b.c.MergeFact(f)
	}
	b.mu.Lock()
	b.held = append(b.held, *f)
	b.mu.Unlock()
	return true, nil
}

// Flush settles and merges the held facts in source order. It returns the
// number merged and an error for each fact rejected.
func (b *Batch) Flush() (int, []error) {
	b.mu.Lock()
	held := b.held
	b.held = nil
	b.mu.Unlock()

	slices.SortStableFunc(held, func(x, y metadata.Fact) int {
		xf, xl := source(&x)
		yf, yl := source(&y)
		return cmp.Or(cmp.Compare(xf, yf), cmp.Compare(xl, yl))
	})
	merged := 0
	var errs []error
	for i := range held {
		f := &held[i]
		if err := b.c.MergeFact(f); err != nil {
			file, _ := source(f)
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
			continue
		}
		merged++
	}
	return merged, errs
}

func source(f *metadata.Fact) (string, int) {
	if f.Location == nil {
		return "", 0
	}
	return f.Location.File, f.Location.Line
}

// Find returns the entity stored under id if it has the given kind.
// It implements metadata.Lookup.
func (c *Corpus) Find(id metadata.SymbolID, kind metadata.InfoKind) (metadata.Entity, error) {
	e, ok := c.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", metadata.ErrNotFound, kind, id)
	}
	if e.TypeID() != kind {
		return nil, fmt.Errorf("%w: %s is a %s, not a %s", metadata.ErrNotFound, id, e.TypeID(), kind)
	}
	return e, nil
}

// Lookup returns the entity stored under id, whatever its kind.
func (c *Corpus) Lookup(id metadata.SymbolID) (metadata.Entity, bool) {
	s := c.shardFor(id)
	s.mu.RLock()
	e, ok := s.entities[id]
	s.mu.RUnlock()
	return e, ok
}

// Global returns the current global namespace.
func (c *Corpus) Global() *metadata.NamespaceInfo {
	e, _ := c.Lookup(metadata.GlobalNamespaceID)
	return e.(*metadata.NamespaceInfo)
}

// Len returns the number of entities, including the global namespace.
func (c *Corpus) Len() int {
	return int(c.size.Load())
}

// Generation increases with every successful merge. Views derived from the
// corpus are current while the generation they were built at is unchanged.
func (c *Corpus) Generation() uint64 {
	return c.generation.Load()
}

// IDs returns every identity in ascending order.
func (c *Corpus) IDs() []metadata.SymbolID {
	ids := make([]metadata.SymbolID, 0, c.Len())
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for id := range s.entities {
			ids = append(ids, id)
		}
		s.mu.RUnlock()
	}
	slices.SortFunc(ids, metadata.SymbolID.Compare)
	return ids
}

// All returns the entities of one kind ordered by identity. KindDefault
// selects every kind.
func (c *Corpus) All(kind metadata.InfoKind) []metadata.Entity {
	var out []metadata.Entity
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for _, e := range s.entities {
			if kind == metadata.KindDefault || e.TypeID() == kind {
				out = append(out, e)
			}
		}
		s.mu.RUnlock()
	}
	slices.SortFunc(out, func(a, b metadata.Entity) int {
		return a.Base().ID.Compare(b.Base().ID)
	})
	return out
}

// AllOf returns the entities of type T ordered by identity.
func AllOf[T metadata.Entity](c *Corpus) []T {
	entities := c.All(metadata.KindOf[T]())
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.(T))
	}
	return out
}

// FindByName returns the entities named name, ordered by identity.
func (c *Corpus) FindByName(name string, kind metadata.InfoKind) []metadata.Entity {
	var out []metadata.Entity
	for _, e := range c.All(kind) {
		if e.Base().Name == name {
			out = append(out, e)
		}
	}
	return out
}

// FindQualified matches the last component of name and, when name is
// qualified, the full qualified name. A leading "::" is ignored.
func (c *Corpus) FindQualified(name string, kind metadata.InfoKind) []metadata.Entity {
	name = strings.TrimPrefix(name, "::")
	last := name
	if i := strings.LastIndex(name, "::"); i >= 0 {
		last = name[i+2:]
	}
	candidates := c.FindByName(last, kind)
	if last == name {
		return candidates
	}
	var out []metadata.Entity
	for _, e := range candidates {
		if c.QualifiedName(e) == name {
			out = append(out, e)
		}
	}
	return out
}

// QualifiedName joins the names of the enclosing scopes of e with "::".
// Scopes not in the corpus and unnamed scopes are skipped.
func (c *Corpus) QualifiedName(e metadata.Entity) string {
	info := e.Base()
	name := info.Name
	for _, id := range info.Namespace {
		scope, ok := c.Lookup(id)
		if !ok || scope.Base().Name == "" {
			continue
		}
		name = scope.Base().Name + "::" + name
	}
	return name
}
