// Package corpus provides the canonical in-memory store of C++ declarations.
//
// A Corpus holds exactly one entity per SymbolID. Observations of the same
// declaration from different translation units are merged into it:
//
//	c := corpus.New()
//	if _, err := c.Merge(rec); err != nil {
//	    return err
//	}
//	fn, err := metadata.Get[*metadata.FunctionInfo](c, id)
//
// # Merge Policy
//
// A merge only adds information. Fields still at their default are filled
// from the new observation; fields already set are kept. Member lists and
// friends are unioned by ID in first-observed order, base lists come from
// the first observation that has any, and the definition location is set
// once. Single-bit specifiers are OR-ed; ranged specifiers are copied while
// unset. Observing an identity with a second kind fails with
// metadata.ErrKindMismatch.
//
// # Concurrency
//
// Entities are spread over fixed shards selected by the identity bytes, each
// guarded by its own RWMutex, so merges of unrelated identities do not
// contend. Stored entities are immutable: a merge clones the current entity,
// merges into the clone and swaps it in. Pointers returned by Find and Merge
// remain valid snapshots and must not be modified by callers.
package corpus
