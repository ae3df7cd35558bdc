// Package searcher ranks indexed C++ symbols for a text query.
//
// Three modes are supported:
//
//   - name: prefix match on the unqualified name. Exact spellings rank
//     first, then case-insensitive matches, then longer names. A qualified
//     query such as "geo::Circ" matches on its last component.
//   - text: FTS5 BM25 search over name, qualified name and doc comment.
//   - hybrid (default): both of the above run concurrently and are merged
//     with Reciprocal Rank Fusion, score = Σ 1/(k + rank), k = 60.
//
// Responses can be cached in an LRU keyed by a SHA-256 of the normalized
// request. Entries expire after CacheTTL; InvalidateCache must be called
// after a reindex.
//
//	s, err := searcher.NewSearcher(store, searcher.DefaultCacheSize)
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//		ProjectID: project.ID,
//		Query:     "Circle",
//		UseCache:  true,
//	})
package searcher
