package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/cxxcorpus/internal/storage"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// SearchMode defines how search is performed
type SearchMode string

const (
	SearchModeHybrid SearchMode = "hybrid" // Name + full-text with RRF
	SearchModeName   SearchMode = "name"   // Name prefix match only
	SearchModeText   SearchMode = "text"   // BM25 text search only
)

// Defaults for requests and the result cache
const (
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 5 * time.Minute
	DefaultRRF       = 60
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	ProjectID   int64
	Query       string
	Kinds       []metadata.InfoKind
	Limit       int
	Mode        SearchMode
	UseCache    bool
	CacheTTL    time.Duration
	RRFConstant float64 // k value for Reciprocal Rank Fusion (default 60)
}

// Result is one ranked symbol
type Result struct {
	Rank           int
	RelevanceScore float64
	Symbol         storage.Symbol
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results      []Result
	TotalResults int
	SearchMode   SearchMode
	Duration     time.Duration
	CacheHit     bool
	NameResults  int
	TextResults  int
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher runs symbol searches against storage and caches responses
type Searcher struct {
	storage storage.Storage
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewSearcher creates a Searcher whose cache holds up to cacheSize responses
func NewSearcher(store storage.Storage, cacheSize int) (*Searcher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Searcher{storage: store, cache: cache}, nil
}

// Search performs a search based on the request parameters
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	if err := validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	var response *SearchResponse
	var err error
	switch req.Mode {
	case SearchModeHybrid:
		response, err = s.hybridSearch(ctx, req)
	case SearchModeName:
		response, err = s.nameSearch(ctx, req)
	case SearchModeText:
		response, err = s.textSearch(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode)
	}
	if err != nil {
		return nil, err
	}

	response.Duration = time.Since(startTime)
	response.SearchMode = req.Mode

	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}
	return response, nil
}

func (s *Searcher) filter(req SearchRequest, limit int) storage.SymbolFilter {
	return storage.SymbolFilter{ProjectID: req.ProjectID, Kinds: req.Kinds, Limit: limit}
}

// byName lists symbols whose name starts with the query, closest names
// first: exact matches, then case-insensitive matches, then longer names.
func (s *Searcher) byName(ctx context.Context, req SearchRequest, limit int) ([]*storage.Symbol, error) {
	name := strings.TrimSpace(req.Query)
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if name == "" {
		return nil, nil
	}
	f := s.filter(req, 0)
	f.NamePrefix = name
	syms, err := s.storage.ListSymbols(ctx, f)
	if err != nil {
		return nil, err
	}
	rank := func(sym *storage.Symbol) int {
		switch {
		case sym.Name == name:
			return 0
		case metadata.EqualFoldASCII(sym.Name, name):
			return 1
		}
		return 2
	}
	slices.SortStableFunc(syms, func(a, b *storage.Symbol) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		if c := len(a.Name) - len(b.Name); c != 0 {
			return c
		}
		return metadata.CompareSymbolNames(a.QualifiedName, b.QualifiedName)
	})
	if len(syms) > limit {
		syms = syms[:limit]
	}
	return syms, nil
}

func (s *Searcher) nameSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	syms, err := s.byName(ctx, req, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("name search failed: %w", err)
	}
	results := make([]Result, len(syms))
	for i, sym := range syms {
		results[i] = Result{Rank: i + 1, RelevanceScore: 1.0 / float64(i+1), Symbol: *sym}
	}
	return &SearchResponse{Results: results, TotalResults: len(results), NameResults: len(results)}, nil
}

func (s *Searcher) textSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	found, err := s.storage.SearchSymbols(ctx, req.Query, s.filter(req, req.Limit))
	if err != nil {
		return nil, fmt.Errorf("text search failed: %w", err)
	}
	results := make([]Result, len(found))
	for i, r := range found {
		// bm25 is negative, better matches lower
		results[i] = Result{Rank: i + 1, RelevanceScore: -r.Score, Symbol: *r.Symbol}
	}
	return &SearchResponse{Results: results, TotalResults: len(results), TextResults: len(results)}, nil
}

// searchResult holds results from concurrent search operations
type searchResult struct {
	names []*storage.Symbol
	text  []storage.SearchResult
	err   error
}

// hybridSearch combines name and BM25 search using Reciprocal Rank Fusion
func (s *Searcher) hybridSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	nameChan := make(chan searchResult, 1)
	textChan := make(chan searchResult, 1)

	go func() {
		var res searchResult
		res.names, res.err = s.byName(ctx, req, req.Limit*2)
		nameChan <- res
	}()
	go func() {
		var res searchResult
		res.text, res.err = s.storage.SearchSymbols(ctx, req.Query, s.filter(req, req.Limit*2))
		textChan <- res
	}()

	var nameRes, textRes searchResult
	var nameDone, textDone bool
	for !nameDone || !textDone {
		select {
		case nameRes = <-nameChan:
			nameDone = true
		case textRes = <-textChan:
			textDone = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Either half may fail alone
	if nameRes.err != nil && textRes.err != nil {
		return nil, fmt.Errorf("both searches failed: name=%w, text=%v", nameRes.err, textRes.err)
	}

	ranked := applyRRF(nameRes.names, textRes.text, req.RRFConstant)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	return &SearchResponse{
		Results:      ranked,
		TotalResults: len(ranked),
		NameResults:  len(nameRes.names),
		TextResults:  len(textRes.text),
	}, nil
}

// applyRRF merges rankings: score = sum over lists of 1 / (k + rank)
func applyRRF(names []*storage.Symbol, text []storage.SearchResult, k float64) []Result {
	scores := make(map[int64]float64)
	symbols := make(map[int64]*storage.Symbol)

	for rank, sym := range names {
		scores[sym.RowID] += 1.0 / (k + float64(rank+1))
		symbols[sym.RowID] = sym
	}
	for rank, r := range text {
		scores[r.Symbol.RowID] += 1.0 / (k + float64(rank+1))
		symbols[r.Symbol.RowID] = r.Symbol
	}

	results := make([]Result, 0, len(scores))
	for row, score := range scores {
		results = append(results, Result{RelevanceScore: score, Symbol: *symbols[row]})
	}
	sortResults(results)
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// sortResults orders by score descending, ties by row for determinism
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].Symbol.RowID < results[j].Symbol.RowID
	})
}

// validateRequest ensures search request is valid
func validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if req.Mode == "" {
		req.Mode = SearchModeHybrid
	}
	if req.RRFConstant == 0 {
		req.RRFConstant = DefaultRRF
	}
	if req.CacheTTL == 0 {
		req.CacheTTL = DefaultCacheTTL
	}
	return nil
}

// checkCache returns a copy of a live cached response, or nil
func (s *Searcher) checkCache(req SearchRequest) *SearchResponse {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}
	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}
	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()
	return response
}

// storeInCache saves a copy of the response
func (s *Searcher) storeInCache(req SearchRequest, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}
	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// copySearchResponse creates a deep copy of a SearchResponse. Symbols hold
// only values, so copying the result slice is enough.
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Results = slices.Clone(src.Results)
	return &dst
}

// computeQueryHash computes a unique hash for a search request
func computeQueryHash(req SearchRequest) [32]byte {
	var data strings.Builder
	fmt.Fprintf(&data, "%d|%s|%s|%d|", req.ProjectID, req.Mode, strings.TrimSpace(req.Query), req.Limit)
	kinds := make([]string, len(req.Kinds))
	for i, k := range req.Kinds {
		kinds[i] = k.String()
	}
	sort.Strings(kinds)
	data.WriteString(strings.Join(kinds, ","))
	return sha256.Sum256([]byte(data.String()))
}

// InvalidateCache drops every cached response. Called after reindexing.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// CacheLen reports the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}
