package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/internal/discovery"
	"github.com/dshills/cxxcorpus/internal/hierarchy"
	"github.com/dshills/cxxcorpus/internal/searcher"
	"github.com/dshills/cxxcorpus/internal/storage"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeSymbolNotFound     = -32001 // No symbol matches the selector
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeInconsistent       = -32005 // Corpus violates an invariant (unresolved overload, inheritance cycle)
)

// handleIndexSources handles the index_sources tool invocation
func (s *Server) handleIndexSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, path, err := pathArgs(request)
	if err != nil {
		return nil, err
	}

	config := s.config.Discovery()
	config.Force = getBoolDefault(args, "force", false)

	stats, err := s.indexer.IndexProject(ctx, path, config)
	if errors.Is(err, discovery.ErrIndexingInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
			"path": path,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.forget(stats.ProjectID)

	response := map[string]interface{}{
		"indexed":        true,
		"up_to_date":     stats.UpToDate,
		"run_id":         stats.RunID,
		"files_indexed":  stats.FilesIndexed,
		"files_skipped":  stats.FilesSkipped,
		"files_failed":   stats.FilesFailed,
		"syntax_errors":  stats.SyntaxErrors,
		"facts_merged":   stats.FactsMerged,
		"facts_rejected": stats.FactsRejected,
		"entities":       stats.Entities,
		"duration_ms":    stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetSymbol handles the get_symbol tool invocation
func (s *Server) handleGetSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, path, err := pathArgs(request)
	if err != nil {
		return nil, err
	}
	kind, err := kindArg(args, "kind")
	if err != nil {
		return nil, err
	}
	_, v, err := s.view(ctx, path)
	if err != nil {
		return nil, err
	}

	entities, err := selectSymbols(v.corpus, args, kind)
	if err != nil {
		return nil, err
	}

	symbols := make([]map[string]interface{}, len(entities))
	for i, e := range entities {
		symbols[i] = describe(v.corpus, e)
		symbols[i]["entity"] = e
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count":   len(symbols),
		"symbols": symbols,
	})), nil
}

// handleListOverloads handles the list_overloads tool invocation
func (s *Server) handleListOverloads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, path, err := pathArgs(request)
	if err != nil {
		return nil, err
	}
	_, v, err := s.view(ctx, path)
	if err != nil {
		return nil, err
	}

	nsID := metadata.GlobalNamespaceID
	if ref := getStringDefault(args, "namespace", ""); ref != "" && ref != "::" {
		ns, err := resolveOne(v.corpus, ref, metadata.KindNamespace)
		if err != nil {
			return nil, err
		}
		nsID = ns.Base().ID
	}

	ov, err := v.overloads.Namespace(nsID)
	if err != nil {
		return nil, corpusError(err)
	}

	sets := ov.List
	if name := getStringDefault(args, "name", ""); name != "" {
		set, ok := ov.Find(name)
		if !ok {
			return nil, newMCPError(ErrorCodeSymbolNotFound, "no overload set with that name", map[string]interface{}{
				"name": name,
			})
		}
		sets = []metadata.OverloadInfo{set}
	}

	out := make([]map[string]interface{}, len(sets))
	for i, set := range sets {
		fns := make([]map[string]interface{}, len(set.Functions))
		for j, fn := range set.Functions {
			fns[j] = describe(v.corpus, fn)
		}
		out[i] = map[string]interface{}{
			"name":      set.Name,
			"functions": fns,
		}
	}

	ns, _ := v.corpus.Lookup(nsID)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"namespace":     v.corpus.QualifiedName(ns),
		"namespace_id":  nsID.String(),
		"count":         len(out),
		"overload_sets": out,
	})), nil
}

// handleSearchSymbols handles the search_symbols tool invocation
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, path, err := pathArgs(request)
	if err != nil {
		return nil, err
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	mode := searcher.SearchMode(getStringDefault(args, "search_mode", string(searcher.SearchModeHybrid)))
	switch mode {
	case searcher.SearchModeHybrid, searcher.SearchModeName, searcher.SearchModeText:
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"value":   mode,
			"allowed": []string{"hybrid", "name", "text"},
		})
	}

	kinds, err := kindsArg(args, "kinds")
	if err != nil {
		return nil, err
	}

	project, _, err := s.view(ctx, path)
	if err != nil {
		return nil, err
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		ProjectID: project.ID,
		Query:     query,
		Kinds:     kinds,
		Limit:     limit,
		Mode:      mode,
		UseCache:  true,
		CacheTTL:  s.config.Cache.SearchTTL,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, r := range resp.Results {
		sym := r.Symbol
		results[i] = map[string]interface{}{
			"rank":           r.Rank,
			"score":          r.RelevanceScore,
			"id":             sym.ID.String(),
			"kind":           sym.Kind.String(),
			"name":           sym.Name,
			"qualified_name": sym.QualifiedName,
			"file":           sym.File,
			"line":           sym.Line,
		}
		if sym.DocComment != "" {
			results[i]["doc"] = sym.DocComment
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":        query,
		"search_mode":  resp.SearchMode,
		"total":        resp.TotalResults,
		"cache_hit":    resp.CacheHit,
		"duration_ms":  resp.Duration.Milliseconds(),
		"results":      results,
		"name_matches": resp.NameResults,
		"text_matches": resp.TextResults,
	})), nil
}

// handleGetHierarchy handles the get_hierarchy tool invocation
func (s *Server) handleGetHierarchy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, path, err := pathArgs(request)
	if err != nil {
		return nil, err
	}
	_, v, err := s.view(ctx, path)
	if err != nil {
		return nil, err
	}

	matches, err := selectSymbols(v.corpus, args, metadata.KindRecord)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		return nil, ambiguous(v.corpus, matches)
	}
	rec := matches[0].(*metadata.RecordInfo)

	h, err := v.inheritance()
	if err != nil {
		return nil, corpusError(err)
	}

	bases, err := h.Bases(rec.ID)
	if err != nil {
		return nil, corpusError(err)
	}
	baseList := make([]map[string]interface{}, len(bases))
	for i, b := range bases {
		baseList[i] = map[string]interface{}{
			"name":       b.Name,
			"access":     b.Access.String(),
			"is_virtual": b.IsVirtual,
			"resolved":   !b.ID.IsZero(),
		}
		if !b.ID.IsZero() {
			baseList[i]["id"] = b.ID.String()
		}
	}

	derived, err := h.Derived(rec.ID)
	if err != nil {
		return nil, corpusError(err)
	}
	ancestors, err := h.Ancestors(rec.ID)
	if err != nil {
		return nil, corpusError(err)
	}
	descendants, err := h.Descendants(rec.ID)
	if err != nil {
		return nil, corpusError(err)
	}

	response := describe(v.corpus, rec)
	response["bases"] = baseList
	response["derived"] = describeRecords(v.corpus, derived)
	response["ancestors"] = describeRecords(v.corpus, ancestors)
	response["descendants"] = describeRecords(v.corpus, descendants)
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, path, err := pathArgs(request)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	project, err := s.storage.GetProject(ctx, root)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed":  false,
			"indexing": s.indexer.InProgress(root),
			"path":     root,
			"message":  "Project not indexed. Use index_sources tool to index this project.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	kinds := make(map[string]int, len(status.KindCounts))
	for k, n := range status.KindCounts {
		kinds[k.String()] = n
	}

	response := map[string]interface{}{
		"indexed":  !project.LastIndexedAt.IsZero(),
		"indexing": s.indexer.InProgress(root),
		"project": map[string]interface{}{
			"path":          project.RootPath,
			"name":          project.Name,
			"index_version": project.IndexVersion,
		},
		"statistics": map[string]interface{}{
			"files_count":   status.FilesCount,
			"failed_files":  status.FailedFiles,
			"symbols_count": status.SymbolsCount,
			"kinds":         kinds,
			"index_size_mb": fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_indexes_built":   status.Health.FTSIndexesBuilt,
		},
	}
	if !project.LastIndexedAt.IsZero() {
		response["project"].(map[string]interface{})["last_indexed_at"] = project.LastIndexedAt.Format(time.RFC3339)
	}
	if run := status.LastRun; run != nil {
		response["last_run"] = map[string]interface{}{
			"id":          run.ID,
			"status":      run.Status,
			"started_at":  run.StartedAt.Format(time.RFC3339),
			"duration_ms": run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
			"files":       run.Files,
			"facts":       run.Facts,
			"entities":    run.Entities,
			"failures":    run.Failures,
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// pathArgs extracts the arguments map and the validated path parameter
func pathArgs(request mcp.CallToolRequest) (map[string]interface{}, string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return args, path, nil
}

func kindArg(args map[string]interface{}, key string) (metadata.InfoKind, error) {
	name := getStringDefault(args, key, "")
	if name == "" {
		return metadata.KindDefault, nil
	}
	kind, err := metadata.ParseInfoKind(name)
	if err != nil || kind == metadata.KindDefault {
		return metadata.KindDefault, newMCPError(ErrorCodeInvalidParams, "invalid kind", map[string]interface{}{
			"param":   key,
			"value":   name,
			"allowed": kindNames,
		})
	}
	return kind, nil
}

func kindsArg(args map[string]interface{}, key string) ([]metadata.InfoKind, error) {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil, nil
	}
	kinds := make([]metadata.InfoKind, 0, len(raw))
	for _, v := range raw {
		name, _ := v.(string)
		kind, err := kindArg(map[string]interface{}{key: name}, key)
		if err != nil || kind == metadata.KindDefault {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid kind", map[string]interface{}{
				"param":   key,
				"value":   v,
				"allowed": kindNames,
			})
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// selectSymbols resolves the id or name parameter. A name can match several
// entities; an identity matches at most one.
func selectSymbols(c *corpus.Corpus, args map[string]interface{}, kind metadata.InfoKind) ([]metadata.Entity, error) {
	if raw := getStringDefault(args, "id", ""); raw != "" {
		id, err := metadata.ParseSymbolID(raw)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid id", map[string]interface{}{
				"param":  "id",
				"reason": err.Error(),
			})
		}
		e, ok := c.Lookup(id)
		if !ok || (kind != metadata.KindDefault && e.TypeID() != kind) {
			return nil, newMCPError(ErrorCodeSymbolNotFound, "symbol not found", map[string]interface{}{
				"id": raw,
			})
		}
		return []metadata.Entity{e}, nil
	}

	name := getStringDefault(args, "name", "")
	if name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id or name parameter is required", map[string]interface{}{
			"param":  "id|name",
			"reason": "missing or empty",
		})
	}
	matches := c.FindQualified(name, kind)
	if len(matches) == 0 {
		return nil, newMCPError(ErrorCodeSymbolNotFound, "symbol not found", map[string]interface{}{
			"name": name,
		})
	}
	return matches, nil
}

// resolveOne resolves an identity or a qualified name to a single entity
func resolveOne(c *corpus.Corpus, ref string, kind metadata.InfoKind) (metadata.Entity, error) {
	if id, err := metadata.ParseSymbolID(ref); err == nil {
		return selectOne(c, map[string]interface{}{"id": id.String()}, kind)
	}
	return selectOne(c, map[string]interface{}{"name": ref}, kind)
}

func selectOne(c *corpus.Corpus, args map[string]interface{}, kind metadata.InfoKind) (metadata.Entity, error) {
	matches, err := selectSymbols(c, args, kind)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		return nil, ambiguous(c, matches)
	}
	return matches[0], nil
}

func ambiguous(c *corpus.Corpus, matches []metadata.Entity) error {
	ids := make([]map[string]interface{}, len(matches))
	for i, e := range matches {
		ids[i] = describe(c, e)
	}
	return newMCPError(ErrorCodeInvalidParams, "name is ambiguous, select by id", map[string]interface{}{
		"candidates": ids,
	})
}

// corpusError maps corpus failures to MCP errors
func corpusError(err error) error {
	switch {
	case errors.Is(err, hierarchy.ErrCycle):
		return newMCPError(ErrorCodeInconsistent, "inheritance cycle", map[string]interface{}{"error": err.Error()})
	case errors.Is(err, metadata.ErrNotFound):
		return newMCPError(ErrorCodeInconsistent, "unresolved symbol", map[string]interface{}{"error": err.Error()})
	}
	return newMCPError(ErrorCodeInternalError, "internal error", map[string]interface{}{"error": err.Error()})
}

// describe returns the summary fields of an entity
func describe(c *corpus.Corpus, e metadata.Entity) map[string]interface{} {
	info := e.Base()
	out := map[string]interface{}{
		"id":             info.ID.String(),
		"kind":           info.Kind.String(),
		"name":           info.Name,
		"qualified_name": c.QualifiedName(e),
	}
	if fn, ok := e.(*metadata.FunctionInfo); ok {
		out["signature"] = fn.Signature()
		if loc := fn.DefLoc; loc != nil {
			out["definition"] = fmt.Sprintf("%s:%d", loc.File, loc.Line)
		}
	}
	return out
}

func describeRecords(c *corpus.Corpus, records []*metadata.RecordInfo) []map[string]interface{} {
	out := make([]map[string]interface{}, len(records))
	for i, r := range records {
		out[i] = describe(c, r)
	}
	return out
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is a readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
