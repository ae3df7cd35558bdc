package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/cxxcorpus/internal/config"
	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/internal/discovery"
	"github.com/dshills/cxxcorpus/internal/hierarchy"
	"github.com/dshills/cxxcorpus/internal/overloads"
	"github.com/dshills/cxxcorpus/internal/searcher"
	"github.com/dshills/cxxcorpus/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "cxxcorpus"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	indexer  *discovery.Indexer
	searcher *searcher.Searcher
	config   *config.Config

	mu    sync.Mutex
	views map[int64]*projectView
}

// projectView holds the derived views of one project's corpus
type projectView struct {
	corpus    *corpus.Corpus
	overloads *overloads.Index

	mu        sync.Mutex
	hierarchy *hierarchy.Hierarchy
}

// inheritance returns the hierarchy of the corpus, rebuilt when the corpus
// changed since the last build
func (v *projectView) inheritance() (*hierarchy.Hierarchy, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hierarchy != nil && v.hierarchy.Generation() == v.corpus.Generation() {
		return v.hierarchy, nil
	}
	h, err := hierarchy.Build(v.corpus)
	if err != nil {
		return nil, err
	}
	v.hierarchy = h
	return h, nil
}

// NewServer creates a new MCP server instance backed by the database in cfg
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	store, err := cfg.OpenStorage()
	if err != nil {
		return nil, err
	}

	s, err := NewServerWithStorage(store, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

// NewServerWithStorage creates a server over an open storage. The server
// takes ownership of store and closes it when Serve returns.
func NewServerWithStorage(store storage.Storage, cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	srch, err := searcher.NewSearcher(store, cfg.Cache.SearchEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize searcher: %w", err)
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		storage:  store,
		indexer:  discovery.New(store),
		searcher: srch,
		config:   cfg,
		views:    make(map[int64]*projectView),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()

	errChan := make(chan error, 1)
	go func() { errChan <- server.ServeStdio(s.mcp) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return err
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(indexSourcesTool(), s.handleIndexSources)
	s.mcp.AddTool(getSymbolTool(), s.handleGetSymbol)
	s.mcp.AddTool(listOverloadsTool(), s.handleListOverloads)
	s.mcp.AddTool(searchSymbolsTool(), s.handleSearchSymbols)
	s.mcp.AddTool(getHierarchyTool(), s.handleGetHierarchy)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	return nil
}

// view returns the indexed project at path with its derived views
func (s *Server) view(ctx context.Context, path string) (*storage.Project, *projectView, error) {
	project, c, err := s.indexer.CorpusAt(ctx, path)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && project.LastIndexedAt.IsZero()) {
		return nil, nil, newMCPError(ErrorCodeNotIndexed, "project not indexed", map[string]interface{}{
			"path": path,
			"hint": "use the index_sources tool first",
		})
	}
	if err != nil {
		return nil, nil, newMCPError(ErrorCodeInternalError, "failed to load corpus", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.views[project.ID]
	if v == nil || v.corpus != c {
		ov, err := overloads.New(c, s.config.Cache.OverloadEntries)
		if err != nil {
			return nil, nil, newMCPError(ErrorCodeInternalError, "failed to build overload index", map[string]interface{}{
				"error": err.Error(),
			})
		}
		v = &projectView{corpus: c, overloads: ov}
		s.views[project.ID] = v
	}
	return project, v, nil
}

// forget drops the cached views of a reindexed project
func (s *Server) forget(projectID int64) {
	s.mu.Lock()
	delete(s.views, projectID)
	s.mu.Unlock()
	s.searcher.InvalidateCache()
}
