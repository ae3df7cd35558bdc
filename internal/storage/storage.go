package storage

import (
	"context"
	"time"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// Storage defines the interface for persisting and querying a symbol corpus
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Symbol operations
	SaveEntity(ctx context.Context, projectID int64, e metadata.Entity, qualifiedName string) error
	LoadEntity(ctx context.Context, projectID int64, id metadata.SymbolID) (metadata.Entity, error)
	DeleteSymbols(ctx context.Context, projectID int64) error
	ListSymbols(ctx context.Context, filter SymbolFilter) ([]*Symbol, error)
	SearchSymbols(ctx context.Context, query string, filter SymbolFilter) ([]SearchResult, error)
	LoadCorpus(ctx context.Context, projectID int64) (*corpus.Corpus, error)

	// Index runs
	RecordRun(ctx context.Context, run *IndexRun) error
	LastRun(ctx context.Context, projectID int64) (*IndexRun, error)

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents an indexed source tree
type Project struct {
	ID            int64
	RootPath      string
	Name          string
	TotalFiles    int
	TotalSymbols  int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// File represents a tracked C++ source or header file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	FactCount     int
	ParseError    *string // Nullable
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Symbol is the row summary of a persisted entity. The full entity is
// returned by LoadEntity.
type Symbol struct {
	RowID         int64
	ProjectID     int64
	ID            metadata.SymbolID
	Kind          metadata.InfoKind
	Name          string
	QualifiedName string
	Access        metadata.Access
	Flags         uint32
	Parent        metadata.SymbolID
	DocComment    string
	File          string
	Line          int
	UpdatedAt     time.Time
}

// SymbolFilter narrows symbol listings and searches. Zero fields do not
// filter.
type SymbolFilter struct {
	ProjectID  int64
	Kinds      []metadata.InfoKind
	Name       string
	NamePrefix string
	Parent     *metadata.SymbolID
	Limit      int
	Offset     int
}

// SearchResult is a symbol matched by full-text search
type SearchResult struct {
	Symbol *Symbol
	// BM25 rank; lower is better
	Score float64
}

// IndexRun records one indexing pass over a project
type IndexRun struct {
	ID         string // UUID
	ProjectID  int64
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Facts      int
	Entities   int
	Failures   int
	Status     string
}

// Index run statuses
const (
	RunCompleted = "completed"
	RunUpToDate  = "up_to_date"
	RunFailed    = "failed"
)

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project       *Project
	FilesCount    int
	SymbolsCount  int
	KindCounts    map[metadata.InfoKind]int
	FailedFiles   int
	IndexSizeMB   float64
	LastIndexedAt time.Time
	LastRun       *IndexRun
	Health        HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}
