package discovery

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/internal/frontend"
	"github.com/dshills/cxxcorpus/internal/storage"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// ErrIndexingInProgress is returned when the root is already being indexed
var ErrIndexingInProgress = errors.New("indexing already in progress")

// Defaults applied to zero Config fields
const (
	DefaultBatchSize   = 200
	DefaultMaxFileSize = 2 << 20
)

// Indexer coordinates the indexing pipeline: discover -> parse -> merge -> store
type Indexer struct {
	storage storage.Storage
	lock    IndexLock

	// Last built or loaded corpus per project ID
	corpora sync.Map
}

// Config contains configuration for one indexing run
type Config struct {
	Workers          int      // Concurrent parsers (default: runtime.NumCPU())
	BatchSize        int      // Entities per transaction (default: 200)
	Include          []string // Glob patterns selecting files (default: DefaultInclude)
	Exclude          []string // Glob patterns removing files
	RespectGitignore bool     // Skip paths matched by the root .gitignore
	MaxFileSize      int64    // Larger files are skipped (default: 2 MB)
	Verbose          bool     // Log every file
	Force            bool     // Rebuild even when no file changed

	// JSON-lines fact streams merged after the sources are parsed
	FactFiles []string

	Progress Progress
}

// DefaultConfig returns the configuration used when IndexProject gets nil
func DefaultConfig() *Config {
	return &Config{
		Workers:          runtime.NumCPU(),
		BatchSize:        DefaultBatchSize,
		Include:          DefaultInclude,
		RespectGitignore: true,
		MaxFileSize:      DefaultMaxFileSize,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.Workers <= 0 {
		out.Workers = runtime.NumCPU()
	}
	if out.BatchSize <= 0 {
		out.BatchSize = DefaultBatchSize
	}
	if len(out.Include) == 0 {
		out.Include = DefaultInclude
	}
	if out.MaxFileSize == 0 {
		out.MaxFileSize = DefaultMaxFileSize
	}
	if out.Progress == nil {
		out.Progress = nopProgress{}
	}
	return &out
}

// Progress receives per-file updates. Methods are called from worker
// goroutines and must be safe for concurrent use.
type Progress interface {
	Start(totalFiles int)
	FileDone(path string, facts int, err error)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)                   {}
func (nopProgress) FileDone(string, int, error) {}
func (nopProgress) Finish()                     {}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	RunID         string
	ProjectID     int64
	FilesIndexed  int
	FilesSkipped  int // over the size limit, or unchanged
	FilesFailed   int // unreadable
	SyntaxErrors  int // parsed with recovery
	FactsMerged   int
	FactsRejected int
	Entities      int
	UpToDate      bool
	Duration      time.Duration
	ErrorMessages []string
}

// New creates a new Indexer instance
func New(store storage.Storage) *Indexer {
	return &Indexer{storage: store}
}

// sourceState is a discovered file with its content hash
type sourceState struct {
	sourceFile
	hash    [32]byte
	modTime time.Time
}

// fileResult is the outcome of parsing one file
type fileResult struct {
	facts      int
	parseError *string
	err        error
}

// IndexProject rebuilds the corpus of the sources under rootPath and stores
// it. When no file changed since the last run, the stored corpus is loaded
// instead unless Force is set.
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.withDefaults()

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if !idx.lock.TryAcquire(root) {
		return nil, fmt.Errorf("%s: %w", root, ErrIndexingInProgress)
	}
	defer idx.lock.Release(root)

	startTime := time.Now()
	stats := &Statistics{RunID: uuid.NewString(), ErrorMessages: make([]string, 0)}

	project, err := idx.getOrCreateProject(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}
	stats.ProjectID = project.ID

	files, tooLarge, err := discoverFiles(root, config)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	stats.FilesSkipped = len(tooLarge)
	for _, rel := range tooLarge {
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: larger than %d bytes, skipped", rel, config.MaxFileSize))
	}

	sources, err := hashFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	if !config.Force && len(config.FactFiles) == 0 {
		unchanged, err := idx.unchanged(ctx, project, sources)
		if err != nil {
			return nil, err
		}
		if unchanged {
			return idx.reuse(ctx, project, sources, stats, startTime)
		}
	}

	c := corpus.New()
	results, err := idx.parseFiles(ctx, c, sources, config, stats)
	if err != nil {
		idx.recordFailure(ctx, project, stats, startTime)
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	for _, path := range config.FactFiles {
		n, err := ingestFile(ctx, c, path)
		stats.FactsMerged += n
		if err != nil {
			idx.recordFailure(ctx, project, stats, startTime)
			return nil, fmt.Errorf("failed to ingest %s: %w", path, err)
		}
	}

	stats.Entities, err = idx.persist(ctx, project, c, sources, results, config.BatchSize)
	if err != nil {
		idx.recordFailure(ctx, project, stats, startTime)
		return nil, fmt.Errorf("failed to store corpus: %w", err)
	}

	project.TotalFiles = len(sources)
	project.TotalSymbols = stats.Entities
	project.LastIndexedAt = time.Now()
	if err := idx.storage.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	stats.Duration = time.Since(startTime)
	if err := idx.recordRun(ctx, project, stats, startTime, storage.RunCompleted); err != nil {
		return nil, err
	}
	idx.corpora.Store(project.ID, c)

	log.Printf("index: %s: %d files, %d facts, %d entities, %d failures in %v",
		root, stats.FilesIndexed, stats.FactsMerged, stats.Entities, stats.FilesFailed+stats.FactsRejected, stats.Duration)
	return stats, nil
}

// Corpus returns the corpus of a project, loading it from storage when this
// indexer has not built it
func (idx *Indexer) Corpus(ctx context.Context, projectID int64) (*corpus.Corpus, error) {
	if c, ok := idx.corpora.Load(projectID); ok {
		return c.(*corpus.Corpus), nil
	}
	c, err := idx.storage.LoadCorpus(ctx, projectID)
	if err != nil {
		return nil, err
	}
	actual, _ := idx.corpora.LoadOrStore(projectID, c)
	return actual.(*corpus.Corpus), nil
}

// CorpusAt returns the project indexed at rootPath and its corpus.
// storage.ErrNotFound means the root was never indexed.
func (idx *Indexer) CorpusAt(ctx context.Context, rootPath string) (*storage.Project, *corpus.Corpus, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, nil, err
	}
	project, err := idx.storage.GetProject(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	c, err := idx.Corpus(ctx, project.ID)
	if err != nil {
		return nil, nil, err
	}
	return project, c, nil
}

// InProgress reports whether rootPath is being indexed
func (idx *Indexer) InProgress(rootPath string) bool {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return false
	}
	return idx.lock.Held(root)
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, root string) (*storage.Project, error) {
	project, err := idx.storage.GetProject(ctx, root)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     root,
		Name:         filepath.Base(root),
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if err := idx.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// hashFiles computes the content hash of every file
func hashFiles(ctx context.Context, files []sourceFile) ([]sourceState, error) {
	out := make([]sourceState, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash, modTime, err := computeFileHash(f.abs)
		if err != nil {
			// Reported again when the parse phase reads it
			out[i] = sourceState{sourceFile: f}
			continue
		}
		out[i] = sourceState{sourceFile: f, hash: hash, modTime: modTime}
	}
	return out, nil
}

// unchanged reports whether the stored file set matches the sources exactly
func (idx *Indexer) unchanged(ctx context.Context, project *storage.Project, sources []sourceState) (bool, error) {
	if project.LastIndexedAt.IsZero() {
		return false, nil
	}
	stored, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return false, err
	}
	if len(stored) != len(sources) {
		return false, nil
	}
	hashes := make(map[string][32]byte, len(stored))
	for _, f := range stored {
		hashes[f.FilePath] = f.ContentHash
	}
	for _, s := range sources {
		if h, ok := hashes[s.rel]; !ok || h != s.hash {
			return false, nil
		}
	}
	return true, nil
}

// reuse loads the stored corpus for an unchanged project
func (idx *Indexer) reuse(ctx context.Context, project *storage.Project, sources []sourceState, stats *Statistics, startTime time.Time) (*Statistics, error) {
	c, err := idx.storage.LoadCorpus(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	idx.corpora.Store(project.ID, c)

	stats.UpToDate = true
	stats.FilesSkipped += len(sources)
	stats.Entities = c.Len()
	stats.Duration = time.Since(startTime)
	if err := idx.recordRun(ctx, project, stats, startTime, storage.RunUpToDate); err != nil {
		return nil, err
	}
	return stats, nil
}

// parseFiles parses every source concurrently and merges the facts into c.
// Each worker owns one parser.
func (idx *Indexer) parseFiles(ctx context.Context, c *corpus.Corpus, sources []sourceState, config *Config, stats *Statistics) ([]fileResult, error) {
	parsers := make(chan *frontend.Parser, config.Workers)
	for i := 0; i < config.Workers; i++ {
		parsers <- frontend.New()
	}
	defer func() {
		close(parsers)
		for p := range parsers {
			p.Close()
		}
	}()

	results := make([]fileResult, len(sources))
	var (
		merged   atomic.Int64
		rejected atomic.Int64
		mu       sync.Mutex // Protect stats.ErrorMessages
	)
	addError := func(msg string) {
		mu.Lock()
		stats.ErrorMessages = append(stats.ErrorMessages, msg)
		mu.Unlock()
	}

	config.Progress.Start(len(sources))
	defer config.Progress.Finish()

	batch := c.NewBatch()
	g, gctx := errgroup.WithContext(ctx)
dispatch:
	for i, src := range sources {
		var p *frontend.Parser
		select {
		case <-gctx.Done():
			break dispatch
		case p = <-parsers:
		}

		g.Go(func() error {
			defer func() { parsers <- p }()

			res, err := parseSource(gctx, p, src)
			if err != nil {
				results[i] = fileResult{err: err}
				addError(fmt.Sprintf("%s: %v", src.rel, err))
				config.Progress.FileDone(src.rel, 0, err)
				if config.Verbose {
					log.Printf("index: %s: %v", src.rel, err)
				}
				return nil
			}

			var fr fileResult
			for j := range res.Facts {
				held, err := batch.Merge(&res.Facts[j])
				if err != nil {
					rejected.Add(1)
					addError(fmt.Sprintf("%s: %v", src.rel, err))
					continue
				}
				if !held {
					merged.Add(1)
				}
				fr.facts++
			}
			if len(res.Errors) > 0 {
				msg := res.Errors[0].Error()
				fr.parseError = &msg
				addError(msg)
			}
			results[i] = fr

			config.Progress.FileDone(src.rel, fr.facts, nil)
			if config.Verbose {
				log.Printf("index: %s: %d facts", src.rel, fr.facts)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Out-of-line definitions naming scopes their own file never declared
	settled, errs := batch.Flush()
	merged.Add(int64(settled))
	for _, err := range errs {
		rejected.Add(1)
		addError(err.Error())
	}

	for _, r := range results {
		switch {
		case r.err != nil:
			stats.FilesFailed++
		case r.parseError != nil:
			stats.SyntaxErrors++
			stats.FilesIndexed++
		default:
			stats.FilesIndexed++
		}
	}
	stats.FactsMerged = int(merged.Load())
	stats.FactsRejected = int(rejected.Load())
	return results, nil
}

// parseSource parses one file under its root-relative path, the name
// stored in every location
func parseSource(ctx context.Context, p *frontend.Parser, src sourceState) (*metadata.ParseResult, error) {
	content, err := os.ReadFile(src.abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseSource(ctx, src.rel, content)
}

// persist replaces the stored corpus of the project. Symbols and file rows
// are cleared in the first transaction and the file rows are written in the
// last, so an interrupted run is never mistaken for an up-to-date one.
func (idx *Indexer) persist(ctx context.Context, project *storage.Project, c *corpus.Corpus,
	sources []sourceState, results []fileResult, batchSize int) (int, error) {

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeleteSymbols(ctx, project.ID); err != nil {
		return 0, err
	}
	stored, err := tx.ListFiles(ctx, project.ID)
	if err != nil {
		return 0, err
	}
	for _, f := range stored {
		if err := tx.DeleteFile(ctx, f.ID); err != nil {
			return 0, err
		}
	}

	entities := c.All(metadata.KindDefault)
	for i, e := range entities {
		if err := tx.SaveEntity(ctx, project.ID, e, c.QualifiedName(e)); err != nil {
			return 0, fmt.Errorf("failed to store %s %q: %w", e.TypeID(), e.Base().Name, err)
		}
		if (i+1)%batchSize == 0 {
			if err := tx.Commit(); err != nil {
				return 0, fmt.Errorf("failed to commit transaction: %w", err)
			}
			if tx, err = idx.storage.BeginTx(ctx); err != nil {
				return 0, fmt.Errorf("failed to begin transaction: %w", err)
			}
		}
	}

	now := time.Now()
	for i, src := range sources {
		if results[i].err != nil {
			continue
		}
		file := &storage.File{
			ProjectID:     project.ID,
			FilePath:      src.rel,
			ContentHash:   src.hash,
			ModTime:       src.modTime,
			SizeBytes:     src.size,
			FactCount:     results[i].facts,
			ParseError:    results[i].parseError,
			LastIndexedAt: now,
		}
		if err := tx.UpsertFile(ctx, file); err != nil {
			return 0, fmt.Errorf("failed to store file %s: %w", src.rel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(entities), nil
}

func (idx *Indexer) recordRun(ctx context.Context, project *storage.Project, stats *Statistics, startTime time.Time, status string) error {
	run := &storage.IndexRun{
		ID:         stats.RunID,
		ProjectID:  project.ID,
		StartedAt:  startTime,
		FinishedAt: time.Now(),
		Files:      stats.FilesIndexed,
		Facts:      stats.FactsMerged,
		Entities:   stats.Entities,
		Failures:   stats.FilesFailed + stats.FactsRejected,
		Status:     status,
	}
	if err := idx.storage.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record index run: %w", err)
	}
	return nil
}

// recordFailure records a failed run. The run's own error is what the caller
// reports, so a storage error here is only logged.
func (idx *Indexer) recordFailure(ctx context.Context, project *storage.Project, stats *Statistics, startTime time.Time) {
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := idx.recordRun(ctx, project, stats, startTime, storage.RunFailed); err != nil {
		log.Printf("index: %v", err)
	}
}

// computeFileHash computes SHA-256 hash of a file
func computeFileHash(filePath string) ([32]byte, time.Time, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return [32]byte{}, time.Time{}, err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return [32]byte{}, time.Time{}, err
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return [32]byte{}, time.Time{}, err
	}

	var result [32]byte
	copy(result[:], hash.Sum(nil))
	return result, info.ModTime(), nil
}
