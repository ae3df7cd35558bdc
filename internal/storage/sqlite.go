package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// isUniqueViolation reports a UNIQUE constraint failure. Both drivers use
// SQLite's own message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Project operations

// createProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		INSERT INTO projects (root_path, name, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if project.IndexVersion == "" {
		project.IndexVersion = CurrentSchemaVersion
	}
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.RootPath, project.Name, project.IndexVersion, now, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: project %s", ErrAlreadyExists, project.RootPath)
	}
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, project *Project) error {
	return s.createProjectWithQuerier(ctx, s.querier(), project)
}

const projectColumns = `id, root_path, name, total_files, total_symbols,
		       index_version, last_indexed_at, created_at, updated_at`

func scanProject(row *sql.Row) (*Project, error) {
	var project Project
	var name sql.NullString
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&project.ID, &project.RootPath, &name, &project.TotalFiles,
		&project.TotalSymbols, &project.IndexVersion,
		&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	project.Name = name.String
	if lastIndexedAt.Valid {
		project.LastIndexedAt = lastIndexedAt.Time
	}
	return &project, nil
}

// getProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getProjectWithQuerier(ctx context.Context, q querier, rootPath string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE root_path = ?`
	return scanProject(q.QueryRowContext(ctx, query, rootPath))
}

func (s *SQLiteStorage) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return s.getProjectWithQuerier(ctx, s.querier(), rootPath)
}

// getProjectByID retrieves a project by ID
func (s *SQLiteStorage) getProjectByID(ctx context.Context, q querier, projectID int64) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return scanProject(q.QueryRowContext(ctx, query, projectID))
}

// updateProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		UPDATE projects
		SET name = ?, total_files = ?, total_symbols = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.Name, project.TotalFiles, project.TotalSymbols,
		project.LastIndexedAt, now, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *Project) error {
	return s.updateProjectWithQuerier(ctx, s.querier(), project)
}

// File operations

// upsertFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertFileWithQuerier(ctx context.Context, q querier, file *File) error {
	query := `
		INSERT INTO files (project_id, file_path, content_hash, mod_time, size_bytes, fact_count, parse_error, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			fact_count = excluded.fact_count,
			parse_error = excluded.parse_error,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		file.ProjectID, file.FilePath, file.ContentHash[:],
		file.ModTime, file.SizeBytes, file.FactCount, file.ParseError, now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	file.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return s.upsertFileWithQuerier(ctx, s.querier(), file)
}

const fileColumns = `id, project_id, file_path, content_hash, mod_time, size_bytes,
		       fact_count, parse_error, last_indexed_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*File, error) {
	var file File
	var hash []byte
	var parseError sql.NullString
	err := row.Scan(
		&file.ID, &file.ProjectID, &file.FilePath, &hash, &file.ModTime,
		&file.SizeBytes, &file.FactCount, &parseError,
		&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(file.ContentHash[:], hash)
	if parseError.Valid {
		file.ParseError = &parseError.String
	}
	return &file, nil
}

// getFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileWithQuerier(ctx context.Context, q querier, projectID int64, filePath string) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? AND file_path = ?`
	file, err := scanFile(q.QueryRowContext(ctx, query, projectID, filePath))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return file, err
}

func (s *SQLiteStorage) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return s.getFileWithQuerier(ctx, s.querier(), projectID, filePath)
}

// deleteFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM files WHERE id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID int64) error {
	return s.deleteFileWithQuerier(ctx, s.querier(), fileID)
}

// listFilesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listFilesWithQuerier(ctx context.Context, q querier, projectID int64) ([]*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? ORDER BY file_path`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return s.listFilesWithQuerier(ctx, s.querier(), projectID)
}

// Index runs

func (s *SQLiteStorage) recordRunWithQuerier(ctx context.Context, q querier, run *IndexRun) error {
	query := `
		INSERT INTO index_runs (id, project_id, started_at, finished_at, files, facts, entities, failures, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			files = excluded.files,
			facts = excluded.facts,
			entities = excluded.entities,
			failures = excluded.failures,
			status = excluded.status
	`
	_, err := q.ExecContext(ctx, query,
		run.ID, run.ProjectID, run.StartedAt, run.FinishedAt,
		run.Files, run.Facts, run.Entities, run.Failures, run.Status)
	if err != nil {
		return fmt.Errorf("failed to record index run: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) RecordRun(ctx context.Context, run *IndexRun) error {
	return s.recordRunWithQuerier(ctx, s.querier(), run)
}

func (s *SQLiteStorage) lastRunWithQuerier(ctx context.Context, q querier, projectID int64) (*IndexRun, error) {
	query := `
		SELECT id, project_id, started_at, finished_at, files, facts, entities, failures, status
		FROM index_runs
		WHERE project_id = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`
	var run IndexRun
	var finished sql.NullTime
	err := q.QueryRowContext(ctx, query, projectID).Scan(
		&run.ID, &run.ProjectID, &run.StartedAt, &finished,
		&run.Files, &run.Facts, &run.Entities, &run.Failures, &run.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}

func (s *SQLiteStorage) LastRun(ctx context.Context, projectID int64) (*IndexRun, error) {
	return s.lastRunWithQuerier(ctx, s.querier(), projectID)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, projectID int64) (*ProjectStatus, error) {
	project, err := s.getProjectByID(ctx, q, projectID)
	if err != nil {
		return nil, err
	}

	status := &ProjectStatus{
		Project:       project,
		LastIndexedAt: project.LastIndexedAt,
		KindCounts:    make(map[metadata.InfoKind]int),
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(parse_error) FROM files WHERE project_id = ?
	`, projectID).Scan(&status.FilesCount, &status.FailedFiles)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM symbols WHERE project_id = ? GROUP BY kind
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		kind, err := metadata.ParseInfoKind(name)
		if err != nil {
			return nil, err
		}
		status.KindCounts[kind] = n
		status.SymbolsCount += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	run, err := s.lastRunWithQuerier(ctx, q, projectID)
	switch {
	case err == nil:
		status.LastRun = run
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexesBuilt:    s.ftsBuilt(ctx, q),
	}
	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), projectID)
}

func (s *SQLiteStorage) ftsBuilt(ctx context.Context, q querier) bool {
	var name string
	err := q.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE name = 'symbols_fts'").Scan(&name)
	return err == nil
}

// Transaction implementations. Every operation runs on the transaction's
// connection.

func (t *sqliteTx) CreateProject(ctx context.Context, project *Project) error {
	return t.storage.createProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return t.storage.getProjectWithQuerier(ctx, t.querier(), rootPath)
}

func (t *sqliteTx) UpdateProject(ctx context.Context, project *Project) error {
	return t.storage.updateProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return t.storage.upsertFileWithQuerier(ctx, t.querier(), file)
}

func (t *sqliteTx) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return t.storage.getFileWithQuerier(ctx, t.querier(), projectID, filePath)
}

func (t *sqliteTx) DeleteFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return t.storage.listFilesWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) SaveEntity(ctx context.Context, projectID int64, e metadata.Entity, qualifiedName string) error {
	return t.storage.saveEntityWithQuerier(ctx, t.querier(), projectID, e, qualifiedName)
}

func (t *sqliteTx) LoadEntity(ctx context.Context, projectID int64, id metadata.SymbolID) (metadata.Entity, error) {
	return t.storage.loadEntityWithQuerier(ctx, t.querier(), projectID, id)
}

func (t *sqliteTx) DeleteSymbols(ctx context.Context, projectID int64) error {
	return t.storage.deleteSymbolsWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) ListSymbols(ctx context.Context, filter SymbolFilter) ([]*Symbol, error) {
	return t.storage.listSymbolsWithQuerier(ctx, t.querier(), filter)
}

func (t *sqliteTx) SearchSymbols(ctx context.Context, query string, filter SymbolFilter) ([]SearchResult, error) {
	return t.storage.searchSymbolsWithQuerier(ctx, t.querier(), query, filter)
}

func (t *sqliteTx) LoadCorpus(ctx context.Context, projectID int64) (*corpus.Corpus, error) {
	return t.storage.loadCorpusWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) RecordRun(ctx context.Context, run *IndexRun) error {
	return t.storage.recordRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) LastRun(ctx context.Context, projectID int64) (*IndexRun, error) {
	return t.storage.lastRunWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
