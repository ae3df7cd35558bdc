// Package storage provides SQLite-based persistence for a symbol corpus.
//
// The storage layer manages:
//   - Project metadata
//   - Source files and their content hashes
//   - Symbols, one row per entity of the corpus
//   - Namespace and record members, and record bases
//   - Indexing runs
//   - Full-text search over symbol names and documentation
//
// # Database Schema
//
// Tables:
//   - projects: Source roots that have been indexed
//   - files: File paths, SHA-256 hashes and parse errors
//   - symbols: Entities as a JSON payload plus queryable columns, including
//     the raw specifier word in flags
//   - members: Children of namespaces and records in declaration order
//   - bases: Immediate bases of records in declaration order
//   - index_runs: One row per indexing pass, keyed by UUID
//   - symbols_fts: FTS5 index kept in sync by triggers
//
// Schema versions are semantic versions; ApplyMigrations runs every
// migration newer than the recorded version.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.cxxcorpus/corpus.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	project := &storage.Project{RootPath: "/src/engine"}
//	if err := db.CreateProject(ctx, project); err != nil {
//	    return err
//	}
//
// # Transactions
//
// Use transactions to save a corpus in batches:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	for _, e := range c.All(metadata.KindDefault) {
//	    if err := tx.SaveEntity(ctx, project.ID, e, c.QualifiedName(e)); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// # Flags
//
// SaveEntity refuses entities whose specifier word fails validation, and
// LoadEntity and LoadCorpus fail with metadata.ErrMalformedFlags when a
// stored word decodes outside its enumeration. A corrupted row is never
// returned as a valid entity.
//
// # Queries
//
//	// Every function named "swap"
//	syms, err := db.ListSymbols(ctx, storage.SymbolFilter{
//	    ProjectID: project.ID,
//	    Kinds:     []metadata.InfoKind{metadata.KindFunction},
//	    Name:      "swap",
//	})
//
//	// Ranked full-text search
//	results, err := db.SearchSymbols(ctx, "vector push", storage.SymbolFilter{
//	    ProjectID: project.ID,
//	    Limit:     20,
//	})
//
// # Build Tags
//
// CGO Build (sqlite_vec tag) uses github.com/mattn/go-sqlite3 and needs the
// sqlite_fts5 tag for search:
//
//	CGO_ENABLED=1 go build -tags "sqlite_vec,sqlite_fts5"
//
// Pure Go Build (default, or purego tag) uses modernc.org/sqlite:
//
//	CGO_ENABLED=0 go build -tags "purego"
package storage
