// Package discovery builds the corpus of a C++ source tree and stores it.
//
// # Basic Usage
//
//	idx := discovery.New(store)
//	stats, err := idx.IndexProject(ctx, "/src/engine", discovery.DefaultConfig())
//	c, err := idx.Corpus(ctx, stats.ProjectID)
//
// # Pipeline
//
//  1. Discovery: walk the root, skip hidden and build directories, apply the
//     root .gitignore and the include/exclude glob patterns.
//  2. Change detection: hash every file with SHA-256. When the stored file
//     set matches exactly, the stored corpus is loaded and nothing is parsed.
//  3. Parse and merge: files are parsed concurrently, one tree-sitter parser
//     per worker, and every fact is merged into a fresh corpus. A
//     declaration seen in several files becomes one entity.
//  4. Store: the corpus replaces the project's stored symbols in batches of
//     BatchSize entities per transaction, then the file rows are written.
//  5. Record: an index run with a UUID is stored with the counters.
//
// A rebuild is always complete: merge semantics never erase a field, so a
// symbol removed from a file can only disappear by rebuilding from scratch.
//
// # Errors
//
// Unreadable files and rejected facts are counted in Statistics and do not
// stop the run. Syntax errors keep the facts recovered around them; the first
// diagnostic is stored on the file row. Storage failures abort the run and
// record it as failed.
//
// # External facts
//
// IngestFacts merges a JSON-lines stream of metadata.Fact records, the
// format other front ends emit. Config.FactFiles merges such streams into a
// run after parsing.
//
// # Concurrency
//
// IndexLock allows one run per root at a time; a second call gets
// ErrIndexingInProgress. Progress callbacks arrive from worker goroutines.
package discovery
