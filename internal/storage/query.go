package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

var symbolColumns = []string{
	"s.id", "s.project_id", "s.symbol_id", "s.kind", "s.name", "s.qualified_name",
	"s.access", "s.flags", "s.parent", "s.doc_comment", "s.file_path", "s.line", "s.updated_at",
}

// applyFilter adds the WHERE clauses of a filter
func applyFilter(b sq.SelectBuilder, f SymbolFilter) sq.SelectBuilder {
	if f.ProjectID != 0 {
		b = b.Where(sq.Eq{"s.project_id": f.ProjectID})
	}
	if len(f.Kinds) > 0 {
		kinds := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			kinds[i] = k.String()
		}
		b = b.Where(sq.Eq{"s.kind": kinds})
	}
	if f.Name != "" {
		b = b.Where(sq.Eq{"s.name": f.Name})
	}
	if f.NamePrefix != "" {
		b = b.Where(`s.name LIKE ? ESCAPE '\'`, escapeLike(f.NamePrefix)+"%")
	}
	if f.Parent != nil {
		b = b.Where(sq.Eq{"s.parent": f.Parent[:]})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike neutralizes LIKE wildcards in a literal prefix
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanSymbol(row scanner, extra ...any) (*Symbol, error) {
	var sym Symbol
	var id, parent []byte
	var kind, access string
	var doc, file sql.NullString
	var line sql.NullInt64
	var flags int64
	var updated time.Time
	dest := []any{
		&sym.RowID, &sym.ProjectID, &id, &kind, &sym.Name, &sym.QualifiedName,
		&access, &flags, &parent, &doc, &file, &line, &updated,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if sym.Kind, err = metadata.ParseInfoKind(kind); err != nil {
		return nil, err
	}
	if sym.Access, err = metadata.ParseAccess(access); err != nil {
		return nil, err
	}
	sym.ID = scanID(id)
	sym.Parent = scanID(parent)
	sym.Flags = uint32(flags)
	sym.DocComment = doc.String
	sym.File = file.String
	sym.Line = int(line.Int64)
	sym.UpdatedAt = updated
	return &sym, nil
}

// listSymbolsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listSymbolsWithQuerier(ctx context.Context, q querier, filter SymbolFilter) ([]*Symbol, error) {
	b := sq.Select(symbolColumns...).
		From("symbols s").
		OrderBy("s.qualified_name", "s.id").
		PlaceholderFormat(sq.Question)
	query, args, err := applyFilter(b, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build symbol query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	symbols := make([]*Symbol, 0)
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *SQLiteStorage) ListSymbols(ctx context.Context, filter SymbolFilter) ([]*Symbol, error) {
	return s.listSymbolsWithQuerier(ctx, s.querier(), filter)
}

// MatchExpression turns free text into an FTS5 query: every term must
// match as a prefix. Terms are quoted so C++ punctuation such as "::" or
// "~" is not read as query syntax.
func MatchExpression(text string) string {
	var terms []string
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ':' || r == '"'
	}) {
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}

// searchSymbolsWithQuerier ranks symbols by BM25 over name, qualified
// name and documentation.
func (s *SQLiteStorage) searchSymbolsWithQuerier(ctx context.Context, q querier, text string, filter SymbolFilter) ([]SearchResult, error) {
	match := MatchExpression(text)
	if match == "" {
		return []SearchResult{}, nil
	}

	b := sq.Select(append(symbolColumns, "bm25(symbols_fts) AS score")...).
		From("symbols s").
		Join("symbols_fts ON symbols_fts.rowid = s.id").
		Where("symbols_fts MATCH ?", match).
		OrderBy("score", "s.id").
		PlaceholderFormat(sq.Question)
	query, args, err := applyFilter(b, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SearchResult, 0)
	for rows.Next() {
		var score float64
		sym, err := scanSymbol(rows, &score)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Symbol: sym, Score: score})
	}
	return results, rows.Err()
}

func (s *SQLiteStorage) SearchSymbols(ctx context.Context, query string, filter SymbolFilter) ([]SearchResult, error) {
	return s.searchSymbolsWithQuerier(ctx, s.querier(), query, filter)
}
