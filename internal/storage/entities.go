package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// Entities are stored as a JSON payload without their member and base
// lists, which live in the members and bases tables. The flags column is
// authoritative for the specifier word.

// detach splits an entity into its payload and its relation rows
func detach(e metadata.Entity) (metadata.Entity, []metadata.ChildRef, []metadata.BaseInfo) {
	c := e.Clone()
	switch c := c.(type) {
	case *metadata.NamespaceInfo:
		members := c.Children.Children()
		c.Children = metadata.NamespaceScope{}
		return c, members, nil
	case *metadata.RecordInfo:
		members := c.Members.Children()
		bases := c.Bases
		c.Members = metadata.RecordScope{}
		c.Bases = nil
		return c, members, bases
	}
	return c, nil, nil
}

// location returns the definition location, or the first declaration
func location(e metadata.Entity) (string, int) {
	var s *metadata.SymbolInfo
	switch e := e.(type) {
	case *metadata.RecordInfo:
		s = &e.SymbolInfo
	case *metadata.FunctionInfo:
		s = &e.SymbolInfo
	case *metadata.EnumInfo:
		s = &e.SymbolInfo
	case *metadata.TypedefInfo:
		s = &e.SymbolInfo
	case *metadata.VarInfo:
		s = &e.SymbolInfo
	case *metadata.FieldInfo:
		s = &e.SymbolInfo
	default:
		return "", 0
	}
	if s.DefLoc != nil {
		return s.DefLoc.File, s.DefLoc.Line
	}
	if len(s.Loc) > 0 {
		return s.Loc[0].File, s.Loc[0].Line
	}
	return "", 0
}

func nullableID(id metadata.SymbolID) any {
	if id.IsZero() {
		return nil
	}
	return id[:]
}

func scanID(b []byte) metadata.SymbolID {
	var id metadata.SymbolID
	copy(id[:], b)
	return id
}

// saveEntityWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) saveEntityWithQuerier(ctx context.Context, q querier, projectID int64, e metadata.Entity, qualifiedName string) error {
	info := e.Base()
	if info.ID.IsZero() {
		return metadata.ErrZeroID
	}
	if err := metadata.ValidateFlags(e); err != nil {
		return fmt.Errorf("symbol %s: %w", info.Name, err)
	}

	stripped, members, bases := detach(e)
	payload, err := json.Marshal(stripped)
	if err != nil {
		return fmt.Errorf("failed to encode symbol %s: %w", info.Name, err)
	}

	var parent metadata.SymbolID
	if len(info.Namespace) > 0 {
		parent = info.Namespace[0]
	}
	file, line := location(e)

	query := `
		INSERT INTO symbols (
			project_id, symbol_id, kind, name, qualified_name, access, flags,
			parent, doc_comment, file_path, line, payload, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(project_id, symbol_id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			qualified_name = excluded.qualified_name,
			access = excluded.access,
			flags = excluded.flags,
			parent = excluded.parent,
			doc_comment = excluded.doc_comment,
			file_path = excluded.file_path,
			line = excluded.line,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`
	var row int64
	err = q.QueryRowContext(ctx, query,
		projectID, info.ID[:], info.Kind.String(), info.Name, qualifiedName,
		info.Access.String(), int64(metadata.SpecsOf(e)), nullableID(parent),
		info.DocComment, file, line, string(payload),
	).Scan(&row)
	if err != nil {
		return fmt.Errorf("failed to save symbol %s: %w", info.Name, err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM members WHERE symbol_row = ?`, row); err != nil {
		return err
	}
	for i, m := range members {
		_, err := q.ExecContext(ctx,
			`INSERT INTO members (symbol_row, ordinal, kind, child_id, name) VALUES (?, ?, ?, ?, ?)`,
			row, i, m.Kind.String(), m.ID[:], m.Name)
		if err != nil {
			return fmt.Errorf("failed to save member %s of %s: %w", m.Name, info.Name, err)
		}
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM bases WHERE symbol_row = ?`, row); err != nil {
		return err
	}
	for i, b := range bases {
		_, err := q.ExecContext(ctx,
			`INSERT INTO bases (symbol_row, ordinal, base_id, name, access, is_virtual) VALUES (?, ?, ?, ?, ?, ?)`,
			row, i, nullableID(b.ID), b.Name, b.Access.String(), b.IsVirtual)
		if err != nil {
			return fmt.Errorf("failed to save base %s of %s: %w", b.Name, info.Name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) SaveEntity(ctx context.Context, projectID int64, e metadata.Entity, qualifiedName string) error {
	return s.saveEntityWithQuerier(ctx, s.querier(), projectID, e, qualifiedName)
}

// decodeEntity rebuilds an entity from its row
func decodeEntity(kindName string, flags int64, payload string) (metadata.Entity, error) {
	kind, err := metadata.ParseInfoKind(kindName)
	if err != nil {
		return nil, err
	}
	e, ok := metadata.NewEntity(kind, metadata.ZeroID, "")
	if !ok {
		return nil, fmt.Errorf("unknown symbol kind %q", kindName)
	}
	if err := json.Unmarshal([]byte(payload), e); err != nil {
		return nil, fmt.Errorf("failed to decode symbol payload: %w", err)
	}
	if flags < 0 || flags > int64(^uint32(0)) {
		return nil, fmt.Errorf("%w: flag word %d out of range", metadata.ErrMalformedFlags, flags)
	}
	metadata.SetSpecs(e, uint32(flags))
	if err := metadata.ValidateFlags(e); err != nil {
		return nil, fmt.Errorf("symbol %s: %w", e.Base().Name, err)
	}
	return e, nil
}

// attach restores the relation rows of one symbol
func attach(ctx context.Context, q querier, row int64, e metadata.Entity) error {
	var scope interface {
		Add(metadata.ChildRef) (bool, error)
	}
	rec, isRecord := e.(*metadata.RecordInfo)
	switch e := e.(type) {
	case *metadata.NamespaceInfo:
		scope = &e.Children
	case *metadata.RecordInfo:
		scope = &e.Members
	default:
		return nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT kind, child_id, name FROM members WHERE symbol_row = ? ORDER BY ordinal`, row)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var kindName, name string
		var child []byte
		if err := rows.Scan(&kindName, &child, &name); err != nil {
			return err
		}
		kind, err := metadata.ParseInfoKind(kindName)
		if err != nil {
			return err
		}
		if _, err := scope.Add(metadata.ChildRef{Kind: kind, ID: scanID(child), Name: name}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if !isRecord {
		return nil
	}

	baseRows, err := q.QueryContext(ctx,
		`SELECT base_id, name, access, is_virtual FROM bases WHERE symbol_row = ? ORDER BY ordinal`, row)
	if err != nil {
		return err
	}
	defer func() { _ = baseRows.Close() }()
	for baseRows.Next() {
		var id []byte
		var name, access string
		var virtual bool
		if err := baseRows.Scan(&id, &name, &access, &virtual); err != nil {
			return err
		}
		b := metadata.NewBaseInfo(scanID(id), name)
		if b.Access, err = metadata.ParseAccess(access); err != nil {
			return err
		}
		b.IsVirtual = virtual
		rec.Bases = append(rec.Bases, b)
	}
	return baseRows.Err()
}

// loadEntityWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) loadEntityWithQuerier(ctx context.Context, q querier, projectID int64, id metadata.SymbolID) (metadata.Entity, error) {
	var row, flags int64
	var kind, payload string
	err := q.QueryRowContext(ctx,
		`SELECT id, kind, flags, payload FROM symbols WHERE project_id = ? AND symbol_id = ?`,
		projectID, id[:]).Scan(&row, &kind, &flags, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: symbol %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	e, err := decodeEntity(kind, flags, payload)
	if err != nil {
		return nil, err
	}
	if err := attach(ctx, q, row, e); err != nil {
		return nil, fmt.Errorf("failed to load members of %s: %w", e.Base().Name, err)
	}
	return e, nil
}

func (s *SQLiteStorage) LoadEntity(ctx context.Context, projectID int64, id metadata.SymbolID) (metadata.Entity, error) {
	return s.loadEntityWithQuerier(ctx, s.querier(), projectID, id)
}

// deleteSymbolsWithQuerier removes every symbol of a project; member and
// base rows cascade.
func (s *SQLiteStorage) deleteSymbolsWithQuerier(ctx context.Context, q querier, projectID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM symbols WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete symbols: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteSymbols(ctx context.Context, projectID int64) error {
	return s.deleteSymbolsWithQuerier(ctx, s.querier(), projectID)
}

// loadCorpusWithQuerier rebuilds an in-memory corpus from every stored
// symbol of a project. Any malformed row fails the whole load.
func (s *SQLiteStorage) loadCorpusWithQuerier(ctx context.Context, q querier, projectID int64) (*corpus.Corpus, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, kind, flags, payload FROM symbols WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}

	type loaded struct {
		row    int64
		entity metadata.Entity
	}
	var all []loaded
	for rows.Next() {
		var row, flags int64
		var kind, payload string
		if err := rows.Scan(&row, &kind, &flags, &payload); err != nil {
			_ = rows.Close()
			return nil, err
		}
		e, err := decodeEntity(kind, flags, payload)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		all = append(all, loaded{row: row, entity: e})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// The connection pool holds one connection; release it before the
	// per-symbol queries.
	_ = rows.Close()

	c := corpus.New()
	for _, l := range all {
		if err := attach(ctx, q, l.row, l.entity); err != nil {
			return nil, fmt.Errorf("failed to load members of %s: %w", l.entity.Base().Name, err)
		}
		if _, err := c.Merge(l.entity); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *SQLiteStorage) LoadCorpus(ctx context.Context, projectID int64) (*corpus.Corpus, error) {
	return s.loadCorpusWithQuerier(ctx, s.querier(), projectID)
}
