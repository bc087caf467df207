package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// UpsertElements replaces the Structured Index row set for one file
// atomically: every element for that file_id is removed, then the
// supplied batch is inserted, all within one transaction (spec §4.4:
// "old rows with that file_path are removed first within the same
// transaction").
func (s *SQLiteStore) UpsertElements(ctx context.Context, fileID string, elements []*Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM elements WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to clear elements for file %s: %w", fileID, err)
	}

	if len(elements) == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO elements (id, project_id, file_id, file_path, type, name, start_line, end_line,
			language, parent_id, children_ids, signature, docstring, dependencies, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			file_id = excluded.file_id,
			file_path = excluded.file_path,
			type = excluded.type,
			name = excluded.name,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			language = excluded.language,
			parent_id = excluded.parent_id,
			children_ids = excluded.children_ids,
			signature = excluded.signature,
			docstring = excluded.docstring,
			dependencies = excluded.dependencies,
			content = excluded.content,
			metadata = excluded.metadata`)
	if err != nil {
		return fmt.Errorf("failed to prepare element upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range elements {
		childrenJSON, err := marshalStrings(e.ChildrenIDs)
		if err != nil {
			return fmt.Errorf("failed to marshal children_ids for element %s: %w", e.ID, err)
		}
		depsJSON, err := marshalStrings(e.Dependencies)
		if err != nil {
			return fmt.Errorf("failed to marshal dependencies for element %s: %w", e.ID, err)
		}
		var metadataJSON sql.NullString
		if len(e.Metadata) > 0 {
			b, err := json.Marshal(e.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal metadata for element %s: %w", e.ID, err)
			}
			metadataJSON = sql.NullString{String: string(b), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, e.ID, e.ProjectID, fileID, e.FilePath, e.Type, e.Name,
			e.StartLine, e.EndLine, e.Language, nullIfEmpty(e.ParentID), childrenJSON, e.Signature,
			e.Docstring, depsJSON, e.Content, metadataJSON); err != nil {
			return fmt.Errorf("failed to save element %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteElementsByFile removes every element of one file atomically
// (spec §4.4 delete_by_file).
func (s *SQLiteStore) DeleteElementsByFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM elements WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete elements: %w", err)
	}
	return nil
}

// GetElementsByFile returns every element of one file, ordered by
// start_line (spec §4.4 get_by_file).
func (s *SQLiteStore) GetElementsByFile(ctx context.Context, fileID string) ([]*Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, elementSelectColumns+` FROM elements WHERE file_id = ? ORDER BY start_line`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()
	return scanElements(rows)
}

// GetElement returns a single element by id, or nil if it doesn't exist.
func (s *SQLiteStore) GetElement(ctx context.Context, id string) (*Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, elementSelectColumns+` FROM elements WHERE id = ?`, id)
	e, err := scanElementRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get element: %w", err)
	}
	return e, nil
}

// GetChildren returns the elements whose parent_id is id, ordered by
// start_line (spec §4.4 get_children).
func (s *SQLiteStore) GetChildren(ctx context.Context, id string) ([]*Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, elementSelectColumns+` FROM elements WHERE parent_id = ? ORDER BY start_line`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()
	return scanElements(rows)
}

// SearchStructural matches pattern against element name, either as a
// glob (when pattern contains '*', '?' or '[') or as a substring, optionally
// filtered by type/language/file, returning results sorted by
// file_path then start_line (spec §4.4 search_structural). Glob
// matching is anchored to the whole name: "get_*" matches "get_user"
// and "get_users" but not "getUser", unlike the bare substring LIKE
// the teacher used for its keyword symbol lookup.
func (s *SQLiteStore) SearchStructural(ctx context.Context, pattern, elemType, language, filePath string, limit int) ([]*Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}
	if limit <= 0 {
		limit = 50
	}

	query := elementSelectColumns + ` FROM elements WHERE 1=1`
	var args []any
	if pattern != "" {
		if isGlobPattern(pattern) {
			query += ` AND name GLOB ?`
			args = append(args, pattern)
		} else {
			query += ` AND name LIKE ?`
			args = append(args, "%"+pattern+"%")
		}
	}
	if elemType != "" {
		query += ` AND type = ?`
		args = append(args, elemType)
	}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}
	if filePath != "" {
		query += ` AND file_path = ?`
		args = append(args, filePath)
	}
	query += ` ORDER BY file_path, start_line LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search elements: %w", err)
	}
	defer rows.Close()
	return scanElements(rows)
}

// isGlobPattern reports whether pattern uses SQLite GLOB wildcards
// ('*', '?', '[') rather than being a plain substring.
func isGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// ElementStats returns the element count and a histogram by type and
// by language for one project (spec §4.4 statistics()).
func (s *SQLiteStore) ElementStats(ctx context.Context, projectID string) (*ElementStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	stats := &ElementStats{ByType: make(map[string]int), ByLanguage: make(map[string]int)}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM elements WHERE project_id = ?`, projectID)
	if err := row.Scan(&stats.Count); err != nil {
		return nil, fmt.Errorf("failed to count elements: %w", err)
	}

	typeRows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM elements WHERE project_id = ? GROUP BY type`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to histogram elements by type: %w", err)
	}
	for typeRows.Next() {
		var typ string
		var count int
		if err := typeRows.Scan(&typ, &count); err != nil {
			typeRows.Close()
			return nil, fmt.Errorf("failed to scan type histogram: %w", err)
		}
		stats.ByType[typ] = count
	}
	typeRows.Close()
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	langRows, err := s.db.QueryContext(ctx, `SELECT language, COUNT(*) FROM elements WHERE project_id = ? GROUP BY language`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to histogram elements by language: %w", err)
	}
	for langRows.Next() {
		var lang sql.NullString
		var count int
		if err := langRows.Scan(&lang, &count); err != nil {
			langRows.Close()
			return nil, fmt.Errorf("failed to scan language histogram: %w", err)
		}
		stats.ByLanguage[lang.String] = count
	}
	langRows.Close()
	return stats, langRows.Err()
}

const elementSelectColumns = `
	SELECT id, project_id, file_id, file_path, type, name, start_line, end_line,
		language, parent_id, children_ids, signature, docstring, dependencies, content, metadata`

func scanElementRow(row scannable) (*Element, error) {
	e := &Element{}
	var parentID, childrenJSON, depsJSON, metadataJSON sql.NullString
	err := row.Scan(&e.ID, &e.ProjectID, &e.FileID, &e.FilePath, &e.Type, &e.Name, &e.StartLine, &e.EndLine,
		&e.Language, &parentID, &childrenJSON, &e.Signature, &e.Docstring, &depsJSON, &e.Content, &metadataJSON)
	if err != nil {
		return nil, err
	}
	e.ParentID = parentID.String
	if e.ChildrenIDs, err = unmarshalStrings(childrenJSON); err != nil {
		return nil, fmt.Errorf("failed to unmarshal children_ids for element %s: %w", e.ID, err)
	}
	if e.Dependencies, err = unmarshalStrings(depsJSON); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dependencies for element %s: %w", e.ID, err)
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &e.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for element %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func scanElements(rows *sql.Rows) ([]*Element, error) {
	var elements []*Element
	for rows.Next() {
		e, err := scanElementRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		elements = append(elements, e)
	}
	return elements, rows.Err()
}

func marshalStrings(ss []string) (sql.NullString, error) {
	if len(ss) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalStrings(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var ss []string
	if err := json.Unmarshal([]byte(ns.String), &ss); err != nil {
		return nil, err
	}
	return ss, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
