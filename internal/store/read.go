package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/dxfio/internal/handle"
)

// DocumentInfo describes one indexed file.
type DocumentInfo struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Version   string    `json:"version"`
	Release   string    `json:"release"`
	Encoding  string    `json:"encoding"`
	Entities  int       `json:"entities"`
	IndexedAt time.Time `json:"indexed_at"`
}

// Record is one indexed entity.
type Record struct {
	Handle     handle.Handle `json:"handle"`
	Seq        int           `json:"seq"`
	Type       string        `json:"type"`
	Layer      string        `json:"layer"`
	Owner      handle.Handle `json:"owner"`
	Container  string        `json:"container"`
	PaperSpace bool          `json:"paper_space,omitempty"`
}

// Filter restricts an entity query. Empty fields match everything.
type Filter struct {
	Type      string
	Layer     string
	Container string
}

// Group is one row of a grouped count.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupColumns are the entity columns CountBy accepts.
var groupColumns = map[string]string{
	"type":      "type",
	"layer":     "layer",
	"container": "container",
	"owner":     "owner",
}

// Documents returns all indexed documents ordered by path.
// Returns an empty slice (not nil) if nothing is indexed.
func (s *Store) Documents(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, version, release, encoding, entity_count, indexed_at
		FROM documents
		ORDER BY path COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []DocumentInfo{}
	for rows.Next() {
		info, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Document returns the indexed document at path.
// Returns sql.ErrNoRows if not found.
func (s *Store) Document(ctx context.Context, path string) (DocumentInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, version, release, encoding, entity_count, indexed_at
		FROM documents
		WHERE path = ?
	`, path)
	return scanDocument(row)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (DocumentInfo, error) {
	var (
		info      DocumentInfo
		indexedAt string
	)
	if err := row.Scan(&info.ID, &info.Path, &info.Version, &info.Release, &info.Encoding, &info.Entities, &indexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocumentInfo{}, err
		}
		return DocumentInfo{}, fmt.Errorf("scan document: %w", err)
	}
	t, err := time.Parse(time.RFC3339, indexedAt)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("parse indexed_at %q: %w", indexedAt, err)
	}
	info.IndexedAt = t
	return info, nil
}

// Entities returns the entities of a document matching f, in seq order.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Entities(ctx context.Context, docID int64, f Filter) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT handle, seq, type, layer, owner, container, paper_space
		FROM entities
		WHERE document_id = ?
		  AND (? = '' OR type = ?)
		  AND (? = '' OR layer = ?)
		  AND (? = '' OR container = ?)
		ORDER BY seq ASC
	`, docID, f.Type, f.Type, f.Layer, f.Layer, f.Container, f.Container)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r        Record
			h, owner string
			paper    int
		)
		if err := rows.Scan(&h, &r.Seq, &r.Type, &r.Layer, &owner, &r.Container, &paper); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		if r.Handle, err = handle.Parse(h); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		if r.Owner, err = handle.Parse(owner); err != nil {
			return nil, fmt.Errorf("scan entity %s: %w", h, err)
		}
		r.PaperSpace = paper != 0
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return records, nil
}

// CountBy counts the entities of a document grouped by one of the
// columns "type", "layer", "container" or "owner".
func (s *Store) CountBy(ctx context.Context, docID int64, column string) ([]Group, error) {
	col, ok := groupColumns[column]
	if !ok {
		return nil, fmt.Errorf("cannot group by %q", column)
	}
	// col comes from groupColumns, never from the caller
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM entities
		WHERE document_id = ?
		GROUP BY %s
		ORDER BY COUNT(*) DESC, %s COLLATE BINARY ASC
	`, col, col, col)
	return s.queryGroups(ctx, query, docID)
}

// CountByCode counts the entities of a document grouped by the value of
// a group code. Entities without the code are left out.
func (s *Store) CountByCode(ctx context.Context, docID int64, code int) ([]Group, error) {
	return s.queryGroups(ctx, `
		SELECT value, COUNT(*)
		FROM attributes
		WHERE document_id = ? AND code = ?
		GROUP BY value
		ORDER BY COUNT(*) DESC, value COLLATE BINARY ASC
	`, docID, code)
}

func (s *Store) queryGroups(ctx context.Context, query string, args ...any) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []Group{}
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}
