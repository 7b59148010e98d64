package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/tags"
)

// IndexDocument stores the graphical entities of d under path and
// returns the document id. A path indexed before is replaced as a
// whole, in one transaction.
//
// Entities are numbered in layout tab order followed by block order, the
// order document.ChainLayoutsAndBlocks yields them.
func (s *Store) IndexDocument(ctx context.Context, path string, d *document.Document, now time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("index document: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return 0, fmt.Errorf("index document: delete previous: %w", err)
	}

	var all []*entity.Entity
	for e := range d.ChainLayoutsAndBlocks() {
		all = append(all, e)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO documents (path, version, release, encoding, entity_count, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		path,
		string(d.Version()),
		d.Version().Release(),
		d.Encoding(),
		len(all),
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("index document: insert document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("index document: get id: %w", err)
	}

	entityStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (document_id, handle, seq, type, layer, owner, container, paper_space)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("index document: prepare entities: %w", err)
	}
	defer entityStmt.Close()

	// first occurrence wins, repeated codes are ignored
	attrStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attributes (document_id, handle, code, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("index document: prepare attributes: %w", err)
	}
	defer attrStmt.Close()

	for seq, e := range all {
		h := e.Handle.String()
		paper := 0
		if e.Int(tags.CodePaperSpace, 0) == 1 {
			paper = 1
		}
		if _, err := entityStmt.ExecContext(ctx,
			id, h, seq, e.Type, e.Layer(), e.Owner.String(), containerName(d, e), paper,
		); err != nil {
			return 0, fmt.Errorf("index document: insert entity %s: %w", h, err)
		}
		for _, t := range attributeTags(e) {
			if _, err := attrStmt.ExecContext(ctx, id, h, t.Code, t.Str()); err != nil {
				return 0, fmt.Errorf("index document: insert attribute %d of %s: %w", t.Code, h, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("index document: commit: %w", err)
	}
	return id, nil
}

// containerName returns the name of the block record owning e.
func containerName(d *document.Document, e *entity.Entity) string {
	if rec, ok := d.Lookup(e.Owner); ok {
		return rec.Name()
	}
	return ""
}

// attributeTags returns the body tags worth grouping by: everything up
// to the extended data except subclass markers and binary chunks.
func attributeTags(e *entity.Entity) []tags.Tag {
	var out []tags.Tag
	for _, t := range e.Body {
		if t.Code == tags.CodeXDataAppID {
			break
		}
		if t.Code == tags.CodeSubclass || tags.IsBinaryCode(t.Code) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// DeleteDocument removes path and its entities from the index.
// Returns false if path was not indexed.
func (s *Store) DeleteDocument(ctx context.Context, path string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return n > 0, nil
}
