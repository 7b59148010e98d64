// Package entitydb implements the handle-keyed entity store of a document.
//
// The database is an arena: every entity of a document lives in one flat
// map keyed by handle, and all references between entities are handle
// values resolved through Get. The database performs no referential
// integrity checks beyond primary storage; deleting an entity leaves
// references to it dangling and does not touch owned children.
//
// A DB is owned by exactly one document and is not safe for concurrent
// mutation.
package entitydb

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
)

// DB stores entities by handle.
type DB struct {
	entities map[handle.Handle]*entity.Entity
	handles  *handle.Generator
}

// New creates an empty database. The first allocated handle is 1.
func New() *DB {
	return &DB{
		entities: make(map[handle.Handle]*entity.Entity),
		handles:  handle.NewGenerator(),
	}
}

// Allocate returns a handle distinct from every handle issued or stored
// so far.
func (db *DB) Allocate() handle.Handle {
	for {
		h := db.handles.Next()
		if _, taken := db.entities[h]; !taken {
			return h
		}
	}
}

// Add stores e. A null handle is replaced by a freshly allocated one.
// Adding a second entity under an existing handle is an error; the
// document decides how to repair such input. Handles above handle.Limit
// are rejected with handle.ErrOutOfRange.
func (db *DB) Add(e *entity.Entity) error {
	if e.Handle.IsNull() {
		e.Handle = db.Allocate()
	} else if cur, ok := db.entities[e.Handle]; ok && cur != e {
		return fmt.Errorf("duplicate handle %s (%s and %s)", e.Handle, cur.Type, e.Type)
	}
	if err := db.handles.Observe(e.Handle); err != nil {
		return fmt.Errorf("%s: %w", e.Type, err)
	}
	db.entities[e.Handle] = e
	return nil
}

// Get returns the entity stored under h.
func (db *DB) Get(h handle.Handle) (*entity.Entity, bool) {
	e, ok := db.entities[h]
	return e, ok
}

// Has reports whether h is in use.
func (db *DB) Has(h handle.Handle) bool {
	_, ok := db.entities[h]
	return ok
}

// Delete removes h. Deleting an absent handle is a no-op.
func (db *DB) Delete(h handle.Handle) {
	delete(db.entities, h)
}

// Len returns the number of stored entities.
func (db *DB) Len() int {
	return len(db.entities)
}

// Handles returns all handles in ascending order.
func (db *DB) Handles() []handle.Handle {
	return slices.Sorted(maps.Keys(db.entities))
}

// All iterates entities in ascending handle order. Entities may be
// deleted while iterating; added entities are not visited.
func (db *DB) All() iter.Seq2[handle.Handle, *entity.Entity] {
	return func(yield func(handle.Handle, *entity.Entity) bool) {
		for _, h := range db.Handles() {
			e, ok := db.entities[h]
			if !ok {
				continue
			}
			if !yield(h, e) {
				return
			}
		}
	}
}

// Reset reseeds handle allocation. The next allocated handle is seed or
// one past the largest stored handle, whichever is greater. Seeds above
// handle.Limit are rejected.
func (db *DB) Reset(seed handle.Handle) error {
	return db.handles.Reset(seed)
}

// Seed returns the handle the next Allocate would return at the earliest,
// always above every handle in the database. Written as $HANDSEED.
func (db *DB) Seed() handle.Handle {
	return db.handles.Peek()
}
