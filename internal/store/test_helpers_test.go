package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/dxfio/internal/config"
	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/tags"
	"github.com/roach88/dxfio/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// indexedAt is the fixed index time of test documents.
var indexedAt = testutil.Epoch

// createTestDocument builds a document with three entities in model
// space, one in paper space and one in block "Door":
//
//	model space: LINE on "Walls", LINE on "Walls", CIRCLE on "0" (color 1)
//	paper space: CIRCLE on "0"
//	Door:        LINE on "0"
func createTestDocument(t *testing.T) *document.Document {
	t.Helper()
	d := document.New(config.Default(),
		document.WithClock(testutil.NewFixedClock(time.Time{})),
		document.WithGUIDGenerator(testutil.NewFixedGUIDGenerator()),
	)
	o := tags.Vec3(0, 0, 0)
	p := tags.Vec3(1, 0, 0)
	ms := d.Modelspace()
	mustAdd(t, func() error { _, err := ms.AddLine(o, p, map[int]any{8: "Walls"}); return err })
	mustAdd(t, func() error { _, err := ms.AddLine(p, o, map[int]any{8: "Walls"}); return err })
	mustAdd(t, func() error { _, err := ms.AddCircle(o, 2, map[int]any{62: 1}); return err })

	ps, err := d.Layout("")
	if err != nil {
		t.Fatalf("Layout() failed: %v", err)
	}
	mustAdd(t, func() error { _, err := ps.AddCircle(o, 5, nil); return err })

	door, err := d.NewBlock("Door", o)
	if err != nil {
		t.Fatalf("NewBlock() failed: %v", err)
	}
	mustAdd(t, func() error { _, err := door.AddLine(o, p, nil); return err })
	return d
}

func mustAdd(t *testing.T, add func() error) {
	t.Helper()
	if err := add(); err != nil {
		t.Fatalf("adding entity failed: %v", err)
	}
}
