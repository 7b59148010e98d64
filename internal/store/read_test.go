package store

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
)

func indexTestDocument(t *testing.T, s *Store) int64 {
	t.Helper()
	id, err := s.IndexDocument(context.Background(), "plan.dxf", createTestDocument(t), indexedAt)
	if err != nil {
		t.Fatalf("IndexDocument() failed: %v", err)
	}
	return id
}

func TestDocuments_Empty(t *testing.T) {
	s := createTestStore(t)

	docs, err := s.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if docs == nil {
		t.Error("Documents() returned nil, want empty slice")
	}
	if len(docs) != 0 {
		t.Errorf("Documents() returned %d documents, want 0", len(docs))
	}
}

func TestDocuments_OrderedByPath(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"b.dxf", "a.dxf", "C.dxf"} {
		if _, err := s.IndexDocument(ctx, path, createTestDocument(t), indexedAt); err != nil {
			t.Fatalf("IndexDocument(%s) failed: %v", path, err)
		}
	}

	docs, err := s.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	want := []string{"C.dxf", "a.dxf", "b.dxf"} // BINARY collation
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestDocument_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Document(context.Background(), "missing.dxf")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Document() error = %v, want sql.ErrNoRows", err)
	}
}

func TestEntities_SeqOrder(t *testing.T) {
	s := createTestStore(t)
	id := indexTestDocument(t, s)

	records, err := s.Entities(context.Background(), id, Filter{})
	if err != nil {
		t.Fatalf("Entities() failed: %v", err)
	}

	type row struct {
		Type, Layer, Container string
		PaperSpace             bool
	}
	var got []row
	for i, r := range records {
		if r.Seq != i {
			t.Errorf("record %d has seq %d", i, r.Seq)
		}
		if r.Handle.IsNull() || r.Owner.IsNull() {
			t.Errorf("record %d has null handle or owner: %+v", i, r)
		}
		got = append(got, row{r.Type, r.Layer, r.Container, r.PaperSpace})
	}
	want := []row{
		{"LINE", "Walls", "*Model_Space", false},
		{"LINE", "Walls", "*Model_Space", false},
		{"CIRCLE", "0", "*Model_Space", false},
		{"CIRCLE", "0", "*Paper_Space", true},
		{"LINE", "0", "Door", false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Entities() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestEntities_Filter(t *testing.T) {
	s := createTestStore(t)
	id := indexTestDocument(t, s)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 5},
		{"by type", Filter{Type: "LINE"}, 3},
		{"by layer", Filter{Layer: "Walls"}, 2},
		{"by container", Filter{Container: "Door"}, 1},
		{"combined", Filter{Type: "CIRCLE", Layer: "0"}, 2},
		{"no match", Filter{Type: "HATCH"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.Entities(context.Background(), id, tt.filter)
			if err != nil {
				t.Fatalf("Entities() failed: %v", err)
			}
			if records == nil {
				t.Fatal("Entities() returned nil, want slice")
			}
			if len(records) != tt.want {
				t.Errorf("Entities(%+v) returned %d records, want %d", tt.filter, len(records), tt.want)
			}
		})
	}
}

func TestCountBy(t *testing.T) {
	s := createTestStore(t)
	id := indexTestDocument(t, s)

	tests := []struct {
		column string
		want   []Group
	}{
		{"type", []Group{{"LINE", 3}, {"CIRCLE", 2}}},
		{"layer", []Group{{"0", 3}, {"Walls", 2}}},
		{"container", []Group{{"*Model_Space", 3}, {"*Paper_Space", 1}, {"Door", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := s.CountBy(context.Background(), id, tt.column)
			if err != nil {
				t.Fatalf("CountBy() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CountBy(%q) = %v, want %v", tt.column, got, tt.want)
			}
		})
	}
}

func TestCountBy_RejectsUnknownColumn(t *testing.T) {
	s := createTestStore(t)
	id := indexTestDocument(t, s)

	if _, err := s.CountBy(context.Background(), id, "type; DROP TABLE entities"); err == nil {
		t.Error("CountBy() accepted an unknown column")
	}
}

func TestCountByCode(t *testing.T) {
	s := createTestStore(t)
	id := indexTestDocument(t, s)
	ctx := context.Background()

	colors, err := s.CountByCode(ctx, id, 62)
	if err != nil {
		t.Fatalf("CountByCode(62) failed: %v", err)
	}
	if want := []Group{{"1", 1}}; !reflect.DeepEqual(colors, want) {
		t.Errorf("CountByCode(62) = %v, want %v", colors, want)
	}

	layers, err := s.CountByCode(ctx, id, 8)
	if err != nil {
		t.Fatalf("CountByCode(8) failed: %v", err)
	}
	if want := []Group{{"0", 3}, {"Walls", 2}}; !reflect.DeepEqual(layers, want) {
		t.Errorf("CountByCode(8) = %v, want %v", layers, want)
	}

	none, err := s.CountByCode(ctx, id, 999)
	if err != nil {
		t.Fatalf("CountByCode(999) failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("CountByCode(999) = %v, want empty slice", none)
	}
}
