package catalog

import (
	"errors"
	"testing"

	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
)

func sampleSchema() *Schema {
	return NewSchema([]parser.ColumnDefinition{
		{Name: "id", Type: parser.TypeInteger, PrimaryKey: true, NotNull: true},
		{Name: "name", Type: parser.TypeText, NotNull: true},
		{Name: "score", Type: parser.TypeReal},
	})
}

func TestNewSchema(t *testing.T) {
	s := sampleSchema()
	if s.PrimaryKey != 0 {
		t.Errorf("expected primary key index 0, got %d", s.PrimaryKey)
	}
	if idx, ok := s.ColumnIndex("name"); !ok || idx != 1 {
		t.Errorf("expected name at index 1, got %d (ok=%v)", idx, ok)
	}
	if _, ok := s.ColumnIndex("missing"); ok {
		t.Error("missing column should not resolve")
	}

	noPK := NewSchema([]parser.ColumnDefinition{{Name: "x", Type: parser.TypeText}})
	if noPK.PrimaryKey != -1 {
		t.Errorf("expected -1 primary key, got %d", noPK.PrimaryKey)
	}
}

func TestCatalogPersistence(t *testing.T) {
	dir := t.TempDir()

	cat, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(cat.Tables()) != 0 {
		t.Fatalf("fresh catalog should be empty, got %v", cat.Tables())
	}

	if err := cat.AddTable("users", sampleSchema()); err != nil {
		t.Fatalf("AddTable failed: %v", err)
	}
	if err := cat.AddTable("orders", NewSchema([]parser.ColumnDefinition{
		{Name: "total", Type: parser.TypeReal},
	})); err != nil {
		t.Fatalf("AddTable failed: %v", err)
	}

	// Reopen and verify everything came back.
	cat2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	tables := cat2.Tables()
	if len(tables) != 2 || tables[0] != "orders" || tables[1] != "users" {
		t.Fatalf("expected sorted [orders users], got %v", tables)
	}

	schema, err := cat2.Table("users")
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if len(schema.Columns) != 3 || schema.PrimaryKey != 0 {
		t.Fatalf("schema lost in round trip: %+v", schema)
	}
	col := schema.Columns[1]
	if col.Name != "name" || col.Type != parser.TypeText || !col.NotNull || col.PrimaryKey {
		t.Errorf("column lost in round trip: %+v", col)
	}
}

func TestCatalogDuplicateTable(t *testing.T) {
	cat, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := cat.AddTable("t", sampleSchema()); err != nil {
		t.Fatalf("AddTable failed: %v", err)
	}
	if err := cat.AddTable("t", sampleSchema()); err == nil {
		t.Error("expected an error adding a duplicate table")
	}
}

func TestCatalogUnknownTable(t *testing.T) {
	cat, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := cat.Table("ghost"); !errors.Is(err, ErrNoSuchTable) {
		t.Errorf("expected ErrNoSuchTable, got %v", err)
	}
}
