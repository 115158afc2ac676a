// Package executor runs logical plans with the iterator model: each
// plan node becomes an executor that pulls tuples from its child.
package executor

import (
	"fmt"
	"sort"

	"github.com/ItsPalash13/AdvanceDB/internal/catalog"
	"github.com/ItsPalash13/AdvanceDB/internal/engine"
)

// TupleStore is everything the executor needs from a storage backend.
// The B+ tree store (engine.Store) implements it for durable tables;
// MemStore implements it fully in memory, including the mutation
// operations the tree core does not offer.
type TupleStore interface {
	CreateTable(name string, schema *catalog.Schema) error
	Schema(name string) (*catalog.Schema, error)
	Tables() []string
	Scan(name string, fn func(engine.Tuple) error) error
	Insert(name string, row engine.Row) (engine.Tuple, error)
	UpdateTuple(name string, t engine.Tuple) error
	DeleteTuple(name string, rowID uint64) error
}

// MemStore is the in-memory toy storage: a map of tables holding rows
// keyed by rowid. It exists for executor tests and for exercising
// UPDATE and DELETE, which the durable store rejects.
type MemStore struct {
	tables map[string]*memTable
}

type memTable struct {
	schema *catalog.Schema
	rows   map[uint64]engine.Row
	order  []uint64
	nextID uint64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]*memTable)}
}

func (m *MemStore) CreateTable(name string, schema *catalog.Schema) error {
	if _, ok := m.tables[name]; ok {
		return fmt.Errorf("memstore: table %q already exists", name)
	}
	m.tables[name] = &memTable{
		schema: schema,
		rows:   make(map[uint64]engine.Row),
		nextID: 1,
	}
	return nil
}

func (m *MemStore) Schema(name string) (*catalog.Schema, error) {
	t, err := m.table(name)
	if err != nil {
		return nil, err
	}
	return t.schema, nil
}

func (m *MemStore) Tables() []string {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *MemStore) Scan(name string, fn func(engine.Tuple) error) error {
	t, err := m.table(name)
	if err != nil {
		return err
	}
	for _, id := range t.order {
		row, ok := t.rows[id]
		if !ok {
			continue // deleted
		}
		if err := fn(engine.Tuple{RowID: id, Values: row}); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) Insert(name string, row engine.Row) (engine.Tuple, error) {
	t, err := m.table(name)
	if err != nil {
		return engine.Tuple{}, err
	}
	if len(row) != len(t.schema.Columns) {
		return engine.Tuple{}, fmt.Errorf("memstore: table %s expects %d values, got %d",
			name, len(t.schema.Columns), len(row))
	}
	id := t.nextID
	t.nextID++
	t.rows[id] = row
	t.order = append(t.order, id)
	return engine.Tuple{RowID: id, Values: row}, nil
}

func (m *MemStore) UpdateTuple(name string, tuple engine.Tuple) error {
	t, err := m.table(name)
	if err != nil {
		return err
	}
	if _, ok := t.rows[tuple.RowID]; !ok {
		return fmt.Errorf("memstore: table %s has no row %d", name, tuple.RowID)
	}
	t.rows[tuple.RowID] = tuple.Values
	return nil
}

func (m *MemStore) DeleteTuple(name string, rowID uint64) error {
	t, err := m.table(name)
	if err != nil {
		return err
	}
	if _, ok := t.rows[rowID]; !ok {
		return fmt.Errorf("memstore: table %s has no row %d", name, rowID)
	}
	delete(t.rows, rowID)
	return nil
}

func (m *MemStore) table(name string) (*memTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNoSuchTable, name)
	}
	return t, nil
}
