package engine

import (
	"errors"
	"fmt"

	"github.com/ItsPalash13/AdvanceDB/internal/catalog"
	"github.com/ItsPalash13/AdvanceDB/internal/logging"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
	"github.com/ItsPalash13/AdvanceDB/internal/storage"
)

// Store is the SQL-facing table store backed by one B+ tree file per
// table. Rows are keyed by the primary-key column when the schema has
// one, otherwise by an implicit monotonic rowid.
//
// Update and delete are not available on this store: the tree does
// not remove or rewrite keys.
type Store struct {
	dir     string
	cat     *catalog.Catalog
	handles map[string]*storage.TableHandle
	nextID  map[string]uint64
}

// OpenStore opens (or initializes) the store rooted at dir.
func OpenStore(dir string) (*Store, error) {
	cat, err := catalog.Open(dir)
	if err != nil {
		return nil, err
	}
	return &Store{
		dir:     dir,
		cat:     cat,
		handles: make(map[string]*storage.TableHandle),
		nextID:  make(map[string]uint64),
	}, nil
}

// Catalog exposes the schema catalog.
func (s *Store) Catalog() *catalog.Catalog { return s.cat }

// Close releases every open table handle.
func (s *Store) Close() error {
	var firstErr error
	for name, th := range s.handles {
		if err := th.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.handles, name)
	}
	return firstErr
}

// CreateTable registers the schema and creates the table file.
func (s *Store) CreateTable(name string, schema *catalog.Schema) error {
	if err := storage.CreateTable(s.dir, name); err != nil {
		return err
	}
	if err := s.cat.AddTable(name, schema); err != nil {
		return err
	}
	logging.WithTable(name).Info("created table", "columns", len(schema.Columns))
	return nil
}

// Schema looks a table's schema up.
func (s *Store) Schema(name string) (*catalog.Schema, error) {
	return s.cat.Table(name)
}

// Tables lists the known tables.
func (s *Store) Tables() []string { return s.cat.Tables() }

func (s *Store) handle(name string) (*storage.TableHandle, error) {
	if th, ok := s.handles[name]; ok {
		return th, nil
	}
	if _, err := s.cat.Table(name); err != nil {
		return nil, err
	}
	th, err := storage.OpenTable(s.dir, name)
	if err != nil {
		return nil, err
	}
	s.handles[name] = th
	return th, nil
}

// Insert validates the row against the schema and writes it under its
// key. A duplicate primary key is reported as an error carrying
// storage.ErrDuplicateKey.
func (s *Store) Insert(name string, row Row) (Tuple, error) {
	schema, err := s.cat.Table(name)
	if err != nil {
		return Tuple{}, err
	}
	if err := validateRow(schema, row); err != nil {
		return Tuple{}, fmt.Errorf("table %s: %w", name, err)
	}
	for i := range row {
		row[i] = Coerce(schema.Columns[i].Type, row[i])
	}
	th, err := s.handle(name)
	if err != nil {
		return Tuple{}, err
	}

	var key []byte
	var rowID uint64
	if schema.PrimaryKey >= 0 {
		key, err = EncodeKey(row[schema.PrimaryKey])
		if err != nil {
			return Tuple{}, fmt.Errorf("table %s: %w", name, err)
		}
	} else {
		rowID, err = s.nextRowID(name, th)
		if err != nil {
			return Tuple{}, err
		}
		key = EncodeRowID(rowID)
	}

	ok, err := storage.Insert(th, key, EncodeRow(row))
	if err != nil {
		return Tuple{}, err
	}
	if !ok {
		return Tuple{}, fmt.Errorf("table %s: %w", name, storage.ErrDuplicateKey)
	}
	if schema.PrimaryKey < 0 {
		s.nextID[name] = rowID + 1
	}
	return Tuple{RowID: rowID, Values: row}, nil
}

// Scan streams every row in key order.
func (s *Store) Scan(name string, fn func(Tuple) error) error {
	th, err := s.handle(name)
	if err != nil {
		return err
	}
	return storage.Scan(th, func(key, value []byte) error {
		row, err := DecodeRow(value)
		if err != nil {
			return err
		}
		t := Tuple{Values: row}
		if id, ok := DecodeRowID(key); ok {
			t.RowID = id
		}
		return fn(t)
	})
}

// Get fetches the row stored under a primary-key value.
func (s *Store) Get(name string, keyValue Value) (Row, bool, error) {
	th, err := s.handle(name)
	if err != nil {
		return nil, false, err
	}
	key, err := EncodeKey(keyValue)
	if err != nil {
		return nil, false, err
	}
	value, found, err := storage.Search(th, key)
	if err != nil || !found {
		return nil, false, err
	}
	row, err := DecodeRow(value)
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// UpdateTuple is unavailable: the tree has no in-place update.
func (s *Store) UpdateTuple(name string, t Tuple) error {
	return fmt.Errorf("%w: UPDATE on table %s", ErrUnsupported, name)
}

// DeleteTuple is unavailable: the tree has no key deletion.
func (s *Store) DeleteTuple(name string, rowID uint64) error {
	return fmt.Errorf("%w: DELETE on table %s", ErrUnsupported, name)
}

// Stats reports the tree shape for a table.
func (s *Store) Stats(name string) (storage.Stats, error) {
	th, err := s.handle(name)
	if err != nil {
		return storage.Stats{}, err
	}
	return storage.ComputeStats(th)
}

// nextRowID continues the rowid sequence, seeding it from the
// largest rowid on disk the first time a table is touched.
func (s *Store) nextRowID(name string, th *storage.TableHandle) (uint64, error) {
	if id, ok := s.nextID[name]; ok {
		return id, nil
	}
	var max uint64
	err := storage.Scan(th, func(key, _ []byte) error {
		if id, ok := DecodeRowID(key); ok && id >= max {
			max = id + 1
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if max == 0 {
		max = 1
	}
	s.nextID[name] = max
	return max, nil
}

func validateRow(schema *catalog.Schema, row Row) error {
	if len(row) != len(schema.Columns) {
		return fmt.Errorf("expected %d values, got %d", len(schema.Columns), len(row))
	}
	for i, v := range row {
		col := schema.Columns[i]
		if v.IsNull {
			if col.NotNull {
				return fmt.Errorf("column %s cannot be NULL", col.Name)
			}
			continue
		}
		if !typeCompatible(col.Type, v) {
			return fmt.Errorf("column %s expects %s, got %s", col.Name, col.Type, v.Type)
		}
	}
	return nil
}

// typeCompatible allows integer literals to populate REAL columns.
func typeCompatible(want parser.DataType, v Value) bool {
	if v.Type == want {
		return true
	}
	return want == parser.TypeReal && v.Type == parser.TypeInteger
}

// Coerce widens a value to the column type where allowed.
func Coerce(want parser.DataType, v Value) Value {
	if v.IsNull || v.Type == want {
		return v
	}
	if want == parser.TypeReal && v.Type == parser.TypeInteger {
		return NewReal(float64(v.Int))
	}
	return v
}

// IsDuplicateKey reports whether err is a duplicate-primary-key
// failure.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, storage.ErrDuplicateKey)
}
