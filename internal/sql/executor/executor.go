package executor

import (
	"fmt"
	"sort"

	"github.com/ItsPalash13/AdvanceDB/internal/catalog"
	"github.com/ItsPalash13/AdvanceDB/internal/engine"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/planner"
)

// Executor is one node of a running pipeline. Open prepares state,
// Next yields tuples until ok is false, Close releases resources.
// Columns is valid after Open.
type Executor interface {
	Columns() []string
	Open() error
	Next() (engine.Tuple, bool, error)
	Close() error
}

// affectedReporter is implemented by the DML executors so the session
// can report row counts.
type affectedReporter interface {
	Affected() int
}

// Build assembles the executor tree for a plan.
func Build(plan planner.Plan, store TupleStore) (Executor, error) {
	switch p := plan.(type) {
	case *planner.SeqScan:
		return &seqScanExec{store: store, table: p.Table}, nil
	case *planner.Values:
		return &valuesExec{rows: p.Rows}, nil
	case *planner.Filter:
		child, err := Build(p.Input, store)
		if err != nil {
			return nil, err
		}
		return &filterExec{child: child, predicate: p.Predicate}, nil
	case *planner.Project:
		child, err := Build(p.Input, store)
		if err != nil {
			return nil, err
		}
		return &projectExec{child: child, exprs: p.Exprs}, nil
	case *planner.Sort:
		child, err := Build(p.Input, store)
		if err != nil {
			return nil, err
		}
		return &sortExec{child: child, keys: p.Keys}, nil
	case *planner.Collect:
		child, err := Build(p.Input, store)
		if err != nil {
			return nil, err
		}
		return &collectExec{child: child, limit: p.Limit}, nil
	case *planner.Insert:
		child, err := Build(p.Input, store)
		if err != nil {
			return nil, err
		}
		return &insertExec{store: store, table: p.Table, columns: p.Columns, child: child}, nil
	case *planner.Update:
		child, err := Build(p.Input, store)
		if err != nil {
			return nil, err
		}
		return &updateExec{store: store, table: p.Table, set: p.Set, child: child}, nil
	case *planner.Delete:
		child, err := Build(p.Input, store)
		if err != nil {
			return nil, err
		}
		return &deleteExec{store: store, table: p.Table, child: child}, nil
	default:
		return nil, fmt.Errorf("executor: unsupported plan node %T", plan)
	}
}

// seqScanExec materializes a table snapshot on Open and replays it.
type seqScanExec struct {
	store  TupleStore
	table  string
	cols   []string
	tuples []engine.Tuple
	pos    int
}

func (e *seqScanExec) Columns() []string { return e.cols }

func (e *seqScanExec) Open() error {
	schema, err := e.store.Schema(e.table)
	if err != nil {
		return err
	}
	e.cols = schema.ColumnNames()
	e.tuples = e.tuples[:0]
	e.pos = 0
	return e.store.Scan(e.table, func(t engine.Tuple) error {
		e.tuples = append(e.tuples, t)
		return nil
	})
}

func (e *seqScanExec) Next() (engine.Tuple, bool, error) {
	if e.pos >= len(e.tuples) {
		return engine.Tuple{}, false, nil
	}
	t := e.tuples[e.pos]
	e.pos++
	return t, true, nil
}

func (e *seqScanExec) Close() error { return nil }

// valuesExec yields literal rows.
type valuesExec struct {
	rows [][]parser.Expression
	pos  int
}

func (e *valuesExec) Columns() []string { return nil }
func (e *valuesExec) Open() error       { e.pos = 0; return nil }

func (e *valuesExec) Next() (engine.Tuple, bool, error) {
	if e.pos >= len(e.rows) {
		return engine.Tuple{}, false, nil
	}
	exprs := e.rows[e.pos]
	e.pos++

	row := make(engine.Row, len(exprs))
	for i, expr := range exprs {
		v, err := evalExpr(expr, nil, nil)
		if err != nil {
			return engine.Tuple{}, false, err
		}
		row[i] = v
	}
	return engine.Tuple{Values: row}, true, nil
}

func (e *valuesExec) Close() error { return nil }

// filterExec drops tuples whose predicate is not TRUE.
type filterExec struct {
	child     Executor
	predicate parser.Expression
}

func (e *filterExec) Columns() []string { return e.child.Columns() }
func (e *filterExec) Open() error       { return e.child.Open() }
func (e *filterExec) Close() error      { return e.child.Close() }

func (e *filterExec) Next() (engine.Tuple, bool, error) {
	for {
		t, ok, err := e.child.Next()
		if err != nil || !ok {
			return engine.Tuple{}, false, err
		}
		keep, err := evalExpr(e.predicate, t.Values, e.child.Columns())
		if err != nil {
			return engine.Tuple{}, false, err
		}
		if truthy(keep) {
			return t, true, nil
		}
	}
}

// projectExec evaluates the projection list; * splices in the whole
// input row.
type projectExec struct {
	child Executor
	exprs []parser.Expression
	cols  []string
}

func (e *projectExec) Columns() []string { return e.cols }
func (e *projectExec) Close() error      { return e.child.Close() }

func (e *projectExec) Open() error {
	if err := e.child.Open(); err != nil {
		return err
	}
	e.cols = e.cols[:0]
	for _, expr := range e.exprs {
		if _, ok := expr.(*parser.Star); ok {
			e.cols = append(e.cols, e.child.Columns()...)
			continue
		}
		if id, ok := expr.(*parser.Identifier); ok {
			e.cols = append(e.cols, id.Name)
			continue
		}
		e.cols = append(e.cols, expr.String())
	}
	return nil
}

func (e *projectExec) Next() (engine.Tuple, bool, error) {
	t, ok, err := e.child.Next()
	if err != nil || !ok {
		return engine.Tuple{}, false, err
	}

	out := make(engine.Row, 0, len(e.cols))
	for _, expr := range e.exprs {
		if _, isStar := expr.(*parser.Star); isStar {
			out = append(out, t.Values...)
			continue
		}
		v, err := evalExpr(expr, t.Values, e.child.Columns())
		if err != nil {
			return engine.Tuple{}, false, err
		}
		out = append(out, v)
	}
	return engine.Tuple{RowID: t.RowID, Values: out}, true, nil
}

// sortExec drains its child and replays in key order.
type sortExec struct {
	child  Executor
	keys   []parser.OrderKey
	tuples []engine.Tuple
	pos    int
	err    error
}

func (e *sortExec) Columns() []string { return e.child.Columns() }
func (e *sortExec) Close() error      { return e.child.Close() }

func (e *sortExec) Open() error {
	if err := e.child.Open(); err != nil {
		return err
	}
	e.tuples = e.tuples[:0]
	e.pos = 0
	for {
		t, ok, err := e.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		e.tuples = append(e.tuples, t)
	}

	cols := e.child.Columns()
	e.err = nil
	sort.SliceStable(e.tuples, func(i, j int) bool {
		if e.err != nil {
			return false
		}
		for _, key := range e.keys {
			a, err := evalExpr(key.Expr, e.tuples[i].Values, cols)
			if err != nil {
				e.err = err
				return false
			}
			b, err := evalExpr(key.Expr, e.tuples[j].Values, cols)
			if err != nil {
				e.err = err
				return false
			}
			cmp := a.Compare(b)
			if cmp == 0 {
				continue
			}
			if key.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return e.err
}

func (e *sortExec) Next() (engine.Tuple, bool, error) {
	if e.pos >= len(e.tuples) {
		return engine.Tuple{}, false, nil
	}
	t := e.tuples[e.pos]
	e.pos++
	return t, true, nil
}

// collectExec is the top-of-SELECT barrier; it enforces LIMIT.
type collectExec struct {
	child   Executor
	limit   int
	yielded int
}

func (e *collectExec) Columns() []string { return e.child.Columns() }
func (e *collectExec) Open() error       { e.yielded = 0; return e.child.Open() }
func (e *collectExec) Close() error      { return e.child.Close() }

func (e *collectExec) Next() (engine.Tuple, bool, error) {
	if e.limit >= 0 && e.yielded >= e.limit {
		return engine.Tuple{}, false, nil
	}
	t, ok, err := e.child.Next()
	if err != nil || !ok {
		return engine.Tuple{}, false, err
	}
	e.yielded++
	return t, true, nil
}

// insertExec drains its Values child and writes each row, reshaping
// named-column inserts onto the full schema with NULLs elsewhere.
type insertExec struct {
	store    TupleStore
	table    string
	columns  []string
	child    Executor
	affected int
	done     bool
}

func (e *insertExec) Columns() []string { return nil }
func (e *insertExec) Affected() int     { return e.affected }
func (e *insertExec) Open() error       { e.affected = 0; e.done = false; return e.child.Open() }
func (e *insertExec) Close() error      { return e.child.Close() }

func (e *insertExec) Next() (engine.Tuple, bool, error) {
	if e.done {
		return engine.Tuple{}, false, nil
	}
	e.done = true

	schema, err := e.store.Schema(e.table)
	if err != nil {
		return engine.Tuple{}, false, err
	}

	for {
		t, ok, err := e.child.Next()
		if err != nil {
			return engine.Tuple{}, false, err
		}
		if !ok {
			return engine.Tuple{}, false, nil
		}

		row, err := reshapeRow(schema, e.columns, t.Values)
		if err != nil {
			return engine.Tuple{}, false, err
		}
		if _, err := e.store.Insert(e.table, row); err != nil {
			return engine.Tuple{}, false, err
		}
		e.affected++
	}
}

// reshapeRow maps VALUES onto the schema column order.
func reshapeRow(schema *catalog.Schema, columns []string, values engine.Row) (engine.Row, error) {
	names := schema.ColumnNames()
	if len(columns) == 0 {
		if len(values) != len(names) {
			return nil, fmt.Errorf("expected %d values, got %d", len(names), len(values))
		}
		return values, nil
	}

	if len(columns) != len(values) {
		return nil, fmt.Errorf("%d columns named but %d values given", len(columns), len(values))
	}
	row := make(engine.Row, len(names))
	for i := range row {
		row[i] = engine.NewNull()
	}
	for i, name := range columns {
		idx, ok := schema.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		row[idx] = values[i]
	}
	return row, nil
}

// updateExec rewrites every tuple its child yields.
type updateExec struct {
	store    TupleStore
	table    string
	set      []parser.Assignment
	child    Executor
	affected int
	done     bool
}

func (e *updateExec) Columns() []string { return nil }
func (e *updateExec) Affected() int     { return e.affected }
func (e *updateExec) Open() error       { e.affected = 0; e.done = false; return e.child.Open() }
func (e *updateExec) Close() error      { return e.child.Close() }

func (e *updateExec) Next() (engine.Tuple, bool, error) {
	if e.done {
		return engine.Tuple{}, false, nil
	}
	e.done = true

	schema, err := e.store.Schema(e.table)
	if err != nil {
		return engine.Tuple{}, false, err
	}
	cols := e.child.Columns()

	for {
		t, ok, err := e.child.Next()
		if err != nil {
			return engine.Tuple{}, false, err
		}
		if !ok {
			return engine.Tuple{}, false, nil
		}

		updated := append(engine.Row(nil), t.Values...)
		for _, assign := range e.set {
			idx, ok := schema.ColumnIndex(assign.Column)
			if !ok {
				return engine.Tuple{}, false, fmt.Errorf("unknown column %q", assign.Column)
			}
			v, err := evalExpr(assign.Value, t.Values, cols)
			if err != nil {
				return engine.Tuple{}, false, err
			}
			updated[idx] = v
		}

		if err := e.store.UpdateTuple(e.table, engine.Tuple{RowID: t.RowID, Values: updated}); err != nil {
			return engine.Tuple{}, false, err
		}
		e.affected++
	}
}

// deleteExec removes every tuple its child yields.
type deleteExec struct {
	store    TupleStore
	table    string
	child    Executor
	affected int
	done     bool
}

func (e *deleteExec) Columns() []string { return nil }
func (e *deleteExec) Affected() int     { return e.affected }
func (e *deleteExec) Open() error       { e.affected = 0; e.done = false; return e.child.Open() }
func (e *deleteExec) Close() error      { return e.child.Close() }

func (e *deleteExec) Next() (engine.Tuple, bool, error) {
	if e.done {
		return engine.Tuple{}, false, nil
	}
	e.done = true

	for {
		t, ok, err := e.child.Next()
		if err != nil {
			return engine.Tuple{}, false, err
		}
		if !ok {
			return engine.Tuple{}, false, nil
		}
		if err := e.store.DeleteTuple(e.table, t.RowID); err != nil {
			return engine.Tuple{}, false, err
		}
		e.affected++
	}
}
