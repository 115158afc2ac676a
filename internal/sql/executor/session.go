package executor

import (
	"fmt"
	"strings"

	"github.com/ItsPalash13/AdvanceDB/internal/catalog"
	"github.com/ItsPalash13/AdvanceDB/internal/engine"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/planner"
)

// Result is the outcome of one statement.
type Result struct {
	Columns  []string
	Rows     []engine.Row
	Affected int
	Message  string
}

// Session parses, plans, and executes SQL statements against one
// store. It holds no state between statements beyond the store.
type Session struct {
	store TupleStore
}

// NewSession wraps a store.
func NewSession(store TupleStore) *Session {
	return &Session{store: store}
}

// Store returns the session's backing store.
func (s *Session) Store() TupleStore { return s.store }

// Execute runs one SQL statement.
func (s *Session) Execute(sql string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}

	// DDL executes directly; everything else goes through a plan.
	if create, ok := stmt.(*parser.CreateTableStatement); ok {
		return s.executeCreate(create)
	}

	plan, err := planner.BuildPlan(stmt)
	if err != nil {
		return nil, err
	}

	exec, err := Build(plan, s.store)
	if err != nil {
		return nil, err
	}
	if err := exec.Open(); err != nil {
		return nil, err
	}
	defer exec.Close()

	result := &Result{}
	for {
		t, ok, err := exec.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		result.Rows = append(result.Rows, t.Values)
	}
	result.Columns = exec.Columns()

	if reporter, ok := exec.(affectedReporter); ok {
		result.Affected = reporter.Affected()
		result.Message = dmlMessage(stmt, result.Affected)
	}
	return result, nil
}

// Explain renders the plan for a statement without running it.
func (s *Session) Explain(sql string) (string, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return "", err
	}
	if _, ok := stmt.(*parser.CreateTableStatement); ok {
		return "CreateTable\n", nil
	}
	plan, err := planner.BuildPlan(stmt)
	if err != nil {
		return "", err
	}
	return planner.Explain(plan), nil
}

func (s *Session) executeCreate(stmt *parser.CreateTableStatement) (*Result, error) {
	seen := make(map[string]bool)
	pkCount := 0
	for _, col := range stmt.Columns {
		if seen[col.Name] {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		seen[col.Name] = true
		if col.PrimaryKey {
			pkCount++
		}
	}
	if pkCount > 1 {
		return nil, fmt.Errorf("at most one PRIMARY KEY column is supported")
	}

	if err := s.store.CreateTable(stmt.Table, catalog.NewSchema(stmt.Columns)); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("table %s created", stmt.Table)}, nil
}

func dmlMessage(stmt parser.Statement, affected int) string {
	verb := "affected"
	switch stmt.(type) {
	case *parser.InsertStatement:
		verb = "inserted"
	case *parser.UpdateStatement:
		verb = "updated"
	case *parser.DeleteStatement:
		verb = "deleted"
	}
	plural := "s"
	if affected == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d row%s %s", affected, plural, verb)
}

// FormatResult renders a result as an aligned text table for the REPL.
func FormatResult(r *Result) string {
	if len(r.Columns) == 0 {
		return r.Message
	}

	widths := make([]int, len(r.Columns))
	for i, c := range r.Columns {
		widths[i] = len(c)
	}
	cells := make([][]string, len(r.Rows))
	for ri, row := range r.Rows {
		cells[ri] = make([]string, len(row))
		for ci, v := range row {
			cells[ri][ci] = v.String()
			if ci < len(widths) && len(cells[ri][ci]) > widths[ci] {
				widths[ci] = len(cells[ri][ci])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(f)
			for pad := len(f); pad < widths[i]; pad++ {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}

	writeRow(r.Columns)
	rules := make([]string, len(r.Columns))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}
	writeRow(rules)
	for _, row := range cells {
		writeRow(row)
	}
	fmt.Fprintf(&sb, "(%d row", len(r.Rows))
	if len(r.Rows) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(")")
	return sb.String()
}
