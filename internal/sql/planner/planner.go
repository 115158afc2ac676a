// Package planner lowers parsed statements into logical plan trees.
//
// The node set mirrors the execution model: scans produce tuples,
// Filter/Project/Sort reshape the stream, Insert/Update/Delete write
// through it, and Collect materializes the final result.
package planner

import (
	"fmt"

	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
)

// Plan is a logical plan node. Source returns the child node, nil for
// leaves.
type Plan interface {
	planNode()
	Source() Plan
	Describe() string
}

// SeqScan reads every tuple of a table.
type SeqScan struct {
	Table string
}

// Values produces literal rows (the VALUES clause of INSERT).
type Values struct {
	Rows [][]parser.Expression
}

// Filter keeps tuples whose predicate evaluates to true.
type Filter struct {
	Predicate parser.Expression
	Input     Plan
}

// Project evaluates the projection list for each input tuple.
type Project struct {
	Exprs []parser.Expression
	Input Plan
}

// Sort orders the input by its keys.
type Sort struct {
	Keys  []parser.OrderKey
	Input Plan
}

// Insert writes its input rows into a table.
type Insert struct {
	Table   string
	Columns []string
	Input   Plan
}

// Update rewrites matching tuples in place.
type Update struct {
	Table string
	Set   []parser.Assignment
	Input Plan
}

// Delete removes matching tuples.
type Delete struct {
	Table string
	Input Plan
}

// Collect is the materialization barrier at the top of every SELECT:
// it drains its input and optionally truncates to a limit.
type Collect struct {
	Limit int // -1 for no limit
	Input Plan
}

func (*SeqScan) planNode() {}
func (*Values) planNode()  {}
func (*Filter) planNode()  {}
func (*Project) planNode() {}
func (*Sort) planNode()    {}
func (*Insert) planNode()  {}
func (*Update) planNode()  {}
func (*Delete) planNode()  {}
func (*Collect) planNode() {}

func (*SeqScan) Source() Plan   { return nil }
func (*Values) Source() Plan    { return nil }
func (f *Filter) Source() Plan  { return f.Input }
func (p *Project) Source() Plan { return p.Input }
func (s *Sort) Source() Plan    { return s.Input }
func (i *Insert) Source() Plan  { return i.Input }
func (u *Update) Source() Plan  { return u.Input }
func (d *Delete) Source() Plan  { return d.Input }
func (c *Collect) Source() Plan { return c.Input }

func (s *SeqScan) Describe() string { return fmt.Sprintf("SeqScan(%s)", s.Table) }
func (v *Values) Describe() string  { return fmt.Sprintf("Values(%d rows)", len(v.Rows)) }
func (f *Filter) Describe() string  { return fmt.Sprintf("Filter(%s)", f.Predicate) }
func (p *Project) Describe() string { return fmt.Sprintf("Project(%d exprs)", len(p.Exprs)) }
func (s *Sort) Describe() string    { return fmt.Sprintf("Sort(%d keys)", len(s.Keys)) }
func (i *Insert) Describe() string  { return fmt.Sprintf("Insert(%s)", i.Table) }
func (u *Update) Describe() string  { return fmt.Sprintf("Update(%s)", u.Table) }
func (d *Delete) Describe() string  { return fmt.Sprintf("Delete(%s)", d.Table) }
func (c *Collect) Describe() string {
	if c.Limit >= 0 {
		return fmt.Sprintf("Collect(limit %d)", c.Limit)
	}
	return "Collect"
}

// BuildPlan turns a parsed statement into a plan tree. CREATE TABLE is
// DDL and has no plan; callers dispatch it before planning.
func BuildPlan(stmt parser.Statement) (Plan, error) {
	switch s := stmt.(type) {
	case *parser.SelectStatement:
		return buildSelect(s), nil
	case *parser.InsertStatement:
		return &Insert{
			Table:   s.Table,
			Columns: s.Columns,
			Input:   &Values{Rows: s.Rows},
		}, nil
	case *parser.UpdateStatement:
		var input Plan = &SeqScan{Table: s.Table}
		if s.Where != nil {
			input = &Filter{Predicate: s.Where, Input: input}
		}
		return &Update{Table: s.Table, Set: s.Set, Input: input}, nil
	case *parser.DeleteStatement:
		var input Plan = &SeqScan{Table: s.Table}
		if s.Where != nil {
			input = &Filter{Predicate: s.Where, Input: input}
		}
		return &Delete{Table: s.Table, Input: input}, nil
	case *parser.CreateTableStatement:
		return nil, fmt.Errorf("planner: CREATE TABLE is executed directly, not planned")
	default:
		return nil, fmt.Errorf("planner: unsupported statement %T", stmt)
	}
}

func buildSelect(s *parser.SelectStatement) Plan {
	var plan Plan = &SeqScan{Table: s.Table}
	if s.Where != nil {
		plan = &Filter{Predicate: s.Where, Input: plan}
	}
	if len(s.OrderBy) > 0 {
		plan = &Sort{Keys: s.OrderBy, Input: plan}
	}
	plan = &Project{Exprs: s.Columns, Input: plan}
	return &Collect{Limit: s.Limit, Input: plan}
}

// Explain renders the plan tree one node per line, children indented.
func Explain(p Plan) string {
	out := ""
	for depth := 0; p != nil; depth++ {
		for i := 0; i < depth; i++ {
			out += "  "
		}
		out += p.Describe() + "\n"
		p = p.Source()
	}
	return out
}
