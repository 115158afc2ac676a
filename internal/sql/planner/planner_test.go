package planner

import (
	"strings"
	"testing"

	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
)

func plan(t *testing.T, sql string) Plan {
	t.Helper()
	stmt, err := parser.Parse(sql)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", sql, err)
	}
	p, err := BuildPlan(stmt)
	if err != nil {
		t.Fatalf("BuildPlan(%q) failed: %v", sql, err)
	}
	return p
}

// nodeChain walks Source pointers and returns the node shapes.
func nodeChain(p Plan) []string {
	var chain []string
	for ; p != nil; p = p.Source() {
		switch p.(type) {
		case *SeqScan:
			chain = append(chain, "SeqScan")
		case *Values:
			chain = append(chain, "Values")
		case *Filter:
			chain = append(chain, "Filter")
		case *Project:
			chain = append(chain, "Project")
		case *Sort:
			chain = append(chain, "Sort")
		case *Insert:
			chain = append(chain, "Insert")
		case *Update:
			chain = append(chain, "Update")
		case *Delete:
			chain = append(chain, "Delete")
		case *Collect:
			chain = append(chain, "Collect")
		}
	}
	return chain
}

func assertChain(t *testing.T, sql string, want ...string) {
	t.Helper()
	got := nodeChain(plan(t, sql))
	if len(got) != len(want) {
		t.Fatalf("%q: expected chain %v, got %v", sql, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: expected chain %v, got %v", sql, want, got)
		}
	}
}

func TestSelectPlans(t *testing.T) {
	assertChain(t, "SELECT * FROM t",
		"Collect", "Project", "SeqScan")
	assertChain(t, "SELECT * FROM t WHERE a = 1",
		"Collect", "Project", "Filter", "SeqScan")
	assertChain(t, "SELECT a FROM t WHERE a = 1 ORDER BY a",
		"Collect", "Project", "Sort", "Filter", "SeqScan")
}

func TestInsertPlan(t *testing.T) {
	assertChain(t, "INSERT INTO t VALUES (1)", "Insert", "Values")

	p := plan(t, "INSERT INTO t (a, b) VALUES (1, 2)").(*Insert)
	if p.Table != "t" || len(p.Columns) != 2 {
		t.Errorf("unexpected insert node: %+v", p)
	}
	if v, ok := p.Input.(*Values); !ok || len(v.Rows) != 1 {
		t.Errorf("expected a 1-row Values input, got %v", p.Input)
	}
}

func TestUpdateDeletePlans(t *testing.T) {
	assertChain(t, "UPDATE t SET a = 1 WHERE b = 2", "Update", "Filter", "SeqScan")
	assertChain(t, "UPDATE t SET a = 1", "Update", "SeqScan")
	assertChain(t, "DELETE FROM t WHERE b = 2", "Delete", "Filter", "SeqScan")
	assertChain(t, "DELETE FROM t", "Delete", "SeqScan")
}

func TestCollectCarriesLimit(t *testing.T) {
	c := plan(t, "SELECT * FROM t LIMIT 5").(*Collect)
	if c.Limit != 5 {
		t.Errorf("expected limit 5, got %d", c.Limit)
	}
	c = plan(t, "SELECT * FROM t").(*Collect)
	if c.Limit != -1 {
		t.Errorf("expected no limit, got %d", c.Limit)
	}
}

func TestCreateTableIsNotPlanned(t *testing.T) {
	stmt, err := parser.Parse("CREATE TABLE t (id INTEGER)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := BuildPlan(stmt); err == nil {
		t.Error("expected BuildPlan to reject DDL")
	}
}

func TestExplain(t *testing.T) {
	out := Explain(plan(t, "SELECT a FROM t WHERE a = 1 ORDER BY a LIMIT 3"))
	for _, want := range []string{"Collect(limit 3)", "Project", "Sort", "Filter", "SeqScan(t)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Explain output missing %q:\n%s", want, out)
		}
	}
}
