package executor

import (
	"strings"
	"testing"

	"github.com/ItsPalash13/AdvanceDB/internal/engine"
)

// newTestSession returns a session over the in-memory toy store with
// a users table preloaded.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(NewMemStore())

	mustExec(t, s, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER, active BOOLEAN)")
	mustExec(t, s, "INSERT INTO users VALUES (1, 'ada', 36, TRUE)")
	mustExec(t, s, "INSERT INTO users VALUES (2, 'grace', 45, TRUE)")
	mustExec(t, s, "INSERT INTO users VALUES (3, 'alan', 41, FALSE)")
	return s
}

func mustExec(t *testing.T, s *Session, sql string) *Result {
	t.Helper()
	result, err := s.Execute(sql)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", sql, err)
	}
	return result
}

func names(result *Result) []string {
	var out []string
	for _, row := range result.Rows {
		out = append(out, row[1].Text)
	}
	return out
}

func TestSelectStar(t *testing.T) {
	s := newTestSession(t)

	result := mustExec(t, s, "SELECT * FROM users")
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}
	want := []string{"id", "name", "age", "active"}
	if len(result.Columns) != len(want) {
		t.Fatalf("expected columns %v, got %v", want, result.Columns)
	}
	for i, w := range want {
		if result.Columns[i] != w {
			t.Errorf("column %d: expected %q, got %q", i, w, result.Columns[i])
		}
	}
}

func TestSelectWhere(t *testing.T) {
	s := newTestSession(t)

	result := mustExec(t, s, "SELECT * FROM users WHERE age > 40 AND active = TRUE")
	if len(result.Rows) != 1 || result.Rows[0][1].Text != "grace" {
		t.Errorf("expected just grace, got %v", names(result))
	}

	result = mustExec(t, s, "SELECT * FROM users WHERE age > 100")
	if len(result.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(result.Rows))
	}
}

func TestSelectOrderByAndLimit(t *testing.T) {
	s := newTestSession(t)

	result := mustExec(t, s, "SELECT * FROM users ORDER BY age DESC")
	got := names(result)
	want := []string{"grace", "alan", "ada"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	result = mustExec(t, s, "SELECT * FROM users ORDER BY age DESC LIMIT 1")
	if len(result.Rows) != 1 || result.Rows[0][1].Text != "grace" {
		t.Errorf("expected only grace, got %v", names(result))
	}
}

func TestProjectionExpressions(t *testing.T) {
	s := newTestSession(t)

	result := mustExec(t, s, "SELECT name, age + 1 FROM users WHERE id = 1")
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row[0].Text != "ada" || row[1].Int != 37 {
		t.Errorf("unexpected projection result: %v", row)
	}
	if result.Columns[0] != "name" {
		t.Errorf("expected column name, got %q", result.Columns[0])
	}
}

func TestInsertWithColumnList(t *testing.T) {
	s := newTestSession(t)

	result := mustExec(t, s, "INSERT INTO users (id, name) VALUES (4, 'edsger')")
	if result.Affected != 1 {
		t.Errorf("expected 1 row inserted, got %d", result.Affected)
	}

	rows := mustExec(t, s, "SELECT * FROM users WHERE id = 4")
	if len(rows.Rows) != 1 {
		t.Fatalf("expected the inserted row back, got %d rows", len(rows.Rows))
	}
	if !rows.Rows[0][2].IsNull || !rows.Rows[0][3].IsNull {
		t.Error("unnamed columns should be NULL")
	}
}

func TestUpdate(t *testing.T) {
	s := newTestSession(t)

	result := mustExec(t, s, "UPDATE users SET age = age + 1 WHERE active = TRUE")
	if result.Affected != 2 {
		t.Fatalf("expected 2 rows updated, got %d", result.Affected)
	}

	rows := mustExec(t, s, "SELECT * FROM users WHERE id = 1")
	if rows.Rows[0][2].Int != 37 {
		t.Errorf("expected ada's age 37, got %v", rows.Rows[0][2])
	}
	rows = mustExec(t, s, "SELECT * FROM users WHERE id = 3")
	if rows.Rows[0][2].Int != 41 {
		t.Errorf("alan should be untouched, got %v", rows.Rows[0][2])
	}
}

func TestDelete(t *testing.T) {
	s := newTestSession(t)

	result := mustExec(t, s, "DELETE FROM users WHERE active = FALSE")
	if result.Affected != 1 {
		t.Fatalf("expected 1 row deleted, got %d", result.Affected)
	}
	rows := mustExec(t, s, "SELECT * FROM users")
	if len(rows.Rows) != 2 {
		t.Errorf("expected 2 remaining rows, got %d", len(rows.Rows))
	}

	result = mustExec(t, s, "DELETE FROM users")
	if result.Affected != 2 {
		t.Errorf("expected 2 rows deleted, got %d", result.Affected)
	}
}

func TestNullComparisonsDoNotMatch(t *testing.T) {
	s := newTestSession(t)
	mustExec(t, s, "INSERT INTO users (id) VALUES (9)")

	// name IS NULL for row 9; = NULL is never TRUE.
	result := mustExec(t, s, "SELECT * FROM users WHERE name = NULL")
	if len(result.Rows) != 0 {
		t.Errorf("= NULL must match nothing, got %d rows", len(result.Rows))
	}

	result = mustExec(t, s, "SELECT * FROM users WHERE NOT (age > 0)")
	if len(result.Rows) != 0 {
		t.Errorf("NOT over NULL must not match, got %d rows", len(result.Rows))
	}
}

func TestSortNullsFirst(t *testing.T) {
	s := newTestSession(t)
	mustExec(t, s, "INSERT INTO users (id) VALUES (9)")

	result := mustExec(t, s, "SELECT * FROM users ORDER BY age")
	if !result.Rows[0][2].IsNull {
		t.Error("NULL should sort below every value")
	}
}

func TestErrors(t *testing.T) {
	s := newTestSession(t)

	cases := []string{
		"SELECT * FROM missing",
		"SELECT nope FROM users",
		"INSERT INTO users VALUES (1)",
		"INSERT INTO users (wibble) VALUES (1)",
		"UPDATE users SET wibble = 1",
		"SELECT * FROM users WHERE name > 5",
	}
	for _, sql := range cases {
		if _, err := s.Execute(sql); err == nil {
			t.Errorf("Execute(%q): expected an error", sql)
		}
	}
}

func TestCreateTableValidation(t *testing.T) {
	s := NewSession(NewMemStore())

	if _, err := s.Execute("CREATE TABLE t (a INTEGER, a TEXT)"); err == nil {
		t.Error("expected duplicate-column error")
	}
	if _, err := s.Execute("CREATE TABLE t (a INTEGER PRIMARY KEY, b INTEGER PRIMARY KEY)"); err == nil {
		t.Error("expected multiple-primary-key error")
	}
	mustExec(t, s, "CREATE TABLE t (a INTEGER)")
	if _, err := s.Execute("CREATE TABLE t (a INTEGER)"); err == nil {
		t.Error("expected duplicate-table error")
	}
}

func TestFormatResult(t *testing.T) {
	r := &Result{
		Columns: []string{"id", "name"},
		Rows: []engine.Row{
			{engine.NewInt(1), engine.NewText("ada")},
		},
	}
	out := FormatResult(r)
	for _, want := range []string{"id", "name", "ada", "(1 row)"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted result missing %q:\n%s", want, out)
		}
	}
}
