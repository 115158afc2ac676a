package executor

import (
	"fmt"

	"github.com/ItsPalash13/AdvanceDB/internal/engine"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
)

// evalExpr evaluates an expression against one row. cols names the
// row's columns in order; identifier lookups go through it.
// Comparisons follow SQL three-valued logic: anything compared with
// NULL is NULL, and a NULL predicate does not match.
func evalExpr(expr parser.Expression, row engine.Row, cols []string) (engine.Value, error) {
	switch e := expr.(type) {
	case *parser.IntegerLiteral:
		return engine.NewInt(e.Value), nil
	case *parser.RealLiteral:
		return engine.NewReal(e.Value), nil
	case *parser.StringLiteral:
		return engine.NewText(e.Value), nil
	case *parser.BooleanLiteral:
		return engine.NewBool(e.Value), nil
	case *parser.NullLiteral:
		return engine.NewNull(), nil
	case *parser.Identifier:
		for i, name := range cols {
			if name == e.Name {
				return row[i], nil
			}
		}
		return engine.Value{}, fmt.Errorf("unknown column %q", e.Name)
	case *parser.UnaryExpression:
		return evalUnary(e, row, cols)
	case *parser.BinaryExpression:
		return evalBinary(e, row, cols)
	case *parser.Star:
		return engine.Value{}, fmt.Errorf("* is only valid as a projection")
	default:
		return engine.Value{}, fmt.Errorf("unsupported expression %T", expr)
	}
}

func evalUnary(e *parser.UnaryExpression, row engine.Row, cols []string) (engine.Value, error) {
	operand, err := evalExpr(e.Operand, row, cols)
	if err != nil {
		return engine.Value{}, err
	}
	if operand.IsNull {
		return engine.NewNull(), nil
	}

	switch e.Op {
	case "NOT":
		if operand.Type != parser.TypeBoolean {
			return engine.Value{}, fmt.Errorf("NOT needs a boolean, got %s", operand.Type)
		}
		return engine.NewBool(!operand.Bool), nil
	case "-":
		switch operand.Type {
		case parser.TypeInteger:
			return engine.NewInt(-operand.Int), nil
		case parser.TypeReal:
			return engine.NewReal(-operand.Real), nil
		default:
			return engine.Value{}, fmt.Errorf("cannot negate %s", operand.Type)
		}
	default:
		return engine.Value{}, fmt.Errorf("unknown unary operator %q", e.Op)
	}
}

func evalBinary(e *parser.BinaryExpression, row engine.Row, cols []string) (engine.Value, error) {
	left, err := evalExpr(e.Left, row, cols)
	if err != nil {
		return engine.Value{}, err
	}

	// AND/OR follow three-valued logic around NULL; both operands are
	// always evaluated.
	switch e.Op {
	case "AND", "OR":
		right, err := evalExpr(e.Right, row, cols)
		if err != nil {
			return engine.Value{}, err
		}
		return evalLogical(e.Op, left, right)
	}

	right, err := evalExpr(e.Right, row, cols)
	if err != nil {
		return engine.Value{}, err
	}

	switch e.Op {
	case "=", "<>", "<", "<=", ">", ">=":
		return evalComparison(e.Op, left, right)
	case "+", "-", "*", "/":
		return evalArithmetic(e.Op, left, right)
	default:
		return engine.Value{}, fmt.Errorf("unknown operator %q", e.Op)
	}
}

func evalLogical(op string, left, right engine.Value) (engine.Value, error) {
	toBool := func(v engine.Value) (bool, bool, error) { // value, isNull
		if v.IsNull {
			return false, true, nil
		}
		if v.Type != parser.TypeBoolean {
			return false, false, fmt.Errorf("%s needs booleans, got %s", op, v.Type)
		}
		return v.Bool, false, nil
	}

	l, lNull, err := toBool(left)
	if err != nil {
		return engine.Value{}, err
	}
	r, rNull, err := toBool(right)
	if err != nil {
		return engine.Value{}, err
	}

	if op == "AND" {
		switch {
		case !lNull && !l, !rNull && !r:
			return engine.NewBool(false), nil
		case lNull || rNull:
			return engine.NewNull(), nil
		default:
			return engine.NewBool(true), nil
		}
	}
	// OR
	switch {
	case !lNull && l, !rNull && r:
		return engine.NewBool(true), nil
	case lNull || rNull:
		return engine.NewNull(), nil
	default:
		return engine.NewBool(false), nil
	}
}

func evalComparison(op string, left, right engine.Value) (engine.Value, error) {
	if left.IsNull || right.IsNull {
		return engine.NewNull(), nil
	}
	if !comparable(left, right) {
		return engine.Value{}, fmt.Errorf("cannot compare %s with %s", left.Type, right.Type)
	}

	cmp := left.Compare(right)
	var result bool
	switch op {
	case "=":
		result = cmp == 0
	case "<>":
		result = cmp != 0
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return engine.NewBool(result), nil
}

func comparable(a, b engine.Value) bool {
	if a.Type == b.Type {
		return true
	}
	numeric := func(t parser.DataType) bool { return t == parser.TypeInteger || t == parser.TypeReal }
	return numeric(a.Type) && numeric(b.Type)
}

func evalArithmetic(op string, left, right engine.Value) (engine.Value, error) {
	if left.IsNull || right.IsNull {
		return engine.NewNull(), nil
	}
	numeric := func(v engine.Value) bool {
		return v.Type == parser.TypeInteger || v.Type == parser.TypeReal
	}
	if !numeric(left) || !numeric(right) {
		return engine.Value{}, fmt.Errorf("%q needs numeric operands, got %s and %s", op, left.Type, right.Type)
	}

	if left.Type == parser.TypeInteger && right.Type == parser.TypeInteger {
		a, b := left.Int, right.Int
		switch op {
		case "+":
			return engine.NewInt(a + b), nil
		case "-":
			return engine.NewInt(a - b), nil
		case "*":
			return engine.NewInt(a * b), nil
		case "/":
			if b == 0 {
				return engine.Value{}, fmt.Errorf("division by zero")
			}
			return engine.NewInt(a / b), nil
		}
	}

	a, b := asReal(left), asReal(right)
	switch op {
	case "+":
		return engine.NewReal(a + b), nil
	case "-":
		return engine.NewReal(a - b), nil
	case "*":
		return engine.NewReal(a * b), nil
	case "/":
		if b == 0 {
			return engine.Value{}, fmt.Errorf("division by zero")
		}
		return engine.NewReal(a / b), nil
	}
	return engine.Value{}, fmt.Errorf("unknown arithmetic operator %q", op)
}

func asReal(v engine.Value) float64 {
	if v.Type == parser.TypeInteger {
		return float64(v.Int)
	}
	return v.Real
}

// truthy reports whether a predicate result keeps the row: only a
// non-NULL TRUE does.
func truthy(v engine.Value) bool {
	return !v.IsNull && v.Type == parser.TypeBoolean && v.Bool
}
