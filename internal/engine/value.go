// Package engine bridges SQL rows to the B+ tree storage core: typed
// values, the row codec, order-preserving key encoding, and a
// table-store facade over TableHandles.
package engine

import (
	"errors"
	"fmt"

	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
)

// ErrUnsupported marks operations the B+ tree core does not implement
// (in-place update and key deletion).
var ErrUnsupported = errors.New("engine: not supported by the b+ tree storage engine")

// Value is one typed cell of a row.
type Value struct {
	Type   parser.DataType
	IsNull bool
	Int    int64
	Real   float64
	Text   string
	Bool   bool
}

func NewInt(v int64) Value    { return Value{Type: parser.TypeInteger, Int: v} }
func NewReal(v float64) Value { return Value{Type: parser.TypeReal, Real: v} }
func NewText(v string) Value  { return Value{Type: parser.TypeText, Text: v} }
func NewBool(v bool) Value    { return Value{Type: parser.TypeBoolean, Bool: v} }
func NewNull() Value          { return Value{IsNull: true} }

func (v Value) String() string {
	if v.IsNull {
		return "NULL"
	}
	switch v.Type {
	case parser.TypeInteger:
		return fmt.Sprintf("%d", v.Int)
	case parser.TypeReal:
		return fmt.Sprintf("%g", v.Real)
	case parser.TypeText:
		return v.Text
	case parser.TypeBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "?"
	}
}

// Compare orders two values; NULL sorts below everything. Numeric
// values compare across INTEGER and REAL.
func (v Value) Compare(other Value) int {
	switch {
	case v.IsNull && other.IsNull:
		return 0
	case v.IsNull:
		return -1
	case other.IsNull:
		return 1
	}

	if v.isNumeric() && other.isNumeric() {
		a, b := v.asReal(), other.asReal()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}

	switch v.Type {
	case parser.TypeText:
		switch {
		case v.Text < other.Text:
			return -1
		case v.Text > other.Text:
			return 1
		default:
			return 0
		}
	case parser.TypeBoolean:
		switch {
		case !v.Bool && other.Bool:
			return -1
		case v.Bool && !other.Bool:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// Equals is Compare == 0 with NULL never equal to non-NULL.
func (v Value) Equals(other Value) bool {
	if v.IsNull || other.IsNull {
		return v.IsNull && other.IsNull
	}
	return v.Compare(other) == 0
}

func (v Value) isNumeric() bool {
	return v.Type == parser.TypeInteger || v.Type == parser.TypeReal
}

func (v Value) asReal() float64 {
	if v.Type == parser.TypeInteger {
		return float64(v.Int)
	}
	return v.Real
}

// Row is one table row in schema column order.
type Row []Value

// Tuple is a row plus the identity executors need to address it.
// RowID is the engine-assigned key for tables without a primary key;
// for in-memory stores it is a per-table sequence.
type Tuple struct {
	RowID  uint64
	Values Row
}
