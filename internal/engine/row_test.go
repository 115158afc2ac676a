package engine

import (
	"bytes"
	"testing"
)

func TestRowCodecRoundTrip(t *testing.T) {
	row := Row{
		NewInt(-42),
		NewReal(3.25),
		NewText("hello, page"),
		NewBool(true),
		NewNull(),
	}

	decoded, err := DecodeRow(EncodeRow(row))
	if err != nil {
		t.Fatalf("DecodeRow failed: %v", err)
	}
	if len(decoded) != len(row) {
		t.Fatalf("expected %d values, got %d", len(row), len(decoded))
	}
	for i := range row {
		if !decoded[i].Equals(row[i]) && !(row[i].IsNull && decoded[i].IsNull) {
			t.Errorf("value %d: expected %v, got %v", i, row[i], decoded[i])
		}
	}
}

func TestDecodeRowTruncated(t *testing.T) {
	data := EncodeRow(Row{NewText("abcdef")})
	for _, cut := range []int{0, 1, 3, len(data) - 1} {
		if _, err := DecodeRow(data[:cut]); err == nil {
			t.Errorf("DecodeRow of %d/%d bytes: expected an error", cut, len(data))
		}
	}
}

func TestIntegerKeyOrder(t *testing.T) {
	values := []int64{-1 << 62, -100, -1, 0, 1, 7, 100, 1 << 62}

	var prev []byte
	for _, v := range values {
		key, err := EncodeKey(NewInt(v))
		if err != nil {
			t.Fatalf("EncodeKey(%d) failed: %v", v, err)
		}
		if prev != nil && bytes.Compare(prev, key) >= 0 {
			t.Errorf("key for %d does not sort above its predecessor", v)
		}
		prev = key
	}
}

func TestRealKeyOrder(t *testing.T) {
	values := []float64{-1e10, -2.5, -0.0, 1e-9, 2.5, 1e10}

	var prev []byte
	for _, v := range values {
		key, err := EncodeKey(NewReal(v))
		if err != nil {
			t.Fatalf("EncodeKey(%g) failed: %v", v, err)
		}
		if prev != nil && bytes.Compare(prev, key) >= 0 {
			t.Errorf("key for %g does not sort above its predecessor", v)
		}
		prev = key
	}
}

func TestTextKeyOrder(t *testing.T) {
	values := []string{"", "a", "ab", "b", "ba"}

	var prev []byte
	for _, v := range values {
		key, err := EncodeKey(NewText(v))
		if err != nil {
			t.Fatalf("EncodeKey(%q) failed: %v", v, err)
		}
		if prev != nil && bytes.Compare(prev, key) >= 0 {
			t.Errorf("key for %q does not sort above its predecessor", v)
		}
		prev = key
	}
}

func TestNullKeyRejected(t *testing.T) {
	if _, err := EncodeKey(NewNull()); err == nil {
		t.Error("expected an error keying NULL")
	}
}

func TestRowIDKeys(t *testing.T) {
	a := EncodeRowID(1)
	b := EncodeRowID(2)
	if bytes.Compare(a, b) >= 0 {
		t.Error("rowid keys must sort by id")
	}

	id, ok := DecodeRowID(b)
	if !ok || id != 2 {
		t.Errorf("expected rowid 2, got %d (ok=%v)", id, ok)
	}

	typed, err := EncodeKey(NewInt(5))
	if err != nil {
		t.Fatalf("EncodeKey failed: %v", err)
	}
	if _, ok := DecodeRowID(typed); ok {
		t.Error("typed keys must not decode as rowids")
	}
	// Rowid keys sort below every typed key.
	if bytes.Compare(a, typed) >= 0 {
		t.Error("rowid keys must sort below typed keys")
	}
}

func TestValueCompareAcrossNumericTypes(t *testing.T) {
	if NewInt(2).Compare(NewReal(2.5)) != -1 {
		t.Error("2 should compare below 2.5")
	}
	if NewReal(2.0).Compare(NewInt(2)) != 0 {
		t.Error("2.0 should equal 2")
	}
	if !NewNull().Equals(NewNull()) {
		t.Error("NULL equals NULL for codec purposes")
	}
	if NewNull().Equals(NewInt(0)) {
		t.Error("NULL must not equal 0")
	}
}
