package storage

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestCompareKeys(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"abc", "abc", 0},
		{"ab", "abc", -1}, // shorter key sorts first on shared prefix
		{"abd", "abc", 1},
		{"", "a", -1},
	}
	for _, c := range cases {
		if got := compareKeys([]byte(c.a), []byte(c.b)); got != c.want {
			t.Errorf("compareKeys(%q, %q): expected %d, got %d", c.a, c.b, c.want, got)
		}
	}
}

func TestPageInsertSortsRecords(t *testing.T) {
	var p Page
	p.Init(1, PageTypeData, LevelLeaf)

	keys := []string{"delta", "alpha", "echo", "bravo", "charlie"}
	for _, k := range keys {
		if err := pageInsert(&p, []byte(k), []byte("v_"+k)); err != nil {
			t.Fatalf("pageInsert(%q) failed: %v", k, err)
		}
	}

	want := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for i, w := range want {
		if got := string(slotKey(&p, uint16(i))); got != w {
			t.Errorf("slot %d: expected key %q, got %q", i, w, got)
		}
		if got := string(slotValue(&p, uint16(i))); got != "v_"+w {
			t.Errorf("slot %d: expected value %q, got %q", i, "v_"+w, got)
		}
	}
}

func TestSearchRecord(t *testing.T) {
	var p Page
	p.Init(1, PageTypeData, LevelLeaf)

	for _, k := range []string{"b", "d", "f"} {
		if err := pageInsert(&p, []byte(k), []byte("x")); err != nil {
			t.Fatalf("pageInsert failed: %v", err)
		}
	}

	cases := []struct {
		key   string
		found bool
		index uint16
	}{
		{"a", false, 0},
		{"b", true, 0},
		{"c", false, 1},
		{"d", true, 1},
		{"e", false, 2},
		{"f", true, 2},
		{"g", false, 3},
	}
	for _, c := range cases {
		found, index := searchRecord(&p, []byte(c.key))
		if found != c.found || index != c.index {
			t.Errorf("searchRecord(%q): expected (%v, %d), got (%v, %d)",
				c.key, c.found, c.index, found, index)
		}
	}
}

func TestPageInsertKeyTooLarge(t *testing.T) {
	var p Page
	p.Init(1, PageTypeData, LevelLeaf)

	key := bytes.Repeat([]byte("k"), MaxKeySize+1)
	if err := pageInsert(&p, key, []byte("v")); !errors.Is(err, ErrKeyTooLarge) {
		t.Errorf("expected ErrKeyTooLarge, got %v", err)
	}
}

func TestInternalEntryCodec(t *testing.T) {
	var p Page
	p.Init(1, PageTypeIndex, LevelInternal)

	for i, k := range []string{"k10", "k20", "k30"} {
		off := writeInternalEntry(&p, []byte(k), uint32(100+i))
		p.InsertSlot(p.CellCount(), off)
	}

	for i, k := range []string{"k10", "k20", "k30"} {
		if got := string(slotKey(&p, uint16(i))); got != k {
			t.Errorf("entry %d: expected key %q, got %q", i, k, got)
		}
		if got := childPage(&p, uint16(i)); got != uint32(100+i) {
			t.Errorf("entry %d: expected child %d, got %d", i, 100+i, got)
		}
	}
}

func TestRawRecordRoundTrip(t *testing.T) {
	var src, dst Page
	src.Init(1, PageTypeData, LevelLeaf)
	dst.Init(2, PageTypeData, LevelLeaf)

	for i := 0; i < 4; i++ {
		k := fmt.Sprintf("key%d", i)
		if err := pageInsert(&src, []byte(k), []byte("value"+k)); err != nil {
			t.Fatalf("pageInsert failed: %v", err)
		}
	}

	for i := uint16(0); i < src.CellCount(); i++ {
		off := writeRawRecord(&dst, rawRecord(&src, i))
		dst.InsertSlot(dst.CellCount(), off)
	}

	for i := uint16(0); i < src.CellCount(); i++ {
		if !bytes.Equal(slotKey(&src, i), slotKey(&dst, i)) {
			t.Errorf("slot %d: keys differ after raw copy", i)
		}
		if !bytes.Equal(slotValue(&src, i), slotValue(&dst, i)) {
			t.Errorf("slot %d: values differ after raw copy", i)
		}
	}
}
