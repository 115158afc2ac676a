package storage

import (
	"fmt"

	"github.com/ItsPalash13/AdvanceDB/internal/logging"
)

const (
	// maxPageID is the sanity bound on page ids seen during descent.
	maxPageID = 1_000_000

	// maxDescentDepth bounds root-to-leaf descent; deeper means a
	// parent-pointer cycle.
	maxDescentDepth = 100
)

// findLeafPage descends from the root to the leaf whose key range
// contains key, leaving the leaf image in p.
func findLeafPage(th *TableHandle, key []byte, p *Page) (uint32, error) {
	pageID := th.rootPage

	for depth := 0; ; depth++ {
		if depth > maxDescentDepth {
			return 0, fmt.Errorf("%w: descent deeper than %d pages", ErrTreeCorrupt, maxDescentDepth)
		}
		if err := th.readPage(pageID, p); err != nil {
			return 0, err
		}
		if p.Level() == LevelLeaf {
			return pageID, nil
		}

		next := internalFindChild(p, key)
		if next == 0 || next >= maxPageID {
			return 0, fmt.Errorf("%w: page %d points at invalid child %d", ErrTreeCorrupt, pageID, next)
		}
		pageID = next
	}
}

// insertLeafNoSplit writes the record into the leaf if it fits and
// persists the page. It reports false, leaving the page untouched,
// when the record does not fit.
func insertLeafNoSplit(th *TableHandle, pageID uint32, p *Page, key, value []byte) (bool, error) {
	if !p.CanInsert(leafRecordSize(len(key), len(value))) {
		return false, nil
	}
	if err := pageInsert(p, key, value); err != nil {
		return false, err
	}
	if !p.checkHeader() {
		return false, fmt.Errorf("%w: page %d header invalid after insert", ErrTreeCorrupt, pageID)
	}
	return true, th.writePage(pageID, p)
}

// splitLeafPage moves the upper half of p's records into a freshly
// allocated right sibling and returns the new page id and an owned
// copy of the separator key (the right page's first key; the left
// page's first key when the right page ends up empty, which only
// happens when the caller is about to relocate a single oversized
// record).
//
// The right page is persisted; writing the modified left page is the
// caller's job.
func splitLeafPage(th *TableHandle, p *Page) (uint32, []byte, error) {
	if !p.checkHeader() {
		return 0, nil, fmt.Errorf("%w: refusing to split invalid page %d", ErrTreeCorrupt, p.ID())
	}

	// A single-record page still splits into a valid (empty) right
	// page; the caller then relocates the record (oversized case).
	total := p.CellCount()
	if total == 0 {
		return 0, nil, fmt.Errorf("%w: cannot split empty page %d", ErrTreeCorrupt, p.ID())
	}

	newID, err := th.AllocatePage()
	if err != nil {
		return 0, nil, err
	}

	var right Page
	right.Init(newID, PageTypeData, LevelLeaf)
	right.SetParent(p.Parent())

	splitIndex := total / 2
	if splitIndex == 0 {
		splitIndex = 1 // left keeps at least one record
	}

	for i := splitIndex; i < total; i++ {
		off := writeRawRecord(&right, rawRecord(p, i))
		right.InsertSlot(right.CellCount(), off)
	}

	// Rewrite the left page with only the records it keeps, so the
	// bytes of the moved records become free space again.
	var kept Page
	kept.Init(p.ID(), p.Type(), p.Level())
	kept.SetParent(p.Parent())
	for i := uint16(0); i < splitIndex; i++ {
		off := writeRawRecord(&kept, rawRecord(p, i))
		kept.InsertSlot(i, off)
	}
	*p = kept

	var sep []byte
	if right.CellCount() > 0 {
		sep = append(sep, slotKey(&right, 0)...)
	} else {
		sep = append(sep, slotKey(p, 0)...)
	}

	if err := th.writePage(newID, &right); err != nil {
		return 0, nil, err
	}

	logging.GetLogger().Debug("split leaf", "left", p.ID(), "right", newID, "moved", total-splitIndex)
	return newID, sep, nil
}
