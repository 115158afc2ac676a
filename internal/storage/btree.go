package storage

import "fmt"

// Search looks key up in the table's tree. The returned value is an
// owned copy, safe to keep across later engine calls.
func Search(th *TableHandle, key []byte) ([]byte, bool, error) {
	if len(key) > MaxKeySize {
		return nil, false, ErrKeyTooLarge
	}
	if th.rootPage == 0 {
		return nil, false, nil
	}

	var leaf Page
	if _, err := findLeafPage(th, key, &leaf); err != nil {
		return nil, false, err
	}

	found, index := searchRecord(&leaf, key)
	if !found {
		return nil, false, nil
	}
	return append([]byte(nil), slotValue(&leaf, index)...), true, nil
}

// Insert adds (key, value) to the tree, splitting pages as needed.
// It returns false, with no error and no page modified, when the key
// is already present.
func Insert(th *TableHandle, key, value []byte) (bool, error) {
	if len(key) > MaxKeySize {
		return false, ErrKeyTooLarge
	}
	if leafRecordSize(len(key), len(value))+slotSize > PageSize-PageHeaderSize {
		return false, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, leafRecordSize(len(key), len(value)))
	}

	// First insert into an empty tree creates the root leaf.
	if th.rootPage == 0 {
		rootID, err := th.AllocatePage()
		if err != nil {
			return false, err
		}
		var root Page
		root.Init(rootID, PageTypeData, LevelLeaf)
		if err := pageInsert(&root, key, value); err != nil {
			return false, err
		}
		if err := th.writePage(rootID, &root); err != nil {
			return false, err
		}
		return true, th.setRoot(rootID)
	}

	var leaf Page
	leafID, err := findLeafPage(th, key, &leaf)
	if err != nil {
		return false, err
	}

	if found, _ := searchRecord(&leaf, key); found {
		return false, nil
	}

	if ok, err := insertLeafNoSplit(th, leafID, &leaf, key, value); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}

	// The record does not fit: split, place the record in the half
	// that covers it, then tell the parent about the new sibling.
	newID, sep, err := splitLeafPage(th, &leaf)
	if err != nil {
		return false, err
	}
	if err := th.writePage(leafID, &leaf); err != nil {
		return false, err
	}

	var right Page
	if err := th.readPage(newID, &right); err != nil {
		return false, err
	}

	if compareKeys(key, sep) < 0 {
		if !leaf.CanInsert(leafRecordSize(len(key), len(value))) {
			return insertAfterOversizedMove(th, leafID, &leaf, newID, &right, key, value)
		}
		if err := pageInsert(&leaf, key, value); err != nil {
			return false, err
		}
		if err := th.writePage(leafID, &leaf); err != nil {
			return false, err
		}
	} else {
		if !right.CanInsert(leafRecordSize(len(key), len(value))) {
			return false, fmt.Errorf("%w: right page %d full after split", ErrTreeCorrupt, newID)
		}
		if err := pageInsert(&right, key, value); err != nil {
			return false, err
		}
		if err := th.writePage(newID, &right); err != nil {
			return false, err
		}
		// The separator must not exceed the right page's first key.
		// Normally they are already equal; when the split produced an
		// empty right page (single oversized record on the left), the
		// record just inserted is that first key.
		sep = append(sep[:0], slotKey(&right, 0)...)
	}

	return true, insertIntoParent(th, leafID, sep, newID)
}

// insertAfterOversizedMove handles the one layout a plain split cannot:
// the leaf holds a single record so large that, even alone, it leaves
// no room for the incoming one. The big record moves to the (empty)
// right page, the new record lands on the left, and the big record's
// key becomes the separator.
func insertAfterOversizedMove(th *TableHandle, leafID uint32, leaf *Page, newID uint32, right *Page, key, value []byte) (bool, error) {
	if right.CellCount() != 0 || leaf.CellCount() != 1 {
		return false, fmt.Errorf("%w: leaf %d has no room after split", ErrTreeCorrupt, leafID)
	}

	rec := append([]byte(nil), rawRecord(leaf, 0)...)
	sep := append([]byte(nil), slotKey(leaf, 0)...)

	if err := leaf.RemoveSlot(0); err != nil {
		return false, err
	}
	off := writeRawRecord(right, rec)
	right.InsertSlot(0, off)

	if err := th.writePage(leafID, leaf); err != nil {
		return false, err
	}
	if err := th.writePage(newID, right); err != nil {
		return false, err
	}

	// The big record's bytes stay behind on the left as dead space, so
	// the freed slot alone must make the new record fit.
	if !leaf.CanInsert(leafRecordSize(len(key), len(value))) {
		return false, fmt.Errorf("%w: leaf %d still has no room after moving its record", ErrTreeCorrupt, leafID)
	}
	if err := pageInsert(leaf, key, value); err != nil {
		return false, err
	}
	if err := th.writePage(leafID, leaf); err != nil {
		return false, err
	}

	return true, insertIntoParent(th, leafID, sep, newID)
}
