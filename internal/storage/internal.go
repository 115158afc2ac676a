package storage

import (
	"fmt"

	"github.com/ItsPalash13/AdvanceDB/internal/logging"
)

// internalFindChild picks the child to descend into for key. The slot
// directory is binary-searched for the first entry key strictly
// greater than key; an exact match therefore descends right, into the
// subtree of keys >= the matched separator. Returns 0 when the page
// holds no valid child for the position.
func internalFindChild(p *Page, key []byte) uint32 {
	lo, hi := 0, int(p.CellCount())
	for lo < hi {
		mid := (lo + hi) / 2
		if compareKeys(key, slotKey(p, uint16(mid))) < 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	pos := lo // first entry with key > search key

	if pos == 0 {
		if leftmost := p.LeftmostChild(); leftmost != 0 && leftmost < maxPageID {
			return leftmost
		}
		// No leftmost child recorded; fall back to the first entry's
		// child rather than aborting the descent.
		if p.CellCount() > 0 {
			if child := childPage(p, 0); child != 0 && child < maxPageID {
				return child
			}
		}
		return 0
	}

	return childPage(p, uint16(pos-1))
}

// insertInternalNoSplit places a separator entry with its right child
// at the sorted position. It reports false when the entry does not
// fit; a separator already present is a structural fault.
func insertInternalNoSplit(p *Page, key []byte, rightChild uint32) (bool, error) {
	if len(key) > MaxKeySize {
		return false, ErrKeyTooLarge
	}
	if !p.CanInsert(internalRecordSize(len(key))) {
		return false, nil
	}

	found, index := searchRecord(p, key)
	if found {
		return false, fmt.Errorf("%w: separator already present in page %d", ErrDuplicateKey, p.ID())
	}

	off := writeInternalEntry(p, key, rightChild)
	p.InsertSlot(index, off)
	return true, nil
}

// splitInternalPage splits a full internal page. The key at the
// midpoint is promoted: it is returned (as an owned copy) for the
// parent and kept in neither half. The promoted key's right child
// becomes the right page's leftmost child, and every child moved to
// the right page gets its parent pointer rewritten.
//
// The right page and the re-parented children are persisted; writing
// the modified left page is the caller's job.
func splitInternalPage(th *TableHandle, p *Page) (uint32, []byte, error) {
	total := p.CellCount()
	if total < 2 {
		return 0, nil, fmt.Errorf("%w: cannot split internal page %d with %d entries", ErrTreeCorrupt, p.ID(), total)
	}

	newID, err := th.AllocatePage()
	if err != nil {
		return 0, nil, err
	}

	var right Page
	right.Init(newID, PageTypeIndex, LevelInternal)
	right.SetParent(p.Parent())

	mid := total / 2
	sep := append([]byte(nil), slotKey(p, mid)...)
	right.SetLeftmostChild(childPage(p, mid))

	var child Page
	for i := mid + 1; i < total; i++ {
		off := writeRawRecord(&right, rawRecord(p, i))
		right.InsertSlot(right.CellCount(), off)
	}

	// Re-parent every child now reachable from the right page,
	// including the new leftmost one.
	for i := uint16(0); i <= right.CellCount(); i++ {
		childID := right.LeftmostChild()
		if i > 0 {
			childID = childPage(&right, i-1)
		}
		if err := th.readPage(childID, &child); err != nil {
			return 0, nil, err
		}
		child.SetParent(newID)
		if err := th.writePage(childID, &child); err != nil {
			return 0, nil, err
		}
	}

	// Rewrite the left page with only the entries it keeps, so the
	// bytes of the moved entries become free space again.
	var kept Page
	kept.Init(p.ID(), p.Type(), p.Level())
	kept.SetParent(p.Parent())
	kept.SetLeftmostChild(p.LeftmostChild())
	for i := uint16(0); i < mid; i++ {
		off := writeRawRecord(&kept, rawRecord(p, i))
		kept.InsertSlot(i, off)
	}
	*p = kept

	if err := th.writePage(newID, &right); err != nil {
		return 0, nil, err
	}

	logging.GetLogger().Debug("split internal", "left", p.ID(), "right", newID)
	return newID, sep, nil
}

// createNewRoot grows the tree by one level: a fresh internal page
// with left as its leftmost child and a single (separator, right)
// entry. The root page is persisted before the meta page learns the
// new root id, and the children's parent pointers are rewritten in
// between.
func createNewRoot(th *TableHandle, left uint32, sep []byte, right uint32) error {
	rootID, err := th.AllocatePage()
	if err != nil {
		return err
	}

	var root Page
	root.Init(rootID, PageTypeIndex, LevelInternal)
	root.SetLeftmostChild(left)
	off := writeInternalEntry(&root, sep, right)
	root.InsertSlot(0, off)
	if err := th.writePage(rootID, &root); err != nil {
		return err
	}

	var child Page
	for _, childID := range [2]uint32{left, right} {
		if err := th.readPage(childID, &child); err != nil {
			return err
		}
		child.SetParent(rootID)
		if err := th.writePage(childID, &child); err != nil {
			return err
		}
	}

	if err := th.setRoot(rootID); err != nil {
		return err
	}

	logging.GetLogger().Debug("new root", "root", rootID, "left", left, "right", right)
	return nil
}

// insertIntoParent records a completed split in the parent of left:
// sep separates left from the freshly created right. Splits propagate
// upward through recursion; a split of the root grows the tree via
// createNewRoot. A parent that is missing or not an internal page is
// treated as lost and recovered by promoting a new root.
func insertIntoParent(th *TableHandle, left uint32, sep []byte, right uint32) error {
	var leftPage Page
	if err := th.readPage(left, &leftPage); err != nil {
		return err
	}

	parentID := leftPage.Parent()
	if parentID == 0 {
		return createNewRoot(th, left, sep, right)
	}

	var parent Page
	if err := th.readPage(parentID, &parent); err != nil {
		return err
	}
	if parent.Level() != LevelInternal || parent.ID() != parentID {
		return createNewRoot(th, left, sep, right)
	}

	// Inserting before every existing separator means left takes over
	// as the leftmost child; sep then separates left from right.
	if _, index := searchRecord(&parent, sep); index == 0 {
		parent.SetLeftmostChild(left)
	}

	fits, err := insertInternalNoSplit(&parent, sep, right)
	if err != nil {
		return err
	}
	if fits {
		return th.writePage(parentID, &parent)
	}

	newID, promoted, err := splitInternalPage(th, &parent)
	if err != nil {
		return err
	}
	if err := th.writePage(parentID, &parent); err != nil {
		return err
	}

	// The pending (sep, right) entry still has to land in whichever
	// half now covers it.
	if compareKeys(sep, promoted) < 0 {
		if _, index := searchRecord(&parent, sep); index == 0 {
			parent.SetLeftmostChild(left)
		}
		fits, err := insertInternalNoSplit(&parent, sep, right)
		if err != nil {
			return err
		}
		if !fits {
			return fmt.Errorf("%w: page %d full after split", ErrTreeCorrupt, parentID)
		}
		if err := th.writePage(parentID, &parent); err != nil {
			return err
		}
	} else {
		var rightHalf Page
		if err := th.readPage(newID, &rightHalf); err != nil {
			return err
		}
		if _, index := searchRecord(&rightHalf, sep); index == 0 {
			rightHalf.SetLeftmostChild(left)
		}
		fits, err := insertInternalNoSplit(&rightHalf, sep, right)
		if err != nil {
			return err
		}
		if !fits {
			return fmt.Errorf("%w: page %d full after split", ErrTreeCorrupt, newID)
		}
		if err := th.writePage(newID, &rightHalf); err != nil {
			return err
		}
		// right now hangs off the right half; it was created pointing
		// at the old parent.
		var moved Page
		if err := th.readPage(right, &moved); err != nil {
			return err
		}
		if moved.Parent() != newID {
			moved.SetParent(newID)
			if err := th.writePage(right, &moved); err != nil {
				return err
			}
		}
	}

	return insertIntoParent(th, parentID, promoted, newID)
}
