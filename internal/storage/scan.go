package storage

import "fmt"

// Scan visits every record in key order and calls fn with owned
// copies of the key and value. Traversal is a depth-first walk from
// the root: the leftmost child first, then each entry's right child.
func Scan(th *TableHandle, fn func(key, value []byte) error) error {
	if th.rootPage == 0 {
		return nil
	}
	return scanPage(th, th.rootPage, 0, fn)
}

func scanPage(th *TableHandle, pageID uint32, depth int, fn func(key, value []byte) error) error {
	if depth > maxDescentDepth {
		return fmt.Errorf("%w: scan deeper than %d pages", ErrTreeCorrupt, maxDescentDepth)
	}
	if pageID == 0 || pageID >= maxPageID {
		return fmt.Errorf("%w: scan reached invalid page %d", ErrTreeCorrupt, pageID)
	}

	var p Page
	if err := th.readPage(pageID, &p); err != nil {
		return err
	}

	if p.Level() == LevelLeaf {
		for i := uint16(0); i < p.CellCount(); i++ {
			key := append([]byte(nil), slotKey(&p, i)...)
			value := append([]byte(nil), slotValue(&p, i)...)
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	}

	if err := scanPage(th, p.LeftmostChild(), depth+1, fn); err != nil {
		return err
	}
	for i := uint16(0); i < p.CellCount(); i++ {
		if err := scanPage(th, childPage(&p, i), depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
