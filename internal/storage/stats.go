package storage

import "fmt"

// Stats summarizes the shape of a table's tree.
type Stats struct {
	LeafPages     int    `json:"leaf_pages"`
	InternalPages int    `json:"internal_pages"`
	Records       int    `json:"records"`
	Depth         int    `json:"depth"`
	NextFreePage  uint32 `json:"next_free_page"`
}

// ComputeStats walks the tree and counts pages and records.
func ComputeStats(th *TableHandle) (Stats, error) {
	var meta Page
	if err := th.readPage(0, &meta); err != nil {
		return Stats{}, err
	}
	s := Stats{NextFreePage: meta.NextFreePage()}
	if th.rootPage == 0 {
		return s, nil
	}
	if err := statsPage(th, th.rootPage, 1, &s); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func statsPage(th *TableHandle, pageID uint32, depth int, s *Stats) error {
	if depth > maxDescentDepth {
		return fmt.Errorf("%w: stats walk deeper than %d pages", ErrTreeCorrupt, maxDescentDepth)
	}

	var p Page
	if err := th.readPage(pageID, &p); err != nil {
		return err
	}
	if depth > s.Depth {
		s.Depth = depth
	}

	if p.Level() == LevelLeaf {
		s.LeafPages++
		s.Records += int(p.CellCount())
		return nil
	}

	s.InternalPages++
	if err := statsPage(th, p.LeftmostChild(), depth+1, s); err != nil {
		return err
	}
	for i := uint16(0); i < p.CellCount(); i++ {
		if err := statsPage(th, childPage(&p, i), depth+1, s); err != nil {
			return err
		}
	}
	return nil
}
