package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ItsPalash13/AdvanceDB/internal/logging"
)

// TableHandle owns exclusive access to one table file and caches the
// tree's root page id. Page 0 of the file is the META page; it is the
// sole authority for the root page id and the next free page id.
//
// A handle supports one logical operation at a time. Behavior under
// concurrent use is undefined.
type TableHandle struct {
	name     string
	dm       *DiskManager
	rootPage uint32
	cache    *pageCache
}

// TablePath returns the file backing a table: <dir>/<name>.db.
func TablePath(dir, name string) string {
	return filepath.Join(dir, name+".db")
}

// CreateTable creates the table file and writes a fresh META page with
// no root and page 1 as the next page to hand out.
func CreateTable(dir, name string) error {
	path := TablePath(dir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrTableExists, name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOpenFile, dir, err)
	}

	dm, err := NewDiskManager(path)
	if err != nil {
		return err
	}
	defer dm.Close()

	var meta Page
	meta.Init(0, PageTypeMeta, LevelLeaf)
	meta.SetRootPage(0)
	meta.SetNextFreePage(1)
	if err := dm.WritePage(0, &meta); err != nil {
		return err
	}

	logging.WithTable(name).Debug("created table", "path", path)
	return nil
}

// OpenTable opens an existing table file and populates a handle from
// its META page.
func OpenTable(dir, name string) (*TableHandle, error) {
	path := TablePath(dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	dm, err := NewDiskManager(path)
	if err != nil {
		return nil, err
	}

	var meta Page
	if err := dm.ReadPage(0, &meta); err != nil {
		dm.Close()
		return nil, err
	}
	if meta.Type() != PageTypeMeta {
		dm.Close()
		return nil, fmt.Errorf("%w: %s: page 0 is not a meta page", ErrTreeCorrupt, name)
	}

	cache, err := newPageCache(defaultCacheBytes)
	if err != nil {
		dm.Close()
		return nil, err
	}

	return &TableHandle{
		name:     name,
		dm:       dm,
		rootPage: meta.RootPage(),
		cache:    cache,
	}, nil
}

// Close releases the handle's file and cache.
func (th *TableHandle) Close() error {
	if th.cache != nil {
		th.cache.close()
	}
	return th.dm.Close()
}

// Name returns the table name.
func (th *TableHandle) Name() string { return th.name }

// RootPage returns the cached root page id; 0 means an empty tree.
func (th *TableHandle) RootPage() uint32 { return th.rootPage }

// readPage reads through the page cache.
func (th *TableHandle) readPage(pageID uint32, p *Page) error {
	if th.cache != nil && th.cache.get(pageID, p) {
		return nil
	}
	if err := th.dm.ReadPage(pageID, p); err != nil {
		return err
	}
	if th.cache != nil {
		th.cache.put(pageID, p)
	}
	return nil
}

// writePage persists the page, then refreshes the cache. Disk is
// always at least as new as the cache.
func (th *TableHandle) writePage(pageID uint32, p *Page) error {
	if err := th.dm.WritePage(pageID, p); err != nil {
		return err
	}
	if th.cache != nil {
		th.cache.put(pageID, p)
	}
	return nil
}

// AllocatePage hands out the next free page id and persists the
// incremented counter in the META page. Page ids are dense and never
// reused.
func (th *TableHandle) AllocatePage() (uint32, error) {
	var meta Page
	if err := th.readPage(0, &meta); err != nil {
		return 0, err
	}

	id := meta.NextFreePage()
	if id == 0 {
		// Meta written by an older file; page 0 is never handed out.
		id = 1
	}
	meta.SetNextFreePage(id + 1)
	if err := th.writePage(0, &meta); err != nil {
		return 0, err
	}
	return id, nil
}

// setRoot records a new root page id in the META page and the handle.
// Callers must have already persisted the root page itself.
func (th *TableHandle) setRoot(rootID uint32) error {
	var meta Page
	if err := th.readPage(0, &meta); err != nil {
		return err
	}
	meta.SetRootPage(rootID)
	if err := th.writePage(0, &meta); err != nil {
		return err
	}
	th.rootPage = rootID
	return nil
}
