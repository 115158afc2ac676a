package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/ItsPalash13/AdvanceDB/internal/logging"
)

// DiskManager presents one file as an array of fixed-size pages.
// Every successful WritePage is durable before it returns.
type DiskManager struct {
	file *os.File
	path string
}

// NewDiskManager opens or creates the database file in read/write
// mode.
func NewDiskManager(path string) (*DiskManager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFile, path, err)
	}
	return &DiskManager{file: file, path: path}, nil
}

// Path returns the backing file path.
func (dm *DiskManager) Path() string { return dm.path }

// Size returns the current file length in bytes.
func (dm *DiskManager) Size() (int64, error) {
	stat, err := dm.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrReadPage, dm.path, err)
	}
	return stat.Size(), nil
}

// ReadPage fills p with the page image at pageID. Reading past the
// current end of file yields zero bytes for the missing tail; that is
// how a just-allocated page appears before its first write.
func (dm *DiskManager) ReadPage(pageID uint32, p *Page) error {
	offset := int64(pageID) * PageSize
	n, err := dm.file.ReadAt(p.data[:], offset)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: page %d: %v", ErrReadPage, pageID, err)
	}
	// Zero the tail on a short read. p may hold a previous page image.
	for i := n; i < PageSize; i++ {
		p.data[i] = 0
	}
	logging.GetLogger().Debug("read page", "page_id", pageID, "bytes", n)
	return nil
}

// WritePage writes the page image at pageID, extending the file first
// if it ends before the page, and forces the write to durable storage
// before returning.
func (dm *DiskManager) WritePage(pageID uint32, p *Page) error {
	offset := int64(pageID) * PageSize
	required := offset + PageSize

	size, err := dm.Size()
	if err != nil {
		return err
	}
	if size < required {
		// Extend by writing a zero byte at the final position.
		if _, err := dm.file.WriteAt([]byte{0}, required-1); err != nil {
			return fmt.Errorf("%w: extend to page %d: %v", ErrWritePage, pageID, err)
		}
		if err := dm.Flush(); err != nil {
			return err
		}
	}

	n, err := dm.file.WriteAt(p.data[:], offset)
	if err != nil {
		return fmt.Errorf("%w: page %d: %v", ErrWritePage, pageID, err)
	}
	if n != PageSize {
		return fmt.Errorf("%w: page %d: short write of %d bytes", ErrWritePage, pageID, n)
	}
	if err := dm.Flush(); err != nil {
		return err
	}
	logging.GetLogger().Debug("wrote page", "page_id", pageID)
	return nil
}

// Flush forces buffered writes to durable storage.
func (dm *DiskManager) Flush() error {
	if err := dm.file.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSync, dm.path, err)
	}
	return nil
}

// Close releases the file handle.
func (dm *DiskManager) Close() error {
	return dm.file.Close()
}
