// Package storage implements the disk-backed storage engine: a
// slotted-page file format, a minimal disk manager, and a B+ tree
// index over variable-length keys and values.
//
// Page layout (PageSize bytes total):
//
//	+--------------------------+ 0
//	| PageHeader (48 bytes)    |
//	+--------------------------+ PageHeaderSize
//	| records, growing upward  |
//	|            ...           |
//	+--------------------------+ freeStart
//	| free space               |
//	+--------------------------+ freeEnd
//	| slot directory (u16[n])  |
//	+--------------------------+ PageSize
//
// Slot i lives at byte offset freeEnd + 2*i and holds the page offset
// of record i. Slots are kept in key order; the directory is always
// contiguous against the top of the page, so
// freeEnd + 2*cellCount == PageSize.
//
// All multibyte header and record fields are little-endian.
package storage

import "encoding/binary"

const (
	// PageSize is the size of every page in bytes. 4 KiB and 8 KiB
	// are the supported configurations; 8 KiB is the default.
	PageSize = 8192

	// PageHeaderSize is the fixed header size, identical for every
	// page kind. Fields past the lsn live in the region the on-disk
	// format reserves for page-kind-specific use.
	PageHeaderSize = 48

	slotSize = 2
)

// Header field offsets.
const (
	offPageID        = 0  // u32
	offParentPageID  = 4  // u32
	offPageType      = 8  // u8
	offPageLevel     = 9  // u8
	offFlags         = 10 // u8
	offCellCount     = 11 // u16
	offFreeStart     = 13 // u16
	offFreeEnd       = 15 // u16
	offLSN           = 17 // u64, reserved for a future WAL
	offRootPage      = 25 // u32, meta page only
	offNextFreePage  = 29 // u32, meta page only
	offLeftmostChild = 33 // u32, internal pages only
)

// PageType indicates what a page stores.
type PageType uint8

const (
	PageTypeMeta PageType = iota + 1
	PageTypeData
	PageTypeIndex
)

// PageLevel distinguishes leaf from internal pages within the tree.
type PageLevel uint8

const (
	LevelLeaf PageLevel = iota + 1
	LevelInternal
)

// Page is an in-memory image of exactly one on-disk page. The zero
// value is not usable; call Init or fill it via DiskManager.ReadPage.
type Page struct {
	data [PageSize]byte
}

// Init zeros the page and writes a fresh header.
func (p *Page) Init(id uint32, pageType PageType, level PageLevel) {
	p.data = [PageSize]byte{}
	p.SetID(id)
	p.data[offPageType] = byte(pageType)
	p.data[offPageLevel] = byte(level)
	p.setFreeStart(PageHeaderSize)
	p.setFreeEnd(PageSize)
}

// Bytes exposes the raw page image for disk I/O.
func (p *Page) Bytes() []byte { return p.data[:] }

func (p *Page) ID() uint32      { return binary.LittleEndian.Uint32(p.data[offPageID:]) }
func (p *Page) SetID(id uint32) { binary.LittleEndian.PutUint32(p.data[offPageID:], id) }

func (p *Page) Parent() uint32 { return binary.LittleEndian.Uint32(p.data[offParentPageID:]) }
func (p *Page) SetParent(id uint32) {
	binary.LittleEndian.PutUint32(p.data[offParentPageID:], id)
}

func (p *Page) Type() PageType   { return PageType(p.data[offPageType]) }
func (p *Page) Level() PageLevel { return PageLevel(p.data[offPageLevel]) }

func (p *Page) CellCount() uint16 { return binary.LittleEndian.Uint16(p.data[offCellCount:]) }
func (p *Page) setCellCount(n uint16) {
	binary.LittleEndian.PutUint16(p.data[offCellCount:], n)
}

func (p *Page) FreeStart() uint16 { return binary.LittleEndian.Uint16(p.data[offFreeStart:]) }
func (p *Page) setFreeStart(v uint16) {
	binary.LittleEndian.PutUint16(p.data[offFreeStart:], v)
}

func (p *Page) FreeEnd() uint16 { return binary.LittleEndian.Uint16(p.data[offFreeEnd:]) }
func (p *Page) setFreeEnd(v uint16) {
	binary.LittleEndian.PutUint16(p.data[offFreeEnd:], v)
}

// RootPage and NextFreePage are meaningful on the META page only.
func (p *Page) RootPage() uint32 { return binary.LittleEndian.Uint32(p.data[offRootPage:]) }
func (p *Page) SetRootPage(id uint32) {
	binary.LittleEndian.PutUint32(p.data[offRootPage:], id)
}

func (p *Page) NextFreePage() uint32 { return binary.LittleEndian.Uint32(p.data[offNextFreePage:]) }
func (p *Page) SetNextFreePage(id uint32) {
	binary.LittleEndian.PutUint32(p.data[offNextFreePage:], id)
}

// LeftmostChild is the child for keys strictly less than the first
// separator of an internal page.
func (p *Page) LeftmostChild() uint32 {
	return binary.LittleEndian.Uint32(p.data[offLeftmostChild:])
}

func (p *Page) SetLeftmostChild(id uint32) {
	binary.LittleEndian.PutUint32(p.data[offLeftmostChild:], id)
}

// FreeSpace is the gap between the record area and the slot directory.
func (p *Page) FreeSpace() uint16 { return p.FreeEnd() - p.FreeStart() }

// CanInsert reports whether a record of recordSize bytes plus its new
// slot entry fits in the page.
func (p *Page) CanInsert(recordSize int) bool {
	return recordSize+slotSize <= int(p.FreeSpace())
}

func (p *Page) slotOffset(index uint16) int {
	return int(p.FreeEnd()) + int(index)*slotSize
}

// Slot returns the record offset held by slot index.
func (p *Page) Slot(index uint16) uint16 {
	return binary.LittleEndian.Uint16(p.data[p.slotOffset(index):])
}

func (p *Page) putSlot(index uint16, offset uint16) {
	binary.LittleEndian.PutUint16(p.data[p.slotOffset(index):], offset)
}

// InsertSlot makes room at position index and stores offset there.
// The directory grows toward lower addresses: slots below the
// insertion point move down by one entry, while slots at or above it
// keep their byte positions and take on index+1.
func (p *Page) InsertSlot(index uint16, offset uint16) {
	oldEnd := int(p.FreeEnd())
	newEnd := oldEnd - slotSize
	copy(p.data[newEnd:newEnd+int(index)*slotSize], p.data[oldEnd:oldEnd+int(index)*slotSize])
	p.setFreeEnd(uint16(newEnd))
	p.putSlot(index, offset)
	p.setCellCount(p.CellCount() + 1)
}

// RemoveSlot deletes slot index. The record bytes it addressed stay in
// the page body; only the directory shrinks.
func (p *Page) RemoveSlot(index uint16) error {
	n := p.CellCount()
	if index >= n {
		return ErrInvalidSlot
	}
	oldEnd := int(p.FreeEnd())
	newEnd := oldEnd + slotSize
	copy(p.data[newEnd:newEnd+int(index)*slotSize], p.data[oldEnd:oldEnd+int(index)*slotSize])
	p.setFreeEnd(uint16(newEnd))
	p.setCellCount(n - 1)
	return nil
}

// checkHeader verifies the space invariants after a mutation. False
// means the header no longer describes a valid page.
func (p *Page) checkHeader() bool {
	fs, fe := int(p.FreeStart()), int(p.FreeEnd())
	if fs < PageHeaderSize || fs > fe || fe > PageSize {
		return false
	}
	return fe+int(p.CellCount())*slotSize == PageSize
}
