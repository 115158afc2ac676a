package storage

import (
	"bytes"
	"encoding/binary"
)

// On-page encodings.
//
// Leaf record:     keySize u16 | valueSize u16 | flags u8 | key | value
// Internal entry:  keySize u16 | childPage u32            | key
//
// An internal entry's child is the RIGHT child of its key: the subtree
// holding keys >= the entry key. The child for keys below the first
// entry is the page header's leftmost-child field.
const (
	recordHeaderSize  = 5
	internalEntrySize = 6

	// MaxKeySize bounds key length.
	MaxKeySize = 255
)

func leafRecordSize(keyLen, valueLen int) int {
	return recordHeaderSize + keyLen + valueLen
}

func internalRecordSize(keyLen int) int {
	return internalEntrySize + keyLen
}

// compareKeys orders keys by unsigned lexicographic byte comparison;
// on a shared prefix the shorter key sorts first.
func compareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}

// slotKey returns the key addressed by slot index. The returned slice
// aliases the page buffer and is valid only until the page mutates.
func slotKey(p *Page, index uint16) []byte {
	off := int(p.Slot(index))
	keyLen := int(binary.LittleEndian.Uint16(p.data[off:]))
	start := off + recordHeaderSize
	if p.Level() == LevelInternal {
		start = off + internalEntrySize
	}
	return p.data[start : start+keyLen]
}

// slotValue returns the value of the leaf record at slot index,
// aliasing the page buffer.
func slotValue(p *Page, index uint16) []byte {
	off := int(p.Slot(index))
	keyLen := int(binary.LittleEndian.Uint16(p.data[off:]))
	valLen := int(binary.LittleEndian.Uint16(p.data[off+2:]))
	start := off + recordHeaderSize + keyLen
	return p.data[start : start+valLen]
}

// childPage returns the right-child page id of the internal entry at
// slot index.
func childPage(p *Page, index uint16) uint32 {
	off := int(p.Slot(index))
	return binary.LittleEndian.Uint32(p.data[off+2:])
}

// searchRecord binary-searches the slot directory. index is the first
// position whose key is >= the search key, i.e. the insertion point
// when found is false.
func searchRecord(p *Page, key []byte) (found bool, index uint16) {
	lo, hi := 0, int(p.CellCount())
	for lo < hi {
		mid := (lo + hi) / 2
		cmp := compareKeys(slotKey(p, uint16(mid)), key)
		if cmp < 0 {
			lo = mid + 1
		} else {
			if cmp == 0 {
				found = true
			}
			hi = mid
		}
	}
	return found, uint16(lo)
}

// pageInsert appends a leaf record at freeStart and links a slot at
// its sorted position. The caller must have checked CanInsert.
func pageInsert(p *Page, key, value []byte) error {
	if len(key) > MaxKeySize {
		return ErrKeyTooLarge
	}

	_, index := searchRecord(p, key)

	off := p.FreeStart()
	buf := p.data[off:]
	binary.LittleEndian.PutUint16(buf, uint16(len(key)))
	binary.LittleEndian.PutUint16(buf[2:], uint16(len(value)))
	buf[4] = 0 // record flags
	copy(buf[recordHeaderSize:], key)
	copy(buf[recordHeaderSize+len(key):], value)

	p.setFreeStart(off + uint16(leafRecordSize(len(key), len(value))))
	p.InsertSlot(index, off)
	return nil
}

// writeRawRecord appends pre-encoded record bytes (leaf record or
// internal entry, header included) at freeStart and returns the
// offset. The caller links the slot.
func writeRawRecord(p *Page, raw []byte) uint16 {
	off := p.FreeStart()
	copy(p.data[off:], raw)
	p.setFreeStart(off + uint16(len(raw)))
	return off
}

// writeInternalEntry appends an internal entry at freeStart and
// returns its offset. The caller links the slot.
func writeInternalEntry(p *Page, key []byte, child uint32) uint16 {
	off := p.FreeStart()
	buf := p.data[off:]
	binary.LittleEndian.PutUint16(buf, uint16(len(key)))
	binary.LittleEndian.PutUint32(buf[2:], child)
	copy(buf[internalEntrySize:], key)
	p.setFreeStart(off + uint16(internalRecordSize(len(key))))
	return off
}

// rawRecord returns the full encoded bytes of the record at slot
// index, aliasing the page buffer.
func rawRecord(p *Page, index uint16) []byte {
	off := int(p.Slot(index))
	keyLen := int(binary.LittleEndian.Uint16(p.data[off:]))
	size := internalRecordSize(keyLen)
	if p.Level() == LevelLeaf {
		valLen := int(binary.LittleEndian.Uint16(p.data[off+2:]))
		size = leafRecordSize(keyLen, valLen)
	}
	return p.data[off : off+size]
}
