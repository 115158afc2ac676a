package storage

import "errors"

// Sentinel errors surfaced by the storage engine. Call sites wrap
// these with fmt.Errorf("%w: ...") so errors.Is keeps working across
// layers.
var (
	// Disk layer.
	ErrOpenFile  = errors.New("storage: cannot open database file")
	ErrReadPage  = errors.New("storage: page read failed")
	ErrWritePage = errors.New("storage: page write failed")
	ErrSync      = errors.New("storage: sync failed")

	// Page and record codec.
	ErrInvalidSlot    = errors.New("storage: invalid slot index")
	ErrKeyTooLarge    = errors.New("storage: key exceeds maximum length")
	ErrRecordTooLarge = errors.New("storage: record exceeds page capacity")

	// Tree layer. ErrDuplicateKey is an expected outcome and is
	// translated to a false return by Insert; ErrTreeCorrupt is a
	// fault.
	ErrDuplicateKey = errors.New("storage: duplicate key")
	ErrTreeCorrupt  = errors.New("storage: tree corrupted")

	// Table management.
	ErrTableExists   = errors.New("storage: table already exists")
	ErrTableNotFound = errors.New("storage: table does not exist")
)
