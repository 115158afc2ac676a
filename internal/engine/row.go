package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ItsPalash13/AdvanceDB/internal/sql/parser"
)

// Row codec. A row is stored as the B+ tree record value:
//
//	columnCount u16, then per column: type u8 | null u8 | payload
//
// TEXT payloads are u16-length-prefixed; the other types are fixed
// width. Little-endian, like the page format underneath.

// EncodeRow serializes a row.
func EncodeRow(row Row) []byte {
	buf := bytes.NewBuffer(nil)
	binary.Write(buf, binary.LittleEndian, uint16(len(row)))
	for _, v := range row {
		buf.WriteByte(byte(v.Type))
		if v.IsNull {
			buf.WriteByte(1)
			continue
		}
		buf.WriteByte(0)
		switch v.Type {
		case parser.TypeInteger:
			binary.Write(buf, binary.LittleEndian, v.Int)
		case parser.TypeReal:
			binary.Write(buf, binary.LittleEndian, v.Real)
		case parser.TypeText:
			binary.Write(buf, binary.LittleEndian, uint16(len(v.Text)))
			buf.WriteString(v.Text)
		case parser.TypeBoolean:
			if v.Bool {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		}
	}
	return buf.Bytes()
}

// DecodeRow deserializes a row produced by EncodeRow.
func DecodeRow(data []byte) (Row, error) {
	buf := bytes.NewReader(data)

	var count uint16
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("engine: truncated row: %w", err)
	}

	row := make(Row, count)
	for i := range row {
		typeByte, err := buf.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("engine: truncated row: %w", err)
		}
		nullByte, err := buf.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("engine: truncated row: %w", err)
		}
		v := Value{Type: parser.DataType(typeByte)}
		if nullByte == 1 {
			v.IsNull = true
			row[i] = v
			continue
		}
		switch v.Type {
		case parser.TypeInteger:
			if err := binary.Read(buf, binary.LittleEndian, &v.Int); err != nil {
				return nil, err
			}
		case parser.TypeReal:
			if err := binary.Read(buf, binary.LittleEndian, &v.Real); err != nil {
				return nil, err
			}
		case parser.TypeText:
			var n uint16
			if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
				return nil, err
			}
			b := make([]byte, n)
			if _, err := io.ReadFull(buf, b); err != nil {
				return nil, err
			}
			v.Text = string(b)
		case parser.TypeBoolean:
			b, err := buf.ReadByte()
			if err != nil {
				return nil, err
			}
			v.Bool = b == 1
		default:
			return nil, fmt.Errorf("engine: unknown column type %d", typeByte)
		}
		row[i] = v
	}
	return row, nil
}

// Key encoding. Tree keys compare as raw bytes, so each type is
// encoded to make byte order match value order:
//
//	INTEGER  big-endian u64 with the sign bit flipped
//	REAL     big-endian IEEE bits; negatives fully inverted
//	TEXT     the raw bytes
//	BOOLEAN  a single 0/1 byte
//
// A leading type tag keeps keys of different shapes from colliding.

// EncodeKey turns a primary-key value into tree key bytes.
func EncodeKey(v Value) ([]byte, error) {
	if v.IsNull {
		return nil, fmt.Errorf("engine: primary key must not be NULL")
	}
	switch v.Type {
	case parser.TypeInteger:
		b := make([]byte, 9)
		b[0] = byte(parser.TypeInteger)
		binary.BigEndian.PutUint64(b[1:], uint64(v.Int)^(1<<63))
		return b, nil
	case parser.TypeReal:
		bits := math.Float64bits(v.Real)
		if bits&(1<<63) != 0 {
			bits = ^bits
		} else {
			bits |= 1 << 63
		}
		b := make([]byte, 9)
		b[0] = byte(parser.TypeReal)
		binary.BigEndian.PutUint64(b[1:], bits)
		return b, nil
	case parser.TypeText:
		b := make([]byte, 1+len(v.Text))
		b[0] = byte(parser.TypeText)
		copy(b[1:], v.Text)
		return b, nil
	case parser.TypeBoolean:
		b := []byte{byte(parser.TypeBoolean), 0}
		if v.Bool {
			b[1] = 1
		}
		return b, nil
	default:
		return nil, fmt.Errorf("engine: cannot key column type %d", v.Type)
	}
}

// EncodeRowID encodes an implicit rowid key for tables without a
// primary-key column.
func EncodeRowID(id uint64) []byte {
	b := make([]byte, 9)
	b[0] = 0 // rowid tag, below every typed key
	binary.BigEndian.PutUint64(b[1:], id)
	return b
}

// DecodeRowID reads back a rowid key; ok is false for typed keys.
func DecodeRowID(key []byte) (uint64, bool) {
	if len(key) != 9 || key[0] != 0 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[1:]), true
}
