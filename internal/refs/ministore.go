package refs

import (
	"bytes"
	"encoding/binary"

	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Ministore page header layout: page size, entry count, free-space
// watermark, then a u32 offset array, the same "header then offset
// array" framing the level-1/level-2 tables use elsewhere in this
// package.
const (
	ministoreOffPageSize        = 0
	ministoreOffEntryCount      = 4
	ministoreOffFreeSpaceOffset = 8
	ministoreHeaderSize         = 16
)

const recordHeaderSize = 8 // key_len u16, value_len u16, flags u32

// maxEmbeddedMinistoreDepth bounds how many levels of embedded Ministore
// nodes DecodeMinistoreNode will follow, so a maliciously self-nesting
// record cannot exhaust the stack.
const maxEmbeddedMinistoreDepth = 8

// MinistoreRecord is one keyed record in a Ministore node.
type MinistoreRecord struct {
	Key      []byte
	Value    []byte
	Flags    uint32
	Embedded *MinistoreNode // non-nil when HasEmbeddedMinistore is set
}

// HasEmbeddedMinistore reports whether this record's value is itself a
// Ministore node that must be parsed recursively.
func (r MinistoreRecord) HasEmbeddedMinistore() bool {
	return r.Flags&NodeRecordHasEmbeddedMinistore != 0
}

// MinistoreNode is a decoded generic key/value ordered B-tree block used
// for directories, object tables, and attribute tables. FreeSpace is the
// page's free-space watermark, captured from the header but carrying no
// invariant of its own.
type MinistoreNode struct {
	PageSize  uint32
	FreeSpace uint32
	Records   []MinistoreRecord
}

// DecodeMinistoreNode parses payload as a Ministore node: offsets must
// lie strictly within the payload, keys must be strictly increasing, and
// the declared entry count must match the consumed offset-table length.
func DecodeMinistoreNode(payload []byte, fn string) (*MinistoreNode, error) {
	return decodeMinistoreNode(payload, fn, 0)
}

// decodeMinistoreNode is DecodeMinistoreNode's recursive worker. depth
// counts levels of embedded Ministore nodes
// already descended into; each embedded node gets its own offset table
// decoded against its own record's value slice, never against the
// outer node's offsets.
func decodeMinistoreNode(payload []byte, fn string, depth int) (*MinistoreNode, error) {
	if len(payload) < ministoreHeaderSize {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore payload too short for header: %d bytes", len(payload))
	}

	pageSize := binary.LittleEndian.Uint32(payload[ministoreOffPageSize : ministoreOffPageSize+4])
	entryCount := binary.LittleEndian.Uint32(payload[ministoreOffEntryCount : ministoreOffEntryCount+4])
	freeSpace := binary.LittleEndian.Uint32(payload[ministoreOffFreeSpaceOffset : ministoreOffFreeSpaceOffset+4])

	if pageSize != 0 && int64(pageSize) > int64(len(payload)) {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore page size %d exceeds payload of %d bytes", pageSize, len(payload))
	}

	offsetTableEnd := ministoreHeaderSize + int(entryCount)*4
	if offsetTableEnd < ministoreHeaderSize || offsetTableEnd > len(payload) {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore offset table (%d entries) overflows payload of %d bytes", entryCount, len(payload))
	}

	records := make([]MinistoreRecord, 0, entryCount)
	var lastKey []byte

	for i := 0; i < int(entryCount); i++ {
		arrayPos := ministoreHeaderSize + i*4
		off := int(binary.LittleEndian.Uint32(payload[arrayPos : arrayPos+4]))

		if off < ministoreHeaderSize || off+recordHeaderSize > len(payload) {
			return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore record %d offset %d out of bounds [%d,%d)", i, off, ministoreHeaderSize, len(payload))
		}

		keyLen := int(binary.LittleEndian.Uint16(payload[off : off+2]))
		valueLen := int(binary.LittleEndian.Uint16(payload[off+2 : off+4]))
		flags := binary.LittleEndian.Uint32(payload[off+4 : off+8])

		recordEnd := off + recordHeaderSize + keyLen + valueLen
		if recordEnd < off || recordEnd > len(payload) {
			return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore record %d (key %d, value %d) exceeds payload bounds", i, keyLen, valueLen)
		}

		keyStart := off + recordHeaderSize
		key := payload[keyStart : keyStart+keyLen]
		value := payload[keyStart+keyLen : recordEnd]

		if lastKey != nil {
			cmp := bytes.Compare(key, lastKey)
			if cmp < 0 {
				return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore record %d key out of order", i)
			}
			if cmp == 0 {
				return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore record %d duplicates the previous key", i)
			}
		}
		lastKey = key

		rec := MinistoreRecord{
			Key:   append([]byte(nil), key...),
			Value: append([]byte(nil), value...),
			Flags: flags,
		}

		if rec.HasEmbeddedMinistore() {
			if depth >= maxEmbeddedMinistoreDepth {
				return nil, ferror.Newf(ferror.KindInputInvalid, fn, "ministore record %d nests embedded ministore nodes past depth %d", i, maxEmbeddedMinistoreDepth)
			}
			embedded, err := decodeMinistoreNode(rec.Value, fn, depth+1)
			if err != nil {
				return nil, ferror.Wrap(err, fn, -1, int64(off))
			}
			rec.Embedded = embedded
		}

		records = append(records, rec)
	}

	return &MinistoreNode{PageSize: pageSize, FreeSpace: freeSpace, Records: records}, nil
}
