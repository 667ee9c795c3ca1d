package refs

import (
	"encoding/binary"

	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Payload offsets shared by the level-1 and level-2 table framing. Level
// 2 reuses the same layout but skips the self-entry reconciliation level
// 1 performs.
const (
	tableOffEntryOffset    = 56
	tableOffTableEntrySize = 60
	tableOffSequenceNumber = 64
	tableOffNumberEntries  = 88
	tableOffEntryArray     = 92
)

// decodedTable is the common shape both level-1 and level-2 decode: a
// self-describing block whose payload is an array of u32 offsets, each
// pointing at a descriptor entry.
type decodedTable struct {
	SequenceNumber uint64
	EntryOffset    uint32
	TableEntrySize uint32
	Descriptors    []BlockDescriptor
}

// decodeTable parses the generic level-1/level-2 table framing out of a
// metadata block's payload. fn is the calling function's
// name, used for descent frames.
func decodeTable(payload []byte, fn string) (decodedTable, error) {
	if len(payload) < tableOffEntryArray {
		return decodedTable{}, ferror.Newf(ferror.KindInputInvalid, fn, "payload too short for table header: %d bytes", len(payload))
	}

	entryOffset := binary.LittleEndian.Uint32(payload[tableOffEntryOffset : tableOffEntryOffset+4])
	tableEntrySize := binary.LittleEndian.Uint32(payload[tableOffTableEntrySize : tableOffTableEntrySize+4])
	sequenceNumber := binary.LittleEndian.Uint64(payload[tableOffSequenceNumber : tableOffSequenceNumber+8])
	numberOfEntries := binary.LittleEndian.Uint32(payload[tableOffNumberEntries : tableOffNumberEntries+4])

	if tableEntrySize == 0 {
		tableEntrySize = descriptorBaseSize
	}

	// self entry: must reference the block currently being parsed; callers
	// check this against the expected block number.
	if int64(entryOffset) < 0 || int64(entryOffset)+8 > int64(len(payload)) {
		return decodedTable{}, ferror.Newf(ferror.KindInputInvalid, fn, "self entry offset %d out of bounds (payload %d bytes)", entryOffset, len(payload))
	}

	arrayEnd := tableOffEntryArray + int(numberOfEntries)*4
	if arrayEnd < tableOffEntryArray || arrayEnd > len(payload) {
		return decodedTable{}, ferror.Newf(ferror.KindInputInvalid, fn, "entry offset array (%d entries) overflows payload of %d bytes", numberOfEntries, len(payload))
	}

	descriptors := make([]BlockDescriptor, 0, numberOfEntries)
	for i := 0; i < int(numberOfEntries); i++ {
		arrayPos := tableOffEntryArray + i*4
		off := binary.LittleEndian.Uint32(payload[arrayPos : arrayPos+4])

		d, err := decodeDescriptor(payload, int(off), int(tableEntrySize), fn)
		if err != nil {
			return decodedTable{}, ferror.Wrap(err, fn, -1, int64(off))
		}
		descriptors = append(descriptors, d)
	}

	return decodedTable{
		SequenceNumber: sequenceNumber,
		EntryOffset:    entryOffset,
		TableEntrySize: tableEntrySize,
		Descriptors:    descriptors,
	}, nil
}

// selfBlockNumber decodes the u64 block-number of the table's self entry.
func (t decodedTable) selfBlockNumber(payload []byte) uint64 {
	return binary.LittleEndian.Uint64(payload[t.EntryOffset : t.EntryOffset+8])
}
