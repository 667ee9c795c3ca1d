package refs

import (
	"encoding/binary"

	"github.com/libyal/go-fsrefs/internal/ferror"
)

// descriptorBaseSize is the minimum size of every block descriptor
// entry.
const descriptorBaseSize = 24

// identifierDataSize is the width of the optional role-identifier tail a
// level-2 table's entries carry; only present on descriptors that will be
// dispatched by Level3Dispatch.
const identifierDataSize = 16

// BlockDescriptor references a child metadata block: a block number, an
// opaque tag, a checksum, and (for level-2 entries that will be dispatched
// as level-3 blocks) up to 16 bytes of identifier data.
type BlockDescriptor struct {
	BlockNumber    uint64
	OpaqueTag      uint64
	Checksum       uint64
	IdentifierData []byte // nil unless the table entry included it
}

// IdentifierDataSize returns len(IdentifierData).
func (d BlockDescriptor) IdentifierDataSize() int { return len(d.IdentifierData) }

// RoleIdentifier returns the little-endian u64 at identifier_data[8:16]
// and true, if IdentifierDataSize() == 16. Otherwise it returns
// (0, false).
func (d BlockDescriptor) RoleIdentifier() (uint64, bool) {
	if len(d.IdentifierData) != identifierDataSize {
		return 0, false
	}
	return binary.LittleEndian.Uint64(d.IdentifierData[8:16]), true
}

// decodeDescriptor decodes one descriptor at byte offset off within data,
// consuming entrySize bytes. entrySize must be at least descriptorBaseSize;
// any bytes beyond the base 24 are captured as IdentifierData when
// exactly identifierDataSize remain, as in the level-2 table's wider
// entries.
func decodeDescriptor(data []byte, off, entrySize int, fn string) (BlockDescriptor, error) {
	if entrySize < descriptorBaseSize {
		return BlockDescriptor{}, ferror.Newf(ferror.KindInputInvalid, fn, "descriptor entry size %d smaller than minimum %d", entrySize, descriptorBaseSize)
	}
	if off < 0 || off+entrySize > len(data) {
		return BlockDescriptor{}, ferror.Newf(ferror.KindInputInvalid, fn, "descriptor at offset %d (size %d) exceeds block bounds %d", off, entrySize, len(data))
	}

	d := BlockDescriptor{
		BlockNumber: binary.LittleEndian.Uint64(data[off : off+8]),
		OpaqueTag:   binary.LittleEndian.Uint64(data[off+8 : off+16]),
		Checksum:    binary.LittleEndian.Uint64(data[off+16 : off+24]),
	}

	if tail := entrySize - descriptorBaseSize; tail == identifierDataSize {
		d.IdentifierData = append([]byte(nil), data[off+descriptorBaseSize:off+entrySize]...)
	}

	return d, nil
}
