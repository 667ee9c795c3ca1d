package refs

import (
	"encoding/binary"

	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// level0BlockNumber is the fixed block at which level-0 metadata lives,
// expressed as a multiple of the metadata block size.
const level0BlockNumber = 0x1e

// level0PrimaryOffset and level0SecondaryOffset are payload-relative
// offsets of the two level-1 block number pointers, placed immediately
// after the generic table header fields so that level-0 shares the
// level-1/level-2 framing convention.
const (
	level0PrimaryOffset   = tableOffEntryArray
	level0SecondaryOffset = tableOffEntryArray + 8
)

// Level0Metadata is the small, fixed-location pointer block at the root
// of the metadata hierarchy.
type Level0Metadata struct {
	PrimaryLevel1BlockNumber   uint64
	SecondaryLevel1BlockNumber uint64
}

// ReadLevel0Metadata reads and parses the level-0 metadata block.
func ReadLevel0Metadata(src blockio.Source, metadataBlockSize uint32) (*Level0Metadata, error) {
	const fn = "refs.ReadLevel0Metadata"

	block, err := ReadBlock(src, level0BlockNumber, metadataBlockSize)
	if err != nil {
		return nil, ferror.Wrap(err, fn, level0BlockNumber, -1)
	}

	payload := block.Payload()
	if len(payload) < level0SecondaryOffset+8 {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "level 0 payload too short: %d bytes", len(payload))
	}

	return &Level0Metadata{
		PrimaryLevel1BlockNumber:   binary.LittleEndian.Uint64(payload[level0PrimaryOffset : level0PrimaryOffset+8]),
		SecondaryLevel1BlockNumber: binary.LittleEndian.Uint64(payload[level0SecondaryOffset : level0SecondaryOffset+8]),
	}, nil
}
