package refs

import (
	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Level1Metadata is one copy (primary or secondary) of the level-1 table:
// a sequence number, a self-referencing entry, and descriptors for the
// level-2 metadata blocks.
type Level1Metadata struct {
	SequenceNumber uint64
	Descriptors    []BlockDescriptor
}

// ReadLevel1Metadata reads and validates one level-1 table at blockNumber.
func ReadLevel1Metadata(src blockio.Source, blockNumber uint64, metadataBlockSize uint32) (*Level1Metadata, error) {
	const fn = "refs.ReadLevel1Metadata"

	block, err := ReadBlock(src, blockNumber, metadataBlockSize)
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(blockNumber), -1)
	}

	payload := block.Payload()
	table, err := decodeTable(payload, fn)
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(blockNumber), -1)
	}

	if self := table.selfBlockNumber(payload); self != blockNumber {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "level 1 self entry mismatch: expected block %d, table declares %d", blockNumber, self)
	}

	return &Level1Metadata{
		SequenceNumber: table.SequenceNumber,
		Descriptors:    table.Descriptors,
	}, nil
}

// ReconcileLevel1 applies the primary/secondary reconciliation rule: the
// copy with the greater-or-equal sequence number is authoritative, ties
// favor the primary.
func ReconcileLevel1(primary, secondary *Level1Metadata) *Level1Metadata {
	if primary.SequenceNumber >= secondary.SequenceNumber {
		return primary
	}
	return secondary
}
