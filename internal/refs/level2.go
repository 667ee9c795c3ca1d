package refs

import (
	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Level2Metadata is a descriptor table listing level-3 blocks. It shares
// the level-1 table framing but performs no self-reconciliation.
type Level2Metadata struct {
	Descriptors []BlockDescriptor
}

// ReadLevel2Metadata reads a level-2 descriptor table at blockNumber.
func ReadLevel2Metadata(src blockio.Source, blockNumber uint64, metadataBlockSize uint32) (*Level2Metadata, error) {
	const fn = "refs.ReadLevel2Metadata"

	block, err := ReadBlock(src, blockNumber, metadataBlockSize)
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(blockNumber), -1)
	}

	table, err := decodeTable(block.Payload(), fn)
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(blockNumber), -1)
	}

	return &Level2Metadata{Descriptors: table.Descriptors}, nil
}
