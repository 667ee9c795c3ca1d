package refs

import (
	"github.com/libyal/go-fsrefs/internal/blockio"
)

// ExtentBlock is an optional level-4 extent metadata block reached from a
// user directory's own metadata block.
type ExtentBlock struct {
	BlockNumber    uint64
	SequenceNumber uint64
}

// ReadLevel4Extents re-reads the metadata block backing a user directory
// as a block-descriptor table (the same framing the level-1/level-2
// tables use) and resolves each descriptor it lists as a directory block
// one nesting level down. The whole path is optional and best-effort: a
// directory block whose payload does not frame as a descriptor table has
// no level-4 extents, and a descriptor whose target cannot be read or
// does not decode as a directory is skipped, never a failure.
func ReadLevel4Extents(src blockio.Source, blockNumber uint64, metadataBlockSize uint32) []ExtentBlock {
	const fn = "refs.ReadLevel4Extents"

	block, err := ReadBlock(src, blockNumber, metadataBlockSize)
	if err != nil {
		return nil
	}
	table, err := decodeTable(block.Payload(), fn)
	if err != nil {
		return nil
	}

	var extents []ExtentBlock
	for _, desc := range table.Descriptors {
		child, err := ReadBlock(src, desc.BlockNumber, metadataBlockSize)
		if err != nil {
			continue
		}
		if _, err := ReadDirectoryFromPayload(child.Payload(), fn); err != nil {
			continue
		}
		extents = append(extents, ExtentBlock{
			BlockNumber:    desc.BlockNumber,
			SequenceNumber: child.SequenceNumber,
		})
	}
	return extents
}
