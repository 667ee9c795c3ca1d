package refs

import (
	"bytes"
	"encoding/binary"

	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Node-type flags: branch, root, stream. Treated as opaque beyond the
// grouping; no decoder branches on them.
const (
	NodeTypeBranch uint32 = 1 << 0
	NodeTypeRoot   uint32 = 1 << 1
	NodeTypeStream uint32 = 1 << 2
)

// NodeRecordHasEmbeddedMinistore is record flag 0x0008: the record's
// value slice is itself a Ministore node that must be parsed recursively.
const NodeRecordHasEmbeddedMinistore uint32 = 0x0008

// blockHeaderSize is the size of the generic metadata block header that
// precedes the payload every level decoder addresses by payload-relative
// offset.
const blockHeaderSize = 48

// Block is a single decoded metadata block: a fixed metadata-block-size
// region read at block_number * metadata_block_size.
type Block struct {
	BlockNumber     uint64
	SequenceNumber  uint64
	NodeTypeFlags   uint32
	NodeRecordFlags uint32
	raw             []byte
}

// Payload returns the portion of the block past its generic header, the
// region every level decoder's documented offsets are relative to.
func (b *Block) Payload() []byte { return b.raw[blockHeaderSize:] }

// HasEmbeddedMinistore reports whether NodeRecordHasEmbeddedMinistore is
// set.
func (b *Block) HasEmbeddedMinistore() bool {
	return b.NodeRecordFlags&NodeRecordHasEmbeddedMinistore != 0
}

type rawBlockHeader struct {
	Reserved        uint64
	SelfBlockNumber uint64
	SequenceNumber  uint64
	NodeTypeFlags   uint32
	NodeRecordFlags uint32
	_               [8]byte
}

// ReadBlock reads metadataBlockSize bytes at blockNumber*metadataBlockSize
// from src and validates that the block's internally declared
// self-block-number equals blockNumber.
func ReadBlock(src blockio.Source, blockNumber uint64, metadataBlockSize uint32) (*Block, error) {
	const fn = "refs.ReadBlock"

	offset := int64(blockNumber) * int64(metadataBlockSize)
	if offset < 0 || offset+int64(metadataBlockSize) > src.Len() {
		return nil, ferror.Newf(ferror.KindIO, fn, "block %d at offset %d exceeds source length %d", blockNumber, offset, src.Len())
	}

	raw := make([]byte, metadataBlockSize)
	if err := src.ReadExact(offset, raw); err != nil {
		return nil, ferror.WrapKind(err, ferror.KindIO, fn, int64(blockNumber), offset)
	}
	if len(raw) < blockHeaderSize {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "metadata block size %d smaller than header size %d", metadataBlockSize, blockHeaderSize)
	}

	var hdr rawBlockHeader
	if err := binary.Read(bytes.NewReader(raw[:blockHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, ferror.WrapKind(err, ferror.KindInputInvalid, fn, int64(blockNumber), offset)
	}

	if hdr.SelfBlockNumber != blockNumber {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "self-block-number mismatch: expected %d, block declares %d", blockNumber, hdr.SelfBlockNumber)
	}

	return &Block{
		BlockNumber:     blockNumber,
		SequenceNumber:  hdr.SequenceNumber,
		NodeTypeFlags:   hdr.NodeTypeFlags,
		NodeRecordFlags: hdr.NodeRecordFlags,
		raw:             raw,
	}, nil
}
