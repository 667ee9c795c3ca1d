package refs

import (
	"bytes"
	"encoding/binary"

	"github.com/libyal/go-fsrefs/internal/ferror"
)

// HeaderSize is the fixed size of the ReFS volume header (the first
// sector of the volume).
const HeaderSize = 512

var (
	fileSystemSignature          = [4]byte{'R', 'e', 'F', 'S'}
	fileSystemSignatureSecondary = [4]byte{'F', 'S', 'R', 'S'}
)

var allowedBytesPerSector = map[uint32]bool{
	256: true, 512: true, 1024: true, 2048: true, 4096: true,
}

var allowedBlockSize = map[uint32]bool{
	4096: true, 65536: true,
}

// rawHeader is the bit-exact, 512-byte on-disk layout of the boot
// sector. Decoding with binary.Read against a fixed-layout struct avoids
// hand-computed offsets for every field we care about.
type rawHeader struct {
	Jump               [3]byte
	Signature          [4]byte
	Reserved1          [9]byte
	SecondarySignature [4]byte
	Reserved2          [2]byte
	Checksum           uint16
	TotalSectors       uint64
	BytesPerSector     uint32
	SectorsPerBlock    uint32
	MajorFormatVersion uint8
	MinorFormatVersion uint8
	Reserved3          [2]byte
	Reserved4          [4]byte
	Reserved5          [8]byte
	VolumeSerialNumber uint64
	Reserved6          [8]byte
	Reserved7          [440]byte
}

// Header is the decoded, validated volume header.
type Header struct {
	BytesPerSector    uint32
	SectorsPerBlock   uint32
	BlockSize         uint32
	MetadataBlockSize uint32
	MajorVersion      uint8
	MinorVersion      uint8
	SerialNumber      uint64
	TotalSectors      uint64
	VolumeSize        uint64
	checksum          uint16
}

// Checksum returns the captured-but-unverified header checksum.
func (h *Header) Checksum() uint16 { return h.checksum }

// ParseHeader validates and decodes the 512-byte volume header.
func ParseHeader(data []byte) (*Header, error) {
	const fn = "refs.ParseHeader"

	if len(data) < HeaderSize {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "header data too short: %d bytes, need %d", len(data), HeaderSize)
	}

	var raw rawHeader
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &raw); err != nil {
		return nil, ferror.WrapKind(err, ferror.KindInputInvalid, fn, -1, 0)
	}

	if raw.Signature != fileSystemSignature {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "invalid file system signature: %q", raw.Signature[:])
	}
	if raw.SecondarySignature != fileSystemSignatureSecondary {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "invalid secondary signature: %q", raw.SecondarySignature[:])
	}

	if !allowedBytesPerSector[raw.BytesPerSector] {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "unsupported bytes per sector: %d", raw.BytesPerSector)
	}

	// volume_size = (total_sectors + 1) * bytes_per_sector, checked for
	// 64-bit overflow before the multiply.
	maxSectors := ^uint64(0)/uint64(raw.BytesPerSector) - 1
	if raw.TotalSectors > maxSectors {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "total sectors %d overflows volume size arithmetic", raw.TotalSectors)
	}
	volumeSize := (raw.TotalSectors + 1) * uint64(raw.BytesPerSector)

	if raw.SectorsPerBlock > ^uint32(0)/raw.BytesPerSector {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "sectors per block %d overflows block size arithmetic", raw.SectorsPerBlock)
	}
	blockSize := raw.SectorsPerBlock * raw.BytesPerSector

	if !allowedBlockSize[blockSize] {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "unsupported block size: %d", blockSize)
	}

	if raw.MajorFormatVersion != 1 && raw.MajorFormatVersion != 3 {
		return nil, ferror.Newf(ferror.KindInputInvalid, fn, "unsupported format version: %d.%d", raw.MajorFormatVersion, raw.MinorFormatVersion)
	}

	metadataBlockSize := blockSize
	if raw.MajorFormatVersion == 1 {
		metadataBlockSize = 16 * 1024
	}

	return &Header{
		BytesPerSector:    raw.BytesPerSector,
		SectorsPerBlock:   raw.SectorsPerBlock,
		BlockSize:         blockSize,
		MetadataBlockSize: metadataBlockSize,
		MajorVersion:      raw.MajorFormatVersion,
		MinorVersion:      raw.MinorFormatVersion,
		SerialNumber:      raw.VolumeSerialNumber,
		TotalSectors:      raw.TotalSectors,
		VolumeSize:        volumeSize,
		checksum:          raw.Checksum,
	}, nil
}
