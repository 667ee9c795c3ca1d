package fsrefs

import (
	"encoding/binary"
	"testing"
)

const (
	testBytesPerSector    = 512
	testSectorsPerBlock   = 128
	testMetadataBlockSize = 16384 // major=1
	testBlockHeaderSize   = 48
)

func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:off+2], v) }
func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:off+4], v) }
func putU64(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:off+8], v) }

// buildVolumeHeader writes a valid 512-byte boot sector into image at
// offset 0.
func buildVolumeHeader(image []byte) {
	copy(image[3:7], "ReFS")
	copy(image[16:20], "FSRS")
	putU64(image, 24, 0x1000) // total sectors
	putU32(image, 32, testBytesPerSector)
	putU32(image, 36, testSectorsPerBlock)
	image[40] = 1 // major
	image[41] = 0 // minor
	putU64(image, 56, 0xdeadbeefcafebabe)
}

// blockAt returns the slice of image covering block blockNumber.
func blockAt(image []byte, blockNumber uint64) []byte {
	off := blockNumber * testMetadataBlockSize
	return image[off : off+testMetadataBlockSize]
}

func writeBlockHeader(block []byte, selfBlockNumber, sequenceNumber uint64) {
	putU64(block, 8, selfBlockNumber)
	putU64(block, 16, sequenceNumber)
}

// writeTable writes the generic level-1/level-2 table framing (entry
// offset/table entry size/sequence number/entry count + offset array)
// into block's payload, followed by the given raw descriptor bytes
// starting at payload offset 200, and a self entry (only used by level 1)
// at payload offset 100.
func writeTable(block []byte, selfBlockNumber uint64, descriptors [][]byte) {
	payload := block[testBlockHeaderSize:]
	const selfEntryOffset = 100
	const arrayBase = 200

	putU32(payload, 56, selfEntryOffset)
	putU32(payload, 60, 24)
	putU64(payload, 64, 0)
	putU32(payload, 88, uint32(len(descriptors)))
	putU64(payload, selfEntryOffset, selfBlockNumber)

	pos := arrayBase
	for i, desc := range descriptors {
		putU32(payload, 92+i*4, uint32(pos))
		copy(payload[pos:], desc)
		pos += len(desc)
	}
}

// buildDescriptor24 builds a plain 24-byte block descriptor.
func buildDescriptor24(blockNumber uint64) []byte {
	d := make([]byte, 24)
	putU64(d, 0, blockNumber)
	return d
}

// buildDescriptor40 builds a 40-byte descriptor carrying a role
// identifier in its 16-byte identifier-data tail.
func buildDescriptor40(blockNumber uint64, roleIdentifier uint64) []byte {
	d := make([]byte, 40)
	putU64(d, 0, blockNumber)
	putU64(d, 24+8, roleIdentifier)
	return d
}

func buildMinistoreRecord(key, value []byte) []byte {
	buf := make([]byte, 8+len(key)+len(value))
	putU16(buf, 0, uint16(len(key)))
	putU16(buf, 2, uint16(len(value)))
	putU32(buf, 4, 0)
	copy(buf[8:8+len(key)], key)
	copy(buf[8+len(key):], value)
	return buf
}

func writeDirectory(block []byte, records [][]byte) {
	payload := block[testBlockHeaderSize:]
	const arrayBase = 16

	putU32(payload, 0, uint32(len(payload)))
	putU32(payload, 4, uint32(len(records)))

	pos := arrayBase + len(records)*4
	for i, rec := range records {
		putU32(payload, arrayBase+i*4, uint32(pos))
		copy(payload[pos:], rec)
		pos += len(rec)
	}
}

// buildChildValue builds the 52-byte value payload a file/sub-directory
// directory record carries.
func buildChildValue(childBlockNumber uint64, flags uint32, size uint64) []byte {
	v := make([]byte, 52)
	putU64(v, 0, childBlockNumber)
	putU32(v, 8, flags)
	putU64(v, 44, size)
	return v
}

func buildTestVolumeImage(t *testing.T) []byte {
	t.Helper()

	const numBlocks = 70
	image := make([]byte, numBlocks*testMetadataBlockSize)
	buildVolumeHeader(image)

	// level 0 at block 0x1e: primary=40, secondary=41.
	level0 := blockAt(image, 0x1e)
	writeBlockHeader(level0, 0x1e, 1)
	putU64(level0[testBlockHeaderSize:], 92, 40)
	putU64(level0[testBlockHeaderSize:], 100, 41)

	// level 1 primary (block 40, sequence 10) points at level-2 block 50.
	primary := blockAt(image, 40)
	writeBlockHeader(primary, 40, 10)
	writeTable(primary, 40, [][]byte{buildDescriptor24(50)})

	// level 1 secondary (block 41, sequence 5) also points at block 50,
	// so either reconciliation outcome reaches the same level-2 table.
	secondary := blockAt(image, 41)
	writeBlockHeader(secondary, 41, 5)
	writeTable(secondary, 41, [][]byte{buildDescriptor24(50)})

	// level 2 (block 50) points at level-3 block 60, tagged as the root
	// directory (0x00000600).
	level2 := blockAt(image, 50)
	writeBlockHeader(level2, 50, 1)
	writeTable(level2, 50, [][]byte{buildDescriptor40(60, 0x00000600)})
	// writeTable hard-codes a 24-byte entry size at payload+60; widen it
	// for the level-2 table's 40-byte entries.
	putU32(level2[testBlockHeaderSize:], 60, 40)

	// level 3 root directory (block 60): one sub-directory child at
	// block 61, named "sub".
	root := blockAt(image, 60)
	writeBlockHeader(root, 60, 1)
	childKey := append([]byte{0x20}, []byte{'s', 0, 'u', 0, 'b', 0}...)
	writeDirectory(root, [][]byte{
		buildMinistoreRecord(childKey, buildChildValue(61, 0x10, 4096)),
	})

	// child directory (block 61): empty.
	child := blockAt(image, 61)
	writeBlockHeader(child, 61, 1)
	writeDirectory(child, nil)

	return image
}

func TestOpenMemory_EndToEnd(t *testing.T) {
	image := buildTestVolumeImage(t)

	vol, err := OpenMemory(image, DefaultOpenOptions())
	if err != nil {
		t.Fatalf("OpenMemory err: %v", err)
	}
	defer vol.Close()

	if got, want := vol.BytesPerSector(), uint32(testBytesPerSector); got != want {
		t.Fatalf("BytesPerSector=%d want %d", got, want)
	}
	if got, want := vol.SerialNumber(), uint64(0xdeadbeefcafebabe); got != want {
		t.Fatalf("SerialNumber=0x%x want 0x%x", got, want)
	}

	root := vol.RootDirectory()
	if root == nil {
		t.Fatalf("RootDirectory()=nil want a root directory")
	}

	n, err := root.NumberOfSubEntries()
	if err != nil {
		t.Fatalf("NumberOfSubEntries err: %v", err)
	}
	if n != 1 {
		t.Fatalf("NumberOfSubEntries=%d want 1", n)
	}

	entry, err := root.SubEntryByIndex(0)
	if err != nil {
		t.Fatalf("SubEntryByIndex(0) err: %v", err)
	}
	if entry.NameUTF8() != "sub" {
		t.Fatalf("entry name=%q want %q", entry.NameUTF8(), "sub")
	}
	if !entry.IsDirectory() {
		t.Fatalf("entry.IsDirectory()=false want true")
	}
	if entry.Size() != 4096 {
		t.Fatalf("entry.Size()=%d want 4096", entry.Size())
	}
}

func TestOpenMemory_HeaderOnlyVolume(t *testing.T) {
	// A source of exactly one valid boot sector opens as an empty volume:
	// no metadata hierarchy, no root directory.
	image := make([]byte, 512)
	buildVolumeHeader(image)

	vol, err := OpenMemory(image, DefaultOpenOptions())
	if err != nil {
		t.Fatalf("OpenMemory err: %v", err)
	}
	defer vol.Close()

	if vol.RootDirectory() != nil {
		t.Fatalf("RootDirectory() non-nil for a header-only volume")
	}
}

func TestClose_InvalidatesOutstandingEntries(t *testing.T) {
	image := buildTestVolumeImage(t)

	vol, err := OpenMemory(image, DefaultOpenOptions())
	if err != nil {
		t.Fatalf("OpenMemory err: %v", err)
	}

	root := vol.RootDirectory()
	entry, err := root.SubEntryByIndex(0)
	if err != nil {
		t.Fatalf("SubEntryByIndex err: %v", err)
	}

	if err := vol.Close(); err != nil {
		t.Fatalf("Close err: %v", err)
	}
	if _, err := entry.NumberOfSubEntries(); err == nil {
		t.Fatalf("NumberOfSubEntries after Close err=nil want error")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/path/to/volume.refs", DefaultOpenOptions()); err == nil {
		t.Fatalf("Open(nonexistent) err=nil want error")
	}
}
