package refs

import (
	"encoding/binary"
	"time"

	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Windows FILE_ATTRIBUTE_* bits, the on-disk attribute values ReFS (like
// NTFS before it) stores.
const (
	AttrReadOnly     uint32 = 0x00000001
	AttrHidden       uint32 = 0x00000002
	AttrSystem       uint32 = 0x00000004
	AttrDirectory    uint32 = 0x00000010
	AttrArchive      uint32 = 0x00000020
	AttrDevice       uint32 = 0x00000040
	AttrNormal       uint32 = 0x00000080
	AttrTemporary    uint32 = 0x00000100
	AttrSparseFile   uint32 = 0x00000200
	AttrReparsePoint uint32 = 0x00000400
	AttrCompressed   uint32 = 0x00000800
	AttrOffline      uint32 = 0x00001000
	AttrEncrypted    uint32 = 0x00004000
	AttrVirtual      uint32 = 0x00010000
)

// ChildKind classifies a directory record by its key's leading tag byte.
type ChildKind int

const (
	KindUnknown ChildKind = iota
	KindFile
	KindSubDirectory
	KindStream
	KindAttribute
)

// Key tag bytes. Each tag is a nibble-high family marker (0x4_ is the
// attribute family); the low nibble distinguishes sub-types within a
// family. Stream and attribute records are classified but otherwise
// treated as opaque.
const (
	keyTagFamilyMask   byte = 0xf0
	keyTagFile         byte = 0x10
	keyTagSubDirectory byte = 0x20
	keyTagStream       byte = 0x30
	keyTagAttribute    byte = 0x40
)

func classifyKey(key []byte) ChildKind {
	if len(key) == 0 {
		return KindUnknown
	}
	switch key[0] & keyTagFamilyMask {
	case keyTagFile:
		return KindFile
	case keyTagSubDirectory:
		return KindSubDirectory
	case keyTagStream:
		return KindStream
	case keyTagAttribute:
		return KindAttribute
	default:
		return KindUnknown
	}
}

// FileTime is a FILETIME value: a 64-bit count of 100-nanosecond ticks
// since 1601-01-01 UTC.
type FileTime uint64

var fileTimeEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// Time converts a FileTime to a time.Time.
func (t FileTime) Time() time.Time {
	return fileTimeEpoch.Add(time.Duration(t) * 100)
}

const childValueSize = 52 // 8 block# + 4 flags + 4*8 timestamps + 8 size

// DirectoryEntry is one decoded directory record: child name, kind,
// block or object id, timestamps, flags, and logical size.
type DirectoryEntry struct {
	Name                  string
	Kind                  ChildKind
	ChildBlockNumber      uint64
	Flags                 uint32
	CreationTime          FileTime
	ModificationTime      FileTime
	AccessTime            FileTime
	EntryModificationTime FileTime
	Size                  uint64
}

func (e DirectoryEntry) IsDirectory() bool { return e.Flags&AttrDirectory != 0 }

// Directory wraps a Ministore node read with directory-role framing:
// key = tag byte + UTF-16 child name, value = child metadata.
type Directory struct {
	node *MinistoreNode
}

// ReadDirectoryFromPayload parses a metadata block's payload as a
// Directory Ministore node.
func ReadDirectoryFromPayload(payload []byte, fn string) (*Directory, error) {
	node, err := DecodeMinistoreNode(payload, fn)
	if err != nil {
		return nil, err
	}
	return &Directory{node: node}, nil
}

// Entries decodes every record in key order into a DirectoryEntry,
// skipping attribute/stream records that carry no child-entry metadata.
// Records carrying an embedded Ministore node are descended into and
// their own file/sub-directory entries are flattened into the result in
// the same key order.
func (d *Directory) Entries() ([]DirectoryEntry, error) {
	const fn = "refs.Directory.Entries"
	return decodeDirectoryEntries(d.node, fn)
}

func decodeDirectoryEntries(node *MinistoreNode, fn string) ([]DirectoryEntry, error) {
	entries := make([]DirectoryEntry, 0, len(node.Records))

	for i, rec := range node.Records {
		kind := classifyKey(rec.Key)

		if kind == KindFile || kind == KindSubDirectory {
			if len(rec.Value) < childValueSize {
				return nil, ferror.Newf(ferror.KindInputInvalid, fn, "record %d value too short for child entry: %d bytes", i, len(rec.Value))
			}

			name, err := DecodeUTF16LE(rec.Key[1:])
			if err != nil {
				return nil, ferror.Wrap(err, fn, -1, int64(i))
			}

			v := rec.Value
			entries = append(entries, DirectoryEntry{
				Name:                  name,
				Kind:                  kind,
				ChildBlockNumber:      binary.LittleEndian.Uint64(v[0:8]),
				Flags:                 binary.LittleEndian.Uint32(v[8:12]),
				CreationTime:          FileTime(binary.LittleEndian.Uint64(v[12:20])),
				ModificationTime:      FileTime(binary.LittleEndian.Uint64(v[20:28])),
				AccessTime:            FileTime(binary.LittleEndian.Uint64(v[28:36])),
				EntryModificationTime: FileTime(binary.LittleEndian.Uint64(v[36:44])),
				Size:                  binary.LittleEndian.Uint64(v[44:52]),
			})
		}

		if rec.Embedded != nil {
			nested, err := decodeDirectoryEntries(rec.Embedded, fn)
			if err != nil {
				return nil, ferror.Wrap(err, fn, -1, int64(i))
			}
			entries = append(entries, nested...)
		}
	}
	return entries, nil
}

// NumberOfEntries counts file/sub-directory records, including those in
// embedded Ministore nodes, without decoding full records.
func (d *Directory) NumberOfEntries() int {
	return countDirectoryEntries(d.node)
}

func countDirectoryEntries(node *MinistoreNode) int {
	n := 0
	for _, rec := range node.Records {
		k := classifyKey(rec.Key)
		if k == KindFile || k == KindSubDirectory {
			n++
		}
		if rec.Embedded != nil {
			n += countDirectoryEntries(rec.Embedded)
		}
	}
	return n
}
