package fsrefs

import (
	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
	"github.com/libyal/go-fsrefs/internal/refs"
)

// Volume is the public handle to an opened ReFS volume. It owns the byte
// source and the cached root directory; Entry values obtained from it
// remain valid until Close.
type Volume struct {
	vol *refs.Volume
}

// Open opens the ReFS volume at path.
func Open(path string, opts OpenOptions) (*Volume, error) {
	src, err := blockio.Open(path)
	if err != nil {
		return nil, err
	}
	return openSource(src, opts)
}

// OpenMemory opens a ReFS volume already held in memory, for tests and
// callers that manage their own I/O.
func OpenMemory(data []byte, opts OpenOptions) (*Volume, error) {
	return openSource(blockio.FromMemory(data), opts)
}

func openSource(src blockio.Source, opts OpenOptions) (*Volume, error) {
	vol, err := refs.Open(src, refs.OpenVolumeOptions{
		Access:       opts.Access,
		VolumeOffset: opts.VolumeOffset,
		Verbose:      opts.Verbose,
	})
	if err != nil {
		src.Close()
		return nil, err
	}
	return &Volume{vol: vol}, nil
}

// Close releases the underlying byte source.
func (v *Volume) Close() error { return v.vol.Close() }

// SignalAbort sets the process-visible abort flag.
func (v *Volume) SignalAbort() { v.vol.SignalAbort() }

// Version returns the volume's major and minor format version.
func (v *Volume) Version() (major, minor uint8) {
	h := v.vol.Header()
	return h.MajorVersion, h.MinorVersion
}

// SerialNumber returns the volume's 64-bit serial number.
func (v *Volume) SerialNumber() uint64 { return v.vol.Header().SerialNumber }

// BytesPerSector returns the volume's sector size.
func (v *Volume) BytesPerSector() uint32 { return v.vol.Header().BytesPerSector }

// ClusterBlockSize returns the volume's cluster (block) size.
func (v *Volume) ClusterBlockSize() uint32 { return v.vol.Header().BlockSize }

// VolumeSize returns the total addressable size of the volume in bytes.
func (v *Volume) VolumeSize() uint64 { return v.vol.Header().VolumeSize }

// Checksum returns the header's captured-but-unverified checksum field.
func (v *Volume) Checksum() uint16 { return v.vol.Header().Checksum() }

// NameUTF8 returns the volume name. The ReFS boot sector carries no
// volume-label field (unlike NTFS's optional extended BPB), so this is
// always empty.
func (v *Volume) NameUTF8() string { return "" }

// NameUTF16 returns the volume name as little-endian UTF-16; empty for
// the same reason as NameUTF8.
func (v *Volume) NameUTF16() []byte { return refs.EncodeUTF16LE("") }

// DescentTrace returns the descent frames recorded during a verbose
// Open; nil unless OpenOptions.Verbose was set.
func (v *Volume) DescentTrace() []ferror.Frame { return v.vol.DescentTrace() }

// ErrorKind returns the taxonomy kind carried by an error returned from
// this package: arguments, io, input-invalid, conversion, memory,
// runtime, or aborted.
func ErrorKind(err error) ferror.Kind { return ferror.KindOf(err) }

// ErrorFrames returns the ordered descent-frame list attached to an error
// returned from this package, outermost frame first.
func ErrorFrames(err error) []string { return ferror.Frames(err) }

// Entry is a navigable projection of a directory or file entry.
type Entry struct {
	fe *refs.FileEntry
}

// RootDirectory returns the volume's root directory entry, or nil if none
// was discovered during Open.
func (v *Volume) RootDirectory() *Entry {
	root := v.vol.RootDirectory()
	if root == nil {
		return nil
	}
	return &Entry{fe: root}
}

func (e *Entry) NameUTF8() string  { return e.fe.NameUTF8() }
func (e *Entry) NameUTF16() []byte { return e.fe.NameUTF16() }
func (e *Entry) Flags() uint32     { return e.fe.Flags() }
func (e *Entry) IsDirectory() bool { return e.fe.IsDirectory() }
func (e *Entry) Size() uint64      { return e.fe.Size() }

func (e *Entry) CreationTime() refs.FileTime          { return e.fe.CreationTime() }
func (e *Entry) ModificationTime() refs.FileTime      { return e.fe.ModificationTime() }
func (e *Entry) AccessTime() refs.FileTime            { return e.fe.AccessTime() }
func (e *Entry) EntryModificationTime() refs.FileTime { return e.fe.EntryModificationTime() }

// NumberOfSubEntries lazily materializes this entry's children and
// returns their count.
func (e *Entry) NumberOfSubEntries() (int, error) { return e.fe.NumberOfSubEntries() }

// SubEntryByIndex returns the i'th child in key order.
func (e *Entry) SubEntryByIndex(i int) (*Entry, error) {
	child, err := e.fe.SubEntryByIndex(i)
	if err != nil {
		return nil, err
	}
	return &Entry{fe: child}, nil
}
