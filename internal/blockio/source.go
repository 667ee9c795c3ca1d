// Package blockio provides the abstraction over a seekable byte provider
// that the ReFS decoders read from: a file, an in-memory range, or a
// bounded sub-range of either. All reads are absolute offsets; there is
// no externally visible seek cursor.
package blockio

import (
	"io"
	"os"

	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Source is a seekable, absolute-offset byte provider.
type Source interface {
	// ReadExact reads len(buf) bytes at offset. A short read is an error,
	// never a partial success.
	ReadExact(offset int64, buf []byte) error

	// Len returns the total addressable length of the source.
	Len() int64

	// SubRange returns a view re-based so offset 0 of the returned Source
	// corresponds to offset `offset` of the parent, bounded to `length`
	// bytes. Reads past the sub-range fail with IO-out-of-range.
	SubRange(offset, length int64) (Source, error)

	// Close releases any underlying resource (file handle). Sub-ranges
	// close is a no-op; only the owning Source closes the resource.
	Close() error
}

// fileSource reads from an *os.File opened by Open.
type fileSource struct {
	file *os.File
	size int64
	own  bool
}

// Open opens the file at path as a Source. The returned Source owns the
// file descriptor; Close closes it.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferror.Newf(ferror.KindIO, "blockio.Open", "unable to open %q: %v", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ferror.Newf(ferror.KindIO, "blockio.Open", "unable to stat %q: %v", path, err)
	}
	return &fileSource{file: f, size: info.Size(), own: true}, nil
}

// FromMemory wraps an in-memory byte slice as a Source. Used by tests and
// by callers that have already mapped or buffered a volume image.
func FromMemory(data []byte) Source {
	return &memorySource{data: data}
}

func (s *fileSource) ReadExact(offset int64, buf []byte) error {
	if offset < 0 || offset > s.size {
		return ferror.Newf(ferror.KindIO, "fileSource.ReadExact", "offset %d out of range [0,%d)", offset, s.size)
	}
	if offset+int64(len(buf)) > s.size {
		return ferror.Newf(ferror.KindIO, "fileSource.ReadExact", "read of %d bytes at %d exceeds source length %d", len(buf), offset, s.size)
	}
	sr := io.NewSectionReader(s.file, offset, int64(len(buf)))
	n, err := io.ReadFull(sr, buf)
	if err != nil {
		return ferror.Newf(ferror.KindIO, "fileSource.ReadExact", "short read (%d/%d) at offset %d: %v", n, len(buf), offset, err)
	}
	return nil
}

func (s *fileSource) Len() int64 { return s.size }

func (s *fileSource) SubRange(offset, length int64) (Source, error) {
	return newSubRange(s, offset, length)
}

func (s *fileSource) Close() error {
	if !s.own || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// memorySource reads from an in-memory byte slice.
type memorySource struct {
	data []byte
}

func (s *memorySource) ReadExact(offset int64, buf []byte) error {
	if offset < 0 || offset > int64(len(s.data)) {
		return ferror.Newf(ferror.KindIO, "memorySource.ReadExact", "offset %d out of range [0,%d)", offset, len(s.data))
	}
	end := offset + int64(len(buf))
	if end > int64(len(s.data)) {
		return ferror.Newf(ferror.KindIO, "memorySource.ReadExact", "read of %d bytes at %d exceeds source length %d", len(buf), offset, len(s.data))
	}
	n := copy(buf, s.data[offset:end])
	if n != len(buf) {
		return ferror.Newf(ferror.KindIO, "memorySource.ReadExact", "short read (%d/%d) at offset %d", n, len(buf), offset)
	}
	return nil
}

func (s *memorySource) Len() int64 { return int64(len(s.data)) }

func (s *memorySource) SubRange(offset, length int64) (Source, error) {
	return newSubRange(s, offset, length)
}

func (s *memorySource) Close() error { return nil }

// subRange re-bases offsets against a parent Source and bounds-checks
// against the sub-range's own length, not the parent's.
type subRange struct {
	parent Source
	base   int64
	length int64
}

func newSubRange(parent Source, offset, length int64) (Source, error) {
	if offset < 0 || length < 0 || offset+length > parent.Len() {
		return nil, ferror.Newf(ferror.KindIO, "blockio.SubRange", "sub-range [%d,%d) out of parent bounds [0,%d)", offset, offset+length, parent.Len())
	}
	return &subRange{parent: parent, base: offset, length: length}, nil
}

func (s *subRange) ReadExact(offset int64, buf []byte) error {
	if offset < 0 || offset+int64(len(buf)) > s.length {
		return ferror.Newf(ferror.KindIO, "subRange.ReadExact", "read of %d bytes at %d exceeds sub-range length %d", len(buf), offset, s.length)
	}
	return s.parent.ReadExact(s.base+offset, buf)
}

func (s *subRange) Len() int64 { return s.length }

func (s *subRange) SubRange(offset, length int64) (Source, error) {
	if offset < 0 || length < 0 || offset+length > s.length {
		return nil, ferror.Newf(ferror.KindIO, "subRange.SubRange", "sub-range [%d,%d) out of bounds [0,%d)", offset, offset+length, s.length)
	}
	return &subRange{parent: s.parent, base: s.base + offset, length: length}, nil
}

// Close on a sub-range never closes the underlying resource; only the
// Source returned by Open or FromMemory owns it.
func (s *subRange) Close() error { return nil }
