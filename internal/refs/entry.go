package refs

import (
	"sync"

	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// FileEntry represents a directory or file entry. It is a short-lived
// projection: it borrows the volume's byte source to re-resolve its
// children on demand and retains nothing else. The parent caches the
// decoded child records, never child FileEntry handles; every
// SubEntryByIndex call materializes a fresh entry from the cached
// record.
type FileEntry struct {
	src               blockio.Source
	metadataBlockSize uint32
	state             *volumeState

	name string
	kind ChildKind

	blockNumber uint64
	flags       uint32

	creationTime          FileTime
	modificationTime      FileTime
	accessTime            FileTime
	entryModificationTime FileTime
	size                  uint64

	preloaded *Directory // set for the root entry, whose node is decoded during Open

	childrenOnce sync.Once
	children     []DirectoryEntry
	childrenErr  error
}

// newRootFileEntry wraps the root directory's already-decoded Ministore
// node, cached during Open, as a FileEntry.
func newRootFileEntry(src blockio.Source, metadataBlockSize uint32, state *volumeState, blockNumber uint64, dir *Directory) *FileEntry {
	return &FileEntry{
		src:               src,
		metadataBlockSize: metadataBlockSize,
		state:             state,
		blockNumber:       blockNumber,
		flags:             AttrDirectory,
		kind:              KindSubDirectory,
		preloaded:         dir,
	}
}

// newFileEntry wraps a decoded DirectoryEntry as a FileEntry bound to src.
func newFileEntry(src blockio.Source, metadataBlockSize uint32, state *volumeState, d DirectoryEntry) *FileEntry {
	return &FileEntry{
		src:                   src,
		metadataBlockSize:     metadataBlockSize,
		state:                 state,
		name:                  d.Name,
		kind:                  d.Kind,
		blockNumber:           d.ChildBlockNumber,
		flags:                 d.Flags,
		creationTime:          d.CreationTime,
		modificationTime:      d.ModificationTime,
		accessTime:            d.AccessTime,
		entryModificationTime: d.EntryModificationTime,
		size:                  d.Size,
	}
}

func (e *FileEntry) NameUTF8() string { return e.name }

func (e *FileEntry) NameUTF16() []byte { return EncodeUTF16LE(e.name) }

func (e *FileEntry) Flags() uint32 { return e.flags }

func (e *FileEntry) IsDirectory() bool {
	return e.flags&AttrDirectory != 0 || e.kind == KindSubDirectory
}

func (e *FileEntry) Size() uint64 { return e.size }

func (e *FileEntry) CreationTime() FileTime          { return e.creationTime }
func (e *FileEntry) ModificationTime() FileTime      { return e.modificationTime }
func (e *FileEntry) AccessTime() FileTime            { return e.accessTime }
func (e *FileEntry) EntryModificationTime() FileTime { return e.entryModificationTime }

func (e *FileEntry) ensureChildren() error {
	const fn = "refs.FileEntry.ensureChildren"

	if e.state != nil && e.state.closed.Load() {
		return ferror.Newf(ferror.KindRuntime, fn, "volume is closed")
	}
	if e.state != nil && e.state.aborted.Load() {
		return ferror.Newf(ferror.KindAborted, fn, "enumeration aborted")
	}
	e.childrenOnce.Do(func() {
		e.children, e.childrenErr = e.decodeChildren()
	})
	return e.childrenErr
}

func (e *FileEntry) decodeChildren() ([]DirectoryEntry, error) {
	const fn = "refs.FileEntry.decodeChildren"

	if e.state != nil && e.state.aborted.Load() {
		return nil, ferror.Newf(ferror.KindAborted, fn, "enumeration aborted")
	}
	if !e.IsDirectory() {
		return nil, nil
	}

	dir := e.preloaded
	if dir == nil {
		block, err := ReadBlock(e.src, e.blockNumber, e.metadataBlockSize)
		if err != nil {
			return nil, ferror.Wrap(err, fn, int64(e.blockNumber), -1)
		}

		dir, err = ReadDirectoryFromPayload(block.Payload(), fn)
		if err != nil {
			return nil, ferror.Wrap(err, fn, int64(e.blockNumber), -1)
		}
	}

	decoded, err := dir.Entries()
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(e.blockNumber), -1)
	}
	return decoded, nil
}

// NumberOfSubEntries decodes the child records on first call and returns
// their count.
func (e *FileEntry) NumberOfSubEntries() (int, error) {
	if err := e.ensureChildren(); err != nil {
		return 0, err
	}
	return len(e.children), nil
}

// SubEntryByIndex materializes a fresh FileEntry for the i'th child in
// key order; two calls with the same index return two independent
// entries.
func (e *FileEntry) SubEntryByIndex(i int) (*FileEntry, error) {
	const fn = "refs.FileEntry.SubEntryByIndex"

	if err := e.ensureChildren(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(e.children) {
		return nil, ferror.Newf(ferror.KindArguments, fn, "sub-entry index %d out of range [0,%d)", i, len(e.children))
	}
	return newFileEntry(e.src, e.metadataBlockSize, e.state, e.children[i]), nil
}
