package refs

import (
	"testing"

	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// buildEntrySource builds a two-block byte source whose block 1 is a
// directory holding a single file record named "a.txt".
func buildEntrySource(t *testing.T) blockio.Source {
	t.Helper()

	const size = 4096
	full := make([]byte, size*2)
	copy(full[size:], buildBlockBytes(size, 1, 1, 0))

	record := buildMinistoreRecord(append([]byte{keyTagFile}, EncodeUTF16LE("a.txt")...), buildChildValue(0), 0)
	copy(full[size+blockHeaderSize:], buildMinistorePayload([][]byte{record}))

	return blockio.FromMemory(full)
}

func newTestDirEntry(src blockio.Source, state *volumeState) *FileEntry {
	return newFileEntry(src, 4096, state, DirectoryEntry{
		Name:             "dir",
		Kind:             KindSubDirectory,
		ChildBlockNumber: 1,
		Flags:            AttrDirectory,
	})
}

func TestSubEntryByIndex_MaterializesFreshEntries(t *testing.T) {
	dir := newTestDirEntry(buildEntrySource(t), &volumeState{})

	a, err := dir.SubEntryByIndex(0)
	if err != nil {
		t.Fatalf("SubEntryByIndex err: %v", err)
	}
	b, err := dir.SubEntryByIndex(0)
	if err != nil {
		t.Fatalf("SubEntryByIndex err: %v", err)
	}
	if a == b {
		t.Fatalf("two SubEntryByIndex(0) calls returned the same handle")
	}
	if a.NameUTF8() != "a.txt" || b.NameUTF8() != "a.txt" {
		t.Fatalf("entry names %q, %q want %q", a.NameUTF8(), b.NameUTF8(), "a.txt")
	}
}

func TestFileEntry_ClosedVolumeFailsEnumeration(t *testing.T) {
	state := &volumeState{}
	dir := newTestDirEntry(buildEntrySource(t), state)

	state.closed.Store(true)
	if _, err := dir.NumberOfSubEntries(); err == nil {
		t.Fatalf("NumberOfSubEntries after close err=nil want error")
	} else if !ferror.Is(err, ferror.KindRuntime) {
		t.Fatalf("NumberOfSubEntries after close kind=%v want KindRuntime", ferror.KindOf(err))
	}
}

func TestFileEntry_AbortedVolumeFailsEnumeration(t *testing.T) {
	state := &volumeState{}
	dir := newTestDirEntry(buildEntrySource(t), state)

	state.aborted.Store(true)
	if _, err := dir.NumberOfSubEntries(); err == nil {
		t.Fatalf("NumberOfSubEntries after abort err=nil want error")
	} else if !ferror.Is(err, ferror.KindAborted) {
		t.Fatalf("NumberOfSubEntries after abort kind=%v want KindAborted", ferror.KindOf(err))
	}
}
