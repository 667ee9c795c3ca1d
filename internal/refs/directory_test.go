package refs

import (
	"encoding/binary"
	"testing"
)

func buildChildValue(blockNumber uint64) []byte {
	v := make([]byte, childValueSize)
	binary.LittleEndian.PutUint64(v[0:8], blockNumber)
	return v
}

func TestDirectoryEntries_DescendsEmbeddedMinistore(t *testing.T) {
	innerName := EncodeUTF16LE("inner.txt")
	innerRecord := buildMinistoreRecord(append([]byte{keyTagFile}, innerName...), buildChildValue(7), 0)
	embeddedPayload := buildMinistorePayload([][]byte{innerRecord})

	outerName := EncodeUTF16LE("outer")
	outerRecord := buildMinistoreRecord(append([]byte{keyTagSubDirectory}, outerName...), embeddedPayload, NodeRecordHasEmbeddedMinistore)
	outerPayload := buildMinistorePayload([][]byte{outerRecord})

	dir, err := ReadDirectoryFromPayload(outerPayload, "test")
	if err != nil {
		t.Fatalf("ReadDirectoryFromPayload err: %v", err)
	}

	entries, err := dir.Entries()
	if err != nil {
		t.Fatalf("Entries err: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries)=%d want 2", len(entries))
	}
	if entries[0].Name != "outer" || entries[0].Kind != KindSubDirectory {
		t.Fatalf("entries[0]=%+v want outer sub-directory", entries[0])
	}
	if entries[1].Name != "inner.txt" || entries[1].ChildBlockNumber != 7 {
		t.Fatalf("entries[1]=%+v want inner.txt block 7", entries[1])
	}

	if n := dir.NumberOfEntries(); n != 2 {
		t.Fatalf("NumberOfEntries()=%d want 2", n)
	}
}

func TestDirectoryEntries_SkipsAttributeRecords(t *testing.T) {
	attrRecord := buildMinistoreRecord([]byte{keyTagAttribute, 0x01}, []byte{0xaa, 0xbb}, 0)

	fileName := EncodeUTF16LE("Documents")
	fileRecord := buildMinistoreRecord(append([]byte{keyTagFile}, fileName...), buildChildValue(3), 0)

	payload := buildMinistorePayload([][]byte{fileRecord, attrRecord})

	dir, err := ReadDirectoryFromPayload(payload, "test")
	if err != nil {
		t.Fatalf("ReadDirectoryFromPayload err: %v", err)
	}

	entries, err := dir.Entries()
	if err != nil {
		t.Fatalf("Entries err: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries)=%d want 1", len(entries))
	}
	if entries[0].Name != "Documents" {
		t.Fatalf("Name=%q want %q", entries[0].Name, "Documents")
	}
}
