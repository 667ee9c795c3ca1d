package blockio

import "testing"

func TestMemorySource_ReadExact(t *testing.T) {
	src := FromMemory([]byte("hello world"))
	buf := make([]byte, 5)
	if err := src.ReadExact(6, buf); err != nil {
		t.Fatalf("ReadExact err: %v", err)
	}
	if string(buf) != "world" {
		t.Fatalf("ReadExact=%q want %q", buf, "world")
	}
}

func TestMemorySource_ReadPastEnd(t *testing.T) {
	src := FromMemory([]byte("short"))
	buf := make([]byte, 10)
	if err := src.ReadExact(0, buf); err == nil {
		t.Fatalf("ReadExact past end err=nil want error")
	}
}

func TestSubRange_RebasesOffsets(t *testing.T) {
	src := FromMemory([]byte("0123456789"))
	sub, err := src.SubRange(4, 4)
	if err != nil {
		t.Fatalf("SubRange err: %v", err)
	}
	if sub.Len() != 4 {
		t.Fatalf("SubRange.Len()=%d want 4", sub.Len())
	}

	buf := make([]byte, 2)
	if err := sub.ReadExact(0, buf); err != nil {
		t.Fatalf("ReadExact on sub-range err: %v", err)
	}
	if string(buf) != "45" {
		t.Fatalf("ReadExact on sub-range=%q want %q", buf, "45")
	}

	if err := sub.ReadExact(3, make([]byte, 2)); err == nil {
		t.Fatalf("ReadExact past sub-range bound err=nil want error")
	}
}

func TestSubRange_OutOfParentBounds(t *testing.T) {
	src := FromMemory([]byte("0123456789"))
	if _, err := src.SubRange(8, 10); err == nil {
		t.Fatalf("SubRange exceeding parent length err=nil want error")
	}
}
