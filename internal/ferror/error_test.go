package ferror

import "testing"

func TestNewf_KindMatchesWithIs(t *testing.T) {
	err := Newf(KindInputInvalid, "pkg.Func", "bad signature")
	if !Is(err, KindInputInvalid) {
		t.Fatalf("Is(err, KindInputInvalid)=false want true")
	}
	if Is(err, KindIO) {
		t.Fatalf("Is(err, KindIO)=true want false")
	}
}

func TestWrap_PreservesKind(t *testing.T) {
	err := Newf(KindIO, "pkg.Read", "short read")
	wrapped := Wrap(err, "pkg.Caller", 5, 0x1000)
	if !Is(wrapped, KindIO) {
		t.Fatalf("wrapped error lost its KindIO")
	}
	if KindOf(wrapped) != KindIO {
		t.Fatalf("KindOf(wrapped)=%v want KindIO", KindOf(wrapped))
	}
}

func TestWrapKind_Rekinds(t *testing.T) {
	err := Newf(KindIO, "pkg.Read", "unexpected EOF")
	rekinded := WrapKind(err, KindInputInvalid, "pkg.Decode", 1, 2)
	if Is(rekinded, KindIO) {
		t.Fatalf("WrapKind did not remove the original KindIO marker")
	}
	if !Is(rekinded, KindInputInvalid) {
		t.Fatalf("WrapKind did not attach KindInputInvalid")
	}
}

func TestKindOf_DefaultsToRuntime(t *testing.T) {
	if got := KindOf(nil); got != KindRuntime {
		t.Fatalf("KindOf(nil)=%v want KindRuntime", got)
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, "fn", 0, 0) != nil {
		t.Fatalf("Wrap(nil, ...) != nil")
	}
}
