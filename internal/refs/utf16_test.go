package refs

import "testing"

func TestDecodeUTF16LE_BMP(t *testing.T) {
	data := []byte{'h', 0, 'i', 0}
	got, err := DecodeUTF16LE(data)
	if err != nil {
		t.Fatalf("DecodeUTF16LE err: %v", err)
	}
	if got != "hi" {
		t.Fatalf("DecodeUTF16LE=%q want %q", got, "hi")
	}
}

func TestDecodeUTF16LE_SurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE = surrogate pair D83D DE00
	data := []byte{0x3d, 0xd8, 0x00, 0xde}
	got, err := DecodeUTF16LE(data)
	if err != nil {
		t.Fatalf("DecodeUTF16LE err: %v", err)
	}
	if want := "\U0001F600"; got != want {
		t.Fatalf("DecodeUTF16LE=%q want %q", got, want)
	}
}

func TestDecodeUTF16LE_UnpairedHighSurrogate(t *testing.T) {
	data := []byte{0x3d, 0xd8} // high surrogate, nothing after
	if _, err := DecodeUTF16LE(data); err == nil {
		t.Fatalf("DecodeUTF16LE(unpaired high) err=nil want error")
	}
}

func TestDecodeUTF16LE_UnpairedLowSurrogate(t *testing.T) {
	data := []byte{0x00, 0xde} // lone low surrogate
	if _, err := DecodeUTF16LE(data); err == nil {
		t.Fatalf("DecodeUTF16LE(unpaired low) err=nil want error")
	}
}

func TestDecodeUTF16LE_OddLength(t *testing.T) {
	if _, err := DecodeUTF16LE([]byte{0x00}); err == nil {
		t.Fatalf("DecodeUTF16LE(odd length) err=nil want error")
	}
}

func TestUTF16RoundTrip(t *testing.T) {
	names := []string{"hello", "日本語", "\U0001F600cafe"}
	for _, name := range names {
		encoded := EncodeUTF16LE(name)
		decoded, err := DecodeUTF16LE(encoded)
		if err != nil {
			t.Fatalf("round trip %q: %v", name, err)
		}
		if decoded != name {
			t.Fatalf("round trip %q got %q", name, decoded)
		}
	}
}
