package refs

import (
	"encoding/binary"

	"github.com/libyal/go-fsrefs/internal/ferror"
)

// DecodeUTF16LE converts an on-disk little-endian UTF-16 name to a Go
// string (which is UTF-8), rejecting unpaired surrogates rather than
// substituting U+FFFD.
func DecodeUTF16LE(data []byte) (string, error) {
	const fn = "refs.DecodeUTF16LE"

	if len(data)%2 != 0 {
		return "", ferror.Newf(ferror.KindConversion, fn, "odd-length UTF-16 byte slice: %d bytes", len(data))
	}

	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(data[2*i : 2*i+2])
	}

	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u < 0xd800 || u > 0xdfff:
			runes = append(runes, rune(u))
		case u <= 0xdbff:
			// high surrogate, must be followed by a low surrogate
			if i+1 >= len(units) {
				return "", ferror.Newf(ferror.KindConversion, fn, "unpaired high surrogate at unit %d", i)
			}
			low := units[i+1]
			if low < 0xdc00 || low > 0xdfff {
				return "", ferror.Newf(ferror.KindConversion, fn, "high surrogate at unit %d not followed by low surrogate", i)
			}
			r := 0x10000 + (rune(u)-0xd800)<<10 + (rune(low) - 0xdc00)
			runes = append(runes, r)
			i++
		default:
			// lone low surrogate
			return "", ferror.Newf(ferror.KindConversion, fn, "unpaired low surrogate at unit %d", i)
		}
	}

	return string(runes), nil
}

// EncodeUTF16LE is the inverse of DecodeUTF16LE, used by the name
// round-trip property.
func EncodeUTF16LE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		if r <= 0xffff {
			var buf [2]byte
			binary.LittleEndian.PutUint16(buf[:], uint16(r))
			out = append(out, buf[:]...)
			continue
		}
		r -= 0x10000
		high := uint16(0xd800 + (r >> 10))
		low := uint16(0xdc00 + (r & 0x3ff))
		var buf [4]byte
		binary.LittleEndian.PutUint16(buf[0:2], high)
		binary.LittleEndian.PutUint16(buf[2:4], low)
		out = append(out, buf[:]...)
	}
	return out
}
