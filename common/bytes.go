package common

import "encoding/hex"

// FromHex decodes a 0x-prefixed (or bare) hex string. Odd-length input is
// left-padded with a zero nibble, matching the teacher's FormatData/FromHex
// convention for user-supplied hex.
func FromHex(s string) []byte {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

// LeftPadBytes returns a copy of slice left-padded with zero bytes to
// length l. If slice is already at least l bytes, it is returned unchanged.
func LeftPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded[l-len(slice):], slice)
	return padded
}

// RightPadBytes returns a copy of slice right-padded with zero bytes to
// length l.
func RightPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded, slice)
	return padded
}

// TrimLeftZeroes returns the subslice of b with leading zero bytes
// stripped. An all-zero slice returns an empty (non-nil) slice.
func TrimLeftZeroes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}
