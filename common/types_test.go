package common

import "testing"

// TestHashSetBytesTruncatesAndPads checks SetBytes right-aligns its input,
// truncating from the left when oversized and zero-padding when short.
func TestHashSetBytesTruncatesAndPads(t *testing.T) {
	h := BytesToHash([]byte{1, 2, 3})
	want := Hash{}
	want[HashLength-1] = 3
	want[HashLength-2] = 2
	want[HashLength-3] = 1
	if h != want {
		t.Errorf("got %x, want %x", h, want)
	}

	oversized := make([]byte, HashLength+4)
	for i := range oversized {
		oversized[i] = byte(i)
	}
	h2 := BytesToHash(oversized)
	if h2[0] != oversized[4] {
		t.Errorf("expected truncation from the left, got %x", h2)
	}
}

// TestHashHexRoundTrip checks HexToHash inverts Hash.Hex.
func TestHashHexRoundTrip(t *testing.T) {
	h := BytesToHash([]byte("some 32 byte content padded out"))
	if got := HexToHash(h.Hex()); got != h {
		t.Errorf("got %x, want %x", got, h)
	}
}

// TestHashIsZero checks the zero-value Hash reports IsZero and a
// populated one does not.
func TestHashIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Errorf("expected the zero Hash to report IsZero")
	}
	h[0] = 1
	if h.IsZero() {
		t.Errorf("expected a non-zero Hash to not report IsZero")
	}
}

// TestAddressSetBytes mirrors TestHashSetBytesTruncatesAndPads for the
// 20-byte Address type.
func TestAddressSetBytes(t *testing.T) {
	a := BytesToAddress([]byte{0xaa, 0xbb})
	if a[AddressLength-1] != 0xbb || a[AddressLength-2] != 0xaa {
		t.Errorf("got %x, want right-aligned 0xaabb", a)
	}
	if a.IsZero() {
		t.Errorf("expected a populated address to not report IsZero")
	}
}

// TestBytesToBloomTruncatesFromLeft checks an oversized slice keeps its
// rightmost BloomLength bytes, matching BytesToHash/BytesToAddress.
func TestBytesToBloomTruncatesFromLeft(t *testing.T) {
	in := make([]byte, BloomLength+1)
	in[0] = 0xff
	bl := BytesToBloom(in)
	if bl.Bytes()[0] == 0xff {
		t.Errorf("expected the leading byte to be dropped")
	}
}
