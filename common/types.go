// Package common holds the small fixed-width value types shared by the
// consensus and p2p packages: content hashes and beneficiary addresses.
package common

import (
	"encoding/hex"
)

const (
	HashLength    = 32
	AddressLength = 20
	NonceLength   = 8
	BloomLength   = 256
)

// Hash is a 32 byte content hash, used for parentHash, uncleHash,
// stateRoot, transactionsTrie, receiptTrie and mixHash.
type Hash [HashLength]byte

// BytesToHash returns a Hash from the right-aligned bytes in b.
// Slices longer than HashLength are truncated from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) Hex() string   { return "0x" + hex.EncodeToString(h[:]) }
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool { return h == (Hash{}) }

// Address is a 20 byte beneficiary/signer address.
type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

func HexToAddress(s string) Address { return BytesToAddress(FromHex(s)) }

func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) Bytes() []byte   { return a[:] }
func (a Address) Hex() string     { return "0x" + hex.EncodeToString(a[:]) }
func (a Address) String() string  { return a.Hex() }
func (a Address) IsZero() bool    { return a == (Address{}) }

// Bloom is a 256 byte logs bloom filter.
type Bloom [BloomLength]byte

func BytesToBloom(b []byte) Bloom {
	var bl Bloom
	if len(b) > BloomLength {
		b = b[len(b)-BloomLength:]
	}
	copy(bl[BloomLength-len(b):], b)
	return bl
}

func (b Bloom) Bytes() []byte { return b[:] }
