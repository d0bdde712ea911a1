// Package crypto supplies the elliptic-curve and hashing primitives that
// spec.md declares out of scope for the consensus and p2p cores: Keccak-256
// hashing and secp256k1 ECDSA public-key recovery. Everything here is a
// thin wrapper over golang.org/x/crypto/sha3 and btcsuite's btcec/v2 — no
// curve arithmetic is hand-rolled.
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/corechain-labs/corechain/common"
)

const (
	// SignatureLength is r(32) || s(32) || v(1), the wire layout used by
	// both the clique seal and Ecrecover/Sign below.
	SignatureLength  = 64 + 1
	RecoveryIDOffset = 64
)

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash returns the Keccak-256 digest of data as a common.Hash.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// S256 returns the secp256k1 curve.
func S256() ecdsa.PublicKey { return ecdsa.PublicKey{Curve: btcec.S256()} }

// Ecrecover returns the uncompressed public key (65 bytes, 0x04 prefix)
// that produced sig over hash. sig must be 65 bytes: r(32) || s(32) || v(1)
// with v in {0, 1}.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := sigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed(), nil
}

// SigToPub returns the *ecdsa.PublicKey that produced sig over hash.
func SigToPub(hash, sig []byte) (*ecdsa.PublicKey, error) {
	pub, err := sigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	return pub.ToECDSA(), nil
}

func sigToPub(hash, sig []byte) (*btcec.PublicKey, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("invalid signature length: got %d, want %d", len(sig), SignatureLength)
	}
	if sig[RecoveryIDOffset] > 3 {
		return nil, errors.New("invalid signature recovery id")
	}
	// btcec wants the compact signature header byte (27+recid) first.
	btcsig := make([]byte, SignatureLength)
	btcsig[0] = sig[RecoveryIDOffset] + 27
	copy(btcsig[1:], sig[:RecoveryIDOffset])
	pub, _, err := btcecdsa.RecoverCompact(btcsig, hash)
	return pub, err
}

// Sign produces a 65-byte r||s||v signature over a 32-byte hash using prv.
// It is provided alongside Ecrecover so tests can construct valid clique
// seals without a second crypto dependency.
func Sign(hash []byte, prv *ecdsa.PrivateKey) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash is required to be exactly 32 bytes (%d)", len(hash))
	}
	btcPriv, _ := btcec.PrivKeyFromBytes(prv.D.Bytes())
	sig, err := btcecdsa.SignCompact(btcPriv, hash, false)
	if err != nil {
		return nil, err
	}
	// SignCompact returns header(1) || r(32) || s(32); rotate to r||s||v.
	out := make([]byte, SignatureLength)
	copy(out, sig[1:])
	out[RecoveryIDOffset] = sig[0] - 27
	return out, nil
}

// DeriveNodeID treats secret as an ECDSA private key scalar and returns
// its 64-byte uncompressed public key (sans the 0x04 prefix), the node-id
// form enode URLs advertise. Used to turn a P2PServer's local secret into
// a stable, publicly verifiable identity without a second key-derivation
// scheme.
func DeriveNodeID(secret [32]byte) [64]byte {
	_, pub := btcec.PrivKeyFromBytes(secret[:])
	var id [64]byte
	copy(id[:], pub.SerializeUncompressed()[1:])
	return id
}

// PubkeyToAddress derives the 20-byte address from an ECDSA public key:
// the low 20 bytes of Keccak256 of the uncompressed public key, sans the
// 0x04 prefix byte.
func PubkeyToAddress(pub ecdsa.PublicKey) common.Address {
	buf := elliptic.Marshal(pub.Curve, pub.X, pub.Y)
	return common.BytesToAddress(Keccak256(buf[1:])[12:])
}
