package types

import (
	"bytes"
	"testing"

	"github.com/corechain-labs/corechain/params"
)

func legacyOpts() DecodeOptions {
	return DecodeOptions{ChainParams: params.Mainnet, Hardfork: params.London}
}

func typedOpts() DecodeOptions {
	return DecodeOptions{ChainParams: params.NewCliqueParams(15, 30_000, params.GenesisParams{}), Hardfork: params.Chainstart}
}

// TestDecodeLegacyTransaction checks a leading byte above 0x7f dispatches
// to the legacy, untyped decoder regardless of EIP-2718 activation.
func TestDecodeLegacyTransaction(t *testing.T) {
	raw := []byte{0xf8, 0x6c, 0x01, 0x02, 0x03}
	f := TransactionFactory{}
	dec, err := f.Decode(raw, legacyOpts(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Typed {
		t.Errorf("expected a legacy transaction, got Typed=true")
	}
	if !dec.Signed {
		t.Errorf("expected Signed=true to be preserved")
	}
	if !bytes.Equal(dec.Payload, raw) {
		t.Errorf("legacy payload should be the raw bytes unchanged")
	}
}

// TestDecodeTypedTransaction checks a leading 0x01 byte dispatches to the
// EIP-2930 typed decoder when EIP-2718 is active for the chain.
func TestDecodeTypedTransaction(t *testing.T) {
	raw := []byte{TxTypeEIP2930, 0xaa, 0xbb}
	f := TransactionFactory{}
	dec, err := f.Decode(raw, typedOpts(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Typed || dec.TxType != TxTypeEIP2930 {
		t.Errorf("expected a typed EIP-2930 transaction, got %+v", dec)
	}
	if !bytes.Equal(dec.Payload, raw[1:]) {
		t.Errorf("typed payload should exclude the leading type byte")
	}
}

// TestDecodeTypedTransactionRequiresEIP2718 checks a typed leading byte is
// rejected when the chain hasn't activated EIP-2718.
func TestDecodeTypedTransactionRequiresEIP2718(t *testing.T) {
	f := TransactionFactory{}
	_, err := f.Decode([]byte{TxTypeEIP2930, 0x00}, legacyOpts(), false)
	if err != errEIP2718Disabled {
		t.Errorf("got %v, want errEIP2718Disabled", err)
	}
}

// TestDecodeUnknownTypedTransaction checks an unrecognized typed leading
// byte is rejected distinctly from a disabled-envelope rejection.
func TestDecodeUnknownTypedTransaction(t *testing.T) {
	f := TransactionFactory{}
	_, err := f.Decode([]byte{0x02, 0x00}, typedOpts(), false)
	if err != errUnknownTxType {
		t.Errorf("got %v, want errUnknownTxType", err)
	}
}

// TestDecodeEmptyBytes checks a zero-length input is malformed regardless
// of the signed flag.
func TestDecodeEmptyBytes(t *testing.T) {
	f := TransactionFactory{}
	if _, err := f.Decode([]byte{}, legacyOpts(), true); err != ErrMalformedHeader {
		t.Errorf("got %v, want ErrMalformedHeader", err)
	}
}

// TestDecodeNilBytesSigned resolves the open question of
// getTransactionClass(undefined, signed=true): rather than silently
// picking a decoder family, it is an explicit UnsupportedRequest.
func TestDecodeNilBytesSigned(t *testing.T) {
	f := TransactionFactory{}
	_, err := f.Decode(nil, legacyOpts(), true)
	if err != errUnsupportedRequest {
		t.Errorf("got %v, want errUnsupportedRequest", err)
	}
}

// TestDecodeNilBytesUnsigned checks the unsigned nil-input path is treated
// as a plain malformed input instead of the ambiguous signed case.
func TestDecodeNilBytesUnsigned(t *testing.T) {
	f := TransactionFactory{}
	_, err := f.Decode(nil, legacyOpts(), false)
	if err != ErrMalformedHeader {
		t.Errorf("got %v, want ErrMalformedHeader", err)
	}
}
