package types

import "github.com/corechain-labs/corechain/params"

// TxTypeEIP2930 is the only typed-envelope transaction this thin factory
// dispatches to a concrete decoder; spec.md §4.5 calls the factory "thin"
// precisely because transaction execution itself is out of scope.
const TxTypeEIP2930 = 0x01

// DecodeOptions carries the chain context TransactionFactory.Decode needs
// to check EIP-2718 activation.
type DecodeOptions struct {
	ChainParams params.ChainParams
	Hardfork    params.Hardfork
}

// DecodedTransaction is the thin result of TransactionFactory.Decode: just
// enough to tell typed from legacy and signed from unsigned, since the
// transaction body itself is opaque to this layer (out of scope per
// spec.md §1).
type DecodedTransaction struct {
	Typed   bool
	TxType  byte
	Signed  bool
	Payload []byte
}

// TransactionFactory dispatches raw transaction bytes to the right
// decoder family by leading-byte convention (EIP-2718).
type TransactionFactory struct{}

// Decode classifies rawBytes per spec.md §4.5. It never decodes the
// transaction body itself — RLP/signature decoding of the typed or legacy
// payload is left to its own (out-of-scope) decoder; this layer only
// establishes which decoder applies and whether the EIP-2718 envelope is
// legal for opts' chain.
func (TransactionFactory) Decode(rawBytes []byte, opts DecodeOptions, signed bool) (*DecodedTransaction, error) {
	if rawBytes == nil {
		// The source's getTransactionClass(undefined, signed=true) path
		// returns nothing; the intent is ambiguous (spec.md §9 Open
		// Questions). Preserve that ambiguity as an explicit error
		// instead of silently dispatching to either decoder family.
		if signed {
			return nil, errUnsupportedRequest
		}
		return nil, ErrMalformedHeader
	}
	if len(rawBytes) == 0 {
		return nil, ErrMalformedHeader
	}
	if rawBytes[0] <= 0x7F {
		if !opts.ChainParams.EIPs()[2718] {
			return nil, errEIP2718Disabled
		}
		switch rawBytes[0] {
		case TxTypeEIP2930:
			return &DecodedTransaction{Typed: true, TxType: rawBytes[0], Signed: signed, Payload: rawBytes[1:]}, nil
		default:
			return nil, errUnknownTxType
		}
	}

	// Legacy RLP transaction.
	return &DecodedTransaction{Typed: false, Signed: signed, Payload: rawBytes}, nil
}

// These mirror kinds consensus.Err{EIP2718Disabled,UnknownTxType,
// UnsupportedRequest} without importing consensus (which itself imports
// types), distinguished only by package: the wire-level classification
// done here is logically part of the codec layer, not the header
// validator, even though spec.md §7 lists all error kinds together.
var (
	errEIP2718Disabled  = &ConstructionError{Kind: "EIP2718Disabled"}
	errUnknownTxType    = &ConstructionError{Kind: "UnknownTxType"}
	errUnsupportedRequest = &ConstructionError{Kind: "UnsupportedRequest"}
)
