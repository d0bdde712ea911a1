package types

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/corechain-labs/corechain/common"
	"github.com/corechain-labs/corechain/params"
)

// TestRoundTrip reproduces S4: a header built with small numeric fields
// serializes with minimal big-endian encoding and parses back equal
// (invariant 1).
func TestRoundTrip(t *testing.T) {
	h, err := HeaderCodec{}.FromFieldDict(FieldDict{
		Difficulty: big.NewInt(1),
		Number:     big.NewInt(2),
		GasLimit:   big.NewInt(0xffffffffffffff),
		GasUsed:    big.NewInt(0),
		Timestamp:  big.NewInt(0),
	}, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	enc, err := h.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	h2, err := HeaderCodec{}.FromRlpBytes(enc, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Fatalf("FromRlpBytes: %v", err)
	}

	enc2, err := h2.Serialize()
	if err != nil {
		t.Fatalf("re-serialize: %v", err)
	}
	if !bytes.Equal(enc, enc2) {
		t.Errorf("round trip not byte-identical: %x vs %x", enc, enc2)
	}
	if h.Hash() != h2.Hash() {
		t.Errorf("round trip changed hash: %v vs %v", h.Hash(), h2.Hash())
	}
}

// TestFieldWidths checks invariant 2: construction rejects any fixed-width
// field at the wrong width, naming the offending field.
func TestFieldWidths(t *testing.T) {
	// 31 bytes instead of the required 32 for parentHash.
	badParentHash := make([]byte, 31)
	values := [][]byte{badParentHash}
	_, err := HeaderCodec{}.FromValuesSequence(values, CodecOptions{ChainParams: params.Mainnet})
	if !IsInvalidFieldWidth(err) {
		t.Fatalf("got %v, want InvalidFieldWidth", err)
	}

	// 19 bytes instead of 20 for coinbase.
	values = [][]byte{make([]byte, 32), make([]byte, 32), make([]byte, 19)}
	_, err = HeaderCodec{}.FromValuesSequence(values, CodecOptions{ChainParams: params.Mainnet})
	if !IsInvalidFieldWidth(err) {
		t.Fatalf("got %v, want InvalidFieldWidth for coinbase", err)
	}
}

// TestMalformedHeaderTooManyFields checks fromValuesSequence rejects a
// sequence longer than 15 elements.
func TestMalformedHeaderTooManyFields(t *testing.T) {
	values := make([][]byte, 16)
	for i := range values {
		values[i] = []byte{}
	}
	_, err := HeaderCodec{}.FromValuesSequence(values, CodecOptions{ChainParams: params.Mainnet})
	if err != ErrMalformedHeader {
		t.Errorf("got %v, want ErrMalformedHeader", err)
	}
}

// TestCliqueHashExclusion checks invariant 7: a clique non-genesis
// header's Hash() excludes the trailing 65-byte seal, while an otherwise
// identical ethash header's Hash() does not.
func TestCliqueHashExclusion(t *testing.T) {
	cliqueParams := params.NewCliqueParams(15, 30_000, params.GenesisParams{})
	extra := append(make([]byte, 32), make([]byte, 65)...)

	full, err := HeaderCodec{}.FromFieldDict(FieldDict{
		Number:    big.NewInt(1),
		ExtraData: extra,
	}, CodecOptions{ChainParams: cliqueParams})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	truncated, err := HeaderCodec{}.FromFieldDict(FieldDict{
		Number:    big.NewInt(1),
		ExtraData: extra[:32],
	}, CodecOptions{ChainParams: cliqueParams})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if full.Hash() != truncated.Hash() {
		t.Errorf("clique hash should be insensitive to the trailing seal: %v vs %v", full.Hash(), truncated.Hash())
	}

	ethashFull, err := HeaderCodec{}.FromFieldDict(FieldDict{
		Number:    big.NewInt(1),
		ExtraData: extra,
	}, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ethashTruncated, err := HeaderCodec{}.FromFieldDict(FieldDict{
		Number:    big.NewInt(1),
		ExtraData: extra[:32],
	}, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ethashFull.Hash() == ethashTruncated.Hash() {
		t.Errorf("ethash hash should be sensitive to extraData length, got equal hashes")
	}
}

// TestGenesisOption checks the §4.1 genesis substitution: it requires
// the chainstart hardfork and fills in canonical-zero fields from
// ChainParams.Genesis().
func TestGenesisOption(t *testing.T) {
	h, err := HeaderCodec{}.FromFieldDict(FieldDict{}, CodecOptions{
		ChainParams:           params.Mainnet,
		Hardfork:              params.Chainstart,
		InitWithGenesisHeader: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Number().Sign() != 0 {
		t.Errorf("genesis header number should be 0, got %s", h.Number())
	}
	if h.Difficulty().Cmp(params.Mainnet.Genesis().Difficulty) != 0 {
		t.Errorf("genesis difficulty not substituted: got %s", h.Difficulty())
	}

	_, err = HeaderCodec{}.FromFieldDict(FieldDict{}, CodecOptions{
		ChainParams:           params.Mainnet,
		Hardfork:              params.Homestead,
		InitWithGenesisHeader: true,
	})
	if err != ErrInvalidGenesisOption {
		t.Errorf("got %v, want ErrInvalidGenesisOption", err)
	}
}

// TestDAOExtraDataGate reproduces S3: within the ten-block DAO window,
// any extraData other than the literal marker is rejected; just past the
// window, any extraData is accepted.
func TestDAOExtraDataGate(t *testing.T) {
	daoBlock := params.Mainnet.HardforkBlock(params.DAO)

	_, err := HeaderCodec{}.FromFieldDict(FieldDict{
		Number:    new(big.Int).Add(daoBlock, big.NewInt(5)),
		ExtraData: []byte("not the marker"),
	}, CodecOptions{ChainParams: params.Mainnet})
	if err != ErrInvalidDAOExtraData {
		t.Errorf("got %v, want ErrInvalidDAOExtraData", err)
	}

	h, err := HeaderCodec{}.FromFieldDict(FieldDict{
		Number:    new(big.Int).Add(daoBlock, big.NewInt(10)),
		ExtraData: []byte("anything goes here"),
	}, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Errorf("unexpected error past the DAO window: %v", err)
	}
	if h == nil {
		t.Fatal("expected a header")
	}
}

// TestSealHashEthashExcludesMixHashAndNonce checks that under ethash,
// changing mixHash or nonce changes Hash() but not SealHash().
func TestSealHashEthashExcludesMixHashAndNonce(t *testing.T) {
	base := FieldDict{Number: big.NewInt(1), Difficulty: big.NewInt(100)}
	h1, err := HeaderCodec{}.FromFieldDict(base, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withMix := base
	withMix.MixHash = common.HexToHash("0x0102030405060708091011121314151617181920212223242526272829303132"[:66])
	h2, err := HeaderCodec{}.FromFieldDict(withMix, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h1.SealHash() != h2.SealHash() {
		t.Errorf("SealHash should be insensitive to mixHash, got %v vs %v", h1.SealHash(), h2.SealHash())
	}
	if h1.Hash() == h2.Hash() {
		t.Errorf("Hash should be sensitive to mixHash, got equal hashes")
	}

	withNonce := base
	withNonce.Nonce = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}
	h3, err := HeaderCodec{}.FromFieldDict(withNonce, CodecOptions{ChainParams: params.Mainnet})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1.SealHash() != h3.SealHash() {
		t.Errorf("SealHash should be insensitive to nonce, got %v vs %v", h1.SealHash(), h3.SealHash())
	}
	if h1.Hash() == h3.Hash() {
		t.Errorf("Hash should be sensitive to nonce, got equal hashes")
	}
}
