// Package types defines BlockHeader and the three representations
// HeaderCodec converts between (field dictionary, RLP bytes, positional
// value sequence), generalizing the teacher's core/types.Header and its
// surrounding hashing helpers to a hardfork-aware, multi-consensus codec.
package types

import (
	"math/big"

	"github.com/corechain-labs/corechain/common"
	"github.com/corechain-labs/corechain/crypto"
	"github.com/corechain-labs/corechain/params"
	"github.com/corechain-labs/corechain/rlp"
)

// KECCAK256_RLP_ARRAY is keccak256 of the RLP encoding of an empty list
// (0xc0), the canonical zero value for uncleHash. Precomputed rather than
// derived at runtime, per the teacher's EmptyUncleHash pattern.
var KECCAK256_RLP_ARRAY = common.HexToHash("1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347")

// KECCAK256_RLP is keccak256 of the RLP encoding of the empty string
// (0x80), the canonical zero value for transactionsTrie/receiptTrie,
// matching the teacher's EmptyRootHash / EmptyLegacyTrieRootHash.
var KECCAK256_RLP = common.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// DefaultGasLimit is the canonical zero-value placeholder for gasLimit in
// fromFieldDict. Under InitWithGenesisHeader a gasLimit equal to it is
// replaced by the chain's genesis gasLimit.
const DefaultGasLimit = 0xffffffffffffff

const (
	cliqueExtraVanity = 32
	cliqueExtraSeal   = 65
)

// BlockHeader is immutable after construction. No setter exists; the only
// way to build one is through HeaderCodec.
type BlockHeader struct {
	parentHash       common.Hash
	uncleHash        common.Hash
	coinbase         common.Address
	stateRoot        common.Hash
	transactionsTrie common.Hash
	receiptTrie      common.Hash
	bloom            common.Bloom
	difficulty       *big.Int
	number           *big.Int
	gasLimit         *big.Int
	gasUsed          *big.Int
	timestamp        *big.Int
	extraData        []byte
	mixHash          common.Hash
	nonce            [8]byte

	chainParams params.ChainParams
}

func (h *BlockHeader) ParentHash() common.Hash       { return h.parentHash }
func (h *BlockHeader) UncleHash() common.Hash        { return h.uncleHash }
func (h *BlockHeader) Coinbase() common.Address      { return h.coinbase }
func (h *BlockHeader) StateRoot() common.Hash        { return h.stateRoot }
func (h *BlockHeader) TransactionsTrie() common.Hash { return h.transactionsTrie }
func (h *BlockHeader) ReceiptTrie() common.Hash      { return h.receiptTrie }
func (h *BlockHeader) Bloom() common.Bloom           { return h.bloom }
func (h *BlockHeader) Difficulty() *big.Int          { return new(big.Int).Set(h.difficulty) }
func (h *BlockHeader) Number() *big.Int              { return new(big.Int).Set(h.number) }
func (h *BlockHeader) GasLimit() *big.Int            { return new(big.Int).Set(h.gasLimit) }
func (h *BlockHeader) GasUsed() *big.Int             { return new(big.Int).Set(h.gasUsed) }
func (h *BlockHeader) Timestamp() *big.Int           { return new(big.Int).Set(h.timestamp) }
func (h *BlockHeader) ExtraData() []byte             { return append([]byte{}, h.extraData...) }
func (h *BlockHeader) MixHash() common.Hash          { return h.mixHash }
func (h *BlockHeader) Nonce() [8]byte                { return h.nonce }

// IsGenesis reports whether this header is block number zero, the
// terminal case both HeaderValidator and the DAO gate special-case.
func (h *BlockHeader) IsGenesis() bool { return h.number.Sign() == 0 }

// ResolvedHardfork returns the hardfork this header's number activates
// under, per ChainParams.ActiveHardforkAt.
func (h *BlockHeader) ResolvedHardfork() params.Hardfork {
	return h.chainParams.ActiveHardforkAt(h.number)
}

// rawSequence returns the 15-element positional sequence with numeric
// fields left as *big.Int (rlp.EncodeToBytes renders them minimal
// big-endian, so no separate stripping step is needed here).
func (h *BlockHeader) rawSequence() []interface{} {
	return []interface{}{
		h.parentHash.Bytes(),
		h.uncleHash.Bytes(),
		h.coinbase.Bytes(),
		h.stateRoot.Bytes(),
		h.transactionsTrie.Bytes(),
		h.receiptTrie.Bytes(),
		h.bloom.Bytes(),
		h.difficulty,
		h.number,
		h.gasLimit,
		h.gasUsed,
		h.timestamp,
		h.extraData,
		h.mixHash.Bytes(),
		h.nonce[:],
	}
}

// Serialize returns the canonical RLP encoding of rawSequence, the wire
// form fromRlpBytes must be able to parse back into an equal header.
func (h *BlockHeader) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(rawList(h.rawSequence()))
}

// rawList is rawSequence wrapped so rlp.EncodeToBytes treats it as a list
// item (a Go slice of []byte/*big.Int values) rather than trying to
// reflect over the interface{} element type directly.
type rawList []interface{}

// Hash returns keccak256 of the header's RLP encoding, with the clique
// seal-truncation exception HeaderCodec.hash() describes: on a non-genesis
// clique header, extraData is truncated to drop its trailing 65-byte seal
// before hashing.
func (h *BlockHeader) Hash() common.Hash {
	return h.hashWithExtra(h.hashableExtraData())
}

// SealHash is the hash a signer or miner works against. Under clique it
// is exactly Hash() (the seal-truncated hash CliqueRules.signatureToAddress
// recovers against); under ethash it is the hash of the first 13 fields
// only, excluding mixHash and nonce, the two fields a miner is searching
// for and which therefore cannot be part of the hash they satisfy.
// Grounded on the teacher's ethash.Ethash.SealHash.
func (h *BlockHeader) SealHash() common.Hash {
	if h.chainParams.ConsensusAlgorithm() == "clique" {
		return h.Hash()
	}
	seq := h.rawSequence()[:13]
	enc, err := rlp.EncodeToBytes(rawList(seq))
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

func (h *BlockHeader) hashableExtraData() []byte {
	if h.chainParams.ConsensusAlgorithm() == "clique" && !h.IsGenesis() {
		if len(h.extraData) >= cliqueExtraSeal {
			return h.extraData[:len(h.extraData)-cliqueExtraSeal]
		}
	}
	return h.extraData
}

func (h *BlockHeader) hashWithExtra(extra []byte) common.Hash {
	seq := h.rawSequence()
	seq[12] = extra
	enc, err := rlp.EncodeToBytes(rawList(seq))
	if err != nil {
		panic(err) // a frozen, validly-constructed header always encodes
	}
	return crypto.Keccak256Hash(enc)
}

// CodecOptions configures the three HeaderCodec constructors.
type CodecOptions struct {
	ChainParams            params.ChainParams
	Hardfork               params.Hardfork
	InitWithGenesisHeader  bool
}

// HeaderCodec converts between the field-dictionary, RLP-bytes, and
// positional-sequence representations of BlockHeader.
type HeaderCodec struct{}

// FieldDict is the named-field form fromFieldDict accepts; any field left
// nil/zero-valued defaults per §4.1.
type FieldDict struct {
	ParentHash       common.Hash
	UncleHash        common.Hash
	Coinbase         common.Address
	StateRoot        common.Hash
	TransactionsTrie common.Hash
	ReceiptTrie      common.Hash
	Bloom            common.Bloom
	Difficulty       *big.Int
	Number           *big.Int
	GasLimit         *big.Int
	GasUsed          *big.Int
	Timestamp        *big.Int
	ExtraData        []byte
	MixHash          common.Hash
	Nonce            [8]byte
}

// FromFieldDict builds a BlockHeader from a (possibly partially filled)
// field dictionary, substituting canonical zeros for omitted fields.
func (HeaderCodec) FromFieldDict(data FieldDict, opts CodecOptions) (*BlockHeader, error) {
	h := &BlockHeader{
		parentHash:       data.ParentHash,
		uncleHash:        orHash(data.UncleHash, KECCAK256_RLP_ARRAY),
		coinbase:         data.Coinbase,
		stateRoot:        data.StateRoot,
		transactionsTrie: orHash(data.TransactionsTrie, KECCAK256_RLP),
		receiptTrie:      orHash(data.ReceiptTrie, KECCAK256_RLP),
		bloom:            data.Bloom,
		difficulty:       orBig(data.Difficulty),
		number:           orBig(data.Number),
		gasLimit:         orBigDefault(data.GasLimit, big.NewInt(DefaultGasLimit)),
		gasUsed:          orBig(data.GasUsed),
		timestamp:        orBig(data.Timestamp),
		extraData:        data.ExtraData,
		mixHash:          data.MixHash,
		nonce:            data.Nonce,
		chainParams:      opts.ChainParams,
	}
	return finishConstruction(h, opts)
}

func orHash(h, zero common.Hash) common.Hash {
	if h.IsZero() {
		return zero
	}
	return h
}

func orBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

func orBigDefault(v, def *big.Int) *big.Int {
	if v == nil {
		return def
	}
	return v
}

// FromRlpBytes RLP-decodes b as a positional header sequence.
func (c HeaderCodec) FromRlpBytes(b []byte, opts CodecOptions) (*BlockHeader, error) {
	content, _, err := rlp.SplitList(b)
	if err != nil {
		return nil, ErrMalformedHeader
	}
	rawItems, err := rlp.ListItems(content)
	if err != nil {
		return nil, ErrMalformedHeader
	}
	seq := make([][]byte, len(rawItems))
	for i, it := range rawItems {
		itemContent, _, err := rlp.SplitString(it)
		if err != nil {
			return nil, ErrMalformedHeader
		}
		seq[i] = itemContent
	}
	return c.fromRawItems(seq, opts)
}

// FromValuesSequence builds a header from an already-split positional
// sequence of raw RLP item payloads (the representation fromRlpBytes
// produces internally via rlp.ListItems before delegating here).
func (c HeaderCodec) FromValuesSequence(values [][]byte, opts CodecOptions) (*BlockHeader, error) {
	return c.fromRawItems(values, opts)
}

func (c HeaderCodec) fromRawItems(values [][]byte, opts CodecOptions) (*BlockHeader, error) {
	if len(values) > 15 {
		return nil, ErrMalformedHeader
	}
	get := func(i int) []byte {
		if i < len(values) {
			return values[i]
		}
		return nil
	}
	h := &BlockHeader{chainParams: opts.ChainParams}
	var err error
	if h.parentHash, err = fixedHash("parentHash", get(0), common.HashLength); err != nil {
		return nil, err
	}
	if h.uncleHash, err = fixedHash("uncleHash", get(1), common.HashLength); err != nil {
		return nil, err
	}
	if h.coinbase, err = fixedAddress("coinbase", get(2)); err != nil {
		return nil, err
	}
	if h.stateRoot, err = fixedHash("stateRoot", get(3), common.HashLength); err != nil {
		return nil, err
	}
	if h.transactionsTrie, err = fixedHash("transactionsTrie", get(4), common.HashLength); err != nil {
		return nil, err
	}
	if h.receiptTrie, err = fixedHash("receiptTrie", get(5), common.HashLength); err != nil {
		return nil, err
	}
	h.bloom = common.BytesToBloom(get(6))
	h.difficulty = new(big.Int).SetBytes(get(7))
	h.number = new(big.Int).SetBytes(get(8))
	h.gasLimit = new(big.Int).SetBytes(get(9))
	h.gasUsed = new(big.Int).SetBytes(get(10))
	h.timestamp = new(big.Int).SetBytes(get(11))
	h.extraData = append([]byte{}, get(12)...)
	if h.mixHash, err = fixedHash("mixHash", get(13), common.HashLength); err != nil {
		return nil, err
	}
	if h.nonce, err = fixedNonce(get(14)); err != nil {
		return nil, err
	}
	return finishConstruction(h, opts)
}

func fixedHash(field string, b []byte, want int) (common.Hash, error) {
	if len(b) != 0 && len(b) != want {
		return common.Hash{}, ErrInvalidFieldWidth(field)
	}
	return common.BytesToHash(b), nil
}

func fixedAddress(field string, b []byte) (common.Address, error) {
	if len(b) != 0 && len(b) != common.AddressLength {
		return common.Address{}, ErrInvalidFieldWidth(field)
	}
	return common.BytesToAddress(b), nil
}

func fixedNonce(b []byte) ([8]byte, error) {
	var n [8]byte
	if len(b) != 0 {
		if len(b) != 8 {
			return n, ErrInvalidFieldWidth("nonce")
		}
		copy(n[:], b)
	}
	return n, nil
}

// finishConstruction rejects a negative number, applies the genesis
// substitution, and runs the DAO extra-data gate on an already
// field-assigned header. It does not check field widths: the field-dict
// path gets them from FieldDict's fixed-size types, and the positional
// path checks the hash, address and nonce items as it reads them.
func finishConstruction(h *BlockHeader, opts CodecOptions) (*BlockHeader, error) {
	if h.number.Sign() < 0 {
		return nil, ErrInvalidNumber
	}
	if opts.InitWithGenesisHeader {
		if opts.Hardfork != params.Chainstart {
			return nil, ErrInvalidGenesisOption
		}
		if err := applyGenesis(h, opts.ChainParams.Genesis()); err != nil {
			return nil, err
		}
	}
	if err := verifyDAOExtraData(h, opts.ChainParams); err != nil {
		return nil, err
	}
	return h, nil
}

func applyGenesis(h *BlockHeader, g params.GenesisParams) error {
	h.number = big.NewInt(0)
	if h.gasLimit.Cmp(big.NewInt(DefaultGasLimit)) == 0 && g.GasLimit != nil {
		h.gasLimit = new(big.Int).Set(g.GasLimit)
	}
	if h.timestamp.Sign() == 0 && g.Timestamp != nil {
		h.timestamp = new(big.Int).Set(g.Timestamp)
	}
	if h.difficulty.Sign() == 0 && g.Difficulty != nil {
		h.difficulty = new(big.Int).Set(g.Difficulty)
	}
	if len(h.extraData) == 0 && len(g.ExtraData) != 0 {
		h.extraData = append([]byte{}, g.ExtraData...)
	}
	if h.nonce == [8]byte{} && g.Nonce != [8]byte{} {
		h.nonce = g.Nonce
	}
	if h.stateRoot.IsZero() && !g.StateRoot.IsZero() {
		h.stateRoot = g.StateRoot
	}
	return nil
}

var daoForkExtraData = []byte("dao-hard-fork")

func verifyDAOExtraData(h *BlockHeader, cp params.ChainParams) error {
	if !cp.IsHardforkActive(params.DAO) {
		return nil
	}
	daoBlock := cp.HardforkBlock(params.DAO)
	if daoBlock == nil {
		return nil
	}
	if h.number.Cmp(daoBlock) < 0 {
		return nil
	}
	offset := new(big.Int).Sub(h.number, daoBlock)
	if offset.Cmp(big.NewInt(9)) > 0 {
		return nil
	}
	if string(h.extraData) != string(daoForkExtraData) {
		return ErrInvalidDAOExtraData
	}
	return nil
}
