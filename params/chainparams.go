// Package params defines the ChainParams contract (spec.md §6) and a
// concrete mainnet-shaped implementation used by tests and by callers that
// don't supply their own. ChainParams is declared an external collaborator
// in spec.md §1/§2 — the consensus packages only ever consume this
// interface, never a concrete struct.
package params

import (
	"math/big"

	"github.com/corechain-labs/corechain/common"
)

// ConsensusType is the broad family of consensus rule a chain follows.
type ConsensusType string

const (
	PoW ConsensusType = "pow"
	PoA  ConsensusType = "poa"
)

// CliqueConfig holds the clique-specific period/epoch pair.
type CliqueConfig struct {
	Period uint64 // minimum seconds between blocks
	Epoch  uint64 // blocks per checkpoint/signer-list epoch
}

// GenesisParams holds the canonical genesis field values a HeaderCodec
// substitutes in place of a field's zero value when initWithGenesisHeader
// is set (spec.md §4.1).
type GenesisParams struct {
	GasLimit   *big.Int
	Timestamp  *big.Int
	Difficulty *big.Int
	ExtraData  []byte
	Nonce      [8]byte
	StateRoot  common.Hash
}

// ChainParams is the external collaborator spec.md §6 describes: a keyed
// lookup of protocol constants by (section, name, hardfork), plus the
// handful of derived queries consensus code needs.
type ChainParams interface {
	// ParamByHardfork looks up a named numeric constant within section,
	// as it applies at hardfork hf. It panics if the (section, name) pair
	// is unknown — an unknown parameter name is a programming error, not
	// a runtime condition callers should need to handle.
	ParamByHardfork(section, name string, hf Hardfork) *big.Int

	ConsensusType() ConsensusType
	ConsensusAlgorithm() string // "ethash", "clique", ...
	ConsensusConfig() CliqueConfig
	Genesis() GenesisParams

	HardforkGte(a, b Hardfork) bool
	ActiveHardforkAt(number *big.Int) Hardfork
	HardforkBlock(name Hardfork) *big.Int
	IsHardforkActive(name Hardfork) bool
	EIPs() map[uint]bool
}
