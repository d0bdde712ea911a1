package consensus

import (
	"math/big"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/corechain-labs/corechain/core/types"
	"github.com/corechain-labs/corechain/params"
)

// BlockchainReader is the narrow slice of the blockchain store
// HeaderValidator consults: a single lookup from a parent hash to its
// header. Everything else about storage (writes, reorgs, the trie) is out
// of scope per spec.md §1.
type BlockchainReader interface {
	GetHeader(hash [32]byte) (*types.BlockHeader, bool)
}

// DifficultyEngine computes canonical PoW difficulty; HeaderValidator
// delegates to it for check 6 rather than embedding the formula itself.
type DifficultyEngine interface {
	CanonicalDifficulty(header, parent *types.BlockHeader) (*big.Int, error)
}

// DefaultMaxFutureDrift is the number of seconds a header's timestamp may
// sit ahead of the validating node's clock before HeaderValidator rejects
// it outright, matching the teacher's allowedFutureBlockTimeSeconds.
const DefaultMaxFutureDrift = 15

// HeaderValidator runs the ordered checks of spec.md §4.2 over a header
// and its parent. It is pure and holds no mutable state; the same
// instance is safe to call from any context.
type HeaderValidator struct {
	ChainParams params.ChainParams
	Difficulty  DifficultyEngine

	// MaxFutureDrift bounds how far into the future (relative to Now, if
	// set) a header's timestamp may sit before it is rejected as
	// InvalidTimestamp. Zero disables the check. Now defaults to time.Now
	// when unset; tests supply a fixed clock.
	MaxFutureDrift int64
	Now            func() int64
}

// Validate runs the §4.2 ordered checks. Genesis headers (number == 0)
// succeed immediately. uncleHeight, when non-nil, additionally checks the
// uncle-distance bound (check 8).
func (v *HeaderValidator) Validate(header *types.BlockHeader, chain BlockchainReader, uncleHeight *big.Int) error {
	if header.IsGenesis() {
		return nil
	}

	hf := header.ResolvedHardfork()

	if err := v.checkExtraDataBound(header, hf); err != nil {
		return err
	}

	parent, ok := chain.GetHeader(header.ParentHash())
	if !ok {
		return ErrMissingParent
	}

	if header.Number().Cmp(new(big.Int).Add(parent.Number(), big.NewInt(1))) != 0 {
		return ErrInvalidNumber
	}

	if header.Timestamp().Cmp(parent.Timestamp()) <= 0 {
		return ErrInvalidTimestamp
	}
	if v.MaxFutureDrift > 0 {
		now := time.Now().Unix()
		if v.Now != nil {
			now = v.Now()
		}
		limit := now + v.MaxFutureDrift
		if header.Timestamp().Cmp(big.NewInt(limit)) > 0 {
			return ErrInvalidTimestamp
		}
	}

	if v.ChainParams.ConsensusAlgorithm() == "clique" {
		minArrival := new(big.Int).Add(parent.Timestamp(), new(big.Int).SetUint64(v.ChainParams.ConsensusConfig().Period))
		if minArrival.Cmp(header.Timestamp()) > 0 {
			return ErrInvalidCliquePeriod
		}
	}

	if v.ChainParams.ConsensusType() == params.PoW {
		want, err := v.Difficulty.CanonicalDifficulty(header, parent)
		if err != nil {
			return err
		}
		if want.Cmp(header.Difficulty()) != 0 {
			return ErrInvalidDifficulty
		}
	}

	if err := v.checkGasLimitBounds(header, parent, hf); err != nil {
		return err
	}

	if uncleHeight != nil {
		diff := new(big.Int).Sub(uncleHeight, parent.Number())
		if diff.Cmp(big.NewInt(1)) <= 0 || diff.Cmp(big.NewInt(8)) >= 0 {
			return ErrInvalidUncleDistance
		}
	}

	return nil
}

// ValidateUncleSet supplements the single-height check of Validate's step
// 8 with validation of a full uncle list: every uncle must individually
// satisfy the distance bound against chain's current head, and no two
// uncles in the set may share a hash (a block cannot reward the same
// ommer twice).
func (v *HeaderValidator) ValidateUncleSet(headHeight *big.Int, uncles []*types.BlockHeader) error {
	seen := mapset.NewThreadUnsafeSet[[32]byte]()
	for _, u := range uncles {
		h := u.Hash()
		if seen.Contains(h) {
			return ErrInvalidUncleDistance
		}
		seen.Add(h)
		diff := new(big.Int).Sub(headHeight, u.Number())
		if diff.Cmp(big.NewInt(1)) <= 0 || diff.Cmp(big.NewInt(8)) >= 0 {
			return ErrInvalidUncleDistance
		}
	}
	return nil
}

func (v *HeaderValidator) checkExtraDataBound(header *types.BlockHeader, hf params.Hardfork) error {
	extra := header.ExtraData()
	if v.ChainParams.ConsensusAlgorithm() != "clique" {
		// spec.md §7 names no separate kind for a non-clique extra-data
		// bound violation; InvalidCliqueExtraData is the only extra-data
		// error kind defined and is reused here.
		max := v.ChainParams.ParamByHardfork("vm", "maxExtraDataSize", hf)
		if int64(len(extra)) > max.Int64() {
			return ErrInvalidCliqueExtraData
		}
		return nil
	}

	const minLen = 32 + 65
	epoch := v.ChainParams.ConsensusConfig().Epoch
	isEpochTransition := epoch != 0 && new(big.Int).Mod(header.Number(), new(big.Int).SetUint64(epoch)).Sign() == 0

	if !isEpochTransition {
		if len(extra) != minLen {
			return ErrInvalidCliqueExtraData
		}
		return nil
	}
	if (len(extra)-minLen)%20 != 0 {
		return ErrInvalidCliqueExtraData
	}
	if header.Coinbase() != ([20]byte{}) {
		return ErrInvalidCliqueCoinbase
	}
	if header.MixHash() != ([32]byte{}) {
		return ErrInvalidCliqueMixHash
	}
	return nil
}

func (v *HeaderValidator) checkGasLimitBounds(header, parent *types.BlockHeader, hf params.Hardfork) error {
	a := new(big.Int).Div(parent.GasLimit(), v.ChainParams.ParamByHardfork("gasConfig", "gasLimitBoundDivisor", hf))
	lower := new(big.Int).Sub(parent.GasLimit(), a)
	upper := new(big.Int).Add(parent.GasLimit(), a)
	gasLimit := header.GasLimit()
	if gasLimit.Cmp(lower) <= 0 || gasLimit.Cmp(upper) >= 0 {
		return ErrInvalidGasLimit
	}
	minGasLimit := v.ChainParams.ParamByHardfork("gasConfig", "minGasLimit", hf)
	if gasLimit.Cmp(minGasLimit) < 0 {
		return ErrInvalidGasLimit
	}
	if header.GasUsed().Cmp(gasLimit) > 0 {
		return ErrInvalidGasLimit
	}
	return nil
}
