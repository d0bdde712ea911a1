// Package ethash implements the DifficultyEngine component of spec.md
// §4.3: canonical proof-of-work difficulty computation across hardfork
// epochs, including the exponential "bomb" term and its per-hardfork
// delay. Grounded on the teacher's consensus/ethash/difficulty.go and
// consensus.go CalcDifficulty family, generalized from the teacher's
// hand-unrolled isHardforkGte chain to the rank-based branch table
// spec.md §9 calls for.
package ethash

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/corechain-labs/corechain/consensus"
	"github.com/corechain-labs/corechain/core/types"
	"github.com/corechain-labs/corechain/params"
)

var (
	big1 = big.NewInt(1)
	big2 = big.NewInt(2)
)

// bombDelays lists, from newest to oldest, the hardfork at which the
// block-number offset subtracted before the bomb exponent changes, and
// the offset itself. Checked in order so the first matching (newest)
// hardfork wins, matching the teacher's descending-epoch test order.
var bombDelays = []struct {
	hf     params.Hardfork
	offset int64
}{
	{params.MuirGlacier, 9_000_000},
	{params.Constantinople, 5_000_000},
	{params.Byzantium, 3_000_000},
}

// Engine computes canonical difficulty. It holds no state beyond the
// ChainParams it consults.
type Engine struct {
	ChainParams params.ChainParams
}

// CanonicalDifficulty implements consensus.DifficultyEngine.
func (e *Engine) CanonicalDifficulty(header, parent *types.BlockHeader) (*big.Int, error) {
	if e.ChainParams.ConsensusType() != params.PoW {
		return nil, consensus.ErrUnsupportedConsensus
	}

	hf := header.ResolvedHardfork()
	bound := new(big.Int).Div(parent.Difficulty(), e.ChainParams.ParamByHardfork("pow", "difficultyBoundDivisor", hf))
	minDiff := e.ChainParams.ParamByHardfork("pow", "minimumDifficulty", hf)

	var dif *big.Int
	switch {
	case hf.Gte(params.Byzantium):
		dif = e.byzantiumOrLater(header, parent, bound)
	case hf.Gte(params.Homestead):
		dif = e.homestead(header, parent, bound)
	default:
		dif = e.frontier(header, parent, bound)
	}

	dif = applyBombDelay(dif, header.Number(), hf)

	if dif.Cmp(minDiff) < 0 {
		dif = new(big.Int).Set(minDiff)
	}
	return dif, nil
}

// byzantiumOrLater and homestead both compute the same
// "difficulty + bound * clamp(addend - elapsed/period, -99)" shape that
// dominates CalcDifficulty's call volume, so the hot arithmetic runs on
// uint256.Int rather than math/big, matching the teacher's
// CalcDifficultyHomesteadU256/MakeDifficultyCalculatorU256 pair: validated
// header timestamps are monotonic non-negative deltas that always fit a
// uint64, so the sign of the adjustment is tracked in a bool instead of
// carried through a signed bigint.

func (e *Engine) byzantiumOrLater(header, parent *types.BlockHeader, bound *big.Int) *big.Int {
	uncleAddend := uint64(2)
	if parent.UncleHash() == types.KECCAK256_RLP_ARRAY {
		uncleAddend = 1
	}
	elapsed := header.Timestamp().Uint64() - parent.Timestamp().Uint64()
	x := elapsed / 9
	neg := x >= uncleAddend
	if neg {
		x -= uncleAddend
	} else {
		x = uncleAddend - x
	}
	return u256DifficultyDelta(parent.Difficulty(), bound, x, neg)
}

func (e *Engine) homestead(header, parent *types.BlockHeader, bound *big.Int) *big.Int {
	elapsed := header.Timestamp().Uint64() - parent.Timestamp().Uint64()
	x := elapsed / 10
	var neg bool
	switch {
	case x == 0:
		x = 1
	case x >= 100:
		x = 99
		neg = true
	default:
		x--
		neg = true
	}
	return u256DifficultyDelta(parent.Difficulty(), bound, x, neg)
}

// u256DifficultyDelta computes parentDiff -+ bound*min(adjust,99) in
// fixed-width arithmetic and clamps the magnitude at 99, mirroring the
// teacher's bigMinus99 floor without ever materializing a negative bigint.
func u256DifficultyDelta(parentDiff, bound *big.Int, adjust uint64, neg bool) *big.Int {
	if adjust > 99 {
		adjust = 99
	}
	pDiff := new(uint256.Int)
	pDiff.SetFromBig(parentDiff)
	boundU, overflow := uint256.FromBig(bound)
	if overflow {
		boundU = new(uint256.Int)
	}
	delta := new(uint256.Int).Mul(boundU, new(uint256.Int).SetUint64(adjust))
	dif := new(uint256.Int)
	if neg {
		dif.Sub(pDiff, delta)
	} else {
		dif.Add(pDiff, delta)
	}
	return dif.ToBig()
}

func (e *Engine) frontier(header, parent *types.BlockHeader, bound *big.Int) *big.Int {
	hf := header.ResolvedHardfork()
	durationLimit := e.ChainParams.ParamByHardfork("pow", "durationLimit", hf)
	limit := new(big.Int).Add(parent.Timestamp(), durationLimit)
	if limit.Cmp(header.Timestamp()) > 0 {
		return new(big.Int).Add(parent.Difficulty(), bound)
	}
	return new(big.Int).Sub(parent.Difficulty(), bound)
}

func applyBombDelay(dif, number *big.Int, hf params.Hardfork) *big.Int {
	num := new(big.Int).Set(number)
	for _, d := range bombDelays {
		if hf.Gte(d.hf) {
			num.Sub(num, big.NewInt(d.offset))
			break
		}
	}
	if num.Sign() < 0 {
		num.SetInt64(0)
	}
	exp := new(big.Int).Div(num, big.NewInt(100_000))
	exp.Sub(exp, big2)
	if exp.Sign() >= 0 {
		bomb := new(big.Int).Lsh(big1, uint(exp.Uint64()))
		dif = new(big.Int).Add(dif, bomb)
	}
	return dif
}
