package ethash

import (
	"math/big"
	"testing"

	"github.com/corechain-labs/corechain/consensus"
	"github.com/corechain-labs/corechain/core/types"
	"github.com/corechain-labs/corechain/params"
)

func mustHeader(t *testing.T, cp params.ChainParams, data types.FieldDict) *types.BlockHeader {
	t.Helper()
	h, err := types.HeaderCodec{}.FromFieldDict(data, types.CodecOptions{ChainParams: cp})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return h
}

// TestCanonicalDifficultyByzantiumNoUncles reproduces the byzantium,
// no-uncles scenario: bound == 488281250, uncle addend collapses to zero
// once elapsed == 9 seconds, and the bomb term for a block 2,000,001 past
// its (byzantium-delayed) baseline adds 2^18.
func TestCanonicalDifficultyByzantiumNoUncles(t *testing.T) {
	parent := mustHeader(t, params.Mainnet, types.FieldDict{
		Difficulty: big.NewInt(1_000_000_000_000),
		Number:     big.NewInt(5_000_000),
		Timestamp:  big.NewInt(1_000_000),
	})
	header := mustHeader(t, params.Mainnet, types.FieldDict{
		Difficulty: big.NewInt(1), // irrelevant to the computation itself
		Number:     big.NewInt(5_000_001),
		Timestamp:  big.NewInt(1_000_009),
	})

	e := &Engine{ChainParams: params.Mainnet}
	got, err := e.CanonicalDifficulty(header, parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := big.NewInt(1_000_000_262_144)
	if got.Cmp(want) != 0 {
		t.Errorf("difficulty mismatch: got %s, want %s", got, want)
	}
}

// TestCanonicalDifficultyFloor checks invariant 4: the result never drops
// below minimumDifficulty even when the raw formula would (a parent at the
// floor and a huge timestamp gap under frontier rules give 131072 -
// 131072/2048 = 131008 before clamping).
func TestCanonicalDifficultyFloor(t *testing.T) {
	parent := mustHeader(t, params.Mainnet, types.FieldDict{
		Difficulty: big.NewInt(131_072),
		Number:     big.NewInt(1),
		Timestamp:  big.NewInt(0),
	})
	header := mustHeader(t, params.Mainnet, types.FieldDict{
		Difficulty: big.NewInt(1),
		Number:     big.NewInt(2),
		Timestamp:  big.NewInt(10_000),
	})

	e := &Engine{ChainParams: params.Mainnet}
	got, err := e.CanonicalDifficulty(header, parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	minDiff := params.Mainnet.ParamByHardfork("pow", "minimumDifficulty", header.ResolvedHardfork())
	if got.Cmp(minDiff) < 0 {
		t.Errorf("difficulty %s fell below floor %s", got, minDiff)
	}
}

// TestCanonicalDifficultyDeterministic checks invariant 3: repeated calls
// with the same inputs return equal results.
func TestCanonicalDifficultyDeterministic(t *testing.T) {
	parent := mustHeader(t, params.Mainnet, types.FieldDict{
		Difficulty: big.NewInt(5_000_000_000),
		Number:     big.NewInt(4_400_000),
		Timestamp:  big.NewInt(1_500_000_000),
	})
	header := mustHeader(t, params.Mainnet, types.FieldDict{
		Difficulty: big.NewInt(1),
		Number:     big.NewInt(4_400_001),
		Timestamp:  big.NewInt(1_500_000_020),
	})

	e := &Engine{ChainParams: params.Mainnet}
	first, err := e.CanonicalDifficulty(header, parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.CanonicalDifficulty(header, parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cmp(second) != 0 {
		t.Errorf("non-deterministic result: %s vs %s", first, second)
	}
}

// TestCanonicalDifficultyRejectsNonPoW checks the UnsupportedConsensus
// guard for a clique chain.
func TestCanonicalDifficultyRejectsNonPoW(t *testing.T) {
	cp := params.NewCliqueParams(15, 30000, params.GenesisParams{})
	parent := mustHeader(t, cp, types.FieldDict{Number: big.NewInt(1)})
	header := mustHeader(t, cp, types.FieldDict{Number: big.NewInt(2)})

	e := &Engine{ChainParams: cp}
	_, err := e.CanonicalDifficulty(header, parent)
	if err != consensus.ErrUnsupportedConsensus {
		t.Errorf("got error %v, want ErrUnsupportedConsensus", err)
	}
}
