package params

import "testing"

// TestHardforkRank checks rank increases with each successive hardfork
// and unknown names rank below every real one.
func TestHardforkRank(t *testing.T) {
	if Homestead.Rank() <= Chainstart.Rank() {
		t.Errorf("expected Homestead to rank above Chainstart")
	}
	if Hardfork("nonsense").Rank() != -1 {
		t.Errorf("expected an unknown hardfork to rank -1")
	}
}

// TestHardforkGte checks Gte compares by rank, not string ordering (which
// would put "byzantium" before "chainstart" alphabetically).
func TestHardforkGte(t *testing.T) {
	if !Byzantium.Gte(Chainstart) {
		t.Errorf("expected Byzantium >= Chainstart")
	}
	if Chainstart.Gte(Byzantium) {
		t.Errorf("expected Chainstart < Byzantium")
	}
	if !London.Gte(London) {
		t.Errorf("expected a hardfork to be >= itself")
	}
}
