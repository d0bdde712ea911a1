package p2p

import "testing"

// TestPeerRegistryInsertGetRemove checks the basic id -> record lifecycle.
func TestPeerRegistryInsertGetRemove(t *testing.T) {
	r := NewPeerRegistry()
	rec := &PeerRecord{ID: "peer-1", Host: "10.0.0.1", Port: 30303}
	r.Insert(rec)

	got, ok := r.Get("peer-1")
	if !ok || got != rec {
		t.Fatalf("expected to retrieve the inserted record, got %v, %v", got, ok)
	}
	if r.Len() != 1 {
		t.Errorf("got len %d, want 1", r.Len())
	}

	removed, ok := r.Remove("peer-1")
	if !ok || removed != rec {
		t.Fatalf("expected Remove to return the record, got %v, %v", removed, ok)
	}
	if r.Len() != 0 {
		t.Errorf("got len %d, want 0 after removal", r.Len())
	}
}

// TestPeerRegistryRemoveUnknownIsNoOp checks invariant 8: removing an id
// that was never inserted (or already removed) is a no-op, not an error.
func TestPeerRegistryRemoveUnknownIsNoOp(t *testing.T) {
	r := NewPeerRegistry()
	_, ok := r.Remove("ghost")
	if ok {
		t.Errorf("expected Remove on an unknown id to report ok=false")
	}

	r.Insert(&PeerRecord{ID: "peer-1"})
	r.Remove("peer-1")
	if _, ok := r.Remove("peer-1"); ok {
		t.Errorf("expected a second Remove of the same id to be a no-op")
	}
}

// TestPeerRegistryInsertOverwrites checks a second Insert under the same
// id replaces the first record rather than erroring or duplicating.
func TestPeerRegistryInsertOverwrites(t *testing.T) {
	r := NewPeerRegistry()
	r.Insert(&PeerRecord{ID: "peer-1", Host: "a"})
	r.Insert(&PeerRecord{ID: "peer-1", Host: "b"})
	if r.Len() != 1 {
		t.Fatalf("got len %d, want 1 after overwrite", r.Len())
	}
	got, _ := r.Get("peer-1")
	if got.Host != "b" {
		t.Errorf("got Host %q, want the second insert's value %q", got.Host, "b")
	}
}

// TestPeerRegistryIter checks Iter returns every currently registered
// record.
func TestPeerRegistryIter(t *testing.T) {
	r := NewPeerRegistry()
	r.Insert(&PeerRecord{ID: "a"})
	r.Insert(&PeerRecord{ID: "b"})
	all := r.Iter()
	if len(all) != 2 {
		t.Fatalf("got %d records, want 2", len(all))
	}
	seen := map[string]bool{}
	for _, rec := range all {
		seen[rec.ID] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("expected both a and b in Iter's result, got %v", seen)
	}
}
