package p2p

import (
	"testing"
	"time"
)

// TestDiscoveryTableBanExpiry checks a ban is active immediately and
// clears itself once maxAge elapses.
func TestDiscoveryTableBanExpiry(t *testing.T) {
	table := NewDiscoveryTable(DiscoveryConfig{})
	table.BanPeer("peer-1", 10*time.Millisecond)
	if !table.IsBanned("peer-1") {
		t.Fatalf("expected peer-1 to be banned immediately after BanPeer")
	}
	time.Sleep(20 * time.Millisecond)
	if table.IsBanned("peer-1") {
		t.Errorf("expected the ban to have expired")
	}
}

// TestDiscoveryTableIsBannedUnknownPeer checks an id that was never
// banned reports false.
func TestDiscoveryTableIsBannedUnknownPeer(t *testing.T) {
	table := NewDiscoveryTable(DiscoveryConfig{})
	if table.IsBanned("never-banned") {
		t.Errorf("expected an unbanned id to report false")
	}
}

// TestDiscoveryTableBindAndDestroy checks binding an ephemeral UDP port
// succeeds and Destroy releases it without error.
func TestDiscoveryTableBindAndDestroy(t *testing.T) {
	table := NewDiscoveryTable(DiscoveryConfig{})
	if err := table.Bind(0, "127.0.0.1"); err != nil {
		t.Fatalf("unexpected bind error: %v", err)
	}
	endpoint := table.AdvertisedEndpoint()
	if endpoint.Address != "127.0.0.1" {
		t.Errorf("got advertised address %q, want 127.0.0.1", endpoint.Address)
	}
	if err := table.Destroy(); err != nil {
		t.Errorf("unexpected destroy error: %v", err)
	}
}

// TestDiscoveryTableBootstrapSurfacesInvalidAddress reproduces S6: a
// bootstrap entry with an unparsable address fails on its own without
// aborting the whole bootstrap call.
func TestDiscoveryTableBootstrapSurfacesInvalidAddress(t *testing.T) {
	sink := &recordingErrorSink{}
	table := NewDiscoveryTable(DiscoveryConfig{ErrorSink: sink})
	if err := table.Bind(0, "127.0.0.1"); err != nil {
		t.Fatalf("unexpected bind error: %v", err)
	}
	defer table.Destroy()

	table.Bootstrap([]Endpoint{{Address: "not-an-ip", UDPPort: 30303}})
	if len(sink.errs) != 1 {
		t.Fatalf("expected one surfaced bootstrap error, got %v", sink.errs)
	}
}
