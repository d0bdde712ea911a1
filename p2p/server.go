package p2p

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/corechain-labs/corechain/crypto"
	"github.com/corechain-labs/corechain/log"
	"github.com/corechain-labs/corechain/params"
)

// lifecycleState is the §4.9 state machine: Idle -> Starting -> Running
// -> Stopping -> Idle. Transitions are not re-entrant.
type lifecycleState int

const (
	stateIdle lifecycleState = iota
	stateStarting
	stateRunning
	stateStopping
)

// DefaultBanDuration is the default maxAge Ban applies when the caller
// doesn't supply one, matching the teacher's p2p ban default.
const DefaultBanDuration = 60 * time.Second

// ServerConfig is ServerState's constructor-time configuration
// (spec.md §3 ServerState), minus the started flag the lifecycle machine
// owns internally.
type ServerConfig struct {
	LocalSecret     [32]byte
	BoundPort       uint16
	AdvertisedIP    string
	Bootnodes       []Endpoint
	ClientFilter    []string
	MaxPeers        int
	RefreshInterval time.Duration
	Protocols       []Capability
	ChainParams     params.ChainParams
	Handshake       HandshakeAcceptor
	Log             log.Logger
	Sink            ServerSink
}

func (cfg ServerConfig) withDefaults() ServerConfig {
	if cfg.AdvertisedIP == "" {
		cfg.AdvertisedIP = "0.0.0.0"
	}
	if cfg.Log == nil {
		cfg.Log = log.Root
	}
	if cfg.Sink == nil {
		cfg.Sink = discardServerSink{}
	}
	return cfg
}

type discardServerSink struct{}

func (discardServerSink) Connected(*PeerRecord)                      {}
func (discardServerSink) Disconnected(*PeerRecord, DisconnectReason) {}
func (discardServerSink) Listening(ListeningInfo)                    {}
func (discardServerSink) Error(error, *PeerRecord)                   {}

// Info is the snapshot P2PServer.Info returns (spec.md §4.9).
type Info struct {
	Enode      string
	ID         string
	IP         string
	ListenAddr string
	Ports      PortInfo
}

// PortInfo is the discovery/listener port pair reported in Info.
type PortInfo struct {
	Discovery uint16
	Listener  uint16
}

// P2PServer is the top-level orchestrator composing DiscoveryTable,
// SessionMultiplexer, and PeerRegistry (spec.md §2/§4.9). All mutation of
// its lifecycle state happens under mu, matching the single-cooperative-
// context scheduling model spec.md §5 describes: no two handlers run
// concurrently against the PeerRegistry, even though Start/Stop may be
// invoked from arbitrary goroutines.
type P2PServer struct {
	cfg ServerConfig

	mu       sync.Mutex
	state    lifecycleState
	registry *PeerRegistry
	disc     *DiscoveryTable
	mux      *SessionMultiplexer
}

// NewP2PServer constructs a server in the Idle state; nothing is bound or
// listening until Start succeeds.
func NewP2PServer(cfg ServerConfig) *P2PServer {
	return &P2PServer{
		cfg:      cfg.withDefaults(),
		state:    stateIdle,
		registry: NewPeerRegistry(),
	}
}

// Start sequentially constructs and binds the DiscoveryTable and
// SessionMultiplexer, then bootstraps. Returns false if the server is
// already started (spec.md §8 invariant 9) — not re-entrant.
func (s *P2PServer) Start() bool {
	s.mu.Lock()
	if s.state != stateIdle {
		s.mu.Unlock()
		return false
	}
	s.state = stateStarting
	s.mu.Unlock()

	errSink := serverSinkErrorAdapter{s.cfg.Sink}

	disc := NewDiscoveryTable(DiscoveryConfig{
		LocalSecret:     s.cfg.LocalSecret,
		RefreshInterval: s.cfg.RefreshInterval,
		Log:             s.cfg.Log,
		ErrorSink:       errSink,
	})
	if s.cfg.BoundPort != 0 {
		if err := disc.Bind(s.cfg.BoundPort, "0.0.0.0"); err != nil {
			s.cfg.Log.Error("p2p: discovery bind failed", "err", err)
			s.mu.Lock()
			s.state = stateIdle
			s.mu.Unlock()
			return false
		}
	}

	mux := NewSessionMultiplexer(SessionConfig{
		LocalSecret:  s.cfg.LocalSecret,
		Discovery:    disc,
		MaxPeers:     s.cfg.MaxPeers,
		Protocols:    s.cfg.Protocols,
		ClientFilter: s.cfg.ClientFilter,
		ListenPort:   s.cfg.BoundPort,
		ChainParams:  s.cfg.ChainParams,
		Log:          s.cfg.Log,
		ErrorSink:    errSink,
	}, s.registry, s.cfg.Sink, s.cfg.Handshake)
	if err := mux.Listen(s.cfg.BoundPort, s.cfg.AdvertisedIP); err != nil {
		s.cfg.Log.Error("p2p: session listen failed", "err", err)
		_ = disc.Destroy()
		s.mu.Lock()
		s.state = stateIdle
		s.mu.Unlock()
		return false
	}

	disc.Bootstrap(s.cfg.Bootnodes)

	s.mu.Lock()
	s.disc = disc
	s.mux = mux
	s.state = stateRunning
	s.mu.Unlock()
	return true
}

// Stop destroys the SessionMultiplexer and DiscoveryTable, releasing all
// owned sockets and NAT mappings. Returns false if the server is not
// running (spec.md §8 invariant 9).
func (s *P2PServer) Stop() bool {
	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return false
	}
	s.state = stateStopping
	disc, mux := s.disc, s.mux
	s.mu.Unlock()

	if mux != nil {
		_ = mux.Destroy()
	}
	if disc != nil {
		_ = disc.Destroy()
	}

	s.mu.Lock()
	s.disc, s.mux = nil, nil
	s.state = stateIdle
	s.mu.Unlock()
	return true
}

// Ban forwards to DiscoveryTable when the server is started; returns
// false otherwise.
func (s *P2PServer) Ban(id string, maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateRunning || s.disc == nil {
		return false
	}
	if maxAge == 0 {
		maxAge = DefaultBanDuration
	}
	s.disc.BanPeer(id, maxAge)
	return true
}

// Info returns the current server snapshot. Before the session
// multiplexer is initialized, Enode and ID are empty strings, per
// spec.md §4.9.
func (s *P2PServer) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		IP: s.cfg.AdvertisedIP,
		Ports: PortInfo{
			Discovery: s.cfg.BoundPort,
			Listener:  s.cfg.BoundPort,
		},
	}
	if s.mux == nil {
		return info
	}
	nodeID := crypto.DeriveNodeID(s.cfg.LocalSecret)
	id := hex.EncodeToString(nodeID[:])
	info.ID = id
	info.ListenAddr = fmt.Sprintf("[%s]:%d", s.cfg.AdvertisedIP, s.cfg.BoundPort)
	info.Enode = fmt.Sprintf("enode://%s@[%s]:%d", id, s.cfg.AdvertisedIP, s.cfg.BoundPort)
	return info
}

// Registry exposes the server's PeerRegistry for read-only inspection.
func (s *P2PServer) Registry() *PeerRegistry { return s.registry }
