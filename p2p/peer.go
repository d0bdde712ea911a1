// Package p2p implements the peer-to-peer server core of spec.md §2: a
// UDP discovery table, a TCP encrypted-session multiplexer, a peer
// registry, and the top-level P2PServer orchestrator. Grounded on the
// teacher's p2p/server.go (resource-slot lifecycle, graceful peer
// release), p2p/peer_error.go (transport error classification), and
// p2p/discover and p2p/enode (modern Config.withDefaults pattern, node
// addressing), generalized into the event-sink architecture spec.md §9
// calls for in place of the teacher's event-emitter idiom.
package p2p

import "sync"

// Capability names one wire sub-protocol a session negotiates, e.g. "eth"
// at a given version.
type Capability struct {
	Name    string
	Version uint
}

// SessionHandle is the narrow view SessionMultiplexer exposes of a live
// encrypted session; PeerRegistry stores only a back-reference to it
// (spec.md §9 "PeerRecord ownership" — the multiplexer owns the handle,
// the registry must not dereference it after removal).
type SessionHandle interface {
	GetId() string
	RemoteAddr() (host string, port uint16)
	IsInboundConnection() bool
}

// PeerRecord is the registry's record of one admitted peer.
type PeerRecord struct {
	ID         string
	Host       string
	Port       uint16
	Inbound    bool
	Protocols  []Capability
	Underlying SessionHandle

	// Snappy reports whether frame payloads to/from this peer are
	// snappy-compressed, negotiated in HandlePeerAdded from the highest
	// overlapping capability version (mirroring the teacher's
	// p2p/rlpx.Conn.SetSnappy, gated on a handshake version >= 5).
	Snappy bool
}

// PeerRegistry is a concurrency-safe id -> PeerRecord map. insert
// overwrites any prior entry for the same id; remove on an unknown id is
// a no-op (spec.md §8 invariant 8).
type PeerRegistry struct {
	mu      sync.RWMutex
	records map[string]*PeerRecord
}

// NewPeerRegistry returns an empty registry.
func NewPeerRegistry() *PeerRegistry {
	return &PeerRegistry{records: make(map[string]*PeerRecord)}
}

func (r *PeerRegistry) Insert(rec *PeerRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
}

// Remove deletes id's record, returning it and true if one existed.
func (r *PeerRegistry) Remove(id string) (*PeerRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if ok {
		delete(r.records, id)
	}
	return rec, ok
}

func (r *PeerRegistry) Get(id string) (*PeerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	return rec, ok
}

// Iter returns a snapshot slice of every currently registered record, in
// no particular order.
func (r *PeerRegistry) Iter() []*PeerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*PeerRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out
}

func (r *PeerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
