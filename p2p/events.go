package p2p

// DisconnectReason names why a session was torn down.
type DisconnectReason string

const (
	ReasonRequested        DisconnectReason = "requested"
	ReasonTCPError         DisconnectReason = "tcp-error"
	ReasonProtocolBreach   DisconnectReason = "protocol-breach"
	ReasonTooManyPeers     DisconnectReason = "too-many-peers"
	ReasonAlreadyConnected DisconnectReason = "already-connected"
)

// ListeningInfo describes the endpoint a SessionMultiplexer started
// listening on.
type ListeningInfo struct {
	Transport string
	URL       string
}

// ServerSink is the explicit event-sink contract spec.md §9 calls for in
// place of the teacher's event-emitter idiom: every server-observable
// event becomes a method call instead of a loosely-typed "emit(name,
// args...)", which makes the event surface statically checkable and
// trivial to fake in tests.
type ServerSink interface {
	Connected(rec *PeerRecord)
	Disconnected(rec *PeerRecord, reason DisconnectReason)
	Listening(info ListeningInfo)
	Error(err error, peer *PeerRecord)
}

// ErrorSink adapter so ServerSink also satisfies the narrower ErrorSink
// contract ClassifyAndRoute expects.
type serverSinkErrorAdapter struct{ sink ServerSink }

func (a serverSinkErrorAdapter) SurfaceError(err error, peer *PeerRecord) {
	a.sink.Error(err, peer)
}
