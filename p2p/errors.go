package p2p

import "strings"

// ignoredSubstrings is the set of substrings (spec.md §7) that mark a
// transport error as a routine, already-handled disconnect rather than
// something the caller needs to observe. Built once at package init as
// data, not recomputed per error, per spec.md §9 "Ignored-error list" —
// the teacher's p2p/peer_error.go instead encodes this as a closed
// ErrorCode enum; a substring-match list is used here because the spec's
// contract is specifically about matching error messages, not codes.
var ignoredSubstrings = []string{
	"EPIPE",
	"ECONNRESET",
	"ETIMEDOUT",
	"NetworkId mismatch",
	"Timeout error: ping",
	"Genesis block mismatch",
	"Handshake timed out",
	"Invalid address buffer",
	"Invalid MAC",
	"Invalid timestamp buffer",
	"Hash verification failed",
}

// IsIgnoredTransportError reports whether err's message matches one of
// the substrings that marks it routine and not worth surfacing.
func IsIgnoredTransportError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range ignoredSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ErrorSink receives transport errors the classifier decided to surface.
// When peer is non-nil, the error is attributed to that specific peer;
// otherwise it is a server-level error.
type ErrorSink interface {
	SurfaceError(err error, peer *PeerRecord)
}

// ClassifyAndRoute is the §7 transport error classifier: ignored errors
// are dropped silently, surfaced errors are routed to peer's record when
// known, else to the server-level sink.
func ClassifyAndRoute(err error, peer *PeerRecord, sink ErrorSink) {
	if IsIgnoredTransportError(err) {
		return
	}
	sink.SurfaceError(err, peer)
}
