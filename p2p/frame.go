package p2p

import (
	"fmt"

	"github.com/golang/snappy"
)

// snappyProtocolVersion is the lowest negotiated capability version at
// which a peer's frame payloads are snappy-compressed, matching the
// teacher's rule for enabling rlpx.Conn.SetSnappy once both sides' hello
// handshake reports version 5 or later.
const snappyProtocolVersion = 5

// maxFramePayload bounds the decompressed size accepted from a peer,
// mirroring rlpx.Conn.Read's maxUint24 guard against a decompression
// bomb advertised by a malicious snappy length prefix.
const maxFramePayload = 16 * 1024 * 1024

// negotiatesSnappy reports whether any capability in caps meets
// snappyProtocolVersion, the per-capability stand-in this module uses in
// place of the teacher's separate hello-handshake version field.
func negotiatesSnappy(caps []Capability) bool {
	for _, c := range caps {
		if c.Version >= snappyProtocolVersion {
			return true
		}
	}
	return false
}

// EncodeFramePayload compresses payload with snappy when enabled is true,
// returning it unmodified otherwise.
func EncodeFramePayload(payload []byte, enabled bool) []byte {
	if !enabled {
		return payload
	}
	return snappy.Encode(nil, payload)
}

// DecodeFramePayload reverses EncodeFramePayload, rejecting a payload
// whose advertised decompressed length exceeds maxFramePayload before
// allocating the destination buffer.
func DecodeFramePayload(payload []byte, enabled bool) ([]byte, error) {
	if !enabled {
		return payload, nil
	}
	size, err := snappy.DecodedLen(payload)
	if err != nil {
		return nil, fmt.Errorf("p2p: snappy frame header: %w", err)
	}
	if size > maxFramePayload {
		return nil, fmt.Errorf("p2p: snappy frame payload too large: %d", size)
	}
	out, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("p2p: snappy frame decode: %w", err)
	}
	return out, nil
}
