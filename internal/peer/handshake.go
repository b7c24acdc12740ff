package peer

import (
	"bytes"
	"fmt"
	"io"
)

const protocolName = "BitTorrent protocol"

// HandshakeLen is the fixed wire size of a handshake message (spec §4.6
// step 2): 1 + 19 + 8 + 20 + 20.
const HandshakeLen = 1 + len(protocolName) + 8 + 20 + 20

// Handshake is the 68-byte message exchanged before any framed traffic.
type Handshake struct {
	InfoHash [20]byte
	PeerID   [20]byte
}

// Serialize renders h as the wire-format handshake.
func (h Handshake) Serialize() []byte {
	buf := make([]byte, HandshakeLen)
	buf[0] = byte(len(protocolName))
	copy(buf[1:], protocolName)
	// buf[20:28] stays zero: reserved bytes, no extensions negotiated.
	copy(buf[28:48], h.InfoHash[:])
	copy(buf[48:68], h.PeerID[:])
	return buf
}

// ReadHandshake reads and parses exactly HandshakeLen bytes from r.
func ReadHandshake(r io.Reader) (Handshake, error) {
	buf := make([]byte, HandshakeLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Handshake{}, newError(HandshakeMismatch, err)
	}
	return parseHandshake(buf)
}

func parseHandshake(buf []byte) (Handshake, error) {
	if len(buf) != HandshakeLen {
		return Handshake{}, newError(HandshakeMismatch, fmt.Errorf("short handshake: %d bytes", len(buf)))
	}
	plen := int(buf[0])
	if plen != len(protocolName) || string(buf[1:1+plen]) != protocolName {
		return Handshake{}, newError(HandshakeMismatch, fmt.Errorf("unrecognized protocol %q", buf[1:1+min(plen, len(buf)-1)]))
	}
	var h Handshake
	copy(h.InfoHash[:], buf[28:48])
	copy(h.PeerID[:], buf[48:68])
	return h, nil
}

// verifyInfoHash checks that the peer echoed back the info_hash we dialed
// with, per spec §4.6 step 3.
func verifyInfoHash(got Handshake, want [20]byte) error {
	if !bytes.Equal(got.InfoHash[:], want[:]) {
		return newError(HandshakeMismatch, fmt.Errorf("info_hash mismatch"))
	}
	return nil
}
