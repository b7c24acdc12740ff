// Package peers decodes the compact peer list a tracker returns when asked
// for `compact=1` (spec §4.3): 6 raw bytes per peer, 4-byte IPv4 address
// followed by a big-endian 16-bit port.
package peers

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Peer is one entry of a compact peers list.
type Peer struct {
	IP   net.IP
	Port uint16
}

func (p Peer) String() string {
	return fmt.Sprintf("%s:%d", p.IP.String(), p.Port)
}

// Error is the error kind returned by Decode (spec §7: PeersError).
type Error struct {
	Len int
}

func (e *Error) Error() string {
	return fmt.Sprintf("peers: malformed compact peers blob: length %d is not a multiple of 6", e.Len)
}

// Decode parses a compact peers blob. Its length must be a multiple of 6;
// any other length is a malformed-response error (spec §4.3, §8 item 6).
func Decode(blob []byte) ([]Peer, error) {
	if len(blob)%6 != 0 {
		return nil, &Error{Len: len(blob)}
	}
	n := len(blob) / 6
	out := make([]Peer, n)
	for i := 0; i < n; i++ {
		off := i * 6
		ip := make(net.IP, 4)
		copy(ip, blob[off:off+4])
		out[i] = Peer{
			IP:   ip,
			Port: binary.BigEndian.Uint16(blob[off+4 : off+6]),
		}
	}
	return out, nil
}
