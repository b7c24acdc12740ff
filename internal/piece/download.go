// Package piece orchestrates a single-piece download: dial a peer, drive it
// through the handshake/bitfield/unchoke sequence, pull the piece, and only
// then persist it to disk (spec §4.6 step 9, §8 item 9 — no partial file is
// ever written).
package piece

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-torrentcore/leecher/internal/peer"
	"github.com/go-torrentcore/leecher/internal/torrent"
	"github.com/go-torrentcore/leecher/internal/tracker"
	"github.com/sirupsen/logrus"
)

// Options configures a single-piece download.
type Options struct {
	Metainfo    *torrent.Metainfo
	PieceIndex  int
	LocalPeerID [20]byte
	LocalPort   uint16 // local listening port advertised to the tracker
	OutputPath  string
	Timeout     time.Duration
	Log         *logrus.Entry
}

// RandomPeerID returns a peer id of the form "-AX0001-" followed by 12
// random bytes, the default identity used when the CLI is not given an
// explicit override (spec §9 Open Questions: "the core leaves peer_id
// configurable and accepts any 20-byte value").
func RandomPeerID() ([20]byte, error) {
	var id [20]byte
	copy(id[:], "-AX0001-")
	if _, err := rand.Read(id[8:]); err != nil {
		return id, fmt.Errorf("piece: generate peer id: %w", err)
	}
	return id, nil
}

// ResolvePeerID returns override as a peer id when non-empty, or a fresh
// RandomPeerID otherwise. override must be exactly 20 bytes, matching the
// --peer-id CLI flag's contract.
func ResolvePeerID(override string) ([20]byte, error) {
	if override == "" {
		return RandomPeerID()
	}
	var id [20]byte
	if len(override) != 20 {
		return id, fmt.Errorf("piece: peer id must be exactly 20 bytes, got %d", len(override))
	}
	copy(id[:], override)
	return id, nil
}

// Download runs the full single-piece flow — announce to the tracker, try
// its returned peers in order until one yields the piece, verify, and
// write — to opts.OutputPath. The file is created only after the SHA-1
// check passes; any failure before that point leaves no output file
// behind (spec §2's documented data flow: metainfo -> tracker -> peer
// session, composed end to end by this one driver).
func Download(ctx context.Context, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	localPort := opts.LocalPort
	if localPort == 0 {
		localPort = 6881
	}

	info := opts.Metainfo.Info
	n := info.PieceCount()
	if opts.PieceIndex < 0 || opts.PieceIndex >= n {
		return fmt.Errorf("piece: index %d out of range [0,%d)", opts.PieceIndex, n)
	}
	pieceLength, err := info.PieceLengthAt(opts.PieceIndex)
	if err != nil {
		return err
	}
	hashes := info.PieceHashes()
	expectedHash := hashes[opts.PieceIndex]

	infoHash := opts.Metainfo.InfoHash()

	client := tracker.New(timeout)
	client.Log = log
	log.Debug("announcing to tracker")
	resp, err := client.Announce(ctx, opts.Metainfo.Announce, tracker.Request{
		InfoHash: infoHash,
		PeerID:   opts.LocalPeerID,
		Port:     localPort,
		Left:     info.Length,
	})
	if err != nil {
		return err
	}
	if len(resp.Peers) == 0 {
		return fmt.Errorf("piece: tracker returned no peers")
	}

	var lastErr error
	for _, p := range resp.Peers {
		addr := p.String()
		data, err := downloadFromPeer(ctx, log, addr, infoHash, opts.LocalPeerID, timeout, opts.PieceIndex, pieceLength, expectedHash)
		if err != nil {
			log.WithField("peer", addr).WithError(err).Debug("peer did not yield the piece, trying next")
			lastErr = err
			continue
		}

		if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
			return fmt.Errorf("piece: create output directory: %w", err)
		}
		if err := os.WriteFile(opts.OutputPath, data, 0o644); err != nil {
			return fmt.Errorf("piece: write %s: %w", opts.OutputPath, err)
		}
		log.WithField("path", opts.OutputPath).Info("piece verified and written")
		return nil
	}

	return fmt.Errorf("piece: no peer of %d yielded piece %d: %w", len(resp.Peers), opts.PieceIndex, lastErr)
}

// downloadFromPeer dials a single candidate peer and drives it through the
// handshake/bitfield/interested/unchoke/request sequence for one piece
// (spec §4.6 steps 1-8). Persistence (§4.6 step 9) happens only once the
// caller has a verified buffer in hand, from the first candidate peer that
// yields it; later candidates are not contacted.
func downloadFromPeer(ctx context.Context, log *logrus.Entry, addr string, infoHash, localPeerID [20]byte, timeout time.Duration, pieceIndex int, pieceLength int64, expectedHash [20]byte) ([]byte, error) {
	log.WithField("peer", addr).Debug("dialing peer")
	sess, err := peer.Dial(ctx, addr, infoHash, localPeerID, timeout, log)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.AwaitBitfield(ctx, timeout); err != nil {
		return nil, err
	}
	if !sess.HasPiece(pieceIndex) {
		return nil, fmt.Errorf("piece: peer %s does not advertise piece %d", addr, pieceIndex)
	}
	if err := sess.SendInterested(ctx, timeout); err != nil {
		return nil, err
	}
	if err := sess.AwaitUnchoke(ctx, timeout); err != nil {
		return nil, err
	}

	log.WithField("piece_index", pieceIndex).Debug("requesting piece")
	return sess.DownloadPiece(ctx, timeout, pieceIndex, pieceLength, expectedHash)
}
