package cli

import (
	"fmt"

	"github.com/go-torrentcore/leecher/internal/peer"
	"github.com/go-torrentcore/leecher/internal/piece"
	"github.com/go-torrentcore/leecher/internal/torrent"
)

// HandshakeCmd implements `handshake`: dial a peer, perform the handshake,
// and print the peer's id (spec §6).
type HandshakeCmd struct {
	Path string `arg:"" help:"Path to the .torrent file." type:"path"`
	Addr string `arg:"" help:"Peer address as host:port."`
}

func (c *HandshakeCmd) Run(rc *RunContext) error {
	mi, err := torrent.Open(c.Path)
	if err != nil {
		return err
	}

	peerID, err := piece.ResolvePeerID(rc.PeerID)
	if err != nil {
		return err
	}

	sess, err := peer.Dial(rc.Ctx, c.Addr, mi.InfoHash(), peerID, rc.Timeout, rc.Log)
	if err != nil {
		return err
	}
	defer sess.Close()

	fmt.Printf("Peer ID: %x\n", sess.RemoteID)
	return nil
}
