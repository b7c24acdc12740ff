package cli

import (
	"fmt"

	"github.com/go-torrentcore/leecher/internal/piece"
	"github.com/go-torrentcore/leecher/internal/torrent"
	"github.com/go-torrentcore/leecher/internal/tracker"
)

// PeersCmd implements `peers`: announce to the torrent's tracker and print
// one ip:port per returned peer (spec §6).
type PeersCmd struct {
	Path string `arg:"" help:"Path to the .torrent file." type:"path"`
	Port uint16 `help:"Local listening port advertised to the tracker." default:"6881"`
}

func (c *PeersCmd) Run(rc *RunContext) error {
	mi, err := torrent.Open(c.Path)
	if err != nil {
		return err
	}

	peerID, err := piece.ResolvePeerID(rc.PeerID)
	if err != nil {
		return err
	}

	client := tracker.New(rc.Timeout)
	client.Log = rc.Log

	resp, err := client.Announce(rc.Ctx, mi.Announce, tracker.Request{
		InfoHash: mi.InfoHash(),
		PeerID:   peerID,
		Port:     c.Port,
		Left:     mi.Info.Length,
	})
	if err != nil {
		return err
	}

	for _, p := range resp.Peers {
		fmt.Println(p.String())
	}
	return nil
}
