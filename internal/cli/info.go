package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/go-torrentcore/leecher/internal/torrent"
)

// InfoCmd implements `info`: print a torrent's announce URL, length, info
// hash, piece length, and every piece hash (spec §6).
type InfoCmd struct {
	Path string `arg:"" help:"Path to the .torrent file." type:"path"`
}

func (c *InfoCmd) Run(rc *RunContext) error {
	mi, err := torrent.Open(c.Path)
	if err != nil {
		return err
	}

	fmt.Printf("Announce: %s\n", mi.Announce)
	fmt.Printf("Length: %d\n", mi.Info.Length)
	fmt.Printf("Info hash: %s\n", mi.InfoHashHex())
	fmt.Printf("Piece length: %d\n", mi.Info.PieceLength)
	for _, h := range mi.Info.PieceHashes() {
		fmt.Println(hex.EncodeToString(h[:]))
	}
	return nil
}
