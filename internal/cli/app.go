// Package cli wires the leecher's five driver commands (spec §6) onto a
// kong-parsed command line: decode, info, peers, handshake, download_piece.
package cli

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// App is the kong root command. Each subcommand receives a *RunContext
// carrying shared flags and the logger.
type App struct {
	Verbose bool          `help:"Enable debug logging." short:"v"`
	Timeout time.Duration `help:"Per-operation network timeout." default:"15s"`
	PeerID  string        `help:"Override the 20-byte peer id advertised to trackers and peers; defaults to a random -AX0001- id." default:""`

	Decode        DecodeCmd        `cmd:"" help:"Decode a bencoded string and print it as JSON."`
	Info          InfoCmd          `cmd:"" help:"Print a torrent file's metadata."`
	Peers         PeersCmd         `cmd:"" help:"Announce to the tracker and print the peer list."`
	Handshake     HandshakeCmd     `cmd:"" help:"Connect to a peer and perform the handshake."`
	DownloadPiece DownloadPieceCmd `cmd:"download_piece" help:"Download and verify a single piece."`
}

// RunContext is passed to every subcommand's Run method.
type RunContext struct {
	Ctx     context.Context
	Log     *logrus.Entry
	Timeout time.Duration
	PeerID  string
}

// NewRunContext builds the shared context subcommands use, configuring
// logrus verbosity from the top-level --verbose flag. The logger reuses the
// formatter main.go sets on the standard logger.
func (a *App) NewRunContext(ctx context.Context) *RunContext {
	log := logrus.New()
	log.SetFormatter(logrus.StandardLogger().Formatter)
	if a.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return &RunContext{
		Ctx:     ctx,
		Log:     logrus.NewEntry(log),
		Timeout: a.Timeout,
		PeerID:  a.PeerID,
	}
}
