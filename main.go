package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/go-torrentcore/leecher/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	var app cli.App
	k := kong.Parse(&app,
		kong.Name("leecher"),
		kong.Description("A minimal BitTorrent leecher: bencode, tracker, handshake, single-piece download."),
		kong.UsageOnError(),
	)

	rc := app.NewRunContext(context.Background())
	err := k.Run(rc)
	k.FatalIfErrorf(err)
}
