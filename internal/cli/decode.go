package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-torrentcore/leecher/internal/bencode"
)

// DecodeCmd implements `decode`: parse a bencoded string and print it as
// JSON (spec §6, §6 JSON projection).
type DecodeCmd struct {
	Input string `arg:"" help:"Bencoded string to decode."`
}

func (c *DecodeCmd) Run(rc *RunContext) error {
	val, consumed, err := bencode.Decode([]byte(c.Input))
	if err != nil {
		return err
	}
	rc.Log.WithField("bytes_consumed", consumed).Debug("decoded bencode value")

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(val); err != nil {
		return fmt.Errorf("cli: marshal decoded value: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}
