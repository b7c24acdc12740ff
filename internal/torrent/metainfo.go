// Package torrent projects a decoded bencode document into the typed
// Metainfo view this client needs: an announce URL and a single-file info
// dictionary (spec §3 — multi-file torrents are an explicit non-goal).
package torrent

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/go-torrentcore/leecher/internal/bencode"
)

// Info is the projected `info` sub-dictionary of a torrent file.
type Info struct {
	Name        string
	Length      int64
	PieceLength int64
	Pieces      []byte // multiple of 20 bytes; i-th 20-byte slice is SHA-1 of piece i

	raw *bencode.Value // the original info dict, in its own key order
}

// Metainfo is the immutable, once-built view over a .torrent file.
type Metainfo struct {
	Announce string
	Info     Info
}

// Open reads filename and parses it into a Metainfo.
func Open(filename string) (*Metainfo, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("torrent: read %s: %w", filename, err)
	}
	return Parse(data)
}

// Parse decodes raw bencoded bytes into a Metainfo, failing with a
// *torrent.Error when the document cannot be shaped into the expected
// schema (spec §4.2).
func Parse(data []byte) (*Metainfo, error) {
	decoded, _, err := bencode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("torrent: decode: %w", err)
	}
	top, ok := decoded.DictVal()
	if !ok {
		return nil, newError(TypeMismatch, "top-level value is not a dictionary")
	}

	announceVal, ok := top.Get("announce")
	if !ok {
		return nil, newError(MissingField, "announce")
	}
	announce, ok := announceVal.Str()
	if !ok {
		return nil, newError(TypeMismatch, "announce")
	}

	infoVal, ok := top.Get("info")
	if !ok {
		return nil, newError(MissingField, "info")
	}
	infoDict, ok := infoVal.DictVal()
	if !ok {
		return nil, newError(TypeMismatch, "info")
	}

	info, err := parseInfo(infoVal, infoDict)
	if err != nil {
		return nil, err
	}

	return &Metainfo{Announce: announce, Info: *info}, nil
}

func parseInfo(raw *bencode.Value, d *bencode.Dictionary) (*Info, error) {
	nameVal, ok := d.Get("name")
	if !ok {
		return nil, newError(MissingField, "info.name")
	}
	name, ok := nameVal.Str()
	if !ok {
		return nil, newError(TypeMismatch, "info.name")
	}

	lengthVal, ok := d.Get("length")
	if !ok {
		return nil, newError(MissingField, "info.length")
	}
	length, ok := lengthVal.Int()
	if !ok || length < 0 {
		return nil, newError(TypeMismatch, "info.length")
	}

	pieceLengthVal, ok := d.Get("piece length")
	if !ok {
		return nil, newError(MissingField, "info.piece length")
	}
	pieceLength, ok := pieceLengthVal.Int()
	if !ok || pieceLength <= 0 {
		return nil, newError(TypeMismatch, "info.piece length")
	}

	piecesVal, ok := d.Get("pieces")
	if !ok {
		return nil, newError(MissingField, "info.pieces")
	}
	pieces, ok := piecesVal.Bytes()
	if !ok {
		return nil, newError(TypeMismatch, "info.pieces")
	}
	if len(pieces)%20 != 0 {
		return nil, newError(BadPiecesLength, "info.pieces")
	}

	return &Info{
		Name:        name,
		Length:      length,
		PieceLength: pieceLength,
		Pieces:      pieces,
		raw:         raw,
	}, nil
}

// InfoHash returns the 20-byte SHA-1 of the bencoded info dictionary,
// re-emitted in its original decoded key order (spec §4.2: "re-emitting it
// in its original key order, not a fresh sort"). This is recomputed on
// every call rather than stored, so it can never drift from Info's fields.
func (m *Metainfo) InfoHash() [20]byte {
	encoded := bencode.Encode(m.Info.raw)
	return sha1.Sum(encoded)
}

// InfoHashHex is InfoHash, lowercase hex encoded.
func (m *Metainfo) InfoHashHex() string {
	h := m.InfoHash()
	return hex.EncodeToString(h[:])
}

// PieceCount returns the number of 20-byte piece hashes.
func (i *Info) PieceCount() int {
	return len(i.Pieces) / 20
}

// PieceHashes chunks the raw `pieces` blob into its 20-byte SHA-1 hashes.
func (i *Info) PieceHashes() [][20]byte {
	n := i.PieceCount()
	out := make([][20]byte, n)
	for idx := 0; idx < n; idx++ {
		copy(out[idx][:], i.Pieces[idx*20:(idx+1)*20])
	}
	return out
}

// PieceLengthAt returns the length in bytes of piece index idx: PieceLength
// for every piece except the last, which is whatever remains of Length
// (spec §4.2).
func (i *Info) PieceLengthAt(idx int) (int64, error) {
	n := i.PieceCount()
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("torrent: piece index %d out of range [0,%d)", idx, n)
	}
	if idx < n-1 {
		return i.PieceLength, nil
	}
	return i.Length - int64(n-1)*i.PieceLength, nil
}
