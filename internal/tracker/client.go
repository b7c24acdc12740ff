// Package tracker builds the compact HTTP GET announce request and decodes
// the bencoded response (spec §4.4). The info_hash parameter is percent
// encoded byte-by-byte rather than through Go's net/url query encoder,
// which would otherwise pass "unreserved" bytes through unescaped and
// break the non-standard encoding trackers expect.
package tracker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-torrentcore/leecher/internal/bencode"
	"github.com/go-torrentcore/leecher/internal/peers"
	"github.com/sirupsen/logrus"
)

// Request is the set of parameters sent to the tracker (spec §4.4 table).
type Request struct {
	InfoHash   [20]byte
	PeerID     [20]byte
	Port       uint16
	Uploaded   int64
	Downloaded int64
	Left       int64
}

// Response is the decoded tracker reply.
type Response struct {
	Interval int // informational only; re-announce scheduling is out of scope
	Peers    []peers.Peer
}

// Client announces to a tracker over HTTP.
type Client struct {
	HTTP *http.Client
	Log  *logrus.Entry
}

// New builds a Client with the given request timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: timeout},
		Log:  logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Announce sends the compact GET described in spec §4.4 and decodes the
// bencoded response body.
func (c *Client) Announce(ctx context.Context, announceURL string, req Request) (*Response, error) {
	reqURL := buildURL(announceURL, req)
	c.logf("built tracker URL %s", reqURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newError(Transport, err)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, newError(Transport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(Transport, fmt.Errorf("tracker returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(Transport, err)
	}

	return decodeResponse(body)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Debugf(format, args...)
	}
}

func buildURL(announceURL string, req Request) string {
	var params []string
	params = append(params, "info_hash="+percentEncodeAll(req.InfoHash[:]))
	params = append(params, "peer_id="+percentEncodeAll(req.PeerID[:]))
	params = append(params, "port="+strconv.Itoa(int(req.Port)))
	params = append(params, "uploaded="+strconv.FormatInt(req.Uploaded, 10))
	params = append(params, "downloaded="+strconv.FormatInt(req.Downloaded, 10))
	params = append(params, "left="+strconv.FormatInt(req.Left, 10))
	params = append(params, "compact=1")

	sep := "?"
	if strings.Contains(announceURL, "?") {
		sep = "&"
	}
	return announceURL + sep + strings.Join(params, "&")
}

func decodeResponse(body []byte) (*Response, error) {
	decoded, _, err := bencode.Decode(body)
	if err != nil {
		return nil, newError(Decode, err)
	}
	dict, ok := decoded.DictVal()
	if !ok {
		return nil, newError(Decode, fmt.Errorf("tracker response is not a dictionary"))
	}

	intervalVal, ok := dict.Get("interval")
	if !ok {
		return nil, newError(Decode, fmt.Errorf("missing interval"))
	}
	interval, ok := intervalVal.Int()
	if !ok {
		return nil, newError(Decode, fmt.Errorf("interval is not an integer"))
	}

	peersVal, ok := dict.Get("peers")
	if !ok {
		return nil, newError(Decode, fmt.Errorf("missing peers"))
	}
	peersBlob, ok := peersVal.Bytes()
	if !ok {
		return nil, newError(Decode, fmt.Errorf("peers is not a byte string"))
	}

	decodedPeers, err := peers.Decode(peersBlob)
	if err != nil {
		return nil, newError(Decode, err)
	}

	return &Response{Interval: int(interval), Peers: decodedPeers}, nil
}
