package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURLEncodesInfoHashByteByByte(t *testing.T) {
	req := Request{
		InfoHash: [20]byte{0x12, 0x34, 0xAB},
		PeerID:   [20]byte{'-', 'A', 'X', '0', '0', '0', '1', '-'},
		Port:     6881,
		Left:     100,
	}
	got := buildURL("http://tracker.example/announce", req)
	assert.Contains(t, got, "info_hash=%12%34%ab")
	assert.Contains(t, got, "port=6881")
	assert.Contains(t, got, "compact=1")
	assert.Contains(t, got, "left=100")
}

func TestBuildURLAppendsWithAmpersandWhenQueryPresent(t *testing.T) {
	got := buildURL("http://tracker.example/announce?passkey=abc", Request{})
	assert.Contains(t, got, "?passkey=abc&info_hash=")
}

func TestAnnounceDecodesCompactPeers(t *testing.T) {
	body := "d8:intervali900e5:peers12:" +
		string([]byte{127, 0, 0, 1, 0x1A, 0xE1, 127, 0, 0, 2, 0x1A, 0xE2}) + "e"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "info_hash=")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	resp, err := c.Announce(context.Background(), srv.URL, Request{Port: 6881, Left: 10})
	require.NoError(t, err)
	assert.Equal(t, 900, resp.Interval)
	require.Len(t, resp.Peers, 2)
	assert.Equal(t, "127.0.0.1", resp.Peers[0].IP.String())
}

func TestAnnounceSurfacesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	_, err := c.Announce(context.Background(), srv.URL, Request{})
	require.Error(t, err)
	var trackerErr *Error
	require.ErrorAs(t, err, &trackerErr)
	assert.Equal(t, Transport, trackerErr.Kind)
}
