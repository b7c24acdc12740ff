package peers_test

import (
	"testing"

	"github.com/go-torrentcore/leecher/internal/peers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCompactPeers(t *testing.T) {
	blob := []byte{
		192, 168, 0, 1, 0x1A, 0xE1, // 192.168.0.1:6881
		10, 0, 0, 5, 0x1A, 0xE2, // 10.0.0.5:6882
	}
	got, err := peers.Decode(blob)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "192.168.0.1", got[0].IP.String())
	assert.EqualValues(t, 6881, got[0].Port)
	assert.Equal(t, "10.0.0.5", got[1].IP.String())
	assert.EqualValues(t, 6882, got[1].Port)
}

func TestDecodeRejectsNonMultipleOfSix(t *testing.T) {
	_, err := peers.Decode(make([]byte, 7))
	assert.Error(t, err)
}

func TestDecodeEmptyBlobIsZeroPeers(t *testing.T) {
	got, err := peers.Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
