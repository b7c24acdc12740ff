package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-torrentcore/leecher/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadFrameRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.WriteFrame(wire.TagRequest, []byte{1, 2, 3, 4}))

	r := wire.NewReader(&buf)
	frame, err := r.ReadFrame()
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, wire.TagRequest, frame.Tag)
	assert.Equal(t, []byte{1, 2, 3, 4}, frame.Payload)
}

func TestKeepAliveIsConsumedSilently(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.WriteKeepAlive())
	require.NoError(t, w.WriteFrame(wire.TagUnchoke, nil))

	r := wire.NewReader(&buf)
	frame, err := r.ReadFrame()
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, wire.TagUnchoke, frame.Tag)
}

func TestReadFrameAcrossPartialReads(t *testing.T) {
	full := []byte{0, 0, 0, 5, byte(wire.TagPiece), 'a', 'b', 'c', 'd'}
	pr, pw := io.Pipe()
	go func() {
		for i := 0; i < len(full); i++ {
			pw.Write(full[i : i+1])
		}
		pw.Close()
	}()

	r := wire.NewReader(pr)
	frame, err := r.ReadFrame()
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, wire.TagPiece, frame.Tag)
	assert.Equal(t, []byte("abcd"), frame.Payload)
}

func TestReadFrameCleanEOFYieldsNilFrame(t *testing.T) {
	r := wire.NewReader(bytes.NewReader(nil))
	frame, err := r.ReadFrame()
	assert.NoError(t, err)
	assert.Nil(t, frame)
}

func TestReadFrameUnexpectedCloseWithPartialDataIsConnectionReset(t *testing.T) {
	r := wire.NewReader(bytes.NewReader([]byte{0, 0, 0, 5, byte(wire.TagPiece), 'a'}))
	_, err := r.ReadFrame()
	require.Error(t, err)
	var wireErr *wire.Error
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, wire.ConnectionReset, wireErr.Kind)
}

func TestReadFrameUnknownTagFails(t *testing.T) {
	r := wire.NewReader(bytes.NewReader([]byte{0, 0, 0, 2, 200, 'x'}))
	_, err := r.ReadFrame()
	require.Error(t, err)
	var wireErr *wire.Error
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, wire.UnknownTag, wireErr.Kind)
}

func TestPayloadIsExactlyLengthMinusOneBytes(t *testing.T) {
	// Guards the historical off-by-one where payload was sliced as
	// buf[5:4+len] instead of buf[5:4+length], losing the last byte.
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	payload := bytes.Repeat([]byte{0x42}, 100)
	require.NoError(t, w.WriteFrame(wire.TagBitfield, payload))

	r := wire.NewReader(&buf)
	frame, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Len(t, frame.Payload, 100)
	assert.Equal(t, payload, frame.Payload)
}
