package bencode_test

import (
	"testing"

	"github.com/go-torrentcore/leecher/internal/bencode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSONProjectsIntegerStringListDict(t *testing.T) {
	v, _, err := bencode.Decode([]byte("d3:foo3:bar5:helloi52ee"))
	require.NoError(t, err)
	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"foo":"bar","hello":52}`, string(out))
}

func TestMarshalJSONDoesNotHTMLEscapeAmpersand(t *testing.T) {
	v := bencode.NewString([]byte("http://tracker.example/announce?a=1&b=2"))
	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"http://tracker.example/announce?a=1&b=2"`, string(out))
}

func TestMarshalJSONNonUTF8StringBecomesByteArray(t *testing.T) {
	v := bencode.NewString([]byte{0x00, 0xff, 0xfe})
	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[0,255,254]`, string(out))
}
