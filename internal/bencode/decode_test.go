package bencode_test

import (
	"testing"

	"github.com/go-torrentcore/leecher/internal/bencode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInteger(t *testing.T) {
	v, n, err := bencode.Decode([]byte("i52e"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	got, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, int64(52), got)
}

func TestDecodeNegativeInteger(t *testing.T) {
	v, n, err := bencode.Decode([]byte("i-42e"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	got, _ := v.Int()
	assert.Equal(t, int64(-42), got)
}

func TestDecodeIntegerRejectsLeadingZero(t *testing.T) {
	_, _, err := bencode.Decode([]byte("i042e"))
	assert.Error(t, err)
}

func TestDecodeIntegerRejectsNegativeZero(t *testing.T) {
	_, _, err := bencode.Decode([]byte("i-0e"))
	assert.Error(t, err)
}

func TestDecodeIntegerRejectsEmptyBody(t *testing.T) {
	_, _, err := bencode.Decode([]byte("ie"))
	assert.Error(t, err)
}

func TestDecodeString(t *testing.T) {
	v, n, err := bencode.Decode([]byte("5:hello"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	s, ok := v.Str()
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestDecodeList(t *testing.T) {
	v, n, err := bencode.Decode([]byte("l5:helloi52ee"))
	require.NoError(t, err)
	assert.Equal(t, 13, n)
	items, ok := v.List()
	require.True(t, ok)
	require.Len(t, items, 2)
	s, _ := items[0].Str()
	assert.Equal(t, "hello", s)
	i, _ := items[1].Int()
	assert.Equal(t, int64(52), i)
}

func TestDecodeDict(t *testing.T) {
	v, n, err := bencode.Decode([]byte("d3:foo3:bar5:helloi52ee"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	d, ok := v.DictVal()
	require.True(t, ok)
	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "foo", string(entries[0].Key))
	assert.Equal(t, "hello", string(entries[1].Key))

	foo, _ := d.Get("foo")
	fooStr, _ := foo.Str()
	assert.Equal(t, "bar", fooStr)

	hello, _ := d.Get("hello")
	helloInt, _ := hello.Int()
	assert.Equal(t, int64(52), helloInt)
}

func TestDecodeBinaryStringIsNotUTF8Coerced(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xff, 0xfe, 'a', 'b'}
	input := append([]byte("6:"), raw...)
	v, n, err := bencode.Decode(input)
	require.NoError(t, err)
	assert.Equal(t, len(input), n)
	got, ok := v.Bytes()
	require.True(t, ok)
	assert.Equal(t, raw, got)
}

func TestDecodeRejectsUnexpectedEOF(t *testing.T) {
	_, _, err := bencode.Decode([]byte("5:hel"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, bencode.ErrUnexpectedEOF)
}

func TestDecodeRejectsUnterminatedIntegerAsEOF(t *testing.T) {
	_, _, err := bencode.Decode([]byte("i52"))
	assert.ErrorIs(t, err, bencode.ErrUnexpectedEOF)
}

func TestDecodeRejectsUnterminatedListAsEOF(t *testing.T) {
	_, _, err := bencode.Decode([]byte("l5:helloi52e"))
	assert.ErrorIs(t, err, bencode.ErrUnexpectedEOF)
}

func TestDecodeRejectsUnterminatedDictAsEOF(t *testing.T) {
	_, _, err := bencode.Decode([]byte("d3:foo3:bar"))
	assert.ErrorIs(t, err, bencode.ErrUnexpectedEOF)
}

func TestDecodeRejectsNonStringDictKey(t *testing.T) {
	_, _, err := bencode.Decode([]byte("di1ei2ee"))
	assert.Error(t, err)
}

func TestDecodeRejectsOversizedStringLength(t *testing.T) {
	_, _, err := bencode.Decode([]byte("500:short"))
	assert.Error(t, err)
}
