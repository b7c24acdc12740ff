package bencode

import (
	"strconv"
)

// Encode serializes v such that Decode(Encode(v)) reproduces v, and, for a
// dictionary decoded from well-formed input, Encode reproduces the exact
// input bytes (spec §4.1, §8 items 1 and 3): dictionaries are emitted in
// their stored order, never re-sorted, integers carry no leading zeros, and
// string lengths are plain decimal ASCII.
func Encode(v *Value) []byte {
	var buf []byte
	return appendValue(buf, v)
}

func appendValue(buf []byte, v *Value) []byte {
	switch v.kind {
	case Integer:
		return appendInt(buf, v.i)
	case String:
		return appendString(buf, v.s)
	case List:
		buf = append(buf, 'l')
		for _, item := range v.list {
			buf = appendValue(buf, item)
		}
		return append(buf, 'e')
	case Dict:
		buf = append(buf, 'd')
		for _, e := range v.dict.Entries() {
			buf = appendString(buf, e.Key)
			buf = appendValue(buf, e.Val)
		}
		return append(buf, 'e')
	default:
		panic("bencode: invalid value kind")
	}
}

func appendInt(buf []byte, n int64) []byte {
	buf = append(buf, 'i')
	buf = strconv.AppendInt(buf, n, 10)
	return append(buf, 'e')
}

func appendString(buf []byte, s []byte) []byte {
	buf = strconv.AppendInt(buf, int64(len(s)), 10)
	buf = append(buf, ':')
	return append(buf, s...)
}
