package bencode

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// MarshalJSON implements the §6 JSON projection used by the `decode`
// subcommand: integers become JSON numbers, byte strings become JSON
// strings when they're valid UTF-8 and a JSON array of byte values
// otherwise, lists become arrays, and dictionaries become objects with
// their insertion order preserved in the written bytes (encoding/json
// round-trips a map in sorted key order, so dictionaries are written by
// hand instead of going through a Go map).
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf []byte
	buf, err := appendJSON(buf, v)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func appendJSON(buf []byte, v *Value) ([]byte, error) {
	switch v.kind {
	case Integer:
		raw, err := json.Marshal(v.i)
		if err != nil {
			return nil, err
		}
		return append(buf, raw...), nil

	case String:
		if utf8.Valid(v.s) {
			raw, err := appendJSONString(string(v.s))
			if err != nil {
				return nil, err
			}
			return append(buf, raw...), nil
		}
		ints := make([]int, len(v.s))
		for i, b := range v.s {
			ints[i] = int(b)
		}
		raw, err := json.Marshal(ints)
		if err != nil {
			return nil, err
		}
		return append(buf, raw...), nil

	case List:
		buf = append(buf, '[')
		for i, item := range v.list {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendJSON(buf, item)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil

	case Dict:
		buf = append(buf, '{')
		for i, e := range v.dict.Entries() {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyRaw, err := appendJSONString(string(e.Key))
			if err != nil {
				return nil, err
			}
			buf = append(buf, keyRaw...)
			buf = append(buf, ':')
			buf, err = appendJSON(buf, e.Val)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil

	default:
		panic("bencode: invalid value kind")
	}
}

// appendJSONString renders s as a quoted JSON string without escaping
// '<', '>' and '&' to <-style sequences. json.Marshal always escapes
// those regardless of a caller's own Encoder settings, so decoded torrent
// text (announce URLs routinely contain "&") would otherwise come out of
// `decode` mangled; this runs the quoting through a throwaway Encoder with
// SetEscapeHTML(false) instead.
func appendJSONString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	return out[:len(out)-1], nil // Encode appends a trailing newline
}
