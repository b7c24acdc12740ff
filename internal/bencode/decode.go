package bencode

import (
	"strconv"
)

// Decode parses a single bencode value starting at the front of data and
// returns the value together with the number of bytes consumed. It never
// treats data as UTF-8: byte-string payloads are copied verbatim, which is
// the property that keeps a torrent's `pieces` blob (and therefore its
// info hash) intact.
func Decode(data []byte) (*Value, int, error) {
	return decodeAt(data, 0)
}

func decodeAt(data []byte, pos int) (*Value, int, error) {
	if pos >= len(data) {
		return nil, pos, newEOFError(pos, "unexpected end of input")
	}
	switch data[pos] {
	case 'i':
		return decodeInt(data, pos)
	case 'l':
		return decodeList(data, pos)
	case 'd':
		return decodeDict(data, pos)
	default:
		if data[pos] >= '0' && data[pos] <= '9' {
			return decodeString(data, pos)
		}
		return nil, pos, newError(pos, "unexpected byte "+strconv.QuoteRune(rune(data[pos])))
	}
}

// decodeInt parses `i<ascii-signed-decimal>e`, rejecting an empty body,
// a bare "-0", and leading zeros on a non-zero value.
func decodeInt(data []byte, pos int) (*Value, int, error) {
	start := pos
	pos++ // skip 'i'
	bodyStart := pos
	for pos < len(data) && data[pos] != 'e' {
		pos++
	}
	if pos >= len(data) {
		return nil, start, newEOFError(start, "unterminated integer")
	}
	body := data[bodyStart:pos]
	pos++ // skip 'e'

	if len(body) == 0 {
		return nil, start, newError(start, "empty integer body")
	}
	neg := false
	digits := body
	if body[0] == '-' {
		neg = true
		digits = body[1:]
	}
	if len(digits) == 0 {
		return nil, start, newError(start, "malformed integer")
	}
	if digits[0] == '0' && len(digits) > 1 {
		return nil, start, newError(start, "integer has leading zero")
	}
	if neg && digits[0] == '0' {
		return nil, start, newError(start, "negative zero is not allowed")
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, start, newError(start, "malformed integer")
		}
	}
	n, err := strconv.ParseInt(string(body), 10, 64)
	if err != nil {
		return nil, start, newError(start, "integer out of range")
	}
	return NewInteger(n), pos, nil
}

// decodeString parses `<nonneg-decimal>:<raw bytes>`.
func decodeString(data []byte, pos int) (*Value, int, error) {
	start := pos
	lenStart := pos
	for pos < len(data) && data[pos] != ':' {
		if data[pos] < '0' || data[pos] > '9' {
			return nil, start, newError(start, "malformed string length")
		}
		pos++
	}
	if pos >= len(data) {
		return nil, start, newEOFError(start, "unterminated string length")
	}
	lengthStr := data[lenStart:pos]
	pos++ // skip ':'

	length, err := strconv.Atoi(string(lengthStr))
	if err != nil {
		return nil, start, newError(start, "malformed string length")
	}
	if length < 0 {
		return nil, start, newError(start, "negative string length")
	}
	if pos+length > len(data) {
		return nil, start, newEOFError(start, "string length exceeds remaining input")
	}
	return NewString(data[pos : pos+length]), pos + length, nil
}

// decodeList parses `l<element>*e`.
func decodeList(data []byte, pos int) (*Value, int, error) {
	start := pos
	pos++ // skip 'l'
	v := NewList()
	for {
		if pos >= len(data) {
			return nil, start, newEOFError(start, "unterminated list")
		}
		if data[pos] == 'e' {
			pos++
			return v, pos, nil
		}
		elem, next, err := decodeAt(data, pos)
		if err != nil {
			return nil, start, err
		}
		v.Append(elem)
		pos = next
	}
}

// decodeDict parses `d(<ByteString><value>)*e`; keys must be byte strings
// and the decoder preserves their input order on the resulting Value.
func decodeDict(data []byte, pos int) (*Value, int, error) {
	start := pos
	pos++ // skip 'd'
	v := NewDict()
	dict, _ := v.DictVal()
	for {
		if pos >= len(data) {
			return nil, start, newEOFError(start, "unterminated dictionary")
		}
		if data[pos] == 'e' {
			pos++
			return v, pos, nil
		}
		if data[pos] < '0' || data[pos] > '9' {
			return nil, start, newError(pos, "dictionary key must be a byte string")
		}
		keyVal, next, err := decodeString(data, pos)
		if err != nil {
			return nil, start, err
		}
		pos = next
		key, _ := keyVal.Bytes()

		val, next2, err := decodeAt(data, pos)
		if err != nil {
			return nil, start, err
		}
		pos = next2
		dict.Set(key, val)
	}
}
