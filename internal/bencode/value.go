// Package bencode implements the BitTorrent bencode wire format: a decoder
// and encoder for a small tagged union of integers, byte strings, lists and
// insertion-ordered dictionaries. Byte strings are never coerced through
// UTF-8 — decoding and re-encoding a value must reproduce the exact input
// bytes, which is what lets a decoded info dictionary hash to the same
// SHA-1 the tracker and peers expect.
package bencode

// Kind tags which variant a Value holds.
type Kind int

const (
	Integer Kind = iota
	String
	List
	Dict
)

// Value is a decoded bencode value: exactly one of the four grammar
// productions in spec §4.1.
type Value struct {
	kind Kind
	i    int64
	s    []byte
	list []*Value
	dict *Dictionary
}

// NewInteger wraps a signed 64-bit integer.
func NewInteger(i int64) *Value { return &Value{kind: Integer, i: i} }

// NewString wraps an owned copy of raw, possibly non-UTF-8, bytes.
func NewString(b []byte) *Value {
	owned := make([]byte, len(b))
	copy(owned, b)
	return &Value{kind: String, s: owned}
}

// NewList wraps an ordered sequence of values.
func NewList(items ...*Value) *Value {
	return &Value{kind: List, list: items}
}

// NewDict wraps an empty insertion-ordered dictionary.
func NewDict() *Value {
	return &Value{kind: Dict, dict: newDictionary()}
}

func (v *Value) Kind() Kind { return v.kind }

// Int returns the wrapped integer, or (0, false) if v is not an Integer.
func (v *Value) Int() (int64, bool) {
	if v.kind != Integer {
		return 0, false
	}
	return v.i, true
}

// Bytes returns the wrapped byte string, or (nil, false) if v is not a String.
// The returned slice is owned by v; callers must not mutate it.
func (v *Value) Bytes() ([]byte, bool) {
	if v.kind != String {
		return nil, false
	}
	return v.s, true
}

// Str is Bytes as a Go string, a convenience for torrent metadata fields
// that are known text (announce URL, file name).
func (v *Value) Str() (string, bool) {
	b, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

// List returns the wrapped element slice, or (nil, false) if v is not a List.
func (v *Value) List() ([]*Value, bool) {
	if v.kind != List {
		return nil, false
	}
	return v.list, true
}

// Append adds an element to a List value in place; panics if v is not a List.
func (v *Value) Append(item *Value) {
	if v.kind != List {
		panic("bencode: Append on non-list value")
	}
	v.list = append(v.list, item)
}

// DictVal returns the wrapped dictionary, or (nil, false) if v is not a Dict.
func (v *Value) DictVal() (*Dictionary, bool) {
	if v.kind != Dict {
		return nil, false
	}
	return v.dict, true
}

// Dictionary is an insertion-ordered mapping from raw byte-string keys to
// bencode values. Decode preserves input order; Set on a fresh key appends,
// so a dictionary built up programmatically also has a deterministic,
// caller-controlled encode order rather than the lexicographic order every
// encoder-by-reflection silently imposes.
type Dictionary struct {
	keys   [][]byte
	values []*Value
	index  map[string]int
}

func newDictionary() *Dictionary {
	return &Dictionary{index: make(map[string]int)}
}

// Set inserts or replaces the value for key, preserving the position of an
// existing key and appending new keys at the end.
func (d *Dictionary) Set(key []byte, val *Value) {
	if i, ok := d.index[string(key)]; ok {
		d.values[i] = val
		return
	}
	owned := make([]byte, len(key))
	copy(owned, key)
	d.index[string(owned)] = len(d.keys)
	d.keys = append(d.keys, owned)
	d.values = append(d.values, val)
}

// SetString is Set with a text key, for building torrent/tracker dicts.
func (d *Dictionary) SetString(key string, val *Value) {
	d.Set([]byte(key), val)
}

// Get looks up a value by text key.
func (d *Dictionary) Get(key string) (*Value, bool) {
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.values[i], true
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.keys) }

// Entry is one key/value pair in insertion order.
type Entry struct {
	Key []byte
	Val *Value
}

// Entries returns all entries in insertion order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.keys))
	for i, k := range d.keys {
		out[i] = Entry{Key: k, Val: d.values[i]}
	}
	return out
}

// SortedByKey returns a copy of d with entries sorted by raw key bytes
// ascending, the order a well-formed torrent's info dictionary already has.
// Neither decoding nor the info-hash computation calls it: the info hash
// re-encodes the info dictionary in its decoded key order.
func (d *Dictionary) SortedByKey() *Dictionary {
	entries := d.Entries()
	sorted := newDictionary()
	// insertion sort is fine: info dicts have a handful of keys.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && lessKey(entries[j].Key, entries[j-1].Key); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	for _, e := range entries {
		sorted.Set(e.Key, e.Val)
	}
	return sorted
}

func lessKey(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
