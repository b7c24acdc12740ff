package wire

import "encoding/binary"

// Writer serializes Frames onto a stream (spec §4.5 Write contract). A
// write is a single underlying Write call of the whole frame; a half-sent
// frame on error leaves the stream undefined and callers must close the
// session rather than retry at the byte level.
type Writer struct {
	w interface {
		Write(p []byte) (int, error)
	}
}

// NewWriter wraps w for frame-at-a-time writes.
func NewWriter(w interface {
	Write(p []byte) (int, error)
}) *Writer {
	return &Writer{w: w}
}

// WriteFrame serializes len_be(payload+1), tag, payload and writes it in
// one call.
func (wr *Writer) WriteFrame(tag Tag, payload []byte) error {
	buf := make([]byte, 4+1+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(1+len(payload)))
	buf[4] = byte(tag)
	copy(buf[5:], payload)
	if _, err := wr.w.Write(buf); err != nil {
		return newError(IOError, err)
	}
	return nil
}

// WriteKeepAlive writes the 4 zero bytes that mark a keepalive.
func (wr *Writer) WriteKeepAlive() error {
	if _, err := wr.w.Write([]byte{0, 0, 0, 0}); err != nil {
		return newError(IOError, err)
	}
	return nil
}
