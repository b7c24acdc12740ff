package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reader buffers raw stream bytes and parses them into Frames. The buffer
// and its parse are kept as two separate concerns: tryParseFrame is a pure
// function of whatever bytes are currently buffered, so it can be retried
// after every underlying Read without re-deriving any state — a growable
// slice with a split-off read cursor, not a fixed-size ring (spec §9).
type Reader struct {
	r   io.Reader
	buf []byte
	tmp []byte
}

// NewReader wraps r for frame-at-a-time reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, tmp: make([]byte, 4096)}
}

// ReadFrame returns the next frame, or (nil, nil) on a clean EOF with no
// unconsumed bytes buffered, or a *wire.Error otherwise (spec §4.5 Read
// contract). A length-0 frame is a keepalive: it is dropped silently and
// the read continues for the next real frame.
func (rd *Reader) ReadFrame() (*Frame, error) {
	for {
		consumed, frame, err := tryParseFrame(rd.buf)
		if consumed > 0 {
			rd.buf = rd.buf[consumed:]
		}
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
		if consumed > 0 {
			// keepalive consumed; more frames may already be buffered.
			continue
		}

		n, rerr := rd.r.Read(rd.tmp)
		if n > 0 {
			rd.buf = append(rd.buf, rd.tmp[:n]...)
		}
		if rerr != nil {
			if rerr == io.EOF {
				if len(rd.buf) > 0 {
					return nil, newError(ConnectionReset, io.ErrUnexpectedEOF)
				}
				return nil, nil
			}
			return nil, newError(IOError, rerr)
		}
	}
}

// tryParseFrame inspects buf and either returns a parsed frame, a keepalive
// (consumed>0, frame==nil, err==nil), a fatal parse error, or (0, nil, nil)
// meaning "not enough buffered yet, read more". The payload slice handed
// back is always exactly length-1 bytes — the fenceposts here are what a
// prior implementation got wrong by slicing buf[5:4+len] instead of
// buf[5:4+length] and losing the last payload byte (spec §9).
func tryParseFrame(buf []byte) (consumed int, frame *Frame, err error) {
	if len(buf) < 4 {
		return 0, nil, nil
	}
	length := binary.BigEndian.Uint32(buf[0:4])
	if length == 0 {
		return 4, nil, nil
	}
	total := 4 + int(length)
	if len(buf) < total {
		return 0, nil, nil
	}
	tag := Tag(buf[4])
	if !tag.known() {
		return total, nil, newError(UnknownTag, fmt.Errorf("tag %d", buf[4]))
	}
	payload := make([]byte, length-1)
	copy(payload, buf[5:total])
	return total, &Frame{Tag: tag, Payload: payload}, nil
}
