// Package framebuffer implements the append-only byte queue with
// length-prefixed frame extraction described in spec §4.1. It plays the
// same role here that frameHeader.go's raw 9-byte HTTP/2 header parsing
// plays for the teacher, generalized to a configurable header width and
// endianness since this protocol's frames are a plain 2-byte big-endian
// length prefix (spec §6) rather than HTTP/2's fixed 9-byte header.
package framebuffer

import "errors"

// Endian selects the byte order of the length header.
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

// ErrHeaderWidth is returned for header widths Buffer can't parse.
var ErrHeaderWidth = errors.New("framebuffer: header length must be between 1 and 8 bytes")

// Buffer is an append-only byte queue with length-prefixed frame
// extraction. The zero value is ready to use.
type Buffer struct {
	buf []byte
}

// Push appends bytes to the buffer.
func (b *Buffer) Push(data []byte) {
	b.buf = append(b.buf, data...)
}

// Len reports the number of buffered bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// PopAll drains and returns every buffered byte.
func (b *Buffer) PopAll() []byte {
	out := b.buf
	b.buf = nil
	return out
}

// PopMsg reads one length-prefixed frame. If fewer than headerLen bytes
// are buffered, or the declared payload isn't fully buffered yet, it
// returns (nil, false, nil) and leaves the buffer untouched -- no bytes
// are consumed on a short read (spec §4.1, §8 "Frame boundary
// preservation").
func (b *Buffer) PopMsg(headerLen int, endian Endian) ([]byte, bool, error) {
	if headerLen <= 0 || headerLen > 8 {
		return nil, false, ErrHeaderWidth
	}
	if len(b.buf) < headerLen {
		return nil, false, nil
	}

	length := decodeHeader(b.buf[:headerLen], endian)
	total := headerLen + length
	if len(b.buf) < total {
		return nil, false, nil
	}

	payload := make([]byte, length)
	copy(payload, b.buf[headerLen:total])
	b.buf = b.buf[total:]
	return payload, true, nil
}

// PopAllMsg repeatedly calls PopMsg until no full frame remains.
func (b *Buffer) PopAllMsg(headerLen int, endian Endian) ([][]byte, error) {
	var out [][]byte
	for {
		msg, ok, err := b.PopMsg(headerLen, endian)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, msg)
	}
}

func decodeHeader(b []byte, endian Endian) int {
	var v uint64
	if endian == BigEndian {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
	} else {
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	}
	return int(v)
}

// EncodeHeader writes length into a headerLen-byte header in the given
// endianness -- the counterpart used by transport implementations that
// frame outbound messages (spec §6 wire framing).
func EncodeHeader(length, headerLen int, endian Endian) ([]byte, error) {
	if headerLen <= 0 || headerLen > 8 {
		return nil, ErrHeaderWidth
	}
	out := make([]byte, headerLen)
	v := uint64(length)
	if endian == BigEndian {
		for i := headerLen - 1; i >= 0; i-- {
			out[i] = byte(v)
			v >>= 8
		}
	} else {
		for i := 0; i < headerLen; i++ {
			out[i] = byte(v)
			v >>= 8
		}
	}
	return out, nil
}
