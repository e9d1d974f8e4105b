// Package transport provides the FrameSocket abstraction the session
// layer is built against (spec §1, §6), plus a net.Conn-backed
// implementation that frames the connection's raw byte stream with the
// 2-byte big-endian length header spec §6 specifies. The split between
// a small interface and one concrete adapter over it mirrors how the
// teacher isolates its wire I/O behind bufio.Reader/Writer rather than
// making every caller juggle raw net.Conn reads.
package transport

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/domsolutions/sconn/framebuffer"
)

// HeaderLen is the width of the length prefix each frame carries on the
// wire (spec §6).
const HeaderLen = 2

// MaxFrameSize is the largest payload length the HeaderLen-byte
// big-endian length prefix can carry.
const MaxFrameSize = 1<<(8*HeaderLen) - 1

// ErrFrameTooLarge is returned by Send for a frame longer than
// MaxFrameSize, which the length prefix could not describe.
var ErrFrameTooLarge = errors.New("transport: frame exceeds maximum size")

// ErrClosed marks a closed socket. Conn does not return it itself: after
// Close, its Send and Recv report the wrapped net.Conn's error.
var ErrClosed = errors.New("transport: socket closed")

// FrameSocket is the transport surface the session state machine drives
// (spec §1's "frame socket"): send one opaque frame, receive one opaque
// frame, and report liveness. Implementations own their own framing;
// the session layer never touches raw bytes.
type FrameSocket interface {
	Send(ctx context.Context, frame []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// Conn adapts a net.Conn into a FrameSocket using a 2-byte big-endian
// length prefix per frame.
type Conn struct {
	conn net.Conn

	writeMu sync.Mutex

	readMu sync.Mutex
	buf    framebuffer.Buffer
	readB  []byte
}

// NewConn wraps conn as a FrameSocket.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, readB: make([]byte, 4096)}
}

// Send writes one length-prefixed frame. ctx cancellation is honored via
// the connection's deadline when ctx carries one.
func (c *Conn) Send(ctx context.Context, frame []byte) error {
	if len(frame) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	hdr, err := framebuffer.EncodeHeader(len(frame), HeaderLen, framebuffer.BigEndian)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	}
	if _, err := c.conn.Write(hdr); err != nil {
		return err
	}
	_, err = c.conn.Write(frame)
	return err
}

// Recv blocks until one full frame has been read off the connection.
func (c *Conn) Recv(ctx context.Context) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for {
		msg, ok, err := c.buf.PopMsg(HeaderLen, framebuffer.BigEndian)
		if err != nil {
			return nil, err
		}
		if ok {
			if len(msg) > MaxFrameSize {
				return nil, ErrFrameTooLarge
			}
			return msg, nil
		}

		if deadline, ok := ctx.Deadline(); ok {
			_ = c.conn.SetReadDeadline(deadline)
		}
		n, err := c.conn.Read(c.readB)
		if n > 0 {
			c.buf.Push(c.readB[:n])
		}
		if err != nil {
			return nil, err
		}
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
