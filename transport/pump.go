package transport

import "context"

// Status classifies the outcome of one Pump.Poll call (spec §7 "Transport
// errors": dial_timeout, websocket_error, connection_closed,
// connect_break). StatusConnectBreak is the one the session state
// machine treats specially -- it is the signal inviting Reconnect.
type Status int

const (
	StatusIdle Status = iota
	StatusFrame
	StatusConnectBreak
	StatusClosed
)

// Pump turns a blocking FrameSocket into the non-blocking "pump the
// transport, return success/status/error" surface the session tick loop
// needs (spec §4.6 update()). A single background goroutine owns the
// blocking Recv loop and hands frames (or the terminal error) across a
// channel; Poll only ever does a non-blocking read off that channel, so
// the state machine itself stays single-threaded and never blocks, per
// §5's concurrency model -- only this I/O pump, an external collaborator,
// runs on its own goroutine.
type Pump struct {
	sock   FrameSocket
	frames chan []byte
	errc   chan error
	done   chan struct{}

	// broken latches the terminal read error so repeated Poll calls keep
	// reporting StatusConnectBreak even after the error has already been
	// drained off errc once. Poll is only ever called from the session's
	// single tick goroutine, so this needs no synchronization of its own.
	broken    bool
	brokenErr error
}

// NewPump starts pumping sock in the background.
func NewPump(sock FrameSocket) *Pump {
	p := &Pump{
		sock:   sock,
		frames: make(chan []byte, 64),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go p.readLoop()
	return p
}

func (p *Pump) readLoop() {
	for {
		frame, err := p.sock.Recv(context.Background())
		if err != nil {
			p.errc <- err
			return
		}
		select {
		case p.frames <- frame:
		case <-p.done:
			return
		}
	}
}

// Poll returns immediately. StatusFrame carries exactly one inbound
// frame; StatusIdle means nothing is ready yet; StatusConnectBreak
// carries the terminal read error from the background loop.
func (p *Pump) Poll() ([]byte, Status, error) {
	// Drain any frames that arrived before the connection broke first,
	// so a late read error never discards already-delivered frames.
	select {
	case frame := <-p.frames:
		return frame, StatusFrame, nil
	default:
	}
	if p.broken {
		return nil, StatusConnectBreak, p.brokenErr
	}
	select {
	case err := <-p.errc:
		p.broken = true
		p.brokenErr = err
		return nil, StatusConnectBreak, err
	default:
		return nil, StatusIdle, nil
	}
}

// Send writes a frame through the wrapped socket.
func (p *Pump) Send(ctx context.Context, frame []byte) error {
	return p.sock.Send(ctx, frame)
}

// Close stops the background pump and closes the underlying socket.
func (p *Pump) Close() error {
	close(p.done)
	return p.sock.Close()
}
