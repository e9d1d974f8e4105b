// Package session implements the resumable SConn state machine (spec
// §4.6): Diffie-Hellman handshake, HMAC-authenticated reconnect, and
// byte-counted retransmission from a replay cache. It owns exactly one
// FrameSocket and runs single-threaded cooperative scheduling driven by
// repeated calls to Update -- the concurrency model spec §5 mandates,
// replacing the teacher's goroutine-per-stream design with a tick loop
// while keeping its pattern of pushing all actual blocking I/O onto one
// background pump (transport.Pump) that the tick loop only ever polls.
package session

import (
	"context"
	"math/big"

	"github.com/domsolutions/sconn/dhcrypto"
	"github.com/domsolutions/sconn/replaycache"
	"github.com/domsolutions/sconn/transport"
)

// Result is what Update reports back to the tick loop each call (spec
// §4.6 "{ok, status, error}").
type Result struct {
	OK     bool
	Status transport.Status
	Err    error

	// Frame is set only when an application data frame was delivered
	// while in the forward state -- the host layer's dispatch input.
	// Handshake and reconnect control frames are consumed internally and
	// never appear here.
	Frame []byte
}

// Session is one resumable SConn instance.
type Session struct {
	pump  *transport.Pump
	state State

	id             uint32
	reconnectIndex uint64
	sentBytes      uint64
	recvBytes      uint64

	priv   *big.Int
	secret []byte

	target string
	flag   string

	prehandshake [][]byte
	replay       replaycache.Cache
	reconnectCB  func(bool)
}

// New constructs a Session over sock, in state newconnect. Connect must
// be called before any data can flow.
func New(sock transport.FrameSocket) *Session {
	return &Session{
		pump:  transport.NewPump(sock),
		state: StateNewConnect,
	}
}

// Connect performs the newconnect state's on-entry action: generate a DH
// private key, compute the public value, and transmit the hello frame
// (spec §4.6).
func (s *Session) Connect(target, flag string) error {
	if s.state != StateNewConnect {
		return ErrWrongState
	}
	priv, err := dhcrypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	s.priv = priv
	s.target = target
	s.flag = flag

	pub := dhcrypto.PublicKey(priv)
	return s.pump.Send(context.Background(), buildHello(pub, target, flag))
}

// State reports the current state.
func (s *Session) State() State { return s.state }

// IsConnected reports whether the session is in the forward state.
func (s *Session) IsConnected() bool { return s.state == StateForward }

// SessionID returns the id assigned by the server during handshake.
func (s *Session) SessionID() uint32 { return s.id }

// BytesSent and BytesReceived expose the running counters spec §4.6
// tracks for reconnect negotiation.
func (s *Session) BytesSent() uint64     { return s.sentBytes }
func (s *Session) BytesReceived() uint64 { return s.recvBytes }

// ReconnectIndex returns the monotonic reconnect attempt counter.
func (s *Session) ReconnectIndex() uint64 { return s.reconnectIndex }

// Send transmits (or queues) one already-packed application frame,
// following the per-state "on send(d)" behavior of spec §4.6's table.
func (s *Session) Send(data []byte) error {
	switch s.state {
	case StateNewConnect:
		s.prehandshake = append(s.prehandshake, append([]byte(nil), data...))
		return nil

	case StateForward:
		if err := s.pump.Send(context.Background(), data); err != nil {
			return err
		}
		s.sentBytes += uint64(len(data))
		s.replay.Insert(data)
		return nil

	case StateReconnect:
		// Queued, not transmitted: flushed by the retransmit path on a
		// successful reconnect (spec §4.6).
		s.replay.Insert(data)
		s.sentBytes += uint64(len(data))
		return nil

	case StateClosed:
		return ErrClosed

	default: // the three terminal reconnect-failure sinks
		return ErrWrongState
	}
}

// Update pumps the transport for at most one inbound frame and drives
// the current state's dispatch. It never blocks (spec §4.6, §5).
func (s *Session) Update() Result {
	frame, status, err := s.pump.Poll()

	switch status {
	case transport.StatusConnectBreak:
		return Result{OK: false, Status: status, Err: err}
	case transport.StatusIdle:
		return Result{OK: true, Status: status}
	}

	return s.dispatch(frame)
}

func (s *Session) dispatch(frame []byte) Result {
	switch s.state {
	case StateNewConnect:
		return s.handleHello(frame)
	case StateForward:
		s.recvBytes += uint64(len(frame))
		return Result{OK: true, Status: transport.StatusFrame, Frame: frame}
	case StateReconnect:
		return s.handleReconnectReply(frame)
	default:
		// Terminal states drop inbound frames.
		return Result{OK: true, Status: transport.StatusFrame}
	}
}

func (s *Session) handleHello(frame []byte) Result {
	id, serverPub, err := parseHelloReply(frame)
	if err != nil {
		return Result{OK: false, Status: transport.StatusFrame, Err: err}
	}
	s.id = id
	s.secret = dhcrypto.SharedSecret(s.priv, serverPub)
	s.state = StateForward
	s.flushPrehandshake()
	return Result{OK: true, Status: transport.StatusFrame}
}

func (s *Session) flushPrehandshake() {
	queued := s.prehandshake
	s.prehandshake = nil
	for _, f := range queued {
		_ = s.Send(f)
	}
}

func (s *Session) handleReconnectReply(frame []byte) Result {
	serverRecv, code, err := parseReconnectReply(frame)
	if err != nil {
		return s.failReconnect(StateReconnectError, err)
	}
	if code != "200" {
		return s.failReconnect(StateReconnectError, ErrReconnectRefused)
	}
	if serverRecv > s.sentBytes {
		return s.failReconnect(StateReconnectMatchError, ErrReconnectMismatch)
	}
	if serverRecv < s.sentBytes {
		need := int(s.sentBytes - serverRecv)
		tail, err := s.replay.Get(need)
		if err != nil {
			return s.failReconnect(StateReconnectCacheError, ErrReconnectCacheExhausted)
		}
		if err := s.pump.Send(context.Background(), tail); err != nil {
			return Result{OK: false, Status: transport.StatusFrame, Err: err}
		}
	}
	s.state = StateForward
	s.notifyReconnect(true)
	return Result{OK: true, Status: transport.StatusFrame}
}

func (s *Session) failReconnect(to State, err error) Result {
	s.state = to
	s.notifyReconnect(false)
	return Result{OK: false, Status: transport.StatusFrame, Err: err}
}

// Reconnect transitions to the reconnect state and transmits the
// HMAC-authenticated resume request (spec §4.6). Valid from forward or
// (to retry) from reconnect itself. cb, if non-nil, is invoked once with
// the outcome.
func (s *Session) Reconnect(cb func(ok bool)) error {
	if s.state != StateForward && s.state != StateReconnect {
		return ErrWrongState
	}
	s.state = StateReconnect
	s.reconnectIndex++
	s.reconnectCB = cb

	msg := buildReconnectFrame(s.id, s.reconnectIndex, s.recvBytes, s.secret)
	return s.pump.Send(context.Background(), msg)
}

func (s *Session) notifyReconnect(ok bool) {
	if s.reconnectCB == nil {
		return
	}
	cb := s.reconnectCB
	s.reconnectCB = nil
	cb(ok)
}

// Close transitions to close, clears queued state, and tears down the
// transport (spec §4.6, §5 "Cancellation").
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.prehandshake = nil
	s.replay.Reset()
	s.notifyReconnect(false)
	return s.pump.Close()
}
