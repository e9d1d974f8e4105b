// Package sconn is the public facade spec §6 describes: new_session,
// connect, and the session object's register/call/invoke/update/close
// surface, wiring the sproto codec, the resumable session state
// machine, and the request/response host into one handle per
// connection.
package sconn

import (
	"context"
	"net"

	"github.com/domsolutions/sconn/host"
	"github.com/domsolutions/sconn/session"
	"github.com/domsolutions/sconn/sproto"
	"github.com/domsolutions/sconn/transport"
)

// UpdateResult is the tick-loop result spec §4.6 calls "{ok, status,
// error}", re-exported at the facade so callers never need to import
// the session package directly.
type UpdateResult struct {
	OK     bool
	Status transport.Status
	Err    error
}

// Client is one resumable session bound to one schema. It owns the
// Session state machine and the Host multiplexer layered on top of it.
type Client struct {
	schema  *sproto.Schema
	session *session.Session
	host    *host.Host
}

// NewSession parses bundle against the declared package header type
// (spec §6 "new_session(bundle_bytes, package_type_name)") and returns
// a Client ready to Dial. packageType defaults to "base.package" when
// empty.
func NewSession(bundle []byte, packageType string) (*Client, error) {
	schema, err := sproto.Load(bundle)
	if err != nil {
		return nil, err
	}
	if packageType == "" {
		packageType = "base.package"
	}
	return newClient(schema, packageType)
}

func newClient(schema *sproto.Schema, packageType string) (*Client, error) {
	c := &Client{schema: schema}
	h, err := host.New(schema, packageType, nil)
	if err != nil {
		return nil, err
	}
	c.host = h
	return c, nil
}

// Dial opens a TCP connection to addr and starts the newconnect
// handshake (spec §6 "connect(url, target_server?,
// flag?)"). The caller must still pump Update until IsConnected is
// true; Dial only sends the hello frame.
func Dial(addr string, bundle []byte, opts DialOptions) (*Client, error) {
	opts = opts.withDefaults()

	c, err := NewSession(bundle, opts.PackageType)
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := dialer.DialContext(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	sock := transport.NewConn(conn)
	c.session = session.New(sock)
	c.host.SetSender(c.session)

	if err := c.session.Connect(opts.Target, opts.Flag); err != nil {
		_ = sock.Close()
		return nil, err
	}
	return c, nil
}

// Register installs handler for inbound requests of the named protocol
// (spec §4.8 "register").
func (c *Client) Register(name string, handler host.Handler) error {
	return c.host.Register(name, handler)
}

// Call sends a request for the named protocol and returns a Future the
// caller polls from its own tick loop (spec §4.8 "call").
func (c *Client) Call(name string, args Value) (*host.Future, error) {
	if c.session == nil {
		return nil, ErrNotConnected
	}
	return c.host.Call(name, args)
}

// Invoke sends a fire-and-forget request, allocating no session id and
// awaiting no reply (spec §4.8 "invoke").
func (c *Client) Invoke(name string, args Value) error {
	if c.session == nil {
		return ErrNotConnected
	}
	return c.host.Invoke(name, args)
}

// Update pumps the transport for at most one inbound frame, drives the
// session state machine, and dispatches any delivered application frame
// through the host (spec §4.6, §4.8). It never blocks.
func (c *Client) Update() UpdateResult {
	if c.session == nil {
		return UpdateResult{OK: false, Err: ErrNotConnected}
	}
	res := c.session.Update()
	if res.Status == transport.StatusFrame && res.Frame != nil {
		if err := c.host.Dispatch(res.Frame); err != nil {
			return UpdateResult{OK: false, Status: res.Status, Err: err}
		}
	}
	return UpdateResult{OK: res.OK, Status: res.Status, Err: res.Err}
}

// IsConnected reports whether the session has completed its handshake
// and is in the forward state.
func (c *Client) IsConnected() bool {
	return c.session != nil && c.session.IsConnected()
}

// SessionID returns the id the server assigned during handshake.
func (c *Client) SessionID() uint32 {
	if c.session == nil {
		return 0
	}
	return c.session.SessionID()
}

// Reconnect transitions the session to reconnect and transmits the
// HMAC-authenticated resume request (spec §4.6 "reconnect(cb?)"). cb,
// if non-nil, is invoked once the outcome (success or a terminal
// failure state) is known.
func (c *Client) Reconnect(cb func(ok bool)) error {
	if c.session == nil {
		return ErrNotConnected
	}
	return c.session.Reconnect(cb)
}

// Close tears down the session and rejects every outstanding Future
// with a closed error (spec §5 "Cancellation").
func (c *Client) Close() error {
	c.host.Close()
	if c.session == nil {
		return nil
	}
	return c.session.Close()
}
