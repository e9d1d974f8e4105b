// Package host implements the request/response multiplexer that sits on
// top of a Session (spec §4.8): it tags outbound requests with a session
// id, keeps a pending-call table awaiting replies, and routes inbound
// frames to either a registered protocol handler or a waiting Future.
package host

import (
	"github.com/domsolutions/sconn/sproto"
)

// Sender is the subset of Session a Host needs: one already-packed
// application frame out.
type Sender interface {
	Send(data []byte) error
}

// Handler answers one inbound request. When hasResponse is false no reply
// is sent and response is ignored. When the protocol has no response
// type, a true hasResponse sends a reply carrying only the package
// header.
type Handler func(args sproto.Value) (response sproto.Value, hasResponse bool, err error)

type pendingCall struct {
	protocol *sproto.Protocol
	future   *Future
}

// Host multiplexes one Session's application data stream across many
// concurrent named calls (spec §4.8).
type Host struct {
	schema      *sproto.Schema
	packageType *sproto.Type
	sender      Sender

	nextID   uint32
	pending  map[uint32]*pendingCall
	handlers map[string]Handler

	closed bool
}

// New builds a Host over sender, using schema's package header type
// (named by packageTypeName, spec §6 default "base.package") to frame
// every call.
func New(schema *sproto.Schema, packageTypeName string, sender Sender) (*Host, error) {
	pkgType, ok := schema.Type(packageTypeName)
	if !ok {
		return nil, ErrUnknownProtocol
	}
	return &Host{
		schema:      schema,
		packageType: pkgType,
		sender:      sender,
		pending:     make(map[uint32]*pendingCall),
		handlers:    make(map[string]Handler),
	}, nil
}

// SetSender binds (or rebinds) the Sender outbound frames are written
// to. Used by callers that build a Host before a transport exists yet --
// the facade's NewSession/Dial split (spec §6 "new_session" returns a
// session object before "connect" opens a transport).
func (h *Host) SetSender(sender Sender) {
	h.sender = sender
}

// Register installs handler for inbound requests naming protocol name.
func (h *Host) Register(name string, handler Handler) error {
	if _, ok := h.schema.Protocol(name); !ok {
		return ErrUnknownProtocol
	}
	if _, exists := h.handlers[name]; exists {
		return ErrDuplicateHandler
	}
	h.handlers[name] = handler
	return nil
}

// Call sends a request for protocol name and returns a Future that
// resolves once the matching reply is routed through Dispatch.
func (h *Host) Call(name string, args sproto.Value) (*Future, error) {
	if h.closed {
		return nil, ErrClosed
	}
	proto, ok := h.schema.Protocol(name)
	if !ok {
		return nil, ErrUnknownProtocol
	}

	id := h.nextID
	h.nextID++

	header := sproto.Struct(map[string]sproto.Value{
		"type":    sproto.Int(int64(proto.Tag)),
		"session": sproto.Int(int64(id)),
	})
	frame, err := h.buildFrame(header, proto.Request, args)
	if err != nil {
		return nil, err
	}
	if err := h.sender.Send(frame); err != nil {
		return nil, err
	}

	future := &Future{}
	h.pending[id] = &pendingCall{protocol: proto, future: future}
	return future, nil
}

// Invoke sends a request for protocol name without allocating a session
// id and without waiting on a reply (spec §4.8 "invoke").
func (h *Host) Invoke(name string, args sproto.Value) error {
	if h.closed {
		return ErrClosed
	}
	proto, ok := h.schema.Protocol(name)
	if !ok {
		return ErrUnknownProtocol
	}

	header := sproto.Struct(map[string]sproto.Value{
		"type": sproto.Int(int64(proto.Tag)),
	})
	frame, err := h.buildFrame(header, proto.Request, args)
	if err != nil {
		return err
	}
	return h.sender.Send(frame)
}

// Dispatch decodes one inbound application frame (the Frame field of a
// Session's Update Result) and routes it as either an inbound request or
// a reply to a pending Call.
func (h *Host) Dispatch(frame []byte) error {
	if h.closed {
		return ErrClosed
	}

	raw, err := sproto.Unpack(frame, 0)
	if err != nil {
		return err
	}
	n, err := sproto.ObjLen(h.packageType, raw)
	if err != nil {
		return err
	}
	header, err := sproto.Decode(h.packageType, raw)
	if err != nil {
		return err
	}
	body := raw[n:]

	typeVal, hasType := header.Get("type")
	sessionVal, hasSession := header.Get("session")

	if hasType {
		return h.dispatchRequest(int(typeVal.Int), hasSession, uint32(sessionVal.Int), body)
	}
	if !hasSession {
		return ErrMissingSessionHeader
	}
	return h.dispatchResponse(uint32(sessionVal.Int), body)
}

func (h *Host) dispatchRequest(tag int, hasSession bool, sessionID uint32, body []byte) error {
	proto, ok := h.schema.ProtocolByTag(tag)
	if !ok {
		return nil // unknown inbound protocol tag: dropped, not fatal
	}
	handler, ok := h.handlers[proto.Name]
	if !ok {
		return nil // no handler registered: dropped
	}

	args, err := h.decodeBody(proto.Request, body)
	if err != nil {
		return err
	}

	response, hasResponse, err := handler(args)
	if err != nil {
		return err
	}
	if !hasResponse || !hasSession {
		return nil
	}

	replyHeader := sproto.Struct(map[string]sproto.Value{
		"session": sproto.Int(int64(sessionID)),
	})
	replyFrame, err := h.buildFrame(replyHeader, proto.Response, response)
	if err != nil {
		return err
	}
	return h.sender.Send(replyFrame)
}

func (h *Host) dispatchResponse(sessionID uint32, body []byte) error {
	call, ok := h.pending[sessionID]
	if !ok {
		return nil // reply to an id we no longer track: dropped
	}
	delete(h.pending, sessionID)

	value, err := h.decodeBody(call.protocol.Response, body)
	call.future.resolve(value, err)
	return nil
}

func (h *Host) decodeBody(t *sproto.Type, body []byte) (sproto.Value, error) {
	if t == nil {
		return sproto.Struct(nil), nil
	}
	return sproto.Decode(t, body)
}

func (h *Host) buildFrame(header sproto.Value, bodyType *sproto.Type, body sproto.Value) ([]byte, error) {
	headerBytes, err := sproto.Encode(h.packageType, header)
	if err != nil {
		return nil, err
	}
	var bodyBytes []byte
	if bodyType != nil {
		bodyBytes, err = sproto.Encode(bodyType, body)
		if err != nil {
			return nil, err
		}
	}
	raw := append(headerBytes, bodyBytes...)
	return sproto.Pack(raw, 0)
}

// Close rejects every outstanding Future with ErrClosed and stops
// accepting new calls.
func (h *Host) Close() {
	if h.closed {
		return
	}
	h.closed = true
	for id, call := range h.pending {
		call.future.resolve(sproto.Value{}, ErrClosed)
		delete(h.pending, id)
	}
}
