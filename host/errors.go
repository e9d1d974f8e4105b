package host

import "errors"

// Host errors (spec §7 "Host errors").
var (
	// ErrUnknownProtocol is returned by Call/Invoke/Register when the
	// named protocol isn't declared in the schema.
	ErrUnknownProtocol = errors.New("host: unknown protocol name")

	// ErrDuplicateHandler is returned by Register when a handler is
	// already installed for the protocol.
	ErrDuplicateHandler = errors.New("host: handler already registered for protocol")

	// ErrClosed is returned by Call/Invoke/Dispatch once the host has
	// been closed.
	ErrClosed = errors.New("host: host is closed")

	// ErrMissingSessionHeader is returned when an inbound frame's package
	// header carries neither a type (request) nor a session (response).
	ErrMissingSessionHeader = errors.New("host: package header missing both type and session")
)
