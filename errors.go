package sconn

import "errors"

// Errors returned by the top-level facade (spec §6, §7).
var (
	// ErrNotConnected is returned by Call/Invoke/Reconnect before Connect
	// has ever been called.
	ErrNotConnected = errors.New("sconn: session not connected")
)
