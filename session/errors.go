package session

import "errors"

// State-machine errors (spec §7 "Resumption errors" and general session
// misuse).
var (
	// ErrWrongState is returned when an API call isn't valid in the
	// session's current state (e.g. Reconnect from newconnect).
	ErrWrongState = errors.New("session: operation not valid in current state")

	// ErrClosed is returned by operations attempted after Close.
	ErrClosed = errors.New("session: session is closed")

	// ErrInvalidHandshake is returned when the newconnect reply frame
	// doesn't parse as "<id>\n<server_pub_b64>\n...".
	ErrInvalidHandshake = errors.New("session: malformed handshake reply")

	// ErrInvalidReconnectReply is returned when the reconnect reply frame
	// doesn't parse as "<server_recv>\n<code>\n".
	ErrInvalidReconnectReply = errors.New("session: malformed reconnect reply")

	// ErrReconnectRefused is reconnect_error: the server's reply code
	// wasn't "200".
	ErrReconnectRefused = errors.New("session: server refused reconnect")

	// ErrReconnectMismatch is reconnect_match_error: the server claims to
	// have received more bytes than the client ever sent.
	ErrReconnectMismatch = errors.New("session: server receive count exceeds bytes sent")

	// ErrReconnectCacheExhausted is reconnect_cache_error: resuming needs
	// bytes the replay cache has already evicted.
	ErrReconnectCacheExhausted = errors.New("session: replay cache can't cover requested retransmission")
)
