// Package replaycache holds the bounded history of recently transmitted
// frames a resumable session needs to answer a reconnect with an exact
// byte-for-byte retransmission of whatever the peer claims not to have
// received (spec §4.7). The fixed-capacity ring buffer is the same shape
// streams.go gives its sorted, capped collection of live streams, just
// keyed by insertion order instead of stream id.
package replaycache

import "errors"

// Capacity is the maximum number of frames retained (spec §4.7 "ring of
// at most 100 frames").
const Capacity = 100

// ErrInsufficientHistory is returned when Get is asked for more trailing
// bytes than the cache currently retains -- the retransmit-on-reconnect
// path this surfaces as reconnect_cache_error (spec §4.6).
var ErrInsufficientHistory = errors.New("replaycache: requested tail exceeds retained history")

// Cache is a ring buffer of the last Capacity transmitted frames. The
// zero value is ready to use.
type Cache struct {
	entries  [][]byte
	next     int // write cursor into entries, modulo len once full
	totalLen int // sum of len() of every currently retained frame
}

// Insert records a newly transmitted frame.
func (c *Cache) Insert(frame []byte) {
	cp := make([]byte, len(frame))
	copy(cp, frame)

	if len(c.entries) < Capacity {
		c.entries = append(c.entries, cp)
		c.totalLen += len(cp)
	} else {
		evicted := c.entries[c.next%Capacity]
		c.totalLen -= len(evicted)
		c.entries[c.next%Capacity] = cp
		c.totalLen += len(cp)
	}
	c.next++
}

// Get returns the last n bytes across every retained frame, oldest-first,
// slicing the oldest included frame down to its tail so the result is
// exactly n bytes long (spec §4.7). It fails with ErrInsufficientHistory
// if fewer than n bytes are retained.
func (c *Cache) Get(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if n > c.totalLen {
		return nil, ErrInsufficientHistory
	}

	ordered := c.ordered()
	remaining := n
	start := len(ordered)
	for start > 0 && remaining > 0 {
		start--
		if len(ordered[start]) <= remaining {
			remaining -= len(ordered[start])
		} else {
			break
		}
	}

	out := make([]byte, 0, n)
	if remaining > 0 {
		// The oldest included frame only partially contributes: keep its
		// tail of `remaining` bytes.
		f := ordered[start]
		out = append(out, f[len(f)-remaining:]...)
		start++
	}
	for _, f := range ordered[start:] {
		out = append(out, f...)
	}
	return out, nil
}

// ordered returns the retained frames in transmission order.
func (c *Cache) ordered() [][]byte {
	if len(c.entries) < Capacity {
		return c.entries
	}
	start := c.next % Capacity
	out := make([][]byte, Capacity)
	copy(out, c.entries[start:])
	copy(out[Capacity-start:], c.entries[:start])
	return out
}

// Len reports how many frames are currently retained.
func (c *Cache) Len() int { return len(c.entries) }

// TotalLen reports the combined byte length of every retained frame.
func (c *Cache) TotalLen() int { return c.totalLen }

// Reset discards all retained frames, used when a session starts fresh
// rather than resumes.
func (c *Cache) Reset() {
	c.entries = nil
	c.next = 0
	c.totalLen = 0
}
