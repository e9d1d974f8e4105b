package host

import (
	"sync"

	"github.com/domsolutions/sconn/sproto"
)

// Future is the handle Call hands back for a pending request. It has no
// goroutine or channel wait of its own: the caller drives it to
// resolution by calling Dispatch from its own update loop and polling
// Done/Poll afterward, the same single-threaded discipline Session.Update
// follows.
type Future struct {
	mu       sync.Mutex
	resolved bool
	value    sproto.Value
	err      error
}

// Done reports whether the future has resolved, one way or another.
func (f *Future) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// Poll returns (ok, value, err). ok is false while the call is still
// outstanding; the caller should try again after the next Dispatch.
func (f *Future) Poll() (ok bool, value sproto.Value, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved, f.value, f.err
}

func (f *Future) resolve(v sproto.Value, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return
	}
	f.resolved = true
	f.value = v
	f.err = err
}
