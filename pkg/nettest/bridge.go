package nettest

//
// Callback bridge
//

import (
	"sync/atomic"

	"github.com/ooni/probe-goja/internal/relay"
)

// callbackBridge adapts one engine callback slot to the relay. The
// engine invokes the slot on its worker goroutine; the bridge suspends
// the corresponding host dispatch on the relay, which later resumes it
// on the host-loop goroutine.
//
// A bridge holds a share of the relay from creation until close, so the
// relay cannot be finished while the slot might still fire. It shares
// the relay rather than pointing back to the [Handle]: the engine may
// invoke the slot well after the handle has finished configuring, so the
// bridge's lifetime must be independent of the handle's.
type callbackBridge struct {
	// closed makes close idempotent.
	closed atomic.Bool

	// relay is the shared relay handle.
	relay *relay.Relay
}

// newBridge creates a bridge for one callback slot and records it so
// that the destroy signal can close it.
func (h *Handle) newBridge() *callbackBridge {
	h.relay.Retain()
	br := &callbackBridge{relay: h.relay}
	h.bridges = append(h.bridges, br)
	return br
}

// suspend defers one invocation's host-visible dispatch. The fn closure
// must own copies of every invocation argument: by the time it runs the
// engine's stack frame is long gone.
func (b *callbackBridge) suspend(fn func()) {
	b.relay.Enqueue(fn)
}

// close drops the bridge's share of the relay.
func (b *callbackBridge) close() {
	if b.closed.CompareAndSwap(false, true) {
		b.relay.Release()
	}
}
