// Package relay serializes callbacks invoked by the measurement engine's
// background goroutines onto the host's event-loop goroutine.
//
// In the common case, engine callbacks run in the context of a private
// background goroutine from which the host's APIs cannot be called
// directly. A [Relay] suspends each callback into a deferred action (a
// zero-argument closure owning copies of all its arguments) and rings a
// [Doorbell] bound to the host loop. The host loop eventually resumes the
// relay, which drains the suspended actions in FIFO order on the loop
// goroutine, where calling into the host is safe.
//
// Because the host loop may coalesce multiple doorbell signals into one
// resume, the relay keeps all suspended actions in a queue and the resume
// step drains the whole queue by swapping it for an empty one.
//
// A relay registered with the doorbell keeps the host loop alive. The
// relay also keeps a reference to itself for as long as the loop is using
// it: the self reference is set by [Relay.Register] and cleared only when
// the doorbell confirms that the registration has been released. This is
// a deliberate cycle broken by that single external event. Shutting down
// is itself a suspended action, because releasing the doorbell binding is
// only safe on the loop goroutine; use [Relay.BeginShutdown] once the
// engine guarantees no further callbacks will fire.
package relay

import (
	"sync"
	"sync/atomic"

	"github.com/ooni/probe-goja/internal/runtimex"
)

// Relay is the hand-off point between the engine's producer goroutines
// and the host loop consumer. The zero value is invalid; use [New].
//
// Beyond the doorbell registration, a relay is kept logically alive by
// explicit holder accounting: the registration owns one share from
// [Relay.Register] until the doorbell confirms its release, and every
// callback bridge that may still enqueue actions owns one share acquired
// with [Relay.Retain]. The relay is finished only when the count drops
// to zero.
type Relay struct {
	// bell is the doorbell we register with.
	bell Doorbell

	// holders counts the registration's share plus one share per
	// outstanding [Relay.Retain].
	holders atomic.Int64

	// mu protects pending, reg and self.
	mu sync.Mutex

	// onfree, if not nil, is called when holders drops to zero. It is
	// set at most once, before Register, and exists for testing
	// destruction order.
	onfree func()

	// pending is the queue of suspended actions.
	pending []func()

	// reg is the open doorbell registration, nil before Register
	// has been called.
	reg Registration

	// self keeps the relay referring to itself between Register and
	// the doorbell's close confirmation.
	self *Relay
}

// New creates a [Relay] that will register with the given doorbell. The
// new relay starts with one holder share, owned by the future doorbell
// registration and released by the shutdown handshake.
func New(bell Doorbell) *Relay {
	runtimex.Assert(bell != nil, "relay: New passed a nil Doorbell")
	r := &Relay{bell: bell}
	r.holders.Store(1)
	return r
}

// Register binds the relay's drain step to the doorbell. The self
// reference is stored before registering, so there is no window in which
// the loop could resume a relay that does not yet refer to itself. A
// registration failure means the host loop's wakeup channel is broken,
// which voids every guarantee this package makes, so it panics.
func (r *Relay) Register() {
	r.mu.Lock()
	runtimex.Assert(r.self == nil && r.reg == nil, "relay: Register called twice")
	r.self = r
	r.mu.Unlock()
	reg, err := r.bell.Register(r.resume)
	runtimex.PanicOnError(err, "relay: doorbell registration failed")
	r.mu.Lock()
	r.reg = reg
	r.mu.Unlock()
}

// Enqueue suspends the execution of fn so that it is later resumed in
// the context of the host loop. It is safe to call Enqueue from any
// goroutine, including from a draining action. The fn closure must own
// copies of every value it needs: nothing may refer to memory that the
// calling goroutine could mutate or recycle after Enqueue returns.
//
// Enqueue must not be called before [Relay.Register] nor after the
// shutdown action enqueued by [Relay.BeginShutdown] has run. A doorbell
// signaling failure is an unrecoverable environment error and panics.
func (r *Relay) Enqueue(fn func()) {
	r.mu.Lock()
	reg := r.reg
	runtimex.Assert(reg != nil, "relay: Enqueue called on an unregistered relay")
	r.pending = append(r.pending, fn)
	r.mu.Unlock()
	// Signaling outside the lock means two producers may signal in an
	// order that differs from their queue order. That is fine: signals
	// may coalesce anyway and resume drains the whole queue.
	runtimex.PanicOnError(reg.Signal(), "relay: doorbell signal failed")
}

// resume is invoked by the host loop to run the suspended actions. We
// swap the queue for an empty one so that producers keep enqueueing into
// a fresh queue while this batch runs; an action enqueued during the
// batch therefore lands in the next batch. Actions run in FIFO order and
// a panicking action is a fatal fault, as everywhere in this codebase.
func (r *Relay) resume() {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
}

// BeginShutdown schedules the release of the doorbell registration. The
// release is itself a suspended action rather than a synchronous call
// because closing the registration is only safe on the loop goroutine,
// and routing it through the queue guarantees it runs after every action
// enqueued before it. Call BeginShutdown at most once, when the engine
// has announced that no further callbacks will fire.
func (r *Relay) BeginShutdown() {
	r.Enqueue(func() {
		r.mu.Lock()
		reg := r.reg
		r.mu.Unlock()
		runtimex.PanicOnError(reg.Close(r.finishShutdown), "relay: doorbell close failed")
	})
}

// finishShutdown is called by the doorbell, on the loop goroutine, once
// the registration has been fully released. This is the only place where
// the self reference is cleared. After this call the relay is finished
// as soon as the last bridge holding a share releases it.
func (r *Relay) finishShutdown() {
	r.mu.Lock()
	runtimex.Assert(r.self == r, "relay: finishShutdown without self reference")
	r.self = nil
	r.mu.Unlock()
	r.Release()
}

// Retain acquires a holder share on behalf of a callback bridge. As long
// as any share is outstanding the relay is not finished, even after the
// shutdown handshake has completed.
func (r *Relay) Retain() {
	v := r.holders.Add(1)
	runtimex.Assert(v > 1, "relay: Retain on a finished relay")
}

// Release drops a holder share previously acquired with [Relay.Retain].
func (r *Relay) Release() {
	v := r.holders.Add(-1)
	runtimex.Assert(v >= 0, "relay: Release without matching Retain")
	if v == 0 {
		if fn := r.onfree; fn != nil {
			fn()
		}
	}
}

// registered returns whether the relay currently refers to itself,
// i.e. whether the host loop is still using it.
func (r *Relay) registered() bool {
	defer r.mu.Unlock()
	r.mu.Lock()
	return r.self != nil
}
