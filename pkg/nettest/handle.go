// Package nettest provides the host-visible handle for running one
// measurement-engine network test from a single-threaded event-loop
// host. It mimics the namesake object initially implemented in
// Measurement Kit's Node.js bindings.
//
// A [Handle] wraps an engine-owned test instance. Every callback the
// host registers is routed through a bridge that copies the callback
// arguments by value and suspends the dispatch on a per-handle relay,
// so the host only ever observes callbacks on its own loop goroutine,
// in emission order. When the engine announces the destruction of the
// test, the handle initiates the relay's shutdown handshake, which
// eventually releases the host loop.
//
// A handle is configured and then handed off exactly once via [Handle.Run]
// or [Handle.Start]; from that point on every setter fails with
// [ErrAlreadyStarted] because the test now belongs to the engine's
// worker goroutine and must not be mutated concurrently.
package nettest

import (
	"errors"
	"sync/atomic"

	"github.com/ooni/probe-goja/internal/model"
	"github.com/ooni/probe-goja/internal/relay"
	"github.com/ooni/probe-goja/internal/runtimex"
)

// ErrAlreadyStarted indicates that a [Handle] was configured or started
// after it had already been handed off to the engine.
var ErrAlreadyStarted = errors.New("nettest: already started")

// Handle is the host-visible lifecycle object representing one
// configured, possibly-running engine test. The zero value is invalid;
// use [New]. A Handle is not safe for concurrent use: the host
// configures and starts it from the loop goroutine.
type Handle struct {
	// awaitingCompletion is true while a completion callback passed
	// to Start has not been invoked by the engine yet.
	awaitingCompletion *atomic.Bool

	// bridges are the callback bridges created so far.
	bridges []*callbackBridge

	// nettest is the engine-owned test instance.
	nettest model.EngineNettest

	// relay serializes engine callbacks onto the host loop.
	relay *relay.Relay

	// shutdownDeferred records that the engine announced destruction
	// while the completion was still pending.
	shutdownDeferred *atomic.Bool

	// started flips to nonzero exactly once, when the test is
	// handed off to the engine.
	started *atomic.Int64

	// terminated is closed once the shutdown handshake has been
	// initiated (for testing).
	terminated chan any
}

// New creates a [Handle] wrapping the given engine test. The doorbell
// must be bound to the host's event loop: it is how the relay wakes the
// loop up from the engine's worker goroutines.
func New(bell relay.Doorbell, nt model.EngineNettest) *Handle {
	runtimex.Assert(nt != nil, "nettest: New passed a nil EngineNettest")
	return &Handle{
		awaitingCompletion: &atomic.Bool{},
		bridges:            nil,
		nettest:            nt,
		relay:              relay.New(bell),
		shutdownDeferred:   &atomic.Bool{},
		started:            &atomic.Int64{},
		terminated:         make(chan any),
	}
}

// SetOptions sets a test-specific option.
func (h *Handle) SetOptions(key, value string) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	return h.nettest.SetOptions(key, value)
}

// AddInput adds one input string to the list of inputs to be processed
// by this test. If the test takes no input, adding one extra input has
// basically no visible effect.
func (h *Handle) AddInput(input string) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	h.nettest.AddInput(input)
	return nil
}

// AddInputFilepath adds one file containing inputs, one per line.
func (h *Handle) AddInputFilepath(path string) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	h.nettest.AddInputFilepath(path)
	return nil
}

// SetErrorFilepath sets the path where logs will be written. Not
// setting the error filepath prevents logs from being written on disk.
func (h *Handle) SetErrorFilepath(path string) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	h.nettest.SetErrorFilepath(path)
	return nil
}

// SetOutputFilepath sets the path where the test report will be written.
func (h *Handle) SetOutputFilepath(path string) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	h.nettest.SetOutputFilepath(path)
	return nil
}

// SetVerbosity sets the logging verbosity. Zero is equivalent to
// WARNING, one to INFO, two to DEBUG and more than two makes the
// engine even more verbose.
func (h *Handle) SetVerbosity(level int64) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	h.nettest.SetVerbosity(level)
	return nil
}

// OnBegin registers the callback called right at the beginning of the
// test. Like every handler registered on a handle, fn runs on the host
// loop goroutine.
func (h *Handle) OnBegin(fn func()) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	runtimex.Assert(fn != nil, "nettest: OnBegin passed a nil handler")
	br := h.newBridge()
	h.nettest.OnBegin(func() {
		br.suspend(func() {
			fn()
		})
	})
	return nil
}

// OnEnd registers the callback called after all measurements have been
// performed.
func (h *Handle) OnEnd(fn func()) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	runtimex.Assert(fn != nil, "nettest: OnEnd passed a nil handler")
	br := h.newBridge()
	h.nettest.OnEnd(func() {
		br.suspend(func() {
			fn()
		})
	})
	return nil
}

// OnEntry registers the callback called after each measurement with
// the measurement entry serialized as JSON.
func (h *Handle) OnEntry(fn func(entry string)) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	runtimex.Assert(fn != nil, "nettest: OnEntry passed a nil handler")
	br := h.newBridge()
	h.nettest.OnEntry(func(entry string) {
		br.suspend(func() {
			fn(entry)
		})
	})
	return nil
}

// OnEvent registers the callback called for test-specific events
// serialized as JSON.
func (h *Handle) OnEvent(fn func(event string)) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	runtimex.Assert(fn != nil, "nettest: OnEvent passed a nil handler")
	br := h.newBridge()
	h.nettest.OnEvent(func(event string) {
		br.suspend(func() {
			fn(event)
		})
	})
	return nil
}

// OnLog registers the callback called for each log line emitted by the
// test. Not setting this callback means log lines are simply dropped.
func (h *Handle) OnLog(fn func(level uint32, message string)) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	runtimex.Assert(fn != nil, "nettest: OnLog passed a nil handler")
	br := h.newBridge()
	h.nettest.OnLog(func(level uint32, message string) {
		br.suspend(func() {
			fn(level, message)
		})
	})
	return nil
}

// OnProgress registers the callback called to report the progress of
// the test, with percent in the 0..1 range.
func (h *Handle) OnProgress(fn func(percent float64, message string)) error {
	if h.isStarted() {
		return ErrAlreadyStarted
	}
	runtimex.Assert(fn != nil, "nettest: OnProgress passed a nil handler")
	br := h.newBridge()
	h.nettest.OnProgress(func(percent float64, message string) {
		br.suspend(func() {
			fn(percent, message)
		})
	})
	return nil
}

// Run hands the test off to the engine and blocks the calling
// goroutine until the test is over. Blocking the host loop is rarely
// what you want, but it is a deliberate opt-in that keeps simple
// single-test scripts simple; handlers still run only when the loop
// next drains the relay. Calling Run or Start again afterwards fails
// with [ErrAlreadyStarted].
func (h *Handle) Run() error {
	if !h.started.CompareAndSwap(0, 1) {
		return ErrAlreadyStarted
	}
	h.armShutdown()
	h.relay.Register()
	h.nettest.Run()
	return nil
}

// Start hands the test off to the engine and returns immediately. The
// done callback is bridged like any other handler: it runs on the host
// loop goroutine once the test is over, with a nil error unless the
// whole run failed. Calling Run or Start again afterwards fails with
// [ErrAlreadyStarted].
func (h *Handle) Start(done func(err error)) error {
	runtimex.Assert(done != nil, "nettest: Start passed a nil callback")
	if !h.started.CompareAndSwap(0, 1) {
		return ErrAlreadyStarted
	}
	br := h.newBridge()
	h.awaitingCompletion.Store(true)
	h.armShutdown()
	h.relay.Register()
	h.nettest.Start(func(err error) {
		br.suspend(func() {
			done(err)
		})
		h.awaitingCompletion.Store(false)
		if h.shutdownDeferred.Load() {
			h.shutdown()
		}
	})
	return nil
}

// armShutdown registers the engine destroy hook. The engine guarantees
// the destroy signal fires on the worker goroutine after every callback
// slot for the run, but the completion passed to Start is not a slot and
// some engines announce destruction before invoking it. In that case we
// defer the shutdown to the completion wrapper, so that the completion
// dispatch is enqueued before the relay's close step and the host loop
// stays alive to deliver it.
func (h *Handle) armShutdown() {
	h.nettest.OnDestroy(func() {
		if h.awaitingCompletion.Load() {
			h.shutdownDeferred.Store(true)
			return
		}
		h.shutdown()
	})
}

// shutdown schedules the relay's shutdown and drops the bridges'
// shares. It runs on the worker goroutine, after the last enqueue for
// this test.
func (h *Handle) shutdown() {
	h.relay.BeginShutdown()
	for _, br := range h.bridges {
		br.close()
	}
	close(h.terminated)
}

// isStarted returns whether the test has been handed off.
func (h *Handle) isStarted() bool {
	return h.started.Load() != 0
}
