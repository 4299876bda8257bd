package jsvm

//
// Doorbell bound to the goja event loop
//

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/ooni/probe-goja/internal/relay"
)

// loopDoorbell implements [relay.Doorbell] on top of the goja event
// loop. An open registration holds a share of the VM's wait group so
// that [VM.RunScript] does not return while any relay is still
// registered: the moral equivalent of an active async handle keeping
// a native event loop from exiting.
type loopDoorbell struct {
	// loop is the goja event loop.
	loop *eventloop.EventLoop

	// wg counts the open registrations.
	wg *sync.WaitGroup
}

var _ relay.Doorbell = &loopDoorbell{}

// Register implements relay.Doorbell.
func (d *loopDoorbell) Register(resume func()) (relay.Registration, error) {
	d.wg.Add(1)
	return &loopRegistration{bell: d, resume: resume}, nil
}

// loopRegistration is an open [loopDoorbell] registration.
type loopRegistration struct {
	bell   *loopDoorbell
	resume func()
}

var _ relay.Registration = &loopRegistration{}

// Signal implements relay.Registration. Scheduling through RunOnLoop
// is safe from any goroutine and the loop runs jobs serially, which
// is what serializes the relay's drains.
//
// RunOnLoop refuses jobs once the loop has been stopped, which happens
// when [VM.RunScript] bails out on a script error with tests still in
// flight. For the abandoned relay a refused wakeup is indistinguishable
// from a coalesced one, so we drop it rather than report a failure.
func (r *loopRegistration) Signal() error {
	r.bell.loop.RunOnLoop(func(*goja.Runtime) {
		r.resume()
	})
	return nil
}

// Close implements relay.Registration. The confirmation is scheduled
// as its own loop job, so it runs at a later tick than the batch that
// contained the close step.
func (r *loopRegistration) Close(onClosed func()) error {
	r.bell.loop.RunOnLoop(func(*goja.Runtime) {
		onClosed()
		r.bell.wg.Done()
	})
	return nil
}
