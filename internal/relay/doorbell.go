package relay

//
// Doorbell
//

// Doorbell is the cross-thread wakeup primitive bound to the host's
// event loop. Signaling a [Registration] guarantees that the loop will,
// at some future tick, invoke the registered resume function on the
// loop's own goroutine. Multiple signals issued before the resume
// function runs may coalesce into a single invocation.
//
// A Doorbell is an injected capability so that tests can replace the
// real host loop with a double that controls exactly when resume runs.
type Doorbell interface {
	// Register binds resume to the host loop and returns the
	// corresponding registration. While a registration is open the
	// host loop must not exit.
	Register(resume func()) (Registration, error)
}

// Registration is an open Doorbell binding.
type Registration interface {
	// Signal asks the host loop to invoke the registered resume
	// function at a future tick. It is safe to call Signal from
	// any goroutine.
	Signal() error

	// Close releases the binding. Close must only be called from the
	// loop goroutine. The doorbell invokes onClosed, again on the loop
	// goroutine, once the binding has been fully released; only then
	// may the registration's owner be disposed of.
	Close(onClosed func()) error
}
