// Package jsvm embeds a JavaScript interpreter with an event loop and
// exposes the measurement engine to scripts through the "nettests"
// native module. A script drives network tests exactly like the host
// application would: it constructs a test, chains configuration and
// handler registrations, and then runs or starts it. All handlers run
// on the loop goroutine, regardless of which engine goroutine emitted
// the corresponding callback.
package jsvm

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	"github.com/ooni/probe-goja/internal/model"
)

// Config contains configuration for creating a [VM].
type Config struct {
	// Logger is the optional logger to use for messages concerning
	// the VM itself, e.g., a script handler that throws. Script
	// console output goes to the console module instead.
	Logger model.Logger
}

// VM is a JavaScript virtual machine with an event loop and the
// "nettests" native module preinstalled. The zero value is invalid;
// use [New] to construct.
type VM struct {
	// bell wakes the loop up from engine goroutines.
	bell *loopDoorbell

	// logger is the logger to use.
	logger model.Logger

	// loop is the underlying event loop.
	loop *eventloop.EventLoop

	// registry is the loop's module registry.
	registry *require.Registry

	// wg counts the tests that keep the loop alive.
	wg *sync.WaitGroup
}

// New creates a new [VM] instance.
func New(config *Config) *VM {
	registry := require.NewRegistry()
	loop := eventloop.NewEventLoop(
		eventloop.WithRegistry(registry),
		eventloop.EnableConsole(true),
	)
	vm := &VM{
		bell: &loopDoorbell{
			loop: loop,
			wg:   &sync.WaitGroup{},
		},
		logger:   model.ValidLoggerOrDefault(config.Logger),
		loop:     loop,
		registry: registry,
		wg:       nil,
	}
	vm.wg = vm.bell.wg
	registry.RegisterNativeModule("nettests", vm.requireNettests)
	return vm
}

// RunScript evaluates the given script inside the VM's event loop and
// then keeps the loop running until every test the script handed off
// to the engine has completed and released its wakeup registration.
//
// When the script itself throws, RunScript returns the resulting
// error immediately and stops the loop without waiting: tests the
// failed script may have started are abandoned along with any of
// their callbacks not yet dispatched.
func (vm *VM) RunScript(name, script string) error {
	vm.loop.Start()
	defer vm.loop.Stop()
	errch := make(chan error, 1)
	vm.loop.RunOnLoop(func(rt *goja.Runtime) {
		_, err := rt.RunScript(name, script)
		errch <- err
	})
	if err := <-errch; err != nil {
		return err
	}
	vm.wg.Wait()
	return nil
}

// invoke calls a script handler on the loop goroutine. A throwing
// handler must not prevent dispatching the rest of the suspended
// callbacks, so we log the error and move on.
func (vm *VM) invoke(fn goja.Callable, args ...goja.Value) {
	if _, err := fn(goja.Undefined(), args...); err != nil {
		vm.logger.Warnf("jsvm: script handler failed: %s", err.Error())
	}
}
