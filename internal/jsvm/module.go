package jsvm

//
// The nettests module in JavaScript
//

import (
	"github.com/dop251/goja"
	"github.com/ooni/probe-goja/internal/microengine"
	"github.com/ooni/probe-goja/internal/runtimex"
	"github.com/ooni/probe-goja/pkg/nettest"
)

// nettestConstructors maps each constructor name exported by the
// nettests module to the engine test kind it instantiates.
var nettestConstructors = map[string]string{
	"DnsLookup":  "dns_lookup",
	"TcpConnect": "tcp_connect",
}

// requireNettests creates the nettests module in JavaScript.
func (vm *VM) requireNettests(gojaVM *goja.Runtime, mod *goja.Object) {
	exports := mod.Get("exports").(*goja.Object)
	for name, kind := range nettestConstructors {
		runtimex.Try0(exports.Set(name, vm.newNettestConstructor(gojaVM, kind)))
	}
}

// newNettestConstructor creates the JavaScript constructor for the
// given engine test kind.
func (vm *VM) newNettestConstructor(
	gojaVM *goja.Runtime, kind string) func(goja.ConstructorCall) *goja.Object {
	return func(call goja.ConstructorCall) *goja.Object {
		if len(call.Arguments) != 0 {
			panic(gojaVM.NewTypeError("invalid number of arguments"))
		}
		nt, err := microengine.New(kind)
		if err != nil {
			panic(gojaVM.NewGoError(err))
		}
		vm.wireNettestMethods(gojaVM, call.This, nettest.New(vm.bell, nt))
		return call.This
	}
}

// wireNettestMethods installs the test methods onto the JavaScript
// object. Every method checks its arity, forwards to the underlying
// [nettest.Handle], and returns the object itself so that calls chain.
// Handle errors, e.g. configuring a test that has already started,
// surface in JavaScript as thrown exceptions.
func (vm *VM) wireNettestMethods(
	gojaVM *goja.Runtime, this *goja.Object, handle *nettest.Handle) {
	throwIfError := func(err error) {
		if err != nil {
			panic(gojaVM.NewGoError(err))
		}
	}

	method := func(name string, arity int, fn func(call goja.FunctionCall)) {
		runtimex.Try0(this.Set(name, func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) != arity {
				panic(gojaVM.NewTypeError("invalid number of arguments"))
			}
			fn(call)
			return this
		}))
	}

	// handlerCallback coerces a JS argument to a callable handler.
	handlerCallback := func(value goja.Value) goja.Callable {
		fn, ok := goja.AssertFunction(value)
		if !ok {
			panic(gojaVM.NewTypeError("argument must be a function"))
		}
		return fn
	}

	method("set_options", 2, func(call goja.FunctionCall) {
		throwIfError(handle.SetOptions(
			call.Argument(0).String(), call.Argument(1).String()))
	})

	method("add_input", 1, func(call goja.FunctionCall) {
		throwIfError(handle.AddInput(call.Argument(0).String()))
	})

	method("add_input_filepath", 1, func(call goja.FunctionCall) {
		throwIfError(handle.AddInputFilepath(call.Argument(0).String()))
	})

	method("set_error_filepath", 1, func(call goja.FunctionCall) {
		throwIfError(handle.SetErrorFilepath(call.Argument(0).String()))
	})

	method("set_output_filepath", 1, func(call goja.FunctionCall) {
		throwIfError(handle.SetOutputFilepath(call.Argument(0).String()))
	})

	method("set_verbosity", 1, func(call goja.FunctionCall) {
		throwIfError(handle.SetVerbosity(call.Argument(0).ToInteger()))
	})

	method("on_begin", 1, func(call goja.FunctionCall) {
		fn := handlerCallback(call.Argument(0))
		throwIfError(handle.OnBegin(func() {
			vm.invoke(fn)
		}))
	})

	method("on_end", 1, func(call goja.FunctionCall) {
		fn := handlerCallback(call.Argument(0))
		throwIfError(handle.OnEnd(func() {
			vm.invoke(fn)
		}))
	})

	method("on_entry", 1, func(call goja.FunctionCall) {
		fn := handlerCallback(call.Argument(0))
		throwIfError(handle.OnEntry(func(entry string) {
			vm.invoke(fn, gojaVM.ToValue(entry))
		}))
	})

	method("on_event", 1, func(call goja.FunctionCall) {
		fn := handlerCallback(call.Argument(0))
		throwIfError(handle.OnEvent(func(event string) {
			vm.invoke(fn, gojaVM.ToValue(event))
		}))
	})

	method("on_log", 1, func(call goja.FunctionCall) {
		fn := handlerCallback(call.Argument(0))
		throwIfError(handle.OnLog(func(level uint32, message string) {
			vm.invoke(fn, gojaVM.ToValue(level), gojaVM.ToValue(message))
		}))
	})

	method("on_progress", 1, func(call goja.FunctionCall) {
		fn := handlerCallback(call.Argument(0))
		throwIfError(handle.OnProgress(func(percent float64, message string) {
			vm.invoke(fn, gojaVM.ToValue(percent), gojaVM.ToValue(message))
		}))
	})

	method("run", 0, func(call goja.FunctionCall) {
		throwIfError(handle.Run())
	})

	method("start", 1, func(call goja.FunctionCall) {
		fn := handlerCallback(call.Argument(0))
		throwIfError(handle.Start(func(err error) {
			if err != nil {
				vm.invoke(fn, gojaVM.NewGoError(err))
				return
			}
			vm.invoke(fn, goja.Null())
		}))
	})
}
