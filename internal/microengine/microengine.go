// Package microengine is a minimal measurement engine implementing
// [model.EngineNettest]. It exists so that the bindings in this
// repository can run real network tests end to end without linking a
// full measurement engine: each test kind is a small measurer and the
// engine provides the callback, input, option and report plumbing
// around it.
//
// Every registered callback is invoked from the engine's worker
// goroutine, serially, with the destroy callback last. Consumers are
// expected to route callbacks through their own synchronization layer
// (see the nettest and relay packages); nothing in this package calls
// back into the host loop directly.
package microengine

import (
	"errors"
	"sort"

	"github.com/ooni/probe-goja/internal/model"
)

// ErrNoSuchNettest indicates that the requested test kind is unknown.
var ErrNoSuchNettest = errors.New("microengine: no such nettest")

// registry maps a test name to its measurer. Measurers register
// themselves in their init functions.
var registry = map[string]measurer{}

// measurer implements a single test kind.
type measurer interface {
	// testName returns the test name.
	testName() string

	// testVersion returns the test version.
	testVersion() string

	// measure performs a single measurement and returns the test
	// keys to include into the measurement entry. There is no error
	// return: a failed measurement is still a valid measurement and
	// its failure belongs inside the test keys.
	measure(env *measurerEnv, input string) any
}

// measurerEnv groups what the engine provides to a measurer.
type measurerEnv struct {
	// emitEvent emits a test-specific event serialized as JSON.
	emitEvent func(event string)

	// logger is the engine logger.
	logger model.Logger

	// options contains the test options.
	options map[string]string
}

// New creates the [model.EngineNettest] implementing the test kind
// with the given name, or fails with [ErrNoSuchNettest].
func New(name string) (model.EngineNettest, error) {
	mx := registry[name]
	if mx == nil {
		return nil, ErrNoSuchNettest
	}
	return &nettest{
		measurer: mx,
		options:  map[string]string{},
	}, nil
}

// Kinds returns the sorted names of the registered test kinds.
func Kinds() []string {
	var names []string
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
