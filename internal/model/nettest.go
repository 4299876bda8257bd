package model

//
// Engine-side nettest
//

// Log levels used by [EngineNettest.OnLog] callbacks and by
// [EngineNettest.SetVerbosity]. Zero is equivalent to WARNING, one to
// INFO, two to DEBUG and more than two makes the engine even more verbose.
const (
	// LogWarning only emits warning messages.
	LogWarning = int64(iota)

	// LogInfo also emits informational messages.
	LogInfo

	// LogDebug also emits debug messages.
	LogDebug

	// LogDebug2 emits extremely verbose debug messages.
	LogDebug2
)

// EngineNettest is a single network test owned by the measurement
// engine. The engine runs the test on its own background goroutine and
// invokes the registered callbacks from that goroutine. A callback slot
// that was never registered is never invoked. The engine guarantees that
// calls to a single callback slot are serialized and that the OnDestroy
// callback fires after every other callback for the run.
//
// The configuration methods and Run/Start are not safe for concurrent
// use: the caller configures the test and then hands it off exactly once.
type EngineNettest interface {
	// SetOptions sets a test-specific option.
	SetOptions(key, value string) error

	// AddInput adds one input string to the list of inputs
	// to be processed by this test.
	AddInput(input string)

	// AddInputFilepath adds one file containing inputs, one per line.
	AddInputFilepath(path string)

	// SetErrorFilepath sets the path where logs will be written.
	SetErrorFilepath(path string)

	// SetOutputFilepath sets the path where measurement entries
	// will be appended.
	SetOutputFilepath(path string)

	// SetVerbosity sets the logging verbosity (see LogWarning et al.).
	SetVerbosity(level int64)

	// OnBegin registers the callback called right at the
	// beginning of the test.
	OnBegin(fn func())

	// OnEnd registers the callback called after all measurements
	// have been performed.
	OnEnd(fn func())

	// OnEntry registers the callback called after each measurement
	// with the measurement entry serialized as JSON.
	OnEntry(fn func(entry string))

	// OnEvent registers the callback called for test-specific
	// events serialized as JSON.
	OnEvent(fn func(event string))

	// OnLog registers the callback called for each log line.
	OnLog(fn func(level uint32, message string))

	// OnProgress registers the callback called to report the progress
	// of the test. The percent argument is in the 0..1 range.
	OnProgress(fn func(percent float64, message string))

	// OnDestroy registers the callback called when the test object
	// is being destroyed, after every other callback has fired.
	OnDestroy(fn func())

	// Run runs the test and blocks until it is done.
	Run()

	// Start runs the test on a background goroutine and calls done
	// when the test is done. The error is nil unless the whole run
	// failed (individual measurement failures are reported through
	// the entry callback instead).
	Start(done func(err error))
}
