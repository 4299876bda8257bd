package mocks

import "github.com/ooni/probe-goja/internal/model"

// EngineNettest is a mockable [model.EngineNettest].
type EngineNettest struct {
	MockSetOptions        func(key, value string) error
	MockAddInput          func(input string)
	MockAddInputFilepath  func(path string)
	MockSetErrorFilepath  func(path string)
	MockSetOutputFilepath func(path string)
	MockSetVerbosity      func(level int64)
	MockOnBegin           func(fn func())
	MockOnEnd             func(fn func())
	MockOnEntry           func(fn func(entry string))
	MockOnEvent           func(fn func(event string))
	MockOnLog             func(fn func(level uint32, message string))
	MockOnProgress        func(fn func(percent float64, message string))
	MockOnDestroy         func(fn func())
	MockRun               func()
	MockStart             func(done func(err error))
}

var _ model.EngineNettest = &EngineNettest{}

// SetOptions calls MockSetOptions.
func (nt *EngineNettest) SetOptions(key, value string) error {
	return nt.MockSetOptions(key, value)
}

// AddInput calls MockAddInput.
func (nt *EngineNettest) AddInput(input string) {
	nt.MockAddInput(input)
}

// AddInputFilepath calls MockAddInputFilepath.
func (nt *EngineNettest) AddInputFilepath(path string) {
	nt.MockAddInputFilepath(path)
}

// SetErrorFilepath calls MockSetErrorFilepath.
func (nt *EngineNettest) SetErrorFilepath(path string) {
	nt.MockSetErrorFilepath(path)
}

// SetOutputFilepath calls MockSetOutputFilepath.
func (nt *EngineNettest) SetOutputFilepath(path string) {
	nt.MockSetOutputFilepath(path)
}

// SetVerbosity calls MockSetVerbosity.
func (nt *EngineNettest) SetVerbosity(level int64) {
	nt.MockSetVerbosity(level)
}

// OnBegin calls MockOnBegin.
func (nt *EngineNettest) OnBegin(fn func()) {
	nt.MockOnBegin(fn)
}

// OnEnd calls MockOnEnd.
func (nt *EngineNettest) OnEnd(fn func()) {
	nt.MockOnEnd(fn)
}

// OnEntry calls MockOnEntry.
func (nt *EngineNettest) OnEntry(fn func(entry string)) {
	nt.MockOnEntry(fn)
}

// OnEvent calls MockOnEvent.
func (nt *EngineNettest) OnEvent(fn func(event string)) {
	nt.MockOnEvent(fn)
}

// OnLog calls MockOnLog.
func (nt *EngineNettest) OnLog(fn func(level uint32, message string)) {
	nt.MockOnLog(fn)
}

// OnProgress calls MockOnProgress.
func (nt *EngineNettest) OnProgress(fn func(percent float64, message string)) {
	nt.MockOnProgress(fn)
}

// OnDestroy calls MockOnDestroy.
func (nt *EngineNettest) OnDestroy(fn func()) {
	nt.MockOnDestroy(fn)
}

// Run calls MockRun.
func (nt *EngineNettest) Run() {
	nt.MockRun()
}

// Start calls MockStart.
func (nt *EngineNettest) Start(done func(err error)) {
	nt.MockStart(done)
}
