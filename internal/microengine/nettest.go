package microengine

//
// Nettest: the engine-side test instance
//

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ooni/probe-goja/internal/model"
	"github.com/ooni/probe-goja/internal/runtimex"
)

// nettest implements [model.EngineNettest] around a measurer. It is
// configured by the caller and then handed off to [nettest.Run] or
// [nettest.Start] exactly once; from that point on only the worker
// goroutine touches it.
type nettest struct {
	errorFilepath  string
	inputFilepaths []string
	inputs         []string
	measurer       measurer
	onBegin        func()
	onDestroy      func()
	onEnd          func()
	onEntry        func(entry string)
	onEvent        func(event string)
	onLog          func(level uint32, message string)
	onProgress     func(percent float64, message string)
	options        map[string]string
	outputFilepath string
	verbosity      int64
}

var _ model.EngineNettest = &nettest{}

// errEmptyOptionKey indicates that an option key was empty.
var errEmptyOptionKey = errors.New("microengine: empty option key")

// SetOptions implements model.EngineNettest.
func (nt *nettest) SetOptions(key, value string) error {
	if key == "" {
		return errEmptyOptionKey
	}
	nt.options[key] = value
	return nil
}

// AddInput implements model.EngineNettest.
func (nt *nettest) AddInput(input string) {
	nt.inputs = append(nt.inputs, input)
}

// AddInputFilepath implements model.EngineNettest.
func (nt *nettest) AddInputFilepath(path string) {
	nt.inputFilepaths = append(nt.inputFilepaths, path)
}

// SetErrorFilepath implements model.EngineNettest.
func (nt *nettest) SetErrorFilepath(path string) {
	nt.errorFilepath = path
}

// SetOutputFilepath implements model.EngineNettest.
func (nt *nettest) SetOutputFilepath(path string) {
	nt.outputFilepath = path
}

// SetVerbosity implements model.EngineNettest.
func (nt *nettest) SetVerbosity(level int64) {
	nt.verbosity = level
}

// OnBegin implements model.EngineNettest.
func (nt *nettest) OnBegin(fn func()) {
	nt.onBegin = fn
}

// OnEnd implements model.EngineNettest.
func (nt *nettest) OnEnd(fn func()) {
	nt.onEnd = fn
}

// OnEntry implements model.EngineNettest.
func (nt *nettest) OnEntry(fn func(entry string)) {
	nt.onEntry = fn
}

// OnEvent implements model.EngineNettest.
func (nt *nettest) OnEvent(fn func(event string)) {
	nt.onEvent = fn
}

// OnLog implements model.EngineNettest.
func (nt *nettest) OnLog(fn func(level uint32, message string)) {
	nt.onLog = fn
}

// OnProgress implements model.EngineNettest.
func (nt *nettest) OnProgress(fn func(percent float64, message string)) {
	nt.onProgress = fn
}

// OnDestroy implements model.EngineNettest.
func (nt *nettest) OnDestroy(fn func()) {
	nt.onDestroy = fn
}

// Run implements model.EngineNettest. We run the test on a worker
// goroutine anyway, so that callbacks always originate from a worker,
// and block until the worker is done.
func (nt *nettest) Run() {
	done := make(chan any)
	go func() {
		defer close(done)
		nt.worker(nil)
	}()
	<-done
}

// Start implements model.EngineNettest.
func (nt *nettest) Start(done func(err error)) {
	go nt.worker(done)
}

// worker is the engine's worker goroutine body. The callback order is
// begin, zero or more of log/progress/event/entry, end, the completion
// (when started asynchronously), and destroy strictly last.
func (nt *nettest) worker(done func(err error)) {
	err := nt.main()
	if done != nil {
		done(err)
	}
	if fn := nt.onDestroy; fn != nil {
		fn()
	}
}

// main runs the measurements. The returned error indicates that the
// whole run failed; individual measurement failures live inside the
// test keys of the corresponding entries instead.
func (nt *nettest) main() error {
	logger := newEmitterLogger(nt.onLog, nt.verbosity, nt.errorFilepath)
	defer logger.close()
	if fn := nt.onBegin; fn != nil {
		fn()
	}
	defer func() {
		if fn := nt.onEnd; fn != nil {
			fn()
		}
	}()
	inputs, err := nt.loadInputs()
	if err != nil {
		logger.Warnf("microengine: cannot load inputs: %s", err.Error())
		return err
	}
	report, err := newReport(nt.outputFilepath)
	if err != nil {
		logger.Warnf("microengine: cannot open report: %s", err.Error())
		return err
	}
	defer report.close()
	env := &measurerEnv{
		emitEvent: nt.emitEvent,
		logger:    logger,
		options:   nt.options,
	}
	reportID := uuid.NewString()
	testStart := time.Now()
	logger.Infof("microengine: starting %s", nt.measurer.testName())
	for idx, input := range inputs {
		nt.emitProgress(float64(idx)/float64(len(inputs)), "measuring "+input)
		entry := nt.measureOne(env, reportID, testStart, input)
		data := runtimex.Try1(json.Marshal(entry))
		if err := report.write(data); err != nil {
			logger.Warnf("microengine: cannot write report: %s", err.Error())
			return err
		}
		if fn := nt.onEntry; fn != nil {
			fn(string(data))
		}
	}
	nt.emitProgress(1.0, "done")
	logger.Infof("microengine: %s complete", nt.measurer.testName())
	return nil
}

// loadInputs merges the configured inputs with the contents of the
// configured input files. A test kind that takes no input still runs
// exactly once with the empty string as input.
func (nt *nettest) loadInputs() ([]string, error) {
	inputs := append([]string{}, nt.inputs...)
	for _, path := range nt.inputFilepaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				inputs = append(inputs, line)
			}
		}
	}
	if len(inputs) <= 0 {
		inputs = append(inputs, "")
	}
	return inputs, nil
}

// measureOne measures a single input and assembles its entry.
func (nt *nettest) measureOne(env *measurerEnv, reportID string,
	testStart time.Time, input string) *measurementEntry {
	start := time.Now()
	tk := nt.measurer.measure(env, input)
	return newMeasurementEntry(nt.measurer, reportID, testStart, start, input, tk)
}

// emitProgress emits a progress callback if the slot is set.
func (nt *nettest) emitProgress(percent float64, message string) {
	if fn := nt.onProgress; fn != nil {
		fn(percent, message)
	}
}

// emitEvent emits a test-specific event if the slot is set.
func (nt *nettest) emitEvent(event string) {
	if fn := nt.onEvent; fn != nil {
		fn(event)
	}
}

// report appends serialized measurement entries to an optional file.
type report struct {
	filep  *os.File
	writer *bufio.Writer
}

// newReport opens the report file, if configured.
func newReport(path string) (*report, error) {
	if path == "" {
		return &report{}, nil
	}
	filep, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	return &report{filep: filep, writer: bufio.NewWriter(filep)}, nil
}

// write appends a single entry to the report.
func (r *report) write(entry []byte) error {
	if r.writer == nil {
		return nil
	}
	if _, err := r.writer.Write(entry); err != nil {
		return err
	}
	return r.writer.WriteByte('\n')
}

// close flushes and closes the report file, if any.
func (r *report) close() {
	if r.writer != nil {
		r.writer.Flush()
		r.filep.Close()
	}
}
