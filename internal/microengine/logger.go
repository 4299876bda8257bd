package microengine

//
// Emitting log messages through the log callback slot
//

import (
	"fmt"
	"os"

	"github.com/ooni/probe-goja/internal/model"
)

// Log levels passed to the log callback slot. The numbering matches
// the verbosity scale: zero is warning, one info, two debug.
const (
	logLevelWarning = uint32(iota)
	logLevelInfo
	logLevelDebug
)

// emitterLogger is a [model.Logger] that forwards log lines to the
// engine's log callback slot, honoring the configured verbosity, and
// optionally appends them to the error file. It is only used from the
// worker goroutine.
type emitterLogger struct {
	// emit is the log callback slot (nil when unset).
	emit func(level uint32, message string)

	// filep is the optional error file.
	filep *os.File

	// verbosity gates info and debug messages.
	verbosity int64
}

var _ model.Logger = &emitterLogger{}

// newEmitterLogger creates an [emitterLogger]. A failure to open the
// error file disables file logging rather than failing the run.
func newEmitterLogger(emit func(level uint32, message string),
	verbosity int64, errorFilepath string) *emitterLogger {
	logger := &emitterLogger{
		emit:      emit,
		filep:     nil,
		verbosity: verbosity,
	}
	if errorFilepath != "" {
		filep, err := os.OpenFile(errorFilepath,
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err == nil {
			logger.filep = filep
		}
	}
	return logger
}

// Debug implements model.Logger.
func (el *emitterLogger) Debug(msg string) {
	if el.verbosity >= model.LogDebug {
		el.log(logLevelDebug, msg)
	}
}

// Debugf implements model.Logger.
func (el *emitterLogger) Debugf(format string, v ...interface{}) {
	if el.verbosity >= model.LogDebug {
		el.log(logLevelDebug, fmt.Sprintf(format, v...))
	}
}

// Info implements model.Logger.
func (el *emitterLogger) Info(msg string) {
	if el.verbosity >= model.LogInfo {
		el.log(logLevelInfo, msg)
	}
}

// Infof implements model.Logger.
func (el *emitterLogger) Infof(format string, v ...interface{}) {
	if el.verbosity >= model.LogInfo {
		el.log(logLevelInfo, fmt.Sprintf(format, v...))
	}
}

// Warn implements model.Logger.
func (el *emitterLogger) Warn(msg string) {
	el.log(logLevelWarning, msg)
}

// Warnf implements model.Logger.
func (el *emitterLogger) Warnf(format string, v ...interface{}) {
	el.log(logLevelWarning, fmt.Sprintf(format, v...))
}

// log dispatches a single log line.
func (el *emitterLogger) log(level uint32, message string) {
	if el.filep != nil {
		fmt.Fprintf(el.filep, "<%d> %s\n", level, message)
	}
	if el.emit != nil {
		el.emit(level, message)
	}
}

// close closes the error file, if any.
func (el *emitterLogger) close() {
	if el.filep != nil {
		el.filep.Close()
	}
}
