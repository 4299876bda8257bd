// Package logx contains logging extensions: an apex/log handler
// printing compact colorized lines prefixed with the time elapsed
// since the handler was created.
package logx

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// Colors maps log levels to the color used for the level tag.
var Colors = [...]*color.Color{
	log.DebugLevel: color.New(color.FgWhite),
	log.InfoLevel:  color.New(color.FgBlue),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed),
}

// Handler is an [log.Handler] writing compact lines such as
//
//	[      0.001246] <info> running script.js
//
// where the number in brackets is the time elapsed since the handler
// was created. The zero value is invalid; construct with [NewHandler]
// or use [NewHandlerWithDefaultSettings].
type Handler struct {
	// mu serializes writes.
	mu sync.Mutex

	// Now is the function returning the current time.
	Now func() time.Time

	// StartTime is the handler creation time.
	StartTime time.Time

	// Writer is where log lines are written.
	Writer io.Writer
}

var _ log.Handler = &Handler{}

// NewHandler creates a [Handler] writing to the given writer.
func NewHandler(w io.Writer) *Handler {
	return &Handler{
		mu:        sync.Mutex{},
		Now:       time.Now,
		StartTime: time.Now(),
		Writer:    w,
	}
}

// NewHandlerWithDefaultSettings creates a [Handler] writing colorized
// output to the standard error.
func NewHandlerWithDefaultSettings() *Handler {
	return NewHandler(colorable.NewColorableStderr())
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	elapsed := h.Now().Sub(h.StartTime)
	tag := Colors[e.Level].Sprintf("<%s>", e.Level.String())
	s := fmt.Sprintf("[%14.6f] %s %s", elapsed.Seconds(), tag, e.Message)
	for _, name := range e.Fields.Names() {
		s += fmt.Sprintf(" %s=%v", name, e.Fields.Get(name))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, s)
	return err
}
