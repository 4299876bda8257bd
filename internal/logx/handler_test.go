package logx

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
)

func TestHandlerWritesExpectedLines(t *testing.T) {
	var buffer bytes.Buffer
	handler := NewHandler(&buffer)
	handler.StartTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	handler.Now = func() time.Time {
		return handler.StartTime.Add(250 * time.Millisecond)
	}
	logger := &log.Logger{
		Handler: handler,
		Level:   log.DebugLevel,
	}
	logger.WithField("script", "antani.js").Info("running")
	line := buffer.String()
	if !strings.HasPrefix(line, "[      0.250000] ") {
		t.Fatal("unexpected line prefix", line)
	}
	if !strings.Contains(line, "<info>") {
		t.Fatal("expected the level tag", line)
	}
	if !strings.Contains(line, "running") {
		t.Fatal("expected the message", line)
	}
	if !strings.Contains(line, "script=antani.js") {
		t.Fatal("expected the field", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatal("expected a trailing newline")
	}
}

func TestNewHandlerWithDefaultSettings(t *testing.T) {
	handler := NewHandlerWithDefaultSettings()
	if handler.Writer == nil || handler.Now == nil {
		t.Fatal("unexpected zero fields")
	}
}
