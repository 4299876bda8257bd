package mocks

import (
	"errors"
	"testing"
)

func TestEngineNettest(t *testing.T) {
	t.Run("SetOptions", func(t *testing.T) {
		expected := errors.New("mocked error")
		nt := &EngineNettest{
			MockSetOptions: func(key, value string) error {
				return expected
			},
		}
		if err := nt.SetOptions("antani", "mascetti"); !errors.Is(err, expected) {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("AddInput", func(t *testing.T) {
		var got string
		nt := &EngineNettest{
			MockAddInput: func(input string) {
				got = input
			},
		}
		nt.AddInput("www.example.com")
		if got != "www.example.com" {
			t.Fatal("unexpected input", got)
		}
	})

	t.Run("AddInputFilepath", func(t *testing.T) {
		var got string
		nt := &EngineNettest{
			MockAddInputFilepath: func(path string) {
				got = path
			},
		}
		nt.AddInputFilepath("inputs.txt")
		if got != "inputs.txt" {
			t.Fatal("unexpected path", got)
		}
	})

	t.Run("SetErrorFilepath", func(t *testing.T) {
		var got string
		nt := &EngineNettest{
			MockSetErrorFilepath: func(path string) {
				got = path
			},
		}
		nt.SetErrorFilepath("errors.log")
		if got != "errors.log" {
			t.Fatal("unexpected path", got)
		}
	})

	t.Run("SetOutputFilepath", func(t *testing.T) {
		var got string
		nt := &EngineNettest{
			MockSetOutputFilepath: func(path string) {
				got = path
			},
		}
		nt.SetOutputFilepath("report.jsonl")
		if got != "report.jsonl" {
			t.Fatal("unexpected path", got)
		}
	})

	t.Run("SetVerbosity", func(t *testing.T) {
		var got int64
		nt := &EngineNettest{
			MockSetVerbosity: func(level int64) {
				got = level
			},
		}
		nt.SetVerbosity(2)
		if got != 2 {
			t.Fatal("unexpected level", got)
		}
	})

	t.Run("callback registrars", func(t *testing.T) {
		var count int
		nt := &EngineNettest{
			MockOnBegin:    func(fn func()) { count++ },
			MockOnEnd:      func(fn func()) { count++ },
			MockOnEntry:    func(fn func(entry string)) { count++ },
			MockOnEvent:    func(fn func(event string)) { count++ },
			MockOnLog:      func(fn func(level uint32, message string)) { count++ },
			MockOnProgress: func(fn func(percent float64, message string)) { count++ },
			MockOnDestroy:  func(fn func()) { count++ },
		}
		nt.OnBegin(func() {})
		nt.OnEnd(func() {})
		nt.OnEntry(func(string) {})
		nt.OnEvent(func(string) {})
		nt.OnLog(func(uint32, string) {})
		nt.OnProgress(func(float64, string) {})
		nt.OnDestroy(func() {})
		if count != 7 {
			t.Fatal("unexpected number of forwarded calls", count)
		}
	})

	t.Run("Run", func(t *testing.T) {
		var called bool
		nt := &EngineNettest{
			MockRun: func() {
				called = true
			},
		}
		nt.Run()
		if !called {
			t.Fatal("Run was not forwarded")
		}
	})

	t.Run("Start", func(t *testing.T) {
		nt := &EngineNettest{
			MockStart: func(done func(err error)) {
				done(nil)
			},
		}
		var called bool
		nt.Start(func(err error) {
			if err != nil {
				t.Fatal("unexpected error", err)
			}
			called = true
		})
		if !called {
			t.Fatal("Start was not forwarded")
		}
	})
}
