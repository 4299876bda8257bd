package relay

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeBell is a doorbell bound to a manually pumped fake loop. Tests
// decide exactly when the loop "ticks" by calling pump, and when the
// close confirmation is delivered by calling confirmClose, which allows
// exercising signal coalescing and shutdown ordering deterministically.
type fakeBell struct {
	closeCalls   int
	mu           sync.Mutex
	pendingClose func()
	resume       func()
	signals      int
}

var _ Doorbell = &fakeBell{}

func (b *fakeBell) Register(resume func()) (Registration, error) {
	b.mu.Lock()
	b.resume = resume
	b.mu.Unlock()
	return &fakeBellRegistration{bell: b}, nil
}

// pump simulates one loop tick: it invokes the registered resume
// function once regardless of how many signals have been received,
// like a real loop coalescing wakeups.
func (b *fakeBell) pump() {
	b.mu.Lock()
	resume := b.resume
	b.signals = 0
	b.mu.Unlock()
	resume()
}

// confirmClose simulates the loop confirming, at a later tick, that the
// registration has been released.
func (b *fakeBell) confirmClose() {
	b.mu.Lock()
	onClosed := b.pendingClose
	b.pendingClose = nil
	b.mu.Unlock()
	if onClosed != nil {
		onClosed()
	}
}

func (b *fakeBell) signalCount() int {
	defer b.mu.Unlock()
	b.mu.Lock()
	return b.signals
}

type fakeBellRegistration struct {
	bell *fakeBell
}

var _ Registration = &fakeBellRegistration{}

func (r *fakeBellRegistration) Signal() error {
	r.bell.mu.Lock()
	r.bell.signals++
	r.bell.mu.Unlock()
	return nil
}

func (r *fakeBellRegistration) Close(onClosed func()) error {
	r.bell.mu.Lock()
	r.bell.closeCalls++
	r.bell.pendingClose = onClosed
	r.bell.mu.Unlock()
	return nil
}

func TestRelayDrainsInFIFOOrder(t *testing.T) {
	bell := &fakeBell{}
	r := New(bell)
	r.Register()
	var got []int
	for idx := 0; idx < 16; idx++ {
		idx := idx
		r.Enqueue(func() {
			got = append(got, idx)
		})
	}
	bell.pump()
	expect := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestRelayToleratesCoalescedSignals(t *testing.T) {
	// Many enqueues followed by a single loop tick must still run
	// every suspended action.
	bell := &fakeBell{}
	r := New(bell)
	r.Register()
	var count int
	for idx := 0; idx < 128; idx++ {
		r.Enqueue(func() {
			count++
		})
	}
	if bell.signalCount() != 128 {
		t.Fatal("unexpected number of signals", bell.signalCount())
	}
	bell.pump()
	if count != 128 {
		t.Fatal("some actions did not run", count)
	}
}

func TestRelayEnqueueDuringDrainLandsInNextBatch(t *testing.T) {
	bell := &fakeBell{}
	r := New(bell)
	r.Register()
	var got []string
	r.Enqueue(func() {
		got = append(got, "first")
		r.Enqueue(func() {
			got = append(got, "reentrant")
		})
	})
	r.Enqueue(func() {
		got = append(got, "second")
	})
	bell.pump()
	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Fatal(diff)
	}
	bell.pump()
	if diff := cmp.Diff([]string{"first", "second", "reentrant"}, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestRelayOverlappingResumeRunsEachActionOnce(t *testing.T) {
	// The doorbell contract serializes resumes, but a resume that
	// overlaps a draining batch must neither lose actions nor run
	// them twice: the swap makes the draining batch invisible to the
	// second drain, which only sees what was enqueued meanwhile.
	bell := &fakeBell{}
	r := New(bell)
	r.Register()
	var got []string
	r.Enqueue(func() {
		got = append(got, "outer first")
		r.Enqueue(func() {
			got = append(got, "nested")
		})
		bell.pump()
	})
	r.Enqueue(func() {
		got = append(got, "outer second")
	})
	bell.pump()
	expect := []string{"outer first", "nested", "outer second"}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatal(diff)
	}

	// A further tick finds an empty queue and runs nothing again.
	bell.pump()
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestRelayPreservesPerProducerOrder(t *testing.T) {
	// Concurrent producers may interleave arbitrarily but each
	// producer's own sequence must be preserved.
	const producers = 8
	const actions = 64
	bell := &fakeBell{}
	r := New(bell)
	r.Register()
	type record struct {
		producer int
		seq      int
	}
	var got []record
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := 0; s < actions; s++ {
				s := s
				r.Enqueue(func() {
					got = append(got, record{producer: p, seq: s})
				})
			}
		}()
	}
	wg.Wait()
	bell.pump()
	if len(got) != producers*actions {
		t.Fatal("unexpected number of records", len(got))
	}
	next := make([]int, producers)
	for _, rec := range got {
		if rec.seq != next[rec.producer] {
			t.Fatalf("producer %d: got seq %d, want %d", rec.producer, rec.seq, next[rec.producer])
		}
		next[rec.producer]++
	}
}

func TestRelayShutdownHandshake(t *testing.T) {
	bell := &fakeBell{}
	r := New(bell)
	var freed bool
	r.onfree = func() {
		freed = true
	}
	r.Register()
	if !r.registered() {
		t.Fatal("expected the relay to hold a self reference")
	}

	// A bridge still holds a share of the relay.
	r.Retain()

	var got []string
	r.Enqueue(func() {
		got = append(got, "before")
	})
	r.BeginShutdown()
	r.Enqueue(func() {
		got = append(got, "after")
	})

	// One tick runs the earlier action, the close step, and the
	// action that was enqueued after BeginShutdown but before the
	// close step executed.
	bell.pump()
	if diff := cmp.Diff([]string{"before", "after"}, got); diff != "" {
		t.Fatal(diff)
	}
	if bell.closeCalls != 1 {
		t.Fatal("expected exactly one close call", bell.closeCalls)
	}
	if !r.registered() {
		t.Fatal("self reference must survive until the close confirmation")
	}

	// The loop confirms the close at a later tick.
	bell.confirmClose()
	if r.registered() {
		t.Fatal("expected the self reference to be cleared")
	}
	if freed {
		t.Fatal("the relay must not be finished while a bridge holds it")
	}

	// Only dropping the last bridge share finishes the relay.
	r.Release()
	if !freed {
		t.Fatal("expected the relay to be finished")
	}
}

func TestRelayRegisterFailureIsFatal(t *testing.T) {
	expected := errors.New("mocked error")
	bell := &registerFailBell{err: expected}
	r := New(bell)
	var got error
	func() {
		defer func() {
			got = recover().(error)
		}()
		r.Register()
	}()
	if !errors.Is(got, expected) {
		t.Fatal("not the error we expected", got)
	}
}

type registerFailBell struct {
	err error
}

func (b *registerFailBell) Register(resume func()) (Registration, error) {
	return nil, b.err
}

func TestRelaySignalFailureIsFatal(t *testing.T) {
	expected := errors.New("mocked error")
	r := New(&signalFailBell{err: expected})
	r.Register()
	var got error
	func() {
		defer func() {
			got = recover().(error)
		}()
		r.Enqueue(func() {})
	}()
	if !errors.Is(got, expected) {
		t.Fatal("not the error we expected", got)
	}
}

type signalFailBell struct {
	err error
}

func (b *signalFailBell) Register(resume func()) (Registration, error) {
	return &signalFailRegistration{err: b.err}, nil
}

type signalFailRegistration struct {
	err error
}

func (r *signalFailRegistration) Signal() error {
	return r.err
}

func (r *signalFailRegistration) Close(onClosed func()) error {
	return nil
}

func TestRelayCloseFailureIsFatal(t *testing.T) {
	expected := errors.New("mocked error")
	bell := &closeFailBell{err: expected}
	r := New(bell)
	r.Register()
	r.BeginShutdown()
	var got error
	func() {
		defer func() {
			got = recover().(error)
		}()
		bell.resume()
	}()
	if !errors.Is(got, expected) {
		t.Fatal("not the error we expected", got)
	}
}

type closeFailBell struct {
	err    error
	resume func()
}

func (b *closeFailBell) Register(resume func()) (Registration, error) {
	b.resume = resume
	return &closeFailRegistration{err: b.err}, nil
}

type closeFailRegistration struct {
	err error
}

func (r *closeFailRegistration) Signal() error {
	return nil
}

func (r *closeFailRegistration) Close(onClosed func()) error {
	return r.err
}

func TestRelayEnqueueBeforeRegisterIsFatal(t *testing.T) {
	r := New(&fakeBell{})
	var got any
	func() {
		defer func() {
			got = recover()
		}()
		r.Enqueue(func() {})
	}()
	if got == nil {
		t.Fatal("expected a panic here")
	}
}
