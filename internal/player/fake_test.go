package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type call struct {
	tone bool
	freq uint32
}

// fakeActuator records every call on a channel. A non-nil gate holds
// each Tone until it is closed.
type fakeActuator struct {
	calls chan call
	err   error
	gate  chan struct{}
}

func newFakeActuator() *fakeActuator {
	return &fakeActuator{calls: make(chan call, 256)}
}

func (f *fakeActuator) Tone(_ context.Context, freq uint32) error {
	f.calls <- call{tone: true, freq: freq}
	if f.gate != nil {
		<-f.gate
	}
	return f.err
}

func (f *fakeActuator) Silence(context.Context) error {
	f.calls <- call{}
	return f.err
}

// next waits for the next actuator call.
func (f *fakeActuator) next(t *testing.T) call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for actuator call")
		return call{}
	}
}

func (f *fakeActuator) expectTone(t *testing.T, freq uint32) {
	t.Helper()
	if c := f.next(t); !c.tone || c.freq != freq {
		t.Fatalf("actuator call = %+v, want tone %d", c, freq)
	}
}

func (f *fakeActuator) expectSilence(t *testing.T) {
	t.Helper()
	if c := f.next(t); c.tone {
		t.Fatalf("actuator call = %+v, want silence", c)
	}
}

func (f *fakeActuator) expectQuiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected actuator call %+v", c)
	case <-time.After(d):
	}
}

// clock is a manual time source for debounce tests.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// harness is a running controller wired to a fake actuator and clock.
type harness struct {
	c     *Controller
	act   *fakeActuator
	clock *clock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{act: newFakeActuator(), clock: newClock()}
	opts.Logger = discard
	opts.Now = h.clock.Now
	c, err := New(h.act, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.c = c

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run: %v", err)
		}
	})
	return h
}

// press advances the clock past the debounce window and presses the button.
func (h *harness) press() {
	h.clock.Add(time.Second)
	h.c.ButtonEdge()
}

// waitState polls until the controller reaches s.
func (h *harness) waitState(t *testing.T, s State) Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		st := h.c.Status()
		if st.State == s && st.Pending == RequestNone {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("state = %s (pending %s), want %s", st.State, st.Pending, s)
		}
		time.Sleep(time.Millisecond)
	}
}

// install writes a song and waits for the reconfigure to be applied.
func (h *harness) install(t *testing.T, notes string) {
	t.Helper()
	if err := h.c.Write("music " + notes); err != nil {
		t.Fatalf("Write(music %s): %v", notes, err)
	}
	h.act.expectSilence(t)
	h.waitState(t, Stopped)
}
