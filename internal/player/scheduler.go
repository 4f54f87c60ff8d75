package player

import (
	"sync"
	"time"
)

// oneShot runs fn once after the delay given to arm. It has to be armed
// again for every note.
//
// arm and cancel are only called from the evaluator goroutine; fn runs on
// the timer goroutine and must not call either.
type oneShot struct {
	fn func()

	mu       sync.Mutex
	timer    *time.Timer
	delay    time.Duration
	inflight sync.WaitGroup
}

func newOneShot(fn func()) *oneShot {
	return &oneShot{fn: fn}
}

// arm schedules fn after d, replacing any schedule not yet fired.
func (o *oneShot) arm(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
	o.delay = d
	o.inflight.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		defer o.inflight.Done()
		o.mu.Lock()
		if o.timer == t {
			o.timer = nil
		}
		o.mu.Unlock()
		o.fn()
	})
	o.timer = t
}

// cancel stops the schedule and waits until a callback that already
// started has returned. After cancel, fn will not run again until the
// next arm.
func (o *oneShot) cancel() {
	o.mu.Lock()
	o.stopLocked()
	o.mu.Unlock()
	o.inflight.Wait()
}

func (o *oneShot) stopLocked() {
	if o.timer != nil && o.timer.Stop() {
		o.inflight.Done()
	}
	o.timer = nil
}

// armed returns the delay of the last arm. ok is true only while that
// arm is waiting to fire.
func (o *oneShot) armed() (d time.Duration, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.delay, o.timer != nil
}
