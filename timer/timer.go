package timer

import (
	"math/rand"
	"time"
)

// Timer provides a fancier timer than time.Timer. The callback runs on its
// own goroutine via time.AfterFunc, so callers that need to touch
// single-threaded state must have the callback do nothing more than signal
// a channel rather than mutate that state directly.
type Timer struct {
	timer    *time.Timer
	interval time.Duration
	running  bool
}

// New creates a new timer that will call the given function after
// the interval has elapsed
func New(d time.Duration, f func()) *Timer {
	t := &Timer{
		interval: d,
		running:  true,
	}
	t.timer = time.AfterFunc(d, t.preflight(f))
	return t
}

// preflight takes care of any housekeeping before calling the user's function
func (t *Timer) preflight(f func()) func() {
	p := func() {
		t.running = false
		f()
	}
	return p
}

// Reset restarts the timer with its current interval (the one given to New,
// or the latest one given to ResetAfter)
func (t *Timer) Reset() {
	t.timer.Stop()
	t.timer.Reset(t.interval)
	t.running = true
}

// ResetAfter rearms the timer with a new interval, recorded for the next Reset
func (t *Timer) ResetAfter(d time.Duration) {
	t.interval = d
	t.Reset()
}

// Stop cancels the timer
func (t *Timer) Stop() {
	t.timer.Stop()
	t.running = false
}

// Running returns true if the timer is counting down, false otherwise
func (t *Timer) Running() bool {
	return t.running
}

// Jitter draws a duration uniformly from [low, high] * base. A fresh value
// should be picked every time a periodic deadline is rearmed so that
// synchronized peers don't advertise in lockstep.
func Jitter(base time.Duration, low, high float64) time.Duration {
	span := high - low
	factor := low + rand.Float64()*span
	return time.Duration(float64(base) * factor)
}
