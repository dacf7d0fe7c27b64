package main

import "time"

// gestureTimer is a non-blocking interval timer. It never sleeps; the poll loop
// asks it whether the interval has elapsed since the last Reset.
//
// Check re-arms the timer when it reports expiry, so a second Check right after
// an expiry reports false until another full interval has passed.
type gestureTimer struct {
	interval time.Duration
	started  time.Time
	now      func() time.Time
}

func newGestureTimer(interval time.Duration, now func() time.Time) *gestureTimer {
	if now == nil {
		now = time.Now
	}
	return &gestureTimer{
		interval: interval,
		started:  now(),
		now:      now,
	}
}

// Reset restarts the interval from the current time.
func (t *gestureTimer) Reset() {
	t.started = t.now()
}

// Check reports whether the interval has elapsed since the last Reset.
func (t *gestureTimer) Check() bool {
	now := t.now()
	if now.Sub(t.started) < t.interval {
		return false
	}
	t.started = now
	return true
}

// Elapsed returns the time since the last Reset (or re-arm).
func (t *gestureTimer) Elapsed() time.Duration {
	return t.now().Sub(t.started)
}
