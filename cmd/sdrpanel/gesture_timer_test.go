package main

import (
	"testing"
	"time"
)

func TestGestureTimer_CheckAndRearm(t *testing.T) {
	clock := newFakeClock()
	timer := newGestureTimer(700*time.Millisecond, clock.Now)

	if timer.Check() {
		t.Fatalf("expired immediately")
	}

	clock.Advance(699 * time.Millisecond)
	if timer.Check() {
		t.Fatalf("expired before the interval")
	}

	clock.Advance(time.Millisecond)
	if !timer.Check() {
		t.Fatalf("not expired at the interval")
	}

	// Re-armed by the expiry report.
	if timer.Check() {
		t.Fatalf("expired twice without another interval")
	}
	clock.Advance(700 * time.Millisecond)
	if !timer.Check() {
		t.Fatalf("not expired after a second interval")
	}
}

func TestGestureTimer_Reset(t *testing.T) {
	clock := newFakeClock()
	timer := newGestureTimer(100*time.Millisecond, clock.Now)

	clock.Advance(90 * time.Millisecond)
	timer.Reset()
	clock.Advance(90 * time.Millisecond)
	if timer.Check() {
		t.Fatalf("expired although Reset restarted the interval")
	}
	if got := timer.Elapsed(); got != 90*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 90ms", got)
	}
}
