package main

import (
	"log/slog"
	"time"
)

// TouchConfig holds the gesture engine tuning knobs.
type TouchConfig struct {
	// ButtonTouchPx is the per-axis travel below which a single contact is a button press.
	ButtonTouchPx int

	// GestureTimeout is how long a contact may be held before the pending event is abandoned.
	GestureTimeout time.Duration
}

// TouchMachine turns polled touch samples into button presses, swipes and pinches.
//
// It is a four-state poll machine driven by the current contact count and the
// count latched at touch-down:
//
//	current=0 latched=0  idle       nothing pending
//	current>0 latched=0  touch-down record start, reset timer, latch count
//	current>0 latched>0  held       abandon on timeout, else refresh last position
//	current=0 latched>0  lift       measure, classify, dispatch, clear
//
// Poll must be called from a single goroutine and never blocks.
type TouchMachine struct {
	src     TouchSource
	handler GestureHandler
	logger  *slog.Logger

	buttonTouchPx int
	timer         *gestureTimer

	tracker  touchTracker
	previous int // contacts latched at touch-down; 0 when idle
}

// NewTouchMachine builds a gesture engine reading from src and reporting to handler.
// now may be nil to use the wall clock.
func NewTouchMachine(src TouchSource, handler GestureHandler, cfg TouchConfig, now func() time.Time, logger *slog.Logger) *TouchMachine {
	if cfg.ButtonTouchPx <= 0 {
		cfg.ButtonTouchPx = defaultButtonTouchPx
	}
	if cfg.GestureTimeout <= 0 {
		cfg.GestureTimeout = defaultGestureTimeoutMS * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TouchMachine{
		src:           src,
		handler:       handler,
		logger:        logger,
		buttonTouchPx: cfg.ButtonTouchPx,
		timer:         newGestureTimer(cfg.GestureTimeout, now),
	}
}

// Poll samples the touch source once and advances the state machine.
func (m *TouchMachine) Poll() {
	if !m.src.Touched() {
		return
	}
	m.src.Refresh()

	current := m.src.ActiveContacts()
	if current > MaxContacts {
		current = MaxContacts
	}

	switch {
	case current == 0 && m.previous == 0:
		// Too light or too short to register a contact.
		return
	case current > 0 && m.previous == 0:
		m.touchDown(current)
	case current > 0 && m.previous > 0:
		m.touchHeld()
	default:
		m.touchLift()
	}
}

func (m *TouchMachine) touchDown(contacts int) {
	m.previous = contacts
	m.src.Coordinates(&m.tracker.start)
	m.tracker.last = m.tracker.start

	for i := 0; i < contacts; i++ {
		m.logger.Debug("touch start", "contact", i, "x", m.tracker.start[i].X, "y", m.tracker.start[i].Y)
	}
	m.timer.Reset()
}

func (m *TouchMachine) touchHeld() {
	held := m.timer.Elapsed()
	if m.timer.Check() {
		// Abandon the pending event. start is kept so a drag can still
		// measure total travel from the original press point.
		m.previous = 0
		m.logger.Debug("touch timer expired", "held", held)
		return
	}
	m.src.Coordinates(&m.tracker.last)
}

func (m *TouchMachine) touchLift() {
	m.src.Coordinates(&m.tracker.last)
	m.tracker.measure(m.previous)

	d := m.tracker.distance[0]
	m.logger.Debug("touch lift", "contacts", m.previous, "dx", d.DX, "dy", d.DY)

	if m.previous == 1 && abs(d.DX) < m.buttonTouchPx && abs(d.DY) < m.buttonTouchPx {
		start := m.tracker.start[0]
		m.handler.OnButton(start.X, start.Y)
	} else {
		m.dispatchGesture(m.previous)
	}

	m.previous = 0
	m.tracker.clearDistance()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ============================================================================
// Gesture -> Action adapter
// ============================================================================

// actionQueue is the daemon's GestureHandler. It turns gesture callbacks into
// Actions that are reduced later in the same poll iteration.
type actionQueue struct {
	pending []Event
	now     func() time.Time
}

func (q *actionQueue) push(a Action) {
	now := time.Now
	if q.now != nil {
		now = q.now
	}
	q.pending = append(q.pending, TimedEvent{Event: a, At: now()})
}

func (q *actionQueue) OnButton(x, y uint16) {
	q.push(ButtonPressed{X: x, Y: y})
}

func (q *actionQueue) OnSwipeVertical(dir VerticalDirection) {
	q.push(SwipedVertical{Direction: dir})
}

func (q *actionQueue) OnSwipeHorizontal(dir HorizontalDirection) {
	q.push(SwipedHorizontal{Direction: dir})
}

func (q *actionQueue) OnPinch(dir PinchDirection) {
	q.push(Pinched{Direction: dir})
}

// drain returns and clears the queued events.
func (q *actionQueue) drain() []Event {
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}
