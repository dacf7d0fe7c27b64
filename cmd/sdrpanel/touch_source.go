package main

// TouchSource is the touch controller as seen by the gesture engine.
//
// All methods are called from the poll loop only and must not block.
type TouchSource interface {
	// Touched reports controller activity: a new frame arrived, or a contact
	// is still down.
	Touched() bool

	// Refresh latches the most recent sample frame.
	Refresh()

	// ActiveContacts returns the number of contacts in the latched frame,
	// clamped to MaxContacts.
	ActiveContacts() int

	// Coordinates copies the latched per-slot positions into dst. Slots
	// without a contact keep their last reported position.
	Coordinates(dst *ContactSet)
}

// GestureHandler receives classified touch gestures. Calls are synchronous
// and happen inside TouchMachine.Poll.
type GestureHandler interface {
	OnButton(x, y uint16)
	OnSwipeVertical(dir VerticalDirection)
	OnSwipeHorizontal(dir HorizontalDirection)
	OnPinch(dir PinchDirection)
}

// VerticalDirection is the reference-level direction chosen by a vertical swipe.
type VerticalDirection int

const (
	SwipeUp   VerticalDirection = 1  // finger moved up the screen (dy < 0)
	SwipeDown VerticalDirection = -1 // finger moved down the screen (dy > 0)
)

func (d VerticalDirection) String() string {
	if d == SwipeUp {
		return "up"
	}
	return "down"
}

// HorizontalDirection is the direction of a horizontal swipe.
type HorizontalDirection int

const (
	SwipeLeft  HorizontalDirection = -1
	SwipeRight HorizontalDirection = 1
)

func (d HorizontalDirection) String() string {
	if d == SwipeLeft {
		return "left"
	}
	return "right"
}

// PinchDirection is the sign of a pinch. Magnitude is not reported.
type PinchDirection int

const (
	PinchIn  PinchDirection = -1 // contacts ended closer together
	PinchOut PinchDirection = 1
)

func (d PinchDirection) String() string {
	if d == PinchIn {
		return "in"
	}
	return "out"
}
