package main

import "math"

// Gesture codes passed to dispatchGesture: the number of contacts latched
// for the whole gesture.
const (
	gestureSwipe = 1
	gesturePinch = 2
)

// dispatchGesture classifies a completed non-button gesture from the tracker
// and reports it to the handler.
//
// The controller's own gesture register is not used; it rarely reports
// anything but pinch, so direction is derived here from the tracked points.
func (m *TouchMachine) dispatchGesture(code int) {
	switch code {
	case gestureSwipe:
		d := m.tracker.distance[0]
		if vertical, dir := swipeVertical(d); vertical {
			m.logger.Debug("swipe vertical", "direction", dir.String(), "dx", d.DX, "dy", d.DY)
			m.handler.OnSwipeVertical(dir)
		} else {
			h := swipeHorizontal(d)
			m.logger.Debug("swipe horizontal", "direction", h.String(), "dx", d.DX, "dy", d.DY)
			m.handler.OnSwipeHorizontal(h)
		}

	case gesturePinch:
		startDist := contactSpan(m.tracker.start)
		endDist := contactSpan(m.tracker.last)
		dir := pinchDirection(startDist, endDist)
		m.logger.Debug("pinch", "direction", dir.String(), "start_dist", startDist, "end_dist", endDist)
		m.handler.OnPinch(dir)

	default:
		m.logger.Warn("unrecognized gesture code, dropping", "code", code)
	}
}

// swipeVertical reports whether a single-contact swipe is vertical and, if so,
// which way. Vertical wins only when |dy| > |dx|.
func swipeVertical(d Displacement) (bool, VerticalDirection) {
	if abs(d.DY) <= abs(d.DX) {
		return false, 0
	}
	if d.DY > 0 {
		return true, SwipeDown
	}
	return true, SwipeUp
}

func swipeHorizontal(d Displacement) HorizontalDirection {
	if d.DX < 0 {
		return SwipeLeft
	}
	return SwipeRight
}

// contactSpan is the distance in whole pixels between contacts 0 and 1.
func contactSpan(c ContactSet) int {
	dx := float64(int(c[1].X) - int(c[0].X))
	dy := float64(int(c[1].Y) - int(c[0].Y))
	return int(math.Sqrt(dx*dx + dy*dy))
}

// pinchDirection is PinchIn when the contacts ended closer than they started,
// PinchOut otherwise (including no change).
func pinchDirection(startDist, endDist int) PinchDirection {
	if endDist < startDist {
		return PinchIn
	}
	return PinchOut
}
