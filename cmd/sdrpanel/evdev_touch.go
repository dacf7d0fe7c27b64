package main

import (
	"log/slog"
	"os"
)

// absRange is an axis range reported by EVIOCGABS.
type absRange struct {
	min, max int32
}

// axisMap scales raw controller coordinates to screen pixels.
type axisMap struct {
	x, y          absRange
	width, height int
	swapXY        bool
	invertX       bool
	invertY       bool
}

func (a axisMap) scale(rawX, rawY int32) Point {
	if a.swapXY {
		rawX, rawY = rawY, rawX
	}
	x := scaleAxis(rawX, a.x, a.width, a.invertX)
	y := scaleAxis(rawY, a.y, a.height, a.invertY)
	return Point{X: x, Y: y}
}

func scaleAxis(v int32, r absRange, size int, invert bool) uint16 {
	if size <= 0 {
		return 0
	}
	span := int64(r.max) - int64(r.min)
	var px int64
	if span <= 0 {
		// Unknown range: assume the controller already reports pixels.
		px = int64(v)
	} else {
		px = (int64(v) - int64(r.min)) * int64(size-1) / span
	}
	px = max(0, min(int64(size-1), px))
	if invert {
		px = int64(size-1) - px
	}
	return uint16(px)
}

type mtSlot struct {
	x, y int32
	down bool
}

// evdevTouch is a TouchSource fed by Linux input events (multitouch protocol B,
// with a single-touch fallback for controllers that only send ABS_X/ABS_Y).
//
// Events arrive on a channel from the device reader goroutine and are applied
// without blocking whenever the poll loop asks Touched(). A frame becomes
// visible at SYN_REPORT; Refresh latches the newest frame.
//
// Coordinates of lifted contacts keep their last value, like the registers of
// a touch controller.
type evdevTouch struct {
	events <-chan inputEvent
	axes   axisMap

	mtSeen  bool
	slot    int
	pending [MaxContacts]mtSlot
	frame   [MaxContacts]mtSlot
	latched [MaxContacts]mtSlot
	fresh   bool // a frame was committed since the last Refresh
}

func newEvdevTouch(events <-chan inputEvent, axes axisMap) *evdevTouch {
	return &evdevTouch{events: events, axes: axes}
}

// Touched reports a new frame or a contact that is still down.
func (t *evdevTouch) Touched() bool {
	t.drain()
	if t.fresh {
		return true
	}
	for _, s := range t.frame {
		if s.down {
			return true
		}
	}
	return false
}

// Refresh latches the newest committed frame. Contacts that are down are
// moved to the front so contact 0 is always the first finger on the glass.
func (t *evdevTouch) Refresh() {
	t.drain()
	t.fresh = false

	n := 0
	var out [MaxContacts]mtSlot
	for _, s := range t.frame {
		if s.down {
			out[n] = s
			n++
		}
	}
	for _, s := range t.frame {
		if !s.down {
			out[n] = s
			n++
		}
	}
	t.latched = out
}

func (t *evdevTouch) ActiveContacts() int {
	n := 0
	for _, s := range t.latched {
		if s.down {
			n++
		}
	}
	return n
}

func (t *evdevTouch) Coordinates(dst *ContactSet) {
	for i, s := range t.latched {
		dst[i] = t.axes.scale(s.x, s.y)
	}
}

func (t *evdevTouch) drain() {
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				return
			}
			t.apply(ev)
		default:
			return
		}
	}
}

func (t *evdevTouch) apply(ev inputEvent) {
	switch ev.Type {
	case EV_SYN:
		if ev.Code == SYN_REPORT {
			t.frame = t.pending
			t.fresh = true
		}

	case EV_KEY:
		// MT devices also send BTN_TOUCH; tracking ids are authoritative there.
		if ev.Code == BTN_TOUCH && !t.mtSeen {
			t.pending[0].down = ev.Value != 0
		}

	case EV_ABS:
		switch ev.Code {
		case ABS_MT_SLOT:
			t.mtSeen = true
			t.slot = int(ev.Value)
		case ABS_MT_TRACKING_ID:
			t.mtSeen = true
			if s := t.current(); s != nil {
				s.down = ev.Value >= 0
			}
		case ABS_MT_POSITION_X:
			t.mtSeen = true
			if s := t.current(); s != nil {
				s.x = ev.Value
			}
		case ABS_MT_POSITION_Y:
			t.mtSeen = true
			if s := t.current(); s != nil {
				s.y = ev.Value
			}
		case ABS_X:
			if !t.mtSeen {
				t.pending[0].x = ev.Value
			}
		case ABS_Y:
			if !t.mtSeen {
				t.pending[0].y = ev.Value
			}
		}
	}
}

// current returns the slot being updated, or nil for slots beyond
// MaxContacts (extra fingers are ignored).
func (t *evdevTouch) current() *mtSlot {
	if t.slot < 0 || t.slot >= MaxContacts {
		return nil
	}
	return &t.pending[t.slot]
}

// touchDevice couples an opened evdev node with the source it feeds.
type touchDevice struct {
	f      *os.File
	events chan inputEvent
	src    *evdevTouch
	logger *slog.Logger
}

// Source returns the TouchSource for the gesture engine.
func (d *touchDevice) Source() TouchSource { return d.src }

func (d *touchDevice) Close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}
