package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Events and Actions
// ============================================================================
// Events are the reducer's input. Actions are the subset of events that carry
// user intent: gestures classified by the touch engine, or the same gestures
// injected over IPC.
// ============================================================================

// Event is the input to the reducer.
type Event interface {
	eventMarker()
}

// Action is an Event that expresses user intent.
type Action interface {
	Event
	actionMarker()
}

// TimedEvent attaches the time the daemon received an event.
type TimedEvent struct {
	Event Event
	At    time.Time
}

func (TimedEvent) eventMarker() {}

// ButtonPressed is a short single-contact tap at the press-down coordinates.
type ButtonPressed struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
}

func (ButtonPressed) eventMarker()  {}
func (ButtonPressed) actionMarker() {}

// SwipedVertical is a single-contact vertical swipe.
type SwipedVertical struct {
	Direction VerticalDirection `json:"direction"` // +1 up, -1 down
}

func (SwipedVertical) eventMarker()  {}
func (SwipedVertical) actionMarker() {}

// SwipedHorizontal is a single-contact horizontal swipe.
type SwipedHorizontal struct {
	Direction HorizontalDirection `json:"direction"` // -1 left, +1 right
}

func (SwipedHorizontal) eventMarker()  {}
func (SwipedHorizontal) actionMarker() {}

// Pinched is a two-contact pinch.
type Pinched struct {
	Direction PinchDirection `json:"direction"` // -1 in, +1 out
}

func (Pinched) eventMarker()  {}
func (Pinched) actionMarker() {}

// ZonePressed activates a button by name, bypassing hit-testing.
type ZonePressed struct {
	Zone string `json:"zone"`
}

func (ZonePressed) eventMarker()  {}
func (ZonePressed) actionMarker() {}

// SetFrequency tunes to an absolute frequency.
type SetFrequency struct {
	Hz int64 `json:"hz"`
}

func (SetFrequency) eventMarker()  {}
func (SetFrequency) actionMarker() {}

// RequestStateSnapshot asks the reducer to publish a snapshot on Reply.
type RequestStateSnapshot struct {
	Reply chan StateSnapshot
}

func (RequestStateSnapshot) eventMarker() {}

// RadioCommandFailed is emitted when executing a Command fails.
type RadioCommandFailed struct {
	Command Command
	Err     error
	At      time.Time
}

func (RadioCommandFailed) eventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================

// EventEnvelope wraps an action with a type discriminator for JSON marshaling.
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalAction decodes a JSON envelope into a concrete Action.
func UnmarshalAction(data []byte) (Action, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "button_pressed":
		var a ButtonPressed
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("unmarshal ButtonPressed: %w", err)
		}
		return a, nil

	case "swiped_vertical":
		var a SwipedVertical
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("unmarshal SwipedVertical: %w", err)
		}
		if a.Direction != SwipeUp && a.Direction != SwipeDown {
			return nil, fmt.Errorf("swiped_vertical: direction must be 1 or -1, got %d", a.Direction)
		}
		return a, nil

	case "swiped_horizontal":
		var a SwipedHorizontal
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("unmarshal SwipedHorizontal: %w", err)
		}
		if a.Direction != SwipeLeft && a.Direction != SwipeRight {
			return nil, fmt.Errorf("swiped_horizontal: direction must be 1 or -1, got %d", a.Direction)
		}
		return a, nil

	case "pinched":
		var a Pinched
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("unmarshal Pinched: %w", err)
		}
		if a.Direction != PinchIn && a.Direction != PinchOut {
			return nil, fmt.Errorf("pinched: direction must be 1 or -1, got %d", a.Direction)
		}
		return a, nil

	case "zone_pressed":
		var a ZonePressed
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("unmarshal ZonePressed: %w", err)
		}
		if z := zoneByName(a.Zone); z == ZoneNone {
			return nil, fmt.Errorf("zone_pressed: unknown zone %q", a.Zone)
		}
		return a, nil

	case "set_frequency":
		var a SetFrequency
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("unmarshal SetFrequency: %w", err)
		}
		if a.Hz <= 0 {
			return nil, fmt.Errorf("set_frequency: hz must be > 0, got %d", a.Hz)
		}
		return a, nil

	default:
		return nil, fmt.Errorf("unknown action type: %q", env.Type)
	}
}

// MarshalAction encodes an Action into a JSON envelope.
func MarshalAction(a Action) ([]byte, error) {
	var env EventEnvelope

	switch a.(type) {
	case ButtonPressed:
		env.Type = "button_pressed"
	case SwipedVertical:
		env.Type = "swiped_vertical"
	case SwipedHorizontal:
		env.Type = "swiped_horizontal"
	case Pinched:
		env.Type = "pinched"
	case ZonePressed:
		env.Type = "zone_pressed"
	case SetFrequency:
		env.Type = "set_frequency"
	default:
		return nil, fmt.Errorf("unsupported action type: %T", a)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", env.Type, err)
	}
	env.Data = data

	return json.Marshal(env)
}
