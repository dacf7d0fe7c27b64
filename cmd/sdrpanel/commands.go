package main

import (
	"fmt"
	"time"
)

// ==============================
// Commands (side effects)
// ==============================

// Command is a side effect requested by the reducer and executed by the
// daemon loop, mostly CAT writes to the radio.
type Command interface {
	commandMarker()
	String() string
}

// CmdSetFrequency tunes VFO A.
type CmdSetFrequency struct {
	Hz int64
}

func (CmdSetFrequency) commandMarker() {}
func (c CmdSetFrequency) String() string {
	return fmt.Sprintf("CmdSetFrequency(hz=%d)", c.Hz)
}

// CmdSetMode selects the demodulator (index into modeNames).
type CmdSetMode struct {
	Mode int
}

func (CmdSetMode) commandMarker() {}
func (c CmdSetMode) String() string {
	return fmt.Sprintf("CmdSetMode(mode=%s)", modeNames[c.Mode])
}

// CmdSetBandwidth selects the receive filter (index into bandwidthsHz).
type CmdSetBandwidth struct {
	Index int
}

func (CmdSetBandwidth) commandMarker() {}
func (c CmdSetBandwidth) String() string {
	return fmt.Sprintf("CmdSetBandwidth(index=%d hz=%d)", c.Index, bandwidthsHz[c.Index])
}

// CmdSetStep selects the tuning step (index into stepsHz).
type CmdSetStep struct {
	Index int
}

func (CmdSetStep) commandMarker() {}
func (c CmdSetStep) String() string {
	return fmt.Sprintf("CmdSetStep(index=%d hz=%d)", c.Index, stepsHz[c.Index])
}

// CmdSetAttenuator switches the front-end attenuator.
type CmdSetAttenuator struct {
	On bool
}

func (CmdSetAttenuator) commandMarker()   {}
func (c CmdSetAttenuator) String() string { return fmt.Sprintf("CmdSetAttenuator(on=%v)", c.On) }

// CmdSetPreamp switches the front-end preamplifier.
type CmdSetPreamp struct {
	On bool
}

func (CmdSetPreamp) commandMarker()   {}
func (c CmdSetPreamp) String() string { return fmt.Sprintf("CmdSetPreamp(on=%v)", c.On) }

// CmdSetAGC selects the AGC speed (index into agcNames).
type CmdSetAGC struct {
	Index int
}

func (CmdSetAGC) commandMarker() {}
func (c CmdSetAGC) String() string {
	return fmt.Sprintf("CmdSetAGC(agc=%s)", agcNames[c.Index])
}

// RampType selects how the audio level moves to its new value.
type RampType int

const (
	RampNone   RampType = iota // instant, pops
	RampNormal                 // graceful transition
	RampLinear
)

// CmdRampVolume moves the audio output level (0..1) using the given ramp.
type CmdRampVolume struct {
	Level float64
	Ramp  RampType
}

func (CmdRampVolume) commandMarker() {}
func (c CmdRampVolume) String() string {
	return fmt.Sprintf("CmdRampVolume(level=%.2f ramp=%d)", c.Level, c.Ramp)
}

// CmdPublishStateSnapshot delivers a reducer-produced snapshot to a requester.
type CmdPublishStateSnapshot struct {
	Reply    chan StateSnapshot
	Snapshot StateSnapshot
}

func (CmdPublishStateSnapshot) commandMarker() {}
func (CmdPublishStateSnapshot) String() string { return "CmdPublishStateSnapshot()" }

// ==============================
// Broadcasts (state fan-out)
// ==============================

// StateBroadcast is a reducer-emitted notification for websocket clients.
type StateBroadcast interface {
	broadcastMarker()
}

// BroadcastFrequencyChanged reports a retune.
type BroadcastFrequencyChanged struct {
	Hz int64
	At time.Time
}

func (BroadcastFrequencyChanged) broadcastMarker() {}

// BroadcastRadioChanged reports new receiver settings.
type BroadcastRadioChanged struct {
	State StateSnapshot
	At    time.Time
}

func (BroadcastRadioChanged) broadcastMarker() {}

// BroadcastSpectrumChanged reports new spectrum display parameters.
type BroadcastSpectrumChanged struct {
	State StateSnapshot
	At    time.Time
}

func (BroadcastSpectrumChanged) broadcastMarker() {}

// BroadcastGesture reports a recognized gesture, for on-screen feedback.
type BroadcastGesture struct {
	Kind      string // button, swipe, pinch
	Direction string // up/down/left/right/in/out, empty for buttons
	Zone      string // button zone, empty for gestures
	At        time.Time
}

func (BroadcastGesture) broadcastMarker() {}
