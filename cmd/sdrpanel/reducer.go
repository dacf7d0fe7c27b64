package main

import (
	"math"
	"time"
)

// This file implements the reducer:
//
//   - Events: gestures from the touch engine or IPC, snapshot requests, command failures
//   - Commands: side effects for the radio backend
//   - Broadcasts: state notifications for websocket clients
//   - Reduce(): computes next state + commands + broadcasts without performing I/O
//
// The daemon loop executes Commands and feeds failures back as Events.

// ReducerConfig carries the static inputs of the reducer.
type ReducerConfig struct {
	Buttons *ButtonMap
}

// ReduceResult is the output of Reduce().
type ReduceResult struct {
	State      *PanelState
	Commands   []Command
	Broadcasts []StateBroadcast
}

// Reduce is the pure reducer:
//
// Rules:
// - Must not perform I/O
// - Must not block
// - Must not mutate anything outside the returned state
func Reduce(s *PanelState, e Event, cfg ReducerConfig) ReduceResult {
	if s == nil {
		s = NewPanelState(defaultInitialFreqHz)
	}

	var at time.Time
	if te, ok := e.(TimedEvent); ok {
		at = te.At
		e = te.Event
	}
	if at.IsZero() {
		at = time.Now()
	}

	r := &ReduceResult{State: s}

	switch ev := e.(type) {
	case ButtonPressed:
		zone := ZoneNone
		if cfg.Buttons != nil {
			zone = cfg.Buttons.Hit(ev.X, ev.Y)
		}
		// A press outside every button is not an error.
		if zone != ZoneNone {
			r.gesture("button", "", zone.String(), at)
			r.applyZone(zone, at)
		}

	case ZonePressed:
		if zone := zoneByName(ev.Zone); zone != ZoneNone {
			r.gesture("button", "", zone.String(), at)
			r.applyZone(zone, at)
		}

	case SwipedVertical:
		// Swipe up raises the reference level: the floor offset moves down.
		p := s.ActivePreset()
		if ev.Direction == SwipeUp {
			p.Floor -= spectrumFloorStep
		} else {
			p.Floor += spectrumFloorStep
		}
		p.Floor = clampInt(p.Floor, spectrumFloorMin, spectrumFloorMax)
		r.gesture("swipe", ev.Direction.String(), "", at)
		r.spectrumChanged(at)

	case SwipedHorizontal:
		// No action wired to horizontal swipes yet; report it for feedback only.
		r.gesture("swipe", ev.Direction.String(), "", at)

	case Pinched:
		p := s.ActivePreset()
		if p.Scale > spectrumScaleMax {
			p.Scale = spectrumScaleMin
		}
		if p.Scale < spectrumScaleMin {
			p.Scale = spectrumScaleMax
		}
		if ev.Direction == PinchOut {
			p.Scale += spectrumScaleStep
		} else {
			p.Scale -= spectrumScaleStep
		}
		p.Scale = math.Round(p.Scale*100) / 100
		r.gesture("pinch", ev.Direction.String(), "", at)
		r.spectrumChanged(at)

	case SetFrequency:
		if ev.Hz > 0 {
			s.Radio.FrequencyHz = ev.Hz
			r.Commands = append(r.Commands, CmdSetFrequency{Hz: ev.Hz})
			r.Broadcasts = append(r.Broadcasts, BroadcastFrequencyChanged{Hz: ev.Hz, At: at})
			r.radioChanged(at)
		}

	case RequestStateSnapshot:
		r.Commands = append(r.Commands, CmdPublishStateSnapshot{
			Reply:    ev.Reply,
			Snapshot: s.Snapshot(),
		})

	case RadioCommandFailed:
		// Keep state as-is; the panel shows what was requested.
		// runEffect has already logged the failure.

	default:
		// Unknown event type: no-op.
	}

	return *r
}

// applyZone performs the action bound to a button.
func (r *ReduceResult) applyZone(zone Zone, at time.Time) {
	s := r.State
	radio := &s.Radio

	switch zone {
	case ZoneMode:
		radio.Mode = (radio.Mode + 1) % len(modeNames)
		r.Commands = append(r.Commands, CmdSetMode{Mode: radio.Mode})
		r.radioChanged(at)

	case ZoneBandwidthUp, ZoneBandwidthDown:
		delta := 1
		if zone == ZoneBandwidthDown {
			delta = -1
		}
		radio.Bandwidth = clampInt(radio.Bandwidth+delta, 0, len(bandwidthsHz)-1)
		r.Commands = append(r.Commands, CmdSetBandwidth{Index: radio.Bandwidth})
		r.radioChanged(at)

	case ZoneStepUp, ZoneStepDown:
		delta := 1
		if zone == ZoneStepDown {
			delta = -1
		}
		radio.Step = clampInt(radio.Step+delta, 0, len(stepsHz)-1)
		r.Commands = append(r.Commands, CmdSetStep{Index: radio.Step})
		r.radioChanged(at)

	case ZoneSettings:
		p := s.ActivePreset()
		p.ColorTemp += colorTempStep
		if p.ColorTemp > colorTempMax {
			p.ColorTemp = 1
		}
		r.spectrumChanged(at)

	case ZoneAttenuator:
		radio.Attenuator = !radio.Attenuator
		r.Commands = append(r.Commands, CmdSetAttenuator{On: radio.Attenuator})
		r.radioChanged(at)

	case ZonePreamp:
		radio.Preamp = !radio.Preamp
		r.Commands = append(r.Commands, CmdSetPreamp{On: radio.Preamp})
		r.radioChanged(at)

	case ZoneAGC:
		radio.AGC = (radio.AGC + 1) % len(agcNames)
		r.Commands = append(r.Commands, CmdSetAGC{Index: radio.AGC})
		r.radioChanged(at)

	case ZoneDisplay:
		s.Spectrum.Preset++
		if s.Spectrum.Preset >= spectrumPresetCount {
			s.Spectrum.Preset = 0
		}
		r.spectrumChanged(at)

	case ZoneBandUp:
		f := radio.FrequencyHz + bandStepHz
		if f > bandMaxHz {
			f = bandWrapHz
		}
		r.changeBand(f, at)

	case ZoneBandDown:
		f := radio.FrequencyHz - bandStepHz
		if f < bandMinHz {
			f = bandMinHz
		}
		r.changeBand(f, at)
	}
}

// changeBand retunes with the audio muted across the jump, then picks the
// conventional sideband for the new frequency. Command order matters.
func (r *ReduceResult) changeBand(freqHz int64, at time.Time) {
	radio := &r.State.Radio
	radio.FrequencyHz = freqHz
	radio.Step = bandChangeStepIndex
	radio.Mode = sidebandFor(freqHz)

	r.Commands = append(r.Commands,
		CmdSetStep{Index: radio.Step},
		CmdRampVolume{Level: 0, Ramp: RampNormal},
		CmdSetFrequency{Hz: freqHz},
		CmdRampVolume{Level: 1, Ramp: RampNormal},
		CmdSetMode{Mode: radio.Mode},
	)
	r.Broadcasts = append(r.Broadcasts, BroadcastFrequencyChanged{Hz: freqHz, At: at})
	r.radioChanged(at)
}

func (r *ReduceResult) radioChanged(at time.Time) {
	r.Broadcasts = append(r.Broadcasts, BroadcastRadioChanged{State: r.State.Snapshot(), At: at})
}

func (r *ReduceResult) spectrumChanged(at time.Time) {
	r.Broadcasts = append(r.Broadcasts, BroadcastSpectrumChanged{State: r.State.Snapshot(), At: at})
}

func (r *ReduceResult) gesture(kind, dir, zone string, at time.Time) {
	r.Broadcasts = append(r.Broadcasts, BroadcastGesture{Kind: kind, Direction: dir, Zone: zone, At: at})
}

func zoneByName(name string) Zone {
	for z, n := range zoneNames {
		if n == name {
			return z
		}
	}
	return ZoneNone
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
