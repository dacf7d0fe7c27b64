package main

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func testReducerConfig() ReducerConfig {
	return ReducerConfig{Buttons: NewButtonMap(defaultLayout())}
}

func reduceZone(s *PanelState, z Zone) ReduceResult {
	return Reduce(s, TimedEvent{Event: ZonePressed{Zone: z.String()}, At: time.Unix(100, 0)}, testReducerConfig())
}

func TestReduce_BandUp_CommandOrder(t *testing.T) {
	s := NewPanelState(7074000)
	rr := reduceZone(s, ZoneBandUp)

	want := []Command{
		CmdSetStep{Index: bandChangeStepIndex},
		CmdRampVolume{Level: 0, Ramp: RampNormal},
		CmdSetFrequency{Hz: 8074000},
		CmdRampVolume{Level: 1, Ramp: RampNormal},
		CmdSetMode{Mode: ModeLSB},
	}
	if !reflect.DeepEqual(rr.Commands, want) {
		t.Fatalf("commands = %v, want %v", rr.Commands, want)
	}
	if rr.State.Radio.FrequencyHz != 8074000 || rr.State.Radio.Step != bandChangeStepIndex {
		t.Fatalf("state = %+v", rr.State.Radio)
	}
}

func TestReduce_BandChanges(t *testing.T) {
	tests := []struct {
		name     string
		zone     Zone
		fromHz   int64
		wantHz   int64
		wantMode int
	}{
		{"up below split stays LSB", ZoneBandUp, 3500000, 4500000, ModeLSB},
		{"up across split selects USB", ZoneBandUp, 9500000, 10500000, ModeUSB},
		{"up at limit stays", ZoneBandUp, 31000000, 32000000, ModeUSB},
		{"up above limit wraps to 1 MHz", ZoneBandUp, 31500000, 1000000, ModeLSB},
		{"down above split", ZoneBandDown, 14074000, 13074000, ModeUSB},
		{"down across split selects LSB", ZoneBandDown, 10500000, 9500000, ModeLSB},
		{"down clamps at 1.8 MHz", ZoneBandDown, 2500000, 1800000, ModeLSB},
		{"down from wrap point clamps", ZoneBandDown, 1000000, 1800000, ModeLSB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPanelState(tt.fromHz)
			rr := reduceZone(s, tt.zone)

			if got := rr.State.Radio.FrequencyHz; got != tt.wantHz {
				t.Fatalf("frequency = %d, want %d", got, tt.wantHz)
			}
			if got := rr.State.Radio.Mode; got != tt.wantMode {
				t.Fatalf("mode = %s, want %s", modeNames[got], modeNames[tt.wantMode])
			}
			last := rr.Commands[len(rr.Commands)-1]
			if last != (CmdSetMode{Mode: tt.wantMode}) {
				t.Fatalf("last command = %v, want mode %s", last, modeNames[tt.wantMode])
			}
		})
	}
}

func TestReduce_IndexClamps(t *testing.T) {
	s := NewPanelState(7074000)

	for i := 0; i < 20; i++ {
		reduceZone(s, ZoneBandwidthUp)
	}
	if s.Radio.Bandwidth != len(bandwidthsHz)-1 {
		t.Fatalf("bandwidth = %d, want clamp at %d", s.Radio.Bandwidth, len(bandwidthsHz)-1)
	}
	for i := 0; i < 20; i++ {
		reduceZone(s, ZoneBandwidthDown)
	}
	if s.Radio.Bandwidth != 0 {
		t.Fatalf("bandwidth = %d, want clamp at 0", s.Radio.Bandwidth)
	}

	for i := 0; i < 20; i++ {
		reduceZone(s, ZoneStepUp)
	}
	if s.Radio.Step != len(stepsHz)-1 {
		t.Fatalf("step = %d, want clamp at %d", s.Radio.Step, len(stepsHz)-1)
	}
	rr := reduceZone(s, ZoneStepDown)
	if rr.Commands[0] != (CmdSetStep{Index: len(stepsHz) - 2}) {
		t.Fatalf("command = %v", rr.Commands[0])
	}
}

func TestReduce_Toggles(t *testing.T) {
	s := NewPanelState(7074000)

	rr := reduceZone(s, ZoneAttenuator)
	if !s.Radio.Attenuator || rr.Commands[0] != (CmdSetAttenuator{On: true}) {
		t.Fatalf("attenuator: state=%v cmds=%v", s.Radio.Attenuator, rr.Commands)
	}
	reduceZone(s, ZoneAttenuator)
	if s.Radio.Attenuator {
		t.Fatalf("attenuator did not toggle off")
	}

	rr = reduceZone(s, ZonePreamp)
	if !s.Radio.Preamp || rr.Commands[0] != (CmdSetPreamp{On: true}) {
		t.Fatalf("preamp: state=%v cmds=%v", s.Radio.Preamp, rr.Commands)
	}

	start := s.Radio.AGC
	for i := 0; i < len(agcNames); i++ {
		reduceZone(s, ZoneAGC)
	}
	if s.Radio.AGC != start {
		t.Fatalf("AGC did not cycle back: %d", s.Radio.AGC)
	}

	s.Radio.Mode = ModeFM
	rr = reduceZone(s, ZoneMode)
	if s.Radio.Mode != ModeCW || rr.Commands[0] != (CmdSetMode{Mode: ModeCW}) {
		t.Fatalf("mode did not wrap: %d %v", s.Radio.Mode, rr.Commands)
	}
}

func TestReduce_DisplayPresetWraps(t *testing.T) {
	s := NewPanelState(7074000)
	s.Spectrum.Preset = spectrumPresetCount - 1

	rr := reduceZone(s, ZoneDisplay)
	if s.Spectrum.Preset != 0 {
		t.Fatalf("preset = %d, want wrap to 0", s.Spectrum.Preset)
	}
	if len(rr.Commands) != 0 {
		t.Fatalf("display change should not talk to the radio: %v", rr.Commands)
	}
}

func TestReduce_ColorTempWraps(t *testing.T) {
	s := NewPanelState(7074000)
	p := s.ActivePreset()

	p.ColorTemp = 440
	reduceZone(s, ZoneSettings)
	if p.ColorTemp != 450 {
		t.Fatalf("color temp = %d, want 450", p.ColorTemp)
	}

	p.ColorTemp = colorTempMax
	reduceZone(s, ZoneSettings)
	if p.ColorTemp != 1 {
		t.Fatalf("color temp = %d, want wrap to 1", p.ColorTemp)
	}
}

func TestReduce_VerticalSwipeMovesFloor(t *testing.T) {
	s := NewPanelState(7074000)
	cfg := testReducerConfig()

	Reduce(s, SwipedVertical{Direction: SwipeUp}, cfg)
	if got := s.ActivePreset().Floor; got != -spectrumFloorStep {
		t.Fatalf("floor after up = %d, want %d", got, -spectrumFloorStep)
	}
	Reduce(s, SwipedVertical{Direction: SwipeDown}, cfg)
	Reduce(s, SwipedVertical{Direction: SwipeDown}, cfg)
	if got := s.ActivePreset().Floor; got != spectrumFloorStep {
		t.Fatalf("floor after down = %d, want %d", got, spectrumFloorStep)
	}

	s.ActivePreset().Floor = spectrumFloorMax
	Reduce(s, SwipedVertical{Direction: SwipeDown}, cfg)
	if got := s.ActivePreset().Floor; got != spectrumFloorMax {
		t.Fatalf("floor = %d, want clamp at %d", got, spectrumFloorMax)
	}

	s.ActivePreset().Floor = spectrumFloorMin
	rr := Reduce(s, SwipedVertical{Direction: SwipeUp}, cfg)
	if got := s.ActivePreset().Floor; got != spectrumFloorMin {
		t.Fatalf("floor = %d, want clamp at %d", got, spectrumFloorMin)
	}
	if len(rr.Commands) != 0 {
		t.Fatalf("floor change should not talk to the radio: %v", rr.Commands)
	}
}

func TestReduce_FloorIsPerPreset(t *testing.T) {
	s := NewPanelState(7074000)
	cfg := testReducerConfig()

	Reduce(s, SwipedVertical{Direction: SwipeUp}, cfg)
	reduceZone(s, ZoneDisplay)
	if got := s.ActivePreset().Floor; got != 0 {
		t.Fatalf("new preset floor = %d, want 0", got)
	}
	if got := s.Spectrum.Presets[0].Floor; got != -spectrumFloorStep {
		t.Fatalf("preset 0 floor = %d, want %d", got, -spectrumFloorStep)
	}
}

func TestReduce_PinchScale(t *testing.T) {
	tests := []struct {
		name string
		from float64
		dir  PinchDirection
		want float64
	}{
		{"out from default", 1.0, PinchOut, 1.1},
		{"in from default", 1.0, PinchIn, 0.9},
		{"out at max still steps", 2.0, PinchOut, 2.1},
		{"above max wraps to min first", 2.1, PinchOut, 0.6},
		{"in at min still steps", 0.5, PinchIn, 0.4},
		{"below min wraps to max first", 0.4, PinchIn, 1.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPanelState(7074000)
			s.ActivePreset().Scale = tt.from

			rr := Reduce(s, Pinched{Direction: tt.dir}, testReducerConfig())
			if got := s.ActivePreset().Scale; math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("scale = %v, want %v", got, tt.want)
			}
			if len(rr.Commands) != 0 {
				t.Fatalf("scale change should not talk to the radio: %v", rr.Commands)
			}
		})
	}
}

func TestReduce_PinchScaleDoesNotDrift(t *testing.T) {
	s := NewPanelState(7074000)
	cfg := testReducerConfig()
	for i := 0; i < 10; i++ {
		Reduce(s, Pinched{Direction: PinchOut}, cfg)
	}
	if got := s.ActivePreset().Scale; got != 2.0 {
		t.Fatalf("scale after 10 steps = %v, want exactly 2", got)
	}
}

func TestReduce_HorizontalSwipeOnlyBroadcasts(t *testing.T) {
	s := NewPanelState(7074000)
	before := *s

	rr := Reduce(s, SwipedHorizontal{Direction: SwipeLeft}, testReducerConfig())
	if len(rr.Commands) != 0 {
		t.Fatalf("unexpected commands: %v", rr.Commands)
	}
	if !reflect.DeepEqual(*s, before) {
		t.Fatalf("state changed on horizontal swipe")
	}
	if len(rr.Broadcasts) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(rr.Broadcasts))
	}
	g, ok := rr.Broadcasts[0].(BroadcastGesture)
	if !ok || g.Kind != "swipe" || g.Direction != "left" {
		t.Fatalf("broadcast = %#v", rr.Broadcasts[0])
	}
}

func TestReduce_ButtonPressedHitTests(t *testing.T) {
	s := NewPanelState(7074000)
	at := time.Unix(200, 0)

	// Right stack, slot 5: band up.
	rr := Reduce(s, TimedEvent{Event: ButtonPressed{X: 750, Y: 375}, At: at}, testReducerConfig())
	if s.Radio.FrequencyHz != 8074000 {
		t.Fatalf("frequency = %d, want band up", s.Radio.FrequencyHz)
	}

	g, ok := rr.Broadcasts[0].(BroadcastGesture)
	if !ok || g.Kind != "button" || g.Zone != "band_up" || !g.At.Equal(at) {
		t.Fatalf("first broadcast = %#v", rr.Broadcasts[0])
	}

	// Spectrum area: nothing.
	rr = Reduce(s, ButtonPressed{X: 400, Y: 240}, testReducerConfig())
	if len(rr.Commands) != 0 || len(rr.Broadcasts) != 0 {
		t.Fatalf("press outside buttons produced %v / %v", rr.Commands, rr.Broadcasts)
	}

	// No button map configured: nothing.
	rr = Reduce(s, ButtonPressed{X: 750, Y: 375}, ReducerConfig{})
	if len(rr.Commands) != 0 {
		t.Fatalf("press without a button map produced %v", rr.Commands)
	}
}

func TestReduce_UnknownZoneIgnored(t *testing.T) {
	s := NewPanelState(7074000)
	rr := Reduce(s, ZonePressed{Zone: "volume"}, testReducerConfig())
	if len(rr.Commands) != 0 || len(rr.Broadcasts) != 0 {
		t.Fatalf("unknown zone produced %v / %v", rr.Commands, rr.Broadcasts)
	}
}

func TestReduce_SetFrequency(t *testing.T) {
	s := NewPanelState(7074000)

	rr := Reduce(s, SetFrequency{Hz: 14074000}, testReducerConfig())
	if s.Radio.FrequencyHz != 14074000 {
		t.Fatalf("frequency = %d", s.Radio.FrequencyHz)
	}
	if len(rr.Commands) != 1 || rr.Commands[0] != (CmdSetFrequency{Hz: 14074000}) {
		t.Fatalf("commands = %v", rr.Commands)
	}
	if _, ok := rr.Broadcasts[0].(BroadcastFrequencyChanged); !ok {
		t.Fatalf("first broadcast = %T, want BroadcastFrequencyChanged", rr.Broadcasts[0])
	}

	rr = Reduce(s, SetFrequency{Hz: 0}, testReducerConfig())
	if len(rr.Commands) != 0 || s.Radio.FrequencyHz != 14074000 {
		t.Fatalf("zero frequency accepted")
	}
}

func TestReduce_StateSnapshotRequest(t *testing.T) {
	s := NewPanelState(7074000)
	reply := make(chan StateSnapshot, 1)

	rr := Reduce(s, RequestStateSnapshot{Reply: reply}, testReducerConfig())
	if len(rr.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(rr.Commands))
	}
	c, ok := rr.Commands[0].(CmdPublishStateSnapshot)
	if !ok {
		t.Fatalf("command = %T", rr.Commands[0])
	}
	if c.Reply != reply || c.Snapshot.FrequencyHz != 7074000 || c.Snapshot.Mode != "LSB" {
		t.Fatalf("snapshot = %+v", c.Snapshot)
	}
}

func TestReduce_CommandFailureKeepsState(t *testing.T) {
	s := NewPanelState(7074000)
	before := *s
	rr := Reduce(s, RadioCommandFailed{Command: CmdSetFrequency{Hz: 1}, Err: errNoRadio{}}, testReducerConfig())
	if len(rr.Commands) != 0 || len(rr.Broadcasts) != 0 || !reflect.DeepEqual(*s, before) {
		t.Fatalf("failure changed state or emitted commands/broadcasts")
	}
}

func TestReduce_NilStateGetsDefaults(t *testing.T) {
	rr := Reduce(nil, SwipedVertical{Direction: SwipeUp}, testReducerConfig())
	if rr.State == nil || rr.State.Radio.FrequencyHz != defaultInitialFreqHz {
		t.Fatalf("state = %+v", rr.State)
	}
}
