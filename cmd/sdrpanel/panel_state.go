package main

// PanelState is the daemon-owned state behind the touch panel: what the radio
// was last told to do and how the spectrum display is configured.
//
// Only the daemon goroutine touches it. Other goroutines get StateSnapshot
// values through the reducer.
type PanelState struct {
	Radio    RadioState
	Spectrum SpectrumState
}

// RadioState holds the receiver settings selected from the panel.
type RadioState struct {
	FrequencyHz int64
	Mode        int // index into modeNames
	Bandwidth   int // index into bandwidthsHz
	Step        int // index into stepsHz
	Attenuator  bool
	Preamp      bool
	AGC         int // index into agcNames
}

// SpectrumPreset is one spectrum/waterfall layout.
type SpectrumPreset struct {
	Scale     float64 // vertical scale factor, pinch adjusts
	Floor     int     // reference level offset, vertical swipe adjusts
	ColorTemp int     // waterfall colour temperature, settings button adjusts
}

// SpectrumState is the active preset plus the per-preset parameters.
type SpectrumState struct {
	Preset  int
	Presets [spectrumPresetCount]SpectrumPreset
}

// Mode indexes. LSB/USB are chosen automatically on band changes.
const (
	ModeCW = iota
	ModeLSB
	ModeUSB
	ModeAM
	ModeFM
)

var (
	modeNames    = []string{"CW", "LSB", "USB", "AM", "FM"}
	bandwidthsHz = []int{500, 1000, 1500, 1800, 2100, 2400, 2700, 3000, 3600}
	stepsHz      = []int{1, 10, 100, 1000, 10000, 100000}
	agcNames     = []string{"off", "slow", "medium", "fast"}
)

// NewPanelState returns the power-on state tuned to freqHz.
func NewPanelState(freqHz int64) *PanelState {
	s := &PanelState{
		Radio: RadioState{
			FrequencyHz: freqHz,
			Mode:        sidebandFor(freqHz),
			Bandwidth:   5,
			Step:        3,
			AGC:         1,
		},
	}
	for i := range s.Spectrum.Presets {
		s.Spectrum.Presets[i] = SpectrumPreset{
			Scale:     1.0,
			Floor:     0,
			ColorTemp: defaultColorTemp,
		}
	}
	return s
}

// ActivePreset returns the preset currently on screen.
func (s *PanelState) ActivePreset() *SpectrumPreset {
	return &s.Spectrum.Presets[s.Spectrum.Preset]
}

// sidebandFor picks LSB below the split frequency and USB above it.
func sidebandFor(freqHz int64) int {
	if freqHz < sidebandSplitHz {
		return ModeLSB
	}
	return ModeUSB
}

// StateSnapshot is an immutable copy of PanelState for other goroutines.
type StateSnapshot struct {
	FrequencyHz int64  `json:"frequency_hz"`
	Mode        string `json:"mode"`
	BandwidthHz int    `json:"bandwidth_hz"`
	StepHz      int    `json:"step_hz"`
	Attenuator  bool   `json:"attenuator"`
	Preamp      bool   `json:"preamp"`
	AGC         string `json:"agc"`

	SpectrumPreset int     `json:"spectrum_preset"`
	SpectrumScale  float64 `json:"spectrum_scale"`
	SpectrumFloor  int     `json:"spectrum_floor"`
	ColorTemp      int     `json:"color_temp"`
}

// Snapshot copies the current state.
func (s *PanelState) Snapshot() StateSnapshot {
	p := s.ActivePreset()
	return StateSnapshot{
		FrequencyHz:    s.Radio.FrequencyHz,
		Mode:           modeNames[s.Radio.Mode],
		BandwidthHz:    bandwidthsHz[s.Radio.Bandwidth],
		StepHz:         stepsHz[s.Radio.Step],
		Attenuator:     s.Radio.Attenuator,
		Preamp:         s.Radio.Preamp,
		AGC:            agcNames[s.Radio.AGC],
		SpectrumPreset: s.Spectrum.Preset,
		SpectrumScale:  p.Scale,
		SpectrumFloor:  p.Floor,
		ColorTemp:      p.ColorTemp,
	}
}
