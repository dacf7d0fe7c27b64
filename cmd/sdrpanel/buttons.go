package main

// Zone identifies an on-screen button.
type Zone int

const (
	ZoneNone Zone = iota

	// Left stack, top to bottom
	ZoneMode
	ZoneBandwidthUp
	ZoneBandwidthDown
	ZoneStepUp
	ZoneStepDown
	ZoneSettings

	// Right stack, top to bottom
	ZoneAttenuator
	ZonePreamp
	ZoneAGC
	ZoneDisplay
	ZoneBandUp
	ZoneBandDown
)

var zoneNames = map[Zone]string{
	ZoneNone:          "none",
	ZoneMode:          "mode",
	ZoneBandwidthUp:   "bandwidth_up",
	ZoneBandwidthDown: "bandwidth_down",
	ZoneStepUp:        "step_up",
	ZoneStepDown:      "step_down",
	ZoneSettings:      "settings",
	ZoneAttenuator:    "attenuator",
	ZonePreamp:        "preamp",
	ZoneAGC:           "agc",
	ZoneDisplay:       "display",
	ZoneBandUp:        "band_up",
	ZoneBandDown:      "band_down",
}

func (z Zone) String() string {
	if n, ok := zoneNames[z]; ok {
		return n
	}
	return "unknown"
}

var (
	leftStackZones  = []Zone{ZoneMode, ZoneBandwidthUp, ZoneBandwidthDown, ZoneStepUp, ZoneStepDown, ZoneSettings}
	rightStackZones = []Zone{ZoneAttenuator, ZonePreamp, ZoneAGC, ZoneDisplay, ZoneBandUp, ZoneBandDown}
)

// Layout is the button geometry: two vertical stacks of equal-height slots
// between TopFrame and BottomFrame.
type Layout struct {
	LeftFrameLeft   int `yaml:"left_frame_left"`
	LeftFrameRight  int `yaml:"left_frame_right"`
	RightFrameLeft  int `yaml:"right_frame_left"`
	RightFrameRight int `yaml:"right_frame_right"`
	TopFrame        int `yaml:"top_frame"`
	BottomFrame     int `yaml:"bottom_frame"`
	ButtonsPerStack int `yaml:"buttons_per_stack"`
}

// ButtonHeight is the height of one slot.
func (l Layout) ButtonHeight() int {
	if l.ButtonsPerStack <= 0 {
		return 0
	}
	return (l.BottomFrame - l.TopFrame) / l.ButtonsPerStack
}

type rect struct {
	left, right, top, bottom int
}

// contains uses strict bounds: a point on an edge belongs to no button.
func (r rect) contains(x, y int) bool {
	return x > r.left && x < r.right && y > r.top && y < r.bottom
}

type zoneRect struct {
	zone Zone
	rect rect
}

// ButtonMap hit-tests button presses against the layout. The table is
// evaluated in order and the first match wins.
type ButtonMap struct {
	table []zoneRect
}

// NewButtonMap builds the ordered zone table: the left stack top to bottom,
// then the right stack. Slots beyond the known zone list are ignored.
func NewButtonMap(l Layout) *ButtonMap {
	h := l.ButtonHeight()
	m := &ButtonMap{}

	add := func(zones []Zone, left, right int) {
		for n := 1; n <= l.ButtonsPerStack && n <= len(zones); n++ {
			m.table = append(m.table, zoneRect{
				zone: zones[n-1],
				rect: rect{
					left:   left,
					right:  right,
					top:    l.TopFrame + h*(n-1),
					bottom: l.TopFrame + h*n,
				},
			})
		}
	}
	add(leftStackZones, l.LeftFrameLeft, l.LeftFrameRight)
	add(rightStackZones, l.RightFrameLeft, l.RightFrameRight)

	return m
}

// Hit returns the zone under (x, y), or ZoneNone.
func (m *ButtonMap) Hit(x, y uint16) Zone {
	for _, zr := range m.table {
		if zr.rect.contains(int(x), int(y)) {
			return zr.zone
		}
	}
	return ZoneNone
}
