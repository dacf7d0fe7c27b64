package main

// Linux input event types and codes (from <linux/input.h>)
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_ABS = 0x03

	SYN_REPORT = 0x00

	BTN_TOUCH = 0x14a

	// Single-touch axes (resistive controllers without MT support)
	ABS_X = 0x00
	ABS_Y = 0x01

	// Multitouch protocol B
	ABS_MT_SLOT        = 0x2f
	ABS_MT_POSITION_X  = 0x35
	ABS_MT_POSITION_Y  = 0x36
	ABS_MT_TRACKING_ID = 0x39
)

// Touch gesture defaults
const (
	// MaxContacts is the number of simultaneous contacts the gesture engine tracks.
	MaxContacts = 2

	// defaultButtonTouchPx is the travel (pixels, per axis) that separates a
	// button press from a swipe. A drag or gesture is >= this value.
	defaultButtonTouchPx = 40

	// defaultGestureTimeoutMS bounds how long a press may be held before the
	// pending event is abandoned. A drag is longer than this.
	defaultGestureTimeoutMS = 700

	defaultPollHz = 100 // Touch polling cadence (Hz)
)

// Screen and button layout defaults (800x480 panel, 6 buttons per side stack)
const (
	defaultScreenWidth  = 800
	defaultScreenHeight = 480

	defaultLeftFrameLeft   = 0
	defaultLeftFrameRight  = 100
	defaultRightFrameLeft  = 700
	defaultRightFrameRight = 800
	defaultTopFrame        = 60
	defaultBottomFrame     = 480
	defaultButtonsPerStack = 6
)

// Radio defaults
const (
	defaultInitialFreqHz = 7074000
	defaultSerialBaud    = 38400
	defaultSerialTimeout = 200 // CAT read timeout (ms)

	bandStepHz      = 1000000  // Band up/down jump
	bandMaxHz       = 32000000 // Band up wraps above this ...
	bandWrapHz      = 1000000  // ... back to this
	bandMinHz       = 1800000  // Band down clamps here
	sidebandSplitHz = 10000000 // LSB below, USB at or above

	bandChangeStepIndex = 4 // Step index selected after a band change
)

// Spectrum display tuning
const (
	spectrumPresetCount = 9

	spectrumScaleMin  = 0.5
	spectrumScaleMax  = 2.0
	spectrumScaleStep = 0.1

	spectrumFloorStep = 10
	spectrumFloorMin  = -400
	spectrumFloorMax  = 400

	colorTempStep = 10
	colorTempMax  = 10000

	defaultColorTemp = 440
)
