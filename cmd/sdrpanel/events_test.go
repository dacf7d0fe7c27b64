package main

import (
	"strings"
	"testing"
)

func TestMarshalUnmarshalAction(t *testing.T) {
	actions := []Action{
		ButtonPressed{X: 750, Y: 375},
		SwipedVertical{Direction: SwipeDown},
		SwipedHorizontal{Direction: SwipeRight},
		Pinched{Direction: PinchIn},
		ZonePressed{Zone: "band_up"},
		SetFrequency{Hz: 14074000},
	}
	for _, a := range actions {
		data, err := MarshalAction(a)
		if err != nil {
			t.Fatalf("MarshalAction(%#v): %v", a, err)
		}
		got, err := UnmarshalAction(data)
		if err != nil {
			t.Fatalf("UnmarshalAction(%s): %v", data, err)
		}
		if got != a {
			t.Errorf("round trip %s = %#v, want %#v", data, got, a)
		}
	}
}

func TestUnmarshalAction_WireFormat(t *testing.T) {
	got, err := UnmarshalAction([]byte(`{"type":"swiped_vertical","data":{"direction":1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got != (SwipedVertical{Direction: SwipeUp}) {
		t.Fatalf("got %#v", got)
	}
}

func TestUnmarshalAction_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"not json", `swipe up`, "unmarshal envelope"},
		{"unknown type", `{"type":"volume_up"}`, "unknown action type"},
		{"vertical zero", `{"type":"swiped_vertical","data":{"direction":0}}`, "direction must be"},
		{"horizontal two", `{"type":"swiped_horizontal","data":{"direction":2}}`, "direction must be"},
		{"pinch missing data", `{"type":"pinched"}`, "Pinched"},
		{"button negative", `{"type":"button_pressed","data":{"x":-1,"y":10}}`, "ButtonPressed"},
		{"unknown zone", `{"type":"zone_pressed","data":{"zone":"band_upp"}}`, `unknown zone "band_upp"`},
		{"empty zone", `{"type":"zone_pressed","data":{}}`, "unknown zone"},
		{"zone none", `{"type":"zone_pressed","data":{"zone":"none"}}`, "unknown zone"},
		{"zero frequency", `{"type":"set_frequency","data":{"hz":0}}`, "hz must be > 0"},
		{"negative frequency", `{"type":"set_frequency","data":{"hz":-7074000}}`, "hz must be > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAction([]byte(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
