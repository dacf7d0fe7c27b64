package main

import (
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args     []string
		wantType string
		wantData string
	}{
		{[]string{"button", "750", "375"}, "button_pressed", `{"x":750,"y":375}`},
		{[]string{"swipe", "up"}, "swiped_vertical", `{"direction":1}`},
		{[]string{"swipe", "down"}, "swiped_vertical", `{"direction":-1}`},
		{[]string{"swipe", "left"}, "swiped_horizontal", `{"direction":-1}`},
		{[]string{"swipe", "right"}, "swiped_horizontal", `{"direction":1}`},
		{[]string{"pinch", "in"}, "pinched", `{"direction":-1}`},
		{[]string{"pinch", "out"}, "pinched", `{"direction":1}`},
		{[]string{"zone", "band_up"}, "zone_pressed", `{"zone":"band_up"}`},
		{[]string{"tune", "14074000"}, "set_frequency", `{"hz":14074000}`},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			env, err := parseCommand(tt.args)
			if err != nil {
				t.Fatalf("parseCommand: %v", err)
			}
			if env.Type != tt.wantType {
				t.Fatalf("type = %q, want %q", env.Type, tt.wantType)
			}
			if string(env.Data) != tt.wantData {
				t.Fatalf("data = %s, want %s", env.Data, tt.wantData)
			}
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, args := range [][]string{
		{"button", "10"},
		{"button", "x", "10"},
		{"button", "70000", "10"},
		{"swipe", "sideways"},
		{"swipe"},
		{"pinch", "twist"},
		{"zone"},
		{"tune", "-5"},
		{"tune", "abc"},
		{"volume-up"},
	} {
		if _, err := parseCommand(args); err == nil {
			t.Errorf("parseCommand(%q) = nil error", args)
		}
	}
}
