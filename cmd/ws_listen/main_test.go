package main

import (
	"strings"
	"testing"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			"frequency",
			`{"type":"frequency_changed","data":{"frequency_hz":7074000}}`,
			"[FREQ] 7074.000 kHz",
		},
		{
			"button gesture",
			`{"type":"gesture","data":{"kind":"button","zone":"band_up"}}`,
			"[GESTURE] button band_up",
		},
		{
			"swipe gesture",
			`{"type":"gesture","data":{"kind":"swipe","direction":"up"}}`,
			"[GESTURE] swipe up",
		},
		{
			"snapshot",
			`{"type":"state_init","data":{"frequency_hz":14074000,"mode":"USB","agc":"slow"}}`,
			"[state_init] 14074.000 kHz USB",
		},
		{"not json", `hello`, "[TEXT] hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMessage([]byte(tt.msg), false)
			if !strings.HasPrefix(got, tt.want) {
				t.Fatalf("formatMessage = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestFormatMessage_RawIndents(t *testing.T) {
	got := formatMessage([]byte(`{"type":"frequency_changed","data":{"frequency_hz":1}}`), true)
	if !strings.Contains(got, "\n  \"type\"") {
		t.Fatalf("raw output not indented: %q", got)
	}
}
