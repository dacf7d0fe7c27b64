package main

import (
	"bytes"
	"encoding/binary"
)

// inputEvent represents a Linux input event structure
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

var inputEventSize = binary.Size(inputEvent{})

// decodeInputEvents parses whole input_event records from buf. evdev reads
// return complete records; a trailing partial record is ignored.
func decodeInputEvents(buf []byte, out []inputEvent) []inputEvent {
	reader := bytes.NewReader(nil)
	for len(buf) >= inputEventSize {
		reader.Reset(buf[:inputEventSize])
		buf = buf[inputEventSize:]

		var ev inputEvent
		if err := binary.Read(reader, binary.LittleEndian, &ev); err != nil {
			// Skip malformed events
			continue
		}
		out = append(out, ev)
	}
	return out
}
