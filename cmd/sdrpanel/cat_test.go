package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// fakePort records writes and replays canned replies.
type fakePort struct {
	written  bytes.Buffer
	replies  *strings.Reader
	writeErr error
	closed   bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.replies == nil {
		return 0, io.EOF
	}
	return p.replies.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newTestCAT(t *testing.T, port *fakePort) *CATClient {
	t.Helper()
	c := newCATClient(func() (io.ReadWriteCloser, error) { return port, nil }, discardLogger())
	if err := c.connect(); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCATClient_CommandEncoding(t *testing.T) {
	tests := []struct {
		name string
		call func(c *CATClient) error
		want string
	}{
		{"frequency", func(c *CATClient) error { return c.SetFrequency(7074000) }, "FA00007074000;"},
		{"mode usb", func(c *CATClient) error { return c.SetMode(ModeUSB) }, "MD2;"},
		{"mode cw", func(c *CATClient) error { return c.SetMode(ModeCW) }, "MD3;"},
		{"bandwidth", func(c *CATClient) error { return c.SetBandwidth(5) }, "SH05;"},
		{"attenuator on", func(c *CATClient) error { return c.SetAttenuator(true) }, "RA01;"},
		{"preamp off", func(c *CATClient) error { return c.SetPreamp(false) }, "PA0;"},
		{"agc", func(c *CATClient) error { return c.SetAGC(2) }, "GT002;"},
		{"step is local", func(c *CATClient) error { return c.SetStep(4) }, ""},
		{"volume jump", func(c *CATClient) error { return c.RampVolume(0, RampNone) }, "AG0000;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &fakePort{}
			c := newTestCAT(t, port)
			if err := tt.call(c); err != nil {
				t.Fatalf("call: %v", err)
			}
			if got := port.written.String(); got != tt.want {
				t.Fatalf("wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCATClient_SetModeOutOfRange(t *testing.T) {
	port := &fakePort{}
	c := newTestCAT(t, port)
	if err := c.SetMode(len(modeNames)); err == nil {
		t.Fatalf("expected error")
	}
	if port.written.Len() != 0 {
		t.Fatalf("wrote %q", port.written.String())
	}
}

func TestCATClient_RampVolume(t *testing.T) {
	port := &fakePort{}
	c := newTestCAT(t, port)

	if err := c.RampVolume(0, RampNormal); err != nil {
		t.Fatal(err)
	}
	cmds := strings.SplitAfter(port.written.String(), ";")
	cmds = cmds[:len(cmds)-1] // trailing empty piece
	if len(cmds) != catRampSteps {
		t.Fatalf("got %d AG writes, want %d: %v", len(cmds), catRampSteps, cmds)
	}
	if cmds[len(cmds)-1] != "AG0000;" {
		t.Fatalf("ramp ends at %q, want AG0000;", cmds[len(cmds)-1])
	}
	if cmds[0] >= "AG0255;" {
		t.Fatalf("ramp does not start below full gain: %q", cmds[0])
	}

	port.written.Reset()
	if err := c.RampVolume(1, RampLinear); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(port.written.String(), "AG0255;") {
		t.Fatalf("ramp up ends with %q", port.written.String())
	}
}

func TestCATClient_Frequency(t *testing.T) {
	port := &fakePort{replies: strings.NewReader("ID020;FA00014074000;")}
	c := newTestCAT(t, port)

	hz, err := c.Frequency()
	if err != nil {
		t.Fatalf("Frequency: %v", err)
	}
	if hz != 14074000 {
		t.Fatalf("frequency = %d", hz)
	}
	if port.written.String() != "FA;" {
		t.Fatalf("wrote %q", port.written.String())
	}
}

func TestCATClient_FrequencyErrors(t *testing.T) {
	tests := []struct {
		name    string
		replies string
	}{
		{"rejected", "?;"},
		{"garbage", "FA12ab;"},
		{"no reply", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCAT(t, &fakePort{replies: strings.NewReader(tt.replies)})
			if _, err := c.Frequency(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCATClient_WriteFailureReopens(t *testing.T) {
	broken := &fakePort{writeErr: errors.New("i/o error")}
	fresh := &fakePort{}

	opens := 0
	c := newCATClient(func() (io.ReadWriteCloser, error) {
		opens++
		if opens == 1 {
			return broken, nil
		}
		return fresh, nil
	}, discardLogger())
	if err := c.connect(); err != nil {
		t.Fatal(err)
	}

	if err := c.SetPreamp(true); err == nil {
		t.Fatalf("expected write error")
	}
	if !broken.closed {
		t.Fatalf("broken port not closed")
	}

	if err := c.SetPreamp(true); err != nil {
		t.Fatalf("retry after reopen: %v", err)
	}
	if fresh.written.String() != "PA1;" || opens != 2 {
		t.Fatalf("fresh port got %q after %d opens", fresh.written.String(), opens)
	}
}

func TestCATClient_LostLinkReopensOncePerCommand(t *testing.T) {
	broken := &fakePort{writeErr: errors.New("i/o error")}
	unplugged := errors.New("no such device")

	opens := 0
	c := newCATClient(func() (io.ReadWriteCloser, error) {
		opens++
		if opens == 1 {
			return broken, nil
		}
		return nil, unplugged
	}, discardLogger())
	if err := c.connect(); err != nil {
		t.Fatal(err)
	}
	if err := c.SetPreamp(true); err == nil {
		t.Fatalf("expected write error")
	}

	start := time.Now()
	err := c.SetAGC(1)
	if !errors.Is(err, unplugged) {
		t.Fatalf("SetAGC error = %v, want %v", err, unplugged)
	}
	if opens != 2 {
		t.Fatalf("opens = %d, want a single reopen attempt", opens)
	}
	if elapsed := time.Since(start); elapsed >= catRetryDelay {
		t.Fatalf("reopen took %v, must not wait for retries", elapsed)
	}

	// Each later command makes one more attempt.
	_ = c.SetAGC(1)
	if opens != 3 {
		t.Fatalf("opens = %d, want 3", opens)
	}
}

func TestCATClient_Close(t *testing.T) {
	port := &fakePort{}
	c := newTestCAT(t, port)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !port.closed {
		t.Fatalf("port not closed")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
