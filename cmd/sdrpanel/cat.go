package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// RadioBackend is the set of receiver controls the panel drives.
// This allows for mocking in tests.
type RadioBackend interface {
	SetFrequency(hz int64) error
	Frequency() (int64, error)
	SetMode(mode int) error
	SetBandwidth(index int) error
	SetStep(index int) error
	SetAttenuator(on bool) error
	SetPreamp(on bool) error
	SetAGC(index int) error
	RampVolume(level float64, ramp RampType) error
	Close() error
}

// Kenwood mode digits for each entry of modeNames.
var catModeCodes = []int{
	ModeCW:  3,
	ModeLSB: 1,
	ModeUSB: 2,
	ModeAM:  5,
	ModeFM:  4,
}

const (
	catVolumeMax   = 255
	catRampSteps   = 8
	catReconnects  = 3
	catRetryDelay  = 250 * time.Millisecond
	catMaxReplyLen = 64
)

var errNoPort = errors.New("no serial port")

// CATClient drives a receiver over a Kenwood-style CAT serial link
// ("FA00007074000;" etc).
type CATClient struct {
	mu     sync.Mutex
	port   io.ReadWriteCloser
	reader *bufio.Reader
	open   func() (io.ReadWriteCloser, error)
	logger *slog.Logger

	volume float64 // last AF gain sent, 0..1
}

// NewCATClient opens the serial port and returns a connected client.
func NewCATClient(device string, baud int, readTimeoutMS int, logger *slog.Logger) (*CATClient, error) {
	if device == "" {
		return nil, errNoPort
	}
	cfg := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Duration(readTimeoutMS) * time.Millisecond,
	}
	c := newCATClient(func() (io.ReadWriteCloser, error) {
		return serial.OpenPort(cfg)
	}, logger)

	if err := c.connectWithRetry(); err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	logger.Info("connected to radio", "device", device, "baud", baud)
	return c, nil
}

func newCATClient(open func() (io.ReadWriteCloser, error), logger *slog.Logger) *CATClient {
	return &CATClient{
		open:   open,
		logger: logger,
		volume: 1,
	}
}

func (c *CATClient) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		_ = c.port.Close()
		c.port = nil
		c.reader = nil
	}

	p, err := c.open()
	if err != nil {
		return err
	}
	c.port = p
	c.reader = bufio.NewReader(p)
	return nil
}

// connectWithRetry is used at startup only.
func (c *CATClient) connectWithRetry() error {
	var lastErr error
	for attempt := 0; attempt < catReconnects; attempt++ {
		err := c.connect()
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Warn("serial open failed; retrying...", "error", err, "attempt", attempt+1)
		time.Sleep(catRetryDelay)
	}
	return fmt.Errorf("failed to open after %d attempts: %w", catReconnects, lastErr)
}

// ensureConnected reopens a lost link with a single attempt. It runs on the
// daemon loop, so it never sleeps; the next command tries again.
func (c *CATClient) ensureConnected() error {
	c.mu.Lock()
	ok := c.port != nil
	c.mu.Unlock()
	if ok {
		return nil
	}
	c.logger.Warn("serial link lost; reopening")
	if err := c.connect(); err != nil {
		return fmt.Errorf("reopen serial port: %w", err)
	}
	return nil
}

// send writes one CAT command. A failed write drops the port so the next
// command reopens it.
func (c *CATClient) send(cmd string) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(cmd)
}

func (c *CATClient) writeLocked(cmd string) error {
	if c.port == nil {
		return errNoPort
	}
	c.logger.Debug("cat send", "cmd", cmd)
	if _, err := io.WriteString(c.port, cmd); err != nil {
		_ = c.port.Close()
		c.port = nil
		c.reader = nil
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	return nil
}

// query sends cmd and returns the reply body, without the echoed prefix
// and the terminating ';'.
func (c *CATClient) query(cmd string) (string, error) {
	if err := c.ensureConnected(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writeLocked(cmd); err != nil {
		return "", err
	}

	prefix := strings.TrimSuffix(cmd, ";")
	for {
		line, err := c.reader.ReadString(';')
		if err != nil {
			return "", fmt.Errorf("read reply to %q: %w", cmd, err)
		}
		if len(line) > catMaxReplyLen {
			return "", fmt.Errorf("reply to %q too long (%d bytes)", cmd, len(line))
		}
		if body, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSuffix(body, ";"), nil
		}
		// "?;" is the radio rejecting the command.
		if line == "?;" {
			return "", fmt.Errorf("radio rejected %q", cmd)
		}
	}
}

func (c *CATClient) SetFrequency(hz int64) error {
	return c.send(fmt.Sprintf("FA%011d;", hz))
}

// Frequency reads VFO A.
func (c *CATClient) Frequency() (int64, error) {
	body, err := c.query("FA;")
	if err != nil {
		return 0, err
	}
	hz, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frequency %q: %w", body, err)
	}
	return hz, nil
}

func (c *CATClient) SetMode(mode int) error {
	if mode < 0 || mode >= len(catModeCodes) {
		return fmt.Errorf("mode index out of range: %d", mode)
	}
	return c.send(fmt.Sprintf("MD%d;", catModeCodes[mode]))
}

func (c *CATClient) SetBandwidth(index int) error {
	return c.send(fmt.Sprintf("SH%02d;", index))
}

// SetStep is panel-local: the tuning step only affects how the encoder
// moves the VFO, so nothing is sent.
func (c *CATClient) SetStep(index int) error {
	return nil
}

func (c *CATClient) SetAttenuator(on bool) error {
	return c.send(fmt.Sprintf("RA%02d;", boolDigit(on)))
}

func (c *CATClient) SetPreamp(on bool) error {
	return c.send(fmt.Sprintf("PA%d;", boolDigit(on)))
}

func (c *CATClient) SetAGC(index int) error {
	return c.send(fmt.Sprintf("GT%03d;", index))
}

// RampVolume moves the AF gain to level (0..1). RampNone jumps; the other
// ramps write intermediate levels back to back and let the radio's serial
// pacing spread them out.
func (c *CATClient) RampVolume(level float64, ramp RampType) error {
	level = max(0, min(1, level))

	steps := catRampSteps
	if ramp == RampNone {
		steps = 1
	}

	from := c.volume
	for i := 1; i <= steps; i++ {
		v := from + (level-from)*float64(i)/float64(steps)
		if ramp == RampNormal {
			// Ease out: most of the change early, settle gently.
			t := float64(i) / float64(steps)
			v = from + (level-from)*(1-(1-t)*(1-t))
		}
		if err := c.send(fmt.Sprintf("AG0%03d;", int(v*catVolumeMax+0.5))); err != nil {
			return err
		}
	}
	c.volume = level
	return nil
}

// Close closes the serial port.
func (c *CATClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	c.reader = nil
	return err
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullRadio accepts every command and only logs it. Used when no serial
// port is configured so the panel can run standalone.
type nullRadio struct {
	logger *slog.Logger
	freqHz int64
}

func newNullRadio(freqHz int64, logger *slog.Logger) *nullRadio {
	return &nullRadio{logger: logger, freqHz: freqHz}
}

func (n *nullRadio) SetFrequency(hz int64) error {
	n.freqHz = hz
	n.logger.Debug("radio (null)", "frequency_hz", hz)
	return nil
}

func (n *nullRadio) Frequency() (int64, error) { return n.freqHz, nil }

func (n *nullRadio) SetMode(mode int) error {
	n.logger.Debug("radio (null)", "mode", mode)
	return nil
}

func (n *nullRadio) SetBandwidth(index int) error {
	n.logger.Debug("radio (null)", "bandwidth", index)
	return nil
}

func (n *nullRadio) SetStep(index int) error { return nil }

func (n *nullRadio) SetAttenuator(on bool) error {
	n.logger.Debug("radio (null)", "attenuator", on)
	return nil
}

func (n *nullRadio) SetPreamp(on bool) error {
	n.logger.Debug("radio (null)", "preamp", on)
	return nil
}

func (n *nullRadio) SetAGC(index int) error {
	n.logger.Debug("radio (null)", "agc", index)
	return nil
}

func (n *nullRadio) RampVolume(level float64, ramp RampType) error {
	n.logger.Debug("radio (null)", "volume", level, "ramp", ramp)
	return nil
}

func (n *nullRadio) Close() error { return nil }
