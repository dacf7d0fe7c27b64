package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
)

// ============================================================================
// panel-ctl - Command-line IPC Client
// ============================================================================
// Injects the same actions the touch screen produces into the sdrpanel
// daemon. Handy for testing the radio link without a touch controller.
//
// Usage:
//   panel-ctl button 750 375
//   panel-ctl swipe up
//   panel-ctl pinch out
//   panel-ctl zone band_up
//   panel-ctl tune 14074000
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/sdrpanel.sock)
// ============================================================================

// Action payloads (duplicated from the daemon for a standalone binary)
type buttonPressed struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
}

type direction struct {
	Direction int `json:"direction"`
}

type zonePressed struct {
	Zone string `json:"zone"`
}

type setFrequency struct {
	Hz int64 `json:"hz"`
}

// actionEnvelope wraps actions for JSON
type actionEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ipcResponse represents the daemon's response
type ipcResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func main() {
	socketPath := "/tmp/sdrpanel.sock"

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage()
		os.Exit(0)
	}

	env, err := parseCommand(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	if err := sendAction(socketPath, env); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ok")
}

// parseCommand turns command-line arguments into an IPC envelope.
func parseCommand(args []string) (actionEnvelope, error) {
	need := func(n int, usage string) error {
		if len(args) < n+1 {
			return fmt.Errorf("%s requires %s", args[0], usage)
		}
		return nil
	}

	switch args[0] {
	case "button", "tap":
		if err := need(2, "X and Y"); err != nil {
			return actionEnvelope{}, err
		}
		x, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return actionEnvelope{}, fmt.Errorf("invalid x: %w", err)
		}
		y, err := strconv.ParseUint(args[2], 10, 16)
		if err != nil {
			return actionEnvelope{}, fmt.Errorf("invalid y: %w", err)
		}
		return envelopeOf("button_pressed", buttonPressed{X: uint16(x), Y: uint16(y)})

	case "swipe":
		if err := need(1, "a direction"); err != nil {
			return actionEnvelope{}, err
		}
		switch args[1] {
		case "up":
			return envelopeOf("swiped_vertical", direction{Direction: 1})
		case "down":
			return envelopeOf("swiped_vertical", direction{Direction: -1})
		case "left":
			return envelopeOf("swiped_horizontal", direction{Direction: -1})
		case "right":
			return envelopeOf("swiped_horizontal", direction{Direction: 1})
		}
		return actionEnvelope{}, fmt.Errorf("swipe direction must be up, down, left or right, got %q", args[1])

	case "pinch":
		if err := need(1, "in or out"); err != nil {
			return actionEnvelope{}, err
		}
		switch args[1] {
		case "in":
			return envelopeOf("pinched", direction{Direction: -1})
		case "out":
			return envelopeOf("pinched", direction{Direction: 1})
		}
		return actionEnvelope{}, fmt.Errorf("pinch direction must be in or out, got %q", args[1])

	case "zone", "press":
		if err := need(1, "a zone name"); err != nil {
			return actionEnvelope{}, err
		}
		return envelopeOf("zone_pressed", zonePressed{Zone: args[1]})

	case "tune", "freq":
		if err := need(1, "a frequency in Hz"); err != nil {
			return actionEnvelope{}, err
		}
		hz, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || hz <= 0 {
			return actionEnvelope{}, fmt.Errorf("invalid frequency: %q", args[1])
		}
		return envelopeOf("set_frequency", setFrequency{Hz: hz})
	}

	return actionEnvelope{}, fmt.Errorf("unknown command: %s", args[0])
}

func envelopeOf(typ string, payload any) (actionEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return actionEnvelope{}, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return actionEnvelope{Type: typ, Data: data}, nil
}

func sendAction(socketPath string, env actionEnvelope) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}

	// Line-delimited JSON
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return fmt.Errorf("send action: %w", err)
	}

	var response ipcResponse
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if response.Status == "error" {
		return fmt.Errorf("daemon error: %s", response.Error)
	}

	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `panel-ctl - Inject touch panel actions into the sdrpanel daemon via IPC

Usage:
  panel-ctl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/sdrpanel.sock)

Commands:
  button, tap <x> <y>          Simulate a button press at screen coordinates
  swipe up|down|left|right     Simulate a single-finger swipe
  pinch in|out                 Simulate a two-finger pinch
  zone, press <name>           Press a button by name (mode, bandwidth_up, band_down, ...)
  tune, freq <hz>              Tune to an absolute frequency
  help, -h, --help             Show this help message

Examples:
  panel-ctl zone band_up
  panel-ctl swipe down
  panel-ctl -socket /run/sdrpanel.sock tune 7074000
`)
}
