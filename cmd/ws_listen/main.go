package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// ws_listen connects to the sdrpanel state websocket and prints what the
// panel reports: the initial snapshot, retunes, setting changes and gestures.

// envelope mirrors the daemon's outbound message format.
type envelope struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type snapshot struct {
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

type gesture struct {
	Kind      string `json:"kind"`
	Direction string `json:"direction"`
	Zone      string `json:"zone"`
}

func main() {
	var (
		wsURL = flag.String("ws", "ws://127.0.0.1:8081/ws/state", "sdrpanel state websocket URL")
		raw   = flag.Bool("raw", false, "Print messages as indented JSON")
	)
	flag.Parse()

	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	// Handle shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	d := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("connected! (press Ctrl+C to exit)")

	// Mutex to protect concurrent writes to websocket
	var writeMu sync.Mutex

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	go func() {
		for range pingTicker.C {
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				log.Printf("ping failed: %v", err)
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				return
			}
			// Any traffic, not just pongs, proves the daemon is still there.
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			switch messageType {
			case websocket.TextMessage:
				fmt.Println(formatMessage(message, *raw))
			case websocket.BinaryMessage:
				fmt.Printf("[BINARY] %d bytes\n", len(message))
			}
		}
	}()

	select {
	case <-sigc:
		log.Printf("shutting down...")
		writeMu.Lock()
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMu.Unlock()
		if err != nil {
			log.Printf("error closing connection: %v", err)
		}
	case <-done:
		log.Printf("connection closed")
	}
}

// formatMessage renders one state message as a single line, or as indented
// JSON when raw is set or the message is not recognized.
func formatMessage(message []byte, raw bool) string {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil || raw {
		return indent(message)
	}

	switch env.Type {
	case "state_init", "radio_changed", "spectrum_changed":
		var s snapshot
		if err := json.Unmarshal(env.Data, &s); err != nil {
			return indent(message)
		}
		return fmt.Sprintf("[%s] %.3f kHz %s bw=%dHz step=%dHz att=%v pre=%v agc=%s | preset=%d scale=%.2f floor=%d temp=%d",
			env.Type, float64(s.FrequencyHz)/1000, s.Mode, s.BandwidthHz, s.StepHz,
			s.Attenuator, s.Preamp, s.AGC,
			s.SpectrumPreset, s.SpectrumScale, s.SpectrumFloor, s.ColorTemp)

	case "frequency_changed":
		var f struct {
			FrequencyHz int64 `json:"frequency_hz"`
		}
		if err := json.Unmarshal(env.Data, &f); err != nil {
			return indent(message)
		}
		return fmt.Sprintf("[FREQ] %.3f kHz", float64(f.FrequencyHz)/1000)

	case "gesture":
		var g gesture
		if err := json.Unmarshal(env.Data, &g); err != nil {
			return indent(message)
		}
		if g.Zone != "" {
			return fmt.Sprintf("[GESTURE] %s %s", g.Kind, g.Zone)
		}
		return fmt.Sprintf("[GESTURE] %s %s", g.Kind, g.Direction)
	}

	return indent(message)
}

func indent(message []byte) string {
	var v any
	if err := json.Unmarshal(message, &v); err != nil {
		return fmt.Sprintf("[TEXT] %s", message)
	}
	pretty, _ := json.MarshalIndent(v, "", "  ")
	return string(pretty)
}
