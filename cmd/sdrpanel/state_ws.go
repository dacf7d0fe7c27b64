package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ============================================================================
// State WebSocket
// ============================================================================
//
// Front-end displays (the spectrum renderer, a remote panel mirror) follow the
// panel over a websocket at /ws/state. Every frame is a JSON text message:
//
//	{"type": "...", "ts": "...", "data": {...}}
//
//	state_init         full StateSnapshot, always a viewer's first message
//	frequency_changed  {"frequency_hz": N}
//	radio_changed      full StateSnapshot after a receiver setting changed
//	spectrum_changed   full StateSnapshot after scale/floor/preset changed
//	gesture            {"kind", "direction", "zone"} for on-screen feedback
//
// PanelState stays owned by the daemon loop: the initial snapshot is requested
// through the reducer and everything else comes from ReduceResult.Broadcasts.
//
// ============================================================================

const (
	msgStateInit        = "state_init"
	msgFrequencyChanged = "frequency_changed"
	msgRadioChanged     = "radio_changed"
	msgSpectrumChanged  = "spectrum_changed"
	msgGesture          = "gesture"
)

const (
	viewerQueueLen  = 32
	snapshotTimeout = time.Second

	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	// spectrumCoalesceWindow limits spectrum_changed to one message per window
	// while a finger keeps swiping or pinching. The first update of a burst
	// goes out at once, the newest of the rest when the window closes.
	spectrumCoalesceWindow = 50 * time.Millisecond
)

type wsMessage struct {
	Type string    `json:"type"`
	Ts   time.Time `json:"ts"`
	Data any       `json:"data,omitempty"`
}

type wsFrequencyData struct {
	FrequencyHz int64 `json:"frequency_hz"`
}

type wsGestureData struct {
	Kind      string `json:"kind"`
	Direction string `json:"direction,omitempty"`
	Zone      string `json:"zone,omitempty"`
}

func encodeMessage(typ string, at time.Time, data any) ([]byte, error) {
	if at.IsZero() {
		at = time.Now()
	}
	return json.Marshal(wsMessage{Type: typ, Ts: at.UTC(), Data: data})
}

// describeBroadcast maps a reducer broadcast to its wire type and payload.
func describeBroadcast(b StateBroadcast) (typ string, at time.Time, data any, ok bool) {
	switch ev := b.(type) {
	case BroadcastFrequencyChanged:
		return msgFrequencyChanged, ev.At, wsFrequencyData{FrequencyHz: ev.Hz}, true
	case BroadcastRadioChanged:
		return msgRadioChanged, ev.At, ev.State, true
	case BroadcastSpectrumChanged:
		return msgSpectrumChanged, ev.At, ev.State, true
	case BroadcastGesture:
		return msgGesture, ev.At, wsGestureData{Kind: ev.Kind, Direction: ev.Direction, Zone: ev.Zone}, true
	}
	return "", time.Time{}, nil, false
}

// ============================================================================
// Viewers
// ============================================================================

// viewer is one connected display.
type viewer struct {
	conn *websocket.Conn
	out  chan []byte
	addr string

	// primed is set once state_init is queued. Updates published before that
	// are already covered by the snapshot and are skipped. Guarded by panelFeed.mu.
	primed bool
}

func newViewer(conn *websocket.Conn, addr string, queueLen int) *viewer {
	return &viewer{conn: conn, out: make(chan []byte, queueLen), addr: addr}
}

// writeLoop sends queued messages and keepalive pings. It owns closing the
// connection: when out is closed it sends a close frame and hangs up.
func (v *viewer) writeLoop(logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer v.conn.Close()

	for {
		select {
		case msg, ok := <-v.out:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write failed", "remote_addr", v.addr, "error", err)
				return
			}

		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("ws ping failed", "remote_addr", v.addr, "error", err)
				return
			}
		}
	}
}

// readLoop discards anything the display sends and notices when it goes away.
func (v *viewer) readLoop(feed *panelFeed, logger *slog.Logger) {
	defer feed.leave(v, "disconnected")

	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				logger.Debug("ws viewer closed", "remote_addr", v.addr, "code", ce.Code)
			} else {
				logger.Debug("ws read failed", "remote_addr", v.addr, "error", err)
			}
			return
		}
	}
}

// panelFeed fans encoded messages out to connected viewers. A viewer whose
// queue is full is dropped; a reconnect brings it back with a fresh state_init.
type panelFeed struct {
	logger *slog.Logger

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	closed  bool
}

func newPanelFeed(logger *slog.Logger) *panelFeed {
	return &panelFeed{logger: logger, viewers: make(map[*viewer]struct{})}
}

// join adds v. It reports false once the feed is closed.
func (f *panelFeed) join(v *viewer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.viewers[v] = struct{}{}
	f.logger.Info("ws viewer connected", "remote_addr", v.addr, "viewers", len(f.viewers))
	return true
}

// prime queues state_init for v and starts live updates for it.
func (f *panelFeed) prime(v *viewer, first []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.viewers[v]; !ok {
		return false
	}
	select {
	case v.out <- first:
		v.primed = true
		return true
	default:
		return false
	}
}

// leave removes v and closes its queue. Safe to call more than once.
func (f *panelFeed) leave(v *viewer, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropLocked(v, reason)
}

func (f *panelFeed) dropLocked(v *viewer, reason string) {
	if _, ok := f.viewers[v]; !ok {
		return
	}
	delete(f.viewers, v)
	close(v.out)
	f.logger.Info("ws viewer dropped", "remote_addr", v.addr, "reason", reason, "viewers", len(f.viewers))
}

// publish queues msg for every primed viewer. It never blocks.
func (f *panelFeed) publish(msg []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for v := range f.viewers {
		if !v.primed {
			continue
		}
		select {
		case v.out <- msg:
		default:
			f.dropLocked(v, "slow")
		}
	}
}

// close drops every viewer and refuses new ones.
func (f *panelFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for v := range f.viewers {
		f.dropLocked(v, "shutdown")
	}
}

func (f *panelFeed) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.viewers)
}

// ============================================================================
// HTTP handler
// ============================================================================

// stateServer upgrades /ws/state requests and hands viewers to the feed.
type stateServer struct {
	feed   *panelFeed
	events chan<- Event
	logger *slog.Logger

	upgrader        websocket.Upgrader
	snapshotTimeout time.Duration
}

func newStateServer(events chan<- Event, logger *slog.Logger) *stateServer {
	return &stateServer{
		feed:   newPanelFeed(logger),
		events: events,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Displays are served from other origins on the LAN.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		snapshotTimeout: snapshotTimeout,
	}
}

func (s *stateServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	v := newViewer(conn, r.RemoteAddr, viewerQueueLen)
	if !s.feed.join(v) {
		_ = conn.Close()
		return
	}
	go v.writeLoop(s.logger)
	go v.readLoop(s.feed, s.logger)

	snap, err := s.requestSnapshot(r.Context())
	if err != nil {
		s.logger.Warn("ws state snapshot failed", "remote_addr", v.addr, "error", err)
		s.feed.leave(v, "no snapshot")
		return
	}
	first, err := encodeMessage(msgStateInit, time.Time{}, snap)
	if err != nil {
		s.logger.Warn("ws encode state_init failed", "error", err)
		s.feed.leave(v, "encode")
		return
	}
	if !s.feed.prime(v, first) {
		s.feed.leave(v, "prime")
	}
}

// requestSnapshot asks the daemon loop for the current panel state.
func (s *stateServer) requestSnapshot(ctx context.Context) (StateSnapshot, error) {
	if s.events == nil {
		return StateSnapshot{}, errors.New("no daemon event channel")
	}
	ctx, cancel := context.WithTimeout(ctx, s.snapshotTimeout)
	defer cancel()

	reply := make(chan StateSnapshot, 1)
	select {
	case s.events <- RequestStateSnapshot{Reply: reply}:
	case <-ctx.Done():
		return StateSnapshot{}, fmt.Errorf("queue snapshot request: %w", ctx.Err())
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return StateSnapshot{}, fmt.Errorf("wait for snapshot: %w", ctx.Err())
	}
}

// ============================================================================
// Broadcast relay
// ============================================================================

// relayBroadcasts encodes reducer broadcasts and publishes them to the feed,
// coalescing bursts of spectrum_changed. Message order is preserved: a held
// spectrum update is flushed before any other message goes out.
func relayBroadcasts(ctx context.Context, feed *panelFeed, src <-chan StateBroadcast, logger *slog.Logger) {
	var (
		held   []byte           // newest spectrum_changed not yet sent
		window <-chan time.Time // open while spectrum updates are being limited
	)
	flush := func() {
		if held != nil {
			feed.publish(held)
			held = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case <-window:
			if held == nil {
				window = nil
				continue
			}
			flush()
			window = time.After(spectrumCoalesceWindow)

		case b, ok := <-src:
			if !ok {
				flush()
				logger.Info("ws relay stopping (source ended)")
				return
			}
			typ, at, data, ok := describeBroadcast(b)
			if !ok {
				continue
			}
			msg, err := encodeMessage(typ, at, data)
			if err != nil {
				logger.Warn("ws encode failed", "type", typ, "error", err)
				continue
			}

			if typ == msgSpectrumChanged {
				if window == nil {
					feed.publish(msg)
					window = time.After(spectrumCoalesceWindow)
				} else {
					held = msg
				}
				continue
			}
			flush()
			feed.publish(msg)
		}
	}
}
