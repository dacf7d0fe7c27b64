package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// ============================================================================
// IPC
// ============================================================================
// panel-ctl and scripts press buttons and make gestures without touching the
// glass. One JSON object per line in each direction:
//
//	-> {"type":"zone_pressed","data":{"zone":"band_up"}}
//	<- {"status":"ok"}
//	<- {"status":"error","error":"zone_pressed: unknown zone \"band_upp\""}
//
// Actions are checked against the panel before they are queued, so a typo in
// a zone name or a zero frequency is reported to the caller instead of being
// dropped by the reducer.
// ============================================================================

// IPCResponse is the reply to one request line.
type IPCResponse struct {
	Status string `json:"status"`          // "ok" or "error"
	Error  string `json:"error,omitempty"` // set when Status is "error"
}

const (
	// ipcEnqueueTimeout bounds how long a request waits for room in the
	// daemon's event queue before the caller is told the panel is busy.
	ipcEnqueueTimeout = 250 * time.Millisecond

	ipcMaxLine = 4096
)

var (
	errPanelBusy     = errors.New("panel busy, try again")
	errShuttingDown  = errors.New("daemon shutting down")
	errIPCLineTooBig = fmt.Errorf("request longer than %d bytes", ipcMaxLine)
)

type ipcServer struct {
	path   string
	events chan<- Event
	logger *slog.Logger

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// runIPCServer serves the socket until ctx is canceled. On shutdown it hangs
// up on connected clients and waits for their handlers.
func runIPCServer(ctx context.Context, socketPath string, events chan<- Event, logger *slog.Logger) error {
	s := &ipcServer{
		path:   socketPath,
		events: events,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
	return s.serve(ctx)
}

func (s *ipcServer) serve(ctx context.Context) error {
	// A stale socket from a previous run would make Listen fail.
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}
	defer os.Remove(s.path)

	if err := os.Chmod(s.path, 0666); err != nil {
		_ = ln.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}
	s.logger.Info("IPC listening", "socket", s.path)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
		s.hangUpAll()
	}()
	defer s.wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Debug("IPC listener closed")
				return nil
			}
			s.logger.Error("IPC accept error", "error", err)
			continue
		}
		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(ctx, conn)
		}()
	}
}

func (s *ipcServer) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *ipcServer) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *ipcServer) hangUpAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
}

func (s *ipcServer) handle(ctx context.Context, conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), ipcMaxLine)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		s.logger.Debug("IPC request", "line", scanner.Text())
		if err := encoder.Encode(s.dispatch(ctx, scanner.Bytes())); err != nil {
			s.logger.Debug("IPC reply failed", "error", err)
			return
		}
	}
	if errors.Is(scanner.Err(), bufio.ErrTooLong) {
		_ = encoder.Encode(ipcError(errIPCLineTooBig))
	}
}

// dispatch validates one request and queues it for the daemon loop.
func (s *ipcServer) dispatch(ctx context.Context, line []byte) IPCResponse {
	act, err := UnmarshalAction(line)
	if err != nil {
		return ipcError(err)
	}

	timer := time.NewTimer(ipcEnqueueTimeout)
	defer timer.Stop()

	select {
	case s.events <- act:
		return IPCResponse{Status: "ok"}
	case <-ctx.Done():
		return ipcError(errShuttingDown)
	case <-timer.C:
		s.logger.Warn("IPC request dropped, event queue full", "action", fmt.Sprintf("%T", act))
		return ipcError(errPanelBusy)
	}
}

func ipcError(err error) IPCResponse {
	return IPCResponse{Status: "error", Error: err.Error()}
}
