package main

import (
	"context"
	"log/slog"
	"time"
)

// ============================================================================
// Central Daemon Loop
// ============================================================================
//
// Design rules enforced here:
//   - The touch machine is polled on a fixed cadence from this goroutine only.
//   - The reducer performs no I/O and computes: next state + commands + broadcasts.
//   - The daemon loop is the only place that executes side effects (CAT writes).
//   - Command failures are turned into Events and fed back into the reducer.
//
// ============================================================================

// daemonDeps bundles what the loop needs besides its input channel.
type daemonDeps struct {
	touch    *TouchMachine // nil disables touch polling (IPC only)
	gestures *actionQueue
	radio    RadioBackend
	state    *PanelState
	reducer  ReducerConfig
	pollHz   int

	// broadcasts receives reducer-emitted state notifications. Sends never
	// block; a full channel drops the notification.
	broadcasts chan<- StateBroadcast
}

// runDaemon is the main daemon loop that:
//   - Polls the touch machine and drains the gestures it classified
//   - Receives Events from IPC and the websocket server
//   - Reduces events into (state, commands, broadcasts)
//   - Executes commands against the radio and feeds failures back into the reducer
//
// Shutdown semantics:
//   - Exits when ctx is canceled
//   - Exits cleanly when the events channel is closed
func runDaemon(ctx context.Context, events <-chan Event, d daemonDeps, logger *slog.Logger) {
	if d.state == nil {
		logger.Error("panel state is nil")
		return
	}

	pollHz := d.pollHz
	if pollHz <= 0 {
		pollHz = defaultPollHz
	}
	ticker := time.NewTicker(time.Second / time.Duration(pollHz))
	defer ticker.Stop()

	state := d.state

	// Explicit queues:
	// - eventQueue holds events awaiting reduction
	// - cmdQueue holds commands awaiting execution
	var eventQueue []Event
	var cmdQueue []Command

	enqueueEvent := func(ev Event) {
		eventQueue = append(eventQueue, ev)
	}

	publish := func(bs []StateBroadcast) {
		if d.broadcasts == nil {
			return
		}
		for _, b := range bs {
			select {
			case d.broadcasts <- b:
			default:
				logger.Warn("broadcast queue full, dropping state update")
			}
		}
	}

	flushEvents := func() {
		for len(eventQueue) > 0 {
			ev := eventQueue[0]
			eventQueue = eventQueue[1:]

			rr := Reduce(state, ev, d.reducer)
			if rr.State != nil {
				state = rr.State
			}
			cmdQueue = append(cmdQueue, rr.Commands...)
			publish(rr.Broadcasts)
		}
	}

	// Commands run in order; band changes depend on it.
	flushCommands := func() {
		for len(cmdQueue) > 0 {
			cmd := cmdQueue[0]
			cmdQueue = cmdQueue[1:]

			runEffect(d.radio, cmd, logger, enqueueEvent)
			flushEvents()
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon stopping (context canceled)")
			return

		case ev, ok := <-events:
			if !ok {
				logger.Info("daemon stopping (events channel closed)")
				return
			}
			enqueueEvent(TimedEvent{Event: ev, At: time.Now()})
			flushEvents()
			flushCommands()

		case <-ticker.C:
			if d.touch == nil {
				continue
			}
			d.touch.Poll()
			if d.gestures == nil {
				continue
			}
			for _, ev := range d.gestures.drain() {
				logger.Debug("gesture", "event", ev)
				enqueueEvent(ev)
			}
			flushEvents()
			flushCommands()
		}
	}
}
