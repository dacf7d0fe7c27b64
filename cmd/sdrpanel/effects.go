package main

import (
	"log/slog"
	"time"
)

// runEffect executes a single reducer-emitted Command against the radio and
// reports failures back via onEvent.
//
// Design rules:
// - This function is allowed to perform I/O.
// - It must never call Reduce() directly; it only emits Events to be reduced by the daemon loop.
func runEffect(
	radio RadioBackend,
	cmd Command,
	logger *slog.Logger,
	onEvent func(Event),
) {
	if onEvent == nil {
		return
	}

	now := time.Now()

	// Snapshot delivery needs no radio.
	if c, ok := cmd.(CmdPublishStateSnapshot); ok {
		if c.Reply == nil {
			logger.Warn("state snapshot requested with nil reply channel")
			return
		}
		// Never block the daemon loop.
		select {
		case c.Reply <- c.Snapshot:
		default:
			logger.Warn("state snapshot reply channel not ready; dropping snapshot")
		}
		return
	}

	if radio == nil {
		onEvent(RadioCommandFailed{Command: cmd, Err: errNoRadio{}, At: now})
		return
	}

	var err error
	switch c := cmd.(type) {
	case CmdSetFrequency:
		err = radio.SetFrequency(c.Hz)
	case CmdSetMode:
		err = radio.SetMode(c.Mode)
	case CmdSetBandwidth:
		err = radio.SetBandwidth(c.Index)
	case CmdSetStep:
		err = radio.SetStep(c.Index)
	case CmdSetAttenuator:
		err = radio.SetAttenuator(c.On)
	case CmdSetPreamp:
		err = radio.SetPreamp(c.On)
	case CmdSetAGC:
		err = radio.SetAGC(c.Index)
	case CmdRampVolume:
		err = radio.RampVolume(c.Level, c.Ramp)
	default:
		logger.Warn("unknown command type", "command", cmd.String())
		err = errUnknownCommand{cmd: cmd}
	}

	if err != nil {
		logger.Error("radio command failed", "command", cmd.String(), "error", err)
		onEvent(RadioCommandFailed{Command: cmd, Err: err, At: now})
	}
}

// errNoRadio indicates the daemon was asked to execute a command without a radio backend.
type errNoRadio struct{}

func (errNoRadio) Error() string { return "no radio backend" }

type errUnknownCommand struct {
	cmd Command
}

func (e errUnknownCommand) Error() string { return "unknown command: " + e.cmd.String() }
