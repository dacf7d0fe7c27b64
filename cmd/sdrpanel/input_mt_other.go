//go:build !linux

package main

import (
	"context"
	"errors"
	"log/slog"
)

var errTouchUnsupported = errors.New("evdev touch input is only supported on linux")

func openTouchDevice(cfg TouchFileConfig, logger *slog.Logger) (*touchDevice, error) {
	return nil, errTouchUnsupported
}

func (d *touchDevice) Run(ctx context.Context) error {
	return errTouchUnsupported
}
