//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// absInfo mirrors struct input_absinfo.
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocRead = 2
)

// evioCGAbs is EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo).
func evioCGAbs(absCode uint32) uintptr {
	size := uint32(unsafe.Sizeof(absInfo{}))
	return uintptr(iocRead<<iocDirShift | uint32('E')<<iocTypeShift | (0x40+absCode)<<iocNRShift | size<<iocSizeShift)
}

func readAbsRange(fd int, absCode uint32) (absRange, error) {
	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGAbs(absCode), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return absRange{}, errno
	}
	return absRange{min: info.Minimum, max: info.Maximum}, nil
}

// openTouchDevice opens an evdev touch controller and reads its axis ranges.
// Call Run to start delivering events.
func openTouchDevice(cfg TouchFileConfig, logger *slog.Logger) (*touchDevice, error) {
	f, err := os.Open(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open touch device %s: %w", cfg.Device, err)
	}
	fd := int(f.Fd())

	// Prefer the multitouch axes; fall back to the single-touch ones.
	axes := axisMap{
		width:   cfg.ScreenWidth,
		height:  cfg.ScreenHeight,
		swapXY:  cfg.SwapXY,
		invertX: cfg.InvertX,
		invertY: cfg.InvertY,
	}
	for _, pair := range [][2]uint32{{ABS_MT_POSITION_X, ABS_MT_POSITION_Y}, {ABS_X, ABS_Y}} {
		x, errX := readAbsRange(fd, pair[0])
		y, errY := readAbsRange(fd, pair[1])
		if errX == nil && errY == nil && x.max > x.min && y.max > y.min {
			axes.x, axes.y = x, y
			break
		}
	}
	if axes.x.max == 0 {
		logger.Warn("touch device reports no axis ranges; assuming screen pixels", "device", cfg.Device)
	}
	logger.Debug("touch axes", "device", cfg.Device,
		"x_min", axes.x.min, "x_max", axes.x.max, "y_min", axes.y.min, "y_max", axes.y.max)

	events := make(chan inputEvent, 256)
	return &touchDevice{
		f:      f,
		events: events,
		src:    newEvdevTouch(events, axes),
		logger: logger,
	}, nil
}

// Run reads input events with epoll until ctx is canceled or the device
// goes away.
func (d *touchDevice) Run(ctx context.Context) error {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}
	defer unix.Close(epfd)

	fd := int(d.f.Fd())
	event := unix.EpollEvent{
		Events: unix.EPOLLIN, // Notify when readable
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		return fmt.Errorf("epoll_ctl_add fd=%d: %w", fd, err)
	}

	const (
		maxEvents   = 4
		waitMS      = 100 // wake up this often to notice shutdown
		readRecords = 64
	)
	epollEvents := make([]unix.EpollEvent, maxEvents)
	buf := make([]byte, inputEventSize*readRecords)
	var decoded []inputEvent

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := unix.EpollWait(epfd, epollEvents, waitMS)
		if err != nil {
			// Handle interrupted system call (e.g., SIGINT)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			if epollEvents[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				return fmt.Errorf("device error/hangup: %s", d.f.Name())
			}

			nr, err := unix.Read(fd, buf)
			if err != nil {
				if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
					continue
				}
				return fmt.Errorf("read from %s: %w", d.f.Name(), err)
			}

			decoded = decodeInputEvents(buf[:nr], decoded[:0])
			for _, ev := range decoded {
				select {
				case d.events <- ev:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}
