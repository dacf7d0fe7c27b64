package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const version = "0.3.0"

func printVersion() {
	fmt.Printf("sdrpanel v%s\n", version)
	fmt.Println("Touch-screen front panel daemon for an SDR receiver")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  sdrpanel [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Polls a touch controller, classifies button presses, swipes and pinches,")
	fmt.Println("  and drives the radio over a CAT serial link. Gestures can also be")
	fmt.Println("  injected over a Unix socket (see panel-ctl) and state changes are")
	fmt.Println("  published on a websocket.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Run with a config file")
	fmt.Println("  sdrpanel -config /etc/sdrpanel.yaml")
	fmt.Println()
	fmt.Println("  # No radio attached, verbose touch tracing")
	fmt.Println("  sdrpanel -touch-device /dev/input/event2 -serial-port \"\" -log-level debug")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Requires read access to the input device (run as root or add user to 'input' group)")
	fmt.Println("  - Flags override values from the config file")
	fmt.Println()
}

func main() {
	def := DefaultConfig()

	var (
		configPath = flag.String("config", "", "Path to YAML config file")

		touchDevice      = flag.String("touch-device", def.Touch.Device, "Linux input event device of the touch controller (empty disables touch)")
		pollHz           = flag.Int("poll-hz", def.Touch.PollHz, "Touch polling frequency in Hz")
		buttonTouchPx    = flag.Int("button-touch-px", def.Touch.ButtonTouchPx, "Travel in pixels (per axis) below which a tap is a button press")
		gestureTimeoutMS = flag.Int("gesture-timeout-ms", def.Touch.GestureTimeoutMS, "Abandon a held touch after this many milliseconds")

		serialPort = flag.String("serial-port", def.Radio.SerialPort, "CAT serial port of the radio (empty runs without a radio)")
		baud       = flag.Int("baud", def.Radio.Baud, "CAT serial baud rate")
		freqHz     = flag.Int64("freq", def.Radio.InitialFreqHz, "Initial frequency in Hz when the radio cannot be read")

		ipcSocketPath = flag.String("ipc-socket", def.IPC.SocketPath, "Unix domain socket path for IPC")
		stateWSPort   = flag.Int("state-ws-port", def.StateWS.Port, "State websocket HTTP port (0 disables)")

		logLevelStr = flag.String("log-level", def.Logging.Level, "Log level: error, warn, info, debug")
		showVersion = flag.Bool("version", false, "Print version and exit")
		showHelp    = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	// defaults -> file -> explicitly set flags
	cfg := def
	if *configPath != "" {
		var err error
		cfg, err = LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var ov FlagOverrides
	if set["touch-device"] {
		ov.TouchDevice = touchDevice
	}
	if set["poll-hz"] {
		ov.PollHz = pollHz
	}
	if set["button-touch-px"] {
		ov.ButtonTouchPx = buttonTouchPx
	}
	if set["gesture-timeout-ms"] {
		ov.GestureTimeoutMS = gestureTimeoutMS
	}
	if set["serial-port"] {
		ov.SerialPort = serialPort
	}
	if set["baud"] {
		ov.Baud = baud
	}
	if set["freq"] {
		ov.InitialFreqHz = freqHz
	}
	if set["ipc-socket"] {
		ov.IPCSocketPath = ipcSocketPath
	}
	if set["state-ws-port"] {
		ov.StateWSPort = stateWSPort
	}
	if set["log-level"] {
		ov.LogLevel = logLevelStr
	}
	ov.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := setupLogger(os.Stdout, logLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("sdrpanel stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the components together and blocks until a signal arrives or a
// component fails.
func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting sdrpanel", "version", version)
	logger.Debug("configuration",
		"touch_device", cfg.Touch.Device,
		"poll_hz", cfg.Touch.PollHz,
		"button_touch_px", cfg.Touch.ButtonTouchPx,
		"gesture_timeout_ms", cfg.Touch.GestureTimeoutMS,
		"serial_port", cfg.Radio.SerialPort,
		"baud", cfg.Radio.Baud,
		"ipc_socket", cfg.IPC.SocketPath,
		"state_ws_port", cfg.StateWS.Port)

	// Radio backend
	var radio RadioBackend
	if cfg.Radio.SerialPort == "" {
		logger.Warn("no radio.serial_port configured; commands are only logged")
		radio = newNullRadio(cfg.Radio.InitialFreqHz, logger)
	} else {
		c, err := NewCATClient(cfg.Radio.SerialPort, cfg.Radio.Baud, cfg.Radio.TimeoutMS, logger)
		if err != nil {
			return fmt.Errorf("connect to radio: %w", err)
		}
		radio = c
	}
	defer radio.Close()

	// Start from what the radio is tuned to, if it tells us.
	initialFreq := cfg.Radio.InitialFreqHz
	if hz, err := radio.Frequency(); err != nil {
		logger.Warn("could not read radio frequency", "error", err, "using_hz", initialFreq)
	} else if hz > 0 {
		initialFreq = hz
	}
	state := NewPanelState(initialFreq)

	g, ctx := errgroup.WithContext(ctx)

	// Touch input
	var touch *TouchMachine
	gestures := &actionQueue{}
	if cfg.Touch.Device != "" {
		dev, err := openTouchDevice(cfg.Touch, logger)
		if err != nil {
			logger.Error("failed to open touch device", "device", cfg.Touch.Device, "error", err, "tip", "run as root or add user to 'input' group")
			return err
		}
		defer dev.Close()

		touch = NewTouchMachine(dev.Source(), gestures, cfg.ToTouchConfig(), nil, logger)
		g.Go(func() error {
			if err := dev.Run(ctx); err != nil {
				return fmt.Errorf("touch reader: %w", err)
			}
			return nil
		})
	} else {
		logger.Warn("no touch.device configured; accepting IPC actions only")
	}

	events := make(chan Event, 64)
	broadcasts := make(chan StateBroadcast, 128)

	g.Go(func() error {
		runDaemon(ctx, events, daemonDeps{
			touch:      touch,
			gestures:   gestures,
			radio:      radio,
			state:      state,
			reducer:    ReducerConfig{Buttons: NewButtonMap(cfg.Layout)},
			pollHz:     cfg.Touch.PollHz,
			broadcasts: broadcasts,
		}, logger)
		return nil
	})

	g.Go(func() error {
		return runIPCServer(ctx, cfg.IPC.SocketPath, events, logger)
	})

	if cfg.StateWS.Port > 0 {
		ws := newStateServer(events, logger)
		mux := http.NewServeMux()
		mux.Handle("/ws/state", ws)

		srv := &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.StateWS.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			relayBroadcasts(ctx, ws.feed, broadcasts, logger)
			return nil
		})
		g.Go(func() error {
			logger.Info("state websocket listening", "addr", srv.Addr, "path", "/ws/state")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("state websocket server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			// Shutdown leaves upgraded connections alone; the feed hangs up on them.
			ws.feed.close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	} else {
		// Nobody listens; keep the daemon from filling the channel.
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-broadcasts:
				}
			}
		})
	}

	logger.Info("listening",
		"touch_device", cfg.Touch.Device,
		"ipc", cfg.IPC.SocketPath,
		"state_ws_port", cfg.StateWS.Port,
		"frequency_hz", initialFreq)

	err := g.Wait()
	logger.Info("shutting down")
	return err
}
