package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/urfave/cli"

	"github.com/shenawy29/oxyboy/oxyboy"
	"github.com/shenawy29/oxyboy/oxyboy/backend"
	"github.com/shenawy29/oxyboy/oxyboy/backend/headless"
	"github.com/shenawy29/oxyboy/oxyboy/backend/terminal"
	"github.com/shenawy29/oxyboy/oxyboy/emu"
	"github.com/shenawy29/oxyboy/oxyboy/input"
	"github.com/shenawy29/oxyboy/oxyboy/input/action"
	"github.com/shenawy29/oxyboy/oxyboy/input/event"
	"github.com/shenawy29/oxyboy/oxyboy/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "oxyboy"
	app.Description = "A DMG (Game Boy) emulator"
	app.Usage = "oxyboy [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "UI backend to use: terminal or sdl2",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a display backend",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
		cli.BoolFlag{
			Name:  "profile",
			Usage: "Write a CPU profile to the working directory",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("error running emulator", "error", err)
		os.Exit(1)
	}
}

// runConfig gathers everything the CLI flags decide before the emulator and
// backend are constructed.
type runConfig struct {
	romPath          string
	backendName      string
	headless         bool
	frames           int
	snapshotInterval int
	snapshotDir      string
	debug            bool
	profile          bool
}

func configFromContext(c *cli.Context) (runConfig, error) {
	cfg := runConfig{
		romPath:          c.String("rom"),
		backendName:      c.String("backend"),
		headless:         c.Bool("headless"),
		frames:           c.Int("frames"),
		snapshotInterval: c.Int("snapshot-interval"),
		snapshotDir:      c.String("snapshot-dir"),
		debug:            c.Bool("debug"),
		profile:          c.Bool("profile"),
	}
	if cfg.romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return cfg, errors.New("no ROM path provided")
		}
		cfg.romPath = c.Args().Get(0)
	}
	return cfg, nil
}

func runEmulator(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	emulator, err := oxyboy.NewWithFile(cfg.romPath)
	if err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}

	mgr := input.NewManager(emulator.GetMMU())
	loop := emu.NewLoop(emulator, mgr)

	paused := false
	mgr.On(action.EmulatorPauseToggle, event.Press, func() {
		if paused {
			emulator.DebuggerResume()
		} else {
			emulator.DebuggerPause()
		}
		paused = !paused
	})
	mgr.On(action.EmulatorStepFrame, event.Press, emulator.DebuggerStepFrame)
	mgr.On(action.EmulatorStepInstruction, event.Press, emulator.DebuggerStepInstruction)
	mgr.On(action.EmulatorSnapshot, event.Press, func() {
		path := fmt.Sprintf("oxyboy_snapshot_%d.png", time.Now().UnixNano())
		if err := saveFramePNG(emulator.GetCurrentFrame(), path); err != nil {
			slog.Error("failed to save snapshot", "path", path, "error", err)
			return
		}
		slog.Info("saved snapshot", "path", path)
	})

	var ui backend.Backend
	if cfg.headless {
		if cfg.frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}
		snapshotConfig, err := headless.CreateSnapshotConfig(cfg.snapshotInterval, cfg.snapshotDir, cfg.romPath)
		if err != nil {
			return err
		}
		ui = headless.New(cfg.frames, snapshotConfig)
	} else {
		switch cfg.backendName {
		case "sdl2":
			ui = backend.NewSDL2Backend()
		case "terminal":
			ui = terminal.New()
		default:
			return fmt.Errorf("unknown backend %q (want terminal or sdl2)", cfg.backendName)
		}
	}

	if err := ui.Init(backend.BackendConfig{Title: "oxyboy", Scale: 4}); err != nil {
		return fmt.Errorf("failed to initialize backend: %w", err)
	}
	defer ui.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	go loop.Run(ctx)

	return runUI(ctx, loop, ui)
}

// runUI pumps rendered frames to the backend and routes its input events
// back into the loop, until the loop's frame channel closes or ctx is done.
func runUI(ctx context.Context, loop *emu.Loop, ui backend.Backend) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-loop.Frames():
			if !ok {
				return nil
			}

			events, err := ui.Update(frame)
			if err != nil {
				return fmt.Errorf("backend update failed: %w", err)
			}

			for _, evt := range events {
				if evt.Action == action.EmulatorQuit {
					loop.Stop()
					return nil
				}
				loop.PostKey(evt.Action, evt.Type)
			}
		}
	}
}

// saveFramePNG converts the packed RGB framebuffer into an image.RGBA and
// encodes it as PNG using the standard library image codec.
func saveFramePNG(frame *video.FrameBuffer, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	pixels := frame.Pixels()
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			offset := (y*video.FramebufferWidth + x) * video.BytesPerPixel
			lum := pixels[offset]
			img.Set(x, y, color.RGBA{R: lum, G: lum, B: lum, A: 0xFF})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
