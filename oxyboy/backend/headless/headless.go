// Package headless implements a Backend with no display or input device,
// for batch processing and automated testing. It optionally dumps periodic
// PNG snapshots of the framebuffer to disk.
package headless

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shenawy29/oxyboy/oxyboy/backend"
	"github.com/shenawy29/oxyboy/oxyboy/input/action"
	"github.com/shenawy29/oxyboy/oxyboy/input/event"
	"github.com/shenawy29/oxyboy/oxyboy/video"
)

// SnapshotConfig controls periodic PNG snapshots of the rendered framebuffer.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // save a snapshot every N frames
	Directory string // destination directory
	ROMName   string // used as the snapshot filename prefix
}

// CreateSnapshotConfig builds a SnapshotConfig from CLI parameters, creating
// the output directory (a temp one if none is given) when interval > 0.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{Enabled: interval > 0, Interval: interval}
	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "oxyboy-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	romName := filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(romName, filepath.Ext(romName))
	return config, nil
}

// Backend implements backend.Backend for batch and test-harness runs: it
// never reads platform input and signals quit once maxFrames is reached.
type Backend struct {
	frameCount int
	maxFrames  int
	snapshot   SnapshotConfig
}

func New(maxFrames int, snapshot SnapshotConfig) *Backend {
	return &Backend{maxFrames: maxFrames, snapshot: snapshot}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	slog.Info("running headless backend", "frames", h.maxFrames, "snapshot_interval", h.snapshot.Interval, "snapshot_dir", h.snapshot.Directory)
	return nil
}

// Update counts the frame, saves a snapshot if due, and signals quit once
// maxFrames has been reached.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++

	if h.snapshot.Enabled && h.frameCount%h.snapshot.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%60 == 0 {
		slog.Debug("headless progress", "frame", h.frameCount, "total", h.maxFrames)
	}

	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		if h.snapshot.Enabled && h.frameCount%h.snapshot.Interval != 0 {
			h.saveSnapshot(frame)
		}
		slog.Info("headless run completed", "frames", h.frameCount)
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
	}

	return nil, nil
}

func (h *Backend) Cleanup() error { return nil }

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	path := filepath.Join(h.snapshot.Directory, fmt.Sprintf("%s_frame_%d.png", h.snapshot.ROMName, h.frameCount))
	if err := saveFramePNG(frame, path); err != nil {
		slog.Error("failed to save PNG snapshot", "frame", h.frameCount, "path", path, "error", err)
		return
	}
	slog.Info("saved frame snapshot", "frame", h.frameCount, "path", path)
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
