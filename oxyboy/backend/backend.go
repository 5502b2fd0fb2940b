// Package backend defines the pluggable frontend surface: something that can
// turn a rendered framebuffer into pixels on a screen and platform input
// events into joypad actions. The emulation core never imports a backend;
// backends only ever see a *video.FrameBuffer and hand back input events.
package backend

import (
	"github.com/shenawy29/oxyboy/oxyboy/input/action"
	"github.com/shenawy29/oxyboy/oxyboy/input/event"
	"github.com/shenawy29/oxyboy/oxyboy/video"
)

// InputEvent represents an input event produced by a backend.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds the configuration common to every backend.
type BackendConfig struct {
	Title string
	Scale int
}

// Backend represents a complete frontend: rendering plus input capture.
// Backends are responsible for:
//   - Rendering frames to their specific output (terminal, SDL window, ...)
//   - Capturing platform-specific input and returning it as InputEvents
//   - Surfacing a quit request as an EmulatorQuit InputEvent
type Backend interface {
	// Init configures the backend; it must be called before Update.
	Init(config BackendConfig) error

	// Update renders frame and returns any InputEvents collected since the
	// previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases backend resources on shutdown.
	Cleanup() error
}
