//go:build sdl2

package backend

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/shenawy29/oxyboy/oxyboy/display"
	"github.com/shenawy29/oxyboy/oxyboy/input/action"
	"github.com/shenawy29/oxyboy/oxyboy/input/event"
	"github.com/shenawy29/oxyboy/oxyboy/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	windowWidth  = display.DefaultWindowWidth
	windowHeight = display.DefaultWindowHeight
)

// SDL2Backend implements the Backend interface using SDL2 bindings.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see sdl2_stub.go.
type SDL2Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool

	pixelBuffer []byte
	eventBuffer []InputEvent
}

func NewSDL2Backend() *SDL2Backend {
	return &SDL2Backend{}
}

func (s *SDL2Backend) Init(config BackendConfig) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		windowWidth,
		windowHeight,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	s.pixelBuffer = make([]byte, video.FramebufferWidth*video.FramebufferHeight*display.RGBABytesPerPixel)
	s.eventBuffer = make([]InputEvent, 0, 10)
	s.running = true

	slog.Info("SDL2 backend initialized", "width", windowWidth, "height", windowHeight)
	return nil
}

// Update drains the SDL event queue, renders frame and returns any input
// events collected since the previous call.
func (s *SDL2Backend) Update(frame *video.FrameBuffer) ([]InputEvent, error) {
	s.eventBuffer = s.eventBuffer[:0]

	for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
		if collected := s.handleEvent(evt); collected != nil {
			s.eventBuffer = append(s.eventBuffer, collected...)
		}
	}

	if !s.running {
		return s.eventBuffer, nil
	}

	s.renderFrame(frame)
	return s.eventBuffer, nil
}

func (s *SDL2Backend) Cleanup() error {
	slog.Info("cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

func (s *SDL2Backend) handleEvent(evt sdl.Event) []InputEvent {
	switch e := evt.(type) {
	case *sdl.QuitEvent:
		s.running = false
		return []InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			return s.handleKeyDown(e.Keysym.Sym, e.Repeat)
		} else if e.Type == sdl.KEYUP {
			return s.handleKeyUp(e.Keysym.Sym)
		}
	}

	return nil
}

// keyMapping maps SDL2 keycodes to actions.
var keyMapping = map[sdl.Keycode]action.Action{
	sdl.K_ESCAPE: action.EmulatorQuit,
	sdl.K_SPACE:  action.EmulatorPauseToggle,
	sdl.K_F5:     action.EmulatorStepFrame,
	sdl.K_F6:     action.EmulatorStepInstruction,
	sdl.K_F12:    action.EmulatorSnapshot,

	sdl.K_RETURN: action.GBButtonStart,
	sdl.K_a:      action.GBButtonA,
	sdl.K_s:      action.GBButtonB,
	sdl.K_q:      action.GBButtonSelect,
	sdl.K_UP:     action.GBDPadUp,
	sdl.K_DOWN:   action.GBDPadDown,
	sdl.K_LEFT:   action.GBDPadLeft,
	sdl.K_RIGHT:  action.GBDPadRight,
}

func (s *SDL2Backend) handleKeyDown(key sdl.Keycode, repeat uint8) []InputEvent {
	act, ok := keyMapping[key]
	if !ok {
		return nil
	}
	if key == sdl.K_ESCAPE {
		s.running = false
	}
	if repeat == 0 {
		return []InputEvent{{Action: act, Type: event.Press}}
	}
	return []InputEvent{{Action: act, Type: event.Hold}}
}

func (s *SDL2Backend) handleKeyUp(key sdl.Keycode) []InputEvent {
	act, ok := keyMapping[key]
	if !ok || !action.IsGameInput(act) {
		return nil
	}
	return []InputEvent{{Action: act, Type: event.Release}}
}

func (s *SDL2Backend) renderFrame(frame *video.FrameBuffer) {
	pixels := frame.Pixels()

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			srcIdx := (y*video.FramebufferWidth + x) * video.BytesPerPixel
			dstIdx := (y*video.FramebufferWidth + x) * display.RGBABytesPerPixel

			// The DMG screen is monochrome: R=G=B, so any channel carries
			// the luminance value. ABGR byte order for little-endian RGBA8888.
			lum := pixels[srcIdx]
			s.pixelBuffer[dstIdx] = 0xFF  // Alpha
			s.pixelBuffer[dstIdx+1] = lum // Blue
			s.pixelBuffer[dstIdx+2] = lum // Green
			s.pixelBuffer[dstIdx+3] = lum // Red
		}
	}

	s.texture.Update(nil, unsafe.Pointer(&s.pixelBuffer[0]), video.FramebufferWidth*display.RGBABytesPerPixel)

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}
