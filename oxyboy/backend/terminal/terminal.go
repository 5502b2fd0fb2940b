// Package terminal implements a Backend that renders the framebuffer as
// Unicode half-block characters directly in the user's terminal via tcell.
package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/shenawy29/oxyboy/oxyboy/backend"
	"github.com/shenawy29/oxyboy/oxyboy/input/action"
	"github.com/shenawy29/oxyboy/oxyboy/input/event"
	"github.com/shenawy29/oxyboy/oxyboy/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	minTermWidth  = width + 2
	minTermHeight = height/2 + 2

	// keyTimeout bounds how long a key is considered "held" after the last
	// observed keypress. Terminals deliver no native key-up event, so a
	// held key is simulated by re-arriving presses resetting the deadline.
	keyTimeout = 100 * time.Millisecond
)

// Backend implements backend.Backend using tcell for terminal rendering.
type Backend struct {
	screen  tcell.Screen
	running bool

	keyStates  map[action.Action]time.Time
	activeKeys map[action.Action]bool
	eventQueue []backend.InputEvent
}

func New() *Backend {
	return &Backend{}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.screen = screen
	t.running = true

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("terminal backend initialized")
	return nil
}

// keyMapping maps tcell special keys to actions.
var keyMapping = map[tcell.Key]action.Action{
	tcell.KeyEnter:  action.GBButtonStart,
	tcell.KeyUp:     action.GBDPadUp,
	tcell.KeyDown:   action.GBDPadDown,
	tcell.KeyLeft:   action.GBDPadLeft,
	tcell.KeyRight:  action.GBDPadRight,
	tcell.KeyEscape: action.EmulatorQuit,
	tcell.KeyCtrlC:  action.EmulatorQuit,
	tcell.KeyF5:     action.EmulatorStepFrame,
	tcell.KeyF6:     action.EmulatorStepInstruction,
	tcell.KeyF12:    action.EmulatorSnapshot,
}

// runeMapping maps plain-text keys to actions: a/s/q for A/B/Select, w/z/[/]
// for the d-pad, space for pause.
var runeMapping = map[rune]action.Action{
	'a':     action.GBButtonA,
	's':     action.GBButtonB,
	'q':     action.GBButtonSelect,
	' ':     action.EmulatorPauseToggle,
	'w':     action.GBDPadUp,
	'z':     action.GBDPadDown,
	'[':     action.GBDPadLeft,
	']':     action.GBDPadRight,
}

// Update drains pending terminal events, resolves the held-key timeout into
// Press/Hold/Release events, renders frame, and returns collected events.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := time.Now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	var events []backend.InputEvent
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if !action.IsGameInput(act) {
			continue
		}
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		currentlyActive[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !currentlyActive[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	t.render(frame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}

	if action.IsGameInput(act) {
		if act == action.GBDPadUp || act == action.GBDPadDown || act == action.GBDPadLeft || act == action.GBDPadRight {
			delete(t.keyStates, action.GBDPadUp)
			delete(t.keyStates, action.GBDPadDown)
			delete(t.keyStates, action.GBDPadLeft)
			delete(t.keyStates, action.GBDPadRight)
		}
		t.keyStates[act] = now
		return
	}

	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

// shadeColors maps a 2-bit DMG shade to the nearest tcell terminal color.
var shadeColors = [4]tcell.Color{tcell.ColorWhite, tcell.ColorSilver, tcell.ColorGray, tcell.ColorBlack}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minTermWidth, minTermHeight)
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	t.screen.Clear()
	pixels := frame.Pixels()

	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			topShade := shadeAt(pixels, x, y)
			bottomShade := 0
			if y+1 < height {
				bottomShade = shadeAt(pixels, x, y+1)
			}

			style := tcell.StyleDefault.Foreground(shadeColors[bottomShade]).Background(shadeColors[topShade])
			t.screen.SetContent(x+1, y/2+1, '▄', nil, style)
		}
	}
}

// shadeAt recovers the approximate 2-bit shade index from a rendered pixel's
// luminance byte, inverting the FrameBuffer's shadeToLuminance mapping.
func shadeAt(pixels []byte, x, y int) int {
	offset := (y*width + x) * video.BytesPerPixel
	switch lum := pixels[offset]; {
	case lum >= 0xE0:
		return 0
	case lum >= 0x90:
		return 1
	case lum >= 0x30:
		return 2
	default:
		return 3
	}
}
