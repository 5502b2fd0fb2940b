package input

import (
	"time"

	"github.com/shenawy29/oxyboy/oxyboy/input/action"
	"github.com/shenawy29/oxyboy/oxyboy/input/event"
	"github.com/shenawy29/oxyboy/oxyboy/memory"
)

// debounceDuration is the minimum time between debounced events
const debounceDuration = 300 * time.Millisecond

// Manager routes backend input events to the joypad and to registered
// emulator-level callbacks (pause, snapshot, quit, ...).
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	mmu           *memory.MMU
}

func NewManager(mmu *memory.MMU) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		mmu:           mmu,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	if m.lastTriggered[act] == nil {
		m.lastTriggered[act] = make(map[event.Type]time.Time)
	}

	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// Debounce only actions marked for it (pause, snapshot, stepping);
	// joypad input must pass through at full rate.
	if action.Debounce(act) && (evt == event.Press || evt == event.Release) {
		now := time.Now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		lastTime := m.lastTriggered[act][evt]
		if now.Sub(lastTime) < debounceDuration {
			return
		}
		m.lastTriggered[act][evt] = now
	}

	// GB controls go straight to the MMU's joypad register.
	if action.IsGameInput(act) && m.mmu != nil {
		key := joypadKeyFor(act)
		switch evt {
		case event.Press:
			m.mmu.HandleKeyPress(key)
		case event.Release:
			m.mmu.HandleKeyRelease(key)
		}
		return
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

// joypadKeyFor maps a GB hardware action to its joypad key. Only meaningful
// when action.IsGameInput reports true for act.
func joypadKeyFor(act action.Action) memory.JoypadKey {
	switch act {
	case action.GBButtonA:
		return memory.JoypadA
	case action.GBButtonB:
		return memory.JoypadB
	case action.GBButtonStart:
		return memory.JoypadStart
	case action.GBButtonSelect:
		return memory.JoypadSelect
	case action.GBDPadUp:
		return memory.JoypadUp
	case action.GBDPadDown:
		return memory.JoypadDown
	case action.GBDPadLeft:
		return memory.JoypadLeft
	case action.GBDPadRight:
		return memory.JoypadRight
	default:
		return memory.JoypadRight
	}
}
