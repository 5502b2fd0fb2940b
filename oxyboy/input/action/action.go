// Package action enumerates everything a frontend can ask of the emulator:
// the eight joypad inputs plus emulator-level commands like pausing or
// stepping.
package action

// Action is a single input intent, decoupled from whatever key or button the
// backend mapped it from.
type Action int

const (
	// joypad hardware inputs
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// emulator commands
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorQuit
)

// IsGameInput reports whether a routes straight to the joypad rather than to
// an emulator command handler.
func IsGameInput(a Action) bool {
	return a >= GBButtonA && a <= GBDPadRight
}

// Debounce reports whether repeated deliveries of a should be suppressed.
// Joypad input must arrive at full rate; one-shot commands like pause or
// snapshot fire once per distinct keypress.
func Debounce(a Action) bool {
	return !IsGameInput(a)
}

// String names an action for logs and key-binding help.
func (a Action) String() string {
	switch a {
	case GBButtonA:
		return "A button"
	case GBButtonB:
		return "B button"
	case GBButtonStart:
		return "Start button"
	case GBButtonSelect:
		return "Select button"
	case GBDPadUp:
		return "D-Pad Up"
	case GBDPadDown:
		return "D-Pad Down"
	case GBDPadLeft:
		return "D-Pad Left"
	case GBDPadRight:
		return "D-Pad Right"
	case EmulatorSnapshot:
		return "Take snapshot"
	case EmulatorPauseToggle:
		return "Toggle pause"
	case EmulatorStepFrame:
		return "Step one frame"
	case EmulatorStepInstruction:
		return "Step one instruction"
	case EmulatorQuit:
		return "Quit"
	default:
		return "Unknown action"
	}
}
