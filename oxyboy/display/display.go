// Package display holds pixel-format and window-scaling constants shared by
// graphical backends (currently only the SDL2 one).
package display

const (
	// RGBABytesPerPixel is the number of bytes per pixel in RGBA8888 format.
	RGBABytesPerPixel = 4

	// DefaultPixelScale is the default scaling factor applied to Game Boy pixels.
	DefaultPixelScale = 4
	// DefaultWindowWidth is the default window width (160 * scale).
	DefaultWindowWidth = 160 * DefaultPixelScale
	// DefaultWindowHeight is the default window height (144 * scale).
	DefaultWindowHeight = 144 * DefaultPixelScale
)
