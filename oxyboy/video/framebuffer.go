package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
	// BytesPerPixel is 3 (R,G,B); the DMG has no color so R==G==B always.
	BytesPerPixel = 3
)

// shadeToLuminance maps a 2-bit monochrome palette index to its R=G=B byte:
// 0 is the lightest shade (white), 3 the darkest (black).
var shadeToLuminance = [4]byte{0xFF, 0xC0, 0x60, 0x00}

// FrameBuffer holds one rendered 160x144 frame as packed RGB bytes, three
// per pixel, row-major.
type FrameBuffer struct {
	buffer []byte
}

func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{buffer: make([]byte, FramebufferSize*BytesPerPixel)}
	fb.Clear()
	return fb
}

// SetPixel writes the shade (a 2-bit color index, 0-3) at (x,y).
func (fb *FrameBuffer) SetPixel(x, y int, shade byte) {
	luminance := shadeToLuminance[shade&0x03]
	offset := (y*FramebufferWidth + x) * BytesPerPixel
	fb.buffer[offset] = luminance
	fb.buffer[offset+1] = luminance
	fb.buffer[offset+2] = luminance
}

// Clear fills the framebuffer with white (shade 0), matching the LCD-off fill.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = 0xFF
	}
}

// Pixels returns the raw 69,120-byte RGB buffer.
func (fb *FrameBuffer) Pixels() []byte {
	return fb.buffer
}

// At returns the luminance byte at (x,y). R, G and B are always equal, so a
// single byte identifies the rendered shade.
func (fb *FrameBuffer) At(x, y int) byte {
	return fb.buffer[(y*FramebufferWidth+x)*BytesPerPixel]
}

// Copy returns a snapshot of the framebuffer, detached from any further
// rendering into the original.
func (fb *FrameBuffer) Copy() *FrameBuffer {
	c := &FrameBuffer{buffer: make([]byte, len(fb.buffer))}
	copy(c.buffer, fb.buffer)
	return c
}
