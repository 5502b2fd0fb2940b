package video

// TileRow is one 8-pixel row of a tile pattern in the DMG's bit-plane
// format: the low byte carries bit 0 of each pixel's color index, the high
// byte bit 1. Bit 7 of each plane is the leftmost pixel.
//
// Example: Low 0x3C, High 0x7E decodes to the color indices
//
//	0 2 3 3 3 3 2 0
//
// A full 8x8 tile is 8 such rows, 16 bytes in VRAM. Color index 0 is
// transparent for sprites.
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel returns the 2-bit color index at pixelX (0 = leftmost).
func (t TileRow) GetPixel(pixelX int) byte {
	return colorIndexFromRow(t.Low, t.High, byte(7-pixelX))
}

// GetPixelFlipped returns the color index at pixelX with the row mirrored
// horizontally, for sprites carrying the X-flip attribute.
func (t TileRow) GetPixelFlipped(pixelX int) byte {
	return colorIndexFromRow(t.Low, t.High, byte(pixelX))
}
