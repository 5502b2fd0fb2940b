package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shenawy29/oxyboy/oxyboy/addr"
	"github.com/shenawy29/oxyboy/oxyboy/memory"
)

func newTestGPU() (*GPU, *memory.MMU) {
	mmu := memory.New()
	return NewGpu(mmu), mmu
}

// writeSolidTile fills tile `index` in the 0x8000 table with a single color
// index (0-3) across all 64 pixels.
func writeSolidTile(mmu *memory.MMU, index int, color byte) {
	var low, high byte
	if color&1 != 0 {
		low = 0xFF
	}
	if color&2 != 0 {
		high = 0xFF
	}
	base := uint16(0x8000 + index*16)
	for row := uint16(0); row < 8; row++ {
		mmu.Write(base+row*2, low)
		mmu.Write(base+row*2+1, high)
	}
}

func TestBackgroundTileDrawing(t *testing.T) {
	gpu, mmu := newTestGPU()

	mmu.Write(addr.LCDC, 0x91) // LCD on, 0x8000 tile data, BG on
	mmu.Write(addr.BGP, 0xE4)  // identity palette

	writeSolidTile(mmu, 1, 3)
	mmu.Write(0x9800, 1) // tile (0,0) of map 0 -> tile 1

	gpu.line = 0
	gpu.renderScanline()

	for x := 0; x < 8; x++ {
		assert.Equal(t, byte(0x00), gpu.fb.At(x, 0), "tile pixels should be black at x=%d", x)
	}
	for x := 8; x < FramebufferWidth; x++ {
		assert.Equal(t, byte(0xFF), gpu.fb.At(x, 0), "pixels past the tile should be white at x=%d", x)
	}
}

func TestBackgroundCheckeredPattern(t *testing.T) {
	gpu, mmu := newTestGPU()

	mmu.Write(addr.LCDC, 0x91)
	mmu.Write(addr.BGP, 0xE4)

	// row 0: low plane 0xAA -> alternating color 1/0 starting at the left
	mmu.Write(0x8010, 0xAA)
	mmu.Write(0x8011, 0x00)
	mmu.Write(0x9800, 1)

	gpu.line = 0
	gpu.renderScanline()

	for x := 0; x < 8; x++ {
		want := byte(0xFF)
		if x%2 == 0 {
			want = 0xC0 // color 1 -> light grey
		}
		assert.Equal(t, want, gpu.fb.At(x, 0), "x=%d", x)
	}
}

func TestBackgroundScrollX(t *testing.T) {
	gpu, mmu := newTestGPU()

	mmu.Write(addr.LCDC, 0x91)
	mmu.Write(addr.BGP, 0xE4)
	mmu.Write(addr.SCX, 4)

	writeSolidTile(mmu, 1, 3)
	mmu.Write(0x9800, 1)

	gpu.line = 0
	gpu.renderScanline()

	// screen x 0-3 map to bg x 4-7, still inside tile (0,0)
	for x := 0; x < 4; x++ {
		assert.Equal(t, byte(0x00), gpu.fb.At(x, 0), "x=%d", x)
	}
	assert.Equal(t, byte(0xFF), gpu.fb.At(4, 0))
}

func TestBackgroundScrollYWraps(t *testing.T) {
	gpu, mmu := newTestGPU()

	mmu.Write(addr.LCDC, 0x91)
	mmu.Write(addr.BGP, 0xE4)
	mmu.Write(addr.SCY, 200)

	writeSolidTile(mmu, 1, 3)
	mmu.Write(0x9800, 1) // map row 0

	// line 60 + SCY 200 = 260, wraps to bg y 4: still map row 0, tile row 4
	gpu.line = 60
	gpu.renderScanline()

	assert.Equal(t, byte(0x00), gpu.fb.At(0, 60))
}

func TestModeScheduleAcrossOneLine(t *testing.T) {
	gpu, mmu := newTestGPU()
	mmu.Write(addr.LCDC, 0x80)

	gpu.Tick(4) // 452 dots remaining
	assert.Equal(t, byte(2), mmu.Read(addr.STAT)&0x03, "line starts in OAM scan")

	gpu.Tick(200) // 252 remaining
	assert.Equal(t, byte(3), mmu.Read(addr.STAT)&0x03, "pixel transfer follows OAM scan")

	gpu.Tick(172) // 80 remaining
	assert.Equal(t, byte(0), mmu.Read(addr.STAT)&0x03, "HBlank closes the line")

	gpu.Tick(80) // line boundary
	assert.Equal(t, byte(1), mmu.Read(addr.LY))
	assert.Equal(t, byte(2), mmu.Read(addr.STAT)&0x03, "next line starts in OAM scan")
}

func TestVBlankEntryRaisesInterruptAndUpdatedFlag(t *testing.T) {
	gpu, mmu := newTestGPU()
	mmu.Write(addr.LCDC, 0x80)

	for i := 0; i < 144; i++ {
		gpu.Tick(456)
	}

	assert.Equal(t, byte(144), mmu.Read(addr.LY))
	assert.Equal(t, byte(1), mmu.Read(addr.STAT)&0x03)
	assert.NotZero(t, mmu.Read(addr.IF)&0x01, "VBlank interrupt must be requested")
	assert.True(t, gpu.Updated())
	assert.False(t, gpu.Updated(), "Updated clears on read")
}

func TestLYStaysInRangeAndWraps(t *testing.T) {
	gpu, mmu := newTestGPU()
	mmu.Write(addr.LCDC, 0x80)

	for i := 0; i < 154*2; i++ {
		gpu.Tick(456)
		ly := mmu.Read(addr.LY)
		assert.LessOrEqual(t, ly, byte(153))
	}
	assert.Equal(t, byte(0), mmu.Read(addr.LY), "LY wraps back to 0 after line 153")
}

func TestLYCCoincidenceInterrupt(t *testing.T) {
	gpu, mmu := newTestGPU()
	mmu.Write(addr.LCDC, 0x80)
	mmu.Write(addr.LYC, 2)
	mmu.Write(addr.STAT, 0x40) // LYC interrupt enable

	gpu.Tick(456)
	assert.Zero(t, mmu.Read(addr.IF)&0x02, "no STAT interrupt before LY matches LYC")

	gpu.Tick(456)
	assert.NotZero(t, mmu.Read(addr.IF)&0x02, "STAT interrupt on LY==LYC")
	assert.NotZero(t, mmu.Read(addr.STAT)&0x04, "coincidence bit set")
}

func TestLCDOffResetsStateAndBlanksFrame(t *testing.T) {
	gpu, mmu := newTestGPU()
	mmu.Write(addr.LCDC, 0x80)

	gpu.Tick(456)
	gpu.Tick(456)
	gpu.fb.SetPixel(10, 10, 3)
	gpu.Updated()

	mmu.Write(addr.LCDC, 0x00)
	gpu.Tick(4)

	assert.Equal(t, byte(0), mmu.Read(addr.LY))
	assert.Equal(t, byte(0), mmu.Read(addr.STAT)&0x03)
	assert.Equal(t, byte(0xFF), gpu.fb.At(10, 10), "framebuffer blanks to white")
	assert.True(t, gpu.Updated())

	// turning the LCD back on restarts in OAM scan
	mmu.Write(addr.LCDC, 0x80)
	gpu.Tick(4)
	assert.Equal(t, byte(2), mmu.Read(addr.STAT)&0x03)
}

func TestFramebufferHoldsOnlyDMGShades(t *testing.T) {
	gpu, mmu := newTestGPU()

	mmu.Write(addr.LCDC, 0x91)
	mmu.Write(addr.BGP, 0xE4)
	for i := 0; i < 4; i++ {
		writeSolidTile(mmu, i, byte(i))
		mmu.Write(0x9800+uint16(i), byte(i))
	}

	for line := 0; line < FramebufferHeight; line++ {
		gpu.line = line
		gpu.renderScanline()
	}

	px := gpu.fb.Pixels()
	assert.Len(t, px, 160*144*3)
	for i, b := range px {
		switch b {
		case 0x00, 0x60, 0xC0, 0xFF:
		default:
			t.Fatalf("byte %d holds %02X, not a DMG shade", i, b)
		}
	}
}
