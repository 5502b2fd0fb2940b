package video

import (
	"fmt"
	"log/slog"

	"github.com/shenawy29/oxyboy/oxyboy/addr"
	"github.com/shenawy29/oxyboy/oxyboy/bit"
	"github.com/shenawy29/oxyboy/oxyboy/memory"
)

// GpuMode represents the PPU's current rendering stage, matching STAT bits 1-0.
type GpuMode int

const (
	hblankMode   GpuMode = 0
	vblankMode   GpuMode = 1
	oamReadMode  GpuMode = 2
	vramReadMode GpuMode = 3
)

// line-clock band boundaries, measured in dots REMAINING in the current
// line: [0,81) mode 0, [81,253) mode 3, [253,456] mode 2.
const (
	hblankUpperBound = 81
	vramUpperBound   = 253
	dotsPerLine      = 456
	linesPerFrame    = 154
	visibleLines     = 144
)

type GPU struct {
	memory *memory.MMU
	fb     *FrameBuffer
	oam    *OAM

	mode    GpuMode
	line    int
	clock   int // dots remaining in the current line, counts down from 456
	lcdOn   bool
	lastLYC byte
	updated bool

	wyTrigger bool
	wyPos     int

	bgIsColor0 [FramebufferWidth]bool
}

func NewGpu(mmu *memory.MMU) *GPU {
	gpu := &GPU{
		memory: mmu,
		fb:     NewFrameBuffer(),
		oam:    NewOAM(mmu),
		mode:   vramReadMode,
		clock:  dotsPerLine,
		lcdOn:  true,
	}

	lcdc := mmu.Read(addr.LCDC)
	slog.Debug("GPU initialized", "LCDC", fmt.Sprintf("0x%02X", lcdc), "LCD_enabled", bit.IsSet(lcdDisplayEnable, lcdc))

	return gpu
}

func (g *GPU) GetFrameBuffer() *FrameBuffer { return g.fb }

// Updated reports (and clears) whether a new frame finished rendering since
// the last call.
func (g *GPU) Updated() bool {
	u := g.updated
	g.updated = false
	return u
}

// Tick advances the PPU by cycles dots clocked by the caller (already
// converted from machine cycles to dots).
func (g *GPU) Tick(cycles int) {
	g.checkLCDToggle()
	if !g.lcdOn {
		return
	}
	g.checkLYCWrite()

	g.clock -= cycles
	if g.clock <= 0 {
		g.clock += dotsPerLine
		g.line = (g.line + 1) % linesPerFrame
		g.memory.Write(addr.LY, byte(g.line))
		g.checkLYC()
	}
	g.updateMode()
}

func (g *GPU) checkLCDToggle() {
	lcdc := g.memory.Read(addr.LCDC)
	on := bit.IsSet(lcdDisplayEnable, lcdc)

	if on == g.lcdOn {
		return
	}
	g.lcdOn = on

	if !on {
		g.clock = dotsPerLine
		g.line = 0
		g.memory.Write(addr.LY, 0)
		g.mode = hblankMode
		g.writeSTATMode(hblankMode)
		g.wyTrigger = false
		g.fb.Clear()
		g.updated = true
		return
	}

	g.clock = 452
	g.mode = oamReadMode
	g.writeSTATMode(oamReadMode)
}

func (g *GPU) checkLYCWrite() {
	lyc := g.memory.Read(addr.LYC)
	if lyc != g.lastLYC {
		g.lastLYC = lyc
		g.checkLYC()
	}
}

func (g *GPU) checkLYC() {
	stat := g.memory.Read(addr.STAT)
	if byte(g.line) == g.memory.Read(addr.LYC) {
		stat = bit.Set(statLycCondition, stat)
		if bit.IsSet(statLycIrq, stat) {
			g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(statLycCondition, stat)
	}
	g.memory.Write(addr.STAT, stat)
}

func (g *GPU) updateMode() {
	var newMode GpuMode
	switch {
	case g.line >= visibleLines:
		newMode = vblankMode
	case g.clock < hblankUpperBound:
		newMode = hblankMode
	case g.clock < vramUpperBound:
		newMode = vramReadMode
	default:
		newMode = oamReadMode
	}

	if newMode == g.mode {
		return
	}
	g.mode = newMode
	g.writeSTATMode(newMode)
	g.enterMode(newMode)
}

func (g *GPU) enterMode(mode GpuMode) {
	stat := g.memory.Read(addr.STAT)
	switch mode {
	case hblankMode:
		g.renderScanline()
		if bit.IsSet(statHblankIrq, stat) {
			g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	case vblankMode:
		g.memory.RequestInterrupt(addr.VBlankInterrupt)
		g.updated = true
		g.wyTrigger = false
		if bit.IsSet(statVblankIrq, stat) {
			g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	case oamReadMode:
		if bit.IsSet(statOamIrq, stat) {
			g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	case vramReadMode:
		wy := g.memory.Read(addr.WY)
		if !g.wyTrigger && byte(g.line) == wy {
			g.wyTrigger = true
			g.wyPos = -1
		}
	}
}

func (g *GPU) writeSTATMode(mode GpuMode) {
	stat := g.memory.Read(addr.STAT)
	stat = stat&0xFC | byte(mode)
	g.memory.Write(addr.STAT, stat)
}

func (g *GPU) renderScanline() {
	for x := 0; x < FramebufferWidth; x++ {
		g.fb.SetPixel(x, g.line, 0)
		g.bgIsColor0[x] = false
	}

	if g.readLCDCVariable(bgDisplay) == 1 {
		g.drawBackground()
	}
	if g.readLCDCVariable(windowDisplayEnable) == 1 && g.wyTrigger {
		g.drawWindow()
	}
	if g.readLCDCVariable(spriteDisplayEnable) == 1 {
		g.drawSprites()
	}
}

func (g *GPU) tileBase() (base uint16, signed bool) {
	if g.readLCDCVariable(bgWindowTileDataSelect) == 0 {
		return addr.TileData2, true
	}
	return addr.TileData0, false
}

func (g *GPU) tileAddrFor(base uint16, signed bool, tileIndex byte, rowOffset uint16) uint16 {
	if signed {
		return uint16(int32(base) + int32(int8(tileIndex))*16 + int32(rowOffset))
	}
	return base + uint16(tileIndex)*16 + rowOffset
}

func (g *GPU) drawBackground() {
	scx := g.memory.Read(addr.SCX)
	scy := g.memory.Read(addr.SCY)
	bgy := byte(g.line) + scy

	tileMap := addr.TileMap0
	if g.readLCDCVariable(bgTileMapDisplaySelect) == 1 {
		tileMap = addr.TileMap1
	}
	base, signed := g.tileBase()

	tileRow := uint16(bgy/8) * 32
	pixelY2 := uint16(bgy%8) * 2
	palette := g.memory.Read(addr.BGP)

	for x := 0; x < FramebufferWidth; x++ {
		bgx := byte(x) + scx
		tileIndex := g.memory.Read(tileMap + tileRow + uint16(bgx/8))
		tileAddr := g.tileAddrFor(base, signed, tileIndex, pixelY2)

		row := TileRow{Low: g.memory.Read(tileAddr), High: g.memory.Read(tileAddr + 1)}
		colorIndex := row.GetPixel(int(bgx % 8))

		g.bgIsColor0[x] = colorIndex == 0
		shade := (palette >> (colorIndex * 2)) & 0x03
		g.fb.SetPixel(x, g.line, shade)
	}
}

func (g *GPU) drawWindow() {
	wx := int(g.memory.Read(addr.WX)) - 7
	if wx > 166 {
		return
	}
	g.wyPos++

	tileMap := addr.TileMap0
	if g.readLCDCVariable(windowTileMapSelect) == 1 {
		tileMap = addr.TileMap1
	}
	base, signed := g.tileBase()

	tileRow := uint16(g.wyPos/8) * 32
	pixelY2 := uint16(g.wyPos%8) * 2
	palette := g.memory.Read(addr.BGP)

	for x := 0; x < FramebufferWidth; x++ {
		winx := x - wx
		if winx < 0 {
			continue
		}
		tileIndex := g.memory.Read(tileMap + tileRow + uint16(winx/8))
		tileAddr := g.tileAddrFor(base, signed, tileIndex, pixelY2)

		row := TileRow{Low: g.memory.Read(tileAddr), High: g.memory.Read(tileAddr + 1)}
		colorIndex := row.GetPixel(winx % 8)

		g.bgIsColor0[x] = colorIndex == 0
		shade := (palette >> (colorIndex * 2)) & 0x03
		g.fb.SetPixel(x, g.line, shade)
	}
}

func (g *GPU) drawSprites() {
	sprites := g.oam.GetSpritesForScanline(g.line)

	for i := range sprites {
		s := &sprites[i]
		tileIndex := s.TileIndex
		if s.Height == 16 {
			tileIndex &^= 0x01
		}

		pixelY := g.line - int(s.Y)
		if s.FlipY {
			pixelY = s.Height - 1 - pixelY
		}

		objAddr := addr.TileData0 + uint16(tileIndex)*16 + uint16(pixelY)*2
		row := TileRow{Low: g.memory.Read(objAddr), High: g.memory.Read(objAddr + 1)}

		palette := addr.OBP0
		if s.PaletteOBP1 {
			palette = addr.OBP1
		}
		paletteValue := g.memory.Read(palette)

		for px := 0; px < 8; px++ {
			bufferX := int(s.X) + px
			if bufferX < 0 || bufferX >= FramebufferWidth {
				continue
			}

			colorIndex := row.GetPixel(px)
			if s.FlipX {
				colorIndex = row.GetPixelFlipped(px)
			}
			if colorIndex == 0 {
				continue
			}
			if s.BehindBG && !g.bgIsColor0[bufferX] {
				continue
			}

			shade := (paletteValue >> (colorIndex * 2)) & 0x03
			g.fb.SetPixel(bufferX, g.line, shade)
		}
	}
}

// colorIndexFromRow extracts the 2-bit color index at bitIdx (7=leftmost)
// from a tile row's low/high bit planes.
func colorIndexFromRow(low, high byte, bitIdx byte) byte {
	var idx byte
	if bit.IsSet(bitIdx, low) {
		idx |= 1
	}
	if bit.IsSet(bitIdx, high) {
		idx |= 2
	}
	return idx
}

// STAT register bit positions.
type statFlag = uint8

const (
	statLycIrq       statFlag = 6
	statOamIrq       statFlag = 5
	statVblankIrq    statFlag = 4
	statHblankIrq    statFlag = 3
	statLycCondition statFlag = 2
)

// LCDC register bit positions.
type lcdcFlag = uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect    lcdcFlag = 6
	windowDisplayEnable    lcdcFlag = 5
	bgWindowTileDataSelect lcdcFlag = 4
	bgTileMapDisplaySelect lcdcFlag = 3
	spriteSize             lcdcFlag = 2
	spriteDisplayEnable    lcdcFlag = 1
	bgDisplay              lcdcFlag = 0
)

func (g *GPU) readLCDCVariable(flag lcdcFlag) byte {
	if bit.IsSet(flag, g.memory.Read(addr.LCDC)) {
		return 1
	}
	return 0
}
