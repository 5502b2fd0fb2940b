// Package addr names every memory-mapped register and region the emulator
// touches, so the rest of the code never spells a raw I/O address.
package addr

// PPU registers, 0xFF40-0xFF4B.
const (
	LCDC uint16 = 0xFF40 // LCD control: display enable, tile tables, layers
	STAT uint16 = 0xFF41 // LCD status: mode bits, LYC coincidence, STAT IRQs
	SCY  uint16 = 0xFF42 // background scroll Y
	SCX  uint16 = 0xFF43 // background scroll X
	LY   uint16 = 0xFF44 // current scanline, read-only from the program's side
	LYC  uint16 = 0xFF45 // scanline compare for the STAT coincidence bit
	DMA  uint16 = 0xFF46 // writing XX copies XX00-XX9F into OAM
	BGP  uint16 = 0xFF47 // background palette
	OBP0 uint16 = 0xFF48 // sprite palette 0
	OBP1 uint16 = 0xFF49 // sprite palette 1
	WY   uint16 = 0xFF4A // window top edge
	WX   uint16 = 0xFF4B // window left edge, offset by 7
)

// OAM, the 40-entry sprite attribute table.
const (
	OAMStart uint16 = 0xFE00
	OAMEnd   uint16 = 0xFE9F
)

// Tile data tables and the two 32x32 tile maps in VRAM. The signed table is
// addressed from its center: indices 128-255 reach down into
// 0x8800-0x8FFF as -128..-1.
const (
	TileData0 uint16 = 0x8000 // unsigned table, also the sprite table
	TileData1 uint16 = 0x8800 // bottom of the signed table
	TileData2 uint16 = 0x9000 // center of the signed table

	TileMap0 uint16 = 0x9800
	TileMap1 uint16 = 0x9C00
)

// Interrupt registers: IF collects requests, IE masks them.
const (
	IF uint16 = 0xFF0F
	IE uint16 = 0xFFFF
)

// P1 selects and reads the joypad rows.
const (
	P1 uint16 = 0xFF00
)

// Serial port registers. The emulator stores both bytes but never performs a
// transfer; SB holds the would-be payload, SC the control bits.
const (
	SB uint16 = 0xFF01
	SC uint16 = 0xFF02
)

// Timer block registers.
const (
	DIV  uint16 = 0xFF04 // upper byte of the free-running divider; any write resets it
	TIMA uint16 = 0xFF05 // counting register, interrupts on overflow
	TMA  uint16 = 0xFF06 // value reloaded into TIMA after an overflow
	TAC  uint16 = 0xFF07 // enable bit and frequency select
)

// Interrupt identifies one of the five DMG interrupt sources as its bitmask
// in IE/IF.
type Interrupt uint8

const (
	VBlankInterrupt  Interrupt = 1 << 0 // PPU entered VBlank
	LCDSTATInterrupt Interrupt = 1 << 1 // one of the STAT conditions fired
	TimerInterrupt   Interrupt = 1 << 2 // TIMA overflowed
	SerialInterrupt  Interrupt = 1 << 3 // unused: transfers are not modeled
	JoypadInterrupt  Interrupt = 1 << 4 // a key was pressed (requested on every keydown)
)
