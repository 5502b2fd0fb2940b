package memory

import (
	"fmt"
	"log/slog"

	"github.com/shenawy29/oxyboy/oxyboy/addr"
	"github.com/shenawy29/oxyboy/oxyboy/bit"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
	regionHRAM
)

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// MMU routes the full 16-bit address space across the cartridge, VRAM, WRAM,
// OAM, I/O registers and HRAM, and drives the timer forward on every tick.
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	regionMap [256]memRegion

	joypadButtons uint8 // state of A/B/Start/Select, mapped to low bits of P1
	joypadDpad    uint8 // state of d-pad directions, mapped to low bits of P1

	serialData    byte // SB (0xFF01), stored but never transmitted
	serialControl byte // SC (0xFF02), stored but never transmitted

	timer Timer
}

// New creates an MMU with no cartridge loaded, equivalent to turning on a
// Game Boy with an empty cartridge slot.
func New() *MMU {
	mmu := &MMU{
		memory:        make([]byte, 0x10000),
		cart:          NewCartridge(),
		joypadButtons: 0x0F,
		joypadDpad:    0x0F,
	}
	mmu.mbc = NewNoMBC(mmu.cart.data)
	mmu.timer.TimerInterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates an MMU backed by the given cartridge, constructing
// the matching bank controller for it.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.mbcType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.data)
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount)
	default:
		panic(fmt.Sprintf("unsupported MBC type: %d", cart.mbcType))
	}

	return mmu
}

// Tick advances the timer by cycles machine-cycles worth of dots (4 dots
// per machine cycle).
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles * 4)
}

// SetTimerSeed initializes the internal timer divider seed and DIV register.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// RequestInterrupt sets the matching bit in the IF register.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	interruptFlags := m.Read(addr.IF)

	var bitPos uint8
	switch interrupt {
	case addr.VBlankInterrupt:
		bitPos = 0
	case addr.LCDSTATInterrupt:
		bitPos = 1
	case addr.TimerInterrupt:
		bitPos = 2
	case addr.SerialInterrupt:
		bitPos = 3
	case addr.JoypadInterrupt:
		bitPos = 4
	default:
		panic(fmt.Sprintf("unknown interrupt: 0x%02X", uint8(interrupt)))
	}

	m.Write(addr.IF, bit.Set(bitPos, interruptFlags))
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		// Echo of WRAM; this spec returns 0 on read rather than mirroring.
		return 0
	case regionOAM:
		if address <= 0xFE9F {
			return m.memory[address]
		}
		// Unusable region 0xFEA0-0xFEFF.
		return 0
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch {
	case address == addr.SB:
		return m.serialData
	case address == addr.SC:
		return m.serialControl
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		return m.timer.Read(address)
	case address >= 0xFF80:
		return m.memory[address]
	default:
		return m.memory[address]
	}
}

// ReadWord reads a little-endian 16-bit value at address.
func (m *MMU) ReadWord(address uint16) uint16 {
	return bit.Combine(m.Read(address+1), m.Read(address))
}

// WriteWord writes v at address, low byte first.
func (m *MMU) WriteWord(address uint16, v uint16) {
	m.Write(address, bit.Low(v))
	m.Write(address+1, bit.High(v))
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		m.mbc.Write(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionEcho:
		// Echo writes are ignored in this spec.
	case regionOAM:
		if address <= 0xFE9F {
			m.memory[address] = value
		}
		// Writes to the unusable region are dropped.
	case regionIO:
		m.writeIO(address, value)
	default:
		slog.Debug("write to unmapped address dropped", "addr", fmt.Sprintf("0x%04X", address))
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch {
	case address == addr.P1:
		m.writeJoypad(value)
	case address == addr.SB:
		m.serialData = value
	case address == addr.SC:
		m.serialControl = value
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		m.timer.Write(address, value)
	case address == addr.DMA:
		m.runOAMDMA(value)
	case address >= 0xFF80:
		m.memory[address] = value
	default:
		m.memory[address] = value
	}
}

// runOAMDMA copies 0xA0 bytes from (value<<8) into OAM, synchronously.
func (m *MMU) runOAMDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.memory[0xFE00+i] = m.Read(source + i)
	}
	m.memory[addr.DMA] = value
}

// updateJoypadRegister recomputes P1's low nibble from the selection bits
// (4: d-pad, 5: buttons, active-low) and the live button state. With neither
// row selected the register reads back exactly as written.
func (m *MMU) updateJoypadRegister() {
	p1 := m.memory[addr.P1]
	result := p1 & 0b00110000 // keep selection bits 4-5

	selectDpad := !bit.IsSet(4, p1)
	selectButtons := !bit.IsSet(5, p1)

	switch {
	case selectButtons && !selectDpad:
		result |= m.joypadButtons & 0x0F
	case selectDpad && !selectButtons:
		result |= m.joypadDpad & 0x0F
	case selectButtons && selectDpad:
		result |= m.joypadButtons & m.joypadDpad & 0x0F
	}

	m.memory[addr.P1] = result
}

func (m *MMU) writeJoypad(value uint8) {
	m.memory[addr.P1] = value & 0b00110000
	m.updateJoypadRegister()
}

// HandleKeyPress clears the bit for key (0 = pressed) and raises the joypad
// interrupt. The interrupt fires on every keydown, held key or not.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	switch key {
	case JoypadRight:
		m.joypadDpad = bit.Reset(0, m.joypadDpad)
	case JoypadLeft:
		m.joypadDpad = bit.Reset(1, m.joypadDpad)
	case JoypadUp:
		m.joypadDpad = bit.Reset(2, m.joypadDpad)
	case JoypadDown:
		m.joypadDpad = bit.Reset(3, m.joypadDpad)
	case JoypadA:
		m.joypadButtons = bit.Reset(0, m.joypadButtons)
	case JoypadB:
		m.joypadButtons = bit.Reset(1, m.joypadButtons)
	case JoypadSelect:
		m.joypadButtons = bit.Reset(2, m.joypadButtons)
	case JoypadStart:
		m.joypadButtons = bit.Reset(3, m.joypadButtons)
	}

	m.RequestInterrupt(addr.JoypadInterrupt)
	m.updateJoypadRegister()
}

func (m *MMU) HandleKeyRelease(key JoypadKey) {
	switch key {
	case JoypadRight:
		m.joypadDpad = bit.Set(0, m.joypadDpad)
	case JoypadLeft:
		m.joypadDpad = bit.Set(1, m.joypadDpad)
	case JoypadUp:
		m.joypadDpad = bit.Set(2, m.joypadDpad)
	case JoypadDown:
		m.joypadDpad = bit.Set(3, m.joypadDpad)
	case JoypadA:
		m.joypadButtons = bit.Set(0, m.joypadButtons)
	case JoypadB:
		m.joypadButtons = bit.Set(1, m.joypadButtons)
	case JoypadSelect:
		m.joypadButtons = bit.Set(2, m.joypadButtons)
	case JoypadStart:
		m.joypadButtons = bit.Set(3, m.joypadButtons)
	}

	m.updateJoypadRegister()
}
