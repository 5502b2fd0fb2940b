package memory

// MBC is the cartridge-side view of the bus: everything at 0x0000-0x7FFF
// (ROM plus the controller's write-only registers) and 0xA000-0xBFFF
// (external RAM).
type MBC interface {
	Read(addr uint16) uint8
	// Write stores value at addr if the region is writable; register-bank
	// writes update the controller instead. MBC1 returns value, or 0xFF when
	// a RAM write is dropped; NoMBC drops every write and returns 0.
	Write(addr uint16, value uint8) uint8
}

// NoMBC backs 32 KiB-or-less cartridges that map their ROM straight into
// 0x0000-0x7FFF with no banking and no external RAM.
type NoMBC struct {
	rom []uint8
}

func NewNoMBC(romData []uint8) *NoMBC {
	return &NoMBC{rom: romData}
}

func (m *NoMBC) Read(addr uint16) uint8 {
	// Only the ROM window is mapped; external RAM reads come back open-bus.
	if addr <= 0x7FFF && int(addr) < len(m.rom) {
		return m.rom[addr]
	}
	return 0xFF
}

func (m *NoMBC) Write(addr uint16, value uint8) uint8 {
	return 0
}

// MBC1 maps up to 2 MiB of ROM and 32 KiB of RAM through a 5+2-bit bank
// register. Bank 0 stays fixed at 0x0000-0x3FFF; 0x4000-0x7FFF is the
// switchable window. The 2-bit secondary register serves double duty: it
// selects the RAM bank, or - on cartridges past 512 KiB while banking mode 1
// is active - the upper ROM bank bits.
type MBC1 struct {
	rom []uint8
	ram []uint8

	romBank     uint8
	ramBank     uint8
	ramEnabled  bool
	bankingMode uint8

	hasBattery   bool
	ramBankCount uint8
	largeROM     bool // ROM past 0x80000 bytes needs the upper bank bits
}

func NewMBC1(romData []uint8, hasBattery bool, ramBankCount uint8) *MBC1 {
	return &MBC1{
		rom:          romData,
		ram:          make([]uint8, uint32(ramBankCount)*0x2000),
		romBank:      1,
		hasBattery:   hasBattery,
		ramBankCount: ramBankCount,
		largeROM:     len(romData) > 0x80000,
	}
}

func (m *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr <= 0x7FFF:
		// switchable window; out-of-range banks wrap around the ROM size
		offset := uint32(m.romBank) * 0x4000
		if offset >= uint32(len(m.rom)) {
			offset %= uint32(len(m.rom))
		}
		return m.rom[offset+uint32(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.ramOffset(addr)]
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value uint8) uint8 {
	switch {
	case addr <= 0x1FFF:
		// RAM enable latch: a low nibble of exactly 0xA enables
		m.ramEnabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		// low 5 bits of the ROM bank; 0 always reads back as 1
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = m.romBank&0x60 | bank
	case addr >= 0x4000 && addr <= 0x5FFF:
		if m.bankingMode == 1 && m.largeROM {
			m.romBank = m.romBank&0x1F | (value&0x03)<<5
		} else {
			m.ramBank = value & 0x03
		}
	case addr >= 0x6000 && addr <= 0x7FFF:
		m.bankingMode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		m.ram[m.ramOffset(addr)] = value
	}
	return value
}

func (m *MBC1) ramOffset(addr uint16) uint32 {
	offset := uint32(m.ramBank) * 0x2000
	if offset >= uint32(len(m.ram)) {
		offset %= uint32(len(m.ram))
	}
	return offset + uint32(addr-0xA000)
}
