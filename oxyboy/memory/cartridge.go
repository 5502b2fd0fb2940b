package memory

import (
	"log/slog"
)

// Cartridge header field offsets, see https://gbdev.io/pandocs/The_Cartridge_Header.html
const (
	titleStart            = 0x0134
	titleEnd               = 0x0143
	cartridgeTypeAddress    = 0x0147
	romSizeAddress          = 0x0148
	ramSizeAddress          = 0x0149
	headerChecksumAddress   = 0x014D
	headerChecksumStart     = 0x0134
	headerChecksumEnd       = 0x014C
)

// mbcType identifies which bank controller a cartridge should be driven with.
type mbcType uint8

const (
	NoMBCType mbcType = iota
	MBC1Type
)

// ramBankCounts maps the cartridge RAM-size header byte to a bank count,
// each bank being 8 KiB.
var ramBankCounts = map[byte]uint8{
	0x00: 0,
	0x01: 1, // unofficial 2KiB value, rounded up to one bank
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// Cartridge holds a loaded ROM image plus the header fields needed to
// construct the right bank controller for it.
type Cartridge struct {
	data         []byte
	title        string
	mbcType      mbcType
	hasBattery   bool
	ramBankCount uint8
}

// NewCartridge returns an empty cartridge standing in for an empty slot. Its
// 32 KiB ROM is zero-filled, so ROM-window reads return 0x00; external RAM
// reads return open-bus 0xFF via NoMBC.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x8000),
		title:   "(no cartridge)",
		mbcType: NoMBCType,
	}
}

// NewCartridgeWithData parses a raw ROM image's header and returns a
// Cartridge ready to back an MMU. A checksum mismatch is logged as a
// warning; it never prevents emulation.
func NewCartridgeWithData(data []byte) *Cartridge {
	c := &Cartridge{data: data}

	if len(data) > titleEnd {
		c.title = cleanGameboyTitle(data[titleStart : titleEnd+1])
	} else {
		c.title = "(Untitled)"
	}

	c.verifyChecksum()
	c.parseCartridgeType()
	c.parseRAMSize()

	slog.Info("loaded cartridge", "title", c.title, "mbc", c.mbcType, "rom_bytes", len(data), "ram_banks", c.ramBankCount)

	return c
}

// verifyChecksum recomputes the header checksum at 0x014D and warns on
// mismatch. Algorithm: chk = 0; for a in 0x0134..=0x014C: chk -= rom[a] + 1.
func (c *Cartridge) verifyChecksum() {
	if len(c.data) <= headerChecksumAddress {
		slog.Warn("cartridge too small to contain a header checksum")
		return
	}

	var chk byte
	for a := headerChecksumStart; a <= headerChecksumEnd; a++ {
		chk = chk - c.data[a] - 1
	}

	if want := c.data[headerChecksumAddress]; chk != want {
		slog.Warn("cartridge header checksum mismatch", "computed", chk, "expected", want)
	}
}

func (c *Cartridge) parseCartridgeType() {
	if len(c.data) <= cartridgeTypeAddress {
		c.mbcType = NoMBCType
		return
	}

	switch c.data[cartridgeTypeAddress] {
	case 0x00:
		c.mbcType = NoMBCType
	case 0x01:
		c.mbcType = MBC1Type
	case 0x02:
		c.mbcType = MBC1Type
	case 0x03:
		c.mbcType = MBC1Type
		c.hasBattery = true
	default:
		slog.Warn("unrecognized cartridge type, falling back to MBC1", "type", c.data[cartridgeTypeAddress])
		c.mbcType = MBC1Type
	}
}

func (c *Cartridge) parseRAMSize() {
	if len(c.data) <= ramSizeAddress {
		return
	}
	c.ramBankCount = ramBankCounts[c.data[ramSizeAddress]]
}

// Title returns the cleaned 16-byte title field from the cartridge header.
func (c *Cartridge) Title() string {
	return c.title
}
