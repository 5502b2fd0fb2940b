// Package cpu implements the DMG's 8-bit fetch-decode-execute core: its
// register file, the ~500-opcode instruction set (unprefixed and
// 0xCB-prefixed), HALT, and the deferred-IME interrupt dispatch.
package cpu

import (
	"fmt"

	"github.com/shenawy29/oxyboy/oxyboy/addr"
	"github.com/shenawy29/oxyboy/oxyboy/bit"
	"github.com/shenawy29/oxyboy/oxyboy/memory"
)

// Flag is one of the four bits populated in the F register.
type Flag = uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// CPU holds the DMG register file and drives instruction execution.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	memory *memory.MMU

	interruptsEnabled bool
	eiPending         int // counts down 2->1->applied->0, see applyEIDIDelay
	diPending         int

	halted bool

	// cycles is a running total of machine cycles executed. Nothing reads
	// it; it plays no role in instruction semantics.
	cycles uint64
}

// New returns a CPU with the fixed post-boot-ROM power-on register values,
// wired to mmu.
func New(mmu *memory.MMU) *CPU {
	return &CPU{
		a: 0x01, f: 0x80,
		b: 0xFF, c: 0x13,
		d: 0x00, e: 0xC1,
		h: 0x84, l: 0x03,
		sp:     0xFFFE,
		pc:     0x0100,
		memory: mmu,
	}
}

// PC returns the current program counter, mostly for debug tooling.
func (c *CPU) PC() uint16 { return c.pc }

// MMU exposes the memory unit the CPU is wired to.
func (c *CPU) MMU() *memory.MMU { return c.memory }

// Step executes the deferred-IME latch, then attempts interrupt dispatch,
// then either stays halted or fetch-decode-executes one instruction.
// It returns the number of machine cycles consumed.
func (c *CPU) Step() int {
	c.applyEIDIDelay()

	if cycles := c.handleInterruptDispatch(); cycles > 0 {
		c.cycles += uint64(cycles)
		return cycles
	}

	if c.halted {
		c.cycles++
		return 1
	}

	opcode := c.fetch()
	cycles := c.execute(opcode)
	c.cycles += uint64(cycles)
	return cycles
}

// applyEIDIDelay advances the two-state EI/DI latches. EI/DI write a 2 into
// the relevant counter; each step decrements outstanding counters, applying
// the pending IME value when a counter reaches 0 having been ticked from 1.
func (c *CPU) applyEIDIDelay() {
	if c.eiPending > 0 {
		c.eiPending--
		if c.eiPending == 0 {
			c.interruptsEnabled = true
		}
	}
	if c.diPending > 0 {
		c.diPending--
		if c.diPending == 0 {
			c.interruptsEnabled = false
		}
	}
}

// handleInterruptDispatch implements the CPU's interrupt-check step: if
// IME==false and not halted, nothing to do. Otherwise compute the pending
// mask; a halted CPU wakes on any pending bit whether or not IME is set, but
// only vectors to a handler when IME is also set.
func (c *CPU) handleInterruptDispatch() int {
	if !c.interruptsEnabled && !c.halted {
		return 0
	}
	if !c.handleInterrupts() {
		return 0
	}

	c.halted = false
	if !c.interruptsEnabled {
		return 0
	}

	ie := c.memory.Read(addr.IE)
	iflag := c.memory.Read(addr.IF)
	bitIndex := lowestSetBit(ie & iflag)

	c.interruptsEnabled = false
	c.memory.Write(addr.IF, bit.Reset(bitIndex, iflag))

	c.pushStack(c.pc)
	c.pc = 0x0040 + 8*uint16(bitIndex)

	return 4
}

// handleInterrupts reports whether IE&IF is non-zero, independent of IME.
func (c *CPU) handleInterrupts() bool {
	ie := c.memory.Read(addr.IE)
	iflag := c.memory.Read(addr.IF)
	return ie&iflag != 0
}

func lowestSetBit(v uint8) uint8 {
	for i := uint8(0); i < 8; i++ {
		if v&(1<<i) != 0 {
			return i
		}
	}
	return 0
}

func (c *CPU) fetch() uint16 {
	op := c.memory.Read(c.pc)
	c.pc++
	if op == 0xCB {
		cb := c.memory.Read(c.pc)
		c.pc++
		return 0xCB00 | uint16(cb)
	}
	return uint16(op)
}

func (c *CPU) execute(opcode uint16) int {
	fn := decode(opcode)
	if fn == nil {
		panic(fmt.Sprintf("unimplemented opcode 0x%04X at pc=0x%04X", opcode, c.pc-1))
	}
	return fn(c)
}

func (c *CPU) readImmediate() uint8 {
	v := c.memory.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) readImmediateWord() uint16 {
	lo := c.readImmediate()
	hi := c.readImmediate()
	return bit.Combine(hi, lo)
}

// pushStack decrements SP twice, writing v's high byte then low byte, so the
// low byte ends up at the lower address.
func (c *CPU) pushStack(v uint16) {
	c.sp--
	c.memory.Write(c.sp, bit.High(v))
	c.sp--
	c.memory.Write(c.sp, bit.Low(v))
}

// popStack reads the low byte then the high byte and advances SP past both.
func (c *CPU) popStack() uint16 {
	lo := c.memory.Read(c.sp)
	c.sp++
	hi := c.memory.Read(c.sp)
	c.sp++
	return bit.Combine(hi, lo)
}

// register-pair accessors

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0 // low nibble of F is always zero
}

func (c *CPU) getBC() uint16  { return bit.Combine(c.b, c.c) }
func (c *CPU) setBC(v uint16) { c.b = bit.High(v); c.c = bit.Low(v) }

func (c *CPU) getDE() uint16  { return bit.Combine(c.d, c.e) }
func (c *CPU) setDE(v uint16) { c.d = bit.High(v); c.e = bit.Low(v) }

func (c *CPU) getHL() uint16  { return bit.Combine(c.h, c.l) }
func (c *CPU) setHL(v uint16) { c.h = bit.High(v); c.l = bit.Low(v) }

// flag helpers

func (c *CPU) setFlag(f Flag)         { c.f |= f }
func (c *CPU) clearFlag(f Flag)       { c.f &^= f }
func (c *CPU) hasFlag(f Flag) bool    { return c.f&f != 0 }
func (c *CPU) setFlagIf(f Flag, v bool) {
	if v {
		c.setFlag(f)
	} else {
		c.clearFlag(f)
	}
}
