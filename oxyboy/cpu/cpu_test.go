package cpu

import (
	"testing"

	"github.com/shenawy29/oxyboy/oxyboy/addr"
	"github.com/shenawy29/oxyboy/oxyboy/memory"
	"github.com/stretchr/testify/assert"
)

func newTestCPU() *CPU {
	return New(memory.New())
}

func TestPowerOnRegisters(t *testing.T) {
	c := newTestCPU()
	assert.Equal(t, uint16(0x0100), c.pc)
	assert.Equal(t, uint16(0xFFFE), c.sp)
	assert.Equal(t, uint8(0x01), c.a)
	assert.Equal(t, uint8(0x80), c.f)
}

func TestDAAAfterBCDAdd(t *testing.T) {
	c := newTestCPU()
	c.a = 0x45
	c.b = 0x38
	applyAluOp(c, 0, c.b) // ADD A,B
	c.daa()

	assert.Equal(t, uint8(0x83), c.a)
	assert.False(t, c.hasFlag(zeroFlag))
	assert.False(t, c.hasFlag(subFlag))
	assert.False(t, c.hasFlag(halfCarryFlag))
	assert.False(t, c.hasFlag(carryFlag))
}

func TestHalfCarryOnInc(t *testing.T) {
	c := newTestCPU()
	c.a = 0x0F
	c.setFlag(carryFlag)
	c.a = c.inc8(c.a)

	assert.Equal(t, uint8(0x10), c.a)
	assert.False(t, c.hasFlag(zeroFlag))
	assert.True(t, c.hasFlag(halfCarryFlag))
	assert.False(t, c.hasFlag(subFlag))
	assert.True(t, c.hasFlag(carryFlag), "carry must be left untouched by INC")
}

func TestInterruptDispatch(t *testing.T) {
	c := newTestCPU()
	c.interruptsEnabled = true
	c.pc = 0x1234
	c.sp = 0xFFFE
	c.memory.Write(addr.IE, 0x01)
	c.memory.Write(addr.IF, 0x01)

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0040), c.pc)
	assert.Equal(t, byte(0x00), c.memory.Read(addr.IF))
	assert.False(t, c.interruptsEnabled)
	assert.Equal(t, uint16(0xFFFC), c.sp)
	assert.Equal(t, byte(0x34), c.memory.Read(0xFFFC))
	assert.Equal(t, byte(0x12), c.memory.Read(0xFFFD))
}

func TestHaltWakesWithoutVectoringWhenIMEIsZero(t *testing.T) {
	c := newTestCPU()
	c.interruptsEnabled = false
	c.halted = true
	c.pc = 0x0200
	c.memory.Write(addr.IE, 0x01)
	c.memory.Write(addr.IF, 0x01)

	cycles := c.handleInterruptDispatch()

	assert.Equal(t, 0, cycles)
	assert.False(t, c.halted)
	assert.Equal(t, uint16(0x0200), c.pc)
}

func TestDeferredEILatchAppliesAfterFollowingInstruction(t *testing.T) {
	c := newTestCPU()
	c.interruptsEnabled = false
	c.eiPending = 2

	c.applyEIDIDelay()
	assert.False(t, c.interruptsEnabled, "IME must still be false during the instruction right after EI")

	c.applyEIDIDelay()
	assert.True(t, c.interruptsEnabled, "IME becomes true once the following instruction has executed")
}

func TestRETISetsIMEOnTheVeryNextStep(t *testing.T) {
	c := newTestCPU()
	c.eiPending = 1
	c.interruptsEnabled = false

	c.applyEIDIDelay()
	assert.True(t, c.interruptsEnabled)
}

func TestPushPopStackRoundTrip(t *testing.T) {
	c := newTestCPU()
	c.sp = 0xFFFE
	c.pushStack(0xBEEF)
	assert.Equal(t, uint16(0xFFFC), c.sp)

	v := c.popStack()
	assert.Equal(t, uint16(0xBEEF), v)
	assert.Equal(t, uint16(0xFFFE), c.sp)
}

func TestAFLowNibbleAlwaysZero(t *testing.T) {
	c := newTestCPU()
	c.setAF(0x1234)
	assert.Equal(t, uint8(0x30), c.f)
	assert.Equal(t, uint16(0x1230), c.getAF())
}

func TestPopAFMasksLowNibble(t *testing.T) {
	c := newTestCPU()
	c.sp = 0xFFFC
	c.memory.Write(0xFFFC, 0xEF) // low byte -> F
	c.memory.Write(0xFFFD, 0x12) // high byte -> A

	r16g3Set[3](c, c.popStack()) // POP AF

	assert.Equal(t, uint8(0x12), c.a)
	assert.Equal(t, uint8(0xE0), c.f, "F keeps only its high nibble")

	c.pushStack(c.getAF())
	assert.Equal(t, uint16(0x12E0), c.popStack())
}

func TestAccumulatorRotatesForceZeroFlagClear(t *testing.T) {
	c := newTestCPU()
	c.a = 0x80
	c.setFlag(zeroFlag)
	opRLCA(c) // A: 0x80 -> 0x01, carry out

	assert.Equal(t, uint8(0x01), c.a)
	assert.False(t, c.hasFlag(zeroFlag), "RLCA always clears Z, unlike CB RLC")
	assert.True(t, c.hasFlag(carryFlag))

	c.a = 0x00
	opRRCA(c)
	assert.False(t, c.hasFlag(zeroFlag), "Z stays clear even when the result is zero")
}

func TestAddSPSignedFlags(t *testing.T) {
	c := newTestCPU()
	c.sp = 0x00FF

	result := c.addSPSigned(1)

	assert.Equal(t, uint16(0x0100), result)
	assert.False(t, c.hasFlag(zeroFlag), "Z is always 0 for ADD SP,d8")
	assert.False(t, c.hasFlag(subFlag))
	assert.True(t, c.hasFlag(halfCarryFlag), "carry out of bit 3 of the low byte")
	assert.True(t, c.hasFlag(carryFlag), "carry out of bit 7 of the low byte")

	c.sp = 0x0001
	result = c.addSPSigned(-2)
	assert.Equal(t, uint16(0xFFFF), result)
}

func TestSwapIsInvolutive(t *testing.T) {
	c := newTestCPU()
	v := c.swap(c.swap(0x4F))
	assert.Equal(t, uint8(0x4F), v)
}

func TestRLCThenRRCIsIdentity(t *testing.T) {
	c := newTestCPU()
	v := c.rrc(c.rlc(0x81))
	assert.Equal(t, uint8(0x81), v)
}

func TestOAMDMACopies160Bytes(t *testing.T) {
	m := memory.New()
	for i := uint16(0); i < 0xA0; i++ {
		m.Write(0x8000+i, byte(i))
	}
	m.Write(addr.DMA, 0x80)

	for i := uint16(0); i < 0xA0; i++ {
		assert.Equal(t, byte(i), m.Read(0xFE00+i))
	}
}

func TestBankZeroRemapsToBankOne(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x4000] = 0x42
	mbc := memory.NewMBC1(rom, false, 0)
	mbc.Write(0x2000, 0x00)

	assert.Equal(t, byte(0x42), mbc.Read(0x4000))
}
