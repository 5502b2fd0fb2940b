package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shenawy29/oxyboy/oxyboy/addr"
)

func TestTileBaseSelection(t *testing.T) {
	gpu, mmu := newTestGPU()

	mmu.Write(addr.LCDC, 0x90) // LCDC bit 4 set -> unsigned 0x8000 table
	base, signed := gpu.tileBase()
	assert.Equal(t, uint16(0x8000), base)
	assert.False(t, signed)

	mmu.Write(addr.LCDC, 0x80) // bit 4 clear -> signed table
	base, signed = gpu.tileBase()
	assert.Equal(t, uint16(0x9000), base)
	assert.True(t, signed)
}

func TestUnsignedTileAddressing(t *testing.T) {
	gpu, _ := newTestGPU()

	tests := []struct {
		name      string
		tileIndex byte
		rowOffset uint16
		expected  uint16
	}{
		{"tile 0, row 0", 0x00, 0, 0x8000},
		{"tile 1, row 0", 0x01, 0, 0x8010},
		{"tile 1, row 3", 0x01, 6, 0x8016},
		{"tile 128", 0x80, 0, 0x8800},
		{"tile 255, last row", 0xFF, 14, 0x8FFE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gpu.tileAddrFor(0x8000, false, tt.tileIndex, tt.rowOffset)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSignedTileAddressing(t *testing.T) {
	gpu, _ := newTestGPU()

	// The signed table is centered on 0x9000: indices 0-127 grow upward,
	// 128-255 are interpreted as -128..-1 and reach down into 0x8800-0x8FFF.
	tests := []struct {
		name      string
		tileIndex byte
		rowOffset uint16
		expected  uint16
	}{
		{"tile 0", 0x00, 0, 0x9000},
		{"tile 127", 0x7F, 0, 0x97F0},
		{"tile -128", 0x80, 0, 0x8800},
		{"tile -1", 0xFF, 0, 0x8FF0},
		{"tile -1, row 2", 0xFF, 4, 0x8FF4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gpu.tileAddrFor(0x9000, true, tt.tileIndex, tt.rowOffset)
			assert.Equal(t, tt.expected, got)
		})
	}
}
