package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shenawy29/oxyboy/oxyboy/addr"
	"github.com/shenawy29/oxyboy/oxyboy/memory"
)

func TestSpriteAttributeParsing(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	putSprite(mmu, 0, 80, 50, 0x42, 0xE0) // behind BG, flip X, flip Y
	putSprite(mmu, 1, 20, 100, 0x10, 0x10) // OBP1

	s0 := oam.GetSprite(0)
	assert.NotNil(t, s0)
	assert.Equal(t, uint8(50), s0.Y)
	assert.Equal(t, uint8(80), s0.X)
	assert.Equal(t, uint8(0x42), s0.TileIndex)
	assert.True(t, s0.FlipX)
	assert.True(t, s0.FlipY)
	assert.True(t, s0.BehindBG)
	assert.False(t, s0.PaletteOBP1)

	s1 := oam.GetSprite(1)
	assert.NotNil(t, s1)
	assert.Equal(t, uint8(100), s1.Y)
	assert.Equal(t, uint8(20), s1.X)
	assert.False(t, s1.FlipX)
	assert.False(t, s1.FlipY)
	assert.False(t, s1.BehindBG)
	assert.True(t, s1.PaletteOBP1)
}

func TestScanlineSelectionByHeight(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	putSprite(mmu, 0, 20, 10, 0, 0)
	putSprite(mmu, 1, 30, 20, 0, 0)
	putSprite(mmu, 2, 40, 20, 0, 0)
	putSprite(mmu, 3, 50, 50, 0, 0)

	oamIndices := func(sprites []Sprite) []int {
		out := make([]int, len(sprites))
		for i, s := range sprites {
			out[i] = s.OAMIndex
		}
		return out
	}

	t.Run("8x8 sprites", func(t *testing.T) {
		mmu.Write(addr.LCDC, 0x00)

		assert.Equal(t, []int{0}, oamIndices(oam.GetSpritesForScanline(10)))
		assert.Equal(t, []int{0}, oamIndices(oam.GetSpritesForScanline(17)), "last covered line")
		assert.Empty(t, oam.GetSpritesForScanline(18), "one line past an 8-pixel sprite")

		// drawing order: higher X first (sprite 2 at X=40, then 1 at X=30)
		assert.Equal(t, []int{2, 1}, oamIndices(oam.GetSpritesForScanline(20)))
		assert.Equal(t, []int{2, 1}, oamIndices(oam.GetSpritesForScanline(27)))
		assert.Equal(t, []int{3}, oamIndices(oam.GetSpritesForScanline(50)))
	})

	t.Run("8x16 sprites", func(t *testing.T) {
		mmu.Write(addr.LCDC, 0x04)

		assert.Equal(t, []int{0}, oamIndices(oam.GetSpritesForScanline(10)))
		// line 25 covers all three: sprite 0 (10-25), sprites 1 and 2 (20-35)
		assert.Equal(t, []int{2, 1, 0}, oamIndices(oam.GetSpritesForScanline(25)))
		assert.Equal(t, []int{2, 1}, oamIndices(oam.GetSpritesForScanline(35)))
	})
}

func TestScanlineSelectionCapsAtTen(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)
	mmu.Write(addr.LCDC, 0x00)

	// 15 candidates on the same line; only the first 10 OAM entries survive
	for i := 0; i < 15; i++ {
		putSprite(mmu, i, i, 50, byte(i), 0)
	}

	sprites := oam.GetSpritesForScanline(50)
	assert.Len(t, sprites, 10)

	// X grows with OAM index here, so drawing order is exactly reversed
	for i, s := range sprites {
		assert.Equal(t, 9-i, s.OAMIndex)
	}
}

func TestSelectionSeesLiveOAMWrites(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	mmu.Write(addr.OAMStart, 50+16)
	assert.Equal(t, uint8(50), oam.GetSprite(0).Y)

	mmu.Write(addr.OAMStart, 60+16)
	assert.Equal(t, uint8(60), oam.GetSprite(0).Y, "no caching between reads")
}

func TestGetSpriteBounds(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	assert.Nil(t, oam.GetSprite(-1))
	assert.Nil(t, oam.GetSprite(40))
	assert.NotNil(t, oam.GetSprite(39))
	assert.Len(t, oam.GetAllSprites(), 40)
}

func TestSpriteCoordinateOffsets(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	// OAM stores Y+16 and X+8; a raw (16, 8) entry is screen (0, 0)
	mmu.Write(addr.OAMStart, 16)
	mmu.Write(addr.OAMStart+1, 8)
	s := oam.GetSprite(0)
	assert.Equal(t, uint8(0), s.Y)
	assert.Equal(t, uint8(0), s.X)
}
