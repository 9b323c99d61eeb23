package fusex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulatorGaps(t *testing.T) {
	var cfg = DefaultConfig()
	var m = NewModulator(cfg, 1)

	m.Bits(1, 0)

	var samples = m.Blocks()
	require.Len(t, samples, cfg.BlockLength())

	var averages = make([]int, cfg.AveragesPerGap)

	gapAverages(samples, 0, &cfg, averages)
	assert.Equal(t, 1, gapSubBit(averages, cfg.GapTrigger))

	gapAverages(samples, 1, &cfg, averages)
	assert.Equal(t, 0, gapSubBit(averages, cfg.GapTrigger))

	// Padding is mark.
	for gap := 2; gap < cfg.GapsPerBit; gap++ {
		gapAverages(samples, gap, &cfg, averages)
		assert.Equal(t, 1, gapSubBit(averages, cfg.GapTrigger))
	}
}

func TestModulatorByteLength(t *testing.T) {
	var cfg = DefaultConfig()
	var m = NewModulator(cfg, DEFAULT_BITRATE)

	m.Byte('A')

	// Start, 8 data, parity, 2 stop.
	assert.Equal(t, (1+DATA_BITS+1+STOP_BITS)*DEFAULT_BITRATE*cfg.GapLength(), m.Len())
}

func TestModulatorParity(t *testing.T) {
	var cfg = DefaultConfig()
	var m = NewModulator(cfg, 1)

	assert.Equal(t, 0, m.parityBit('H')) // 0x48, two ones
	assert.Equal(t, 1, m.parityBit('I')) // 0x49, three ones
	assert.Equal(t, 0, m.parityBit(DELIMITER))

	cfg.ParityEven = false
	m = NewModulator(cfg, 1)

	assert.Equal(t, 1, m.parityBit('H'))
	assert.Equal(t, 0, m.parityBit('I'))
}

func TestModulatorNoise(t *testing.T) {
	var cfg = DefaultConfig()

	var generate = func() []byte {
		var m = NewModulator(cfg, 2)
		m.SetNoise(10)
		m.Bits(1, 0, 1)

		return m.Blocks()
	}

	var first = generate()
	assert.Equal(t, first, generate())

	var quiet = NewModulator(cfg, 2)
	quiet.Bits(1, 0, 1)
	assert.NotEqual(t, quiet.Blocks(), first)

	for _, s := range first[:2*cfg.GapLength()] {
		assert.InDelta(t, MARK_LEVEL, int(s), 10)
	}
}

func TestModulatorBlocksResets(t *testing.T) {
	var cfg = DefaultConfig()
	var m = NewModulator(cfg, 1)

	assert.Empty(t, m.Blocks())

	m.Bit(0)
	assert.Len(t, m.Blocks(), cfg.BlockLength())
	assert.Zero(t, m.Len())
}
