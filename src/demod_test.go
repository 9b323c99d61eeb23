package fusex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGapAverages(t *testing.T) {
	var cfg = DefaultConfig()
	var block = make([]byte, cfg.BlockLength())

	// Gap 1, average 2 gets all 3s, everything else stays 0.
	var first = (1*cfg.AveragesPerGap + 2) * cfg.ValuesPerAverage
	for i := range cfg.ValuesPerAverage {
		block[first+i] = 3
	}

	var averages = make([]int, cfg.AveragesPerGap)

	gapAverages(block, 1, &cfg, averages)
	assert.Equal(t, []int{0, 0, 3 * cfg.ValuesPerAverage, 0, 0, 0, 0, 0}, averages)

	gapAverages(block, 0, &cfg, averages)
	assert.Equal(t, make([]int, cfg.AveragesPerGap), averages)
}

func TestGapSubBit(t *testing.T) {
	// Flat carrier.
	assert.Equal(t, 1, gapSubBit([]int{2032, 2032, 2032, 2032, 2032, 2032, 2032, 2032}, DEFAULT_GAP_TRIGGER))

	// Keyed carrier.
	assert.Equal(t, 0, gapSubBit([]int{0, 4080, 0, 4080, 0, 4080, 0, 4080}, DEFAULT_GAP_TRIGGER))

	// Direction of the differences doesn't matter, only their size.
	assert.Equal(t, 1, gapSubBit([]int{1000, 1500, 1000, 1500}, DEFAULT_GAP_TRIGGER))
	assert.Equal(t, 0, gapSubBit([]int{1000, 1500, 1000, 1500, 1000}, DEFAULT_GAP_TRIGGER))

	// The trigger itself counts as a difference too big.
	assert.Equal(t, 1, gapSubBit([]int{0, 1899}, DEFAULT_GAP_TRIGGER))
	assert.Equal(t, 0, gapSubBit([]int{0, 1900}, DEFAULT_GAP_TRIGGER))
}

func TestRadioBar(t *testing.T) {
	var sb strings.Builder

	radioBar(&sb, 60)
	assert.Equal(t, "  x"+strings.Repeat(" ", barWidth-2)+"60\n", sb.String())

	sb.Reset()
	radioBar(&sb, barWidth*barScale)
	assert.Equal(t, strings.Repeat(" ", barWidth)+"x6000\n", sb.String())

	// Off the scale: x where it belongs, value straight after.
	sb.Reset()
	radioBar(&sb, 9000)
	assert.Equal(t, strings.Repeat(" ", 300)+"x9000\n", sb.String())
}
