package fusex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBitrateEstimatorSkipsSettling(t *testing.T) {
	var cfg = DefaultConfig()
	var e = NewBitrateEstimator(&cfg)

	// Junk while the signal settles, then the real thing.
	for range DEFAULT_DETECT_START {
		var _, _, done = e.Observe(500)
		assert.False(t, done)
	}

	for i := DEFAULT_DETECT_START; i < DEFAULT_DETECT_STOP; i++ {
		var _, _, done = e.Observe(27)
		assert.False(t, done)
	}

	assert.Equal(t, DEFAULT_DETECT_STOP, e.Collected())

	// A full array alone is not enough, one more transition completes it.
	// That interval is not part of the average.
	var bitrate, tolerance, done = e.Observe(500)
	assert.True(t, done)
	assert.Equal(t, 27, bitrate)
	assert.Equal(t, 14, tolerance)
	assert.Equal(t, DEFAULT_DETECT_STOP, e.Collected())
}

func TestBitrateEstimatorRounds(t *testing.T) {
	var cfg = DefaultConfig()
	var e = NewBitrateEstimator(&cfg)

	var bitrate, tolerance int
	var done bool

	// 15 counted intervals averaging 26.7, then the completing transition.
	for i := range DEFAULT_DETECT_STOP + 1 {
		var interval = 26
		if i%3 == 0 {
			interval = 28
		}

		bitrate, tolerance, done = e.Observe(interval)
	}

	assert.True(t, done)
	assert.Equal(t, 27, bitrate)
	assert.Equal(t, 14, tolerance)
}

func TestBitrateEstimatorConstant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var cfg = DefaultConfig()
		cfg.ToleranceRatio = rapid.Float64Range(0, 1).Draw(t, "ratio")

		var v = rapid.IntRange(1, 500).Draw(t, "interval")
		var e = NewBitrateEstimator(&cfg)

		var bitrate, tolerance int
		var done bool

		for range cfg.DetectStop {
			bitrate, tolerance, done = e.Observe(v)
			assert.False(t, done)
		}

		bitrate, tolerance, done = e.Observe(rapid.IntRange(1, 500).Draw(t, "last"))

		assert.True(t, done)
		assert.Equal(t, v, bitrate)
		assert.Equal(t, toleranceFor(v, cfg.ToleranceRatio), tolerance)
	})
}

func TestToleranceFor(t *testing.T) {
	assert.Equal(t, 14, toleranceFor(27, 0.5))
	assert.Equal(t, 13, toleranceFor(26, 0.5))
	assert.Equal(t, 0, toleranceFor(27, 0))
}
