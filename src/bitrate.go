package fusex

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Find out how many gaps one bit lasts.
 *
 * Description:	During start up every change of the debounced sub-bit
 *		records how many gaps passed since the previous change.
 *		The first few intervals are ignored because the signal
 *		may not have settled yet; the rest are averaged.
 *
 *------------------------------------------------------------------*/

type BitrateEstimator struct {
	samples []int
	start   int
	ratio   float64
}

func NewBitrateEstimator(cfg *Config) *BitrateEstimator {
	return &BitrateEstimator{
		samples: make([]int, 0, cfg.DetectStop),
		start:   cfg.DetectStart,
		ratio:   cfg.ToleranceRatio,
	}
}

// Observe records one transition interval.  The transition after the sample
// array is full completes detection: its own interval is not counted and the
// bitrate and tolerance, in gaps, come back with done set.
func (e *BitrateEstimator) Observe(interval int) (bitrate int, tolerance int, done bool) {
	if len(e.samples) < cap(e.samples) {
		e.samples = append(e.samples, interval)
		return 0, 0, false
	}

	var sum = 0
	for _, s := range e.samples[e.start:] {
		sum += s
	}

	bitrate = int(math.Round(float64(sum) / float64(len(e.samples)-e.start)))

	return bitrate, toleranceFor(bitrate, e.ratio), true
}

// Collected is the number of intervals recorded so far.
func (e *BitrateEstimator) Collected() int {
	return len(e.samples)
}

func toleranceFor(bitrate int, ratio float64) int {
	return int(math.Round(float64(bitrate) * ratio))
}
