package fusex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func filterAll(d *Debouncer, in []int) []int {
	var out = make([]int, len(in))

	for i, sub := range in {
		out[i] = d.Filter(sub)
	}

	return out
}

func repeat(v int, n int) []int {
	var out = make([]int, n)

	for i := range out {
		out[i] = v
	}

	return out
}

func TestDebounceDelay(t *testing.T) {
	var d = NewDebouncer(DEFAULT_DEBOUNCE_DEPTH)

	var out = filterAll(d, repeat(1, 20))

	assert.Equal(t, repeat(0, DEFAULT_DEBOUNCE_DEPTH+1), out[:DEFAULT_DEBOUNCE_DEPTH+1])
	assert.Equal(t, repeat(1, 20-DEFAULT_DEBOUNCE_DEPTH-1), out[DEFAULT_DEBOUNCE_DEPTH+1:])
}

func TestDebounceSpikeRemoved(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var depth = rapid.IntRange(1, 16).Draw(t, "depth")
		var background = rapid.IntRange(0, 1).Draw(t, "background")
		var spike = rapid.IntRange(1, depth).Draw(t, "spike")
		var after = rapid.IntRange(1, 40).Draw(t, "after")

		var d = NewDebouncer(depth)

		// Settle on the background value first.
		filterAll(d, repeat(background, depth+2))

		var in = append(repeat(1-background, spike), repeat(background, after)...)
		var out = filterAll(d, in)

		assert.Equal(t, repeat(background, len(in)), out)
	})
}

func TestDebounceLongRunsDelayed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var depth = rapid.IntRange(1, 16).Draw(t, "depth")
		var runs = rapid.SliceOfN(rapid.IntRange(depth+2, 60), 1, 10).Draw(t, "runs")

		var in []int
		var v = 1
		for _, n := range runs {
			in = append(in, repeat(v, n)...)
			v = 1 - v
		}

		var d = NewDebouncer(depth)
		var out = filterAll(d, in)

		var expected = append(repeat(0, depth+1), in[:len(in)-depth-1]...)

		assert.Equal(t, expected, out)
	})
}
