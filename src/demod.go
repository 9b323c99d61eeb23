package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Turn raw amplitude samples into sub-bits.
 *
 * Description:	A sample block is cut into gaps and each gap into
 *		averaging windows.  The windows are summed (not divided,
 *		everything downstream works on thresholds of sums).
 *
 *		A carrier gap looks flat: neighbouring sums are close to
 *		each other.  A gap with the carrier keyed on/off shows
 *		large jumps between neighbouring sums.  Adding up the
 *		absolute jumps and comparing against a fixed trigger
 *		gives one binary sub-bit per gap.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"strings"
)

/*------------------------------------------------------------------
 *
 * Function:	gapAverages
 *
 * Purpose:	Sum the samples of each averaging window in one gap.
 *
 * Inputs:	block	- Complete sample block.
 *		gap	- Gap index within the block.
 *		cfg	- Layout.
 *
 * Outputs:	averages - One sum per window, len = AveragesPerGap.
 *
 *------------------------------------------------------------------*/

func gapAverages(block []byte, gap int, cfg *Config, averages []int) {
	for average := range cfg.AveragesPerGap {
		var first = (gap*cfg.AveragesPerGap + average) * cfg.ValuesPerAverage
		var sum = 0

		for _, v := range block[first : first+cfg.ValuesPerAverage] {
			sum += int(v)
		}

		averages[average] = sum
	}
}

/*------------------------------------------------------------------
 *
 * Function:	gapSubBit
 *
 * Purpose:	Decide the sub-bit of one gap.
 *
 * Returns:	1 when the summed absolute differences between
 *		consecutive averages is below the trigger, else 0.
 *
 *------------------------------------------------------------------*/

func gapSubBit(averages []int, trigger int) int {
	var sum = 0

	for i := 0; i < len(averages)-1; i++ {
		var d = averages[i+1] - averages[i]
		if d < 0 {
			d = -d
		}

		sum += d
	}

	if sum < trigger {
		return 1
	}

	return 0
}

// Same scaling as the radio display has always used.
const barScale = 30
const barWidth = 200

// radioBar draws one line of the amplitude graph: an x at sum/30 and the value
// in the column after 200.  Past column 200 the x is not clipped, the value
// just follows it.
func radioBar(w io.Writer, sum int) {
	var pos = max(sum/barScale, 0)

	var line strings.Builder
	line.WriteString(strings.Repeat(" ", pos))
	line.WriteByte('x')
	line.WriteString(strings.Repeat(" ", max(barWidth-pos, 0)))

	fmt.Fprintf(w, "%s%d\n", line.String(), sum)
}
