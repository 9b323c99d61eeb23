package fusex

/********************************************************************************
 *
 * Purpose:	Recover bits from debounced sub-bits and build bytes.
 *
 * Description:	There is no clock.  A change of the sub-bit is a bit of
 *		the new value.  When nothing changes for longer than a
 *		bit plus the tolerance, the same value was sent again.
 *
 *		After such an inferred bit the counter restarts from the
 *		tolerance rather than zero.  That keeps the following
 *		inferred bits near the middle of their bit periods
 *		instead of counting a long run twice.
 *
 *******************************************************************************/

const NO_BIT = -1

// bitClock counts gaps since the last logical bit.
type bitClock struct {
	prev  int // Previous debounced sub-bit.
	nSame int
}

// change reports whether sub differs from the previous sub-bit.  If so it
// returns the gaps counted since the previous change and restarts the count.
func (c *bitClock) change(sub int) (int, bool) {
	if sub == c.prev {
		return 0, false
	}

	var interval = c.nSame
	c.prev = sub
	c.nSame = 0

	return interval, true
}

/*------------------------------------------------------------------
 *
 * Function:	detect
 *
 * Purpose:	Edge or timeout bit detection for one gap.
 *
 * Inputs:	sub		- Debounced sub-bit.
 *		bitrate		- Gaps per bit.
 *		tolerance	- Slack in gaps.
 *
 * Returns:	Detected bit or NO_BIT.
 *
 *------------------------------------------------------------------*/

func (c *bitClock) detect(sub int, bitrate int, tolerance int) int {
	if _, changed := c.change(sub); changed {
		return sub
	}

	if c.nSame > bitrate+tolerance {
		c.nSame = tolerance
		return sub
	}

	return NO_BIT
}

func (c *bitClock) tick() {
	c.nSame++
}

type byteAssembler struct {
	bits []int
	n    int
}

func newByteAssembler(length int) *byteAssembler {
	return &byteAssembler{
		bits: make([]int, length),
		n:    0,
	}
}

// Push adds one bit.  When the buffer is full the byte is returned and the buffer cleared.
func (a *byteAssembler) Push(bit int) (DecodedByte, bool) {
	a.bits[a.n] = bit
	a.n++

	if a.n < len(a.bits) {
		return DecodedByte{}, false
	}

	var b = AssembleByte(a.bits)

	a.n = 0
	for i := range a.bits {
		a.bits[i] = 0
	}

	return b, true
}

// AssembleByte takes bits 0-7, least significant first, and bit 8 as parity.
func AssembleByte(bits []int) DecodedByte {
	var value = 0
	var parity = 0

	for i := range DATA_BITS {
		value += bits[i] << i
		parity ^= bits[i]
	}

	return DecodedByte{
		Value:     byte(value),
		Parity:    parity,
		ParityBit: bits[DATA_BITS],
	}
}
