package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Suppress short sub-bit flips before they are used.
 *
 * Description:	The last depth+2 sub-bits are remembered.  When the
 *		newest and the oldest agree, anything different between
 *		them is a bounce and the whole history is overwritten
 *		with the agreed value.
 *
 *		The value handed on is always the oldest one so a bounce
 *		is corrected before anybody sees it.  The price is a
 *		fixed delay of depth+1 gaps.
 *
 *------------------------------------------------------------------*/

// subBitRing is a fixed size history indexed by age, 0 being the newest.
type subBitRing struct {
	buf  []int
	head int // Slot of the newest value.
}

func newSubBitRing(size int) *subBitRing {
	return &subBitRing{
		buf:  make([]int, size),
		head: 0,
	}
}

func (r *subBitRing) Len() int {
	return len(r.buf)
}

// Push stores v as the newest value, dropping the oldest.
func (r *subBitRing) Push(v int) {
	r.head--
	if r.head < 0 {
		r.head = len(r.buf) - 1
	}

	r.buf[r.head] = v
}

func (r *subBitRing) At(age int) int {
	return r.buf[(r.head+age)%len(r.buf)]
}

func (r *subBitRing) Fill(v int) {
	for i := range r.buf {
		r.buf[i] = v
	}
}

type Debouncer struct {
	history *subBitRing
}

// NewDebouncer creates a filter of the given depth.  History starts as all zeros.
func NewDebouncer(depth int) *Debouncer {
	return &Debouncer{
		history: newSubBitRing(depth + 2),
	}
}

/*------------------------------------------------------------------
 *
 * Function:	Filter
 *
 * Purpose:	Add one raw sub-bit and get the debounced one.
 *
 * Inputs:	sub	- Sub-bit from the gap detector.
 *
 * Returns:	Oldest value of the history after correction.
 *
 *------------------------------------------------------------------*/

func (d *Debouncer) Filter(sub int) int {
	var h = d.history

	h.Push(sub)

	var newest = h.At(0)
	var oldest = h.At(h.Len() - 1)

	if newest == oldest {
		for age := 1; age < h.Len()-1; age++ {
			if h.At(age) != newest {
				h.Fill(newest)
				break
			}
		}
	}

	return h.At(h.Len() - 1)
}
