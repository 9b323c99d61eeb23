package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Produce sample blocks the decoder will accept.
 *
 * Description:	Used by gen_samples and the tests.  Line bits are
 *		rendered gap by gap:
 *
 *		1	Flat carrier.  Every sample at mid level.
 *
 *		0	Keyed.  Averaging windows alternate between
 *			minimum and maximum amplitude so neighbouring
 *			sums differ as much as they possibly can.
 *
 *		Each character on the line is a 0 start bit, 8 data
 *		bits least significant first, a parity bit and two
 *		1 stop bits.  The receiver keeps the start bit of the
 *		following character as the last bit of its 12 bit
 *		buffer, so back to back characters line up.
 *
 *------------------------------------------------------------------*/

const MARK_LEVEL = 127

const STOP_BITS = 2

type Modulator struct {
	cfg       Config
	bitLength int // gaps per line bit
	noise     int // Peak noise added to each sample, 0 for none.
	seed      uint32
	samples   []byte
}

func NewModulator(cfg Config, bitLength int) *Modulator {
	return &Modulator{
		cfg:       cfg,
		bitLength: bitLength,
		noise:     0,
		seed:      1,
		samples:   nil,
	}
}

// SetNoise adds pseudo random noise of up to +-peak to every sample.  Always the same sequence.
func (m *Modulator) SetNoise(peak int) {
	m.noise = peak
	m.seed = 1
}

// Same generator as C rand() in many libraries, so files are reproducible everywhere.
func (m *Modulator) rand() int {
	m.seed = m.seed*1103515245 + 12345
	return int((m.seed >> 16) & 0x7fff)
}

func (m *Modulator) sample(v int) byte {
	if m.noise > 0 {
		v += m.rand()%(2*m.noise+1) - m.noise
	}

	return byte(min(max(v, 0), 255))
}

func (m *Modulator) gap(sub int) {
	for average := range m.cfg.AveragesPerGap {
		var level = MARK_LEVEL
		if sub == 0 {
			level = 255 * (average % 2)
		}

		for range m.cfg.ValuesPerAverage {
			m.samples = append(m.samples, m.sample(level))
		}
	}
}

// Bit appends one line bit.
func (m *Modulator) Bit(bit int) {
	for range m.bitLength {
		m.gap(bit)
	}
}

func (m *Modulator) Bits(bits ...int) {
	for _, b := range bits {
		m.Bit(b)
	}
}

// Idle holds the line at mark.
func (m *Modulator) Idle(bits int) {
	for range bits {
		m.Bit(1)
	}
}

// Preamble gives the bitrate detector transitions to measure, then enough
// mark for the receiver to find the opening delimiter.
func (m *Modulator) Preamble(alternations int, idleBits int) {
	for i := range alternations {
		m.Bit(1 - i%2)
	}

	m.Idle(idleBits)
}

func (m *Modulator) parityBit(b byte) int {
	var parity = 0

	for i := range DATA_BITS {
		parity ^= int(b>>i) & 1
	}

	if m.cfg.ParityEven {
		return parity
	}

	return 1 - parity
}

// Byte sends one character with start, parity and stop bits.
func (m *Modulator) Byte(b byte) {
	m.Bit(0)

	for i := range DATA_BITS {
		m.Bit(int(b>>i) & 1)
	}

	m.Bit(m.parityBit(b))
	m.Idle(STOP_BITS)
}

// ByteBadParity is Byte with the parity bit inverted.
func (m *Modulator) ByteBadParity(b byte) {
	m.Bit(0)

	for i := range DATA_BITS {
		m.Bit(int(b>>i) & 1)
	}

	m.Bit(1 - m.parityBit(b))
	m.Idle(STOP_BITS)
}

const MESSAGE_TRAILER = 12

// Message sends text, the closing delimiter and some mark idle.
func (m *Modulator) Message(text string) {
	for i := range len(text) {
		m.Byte(text[i])
	}

	m.Byte(DELIMITER)
	m.Idle(MESSAGE_TRAILER)
}

// Len is the number of samples so far.
func (m *Modulator) Len() int {
	return len(m.samples)
}

// Blocks pads with mark to a whole number of blocks and hands over the samples.
func (m *Modulator) Blocks() []byte {
	var blockLength = m.cfg.BlockLength()

	for len(m.samples)%blockLength != 0 {
		m.samples = append(m.samples, m.sample(MARK_LEVEL))
	}

	var out = m.samples
	m.samples = nil

	return out
}
