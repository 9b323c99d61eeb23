package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	One receiving session: samples in, messages out.
 *
 * Description:	All of the decoding state lives here and is updated in
 *		gap order.  Nothing is shared; a Decoder must only be
 *		used from one goroutine.
 *
 *		samples -> averages -> sub-bit -> debounce
 *			-> bitrate detection or bit detection
 *			-> byte -> frame state -> message
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

var ErrBlockLength = errors.New("sample block has wrong length")

type Decoder struct {
	cfg Config

	state  State
	opened bool // First delimiter seen.
	seq    int  // Sequence number of the next message.

	averages  []int
	debouncer *Debouncer
	estimator *BitrateEstimator
	clock     bitClock
	bitrate   int
	tolerance int
	assembler *byteAssembler
	msg       *messageBuffer

	logger        *log.Logger
	radioTrace    io.Writer // Amplitude bar graph, nil for none.
	bitTrace      io.Writer // Bits and bytes as they are found, nil for none.
	onStateChange func(State)
}

func NewDecoder(cfg Config) (*Decoder, error) {
	var validateErr = cfg.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return &Decoder{ //nolint:exhaustruct
		cfg:       cfg,
		state:     StateBitrateDetect,
		opened:    false,
		seq:       1,
		averages:  make([]int, cfg.AveragesPerGap),
		debouncer: NewDebouncer(cfg.DebounceDepth),
		estimator: NewBitrateEstimator(&cfg),
		clock:     bitClock{prev: 0, nSame: 0},
		assembler: newByteAssembler(cfg.BitBufferLength),
		msg:       newMessageBuffer(cfg.MaxMessageLength),
		logger:    discardLogger(),
	}, nil
}

func (d *Decoder) SetLogger(l *log.Logger) {
	d.logger = l
}

func (d *Decoder) SetRadioTrace(w io.Writer) {
	d.radioTrace = w
}

func (d *Decoder) SetBitTrace(w io.Writer) {
	d.bitTrace = w
}

// OnStateChange registers f to be called after every state change.
func (d *Decoder) OnStateChange(f func(State)) {
	d.onStateChange = f
}

func (d *Decoder) State() State {
	return d.state
}

// Bitrate returns the bit duration and tolerance in gaps, zero until known.
func (d *Decoder) Bitrate() (int, int) {
	return d.bitrate, d.tolerance
}

func (d *Decoder) Config() Config {
	return d.cfg
}

/*------------------------------------------------------------------
 *
 * Function:	ProcessBlock
 *
 * Purpose:	Run every gap of one sample block through the decoder.
 *
 * Inputs:	block	- Exactly cfg.BlockLength() samples.
 *
 * Returns:	Messages completed while processing this block, in order.
 *
 *------------------------------------------------------------------*/

func (d *Decoder) ProcessBlock(block []byte) ([]Message, error) {
	if len(block) != d.cfg.BlockLength() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBlockLength, len(block), d.cfg.BlockLength())
	}

	var messages []Message

	for gap := range d.cfg.GapsPerBit {
		gapAverages(block, gap, &d.cfg, d.averages)

		if d.radioTrace != nil {
			for _, sum := range d.averages {
				radioBar(d.radioTrace, sum)
			}
		}

		var sub = d.debouncer.Filter(gapSubBit(d.averages, d.cfg.GapTrigger))

		var m, ok = d.processSubBit(sub)
		if ok {
			messages = append(messages, m)
		}
	}

	return messages, nil
}

func (d *Decoder) processSubBit(sub int) (Message, bool) {
	var m Message
	var ok bool

	if d.state == StateBitrateDetect {
		d.detectBitrate(sub)
	} else {
		var bit = d.clock.detect(sub, d.bitrate, d.tolerance)
		if bit != NO_BIT {
			m, ok = d.processBit(bit)
		}
	}

	d.clock.tick()

	return m, ok
}

func (d *Decoder) detectBitrate(sub int) {
	if !d.cfg.DetectBitrate {
		d.clock.nSame = 0
		d.lockBitrate(d.cfg.DefaultBitrate, toleranceFor(d.cfg.DefaultBitrate, d.cfg.ToleranceRatio), "used")

		return
	}

	var interval, changed = d.clock.change(sub)
	if !changed {
		return
	}

	d.tracef("%d %d\n", sub, interval)

	var bitrate, tolerance, done = d.estimator.Observe(interval)
	if done {
		d.lockBitrate(bitrate, tolerance, "detected")
	}
}

func (d *Decoder) lockBitrate(bitrate int, tolerance int, how string) {
	d.bitrate = bitrate
	d.tolerance = tolerance

	d.logger.Info("Bitrate "+how, "gaps_per_bit", bitrate, "tolerance", tolerance)

	d.apply(Event{Kind: EventBitrateLocked, Bit: 0, Char: 0})
}

func (d *Decoder) processBit(bit int) (Message, bool) {
	if d.state == StateInterframe {
		if bit == 0 {
			d.tracef("Frame : ")
		}

		return d.apply(Event{Kind: EventBit, Bit: bit, Char: 0})
	}

	d.tracef("%d", bit)

	var b, complete = d.assembler.Push(bit)
	if !complete {
		return Message{}, false
	}

	if b.Value == DELIMITER {
		return d.apply(Event{Kind: EventDelimiter, Bit: 0, Char: 0})
	}

	if d.opened {
		d.traceByte(b)
	}

	return d.apply(Event{Kind: EventCharacter, Bit: 0, Char: messageChar(b, &d.cfg)})
}

// apply runs the state machine and carries out its effect.
func (d *Decoder) apply(ev Event) (Message, bool) {
	var prev = d.state
	var next, effect = Transition(d.state, d.opened, ev)

	d.state = next

	var m Message
	var ok bool

	switch effect {
	case EffectOpenStream:
		d.opened = true
	case EffectFlush:
		d.tracef(" [Interframe...]\n")

		m = Message{Seq: d.seq, Text: d.msg.Take()} //nolint:exhaustruct
		ok = true
		d.seq++
	case EffectAppend:
		if !d.msg.Append(ev.Char) {
			d.logger.Debug("Message buffer full, character dropped", "seq", d.seq)
		}
	case EffectNone:
	}

	if next != prev && d.onStateChange != nil {
		d.onStateChange(next)
	}

	return m, ok
}

func (d *Decoder) tracef(format string, a ...any) {
	if d.bitTrace != nil {
		fmt.Fprintf(d.bitTrace, format, a...)
	}
}

// traceByte annotates a received byte the way the debug output always has: (72 0x48 'H').
func (d *Decoder) traceByte(b DecodedByte) {
	if d.bitTrace == nil {
		return
	}

	if isPrintable(b.Value) {
		d.tracef(" (%d 0x%02x '%c') ", b.Value, b.Value, b.Value)
	} else {
		d.tracef(" (%d 0x%02x ???) ", b.Value, b.Value)
	}

	if d.cfg.ParityCheck && !b.ParityOK(d.cfg.ParityEven) {
		d.tracef(" [Parity check failed] ")
	}
}
