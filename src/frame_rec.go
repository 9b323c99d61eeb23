package fusex

/********************************************************************************
 *
 * Purpose:	Frame / interframe tracking, parity and message assembly.
 *
 * Description:	A byte of all ones is the frame delimiter.  The first one
 *		heard only tells us where the stream starts.  Each later
 *		one ends the message collected since the previous one.
 *
 *		Between messages the line idles at mark (1).  The first
 *		0 bit is the start bit of the next message.
 *
 *******************************************************************************/

import "time"

const DELIMITER = 0xFF

// Substituted for any byte failing parity or outside printable ASCII.
const SENTINEL = '?'

type State int

const (
	StateBitrateDetect State = iota
	StateFrame
	StateInterframe
)

func (s State) String() string {
	switch s {
	case StateBitrateDetect:
		return "BitrateDetect"
	case StateFrame:
		return "Frame"
	case StateInterframe:
		return "Interframe"
	default:
		return "Unknown"
	}
}

type EventKind int

const (
	EventBitrateLocked EventKind = iota // Bit duration is known.
	EventBit                            // Bit detected outside of a frame.
	EventDelimiter                      // Completed byte was 0xFF.
	EventCharacter                      // Completed byte was anything else.
)

type Event struct {
	Kind EventKind
	Bit  int  // EventBit only.
	Char byte // EventCharacter only, already checked.
}

type Effect int

const (
	EffectNone       Effect = iota
	EffectOpenStream        // First delimiter of the session.
	EffectAppend            // Store the character in the message buffer.
	EffectFlush             // Deliver the message buffer.
)

/*------------------------------------------------------------------
 *
 * Function:	Transition
 *
 * Purpose:	Decoder state machine.
 *
 * Inputs:	s	- Current state.
 *		opened	- True once the first delimiter has been seen.
 *		ev	- What happened.
 *
 * Returns:	New state and what should be done about it.
 *
 *------------------------------------------------------------------*/

func Transition(s State, opened bool, ev Event) (State, Effect) {
	switch s {
	case StateBitrateDetect:
		if ev.Kind == EventBitrateLocked {
			return StateFrame, EffectNone
		}

	case StateInterframe:
		if ev.Kind == EventBit && ev.Bit == 0 {
			return StateFrame, EffectNone
		}

	case StateFrame:
		switch ev.Kind {
		case EventDelimiter:
			if !opened {
				return StateInterframe, EffectOpenStream
			}

			return StateInterframe, EffectFlush
		case EventCharacter:
			if opened {
				return StateFrame, EffectAppend
			}
		case EventBitrateLocked, EventBit:
		}
	}

	return s, EffectNone
}

// DecodedByte is the result of one full bit buffer.
type DecodedByte struct {
	Value     byte
	Parity    int // XOR of the 8 data bits.
	ParityBit int // As received.
}

func (b DecodedByte) ParityOK(even bool) bool {
	if even {
		return b.Parity == b.ParityBit
	}

	return b.Parity != b.ParityBit
}

func isPrintable(c byte) bool {
	return c >= 32 && c <= 126
}

// messageChar applies parity and printable checks, giving the character to store.
func messageChar(b DecodedByte, cfg *Config) byte {
	var c = b.Value

	if cfg.ParityCheck && !b.ParityOK(cfg.ParityEven) {
		c = SENTINEL
	}

	if !isPrintable(c) {
		c = SENTINEL
	}

	return c
}

// Message is one complete frame.  Seq counts from 1.
type Message struct {
	Seq      int
	Text     string
	Received time.Time // Filled in by the session, zero from the decoder.
}

type messageBuffer struct {
	buf []byte
	max int
}

func newMessageBuffer(max int) *messageBuffer {
	return &messageBuffer{
		buf: make([]byte, 0, max),
		max: max,
	}
}

// Append stores c unless the buffer is full, in which case c is dropped.
func (m *messageBuffer) Append(c byte) bool {
	if len(m.buf) >= m.max {
		return false
	}

	m.buf = append(m.buf, c)

	return true
}

func (m *messageBuffer) Take() string {
	var s = string(m.buf)
	m.buf = m.buf[:0]

	return s
}
