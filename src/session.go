package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Pull sample blocks from a front end, decode them and
 *		hand the messages to the sinks.
 *
 * Description:	Single threaded and strictly in order.  The only place
 *		we wait is ReadBlock.  Reordered or lost blocks would
 *		silently wreck the bit timing so any short read ends
 *		the session; there is no way to recover.
 *
 *		An unfinished message is dropped when the session ends.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

var ErrShortRead = errors.New("short read, samples lost")

type Session struct {
	decoder *Decoder
	source  Source
	sink    MessageSink
	logger  *log.Logger
	now     func() time.Time

	blocks   int
	messages int
}

func NewSession(decoder *Decoder, source Source, sink MessageSink, logger *log.Logger) *Session {
	return &Session{
		decoder:  decoder,
		source:   source,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
		blocks:   0,
		messages: 0,
	}
}

// Blocks is the number of sample blocks decoded so far.
func (s *Session) Blocks() int {
	return s.blocks
}

// Messages is the number of messages delivered so far.
func (s *Session) Messages() int {
	return s.messages
}

/*------------------------------------------------------------------
 *
 * Function:	Run
 *
 * Purpose:	Decode until the stream ends, fails or ctx is cancelled.
 *
 * Returns:	nil		- Stream ended on a block boundary.
 *		ctx.Err()	- Cancelled.
 *		ErrShortRead	- Partial block.
 *		other		- Front end failure.
 *
 *------------------------------------------------------------------*/

func (s *Session) Run(ctx context.Context) error {
	var blockLength = s.decoder.cfg.BlockLength()
	var buf = make([]byte, blockLength)

	for {
		var ctxErr = ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		var n, readErr = s.source.ReadBlock(ctx, buf)

		// Cancellation wins over whatever the read reported.
		ctxErr = ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		if n == blockLength {
			var decodeErr = s.decode(buf)
			if decodeErr != nil {
				return decodeErr
			}
		}

		switch {
		case readErr == nil && n == blockLength:
			continue
		case errors.Is(readErr, io.EOF) && (n == 0 || n == blockLength):
			s.logger.Debug("End of sample stream", "blocks", s.blocks)
			return nil
		case readErr == nil || errors.Is(readErr, io.EOF):
			return fmt.Errorf("%w: got %d of %d samples", ErrShortRead, n, blockLength)
		default:
			return fmt.Errorf("reading samples: %w", readErr)
		}
	}
}

func (s *Session) decode(block []byte) error {
	var messages, err = s.decoder.ProcessBlock(block)
	if err != nil {
		return err
	}

	s.blocks++

	for _, m := range messages {
		m.Received = s.now()
		s.messages++

		var sinkErr = s.sink.WriteMessage(m)
		if sinkErr != nil {
			s.logger.Warn("Could not deliver message", "seq", m.Seq, "err", sinkErr)
		}
	}

	return nil
}
