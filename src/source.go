package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Where the samples come from.
 *
 * Description:	Every front end delivers unsigned 8 bit amplitude
 *		samples, one block per ReadBlock call.  ReadBlock blocks
 *		until the block is complete, the stream ends or the
 *		context is cancelled.  Cancellation must make it return
 *		promptly even if the hardware does not cooperate.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

type Tuning struct {
	SampleRate int
	CenterFreq int
	Gain       int // Tenths of a dB, 0 for automatic.
}

type Source interface {
	// Configure applies the tuning.  Failures are not fatal; the caller
	// logs them and carries on with whatever the device had before.
	Configure(t Tuning) error

	// ReadBlock fills buf and returns the number of samples stored.
	// Fewer than len(buf) together with io.EOF means the stream ended.
	ReadBlock(ctx context.Context, buf []byte) (int, error)

	Close() error
}

type readResult struct {
	n   int
	err error
}

/*------------------------------------------------------------------
 *
 * Function:	readWithContext
 *
 * Purpose:	Run a blocking read in the background so a cancelled
 *		context can return straight away.
 *
 * Inputs:	read	- The blocking call.
 *		abort	- Optional, called on cancellation to unblock
 *			  the read sooner (cancel async, close, ...).
 *
 * Description:	After cancellation the read may still complete and
 *		write into its buffer.  The session stops on cancel so
 *		nobody looks at that buffer again.
 *
 *------------------------------------------------------------------*/

func readWithContext(ctx context.Context, read func() (int, error), abort func()) (int, error) {
	var ctxErr = ctx.Err()
	if ctxErr != nil {
		return 0, ctxErr
	}

	var done = make(chan readResult, 1)

	go func() {
		var n, err = read()
		done <- readResult{n: n, err: err}
	}()

	select {
	case r := <-done:
		return r.n, r.err
	case <-ctx.Done():
		if abort != nil {
			abort()
		}

		return 0, ctx.Err()
	}
}

/*------------------------------------------------------------------
 *
 * Function:	OpenSource
 *
 * Purpose:	Create the front end selected in the radio config.
 *
 *------------------------------------------------------------------*/

func OpenSource(rc *RadioConfig, logger *log.Logger) (Source, error) {
	switch rc.Source {
	case SOURCE_RTLSDR:
		return OpenRTLSDRSource(rc.DeviceIndex, logger)
	case SOURCE_RTLTCP:
		return OpenRTLTCPSource(rc.RTLTCPAddr, logger)
	case SOURCE_AUDIO:
		var rig *RigTuner
		if rc.RigModel != 0 {
			var rigErr error
			rig, rigErr = OpenRigTuner(rc.RigModel, rc.RigPort, rc.RigBaud)
			if rigErr != nil {
				return nil, rigErr
			}
		}

		return OpenAudioSource(rc.AudioDevice, rc.SampleRate, rig, logger)
	case SOURCE_FILE:
		return OpenFileSource(rc.Input)
	case SOURCE_WAV:
		return OpenWAVSource(rc.Input, logger)
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, rc.Source)
	}
}

// readFullBlock keeps reading until buf is full, the reader ends or fails.
func readFullBlock(r io.Reader, buf []byte) (int, error) {
	var n, err = io.ReadFull(r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}

	return n, err
}
