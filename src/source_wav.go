package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Read samples from a .WAV recording.
 *
 * Description:	Handy for testing the decoder under reproducible
 *		conditions.  PCM, 8 or 16 bits, first channel only.
 *		16 bit samples are reduced to offset binary 8 bit, the
 *		same representation the dongle gives us.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/youpy/go-wav"
)

type WAVSource struct {
	f             *os.File
	reader        *wav.Reader
	bitsPerSample uint16
	pending       []byte // Converted samples not yet handed out.
	eof           bool
}

func OpenWAVSource(name string, logger *log.Logger) (*WAVSource, error) {
	var f, openErr = os.Open(name)
	if openErr != nil {
		return nil, fmt.Errorf("opening wav file: %w", openErr)
	}

	var reader = wav.NewReader(f)

	var format, formatErr = reader.Format()
	if formatErr != nil {
		f.Close()
		return nil, fmt.Errorf("reading wav header of %s: %w", name, formatErr)
	}

	if format.AudioFormat != wav.AudioFormatPCM {
		f.Close()
		return nil, fmt.Errorf("%s: only PCM is supported, not format %d", name, format.AudioFormat)
	}

	if format.BitsPerSample != 8 && format.BitsPerSample != 16 {
		f.Close()
		return nil, fmt.Errorf("%s: only 8 or 16 bits per sample are supported, not %d", name, format.BitsPerSample)
	}

	logger.Info("Reading wav file",
		"file", name,
		"sample_rate", format.SampleRate,
		"bits_per_sample", format.BitsPerSample,
		"channels", format.NumChannels)

	return &WAVSource{
		f:             f,
		reader:        reader,
		bitsPerSample: format.BitsPerSample,
		pending:       nil,
		eof:           false,
	}, nil
}

func (s *WAVSource) Configure(_ Tuning) error {
	return nil
}

func (s *WAVSource) toU8(v int) byte {
	if s.bitsPerSample == 8 {
		return byte(v)
	}

	return byte((v + 32768) >> 8)
}

func (s *WAVSource) fill(want int) error {
	for len(s.pending) < want && !s.eof {
		var samples, err = s.reader.ReadSamples(uint32(want - len(s.pending)))

		for _, sample := range samples {
			s.pending = append(s.pending, s.toU8(s.reader.IntValue(sample, 0)))
		}

		if errors.Is(err, io.EOF) {
			s.eof = true
		} else if err != nil {
			return err
		}
	}

	return nil
}

func (s *WAVSource) ReadBlock(ctx context.Context, buf []byte) (int, error) {
	return readWithContext(ctx, func() (int, error) {
		var fillErr = s.fill(len(buf))
		if fillErr != nil {
			return 0, fillErr
		}

		var n = copy(buf, s.pending)
		s.pending = s.pending[n:]

		if n < len(buf) {
			return n, io.EOF
		}

		return n, nil
	}, nil)
}

func (s *WAVSource) Close() error {
	return s.f.Close()
}
