package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	RTL2832U dongle front end through librtlsdr.
 *
 * Description:	Synchronous reads, one block at a time.  librtlsdr
 *		has no way to interrupt ReadSync so on cancellation we
 *		ask it to stop async transfers, which also makes the
 *		pending bulk transfer give up, and stop waiting for it.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	rtlsdr "github.com/jpoirier/gortlsdr"
)

// rtlDevice is the part of *rtlsdr.Context we use.
type rtlDevice interface {
	SetSampleRate(rate int) error
	SetCenterFreq(freq int) error
	SetTunerGainMode(manualMode bool) error
	SetTunerGain(gain int) error
	ResetBuffer() error
	ReadSync(buf []uint8, length int) (int, error)
	CancelAsync() error
	Close() error
}

type RTLSDRSource struct {
	dev    rtlDevice
	index  int
	logger *log.Logger
}

func OpenRTLSDRSource(index int, logger *log.Logger) (*RTLSDRSource, error) {
	var count = rtlsdr.GetDeviceCount()
	if count == 0 {
		return nil, fmt.Errorf("no supported RTL-SDR devices found")
	}

	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: device index %d, only %d devices found", ErrInvalidConfig, index, count)
	}

	logger.Info("Using device", "index", index, "name", rtlsdr.GetDeviceName(index))

	var dev, err = rtlsdr.Open(index)
	if err != nil {
		return nil, fmt.Errorf("failed to open rtlsdr device #%d: %w", index, err)
	}

	return &RTLSDRSource{dev: dev, index: index, logger: logger}, nil
}

/*------------------------------------------------------------------
 *
 * Function:	Configure
 *
 * Description:	Each failure is reported and we carry on; the dongle
 *		keeps whatever it had.  The buffer reset too, reading
 *		still works without it.
 *
 *------------------------------------------------------------------*/

func (s *RTLSDRSource) Configure(t Tuning) error {
	var err = s.dev.SetSampleRate(t.SampleRate)
	if err != nil {
		s.logger.Warn("Failed to set sample rate", "rate", t.SampleRate, "err", err)
	}

	err = s.dev.SetCenterFreq(t.CenterFreq)
	if err != nil {
		s.logger.Warn("Failed to set center freq", "freq", t.CenterFreq, "err", err)
	} else {
		s.logger.Info("Tuned", "freq", t.CenterFreq)
	}

	if t.Gain == 0 {
		err = s.dev.SetTunerGainMode(false)
		if err != nil {
			s.logger.Warn("Failed to enable automatic gain", "err", err)
		} else {
			s.logger.Info("Tuner gain set to automatic")
		}
	} else {
		err = s.dev.SetTunerGainMode(true)
		if err != nil {
			s.logger.Warn("Failed to enable manual gain", "err", err)
		}

		err = s.dev.SetTunerGain(t.Gain)
		if err != nil {
			s.logger.Warn("Failed to set tuner gain", "gain", t.Gain, "err", err)
		} else {
			s.logger.Info("Tuner gain set", "dB", float64(t.Gain)/10.0)
		}
	}

	err = s.dev.ResetBuffer()
	if err != nil {
		s.logger.Warn("Failed to reset buffers", "err", err)
	}

	return nil
}

func (s *RTLSDRSource) ReadBlock(ctx context.Context, buf []byte) (int, error) {
	return readWithContext(ctx, func() (int, error) {
		return s.dev.ReadSync(buf, len(buf))
	}, func() {
		var _ = s.dev.CancelAsync()
	})
}

func (s *RTLSDRSource) Close() error {
	return s.dev.Close()
}
