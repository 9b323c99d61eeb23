package fusex

// Dongle on another machine, served by rtl_tcp.

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bemasher/rtltcp"
	"github.com/charmbracelet/log"
)

type RTLTCPSource struct {
	sdr    rtltcp.SDR
	addr   string
	logger *log.Logger
}

func OpenRTLTCPSource(addr string, logger *log.Logger) (*RTLTCPSource, error) {
	var tcpAddr, resolveErr = net.ResolveTCPAddr("tcp", addr)
	if resolveErr != nil {
		return nil, fmt.Errorf("%w: rtl_tcp address %q: %w", ErrInvalidConfig, addr, resolveErr)
	}

	var s = &RTLTCPSource{addr: addr, logger: logger} //nolint:exhaustruct

	var connectErr = s.sdr.Connect(tcpAddr)
	if connectErr != nil {
		return nil, fmt.Errorf("connecting to rtl_tcp at %s: %w", addr, connectErr)
	}

	logger.Info("Connected to rtl_tcp", "addr", addr)

	return s, nil
}

func (s *RTLTCPSource) Configure(t Tuning) error {
	var err = s.sdr.SetSampleRate(uint32(t.SampleRate))
	if err != nil {
		s.logger.Warn("Failed to set sample rate", "rate", t.SampleRate, "err", err)
	}

	err = s.sdr.SetCenterFreq(uint32(t.CenterFreq))
	if err != nil {
		s.logger.Warn("Failed to set center freq", "freq", t.CenterFreq, "err", err)
	} else {
		s.logger.Info("Tuned", "freq", t.CenterFreq)
	}

	err = s.sdr.SetGainMode(t.Gain != 0)
	if err != nil {
		s.logger.Warn("Failed to set gain mode", "err", err)
	}

	if t.Gain != 0 {
		err = s.sdr.SetGain(uint32(t.Gain))
		if err != nil {
			s.logger.Warn("Failed to set tuner gain", "gain", t.Gain, "err", err)
		}
	}

	return nil
}

// ReadBlock gives up on cancellation by expiring the read deadline.
func (s *RTLTCPSource) ReadBlock(ctx context.Context, buf []byte) (int, error) {
	return readWithContext(ctx, func() (int, error) {
		return readFullBlock(s.sdr, buf)
	}, func() {
		var _ = s.sdr.SetReadDeadline(time.Now())
	})
}

func (s *RTLTCPSource) Close() error {
	return s.sdr.Close()
}
