package fusex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDongle struct {
	calls    []string
	resetErr error
	tuneErr  error
}

func (f *fakeDongle) SetSampleRate(rate int) error {
	f.calls = append(f.calls, "rate")
	return f.tuneErr
}

func (f *fakeDongle) SetCenterFreq(freq int) error {
	f.calls = append(f.calls, "freq")
	return f.tuneErr
}

func (f *fakeDongle) SetTunerGainMode(manualMode bool) error {
	f.calls = append(f.calls, "gain mode")
	return f.tuneErr
}

func (f *fakeDongle) SetTunerGain(gain int) error {
	f.calls = append(f.calls, "gain")
	return f.tuneErr
}

func (f *fakeDongle) ResetBuffer() error {
	f.calls = append(f.calls, "reset")
	return f.resetErr
}

func (f *fakeDongle) ReadSync(buf []uint8, length int) (int, error) {
	for i := range length {
		buf[i] = 127
	}

	return length, nil
}

func (f *fakeDongle) CancelAsync() error {
	return nil
}

func (f *fakeDongle) Close() error {
	return nil
}

func TestRTLSDRConfigure(t *testing.T) {
	var dongle = &fakeDongle{} //nolint:exhaustruct
	var s = &RTLSDRSource{dev: dongle, index: 0, logger: discardLogger()}

	require.NoError(t, s.Configure(Tuning{SampleRate: 2000000, CenterFreq: 27000000, Gain: 0}))
	assert.Equal(t, []string{"rate", "freq", "gain mode", "reset"}, dongle.calls)

	dongle.calls = nil

	require.NoError(t, s.Configure(Tuning{SampleRate: 2000000, CenterFreq: 27000000, Gain: 496}))
	assert.Equal(t, []string{"rate", "freq", "gain mode", "gain", "reset"}, dongle.calls)
}

func TestRTLSDRConfigureFailuresNotFatal(t *testing.T) {
	var dongle = &fakeDongle{ //nolint:exhaustruct
		resetErr: errors.New("usb stall"),
		tuneErr:  errors.New("tuner busy"),
	}

	var logs strings.Builder

	var logger, logErr = NewLogger(&logs, "warn", "")
	require.NoError(t, logErr)

	var s = &RTLSDRSource{dev: dongle, index: 0, logger: logger}

	var radio = DefaultRadioConfig()

	require.NoError(t, s.Configure(radio.Tuning()))
	assert.Contains(t, logs.String(), "Failed to reset buffers")
	assert.Contains(t, logs.String(), "usb stall")

	// Still delivers samples afterwards.
	var cfg = DefaultConfig()
	var buf = make([]byte, cfg.BlockLength())

	var n, err = s.ReadBlock(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
}
