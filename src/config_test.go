package fusex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	var path = filepath.Join(t.TempDir(), "fusex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestDefaultConfig(t *testing.T) {
	var cfg = DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 512, cfg.BlockLength())
	assert.Equal(t, 128, cfg.GapLength())
}

func TestLoadConfigFileEmptyPath(t *testing.T) {
	var fc, err = LoadConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFileConfig(), fc)
}

func TestLoadConfigFile(t *testing.T) {
	var path = writeConfig(t, `
decoder:
  detect_bitrate: true
  gap_trigger: 2500
radio:
  source: rtltcp
  rtltcp_addr: "sdr.local:1234"
  frequency: 868300000
output:
  timestamp_format: "%H:%M:%S"
  tcp_port: 8010
`)

	var fc, err = LoadConfigFile(path)
	require.NoError(t, err)

	assert.True(t, fc.Decoder.DetectBitrate)
	assert.Equal(t, 2500, fc.Decoder.GapTrigger)
	assert.Equal(t, SOURCE_RTLTCP, fc.Radio.Source)
	assert.Equal(t, "sdr.local:1234", fc.Radio.RTLTCPAddr)
	assert.Equal(t, 868300000, fc.Radio.Frequency)
	assert.Equal(t, "%H:%M:%S", fc.Output.TimestampFormat)
	assert.Equal(t, 8010, fc.Output.TCPPort)

	// Untouched settings keep their defaults.
	assert.Equal(t, DEFAULT_GAPS_PER_BIT, fc.Decoder.GapsPerBit)
	assert.Equal(t, DEFAULT_SAMPLE_RATE, fc.Radio.SampleRate)
	assert.Equal(t, -1, fc.Output.DCDLine)
}

func TestLoadConfigFileEmptyDocument(t *testing.T) {
	var fc, err = LoadConfigFile(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultFileConfig(), fc)
}

func TestLoadConfigFileUnknownKey(t *testing.T) {
	var _, err = LoadConfigFile(writeConfig(t, "decoder:\n  gap_triger: 2000\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap_triger")
}

func TestLoadConfigFileInvalid(t *testing.T) {
	var _, err = LoadConfigFile(writeConfig(t, "decoder:\n  averages_per_gap: 1\n  bit_buffer_length: 8\n"))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "averages_per_gap")
	assert.Contains(t, err.Error(), "bit_buffer_length")
}

func TestLoadConfigFileMissing(t *testing.T) {
	var _, err = LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero gaps", func(c *Config) { c.GapsPerBit = 0 }},
		{"negative trigger", func(c *Config) { c.GapTrigger = -1 }},
		{"no debounce", func(c *Config) { c.DebounceDepth = 0 }},
		{"no bitrate", func(c *Config) { c.DefaultBitrate = 0 }},
		{"negative tolerance", func(c *Config) { c.ToleranceRatio = -0.1 }},
		{"empty detection window", func(c *Config) { c.DetectStop = c.DetectStart }},
		{"zero message length", func(c *Config) { c.MaxMessageLength = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg = DefaultConfig()
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestRadioTuning(t *testing.T) {
	var rc = DefaultRadioConfig()
	rc.Gain = 297

	assert.Equal(t, Tuning{SampleRate: DEFAULT_SAMPLE_RATE, CenterFreq: DEFAULT_FREQUENCY, Gain: 297}, rc.Tuning())
}
