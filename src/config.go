package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Decoder, radio and output settings.
 *
 * Description:	Defaults are the constants the receiver has always
 *		been built with.  A YAML file can override any of them
 *		and command line options override the file.
 *
 *		decoder:
 *		  gaps_per_bit: 4
 *		  averages_per_gap: 8
 *		  values_per_average: 16
 *		  gap_trigger: 1900
 *		  ...
 *		radio:
 *		  frequency: 869455000
 *		  ...
 *		output:
 *		  timestamp_format: "%H:%M:%S"
 *		  ...
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_GAPS_PER_BIT       = 4
	DEFAULT_AVERAGES_PER_GAP   = 8
	DEFAULT_VALUES_PER_AVERAGE = 16
	DEFAULT_GAP_TRIGGER        = 1900
	DEFAULT_DEBOUNCE_DEPTH     = 10
	DEFAULT_BIT_BUFFER_LENGTH  = 12
	DEFAULT_BITRATE            = 27
	DEFAULT_TOLERANCE_RATIO    = 0.5
	DEFAULT_DETECT_START       = 5
	DEFAULT_DETECT_STOP        = 20
	DEFAULT_MAX_MESSAGE_LENGTH = 100

	DEFAULT_SAMPLE_RATE = 2048000
	DEFAULT_FREQUENCY   = 869455000
	DEFAULT_RTLTCP_ADDR = "127.0.0.1:1234"

	DATA_BITS = 8
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the bit layout constants of the decoder.
type Config struct {
	// Number of gaps in one sample block.  One sub-bit is produced per gap.
	GapsPerBit       int `yaml:"gaps_per_bit"`
	AveragesPerGap   int `yaml:"averages_per_gap"`
	ValuesPerAverage int `yaml:"values_per_average"`

	// A gap whose summed differences between averages stay below this is a 1.
	GapTrigger int `yaml:"gap_trigger"`

	DebounceDepth   int  `yaml:"debounce_depth"`
	BitBufferLength int  `yaml:"bit_buffer_length"`
	ParityCheck     bool `yaml:"parity_check"`
	ParityEven      bool `yaml:"parity_even"`

	DetectBitrate  bool    `yaml:"detect_bitrate"`
	DefaultBitrate int     `yaml:"default_bitrate"` // gaps per bit
	ToleranceRatio float64 `yaml:"tolerance_ratio"`
	DetectStart    int     `yaml:"detect_start"`
	DetectStop     int     `yaml:"detect_stop"`

	MaxMessageLength int `yaml:"max_message_length"`
}

func DefaultConfig() Config {
	return Config{
		GapsPerBit:       DEFAULT_GAPS_PER_BIT,
		AveragesPerGap:   DEFAULT_AVERAGES_PER_GAP,
		ValuesPerAverage: DEFAULT_VALUES_PER_AVERAGE,
		GapTrigger:       DEFAULT_GAP_TRIGGER,
		DebounceDepth:    DEFAULT_DEBOUNCE_DEPTH,
		BitBufferLength:  DEFAULT_BIT_BUFFER_LENGTH,
		ParityCheck:      true,
		ParityEven:       true,
		DetectBitrate:    false,
		DefaultBitrate:   DEFAULT_BITRATE,
		ToleranceRatio:   DEFAULT_TOLERANCE_RATIO,
		DetectStart:      DEFAULT_DETECT_START,
		DetectStop:       DEFAULT_DETECT_STOP,
		MaxMessageLength: DEFAULT_MAX_MESSAGE_LENGTH,
	}
}

// BlockLength is the number of samples consumed per processing cycle.
func (c *Config) BlockLength() int {
	return c.GapsPerBit * c.AveragesPerGap * c.ValuesPerAverage
}

// GapLength is the number of samples in one gap.
func (c *Config) GapLength() int {
	return c.AveragesPerGap * c.ValuesPerAverage
}

func (c *Config) Validate() error {
	var problems []error

	var positive = func(name string, v int) {
		if v <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive, not %d", name, v))
		}
	}

	positive("gaps_per_bit", c.GapsPerBit)
	positive("values_per_average", c.ValuesPerAverage)
	positive("gap_trigger", c.GapTrigger)
	positive("debounce_depth", c.DebounceDepth)
	positive("default_bitrate", c.DefaultBitrate)
	positive("max_message_length", c.MaxMessageLength)

	if c.AveragesPerGap < 2 {
		problems = append(problems, fmt.Errorf("averages_per_gap must be at least 2, not %d", c.AveragesPerGap))
	}

	// 8 data bits and the parity bit must fit.
	if c.BitBufferLength < DATA_BITS+1 {
		problems = append(problems, fmt.Errorf("bit_buffer_length must be at least %d, not %d", DATA_BITS+1, c.BitBufferLength))
	}

	if c.ToleranceRatio < 0 {
		problems = append(problems, fmt.Errorf("tolerance_ratio must not be negative, not %g", c.ToleranceRatio))
	}

	if c.DetectStart < 0 || c.DetectStop <= c.DetectStart {
		problems = append(problems, fmt.Errorf("detection window [%d,%d) is empty", c.DetectStart, c.DetectStop))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
	}

	return nil
}

/*
 * Which front end supplies the samples.
 */

type SourceKind string

const (
	SOURCE_RTLSDR SourceKind = "rtlsdr"
	SOURCE_RTLTCP SourceKind = "rtltcp"
	SOURCE_AUDIO  SourceKind = "audio"
	SOURCE_FILE   SourceKind = "file"
	SOURCE_WAV    SourceKind = "wav"
)

type RadioConfig struct {
	Source      SourceKind `yaml:"source"`
	DeviceIndex int        `yaml:"device_index"`
	SampleRate  int        `yaml:"sample_rate"`
	Frequency   int        `yaml:"frequency"`
	Gain        int        `yaml:"gain"` // Tenths of a dB.  0 for automatic.
	RTLTCPAddr  string     `yaml:"rtltcp_addr"`
	Input       string     `yaml:"input"` // File name for file and wav sources, "-" for stdin.

	// Sound card capture with an optional hamlib controlled receiver.
	AudioDevice string `yaml:"audio_device"`
	RigModel    int    `yaml:"rig_model"`
	RigPort     string `yaml:"rig_port"`
	RigBaud     int    `yaml:"rig_baud"`
}

func DefaultRadioConfig() RadioConfig {
	return RadioConfig{ //nolint:exhaustruct
		Source:     SOURCE_RTLSDR,
		SampleRate: DEFAULT_SAMPLE_RATE,
		Frequency:  DEFAULT_FREQUENCY,
		RTLTCPAddr: DEFAULT_RTLTCP_ADDR,
		Input:      "-",
		RigBaud:    9600,
	}
}

func (r *RadioConfig) Tuning() Tuning {
	return Tuning{
		SampleRate: r.SampleRate,
		CenterFreq: r.Frequency,
		Gain:       r.Gain,
	}
}

type OutputConfig struct {
	TimestampFormat string `yaml:"timestamp_format"` // strftime, empty for none.
	LogPath         string `yaml:"log_path"`
	LogDailyNames   bool   `yaml:"log_daily_names"`
	SerialPort      string `yaml:"serial_port"`
	SerialBaud      int    `yaml:"serial_baud"`
	PTY             bool   `yaml:"pty"`
	TCPPort         int    `yaml:"tcp_port"`
	DNSSDName       string `yaml:"dns_sd_name"`
	DCDChip         string `yaml:"dcd_chip"`
	DCDLine         int    `yaml:"dcd_line"` // -1 to disable.
}

func DefaultOutputConfig() OutputConfig {
	return OutputConfig{ //nolint:exhaustruct
		SerialBaud: 9600,
		DCDChip:    "gpiochip0",
		DCDLine:    -1,
	}
}

// FileConfig is the layout of the YAML configuration file.
type FileConfig struct {
	Decoder Config       `yaml:"decoder"`
	Radio   RadioConfig  `yaml:"radio"`
	Output  OutputConfig `yaml:"output"`
}

func DefaultFileConfig() FileConfig {
	return FileConfig{
		Decoder: DefaultConfig(),
		Radio:   DefaultRadioConfig(),
		Output:  DefaultOutputConfig(),
	}
}

/*------------------------------------------------------------------
 *
 * Function:	LoadConfigFile
 *
 * Purpose:	Read a YAML configuration file on top of the defaults.
 *
 * Inputs:	path	- File name.  Empty means defaults only.
 *
 * Returns:	Merged configuration.  Unknown keys are an error so
 *		typos don't silently leave a default in place.
 *
 *------------------------------------------------------------------*/

func LoadConfigFile(path string) (FileConfig, error) {
	var fc = DefaultFileConfig()

	if path == "" {
		return fc, nil
	}

	var data, readErr = os.ReadFile(path)
	if readErr != nil {
		return fc, fmt.Errorf("reading config file %s: %w", path, readErr)
	}

	var dec = yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var decodeErr = dec.Decode(&fc)
	if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		return fc, fmt.Errorf("parsing config file %s: %w", path, decodeErr)
	}

	var validateErr = fc.Decoder.Validate()
	if validateErr != nil {
		return fc, fmt.Errorf("config file %s: %w", path, validateErr)
	}

	return fc, nil
}
