package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	The receiver program.
 *
 * Description:	Tune the front end, decode until told to stop, hand
 *		each message to the configured outputs.
 *
 *		Settings come from the built-in defaults, then the
 *		optional configuration file, then the command line.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

// ReceiverOptions are the command line switches that aren't configuration.
type ReceiverOptions struct {
	DebugBits  bool // -D
	DebugRadio bool // -R
}

func (o ReceiverOptions) debugging() bool {
	return o.DebugBits || o.DebugRadio
}

func ReceiverMain() {
	var configFile = pflag.StringP("config-file", "c", "", "Configuration file name.")
	var frequency = pflag.IntP("frequency", "f", 0, "Center frequency in Hz.")
	var deviceIndex = pflag.IntP("device-index", "d", -1, "RTL-SDR device index.")
	var gain = pflag.IntP("gain", "g", -1, "Tuner gain in tenths of a dB, 0 for automatic.")
	var source = pflag.StringP("source", "s", "", "Sample source: rtlsdr, rtltcp, audio, file, wav.")
	var rtltcpAddr = pflag.StringP("rtltcp", "t", "", "rtl_tcp server host:port.  Implies -s rtltcp.")
	var input = pflag.StringP("input", "i", "", "Sample file for the file and wav sources, - for stdin.")
	var audioDevice = pflag.StringP("audio-device", "a", "", "Sound card input device name.")
	var rigModel = pflag.IntP("rig-model", "m", 0, "hamlib rig model to tune, with the audio source.")
	var rigPort = pflag.StringP("rig-port", "M", "", "Serial port of the hamlib rig.")
	var detectBitrate = pflag.BoolP("detect-bitrate", "b", false, "Detect the bitrate from the signal instead of using the default.")
	var debugBits = pflag.BoolP("debug", "D", false, "Debug output of bits and bytes.")
	var debugRadio = pflag.BoolP("radio", "R", false, "Debug output of the averaged amplitude.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede received messages with 'strftime' format time stamp.")
	var logFile = pflag.StringP("log-file", "L", "", "Log file name.")
	var logDir = pflag.StringP("log-dir", "l", "", "Log directory name, daily file names.")
	var serialPort = pflag.StringP("serial-port", "S", "", "Copy messages to this serial port.")
	var pseudoTerminal = pflag.BoolP("pty", "p", false, "Offer messages on a pseudo terminal.")
	var tcpPort = pflag.IntP("tcp-port", "P", 0, "Offer messages to TCP clients on this port.")
	var dnssdName = pflag.StringP("dns-sd-name", "n", "", "DNS-SD service name for the TCP port.")
	var dcdLine = pflag.IntP("dcd-line", "G", -1, "GPIO line showing frame state.")
	var logLevel = pflag.StringP("log-level", "v", "info", "Log level: debug, info, warn, error.")
	var version = pflag.BoolP("version", "V", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Receive and decode gap width OOK messages.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version {
		PrintVersion(os.Stdout, *debugBits)
		os.Exit(0)
	}

	var logger, loggerErr = NewLogger(os.Stderr, *logLevel, "")
	if loggerErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", loggerErr)
		os.Exit(1)
	}

	var fc, configErr = LoadConfigFile(*configFile)
	if configErr != nil {
		logger.Error("Bad configuration", "err", configErr)
		os.Exit(1)
	}

	if *frequency > 0 {
		fc.Radio.Frequency = *frequency
	}

	if *deviceIndex >= 0 {
		fc.Radio.DeviceIndex = *deviceIndex
	}

	if *gain >= 0 {
		fc.Radio.Gain = *gain
	}

	if *source != "" {
		fc.Radio.Source = SourceKind(*source)
	}

	if *rtltcpAddr != "" {
		fc.Radio.Source = SOURCE_RTLTCP
		fc.Radio.RTLTCPAddr = *rtltcpAddr
	}

	if *input != "" {
		fc.Radio.Input = *input
	}

	if *audioDevice != "" {
		fc.Radio.AudioDevice = *audioDevice
	}

	if *rigModel != 0 {
		fc.Radio.RigModel = *rigModel
		fc.Radio.RigPort = *rigPort
	}

	if *detectBitrate {
		fc.Decoder.DetectBitrate = true
	}

	if *timestampFormat != "" {
		fc.Output.TimestampFormat = *timestampFormat
	}

	if *logFile != "" && *logDir != "" {
		logger.Error("Use -L or -l but not both")
		os.Exit(1)
	}

	if *logFile != "" {
		fc.Output.LogPath = *logFile
		fc.Output.LogDailyNames = false
	}

	if *logDir != "" {
		fc.Output.LogPath = *logDir
		fc.Output.LogDailyNames = true
	}

	if *serialPort != "" {
		fc.Output.SerialPort = *serialPort
	}

	if *pseudoTerminal {
		fc.Output.PTY = true
	}

	if *tcpPort > 0 {
		fc.Output.TCPPort = *tcpPort
	}

	if *dnssdName != "" {
		fc.Output.DNSSDName = *dnssdName
	}

	if *dcdLine >= 0 {
		fc.Output.DCDLine = *dcdLine
	}

	var opts = ReceiverOptions{DebugBits: *debugBits, DebugRadio: *debugRadio}

	var ctx, stop = signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM, unix.SIGQUIT, unix.SIGPIPE)
	defer stop()

	var err = RunReceiver(ctx, fc, opts, os.Stdout, logger)

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "User cancel, exiting...\n")
	case err != nil:
		fmt.Fprintf(os.Stderr, "Library error %s, exiting...\n", err)
		stop()
		os.Exit(1)
	}
}

/*------------------------------------------------------------------
 *
 * Function:	RunReceiver
 *
 * Purpose:	Everything the receiver does, once settings are known.
 *
 * Inputs:	ctx	- Cancel to stop.  The unfinished message is lost.
 *		fc	- Settings.
 *		opts	- Debug switches.
 *		stdout	- Messages, traces, banner.
 *
 * Returns:	nil when the samples ran out, ctx.Err() when cancelled,
 *		anything else is a failure.
 *
 *------------------------------------------------------------------*/

func RunReceiver(ctx context.Context, fc FileConfig, opts ReceiverOptions, stdout io.Writer, logger *log.Logger) error {
	var decoder, decoderErr = NewDecoder(fc.Decoder)
	if decoderErr != nil {
		return decoderErr
	}

	decoder.SetLogger(logger)

	if opts.DebugBits {
		decoder.SetBitTrace(stdout)
	}

	if opts.DebugRadio {
		decoder.SetRadioTrace(stdout)
	}

	if opts.debugging() && fc.Radio.Source == SOURCE_RTLSDR {
		var devices, _ = ListDevices()
		PrintDevices(stdout, devices)
	}

	var sink, sinkErr = openSinks(&fc.Output, stdout, logger)
	if sinkErr != nil {
		return sinkErr
	}

	defer sink.Close()

	if fc.Output.DCDLine >= 0 {
		var dcd, dcdErr = OpenDCDIndicator(fc.Output.DCDChip, fc.Output.DCDLine, logger)
		if dcdErr != nil {
			logger.Warn("Frame indicator not available", "err", dcdErr)
		} else {
			defer dcd.Close()
			decoder.OnStateChange(dcd.StateChanged)
		}
	}

	var source, sourceErr = OpenSource(&fc.Radio, logger)
	if sourceErr != nil {
		return sourceErr
	}

	defer source.Close()

	var configureErr = source.Configure(fc.Radio.Tuning())
	if configureErr != nil {
		return configureErr
	}

	if !opts.debugging() {
		fmt.Fprintf(stdout, "Ready!\n")
	}

	var session = NewSession(decoder, source, sink, logger)

	var runErr = session.Run(ctx)

	logger.Debug("Session ended", "blocks", session.Blocks(), "messages", session.Messages())

	return runErr
}

// openSinks builds the console plus whatever other outputs are configured.
func openSinks(oc *OutputConfig, stdout io.Writer, logger *log.Logger) (*MultiSink, error) {
	var console, consoleErr = NewConsoleSink(stdout, oc.TimestampFormat)
	if consoleErr != nil {
		return nil, consoleErr
	}

	var ms = NewMultiSink(console)

	if oc.LogPath != "" {
		ms.Add(NewCSVLogSink(oc.LogDailyNames, oc.LogPath, logger))
	}

	if oc.SerialPort != "" {
		var serial, err = OpenSerialSink(oc.SerialPort, oc.SerialBaud, logger)
		if err != nil {
			ms.Close()
			return nil, err
		}

		ms.Add(serial)
	}

	if oc.PTY {
		var pt, err = OpenPTYSink(TMP_FUSEX_SYMLINK, logger)
		if err != nil {
			ms.Close()
			return nil, fmt.Errorf("could not create pseudo terminal: %w", err)
		}

		ms.Add(pt)
	}

	if oc.TCPPort > 0 {
		var ns, err = ListenNetSink(fmt.Sprintf(":%d", oc.TCPPort), true, oc.DNSSDName, logger)
		if err != nil {
			ms.Close()
			return nil, err
		}

		ms.Add(ns)
	}

	return ms, nil
}
