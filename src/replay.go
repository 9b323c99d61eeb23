package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Test fixture for the decoder.
 *
 * Description:	Decode one or more recorded sample files, raw or .WAV,
 *		as fast as they can be read and report how many
 *		messages were found.  Each file gets a fresh decoder.
 *
 *		-L and -G turn it into a pass / fail check for scripts:
 *
 *			fusex_replay -L 9 -G 10 capture.wav
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

func ReplayMain() {
	var configFile = pflag.StringP("config-file", "c", "", "Decoder configuration file.")
	var bitrate = pflag.IntP("bitrate", "B", 0, "Fixed bit length in gaps.  0 keeps the configured one.")
	var detect = pflag.BoolP("detect-bitrate", "b", false, "Detect the bit length from the signal.")
	var oddParity = pflag.BoolP("odd-parity", "p", false, "Odd rather than even parity.")
	var noParity = pflag.BoolP("no-parity", "P", false, "Don't check parity.")
	var debugBits = pflag.BoolP("debug", "D", false, "Trace bits and bytes as they are found.")
	var debugRadio = pflag.BoolP("radio", "R", false, "Plot the averaged amplitude.")
	var errorIfLessThan = pflag.IntP("error-if-less-than", "L", -1, "Error if less than this number decoded.")
	var errorIfGreaterThan = pflag.IntP("error-if-greater-than", "G", -1, "Error if greater than this number decoded.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede messages with 'strftime' format time stamp.")
	var hexDisplay = pflag.BoolP("hex-display", "x", false, "Print message contents as hexadecimal bytes.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Decode recorded sample files.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file ...\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if len(pflag.Args()) == 0 {
		fmt.Fprintf(os.Stderr, "Specify .WAV or raw sample file name on command line.\n")
		pflag.Usage()
		os.Exit(1)
	}

	var logger, _ = NewLogger(os.Stderr, "", "replay")

	var cfg = DefaultConfig()

	if *configFile != "" {
		var fc, err = LoadConfigFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}

		cfg = fc.Decoder
	}

	if *bitrate > 0 {
		cfg.DefaultBitrate = *bitrate
	}

	if *detect {
		cfg.DetectBitrate = true
	}

	if *oddParity {
		cfg.ParityEven = false
	}

	if *noParity {
		cfg.ParityCheck = false
	}

	var console, consoleErr = NewConsoleSink(os.Stdout, *timestampFormat)
	if consoleErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", consoleErr)
		os.Exit(1)
	}

	var sink = NewMultiSink(console)
	if *hexDisplay {
		sink.Add(NewHexDumpSink(os.Stdout))
	}

	var start = time.Now()
	var total = 0
	var totalSamples = 0

	for _, name := range pflag.Args() {
		var decoder, decoderErr = NewDecoder(cfg)
		if decoderErr != nil {
			fmt.Fprintf(os.Stderr, "%s\n", decoderErr)
			os.Exit(1)
		}

		decoder.SetLogger(logger)

		if *debugBits {
			decoder.SetBitTrace(os.Stdout)
		}

		if *debugRadio {
			decoder.SetRadioTrace(os.Stdout)
		}

		var source Source
		var openErr error

		if strings.EqualFold(filepath.Ext(name), ".wav") {
			source, openErr = OpenWAVSource(name, logger)
		} else {
			source, openErr = OpenFileSource(name)
		}

		if openErr != nil {
			fmt.Fprintf(os.Stderr, "%s\n", openErr)
			os.Exit(1)
		}

		var session = NewSession(decoder, source, sink, logger)
		var runErr = session.Run(context.Background())

		source.Close()

		if runErr != nil {
			logger.Warn("Decoding stopped early", "file", name, "err", runErr)
		}

		fmt.Printf("%d from %s\n", session.Messages(), name)

		total += session.Messages()
		totalSamples += session.Blocks() * cfg.BlockLength()
	}

	var elapsed = time.Since(start)

	fmt.Printf("%d messages decoded in %.3f seconds.  %d samples.\n", total, elapsed.Seconds(), totalSamples)

	if *errorIfLessThan != -1 && total < *errorIfLessThan {
		fmt.Printf("\n * * * TEST FAILED: number decoded is less than %d * * * \n", *errorIfLessThan)
		os.Exit(1)
	}

	if *errorIfGreaterThan != -1 && total > *errorIfGreaterThan {
		fmt.Printf("\n * * * TEST FAILED: number decoded is greater than %d * * * \n", *errorIfGreaterThan)
		os.Exit(1)
	}
}
