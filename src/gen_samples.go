package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Test program for generating sample files.
 *
 * Description:	Given messages, either on the command line or read
 *		from a file, produce a sample file the receiver can
 *		replay.  Raw unsigned 8 bit, same as rtl_sdr writes,
 *		or .WAV when the output name ends in .wav.
 *
 *		One preamble starts the file.  Messages follow back to
 *		back, separated only by mark idle; another preamble
 *		would be taken for a message by a receiver that is
 *		already synchronized.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/youpy/go-wav"
)

const DEFAULT_PREAMBLE_ALTERNATIONS = 32
const DEFAULT_PREAMBLE_IDLE = 30

func GenSamplesMain() {
	var bitLength = pflag.IntP("bit-length", "B", DEFAULT_BITRATE, "Gaps per bit.")
	var alternations = pflag.IntP("preamble", "P", DEFAULT_PREAMBLE_ALTERNATIONS, "Alternating bits at the start, for bitrate detection.")
	var idle = pflag.IntP("idle", "i", DEFAULT_PREAMBLE_IDLE, "Mark bits after the preamble.")
	var noise = pflag.IntP("noise", "n", 0, "Peak noise added to each sample, 0 - 60.")
	var count = pflag.IntP("count", "N", 0, "Generate specified number of numbered test messages.")
	var oddParity = pflag.BoolP("odd-parity", "p", false, "Odd rather than even parity.")
	var sampleRate = pflag.IntP("sample-rate", "r", DEFAULT_SAMPLE_RATE, "Sample rate written in the .WAV header.")
	var configFile = pflag.StringP("config-file", "c", "", "Decoder configuration file, for the block layout.")
	var outputFile = pflag.StringP("output-file", "o", "", "Output file, .wav for WAV, anything else raw.  - for stdout.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Generate sample file of encoded messages.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [message ...]\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Messages are taken from the command line.  A single - reads them\n")
		fmt.Fprintf(os.Stderr, "from stdin, one per line.  Without any, a built-in message is used.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -o x.wav \"HELLO WORLD\"\n", os.Args[0])
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *outputFile == "" {
		fmt.Fprintf(os.Stderr, "ERROR: The -o output file option must be specified.\n")
		pflag.Usage()
		os.Exit(1)
	}

	if *noise < 0 || *noise > 60 {
		fmt.Fprintf(os.Stderr, "Noise must be in range of 0 to 60, not %d.\n", *noise)
		os.Exit(1)
	}

	var cfg = DefaultConfig()

	if *configFile != "" {
		var fc, err = LoadConfigFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}

		cfg = fc.Decoder
	}

	cfg.ParityEven = !*oddParity

	if *bitLength <= cfg.DebounceDepth+1 {
		fmt.Fprintf(os.Stderr, "Bit length must be more than %d gaps or the receiver will debounce it away.\n", cfg.DebounceDepth+1)
		os.Exit(1)
	}

	var messages, msgErr = genSamplesMessages(pflag.Args(), *count)
	if msgErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", msgErr)
		os.Exit(1)
	}

	var m = NewModulator(cfg, *bitLength)
	m.SetNoise(*noise)

	m.Preamble(*alternations, *idle)

	for _, text := range messages {
		m.Message(text)
	}

	var samples = m.Blocks()

	var writeErr = WriteSampleFile(*outputFile, samples, *sampleRate)
	if writeErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", writeErr)
		os.Exit(1)
	}

	fmt.Printf("%d messages, %d samples written to %s\n", len(messages), len(samples), *outputFile)
}

func genSamplesMessages(args []string, count int) ([]string, error) {
	if count > 0 {
		var messages = make([]string, 0, count)

		for i := 1; i <= count; i++ {
			messages = append(messages, fmt.Sprintf("THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG %04d OF %04d", i, count))
		}

		return messages, nil
	}

	if len(args) == 1 && args[0] == "-" {
		return readMessageLines(os.Stdin)
	}

	if len(args) > 0 {
		return args, nil
	}

	return []string{"HELLO FROM SDR FUSEX"}, nil
}

func readMessageLines(r io.Reader) ([]string, error) {
	var messages []string

	var scanner = bufio.NewScanner(r)
	for scanner.Scan() {
		var line = strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			messages = append(messages, line)
		}
	}

	return messages, scanner.Err()
}

// WriteSampleFile writes unsigned 8 bit samples, as WAV if the name ends in .wav.
func WriteSampleFile(name string, samples []byte, sampleRate int) error {
	var w io.Writer
	var f *os.File

	if name == "-" {
		w = os.Stdout
	} else {
		var err error

		f, err = os.Create(name)
		if err != nil {
			return fmt.Errorf("can't create %s: %w", name, err)
		}

		defer f.Close()

		w = f
	}

	var bw = bufio.NewWriter(w)

	if strings.EqualFold(filepath.Ext(name), ".wav") {
		var ww = wav.NewWriter(bw, uint32(len(samples)), 1, uint32(sampleRate), 8)

		var frames = make([]wav.Sample, len(samples))
		for i, s := range samples {
			frames[i].Values[0] = int(s)
		}

		var err = ww.WriteSamples(frames)
		if err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	} else {
		var _, err = bw.Write(samples)
		if err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	var flushErr = bw.Flush()
	if flushErr != nil {
		return fmt.Errorf("writing %s: %w", name, flushErr)
	}

	if f != nil {
		return f.Close()
	}

	return nil
}
