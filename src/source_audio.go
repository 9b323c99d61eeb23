package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Sound card front end.
 *
 * Description:	For a receiver with an AM detector feeding the sound
 *		card input.  We capture mono 16 bit and reduce it to
 *		the offset binary 8 bit samples the decoder expects.
 *
 *		Sound cards rarely go anywhere near 2 MS/s so the timing
 *		configuration must match the capture rate.  An optional
 *		rig is tuned through hamlib when the tuning is applied.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

type AudioSource struct {
	stream *portaudio.Stream
	frames []int16
	pcm    pcmBuffer
	rig    *RigTuner
	logger *log.Logger
}

/*------------------------------------------------------------------
 *
 * Function:	OpenAudioSource
 *
 * Inputs:	device		- Input device name, empty for the default.
 *		sampleRate	- Capture rate.
 *		rig		- Optional, nil for none.  Closed with the source.
 *
 *------------------------------------------------------------------*/

func OpenAudioSource(device string, sampleRate int, rig *RigTuner, logger *log.Logger) (*AudioSource, error) {
	var initErr = portaudio.Initialize()
	if initErr != nil {
		return nil, fmt.Errorf("initializing audio: %w", initErr)
	}

	var as = &AudioSource{
		stream: nil,
		frames: make([]int16, DEFAULT_AUDIO_FRAMES),
		pcm:    pcmBuffer{pending: nil},
		rig:    rig,
		logger: logger,
	}

	var stream, openErr = as.open(device, sampleRate)
	if openErr != nil {
		portaudio.Terminate()
		return nil, openErr
	}

	as.stream = stream

	var startErr = stream.Start()
	if startErr != nil {
		stream.Close()
		portaudio.Terminate()

		return nil, fmt.Errorf("starting audio capture: %w", startErr)
	}

	logger.Info("Audio capture started", "device", device, "rate", sampleRate)

	return as, nil
}

const DEFAULT_AUDIO_FRAMES = 1024

func (as *AudioSource) open(device string, sampleRate int) (*portaudio.Stream, error) {
	if device == "" {
		var stream, err = portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(as.frames), as.frames)
		if err != nil {
			return nil, fmt.Errorf("opening default audio input: %w", err)
		}

		return stream, nil
	}

	var devices, devErr = portaudio.Devices()
	if devErr != nil {
		return nil, fmt.Errorf("listing audio devices: %w", devErr)
	}

	for _, d := range devices {
		if d.Name != device || d.MaxInputChannels < 1 {
			continue
		}

		var params = portaudio.LowLatencyParameters(d, nil)
		params.Input.Channels = 1
		params.SampleRate = float64(sampleRate)
		params.FramesPerBuffer = len(as.frames)

		var stream, err = portaudio.OpenStream(params, as.frames)
		if err != nil {
			return nil, fmt.Errorf("opening audio input %q: %w", device, err)
		}

		return stream, nil
	}

	return nil, fmt.Errorf("%w: no audio input device named %q", ErrInvalidConfig, device)
}

// Configure tunes the rig, if any.  The capture rate was fixed when the stream was opened.
func (as *AudioSource) Configure(t Tuning) error {
	if as.rig == nil {
		return nil
	}

	var err = as.rig.SetFreq(t.CenterFreq)
	if err != nil {
		as.logger.Warn("Failed to tune rig", "freq", t.CenterFreq, "err", err)
	} else {
		as.logger.Info("Tuned", "freq", t.CenterFreq)
	}

	return nil
}

func pcmToU8(s int16) byte {
	return byte((int(s) + 32768) >> 8)
}

// pcmBuffer holds converted samples left over when the capture buffer and
// the decoder block are different sizes.  Nothing is dropped between blocks.
type pcmBuffer struct {
	pending []byte
}

// fill captures until buf can be filled completely, then fills it.
func (p *pcmBuffer) fill(buf []byte, capture func() ([]int16, error)) (int, error) {
	for len(p.pending) < len(buf) {
		var frames, err = capture()
		if err != nil {
			return 0, fmt.Errorf("audio input: %w", err)
		}

		for _, s := range frames {
			p.pending = append(p.pending, pcmToU8(s))
		}
	}

	var n = copy(buf, p.pending)
	p.pending = p.pending[n:]

	return n, nil
}

func (as *AudioSource) ReadBlock(ctx context.Context, buf []byte) (int, error) {
	return readWithContext(ctx, func() (int, error) {
		return as.pcm.fill(buf, func() ([]int16, error) {
			return as.frames, as.stream.Read()
		})
	}, func() {
		var _ = as.stream.Abort()
	})
}

func (as *AudioSource) Close() error {
	var err = as.stream.Close()

	portaudio.Terminate()

	if as.rig != nil {
		as.rig.Close()
	}

	return err
}
