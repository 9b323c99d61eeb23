package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Show on a GPIO line whether we are inside a frame.
 *
 * Description:	Like the DCD light on a TNC.  The line is driven
 *		high in Frame state and low otherwise, so an LED shows
 *		when a message is coming in.
 *
 *------------------------------------------------------------------*/

import (
	"github.com/charmbracelet/log"
	"github.com/warthog618/go-gpiocdev"
)

type lineSetter interface {
	SetValue(value int) error
	Close() error
}

type DCDIndicator struct {
	line   lineSetter
	logger *log.Logger
}

func OpenDCDIndicator(chip string, offset int, logger *log.Logger) (*DCDIndicator, error) {
	var line, err = gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("sdr_fusex"))
	if err != nil {
		return nil, err
	}

	logger.Info("Frame indicator on GPIO", "chip", chip, "line", offset)

	return &DCDIndicator{line: line, logger: logger}, nil
}

// StateChanged is meant for Decoder.OnStateChange.
func (d *DCDIndicator) StateChanged(s State) {
	var value = 0
	if s == StateFrame {
		value = 1
	}

	var err = d.line.SetValue(value)
	if err != nil {
		d.logger.Warn("Could not set frame indicator", "err", err)
	}
}

func (d *DCDIndicator) Close() error {
	var _ = d.line.SetValue(0)

	return d.line.Close()
}
