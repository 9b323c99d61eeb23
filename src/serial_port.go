package fusex

/*------------------------------------------------------------------
 *
 * Purpose:   	Copy decoded messages to a serial port, one per line.
 *
 * Description:	For a display, a logger or some other box that only
 *		speaks RS-232.  Each message is sent as its text
 *		followed by CR LF.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"
)

type SerialSink struct {
	mu   sync.Mutex
	port io.WriteCloser
	name string
}

/*-------------------------------------------------------------------
 *
 * Name:	OpenSerialSink
 *
 * Inputs:	devicename	- Usually /dev/tty...
 *				  Could be /dev/rfcomm0 for Bluetooth.
 *
 *		baud		- Speed.  1200, 4800, 9600 bps, etc.
 *				  If 0, leave it alone.
 *
 *---------------------------------------------------------------*/

func OpenSerialSink(devicename string, baud int, logger *log.Logger) (*SerialSink, error) {
	var fd, err = term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", devicename, err)
	}

	switch baud {
	case 0: /* Leave it alone. */
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		var speedErr = fd.SetSpeed(baud)
		if speedErr != nil {
			logger.Warn("Could not set serial port speed", "port", devicename, "baud", baud, "err", speedErr)
		}
	default:
		logger.Warn("Unsupported serial port speed, using 9600", "port", devicename, "baud", baud)
		var speedErr = fd.SetSpeed(9600)
		if speedErr != nil {
			logger.Warn("Could not set serial port speed", "port", devicename, "err", speedErr)
		}
	}

	logger.Info("Sending messages to serial port", "port", devicename)

	return newSerialSink(fd, devicename), nil
}

func newSerialSink(port io.WriteCloser, name string) *SerialSink {
	return &SerialSink{mu: sync.Mutex{}, port: port, name: name}
}

func (s *SerialSink) WriteMessage(m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data = []byte(m.Text + "\r\n")

	var written, err = s.port.Write(data)
	if err != nil {
		return fmt.Errorf("writing to serial port %s: %w", s.name, err)
	}

	if written != len(data) {
		return fmt.Errorf("writing to serial port %s: %w", s.name, io.ErrShortWrite)
	}

	return nil
}

func (s *SerialSink) Close() error {
	return s.port.Close()
}
