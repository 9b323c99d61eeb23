package fusex

/*------------------------------------------------------------------
 *
 * Purpose:   	Offer decoded messages on a pseudo terminal.
 *
 * Description:	An application that expects a serial device can open
 *		the slave side and read one message per line, exactly as
 *		with SerialSink.
 *
 *		The device name is not the same every time, so a symlink
 *		with a fixed name is created as well.
 *
 *		If no one is reading from the other end, the buffer space
 *		eventually fills up and a write would block.  Writes are
 *		therefore queued and a full queue drops the message
 *		instead of stalling the decoder.
 *
 *---------------------------------------------------------------*/

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
)

const TMP_FUSEX_SYMLINK = "/tmp/fusex"

const PTY_QUEUE = 32

type PTYSink struct {
	master  *os.File
	slave   *os.File
	symlink string
	queue   chan string
	done    chan struct{}
	logger  *log.Logger
}

// OpenPTYSink creates the pseudo terminal.  An empty symlink skips the link.
func OpenPTYSink(symlink string, logger *log.Logger) (*PTYSink, error) {
	var ptmx, pts, err = pty.Open()
	if err != nil {
		return nil, err
	}

	var ps = &PTYSink{
		master:  ptmx,
		slave:   pts,
		symlink: symlink,
		queue:   make(chan string, PTY_QUEUE),
		done:    make(chan struct{}),
		logger:  logger,
	}

	logger.Info("Messages are available on pseudo terminal", "device", pts.Name())

	if symlink != "" {
		os.Remove(symlink)

		var symlinkErr = os.Symlink(pts.Name(), symlink)
		if symlinkErr == nil {
			logger.Info("Created symlink", "link", symlink, "device", pts.Name())
		} else {
			logger.Warn("Failed to create symlink", "link", symlink, "err", symlinkErr)
			ps.symlink = ""
		}
	}

	go ps.writer()

	return ps, nil
}

// SlaveName is the device applications should open.
func (ps *PTYSink) SlaveName() string {
	return ps.slave.Name()
}

func (ps *PTYSink) writer() {
	defer close(ps.done)

	for line := range ps.queue {
		var _, err = ps.master.WriteString(line)
		if err != nil {
			ps.logger.Debug("Pseudo terminal write failed", "err", err)
		}
	}
}

func (ps *PTYSink) WriteMessage(m Message) error {
	select {
	case ps.queue <- m.Text + "\r\n":
	default:
		ps.logger.Warn("Pseudo terminal is not being read, message dropped", "seq", m.Seq)
	}

	return nil
}

func (ps *PTYSink) Close() error {
	close(ps.queue)

	// Closing the master unblocks a writer stuck on a full buffer.
	var err = ps.master.Close()
	<-ps.done
	ps.slave.Close()

	if ps.symlink != "" {
		os.Remove(ps.symlink)
	}

	return err
}
