package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Where decoded messages go.
 *
 * Description:	The session hands each completed message to one sink.
 *		Use MultiSink to fan out to several.  A sink failing
 *		never stops the decoder; the session logs and moves on.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/lestrrat-go/strftime"
)

type MessageSink interface {
	WriteMessage(m Message) error
	Close() error
}

// FormatMessage gives the canonical text form, e.g. F3: "HELLO"
func FormatMessage(m Message) string {
	return fmt.Sprintf("F%d: \"%s\"", m.Seq, m.Text)
}

type MultiSink struct {
	sinks []MessageSink
}

func NewMultiSink(sinks ...MessageSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (ms *MultiSink) Add(s MessageSink) {
	ms.sinks = append(ms.sinks, s)
}

func (ms *MultiSink) Len() int {
	return len(ms.sinks)
}

// WriteMessage delivers to every sink, even after one fails.
func (ms *MultiSink) WriteMessage(m Message) error {
	var errs []error

	for _, s := range ms.sinks {
		var err = s.WriteMessage(m)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (ms *MultiSink) Close() error {
	var errs []error

	for _, s := range ms.sinks {
		var err = s.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ConsoleSink prints one line per message, optionally preceded by a strftime time stamp.
type ConsoleSink struct {
	mu    sync.Mutex
	w     io.Writer
	stamp *strftime.Strftime
}

func NewConsoleSink(w io.Writer, timestampFormat string) (*ConsoleSink, error) {
	var cs = &ConsoleSink{mu: sync.Mutex{}, w: w, stamp: nil}

	if timestampFormat != "" {
		var f, err = strftime.New(timestampFormat)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp format %q: %w", ErrInvalidConfig, timestampFormat, err)
		}

		cs.stamp = f
	}

	return cs, nil
}

func (cs *ConsoleSink) WriteMessage(m Message) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var line = FormatMessage(m)
	if cs.stamp != nil {
		line = cs.stamp.FormatString(m.Received) + " " + line
	}

	var _, err = fmt.Fprintln(cs.w, line)

	return err
}

func (cs *ConsoleSink) Close() error {
	return nil
}
