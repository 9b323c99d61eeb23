package fusex

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Function:	NewLogger
 *
 * Purpose:	The one logger shared by everything in a program.
 *
 * Inputs:	w	- Usually stderr, so stdout carries only messages
 *			  and traces.
 *		level	- debug, info, warn, error.  Empty for info.
 *		prefix	- Program name or empty.
 *
 *------------------------------------------------------------------*/

func NewLogger(w io.Writer, level string, prefix string) (*log.Logger, error) {
	var lvl = log.InfoLevel

	if level != "" {
		var parsed, err = log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
		}

		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{ //nolint:exhaustruct
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	}), nil
}

// discardLogger is for callers that did not supply one.
func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
