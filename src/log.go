package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Save received messages to a log file.
 *
 * Description: CSV so it can be pulled straight into a spreadsheet.
 *
 *		There are two alternatives here.
 *
 *		-L logfile		Specify full file path.
 *
 *		-l logdir		Daily names will be created here.
 *
 *		Use one or the other but not both.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const CSV_HEADER = "seq,utime,isotime,length,text\n"

type CSVLogSink struct {
	mu         sync.Mutex
	dailyNames bool
	path       string // Directory with daily names, file otherwise.
	fp         *os.File
	openName   string // Daily name of the open file.
	logger     *log.Logger
	now        func() time.Time
}

/*------------------------------------------------------------------
 *
 * Function:	NewCSVLogSink
 *
 * Inputs:	dailyNames	- True if daily names should be generated.
 *				  In this case path is a directory.
 *				  When false, path would be the file name.
 *
 *		path		- Log file name or just directory.
 *				  Use "." for current directory.
 *
 * Description:	A missing directory is created, one level only.  If
 *		that fails, or path is not a directory, we fall back
 *		to the current directory rather than give up.
 *
 *		The file is kept open.  We don't open/close for every
 *		new item.
 *
 *------------------------------------------------------------------*/

func NewCSVLogSink(dailyNames bool, path string, logger *log.Logger) *CSVLogSink {
	var ls = &CSVLogSink{
		mu:         sync.Mutex{},
		dailyNames: dailyNames,
		path:       path,
		fp:         nil,
		openName:   "",
		logger:     logger,
		now:        time.Now,
	}

	if !dailyNames {
		// Typically logrotate would be used to keep size under control.
		logger.Info("Log file", "path", path)
		return ls
	}

	var stat, statErr = os.Stat(path)

	switch {
	case statErr == nil && stat.IsDir():
	case statErr == nil:
		logger.Error("Log file location is not a directory, using current working directory instead", "path", path)
		ls.path = "."
	default:
		var mkdirErr = os.Mkdir(path, 0755)
		if mkdirErr == nil {
			logger.Info("Log file location has been created", "path", path)
		} else {
			logger.Error("Failed to create log file location, using current working directory instead", "path", path, "err", mkdirErr)
			ls.path = "."
		}
	}

	return ls
}

// open makes sure the right file is open, writing the header if it is new.
func (ls *CSVLogSink) open(now time.Time) error {
	var fullPath = ls.path

	if ls.dailyNames {
		// Generate the file name from current date, UTC.
		var fname = now.Format("2006-01-02.log")

		if ls.fp != nil && fname != ls.openName {
			ls.closeFile()
		}

		fullPath = filepath.Join(ls.path, fname)
		ls.openName = fname
	}

	if ls.fp != nil {
		return nil
	}

	var _, statErr = os.Stat(fullPath)
	var alreadyThere = statErr == nil

	ls.logger.Info("Opening log file", "path", fullPath)

	var f, openErr = os.OpenFile(fullPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if openErr != nil {
		ls.openName = ""
		return fmt.Errorf("can't open log file %q for write: %w", fullPath, openErr)
	}

	ls.fp = f

	// Header only if this will be the first line.
	if !alreadyThere {
		var _, headerErr = f.WriteString(CSV_HEADER)
		if headerErr != nil {
			return headerErr
		}
	}

	return nil
}

func (ls *CSVLogSink) WriteMessage(m Message) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	var when = m.Received
	if when.IsZero() {
		when = ls.now()
	}

	when = when.UTC()

	var openErr = ls.open(when)
	if openErr != nil {
		return openErr
	}

	var w = csv.NewWriter(ls.fp)

	var writeErr = w.Write([]string{
		strconv.Itoa(m.Seq),
		strconv.FormatInt(when.Unix(), 10),
		when.Format("2006-01-02T15:04:05Z"),
		strconv.Itoa(len(m.Text)),
		m.Text,
	})
	if writeErr != nil {
		return writeErr
	}

	w.Flush()

	return w.Error()
}

func (ls *CSVLogSink) closeFile() {
	if ls.fp == nil {
		return
	}

	ls.logger.Info("Closing log file", "name", ls.fp.Name())
	ls.fp.Close()
	ls.fp = nil
}

func (ls *CSVLogSink) Close() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.closeFile()
	ls.openName = ""

	return nil
}
