package fusex

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// FileSource reads raw unsigned 8 bit samples, as written by rtl_sdr, from a file or stdin.
type FileSource struct {
	r io.Reader
	f *os.File
}

func OpenFileSource(name string) (*FileSource, error) {
	if name == "-" || name == "" {
		return NewReaderSource(os.Stdin), nil
	}

	var f, err = os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening sample file: %w", err)
	}

	return &FileSource{r: bufio.NewReader(f), f: f}, nil
}

// NewReaderSource decodes samples from any reader.  Close does not close r.
func NewReaderSource(r io.Reader) *FileSource {
	return &FileSource{r: r, f: nil}
}

func (s *FileSource) Configure(_ Tuning) error {
	return nil
}

func (s *FileSource) ReadBlock(ctx context.Context, buf []byte) (int, error) {
	return readWithContext(ctx, func() (int, error) {
		return readFullBlock(s.r, buf)
	}, nil)
}

func (s *FileSource) Close() error {
	if s.f == nil {
		return nil
	}

	return s.f.Close()
}
