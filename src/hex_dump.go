package fusex

import (
	"fmt"
	"io"
	"strings"
)

// HexDump prints p 16 bytes per line, hex then printable characters.
func HexDump(w io.Writer, p []byte) {
	var offset = 0
	var length = len(p)

	for length > 0 {
		var n = min(length, 16)

		var line strings.Builder

		fmt.Fprintf(&line, "  %03x: ", offset)

		for i := 0; i < n; i++ {
			fmt.Fprintf(&line, " %02x", p[i])
		}

		for i := n; i < 16; i++ {
			line.WriteString("   ")
		}

		line.WriteString("  ")

		for i := 0; i < n; i++ {
			if p[i] >= 0x20 && p[i] <= 0x7E {
				line.WriteByte(p[i])
			} else {
				line.WriteByte('.')
			}
		}

		fmt.Fprintln(w, line.String())

		p = p[n:]
		offset += n
		length -= n
	}
}

// HexDumpSink shows every message as a hex dump after its text line.
type HexDumpSink struct {
	w io.Writer
}

func NewHexDumpSink(w io.Writer) *HexDumpSink {
	return &HexDumpSink{w: w}
}

func (h *HexDumpSink) WriteMessage(m Message) error {
	HexDump(h.w, []byte(m.Text))
	return nil
}

func (h *HexDumpSink) Close() error {
	return nil
}
