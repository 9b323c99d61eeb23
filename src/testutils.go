package fusex

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CaptureStdout runs command with os.Stdout redirected and returns what it printed.
// The pipe is drained while command runs so the trace options can be used too.
func CaptureStdout(t *testing.T, command func()) string {
	t.Helper()

	var r, w, pipeErr = os.Pipe()
	require.NoError(t, pipeErr)

	var oldStdout = os.Stdout
	os.Stdout = w

	defer func() {
		os.Stdout = oldStdout
	}()

	var captured = make(chan []byte, 1)

	go func() {
		var b bytes.Buffer

		var _, _ = io.Copy(&b, r)
		captured <- b.Bytes()
	}()

	command()

	w.Close() //nolint:gosec

	os.Stdout = oldStdout

	var output = <-captured
	r.Close() //nolint:gosec

	return string(output)
}

// AssertOutputContains checks command's output and hands it back for further checks.
func AssertOutputContains(t *testing.T, command func(), expected string) string {
	t.Helper()

	var output = CaptureStdout(t, command)

	assert.Contains(t, output, expected)

	return output
}
