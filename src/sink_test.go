package fusex

import (
	"bufio"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReceived = time.Date(2024, 6, 1, 12, 34, 56, 0, time.UTC)

func testMessage(seq int, text string) Message {
	return Message{Seq: seq, Text: text, Received: testReceived}
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, `F3: "HELLO"`, FormatMessage(testMessage(3, "HELLO")))
	assert.Equal(t, `F1: ""`, FormatMessage(testMessage(1, "")))
}

func TestConsoleSink(t *testing.T) {
	var sb strings.Builder

	var cs, err = NewConsoleSink(&sb, "")
	require.NoError(t, err)

	require.NoError(t, cs.WriteMessage(testMessage(1, "HI")))
	require.NoError(t, cs.WriteMessage(testMessage(2, "THERE")))
	require.NoError(t, cs.Close())

	assert.Equal(t, "F1: \"HI\"\nF2: \"THERE\"\n", sb.String())
}

func TestConsoleSinkTimestamp(t *testing.T) {
	var sb strings.Builder

	var cs, err = NewConsoleSink(&sb, "[%H:%M:%S]")
	require.NoError(t, err)

	require.NoError(t, cs.WriteMessage(testMessage(7, "HI")))

	assert.Equal(t, "[12:34:56] F7: \"HI\"\n", sb.String())
}

func TestConsoleSinkBadTimestamp(t *testing.T) {
	var _, err = NewConsoleSink(os.Stdout, "%Q")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

type failingSink struct {
	err error
}

func (f failingSink) WriteMessage(_ Message) error {
	return f.err
}

func (f failingSink) Close() error {
	return f.err
}

func TestMultiSink(t *testing.T) {
	var first = &recordingSink{}  //nolint:exhaustruct
	var second = &recordingSink{} //nolint:exhaustruct
	var broken = errors.New("broken")

	var ms = NewMultiSink(first)
	ms.Add(failingSink{err: broken})
	ms.Add(second)

	assert.Equal(t, 3, ms.Len())

	// Everybody gets it even though one in the middle fails.
	var err = ms.WriteMessage(testMessage(1, "X"))
	require.ErrorIs(t, err, broken)
	assert.Len(t, first.messages, 1)
	assert.Len(t, second.messages, 1)

	require.ErrorIs(t, ms.Close(), broken)
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestCSVLogSinkFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "messages.csv")

	var ls = NewCSVLogSink(false, path, discardLogger())

	require.NoError(t, ls.WriteMessage(testMessage(1, "HELLO")))
	require.NoError(t, ls.WriteMessage(testMessage(2, `SAY "HI", PLEASE`)))
	require.NoError(t, ls.Close())

	var data, err = os.ReadFile(path)
	require.NoError(t, err)

	var utime = strconv.FormatInt(testReceived.Unix(), 10)

	assert.Equal(t, CSV_HEADER+
		"1,"+utime+",2024-06-01T12:34:56Z,5,HELLO\n"+
		"2,"+utime+",2024-06-01T12:34:56Z,16,\"SAY \"\"HI\"\", PLEASE\"\n",
		string(data))

	// Appending to an existing file doesn't repeat the header.
	ls = NewCSVLogSink(false, path, discardLogger())
	require.NoError(t, ls.WriteMessage(testMessage(3, "MORE")))
	require.NoError(t, ls.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), CSV_HEADER))
	assert.True(t, strings.HasSuffix(string(data), ",4,MORE\n"))
}

func TestCSVLogSinkDailyNames(t *testing.T) {
	var dir = filepath.Join(t.TempDir(), "logs")

	var ls = NewCSVLogSink(true, dir, discardLogger())

	var day1 = testMessage(1, "ONE")
	var day2 = testMessage(2, "TWO")
	day2.Received = testReceived.Add(24 * time.Hour)

	require.NoError(t, ls.WriteMessage(day1))
	require.NoError(t, ls.WriteMessage(day2))
	require.NoError(t, ls.Close())

	var first, err1 = os.ReadFile(filepath.Join(dir, "2024-06-01.log"))
	require.NoError(t, err1)
	assert.Contains(t, string(first), ",3,ONE\n")

	var second, err2 = os.ReadFile(filepath.Join(dir, "2024-06-02.log"))
	require.NoError(t, err2)
	assert.True(t, strings.HasPrefix(string(second), CSV_HEADER))
	assert.Contains(t, string(second), ",3,TWO\n")
}

type fakePort struct {
	strings.Builder
	closed bool
	short  bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.short {
		return len(b) - 1, nil
	}

	return p.Builder.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestSerialSink(t *testing.T) {
	var port = &fakePort{} //nolint:exhaustruct
	var s = newSerialSink(port, "/dev/ttyTEST")

	require.NoError(t, s.WriteMessage(testMessage(1, "HELLO")))
	require.NoError(t, s.WriteMessage(testMessage(2, "WORLD")))
	assert.Equal(t, "HELLO\r\nWORLD\r\n", port.String())

	port.short = true
	require.ErrorIs(t, s.WriteMessage(testMessage(3, "X")), io.ErrShortWrite)

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestNetSink(t *testing.T) {
	var ns, err = ListenNetSink("127.0.0.1:0", false, "", discardLogger())
	require.NoError(t, err)

	defer ns.Close()

	require.NotZero(t, ns.Port())

	var conn, dialErr = net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(ns.Port())))
	require.NoError(t, dialErr)

	defer conn.Close()

	require.Eventually(t, func() bool { return ns.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, ns.WriteMessage(testMessage(4, "NET")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var line, readErr = bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, readErr)
	assert.Equal(t, "F4: \"NET\"\r\n", line)

	// Client going away frees the slot.
	conn.Close()
	require.Eventually(t, func() bool { return ns.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestNetSinkNoClients(t *testing.T) {
	var ns, err = ListenNetSink("127.0.0.1:0", false, "", discardLogger())
	require.NoError(t, err)

	require.NoError(t, ns.WriteMessage(testMessage(1, "NOBODY")))
	require.NoError(t, ns.Close())
}

func TestPTYSink(t *testing.T) {
	var ps, err = OpenPTYSink("", discardLogger())
	if err != nil {
		t.Skipf("No pseudo terminals here: %s", err)
	}

	var slave, openErr = os.Open(ps.SlaveName())
	require.NoError(t, openErr)

	defer slave.Close()

	require.NoError(t, ps.WriteMessage(testMessage(1, "PTY")))

	var line, readErr = bufio.NewReader(slave).ReadString('\n')
	require.NoError(t, readErr)
	assert.Contains(t, line, "PTY")

	require.NoError(t, ps.Close())
}

func TestDNSSDDefaultServiceName(t *testing.T) {
	assert.True(t, strings.HasPrefix(dnsSDDefaultServiceName(), "SDR fusex"))
	assert.NotContains(t, dnsSDDefaultServiceName(), ".")
}
