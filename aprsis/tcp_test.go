package aprsis

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprsgo/aprsis/aprs"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestAuthLine(t *testing.T) {
	assert.Equal(t,
		"user W2GMD pass -1 vers "+SoftwareName+" "+SoftwareVersion,
		authLine("W2GMD", "-1"))

	// Empty password falls back to the read-only passcode.
	assert.Equal(t, authLine("W2GMD", ReadOnlyPasscode), authLine("W2GMD", ""))
}

func TestNewTCP_Defaults(t *testing.T) {
	tcp := NewTCP("W2GMD", "", nil, "", nil)

	assert.Equal(t, DefaultServers, tcp.servers)
	assert.Equal(t, "p/W2GMD", tcp.filter)
	assert.Equal(t,
		authLine("W2GMD", ReadOnlyPasscode)+" filter p/W2GMD",
		tcp.login)
}

func TestTCP_SendNotConnected(t *testing.T) {
	tcp := NewTCP("W2GMD", "-1", nil, "", testLogger())

	_, err := tcp.Send(aprs.NewFrame())
	assert.ErrorIs(t, err, ErrNotConnected)

	err = tcp.Receive(func(aprs.Frame) {})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestTCP_Send(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	tcp := &TCP{conn: client, connected: true, logger: testLogger()}

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := server.Read(buf)
		got <- string(buf[:n])
	}()

	frame, err := aprs.ParseFrame([]byte("W2GMD>APRS:Hello"))
	require.NoError(t, err)

	n, err := tcp.Send(frame)
	require.NoError(t, err)
	assert.Equal(t, len("W2GMD>APRS:Hello\r\n"), n)
	assert.Equal(t, "W2GMD>APRS:Hello\r\n", <-got)
}

func TestTCP_ReceiveReassembly(t *testing.T) {
	client, server := net.Pipe()

	tcp := &TCP{conn: client, connected: true, logger: testLogger()}

	go func() {
		// One frame and the start of a second, split mid-frame across
		// two reads; the partial line must wait for the second chunk.
		server.Write([]byte("A>B:msg1\r\nA>B:m"))
		server.Write([]byte("sg2\r\n"))
		server.Close()
	}()

	var texts []string
	err := tcp.Receive(func(f aprs.Frame) {
		texts = append(texts, f.Text)
	})

	require.NoError(t, err) // Clean close by the peer
	assert.Equal(t, []string{"msg1", "msg2"}, texts)
	assert.Nil(t, tcp.conn) // Closed on exit from Receive
}

func TestTCP_ReceiveSkipsComments(t *testing.T) {
	client, server := net.Pipe()

	tcp := &TCP{conn: client, connected: true, logger: testLogger()}

	go func() {
		server.Write([]byte("# aprsc 2.1.5-g8af3cdc\r\n"))
		server.Write([]byte("# logresp W2GMD unverified, server T2SYDNEY\r\n"))
		server.Write([]byte("W2GMD>APRS:hi\r\n"))
		server.Close()
	}()

	var frames []aprs.Frame
	err := tcp.Receive(func(f aprs.Frame) {
		frames = append(frames, f)
	})

	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "W2GMD", frames[0].Source.String())
	assert.Equal(t, "hi", frames[0].Text)
}

func TestTCP_CloseDuringReceive(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	tcp := &TCP{conn: client, connected: true, logger: testLogger()}

	done := make(chan error, 1)
	go func() {
		done <- tcp.Receive(func(aprs.Frame) {})
	}()

	// Keep traffic flowing while Close arrives from another goroutine,
	// the way aprsmon's signal handler interrupts a busy loop.
	go func() {
		for {
			if _, err := server.Write([]byte("A>B:traffic\r\n")); err != nil {
				return
			}
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tcp.Close())

	select {
	case err := <-done:
		// The loop ends with the closed-connection error, never a panic.
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after Close")
	}
}

func TestTCP_StartRoundRobin(t *testing.T) {
	// A listener opened and immediately closed leaves a port that
	// refuses connections, standing in for a dead server.
	dead, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadAddr := dead.Addr().String()
	require.NoError(t, dead.Close())

	live, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer live.Close()

	go func() {
		conn, err := live.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		conn.Write([]byte("# aprsc 2.1.5-g8af3cdc\r\n"))

		buf := make([]byte, 256)
		conn.Read(buf)

		conn.Write([]byte("# logresp TEST unverified, server T2TEST\r\n"))
	}()

	tcp := NewTCP("TEST", "", []string{deadAddr, live.Addr().String()}, "", testLogger())
	require.NoError(t, tcp.Start())
	defer tcp.Close()

	assert.True(t, tcp.isConnected())
	// Both entries were consumed: the dead first server, then the live
	// second one, wrapping the index back to the start of the list.
	assert.Equal(t, 0, tcp.serverIndex)
}

func TestTCP_StartLogin(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	login := make(chan string, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		conn.Write([]byte("# aprsc 2.1.5-g8af3cdc\r\n"))

		buf := make([]byte, 256)
		n, _ := conn.Read(buf)
		login <- string(buf[:n])

		conn.Write([]byte("# logresp TEST unverified, server T2TEST\r\n"))
	}()

	tcp := NewTCP("TEST", "", []string{listener.Addr().String()}, "", testLogger())
	require.NoError(t, tcp.Start())
	defer tcp.Close()

	sent := <-login
	assert.True(t, strings.HasSuffix(sent, "\r\n"))
	assert.Equal(t,
		"user TEST pass -1 vers "+SoftwareName+" "+SoftwareVersion+" filter p/TEST",
		strings.TrimSpace(sent))
}
