package aprsis

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aprsgo/aprsis/aprs"
)

// retryInterval separates connection attempts while Start cycles
// through the server list.
const retryInterval = time.Second

// TCP is the persistent APRS-IS connection: it logs in with a filter
// expression and then streams CRLF-delimited frames in both directions.
type TCP struct {
	user     string
	password string
	filter   string
	login    string // Full login line: auth + filter

	servers     []string
	serverIndex int // Next server to try, advanced round-robin

	mu        sync.Mutex // Guards conn and connected against Close from another goroutine
	conn      net.Conn
	connected bool

	logger *log.Logger
}

// NewTCP builds a TCP transport. A nil or empty server list falls back
// to DefaultServers, an empty filter to "p/<user>" (packets involving
// this user), an empty password to the read-only passcode and a nil
// logger to the process default.
func NewTCP(user, password string, servers []string, filter string, logger *log.Logger) *TCP {
	if len(servers) == 0 {
		servers = DefaultServers
	}
	if filter == "" {
		filter = "p/" + user
	}
	if password == "" {
		password = ReadOnlyPasscode
	}

	return &TCP{
		user:     user,
		password: password,
		filter:   filter,
		login:    authLine(user, password) + " filter " + filter,
		servers:  append([]string(nil), servers...),
		logger:   ensureLogger(logger),
	}
}

// Start connects and logs in to APRS-IS. It walks the server list
// round-robin, sleeping between attempts, and does not return until a
// connection succeeds; there is no retry limit. Any failure along the
// way (resolve, connect, greeting, login) is logged and the next server
// is tried.
func (t *TCP) Start() error {
	for !t.isConnected() {
		entry := t.servers[t.serverIndex]
		t.serverIndex = (t.serverIndex + 1) % len(t.servers)

		addr := entry
		if !strings.Contains(entry, ":") {
			addr = net.JoinHostPort(entry, strconv.Itoa(FilterPort))
		}

		if err := t.connect(addr); err != nil {
			t.logger.Warnf("connection to %s failed: %v", addr, err)
			time.Sleep(retryInterval)
		}
	}
	return nil
}

// connect performs one connection and login attempt against addr.
func (t *TCP) connect(addr string) error {
	t.logger.Infof("connecting to %s", addr)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}

	buf := make([]byte, recvBuffer)

	// The server greets with one comment line before login.
	n, err := conn.Read(buf)
	if err != nil {
		conn.Close()
		return err
	}
	t.logger.Infof("connect result %q", strings.TrimSpace(string(buf[:n])))

	if _, err := conn.Write([]byte(t.login + "\r\n")); err != nil {
		conn.Close()
		return err
	}

	n, err = conn.Read(buf)
	if err != nil {
		conn.Close()
		return err
	}
	t.logger.Infof("auth result %q", strings.TrimSpace(string(buf[:n])))

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.mu.Unlock()
	return nil
}

// isConnected reports whether a login has completed and the connection
// is still held.
func (t *TCP) isConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// current returns the held connection, or nil before Start and after
// Close.
func (t *TCP) current() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// Send writes the frame's wire form plus CRLF to the connection and
// returns the number of bytes written. It fails with ErrNotConnected
// when Start has not completed.
func (t *TCP) Send(frame aprs.Frame) (int, error) {
	conn := t.current()
	if conn == nil {
		return 0, ErrNotConnected
	}

	t.logger.Infof("sending frame %q", frame.String())
	return conn.Write([]byte(frame.String() + "\r\n"))
}

// Receive reads the stream until the peer closes it or a socket error
// occurs, delivering each complete non-comment line to callback as a
// parsed Frame, in order. Reads are appended to a reassembly buffer and
// only CRLF-complete lines are dispatched; a trailing partial line waits
// for the next read. Server comment lines (leading '#') are inspected
// for the login acknowledgment and dropped.
//
// The callback runs synchronously on the receive loop: a slow callback
// backpressures the socket, and a panicking callback is not recovered.
// A clean close by the peer ends the loop with a nil error; any other
// socket error is logged and returned. The connection is closed on all
// exit paths. Close may be called from another goroutine to interrupt
// a blocked Receive, which then returns the closed-connection error.
func (t *TCP) Receive(callback func(aprs.Frame)) error {
	conn := t.current()
	if conn == nil {
		return ErrNotConnected
	}
	defer t.Close()

	buf := make([]byte, recvBuffer)
	var pending []byte

	for {
		n, err := conn.Read(buf)

		if n > 0 {
			pending = append(pending, buf[:n]...)

			var lines []string
			if bytes.HasSuffix(pending, []byte("\r\n")) {
				lines = strings.Split(strings.TrimSpace(string(pending)), "\r\n")
				pending = pending[:0]
			} else {
				parts := strings.Split(string(pending), "\r\n")
				lines = parts[:len(parts)-1]
				pending = append(pending[:0], parts[len(parts)-1]...)
			}

			for _, line := range lines {
				if line == "" {
					continue
				}
				if strings.HasPrefix(line, "#") {
					if strings.Contains(line, "logresp") {
						t.logger.Debugf("logresp %q", line)
					}
					continue
				}

				frame, perr := aprs.ParseFrame([]byte(line))
				if perr != nil {
					t.logger.Debugf("undecodable line %s", frame.Hex())
				}
				callback(frame)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				t.logger.Info("connection closed by server")
				return nil
			}
			t.logger.Errorf("read failed: %v", err)
			return err
		}
	}
}

// Close releases the connection. A later Start reconnects from the next
// server in the list.
func (t *TCP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connected = false
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	return err
}
