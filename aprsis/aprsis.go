// Package aprsis moves APRS frames to and from APRS-IS servers. Three
// transports are provided: TCP (persistent connection with login and a
// continuous receive loop), UDP (one-shot datagrams) and HTTP (one-shot
// POST). Each transport owns exactly one connection for its lifetime and
// is not safe for concurrent use, except that Close may interrupt a
// blocked Receive from another goroutine; callers needing deadlines must
// wrap calls with their own, since APRS-IS defines none.
package aprsis

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/aprsgo/aprsis/aprs"
)

// Software identification sent in the login/auth line.
const (
	SoftwareName    = "go-aprsis"
	SoftwareVersion = "1.0.0"
)

const (
	// FilterPort is the standard APRS-IS server-side filter port (TCP).
	FilterPort = 14580

	// UDPSubmitPort is the standard APRS-IS UDP submission port.
	UDPSubmitPort = 8080

	// DefaultURL is the standard APRS-IS HTTP submission endpoint.
	DefaultURL = "http://srvr.aprs-is.net:8080"

	// ReadOnlyPasscode marks a receive-only session.
	ReadOnlyPasscode = "-1"

	// recvBuffer bounds a single socket read on the TCP stream.
	recvBuffer = 1024
)

// DefaultServers is the round-robin server list used when none is
// configured. Entries may carry an explicit :port.
var DefaultServers = []string{"rotate.aprs.net", "noam.aprs2.net"}

// DefaultHTTPHeaders are the headers sent with HTTP submissions.
var DefaultHTTPHeaders = map[string]string{
	"content-type": "application/octet-stream",
	"accept":       "text/plain",
}

var (
	// ErrNotConnected is returned by Send and Receive when the transport
	// has not been started or its connection is gone.
	ErrNotConnected = errors.New("aprsis: not connected")

	// ErrReceiveUnsupported is returned by transports that can only send.
	ErrReceiveUnsupported = errors.New("aprsis: transport does not support receive")
)

// Transport is the contract shared by the TCP, UDP and HTTP variants.
type Transport interface {
	// Start acquires the transport's connection. For TCP this blocks,
	// retrying indefinitely, until a server accepts the login.
	Start() error

	// Send transmits one frame and returns the number of bytes written.
	Send(frame aprs.Frame) (int, error)

	// Receive blocks, delivering each inbound frame to the callback in
	// arrival order. Transports without a receive path return
	// ErrReceiveUnsupported.
	Receive(callback func(aprs.Frame)) error

	// Close releases the connection.
	Close() error
}

// authLine builds the credential string shared by every transport:
//
//	user <USER> pass <PASSCODE> vers <software> <version>
//
// It is built once at construction and never re-derived.
func authLine(user, password string) string {
	if password == "" {
		password = ReadOnlyPasscode
	}
	return strings.Join([]string{
		"user", user, "pass", password, "vers", SoftwareName, SoftwareVersion,
	}, " ")
}

// ensureLogger substitutes the process default for a nil injected logger.
func ensureLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.Default()
	}
	return logger
}
