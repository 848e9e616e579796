package aprsis

import (
	"fmt"
	"net"

	"github.com/charmbracelet/log"

	"github.com/aprsgo/aprsis/aprs"
)

// UDP is the connectionless, send-only APRS-IS transport. Each Send is a
// single datagram carrying the auth line and one frame; there is no
// delivery confirmation and no retry.
type UDP struct {
	user     string
	password string
	auth     string

	addr   *net.UDPAddr
	conn   *net.UDPConn
	logger *log.Logger
}

// NewUDP builds a UDP transport aimed at server:port. An empty server
// falls back to the first default server, a zero port to the standard
// submission port. The server name is resolved here, once.
func NewUDP(user, password, server string, port int, logger *log.Logger) (*UDP, error) {
	if server == "" {
		server = DefaultServers[0]
	}
	if port == 0 {
		port = UDPSubmitPort
	}

	addr, err := resolveUDPAddr(server, port)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve APRS-IS server %s: %w", server, err)
	}

	return &UDP{
		user:     user,
		password: password,
		auth:     authLine(user, password),
		addr:     addr,
		logger:   ensureLogger(logger),
	}, nil
}

// Start opens an unbound IPv4 datagram socket on an ephemeral local
// port. There is no handshake.
func (u *UDP) Start() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return fmt.Errorf("failed to open UDP socket: %w", err)
	}

	u.conn = conn
	return nil
}

// Send transmits "<auth>\n<frame>" as one datagram and returns the
// number of bytes sent.
func (u *UDP) Send(frame aprs.Frame) (int, error) {
	if u.conn == nil {
		return 0, ErrNotConnected
	}

	u.logger.Infof("sending frame %q", frame.String())
	payload := u.auth + "\n" + frame.String()
	return u.conn.WriteToUDP([]byte(payload), u.addr)
}

// Receive is not supported: APRS-IS over UDP is submit-only in this
// design, and the violation is rejected rather than silently ignored.
func (u *UDP) Receive(callback func(aprs.Frame)) error {
	return ErrReceiveUnsupported
}

// Close releases the socket.
func (u *UDP) Close() error {
	if u.conn == nil {
		return nil
	}

	err := u.conn.Close()
	u.conn = nil
	return err
}

// lookupHost resolves a hostname to its first IPv4 address, accepting
// literal addresses as-is.
func lookupHost(hostname string) (net.IP, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return ip, nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil, err
	}

	for _, ip := range ips {
		if ip.To4() != nil {
			return ip, nil
		}
	}

	return nil, fmt.Errorf("no IPv4 address found for %s", hostname)
}

// resolveUDPAddr combines a host lookup with a port into a UDP address.
func resolveUDPAddr(hostname string, port int) (*net.UDPAddr, error) {
	ip, err := lookupHost(hostname)
	if err != nil {
		return nil, err
	}

	return &net.UDPAddr{IP: ip, Port: port}, nil
}
