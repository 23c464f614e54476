package messenger

import (
	"errors"
	"net"
	"time"
)

// Transport is the datagram transport a Messenger speaks over. It is
// connectionless and unreliable: datagrams may be lost, and a receive that
// produces nothing within the timeout fails with a timeout error.
//
// Implementations are not required to be safe for concurrent use; a
// Messenger owns its transport exclusively.
type Transport interface {
	// Send transmits one datagram to the device
	Send(p []byte) error

	// Recv blocks for up to timeout and returns the next datagram,
	// truncated to maxLen bytes. A timeout surfaces as an error satisfying
	// IsTimeout.
	Recv(maxLen int, timeout time.Duration) ([]byte, error)

	// Close releases the transport. An outstanding Recv aborts with a
	// closed-resource error.
	Close() error
}

// UDPTransport implements Transport over a connected UDP socket.
type UDPTransport struct {
	conn *net.UDPConn
}

// DialUDP opens a UDP transport to serverAddr (host:port). If localAddr is
// non-empty the socket binds to it.
func DialUDP(serverAddr, localAddr string) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return nil, err
	}

	var laddr *net.UDPAddr
	if localAddr != "" {
		laddr, err = net.ResolveUDPAddr("udp", localAddr)
		if err != nil {
			return nil, err
		}
	}

	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, err
	}

	return &UDPTransport{conn: conn}, nil
}

func (t *UDPTransport) Send(p []byte) error {
	_, err := t.conn.Write(p)
	return err
}

func (t *UDPTransport) Recv(maxLen int, timeout time.Duration) ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	buf := make([]byte, maxLen)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

// IsTimeout reports whether err is, or wraps, a transport receive timeout.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
