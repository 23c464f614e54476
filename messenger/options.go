package messenger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the per-call response timeout.
const DefaultTimeout = 10 * time.Second

// Config holds the messenger configuration.
type Config struct {
	// Timeout bounds each blocking receive
	Timeout time.Duration

	// LocalAddr is an optional local bind address for the UDP socket
	LocalAddr string

	// Logger receives structured debug logging
	Logger logrus.FieldLogger

	// Transport overrides the UDP transport; used by tests and callers
	// supplying their own datagram transport
	Transport Transport
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
		Logger:  logrus.StandardLogger(),
	}
}

// Option is a functional option for configuring the Messenger.
type Option func(*Config)

// WithTimeout sets the per-call response timeout.
//
// Example:
//
//	m, err := messenger.New(addr, messenger.WithTimeout(2*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithLocalAddr binds the UDP socket to a local address.
//
// Example:
//
//	m, err := messenger.New(addr, messenger.WithLocalAddr("192.168.7.2:0"))
func WithLocalAddr(localAddr string) Option {
	return func(c *Config) {
		c.LocalAddr = localAddr
	}
}

// WithLogger sets the logger used for operation-level debug logging.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithTransport supplies the transport directly instead of dialing UDP to
// the server address. The messenger takes ownership and closes it on Close.
func WithTransport(t Transport) Option {
	return func(c *Config) {
		c.Transport = t
	}
}
