package updater

import (
	"github.com/sirupsen/logrus"

	"github.com/ardelle/go-ecboot/protocol"
)

// Config holds the updater configuration.
type Config struct {
	// ChunkSize is the number of image bytes per write request,
	// 1 to protocol.MaxWriteData
	ChunkSize int

	// ProgressCallback reports progress during the update (optional)
	ProgressCallback ProgressCallback

	// Logger receives structured update logging
	Logger logrus.FieldLogger

	// ResetAfter resets the device once the update session has closed
	ResetAfter bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ChunkSize: protocol.MaxWriteData,
		Logger:    logrus.StandardLogger(),
	}
}

// Option is a functional option for configuring the Updater.
type Option func(*Config)

// WithChunkSize sets the number of image bytes per write request. Values
// outside 1..protocol.MaxWriteData are ignored.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size >= 1 && size <= protocol.MaxWriteData {
			c.ChunkSize = size
		}
	}
}

// WithProgressCallback sets a callback invoked after each transferred chunk.
//
// Example:
//
//	u := updater.New(m, updater.WithProgressCallback(func(p updater.Progress) {
//	    fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	}))
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets the logger used during updates.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithResetAfter resets the device after a successful update. An
// unconfirmed reset acknowledgement (the device may reset first) is
// tolerated.
func WithResetAfter(reset bool) Option {
	return func(c *Config) {
		c.ResetAfter = reset
	}
}
