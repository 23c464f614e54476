package updater

import (
	"context"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/ardelle/go-ecboot/messenger"
)

// Client is the messenger surface the updater drives. *messenger.Messenger
// satisfies it.
type Client interface {
	StartUpdate(imageSize uint32) error
	Write(data []byte) error
	StopUpdate(crc uint32) error
	Reset() error
}

// Updater orchestrates one complete firmware update: it opens the session,
// streams the image in chunks, and closes the session with the whole-image
// CRC32. It performs exactly one attempt per exchange; resilience wrappers
// belong outside, where idempotency can be judged.
type Updater struct {
	client Client
	config Config
}

// New creates an Updater driving the given client.
//
// Example:
//
//	u := updater.New(m,
//	    updater.WithProgressCallback(progressFunc),
//	    updater.WithResetAfter(true),
//	)
func New(client Client, opts ...Option) *Updater {
	if client == nil {
		panic("client cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Updater{
		client: client,
		config: cfg,
	}
}

// Update transfers a complete firmware image:
//  1. Start the update session, declaring the image size
//  2. Write the image in order, one chunk per exchange
//  3. Stop the session with the CRC32 over the whole image
//  4. Optionally reset the device
//
// The context is checked between chunks; a mid-image cancellation leaves
// the device session open.
func (u *Updater) Update(ctx context.Context, image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("image cannot be empty")
	}

	startTime := time.Now()
	chunkSize := u.config.ChunkSize
	totalChunks := (len(image) + chunkSize - 1) / chunkSize

	u.reportProgress(Progress{
		Phase:       PhaseStarting,
		TotalChunks: totalChunks,
	})

	if err := u.client.StartUpdate(uint32(len(image))); err != nil {
		return fmt.Errorf("start update: %w", err)
	}

	u.config.Logger.WithFields(map[string]interface{}{
		"image_size": len(image),
		"chunks":     totalChunks,
		"chunk_size": chunkSize,
	}).Info("firmware update started")

	bytesWritten := 0
	for i := 0; i < totalChunks; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		chunk := image[bytesWritten:]
		if len(chunk) > chunkSize {
			chunk = chunk[:chunkSize]
		}

		if err := u.client.Write(chunk); err != nil {
			return fmt.Errorf("write chunk %d/%d: %w", i+1, totalChunks, err)
		}
		bytesWritten += len(chunk)

		u.reportProgress(Progress{
			Phase:        PhaseWriting,
			CurrentChunk: i + 1,
			TotalChunks:  totalChunks,
			BytesWritten: bytesWritten,
			Percentage:   float64(bytesWritten) / float64(len(image)) * 95,
			Elapsed:      time.Since(startTime),
		})
	}

	u.reportProgress(Progress{
		Phase:        PhaseFinishing,
		CurrentChunk: totalChunks,
		TotalChunks:  totalChunks,
		BytesWritten: bytesWritten,
		Percentage:   95,
		Elapsed:      time.Since(startTime),
	})

	sum := crc32.ChecksumIEEE(image)
	if err := u.client.StopUpdate(sum); err != nil {
		return fmt.Errorf("stop update: %w", err)
	}

	if u.config.ResetAfter {
		if err := u.client.Reset(); err != nil {
			// The device often resets before its acknowledgement leaves
			// the wire; an unconfirmed reset is not a failed update.
			if !messenger.IsTimeout(err) {
				return fmt.Errorf("reset after update: %w", err)
			}
			u.config.Logger.Warn("reset sent but unconfirmed (device likely resetting)")
		}
	}

	u.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentChunk: totalChunks,
		TotalChunks:  totalChunks,
		BytesWritten: bytesWritten,
		Percentage:   100,
		Elapsed:      time.Since(startTime),
	})

	u.config.Logger.WithFields(map[string]interface{}{
		"bytes":   bytesWritten,
		"crc":     fmt.Sprintf("0x%08X", sum),
		"elapsed": time.Since(startTime).String(),
	}).Info("firmware update complete")

	return nil
}

// reportProgress calls the progress callback if configured.
func (u *Updater) reportProgress(p Progress) {
	if u.config.ProgressCallback != nil {
		u.config.ProgressCallback(p)
	}
}
