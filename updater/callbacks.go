package updater

import "time"

// Update phases reported through Progress.
const (
	// PhaseStarting means the update session is being opened
	PhaseStarting = "starting"

	// PhaseWriting means firmware chunks are being transferred
	PhaseWriting = "writing"

	// PhaseFinishing means all chunks are sent and the session is closing
	PhaseFinishing = "finishing"

	// PhaseComplete means the update finished successfully
	PhaseComplete = "complete"
)

// Progress describes the state of a running update. Passed to the progress
// callback after each chunk.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// CurrentChunk is the number of chunks sent so far
	CurrentChunk int

	// TotalChunks is the total number of chunks in the image
	TotalChunks int

	// BytesWritten is the number of image bytes transferred so far
	BytesWritten int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Elapsed is the time since the update started
	Elapsed time.Duration
}

// ProgressCallback is invoked during an update to report progress.
// Implementations should return quickly; the update blocks while the
// callback runs.
type ProgressCallback func(Progress)
