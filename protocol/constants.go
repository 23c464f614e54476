package protocol

// SyncByte marks the start of every packet (0xE7).
const SyncByte = 0xE7

// Opcodes. Requests use odd values, their paired responses the next even
// value. The error response (0xFF) can answer any request.
const (
	// OpVersionRequest queries API and bootloader version information
	OpVersionRequest = 0x01

	// OpVersionResponse carries version fields and a 128-byte note
	OpVersionResponse = 0x02

	// OpUpdateStartRequest opens a firmware update session, declaring the image size
	OpUpdateStartRequest = 0x03

	// OpUpdateStartResponse acknowledges the update session
	OpUpdateStartResponse = 0x04

	// OpUpdateStopRequest closes the update session with the whole-image CRC32
	OpUpdateStopRequest = 0x05

	// OpUpdateStopResponse carries the CRC32 the device computed over received bytes
	OpUpdateStopResponse = 0x06

	// OpWriteRequest carries one firmware chunk plus its CRC32
	OpWriteRequest = 0x07

	// OpWriteResponse acknowledges a chunk write
	OpWriteResponse = 0x08

	// OpResetRequest asks the device to reset
	OpResetRequest = 0x09

	// OpResetResponse acknowledges a reset (may never arrive)
	OpResetResponse = 0x0A

	// OpReadRequest reads raw device memory at an address
	OpReadRequest = 0x0B

	// OpReadResponse carries the bytes read
	OpReadResponse = 0x0C

	// OpError is the device-side rejection response for any request
	OpError = 0xFF
)

// Packet framing sizes.
const (
	// HeaderSize is the fixed header size in bytes:
	// SYNC(1) + OP(1) + LENGTH(2) + HEADER_CHECKSUM(1)
	HeaderSize = 5

	// TrailerSize is the size of the whole-packet checksum byte
	TrailerSize = 1

	// MaxWriteData is the maximum firmware chunk size per write request
	MaxWriteData = 1024

	// WriteCRCSize is the size of the per-chunk CRC32 field
	WriteCRCSize = 4

	// MaxPacketSize is the largest packet on the wire: a full write request
	// (header + 1024-byte chunk + CRC32 + trailer), 1034 bytes
	MaxPacketSize = HeaderSize + MaxWriteData + WriteCRCSize + TrailerSize

	// MaxReadData is the largest memory read that still fits a response packet
	MaxReadData = MaxPacketSize - HeaderSize - TrailerSize
)

// Response payload sizes.
const (
	// NoteSize is the size of the free-form note in a version response
	NoteSize = 128

	// VersionResponseDataSize is the version response payload:
	// API_MAJOR(1) + API_MINOR(1) + BL_MAJOR(1) + BL_MINOR(1) + BL_BUILD(2) + NOTE(128)
	VersionResponseDataSize = 6 + NoteSize

	// UpdateStartRequestDataSize is the update-start request payload (image size)
	UpdateStartRequestDataSize = 4

	// UpdateStopRequestDataSize is the update-stop request payload (image CRC32)
	UpdateStopRequestDataSize = 4

	// UpdateStopResponseDataSize is the update-stop response payload (device CRC32)
	UpdateStopResponseDataSize = 4

	// ReadRequestDataSize is the read request payload (address + length)
	ReadRequestDataSize = 8

	// ErrorResponseDataSize is the error response payload (error code)
	ErrorResponseDataSize = 1
)

// Device error codes carried by an OpError response.
const (
	// DevErrUnsupportedOperation means the device did not recognize the opcode
	DevErrUnsupportedOperation = 0x00

	// DevErrIncorrectState means the request is invalid in the device's current
	// state, e.g. a write before an update-start
	DevErrIncorrectState = 0x01

	// DevErrWriteFailed means the flash hardware rejected the write
	DevErrWriteFailed = 0x02
)
