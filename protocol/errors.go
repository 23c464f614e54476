package protocol

import (
	"errors"
	"fmt"
)

// DeviceError represents a rejection reported by the device via the error
// opcode (0xFF). It is distinct from transport and framing failures: the
// request reached the device and the device refused it.
type DeviceError struct {
	// Code is the device error code from the error response payload
	Code byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error: %s (0x%02X)", deviceErrorName(e.Code), e.Code)
}

// IsDeviceError reports whether err is, or wraps, a DeviceError.
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}

// deviceErrorName returns a human-readable name for a device error code.
func deviceErrorName(code byte) string {
	switch code {
	case DevErrUnsupportedOperation:
		return "unsupported operation"
	case DevErrIncorrectState:
		return "incorrect state"
	case DevErrWriteFailed:
		return "write failed"
	default:
		return "unknown error code"
	}
}

// MalformedPacketError indicates a packet that cannot be decoded at all:
// too few bytes, a bad sync byte, or an inconsistent length field.
type MalformedPacketError struct {
	Reason string
	Got    int
	Want   int
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("malformed packet: %s: got %d bytes, want %d", e.Reason, e.Got, e.Want)
}

// OpcodeMismatchError indicates a structurally valid packet whose opcode is
// not the one the decoder was asked for.
type OpcodeMismatchError struct {
	Got  byte
	Want byte
}

func (e *OpcodeMismatchError) Error() string {
	return fmt.Sprintf("opcode mismatch: got 0x%02X, want 0x%02X", e.Got, e.Want)
}

// ChecksumError indicates a header or trailer checksum that does not match
// the bytes it covers.
type ChecksumError struct {
	// Kind is "header" or "trailer"
	Kind string
	Got  byte
	Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s checksum mismatch: got 0x%02X, want 0x%02X", e.Kind, e.Got, e.Want)
}

// PayloadSizeError indicates a write chunk outside the 1..MaxWriteData range.
// Raised during command assembly, before any network activity.
type PayloadSizeError struct {
	Got int
}

func (e *PayloadSizeError) Error() string {
	return fmt.Sprintf("write payload must be 1 to %d bytes, got %d", MaxWriteData, e.Got)
}

// LengthMismatchError indicates read-response data whose size differs from
// the length the request asked for.
type LengthMismatchError struct {
	Got  int
	Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("read data length mismatch: got %d bytes, want %d", e.Got, e.Want)
}
