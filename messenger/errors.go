package messenger

import "fmt"

// UnexpectedOpcodeError indicates a response whose opcode is neither the
// expected response type nor the error opcode. It usually means client and
// device have desynchronized, e.g. a stale response to an earlier request.
type UnexpectedOpcodeError struct {
	Got  byte
	Want byte
}

func (e *UnexpectedOpcodeError) Error() string {
	return fmt.Sprintf("unexpected response opcode 0x%02X, want 0x%02X", e.Got, e.Want)
}

// CRCMismatchError indicates an update-stop whose device-computed CRC32 does
// not match the one the caller supplied: the device received a different
// byte sequence than the one sent.
type CRCMismatchError struct {
	// Sent is the CRC32 the caller computed over the firmware image
	Sent uint32

	// Device is the CRC32 the device computed over the bytes it received
	Device int32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("image CRC mismatch: sent 0x%08X, device computed 0x%08X",
		e.Sent, uint32(e.Device))
}
