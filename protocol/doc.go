// Package protocol implements the binary packet format spoken by the
// embedded controller's bootloader over a datagram transport.
//
// # Packet Format
//
// Every message is a self-describing packet with a fixed 5-byte header and a
// 1-byte trailer checksum:
//
//	[SYNC][OP][LEN_H][LEN_L][HDR_CK][PAYLOAD...][TRAILER]
//
// Where:
//   - SYNC = 0xE7
//   - OP = one-byte opcode identifying the message type
//   - LEN = 16-bit count of payload+trailer bytes (big-endian)
//   - HDR_CK = 8-bit sum of SYNC, OP and both LEN bytes
//   - TRAILER = 8-bit sum of every preceding packet byte
//
// Multi-byte integers are big-endian. The two checksums are independent: the
// header checksum validates the header before the length field is trusted,
// the trailer protects the packet as a whole. The largest packet is 1034
// bytes, produced by a write request carrying a full 1024-byte chunk.
//
// # Command Builders
//
// Requests are built with the Build*Cmd functions:
//
//	pkt := protocol.BuildVersionCmd()
//	pkt := protocol.BuildUpdateStartCmd(imageSize)
//	pkt, err := protocol.BuildWriteCmd(chunk)
//	// ... etc
//
// BuildWriteCmd appends a CRC32 over the chunk data alone; this is separate
// from both the trailer checksum and the whole-image CRC32 that
// BuildUpdateStopCmd carries.
//
// # Response Parsers
//
// Use ValidatePacket to check framing and both checksums, or a typed Parse*
// function to additionally match the opcode and unpack the fields:
//
//	info, err := protocol.ParseVersionResponse(pkt)
//	deviceCRC, err := protocol.ParseUpdateStopResponse(pkt)
//	data, err := protocol.ParseReadAddressResponse(pkt)
//
// A response with opcode 0xFF is a device-side rejection; ParseErrorResponse
// extracts its error code, and DeviceError represents it as a Go error.
//
// Response builders and request parsers are also provided so that device
// simulators and tests can speak the device side of the protocol.
package protocol
