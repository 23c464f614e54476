package protocol

import "encoding/binary"

// Header is the decoded fixed packet header shared by every message.
type Header struct {
	// OpCode identifies the message type
	OpCode byte

	// Length counts the payload and trailer bytes that follow the header
	Length uint16

	// Checksum is the header checksum byte as received; DecodeHeader does
	// not verify it
	Checksum byte
}

// EncodeHeader builds the fixed 5-byte header for the given opcode and length.
//
// Header structure:
//
//	[SYNC][OP][LEN_H][LEN_L][HEADER_CHECKSUM]
//
// Length is big-endian and counts payload+trailer bytes.
func EncodeHeader(opCode byte, length uint16) []byte {
	hdr := make([]byte, HeaderSize)
	hdr[0] = SyncByte
	hdr[1] = opCode
	binary.BigEndian.PutUint16(hdr[2:4], length)
	hdr[4] = HeaderChecksum(opCode, length)
	return hdr
}

// DecodeHeader extracts the header fields from the start of raw.
// Fails if fewer than HeaderSize bytes are available.
//
// The checksum field is returned as-is; verification is left to
// ValidatePacket, which knows the full packet.
func DecodeHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderSize {
		return Header{}, &MalformedPacketError{
			Reason: "short header",
			Got:    len(raw),
			Want:   HeaderSize,
		}
	}

	return Header{
		OpCode:   raw[1],
		Length:   binary.BigEndian.Uint16(raw[2:4]),
		Checksum: raw[4],
	}, nil
}
