package protocol

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// buildPacket frames an opcode and payload into a complete packet:
// header, payload bytes in order, trailer checksum.
func buildPacket(opCode byte, data []byte) []byte {
	length := uint16(len(data) + TrailerSize)

	pkt := make([]byte, 0, HeaderSize+len(data)+TrailerSize)
	pkt = append(pkt, EncodeHeader(opCode, length)...)
	pkt = append(pkt, data...)
	pkt = append(pkt, PacketChecksum(pkt))
	return pkt
}

// BuildVersionCmd constructs a version request packet.
//
// Packet structure:
//
//	[SYNC][0x01][LEN][HDR_CK][TRAILER]
func BuildVersionCmd() []byte {
	return buildPacket(OpVersionRequest, nil)
}

// BuildUpdateStartCmd constructs an update-start request declaring the total
// firmware image size in bytes.
//
// Packet structure:
//
//	[SYNC][0x03][LEN][HDR_CK][IMAGE_SIZE(4)][TRAILER]
func BuildUpdateStartCmd(imageSize uint32) []byte {
	data := make([]byte, UpdateStartRequestDataSize)
	binary.BigEndian.PutUint32(data, imageSize)
	return buildPacket(OpUpdateStartRequest, data)
}

// BuildUpdateStopCmd constructs an update-stop request carrying the CRC32
// over the complete firmware image.
//
// Packet structure:
//
//	[SYNC][0x05][LEN][HDR_CK][CRC(4)][TRAILER]
func BuildUpdateStopCmd(crc uint32) []byte {
	data := make([]byte, UpdateStopRequestDataSize)
	binary.BigEndian.PutUint32(data, crc)
	return buildPacket(OpUpdateStopRequest, data)
}

// BuildWriteCmd constructs a write request for one firmware chunk.
// The chunk must be 1 to MaxWriteData bytes; a PayloadSizeError is returned
// before any packet is assembled otherwise.
//
// A CRC32 (IEEE) over the chunk data alone is appended after the data. This
// per-chunk CRC is distinct from the trailer checksum and from the
// whole-image CRC sent at update-stop.
//
// Packet structure:
//
//	[SYNC][0x07][LEN][HDR_CK][DATA(1..1024)][DATA_CRC(4)][TRAILER]
//
// A maximum-size chunk produces the protocol's largest packet, 1034 bytes.
func BuildWriteCmd(data []byte) ([]byte, error) {
	if len(data) < 1 || len(data) > MaxWriteData {
		return nil, &PayloadSizeError{Got: len(data)}
	}

	payload := make([]byte, 0, len(data)+WriteCRCSize)
	payload = append(payload, data...)

	crcBytes := make([]byte, WriteCRCSize)
	binary.BigEndian.PutUint32(crcBytes, crc32.ChecksumIEEE(data))
	payload = append(payload, crcBytes...)

	return buildPacket(OpWriteRequest, payload), nil
}

// BuildResetCmd constructs a reset request.
//
// Packet structure:
//
//	[SYNC][0x09][LEN][HDR_CK][TRAILER]
func BuildResetCmd() []byte {
	return buildPacket(OpResetRequest, nil)
}

// BuildReadAddressCmd constructs a read request for length bytes of raw
// device memory starting at address. The length must be 1 to MaxReadData so
// that the response still fits a packet.
//
// Packet structure:
//
//	[SYNC][0x0B][LEN][HDR_CK][ADDRESS(4)][LENGTH(4)][TRAILER]
func BuildReadAddressCmd(address, length uint32) ([]byte, error) {
	if length < 1 || length > MaxReadData {
		return nil, fmt.Errorf("read length must be 1 to %d bytes, got %d", MaxReadData, length)
	}

	data := make([]byte, ReadRequestDataSize)
	binary.BigEndian.PutUint32(data[0:4], address)
	binary.BigEndian.PutUint32(data[4:8], length)
	return buildPacket(OpReadRequest, data), nil
}

// ParseUpdateStartCmd parses an update-start request packet and returns the
// declared image size. Used by device-side implementations and simulators.
func ParseUpdateStartCmd(pkt []byte) (uint32, error) {
	data, err := expectPacket(pkt, OpUpdateStartRequest, UpdateStartRequestDataSize)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

// ParseUpdateStopCmd parses an update-stop request packet and returns the
// caller-supplied image CRC32.
func ParseUpdateStopCmd(pkt []byte) (uint32, error) {
	data, err := expectPacket(pkt, OpUpdateStopRequest, UpdateStopRequestDataSize)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

// ParseWriteCmd parses a write request packet and returns the chunk data and
// the per-chunk CRC32 that accompanied it. The CRC is returned unchecked so
// the device side can decide how to report a mismatch.
func ParseWriteCmd(pkt []byte) (data []byte, dataCRC uint32, err error) {
	payload, err := expectPacket(pkt, OpWriteRequest, -1)
	if err != nil {
		return nil, 0, err
	}

	if len(payload) < 1+WriteCRCSize || len(payload) > MaxWriteData+WriteCRCSize {
		return nil, 0, &PayloadSizeError{Got: len(payload) - WriteCRCSize}
	}

	split := len(payload) - WriteCRCSize
	return payload[:split], binary.BigEndian.Uint32(payload[split:]), nil
}

// ParseReadAddressCmd parses a read request packet and returns the requested
// address and length.
func ParseReadAddressCmd(pkt []byte) (address, length uint32, err error) {
	data, err := expectPacket(pkt, OpReadRequest, ReadRequestDataSize)
	if err != nil {
		return 0, 0, err
	}
	return binary.BigEndian.Uint32(data[0:4]), binary.BigEndian.Uint32(data[4:8]), nil
}
