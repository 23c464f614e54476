package protocol

import (
	"encoding/binary"
	"fmt"
)

// ValidatePacket checks the complete framing of a packet and returns its
// header and payload (the bytes between header and trailer).
//
// Checks performed, in order: minimum and maximum size, sync byte, header checksum,
// length-field consistency against the actual packet size, trailer checksum.
// The opcode is not interpreted; callers match it against the type they
// expect.
func ValidatePacket(pkt []byte) (Header, []byte, error) {
	if len(pkt) < HeaderSize+TrailerSize {
		return Header{}, nil, &MalformedPacketError{
			Reason: "short packet",
			Got:    len(pkt),
			Want:   HeaderSize + TrailerSize,
		}
	}

	if len(pkt) > MaxPacketSize {
		return Header{}, nil, &MalformedPacketError{
			Reason: "oversized packet",
			Got:    len(pkt),
			Want:   MaxPacketSize,
		}
	}

	hdr, err := DecodeHeader(pkt)
	if err != nil {
		return Header{}, nil, err
	}

	if pkt[0] != SyncByte {
		return Header{}, nil, fmt.Errorf("bad sync byte: got 0x%02X, want 0x%02X", pkt[0], SyncByte)
	}

	if want := HeaderChecksum(hdr.OpCode, hdr.Length); hdr.Checksum != want {
		return Header{}, nil, &ChecksumError{Kind: "header", Got: hdr.Checksum, Want: want}
	}

	if expected := HeaderSize + int(hdr.Length); len(pkt) != expected {
		return Header{}, nil, &MalformedPacketError{
			Reason: "length field mismatch",
			Got:    len(pkt),
			Want:   expected,
		}
	}

	trailer := pkt[len(pkt)-1]
	if want := PacketChecksum(pkt[:len(pkt)-1]); trailer != want {
		return Header{}, nil, &ChecksumError{Kind: "trailer", Got: trailer, Want: want}
	}

	return hdr, pkt[HeaderSize : len(pkt)-TrailerSize], nil
}

// expectPacket validates pkt, confirms its opcode, and checks the payload
// size. A wantLen of -1 skips the size check for variable-length payloads.
func expectPacket(pkt []byte, wantOp byte, wantLen int) ([]byte, error) {
	hdr, data, err := ValidatePacket(pkt)
	if err != nil {
		return nil, err
	}

	if hdr.OpCode != wantOp {
		return nil, &OpcodeMismatchError{Got: hdr.OpCode, Want: wantOp}
	}

	if wantLen >= 0 && len(data) != wantLen {
		return nil, &MalformedPacketError{Reason: "payload size", Got: len(data), Want: wantLen}
	}

	return data, nil
}

// BuildVersionResponse constructs a version response packet.
//
// Packet structure:
//
//	[SYNC][0x02][LEN][HDR_CK][API_MAJ][API_MIN][BL_MAJ][BL_MIN][BL_BUILD(2)][NOTE(128)][TRAILER]
func BuildVersionResponse(info *VersionInfo) []byte {
	data := make([]byte, 0, VersionResponseDataSize)
	data = append(data, info.APIMajor, info.APIMinor)
	data = append(data, info.BootloaderMajor, info.BootloaderMinor)

	build := make([]byte, 2)
	binary.BigEndian.PutUint16(build, info.BootloaderBuild)
	data = append(data, build...)
	data = append(data, info.Note[:]...)

	return buildPacket(OpVersionResponse, data)
}

// BuildUpdateStartResponse constructs an empty update-start acknowledgement.
func BuildUpdateStartResponse() []byte {
	return buildPacket(OpUpdateStartResponse, nil)
}

// BuildUpdateStopResponse constructs an update-stop response carrying the
// CRC32 the device computed over all received firmware bytes. The field is a
// signed 32-bit value on the wire.
func BuildUpdateStopResponse(deviceCRC int32) []byte {
	data := make([]byte, UpdateStopResponseDataSize)
	binary.BigEndian.PutUint32(data, uint32(deviceCRC))
	return buildPacket(OpUpdateStopResponse, data)
}

// BuildWriteResponse constructs an empty write acknowledgement.
func BuildWriteResponse() []byte {
	return buildPacket(OpWriteResponse, nil)
}

// BuildResetResponse constructs an empty reset acknowledgement.
func BuildResetResponse() []byte {
	return buildPacket(OpResetResponse, nil)
}

// BuildReadAddressResponse constructs a read response carrying the bytes
// read. The data size must equal the length the request asked for
// (LengthMismatchError otherwise) and must fit the maximum packet size.
//
// The response embeds no explicit length field; decoders derive the data
// size from the header's length field.
func BuildReadAddressResponse(data []byte, lengthToRead uint32) ([]byte, error) {
	if uint32(len(data)) != lengthToRead {
		return nil, &LengthMismatchError{Got: len(data), Want: int(lengthToRead)}
	}
	if len(data) > MaxReadData {
		return nil, fmt.Errorf("read data of %d bytes exceeds maximum of %d", len(data), MaxReadData)
	}
	return buildPacket(OpReadResponse, data), nil
}

// BuildErrorResponse constructs an error response with the given device
// error code.
//
// Packet structure:
//
//	[SYNC][0xFF][LEN][HDR_CK][ERROR_CODE][TRAILER]
func BuildErrorResponse(code byte) []byte {
	return buildPacket(OpError, []byte{code})
}

// ParseVersionResponse parses a version response packet.
func ParseVersionResponse(pkt []byte) (*VersionInfo, error) {
	data, err := expectPacket(pkt, OpVersionResponse, VersionResponseDataSize)
	if err != nil {
		return nil, err
	}

	info := &VersionInfo{
		APIMajor:        data[0],
		APIMinor:        data[1],
		BootloaderMajor: data[2],
		BootloaderMinor: data[3],
		BootloaderBuild: binary.BigEndian.Uint16(data[4:6]),
	}
	copy(info.Note[:], data[6:])
	return info, nil
}

// ParseUpdateStartResponse parses an update-start acknowledgement.
func ParseUpdateStartResponse(pkt []byte) error {
	_, err := expectPacket(pkt, OpUpdateStartResponse, 0)
	return err
}

// ParseUpdateStopResponse parses an update-stop response and returns the
// device-computed CRC32.
func ParseUpdateStopResponse(pkt []byte) (int32, error) {
	data, err := expectPacket(pkt, OpUpdateStopResponse, UpdateStopResponseDataSize)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(data)), nil
}

// ParseWriteResponse parses a write acknowledgement.
func ParseWriteResponse(pkt []byte) error {
	_, err := expectPacket(pkt, OpWriteResponse, 0)
	return err
}

// ParseResetResponse parses a reset acknowledgement.
func ParseResetResponse(pkt []byte) error {
	_, err := expectPacket(pkt, OpResetResponse, 0)
	return err
}

// ParseReadAddressResponse parses a read response and returns the data. The
// data size is derived from the header length field minus the trailer byte.
func ParseReadAddressResponse(pkt []byte) ([]byte, error) {
	data, err := expectPacket(pkt, OpReadResponse, -1)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ParseErrorResponse parses an error response and returns its device error
// code.
func ParseErrorResponse(pkt []byte) (byte, error) {
	data, err := expectPacket(pkt, OpError, ErrorResponseDataSize)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}
