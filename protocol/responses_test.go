package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func testVersionInfo() *VersionInfo {
	info := &VersionInfo{
		APIMajor:        2,
		APIMinor:        1,
		BootloaderMajor: 1,
		BootloaderMinor: 4,
		BootloaderBuild: 1234,
	}
	copy(info.Note[:], "ec-bootloader build 1234")
	return info
}

func TestVersionResponseRoundTrip(t *testing.T) {
	pkt := BuildVersionResponse(testVersionInfo())
	checkFraming(t, pkt, OpVersionResponse)

	if len(pkt) != HeaderSize+VersionResponseDataSize+TrailerSize {
		t.Fatalf("packet size = %d, want %d", len(pkt), HeaderSize+VersionResponseDataSize+TrailerSize)
	}

	info, err := ParseVersionResponse(pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := testVersionInfo()
	if *info != *want {
		t.Errorf("ParseVersionResponse() = %+v, want %+v", info, want)
	}
	if got := info.NoteString(); got != "ec-bootloader build 1234" {
		t.Errorf("NoteString() = %q", got)
	}
}

func TestUpdateStopResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		crc  int32
	}{
		{name: "zero", crc: 0},
		{name: "positive", crc: 0x12345678},
		{name: "negative", crc: -559038737}, // 0xDEADBEEF as int32
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := BuildUpdateStopResponse(tt.crc)
			checkFraming(t, pkt, OpUpdateStopResponse)

			got, err := ParseUpdateStopResponse(pkt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.crc {
				t.Errorf("device CRC = %d, want %d", got, tt.crc)
			}
		})
	}
}

func TestReadAddressResponse(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x42}

	pkt, err := BuildReadAddressResponse(data, uint32(len(data)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkFraming(t, pkt, OpReadResponse)

	got, err := ParseReadAddressResponse(pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("data = % X, want % X", got, data)
	}
}

func TestReadAddressResponseLengthMismatch(t *testing.T) {
	data := make([]byte, 16)

	for _, want := range []uint32{15, 17, 0} {
		_, err := BuildReadAddressResponse(data, want)
		if err == nil {
			t.Fatalf("expected error for lengthToRead=%d with 16 data bytes", want)
		}
		var lm *LengthMismatchError
		if !errors.As(err, &lm) {
			t.Errorf("error = %T, want *LengthMismatchError", err)
		}
	}
}

func TestEmptyResponses(t *testing.T) {
	if err := ParseUpdateStartResponse(BuildUpdateStartResponse()); err != nil {
		t.Errorf("update start: %v", err)
	}
	if err := ParseWriteResponse(BuildWriteResponse()); err != nil {
		t.Errorf("write: %v", err)
	}
	if err := ParseResetResponse(BuildResetResponse()); err != nil {
		t.Errorf("reset: %v", err)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name string
		code byte
	}{
		{name: "unsupported operation", code: DevErrUnsupportedOperation},
		{name: "incorrect state", code: DevErrIncorrectState},
		{name: "write failed", code: DevErrWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := BuildErrorResponse(tt.code)
			checkFraming(t, pkt, OpError)

			code, err := ParseErrorResponse(pkt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if code != tt.code {
				t.Errorf("code = 0x%02X, want 0x%02X", code, tt.code)
			}
		})
	}
}

func TestOpcodeMismatch(t *testing.T) {
	// A valid write acknowledgement is not a version response.
	_, err := ParseVersionResponse(BuildWriteResponse())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var om *OpcodeMismatchError
	if !errors.As(err, &om) {
		t.Fatalf("error = %T, want *OpcodeMismatchError", err)
	}
	if om.Got != OpWriteResponse || om.Want != OpVersionResponse {
		t.Errorf("mismatch = (0x%02X, 0x%02X), want (0x%02X, 0x%02X)",
			om.Got, om.Want, OpWriteResponse, OpVersionResponse)
	}
}

func TestValidatePacketRejectsCorruption(t *testing.T) {
	pkt := BuildVersionResponse(testVersionInfo())

	if _, _, err := ValidatePacket(pkt); err != nil {
		t.Fatalf("pristine packet rejected: %v", err)
	}

	// Sum-based checksums change for any single flipped bit, so every
	// single-bit corruption anywhere in the packet must be caught by one of
	// the framing checks.
	for i := range pkt {
		for bit := 0; bit < 8; bit++ {
			corrupted := make([]byte, len(pkt))
			copy(corrupted, pkt)
			corrupted[i] ^= 1 << bit

			if _, _, err := ValidatePacket(corrupted); err == nil {
				t.Fatalf("flip of byte %d bit %d went undetected", i, bit)
			}
		}
	}
}

func TestValidatePacketTruncated(t *testing.T) {
	pkt := BuildUpdateStopResponse(7)

	for n := 0; n < len(pkt); n++ {
		if _, _, err := ValidatePacket(pkt[:n]); err == nil {
			t.Errorf("truncation to %d bytes went undetected", n)
		}
	}
}

func TestValidatePacketBadSync(t *testing.T) {
	pkt := BuildResetResponse()
	pkt[0] = 0x00

	if _, _, err := ValidatePacket(pkt); err == nil {
		t.Fatal("expected error for bad sync byte")
	}
}
