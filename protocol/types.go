package protocol

import "bytes"

// VersionInfo contains the device identification returned by a version
// request.
type VersionInfo struct {
	// APIMajor and APIMinor identify the protocol API revision
	APIMajor byte
	APIMinor byte

	// BootloaderMajor, BootloaderMinor and BootloaderBuild identify the
	// bootloader firmware on the device
	BootloaderMajor byte
	BootloaderMinor byte
	BootloaderBuild uint16

	// Note is the raw 128-byte free-form note, typically a NUL-padded
	// build description
	Note [NoteSize]byte
}

// NoteString returns the note with trailing NUL padding stripped.
func (v *VersionInfo) NoteString() string {
	return string(bytes.TrimRight(v.Note[:], "\x00"))
}
