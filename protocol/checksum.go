package protocol

// HeaderChecksum computes the 8-bit header checksum: the truncated sum of the
// sync byte, the opcode, and both bytes of the length field.
//
// The header checksum lets a receiver validate the header in isolation,
// before the length field is trusted to size the rest of the packet.
func HeaderChecksum(opCode byte, length uint16) byte {
	return SyncByte + opCode + byte(length) + byte(length>>8)
}

// PacketChecksum computes the 8-bit trailer checksum: the unsigned sum of all
// bytes modulo 256. It is calculated over every packet byte preceding the
// trailer itself, header included, and is independent of the header checksum.
func PacketChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
