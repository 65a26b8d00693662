package wire

// CRC16 computes the CCITT checksum over data, the same variant common in
// serial MCU protocols.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		crc = (uint16(b)<<8 | crc>>8) ^ uint16(b)>>4 ^ uint16(b)<<3
	}
	return crc
}
