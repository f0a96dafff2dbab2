package protocol

// CRC16 returns the CCITT CRC used to check diagnostic lines: the avr-libc
// crc_ccitt_update variant (reflected 0x8408, init 0xFFFF, no final xor),
// the same one Klipper frames with.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crc16Update(crc, b)
	}
	return crc
}

// CRC16String is CRC16 over the bytes of s without copying.
func CRC16String(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc = crc16Update(crc, s[i])
	}
	return crc
}

func crc16Update(crc uint16, b byte) uint16 {
	b ^= uint8(crc & 0xFF)
	b ^= b << 4
	b16 := uint16(b)
	return (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
}
