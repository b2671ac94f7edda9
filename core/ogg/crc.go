package ogg

// Ogg CRC-32: polynomial 0x04C11DB7, unreflected, no initial or final XOR.
// The standard library hash/crc32 implements reflected variants only and
// cannot be used here; a single-bit mismatch makes decoders drop the page.

var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// Checksum computes the Ogg CRC-32 of data. The table is built once at
// init and never mutated, so concurrent callers are safe.
func Checksum(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
