// Package ogg implements the Ogg container layer for Opus Tag Surgery:
// page parsing and CRC verification, logical-packet reassembly across page
// boundaries, and re-segmentation of packets into fresh pages when the tag
// packet changes size.
//
// The Ogg format (RFC 3533) frames a stream as pages. Each page carries a
// 27-byte header with the "OggS" capture pattern, a segment table, and a
// payload. Packets are laced into segments of up to 255 bytes: a segment
// value of 255 means the packet continues into the next segment (possibly
// on the next page), and any smaller value terminates it. A packet whose
// length is an exact multiple of 255 therefore needs a zero-length terminal
// segment.
//
// Ogg pages are protected by CRC-32 with polynomial 0x04C11DB7, unreflected
// and without initial or final XOR. This is not the IEEE CRC-32 provided by
// hash/crc32; the lookup table lives in crc.go.
//
// Audio packets are treated as opaque byte blobs throughout; this package
// never decodes Opus frames (RFC 7845 only matters for locating the
// OpusHead and OpusTags header packets).
package ogg
