package ogg

import (
	"encoding/binary"
	"fmt"
)

// Page header flags.
const (
	// FlagContinuation marks a page that opens in the middle of a packet
	// begun on the previous page.
	FlagContinuation = 0x01

	// FlagBOS marks the first page of a logical bitstream.
	FlagBOS = 0x02

	// FlagEOS marks the last page of a logical bitstream.
	FlagEOS = 0x04
)

const (
	// pageHeaderSize is the fixed header before the segment table.
	pageHeaderSize = 27

	// capturePattern opens every Ogg page.
	capturePattern = "OggS"

	// maxSegments is the segment-table capacity of one page.
	maxSegments = 255

	// maxPagePayload is the payload capacity of one page (255 segments
	// of 255 bytes).
	maxPagePayload = 255 * 255
)

// Page is a single Ogg page: parsed header fields, segment table and the
// concatenated payload bytes.
type Page struct {
	Version      byte   // stream structure version, always 0
	HeaderType   byte   // FlagContinuation | FlagBOS | FlagEOS
	GranulePos   uint64 // decode position hint, opaque here
	SerialNumber uint32 // identifies the logical bitstream
	PageSequence uint32 // strictly increasing per stream
	Segments     []byte // lacing values, each 0-255
	Payload      []byte // sum of lacing values bytes
}

// IsBOS reports whether this page begins a logical bitstream.
func (p *Page) IsBOS() bool { return p.HeaderType&FlagBOS != 0 }

// IsEOS reports whether this page ends a logical bitstream.
func (p *Page) IsEOS() bool { return p.HeaderType&FlagEOS != 0 }

// IsContinuation reports whether this page opens mid-packet.
func (p *Page) IsContinuation() bool { return p.HeaderType&FlagContinuation != 0 }

// Encode serializes the page, computing the CRC over the whole page with
// the checksum field zeroed.
func (p *Page) Encode() []byte {
	headerSize := pageHeaderSize + len(p.Segments)
	data := make([]byte, headerSize+len(p.Payload))

	copy(data[0:4], capturePattern)
	data[4] = p.Version
	data[5] = p.HeaderType
	binary.LittleEndian.PutUint64(data[6:14], p.GranulePos)
	binary.LittleEndian.PutUint32(data[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(data[18:22], p.PageSequence)
	// bytes 22-25 stay zero until the CRC below
	data[26] = byte(len(p.Segments))
	copy(data[27:], p.Segments)
	copy(data[headerSize:], p.Payload)

	binary.LittleEndian.PutUint32(data[22:26], Checksum(data))
	return data
}

// ParsePage parses one page from the start of data, verifying its CRC.
// It returns the page and the number of bytes consumed.
func ParsePage(data []byte) (*Page, int, error) {
	if len(data) < pageHeaderSize {
		return nil, 0, fmt.Errorf("%w: truncated page header (%d bytes)", ErrMalformedContainer, len(data))
	}
	if string(data[0:4]) != capturePattern {
		return nil, 0, fmt.Errorf("%w: missing capture pattern", ErrMalformedContainer)
	}
	if data[4] != 0 {
		return nil, 0, fmt.Errorf("%w: unsupported stream structure version %d", ErrMalformedContainer, data[4])
	}

	p := &Page{
		Version:      data[4],
		HeaderType:   data[5],
		GranulePos:   binary.LittleEndian.Uint64(data[6:14]),
		SerialNumber: binary.LittleEndian.Uint32(data[14:18]),
		PageSequence: binary.LittleEndian.Uint32(data[18:22]),
	}
	storedCRC := binary.LittleEndian.Uint32(data[22:26])

	numSegments := int(data[26])
	headerSize := pageHeaderSize + numSegments
	if len(data) < headerSize {
		return nil, 0, fmt.Errorf("%w: truncated segment table", ErrMalformedContainer)
	}
	p.Segments = make([]byte, numSegments)
	copy(p.Segments, data[27:headerSize])

	payloadSize := 0
	for _, seg := range p.Segments {
		payloadSize += int(seg)
	}
	totalSize := headerSize + payloadSize
	if len(data) < totalSize {
		return nil, 0, fmt.Errorf("%w: payload runs past end of input", ErrMalformedContainer)
	}
	p.Payload = make([]byte, payloadSize)
	copy(p.Payload, data[headerSize:totalSize])

	scratch := make([]byte, totalSize)
	copy(scratch, data[:totalSize])
	scratch[22], scratch[23], scratch[24], scratch[25] = 0, 0, 0, 0
	if Checksum(scratch) != storedCRC {
		return nil, 0, fmt.Errorf("%w (page %d)", ErrBadCRC, p.PageSequence)
	}

	return p, totalSize, nil
}
