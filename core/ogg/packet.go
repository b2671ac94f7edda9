package ogg

import (
	"bytes"
	"fmt"
	"log/slog"
)

// Opus header packet magics (RFC 7845). The Opus logical stream is
// identified by these structurally, not by page position, so multiplexed
// files with other codecs alongside still resolve correctly.
var (
	opusHeadMagic = []byte("OpusHead")
	opusTagsMagic = []byte("OpusTags")
)

// Packet is one logical packet together with the repositioning hints
// recovered from the original pagination. Audio packets are opaque.
type Packet struct {
	// Data is the packet's raw bytes.
	Data []byte

	// Granule is the granule position of the page the packet ended on.
	Granule uint64

	// EndsPage reports whether the packet's final segment was also the
	// last segment of its page, i.e. the packet boundary coincided with
	// a page boundary in the source.
	EndsPage bool

	// EOS reports whether the packet completed the logical stream.
	EOS bool
}

// PacketStream is the result of reassembling one Opus logical stream.
type PacketStream struct {
	// Serial is the stream serial number, preserved across a rewrite.
	Serial uint32

	// FirstSequence is the sequence number of the stream's first page.
	FirstSequence uint32

	// Packets holds the logical packets in order: packet 0 is OpusHead,
	// packet 1 is OpusTags, packets 2+ are audio data.
	Packets []Packet
}

// Reassemble merges page payload segments into logical packets following
// the lacing rules: a 255-byte segment always continues the packet, any
// shorter segment terminates it. Pages belonging to other logical streams
// are skipped. Returns ErrNotOpus when no stream carries the Opus header
// packets.
func Reassemble(pages []*Page) (*PacketStream, error) {
	serial, firstSeq, ok := findOpusStream(pages)
	if !ok {
		return nil, fmt.Errorf("%w: no OpusHead bitstream found", ErrNotOpus)
	}

	ps := &PacketStream{Serial: serial, FirstSequence: firstSeq}

	// Fold over the pages carrying the in-progress packet accumulator.
	var pending []byte
	open := false
	sawEOS := false

	for _, page := range pages {
		if page.SerialNumber != serial {
			continue
		}
		if page.IsContinuation() != open {
			// Some encoders set this flag loosely; tolerate it so
			// real-world files keep loading.
			slog.Warn("ogg: continuation flag disagrees with packet state",
				"page", page.PageSequence, "flag", page.IsContinuation())
		}

		offset := 0
		for i, seg := range page.Segments {
			pending = append(pending, page.Payload[offset:offset+int(seg)]...)
			offset += int(seg)
			if seg == 255 {
				open = true
				continue
			}
			ps.Packets = append(ps.Packets, Packet{
				Data:     pending,
				Granule:  page.GranulePos,
				EndsPage: i == len(page.Segments)-1,
			})
			pending = nil
			open = false
		}
		if page.IsEOS() {
			sawEOS = true
		}
	}

	if open {
		slog.Warn("ogg: stream ends mid-packet, dropping trailing partial packet",
			"bytes", len(pending))
	}

	if len(ps.Packets) < 2 || !bytes.HasPrefix(ps.Packets[1].Data, opusTagsMagic) {
		return nil, fmt.Errorf("%w: no OpusTags packet found", ErrNotOpus)
	}
	if sawEOS {
		ps.Packets[len(ps.Packets)-1].EOS = true
	}
	return ps, nil
}

// findOpusStream locates the logical bitstream whose BOS page opens with
// an OpusHead packet.
func findOpusStream(pages []*Page) (serial, firstSeq uint32, ok bool) {
	for _, page := range pages {
		if page.IsBOS() && bytes.HasPrefix(page.Payload, opusHeadMagic) {
			return page.SerialNumber, page.PageSequence, true
		}
	}
	return 0, 0, false
}
