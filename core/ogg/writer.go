package ogg

// WritePages re-segments packets into a fresh sequence of Ogg pages for
// the given stream serial, assigning strictly increasing sequence numbers
// from firstSeq. Packets keep their original page-boundary alignment where
// the EndsPage hint says the source did (so OpusHead stays alone on the
// BOS page and OpusTags closes its page), pages opening mid-packet get the
// continuation flag, and the final page carries EOS when the source
// trailing page did. Checksums are computed last, by Page.Encode.
//
// Granule positions: a page is stamped with the granule of the last packet
// completed on it; pages flushed mid-packet carry the last known granule
// position forward.
func WritePages(packets []Packet, serial, firstSeq uint32) []*Page {
	var (
		pages     []*Page
		segments  []byte
		payload   []byte
		continued bool
		granule   uint64
		seq       = firstSeq
		bos       = true
	)

	flush := func(eos bool) {
		flags := byte(0)
		if bos {
			flags |= FlagBOS
			bos = false
		}
		if continued {
			flags |= FlagContinuation
		}
		if eos {
			flags |= FlagEOS
		}
		pages = append(pages, &Page{
			HeaderType:   flags,
			GranulePos:   granule,
			SerialNumber: serial,
			PageSequence: seq,
			Segments:     segments,
			Payload:      payload,
		})
		seq++
		segments, payload = nil, nil
		continued = false
	}

	for _, pkt := range packets {
		lacing := lacingValues(len(pkt.Data))
		off := 0
		for li, lv := range lacing {
			if len(segments) == maxSegments || len(payload)+int(lv) > maxPagePayload {
				midPacket := li > 0
				flush(false)
				continued = midPacket
			}
			segments = append(segments, lv)
			payload = append(payload, pkt.Data[off:off+int(lv)]...)
			off += int(lv)
		}
		granule = pkt.Granule
		if pkt.EndsPage || pkt.EOS {
			flush(pkt.EOS)
		}
	}
	if len(segments) > 0 {
		flush(false)
	}
	return pages
}

// lacingValues splits a packet length into segment-table entries: full
// 255-byte segments plus a terminal segment of 0-254 bytes. An exact
// multiple of 255 gets a zero-length terminal segment so decoders can tell
// "ends here" from "continues".
func lacingValues(packetLen int) []byte {
	full := packetLen / 255
	vals := make([]byte, full, full+1)
	for i := range vals {
		vals[i] = 255
	}
	return append(vals, byte(packetLen%255))
}
