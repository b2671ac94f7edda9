package ogg

import "fmt"

// ReadPages parses data as an ordered sequence of Ogg pages, verifying
// each page's checksum. The whole input must consist of pages; any gap or
// truncation is reported as ErrMalformedContainer. The parse is pure: it
// never mutates data and shares no state between calls.
func ReadPages(data []byte) ([]*Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedContainer)
	}

	var pages []*Page
	offset := 0
	for offset < len(data) {
		page, n, err := ParsePage(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", offset, err)
		}
		pages = append(pages, page)
		offset += n
	}
	return pages, nil
}

// EncodePages flattens pages back into a contiguous byte stream,
// recomputing every page's checksum via Encode.
func EncodePages(pages []*Page) []byte {
	size := 0
	for _, p := range pages {
		size += pageHeaderSize + len(p.Segments) + len(p.Payload)
	}
	out := make([]byte, 0, size)
	for _, p := range pages {
		out = append(out, p.Encode()...)
	}
	return out
}
