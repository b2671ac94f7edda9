package ogg

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedContainer indicates the byte stream is not a valid Ogg
	// container: missing "OggS" capture pattern, truncated page header,
	// or declared lengths running past end of input.
	ErrMalformedContainer = errors.New("ogg: malformed container")

	// ErrBadCRC indicates a page's stored checksum does not match the
	// value recomputed over the page with the checksum field zeroed.
	// It wraps ErrMalformedContainer.
	ErrBadCRC = fmt.Errorf("%w: page CRC mismatch", ErrMalformedContainer)

	// ErrNotOpus indicates the container parsed but no logical stream
	// carried the OpusHead/OpusTags header packets.
	ErrNotOpus = errors.New("ogg: not an Opus stream")
)
