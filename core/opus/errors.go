package opus

import "errors"

var (
	// ErrMalformedTag indicates the OpusTags comment vector violated its
	// framing: a length field past the packet end, a missing OpusTags
	// magic, or an entry without a '=' separator.
	ErrMalformedTag = errors.New("opus: malformed comment header")

	// ErrMalformedPicture indicates a METADATA_BLOCK_PICTURE entry
	// violated its framing or its base64 envelope failed to decode.
	ErrMalformedPicture = errors.New("opus: malformed picture block")

	// ErrInvalidUTF8 indicates bytes that the format requires to be
	// UTF-8 were not.
	ErrInvalidUTF8 = errors.New("opus: invalid UTF-8")

	// ErrMultiplexed indicates the container interleaves other logical
	// bitstreams alongside the Opus one. Such files load fine but cannot
	// be rewritten without dropping the sibling streams, so Save refuses
	// them.
	ErrMultiplexed = errors.New("opus: multiplexed container cannot be rewritten")
)
