package opus

// Vorbis comment vector codec for the OpusTags packet (RFC 7845 §5.2):
//   Bytes 0-7:  "OpusTags" magic signature
//   4 bytes LE: vendor string length, then vendor string (UTF-8)
//   4 bytes LE: comment count
//   Per comment: 4 bytes LE length, then "KEY=VALUE" bytes
//
// Note the little-endian framing here versus big-endian in the picture
// block; both follow the external Vorbis/FLAC conventions.

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

const opusTagsMagic = "OpusTags"

// PictureKey is the reserved comment key whose values carry base64-encoded
// METADATA_BLOCK_PICTURE structures. Callers must not treat it as free-form
// text.
const PictureKey = "METADATA_BLOCK_PICTURE"

// Comment is a single KEY=VALUE entry. Keys compare case-insensitively on
// lookup but keep their stored case; duplicate keys are legal and order is
// preserved for round-trip fidelity.
type Comment struct {
	Key   string
	Value string
}

// parseCommentHeader decodes an OpusTags packet into its vendor string and
// ordered comment entries.
func parseCommentHeader(packet []byte) (vendor string, comments []Comment, err error) {
	if len(packet) < len(opusTagsMagic)+8 {
		return "", nil, fmt.Errorf("%w: packet too short (%d bytes)", ErrMalformedTag, len(packet))
	}
	if string(packet[:len(opusTagsMagic)]) != opusTagsMagic {
		return "", nil, fmt.Errorf("%w: missing OpusTags magic", ErrMalformedTag)
	}
	pos := len(opusTagsMagic)

	vendorBytes, pos, err := readLenPrefixed(packet, pos, "vendor string")
	if err != nil {
		return "", nil, err
	}
	if !utf8.Valid(vendorBytes) {
		return "", nil, fmt.Errorf("%w: vendor string", ErrInvalidUTF8)
	}
	vendor = string(vendorBytes)

	if pos+4 > len(packet) {
		return "", nil, fmt.Errorf("%w: truncated comment count", ErrMalformedTag)
	}
	count := binary.LittleEndian.Uint32(packet[pos : pos+4])
	pos += 4

	for i := uint32(0); i < count; i++ {
		var entry []byte
		entry, pos, err = readLenPrefixed(packet, pos, "comment entry")
		if err != nil {
			return "", nil, err
		}
		if !utf8.Valid(entry) {
			return "", nil, fmt.Errorf("%w: comment entry %d", ErrInvalidUTF8, i)
		}
		s := string(entry)
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			return "", nil, fmt.Errorf("%w: entry %q has no '=' separator", ErrMalformedTag, s)
		}
		comments = append(comments, Comment{Key: s[:eq], Value: s[eq+1:]})
	}
	return vendor, comments, nil
}

// readLenPrefixed reads a 32-bit little-endian length followed by that many
// bytes, returning the bytes and the new offset.
func readLenPrefixed(packet []byte, pos int, what string) ([]byte, int, error) {
	if pos+4 > len(packet) {
		return nil, 0, fmt.Errorf("%w: truncated %s length", ErrMalformedTag, what)
	}
	n := int(binary.LittleEndian.Uint32(packet[pos : pos+4]))
	pos += 4
	if n < 0 || pos+n > len(packet) {
		return nil, 0, fmt.Errorf("%w: %s runs past packet end", ErrMalformedTag, what)
	}
	return packet[pos : pos+n], pos + n, nil
}

// encodeCommentHeader is the inverse of parseCommentHeader. It round-trips
// any value the parser accepts, including empty values.
func encodeCommentHeader(vendor string, comments []Comment) []byte {
	size := len(opusTagsMagic) + 4 + len(vendor) + 4
	for _, c := range comments {
		size += 4 + len(c.Key) + 1 + len(c.Value)
	}

	out := make([]byte, 0, size)
	out = append(out, opusTagsMagic...)
	out = appendLenPrefixedLE(out, []byte(vendor))

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(comments)))
	out = append(out, lenBuf[:]...)

	for _, c := range comments {
		out = appendLenPrefixedLE(out, []byte(c.Key+"="+c.Value))
	}
	return out
}

func appendLenPrefixedLE(out, b []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	out = append(out, lenBuf[:]...)
	return append(out, b...)
}
