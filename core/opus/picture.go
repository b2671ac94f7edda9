package opus

// METADATA_BLOCK_PICTURE codec. Cover art travels inside a comment entry
// under the reserved PictureKey: the FLAC picture block (all fields
// big-endian, per https://xiph.org/flac/format.html#metadata_block_picture)
// serialized and then base64-encoded with the standard padded alphabet.

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/ankit-chaubey/opus-tag-surgery/core"
)

// PictureType classifies a picture per the APIC/FLAC convention.
type PictureType uint32

const (
	PictureOther PictureType = iota
	PictureFileIcon
	PictureOtherIcon
	PictureCoverFront
	PictureCoverBack
	PictureLeafletPage
	PictureMedia
	PictureLeadArtist
	PictureArtist
	PictureConductor
	PictureBandOrchestra
	PictureComposer
	PictureLyricist
	PictureRecordingLocation
	PictureDuringRecording
	PictureDuringPerformance
	PictureMovieCapture
	PictureBrightColouredFish
	PictureIllustration
	PictureBandLogo
	PicturePublisherLogo

	maxPictureType = PicturePublisherLogo
)

var pictureTypeNames = [...]string{
	"Other",
	"File icon",
	"Other file icon",
	"Cover (front)",
	"Cover (back)",
	"Leaflet page",
	"Media",
	"Lead artist",
	"Artist",
	"Conductor",
	"Band/Orchestra",
	"Composer",
	"Lyricist",
	"Recording location",
	"During recording",
	"During performance",
	"Movie/video screen capture",
	"A bright coloured fish",
	"Illustration",
	"Band/artist logotype",
	"Publisher/Studio logotype",
}

func (t PictureType) String() string {
	if t > maxPictureType {
		return fmt.Sprintf("Unknown (%d)", uint32(t))
	}
	return pictureTypeNames[t]
}

// Picture is one embedded picture. Width, Height, Depth and NumColors are
// advisory per the format and never validated against the image bytes.
type Picture struct {
	Type        PictureType
	MIME        string // e.g. "image/jpeg"
	Description string // UTF-8
	Width       uint32
	Height      uint32
	Depth       uint32 // color depth in bits per pixel
	NumColors   uint32 // indexed-color count, 0 for non-indexed
	Data        []byte // raw image bytes, opaque
}

// ParsePictureBlock decodes the binary (pre-base64) picture structure.
func ParsePictureBlock(data []byte) (*Picture, error) {
	r := pictureReader{data: data}

	rawType := r.uint32("picture type")
	mime := r.bytes("MIME type")
	desc := r.bytes("description")
	width := r.uint32("width")
	height := r.uint32("height")
	depth := r.uint32("color depth")
	colors := r.uint32("indexed-color count")
	img := r.bytes("picture data")
	if r.err != nil {
		return nil, r.err
	}
	if rawType > uint32(maxPictureType) {
		return nil, fmt.Errorf("%w: invalid picture type %d", ErrMalformedPicture, rawType)
	}
	if !utf8.Valid(desc) {
		return nil, fmt.Errorf("%w: picture description", ErrInvalidUTF8)
	}

	return &Picture{
		Type:        PictureType(rawType),
		MIME:        string(mime),
		Description: string(desc),
		Width:       width,
		Height:      height,
		Depth:       depth,
		NumColors:   colors,
		Data:        img,
	}, nil
}

// pictureReader walks the big-endian picture block, latching the first
// truncation error.
type pictureReader struct {
	data []byte
	pos  int
	err  error
}

func (r *pictureReader) uint32(what string) uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.data) {
		r.err = fmt.Errorf("%w: truncated %s", ErrMalformedPicture, what)
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *pictureReader) bytes(what string) []byte {
	n := int(r.uint32(what + " length"))
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("%w: %s runs past block end", ErrMalformedPicture, what)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// Encode serializes the picture block, big-endian throughout.
func (p *Picture) Encode() []byte {
	size := 4 + 4 + len(p.MIME) + 4 + len(p.Description) + 16 + 4 + len(p.Data)
	out := make([]byte, 0, size)

	var buf [4]byte
	be := func(v uint32) {
		binary.BigEndian.PutUint32(buf[:], v)
		out = append(out, buf[:]...)
	}

	be(uint32(p.Type))
	be(uint32(len(p.MIME)))
	out = append(out, p.MIME...)
	be(uint32(len(p.Description)))
	out = append(out, p.Description...)
	be(p.Width)
	be(p.Height)
	be(p.Depth)
	be(p.NumColors)
	be(uint32(len(p.Data)))
	out = append(out, p.Data...)
	return out
}

// EncodeBase64 produces the comment-entry value string for this picture.
func (p *Picture) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(p.Encode())
}

// ParsePictureBase64 decodes a METADATA_BLOCK_PICTURE comment value.
func ParsePictureBase64(s string) (*Picture, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrMalformedPicture, err)
	}
	return ParsePictureBlock(raw)
}

// ReadPictureFile loads an image file as a Picture. When mimeType is empty
// the MIME type is sniffed from the file's magic bytes; the advisory
// width/height fields are filled from the image headers where the format
// is recognized (PNG IHDR, JPEG EXIF or SOF, GIF screen descriptor).
func ReadPictureFile(path string, picType PictureType, mimeType string) (*Picture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = core.DetectImageMIME(data)
		if mimeType == "" {
			return nil, fmt.Errorf("%w: could not sniff MIME type of %s", ErrMalformedPicture, path)
		}
	}
	p := &Picture{Type: picType, MIME: mimeType, Data: data}
	p.Width, p.Height = sniffImageSize(mimeType, data)
	return p, nil
}

func sniffImageSize(mimeType string, data []byte) (w, h uint32) {
	switch mimeType {
	case "image/png":
		// 8-byte signature, 4-byte length, "IHDR", then width and height.
		if len(data) >= 24 && string(data[12:16]) == "IHDR" {
			return binary.BigEndian.Uint32(data[16:20]), binary.BigEndian.Uint32(data[20:24])
		}
	case "image/gif":
		if len(data) >= 10 {
			return uint32(binary.LittleEndian.Uint16(data[6:8])), uint32(binary.LittleEndian.Uint16(data[8:10]))
		}
	case "image/jpeg":
		if w, h, ok := jpegExifSize(data); ok {
			return w, h
		}
		return jpegSOFSize(data)
	}
	return 0, 0
}

// jpegExifSize pulls PixelXDimension/PixelYDimension from the EXIF block.
func jpegExifSize(data []byte) (w, h uint32, ok bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	xt, err := x.Get(exif.PixelXDimension)
	if err != nil {
		return 0, 0, false
	}
	yt, err := x.Get(exif.PixelYDimension)
	if err != nil {
		return 0, 0, false
	}
	xv, err := xt.Int(0)
	if err != nil {
		return 0, 0, false
	}
	yv, err := yt.Int(0)
	if err != nil {
		return 0, 0, false
	}
	return uint32(xv), uint32(yv), true
}

// jpegSOFSize scans marker segments for a start-of-frame header.
func jpegSOFSize(data []byte) (w, h uint32) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 0, 0
		}
		marker := data[pos+1]
		if marker >= 0xD0 && marker <= 0xD9 {
			// Standalone markers (SOI, EOI, RSTn) carry no length.
			pos += 2
			continue
		}
		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if isSOFMarker(marker) {
			if pos+9 <= len(data) {
				return uint32(binary.BigEndian.Uint16(data[pos+7 : pos+9])),
					uint32(binary.BigEndian.Uint16(data[pos+5 : pos+7]))
			}
			return 0, 0
		}
		pos += 2 + segLen
	}
	return 0, 0
}

func isSOFMarker(m byte) bool {
	// SOF0-SOF15 minus DHT, JPG and DAC.
	return m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC
}
