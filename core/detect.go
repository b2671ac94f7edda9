package core

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// FormatID enumerates every recognised format.
type FormatID string

const (
	// Audio containers.
	FmtOpus FormatID = "opus" // Opus in Ogg
	FmtOGG  FormatID = "ogg"  // Ogg with a non-Opus codec (e.g. Vorbis)

	// Image formats, recognised for cover-art import.
	FmtJPEG FormatID = "jpeg"
	FmtPNG  FormatID = "png"
	FmtGIF  FormatID = "gif"
	FmtWebP FormatID = "webp"

	FmtUnknown FormatID = "unknown"
)

// extMap maps lowercase extensions to format IDs.
var extMap = map[string]FormatID{
	".opus": FmtOpus,
	".ogg":  FmtOGG,
	".oga":  FmtOGG,

	".jpg":  FmtJPEG,
	".jpeg": FmtJPEG,
	".png":  FmtPNG,
	".gif":  FmtGIF,
	".webp": FmtWebP,
}

// DetectFormat returns the FormatID for the given file, first by reading
// magic bytes and falling back to extension.
func DetectFormat(path string) (FormatID, error) {
	f, err := os.Open(path)
	if err != nil {
		return FmtUnknown, err
	}
	defer f.Close()

	// Enough for the BOS page header (27 bytes), its one-entry segment
	// table, and the "OpusHead" signature that follows.
	buf := make([]byte, 40)
	n, err := io.ReadFull(f, buf)
	if err != nil && n == 0 {
		return FmtUnknown, err
	}
	buf = buf[:n]

	if id := detectMagic(buf); id != FmtUnknown {
		return id, nil
	}

	// Fallback to extension
	if id, ok := extMap[strings.ToLower(pathExt(path))]; ok {
		return id, nil
	}
	return FmtUnknown, nil
}

func detectMagic(buf []byte) FormatID {
	switch {
	case bytes.HasPrefix(buf, []byte("OggS")):
		// A well-formed Opus BOS page has one segment, so the first
		// packet starts at offset 28.
		if len(buf) >= 36 && bytes.Equal(buf[28:36], []byte("OpusHead")) {
			return FmtOpus
		}
		return FmtOGG
	case bytes.HasPrefix(buf, []byte{0xFF, 0xD8, 0xFF}):
		return FmtJPEG
	case bytes.HasPrefix(buf, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return FmtPNG
	case bytes.HasPrefix(buf, []byte("GIF87a")) || bytes.HasPrefix(buf, []byte("GIF89a")):
		return FmtGIF
	case len(buf) >= 12 && bytes.Equal(buf[0:4], []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("WEBP")):
		return FmtWebP
	}
	return FmtUnknown
}

// DetectImageMIME sniffs the MIME type of image data from its magic
// bytes, returning "" when the format is not recognised.
func DetectImageMIME(data []byte) string {
	switch detectMagic(data) {
	case FmtJPEG:
		return "image/jpeg"
	case FmtPNG:
		return "image/png"
	case FmtGIF:
		return "image/gif"
	case FmtWebP:
		return "image/webp"
	}
	return ""
}

func pathExt(path string) string {
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return ""
	}
	return path[dot:]
}
