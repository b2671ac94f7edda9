// Package core defines the shared types, interfaces, and format registry
// for Opus Tag Surgery.
package core

import "strings"

// MetaField represents a single metadata key-value pair.
type MetaField struct {
	Key      string // Stored field name (e.g. "TITLE", "ARTIST")
	Value    string // String representation of the value
	Category string // Category label (e.g. "Vorbis", "Picture")
	Editable bool   // Whether this field can be written back by surgery
}

// Metadata holds all metadata extracted from a single file.
type Metadata struct {
	FilePath string
	Format   string // Human-readable format name (e.g. "Opus")
	Fields   []MetaField
}

// Summary returns a one-line digest for quick display, preferring the
// title and falling back to the artist. Vorbis keys are matched
// case-insensitively. Empty when neither field is present.
func (m *Metadata) Summary() string {
	for _, want := range []string{"TITLE", "ARTIST"} {
		for _, f := range m.Fields {
			if strings.EqualFold(f.Key, want) {
				return f.Key + ": " + f.Value
			}
		}
	}
	return ""
}

// StripOptions controls which parts of metadata to remove.
type StripOptions struct {
	// KeepFields lists field keys that should NOT be removed.
	// If empty, all comments are stripped.
	KeepFields []string
	// KeepPictures preserves embedded cover art.
	KeepPictures bool
	// DryRun previews changes without writing.
	DryRun bool
}

// EditOptions holds field changes for an edit operation.
type EditOptions struct {
	// Set is a map of Key → Value for fields to set or update.
	Set map[string]string
	// Delete is a list of field keys to remove.
	Delete []string
	// AddPicture is a path to an image file to embed as front cover.
	AddPicture string
	// DryRun previews changes without writing.
	DryRun bool
}

// FormatInfo describes what a format handler supports.
type FormatInfo struct {
	Name           string   // "Opus"
	Extensions     []string // [".opus"]
	MediaType      string   // "audio"
	MIMETypes      []string
	CanView        bool
	CanEdit        bool
	CanStrip       bool
	EditableFields []string // Names of fields the handler can write
	Notes          string   // Any caveats or notes
}

// Handler is the interface every format must implement.
type Handler interface {
	// View reads and returns all discoverable metadata from path.
	View(path string) (*Metadata, error)
	// Edit writes new/updated fields into path, saving to outPath.
	// outPath == "" means in-place edit.
	Edit(path string, outPath string, opts EditOptions) error
	// Strip removes metadata from path, saving to outPath.
	Strip(path string, outPath string, opts StripOptions) error
	// Info returns format capabilities.
	Info() FormatInfo
}
