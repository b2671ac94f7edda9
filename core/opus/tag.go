// Package opus reads and rewrites the metadata embedded in an Ogg Opus
// stream: the Vorbis-style comment vector and its embedded cover art,
// carried by the OpusTags packet. The enclosing audio packets pass through
// a rewrite byte-identical; only the container framing around them is
// re-derived.
package opus

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ankit-chaubey/opus-tag-surgery/core/ogg"
)

// Tag is an in-memory edit session over one file's comment header. Keys
// compare case-insensitively but keep their stored case, duplicate keys
// are legal, and entry order is preserved. Keys must not contain '='.
//
// A Tag never touches the source bytes until Save is called, and a failed
// Save returns no partial output. A Tag is not safe for concurrent use.
type Tag struct {
	vendor   string
	comments []Comment
}

// Load parses an Ogg Opus byte stream and returns its tag. Multiplexed
// files are tolerated: the Opus logical stream is located by its OpusHead
// signature, not by position.
func Load(data []byte) (*Tag, error) {
	pages, err := ogg.ReadPages(data)
	if err != nil {
		return nil, err
	}
	ps, err := ogg.Reassemble(pages)
	if err != nil {
		return nil, err
	}
	vendor, comments, err := parseCommentHeader(ps.Packets[1].Data)
	if err != nil {
		return nil, err
	}
	return &Tag{vendor: vendor, comments: comments}, nil
}

// LoadFile reads path in full and loads its tag.
func LoadFile(path string) (*Tag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Save re-serializes the tag into original, returning the rewritten
// stream. All non-tag packets are carried over byte-identically; pages are
// re-segmented, renumbered and re-checksummed as the new tag packet's size
// requires. A multiplexed input is rejected with ErrMultiplexed: the
// rewriter emits a single logical stream and will not silently drop the
// siblings. original is never modified.
func (t *Tag) Save(original []byte) ([]byte, error) {
	pages, err := ogg.ReadPages(original)
	if err != nil {
		return nil, err
	}
	ps, err := ogg.Reassemble(pages)
	if err != nil {
		return nil, err
	}
	for _, pg := range pages {
		if pg.IsBOS() && pg.SerialNumber != ps.Serial {
			return nil, fmt.Errorf("%w: logical stream %#x would be dropped", ErrMultiplexed, pg.SerialNumber)
		}
	}

	old := ps.Packets[1]
	ps.Packets[1] = ogg.Packet{
		Data:     encodeCommentHeader(t.vendor, t.comments),
		Granule:  old.Granule,
		EndsPage: true, // the comment header always closes its page
		EOS:      old.EOS,
	}

	return ogg.EncodePages(ogg.WritePages(ps.Packets, ps.Serial, ps.FirstSequence)), nil
}

// SaveFile rewrites the file at path in place. The file is only written
// after the whole output stream has been produced in memory.
func (t *Tag) SaveFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := t.Save(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// Vendor returns the vendor string recorded by the encoder.
func (t *Tag) Vendor() string { return t.vendor }

// SetVendor replaces the vendor string.
func (t *Tag) SetVendor(vendor string) { t.vendor = vendor }

// Get returns all values stored under key, in order. Lookup is
// case-insensitive.
func (t *Tag) Get(key string) []string {
	var vals []string
	for _, c := range t.comments {
		if strings.EqualFold(c.Key, key) {
			vals = append(vals, c.Value)
		}
	}
	return vals
}

// GetFirst returns the first value stored under key.
func (t *Tag) GetFirst(key string) (string, bool) {
	for _, c := range t.comments {
		if strings.EqualFold(c.Key, key) {
			return c.Value, true
		}
	}
	return "", false
}

// Set replaces every entry for key with a single entry, keeping the
// position of the first occurrence. A new key is appended at the end.
func (t *Tag) Set(key, value string) {
	replaced := false
	kept := t.comments[:0]
	for _, c := range t.comments {
		if strings.EqualFold(c.Key, key) {
			if replaced {
				continue
			}
			c = Comment{Key: c.Key, Value: value}
			replaced = true
		}
		kept = append(kept, c)
	}
	t.comments = kept
	if !replaced {
		t.comments = append(t.comments, Comment{Key: key, Value: value})
	}
}

// Add appends a value for key without touching existing entries.
func (t *Tag) Add(key, value string) {
	t.comments = append(t.comments, Comment{Key: key, Value: value})
}

// Remove deletes every entry for key. It reports whether anything was
// removed.
func (t *Tag) Remove(key string) bool {
	kept := t.comments[:0]
	removed := false
	for _, c := range t.comments {
		if strings.EqualFold(c.Key, key) {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	t.comments = kept
	return removed
}

// Comments returns a copy of all free-form entries, excluding the
// reserved picture entries.
func (t *Tag) Comments() []Comment {
	var out []Comment
	for _, c := range t.comments {
		if strings.EqualFold(c.Key, PictureKey) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Keys returns the distinct comment keys in first-seen order, excluding
// the reserved picture key. Distinctness is case-insensitive; the first
// stored spelling wins.
func (t *Tag) Keys() []string {
	var keys []string
	for _, c := range t.comments {
		if strings.EqualFold(c.Key, PictureKey) {
			continue
		}
		seen := false
		for _, k := range keys {
			if strings.EqualFold(k, c.Key) {
				seen = true
				break
			}
		}
		if !seen {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// HasPictures reports whether any picture entries are present, decodable
// or not.
func (t *Tag) HasPictures() bool {
	for _, c := range t.comments {
		if strings.EqualFold(c.Key, PictureKey) {
			return true
		}
	}
	return false
}

// Pictures decodes every picture entry, in order. Entries that fail to
// decode are skipped with a warning; use RemovePicture to delete them by
// index.
func (t *Tag) Pictures() []*Picture {
	var pics []*Picture
	i := 0
	for _, c := range t.comments {
		if !strings.EqualFold(c.Key, PictureKey) {
			continue
		}
		p, err := ParsePictureBase64(c.Value)
		if err != nil {
			slog.Warn("opus: skipping undecodable picture entry", "index", i, "err", err)
		} else {
			pics = append(pics, p)
		}
		i++
	}
	return pics
}

// AddPicture appends one picture entry for p.
func (t *Tag) AddPicture(p *Picture) {
	t.comments = append(t.comments, Comment{Key: PictureKey, Value: p.EncodeBase64()})
}

// RemovePicture deletes the i-th picture entry (counting every picture
// entry, including undecodable ones).
func (t *Tag) RemovePicture(i int) error {
	n := 0
	for ci, c := range t.comments {
		if !strings.EqualFold(c.Key, PictureKey) {
			continue
		}
		if n == i {
			t.comments = append(t.comments[:ci], t.comments[ci+1:]...)
			return nil
		}
		n++
	}
	return fmt.Errorf("opus: no picture at index %d", i)
}

// PictureByType returns the first decodable picture of the given type.
func (t *Tag) PictureByType(pt PictureType) *Picture {
	for _, p := range t.Pictures() {
		if p.Type == pt {
			return p
		}
	}
	return nil
}

// RemovePictureType deletes the first picture of the given type,
// reporting whether one was found.
func (t *Tag) RemovePictureType(pt PictureType) bool {
	i := 0
	for _, c := range t.comments {
		if !strings.EqualFold(c.Key, PictureKey) {
			continue
		}
		if p, err := ParsePictureBase64(c.Value); err == nil && p.Type == pt {
			return t.RemovePicture(i) == nil
		}
		i++
	}
	return false
}
