// Package audio implements the core.Handler surface for Ogg Opus files on
// top of the native tag codec.
package audio

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/ankit-chaubey/opus-tag-surgery/core"
	"github.com/ankit-chaubey/opus-tag-surgery/core/opus"
)

// Handler implements core.Handler for Ogg-contained audio.
type Handler struct {
	format core.FormatID
}

// New returns an audio Handler for the given format.
func New(fmt core.FormatID) *Handler { return &Handler{format: fmt} }

func (h *Handler) Info() core.FormatInfo {
	return formatInfo[h.format]
}

var formatInfo = map[core.FormatID]core.FormatInfo{
	core.FmtOpus: {
		Name:       "Opus",
		Extensions: []string{".opus"},
		MediaType:  "audio",
		MIMETypes:  []string{"audio/opus", "audio/ogg"},
		CanView:    true,
		CanEdit:    true,
		CanStrip:   true,
		Notes:      "Vorbis comment header (OpusTags). Full edit + strip support, cover art included.",
		EditableFields: []string{
			"TITLE", "ARTIST", "ALBUM", "DATE", "GENRE",
			"COMMENT", "TRACKNUMBER", "ALBUMARTIST", "COMPOSER", "COPYRIGHT",
		},
	},
	core.FmtOGG: {
		Name:       "OGG",
		Extensions: []string{".ogg", ".oga"},
		MediaType:  "audio",
		MIMETypes:  []string{"audio/ogg"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   false,
		Notes:      "Non-Opus Ogg (e.g. Vorbis). View only.",
	},
}

// ──────────────────────────────────────────────────────────────────────────────
// View
// ──────────────────────────────────────────────────────────────────────────────

func (h *Handler) View(path string) (*core.Metadata, error) {
	m := &core.Metadata{FilePath: path, Format: formatInfo[h.format].Name}

	if h.format == core.FmtOpus {
		if err := viewNative(path, m); err != nil {
			return m, err
		}
		return m, nil
	}
	return viewWithDhowden(path, m)
}

// viewNative lists every comment entry via the native codec, duplicates
// and stored case included, plus a summary line per embedded picture.
func viewNative(path string, m *core.Metadata) error {
	t, err := opus.LoadFile(path)
	if err != nil {
		return fmt.Errorf("could not read tags: %w", err)
	}

	m.Fields = append(m.Fields, core.MetaField{
		Key:      "Vendor",
		Value:    t.Vendor(),
		Category: "OpusTags",
	})
	for _, c := range t.Comments() {
		m.Fields = append(m.Fields, core.MetaField{
			Key:      c.Key,
			Value:    c.Value,
			Category: "Vorbis",
			Editable: true,
		})
	}
	for i, p := range t.Pictures() {
		m.Fields = append(m.Fields, core.MetaField{
			Key:      fmt.Sprintf("Picture[%d]", i),
			Value:    fmt.Sprintf("%s, %s, %d bytes", p.Type, p.MIME, len(p.Data)),
			Category: "Picture",
		})
	}
	return nil
}

// viewWithDhowden uses the dhowden/tag library to read audio metadata.
func viewWithDhowden(path string, m *core.Metadata) (*core.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return m, fmt.Errorf("could not read tags: %w", err)
	}

	cat := string(t.Format())
	if cat == "" {
		cat = "Audio Tags"
	}

	add := func(key, val string) {
		if val != "" {
			m.Fields = append(m.Fields, core.MetaField{
				Key:      key,
				Value:    val,
				Category: cat,
			})
		}
	}

	add("Title", t.Title())
	add("Artist", t.Artist())
	add("Album", t.Album())
	add("AlbumArtist", t.AlbumArtist())
	add("Composer", t.Composer())
	add("Genre", t.Genre())
	add("Comment", t.Comment())
	if t.Year() != 0 {
		add("Year", fmt.Sprintf("%d", t.Year()))
	}
	track, total := t.Track()
	if track != 0 {
		trackStr := fmt.Sprintf("%d", track)
		if total != 0 {
			trackStr = fmt.Sprintf("%d/%d", track, total)
		}
		add("TrackNumber", trackStr)
	}
	return m, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Edit
// ──────────────────────────────────────────────────────────────────────────────

func (h *Handler) Edit(path string, outPath string, opts core.EditOptions) error {
	info := formatInfo[h.format]
	if !info.CanEdit {
		return fmt.Errorf("%s does not support metadata editing", info.Name)
	}

	if opts.DryRun {
		fmt.Println("Dry-run: OpusTags comments would be updated:")
		for k, v := range opts.Set {
			fmt.Printf("  %s = %s\n", k, v)
		}
		for _, k := range opts.Delete {
			fmt.Printf("  %s (deleted)\n", k)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	t, err := opus.Load(data)
	if err != nil {
		return err
	}

	for _, k := range opts.Delete {
		t.Remove(k)
	}
	// Uppercase keys per Vorbis field-name convention.
	for k, v := range opts.Set {
		t.Set(strings.ToUpper(k), v)
	}
	if opts.AddPicture != "" {
		pic, err := opus.ReadPictureFile(opts.AddPicture, opus.PictureCoverFront, "")
		if err != nil {
			return err
		}
		t.AddPicture(pic)
	}

	return writeResult(t, data, core.ResolveOutPath(path, outPath))
}

// ──────────────────────────────────────────────────────────────────────────────
// Strip
// ──────────────────────────────────────────────────────────────────────────────

func (h *Handler) Strip(path string, outPath string, opts core.StripOptions) error {
	info := formatInfo[h.format]
	if !info.CanStrip {
		return fmt.Errorf("%s does not support strip", info.Name)
	}
	if opts.DryRun {
		fmt.Println("Dry-run: OpusTags comments would be removed")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	t, err := opus.Load(data)
	if err != nil {
		return err
	}

	keep := make(map[string]bool)
	for _, k := range opts.KeepFields {
		keep[strings.ToUpper(k)] = true
	}
	for _, k := range t.Keys() {
		if !keep[strings.ToUpper(k)] {
			t.Remove(k)
		}
	}
	if !opts.KeepPictures {
		for t.HasPictures() {
			if err := t.RemovePicture(0); err != nil {
				break
			}
		}
	}

	return writeResult(t, data, core.ResolveOutPath(path, outPath))
}

// writeResult saves the tag over data and writes the rewritten stream to
// out. Nothing is written if the save fails.
func writeResult(t *opus.Tag, data []byte, out string) error {
	rewritten, err := t.Save(data)
	if err != nil {
		return err
	}
	return os.WriteFile(out, rewritten, 0644)
}
