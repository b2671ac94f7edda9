package core

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewFixture() *Metadata {
	return &Metadata{
		FilePath: "track.opus",
		Format:   "Opus",
		Fields: []MetaField{
			{Key: "Vendor", Value: "libopus 1.4", Category: "OpusTags"},
			{Key: "TITLE", Value: "Song", Category: "Vorbis", Editable: true},
			{Key: "artist", Value: "Someone", Category: "Vorbis", Editable: true},
			{Key: "Picture[0]", Value: "Cover (front), image/png, 120 bytes", Category: "Picture"},
		},
	}
}

func TestSummary(t *testing.T) {
	m := viewFixture()
	assert.Equal(t, "TITLE: Song", m.Summary())

	// Falls back to the artist, matched case-insensitively.
	noTitle := &Metadata{Fields: []MetaField{
		{Key: "artist", Value: "Someone", Category: "Vorbis"},
	}}
	assert.Equal(t, "artist: Someone", noTitle.Summary())

	assert.Empty(t, (&Metadata{Format: "Opus"}).Summary())
}

func TestPrintMetadataText(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.PrintMetadata(viewFixture())

	out := buf.String()
	assert.Contains(t, out, "File   : track.opus")
	assert.Contains(t, out, "Format : Opus")
	assert.Contains(t, out, "Track  : TITLE: Song")
	assert.Contains(t, out, "── OpusTags ──")
	assert.Contains(t, out, "── Vorbis ──")
	assert.Contains(t, out, "── Picture ──")
	assert.Contains(t, out, "TITLE:")
	assert.Contains(t, out, "[editable]")
	assert.Contains(t, out, "Cover (front), image/png, 120 bytes")
	assert.Contains(t, out, "1 embedded picture(s)")
}

func TestPrintMetadataTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.PrintMetadata(&Metadata{FilePath: "x.opus", Format: "Opus"})

	assert.Contains(t, buf.String(), "(no metadata found)")
	assert.NotContains(t, buf.String(), "Track  :")
}

func TestPrintMetadataJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{JSON: true, Writer: &buf}
	p.PrintMetadata(viewFixture())

	var out struct {
		File    string `json:"file"`
		Format  string `json:"format"`
		Summary string `json:"summary"`
		Fields  []struct {
			Key      string `json:"key"`
			Value    string `json:"value"`
			Category string `json:"category"`
			Editable bool   `json:"editable"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "track.opus", out.File)
	assert.Equal(t, "Opus", out.Format)
	assert.Equal(t, "TITLE: Song", out.Summary)
	require.Len(t, out.Fields, 4)
	assert.Equal(t, "TITLE", out.Fields[1].Key)
	assert.True(t, out.Fields[1].Editable)
	assert.Equal(t, "Picture", out.Fields[3].Category)
	assert.False(t, out.Fields[3].Editable)
}

func TestFieldCategories(t *testing.T) {
	cats := fieldCategories(viewFixture().Fields)
	assert.Equal(t, []string{"OpusTags", "Vorbis", "Picture"}, cats)
}
