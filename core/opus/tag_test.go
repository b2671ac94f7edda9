package opus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/opus-tag-surgery/core/ogg"
)

const testSerial = uint32(0x00C0FFEE)

func opusHeadPacket() []byte {
	// Version 1, stereo, pre-skip 312, input rate 48000, gain 0, family 0.
	return []byte{'O', 'p', 'u', 's', 'H', 'e', 'a', 'd',
		1, 2, 0x38, 0x01, 0x80, 0xBB, 0x00, 0x00, 0x00, 0x00, 0}
}

// makeFileWithTagsPacket builds a complete single-stream file around an
// arbitrary tags packet.
func makeFileWithTagsPacket(tagsPacket []byte, audio ...[]byte) []byte {
	packets := []ogg.Packet{
		{Data: opusHeadPacket(), EndsPage: true},
		{Data: tagsPacket, EndsPage: true},
	}
	for i, a := range audio {
		packets = append(packets, ogg.Packet{Data: a, Granule: uint64(960 * (i + 1)), EndsPage: true})
	}
	packets[len(packets)-1].EOS = true
	return ogg.EncodePages(ogg.WritePages(packets, testSerial, 0))
}

func makeOpusFile(vendor string, comments []Comment, audio ...[]byte) []byte {
	return makeFileWithTagsPacket(encodeCommentHeader(vendor, comments), audio...)
}

// audioPackets reassembles data and returns the raw audio packet bytes.
func audioPackets(t *testing.T, data []byte) [][]byte {
	t.Helper()
	pages, err := ogg.ReadPages(data)
	require.NoError(t, err)
	ps, err := ogg.Reassemble(pages)
	require.NoError(t, err)
	var out [][]byte
	for _, p := range ps.Packets[2:] {
		out = append(out, p.Data)
	}
	return out
}

func TestLoadMinimalFile(t *testing.T) {
	file := makeOpusFile("test", []Comment{{Key: "TITLE", Value: "Song"}},
		[]byte{0xF8, 1, 2, 3})

	// OpusHead page, OpusTags page, one audio page.
	pages, err := ogg.ReadPages(file)
	require.NoError(t, err)
	assert.Len(t, pages, 3)

	tag, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "test", tag.Vendor())
	assert.Equal(t, []string{"Song"}, tag.Get("title"))
}

func TestSetSaveReload(t *testing.T) {
	audio := []byte{0xF8, 1, 2, 3}
	file := makeOpusFile("test", []Comment{{Key: "TITLE", Value: "Song"}}, audio)

	tag, err := Load(file)
	require.NoError(t, err)
	tag.Set("title", "New")

	out, err := tag.Save(file)
	require.NoError(t, err)

	reloaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"New"}, reloaded.Get("title"))
	assert.Equal(t, "test", reloaded.Vendor())

	// The audio packet survives byte-identical.
	assert.Equal(t, [][]byte{audio}, audioPackets(t, out))
}

func TestSaveLeavesOriginalUntouched(t *testing.T) {
	file := makeOpusFile("v", []Comment{{Key: "TITLE", Value: "Song"}}, []byte{1})
	snapshot := append([]byte(nil), file...)

	tag, err := Load(file)
	require.NoError(t, err)
	tag.Set("TITLE", "Completely Different")
	_, err = tag.Save(file)
	require.NoError(t, err)

	assert.Equal(t, snapshot, file)
}

func TestSaveRepagesLongValue(t *testing.T) {
	// A value long enough to push the tags packet across a page boundary.
	long := make([]byte, 70000)
	for i := range long {
		long[i] = 'a' + byte(i%26)
	}

	audio1 := make([]byte, 600)
	audio2 := []byte{42}
	file := makeOpusFile("v", []Comment{{Key: "TITLE", Value: "Song"}}, audio1, audio2)

	tag, err := Load(file)
	require.NoError(t, err)
	tag.Set("LYRICS", string(long))

	out, err := tag.Save(file)
	require.NoError(t, err)

	// Every page of the output must carry a valid checksum, ReadPages
	// verifies as it goes.
	pages, err := ogg.ReadPages(out)
	require.NoError(t, err)
	assert.Greater(t, len(pages), 3)

	reloaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, []string{string(long)}, reloaded.Get("lyrics"))
	assert.Equal(t, [][]byte{audio1, audio2}, audioPackets(t, out))
}

func TestRoundTripStable(t *testing.T) {
	file := makeOpusFile("vendor", []Comment{
		{Key: "TITLE", Value: "Song"},
		{Key: "ARTIST", Value: "A"},
		{Key: "ARTIST", Value: "B"},
	}, []byte{9, 8, 7})

	tag, err := Load(file)
	require.NoError(t, err)
	out, err := tag.Save(file)
	require.NoError(t, err)

	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, tag.Vendor(), again.Vendor())
	assert.Equal(t, tag.Comments(), again.Comments())
	assert.Equal(t, audioPackets(t, file), audioPackets(t, out))
}

func TestAccessorSemantics(t *testing.T) {
	tag := &Tag{vendor: "v", comments: []Comment{
		{Key: "Artist", Value: "one"},
		{Key: "TITLE", Value: "t"},
		{Key: "ARTIST", Value: "two"},
	}}

	// Case-insensitive lookup, duplicates in order.
	assert.Equal(t, []string{"one", "two"}, tag.Get("artist"))
	first, ok := tag.GetFirst("ARTIST")
	assert.True(t, ok)
	assert.Equal(t, "one", first)

	// Stored case is preserved.
	assert.Equal(t, []string{"Artist", "TITLE"}, tag.Keys())

	// Set collapses duplicates to a single entry at the first position.
	tag.Set("artist", "solo")
	assert.Equal(t, []Comment{
		{Key: "Artist", Value: "solo"},
		{Key: "TITLE", Value: "t"},
	}, tag.Comments())

	// Add appends without replacing.
	tag.Add("ARTIST", "guest")
	assert.Equal(t, []string{"solo", "guest"}, tag.Get("Artist"))

	// Set on a new key appends.
	tag.Set("DATE", "2024")
	v, ok := tag.GetFirst("date")
	assert.True(t, ok)
	assert.Equal(t, "2024", v)

	// Remove deletes every occurrence.
	assert.True(t, tag.Remove("artist"))
	assert.Empty(t, tag.Get("ARTIST"))
	assert.False(t, tag.Remove("artist"))

	_, ok = tag.GetFirst("absent")
	assert.False(t, ok)
}

func TestPictureLifecycle(t *testing.T) {
	file := makeOpusFile("v", []Comment{{Key: "TITLE", Value: "Song"}}, []byte{1, 2})
	tag, err := Load(file)
	require.NoError(t, err)
	assert.False(t, tag.HasPictures())

	pic := testPicture()
	tag.AddPicture(pic)
	assert.True(t, tag.HasPictures())

	pics := tag.Pictures()
	require.Len(t, pics, 1)
	assert.Equal(t, pic, pics[0])

	// The picture entry must not leak into the free-form comment view.
	assert.Equal(t, []Comment{{Key: "TITLE", Value: "Song"}}, tag.Comments())
	assert.Equal(t, []string{"TITLE"}, tag.Keys())

	// Survives a save/reload cycle.
	out, err := tag.Save(file)
	require.NoError(t, err)
	reloaded, err := Load(out)
	require.NoError(t, err)
	require.Len(t, reloaded.Pictures(), 1)
	assert.Equal(t, pic, reloaded.Pictures()[0])

	assert.Equal(t, pic, reloaded.PictureByType(PictureCoverFront))
	assert.Nil(t, reloaded.PictureByType(PictureMedia))

	require.NoError(t, reloaded.RemovePicture(0))
	assert.False(t, reloaded.HasPictures())
	assert.Error(t, reloaded.RemovePicture(0))
}

func TestRemovePictureType(t *testing.T) {
	tag := &Tag{vendor: "v"}
	front := testPicture()
	back := testPicture()
	back.Type = PictureCoverBack
	tag.AddPicture(front)
	tag.AddPicture(back)

	assert.False(t, tag.RemovePictureType(PictureMedia))
	assert.True(t, tag.RemovePictureType(PictureCoverFront))
	require.Len(t, tag.Pictures(), 1)
	assert.Equal(t, PictureCoverBack, tag.Pictures()[0].Type)
}

func TestUndecodablePictureEntries(t *testing.T) {
	tag := &Tag{vendor: "v"}
	tag.Add(PictureKey, "!!! not base64 !!!")
	tag.AddPicture(testPicture())

	// The broken entry is skipped by Pictures but still addressable by
	// index for removal.
	assert.True(t, tag.HasPictures())
	require.Len(t, tag.Pictures(), 1)
	require.NoError(t, tag.RemovePicture(0))
	require.Len(t, tag.Pictures(), 1)
	assert.Equal(t, testPicture(), tag.Pictures()[0])
}

func TestLoadMalformedInputs(t *testing.T) {
	_, err := Load([]byte("this is not an ogg stream at all"))
	assert.ErrorIs(t, err, ogg.ErrMalformedContainer)

	// Corrupt one payload byte of a valid file: the page CRC catches it.
	file := makeOpusFile("v", []Comment{{Key: "TITLE", Value: "Song"}}, []byte{1})
	file[len(file)-1] ^= 0x01
	_, err = Load(file)
	assert.ErrorIs(t, err, ogg.ErrBadCRC)

	// Truncated mid-page.
	file = makeOpusFile("v", nil, []byte{1, 2, 3})
	_, err = Load(file[:len(file)-2])
	assert.ErrorIs(t, err, ogg.ErrMalformedContainer)
}

func TestLoadNotOpus(t *testing.T) {
	vorbisBOS := &ogg.Page{
		HeaderType:   ogg.FlagBOS,
		SerialNumber: 5,
		Segments:     []byte{7},
		Payload:      []byte("\x01vorbis"),
	}
	_, err := Load(ogg.EncodePages([]*ogg.Page{vorbisBOS}))
	assert.ErrorIs(t, err, ogg.ErrNotOpus)
}

func TestSaveRejectsMultiplexedInput(t *testing.T) {
	vorbisBOS := &ogg.Page{
		HeaderType:   ogg.FlagBOS,
		SerialNumber: 5,
		Segments:     []byte{7},
		Payload:      []byte("\x01vorbis"),
	}
	file := append(vorbisBOS.Encode(),
		makeOpusFile("test", []Comment{{Key: "TITLE", Value: "Song"}}, []byte{0xF8})...)

	// Reading picks out the Opus stream and ignores the sibling.
	tag, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"Song"}, tag.Get("TITLE"))

	// Rewriting would drop the sibling stream, so it must refuse.
	_, err = tag.Save(file)
	assert.ErrorIs(t, err, ErrMultiplexed)
}

func TestLoadMalformedTagPacket(t *testing.T) {
	// Valid container, valid magic, but the vendor length points past
	// the end of the packet.
	bad := append([]byte("OpusTags"), 0xFF, 0xFF, 0xFF, 0x7F, 'x', 'y')
	file := makeFileWithTagsPacket(bad, []byte{1})

	_, err := Load(file)
	assert.ErrorIs(t, err, ErrMalformedTag)
}
