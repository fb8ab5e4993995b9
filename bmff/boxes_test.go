/*
Copyright 2018 The go4 Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bmff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vf(version uint8, flags uint32) []byte {
	return []byte{version, byte(flags >> 16), byte(flags >> 8), byte(flags)}
}

func TestMovieHeaderV1(t *testing.T) {
	matrix := cat(
		be32(0x00010000), be32(0), be32(0),
		be32(0), be32(0x00010000), be32(0),
		be32(0), be32(0), be32(0x40000000),
	)
	body := cat(vf(1, 0),
		be64(3600), be64(7200), // creation, modification
		be32(90000),
		be64(450000),
		be32(0x00018000), // rate 1.5
		be16(0x0080),     // volume 0.5
		be16(0), be32(0), be32(0),
		matrix,
		be32(0), be32(0), be32(0), be32(0), be32(0), be32(0),
		be32(5),
	)

	b, err := decodeBox(NewParser(), "mvhd", body)
	require.NoError(t, err)
	mvhd := b.(*MovieHeaderBox)

	assert.Equal(t, uint8(1), mvhd.Version)
	assert.Equal(t, uint64(3600), mvhd.CreationTime)
	assert.Equal(t, uint64(7200), mvhd.ModificationTime)
	assert.Equal(t, uint32(90000), mvhd.Timescale)
	assert.Equal(t, uint64(450000), mvhd.Duration)
	assert.Equal(t, 1.5, mvhd.Rate)
	assert.Equal(t, 0.5, mvhd.Volume)
	assert.Equal(t, int32(0x40000000), mvhd.Matrix[8])
	assert.Equal(t, uint32(5), mvhd.NextTrackID)
}

func TestTrackHeader(t *testing.T) {
	matrix := cat(
		be32(0x00010000), be32(0), be32(0),
		be32(0), be32(0x00010000), be32(0),
		be32(0), be32(0), be32(0x40000000),
	)
	body := cat(vf(0, 3),
		be32(100), be32(200), // creation, modification
		be32(1),     // track ID
		be32(0),     // reserved
		be32(48000), // duration
		be32(0), be32(0),
		be16(0),      // layer
		be16(1),      // alternate group
		be16(0x0100), // volume 1.0
		be16(0),
		matrix,
		be32(1920<<16), be32(1080<<16),
	)

	b, err := decodeBox(NewParser(), "tkhd", body)
	require.NoError(t, err)
	tkhd := b.(*TrackHeaderBox)

	assert.Equal(t, uint32(3), tkhd.Flags)
	assert.Equal(t, uint32(1), tkhd.TrackID)
	assert.Equal(t, uint64(48000), tkhd.Duration)
	assert.Equal(t, int16(1), tkhd.AlternateGroup)
	assert.Equal(t, 1.0, tkhd.Volume)
	assert.Equal(t, 1920.0, tkhd.Width)
	assert.Equal(t, 1080.0, tkhd.Height)
}

func TestMediaHeaderLanguage(t *testing.T) {
	// 'u'-0x60=0x15, 'n'-0x60=0x0e, 'd'-0x60=0x04 packed as 5-bit
	// fields: 0x15 0x0e 0x04 -> 0x55c4.
	body := cat(vf(0, 0), be32(0), be32(0), be32(600), be32(1200), be16(0x55c4), be16(0))

	b, err := decodeBox(NewParser(), "mdhd", body)
	require.NoError(t, err)
	mdhd := b.(*MediaHeaderBox)

	assert.Equal(t, uint32(600), mdhd.Timescale)
	assert.Equal(t, uint64(1200), mdhd.Duration)
	assert.Equal(t, "und", mdhd.Language)

	// "eng" packs to 0x15c7.
	body = cat(vf(0, 0), be32(0), be32(0), be32(600), be32(1200), be16(0x15c7), be16(0))
	b, err = decodeBox(NewParser(), "mdhd", body)
	require.NoError(t, err)
	assert.Equal(t, "eng", b.(*MediaHeaderBox).Language)
}

func TestHandlerBox(t *testing.T) {
	body := cat(vf(0, 0),
		be32(0), []byte("vide"),
		be32(0), be32(0), be32(0),
		[]byte("VideoHandler\x00"),
	)

	p := NewParser()
	b, err := decodeBox(p, "hdlr", body)
	require.NoError(t, err)
	hdlr := b.(*HandlerBox)

	assert.Equal(t, "vide", hdlr.HandlerType.String())
	assert.Equal(t, "VideoHandler", hdlr.Name)
	assert.Equal(t, "vide", p.Info(InfoHandlerType))
}

func TestHandlerBoxPascalName(t *testing.T) {
	body := cat(vf(0, 0),
		be32(0), []byte("pict"),
		be32(0), be32(0), be32(0),
		[]byte{4}, []byte("Core"),
	)

	p := NewParser()
	p.SetPreferredStringType(StringTypePascal)
	b, err := decodeBox(p, "hdlr", body)
	require.NoError(t, err)
	assert.Equal(t, "Core", b.(*HandlerBox).Name)
}

func TestPrimaryItemVersions(t *testing.T) {
	b, err := decodeBox(NewParser(), "pitm", cat(vf(0, 0), be16(12)))
	require.NoError(t, err)
	assert.Equal(t, uint32(12), b.(*PrimaryItemBox).ItemID)

	b, err = decodeBox(NewParser(), "pitm", cat(vf(1, 0), be32(70000)))
	require.NoError(t, err)
	assert.Equal(t, uint32(70000), b.(*PrimaryItemBox).ItemID)
}

func TestItemInfoEntryV2Mime(t *testing.T) {
	body := cat(vf(2, 0),
		be16(5), be16(0),
		[]byte("mime"),
		[]byte("item\x00"),
		[]byte("image/heic\x00"),
	)

	b, err := decodeBox(NewParser(), "infe", body)
	require.NoError(t, err)
	infe := b.(*ItemInfoEntry)

	assert.Equal(t, uint32(5), infe.ItemID)
	assert.Equal(t, "mime", infe.ItemType.String())
	assert.Equal(t, "item", infe.ItemName)
	assert.Equal(t, "image/heic", infe.ContentType)
	assert.Empty(t, infe.ContentEncoding)
}

func TestItemInfoEntryV3URI(t *testing.T) {
	body := cat(vf(3, 0),
		be32(70000), be16(1),
		[]byte("uri "),
		[]byte("n\x00"),
		[]byte("urn:example\x00"),
	)

	b, err := decodeBox(NewParser(), "infe", body)
	require.NoError(t, err)
	infe := b.(*ItemInfoEntry)

	assert.Equal(t, uint32(70000), infe.ItemID)
	assert.Equal(t, uint16(1), infe.ProtectionIndex)
	assert.Equal(t, "urn:example", infe.ItemURIType)
}

func TestItemInfoEntryV0(t *testing.T) {
	body := cat(vf(0, 0),
		be16(9), be16(0),
		[]byte("name\x00"),
		[]byte("text/plain\x00"),
	)

	b, err := decodeBox(NewParser(), "infe", body)
	require.NoError(t, err)
	infe := b.(*ItemInfoEntry)

	assert.Equal(t, uint32(9), infe.ItemID)
	assert.Equal(t, "name", infe.ItemName)
	assert.Equal(t, "text/plain", infe.ContentType)
}

func TestItemInfoBox(t *testing.T) {
	infe1 := mkfull("infe", 2, 0, be16(1), be16(0), []byte("hvc1"), []byte{0})
	infe2 := mkfull("infe", 2, 0, be16(2), be16(0), []byte("Exif"), []byte{0})
	body := cat(vf(0, 0), be16(2), infe1, infe2)

	b, err := decodeBox(NewParser(), "iinf", body)
	require.NoError(t, err)
	iinf := b.(*ItemInfoBox)

	assert.Equal(t, uint32(2), iinf.EntryCount)
	entries := iinf.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "hvc1", entries[0].ItemType.String())
	assert.Equal(t, uint32(2), entries[1].ItemID)
}

func TestItemLocationV0(t *testing.T) {
	body := cat(vf(0, 0),
		[]byte{0x44, 0x00}, // offset size 4, length size 4, no base offset
		be16(1),
		be16(7),    // item ID
		be16(0),    // data reference index
		be16(2),    // extent count
		be32(4096), be32(100),
		be32(8192), be32(200),
	)

	b, err := decodeBox(NewParser(), "iloc", body)
	require.NoError(t, err)
	iloc := b.(*ItemLocationBox)

	assert.Equal(t, uint8(4), iloc.OffsetSize)
	assert.Equal(t, uint8(4), iloc.LengthSize)
	assert.Equal(t, uint8(0), iloc.BaseOffsetSize)
	require.Len(t, iloc.Items, 1)

	ent := iloc.EntryByID(7)
	require.NotNil(t, ent)
	assert.Equal(t, uint8(0), ent.ConstructionMethod)
	require.Len(t, ent.Extents, 2)
	assert.Equal(t, uint64(4096), ent.Extents[0].Offset)
	assert.Equal(t, uint64(200), ent.Extents[1].Length)

	assert.Nil(t, iloc.EntryByID(99))
}

func TestItemLocationV1(t *testing.T) {
	body := cat(vf(1, 0),
		[]byte{0x84, 0x44}, // offset 8, length 4, base offset 4, index 4
		be16(1),
		be16(3),
		be16(1), // construction method 1 (idat)
		be16(0),
		be32(64), // base offset
		be16(1),
		be32(9), // extent index
		be64(0), be32(10),
	)

	b, err := decodeBox(NewParser(), "iloc", body)
	require.NoError(t, err)
	iloc := b.(*ItemLocationBox)

	assert.Equal(t, uint8(4), iloc.IndexSize)
	ent := iloc.EntryByID(3)
	require.NotNil(t, ent)
	assert.Equal(t, uint8(1), ent.ConstructionMethod)
	assert.Equal(t, uint64(64), ent.BaseOffset)
	require.Len(t, ent.Extents, 1)
	assert.Equal(t, uint64(9), ent.Extents[0].Index)
	assert.Equal(t, uint64(10), ent.Extents[0].Length)
}

func TestItemReferenceV0(t *testing.T) {
	dimg := mkbox("dimg", be16(2), be16(2), be16(10), be16(11))
	cdsc := mkbox("cdsc", be16(3), be16(1), be16(2))
	body := cat(vf(0, 0), dimg, cdsc)

	b, err := decodeBox(NewParser(), "iref", body)
	require.NoError(t, err)
	iref := b.(*ItemReferenceBox)

	refs := iref.References()
	require.Len(t, refs, 2)
	assert.Equal(t, "dimg", refs[0].Type().String())
	assert.Equal(t, uint32(2), refs[0].FromItemID)
	assert.Equal(t, []uint32{10, 11}, refs[0].ToItemIDs)
	assert.Equal(t, "cdsc", refs[1].Type().String())
	assert.Equal(t, []uint32{2}, refs[1].ToItemIDs)
}

func TestItemReferenceV1(t *testing.T) {
	// Version 1 widens item IDs to 32 bits.
	thmb := mkbox("thmb", be32(70000), be16(1), be32(70001))
	body := cat(vf(1, 0), thmb)

	b, err := decodeBox(NewParser(), "iref", body)
	require.NoError(t, err)
	refs := b.(*ItemReferenceBox).References()
	require.Len(t, refs, 1)
	assert.Equal(t, uint32(70000), refs[0].FromItemID)
	assert.Equal(t, []uint32{70001}, refs[0].ToItemIDs)
}

func TestImageRotation(t *testing.T) {
	for angle, degrees := range map[byte]int{0: 0, 1: 90, 2: 180, 3: 270} {
		b, err := decodeBox(NewParser(), "irot", []byte{angle})
		require.NoError(t, err)
		irot := b.(*ImageRotation)
		assert.Equal(t, angle, irot.Angle)
		assert.Equal(t, degrees, irot.Degrees())
	}

	// Only the low two bits carry the quadrant.
	b, err := decodeBox(NewParser(), "irot", []byte{0xfe})
	require.NoError(t, err)
	assert.Equal(t, 180, b.(*ImageRotation).Degrees())
}

func TestImageSpatialExtents(t *testing.T) {
	b, err := decodeBox(NewParser(), "ispe", cat(vf(0, 0), be32(4032), be32(3024)))
	require.NoError(t, err)
	ispe := b.(*ImageSpatialExtentsProperty)
	assert.Equal(t, uint32(4032), ispe.ImageWidth)
	assert.Equal(t, uint32(3024), ispe.ImageHeight)
}

func TestPixelInformation(t *testing.T) {
	b, err := decodeBox(NewParser(), "pixi", cat(vf(0, 0), []byte{3, 8, 8, 8}))
	require.NoError(t, err)
	assert.Equal(t, []uint8{8, 8, 8}, b.(*PixelInformationProperty).BitsPerChannel)
}

func TestColourInformationNCLX(t *testing.T) {
	// BT.709 primaries, IEC 61966-2-1 transfer, BT.601 matrix, full
	// range.
	body := cat([]byte("nclx"), be16(1), be16(13), be16(6), []byte{0x80})

	b, err := decodeBox(NewParser(), "colr", body)
	require.NoError(t, err)
	colr := b.(*ColourInformationBox)

	assert.Equal(t, "nclx", colr.ColourType.String())
	assert.Equal(t, uint16(1), colr.ColourPrimaries)
	assert.Equal(t, uint16(13), colr.TransferFunction)
	assert.Equal(t, uint16(6), colr.MatrixCoefficient)
	assert.True(t, colr.FullRange)
	assert.Nil(t, colr.ICCProfile)
}

func TestColourInformationICC(t *testing.T) {
	profile := []byte{0x00, 0x00, 0x01, 0xf4, 'a', 'c', 's', 'p'}
	b, err := decodeBox(NewParser(), "colr", cat([]byte("prof"), profile))
	require.NoError(t, err)
	colr := b.(*ColourInformationBox)
	assert.Equal(t, "prof", colr.ColourType.String())
	assert.Equal(t, profile, colr.ICCProfile)
}

func TestItemPropertyAssociation(t *testing.T) {
	// flags==0: 7-bit property indexes.
	body := cat(vf(0, 0), be32(1),
		be16(20),          // item ID
		[]byte{2},         // association count
		[]byte{0x83},      // essential, index 3
		[]byte{0x01},      // non-essential, index 1
	)

	b, err := decodeBox(NewParser(), "ipma", body)
	require.NoError(t, err)
	ipma := b.(*ItemPropertyAssociation)

	ent := ipma.EntryByID(20)
	require.NotNil(t, ent)
	require.Len(t, ent.Associations, 2)
	assert.True(t, ent.Associations[0].Essential)
	assert.Equal(t, uint16(3), ent.Associations[0].Index)
	assert.False(t, ent.Associations[1].Essential)
	assert.Equal(t, uint16(1), ent.Associations[1].Index)
}

func TestItemPropertyAssociationWideIndexes(t *testing.T) {
	// flags&1: 15-bit property indexes.
	body := cat(vf(1, 1), be32(1),
		be32(70000),
		[]byte{1},
		[]byte{0x81, 0x02}, // essential, index 0x102
	)

	b, err := decodeBox(NewParser(), "ipma", body)
	require.NoError(t, err)
	ent := b.(*ItemPropertyAssociation).EntryByID(70000)
	require.NotNil(t, ent)
	assert.True(t, ent.Associations[0].Essential)
	assert.Equal(t, uint16(0x102), ent.Associations[0].Index)
}

func TestItemPropertyContainerOrder(t *testing.T) {
	data := cat(
		mkbox("ftyp", []byte("isom"), be32(0)),
		mkfull("meta", 0, 0,
			mkbox("iprp",
				mkbox("ipco",
					mkfull("ispe", 0, 0, be32(1), be32(1)),
					mkbox("irot", []byte{1}),
					mkfull("ispe", 0, 0, be32(3), be32(3)),
				),
			),
		),
	)

	p := NewParser()
	require.NoError(t, p.ParseBytes(data))

	ipcos := FindAll(p.File(), "ipco")
	require.Len(t, ipcos, 1)
	ipco := ipcos[0].(*ItemPropertyContainerBox)

	// ipma indexes are 1-based positions in source order.
	third, ok := ipco.PropertyAt(3).(*ImageSpatialExtentsProperty)
	require.True(t, ok)
	assert.Equal(t, uint32(3), third.ImageWidth)
	assert.Nil(t, ipco.PropertyAt(0))
	assert.Nil(t, ipco.PropertyAt(4))
}

func TestDataReference(t *testing.T) {
	url0 := mkfull("url ", 0, 0, []byte("http://example.com/media\x00"))
	url1 := mkfull("url ", 0, 1) // self-contained
	urn := mkfull("urn ", 0, 0, []byte("urn:mpeg\x00"), []byte("http://example.com\x00"))
	body := cat(vf(0, 0), be32(3), url0, url1, urn)

	b, err := decodeBox(NewParser(), "dref", body)
	require.NoError(t, err)
	dref := b.(*DataReferenceBox)

	assert.Equal(t, uint32(3), dref.EntryCount)
	require.Len(t, dref.Children(), 3)

	u0 := dref.Children()[0].(*DataEntryURLBox)
	assert.False(t, u0.SelfContained())
	assert.Equal(t, "http://example.com/media", u0.Location)

	u1 := dref.Children()[1].(*DataEntryURLBox)
	assert.True(t, u1.SelfContained())
	assert.Empty(t, u1.Location)

	n := dref.Children()[2].(*DataEntryURNBox)
	assert.Equal(t, "urn:mpeg", n.Name)
	assert.Equal(t, "http://example.com", n.Location)
}

func TestSampleDescription(t *testing.T) {
	entry := mkbox("mp4a", make([]byte, 28))
	body := cat(vf(0, 0), be32(1), entry)

	b, err := decodeBox(NewParser(), "stsd", body)
	require.NoError(t, err)
	stsd := b.(*SampleDescriptionBox)

	assert.Equal(t, uint32(1), stsd.EntryCount)
	require.Len(t, stsd.Children(), 1)
	assert.Equal(t, "mp4a", stsd.Children()[0].Type().String())
}

func TestTimeToSample(t *testing.T) {
	body := cat(vf(0, 0), be32(2),
		be32(100), be32(1024),
		be32(1), be32(512),
	)

	b, err := decodeBox(NewParser(), "stts", body)
	require.NoError(t, err)
	stts := b.(*TimeToSampleBox)

	require.Len(t, stts.Entries, 2)
	assert.Equal(t, uint32(100), stts.Entries[0].SampleCount)
	assert.Equal(t, uint32(1024), stts.Entries[0].SampleDelta)
	assert.Equal(t, uint32(512), stts.Entries[1].SampleDelta)
}

func TestOriginalFormat(t *testing.T) {
	b, err := decodeBox(NewParser(), "frma", []byte("avc1"))
	require.NoError(t, err)
	assert.Equal(t, "avc1", b.(*OriginalFormatBox).DataFormat.String())
}

func TestSchemeType(t *testing.T) {
	b, err := decodeBox(NewParser(), "schm", cat(vf(0, 0), []byte("cenc"), be32(0x00010000)))
	require.NoError(t, err)
	schm := b.(*SchemeTypeBox)
	assert.Equal(t, "cenc", schm.SchemeType.String())
	assert.Equal(t, uint32(0x00010000), schm.SchemeVersion)
	assert.Empty(t, schm.SchemeURI)

	b, err = decodeBox(NewParser(), "schm",
		cat(vf(0, 1), []byte("cenc"), be32(1), []byte("http://scheme\x00")))
	require.NoError(t, err)
	assert.Equal(t, "http://scheme", b.(*SchemeTypeBox).SchemeURI)
}

func TestMetaBox(t *testing.T) {
	body := cat(vf(0, 0),
		mkfull("pitm", 0, 0, be16(1)),
		mkfull("hdlr", 0, 0, be32(0), []byte("pict"), be32(0), be32(0), be32(0), []byte{0}),
	)

	b, err := decodeBox(NewParser(), "meta", body)
	require.NoError(t, err)
	meta := b.(*MetaBox)

	require.Len(t, meta.Children(), 2)
	assert.NotNil(t, meta.GetBox("pitm"))
	assert.NotNil(t, meta.GetBox("hdlr"))
	assert.Nil(t, meta.GetBox("iinf"))
}

func TestItemDataBox(t *testing.T) {
	p := NewParser()
	require.NoError(t, p.RegisterBox("idat", func() Box { return &ItemDataBox{} }))

	b, err := decodeBox(p, "idat", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), b.(*ItemDataBox).Body)
}

func TestHevcConfig(t *testing.T) {
	body := cat(
		[]byte{1},          // configuration version
		[]byte{0x01},       // space 0, tier 0, profile idc 1
		be32(0x60000000),   // profile compatibility
		[]byte{0x90, 0, 0, 0, 0, 0}, // constraint indicator
		[]byte{0x5a},       // level idc 90
		be16(0xf123),       // min spatial segmentation (reserved bits set)
		[]byte{0xfc},       // parallelism 0
		[]byte{0xfd},       // chroma format 1
		[]byte{0xfa},       // bit depth luma - 8 = 2
		[]byte{0xfa},       // bit depth chroma - 8 = 2
		be16(0),            // avg frame rate
		[]byte{0x0f},       // layers 1, nested, length size 4
		[]byte{1},          // one NAL array
		[]byte{0xa0},       // complete, type 32 (VPS)
		be16(1),            // one unit
		be16(3), []byte{0x40, 0x01, 0x0c},
	)

	b, err := decodeBox(NewParser(), "hvcC", body)
	require.NoError(t, err)
	hvcc := b.(*HevcConfigBox)

	assert.Equal(t, uint8(1), hvcc.ConfigurationVersion)
	assert.Equal(t, uint8(1), hvcc.GeneralProfileIDC)
	assert.Equal(t, uint32(0x60000000), hvcc.GeneralProfileCompatibilityFlags)
	assert.Equal(t, [6]byte{0x90, 0, 0, 0, 0, 0}, hvcc.GeneralConstraintIndicatorFlags)
	assert.Equal(t, uint8(90), hvcc.GeneralLevelIDC)
	assert.Equal(t, uint16(0x123), hvcc.MinSpatialSegmentationIDC)
	assert.Equal(t, uint8(1), hvcc.ChromaFormat)
	assert.Equal(t, uint8(2), hvcc.BitDepthLumaMinus8)
	assert.Equal(t, uint8(1), hvcc.NumTemporalLayers)
	assert.Equal(t, uint8(3), hvcc.LengthSizeMinusOne)

	require.Len(t, hvcc.NalArrays, 1)
	na := hvcc.NalArrays[0]
	assert.True(t, na.Completeness)
	assert.Equal(t, uint8(32), na.NalUnitType)
	require.Len(t, na.Units, 1)

	assert.Equal(t, cat(be32(3), []byte{0x40, 0x01, 0x0c}), hvcc.AsHeader())
}
