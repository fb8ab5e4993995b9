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

// ItemPropertyContainerBox is the "ipco" box. Child order matters:
// ipma associations refer to properties by their 1-based position
// here.
type ItemPropertyContainerBox struct {
	ContainerBox
}

// PropertyAt returns the property at a 1-based association index, or
// nil when the index is out of range.
func (b *ItemPropertyContainerBox) PropertyAt(index uint16) Box {
	if index == 0 || int(index) > len(b.Boxes) {
		return nil
	}
	return b.Boxes[index-1]
}

// ImageSpatialExtentsProperty is the "ispe" box.
type ImageSpatialExtentsProperty struct {
	FullBox
	ImageWidth  uint32
	ImageHeight uint32
}

func (b *ImageSpatialExtentsProperty) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	b.ImageWidth, _ = r.ReadUint32()
	b.ImageHeight, _ = r.ReadUint32()
	return r.Err()
}

// ImageRotation is the "irot" box.
type ImageRotation struct {
	BaseBox
	Angle uint8 // quadrants counter-clockwise, 0..3
}

func (b *ImageRotation) ReadData(p *Parser, r *Reader) error {
	v, err := r.ReadUint8()
	if err != nil {
		return err
	}
	b.Angle = v & 3
	return nil
}

// Degrees returns the rotation in degrees: 0, 90, 180 or 270.
func (b *ImageRotation) Degrees() int { return int(b.Angle) * 90 }

// PixelInformationProperty is the "pixi" box.
type PixelInformationProperty struct {
	FullBox
	BitsPerChannel []uint8
}

func (b *PixelInformationProperty) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	channels, err := r.ReadUint8()
	if err != nil {
		return err
	}
	for i := uint8(0); i < channels && r.Ok(); i++ {
		bits, _ := r.ReadUint8()
		b.BitsPerChannel = append(b.BitsPerChannel, bits)
	}
	return r.Err()
}

// ItemProperty is one association of an ipma entry: a property index
// into ipco plus the essential bit.
type ItemProperty struct {
	Essential bool
	Index     uint16 // 1-based into ipco, 0 = no property
}

// ItemPropertyAssociationEntry associates one item with its
// properties.
type ItemPropertyAssociationEntry struct {
	ItemID       uint32
	Associations []ItemProperty
}

// ItemPropertyAssociation is the "ipma" box.
type ItemPropertyAssociation struct {
	FullBox
	Entries []ItemPropertyAssociationEntry
}

func (b *ItemPropertyAssociation) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count && r.Ok(); i++ {
		var ent ItemPropertyAssociationEntry
		if b.Version < 1 {
			id, _ := r.ReadUint16()
			ent.ItemID = uint32(id)
		} else {
			ent.ItemID, _ = r.ReadUint32()
		}
		assocCount, _ := r.ReadUint8()
		for j := uint8(0); j < assocCount && r.Ok(); j++ {
			first, _ := r.ReadUint8()
			prop := ItemProperty{Essential: first&0x80 != 0}
			first &^= 0x80
			if b.Flags&1 != 0 {
				// 15-bit property index.
				second, _ := r.ReadUint8()
				prop.Index = uint16(first)<<8 | uint16(second)
			} else {
				prop.Index = uint16(first)
			}
			ent.Associations = append(ent.Associations, prop)
		}
		if r.Ok() {
			b.Entries = append(b.Entries, ent)
		}
	}
	return r.Err()
}

// EntryByID returns the association entry for an item ID, or nil.
func (b *ItemPropertyAssociation) EntryByID(id uint32) *ItemPropertyAssociationEntry {
	for i := range b.Entries {
		if b.Entries[i].ItemID == id {
			return &b.Entries[i]
		}
	}
	return nil
}

// ColourInformationBox is the "colr" box. The colour type selects the
// payload: "nclx" carries coded colour parameters, "rICC" and "prof"
// carry an ICC profile.
type ColourInformationBox struct {
	BaseBox
	ColourType        FourCC
	ColourPrimaries   uint16 // nclx
	TransferFunction  uint16 // nclx
	MatrixCoefficient uint16 // nclx
	FullRange         bool   // nclx
	ICCProfile        []byte // rICC / prof
}

func (b *ColourInformationBox) ReadData(p *Parser, r *Reader) error {
	var err error
	b.ColourType, err = r.ReadFourCC()
	if err != nil {
		return err
	}
	switch {
	case b.ColourType.EqualString("nclx"):
		b.ColourPrimaries, _ = r.ReadUint16()
		b.TransferFunction, _ = r.ReadUint16()
		b.MatrixCoefficient, _ = r.ReadUint16()
		rangeFlag, _ := r.ReadUint8()
		b.FullRange = rangeFlag&0x80 != 0
	case b.ColourType.EqualString("rICC"), b.ColourType.EqualString("prof"):
		b.ICCProfile, _ = r.ReadBytes(r.Remaining())
	}
	return r.Err()
}
