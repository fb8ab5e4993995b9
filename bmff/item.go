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

// ItemInfoBox is the "iinf" box: an entry count followed by that many
// child boxes, normally "infe" entries.
type ItemInfoBox struct {
	FullBox
	EntryCount uint32
	Boxes      []Box
}

func (b *ItemInfoBox) Children() []Box { return b.Boxes }

func (b *ItemInfoBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	if b.Version < 2 {
		count, err := r.ReadUint16()
		if err != nil {
			return err
		}
		b.EntryCount = uint32(count)
	} else {
		count, err := r.ReadUint32()
		if err != nil {
			return err
		}
		b.EntryCount = count
	}
	return p.readBoxes(r, &b.Boxes)
}

// Entries returns the decoded "infe" children in source order.
func (b *ItemInfoBox) Entries() []*ItemInfoEntry {
	var out []*ItemInfoEntry
	for _, c := range b.Boxes {
		if e, ok := c.(*ItemInfoEntry); ok {
			out = append(out, e)
		}
	}
	return out
}

// ItemInfoEntry is an "infe" box.
type ItemInfoEntry struct {
	FullBox
	ItemID          uint32
	ProtectionIndex uint16
	ItemType        FourCC // versions >= 2 only
	ItemName        string
	ContentType     string
	ContentEncoding string
	ItemURIType     string // item type "uri " only
}

func (b *ItemInfoEntry) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	if b.Version < 2 {
		id, _ := r.ReadUint16()
		b.ItemID = uint32(id)
		b.ProtectionIndex, _ = r.ReadUint16()
		if !r.Ok() {
			return r.Err()
		}
		b.ItemName, _ = r.ReadCString()
		if r.AnyRemain() {
			b.ContentType, _ = r.ReadCString()
		}
		if r.AnyRemain() {
			b.ContentEncoding, _ = r.ReadCString()
		}
		// Version 1 may carry an item info extension; it is not
		// decoded, only tolerated.
		return r.Err()
	}

	if b.Version == 2 {
		id, _ := r.ReadUint16()
		b.ItemID = uint32(id)
	} else {
		b.ItemID, _ = r.ReadUint32()
	}
	b.ProtectionIndex, _ = r.ReadUint16()
	b.ItemType, _ = r.ReadFourCC()
	if !r.Ok() {
		return r.Err()
	}
	b.ItemName, _ = r.ReadCString()
	switch {
	case b.ItemType.EqualString("mime"):
		b.ContentType, _ = r.ReadCString()
		if r.AnyRemain() {
			b.ContentEncoding, _ = r.ReadCString()
		}
	case b.ItemType.EqualString("uri "):
		b.ItemURIType, _ = r.ReadCString()
	}
	return r.Err()
}

// ItemLocationExtent is one extent of an item location entry.
type ItemLocationExtent struct {
	Index  uint64
	Offset uint64
	Length uint64
}

// ItemLocationEntry locates one item's data.
type ItemLocationEntry struct {
	ItemID             uint32
	ConstructionMethod uint8 // versions >= 1; 0 = file offset, 1 = idat, 2 = item
	DataReferenceIndex uint16
	BaseOffset         uint64
	Extents            []ItemLocationExtent
}

// ItemLocationBox is the "iloc" box.
type ItemLocationBox struct {
	FullBox
	OffsetSize     uint8 // nibbles: byte widths of the extent fields
	LengthSize     uint8
	BaseOffsetSize uint8
	IndexSize      uint8 // versions >= 1
	Items          []ItemLocationEntry
}

func (b *ItemLocationBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	sizes, err := r.ReadUint8()
	if err != nil {
		return err
	}
	b.OffsetSize = sizes >> 4
	b.LengthSize = sizes & 15
	sizes, err = r.ReadUint8()
	if err != nil {
		return err
	}
	b.BaseOffsetSize = sizes >> 4
	if b.Version > 0 {
		b.IndexSize = sizes & 15
	}

	var count uint32
	if b.Version < 2 {
		c, err := r.ReadUint16()
		if err != nil {
			return err
		}
		count = uint32(c)
	} else {
		count, err = r.ReadUint32()
		if err != nil {
			return err
		}
	}

	for i := uint32(0); i < count && r.Ok(); i++ {
		var ent ItemLocationEntry
		if b.Version < 2 {
			id, _ := r.ReadUint16()
			ent.ItemID = uint32(id)
		} else {
			ent.ItemID, _ = r.ReadUint32()
		}
		if b.Version > 0 {
			method, _ := r.ReadUint16()
			ent.ConstructionMethod = uint8(method & 15)
		}
		ent.DataReferenceIndex, _ = r.ReadUint16()
		ent.BaseOffset, _ = r.ReadUintN(b.BaseOffsetSize * 8)
		extents, _ := r.ReadUint16()
		for j := uint16(0); j < extents && r.Ok(); j++ {
			var ext ItemLocationExtent
			if b.Version > 0 && b.IndexSize > 0 {
				ext.Index, _ = r.ReadUintN(b.IndexSize * 8)
			}
			ext.Offset, _ = r.ReadUintN(b.OffsetSize * 8)
			ext.Length, _ = r.ReadUintN(b.LengthSize * 8)
			ent.Extents = append(ent.Extents, ext)
		}
		if r.Ok() {
			b.Items = append(b.Items, ent)
		}
	}
	return r.Err()
}

// EntryByID returns the location entry for an item ID, or nil.
func (b *ItemLocationBox) EntryByID(id uint32) *ItemLocationEntry {
	for i := range b.Items {
		if b.Items[i].ItemID == id {
			return &b.Items[i]
		}
	}
	return nil
}
