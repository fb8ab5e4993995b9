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

// infoIrefVersion is the info-bag key under which iref publishes its
// version while its children decode. The reference entries need it:
// version 1 widens the item IDs to 32 bits, and the entries alone
// cannot see their parent's header.
const infoIrefVersion = "bmff.iref-version"

// ItemReferenceBox is the "iref" box: a sequence of reference-entry
// boxes whose own four-character code names the relation ("dimg",
// "thmb", "cdsc", ...).
type ItemReferenceBox struct {
	FullBox
	Boxes []Box
}

func (b *ItemReferenceBox) Children() []Box { return b.Boxes }

func (b *ItemReferenceBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	p.SetInfo(infoIrefVersion, b.Version)
	defer p.SetInfo(infoIrefVersion, nil)
	return p.readBoxes(r, &b.Boxes)
}

// References returns the decoded reference entries in source order.
func (b *ItemReferenceBox) References() []*ItemReferenceEntry {
	var out []*ItemReferenceEntry
	for _, c := range b.Boxes {
		if e, ok := c.(*ItemReferenceEntry); ok {
			out = append(out, e)
		}
	}
	return out
}

// ItemReferenceEntry is a single reference box inside "iref". The
// default registry binds it to "dimg", "thmb" and "cdsc"; other
// relation codes can be registered by the caller.
type ItemReferenceEntry struct {
	BaseBox
	FromItemID uint32
	ToItemIDs  []uint32
}

func (b *ItemReferenceEntry) ReadData(p *Parser, r *Reader) error {
	version, _ := p.Info(infoIrefVersion).(uint8)

	if version == 0 {
		id, _ := r.ReadUint16()
		b.FromItemID = uint32(id)
	} else {
		b.FromItemID, _ = r.ReadUint32()
	}
	count, err := r.ReadUint16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < count && r.Ok(); i++ {
		if version == 0 {
			id, _ := r.ReadUint16()
			b.ToItemIDs = append(b.ToItemIDs, uint32(id))
		} else {
			id, _ := r.ReadUint32()
			b.ToItemIDs = append(b.ToItemIDs, id)
		}
	}
	return r.Err()
}
