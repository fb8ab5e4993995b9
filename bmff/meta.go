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

// MetaBox is the "meta" box: a full box whose remaining body is a
// sequence of child boxes.
type MetaBox struct {
	FullBox
	Boxes []Box
}

func (b *MetaBox) Children() []Box { return b.Boxes }

func (b *MetaBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	return p.readBoxes(r, &b.Boxes)
}

// GetBox returns the first direct child of the given type, or nil.
func (b *MetaBox) GetBox(typ string) Box {
	for _, c := range b.Boxes {
		if c.Type().EqualString(typ) {
			return c
		}
	}
	return nil
}

// PrimaryItemBox is the "pitm" box.
type PrimaryItemBox struct {
	FullBox
	ItemID uint32
}

func (b *PrimaryItemBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	if b.Version == 0 {
		id, err := r.ReadUint16()
		b.ItemID = uint32(id)
		return err
	}
	id, err := r.ReadUint32()
	b.ItemID = id
	return err
}

// ItemDataBox is the "idat" box: raw item payload addressed by iloc
// entries with construction method 1. Not part of the default
// registry; callers that need it (the heif package does) register it
// explicitly.
type ItemDataBox struct {
	BaseBox
	Body []byte
}

func (b *ItemDataBox) ReadData(p *Parser, r *Reader) error {
	data, err := r.ReadBytes(r.Remaining())
	if err != nil {
		return err
	}
	b.Body = data
	return nil
}
