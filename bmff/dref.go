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

// DataReferenceBox is the "dref" box: an entry count followed by that
// many data entry boxes ("url ", "urn ", ...).
type DataReferenceBox struct {
	FullBox
	EntryCount uint32
	Boxes      []Box
}

func (b *DataReferenceBox) Children() []Box { return b.Boxes }

func (b *DataReferenceBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return err
	}
	b.EntryCount = count
	return p.readBoxes(r, &b.Boxes)
}

// selfContainedFlag marks a data entry whose media lives in the same
// file, with no location string.
const selfContainedFlag = 0x000001

// DataEntryURLBox is the "url " box.
type DataEntryURLBox struct {
	FullBox
	Location string
}

// SelfContained reports whether the entry refers to the containing
// file itself.
func (b *DataEntryURLBox) SelfContained() bool {
	return b.Flags&selfContainedFlag != 0
}

func (b *DataEntryURLBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	if b.SelfContained() {
		return nil
	}
	loc, err := r.ReadCString()
	if err != nil {
		return err
	}
	b.Location = loc
	return nil
}

// DataEntryURNBox is the "urn " box.
type DataEntryURNBox struct {
	FullBox
	Name     string
	Location string
}

func (b *DataEntryURNBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	name, err := r.ReadCString()
	if err != nil {
		return err
	}
	b.Name = name
	if r.AnyRemain() {
		b.Location, _ = r.ReadCString()
	}
	return r.Err()
}
