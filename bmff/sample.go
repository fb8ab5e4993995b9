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

// SampleDescriptionBox is the "stsd" box: an entry count followed by
// that many sample entry boxes. Sample entries use the generic box
// framing; their codec-specific payloads are left opaque unless a
// decoder is registered for the entry type.
type SampleDescriptionBox struct {
	FullBox
	EntryCount uint32
	Boxes      []Box
}

func (b *SampleDescriptionBox) Children() []Box { return b.Boxes }

func (b *SampleDescriptionBox) ReadData(p *Parser, r *Reader) error {
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

// TimeToSampleEntry is one run of samples sharing a delta.
type TimeToSampleEntry struct {
	SampleCount uint32
	SampleDelta uint32
}

// TimeToSampleBox is the "stts" box.
type TimeToSampleBox struct {
	FullBox
	Entries []TimeToSampleEntry
}

func (b *TimeToSampleBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count && r.Ok(); i++ {
		var ent TimeToSampleEntry
		ent.SampleCount, _ = r.ReadUint32()
		ent.SampleDelta, _ = r.ReadUint32()
		if r.Ok() {
			b.Entries = append(b.Entries, ent)
		}
	}
	return r.Err()
}
