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

// InfoHandlerType is the info-bag key under which the handler box
// stashes its handler type for later siblings.
const InfoHandlerType = "bmff.handler-type"

// readTime reads a creation or modification time field, which is 64
// bits in version 1 full boxes and 32 bits otherwise.
func readTime(r *Reader, version uint8) (uint64, error) {
	if version == 1 {
		return r.ReadUint64()
	}
	v, err := r.ReadUint32()
	return uint64(v), err
}

// MovieHeaderBox is the "mvhd" box.
type MovieHeaderBox struct {
	FullBox
	CreationTime     uint64
	ModificationTime uint64
	Timescale        uint32
	Duration         uint64
	Rate             float64 // 16.16 fixed point
	Volume           float64 // 8.8 fixed point
	Matrix           [9]int32
	Predefined       [6]uint32
	NextTrackID      uint32
}

func (b *MovieHeaderBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	b.CreationTime, _ = readTime(r, b.Version)
	b.ModificationTime, _ = readTime(r, b.Version)
	b.Timescale, _ = r.ReadUint32()
	b.Duration, _ = readTime(r, b.Version)
	b.Rate, _ = r.ReadFixed1616()
	b.Volume, _ = r.ReadFixed88()
	r.ReadUint16() // reserved
	r.ReadUint32() // reserved
	r.ReadUint32()
	for i := range b.Matrix {
		b.Matrix[i], _ = r.ReadInt32()
	}
	for i := range b.Predefined {
		b.Predefined[i], _ = r.ReadUint32()
	}
	b.NextTrackID, _ = r.ReadUint32()
	return r.Err()
}

// TrackHeaderBox is the "tkhd" box.
type TrackHeaderBox struct {
	FullBox
	CreationTime     uint64
	ModificationTime uint64
	TrackID          uint32
	Duration         uint64
	Layer            int16
	AlternateGroup   int16
	Volume           float64 // 8.8 fixed point
	Matrix           [9]int32
	Width            float64 // 16.16 fixed point
	Height           float64 // 16.16 fixed point
}

func (b *TrackHeaderBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	b.CreationTime, _ = readTime(r, b.Version)
	b.ModificationTime, _ = readTime(r, b.Version)
	b.TrackID, _ = r.ReadUint32()
	r.ReadUint32() // reserved
	b.Duration, _ = readTime(r, b.Version)
	r.ReadUint32() // reserved
	r.ReadUint32()
	b.Layer, _ = r.ReadInt16()
	b.AlternateGroup, _ = r.ReadInt16()
	b.Volume, _ = r.ReadFixed88()
	r.ReadUint16() // reserved
	for i := range b.Matrix {
		b.Matrix[i], _ = r.ReadInt32()
	}
	b.Width, _ = r.ReadFixed1616()
	b.Height, _ = r.ReadFixed1616()
	return r.Err()
}

// MediaHeaderBox is the "mdhd" box.
type MediaHeaderBox struct {
	FullBox
	CreationTime     uint64
	ModificationTime uint64
	Timescale        uint32
	Duration         uint64
	Language         string // ISO 639-2/T code, e.g. "und"
	Predefined       uint16
}

func (b *MediaHeaderBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	b.CreationTime, _ = readTime(r, b.Version)
	b.ModificationTime, _ = readTime(r, b.Version)
	b.Timescale, _ = r.ReadUint32()
	b.Duration, _ = readTime(r, b.Version)
	lang, _ := r.ReadUint16()
	// Three 5-bit fields, each an offset from 0x60.
	b.Language = string([]byte{
		byte(lang>>10&0x1f) + 0x60,
		byte(lang>>5&0x1f) + 0x60,
		byte(lang&0x1f) + 0x60,
	})
	b.Predefined, _ = r.ReadUint16()
	return r.Err()
}

// HandlerBox is the "hdlr" box. Its handler type is published in the
// parser info bag so later siblings (sample descriptions in
// particular) can tell which media kind they describe.
type HandlerBox struct {
	FullBox
	Predefined  uint32
	HandlerType FourCC
	Name        string
}

func (b *HandlerBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	b.Predefined, _ = r.ReadUint32()
	b.HandlerType, _ = r.ReadFourCC()
	r.ReadUint32() // reserved
	r.ReadUint32()
	r.ReadUint32()
	if !r.Ok() {
		return r.Err()
	}
	if r.AnyRemain() {
		// QuickTime writes a counted string here, MP4 a C string.
		name, err := r.ReadString(p.PreferredStringType())
		if err != nil {
			return err
		}
		b.Name = name
	}
	p.SetInfo(InfoHandlerType, b.HandlerType.String())
	return r.Err()
}
