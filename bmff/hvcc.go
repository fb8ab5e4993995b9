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

// HevcNalArray is one array of NAL units of a single type inside an
// HEVC decoder configuration record.
type HevcNalArray struct {
	Completeness bool
	NalUnitType  uint8
	Units        [][]byte
}

// HevcConfigBox is the "hvcC" box: an HEVCDecoderConfigurationRecord
// (ISO/IEC 14496-15).
type HevcConfigBox struct {
	BaseBox
	ConfigurationVersion             uint8
	GeneralProfileSpace              uint8
	GeneralTierFlag                  uint8
	GeneralProfileIDC                uint8
	GeneralProfileCompatibilityFlags uint32
	GeneralConstraintIndicatorFlags  [6]byte
	GeneralLevelIDC                  uint8
	MinSpatialSegmentationIDC        uint16
	ParallelismType                  uint8
	ChromaFormat                     uint8
	BitDepthLumaMinus8               uint8
	BitDepthChromaMinus8             uint8
	AvgFrameRate                     uint16
	ConstantFrameRate                uint8
	NumTemporalLayers                uint8
	TemporalIDNested                 uint8
	LengthSizeMinusOne               uint8
	NalArrays                        []HevcNalArray
}

func (b *HevcConfigBox) ReadData(p *Parser, r *Reader) error {
	b.ConfigurationVersion, _ = r.ReadUint8()

	ch, _ := r.ReadUint8()
	b.GeneralProfileSpace = ch >> 6 & 3
	b.GeneralTierFlag = ch >> 5 & 1
	b.GeneralProfileIDC = ch & 0x1f

	b.GeneralProfileCompatibilityFlags, _ = r.ReadUint32()
	for i := range b.GeneralConstraintIndicatorFlags {
		b.GeneralConstraintIndicatorFlags[i], _ = r.ReadUint8()
	}

	b.GeneralLevelIDC, _ = r.ReadUint8()
	seg, _ := r.ReadUint16()
	b.MinSpatialSegmentationIDC = seg & 0x0fff
	par, _ := r.ReadUint8()
	b.ParallelismType = par & 3
	chroma, _ := r.ReadUint8()
	b.ChromaFormat = chroma & 3
	luma, _ := r.ReadUint8()
	b.BitDepthLumaMinus8 = luma & 7
	chromaDepth, _ := r.ReadUint8()
	b.BitDepthChromaMinus8 = chromaDepth & 7
	b.AvgFrameRate, _ = r.ReadUint16()

	ch, _ = r.ReadUint8()
	b.ConstantFrameRate = ch >> 6 & 3
	b.NumTemporalLayers = ch >> 3 & 7
	b.TemporalIDNested = ch >> 2 & 1
	b.LengthSizeMinusOne = ch & 3

	numArrays, err := r.ReadUint8()
	if err != nil {
		return err
	}
	for i := uint8(0); i < numArrays && r.Ok(); i++ {
		ch, _ := r.ReadUint8()
		na := HevcNalArray{
			Completeness: ch&0x80 != 0,
			NalUnitType:  ch & 0x3f,
		}
		numUnits, _ := r.ReadUint16()
		for j := uint16(0); j < numUnits && r.Ok(); j++ {
			size, _ := r.ReadUint16()
			if size == 0 {
				continue
			}
			unit, err := r.ReadBytes(uint64(size))
			if err != nil {
				return err
			}
			na.Units = append(na.Units, unit)
		}
		b.NalArrays = append(b.NalArrays, na)
	}
	return r.Err()
}

// AsHeader serializes the NAL units as a length-prefixed parameter
// stream, the form an HEVC decoder expects ahead of the samples.
func (b *HevcConfigBox) AsHeader() []byte {
	var out []byte
	for _, na := range b.NalArrays {
		for _, unit := range na.Units {
			n := len(unit)
			out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
			out = append(out, unit...)
		}
	}
	return out
}
