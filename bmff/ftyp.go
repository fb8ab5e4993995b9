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

// FileTypeBox is the "ftyp" box.
type FileTypeBox struct {
	BaseBox
	MajorBrand       FourCC
	MinorVersion     uint32
	CompatibleBrands []FourCC
}

func (b *FileTypeBox) ReadData(p *Parser, r *Reader) error {
	var err error
	b.MajorBrand, _ = r.ReadFourCC()
	b.MinorVersion, err = r.ReadUint32()
	if err != nil {
		return err
	}
	for r.Remaining() >= 4 {
		brand, err := r.ReadFourCC()
		if err != nil {
			return err
		}
		b.CompatibleBrands = append(b.CompatibleBrands, brand)
	}
	return r.Err()
}

// HasCompatibleBrand reports whether brand occurs in the compatible
// brand list.
func (b *FileTypeBox) HasCompatibleBrand(brand string) bool {
	for _, c := range b.CompatibleBrands {
		if c.EqualString(brand) {
			return true
		}
	}
	return false
}
