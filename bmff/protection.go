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

// OriginalFormatBox is the "frma" box.
type OriginalFormatBox struct {
	BaseBox
	DataFormat FourCC
}

func (b *OriginalFormatBox) ReadData(p *Parser, r *Reader) error {
	format, err := r.ReadFourCC()
	if err != nil {
		return err
	}
	b.DataFormat = format
	return nil
}

// schemeURIFlag marks a schm box that carries a scheme URI.
const schemeURIFlag = 0x000001

// SchemeTypeBox is the "schm" box.
type SchemeTypeBox struct {
	FullBox
	SchemeType    FourCC
	SchemeVersion uint32
	SchemeURI     string
}

func (b *SchemeTypeBox) ReadData(p *Parser, r *Reader) error {
	if err := b.ReadVersionFlags(r); err != nil {
		return err
	}
	b.SchemeType, _ = r.ReadFourCC()
	b.SchemeVersion, _ = r.ReadUint32()
	if !r.Ok() {
		return r.Err()
	}
	if b.Flags&schemeURIFlag != 0 {
		uri, err := r.ReadCString()
		if err != nil {
			return err
		}
		b.SchemeURI = uri
	}
	return nil
}
