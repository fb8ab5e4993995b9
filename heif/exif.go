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

package heif

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIFItemID returns the item ID of the EXIF part, or 0 if not found.
func (f *File) EXIFItemID() uint32 {
	if f.itemInfo == nil {
		return 0
	}
	for _, e := range f.itemInfo.Entries() {
		if e.ItemType.EqualString("Exif") {
			return e.ItemID
		}
	}
	return 0
}

// EXIF returns the raw EXIF (TIFF) payload from the file. The item
// body starts with a 4-byte offset to the TIFF header, which is
// stripped. The error is ErrNoEXIF when the file carries no EXIF
// item.
func (f *File) EXIF() ([]byte, error) {
	id := f.EXIFItemID()
	if id == 0 {
		return nil, ErrNoEXIF
	}
	it, err := f.ItemByID(id)
	if err != nil {
		return nil, err
	}
	data, err := f.GetItemData(it)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("heif: EXIF item too short (%d bytes)", len(data))
	}
	off := binary.BigEndian.Uint32(data[:4])
	if uint64(4)+uint64(off) > uint64(len(data)) {
		return nil, fmt.Errorf("heif: EXIF TIFF header offset %d out of bounds", off)
	}
	return data[4+off:], nil
}

// DecodeExif returns the file's EXIF metadata in decoded form.
func (f *File) DecodeExif() (*exif.Exif, error) {
	raw, err := f.EXIF()
	if err != nil {
		return nil, err
	}
	return exif.Decode(bytes.NewReader(raw))
}
