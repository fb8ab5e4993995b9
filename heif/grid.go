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
	"encoding/binary"
	"fmt"
)

// Grid is the payload of a "grid" derived image item: the output
// dimensions and the tile layout. The tiles themselves are the items
// referenced by the grid item's "dimg" references, in row-major
// order.
type Grid struct {
	Rows    int
	Columns int
	Width   int
	Height  int
}

// ParseGrid decodes a grid item payload.
func ParseGrid(data []byte) (*Grid, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("heif: grid payload too short (%d bytes)", len(data))
	}
	// byte 0 is the version, byte 1 the flags; flag bit 0 widens the
	// output fields to 32 bits.
	flags := data[1]
	g := &Grid{
		Rows:    int(data[2]) + 1,
		Columns: int(data[3]) + 1,
	}
	if flags&1 != 0 {
		if len(data) < 12 {
			return nil, fmt.Errorf("heif: grid payload too short (%d bytes)", len(data))
		}
		g.Width = int(binary.BigEndian.Uint32(data[4:8]))
		g.Height = int(binary.BigEndian.Uint32(data[8:12]))
	} else {
		g.Width = int(binary.BigEndian.Uint16(data[4:6]))
		g.Height = int(binary.BigEndian.Uint16(data[6:8]))
	}
	return g, nil
}

// Grid reads and decodes the grid payload of a derived image item.
func (f *File) Grid(it *Item) (*Grid, error) {
	data, err := f.GetItemData(it)
	if err != nil {
		return nil, err
	}
	return ParseGrid(data)
}
