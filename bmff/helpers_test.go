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

import "encoding/binary"

// Test fixtures are hand-assembled byte streams; the helpers below
// keep the box size arithmetic out of the test bodies.

func be16(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func be32(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func be64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// mkbox frames a body with a 32-bit size and the given type.
func mkbox(typ string, parts ...[]byte) []byte {
	body := cat(parts...)
	out := cat(be32(uint32(8+len(body))), []byte(typ))
	return append(out, body...)
}

// mkfull frames a full box: version, 24-bit flags, then the body.
func mkfull(typ string, version uint8, flags uint32, parts ...[]byte) []byte {
	vf := []byte{version, byte(flags >> 16), byte(flags >> 8), byte(flags)}
	return mkbox(typ, cat(append([][]byte{vf}, parts...)...))
}

// decodeBox runs a single typed decoder over a body, the way the
// framer would: through the registry, with a reader bounded to the
// body.
func decodeBox(p *Parser, typ string, body []byte) (Box, error) {
	b := p.CreateBox(fourCC(typ))
	b.setHeader(boxHeader{size: uint64(8 + len(body)), headerLen: 8, boxType: fourCC(typ)})
	r := NewReader(NewMemStream(body))
	err := b.ReadData(p, r)
	if err == nil {
		err = r.Err()
	}
	return b, err
}
