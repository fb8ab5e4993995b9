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

import (
	"errors"
	"fmt"
	"io"
)

// boxHeader is a decoded box preamble. size is the total length on
// the wire including the header itself.
type boxHeader struct {
	offset    uint64
	size      uint64
	headerLen uint64
	boxType   FourCC
	userType  []byte
}

func (h boxHeader) bodyLen() uint64 { return h.size - h.headerLen }

// readBoxHeader decodes the length/type preamble in all its forms:
// 32-bit size, 64-bit size (size==1), to-end-of-parent (size==0), and
// the 16-byte extended type of "uuid" boxes. bound is the absolute
// end of the enclosing container.
func readBoxHeader(r *Reader, bound uint64) (boxHeader, error) {
	h := boxHeader{offset: r.Tell(), headerLen: 8}

	size32, err := r.ReadUint32()
	if err != nil {
		return h, fmt.Errorf("%w: short box header: %v", ErrTruncated, err)
	}
	h.boxType, err = r.ReadFourCC()
	if err != nil {
		return h, fmt.Errorf("%w: short box header: %v", ErrTruncated, err)
	}

	switch size32 {
	case 0:
		// Box extends to the end of the enclosing container.
		h.size = bound - h.offset
	case 1:
		size64, err := r.ReadUint64()
		if err != nil {
			return h, fmt.Errorf("%w: short 64-bit box size: %v", ErrTruncated, err)
		}
		h.headerLen += 8
		h.size = size64
	default:
		h.size = uint64(size32)
	}

	if h.boxType.EqualString("uuid") {
		h.userType, err = r.ReadBytes(16)
		if err != nil {
			return h, fmt.Errorf("%w: short uuid extended type: %v", ErrTruncated, err)
		}
		h.headerLen += 16
	}

	if h.size < h.headerLen {
		return h, fmt.Errorf("%w: box %q declares %d bytes, header alone is %d",
			ErrInvalidSize, h.boxType, h.size, h.headerLen)
	}
	if h.offset+h.size > bound {
		return h, fmt.Errorf("%w: box %q at %d declares %d bytes, %d available",
			ErrTruncated, h.boxType, h.offset, h.size, bound-h.offset)
	}
	return h, nil
}

// isFramingErr reports whether err belongs to the framing class,
// which is fatal to the whole parse. Typed-decoder errors are
// contained instead.
func isFramingErr(err error) bool {
	return errors.Is(err, ErrInvalidSize) || errors.Is(err, ErrTruncated)
}

// readBoxes decodes a container body: it repeatedly frames a child,
// constructs it through the registry, and hands the child a view
// bounded to its body. The walk always advances by the declared size,
// so decoder under-reads are discarded. A failed typed decoder is
// replaced by an opaque box carrying the raw body; framing errors
// abort the parse.
func (p *Parser) readBoxes(r *Reader, dst *[]Box) error {
	s := r.Stream()
	bound := s.Tell() + s.Remaining()

	for s.Remaining() >= 8 {
		h, err := readBoxHeader(r, bound)
		if err != nil {
			return err
		}

		child := p.CreateBox(h.boxType)
		child.setHeader(h)

		p.log.WithFields(logFields(h)).Debug("read box")

		body := newSubStream(s, h.bodyLen())
		br := NewReader(body)
		err = child.ReadData(p, br)
		if err == nil {
			err = br.Err()
		}
		if err != nil {
			if isFramingErr(err) {
				return err
			}
			p.log.WithFields(logFields(h)).WithError(err).Warn("box decoder failed, keeping raw data")
			child, err = p.opaqueBox(s, h)
			if err != nil {
				return err
			}
		}

		// Advance past the declared size regardless of how much the
		// decoder consumed.
		if err := s.Seek(h.offset + h.size); err != nil {
			return err
		}
		*dst = append(*dst, child)
	}

	// Fewer than 8 bytes cannot hold another header; the tail is
	// ignored.
	if s.Remaining() > 0 {
		return s.Seek(bound)
	}
	return nil
}

// opaqueBox re-reads the body of a box whose decoder failed and
// retains it as raw bytes on a plain box.
func (p *Parser) opaqueBox(s Stream, h boxHeader) (Box, error) {
	b := &BaseBox{}
	b.setHeader(h)
	if err := s.Seek(h.offset + h.headerLen); err != nil {
		return nil, err
	}
	raw := make([]byte, h.bodyLen())
	if _, err := io.ReadFull(s, raw); err != nil {
		return nil, fmt.Errorf("%w: re-reading failed box %q: %v", ErrTruncated, h.boxType, err)
	}
	b.raw = raw
	return b, nil
}
