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

// Box is a node of the parsed tree.
//
// Implementations outside this package must embed BaseBox (or a type
// that embeds it, such as FullBox or ContainerBox); the embedded
// header carries the wire size, type and offset filled in by the
// framer before ReadData is called.
type Box interface {
	// Type returns the four-character code.
	Type() FourCC

	// Size returns the total byte length of the box as it appeared
	// on the wire, including its header.
	Size() uint64

	// Offset returns the absolute position where the header began.
	Offset() uint64

	// Children returns the ordered child boxes, empty for leaves.
	Children() []Box

	// ReadData decodes the box body from r, which is bounded to the
	// body length. A decoder may stop early; trailing bytes are
	// skipped by the framer.
	ReadData(p *Parser, r *Reader) error

	setHeader(h boxHeader)
}

// BaseBox is the default Box implementation and the opaque variant
// used for unrecognized types and failed decoders.
type BaseBox struct {
	boxType  FourCC
	size     uint64
	offset   uint64
	userType []byte
	raw      []byte
}

func (b *BaseBox) Type() FourCC    { return b.boxType }
func (b *BaseBox) Size() uint64    { return b.size }
func (b *BaseBox) Offset() uint64  { return b.offset }
func (b *BaseBox) Children() []Box { return nil }

// UserType returns the 16-byte extended type of a "uuid" box, or nil.
func (b *BaseBox) UserType() []byte { return b.userType }

// Data returns the raw body bytes when they were retained: always for
// failed decoders, and for plain boxes of unregistered types when
// OptionKeepBoxData is set. Typed and container boxes do not retain
// their raw body.
func (b *BaseBox) Data() []byte { return b.raw }

func (b *BaseBox) setHeader(h boxHeader) {
	b.boxType = h.boxType
	b.size = h.size
	b.offset = h.offset
	b.userType = h.userType
}

// ReadData for a plain box skips the body, slurping it first when the
// parser was asked to keep raw data.
func (b *BaseBox) ReadData(p *Parser, r *Reader) error {
	if p.HasOption(OptionKeepBoxData) {
		raw, err := r.ReadBytes(r.Remaining())
		if err != nil {
			return err
		}
		b.raw = raw
		return nil
	}
	return r.Stream().Seek(r.Tell() + r.Remaining())
}

// FullBox is a box whose body starts with an 8-bit version and 24
// bits of flags.
type FullBox struct {
	BaseBox
	Version uint8
	Flags   uint32
}

// ReadVersionFlags decodes the full-box header. Decoders of concrete
// full boxes call this first and then branch on Version for the
// fields whose width changes.
func (b *FullBox) ReadVersionFlags(r *Reader) error {
	version, flags, err := r.ReadVersionFlags()
	if err != nil {
		return err
	}
	b.Version = version
	b.Flags = flags
	return nil
}

func (b *FullBox) ReadData(p *Parser, r *Reader) error {
	return b.ReadVersionFlags(r)
}

// ContainerBox is a box whose body is a sequence of child boxes.
type ContainerBox struct {
	BaseBox
	Boxes []Box
}

func (b *ContainerBox) Children() []Box { return b.Boxes }

func (b *ContainerBox) ReadData(p *Parser, r *Reader) error {
	return p.readBoxes(r, &b.Boxes)
}

// AddChild appends a child, preserving source order.
func (b *ContainerBox) AddChild(child Box) {
	b.Boxes = append(b.Boxes, child)
}

// GetBox returns the first direct child of the given type, or nil.
func (b *ContainerBox) GetBox(typ string) Box {
	for _, c := range b.Boxes {
		if c.Type().EqualString(typ) {
			return c
		}
	}
	return nil
}

// GetBoxes returns all direct children of the given type.
func (b *ContainerBox) GetBoxes(typ string) []Box {
	var out []Box
	for _, c := range b.Boxes {
		if c.Type().EqualString(typ) {
			out = append(out, c)
		}
	}
	return out
}

// File is the synthetic root of a parsed stream. Its children are the
// top-level boxes; it has no header of its own, so Size and Offset
// report zero.
type File struct {
	ContainerBox
}

// FindAll walks the tree under root in depth-first source order and
// returns every box of the given type.
func FindAll(root Box, typ string) []Box {
	var out []Box
	var walk func(b Box)
	walk = func(b Box) {
		for _, c := range b.Children() {
			if c.Type().EqualString(typ) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}
