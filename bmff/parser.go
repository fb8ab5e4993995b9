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
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Option is a parser option bit. Options never change how bytes are
// decoded, only which optional data a decoder retains.
type Option uint64

const (
	// OptionKeepBoxData makes plain boxes of unregistered types retain
	// their raw body bytes. Typed and container boxes keep only their
	// decoded fields and children.
	OptionKeepBoxData Option = 1 << iota
)

// topLevelTypes are the box types accepted at the start of a stream.
// Anything else fails the sniff with ErrNotISOMedia.
var topLevelTypes = []string{
	"ftyp", "sinf", "wide", "free", "skip", "mdat", "moov", "pnot",
}

// Parser parses ISOBMFF streams into a File tree. It owns a registry
// of box factories seeded with the default bindings; both the
// registry and the per-parse state are per-Parser, so distinct
// Parsers may run in parallel while a single Parser must not be
// shared between concurrent Parse calls.
type Parser struct {
	types      map[string]func() Box
	file       *File
	path       string
	stringType StringType
	options    uint64
	info       map[string]interface{}
	log        log.FieldLogger
}

// NewParser returns a Parser with the default boxes registered.
func NewParser() *Parser {
	p := &Parser{
		types:      make(map[string]func() Box),
		stringType: StringTypeNULTerminated,
		info:       make(map[string]interface{}),
		log:        log.StandardLogger(),
	}
	p.registerDefaultBoxes()
	return p
}

// SetLogger replaces the parser's logger. The default is the logrus
// standard logger, which only emits the per-box records at Debug
// level.
func (p *Parser) SetLogger(l log.FieldLogger) { p.log = l }

// RegisterBox binds a factory to a four-character code, overwriting
// any previous binding. The code must be exactly four bytes.
func (p *Parser) RegisterBox(typ string, create func() Box) error {
	if len(typ) != 4 {
		return fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	p.types[typ] = create
	return nil
}

// RegisterContainerBox binds typ to a plain container whose body is a
// sequence of child boxes.
func (p *Parser) RegisterContainerBox(typ string) error {
	return p.RegisterBox(typ, func() Box { return &ContainerBox{} })
}

// CreateBox constructs an empty box for the given type, falling back
// to the opaque variant for unregistered types.
func (p *Parser) CreateBox(typ FourCC) Box {
	if create, ok := p.types[typ.String()]; ok && create != nil {
		return create()
	}
	return &BaseBox{}
}

// File returns the root of the last successful parse, or nil.
func (p *Parser) File() *File { return p.file }

// Path returns the path of the last file parsed with Parse, if any.
func (p *Parser) Path() string { return p.path }

// PreferredStringType returns the string flavour tried first when a
// box allows either encoding.
func (p *Parser) PreferredStringType() StringType { return p.stringType }

func (p *Parser) SetPreferredStringType(t StringType) { p.stringType = t }

// Options returns the raw option bit-set.
func (p *Parser) Options() uint64 { return p.options }

func (p *Parser) SetOptions(v uint64) { p.options = v }

func (p *Parser) AddOption(o Option) { p.options |= uint64(o) }

func (p *Parser) RemoveOption(o Option) { p.options &^= uint64(o) }

func (p *Parser) HasOption(o Option) bool { return p.options&uint64(o) != 0 }

// Info returns the ancillary value stored under key during the
// current parse, or nil. Decoders use the info bag to pass context to
// boxes decoded after them (the handler type for later boxes, the iref
// version for iref's own entries) without global state.
func (p *Parser) Info(key string) interface{} { return p.info[key] }

// SetInfo stores an ancillary value for the current parse. A nil
// value removes the key.
func (p *Parser) SetInfo(key string, value interface{}) {
	if value == nil {
		delete(p.info, key)
		return
	}
	p.info[key] = value
}

// Parse opens and parses the file at path.
func (p *Parser) Parse(path string) error {
	s, err := NewFileStream(path)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := p.ParseStream(s); err != nil {
		return err
	}
	p.path = path
	return nil
}

// ParseBytes parses an in-memory buffer.
func (p *Parser) ParseBytes(data []byte) error {
	return p.ParseStream(NewMemStream(data))
}

// ParseStream parses s from its current position to its end. On
// success File returns the populated root; on error the previous tree
// is discarded.
func (p *Parser) ParseStream(s Stream) error {
	p.file = nil
	p.path = ""
	p.info = make(map[string]interface{})

	if err := p.sniff(s); err != nil {
		return err
	}

	file := &File{}
	r := NewReader(s)
	if err := file.ReadData(p, r); err != nil {
		return err
	}
	p.file = file
	return nil
}

// sniff checks that the stream starts with a plausible top-level box:
// the type code at bytes 4..8 of the first header must be one of the
// accepted set. The position is restored afterwards.
func (p *Parser) sniff(s Stream) error {
	if !s.HasBytes() {
		return fmt.Errorf("%w: empty stream", ErrNotISOMedia)
	}
	start := s.Tell()
	var hdr [8]byte
	if _, err := io.ReadFull(s, hdr[:]); err != nil {
		return fmt.Errorf("%w: stream shorter than one box header", ErrNotISOMedia)
	}
	if err := s.Seek(start); err != nil {
		return err
	}
	typ := string(hdr[4:8])
	for _, t := range topLevelTypes {
		if typ == t {
			return nil
		}
	}
	return fmt.Errorf("%w: unexpected first box type %q", ErrNotISOMedia, typ)
}

func (p *Parser) registerDefaultBoxes() {
	for _, typ := range []string{
		"moov", "trak", "edts", "mdia", "minf", "stbl", "mvex", "moof",
		"traf", "mfra", "meco", "mere", "dinf", "ipro", "sinf", "iprp",
		"fiin", "paen", "strk", "tapt", "schi",
	} {
		p.RegisterContainerBox(typ)
	}

	p.RegisterBox("ftyp", func() Box { return &FileTypeBox{} })
	p.RegisterBox("mvhd", func() Box { return &MovieHeaderBox{} })
	p.RegisterBox("tkhd", func() Box { return &TrackHeaderBox{} })
	p.RegisterBox("meta", func() Box { return &MetaBox{} })
	p.RegisterBox("hdlr", func() Box { return &HandlerBox{} })
	p.RegisterBox("mdhd", func() Box { return &MediaHeaderBox{} })
	p.RegisterBox("pitm", func() Box { return &PrimaryItemBox{} })
	p.RegisterBox("iinf", func() Box { return &ItemInfoBox{} })
	p.RegisterBox("dref", func() Box { return &DataReferenceBox{} })
	p.RegisterBox("url ", func() Box { return &DataEntryURLBox{} })
	p.RegisterBox("urn ", func() Box { return &DataEntryURNBox{} })
	p.RegisterBox("iloc", func() Box { return &ItemLocationBox{} })
	p.RegisterBox("iref", func() Box { return &ItemReferenceBox{} })
	p.RegisterBox("infe", func() Box { return &ItemInfoEntry{} })
	p.RegisterBox("irot", func() Box { return &ImageRotation{} })
	p.RegisterBox("hvcC", func() Box { return &HevcConfigBox{} })
	p.RegisterBox("dimg", func() Box { return &ItemReferenceEntry{} })
	p.RegisterBox("thmb", func() Box { return &ItemReferenceEntry{} })
	p.RegisterBox("cdsc", func() Box { return &ItemReferenceEntry{} })
	p.RegisterBox("colr", func() Box { return &ColourInformationBox{} })
	p.RegisterBox("ispe", func() Box { return &ImageSpatialExtentsProperty{} })
	p.RegisterBox("ipma", func() Box { return &ItemPropertyAssociation{} })
	p.RegisterBox("pixi", func() Box { return &PixelInformationProperty{} })
	p.RegisterBox("ipco", func() Box { return &ItemPropertyContainerBox{} })
	p.RegisterBox("stsd", func() Box { return &SampleDescriptionBox{} })
	p.RegisterBox("stts", func() Box { return &TimeToSampleBox{} })
	p.RegisterBox("frma", func() Box { return &OriginalFormatBox{} })
	p.RegisterBox("schm", func() Box { return &SchemeTypeBox{} })
}

func logFields(h boxHeader) log.Fields {
	return log.Fields{
		"type":   h.boxType.String(),
		"size":   h.size,
		"offset": h.offset,
	}
}
