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

// Package heif reads HEIF containers, as found in Apple HEIC images,
// on top of the bmff structural parser. This package does not decode
// images; it only reads the metadata and addresses item payloads.
package heif

import (
	"errors"
	"fmt"
	"io"

	"github.com/jdeng/goisobmff/bmff"
)

var (
	// ErrNoMeta is returned when the container has no meta box.
	ErrNoMeta = errors.New("heif: no meta box")

	// ErrNoEXIF is returned by File.EXIF when a file does not
	// contain an EXIF item.
	ErrNoEXIF = errors.New("heif: no EXIF found")

	// ErrUnknownItem is returned by File.ItemByID for unknown items.
	ErrUnknownItem = errors.New("heif: unknown item")
)

// File is an item-level view over a parsed HEIF container.
//
// Methods on File should not be called concurrently.
type File struct {
	src  bmff.Stream
	root *bmff.File

	ftyp         *bmff.FileTypeBox
	handler      *bmff.HandlerBox
	primary      *bmff.PrimaryItemBox
	itemInfo     *bmff.ItemInfoBox
	location     *bmff.ItemLocationBox
	reference    *bmff.ItemReferenceBox
	itemData     *bmff.ItemDataBox
	properties   *bmff.ItemPropertyContainerBox
	associations []*bmff.ItemPropertyAssociation
}

// Open parses the HEIF file at path. The returned File keeps the file
// open for item data access; the caller must Close it.
func Open(path string) (*File, error) {
	s, err := bmff.NewFileStream(path)
	if err != nil {
		return nil, err
	}
	f, err := fromStream(s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return f, nil
}

// FromBytes parses an in-memory HEIF container.
func FromBytes(data []byte) (*File, error) {
	return fromStream(bmff.NewMemStream(data))
}

func fromStream(s bmff.Stream) (*File, error) {
	p := bmff.NewParser()
	p.RegisterBox("idat", func() bmff.Box { return &bmff.ItemDataBox{} })
	if err := p.ParseStream(s); err != nil {
		return nil, err
	}

	f := &File{src: s, root: p.File()}
	if ft, ok := f.root.GetBox("ftyp").(*bmff.FileTypeBox); ok {
		f.ftyp = ft
	}
	meta, ok := f.root.GetBox("meta").(*bmff.MetaBox)
	if !ok {
		return nil, ErrNoMeta
	}
	for _, c := range meta.Children() {
		switch v := c.(type) {
		case *bmff.HandlerBox:
			f.handler = v
		case *bmff.PrimaryItemBox:
			f.primary = v
		case *bmff.ItemInfoBox:
			f.itemInfo = v
		case *bmff.ItemLocationBox:
			f.location = v
		case *bmff.ItemReferenceBox:
			f.reference = v
		case *bmff.ItemDataBox:
			f.itemData = v
		case *bmff.ContainerBox:
			if !v.Type().EqualString("iprp") {
				continue
			}
			if ipco, ok := v.GetBox("ipco").(*bmff.ItemPropertyContainerBox); ok {
				f.properties = ipco
			}
			for _, a := range v.GetBoxes("ipma") {
				if ipma, ok := a.(*bmff.ItemPropertyAssociation); ok {
					f.associations = append(f.associations, ipma)
				}
			}
		}
	}
	return f, nil
}

// Close releases the underlying stream, when it owns one.
func (f *File) Close() error {
	if c, ok := f.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Root returns the parsed box tree.
func (f *File) Root() *bmff.File { return f.root }

// FileType returns the ftyp box, or nil.
func (f *File) FileType() *bmff.FileTypeBox { return f.ftyp }

// HandlerType returns the meta handler type ("pict" for still
// images), or the empty string.
func (f *File) HandlerType() string {
	if f.handler == nil {
		return ""
	}
	return f.handler.HandlerType.String()
}

// Item represents one addressable item of the container.
type Item struct {
	f *File

	ID         uint32
	Info       *bmff.ItemInfoEntry
	Location   *bmff.ItemLocationEntry
	Properties []bmff.Box
	References []*bmff.ItemReferenceEntry
}

// PrimaryItem returns the container's primary item.
func (f *File) PrimaryItem() (*Item, error) {
	if f.primary == nil {
		return nil, errors.New("heif: file lacks primary item box")
	}
	return f.ItemByID(f.primary.ItemID)
}

// Items returns all items declared by the item info box, in source
// order.
func (f *File) Items() []*Item {
	if f.itemInfo == nil {
		return nil
	}
	var out []*Item
	for _, e := range f.itemInfo.Entries() {
		if it, err := f.ItemByID(e.ItemID); err == nil {
			out = append(out, it)
		}
	}
	return out
}

// ItemByID returns the item with the given ID. The error is
// ErrUnknownItem when no info entry declares the ID.
func (f *File) ItemByID(id uint32) (*Item, error) {
	it := &Item{f: f, ID: id}
	if f.itemInfo != nil {
		for _, e := range f.itemInfo.Entries() {
			if e.ItemID == id {
				it.Info = e
				break
			}
		}
	}
	if it.Info == nil {
		return nil, ErrUnknownItem
	}
	if f.location != nil {
		it.Location = f.location.EntryByID(id)
	}
	if f.reference != nil {
		for _, ref := range f.reference.References() {
			if ref.FromItemID == id {
				it.References = append(it.References, ref)
			}
		}
	}
	if f.properties != nil {
		for _, ipma := range f.associations {
			ent := ipma.EntryByID(id)
			if ent == nil {
				continue
			}
			for _, assoc := range ent.Associations {
				if prop := f.properties.PropertyAt(assoc.Index); prop != nil {
					it.Properties = append(it.Properties, prop)
				}
			}
			break
		}
	}
	return it, nil
}

// Reference returns the item's reference entry of the given relation
// type ("dimg", "thmb", "cdsc"), or nil.
func (it *Item) Reference(typ string) *bmff.ItemReferenceEntry {
	for _, r := range it.References {
		if r.Type().EqualString(typ) {
			return r
		}
	}
	return nil
}

// SpatialExtents returns the item's width and height from its ispe
// property, if present.
func (it *Item) SpatialExtents() (width, height int, ok bool) {
	for _, p := range it.Properties {
		if p, ok := p.(*bmff.ImageSpatialExtentsProperty); ok {
			return int(p.ImageWidth), int(p.ImageHeight), true
		}
	}
	return 0, 0, false
}

// Rotation returns the item's rotation in degrees counter-clockwise:
// 0, 90, 180 or 270.
func (it *Item) Rotation() int {
	for _, p := range it.Properties {
		if p, ok := p.(*bmff.ImageRotation); ok {
			return p.Degrees()
		}
	}
	return 0
}

// HevcConfig returns the item's hvcC property, if present.
func (it *Item) HevcConfig() (*bmff.HevcConfigBox, bool) {
	for _, p := range it.Properties {
		if p, ok := p.(*bmff.HevcConfigBox); ok {
			return p, true
		}
	}
	return nil, false
}

// VisualDimensions returns the item's width and height after
// correcting for rotation.
func (it *Item) VisualDimensions() (width, height int, ok bool) {
	width, height, ok = it.SpatialExtents()
	if it.Rotation()%180 == 90 {
		width, height = height, width
	}
	return width, height, ok
}

// maxItemSize caps a single item payload read.
const maxItemSize = 200 << 20

// GetItemData reads the item's payload, honoring construction method
// 0 (absolute file offsets plus base offset) and 1 (offsets into the
// idat box). Extents are concatenated in order.
func (f *File) GetItemData(it *Item) ([]byte, error) {
	loc := it.Location
	if loc == nil {
		return nil, errors.New("heif: item has no location")
	}
	if len(loc.Extents) == 0 {
		return nil, errors.New("heif: item location has no extents")
	}

	var total uint64
	for _, ext := range loc.Extents {
		total += ext.Length
	}
	if total > maxItemSize {
		return nil, fmt.Errorf("heif: declared size %d exceeds threshold of %d bytes", total, maxItemSize)
	}

	switch loc.ConstructionMethod {
	case 0:
		out := make([]byte, 0, total)
		for _, ext := range loc.Extents {
			if err := f.src.Seek(loc.BaseOffset + ext.Offset); err != nil {
				return nil, err
			}
			buf := make([]byte, ext.Length)
			if _, err := io.ReadFull(f.src, buf); err != nil {
				return nil, fmt.Errorf("heif: reading item %d extent: %w", it.ID, err)
			}
			out = append(out, buf...)
		}
		return out, nil
	case 1:
		if f.itemData == nil {
			return nil, errors.New("heif: no idat for item")
		}
		out := make([]byte, 0, total)
		for _, ext := range loc.Extents {
			end := ext.Offset + ext.Length
			if end > uint64(len(f.itemData.Body)) {
				return nil, errors.New("heif: idat extent out of bounds")
			}
			out = append(out, f.itemData.Body[ext.Offset:end]...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("heif: unsupported construction method %d", loc.ConstructionMethod)
	}
}
