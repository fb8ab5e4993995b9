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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// FourCC is a four-character box or brand code. Codes are
// case-sensitive and may be space-padded ("url ", "urn ").
type FourCC [4]byte

func (t FourCC) String() string { return string(t[:]) }

func (t FourCC) EqualString(s string) bool {
	// See https://github.com/golang/go/issues/24765
	return len(s) == 4 && s[0] == t[0] && s[1] == t[1] && s[2] == t[2] && s[3] == t[3]
}

// fourCC converts a known-good literal. Registration of user types
// goes through RegisterBox, which validates the length instead.
func fourCC(s string) FourCC {
	if len(s) != 4 {
		panic("bogus fourCC length")
	}
	return FourCC{s[0], s[1], s[2], s[3]}
}

// StringType selects which on-wire string flavour ReadString tries
// first. QuickTime-era boxes use counted (Pascal) strings where MP4
// uses NUL-terminated ones, and the box layout alone cannot tell the
// two apart.
type StringType int

const (
	StringTypeNULTerminated StringType = iota
	StringTypePascal
)

// Reader layers protocol-aware primitive reads over a Stream. Errors
// are sticky, as in bufReader upstream: after the first failure every
// subsequent read is a no-op returning the same error, so decoders
// can read a run of fields and check once at the end.
type Reader struct {
	s   Stream
	err error
}

// NewReader returns a Reader over s.
func NewReader(s Stream) *Reader {
	return &Reader{s: s}
}

// Ok reports whether all reads so far have been error-free.
func (r *Reader) Ok() bool { return r.err == nil }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Stream returns the underlying stream.
func (r *Reader) Stream() Stream { return r.s }

// AnyRemain reports whether at least one readable byte remains.
func (r *Reader) AnyRemain() bool {
	return r.err == nil && r.s.HasBytes()
}

// Remaining returns the number of bytes left in the stream.
func (r *Reader) Remaining() uint64 { return r.s.Remaining() }

// Tell returns the current absolute position.
func (r *Reader) Tell() uint64 { return r.s.Tell() }

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n uint64) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if n == 0 {
		return nil, nil
	}
	if n > r.s.Remaining() {
		r.err = io.ErrUnexpectedEOF
		return nil, r.err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.s, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return nil, err
	}
	return buf, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

func (r *Reader) ReadUint24() (uint32, error) {
	buf, err := r.ReadBytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// ReadUintN reads a big-endian unsigned integer of 0, 8, 16, 24, 32
// or 64 bits. A width of 0 reads nothing and yields 0, which is how
// iloc treats its optional size fields.
func (r *Reader) ReadUintN(bits uint8) (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	switch bits {
	case 0:
		return 0, nil
	case 8, 16, 24, 32, 64:
	default:
		r.err = fmt.Errorf("bmff: invalid integer width %d", bits)
		return 0, r.err
	}
	buf, err := r.ReadBytes(uint64(bits) / 8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadFixed1616 reads a signed 16.16 fixed-point value.
func (r *Reader) ReadFixed1616() (float64, error) {
	v, err := r.ReadInt32()
	return float64(v) / 65536, err
}

// ReadFixed88 reads a signed 8.8 fixed-point value.
func (r *Reader) ReadFixed88() (float64, error) {
	v, err := r.ReadInt16()
	return float64(v) / 256, err
}

// ReadFourCC reads a four-character code.
func (r *Reader) ReadFourCC() (FourCC, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return FourCC{}, err
	}
	var t FourCC
	copy(t[:], buf)
	return t, nil
}

// ReadVersionFlags reads a full-box header: an 8-bit version followed
// by 24 bits of flags.
func (r *Reader) ReadVersionFlags() (uint8, uint32, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return 0, 0, err
	}
	flags, err := r.ReadUint24()
	return version, flags, err
}

// ReadCString reads a NUL-terminated string, consuming the NUL. It
// fails with io.ErrUnexpectedEOF when no NUL occurs before the end of
// the stream.
func (r *Reader) ReadCString() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	var buf bytes.Buffer
	var b [1]byte
	for {
		if !r.s.HasBytes() {
			r.err = io.ErrUnexpectedEOF
			return "", r.err
		}
		if _, err := io.ReadFull(r.s, b[:]); err != nil {
			r.err = err
			return "", err
		}
		if b[0] == 0 {
			return buf.String(), nil
		}
		buf.WriteByte(b[0])
	}
}

// ReadPString reads a length-prefixed (Pascal) string: one length
// byte followed by that many bytes, no trailing NUL.
func (r *Reader) ReadPString() (string, error) {
	n, err := r.ReadUint8()
	if err != nil {
		return "", err
	}
	buf, err := r.ReadBytes(uint64(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadString reads a string whose on-wire flavour is ambiguous,
// trying the preferred encoding first and falling back to the other.
func (r *Reader) ReadString(preferred StringType) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if preferred == StringTypePascal {
		if s, ok := r.tryPString(); ok {
			return s, nil
		}
		return r.ReadCString()
	}
	if s, ok := r.tryCString(); ok {
		return s, nil
	}
	return r.ReadPString()
}

// tryCString reads a NUL-terminated string, restoring the position
// and reporting !ok when no NUL occurs before the end of the stream.
func (r *Reader) tryCString() (string, bool) {
	pos := r.s.Tell()
	left := r.s.Remaining()
	buf := make([]byte, left)
	if _, err := io.ReadFull(r.s, buf); err != nil {
		r.s.Seek(pos)
		return "", false
	}
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		r.s.Seek(pos)
		return "", false
	}
	if err := r.s.Seek(pos + uint64(i) + 1); err != nil {
		r.err = err
		return "", false
	}
	return string(buf[:i]), true
}

// tryPString reads a counted string, restoring the position and
// reporting !ok when the declared length does not fit the stream.
func (r *Reader) tryPString() (string, bool) {
	pos := r.s.Tell()
	left := r.s.Remaining()
	if left == 0 {
		return "", false
	}
	var b [1]byte
	if _, err := io.ReadFull(r.s, b[:]); err != nil {
		r.s.Seek(pos)
		return "", false
	}
	n := uint64(b[0])
	if n > left-1 {
		r.s.Seek(pos)
		return "", false
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.s, buf); err != nil {
		r.s.Seek(pos)
		return "", false
	}
	return string(buf), true
}
