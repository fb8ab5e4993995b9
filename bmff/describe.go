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
	"reflect"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/davecgh/go-spew/spew"
)

var baseBoxType = reflect.TypeOf(BaseBox{})

// Fields returns the decoded fields of a box as an ordered
// name→value dictionary, in declaration order. Header attributes and
// children are not included; callers render those through the Box
// interface. Four-character codes are rendered as strings.
func Fields(b Box) *ordereddict.Dict {
	d := ordereddict.NewDict()
	v := reflect.ValueOf(b)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		collectFields(v, d)
	}
	return d
}

func collectFields(v reflect.Value, d *ordereddict.Dict) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			if f.Type == baseBoxType {
				continue
			}
			if f.Type.Kind() == reflect.Struct {
				collectFields(v.Field(i), d)
			}
			continue
		}
		if f.PkgPath != "" {
			continue
		}
		switch val := v.Field(i).Interface().(type) {
		case FourCC:
			d.Set(f.Name, val.String())
		case []FourCC:
			strs := make([]string, len(val))
			for i, c := range val {
				strs[i] = c.String()
			}
			d.Set(f.Name, strs)
		case []Box:
			// Children are traversed through the Box interface.
		default:
			d.Set(f.Name, val)
		}
	}
}

// Dump writes an indented rendering of the tree under b: one line per
// box with its header, one line per decoded field.
func Dump(w io.Writer, b Box) {
	dump(w, b, 0)
}

func dump(w io.Writer, b Box, depth int) {
	indent := strings.Repeat("  ", depth)
	if _, ok := b.(*File); ok {
		fmt.Fprintf(w, "%s[file]\n", indent)
	} else {
		fmt.Fprintf(w, "%s[%s] size=%d offset=%d\n", indent, b.Type(), b.Size(), b.Offset())
	}
	fields := Fields(b)
	for _, k := range fields.Keys() {
		v, _ := fields.Get(k)
		fmt.Fprintf(w, "%s  - %s: %v\n", indent, k, v)
	}
	for _, c := range b.Children() {
		dump(w, c, depth+1)
	}
}

// Debug dumps a value to standard output in full detail.
func Debug(v interface{}) {
	spew.Dump(v)
}
