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

// Package bmff reads ISO Base Media File Format (ISO/IEC 14496-12)
// containers, as used by MP4, QuickTime, HEIF and friends.
//
// The package is a read-only structural parser: it recovers the box
// hierarchy and decodes each recognized box into typed fields, keeping
// unrecognized boxes as opaque nodes so a caller can still traverse
// them. Media payloads are never interpreted.
//
// A Parser owns a registry of box factories keyed by four-character
// code. Parsing walks the stream box by box, hands each typed box a
// view bounded to its declared body, and assembles the results into a
// File tree.
package bmff
