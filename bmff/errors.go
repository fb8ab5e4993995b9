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

import "errors"

var (
	// ErrNotISOMedia is returned by Parse when the stream does not
	// start with a recognized top-level box type.
	ErrNotISOMedia = errors.New("bmff: data is not an ISO media file")

	// ErrInvalidSize is returned when a box declares a size smaller
	// than its own header.
	ErrInvalidSize = errors.New("bmff: invalid box size")

	// ErrTruncated is returned when a box declares a size that
	// extends past its enclosing container or the end of the stream.
	ErrTruncated = errors.New("bmff: truncated box")

	// ErrInvalidType is returned by RegisterBox for type codes that
	// are not exactly four bytes long.
	ErrInvalidType = errors.New("bmff: box type must be 4 characters long")
)
