// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package generator

import "errors"

var (
	// ErrMalformedEncoding is returned when the request payload is not well-formed CBOR
	ErrMalformedEncoding = errors.New("malformed CBOR encoding")
	// ErrMissingField is returned when a required request or range field is absent
	ErrMissingField = errors.New("missing field")
	// ErrTypeMismatch is returned when a required field has the wrong CBOR type
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrMalformedAttrs is returned when the nested attrs document can't be decoded
	ErrMalformedAttrs = errors.New("malformed attrs")
	// ErrInvertedBounds is returned for a range attribute with max < min
	ErrInvertedBounds = errors.New("range max is less than min")
	// ErrRangeOverflow is returned for a range attribute covering all 2^32 values
	ErrRangeOverflow = errors.New("range width overflows 32 bits")
)
