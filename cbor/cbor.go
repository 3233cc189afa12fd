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

package cbor

import (
	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	CborTypeUint       uint8 = 0x00
	CborTypeNegInt     uint8 = 0x20
	CborTypeByteString uint8 = 0x40
	CborTypeTextString uint8 = 0x60
	CborTypeArray      uint8 = 0x80
	CborTypeMap        uint8 = 0xa0
	CborTypeTag        uint8 = 0xc0
	CborTypeSimple     uint8 = 0xe0

	// Only the top 3 bits are used to specify the type
	CborTypeMask uint8 = 0xe0

	// Max value able to be stored in a single byte without type prefix
	CborMaxUintSimple uint8 = 0x17

	// Terminates an indefinite-length item
	CborBreak uint8 = 0xff

	// Marks an indefinite-length item in the additional info bits
	cborIndefinite uint8 = 0x1f
)

// Create an alias for RawMessage for convenience
type RawMessage = _cbor.RawMessage

// MajorType returns the major type bits of the first item in the CBOR data, or
// CborTypeSimple when the data is empty
func MajorType(data []byte) uint8 {
	if len(data) == 0 {
		return CborTypeSimple
	}
	return data[0] & CborTypeMask
}
