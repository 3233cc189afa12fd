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
	"bytes"
	"encoding/binary"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
			// Never emit indefinite-length items
			IndefLength: _cbor.IndefLengthForbidden,
		}
		cachedEncMode, cachedEncModeErr = opts.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

// Encode encodes data using Core Deterministic Encoding (RFC 8949 section 4.2.1).
// The same logical data always produces identical bytes
func Encode(data any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	enc := em.NewEncoder(buf)
	err = enc.Encode(data)
	return buf.Bytes(), err
}

// appendHeader appends a definite-length item header using the shortest form for the length
func appendHeader(buf []byte, majorType uint8, length uint64) []byte {
	switch {
	case length <= uint64(CborMaxUintSimple):
		return append(buf, majorType|uint8(length))
	case length <= 0xff:
		return append(buf, majorType|24, uint8(length))
	case length <= 0xffff:
		buf = append(buf, majorType|25)
		return binary.BigEndian.AppendUint16(buf, uint16(length))
	case length <= 0xffffffff:
		buf = append(buf, majorType|26)
		return binary.BigEndian.AppendUint32(buf, uint32(length))
	default:
		buf = append(buf, majorType|27)
		return binary.BigEndian.AppendUint64(buf, length)
	}
}
