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

package test

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline. Whitespace anywhere in the string is ignored
// so long fixtures can be grouped by field
func DecodeHexString(hexData string) []byte {
	hexData = strings.Join(strings.Fields(hexData), "")
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// TextString returns the CBOR encoding of a short (< 24 byte) text string
func TextString(s string) []byte {
	if len(s) > 23 {
		panic(fmt.Sprintf("text string too long for short form: %q", s))
	}
	return append([]byte{0x60 | byte(len(s))}, s...)
}

// Concat joins CBOR fragments into a single byte slice
func Concat(parts ...[]byte) []byte {
	var ret []byte
	for _, part := range parts {
		ret = append(ret, part...)
	}
	return ret
}
