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

// Package fingerprint computes the request fingerprint that generated attribute
// values are derived from. It is not suitable for any security purpose
package fingerprint

import (
	"hash/fnv"
)

// Sum32 returns the 32-bit FNV-1a hash of the UTF-8 bytes of text
func Sum32(text string) uint32 {
	h := fnv.New32a()
	// Writes to a hash.Hash never fail
	_, _ = h.Write([]byte(text))
	return h.Sum32()
}

// Of returns the fingerprint for a seed and user input. The two strings are
// concatenated with no separator, so ("ab", "c") and ("a", "bc") collide
func Of(seed string, userInput string) uint32 {
	return Sum32(seed + userInput)
}
