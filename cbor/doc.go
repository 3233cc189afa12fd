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

// Package cbor provides CBOR encoding/decoding utilities for generator requests and results.
//
// This package wraps github.com/fxamacker/cbor/v2 so that the rest of the module
// shares one decoder configuration and one deterministic encoder configuration.
//
// # Key Types
//
//   - RawMessage: Deferred decoding (like json.RawMessage)
//   - OrderedMap: Text-keyed map that encodes keys in insertion order
//   - StreamDecoder: Sequential decoding with byte offsets
//
// # Ordering
//
// Encode sorts Go map keys (Core Deterministic Encoding). Result objects must keep the
// order in which attributes were resolved, so they are built from OrderedMap values:
//
//	attrs := cbor.NewOrderedMap()
//	attrs.Set("id", userInput)
//	attrs.SetIfAbsent("power", uint32(71))
//	data, err := cbor.Encode(attrs)
//
// Decoding into an OrderedMap keeps the source order and stores each value as a
// RawMessage, so callers can check the major type of a value before decoding it.
package cbor
