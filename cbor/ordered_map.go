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
	"errors"
	"fmt"
)

// OrderedMap is a CBOR map with text string keys that remembers insertion order.
// Keys are encoded in that order rather than the deterministic sort order used by Encode,
// and decoding keeps the order found in the source data.
//
// A key that appears more than once while decoding keeps its first value
type OrderedMap struct {
	keys   []string
	values map[string]any
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{
		values: map[string]any{},
	}
}

// Len returns the number of keys in the map
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	ret := make([]string, len(m.keys))
	copy(ret, m.keys)
	return ret
}

// Has reports whether the key is present
func (m *OrderedMap) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns the value stored for key
func (m *OrderedMap) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetRaw returns the undecoded CBOR stored for key. This is only useful on a map
// populated by UnmarshalCBOR
func (m *OrderedMap) GetRaw(key string) (RawMessage, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	raw, ok := v.(RawMessage)
	return raw, ok
}

// Set stores value for key, replacing any existing value in place
func (m *OrderedMap) Set(key string, value any) {
	if m.values == nil {
		m.values = map[string]any{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetIfAbsent stores value for key only if the key is not already present. It returns
// true if the value was stored
func (m *OrderedMap) SetIfAbsent(key string, value any) bool {
	if m.Has(key) {
		return false
	}
	m.Set(key, value)
	return true
}

func (m *OrderedMap) MarshalCBOR() ([]byte, error) {
	ret := appendHeader(nil, CborTypeMap, uint64(m.Len()))
	for _, key := range m.keys {
		keyData, err := Encode(key)
		if err != nil {
			return nil, err
		}
		valueData, err := Encode(m.values[key])
		if err != nil {
			return nil, fmt.Errorf("encode value for key %q: %w", key, err)
		}
		ret = append(ret, keyData...)
		ret = append(ret, valueData...)
	}
	return ret, nil
}

func (m *OrderedMap) UnmarshalCBOR(data []byte) error {
	count, headerSize, indefinite := MapInfo(data)
	if count < 0 {
		return fmt.Errorf(
			"expected map (0x%x), got 0x%x",
			CborTypeMap,
			MajorType(data),
		)
	}
	dec, err := NewStreamDecoder(data[headerSize:])
	if err != nil {
		return err
	}
	m.keys = nil
	m.values = map[string]any{}
	for i := 0; indefinite || i < count; i++ {
		next, ok := dec.PeekByte()
		if !ok {
			return errors.New("unexpected end of data in map")
		}
		if indefinite && next == CborBreak {
			break
		}
		if next&CborTypeMask != CborTypeTextString {
			return fmt.Errorf(
				"map key %d: expected text string (0x%x), got 0x%x",
				i,
				CborTypeTextString,
				next&CborTypeMask,
			)
		}
		var key string
		if _, _, err := dec.Decode(&key); err != nil {
			return fmt.Errorf("map key %d: %w", i, err)
		}
		var value RawMessage
		if _, _, err := dec.Decode(&value); err != nil {
			return fmt.Errorf("map value for key %q: %w", key, err)
		}
		m.SetIfAbsent(key, value)
	}
	return nil
}
