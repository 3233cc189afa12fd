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

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/bitseed/cbor"
)

const (
	AttributeTypeRange = "range"

	attributeFieldType = "type"
	attributeFieldData = "data"
	rangeFieldMin      = "min"
	rangeFieldMax      = "max"
)

type AttributeKind int

const (
	AttributeKindUnknown AttributeKind = iota
	AttributeKindRange
)

func (k AttributeKind) String() string {
	switch k {
	case AttributeKindRange:
		return AttributeTypeRange
	default:
		return "unknown"
	}
}

// AttributeSpec is a single parsed attribute definition. Range is only set when Kind is
// AttributeKindRange. TypeName holds the declared type when it is a text string
type AttributeSpec struct {
	Key      string
	Kind     AttributeKind
	TypeName string
	Range    RangeData
}

type RangeData struct {
	Min uint32 `cbor:"min"`
	Max uint32 `cbor:"max"`
}

func (r *RangeData) UnmarshalCBOR(data []byte) error {
	if cbor.MajorType(data) != cbor.CborTypeMap {
		return fmt.Errorf("%w: range data is not a map", ErrTypeMismatch)
	}
	var fields cbor.OrderedMap
	if _, err := cbor.Decode(data, &fields); err != nil {
		return fmt.Errorf("%w: range data: %w", ErrMalformedAttrs, err)
	}
	for _, name := range []string{rangeFieldMin, rangeFieldMax} {
		if !fields.Has(name) {
			return fmt.Errorf("%w: range data has no %q", ErrMissingField, name)
		}
	}
	if err := cbor.DecodeGeneric(data, r); err != nil {
		var typeErr *cbor.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: range bounds must be 32-bit unsigned integers: %w", ErrTypeMismatch, err)
		}
		return fmt.Errorf("%w: range data: %w", ErrMalformedAttrs, err)
	}
	return nil
}

// Value maps the fingerprint hash into the closed interval [Min, Max]
func (r RangeData) Value(hash uint32) (uint32, error) {
	if r.Max < r.Min {
		return 0, fmt.Errorf("%w: min=%d max=%d", ErrInvertedBounds, r.Min, r.Max)
	}
	// The interval width is max - min + 1, which needs 33 bits for the full range
	if r.Min == 0 && r.Max == math.MaxUint32 {
		return 0, fmt.Errorf("%w: min=%d max=%d", ErrRangeOverflow, r.Min, r.Max)
	}
	return r.Min + hash%(r.Max-r.Min+1), nil
}

// ParseAttributeSpecs decodes the nested attrs document into attribute specs, in array order
// and then in key order within each array element.
//
// Parsing is permissive: a document that is not an array, an element that is not a map, and an
// entry that is not a map holding both "type" and "data" produce no specs. Entries with a type
// other than "range" are returned with AttributeKindUnknown. A "range" entry with bad bounds is
// an error. A maxEntries above zero limits the number of array elements
func ParseAttributeSpecs(attrs []byte, maxEntries int) ([]AttributeSpec, error) {
	var doc cbor.RawMessage
	if _, err := cbor.Decode(attrs, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAttrs, err)
	}
	if cbor.MajorType(doc) != cbor.CborTypeArray {
		return nil, nil
	}
	var elements []cbor.RawMessage
	if _, err := cbor.Decode(doc, &elements); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAttrs, err)
	}
	if maxEntries > 0 && len(elements) > maxEntries {
		return nil, fmt.Errorf(
			"%w: %d entries exceeds limit of %d",
			ErrMalformedAttrs,
			len(elements),
			maxEntries,
		)
	}
	var ret []AttributeSpec
	for idx, element := range elements {
		if cbor.MajorType(element) != cbor.CborTypeMap {
			continue
		}
		var entries cbor.OrderedMap
		if _, err := cbor.Decode(element, &entries); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformedAttrs, idx, err)
		}
		for _, key := range entries.Keys() {
			definition, _ := entries.GetRaw(key)
			spec, ok, err := parseAttributeSpec(key, definition)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", key, err)
			}
			if ok {
				ret = append(ret, spec)
			}
		}
	}
	return ret, nil
}

// parseAttributeSpec returns false when the definition is not a candidate attribute
func parseAttributeSpec(key string, definition cbor.RawMessage) (AttributeSpec, bool, error) {
	if cbor.MajorType(definition) != cbor.CborTypeMap {
		return AttributeSpec{}, false, nil
	}
	var fields cbor.OrderedMap
	if _, err := cbor.Decode(definition, &fields); err != nil {
		return AttributeSpec{}, false, fmt.Errorf("%w: %w", ErrMalformedAttrs, err)
	}
	typeRaw, hasType := fields.GetRaw(attributeFieldType)
	dataRaw, hasData := fields.GetRaw(attributeFieldData)
	if !hasType || !hasData {
		return AttributeSpec{}, false, nil
	}
	spec := AttributeSpec{
		Key:  key,
		Kind: AttributeKindUnknown,
	}
	if cbor.MajorType(typeRaw) != cbor.CborTypeTextString {
		return spec, true, nil
	}
	if _, err := cbor.Decode(typeRaw, &spec.TypeName); err != nil {
		return AttributeSpec{}, false, fmt.Errorf("%w: %w", ErrMalformedAttrs, err)
	}
	switch spec.TypeName {
	case AttributeTypeRange:
		if err := spec.Range.UnmarshalCBOR(dataRaw); err != nil {
			return AttributeSpec{}, false, err
		}
		spec.Kind = AttributeKindRange
	default:
		// Other types are recognized as attributes but contribute no value
	}
	return spec, true, nil
}

// ResolveAttributes computes a value for each spec from the fingerprint hash and stores it in
// attrs. A key that already has a value, from "id" or an earlier spec, is left unchanged.
// It returns the number of values stored
func ResolveAttributes(specs []AttributeSpec, hash uint32, attrs *cbor.OrderedMap) (int, error) {
	stored := 0
	for _, spec := range specs {
		switch spec.Kind {
		case AttributeKindRange:
			value, err := spec.Range.Value(hash)
			if err != nil {
				return stored, fmt.Errorf("attribute %q: %w", spec.Key, err)
			}
			if attrs.SetIfAbsent(spec.Key, value) {
				stored++
			}
		case AttributeKindUnknown:
			// Skipped
		default:
			return stored, fmt.Errorf("attribute %q: unsupported kind %d", spec.Key, spec.Kind)
		}
	}
	return stored, nil
}
