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
	"fmt"
	"math"

	"github.com/blinklabs-io/bitseed/cbor"
)

// ResultAmount is the amount reported by every generated result
const ResultAmount uint32 = 1000

// AttributeID is the result attribute that always holds the request user input
const AttributeID = "id"

const (
	resultFieldAmount     = "amount"
	resultFieldAttributes = "attributes"
	resultFieldContent    = "content"
)

// Result is a generation result. Attribute values are strings or uint32 values
type Result struct {
	Amount     uint32
	Attributes *cbor.OrderedMap
	Content    *cbor.OrderedMap
}

func newResult(userInput string) *Result {
	attrs := cbor.NewOrderedMap()
	attrs.Set(AttributeID, userInput)
	return &Result{
		Amount:     ResultAmount,
		Attributes: attrs,
		Content:    cbor.NewOrderedMap(),
	}
}

// MarshalCBOR encodes the result with its keys in the order amount, attributes, content
func (r *Result) MarshalCBOR() ([]byte, error) {
	attrs := r.Attributes
	if attrs == nil {
		attrs = cbor.NewOrderedMap()
	}
	content := r.Content
	if content == nil {
		content = cbor.NewOrderedMap()
	}
	tmp := cbor.NewOrderedMap()
	tmp.Set(resultFieldAmount, r.Amount)
	tmp.Set(resultFieldAttributes, attrs)
	tmp.Set(resultFieldContent, content)
	return cbor.Encode(tmp)
}

// DecodeResult decodes a result payload (without the frame header). Text and unsigned
// integer attribute values are converted to string and uint32, anything else is kept as
// a cbor.RawMessage
func DecodeResult(payload []byte) (*Result, error) {
	var fields cbor.OrderedMap
	if _, err := cbor.Decode(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: result: %w", ErrMalformedEncoding, err)
	}
	ret := &Result{}
	amountRaw, ok := fields.GetRaw(resultFieldAmount)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, resultFieldAmount)
	}
	if _, err := cbor.Decode(amountRaw, &ret.Amount); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTypeMismatch, resultFieldAmount, err)
	}
	attrs, err := decodeResultMap(&fields, resultFieldAttributes)
	if err != nil {
		return nil, err
	}
	ret.Attributes = cbor.NewOrderedMap()
	for _, key := range attrs.Keys() {
		raw, _ := attrs.GetRaw(key)
		value, err := decodeAttributeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		ret.Attributes.Set(key, value)
	}
	ret.Content, err = decodeResultMap(&fields, resultFieldContent)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func decodeResultMap(fields *cbor.OrderedMap, name string) (*cbor.OrderedMap, error) {
	raw, ok := fields.GetRaw(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	ret := cbor.NewOrderedMap()
	if _, err := cbor.Decode(raw, ret); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTypeMismatch, name, err)
	}
	return ret, nil
}

func decodeAttributeValue(raw cbor.RawMessage) (any, error) {
	switch cbor.MajorType(raw) {
	case cbor.CborTypeTextString:
		var ret string
		if _, err := cbor.Decode(raw, &ret); err != nil {
			return nil, err
		}
		return ret, nil
	case cbor.CborTypeUint:
		var ret uint64
		if _, err := cbor.Decode(raw, &ret); err != nil {
			return nil, err
		}
		if ret > math.MaxUint32 {
			return raw, nil
		}
		return uint32(ret), nil
	default:
		return raw, nil
	}
}

// AttributeUint32 returns the numeric value of a resolved attribute
func (r *Result) AttributeUint32(key string) (uint32, error) {
	value, ok := r.Attributes.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: attribute %q", ErrMissingField, key)
	}
	ret, ok := value.(uint32)
	if !ok {
		return 0, fmt.Errorf("%w: attribute %q holds %T", ErrTypeMismatch, key, value)
	}
	return ret, nil
}
