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
	"github.com/blinklabs-io/bitseed/frame"
)

const (
	requestFieldAttrs     = "attrs"
	requestFieldSeed      = "seed"
	requestFieldUserInput = "user_input"
)

// Request is a decoded generation request. Attrs holds the nested CBOR attrs document
type Request struct {
	Seed      string
	UserInput string
	Attrs     []byte
}

func NewRequest(seed string, userInput string, attrs []byte) *Request {
	return &Request{
		Seed:      seed,
		UserInput: userInput,
		Attrs:     attrs,
	}
}

// MarshalCBOR encodes the request the way deployment tooling does: keys in the order attrs,
// seed, user_input, with attrs as an array of byte values rather than a byte string
func (r *Request) MarshalCBOR() ([]byte, error) {
	attrs := make([]uint16, len(r.Attrs))
	for i, b := range r.Attrs {
		attrs[i] = uint16(b)
	}
	tmp := cbor.NewOrderedMap()
	tmp.Set(requestFieldAttrs, attrs)
	tmp.Set(requestFieldSeed, r.Seed)
	tmp.Set(requestFieldUserInput, r.UserInput)
	return cbor.Encode(tmp)
}

// EncodeRequest returns the framed CBOR encoding of the request
func EncodeRequest(r *Request) ([]byte, error) {
	payload, err := cbor.Encode(r)
	if err != nil {
		return nil, err
	}
	return frame.Encode(payload)
}

// DecodeRequest decodes a request payload (without the frame header). Unknown keys are
// ignored. The attrs field may be a byte string or an array of unsigned integers no
// larger than 255
func DecodeRequest(payload []byte) (*Request, error) {
	var raw cbor.RawMessage
	if _, err := cbor.Decode(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: request: %w", ErrMalformedEncoding, err)
	}
	if cbor.MajorType(raw) != cbor.CborTypeMap {
		return nil, fmt.Errorf("%w: request is not a map", ErrTypeMismatch)
	}
	var fields cbor.OrderedMap
	if _, err := cbor.Decode(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: request: %w", ErrMalformedEncoding, err)
	}
	seed, err := decodeTextField(&fields, requestFieldSeed)
	if err != nil {
		return nil, err
	}
	userInput, err := decodeTextField(&fields, requestFieldUserInput)
	if err != nil {
		return nil, err
	}
	attrs, err := decodeAttrsField(&fields)
	if err != nil {
		return nil, err
	}
	return NewRequest(seed, userInput, attrs), nil
}

func decodeTextField(fields *cbor.OrderedMap, name string) (string, error) {
	raw, ok := fields.GetRaw(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	if cbor.MajorType(raw) != cbor.CborTypeTextString {
		return "", fmt.Errorf("%w: %q must be a text string", ErrTypeMismatch, name)
	}
	var ret string
	if _, err := cbor.Decode(raw, &ret); err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrMalformedEncoding, name, err)
	}
	return ret, nil
}

func decodeAttrsField(fields *cbor.OrderedMap) ([]byte, error) {
	raw, ok := fields.GetRaw(requestFieldAttrs)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, requestFieldAttrs)
	}
	switch cbor.MajorType(raw) {
	case cbor.CborTypeByteString:
		var ret []byte
		if _, err := cbor.Decode(raw, &ret); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedEncoding, requestFieldAttrs, err)
		}
		return ret, nil
	case cbor.CborTypeArray:
		var values []uint64
		if _, err := cbor.Decode(raw, &values); err != nil {
			var typeErr *cbor.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, fmt.Errorf("%w: %q must hold byte values: %w", ErrTypeMismatch, requestFieldAttrs, err)
			}
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedEncoding, requestFieldAttrs, err)
		}
		ret := make([]byte, len(values))
		for i, v := range values {
			if v > math.MaxUint8 {
				return nil, fmt.Errorf(
					"%w: %q item %d is %d, which is not a byte value",
					ErrTypeMismatch,
					requestFieldAttrs,
					i,
					v,
				)
			}
			ret[i] = byte(v)
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("%w: %q must be a byte string", ErrTypeMismatch, requestFieldAttrs)
	}
}
