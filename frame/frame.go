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

// Package frame implements the length-prefixed framing used for generator
// requests and results: a 4-byte big-endian payload length followed by the payload
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	HeaderLength     = 4
	MaxPayloadLength = math.MaxUint32
)

var (
	ErrTruncated       = errors.New("frame truncated")
	ErrPayloadTooLarge = errors.New("payload too large for frame")
)

type Header struct {
	PayloadLength uint32
}

// Encode prepends the payload length to a copy of the payload
func Encode(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > MaxPayloadLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	ret := make([]byte, HeaderLength, HeaderLength+len(payload))
	binary.BigEndian.PutUint32(ret, uint32(len(payload)))
	return append(ret, payload...), nil
}

// Decode returns the declared payload length and all bytes following the header. The
// declared length is not checked against the number of bytes available; use Payload
// for that
func Decode(frame []byte) (uint32, []byte, error) {
	header, err := decodeHeader(frame)
	if err != nil {
		return 0, nil, err
	}
	return header.PayloadLength, frame[HeaderLength:], nil
}

// Payload returns exactly the number of payload bytes declared in the header. Any
// bytes after the declared payload are ignored
func Payload(frame []byte) ([]byte, error) {
	length, payload, err := Decode(frame)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) < uint64(length) {
		return nil, fmt.Errorf(
			"%w: header declares %d payload bytes, found %d",
			ErrTruncated,
			length,
			len(payload),
		)
	}
	return payload[:length], nil
}

func decodeHeader(frame []byte) (Header, error) {
	if len(frame) < HeaderLength {
		return Header{}, fmt.Errorf(
			"%w: need %d header bytes, found %d",
			ErrTruncated,
			HeaderLength,
			len(frame),
		)
	}
	return Header{
		PayloadLength: binary.BigEndian.Uint32(frame[:HeaderLength]),
	}, nil
}
