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

package generator_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/bitseed/cbor"
	"github.com/blinklabs-io/bitseed/fingerprint"
	"github.com/blinklabs-io/bitseed/frame"
	"github.com/blinklabs-io/bitseed/generator"
	"github.com/blinklabs-io/bitseed/internal/test"
)

const (
	// [{"power": {"type": "range", "data": {"min": 1, "max": 100}}}]
	powerAttrsHex = "81a165706f776572a264747970656572616e67656464617461a2636d696e01636d61781864"

	// {"amount": 1000, "attributes": {"id": "xyz", "power": 71}, "content": {}}
	powerResultFrameHex = "0000002f" +
		"a366616d6f756e741903e86a61747472696275746573a26269646378797a65706f776572184767636f6e74656e74a0"

	// {"amount": 1000, "attributes": {"id": "xyz"}, "content": {}}
	emptyResultFrameHex = "00000027" +
		"a366616d6f756e741903e86a61747472696275746573a16269646378797a67636f6e74656e74a0"

	// Request payload produced by the reference deployment tooling, with two range
	// attributes "level1" and "level2" (1..1000) and attrs sent as an array of byte values
	hostRequestPayloadHex = "a3656174747273984d188218a11866186c186518761865186c183118a218641874187918701865186518721861186e186718651864186418611874186118a21863186d1869186e011863186d1861187818190318e818a11866186c186518761865186c183218a218641874187918701865186518721861186e186718651864186418611874186118a21863186d1869186e011863186d1861187818190318e864736565646b72616e646f6d2d736565646a757365725f696e7075746a757365722d696e707574"
	hostAttrsHex          = "82a1666c6576656c31a264747970656572616e67656464617461a2636d696e01636d61781903e8a1666c6576656c32a264747970656572616e67656464617461a2636d696e01636d61781903e8"
)

func rangeAttr(key string, minValue any, maxValue any) *cbor.OrderedMap {
	data := cbor.NewOrderedMap()
	data.Set("min", minValue)
	data.Set("max", maxValue)
	definition := cbor.NewOrderedMap()
	definition.Set("type", "range")
	definition.Set("data", data)
	ret := cbor.NewOrderedMap()
	ret.Set(key, definition)
	return ret
}

func encodeAttrs(t *testing.T, elements ...any) []byte {
	t.Helper()
	if elements == nil {
		elements = []any{}
	}
	data, err := cbor.Encode(elements)
	require.NoError(t, err)
	return data
}

func requestFrame(t *testing.T, seed string, userInput string, attrs []byte) []byte {
	t.Helper()
	ret, err := generator.EncodeRequest(generator.NewRequest(seed, userInput, attrs))
	require.NoError(t, err)
	return ret
}

func rawRequestFrame(t *testing.T, fields *cbor.OrderedMap) []byte {
	t.Helper()
	payload, err := cbor.Encode(fields)
	require.NoError(t, err)
	ret, err := frame.Encode(payload)
	require.NoError(t, err)
	return ret
}

func generateResult(t *testing.T, requestFrame []byte) *generator.Result {
	t.Helper()
	resultFrame, err := generator.Generate(requestFrame)
	require.NoError(t, err)
	payload, err := frame.Payload(resultFrame)
	require.NoError(t, err)
	result, err := generator.DecodeResult(payload)
	require.NoError(t, err)
	return result
}

func TestGenerateRangeAttribute(t *testing.T) {
	req := requestFrame(t, "abc", "xyz", test.DecodeHexString(powerAttrsHex))
	out, err := generator.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, test.DecodeHexString(powerResultFrameHex), out)

	result := generateResult(t, req)
	assert.Equal(t, generator.ResultAmount, result.Amount)
	assert.Equal(t, []string{"id", "power"}, result.Attributes.Keys())
	power, err := result.AttributeUint32("power")
	require.NoError(t, err)
	assert.Equal(t, 1+fingerprint.Sum32("abcxyz")%100, power)
	assert.Equal(t, 0, result.Content.Len())
}

func TestGenerateEmptyAttrs(t *testing.T) {
	req := requestFrame(t, "abc", "xyz", encodeAttrs(t))
	out, err := generator.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, test.DecodeHexString(emptyResultFrameHex), out)
}

func TestGenerateAttrsByteString(t *testing.T) {
	// The attrs document may also arrive as a CBOR byte string
	fields := cbor.NewOrderedMap()
	fields.Set("seed", "abc")
	fields.Set("user_input", "xyz")
	fields.Set("attrs", test.DecodeHexString(powerAttrsHex))
	out, err := generator.Generate(rawRequestFrame(t, fields))
	require.NoError(t, err)
	assert.Equal(t, test.DecodeHexString(powerResultFrameHex), out)
}

func TestGenerateIgnoresTrailingFrameBytes(t *testing.T) {
	req := requestFrame(t, "abc", "xyz", test.DecodeHexString(powerAttrsHex))
	req = append(req, 0xde, 0xad, 0xbe, 0xef)
	out, err := generator.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, test.DecodeHexString(powerResultFrameHex), out)
}

func TestHostRequestEncoding(t *testing.T) {
	req := generator.NewRequest("random-seed", "user-input", test.DecodeHexString(hostAttrsHex))
	payload, err := cbor.Encode(req)
	require.NoError(t, err)
	assert.Equal(t, test.DecodeHexString(hostRequestPayloadHex), payload)

	decoded, err := generator.DecodeRequest(payload)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestGenerateHostRequest(t *testing.T) {
	req, err := frame.Encode(test.DecodeHexString(hostRequestPayloadHex))
	require.NoError(t, err)
	result := generateResult(t, req)
	assert.Equal(t, []string{"id", "level1", "level2"}, result.Attributes.Keys())
	id, _ := result.Attributes.Get("id")
	assert.Equal(t, "user-input", id)
	// fingerprint("random-seeduser-input") = 0x46e6b622
	for _, key := range []string{"level1", "level2"} {
		value, err := result.AttributeUint32(key)
		require.NoError(t, err)
		assert.Equal(t, uint32(27), value)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	attrs := encodeAttrs(
		t,
		rangeAttr("power", 1, 100),
		rangeAttr("height", 10, 20000),
	)
	req := requestFrame(t, "seed", "input", attrs)
	first, err := generator.Generate(req)
	require.NoError(t, err)
	second, err := generator.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	third, err := generator.IndexerGenerate(req)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestGenerateRangeContainment(t *testing.T) {
	ranges := [][2]uint32{
		{1, 100},
		{0, 0},
		{7, 7},
		{1000, 1001},
		{1, math.MaxUint32},
		{0, math.MaxUint32 - 1},
		{math.MaxUint32, math.MaxUint32},
	}
	elements := []any{}
	for idx, r := range ranges {
		elements = append(elements, rangeAttr(fmt.Sprintf("attr%d", idx), r[0], r[1]))
	}
	attrs := encodeAttrs(t, elements...)
	for i := range 200 {
		result := generateResult(t, requestFrame(t, "seed", fmt.Sprintf("input-%d", i), attrs))
		for idx, r := range ranges {
			value, err := result.AttributeUint32(fmt.Sprintf("attr%d", idx))
			require.NoError(t, err)
			if value < r[0] || value > r[1] {
				t.Fatalf("value %d outside of range [%d, %d]", value, r[0], r[1])
			}
		}
	}
}

func TestGeneratePermissiveAttrs(t *testing.T) {
	missingData := cbor.NewOrderedMap()
	missingData.Set("type", "range")
	missingDataAttr := cbor.NewOrderedMap()
	missingDataAttr.Set("nodata", missingData)

	missingType := cbor.NewOrderedMap()
	missingType.Set("data", map[string]int{"min": 1, "max": 2})
	missingTypeAttr := cbor.NewOrderedMap()
	missingTypeAttr.Set("notype", missingType)

	numericType := cbor.NewOrderedMap()
	numericType.Set("type", 1)
	numericType.Set("data", map[string]int{"min": 1, "max": 2})
	numericTypeAttr := cbor.NewOrderedMap()
	numericTypeAttr.Set("numeric", numericType)

	unknownType := cbor.NewOrderedMap()
	unknownType.Set("type", "choice")
	unknownType.Set("data", []string{"red", "blue"})
	unknownTypeAttr := cbor.NewOrderedMap()
	unknownTypeAttr.Set("color", unknownType)

	scalarAttr := cbor.NewOrderedMap()
	scalarAttr.Set("scalar", "range")

	twoKeys := cbor.NewOrderedMap()
	for _, key := range []string{"b", "a"} {
		def, _ := rangeAttr(key, 1, 2).Get(key)
		twoKeys.Set(key, def)
	}

	testDefs := []struct {
		name  string
		attrs []byte
		keys  []string
	}{
		{
			name:  "attrs document is not an array",
			attrs: test.DecodeHexString("a0"),
			keys:  []string{"id"},
		},
		{
			name:  "element is not a map",
			attrs: encodeAttrs(t, 5, "text", rangeAttr("power", 1, 100)),
			keys:  []string{"id", "power"},
		},
		{
			name:  "definition is not a map",
			attrs: encodeAttrs(t, scalarAttr),
			keys:  []string{"id"},
		},
		{
			name:  "definition without data",
			attrs: encodeAttrs(t, missingDataAttr),
			keys:  []string{"id"},
		},
		{
			name:  "definition without type",
			attrs: encodeAttrs(t, missingTypeAttr),
			keys:  []string{"id"},
		},
		{
			name:  "non-text type",
			attrs: encodeAttrs(t, numericTypeAttr),
			keys:  []string{"id"},
		},
		{
			name:  "unknown type",
			attrs: encodeAttrs(t, unknownTypeAttr, rangeAttr("power", 1, 100)),
			keys:  []string{"id", "power"},
		},
		{
			name:  "element key order",
			attrs: encodeAttrs(t, twoKeys),
			keys:  []string{"id", "b", "a"},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			result := generateResult(t, requestFrame(t, "abc", "xyz", testDef.attrs))
			assert.Equal(t, testDef.keys, result.Attributes.Keys())
		})
	}
}

func TestGenerateFirstWriteWins(t *testing.T) {
	attrs := encodeAttrs(
		t,
		rangeAttr("power", 1, 1),
		rangeAttr("power", 5, 5),
		rangeAttr("id", 9, 9),
	)
	result := generateResult(t, requestFrame(t, "abc", "xyz", attrs))
	assert.Equal(t, []string{"id", "power"}, result.Attributes.Keys())
	power, err := result.AttributeUint32("power")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), power)
	id, _ := result.Attributes.Get("id")
	assert.Equal(t, "xyz", id)
}

func TestGenerateErrors(t *testing.T) {
	withFields := func(seed any, userInput any, attrs any) []byte {
		fields := cbor.NewOrderedMap()
		if seed != nil {
			fields.Set("seed", seed)
		}
		if userInput != nil {
			fields.Set("user_input", userInput)
		}
		if attrs != nil {
			fields.Set("attrs", attrs)
		}
		return rawRequestFrame(t, fields)
	}
	framed := func(payload []byte) []byte {
		ret, err := frame.Encode(payload)
		require.NoError(t, err)
		return ret
	}
	tooMany := make([]any, generator.DefaultMaxAttributes+1)
	for i := range tooMany {
		tooMany[i] = rangeAttr(fmt.Sprintf("attr%d", i), 1, 2)
	}
	dataNotMap := cbor.NewOrderedMap()
	dataNotMap.Set("type", "range")
	dataNotMap.Set("data", []int{1, 2})
	dataNotMapAttr := cbor.NewOrderedMap()
	dataNotMapAttr.Set("power", dataNotMap)
	missingMax := cbor.NewOrderedMap()
	missingMax.Set("type", "range")
	missingMax.Set("data", map[string]int{"min": 1})
	missingMaxAttr := cbor.NewOrderedMap()
	missingMaxAttr.Set("power", missingMax)

	testDefs := []struct {
		name string
		req  []byte
		err  error
	}{
		{name: "short frame", req: []byte{0x00, 0x00}, err: frame.ErrTruncated},
		{name: "declared length exceeds payload", req: test.DecodeHexString("00000010 a0"), err: frame.ErrTruncated},
		{name: "empty payload", req: framed(nil), err: generator.ErrMalformedEncoding},
		{name: "truncated payload", req: framed([]byte{0xa1, 0x61}), err: generator.ErrMalformedEncoding},
		{name: "payload is not a map", req: framed([]byte{0x80}), err: generator.ErrTypeMismatch},
		{name: "missing seed", req: withFields(nil, "xyz", []byte{0x80}), err: generator.ErrMissingField},
		{name: "missing user input", req: withFields("abc", nil, []byte{0x80}), err: generator.ErrMissingField},
		{name: "missing attrs", req: withFields("abc", "xyz", nil), err: generator.ErrMissingField},
		{name: "seed is not text", req: withFields(5, "xyz", []byte{0x80}), err: generator.ErrTypeMismatch},
		{name: "user input is not text", req: withFields("abc", []byte("xyz"), []byte{0x80}), err: generator.ErrTypeMismatch},
		{name: "attrs is text", req: withFields("abc", "xyz", "80"), err: generator.ErrTypeMismatch},
		{name: "attrs item is not a byte", req: withFields("abc", "xyz", []int{0x81, 256}), err: generator.ErrTypeMismatch},
		{name: "attrs item is negative", req: withFields("abc", "xyz", []int{0x81, -1}), err: generator.ErrTypeMismatch},
		{name: "attrs is empty", req: withFields("abc", "xyz", []byte{}), err: generator.ErrMalformedAttrs},
		{name: "attrs is truncated", req: withFields("abc", "xyz", []byte{0x81, 0xa1}), err: generator.ErrMalformedAttrs},
		{
			name: "attrs element has integer keys",
			req:  withFields("abc", "xyz", encodeAttrs(t, map[int]int{1: 2})),
			err:  generator.ErrMalformedAttrs,
		},
		{
			name: "too many attrs",
			req:  withFields("abc", "xyz", encodeAttrs(t, tooMany...)),
			err:  generator.ErrMalformedAttrs,
		},
		{
			name: "inverted bounds",
			req:  requestFrame(t, "abc", "xyz", encodeAttrs(t, rangeAttr("power", 100, 1))),
			err:  generator.ErrInvertedBounds,
		},
		{
			name: "full 32-bit range",
			req:  requestFrame(t, "abc", "xyz", encodeAttrs(t, rangeAttr("power", 0, uint64(math.MaxUint32)))),
			err:  generator.ErrRangeOverflow,
		},
		{
			name: "range data is not a map",
			req:  requestFrame(t, "abc", "xyz", encodeAttrs(t, dataNotMapAttr)),
			err:  generator.ErrTypeMismatch,
		},
		{
			name: "range without max",
			req:  requestFrame(t, "abc", "xyz", encodeAttrs(t, missingMaxAttr)),
			err:  generator.ErrMissingField,
		},
		{
			name: "range min is text",
			req:  requestFrame(t, "abc", "xyz", encodeAttrs(t, rangeAttr("power", "1", 100))),
			err:  generator.ErrTypeMismatch,
		},
		{
			name: "range max exceeds 32 bits",
			req:  requestFrame(t, "abc", "xyz", encodeAttrs(t, rangeAttr("power", 1, uint64(math.MaxUint32)+1))),
			err:  generator.ErrTypeMismatch,
		},
		{
			name: "range min is negative",
			req:  requestFrame(t, "abc", "xyz", encodeAttrs(t, rangeAttr("power", -1, 100))),
			err:  generator.ErrTypeMismatch,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			out, err := generator.Generate(testDef.req)
			assert.ErrorIs(t, err, testDef.err)
			assert.Nil(t, out)
			ok, err := generator.Verify(testDef.req, test.DecodeHexString(powerResultFrameHex)[frame.HeaderLength:])
			assert.ErrorIs(t, err, testDef.err)
			assert.False(t, ok)
		})
	}
}

func TestMaxAttributesOption(t *testing.T) {
	attrs := encodeAttrs(t, rangeAttr("a", 1, 2), rangeAttr("b", 1, 2), rangeAttr("c", 1, 2))
	req := requestFrame(t, "abc", "xyz", attrs)

	_, err := generator.New(generator.WithMaxAttributes(2)).Generate(req)
	assert.ErrorIs(t, err, generator.ErrMalformedAttrs)

	_, err = generator.New(generator.WithMaxAttributes(3)).Generate(req)
	assert.NoError(t, err)

	_, err = generator.New(generator.WithMaxAttributes(0)).Generate(req)
	assert.NoError(t, err)
}

func TestVerify(t *testing.T) {
	req := requestFrame(t, "abc", "xyz", test.DecodeHexString(powerAttrsHex))
	resultFrame, err := generator.Generate(req)
	require.NoError(t, err)
	payload, err := frame.Payload(resultFrame)
	require.NoError(t, err)

	ok, err := generator.Verify(req, payload)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only the generated payload length is compared
	ok, err = generator.Verify(req, append(bytes.Clone(payload), 0x00, 0x01))
	require.NoError(t, err)
	assert.True(t, ok)

	// Too short to compare
	ok, err = generator.Verify(req, payload[:len(payload)-1])
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = generator.Verify(req, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different request doesn't verify
	ok, err = generator.Verify(requestFrame(t, "abd", "xyz", test.DecodeHexString(powerAttrsHex)), payload)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDetectsTamper(t *testing.T) {
	req := requestFrame(t, "abc", "xyz", test.DecodeHexString(powerAttrsHex))
	payload := test.DecodeHexString(powerResultFrameHex)[frame.HeaderLength:]
	for idx := range payload {
		for _, mask := range []byte{0x01, 0x80, 0xff} {
			tampered := bytes.Clone(payload)
			tampered[idx] ^= mask
			ok, err := generator.Verify(req, tampered)
			require.NoError(t, err)
			if ok {
				t.Fatalf("tampered payload verified (byte %d, mask 0x%02x)", idx, mask)
			}
		}
	}
}

func TestGeneratorLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := generator.New(generator.WithLogger(logger))
	req := requestFrame(t, "abc", "xyz", test.DecodeHexString(powerAttrsHex))
	_, err := g.Generate(req)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "generated attributes")
	assert.Contains(t, buf.String(), fmt.Sprintf("fingerprint=%08x", fingerprint.Of("abc", "xyz")))

	buf.Reset()
	ok, err := g.Verify(req, []byte{0xa3})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "expected payload shorter than generated payload")
}

func TestGenerateConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)
	attrs := encodeAttrs(t, rangeAttr("power", 1, 100), rangeAttr("height", 1, 1000))
	g := generator.New()
	var wg sync.WaitGroup
	results := make([][]byte, 32)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			req, err := generator.EncodeRequest(
				generator.NewRequest("seed", fmt.Sprintf("input-%d", idx%4), attrs),
			)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = g.Generate(req)
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		// Requests with the same user input must produce the same bytes
		assert.Equal(t, results[i%4], results[i])
	}
}
