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

// Package generator implements deterministic generation and verification of bitseed
// attributes.
//
// A request frame carries a seed, a user input and a nested CBOR document describing
// the attributes to generate. Each attribute value is derived from the FNV-1a
// fingerprint of the seed and user input, so generating twice from the same request
// always produces the same bytes, and a result can be verified by generating again.
package generator

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/bitseed/cbor"
	"github.com/blinklabs-io/bitseed/fingerprint"
	"github.com/blinklabs-io/bitseed/frame"
)

// Generator generates and verifies results. It holds no state between calls and is safe
// for concurrent use
type Generator struct {
	logger        *slog.Logger
	maxAttributes int
}

// New returns a Generator with the specified options
func New(options ...GeneratorOptionFunc) *Generator {
	g := &Generator{
		maxAttributes: DefaultMaxAttributes,
	}
	for _, option := range options {
		option(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Generate decodes a request frame and returns a newly allocated result frame
func (g *Generator) Generate(requestFrame []byte) ([]byte, error) {
	result, err := g.GenerateResult(requestFrame)
	if err != nil {
		return nil, err
	}
	payload, err := cbor.Encode(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return frame.Encode(payload)
}

// IndexerGenerate is an alias of Generate for hosts that call the generator from an indexer
func (g *Generator) IndexerGenerate(requestFrame []byte) ([]byte, error) {
	return g.Generate(requestFrame)
}

// GenerateResult decodes a request frame and returns the result before encoding
func (g *Generator) GenerateResult(requestFrame []byte) (*Result, error) {
	payload, err := frame.Payload(requestFrame)
	if err != nil {
		return nil, err
	}
	req, err := DecodeRequest(payload)
	if err != nil {
		return nil, err
	}
	specs, err := ParseAttributeSpecs(req.Attrs, g.maxAttributes)
	if err != nil {
		return nil, err
	}
	hash := fingerprint.Of(req.Seed, req.UserInput)
	result := newResult(req.UserInput)
	stored, err := ResolveAttributes(specs, hash, result.Attributes)
	if err != nil {
		return nil, err
	}
	g.logger.Debug(
		"generated attributes",
		"component", "generator",
		"fingerprint", fmt.Sprintf("%08x", hash),
		"specs", len(specs),
		"stored", stored,
		"skipped", len(specs)-stored,
	)
	return result, nil
}

// Verify generates a result from the request frame and reports whether its payload matches
// expectedPayload. Only as many bytes as the generated payload holds are compared, and an
// expected payload shorter than that never matches. Errors come only from decoding the request
func (g *Generator) Verify(requestFrame []byte, expectedPayload []byte) (bool, error) {
	resultFrame, err := g.Generate(requestFrame)
	if err != nil {
		return false, err
	}
	payload, err := frame.Payload(resultFrame)
	if err != nil {
		return false, err
	}
	if len(expectedPayload) < len(payload) {
		g.logger.Debug(
			"expected payload shorter than generated payload",
			"component", "generator",
			"expected_size", len(expectedPayload),
			"generated_size", len(payload),
		)
		return false, nil
	}
	if !bytes.Equal(payload, expectedPayload[:len(payload)]) {
		g.logger.Debug(
			"expected payload does not match generated payload",
			"component", "generator",
			"generated_size", len(payload),
		)
		return false, nil
	}
	return true, nil
}

// Generate calls Generate on a Generator with default options
func Generate(requestFrame []byte) ([]byte, error) {
	return New().Generate(requestFrame)
}

// IndexerGenerate calls IndexerGenerate on a Generator with default options
func IndexerGenerate(requestFrame []byte) ([]byte, error) {
	return New().IndexerGenerate(requestFrame)
}

// Verify calls Verify on a Generator with default options
func Verify(requestFrame []byte, expectedPayload []byte) (bool, error) {
	return New().Verify(requestFrame, expectedPayload)
}
