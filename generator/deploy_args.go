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

	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/bitseed/cbor"
)

// EncodeDeployArgs builds an attrs document from deploy arguments. Each argument is a JSON
// (or YAML) document, usually an object such as
//
//	{"height": {"type": "range", "data": {"min": 1, "max": 1000}}}
//
// and the documents become the elements of a CBOR array. Object keys keep the order they
// were written in, which is the order attributes are resolved in
func EncodeDeployArgs(args []string) ([]byte, error) {
	docs := make([]any, 0, len(args))
	for idx, arg := range args {
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(arg), &node); err != nil {
			return nil, fmt.Errorf("deploy arg %d: %w", idx, err)
		}
		value, err := yamlNodeValue(&node, 0)
		if err != nil {
			return nil, fmt.Errorf("deploy arg %d: %w", idx, err)
		}
		docs = append(docs, value)
	}
	return cbor.Encode(docs)
}

type requestFile struct {
	Seed      *string     `yaml:"seed"`
	UserInput *string     `yaml:"user_input"`
	Attrs     []yaml.Node `yaml:"attrs"`
}

// ParseRequestYAML builds a request from a YAML description:
//
//	seed: abc
//	user_input: xyz
//	attrs:
//	  - power: {type: range, data: {min: 1, max: 100}}
//
// Each item of attrs becomes one element of the attrs document
func ParseRequestYAML(data []byte) (*Request, error) {
	var tmp requestFile
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	if tmp.Seed == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, requestFieldSeed)
	}
	if tmp.UserInput == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, requestFieldUserInput)
	}
	docs := make([]any, 0, len(tmp.Attrs))
	for idx := range tmp.Attrs {
		value, err := yamlNodeValue(&tmp.Attrs[idx], 0)
		if err != nil {
			return nil, fmt.Errorf("attrs item %d: %w", idx, err)
		}
		docs = append(docs, value)
	}
	attrs, err := cbor.Encode(docs)
	if err != nil {
		return nil, err
	}
	return NewRequest(*tmp.Seed, *tmp.UserInput, attrs), nil
}

// yamlNodeValue converts a YAML node to a value that encodes to equivalent CBOR, using
// cbor.OrderedMap for mappings so that key order survives
func yamlNodeValue(node *yaml.Node, depth int) (any, error) {
	if depth > cbor.MaxNestedLevels {
		return nil, errors.New("document nested too deeply")
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return yamlNodeValue(node.Content[0], depth)
	case yaml.AliasNode:
		return yamlNodeValue(node.Alias, depth+1)
	case yaml.MappingNode:
		ret := cbor.NewOrderedMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			value, err := yamlNodeValue(node.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			ret.SetIfAbsent(keyNode.Value, value)
		}
		return ret, nil
	case yaml.SequenceNode:
		ret := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := yamlNodeValue(item, depth+1)
			if err != nil {
				return nil, err
			}
			ret = append(ret, value)
		}
		return ret, nil
	case yaml.ScalarNode:
		var ret any
		if err := node.Decode(&ret); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}
