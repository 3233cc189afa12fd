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
	"log/slog"
)

// DefaultMaxAttributes is the default limit on the number of entries in the attrs array
const DefaultMaxAttributes = 256

// GeneratorOptionFunc is a type that represents functions that modify the Generator config
type GeneratorOptionFunc func(*Generator)

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) GeneratorOptionFunc {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithMaxAttributes specifies the maximum number of entries allowed in the attrs array.
// A value of 0 or less removes the limit
func WithMaxAttributes(maxAttributes int) GeneratorOptionFunc {
	return func(g *Generator) {
		g.maxAttributes = maxAttributes
	}
}
