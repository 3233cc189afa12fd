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
	_cbor "github.com/fxamacker/cbor/v2"
)

var diagMode _cbor.DiagMode

func init() {
	var err error
	diagMode, err = _cbor.DiagOptions{
		ByteStringEncoding: _cbor.ByteStringBase16Encoding,
	}.DiagMode()
	if err != nil {
		panic("cbor: diagnostic mode initialization failed: " + err.Error())
	}
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 section 8) for the first item in data
func Diagnose(data []byte) (string, error) {
	diag, _, err := diagMode.DiagnoseFirst(data)
	return diag, err
}
