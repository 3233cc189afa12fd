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

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
)

type verifyFlags struct {
	flagset  *flag.FlagSet
	expected string
}

func newVerifyFlags() *verifyFlags {
	f := &verifyFlags{
		flagset: flag.NewFlagSet("verify", flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.expected,
		"expected",
		"",
		"hex encoded result payload to verify (without the frame header)",
	)
	return f
}

func runVerify(f *globalFlags) {
	verifyFlags := newVerifyFlags()
	err := verifyFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if verifyFlags.expected == "" {
		fmt.Printf("ERROR: you must specify -expected\n")
		os.Exit(1)
	}
	expected, err := hex.DecodeString(strings.TrimPrefix(verifyFlags.expected, "0x"))
	if err != nil {
		fmt.Printf("ERROR: failed to decode expected payload: %s\n", err)
		os.Exit(1)
	}

	ok, err := newGenerator(f).Verify(buildRequestFrame(f), expected)
	if err != nil {
		fmt.Printf("ERROR: failure verifying result: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("verify: %t\n", ok)
	if !ok {
		os.Exit(2)
	}
}
