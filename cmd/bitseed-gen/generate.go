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
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/blinklabs-io/bitseed/cbor"
	"github.com/blinklabs-io/bitseed/frame"
)

type generateFlags struct {
	flagset *flag.FlagSet
	quiet   bool
}

func newGenerateFlags(name string) *generateFlags {
	f := &generateFlags{
		flagset: flag.NewFlagSet(name, flag.ExitOnError),
	}
	f.flagset.BoolVar(
		&f.quiet,
		"quiet",
		false,
		"only print the hex encoded frame",
	)
	return f
}

func runGenerate(f *globalFlags, indexer bool) {
	name := "generate"
	if indexer {
		name = "indexer-generate"
	}
	generateFlags := newGenerateFlags(name)
	err := generateFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}

	reqFrame := buildRequestFrame(f)
	g := newGenerator(f)
	var resultFrame []byte
	if indexer {
		resultFrame, err = g.IndexerGenerate(reqFrame)
	} else {
		resultFrame, err = g.Generate(reqFrame)
	}
	if err != nil {
		fmt.Printf("ERROR: failure generating result: %s\n", err)
		os.Exit(1)
	}
	if generateFlags.quiet {
		fmt.Printf("%x\n", resultFrame)
		return
	}
	printFrame("result", resultFrame)
}

func runRequest(f *globalFlags) {
	generateFlags := newGenerateFlags("request")
	err := generateFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	reqFrame := buildRequestFrame(f)
	if generateFlags.quiet {
		fmt.Printf("%x\n", reqFrame)
		return
	}
	printFrame("request", reqFrame)
}

func printFrame(label string, data []byte) {
	payload, err := frame.Payload(data)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	diag, err := cbor.Diagnose(payload)
	if err != nil {
		fmt.Printf("ERROR: failure decoding %s payload: %s\n", label, err)
		os.Exit(1)
	}
	digest := blake2b.Sum256(payload)
	fmt.Printf("%s: frame = %x\n", label, data)
	fmt.Printf("%s: payload = %s\n", label, diag)
	fmt.Printf("%s: payload size = %d, blake2b-256 = %x\n", label, len(payload), digest)
}
