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
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/bitseed/generator"
)

// attrFlags collects repeated -attr values
type attrFlags []string

func (a *attrFlags) String() string {
	return strings.Join(*a, " ")
}

func (a *attrFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

type globalFlags struct {
	flagset       *flag.FlagSet
	seed          string
	userInput     string
	attrs         attrFlags
	requestFile   string
	maxAttributes int
	debug         bool
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(&f.seed, "seed", "", "seed for the request")
	f.flagset.StringVar(
		&f.userInput,
		"user-input",
		"",
		"user input for the request",
	)
	f.flagset.Var(
		&f.attrs,
		"attr",
		"attribute definition as a JSON document (can be specified multiple times)",
	)
	f.flagset.StringVar(
		&f.requestFile,
		"request",
		"",
		"path to a YAML request file. this overrides the -seed, -user-input and -attr options",
	)
	f.flagset.IntVar(
		&f.maxAttributes,
		"max-attributes",
		generator.DefaultMaxAttributes,
		"maximum number of entries in the attrs array (0 for no limit)",
	)
	f.flagset.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return f
}

func main() {
	f := newGlobalFlags()
	err := f.flagset.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if f.debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}),
	)
	slog.SetDefault(logger)

	if len(f.flagset.Args()) > 0 {
		switch f.flagset.Arg(0) {
		case "generate":
			runGenerate(f, false)
		case "indexer-generate":
			runGenerate(f, true)
		case "verify":
			runVerify(f)
		case "request":
			runRequest(f)
		default:
			fmt.Printf("Unknown subcommand: %s\n", f.flagset.Arg(0))
			os.Exit(1)
		}
	} else {
		fmt.Printf("You must specify a subcommand (generate, indexer-generate, verify or request)\n")
		os.Exit(1)
	}
}

func buildRequest(f *globalFlags) *generator.Request {
	if f.requestFile != "" {
		data, err := os.ReadFile(f.requestFile)
		if err != nil {
			fmt.Printf("ERROR: failed to read request file: %s\n", err)
			os.Exit(1)
		}
		req, err := generator.ParseRequestYAML(data)
		if err != nil {
			fmt.Printf("ERROR: failed to parse request file: %s\n", err)
			os.Exit(1)
		}
		return req
	}
	attrs, err := generator.EncodeDeployArgs(f.attrs)
	if err != nil {
		fmt.Printf("ERROR: failed to encode attributes: %s\n", err)
		os.Exit(1)
	}
	return generator.NewRequest(f.seed, f.userInput, attrs)
}

func buildRequestFrame(f *globalFlags) []byte {
	reqFrame, err := generator.EncodeRequest(buildRequest(f))
	if err != nil {
		fmt.Printf("ERROR: failed to encode request: %s\n", err)
		os.Exit(1)
	}
	return reqFrame
}

func newGenerator(f *globalFlags) *generator.Generator {
	return generator.New(
		generator.WithLogger(slog.Default()),
		generator.WithMaxAttributes(f.maxAttributes),
	)
}
