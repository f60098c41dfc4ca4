// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/paramtrace/twiz/internal/errors"
	"github.com/paramtrace/twiz/internal/output"
	"github.com/paramtrace/twiz/internal/ui"
	"github.com/paramtrace/twiz/pkg/instrumenter"
)

func runInstrument(args []string) {
	fs := flag.NewFlagSet("instrument", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	endpoint := fs.String("endpoint", "", "Collector ingest URL baked into the runtime prelude")
	flushPeriodMs := fs.Int("flush-period-ms", 0, "Runtime flush period in milliseconds")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: twiz instrument [options] <file>

Parses a single JavaScript/TypeScript file, rewrites it with parameter
observation calls, and prints the instrumented source (or, with --json,
a summary of what was recorded).

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  twiz instrument src/handler.ts
  twiz instrument --json src/handler.ts
  twiz instrument --endpoint https://collector.example.com/ingest src/handler.ts
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.InitColors(*noColor)

	if fs.NArg() == 0 {
		errors.FatalError(errors.NewInputError(
			"Missing file argument",
			"instrument requires exactly one file path",
			"Run: twiz instrument <file>",
		), *jsonOutput)
	}

	path := fs.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		errors.FatalError(errors.NewNotFoundError(
			"Cannot read source file",
			err.Error(),
			"Check the file path and try again",
		), *jsonOutput)
	}

	inst := instrumenter.New(nil, instrumenter.RuntimeConfig{
		Endpoint:          *endpoint,
		FlushPeriodMillis: *flushPeriodMs,
	})
	result := inst.Instrument(context.Background(), source, path)

	if *jsonOutput {
		_ = output.JSON(map[string]any{
			"filename":    path,
			"unparseable": result.Unparseable,
			"warning":     result.Warning,
			"records":     result.Records,
			"source":      string(result.Source),
		})
		return
	}

	if result.Unparseable {
		ui.Warning(fmt.Sprintf("%s: %s", path, result.Warning))
	} else {
		ui.Successf("instrumented %s with %d observation point(s)", path, len(result.Records))
	}
	fmt.Println(string(result.Source))
}
