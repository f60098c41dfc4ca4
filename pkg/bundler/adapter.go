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

// Package bundler is the boundary component a host build tool calls into:
// it applies include/exclude filtering and hands matching files to the
// instrumenter, never failing a build on an instrumentation error.
package bundler

import (
	"context"
	"log/slog"

	"github.com/paramtrace/twiz/pkg/instrumenter"
)

// File is one source file a host bundler offers up for instrumentation.
type File struct {
	Filename string
	Source   []byte
}

// Config is the adapter's filtering configuration.
type Config struct {
	Include []string
	Exclude []string
}

// Adapter wires a host bundler's per-file transform hook to
// instrumenter.Instrumenter.
type Adapter struct {
	instrumenter *instrumenter.Instrumenter
	logger       *slog.Logger
}

// New returns an Adapter using instr to parse and instrument matching
// files. A nil logger falls back to slog.Default().
func New(instr *instrumenter.Instrumenter, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{instrumenter: instr, logger: logger}
}

// Transform applies cfg's filters to file and, on a match, runs the
// instrumenter. Files that don't match the filters, and files the
// instrumenter reports as unparseable, pass through as their original
// source — this boundary never fails a build.
func (a *Adapter) Transform(ctx context.Context, file File, cfg Config) (string, error) {
	if !Included(file.Filename, cfg) {
		return string(file.Source), nil
	}

	result := a.instrumenter.Instrument(ctx, file.Source, file.Filename)
	if result.Unparseable {
		a.logger.Warn("bundler.transform.unparseable", "filename", file.Filename, "warning", result.Warning)
		return string(file.Source), nil
	}

	return string(result.Source), nil
}
