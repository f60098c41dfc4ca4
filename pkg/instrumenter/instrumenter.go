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

package instrumenter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// RuntimeConfig configures the JavaScript runtime prelude Instrument
// prepends to every instrumented output. A zero value selects
// DefaultIngestPath and DefaultFlushPeriodMillis.
type RuntimeConfig struct {
	Endpoint          string
	FlushPeriodMillis int
}

// Instrumenter parses and rewrites ECMAScript-family source. It is safe
// for concurrent use: each call to Instrument checks out its own parser
// from a per-dialect pool.
type Instrumenter struct {
	logger  *slog.Logger
	runtime RuntimeConfig

	jsPool  sync.Pool
	tsPool  sync.Pool
	tsxPool sync.Pool

	poolInit    sync.Once
	preludeInit sync.Once
	prelude     []byte
}

// New returns an Instrumenter. A nil logger falls back to slog.Default().
func New(logger *slog.Logger, runtime RuntimeConfig) *Instrumenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Instrumenter{logger: logger, runtime: runtime}
}

func (inst *Instrumenter) initPools() {
	inst.poolInit.Do(func() {
		inst.jsPool.New = func() any {
			p := sitter.NewParser()
			p.SetLanguage(javascript.GetLanguage())
			return p
		}
		inst.tsPool.New = func() any {
			p := sitter.NewParser()
			p.SetLanguage(typescript.GetLanguage())
			return p
		}
		inst.tsxPool.New = func() any {
			p := sitter.NewParser()
			p.SetLanguage(tsx.GetLanguage())
			return p
		}
	})
}

func (inst *Instrumenter) poolFor(d Dialect) *sync.Pool {
	switch d {
	case DialectTypeScript:
		return &inst.tsPool
	case DialectTSX:
		return &inst.tsxPool
	default:
		return &inst.jsPool
	}
}

// DialectForFilename infers a Dialect from a file extension, defaulting
// to plain JavaScript for anything unrecognized (including ".js", ".mjs",
// ".cjs", ".jsx", which tree-sitter-javascript parses uniformly).
func DialectForFilename(filename string) Dialect {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".tsx":
		return DialectTSX
	default:
		return DialectJavaScript
	}
}

// Instrument parses source as filename's inferred dialect and rewrites it
// so every function-parameter binding is preceded by a call into the
// injected runtime library. On any parse failure the original source is
// returned verbatim with Unparseable set — instrumentation never changes
// program behaviour, so failing closed is always safe.
func (inst *Instrumenter) Instrument(ctx context.Context, source []byte, filename string) Result {
	inst.initPools()

	dialect := DialectForFilename(filename)
	pool := inst.poolFor(dialect)

	parser := pool.Get().(*sitter.Parser)
	defer pool.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		inst.logger.Warn("instrumenter.parse_failed", "filename", filename, "error", err)
		return Result{Source: source, Unparseable: true, Warning: fmt.Sprintf("parse failed: %v", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return Result{Source: source, Unparseable: true, Warning: "parser produced no tree"}
	}

	if root.HasError() {
		errorCount := countErrors(root)
		// A syntax error doesn't necessarily make the whole file
		// unusable — tree-sitter recovers locally around the error
		// node — but it does mean any instrumentation we emit near
		// the error site is unreliable, so we log it and proceed:
		// the instrumenter prefers a partially-instrumented file over
		// silently dropping the whole file's observations.
		inst.logger.Warn("instrumenter.syntax_errors", "filename", filename,
			"dialect", dialect, "error_count", errorCount)
	}

	records, injections := walkTree(root, source, filename, inst.logger)
	if len(records) == 0 {
		return Result{Source: source, Records: nil}
	}

	instrumented := applyInjections(source, injections)
	instrumented = inst.prependPrelude(instrumented)

	return Result{Source: instrumented, Records: records}
}

// prependPrelude prepends the runtime library source that defines the
// global twiz() entry point the injected calls invoke. Without it, every
// instrumented file calls into an undefined global, so this runs
// unconditionally whenever Instrument has emitted at least one call site.
// The prelude guards its own installation, so prepending it to more than
// one file in a bundle that concatenates its outputs is harmless.
func (inst *Instrumenter) prependPrelude(source []byte) []byte {
	inst.preludeInit.Do(func() {
		inst.prelude = []byte(Prelude(inst.runtime.Endpoint, inst.runtime.FlushPeriodMillis))
	})
	out := make([]byte, 0, len(inst.prelude)+1+len(source))
	out = append(out, inst.prelude...)
	out = append(out, '\n')
	out = append(out, source...)
	return out
}

// countErrors counts ERROR nodes anywhere in the tree, used only to size
// a single aggregate warning rather than logging per-node noise.
func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrors(node.Child(i))
	}
	return count
}
