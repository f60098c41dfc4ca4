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
	"fmt"
	"sort"
	"strings"
)

// injection is one point insertion into the original byte buffer. Only
// insertions are used — never deletions or replacements — so that every
// untouched byte keeps its original offset, and consequently its original
// line/column, and the instrumented source re-parses to the same tree
// shape as the original.
type injection struct {
	offset int
	text   string
	order  int // tie-break for multiple insertions at the same offset
}

// statement renders one InstrumentationRecord as an exception-swallowing
// expression statement:
//
//	try { twiz(label, value, offset, filename, metadata) } catch {}
func statement(rec InstrumentationRecord, filename string) string {
	value := parameterValueExpression(rec)

	meta := metadataLiteral(rec)

	return fmt.Sprintf(
		`try { twiz(%s, %s, %d, %s, %s) } catch {}`,
		jsString(rec.Label),
		value,
		byteOffsetPlaceholder(rec),
		jsString(filename),
		meta,
	)
}

// parameterValueExpression chooses the JavaScript expression evaluating
// to the runtime value the instrumentation call should observe.
//
// Identifiers and rest elements bind a real name directly. Object- and
// array-pattern parameters destructure immediately, so there is no single
// bound identifier holding the original value; where a classic
// `arguments` object is in scope (anything but an arrow function) the
// positional value is recovered from it instead. Arrow functions have no
// `arguments` object, so a destructured arrow parameter reports
// `undefined` — a known, narrow limitation of source-level instrumentation
// without rewriting the parameter list itself.
func parameterValueExpression(rec InstrumentationRecord) string {
	if rec.Parameter == nil {
		return "undefined"
	}
	p := rec.Parameter

	if p.IsDestructured {
		if rec.ArgumentsAvailable {
			return fmt.Sprintf("arguments[%d]", p.Index)
		}
		return "undefined"
	}
	if p.Name == "" {
		return "undefined"
	}
	return p.Name
}

// byteOffsetPlaceholder returns the anchor's byte offset for the `offset`
// positional argument of twiz(). Line/column are carried in metadata;
// offset is the entity's natural-key coordinate.
func byteOffsetPlaceholder(rec InstrumentationRecord) int {
	return rec.anchorByteOffset
}

// metadataLiteral renders the metadata object literal for one record,
// including only the keys that apply to its entity type.
func metadataLiteral(rec InstrumentationRecord) string {
	var parts []string

	if rec.FunctionName != "" {
		parts = append(parts, "functionName: "+jsString(rec.FunctionName))
	}
	parts = append(parts, "context: "+jsString(string(rec.EntityType)))
	parts = append(parts, fmt.Sprintf("lineNumber: %d", rec.Anchor.Line))
	parts = append(parts, fmt.Sprintf("columnNumber: %d", rec.Anchor.Column))

	if rec.Parameter != nil {
		p := rec.Parameter
		parts = append(parts,
			"parameterName: "+jsString(p.Name),
			fmt.Sprintf("parameterIndex: %d", p.Index),
			"parameterType: "+jsString(string(p.Type)),
			"hasDefault: "+jsBool(p.HasDefault),
			"isDestructured: "+jsBool(p.IsDestructured),
			"isRest: "+jsBool(p.IsRest),
			"accessibility: "+jsStringOrNull(string(p.Accessibility)),
		)
	} else {
		parts = append(parts, fmt.Sprintf("parameterCount: %d", rec.ParameterCount))
	}

	if rec.HasCallee {
		parts = append(parts,
			"calleeName: "+jsString(rec.CalleeName),
			fmt.Sprintf("calleeArgIndex: %d", rec.CalleeArgIndex),
		)
	}

	return "{ " + strings.Join(parts, ", ") + " }"
}

// applyInjections splices every injection into source, in ascending
// offset order, and returns the resulting buffer. Insertions sharing an
// offset are emitted in `order`.
func applyInjections(source []byte, injections []injection) []byte {
	if len(injections) == 0 {
		return source
	}

	sort.SliceStable(injections, func(i, j int) bool {
		if injections[i].offset != injections[j].offset {
			return injections[i].offset < injections[j].offset
		}
		return injections[i].order < injections[j].order
	})

	var out strings.Builder
	out.Grow(len(source) + len(injections)*64)

	cursor := 0
	for _, inj := range injections {
		if inj.offset < cursor || inj.offset > len(source) {
			continue // defensive: skip an out-of-range injection rather than corrupt output
		}
		out.Write(source[cursor:inj.offset])
		out.WriteString(inj.text)
		cursor = inj.offset
	}
	out.Write(source[cursor:])

	return []byte(out.String())
}

// bodyStatements joins the rendered statements for every record anchored
// to a single function body into one injection payload, in declaration
// order (entry record, if present, first).
func bodyStatements(records []InstrumentationRecord, filename string) string {
	stmts := make([]string, 0, len(records))
	for _, r := range records {
		stmts = append(stmts, statement(r, filename))
	}
	return strings.Join(stmts, " ")
}
