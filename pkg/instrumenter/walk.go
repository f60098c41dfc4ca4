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
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// functionLikeTypes lists the tree-sitter node types that bind formal
// parameters and have a body worth instrumenting. Signature-only nodes
// (interface method signatures, abstract method signatures, ambient
// function declarations) are deliberately excluded: they have no `body`
// field, so processFunction skips them via its own nil check, but keeping
// them out of this set avoids even attempting classification.
var functionLikeTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// walkResult accumulates the output of one tree walk.
type walkResult struct {
	records    []InstrumentationRecord
	injections []injection
	order      int
}

func (w *walkResult) nextOrder() int {
	w.order++
	return w.order
}

// walkTree visits every node in the tree, instrumenting each
// function-like construct it finds, and returns every emitted record
// together with the byte-offset insertions needed to produce the
// instrumented source.
func walkTree(root *sitter.Node, content []byte, filename string, logger *slog.Logger) ([]InstrumentationRecord, []injection) {
	wr := &walkResult{}

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}

		if n.Type() == "ERROR" {
			logger.Warn("instrumenter.node_skip", "filename", filename, "type", n.Type(),
				"line", int(n.StartPoint().Row)+1)
		} else if functionLikeTypes[n.Type()] {
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Warn("instrumenter.node_skip", "filename", filename,
							"type", n.Type(), "line", int(n.StartPoint().Row)+1, "panic", r)
					}
				}()
				processFunction(n, content, filename, wr)
			}()
		}

		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			visit(n.Child(i))
		}
	}
	visit(root)

	return wr.records, wr.injections
}

// processFunction classifies one function-like node, extracts its formal
// parameters, builds its instrumentation records, and queues the byte
// insertion(s) needed to inject them.
func processFunction(n *sitter.Node, content []byte, filename string, out *walkResult) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return // signature-only declaration: nothing to instrument
	}

	ctx := classifyFunctionLike(n, content)
	paramsNode := arrowParamsNode(n)
	params := extractParameters(paramsNode, content)

	var records []InstrumentationRecord

	records = append(records, InstrumentationRecord{
		Label:              entryLabel(ctx.fnNameBase),
		EntityType:         EntityFunctionEntry,
		FunctionName:       ctx.fnName,
		ParameterCount:     len(params),
		Anchor:             toPosition(n.StartPoint()),
		CalleeName:         ctx.calleeName,
		CalleeArgIndex:     ctx.calleeArgIndex,
		HasCallee:          ctx.hasCallee,
		ArgumentsAvailable: ctx.argumentsAvailable,
		anchorByteOffset:   int(n.StartByte()),
	})

	for _, pn := range params {
		desc := pn.Desc
		records = append(records, InstrumentationRecord{
			Label:              paramLabel(ctx.fnNameBase, desc.Name),
			EntityType:         ctx.entityType,
			FunctionName:       ctx.fnName,
			Parameter:          &desc,
			Anchor:             toPosition(pn.Node.StartPoint()),
			CalleeName:         ctx.calleeName,
			CalleeArgIndex:     ctx.calleeArgIndex,
			HasCallee:          ctx.hasCallee,
			ArgumentsAvailable: ctx.argumentsAvailable,
			anchorByteOffset:   int(pn.Node.StartByte()),
		})
	}

	out.records = append(out.records, records...)

	payload := bodyStatements(records, filename)

	if body.Type() == "statement_block" {
		out.injections = append(out.injections, injection{
			offset: int(body.StartByte()) + 1,
			text:   " " + payload,
			order:  out.nextOrder(),
		})
		return
	}

	// Expression-bodied arrow: rewrite `x => expr` into
	// `x => { <injected>; return expr; }` without touching a single byte
	// of the original expression.
	out.injections = append(out.injections, injection{
		offset: int(body.StartByte()),
		text:   "{ " + payload + "; return ",
		order:  out.nextOrder(),
	})
	out.injections = append(out.injections, injection{
		offset: int(body.EndByte()),
		text:   "; }",
		order:  out.nextOrder(),
	})
}

// functionContext is the resolved classification of a function-like node:
// which entity type it instruments as, and under what composed name.
type functionContext struct {
	entityType EntityType

	// fnNameBase is the prefix used to build both the entry label
	// ("<fnNameBase>_entry") and every parameter label
	// ("<fnNameBase>_param_<p>"): the declared name, "constructor", or
	// "<callee>_argN" for a callback argument.
	fnNameBase string

	// fnName is the plain enclosing-function name carried in metadata
	// (empty for anonymous, non-callback functions).
	fnName string

	argumentsAvailable bool

	calleeName     string
	calleeArgIndex int
	hasCallee      bool
}

// classifyFunctionLike resolves a function-like node's instrumentation
// context by reading its parent chain — never requiring the caller to
// pass context down through the recursion, so every nesting depth is
// handled uniformly.
func classifyFunctionLike(n *sitter.Node, content []byte) functionContext {
	argumentsAvailable := n.Type() != "arrow_function"
	parent := n.Parent()

	// A function literal passed directly as a call argument is always a
	// callback, regardless of any name it may also carry.
	if parent != nil && parent.Type() == "arguments" {
		call := parent.Parent()
		if call != nil && (call.Type() == "call_expression" || call.Type() == "new_expression") {
			calleeNode := call.ChildByFieldName("function")
			if calleeNode == nil {
				calleeNode = call.ChildByFieldName("constructor")
			}
			calleeName := resolveCalleeName(calleeNode, content)
			argIndex := argumentIndex(parent, n)
			return functionContext{
				entityType:         EntityCallbackArgumentParam,
				fnNameBase:         fmt.Sprintf("%s_arg%d", calleeName, argIndex),
				fnName:             functionOwnName(n, content),
				argumentsAvailable: argumentsAvailable,
				calleeName:         calleeName,
				calleeArgIndex:     argIndex,
				hasCallee:          true,
			}
		}
	}

	if n.Type() == "method_definition" {
		name := functionOwnName(n, content)
		if parent != nil && parent.Type() == "class_body" {
			if name == "constructor" {
				return functionContext{entityType: EntityConstructorParam, fnNameBase: "constructor", fnName: "constructor", argumentsAvailable: true}
			}
			return functionContext{entityType: EntityClassMethodParam, fnNameBase: name, fnName: name, argumentsAvailable: true}
		}
		return functionContext{entityType: EntityObjectMethodParam, fnNameBase: name, fnName: name, argumentsAvailable: true}
	}

	if n.Type() == "function_declaration" || n.Type() == "generator_function_declaration" {
		name := functionOwnName(n, content)
		return functionContext{entityType: EntityFunctionDeclarationParam, fnNameBase: name, fnName: name, argumentsAvailable: true}
	}

	if parent != nil && parent.Type() == "variable_declarator" {
		name := variableDeclaratorName(parent, content)
		return functionContext{entityType: EntityArrowFunctionParam, fnNameBase: name, fnName: name, argumentsAvailable: argumentsAvailable}
	}

	if parent != nil && parent.Type() == "pair" {
		name := "anonymous"
		if key := parent.ChildByFieldName("key"); key != nil {
			name = propertyKeyText(key, content)
		}
		return functionContext{entityType: EntityObjectMethodParam, fnNameBase: name, fnName: name, argumentsAvailable: argumentsAvailable}
	}

	if parent != nil && parent.Type() == "assignment_expression" {
		name := "anonymous"
		if left := parent.ChildByFieldName("left"); left != nil {
			if resolved := resolveCalleeName(left, content); resolved != "" {
				name = resolved
			}
		}
		return functionContext{entityType: EntityArrowFunctionParam, fnNameBase: name, fnName: name, argumentsAvailable: argumentsAvailable}
	}

	name := functionOwnName(n, content)
	if name == "" {
		name = "anonymous"
	}
	return functionContext{entityType: EntityArrowFunctionParam, fnNameBase: name, fnName: name, argumentsAvailable: argumentsAvailable}
}

// arrowParamsNode returns the node holding a function's formal parameter
// list, handling the parenthesis-free single-identifier arrow shorthand
// (`x => x * 2`) whose grammar exposes the bare identifier under a
// "parameter" field instead of "parameters".
func arrowParamsNode(n *sitter.Node) *sitter.Node {
	if p := n.ChildByFieldName("parameters"); p != nil {
		return p
	}
	return n.ChildByFieldName("parameter")
}

// functionOwnName reads a function's own declared name field, or "" for
// anonymous function expressions and arrow functions (which have none).
func functionOwnName(n *sitter.Node, content []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(content)
}

// variableDeclaratorName reads the bound name of a variable_declarator,
// falling back to "anonymous" when the binding is itself a destructuring
// pattern rather than a single identifier.
func variableDeclaratorName(declarator *sitter.Node, content []byte) string {
	name := declarator.ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" {
		return "anonymous"
	}
	return name.Content(content)
}

// propertyKeyText renders an object-literal property key as plain text,
// stripping quotes from string keys.
func propertyKeyText(key *sitter.Node, content []byte) string {
	switch key.Type() {
	case "property_identifier", "identifier":
		return key.Content(content)
	case "string":
		return strings.Trim(key.Content(content), `"'`)
	default:
		return key.Content(content)
	}
}

// argumentIndex returns the zero-based position of target among the
// named children of an `arguments` node, matched by byte range since
// go-tree-sitter node values don't support direct equality comparison.
func argumentIndex(arguments, target *sitter.Node) int {
	count := int(arguments.NamedChildCount())
	for i := 0; i < count; i++ {
		child := arguments.NamedChild(i)
		if child != nil && child.StartByte() == target.StartByte() && child.EndByte() == target.EndByte() {
			return i
		}
	}
	return 0
}

// toPosition converts a tree-sitter 0-based point into a 1-based source
// Position.
func toPosition(p sitter.Point) Position {
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}
