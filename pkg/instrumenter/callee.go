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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// resolveCalleeName walks a call expression's callee, reading identifier
// chains: a bare identifier "f" yields "f"; a member chain "a.b.c" yields
// "a.b.c"; any other form (a call, a parenthesized expression, a computed
// member access) falls back to the node's own source text.
func resolveCalleeName(callee *sitter.Node, content []byte) string {
	if callee == nil {
		return ""
	}

	switch callee.Type() {
	case "identifier":
		return callee.Content(content)

	case "member_expression":
		object := callee.ChildByFieldName("object")
		property := callee.ChildByFieldName("property")
		if object == nil || property == nil {
			return callee.Content(content)
		}
		if property.Type() != "property_identifier" && property.Type() != "identifier" {
			return callee.Content(content)
		}
		objName := resolveCalleeName(object, content)
		if objName == "" {
			return callee.Content(content)
		}
		return objName + "." + property.Content(content)

	default:
		return prettyPrintCallee(callee.Content(content))
	}
}

// prettyPrintCallee collapses internal whitespace runs so that callee text
// spanning multiple source lines still yields a single-line, stable label.
func prettyPrintCallee(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}
