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
	sitter "github.com/smacker/go-tree-sitter"
)

// paramNode pairs a parameter's extracted descriptor with the AST node it
// was anchored to, so the caller can read that node's original source
// position.
type paramNode struct {
	Desc ParameterDescriptor
	Node *sitter.Node
}

// extractParameters walks a formal_parameters node (or, for a
// parenthesis-free single-identifier arrow parameter, the bare
// identifier node itself) and produces one uniform ParameterDescriptor
// per formal parameter, in declaration order.
func extractParameters(paramsNode *sitter.Node, content []byte) []paramNode {
	if paramsNode == nil {
		return nil
	}

	if paramsNode.Type() == "identifier" {
		return []paramNode{{Desc: extractOneParameter(paramsNode, content, 0), Node: paramsNode}}
	}

	var out []paramNode
	idx := 0
	count := int(paramsNode.NamedChildCount())
	for i := 0; i < count; i++ {
		child := paramsNode.NamedChild(i)
		if child == nil {
			continue
		}
		out = append(out, paramNode{Desc: extractOneParameter(child, content, idx), Node: child})
		idx++
	}
	return out
}

// extractOneParameter classifies a single formal-parameter node into its
// tagged ParameterDescriptor variant.
func extractOneParameter(node *sitter.Node, content []byte, index int) ParameterDescriptor {
	desc := ParameterDescriptor{Index: index, Type: ParameterUntyped}

	switch node.Type() {
	case "identifier":
		desc.Form = FormIdentifier
		desc.Name = node.Content(content)

	case "assignment_pattern":
		desc.Form = FormDefault
		desc.HasDefault = true
		left := node.ChildByFieldName("left")
		inner := extractOneParameter(left, content, index)
		desc.Name = inner.Name
		desc.IsDestructured = inner.IsDestructured
		desc.Type = inner.Type
		desc.Accessibility = inner.Accessibility
		if desc.Name == "" {
			desc.Name = "destructured_object"
		}

	case "rest_pattern", "rest_element":
		desc.Form = FormRest
		desc.IsRest = true
		inner := node.NamedChild(0)
		if inner != nil && inner.Type() == "identifier" {
			desc.Name = inner.Content(content)
		} else {
			desc.Name = "rest"
		}

	case "object_pattern":
		desc.Form = FormObjectPattern
		desc.IsDestructured = true
		desc.Name = "destructured_object"

	case "array_pattern":
		desc.Form = FormArrayPattern
		desc.IsDestructured = true
		desc.Name = "destructured_array"

	case "required_parameter", "optional_parameter":
		// TypeScript-typed parameter, possibly a constructor
		// parameter-property with an accessibility modifier.
		return extractTSParameter(node, content, index)

	default:
		// Anything else (e.g. a bare literal in malformed source) is
		// treated as an opaque identifier so traversal never aborts.
		desc.Form = FormIdentifier
		desc.Name = node.Content(content)
	}

	return desc
}

// extractTSParameter handles the TypeScript grammar's required_parameter /
// optional_parameter wrapper, which carries an optional accessibility
// modifier (constructor parameter-properties), an optional type
// annotation, and wraps the same pattern shapes as plain JS.
func extractTSParameter(node *sitter.Node, content []byte, index int) ParameterDescriptor {
	desc := ParameterDescriptor{Index: index, Type: ParameterUntyped}

	if node.Type() == "optional_parameter" {
		desc.HasDefault = true
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "public", "private", "protected":
			desc.Accessibility = Accessibility(child.Type())
			desc.Form = FormTypedWithVisibility
		case "accessibility_modifier":
			desc.Accessibility = Accessibility(child.Content(content))
			desc.Form = FormTypedWithVisibility
		case "readonly":
			// noted via accessibility-adjacent typing only; no separate field.
		}
	}

	pattern := node.ChildByFieldName("pattern")
	typeAnn := node.ChildByFieldName("type")
	if typeAnn != nil {
		desc.Type = ParameterAnnotated
	}

	if pattern != nil {
		inner := extractOneParameter(pattern, content, index)
		desc.Name = inner.Name
		desc.IsDestructured = inner.IsDestructured
		desc.IsRest = inner.IsRest
		if desc.HasDefault {
			inner.HasDefault = true
		} else {
			desc.HasDefault = inner.HasDefault
		}
		if desc.Form == "" {
			desc.Form = inner.Form
		}
	}

	if desc.Name == "" {
		desc.Name = "param"
	}

	return desc
}
