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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instrument(t *testing.T, source, filename string) Result {
	t.Helper()
	inst := New(nil, RuntimeConfig{})
	return inst.Instrument(context.Background(), []byte(source), filename)
}

func labelsOf(res Result) []string {
	var out []string
	for _, r := range res.Records {
		out = append(out, r.Label)
	}
	return out
}

func TestInstrument_FunctionDeclaration(t *testing.T) {
	src := `function add(a, b) {
  return a + b;
}`
	res := instrument(t, src, "math.js")
	require.False(t, res.Unparseable)

	labels := labelsOf(res)
	assert.Contains(t, labels, "add_entry")
	assert.Contains(t, labels, "add_param_a")
	assert.Contains(t, labels, "add_param_b")
	assert.Contains(t, string(res.Source), "twiz(")
}

func TestInstrument_ArrowFunctionExpressionBody(t *testing.T) {
	src := `const double = x => x * 2;`
	res := instrument(t, src, "util.js")
	require.False(t, res.Unparseable)

	labels := labelsOf(res)
	assert.Contains(t, labels, "double_entry")
	assert.Contains(t, labels, "double_param_x")

	assert.Contains(t, string(res.Source), "return x * 2")
}

func TestInstrument_ArrowFunctionBlockBody(t *testing.T) {
	src := `const greet = (name) => {
  return "hi " + name;
};`
	res := instrument(t, src, "util.js")
	require.False(t, res.Unparseable)
	assert.Contains(t, labelsOf(res), "greet_param_name")
}

func TestInstrument_ClassMethodAndConstructor(t *testing.T) {
	src := `class UserService {
  constructor(db) {
    this.db = db;
  }
  findUser(id) {
    return this.db.get(id);
  }
}`
	res := instrument(t, src, "service.ts")
	require.False(t, res.Unparseable)

	labels := labelsOf(res)
	assert.Contains(t, labels, "constructor_param_db")
	assert.Contains(t, labels, "findUser_param_id")
}

func TestInstrument_ObjectMethod(t *testing.T) {
	src := `const handlers = {
  onClick(event) {
    console.log(event);
  },
};`
	res := instrument(t, src, "handlers.js")
	require.False(t, res.Unparseable)
	assert.Contains(t, labelsOf(res), "onClick_param_event")
}

func TestInstrument_CallbackArgument(t *testing.T) {
	src := `items.forEach(function (item, index) {
  process(item, index);
});`
	res := instrument(t, src, "list.js")
	require.False(t, res.Unparseable)

	var found bool
	for _, r := range res.Records {
		if r.EntityType == EntityCallbackArgumentParam && r.CalleeName == "items.forEach" {
			found = true
		}
	}
	assert.True(t, found, "expected a callback_argument_parameter record for items.forEach")
}

func TestInstrument_DestructuredParameter(t *testing.T) {
	src := `function render({ title, body }) {
  return title + body;
}`
	res := instrument(t, src, "render.js")
	require.False(t, res.Unparseable)

	var found *InstrumentationRecord
	for i := range res.Records {
		if res.Records[i].Parameter != nil && res.Records[i].Parameter.IsDestructured {
			found = &res.Records[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, FormObjectPattern, found.Parameter.Form)
	assert.Contains(t, string(res.Source), "arguments[0]")
}

func TestInstrument_TypeScriptConstructorProperty(t *testing.T) {
	src := `class Widget {
  constructor(private readonly name: string, public size: number) {}
}`
	res := instrument(t, src, "widget.ts")
	require.False(t, res.Unparseable)

	var nameParam *ParameterDescriptor
	for _, r := range res.Records {
		if r.Parameter != nil && r.Parameter.Name == "name" {
			nameParam = r.Parameter
		}
	}
	require.NotNil(t, nameParam)
	assert.Equal(t, AccessibilityPrivate, nameParam.Accessibility)
	assert.Equal(t, ParameterAnnotated, nameParam.Type)
}

func TestInstrument_RestParameter(t *testing.T) {
	src := `function sum(first, ...rest) {
  return first + rest.length;
}`
	res := instrument(t, src, "sum.js")
	require.False(t, res.Unparseable)

	var rest *ParameterDescriptor
	for _, r := range res.Records {
		if r.Parameter != nil && r.Parameter.IsRest {
			rest = r.Parameter
		}
	}
	require.NotNil(t, rest)
	assert.Equal(t, FormRest, rest.Form)
	assert.Equal(t, "rest", rest.Name)
}

func TestInstrument_DefaultParameter(t *testing.T) {
	src := `function greet(name = "world") {
  return name;
}`
	res := instrument(t, src, "greet.js")
	require.False(t, res.Unparseable)

	var def *ParameterDescriptor
	for _, r := range res.Records {
		if r.Parameter != nil && r.Parameter.HasDefault {
			def = r.Parameter
		}
	}
	require.NotNil(t, def)
	assert.Equal(t, FormDefault, def.Form)
	assert.Equal(t, "name", def.Name)
}

func TestInstrument_SyntaxErrorDoesNotAbort(t *testing.T) {
	src := `function broken( {
  return 1;
`
	res := instrument(t, src, "broken.js")
	// tree-sitter error-recovers rather than refusing to parse; the
	// instrumenter should not panic, and should still return a buffer.
	assert.NotEmpty(t, res.Source)
}

func TestInstrument_UnparseableBinaryGarbage(t *testing.T) {
	src := "\x00\x01\x02\x03\xff\xfe binary garbage { { { ("
	res := instrument(t, src, "garbage.js")
	// Even when tree-sitter produces only ERROR nodes the instrumenter
	// must not corrupt the byte stream: it either leaves it untouched or
	// marks it unparseable, never both empty and "parsed".
	if res.Unparseable {
		assert.Equal(t, src, string(res.Source))
	}
}

func TestInstrument_EmptyFileProducesNoRecords(t *testing.T) {
	res := instrument(t, "", "empty.js")
	assert.Empty(t, res.Records)
	assert.Equal(t, "", string(res.Source))
}

func TestInstrument_LineColumnFidelityOnUntouchedNodes(t *testing.T) {
	src := `function first(a) {
  return a;
}

function second(b) {
  return b;
}
`
	res := instrument(t, src, "two.js")
	require.False(t, res.Unparseable)

	var secondEntry *InstrumentationRecord
	for i := range res.Records {
		if res.Records[i].Label == "second_entry" {
			secondEntry = &res.Records[i]
		}
	}
	require.NotNil(t, secondEntry)
	assert.Equal(t, 5, secondEntry.Anchor.Line)
	assert.Equal(t, 1, secondEntry.Anchor.Column)
}

func TestDialectForFilename(t *testing.T) {
	cases := map[string]Dialect{
		"a.js":   DialectJavaScript,
		"a.mjs":  DialectJavaScript,
		"a.jsx":  DialectJavaScript,
		"a.ts":   DialectTypeScript,
		"a.mts":  DialectTypeScript,
		"a.tsx":  DialectTSX,
		"a.unk":  DialectJavaScript,
	}
	for file, want := range cases {
		assert.Equal(t, want, DialectForFilename(file), file)
	}
}
