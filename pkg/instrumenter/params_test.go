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

// TestExtractParameters_ArrayPattern exercises the array-destructuring
// branch directly through Instrument, since extractParameters is
// unexported package-internal plumbing best exercised end to end.
func TestExtractParameters_ArrayPattern(t *testing.T) {
	src := `function swap([a, b]) {
  return [b, a];
}`
	res := instrument(t, src, "swap.js")
	require.False(t, res.Unparseable)

	var arr *ParameterDescriptor
	for _, r := range res.Records {
		if r.Parameter != nil && r.Parameter.Form == FormArrayPattern {
			arr = r.Parameter
		}
	}
	require.NotNil(t, arr)
	assert.True(t, arr.IsDestructured)
	assert.Equal(t, "destructured_array", arr.Name)
}

// TestExtractParameters_DefaultedDestructuring verifies a defaulted
// destructured parameter is tagged FormDefault but still IsDestructured,
// since parameterValueExpression in emit.go keys on the latter flag.
func TestExtractParameters_DefaultedDestructuring(t *testing.T) {
	src := `function configure({ retries, timeout } = {}) {
  return retries + timeout;
}`
	res := instrument(t, src, "configure.js")
	require.False(t, res.Unparseable)

	var p *ParameterDescriptor
	for _, r := range res.Records {
		if r.Parameter != nil {
			p = r.Parameter
		}
	}
	require.NotNil(t, p)
	assert.Equal(t, FormDefault, p.Form)
	assert.True(t, p.IsDestructured)
}

// TestExtractParameters_BareArrowIdentifier exercises the
// parenthesis-free single-identifier arrow shorthand.
func TestExtractParameters_BareArrowIdentifier(t *testing.T) {
	ctx := context.Background()
	inst := New(nil, RuntimeConfig{})
	res := inst.Instrument(ctx, []byte("const square = n => n * n;"), "square.js")
	require.False(t, res.Unparseable)

	labels := labelsOf(res)
	assert.Contains(t, labels, "square_param_n")
}

// TestExtractTSParameter_OptionalHasDefault verifies TypeScript's
// optional_parameter wrapper (`name?: string`) is reported as HasDefault,
// matching its "may be omitted by the caller" semantics.
func TestExtractTSParameter_OptionalHasDefault(t *testing.T) {
	src := `function label(name?: string) {
  return name;
}`
	res := instrument(t, src, "label.ts")
	require.False(t, res.Unparseable)

	var p *ParameterDescriptor
	for _, r := range res.Records {
		if r.Parameter != nil {
			p = r.Parameter
		}
	}
	require.NotNil(t, p)
	assert.True(t, p.HasDefault)
	assert.Equal(t, ParameterAnnotated, p.Type)
}
