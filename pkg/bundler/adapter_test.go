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

package bundler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramtrace/twiz/pkg/instrumenter"
)

func TestTransform_SkipsFilesExcludedByFilter(t *testing.T) {
	a := New(instrumenter.New(nil, instrumenter.RuntimeConfig{}), nil)

	source := "function greet(name) { return name; }"
	out, err := a.Transform(context.Background(), File{Filename: "a.css", Source: []byte(source)}, Config{})
	require.NoError(t, err)
	assert.Equal(t, source, out)
}

func TestTransform_InstrumentsMatchingFile(t *testing.T) {
	a := New(instrumenter.New(nil, instrumenter.RuntimeConfig{}), nil)

	source := "function greet(name) { return name; }"
	out, err := a.Transform(context.Background(), File{Filename: "a.js", Source: []byte(source)}, Config{})
	require.NoError(t, err)
	assert.Contains(t, out, "twiz(")
	assert.Contains(t, out, "greet")
}

func TestTransform_UnparseableFilePassesThroughUnchanged(t *testing.T) {
	a := New(instrumenter.New(nil, instrumenter.RuntimeConfig{}), nil)

	source := "\x00\x01\x02 not javascript at all \xff"
	out, err := a.Transform(context.Background(), File{Filename: "a.js", Source: []byte(source)}, Config{})
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "not javascript") || out == source)
}
