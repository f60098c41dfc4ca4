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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesGlob_BasicPatterns(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		{"exact match", "foo.go", "foo.go", true},
		{"exact no match", "foo.go", "bar.go", false},
		{"star suffix", "foo.js", "*.js", true},
		{"star no match ext", "foo.txt", "*.js", false},
		{"doublestar any depth", "a/b/c/foo.js", "**/*.js", true},
		{"doublestar root", "foo.js", "**/*.js", true},
		{"doublestar prefix", "node_modules/pkg/index.js", "node_modules/**", true},
		{"doublestar prefix no match", "src/index.js", "node_modules/**", false},
		{"question mark wildcard", "foo.js", "fo?.js", true},
		{"question mark no match", "fooo.js", "fo?.js", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchesGlob(tc.path, tc.pattern))
		})
	}
}

func TestHasRecognisedExtension(t *testing.T) {
	assert.True(t, hasRecognisedExtension("a.js"))
	assert.True(t, hasRecognisedExtension("a.TSX"))
	assert.True(t, hasRecognisedExtension("a.mts"))
	assert.False(t, hasRecognisedExtension("a.go"))
	assert.False(t, hasRecognisedExtension("a.json"))
}

func TestIncluded_RequiresAtLeastOneIncludeMatch(t *testing.T) {
	cfg := Config{Include: []string{"src/**"}}
	assert.True(t, Included("src/app.js", cfg))
	assert.False(t, Included("test/app.js", cfg))
}

func TestIncluded_NoIncludesMeansEverythingPasses(t *testing.T) {
	cfg := Config{}
	assert.True(t, Included("anything/app.ts", cfg))
}

func TestIncluded_ExcludeWins(t *testing.T) {
	cfg := Config{Include: []string{"**/*.js"}, Exclude: []string{"node_modules/**"}}
	assert.True(t, Included("src/app.js", cfg))
	assert.False(t, Included("node_modules/pkg/index.js", cfg))
}

func TestIncluded_RejectsUnrecognisedExtension(t *testing.T) {
	cfg := Config{}
	assert.False(t, Included("styles/app.css", cfg))
}
