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
	"testing"

	"github.com/stretchr/testify/assert"
)

// The Go test suite cannot execute JavaScript, so these assertions check
// the emitted text's structure rather than its runtime behaviour: that
// the required guard clauses, function names and wrapping are present.
func TestPrelude_DefinesGlobalEntryPoint(t *testing.T) {
	js := Prelude("", 0)
	assert.Contains(t, js, "global.twiz = function twiz(")
	assert.Contains(t, js, "global.__twizTrack = track;")
}

func TestPrelude_UsesConfiguredEndpointAndPeriod(t *testing.T) {
	js := Prelude("https://collector.example.com/ingest", 5000)
	assert.Contains(t, js, `"https://collector.example.com/ingest"`)
	assert.Contains(t, js, "5000")
}

func TestPrelude_DefaultsApplied(t *testing.T) {
	js := Prelude("", 0)
	assert.Contains(t, js, DefaultIngestPath)
	assert.Contains(t, js, "2000")
}

func TestPrelude_SafeSerializationGuards(t *testing.T) {
	js := Prelude("", 0)
	assert.Contains(t, js, "[Circular Reference]")
	assert.Contains(t, js, "[Serialization Error: ")
	assert.Contains(t, js, "__structural: true")
	assert.True(t, strings.Contains(js, "try {") && strings.Contains(js, "catch (err)"),
		"twiz() body must be wrapped in a try/catch so instrumentation never throws")
}

func TestPrelude_DedupAndTrackSideChannel(t *testing.T) {
	js := Prelude("", 0)
	assert.Contains(t, js, "function track(value, filename, offset)")
	assert.Contains(t, js, "WeakMap")
}

func TestPrelude_FlushTimerIsSingleShot(t *testing.T) {
	js := Prelude("", 0)
	assert.Contains(t, js, "function scheduleFlush()")
	assert.Contains(t, js, "if (flushTimer !== null) return;")
}
