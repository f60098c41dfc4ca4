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
	"path/filepath"
	"strings"
)

// recognisedDialectExtensions is the set of filename extensions the
// instrumenter has a dialect for. Extensions outside this set are
// never instrumented regardless of include/exclude filters.
var recognisedDialectExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".mts": true, ".cts": true,
	".tsx": true,
}

// hasRecognisedExtension reports whether filename carries one of the
// dialect extensions the instrumenter handles.
func hasRecognisedExtension(filename string) bool {
	return recognisedDialectExtensions[strings.ToLower(filepath.Ext(filename))]
}

// matchesAny reports whether path matches at least one of patterns. An
// empty pattern list matches nothing — callers treat "no includes given"
// as "everything passes" rather than calling this with an empty slice.
func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesGlob(path, pattern) {
			return true
		}
	}
	return false
}

// matchesGlob matches path against pattern, where pattern may contain a
// "**" segment matching any number of path segments (including zero),
// and every other segment is matched with filepath.Match (so "*", "?",
// and "[...]" behave as usual within one segment).
func matchesGlob(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)
	return matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/"))
}

func matchSegments(path, pattern []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}

	if pattern[0] == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(path); i++ {
			if matchSegments(path[i:], pattern[1:]) {
				return true
			}
		}
		return false
	}

	if len(path) == 0 {
		return false
	}

	ok, err := filepath.Match(pattern[0], path[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(path[1:], pattern[1:])
}

// Included reports whether filename should be instrumented: it must
// match at least one include pattern (when includes are given), must
// not match any exclude pattern, and must carry a recognised dialect
// extension.
func Included(filename string, cfg Config) bool {
	if !hasRecognisedExtension(filename) {
		return false
	}
	if len(cfg.Include) > 0 && !matchesAny(filename, cfg.Include) {
		return false
	}
	if matchesAny(filename, cfg.Exclude) {
		return false
	}
	return true
}
