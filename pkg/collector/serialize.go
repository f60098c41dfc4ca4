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

package collector

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxObjectLiteralBytes and maxArrayElements are the §3 re-serialisation
// caps applied when producing literal_value for storage.
const (
	maxObjectLiteralBytes = 1000
	maxArrayElements      = 10
)

// valueTypeOf derives value_type from an already-decoded surrogate,
// matching the tag set the JS prelude's safeSerialize produces.
func valueTypeOf(v any) ValueType {
	switch t := v.(type) {
	case nil:
		return ValueNull
	case bool:
		return ValueBoolean
	case float64:
		return ValueNumber
	case string:
		switch {
		case strings.HasPrefix(t, "[Element: "), strings.HasPrefix(t, "[NodeList"), strings.HasPrefix(t, "[Event: "):
			return ValueHostTag
		case strings.HasPrefix(t, "[Date: "):
			return ValueDate
		case strings.HasPrefix(t, "[RegExp: "):
			return ValueRegexp
		}
		return ValueString
	case []any:
		return ValueArray
	case map[string]any:
		if structural, ok := t["__structural"].(bool); ok && structural {
			if kind, _ := t["kind"].(string); kind == "function" {
				return ValueFunction
			}
			if _, hasLength := t["length"]; hasLength {
				return ValueArray
			}
			return ValueObject
		}
		return ValueObject
	default:
		return ValueObject
	}
}

// reserialize decodes raw and produces literal_value under the §3 caps:
// objects truncated to maxObjectLiteralBytes, arrays to maxArrayElements.
func reserialize(raw json.RawMessage) (ValueType, string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", "", fmt.Errorf("decode value: %w", err)
	}

	vt := valueTypeOf(decoded)

	if arr, ok := decoded.([]any); ok && len(arr) > maxArrayElements {
		decoded = arr[:maxArrayElements]
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		return "", "", fmt.Errorf("encode value: %w", err)
	}

	literal := string(encoded)
	if (vt == ValueObject || vt == ValueArray) && len(literal) > maxObjectLiteralBytes {
		literal = literal[:maxObjectLiteralBytes]
	}

	return vt, literal, nil
}

// valueHash computes value_hash: the first 8 hex characters of MD5 over
// literal_value, used as half of the value-observation natural key.
func valueHash(literalValue string) string {
	sum := md5.Sum([]byte(literalValue))
	return hex.EncodeToString(sum[:])[:8]
}

// enrichedContext builds the §4.3 "<entity_context>_in_<functionName>"
// form when a function name is known, else the bare entity context.
func enrichedContext(entityContext, functionName string) string {
	if functionName == "" {
		return entityContext
	}
	return fmt.Sprintf("%s_in_%s", entityContext, functionName)
}

var (
	urlishMarker  = regexp.MustCompile(`[/\\]|http`)
	purelyNumeric = regexp.MustCompile(`^[0-9]+$`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// isEnumCandidateString applies the §3/§9 string-literal filter: length
// 1-50, no more than 3 whitespace-separated tokens, no URL-ish markers,
// not purely numeric.
func isEnumCandidateString(s string) bool {
	if len(s) < 1 || len(s) > 50 {
		return false
	}
	if urlishMarker.MatchString(s) {
		return false
	}
	if purelyNumeric.MatchString(s) {
		return false
	}
	tokens := whitespaceRun.Split(strings.TrimSpace(s), -1)
	if len(tokens) > 3 {
		return false
	}
	return true
}

// isShapeCandidateObject applies the §3 object-shape filter: a non-array
// object with 1-20 own enumerable keys.
func isShapeCandidateObject(decoded map[string]any) bool {
	if structural, ok := decoded["__structural"].(bool); ok && structural {
		return false // a structural descriptor carries no real keys to sign
	}
	n := len(decoded)
	return n >= 1 && n <= 20
}

// shapeSignature computes the canonical signature: keys sorted
// lexicographically, each annotated with its primitive-or-composite
// type, joined by commas — e.g. "completed:boolean,description:string".
func shapeSignature(decoded map[string]any) string {
	keys := make([]string, 0, len(decoded))
	for k := range decoded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+string(valueTypeOf(decoded[k])))
	}
	return strings.Join(parts, ",")
}

// jsonUnmarshalString decodes a literal_value string produced by
// reserialize back into a plain Go string, reporting false if the
// literal isn't a JSON string (e.g. it was capped to an invalid
// truncation boundary).
func jsonUnmarshalString(literal string, out *string) bool {
	return json.Unmarshal([]byte(literal), out) == nil
}

// decodeObject decodes a value's JSON text into a map, for
// shape-signature computation. It reports false for anything that is not
// a complete JSON object.
func decodeObject(literalValue string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(literalValue), &m); err != nil {
		return nil, false
	}
	return m, true
}

// formatOffset renders a source offset for use in contexts expecting a
// plain string (e.g. log fields); kept as a small helper rather than
// scattering strconv.FormatInt calls.
func formatOffset(offset int64) string {
	return strconv.FormatInt(offset, 10)
}
