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

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestEnumName_StatusKeywords(t *testing.T) {
	name := suggestEnumName("order.js", nil, []string{"success", "error", "pending"})
	assert.Equal(t, "Status", name)
}

func TestSuggestEnumName_ModeKeywords(t *testing.T) {
	name := suggestEnumName("fs.js", nil, []string{"read", "write"})
	assert.Equal(t, "Mode", name)
}

func TestSuggestEnumName_ShortStringsFallBackToCode(t *testing.T) {
	name := suggestEnumName("order.js", nil, []string{"a", "b", "c"})
	assert.Equal(t, "OrderCode", name)
}

func TestSuggestEnumName_LongStringsFallBackToType(t *testing.T) {
	name := suggestEnumName("order.js", nil, []string{"a fairly long descriptive value", "another long value here"})
	assert.Equal(t, "OrderType", name)
}

func TestSuggestEnumName_PrefersEntityNameOverFilename(t *testing.T) {
	entityName := "status"
	name := suggestEnumName("anything.js", &entityName, []string{"a", "b"})
	assert.Equal(t, "StatusCode", name)
}

func TestBaseNameFrom_StripsDirectoryAndExtension(t *testing.T) {
	assert.Equal(t, "Order", baseNameFrom("src/models/order.js", nil))
}
