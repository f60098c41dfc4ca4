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

func TestClampLimit_DefaultsAndCaps(t *testing.T) {
	assert.Equal(t, defaultLimit, clampLimit(0))
	assert.Equal(t, defaultLimit, clampLimit(-5))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, maxLimit, clampLimit(maxLimit*10))
}

func TestClampOffset_NeverNegative(t *testing.T) {
	assert.Equal(t, 0, clampOffset(-1))
	assert.Equal(t, 5, clampOffset(5))
}

func TestNewPage_HasMore(t *testing.T) {
	p := newPage(0, 10, 25)
	assert.True(t, p.HasMore)

	p = newPage(20, 10, 25)
	assert.False(t, p.HasMore)

	p = newPage(15, 10, 25)
	assert.False(t, p.HasMore)
}
