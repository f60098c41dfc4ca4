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

func TestClassifyAnnotation_EnumWindow(t *testing.T) {
	assert.Equal(t, AnnotationEnum, classifyAnnotation(1, 2, 0, false))
	assert.Equal(t, AnnotationEnum, classifyAnnotation(1, 10, 0, false))
	assert.Equal(t, AnnotationSimple, classifyAnnotation(1, 11, 0, false))
}

func TestClassifyAnnotation_EnumishStringsWinOverObject(t *testing.T) {
	assert.Equal(t, AnnotationEnum, classifyAnnotation(2, 3, 0, true))
}

func TestClassifyAnnotation_NumberUnderTenIsLiteralType(t *testing.T) {
	assert.Equal(t, AnnotationLiteralType, classifyAnnotation(1, 0, 5, false))
}

func TestClassifyAnnotation_MultipleTypesIsUnion(t *testing.T) {
	assert.Equal(t, AnnotationUnion, classifyAnnotation(2, 0, 0, false))
}

func TestClassifyAnnotation_FallsBackToSimple(t *testing.T) {
	assert.Equal(t, AnnotationSimple, classifyAnnotation(1, 0, 0, false))
	assert.Equal(t, AnnotationSimple, classifyAnnotation(1, 1, 0, false))
}

func TestSortAnnotationCandidates_OrdersByKindThenCount(t *testing.T) {
	candidates := []AnnotationCandidate{
		{EntityID: 1, Kind: AnnotationSimple, ObservationCount: 100},
		{EntityID: 2, Kind: AnnotationEnum, ObservationCount: 1},
		{EntityID: 3, Kind: AnnotationEnum, ObservationCount: 5},
		{EntityID: 4, Kind: AnnotationInterface, ObservationCount: 50},
	}

	sortAnnotationCandidates(candidates)

	require := []int64{3, 2, 4, 1}
	got := make([]int64, len(candidates))
	for i, c := range candidates {
		got[i] = c.EntityID
	}
	assert.Equal(t, require, got)
}
