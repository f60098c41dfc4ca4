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
	"context"
	"fmt"
	"sort"
)

// literalTypeMaxDistinctValues bounds the "type is number with fewer
// than 10 distinct values" literal-type rule.
const literalTypeMaxDistinctValues = 10

// annotationMaxEnumDistinctValues bounds the annotation classifier's enum
// rule: string with 2-10 distinct values. This is narrower than the
// /enums endpoint's own 2-20 candidate range (enums.go's
// maxEnumDistinctValues) — the two thresholds answer different questions
// and must not be conflated.
const annotationMaxEnumDistinctValues = 10

// annotationRank orders the ranked AnnotationCandidates output: enum,
// interface, union, literal-type, simple, then by observation count.
var annotationRank = map[AnnotationKind]int{
	AnnotationEnum:        0,
	AnnotationInterface:   1,
	AnnotationUnion:       2,
	AnnotationLiteralType: 3,
	AnnotationSimple:      4,
}

// AnnotationCandidates classifies every entity with observed values into
// one of {enum, interface, union, literal-type, simple} and returns them
// ranked by kind, then observation count.
func (e *Engine) AnnotationCandidates(ctx context.Context, args AnnotationCandidatesArgs) (*AnnotationCandidatesResult, error) {
	limit, offset := clampLimit(args.Limit), clampOffset(args.Offset)

	const query = `
		SELECT e.id AS entity_id, e.filename, e.entity_name,
		       count(DISTINCT v.value_type) AS distinct_types,
		       count(DISTINCT CASE WHEN v.value_type = 'string' THEN v.literal_value END) AS distinct_strings,
		       count(DISTINCT CASE WHEN v.value_type = 'number' THEN v.literal_value END) AS distinct_numbers,
		       bool_or(v.value_type = 'object') AS has_object,
		       sum(v.observation_count) AS observation_count
		FROM entities e
		JOIN value_observations v ON v.entity_id = e.id
		GROUP BY e.id, e.filename, e.entity_name
	`

	type row struct {
		EntityID         int64   `db:"entity_id"`
		Filename         string  `db:"filename"`
		EntityName       *string `db:"entity_name"`
		DistinctTypes    int     `db:"distinct_types"`
		DistinctStrings  int     `db:"distinct_strings"`
		DistinctNumbers  int     `db:"distinct_numbers"`
		HasObject        bool    `db:"has_object"`
		ObservationCount int64   `db:"observation_count"`
	}

	var rows []row
	if err := e.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select annotation candidates: %w", err)
	}

	candidates := make([]AnnotationCandidate, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, AnnotationCandidate{
			EntityID:         r.EntityID,
			Filename:         r.Filename,
			EntityName:       r.EntityName,
			Kind:             classifyAnnotation(r.DistinctTypes, r.DistinctStrings, r.DistinctNumbers, r.HasObject),
			ObservationCount: r.ObservationCount,
		})
	}

	sortAnnotationCandidates(candidates)

	total := len(candidates)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return &AnnotationCandidatesResult{Candidates: candidates[offset:end], Page: newPage(offset, limit, total)}, nil
}

// classifyAnnotation applies the classification rule in order: string
// with 2-10 distinct values is an enum; any object
// observation makes it an interface; a number with fewer than 10
// distinct values is a literal-type; more than one distinct value_type
// is a union; otherwise simple.
func classifyAnnotation(distinctTypes, distinctStrings, distinctNumbers int, hasObject bool) AnnotationKind {
	switch {
	case distinctStrings >= minEnumDistinctValues && distinctStrings <= annotationMaxEnumDistinctValues:
		return AnnotationEnum
	case hasObject:
		return AnnotationInterface
	case distinctNumbers > 0 && distinctNumbers < literalTypeMaxDistinctValues:
		return AnnotationLiteralType
	case distinctTypes > 1:
		return AnnotationUnion
	default:
		return AnnotationSimple
	}
}

func sortAnnotationCandidates(candidates []AnnotationCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ra, rb := annotationRank[a.Kind], annotationRank[b.Kind]
		if ra != rb {
			return ra < rb
		}
		return a.ObservationCount > b.ObservationCount
	})
}
