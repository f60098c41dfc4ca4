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
	"strings"

	"github.com/lib/pq"
)

// minEnumDistinctValues and maxEnumDistinctValues bound the "looks like a
// closed enumeration" filter.
const (
	minEnumDistinctValues = 2
	maxEnumDistinctValues = 20

	// enumNameLengthThreshold is the tie-break between the generic
	// "Code" and "Type" suffixes: short observed strings read like
	// codes, longer ones like free-form type values.
	enumNameLengthThreshold = 8
)

// EnumCandidates returns entities whose string observations look like a
// closed enumeration, each enriched with a synthesized name suggestion.
func (e *Engine) EnumCandidates(ctx context.Context, args EnumCandidatesArgs) (*EnumCandidatesResult, error) {
	limit, offset := clampLimit(args.Limit), clampOffset(args.Offset)
	minObservations := args.MinObservations
	if minObservations <= 0 {
		minObservations = 1
	}

	const query = `
		SELECT s.entity_id, e.filename, e.entity_name,
		       array_agg(DISTINCT s.string_value) AS distinct_values,
		       sum(s.observation_count) AS observation_count
		FROM string_literals s
		JOIN entities e ON e.id = s.entity_id
		GROUP BY s.entity_id, e.filename, e.entity_name
		HAVING count(DISTINCT s.string_value) BETWEEN $1 AND $2
		   AND sum(s.observation_count) >= $3
		ORDER BY sum(s.observation_count) DESC
	`

	type row struct {
		EntityID         int64          `db:"entity_id"`
		Filename         string         `db:"filename"`
		EntityName       *string        `db:"entity_name"`
		DistinctValues   pq.StringArray `db:"distinct_values"`
		ObservationCount int64          `db:"observation_count"`
	}

	var rows []row
	if err := e.db.SelectContext(ctx, &rows, query, minEnumDistinctValues, maxEnumDistinctValues, minObservations); err != nil {
		return nil, fmt.Errorf("select enum candidates: %w", err)
	}

	total := len(rows)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	candidates := make([]EnumCandidate, 0, end-offset)
	for _, r := range rows[offset:end] {
		candidates = append(candidates, EnumCandidate{
			EntityID:         r.EntityID,
			Filename:         r.Filename,
			EntityName:       r.EntityName,
			SuggestedName:    suggestEnumName(r.Filename, r.EntityName, []string(r.DistinctValues)),
			DistinctValues:   []string(r.DistinctValues),
			ObservationCount: r.ObservationCount,
		})
	}

	return &EnumCandidatesResult{Candidates: candidates, Page: newPage(offset, limit, total)}, nil
}

// suggestEnumName derives a synthetic name for an enum candidate from its
// observed values, falling back to the entity's own name when no
// keyword match applies.
func suggestEnumName(filename string, entityName *string, values []string) string {
	hasAny := func(markers ...string) bool {
		for _, v := range values {
			lower := strings.ToLower(v)
			for _, m := range markers {
				if strings.Contains(lower, m) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case hasAny("success", "error", "fail", "pending"):
		return "Status"
	case hasAny("read", "write"):
		return "Mode"
	}

	totalLen := 0
	for _, v := range values {
		totalLen += len(v)
	}
	avgLen := 0
	if len(values) > 0 {
		avgLen = totalLen / len(values)
	}

	base := baseNameFrom(filename, entityName)
	if avgLen <= enumNameLengthThreshold {
		return base + "Code"
	}
	return base + "Type"
}

func baseNameFrom(filename string, entityName *string) string {
	if entityName != nil && *entityName != "" {
		return strings.ToUpper((*entityName)[:1]) + (*entityName)[1:]
	}
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	if base == "" {
		return "Enum"
	}
	return strings.ToUpper(base[:1]) + base[1:]
}
