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
)

// ObjectShapes returns shape records with at least minObservations
// observations, each enriched with a synthesized composite type
// declaration.
func (e *Engine) ObjectShapes(ctx context.Context, args ObjectShapesArgs) (*ObjectShapesResult, error) {
	limit, offset := clampLimit(args.Limit), clampOffset(args.Offset)
	minObservations := args.MinObservations
	if minObservations <= 0 {
		minObservations = 1
	}

	const countQuery = `
		SELECT count(*) FROM object_shapes s
		WHERE s.observation_count >= $1
	`
	var total int
	if err := e.db.GetContext(ctx, &total, countQuery, minObservations); err != nil {
		return nil, fmt.Errorf("count object shapes: %w", err)
	}

	const query = `
		SELECT s.entity_id, e.filename, s.shape_signature, s.observation_count
		FROM object_shapes s
		JOIN entities e ON e.id = s.entity_id
		WHERE s.observation_count >= $1
		ORDER BY s.observation_count DESC
		LIMIT $2 OFFSET $3
	`

	type row struct {
		EntityID         int64  `db:"entity_id"`
		Filename         string `db:"filename"`
		ShapeSignature   string `db:"shape_signature"`
		ObservationCount int64  `db:"observation_count"`
	}

	var rows []row
	if err := e.db.SelectContext(ctx, &rows, query, minObservations, limit, offset); err != nil {
		return nil, fmt.Errorf("select object shapes: %w", err)
	}

	shapes := make([]ObjectShape, 0, len(rows))
	for _, r := range rows {
		shapes = append(shapes, ObjectShape{
			EntityID:         r.EntityID,
			Filename:         r.Filename,
			ShapeSignature:   r.ShapeSignature,
			TypeDeclaration:  synthesizeTypeDeclaration(r.Filename, r.ShapeSignature),
			ObservationCount: r.ObservationCount,
		})
	}

	return &ObjectShapesResult{Shapes: shapes, Page: newPage(offset, limit, total)}, nil
}

// synthesizeTypeDeclaration renders a shape_signature string
// ("key:type,key:type") as a TypeScript interface declaration, naming it
// after the owning file.
func synthesizeTypeDeclaration(filename, shapeSignature string) string {
	var sb strings.Builder
	sb.WriteString("interface ")
	sb.WriteString(interfaceNameFrom(filename))
	sb.WriteString(" {\n")
	for _, field := range strings.Split(shapeSignature, ",") {
		if field == "" {
			continue
		}
		parts := strings.SplitN(field, ":", 2)
		if len(parts) != 2 {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(parts[0])
		sb.WriteString(": ")
		sb.WriteString(tsTypeFor(parts[1]))
		sb.WriteString(";\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func interfaceNameFrom(filename string) string {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	if base == "" {
		return "Shape"
	}
	return strings.ToUpper(base[:1]) + base[1:] + "Shape"
}

func tsTypeFor(valueType string) string {
	switch valueType {
	case "string", "host":
		return "string"
	case "number":
		return "number"
	case "boolean":
		return "boolean"
	case "array":
		return "unknown[]"
	case "object":
		return "Record<string, unknown>"
	case "null", "undefined":
		return "undefined"
	default:
		return "unknown"
	}
}
