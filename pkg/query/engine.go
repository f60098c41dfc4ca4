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

	"github.com/jmoiron/sqlx"
)

// Engine runs read-only derived views against the store pkg/collector
// fills. It never writes; ingest and query share the same *sqlx.DB pool,
// so readers only ever observe committed state.
type Engine struct {
	db *sqlx.DB
}

// NewEngine returns an Engine reading from db.
func NewEngine(db *sqlx.DB) *Engine {
	return &Engine{db: db}
}

// Stats returns whole-store aggregate counts.
func (e *Engine) Stats(ctx context.Context, _ StatsArgs) (*StatsResult, error) {
	res := &StatsResult{ValueTypeCounts: map[string]int{}}

	if err := e.db.GetContext(ctx, &res.TotalEntities, `SELECT count(*) FROM entities`); err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}
	if err := e.db.GetContext(ctx, &res.TotalObservations, `SELECT count(*) FROM value_observations`); err != nil {
		return nil, fmt.Errorf("count observations: %w", err)
	}
	if err := e.db.GetContext(ctx, &res.DistinctFiles, `SELECT count(DISTINCT filename) FROM entities`); err != nil {
		return nil, fmt.Errorf("count distinct files: %w", err)
	}

	rows, err := e.db.QueryContext(ctx, `SELECT value_type, count(*) FROM value_observations GROUP BY value_type`)
	if err != nil {
		return nil, fmt.Errorf("value type distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var vt string
		var n int
		if err := rows.Scan(&vt, &n); err != nil {
			return nil, fmt.Errorf("scan value type distribution: %w", err)
		}
		res.ValueTypeCounts[vt] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("value type distribution: %w", err)
	}

	return res, nil
}

// Entities returns one row per entity, joined with its value-observation
// count, ordered by last_seen descending, optionally filtered by a
// substring of filename.
func (e *Engine) Entities(ctx context.Context, args EntitiesArgs) (*EntitiesResult, error) {
	limit, offset := clampLimit(args.Limit), clampOffset(args.Offset)

	where := ""
	bindArgs := []any{}
	if args.FilenameContains != "" {
		where = "WHERE e.filename ILIKE $1"
		bindArgs = append(bindArgs, "%"+args.FilenameContains+"%")
	}

	countQuery := fmt.Sprintf(`SELECT count(*) FROM entities e %s`, where)
	var total int
	if err := e.db.GetContext(ctx, &total, countQuery, bindArgs...); err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.filename, e.source_offset, e.entity_name, e.entity_type,
		       e.line_number, e.column_number, e.observation_count, e.last_seen,
		       COALESCE((SELECT count(*) FROM value_observations v WHERE v.entity_id = e.id), 0) AS value_observations
		FROM entities e
		%s
		ORDER BY e.last_seen DESC
		LIMIT %s OFFSET %s
	`, where, placeholder(bindArgs, 1), placeholder(bindArgs, 2))

	var entities []Entity
	if err := e.db.SelectContext(ctx, &entities, query, append(bindArgs, limit, offset)...); err != nil {
		return nil, fmt.Errorf("select entities: %w", err)
	}
	if entities == nil {
		entities = []Entity{}
	}

	return &EntitiesResult{Entities: entities, Page: newPage(offset, limit, total)}, nil
}

// FunctionCalls returns one row per (entity, value_type, literal_value),
// ordered by recency and repetition count.
func (e *Engine) FunctionCalls(ctx context.Context, args FunctionCallsArgs) (*FunctionCallsResult, error) {
	limit, offset := clampLimit(args.Limit), clampOffset(args.Offset)

	var conditions []string
	var bindArgs []any
	if args.FilenameContains != "" {
		bindArgs = append(bindArgs, "%"+args.FilenameContains+"%")
		conditions = append(conditions, fmt.Sprintf("e.filename ILIKE $%d", len(bindArgs)))
	}
	if args.FunctionContains != "" {
		bindArgs = append(bindArgs, "%"+args.FunctionContains+"%")
		conditions = append(conditions, fmt.Sprintf("e.entity_name ILIKE $%d", len(bindArgs)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`
		SELECT count(*) FROM value_observations v JOIN entities e ON e.id = v.entity_id %s
	`, where)
	var total int
	if err := e.db.GetContext(ctx, &total, countQuery, bindArgs...); err != nil {
		return nil, fmt.Errorf("count function calls: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT v.entity_id, e.filename, e.entity_name, v.value_type, v.literal_value,
		       v.observation_count, v.last_seen
		FROM value_observations v
		JOIN entities e ON e.id = v.entity_id
		%s
		ORDER BY v.last_seen DESC, v.observation_count DESC
		LIMIT $%d OFFSET $%d
	`, where, len(bindArgs)+1, len(bindArgs)+2)

	var calls []FunctionCall
	if err := e.db.SelectContext(ctx, &calls, query, append(bindArgs, limit, offset)...); err != nil {
		return nil, fmt.Errorf("select function calls: %w", err)
	}
	if calls == nil {
		calls = []FunctionCall{}
	}

	return &FunctionCallsResult{Calls: calls, Page: newPage(offset, limit, total)}, nil
}

// Location returns every entity at (filename, lineNumber[, columnNumber]),
// each with its observed values attached.
func (e *Engine) Location(ctx context.Context, args LocationArgs) (*LocationResult, error) {
	query := `
		SELECT id, filename, source_offset, entity_name, entity_type,
		       line_number, column_number, observation_count, last_seen,
		       COALESCE((SELECT count(*) FROM value_observations v WHERE v.entity_id = entities.id), 0) AS value_observations
		FROM entities
		WHERE filename = $1 AND line_number = $2
	`
	bindArgs := []any{args.Filename, args.LineNumber}
	if args.ColumnNumber != nil {
		query += " AND column_number = $3"
		bindArgs = append(bindArgs, *args.ColumnNumber)
	}

	var entities []Entity
	if err := e.db.SelectContext(ctx, &entities, query, bindArgs...); err != nil {
		return nil, fmt.Errorf("select entities at location: %w", err)
	}

	result := &LocationResult{Entities: make([]LocationEntity, 0, len(entities))}
	for _, ent := range entities {
		var values []FunctionCall
		valuesQuery := `
			SELECT v.entity_id, e.filename, e.entity_name, v.value_type, v.literal_value,
			       v.observation_count, v.last_seen
			FROM value_observations v
			JOIN entities e ON e.id = v.entity_id
			WHERE v.entity_id = $1
			ORDER BY v.last_seen DESC
		`
		if err := e.db.SelectContext(ctx, &values, valuesQuery, ent.ID); err != nil {
			return nil, fmt.Errorf("select values for entity %d: %w", ent.ID, err)
		}
		result.Entities = append(result.Entities, LocationEntity{Entity: ent, Values: values})
	}

	return result, nil
}

// AdHocQuery executes a single parameterised statement against the
// store. The statement is always prepared first, so multi-statement input
// is rejected by lib/pq's prepare step, not by any SQL parsing here.
func (e *Engine) AdHocQuery(ctx context.Context, args AdHocQueryArgs) (*AdHocQueryResult, error) {
	stmt, err := e.db.PreparexContext(ctx, args.Statement)
	if err != nil {
		return nil, fmt.Errorf("prepare ad-hoc query: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryxContext(ctx, args.Args...)
	if err != nil {
		return nil, fmt.Errorf("execute ad-hoc query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &AdHocQueryResult{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// placeholder renders the positional bind index for the nth appended
// trailing parameter (limit, offset) after len(existing) filter binds.
func placeholder(existing []any, n int) string {
	return fmt.Sprintf("$%d", len(existing)+n)
}
