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

import "fmt"

// schemaStatements lists one CREATE TABLE IF NOT EXISTS (or index) per
// statement so EnsureSchema can apply them individually and report which
// one failed, rather than relying on a migration framework.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT NOT NULL,
		source_offset BIGINT NOT NULL,
		entity_name TEXT,
		entity_type TEXT,
		line_number INTEGER,
		column_number INTEGER,
		observation_count BIGINT NOT NULL DEFAULT 0,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (filename, source_offset)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entities_filename ON entities (filename)`,

	`CREATE TABLE IF NOT EXISTS hof_relationships (
		id BIGSERIAL PRIMARY KEY,
		entity_id BIGINT NOT NULL REFERENCES entities(id),
		callee_name TEXT NOT NULL,
		callee_arg_index INTEGER NOT NULL,
		observation_count BIGINT NOT NULL DEFAULT 0,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (entity_id, callee_name, callee_arg_index)
	)`,

	`CREATE TABLE IF NOT EXISTS value_observations (
		id BIGSERIAL PRIMARY KEY,
		entity_id BIGINT NOT NULL REFERENCES entities(id),
		value_type TEXT NOT NULL,
		literal_value TEXT NOT NULL,
		value_hash CHAR(8) NOT NULL,
		context TEXT NOT NULL,
		observation_count BIGINT NOT NULL DEFAULT 0,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (entity_id, value_hash, context)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_value_observations_entity_type
		ON value_observations (entity_id, value_type)`,
	`CREATE INDEX IF NOT EXISTS idx_value_observations_hash
		ON value_observations (value_hash)`,

	`CREATE TABLE IF NOT EXISTS string_literals (
		id BIGSERIAL PRIMARY KEY,
		entity_id BIGINT NOT NULL REFERENCES entities(id),
		string_value TEXT NOT NULL,
		context TEXT NOT NULL,
		observation_count BIGINT NOT NULL DEFAULT 0,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (entity_id, string_value, context)
	)`,

	`CREATE TABLE IF NOT EXISTS object_shapes (
		id BIGSERIAL PRIMARY KEY,
		entity_id BIGINT NOT NULL REFERENCES entities(id),
		shape_signature TEXT NOT NULL,
		observation_count BIGINT NOT NULL DEFAULT 0,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (entity_id, shape_signature)
	)`,
}

// EnsureSchema applies every CREATE TABLE/INDEX IF NOT EXISTS statement.
// It is idempotent and safe to call on every collector startup; there is
// no migration framework, just one statement per table applied directly.
func (s *PostgresStore) EnsureSchema() error {
	for i, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
