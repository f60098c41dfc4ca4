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
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Ingester applies ingest batches to a PostgresStore under the upsert
// protocol: one transaction per batch, independent per-record upserts,
// idempotent replay.
type Ingester struct {
	store  *PostgresStore
	logger *logrus.Logger
}

// NewIngester returns an Ingester writing to store. A nil logger falls
// back to logrus.StandardLogger().
func NewIngester(store *PostgresStore, logger *logrus.Logger) *Ingester {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Ingester{store: store, logger: logger}
}

// Apply ingests one batch. Each record is applied within the same
// transaction; any single record's failure fails the whole batch.
func (ing *Ingester) Apply(batch Batch) error {
	start := time.Now()

	err := ing.store.Transaction(func(tx *sqlx.Tx) error {
		for _, rec := range batch {
			if err := ing.applyRecord(tx, rec); err != nil {
				return fmt.Errorf("apply record (filename=%s offset=%s): %w", rec.Filename, formatOffset(rec.Offset), err)
			}
		}
		return nil
	})

	if err != nil {
		recordBatchError()
		ing.logger.WithFields(logrus.Fields{
			"record_count": len(batch),
			"error":        err,
		}).Error("collector.ingest.batch_failed")
		return err
	}

	recordBatchApplied(len(batch), time.Since(start).Seconds())
	ing.logger.WithFields(logrus.Fields{
		"record_count": len(batch),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("collector.ingest.batch_applied")
	return nil
}

func (ing *Ingester) applyRecord(tx *sqlx.Tx, rec BatchRecord) error {
	entityID, entityContext, err := upsertEntity(tx, rec)
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}

	if rec.Metadata.CalleeName != "" && rec.Metadata.CalleeArgIndex != nil {
		if err := upsertHOFRelationship(tx, entityID, rec.Metadata.CalleeName, *rec.Metadata.CalleeArgIndex); err != nil {
			return fmt.Errorf("upsert hof relationship: %w", err)
		}
	}

	for _, pair := range rec.Values {
		if err := ing.applyValue(tx, entityID, entityContext, rec.Metadata.FunctionName, pair); err != nil {
			return fmt.Errorf("apply value: %w", err)
		}
	}

	return nil
}

// upsertEntity applies rule 1 (entity natural key) and rule 2 (entity
// metadata, null-preserving) in one statement, returning the entity's id
// and its context tag (entity_type, or "" if never set).
func upsertEntity(tx *sqlx.Tx, rec BatchRecord) (int64, string, error) {
	const query = `
		INSERT INTO entities (filename, source_offset, entity_name, entity_type, line_number, column_number, observation_count, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, 1, now(), now())
		ON CONFLICT (filename, source_offset) DO UPDATE SET
			entity_name   = COALESCE(EXCLUDED.entity_name, entities.entity_name),
			entity_type   = COALESCE(EXCLUDED.entity_type, entities.entity_type),
			line_number   = COALESCE(EXCLUDED.line_number, entities.line_number),
			column_number = COALESCE(EXCLUDED.column_number, entities.column_number),
			observation_count = entities.observation_count + 1,
			last_seen = now()
		RETURNING id, COALESCE(entity_type, '')
	`

	var entityName, entityType any
	if rec.Metadata.Context != "" {
		entityType = rec.Metadata.Context
	}
	if rec.Metadata.FunctionName != "" || rec.Metadata.ParameterName != "" {
		name := rec.Metadata.ParameterName
		if name == "" {
			name = rec.Metadata.FunctionName
		}
		entityName = name
	}

	var id int64
	var context string
	err := tx.QueryRow(query, rec.Filename, rec.Offset, entityName, entityType,
		rec.Metadata.LineNumber, rec.Metadata.ColumnNumber).Scan(&id, &context)
	if err != nil {
		return 0, "", err
	}
	return id, context, nil
}

// upsertHOFRelationship applies rule 3.
func upsertHOFRelationship(tx *sqlx.Tx, entityID int64, calleeName string, calleeArgIndex int) error {
	const query = `
		INSERT INTO hof_relationships (entity_id, callee_name, callee_arg_index, observation_count, first_seen, last_seen)
		VALUES ($1, $2, $3, 1, now(), now())
		ON CONFLICT (entity_id, callee_name, callee_arg_index) DO UPDATE SET
			observation_count = hof_relationships.observation_count + 1,
			last_seen = now()
	`
	_, err := tx.Exec(query, entityID, calleeName, calleeArgIndex)
	return err
}

// applyValue applies rule 4: value-observation upsert, then the
// conditional string-literal and object-shape upserts.
func (ing *Ingester) applyValue(tx *sqlx.Tx, entityID int64, entityContext, functionName string, pair ValueObservationPair) error {
	valueType, literal, err := reserialize(pair.Value)
	if err != nil {
		return fmt.Errorf("reserialize: %w", err)
	}
	hash := valueHash(literal)
	context := enrichedContext(entityContext, functionName)

	if err := upsertValueObservation(tx, entityID, valueType, literal, hash, context); err != nil {
		return fmt.Errorf("upsert value observation: %w", err)
	}

	switch valueType {
	case ValueString:
		var s string
		if jsonUnmarshalString(literal, &s) && isEnumCandidateString(s) {
			if err := upsertStringLiteral(tx, entityID, s, context); err != nil {
				return fmt.Errorf("upsert string literal: %w", err)
			}
		}
	case ValueObject:
		if obj, ok := decodeObject(string(pair.Value)); ok && isShapeCandidateObject(obj) {
			sig := shapeSignature(obj)
			if err := upsertObjectShape(tx, entityID, sig); err != nil {
				return fmt.Errorf("upsert object shape: %w", err)
			}
		}
	}

	return nil
}

func upsertValueObservation(tx *sqlx.Tx, entityID int64, valueType ValueType, literal, hash, context string) error {
	const query = `
		INSERT INTO value_observations (entity_id, value_type, literal_value, value_hash, context, observation_count, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, 1, now(), now())
		ON CONFLICT (entity_id, value_hash, context) DO UPDATE SET
			observation_count = value_observations.observation_count + 1,
			last_seen = now()
	`
	_, err := tx.Exec(query, entityID, string(valueType), literal, hash, context)
	return err
}

func upsertStringLiteral(tx *sqlx.Tx, entityID int64, stringValue, context string) error {
	const query = `
		INSERT INTO string_literals (entity_id, string_value, context, observation_count, first_seen, last_seen)
		VALUES ($1, $2, $3, 1, now(), now())
		ON CONFLICT (entity_id, string_value, context) DO UPDATE SET
			observation_count = string_literals.observation_count + 1,
			last_seen = now()
	`
	_, err := tx.Exec(query, entityID, stringValue, context)
	return err
}

func upsertObjectShape(tx *sqlx.Tx, entityID int64, signature string) error {
	const query = `
		INSERT INTO object_shapes (entity_id, shape_signature, observation_count, first_seen, last_seen)
		VALUES ($1, $2, 1, now(), now())
		ON CONFLICT (entity_id, shape_signature) DO UPDATE SET
			observation_count = object_shapes.observation_count + 1,
			last_seen = now()
	`
	_, err := tx.Exec(query, entityID, signature)
	return err
}
