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

// Package collector ingests batches posted by the runtime library and
// applies them to the relational store transactionally.
package collector

import (
	"encoding/json"
	"fmt"
)

// ValueType enumerates the surrogate kinds a serialised value may carry,
// mirroring what pkg/instrumenter's JS prelude emits.
type ValueType string

const (
	ValueString    ValueType = "string"
	ValueNumber    ValueType = "number"
	ValueBoolean   ValueType = "boolean"
	ValueNull      ValueType = "null"
	ValueUndefined ValueType = "undefined"
	ValueArray     ValueType = "array"
	ValueObject    ValueType = "object"
	ValueDate      ValueType = "date"
	ValueRegexp    ValueType = "regexp"
	ValueFunction  ValueType = "function"
	ValueHostTag   ValueType = "host"
)

// Provenance is the (filename, offset) pair attached to a tracked
// composite value, identifying the call site that produced it.
type Provenance struct {
	Filename string
	Offset   int64
}

// UnmarshalJSON accepts the wire form ["filename", offset] or null.
func (p *Provenance) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("provenance: %w", err)
	}
	if err := json.Unmarshal(pair[0], &p.Filename); err != nil {
		return fmt.Errorf("provenance filename: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Offset); err != nil {
		return fmt.Errorf("provenance offset: %w", err)
	}
	return nil
}

// ValueObservationPair is one (value, provenance) entry in a record's
// value list. Value is kept as raw JSON: its shape depends on what was
// serialised client-side, and re-interpretation happens in serialize.go.
type ValueObservationPair struct {
	Value      json.RawMessage
	Provenance *Provenance
}

// UnmarshalJSON accepts the wire form [value, provenance_or_null].
func (v *ValueObservationPair) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("value pair: %w", err)
	}
	v.Value = pair[0]

	var provRaw any
	if err := json.Unmarshal(pair[1], &provRaw); err != nil {
		return fmt.Errorf("value pair provenance: %w", err)
	}
	if provRaw == nil {
		v.Provenance = nil
		return nil
	}
	var prov Provenance
	if err := json.Unmarshal(pair[1], &prov); err != nil {
		return fmt.Errorf("value pair provenance: %w", err)
	}
	v.Provenance = &prov
	return nil
}

// RecordMetadata is the recognised metadata keys from spec §6; any
// unknown key arriving over the wire is ignored rather than rejected.
type RecordMetadata struct {
	FunctionName   string `json:"functionName,omitempty"`
	ParameterName  string `json:"parameterName,omitempty"`
	ParameterIndex *int   `json:"parameterIndex,omitempty"`
	ParameterType  string `json:"parameterType,omitempty"`
	HasDefault     *bool  `json:"hasDefault,omitempty"`
	IsDestructured *bool  `json:"isDestructured,omitempty"`
	IsRest         *bool  `json:"isRest,omitempty"`
	Accessibility  string `json:"accessibility,omitempty"`
	Context        string `json:"context,omitempty"`
	LineNumber     *int   `json:"lineNumber,omitempty"`
	ColumnNumber   *int   `json:"columnNumber,omitempty"`
	CalleeName     string `json:"calleeName,omitempty"`
	CalleeArgIndex *int   `json:"calleeArgIndex,omitempty"`
	ParameterCount *int   `json:"parameterCount,omitempty"`
}

// BatchRecord is one entry of an ingest batch. The wire form accepts
// either the positional 4-tuple `[filename, offset, values, metadata]`
// or an equivalent keyed object; UnmarshalJSON dispatches on whether the
// raw JSON starts with '[' or '{'.
type BatchRecord struct {
	Filename string
	Offset   int64
	Values   []ValueObservationPair
	Metadata RecordMetadata
}

type keyedBatchRecord struct {
	Filename string                 `json:"filename"`
	Offset   int64                  `json:"offset"`
	Values   []ValueObservationPair `json:"values"`
	Metadata RecordMetadata         `json:"metadata"`
}

// UnmarshalJSON accepts a batch record in either its compact positional
// array form or its keyed object form.
func (r *BatchRecord) UnmarshalJSON(data []byte) error {
	trimmed := jsonFirstNonSpace(data)
	if trimmed == '[' {
		var tuple struct {
			Filename string
			Offset   int64
			Values   []ValueObservationPair
			Metadata RecordMetadata
		}
		var raw [4]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("positional batch record: %w", err)
		}
		if err := json.Unmarshal(raw[0], &tuple.Filename); err != nil {
			return fmt.Errorf("positional batch record filename: %w", err)
		}
		if err := json.Unmarshal(raw[1], &tuple.Offset); err != nil {
			return fmt.Errorf("positional batch record offset: %w", err)
		}
		if err := json.Unmarshal(raw[2], &tuple.Values); err != nil {
			return fmt.Errorf("positional batch record values: %w", err)
		}
		if len(raw[3]) > 0 {
			if err := json.Unmarshal(raw[3], &tuple.Metadata); err != nil {
				return fmt.Errorf("positional batch record metadata: %w", err)
			}
		}
		r.Filename, r.Offset, r.Values, r.Metadata = tuple.Filename, tuple.Offset, tuple.Values, tuple.Metadata
		return nil
	}

	var keyed keyedBatchRecord
	if err := json.Unmarshal(data, &keyed); err != nil {
		return fmt.Errorf("keyed batch record: %w", err)
	}
	r.Filename, r.Offset, r.Values, r.Metadata = keyed.Filename, keyed.Offset, keyed.Values, keyed.Metadata
	return nil
}

func jsonFirstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}

// Batch is the decoded POST body for the ingest endpoint.
type Batch []BatchRecord
