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

// Package query exposes a small, closed set of derived views over the
// relational store pkg/collector fills, plus a bounded ad-hoc query
// facility.
package query

import "time"

// Page is the pagination envelope returned by Entities, FunctionCalls,
// EnumCandidates, ObjectShapes and AnnotationCandidates.
type Page struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

func newPage(offset, limit, total int) Page {
	return Page{Offset: offset, Limit: limit, Total: total, HasMore: offset+limit < total}
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// StatsArgs has no parameters; Stats is a whole-store aggregate.
type StatsArgs struct{}

// StatsResult is the aggregate counts view.
type StatsResult struct {
	TotalEntities     int            `json:"totalEntities"`
	TotalObservations int            `json:"totalObservations"`
	DistinctFiles     int            `json:"distinctFiles"`
	ValueTypeCounts   map[string]int `json:"valueTypeCounts"`
}

// EntitiesArgs filters and paginates the Entities view.
type EntitiesArgs struct {
	FilenameContains string
	Offset           int
	Limit            int
}

// Entity is one row of the Entities view: an entity joined with its
// value-observation count.
type Entity struct {
	ID                int64     `json:"id" db:"id"`
	Filename          string    `json:"filename" db:"filename"`
	SourceOffset      int64     `json:"sourceOffset" db:"source_offset"`
	EntityName        *string   `json:"entityName,omitempty" db:"entity_name"`
	EntityType        *string   `json:"entityType,omitempty" db:"entity_type"`
	LineNumber        *int      `json:"lineNumber,omitempty" db:"line_number"`
	ColumnNumber      *int      `json:"columnNumber,omitempty" db:"column_number"`
	ObservationCount  int64     `json:"observationCount" db:"observation_count"`
	ValueObservations int64     `json:"valueObservations" db:"value_observations"`
	LastSeen          time.Time `json:"lastSeen" db:"last_seen"`
}

// EntitiesResult is the paginated Entities response.
type EntitiesResult struct {
	Entities []Entity `json:"entities"`
	Page     Page     `json:"page"`
}

// FunctionCallsArgs filters and paginates the FunctionCalls view.
type FunctionCallsArgs struct {
	FilenameContains string
	FunctionContains string
	Offset           int
	Limit            int
}

// FunctionCall is one row of the FunctionCalls view: a single observed
// value for an entity, with recency and repetition count.
type FunctionCall struct {
	EntityID         int64     `json:"entityId" db:"entity_id"`
	Filename         string    `json:"filename" db:"filename"`
	FunctionName     *string   `json:"functionName,omitempty" db:"entity_name"`
	ValueType        string    `json:"valueType" db:"value_type"`
	LiteralValue     string    `json:"literalValue" db:"literal_value"`
	ObservationCount int64     `json:"observationCount" db:"observation_count"`
	LastSeen         time.Time `json:"lastSeen" db:"last_seen"`
}

// FunctionCallsResult is the paginated FunctionCalls response.
type FunctionCallsResult struct {
	Calls []FunctionCall `json:"calls"`
	Page  Page           `json:"page"`
}

// LocationArgs pinpoints entities by source position. ColumnNumber is
// optional: nil matches every column at the given line.
type LocationArgs struct {
	Filename     string
	LineNumber   int
	ColumnNumber *int
}

// LocationEntity is one entity at the requested location, with its
// observed values attached.
type LocationEntity struct {
	Entity Entity         `json:"entity"`
	Values []FunctionCall `json:"values"`
}

// LocationResult is the grouped response for Location: one entry per
// matching entity. It carries no count and no Page.
type LocationResult struct {
	Entities []LocationEntity `json:"entities"`
}

// EnumCandidatesArgs filters the EnumCandidates view.
type EnumCandidatesArgs struct {
	MinObservations int
	Offset          int
	Limit           int
}

// EnumCandidate is an entity whose observed strings look like a closed
// enumeration, with a synthesized name suggestion.
type EnumCandidate struct {
	EntityID         int64    `json:"entityId"`
	Filename         string   `json:"filename"`
	EntityName       *string  `json:"entityName,omitempty"`
	SuggestedName    string   `json:"suggestedName"`
	DistinctValues   []string `json:"distinctValues"`
	ObservationCount int64    `json:"observationCount"`
}

// EnumCandidatesResult is the paginated EnumCandidates response.
type EnumCandidatesResult struct {
	Candidates []EnumCandidate `json:"candidates"`
	Page       Page            `json:"page"`
}

// ObjectShapesArgs filters the ObjectShapes view.
type ObjectShapesArgs struct {
	MinObservations int
	Offset          int
	Limit           int
}

// ObjectShape is a shape record enriched with a synthesized composite
// type declaration.
type ObjectShape struct {
	EntityID         int64  `json:"entityId"`
	Filename         string `json:"filename"`
	ShapeSignature   string `json:"shapeSignature"`
	TypeDeclaration  string `json:"typeDeclaration"`
	ObservationCount int64  `json:"observationCount"`
}

// ObjectShapesResult is the paginated ObjectShapes response.
type ObjectShapesResult struct {
	Shapes []ObjectShape `json:"shapes"`
	Page   Page          `json:"page"`
}

// AnnotationKind is the classification AnnotationCandidates assigns an
// entity.
type AnnotationKind string

const (
	AnnotationEnum        AnnotationKind = "enum"
	AnnotationInterface   AnnotationKind = "interface"
	AnnotationUnion       AnnotationKind = "union"
	AnnotationLiteralType AnnotationKind = "literal-type"
	AnnotationSimple      AnnotationKind = "simple"
)

// AnnotationCandidatesArgs paginates the AnnotationCandidates view.
type AnnotationCandidatesArgs struct {
	Offset int
	Limit  int
}

// AnnotationCandidate is one entity's suggested static type annotation.
type AnnotationCandidate struct {
	EntityID         int64          `json:"entityId"`
	Filename         string         `json:"filename"`
	EntityName       *string        `json:"entityName,omitempty"`
	Kind             AnnotationKind `json:"kind"`
	ObservationCount int64          `json:"observationCount"`
}

// AnnotationCandidatesResult is the paginated AnnotationCandidates
// response.
type AnnotationCandidatesResult struct {
	Candidates []AnnotationCandidate `json:"candidates"`
	Page       Page                  `json:"page"`
}

// AdHocQueryArgs is a single parameterised statement. Args are bound
// positionally as $1, $2, ... per lib/pq convention.
type AdHocQueryArgs struct {
	Statement string
	Args      []any
}

// AdHocQueryResult is the column-oriented result of an ad-hoc query.
type AdHocQueryResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}
