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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRecord_PositionalForm(t *testing.T) {
	raw := `["app.js", 42, [["hello", ["app.js", 41]]], {"functionName": "greet"}]`

	var rec BatchRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, "app.js", rec.Filename)
	assert.EqualValues(t, 42, rec.Offset)
	assert.Equal(t, "greet", rec.Metadata.FunctionName)
	require.Len(t, rec.Values, 1)
	assert.JSONEq(t, `"hello"`, string(rec.Values[0].Value))
	require.NotNil(t, rec.Values[0].Provenance)
	assert.Equal(t, "app.js", rec.Values[0].Provenance.Filename)
	assert.EqualValues(t, 41, rec.Values[0].Provenance.Offset)
}

func TestBatchRecord_KeyedForm(t *testing.T) {
	raw := `{
		"filename": "app.js",
		"offset": 42,
		"values": [[1, null]],
		"metadata": {"parameterName": "count"}
	}`

	var rec BatchRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, "app.js", rec.Filename)
	assert.EqualValues(t, 42, rec.Offset)
	assert.Equal(t, "count", rec.Metadata.ParameterName)
	require.Len(t, rec.Values, 1)
	assert.Nil(t, rec.Values[0].Provenance)
}

func TestBatchRecord_MissingMetadataDefaultsEmpty(t *testing.T) {
	raw := `["app.js", 1, [], null]`

	var rec BatchRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Empty(t, rec.Metadata.FunctionName)
	assert.Empty(t, rec.Values)
}

func TestBatch_DecodesMixedRecordForms(t *testing.T) {
	raw := `[
		["a.js", 1, [], {}],
		{"filename": "b.js", "offset": 2, "values": [], "metadata": {}}
	]`

	var batch Batch
	require.NoError(t, json.Unmarshal([]byte(raw), &batch))

	require.Len(t, batch, 2)
	assert.Equal(t, "a.js", batch[0].Filename)
	assert.Equal(t, "b.js", batch[1].Filename)
}

func TestProvenance_UnmarshalRejectsWrongArity(t *testing.T) {
	var p Provenance
	err := json.Unmarshal([]byte(`["only-one"]`), &p)
	assert.Error(t, err)
}
