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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIngestHandler_RejectsOversizedBody(t *testing.T) {
	t.Setenv("TWIZ_SOFT_LIMIT_BYTES", "8")

	h := NewIngestHandler(nil, nil, 0)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`[["a.js", 1, [], {}]]`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func newTestRouter(h *IngestHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)
	return r
}

func TestIngestHandler_RejectsMalformedJSON(t *testing.T) {
	h := NewIngestHandler(nil, nil, 0)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestHandler_EmptyBatchShortCircuits(t *testing.T) {
	h := NewIngestHandler(nil, nil, 0)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`[]`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accepted": 0}`, w.Body.String())
}

func TestIngestHandler_RejectsOversizedBatch(t *testing.T) {
	h := NewIngestHandler(nil, nil, 1)
	r := newTestRouter(h)

	body := `[["a.js", 1, [], {}], ["b.js", 2, [], {}]]`
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
