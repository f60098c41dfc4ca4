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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestHandlerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandlers(NewEngine(nil)).Register(r)
	return r
}

func TestLocationHandler_RequiresFilename(t *testing.T) {
	r := newTestHandlerRouter()

	req := httptest.NewRequest(http.MethodGet, "/location?line_number=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationHandler_RequiresIntegerLine(t *testing.T) {
	r := newTestHandlerRouter()

	req := httptest.NewRequest(http.MethodGet, "/location?filename=a.js&line_number=notanumber", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationHandler_RejectsNonIntegerColumn(t *testing.T) {
	r := newTestHandlerRouter()

	req := httptest.NewRequest(http.MethodGet, "/location?filename=a.js&line_number=10&column_number=bad", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdHocQueryHandler_RequiresStatement(t *testing.T) {
	r := newTestHandlerRouter()

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryInt_FallsBackOnMissingOrInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got int
	r.GET("/x", func(c *gin.Context) {
		got = queryInt(c, "n", 42)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 42, got)

	req = httptest.NewRequest(http.MethodGet, "/x?n=7", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 7, got)

	req = httptest.NewRequest(http.MethodGet, "/x?n=nope", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 42, got)
}
