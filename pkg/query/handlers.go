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
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handlers exposes the Engine's operations over HTTP.
type Handlers struct {
	engine *Engine
}

// NewHandlers returns gin handlers backed by engine.
func NewHandlers(engine *Engine) *Handlers {
	return &Handlers{engine: engine}
}

// Register mounts every query route on router.
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/stats", h.stats)
	router.GET("/entities", h.entities)
	router.GET("/calls", h.functionCalls)
	router.GET("/location", h.location)
	router.GET("/enums", h.enumCandidates)
	router.GET("/shapes", h.objectShapes)
	router.GET("/annotations", h.annotationCandidates)
	router.POST("/query", h.adHocQuery)
}

func (h *Handlers) stats(c *gin.Context) {
	res, err := h.engine.Stats(c.Request.Context(), StatsArgs{})
	if !respondOrAbort(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) entities(c *gin.Context) {
	args := EntitiesArgs{
		FilenameContains: c.Query("filename"),
		Offset:           queryInt(c, "offset", 0),
		Limit:            queryInt(c, "limit", defaultLimit),
	}
	res, err := h.engine.Entities(c.Request.Context(), args)
	if !respondOrAbort(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) functionCalls(c *gin.Context) {
	args := FunctionCallsArgs{
		FilenameContains: c.Query("filepath"),
		FunctionContains: c.Query("functionName"),
		Offset:           queryInt(c, "offset", 0),
		Limit:            queryInt(c, "pageSize", defaultLimit),
	}
	res, err := h.engine.FunctionCalls(c.Request.Context(), args)
	if !respondOrAbort(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) location(c *gin.Context) {
	filename := c.Query("filename")
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}
	lineNumber, err := strconv.Atoi(c.Query("line_number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "line_number is required and must be an integer"})
		return
	}

	args := LocationArgs{Filename: filename, LineNumber: lineNumber}
	if raw := c.Query("column_number"); raw != "" {
		col, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "column_number must be an integer"})
			return
		}
		args.ColumnNumber = &col
	}

	res, qErr := h.engine.Location(c.Request.Context(), args)
	if !respondOrAbort(c, qErr) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) enumCandidates(c *gin.Context) {
	args := EnumCandidatesArgs{
		MinObservations: queryInt(c, "minObservations", 1),
		Offset:          queryInt(c, "offset", 0),
		Limit:           queryInt(c, "limit", defaultLimit),
	}
	res, err := h.engine.EnumCandidates(c.Request.Context(), args)
	if !respondOrAbort(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) objectShapes(c *gin.Context) {
	args := ObjectShapesArgs{
		MinObservations: queryInt(c, "minObservations", 1),
		Offset:          queryInt(c, "offset", 0),
		Limit:           queryInt(c, "limit", defaultLimit),
	}
	res, err := h.engine.ObjectShapes(c.Request.Context(), args)
	if !respondOrAbort(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) annotationCandidates(c *gin.Context) {
	args := AnnotationCandidatesArgs{
		Offset: queryInt(c, "offset", 0),
		Limit:  queryInt(c, "limit", defaultLimit),
	}
	res, err := h.engine.AnnotationCandidates(c.Request.Context(), args)
	if !respondOrAbort(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

// adHocQueryRequest is the POST /query body.
type adHocQueryRequest struct {
	Statement string `json:"statement" binding:"required"`
	Args      []any  `json:"args"`
}

func (h *Handlers) adHocQuery(c *gin.Context) {
	var req adHocQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.engine.AdHocQuery(c.Request.Context(), AdHocQueryArgs{Statement: req.Statement, Args: req.Args})
	if !respondOrAbort(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func respondOrAbort(c *gin.Context, err error) bool {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
