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
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/paramtrace/twiz/internal/contract"
)

// IngestHandler exposes POST /ingest for the runtime library's batch
// flushes.
type IngestHandler struct {
	ingester        *Ingester
	logger          *logrus.Logger
	maxBatchRecords int
}

// NewIngestHandler returns a handler that applies accepted batches via
// ingester. maxBatchRecords <= 0 disables the size cap.
func NewIngestHandler(ingester *Ingester, logger *logrus.Logger, maxBatchRecords int) *IngestHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &IngestHandler{ingester: ingester, logger: logger, maxBatchRecords: maxBatchRecords}
}

// Register mounts the ingest route on router.
func (h *IngestHandler) Register(router gin.IRouter) {
	router.POST("/ingest", h.handleIngest)
}

func (h *IngestHandler) handleIngest(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.WithField("error", err).Warn("collector.ingest.read_failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if result := contract.ValidateIngestBody(body); !result.OK {
		h.logger.WithField("body_bytes", len(body)).Warn("collector.ingest.body_too_large")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": result.Message})
		return
	}

	var batch Batch
	if err := json.Unmarshal(body, &batch); err != nil {
		h.logger.WithField("error", err).Warn("collector.ingest.bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(batch) == 0 {
		c.JSON(http.StatusOK, gin.H{"accepted": 0})
		return
	}

	if h.maxBatchRecords > 0 && len(batch) > h.maxBatchRecords {
		h.logger.WithFields(logrus.Fields{
			"record_count": len(batch),
			"max":          h.maxBatchRecords,
		}).Warn("collector.ingest.batch_too_large")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "batch exceeds maximum record count",
			"max":   h.maxBatchRecords,
		})
		return
	}

	if err := h.ingester.Apply(batch); err != nil {
		h.logger.WithFields(logrus.Fields{
			"record_count": len(batch),
			"error":        err,
		}).Error("collector.ingest.apply_failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply batch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": len(batch)})
}
