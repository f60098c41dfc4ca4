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

// Command twizd runs the collector's ingestion endpoint and the query
// engine's read API behind one HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/paramtrace/twiz/internal/bootstrap"
	"github.com/paramtrace/twiz/internal/errors"
	"github.com/paramtrace/twiz/internal/httpmw"
	"github.com/paramtrace/twiz/pkg/collector"
	"github.com/paramtrace/twiz/pkg/query"
)

func main() {
	configPath := flag.String("config", "", "Path to a collector.yaml config file")
	jsonErrors := flag.Bool("json-errors", false, "Report startup errors as JSON")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	cfg, err := collector.LoadServerConfig(*configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load collector configuration",
			err.Error(),
			"Check the --config path and TWIZ_DB_* environment variables",
			err,
		), *jsonErrors)
	}

	store, storeInfo, err := bootstrap.InitStore(bootstrap.StoreConfig{Database: cfg.Database}, nil)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Cannot reach the collector database",
			err.Error(),
			"Check TWIZ_DB_HOST or start postgres, then retry",
			err,
		), *jsonErrors)
	}
	defer store.Close()

	logger.WithField("address", storeInfo.Address).WithField("dbname", storeInfo.DBName).
		Info("twizd.store.ready")

	ingester := collector.NewIngester(store, logger)
	ingestHandler := collector.NewIngestHandler(ingester, logger, cfg.MaxBatchRecords)

	engine := query.NewEngine(store.DB())
	queryHandlers := query.NewHandlers(engine)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ingestHandler.Register(router)
	queryHandlers.Register(router)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("twizd.server.start")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithField("error", err).Fatal("twizd.server.failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("twizd.server.shutdown.start")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithField("error", err).Fatal("twizd.server.shutdown.forced")
	}

	logger.Info("twizd.server.shutdown.done")
}
