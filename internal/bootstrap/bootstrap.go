// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/paramtrace/twiz/pkg/collector"
)

// StoreConfig holds configuration for initializing the collector store.
type StoreConfig struct {
	// Database identifies the Postgres connection to use.
	Database collector.Config
}

// StoreInfo holds information about an initialized store.
type StoreInfo struct {
	Address string
	DBName  string
}

// InitStore opens the Postgres-backed store and ensures its schema
// exists, returning the open store for the caller to serve requests
// from. This function is idempotent: calling it multiple times is
// safe, since EnsureSchema only ever issues CREATE ... IF NOT EXISTS
// statements. The caller owns the returned store and must Close it.
//
// The function:
//  1. Connects to Postgres using config.Database
//  2. Verifies the connection with a ping
//  3. Creates schema tables if they don't exist
//
// After successful initialization the entities, hof_relationships,
// value_observations, string_literals, and object_shapes tables all
// exist and are ready for the collector to write to and the query
// engine to read from.
func InitStore(config StoreConfig, logger *slog.Logger) (*collector.PostgresStore, *StoreInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.Database.Host == "" {
		return nil, nil, fmt.Errorf("database host is required")
	}

	logger.Info("bootstrap.store.init.start",
		"host", config.Database.Host,
		"port", config.Database.Port,
		"dbname", config.Database.DBName,
	)

	store, err := collector.Open(config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	if err := store.EnsureSchema(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("bootstrap.store.init.success",
		"host", config.Database.Host,
		"dbname", config.Database.DBName,
	)

	return store, &StoreInfo{
		Address: config.Database.Host + ":" + config.Database.Port,
		DBName:  config.Database.DBName,
	}, nil
}

// OpenStore opens the collector store without re-running schema setup.
// Callers that need schema guarantees on every startup should use
// InitStore instead; OpenStore is for short-lived tools (CLI subcommands)
// that only need a connection.
func OpenStore(config StoreConfig, logger *slog.Logger) (*collector.PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.Database.Host == "" {
		return nil, fmt.Errorf("database host is required")
	}

	logger.Debug("bootstrap.store.open",
		"host", config.Database.Host,
		"dbname", config.Database.DBName,
	)

	store, err := collector.Open(config.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return store, nil
}
