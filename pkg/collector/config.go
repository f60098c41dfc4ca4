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
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig is the collector server's full configuration: database
// connection, listen address, and batch size caps. It is loaded from an
// optional YAML file and then overlaid with environment variables.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	Database Config `yaml:"database"`

	// MaxBatchRecords bounds how many records one POST /ingest body may
	// contain; larger bodies are rejected with a client error.
	MaxBatchRecords int `yaml:"max_batch_records"`
}

// DefaultServerConfig returns the configuration used when neither a YAML
// file nor environment variables override it.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr: ":8090",
		Database: Config{
			Host:    "localhost",
			Port:    "5432",
			User:    "twiz",
			DBName:  "twiz",
			SSLMode: "disable",
		},
		MaxBatchRecords: 10000,
	}
}

// LoadServerConfig reads configPath (if non-empty and present) as YAML
// over the defaults, then applies TWIZ_-prefixed environment overrides.
// A missing configPath is not an error: env vars and defaults still
// apply.
func LoadServerConfig(configPath string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", configPath, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *ServerConfig) {
	if v := os.Getenv("TWIZ_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TWIZ_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("TWIZ_DB_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("TWIZ_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("TWIZ_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("TWIZ_DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("TWIZ_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
}
