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

// Package bootstrap handles collector store initialization and setup.
//
// This internal package provides the core initialization logic for the
// twiz collector. It opens the Postgres-backed store with the required
// schema for type-profile ingestion and ensures all prerequisites are
// met before the collector or query server can serve requests.
//
// # Initialization Workflow
//
// A typical workflow for standing up a new collector:
//
//	// Connect, create schema if missing, and get back an open store.
//	store, info, err := bootstrap.InitStore(bootstrap.StoreConfig{
//	    Database: collector.Config{Host: "localhost", Port: "5432", User: "twiz", DBName: "twiz"},
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//	fmt.Printf("Store ready at: %s\n", info.Address)
//
//	// A short-lived CLI tool that only needs a connection, and trusts
//	// schema was already created by a long-running twizd, can skip the
//	// schema check:
//	store, err := bootstrap.OpenStore(bootstrap.StoreConfig{
//	    Database: collector.Config{Host: "localhost", Port: "5432", User: "twiz", DBName: "twiz"},
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Idempotency
//
// InitStore is idempotent: calling it multiple times against the same
// database is safe and will not corrupt existing data, since schema
// creation uses CREATE TABLE IF NOT EXISTS throughout. This makes it
// suitable for use on every collector startup.
package bootstrap
