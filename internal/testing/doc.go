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

// Package testing provides test helpers for collector and query-engine
// tests that need a *sqlx.DB without a real Postgres instance.
//
// # Quick Start
//
// Use NewMockStore to get a *sqlx.DB backed by a sqlmock driver, with
// regexp query matching so expectations don't need to reproduce every
// generated SQL statement verbatim:
//
//	func TestApply(t *testing.T) {
//	    db, mock := testing.NewMockStore(t)
//	    mock.ExpectBegin()
//	    mock.ExpectQuery(`INSERT INTO entities`).WillReturnRows(
//	        sqlmock.NewRows([]string{"id", "entity_type"}).AddRow(1, "param"),
//	    )
//	    mock.ExpectCommit()
//
//	    store := &collector.PostgresStore{} // wired with db in the real test
//	    // ...
//	}
//
// The mock's expectations are asserted automatically via t.Cleanup, so a
// test fails if it sets up expectations that are never exercised.
package testing
