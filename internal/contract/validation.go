// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"os"
	"strconv"
)

const (
	// DefaultSoftLimitBytes is the baseline soft limit for an ingest
	// request body.
	DefaultSoftLimitBytes = 64 << 20 // 64 MiB
)

// SoftLimitBytes returns the effective soft limit for a POST /ingest
// body. Controlled via env TWIZ_SOFT_LIMIT_BYTES; falls back to
// DefaultSoftLimitBytes.
func SoftLimitBytes() int {
	if v := os.Getenv("TWIZ_SOFT_LIMIT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultSoftLimitBytes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateIngestBody checks a raw ingest request body against the soft
// size limit before it is unmarshalled into a Batch.
func ValidateIngestBody(body []byte) *ValidationResult {
	if len(body) > SoftLimitBytes() {
		return &ValidationResult{
			OK:      false,
			Message: "ingest body exceeds soft limit",
		}
	}
	return &ValidationResult{OK: true}
}
