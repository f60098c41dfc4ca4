// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftLimitBytes_DefaultsWhenUnset(t *testing.T) {
	assert.Equal(t, DefaultSoftLimitBytes, SoftLimitBytes())
}

func TestSoftLimitBytes_EnvOverride(t *testing.T) {
	t.Setenv("TWIZ_SOFT_LIMIT_BYTES", "1024")
	assert.Equal(t, 1024, SoftLimitBytes())
}

func TestSoftLimitBytes_IgnoresInvalidEnv(t *testing.T) {
	t.Setenv("TWIZ_SOFT_LIMIT_BYTES", "not-a-number")
	assert.Equal(t, DefaultSoftLimitBytes, SoftLimitBytes())
}

func TestValidateIngestBody_RejectsOversized(t *testing.T) {
	t.Setenv("TWIZ_SOFT_LIMIT_BYTES", "10")
	result := ValidateIngestBody([]byte(strings.Repeat("a", 11)))
	assert.False(t, result.OK)
}

func TestValidateIngestBody_AcceptsWithinLimit(t *testing.T) {
	t.Setenv("TWIZ_SOFT_LIMIT_BYTES", "10")
	result := ValidateIngestBody([]byte("small"))
	assert.True(t, result.OK)
}
