package main

import (
	"path/filepath"
	"testing"
	"time"

	"coach-generation/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistry(t *testing.T) {
	reg, err := buildRegistry(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2026-01-02T03:04:05Z", reg.LastUpdated)
	require.Len(t, reg.Activities, 6)
	require.NoError(t, registry.Validate(reg))

	byID := map[string]registry.Activity{}
	for _, a := range reg.Activities {
		byID[a.ID] = a
	}
	check := byID["consistency-check"]
	assert.Equal(t, "generation.consistency.check", check.TaskType)
	assert.True(t, check.Degradable)
	assert.False(t, byID["launch-kit"].Degradable)
	assert.Contains(t, check.ErrorCodes, "REPLAY_NOT_FOUND")
	assert.Equal(t, 2, check.Retries)
	assert.Equal(t, "object", check.InputSchema["type"])
}

func TestValidateRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")
	reg, err := buildRegistry(time.Now())
	require.NoError(t, err)
	require.NoError(t, saveRegistry(reg, path))

	diffs, err := validateRegistry(path)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	reg.Activities[0].TaskType = "generation.renamed"
	require.NoError(t, saveRegistry(reg, path))
	diffs, err = validateRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{reg.Activities[0].ID + ": out of date"}, diffs)

	_, err = validateRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
