package catalog

import (
	"testing"

	"coach-generation/internal/common/logger"
	"coach-generation/internal/workers/generation"
	"coach-generation/internal/workers/generation/generationtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries_CoverEveryOperationOnce(t *testing.T) {
	taskTypes := map[string]bool{}
	keys := map[string]bool{}
	ops := map[string]bool{}

	for _, e := range Entries() {
		assert.False(t, taskTypes[e.TaskType], "duplicate task type %s", e.TaskType)
		assert.False(t, keys[e.Key], "duplicate key %s", e.Key)
		assert.False(t, ops[e.Operation.String()], "duplicate operation %s", e.Operation)
		taskTypes[e.TaskType] = true
		keys[e.Key] = true
		ops[e.Operation.String()] = true

		assert.True(t, e.Operation.Valid())
		assert.Equal(t, "object", e.InputSchema.Type)
		assert.Contains(t, e.InputSchema.Required, "userId")
	}
	assert.Len(t, ops, 6)
}

func TestNewHandlers_MatchEntries(t *testing.T) {
	h := generationtest.New(t)

	handlers, err := NewHandlers(generation.HandlerOptions{Engine: h.Engine, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	entries := Entries()
	require.Len(t, handlers, len(entries))
	for i, handler := range handlers {
		assert.Equal(t, entries[i].TaskType, handler.GetTaskType())
		assert.True(t, handler.IsEnabled())
	}
}

func TestNewHandlers_RequiresEngine(t *testing.T) {
	_, err := NewHandlers(generation.HandlerOptions{Logger: logger.NewTestLogger(t)})
	assert.Error(t, err)
}
