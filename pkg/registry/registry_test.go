package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{
				ID:          "launch-kit",
				TaskType:    "generation.launch-kit.generate",
				Operation:   "generate_launch_kit",
				InputSchema: map[string]interface{}{"type": "object", "required": []interface{}{"userId"}},
				ErrorCodes:  []string{"REPLAY_NOT_FOUND"},
				Retries:     2,
			},
			{
				ID:         "consistency-check",
				TaskType:   "generation.consistency.check",
				Operation:  "check_consistency",
				Degradable: true,
			},
		},
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, SaveRegistry(sample(), path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Empty(t, Diff(sample(), loaded))
	assert.NoError(t, Validate(loaded))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(&ActivityRegistry{}))

	dup := sample()
	dup.Activities[1].TaskType = dup.Activities[0].TaskType
	assert.ErrorContains(t, Validate(dup), "duplicate task type")

	noOp := sample()
	noOp.Activities[0].Operation = ""
	assert.ErrorContains(t, Validate(noOp), "operation")
}

func TestDiff(t *testing.T) {
	actual := sample()
	actual.Version = "0.9.0"
	actual.LastUpdated = "yesterday"
	assert.Empty(t, Diff(sample(), actual))

	actual.Activities[0].Retries = 5
	actual.Activities = append(actual.Activities[:1], Activity{ID: "franchise-search", TaskType: "x", Operation: "y"})

	assert.Equal(t, []string{
		"consistency-check: missing",
		"launch-kit: out of date",
		"franchise-search: unknown activity",
	}, Diff(sample(), actual))
}
