// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes reg as indented JSON.
func SaveRegistry(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks the registry on its own: ids and task types present and unique.
func Validate(reg *ActivityRegistry) error {
	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: taskType", activity.ID)
		}
		if activity.Operation == "" {
			return fmt.Errorf("activity %s missing required field: operation", activity.ID)
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		ids[activity.ID] = true
		taskTypes[activity.TaskType] = true
	}
	return nil
}

// Diff lists how actual departs from expected, by activity id. Registry
// version and timestamps are ignored.
func Diff(expected, actual *ActivityRegistry) []string {
	want := index(expected)
	got := index(actual)

	var diffs []string
	for _, id := range sortedKeys(want) {
		a, ok := got[id]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("%s: missing", id))
			continue
		}
		if !reflect.DeepEqual(normalize(want[id]), normalize(a)) {
			diffs = append(diffs, fmt.Sprintf("%s: out of date", id))
		}
	}
	for _, id := range sortedKeys(got) {
		if _, ok := want[id]; !ok {
			diffs = append(diffs, fmt.Sprintf("%s: unknown activity", id))
		}
	}
	return diffs
}

func index(reg *ActivityRegistry) map[string]Activity {
	out := make(map[string]Activity, len(reg.Activities))
	for _, a := range reg.Activities {
		out[a.ID] = a
	}
	return out
}

func sortedKeys(m map[string]Activity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize round-trips an activity through JSON so values built in code
// compare equal to values read from a file.
func normalize(a Activity) map[string]interface{} {
	data, _ := json.Marshal(a)
	var out map[string]interface{}
	_ = json.Unmarshal(data, &out)
	return out
}
