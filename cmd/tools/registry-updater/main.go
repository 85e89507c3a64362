// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/workers/catalog"
	"coach-generation/internal/workers/generation"
	"coach-generation/pkg/registry"
)

const registryVersion = "1.0.0"

// outputVariables are set by every generation worker on completion.
var outputVariables = []string{"generationId", "result", "degraded", "degradeReason", "schemaRepairAttempts"}

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	generatePath := generateCmd.String("path", "configs/activity-registry.json", "Path to write the registry to")
	validatePath := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		reg, err := buildRegistry(time.Now())
		if err != nil {
			fmt.Printf("Error building registry: %v\n", err)
			os.Exit(1)
		}
		if err := saveRegistry(reg, *generatePath); err != nil {
			fmt.Printf("Error writing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), *generatePath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		diffs, err := validateRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if len(diffs) > 0 {
			fmt.Println("Registry is out of date with the worker catalog:")
			for _, d := range diffs {
				fmt.Printf("  %s\n", d)
			}
			fmt.Println("Run 'registry-updater generate' to refresh it.")
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

// buildRegistry describes every catalog entry as an activity.
func buildRegistry(now time.Time) (*registry.ActivityRegistry, error) {
	errorCodes := make([]string, 0, len(svcerrors.AllCodes))
	retries := 0
	for _, code := range svcerrors.AllCodes {
		errorCodes = append(errorCodes, string(code))
		retries = max(retries, svcerrors.GetRetryCount(code))
	}
	timeout := generation.DefaultConfig().Timeout.String()

	reg := &registry.ActivityRegistry{
		Version:     registryVersion,
		LastUpdated: now.UTC().Format(time.RFC3339),
	}
	for _, e := range catalog.Entries() {
		schema, err := toMap(e.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encode %s input schema: %w", e.Key, err)
		}
		reg.Activities = append(reg.Activities, registry.Activity{
			ID:              e.Key,
			DisplayName:     e.DisplayName,
			Description:     e.Description,
			Category:        "generation",
			Version:         registryVersion,
			TaskType:        e.TaskType,
			Operation:       e.Operation.String(),
			InputSchema:     schema,
			OutputVariables: outputVariables,
			ErrorCodes:      errorCodes,
			Timeout:         timeout,
			Retries:         retries,
			Degradable:      e.HasPlaceholder,
			Tags:            []string{"llm", e.Operation.String()},
		})
	}
	return reg, nil
}

// validateRegistry checks the file on its own and against the catalog.
func validateRegistry(path string) ([]string, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := registry.Validate(reg); err != nil {
		return nil, err
	}
	expected, err := buildRegistry(time.Now())
	if err != nil {
		return nil, err
	}
	return registry.Diff(expected, reg), nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	err = json.Unmarshal(data, &out)
	return out, err
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return registry.SaveRegistry(reg, path)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  generate  Write the activity registry from the worker catalog
  validate  Check a registry file against the worker catalog
  help      Show this help message

Examples:
  registry-updater generate -path configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
