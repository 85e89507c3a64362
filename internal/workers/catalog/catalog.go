// Package catalog lists every generation worker the service runs.
package catalog

import (
	"fmt"

	"coach-generation/internal/common/validation"
	"coach-generation/internal/llm"
	"coach-generation/internal/workers/generation"
	consistencycheck "coach-generation/internal/workers/generation/consistency-check"
	contentmatrix "coach-generation/internal/workers/generation/content-matrix"
	identitymodels "coach-generation/internal/workers/generation/identity-models"
	launchkit "coach-generation/internal/workers/generation/launch-kit"
	monetizationmap "coach-generation/internal/workers/generation/monetization-map"
	personaconstitution "coach-generation/internal/workers/generation/persona-constitution"
)

// Entry describes one worker without constructing it.
type Entry struct {
	Key         string
	DisplayName string
	Description string
	TaskType    string
	Operation   llm.Operation
	InputSchema validation.JSONSchema
	// HasPlaceholder is true when exhausted repairs degrade instead of failing.
	HasPlaceholder bool

	newHandler func(generation.HandlerOptions) (generation.Handler, error)
}

// Entries returns the workers in pipeline order.
func Entries() []Entry {
	return []Entry{
		{
			Key:         identitymodels.ConfigKey,
			DisplayName: "Generate Identity Models",
			Description: "Generates candidate creator identity cards from a capability profile, one provider call per card.",
			TaskType:    identitymodels.TaskType,
			Operation:   llm.OpGenerateIdentityModels,
			InputSchema: identitymodels.GetInputSchema(),
			newHandler: func(o generation.HandlerOptions) (generation.Handler, error) {
				return identitymodels.NewHandler(identitymodels.HandlerOptions{HandlerOptions: o})
			},
		},
		{
			Key:         personaconstitution.ConfigKey,
			DisplayName: "Generate Persona Constitution",
			Description: "Generates the persona constitution for a chosen identity, keeping seeded forbidden words.",
			TaskType:    personaconstitution.TaskType,
			Operation:   llm.OpGenerateConstitution,
			InputSchema: personaconstitution.GetInputSchema(),
			newHandler: func(o generation.HandlerOptions) (generation.Handler, error) {
				return personaconstitution.NewHandler(personaconstitution.HandlerOptions{HandlerOptions: o})
			},
		},
		{
			Key:         launchkit.ConfigKey,
			DisplayName: "Generate 7-Day Launch Kit",
			Description: "Generates a seven-day launch plan, three sustainable columns and growth experiments.",
			TaskType:    launchkit.TaskType,
			Operation:   llm.OpGenerateLaunchKit,
			InputSchema: launchkit.GetInputSchema(),
			newHandler: func(o generation.HandlerOptions) (generation.Handler, error) {
				return launchkit.NewHandler(launchkit.HandlerOptions{HandlerOptions: o})
			},
		},
		{
			Key:            consistencycheck.ConfigKey,
			DisplayName:    "Check Draft Consistency",
			Description:    "Checks a draft against the persona and flags risky wording. Falls back to a keyword check.",
			TaskType:       consistencycheck.TaskType,
			Operation:      llm.OpCheckConsistency,
			InputSchema:    consistencycheck.GetInputSchema(),
			HasPlaceholder: true,
			newHandler: func(o generation.HandlerOptions) (generation.Handler, error) {
				return consistencycheck.NewHandler(consistencycheck.HandlerOptions{HandlerOptions: o})
			},
		},
		{
			Key:         contentmatrix.ConfigKey,
			DisplayName: "Generate Content Matrix",
			Description: "Generates content pillars with topics and per-platform rewrites.",
			TaskType:    contentmatrix.TaskType,
			Operation:   llm.OpGenerateContentMatrix,
			InputSchema: contentmatrix.GetInputSchema(),
			newHandler: func(o generation.HandlerOptions) (generation.Handler, error) {
				return contentmatrix.NewHandler(contentmatrix.HandlerOptions{HandlerOptions: o})
			},
		},
		{
			Key:         monetizationmap.ConfigKey,
			DisplayName: "Generate Monetization Map",
			Description: "Generates a twelve-week plan validating a primary and a backup monetization path.",
			TaskType:    monetizationmap.TaskType,
			Operation:   llm.OpGenerateMonetizationMap,
			InputSchema: monetizationmap.GetInputSchema(),
			newHandler: func(o generation.HandlerOptions) (generation.Handler, error) {
				return monetizationmap.NewHandler(monetizationmap.HandlerOptions{HandlerOptions: o})
			},
		},
	}
}

// NewHandlers builds every worker with shared options. Per-worker settings
// come from opts.AppConfig under each entry's Key.
func NewHandlers(opts generation.HandlerOptions) ([]generation.Handler, error) {
	entries := Entries()
	handlers := make([]generation.Handler, 0, len(entries))
	for _, e := range entries {
		h, err := e.newHandler(opts)
		if err != nil {
			return nil, fmt.Errorf("create %s handler: %w", e.Key, err)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}
