package launchkit

import (
	"coach-generation/internal/common/validation"
	"coach-generation/internal/workers/generation"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId"},
		Properties: map[string]validation.Property{
			"userId":          generation.UserIDProperty(),
			"identityModelId": generation.OptionalIDProperty("Identity card the plan is for"),
			"constitutionId":  generation.OptionalIDProperty("Persona constitution the plan follows"),
			"sustainableColumns": {
				Type:        "array",
				Description: "Column names the creator would like to keep",
				MaxItems:    validation.Int(3),
				Items:       &validation.Property{Type: "string", MinLength: validation.Int(1)},
			},
			"context": generation.ContextProperty(),
			"hints":   generation.HintsProperty(),
		},
		AdditionalProperties: true,
	}
}
