package consistencycheck

import (
	"coach-generation/internal/common/validation"
	"coach-generation/internal/workers/generation"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId", "draftText"},
		Properties: map[string]validation.Property{
			"userId": generation.UserIDProperty(),
			"draftText": {
				Type:        "string",
				Description: "Draft to check against the persona",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(20000),
			},
			"identityModelId": generation.OptionalIDProperty("Identity card the draft is written as"),
			"constitutionId":  generation.OptionalIDProperty("Persona constitution to check against"),
			"forbiddenWords": {
				Type:        "array",
				Description: "Extra words the draft must not contain",
				Items:       &validation.Property{Type: "string", MinLength: validation.Int(1)},
			},
			"context": generation.ContextProperty(),
		},
		AdditionalProperties: true,
	}
}
