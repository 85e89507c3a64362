package personaconstitution

import (
	"coach-generation/internal/common/validation"
	"coach-generation/internal/workers/generation"
)

func GetInputSchema() validation.JSONSchema {
	word := &validation.Property{Type: "string", MinLength: validation.Int(1), MaxLength: validation.Int(32)}
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId"},
		Properties: map[string]validation.Property{
			"userId":          generation.UserIDProperty(),
			"identityModelId": generation.OptionalIDProperty("Identity card the constitution is written for"),
			"commonWords": {
				Type:        "array",
				Description: "Words the persona should use often",
				MaxItems:    validation.Int(50),
				Items:       word,
			},
			"forbiddenWords": {
				Type:        "array",
				Description: "Words the persona must never use",
				MaxItems:    validation.Int(50),
				Items:       word,
			},
			"context": generation.ContextProperty(),
		},
		AdditionalProperties: true,
	}
}
