package identitymodels

import "coach-generation/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId", "capabilityProfile"},
		Properties: map[string]validation.Property{
			"userId": {
				Type:        "string",
				Description: "Owner of the identity cards",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(128),
			},
			"sessionId": {
				Type:        "string",
				Description: "Onboarding session the profile came from",
				MaxLength:   validation.Int(128),
			},
			"count": {
				Type:        "integer",
				Description: "Number of identity cards to generate",
				Minimum:     validation.Float(MinCount),
				Maximum:     validation.Float(MaxCount),
			},
			"capabilityProfile": {
				Type:        "object",
				Description: "Capability profile assembled from onboarding answers",
			},
		},
		AdditionalProperties: true,
	}
}
