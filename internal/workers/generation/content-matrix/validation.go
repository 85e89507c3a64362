package contentmatrix

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
			"identityModelId": generation.OptionalIDProperty("Identity card to build on"),
			"constitutionId":  generation.OptionalIDProperty("Persona constitution to build on"),
			"context":         generation.ContextProperty(),
			"hints":           generation.HintsProperty(),
		},
		AdditionalProperties: true,
	}
}
