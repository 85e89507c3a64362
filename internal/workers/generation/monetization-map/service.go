package monetizationmap

import (
	"context"

	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/repair"
	"coach-generation/internal/workers/generation"
)

var spec = repair.Spec[Map]{
	Operation:    llm.OpGenerateMonetizationMap,
	SystemPrompt: SystemPrompt,
	RepairPrompt: RepairPrompt,
	Validator:    responseSchema,
}

// Generate sends the identity and constitution as flat fields rather than
// the nested context the other facades use.
func Generate(ctx context.Context, engine *pipeline.Engine, input *Input) (llm.Outcome[Map], error) {
	p := payload{
		UserID:          input.UserID,
		IdentityModelID: input.Context.IdentityID(input.IdentityModelID),
		ConstitutionID:  input.Context.ConstitutionID(input.ConstitutionID),
		Hints:           generation.Hints(input.Hints),
	}
	if input.Context != nil {
		if id := input.Context.Identity; id != nil {
			p.IdentityTitle = id.Title
			p.Differentiation = id.Differentiation
		}
		if co := input.Context.Constitution; co != nil {
			p.NarrativeMainline = co.NarrativeMainline
		}
	}
	return pipeline.Run(ctx, engine, input.UserID, spec, p)
}
