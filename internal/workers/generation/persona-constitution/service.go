package personaconstitution

import (
	"context"

	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/repair"
)

// Generate writes a constitution seeded with the given words. Every seeded
// forbidden word must come back in the result, so the rule is bound per
// request and also applies to any replayed record.
func Generate(ctx context.Context, engine *pipeline.Engine, input *Input, commonWords, forbiddenWords []string) (llm.Outcome[Constitution], error) {
	spec := repair.Spec[Constitution]{
		Operation:    llm.OpGenerateConstitution,
		SystemPrompt: SystemPrompt,
		Validator:    responseSchema.WithRules(keepsSeededForbiddenWords(forbiddenWords)),
	}
	p := payload{
		UserID:          input.UserID,
		IdentityModelID: input.Context.IdentityID(input.IdentityModelID),
		Seed: seed{
			CommonWords:    commonWords,
			ForbiddenWords: forbiddenWords,
		},
		Context: input.Context.Payload(),
	}
	return pipeline.Run(ctx, engine, input.UserID, spec, p)
}
