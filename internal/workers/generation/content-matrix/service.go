package contentmatrix

import (
	"context"

	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/repair"
	"coach-generation/internal/workers/generation"
)

var spec = repair.Spec[Matrix]{
	Operation:    llm.OpGenerateContentMatrix,
	SystemPrompt: SystemPrompt,
	Validator:    responseSchema,
}

func Generate(ctx context.Context, engine *pipeline.Engine, input *Input) (llm.Outcome[Matrix], error) {
	p := payload{
		UserID:          input.UserID,
		IdentityModelID: input.Context.IdentityID(input.IdentityModelID),
		ConstitutionID:  input.Context.ConstitutionID(input.ConstitutionID),
		Context:         input.Context.Payload(),
		Hints:           generation.Hints(input.Hints),
	}
	return pipeline.Run(ctx, engine, input.UserID, spec, p)
}
