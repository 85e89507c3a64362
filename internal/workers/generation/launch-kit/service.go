package launchkit

import (
	"context"

	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/repair"
	"coach-generation/internal/workers/generation"
)

// spec has no placeholder: a plan with the wrong days is worse than a
// failed job.
var spec = repair.Spec[LaunchKit]{
	Operation:    llm.OpGenerateLaunchKit,
	SystemPrompt: SystemPrompt,
	RepairPrompt: RepairPrompt,
	Validator:    responseSchema,
}

func Generate(ctx context.Context, engine *pipeline.Engine, input *Input) (llm.Outcome[LaunchKit], error) {
	columns := input.SustainableColumns
	if columns == nil {
		columns = []string{}
	}
	p := payload{
		UserID:           input.UserID,
		IdentityModelID:  input.Context.IdentityID(input.IdentityModelID),
		ConstitutionID:   input.Context.ConstitutionID(input.ConstitutionID),
		PreferredColumns: columns,
		Context:          input.Context.Payload(),
		Hints:            generation.Hints(input.Hints),
	}
	return pipeline.Run(ctx, engine, input.UserID, spec, p)
}
