package consistencycheck

import (
	"context"

	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/repair"
)

// Check asks the provider for a report and falls back to KeywordCheck once
// the repair budget is spent.
func Check(ctx context.Context, engine *pipeline.Engine, input *Input, minRunes int) (llm.Outcome[Report], error) {
	forbidden := forbiddenWords(input)
	spec := repair.Spec[Report]{
		Operation:    llm.OpCheckConsistency,
		SystemPrompt: SystemPrompt,
		Validator:    responseSchema,
		Placeholder: func() Report {
			return KeywordCheck(input.DraftText, forbidden, minRunes)
		},
	}
	p := payload{
		UserID:          input.UserID,
		DraftText:       input.DraftText,
		IdentityModelID: input.Context.IdentityID(input.IdentityModelID),
		ConstitutionID:  input.Context.ConstitutionID(input.ConstitutionID),
		ForbiddenWords:  forbidden,
		Context:         input.Context.Payload(),
	}
	return pipeline.Run(ctx, engine, input.UserID, spec, p)
}

// forbiddenWords merges the job's words with the constitution's, keeping
// first-seen order.
func forbiddenWords(input *Input) []string {
	words := append([]string(nil), input.ForbiddenWords...)
	if input.Context != nil && input.Context.Constitution != nil {
		words = append(words, input.Context.Constitution.ForbiddenWords...)
	}
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
