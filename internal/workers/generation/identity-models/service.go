package identitymodels

import (
	"context"

	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/repair"
)

// cardSpec asks for exactly one card per call.
var cardSpec = repair.Spec[Result]{
	Operation:    llm.OpGenerateIdentityModels,
	SystemPrompt: SystemPrompt,
	Validator:    responseSchema.WithRules(modelCount(1)),
}

// Generate produces count identity cards, one provider generation per card
// and strictly in sequence, so a replay substitutes a single card rather
// than a batch. The combined outcome is degraded when any card is, with the
// first degraded card's reason; repair attempts are summed.
func Generate(ctx context.Context, engine *pipeline.Engine, input *Input, count int) (llm.Outcome[Result], error) {
	var sessionID *string
	if input.SessionID != "" {
		sessionID = &input.SessionID
	}
	profile := input.CapabilityProfile
	if profile == nil {
		profile = map[string]interface{}{}
	}
	p := payload{
		UserID:            input.UserID,
		SessionID:         sessionID,
		Count:             1,
		CapabilityProfile: profile,
	}

	combined := Result{Models: make([]IdentityModel, 0, count)}
	reason := llm.DegradeNone
	attempts := 0
	for i := 0; i < count; i++ {
		outcome, err := pipeline.Run(ctx, engine, input.UserID, cardSpec, p)
		if err != nil {
			return llm.Outcome[Result]{}, err
		}
		combined.Models = append(combined.Models, outcome.Result.Models...)
		attempts += outcome.SchemaRepairAttempts
		if outcome.Degraded && reason == llm.DegradeNone {
			reason = outcome.DegradeReason
		}
	}

	if reason != llm.DegradeNone {
		return llm.Degrade(combined, nil, reason, attempts), nil
	}
	return llm.Fresh(combined, nil, attempts), nil
}
