package personaconstitution

import "coach-generation/internal/workers/generation"

type Input struct {
	UserID          string              `json:"userId"`
	IdentityModelID string              `json:"identityModelId,omitempty"`
	CommonWords     []string            `json:"commonWords,omitempty"`
	ForbiddenWords  []string            `json:"forbiddenWords,omitempty"`
	Context         *generation.Context `json:"context,omitempty"`
}

// Constitution is the persona rulebook: voice dictionary, moat positions,
// narrative mainline and the staged growth arc.
type Constitution struct {
	CommonWords         []string `json:"common_words"`
	ForbiddenWords      []string `json:"forbidden_words"`
	SentencePreferences []string `json:"sentence_preferences"`
	MoatPositions       []string `json:"moat_positions"`
	NarrativeMainline   string   `json:"narrative_mainline"`
	GrowthArc           string   `json:"growth_arc"`
}

type Output = generation.Output[Constitution]

type seed struct {
	CommonWords    []string `json:"common_words"`
	ForbiddenWords []string `json:"forbidden_words"`
}

type payload struct {
	UserID          string                    `json:"user_id"`
	IdentityModelID *string                   `json:"identity_model_id"`
	Seed            seed                      `json:"seed"`
	Context         generation.ContextPayload `json:"context"`
}
