package consistencycheck

import "coach-generation/internal/workers/generation"

type Input struct {
	UserID          string              `json:"userId"`
	DraftText       string              `json:"draftText"`
	IdentityModelID string              `json:"identityModelId,omitempty"`
	ConstitutionID  string              `json:"constitutionId,omitempty"`
	ForbiddenWords  []string            `json:"forbiddenWords,omitempty"`
	Context         *generation.Context `json:"context,omitempty"`
}

// Report lists each deviation with its reason and suggestion at the same
// index. RiskWarning is always set when RiskTriggered is.
type Report struct {
	DeviationItems   []string `json:"deviation_items"`
	DeviationReasons []string `json:"deviation_reasons"`
	Suggestions      []string `json:"suggestions"`
	RiskTriggered    bool     `json:"risk_triggered"`
	RiskWarning      string   `json:"risk_warning"`
}

type Output = generation.Output[Report]

type payload struct {
	UserID          string                    `json:"user_id"`
	DraftText       string                    `json:"draft_text"`
	IdentityModelID *string                   `json:"identity_model_id"`
	ConstitutionID  *string                   `json:"constitution_id"`
	ForbiddenWords  []string                  `json:"forbidden_words"`
	Context         generation.ContextPayload `json:"context"`
}
