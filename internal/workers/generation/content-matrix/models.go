package contentmatrix

import "coach-generation/internal/workers/generation"

type Input struct {
	UserID          string                 `json:"userId"`
	IdentityModelID string                 `json:"identityModelId,omitempty"`
	ConstitutionID  string                 `json:"constitutionId,omitempty"`
	Context         *generation.Context    `json:"context,omitempty"`
	Hints           map[string]interface{} `json:"hints,omitempty"`
}

type Pillar struct {
	Pillar           string              `json:"pillar"`
	Topics           []string            `json:"topics"`
	PlatformRewrites map[string][]string `json:"platform_rewrites"`
}

// Matrix maps each content pillar to its topic backlog and per-platform rewrites.
type Matrix struct {
	Pillars []Pillar `json:"pillars"`
}

type Output = generation.Output[Matrix]

type payload struct {
	UserID          string                    `json:"user_id"`
	IdentityModelID *string                   `json:"identity_model_id"`
	ConstitutionID  *string                   `json:"constitution_id"`
	Context         generation.ContextPayload `json:"context"`
	Hints           map[string]interface{}    `json:"hints"`
}
