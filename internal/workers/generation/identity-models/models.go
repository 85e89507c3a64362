package identitymodels

import "coach-generation/internal/workers/generation"

type Input struct {
	UserID            string                 `json:"userId"`
	SessionID         string                 `json:"sessionId,omitempty"`
	Count             int                    `json:"count,omitempty"`
	CapabilityProfile map[string]interface{} `json:"capabilityProfile"`
}

// IdentityModel is one generated identity card.
type IdentityModel struct {
	Title                       string   `json:"title"`
	TargetAudiencePain          string   `json:"target_audience_pain"`
	ContentPillars              []string `json:"content_pillars"`
	ToneKeywords                []string `json:"tone_keywords"`
	ToneExamples                []string `json:"tone_examples"`
	LongTermViews               []string `json:"long_term_views"`
	Differentiation             string   `json:"differentiation"`
	GrowthPath0To3M             string   `json:"growth_path_0_3m"`
	GrowthPath3To12M            string   `json:"growth_path_3_12m"`
	MonetizationValidationOrder []string `json:"monetization_validation_order"`
	RiskBoundary                []string `json:"risk_boundary"`
}

type Result struct {
	Models []IdentityModel `json:"models"`
}

type Output = generation.Output[Result]

// payload is what the provider sees for one card.
type payload struct {
	UserID            string                 `json:"user_id"`
	SessionID         *string                `json:"session_id"`
	Count             int                    `json:"count"`
	CapabilityProfile map[string]interface{} `json:"capability_profile"`
}
