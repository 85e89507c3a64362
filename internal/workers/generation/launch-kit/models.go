package launchkit

import "coach-generation/internal/workers/generation"

type Input struct {
	UserID             string                 `json:"userId"`
	IdentityModelID    string                 `json:"identityModelId,omitempty"`
	ConstitutionID     string                 `json:"constitutionId,omitempty"`
	SustainableColumns []string               `json:"sustainableColumns,omitempty"`
	Context            *generation.Context    `json:"context,omitempty"`
	Hints              map[string]interface{} `json:"hints,omitempty"`
}

type Day struct {
	DayNo          int    `json:"day_no"`
	Theme          string `json:"theme"`
	DraftOrOutline string `json:"draft_or_outline"`
	OpeningText    string `json:"opening_text"`
}

type GrowthExperiment struct {
	Name          string   `json:"name"`
	Hypothesis    string   `json:"hypothesis"`
	Variables     []string `json:"variables"`
	Duration      string   `json:"duration"`
	SuccessMetric string   `json:"success_metric"`
}

// LaunchKit is the seven-day launch plan.
type LaunchKit struct {
	Days                       []Day              `json:"days"`
	SustainableColumns         []string           `json:"sustainable_columns"`
	GrowthExperimentSuggestion []GrowthExperiment `json:"growth_experiment_suggestion"`
}

type Output = generation.Output[LaunchKit]

type payload struct {
	UserID           string                    `json:"user_id"`
	IdentityModelID  *string                   `json:"identity_model_id"`
	ConstitutionID   *string                   `json:"constitution_id"`
	PreferredColumns []string                  `json:"preferred_columns"`
	Context          generation.ContextPayload `json:"context"`
	Hints            map[string]interface{}    `json:"hints"`
}
