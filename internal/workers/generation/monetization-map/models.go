package monetizationmap

import "coach-generation/internal/workers/generation"

type Input struct {
	UserID          string                 `json:"userId"`
	IdentityModelID string                 `json:"identityModelId,omitempty"`
	ConstitutionID  string                 `json:"constitutionId,omitempty"`
	Context         *generation.Context    `json:"context,omitempty"`
	Hints           map[string]interface{} `json:"hints,omitempty"`
}

type Week struct {
	WeekNo           int    `json:"week_no"`
	Goal             string `json:"goal"`
	Task             string `json:"task"`
	Deliverable      string `json:"deliverable"`
	ValidationMetric string `json:"validation_metric"`
}

// Map is a twelve-week plan for validating a primary and a backup monetization path.
type Map struct {
	PrimaryPath string `json:"primary_path"`
	BackupPath  string `json:"backup_path"`
	Weeks       []Week `json:"weeks"`
}

type Output = generation.Output[Map]

type payload struct {
	UserID            string                 `json:"user_id"`
	IdentityModelID   *string                `json:"identity_model_id"`
	ConstitutionID    *string                `json:"constitution_id"`
	IdentityTitle     string                 `json:"identity_title"`
	Differentiation   string                 `json:"differentiation"`
	NarrativeMainline string                 `json:"narrative_mainline"`
	Hints             map[string]interface{} `json:"hints"`
}
