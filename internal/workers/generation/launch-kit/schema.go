package launchkit

import (
	"fmt"

	"coach-generation/internal/common/validation"
	"coach-generation/internal/llm"
)

const (
	planDays    = 7
	columnCount = 3
)

const SystemPrompt = `You are generating a 7-day launch kit for a creator.
Use the identity and constitution context in the request.
Return strict JSON only with this shape:
{
  "days": [
    {
      "day_no": 1,
      "theme": "string",
      "draft_or_outline": "string",
      "opening_text": "string"
    }
  ],
  "sustainable_columns": ["string", "string", "string"],
  "growth_experiment_suggestion": [
    {
      "name": "string",
      "hypothesis": "string",
      "variables": ["string", "..."],
      "duration": "string",
      "success_metric": "string"
    }
  ]
}
Hard constraints:
- days must contain exactly 7 entries.
- day_no must be unique and cover 1..7.
- draft_or_outline gives the opening, body and ending, e.g. "开篇：我是谁，我能为你带来什么价值\n主体：为什么做这个方向\n结尾：希望和你一起成长".
- sustainable_columns must contain exactly 3 column names; prefer preferred_columns when given.
- growth_experiment_suggestion must contain at least 1 experiment.
- All string fields must be non-empty.
- No markdown, no prose, no extra keys.`

// RepairPrompt restates the count rules the primary answer most often breaks.
const RepairPrompt = `You are repairing an invalid 7-day launch kit JSON.
The user message contains original_user_payload (the original task input),
previous_invalid_response (your last answer) and validation_error (what is wrong).
Return only the corrected JSON object with the same shape as before:
- days must contain exactly 7 entries, with day_no 1, 2, 3, 4, 5, 6, 7, each exactly once.
- every day needs a non-empty theme, draft_or_outline and opening_text.
- sustainable_columns must contain exactly 3 non-empty column names.
- growth_experiment_suggestion needs at least 1 item with non-empty name, hypothesis and success_metric.
Keep valid days and columns from your previous answer. No markdown, no prose, no extra keys.`

const responseSchemaJSON = `{
  "type": "object",
  "required": ["days", "sustainable_columns", "growth_experiment_suggestion"],
  "properties": {
    "days": {
      "type": "array",
      "minItems": 7,
      "maxItems": 7,
      "items": {
        "type": "object",
        "required": ["day_no", "theme", "draft_or_outline", "opening_text"],
        "properties": {
          "day_no": {"type": "integer"},
          "theme": {"type": "string"},
          "draft_or_outline": {"type": "string"},
          "opening_text": {"type": "string"}
        }
      }
    },
    "sustainable_columns": {"type": "array", "minItems": 3, "maxItems": 3, "items": {"type": "string"}},
    "growth_experiment_suggestion": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "hypothesis", "success_metric"],
        "properties": {
          "name": {"type": "string"},
          "hypothesis": {"type": "string"},
          "variables": {"type": "array", "items": {"type": "string"}},
          "duration": {"type": "string"},
          "success_metric": {"type": "string"}
        }
      }
    }
  }
}`

var responseSchema = validation.MustCompile[LaunchKit](string(llm.OpGenerateLaunchKit), responseSchemaJSON,
	dayNumbers, dayText, columns, experiments)

func dayNumbers(k LaunchKit) error {
	numbers := make([]int, 0, len(k.Days))
	for _, d := range k.Days {
		numbers = append(numbers, d.DayNo)
	}
	if !validation.ExactSequence(numbers, planDays) {
		return fmt.Errorf("day_no must cover 1..%d exactly", planDays)
	}
	return nil
}

func dayText(k LaunchKit) error {
	for _, d := range k.Days {
		if validation.Blank(d.Theme) || validation.Blank(d.DraftOrOutline) || validation.Blank(d.OpeningText) {
			return fmt.Errorf("day %d must have non-empty theme, draft_or_outline and opening_text", d.DayNo)
		}
	}
	return nil
}

func columns(k LaunchKit) error {
	if validation.CountNonBlank(k.SustainableColumns) != columnCount {
		return fmt.Errorf("sustainable_columns must contain exactly %d non-empty items", columnCount)
	}
	return nil
}

func experiments(k LaunchKit) error {
	for i, e := range k.GrowthExperimentSuggestion {
		if validation.Blank(e.Name) || validation.Blank(e.Hypothesis) || validation.Blank(e.SuccessMetric) {
			return fmt.Errorf("growth_experiment_suggestion[%d] must have non-empty name, hypothesis and success_metric", i)
		}
	}
	return nil
}
