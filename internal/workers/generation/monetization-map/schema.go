package monetizationmap

import (
	"fmt"

	"coach-generation/internal/common/validation"
	"coach-generation/internal/llm"
)

const planWeeks = 12

const SystemPrompt = `You are generating a 12-week monetization validation map for a creator.
Return strict JSON only with this shape:
{
  "primary_path": "string",
  "backup_path": "string",
  "weeks": [
    {
      "week_no": 1,
      "goal": "string",
      "task": "string",
      "deliverable": "string",
      "validation_metric": "string"
    }
  ]
}
Hard constraints:
- weeks must contain exactly 12 entries.
- week_no must be unique and cover 1..12.
- All string fields must be non-empty.
- No markdown, no prose, no extra keys.`

const RepairPrompt = `You are repairing an invalid 12-week monetization map JSON.
The user message contains original_user_payload (the original task input),
previous_invalid_response (your last answer) and validation_error (what is wrong).
Return only the corrected JSON object with the same shape as before:
- primary_path and backup_path must be non-empty.
- weeks must contain exactly 12 entries, with week_no 1 through 12, each exactly once.
- every week needs a non-empty goal, task, deliverable and validation_metric.
Keep valid weeks from your previous answer. No markdown, no prose, no extra keys.`

const responseSchemaJSON = `{
  "type": "object",
  "required": ["primary_path", "backup_path", "weeks"],
  "properties": {
    "primary_path": {"type": "string"},
    "backup_path": {"type": "string"},
    "weeks": {
      "type": "array",
      "minItems": 12,
      "maxItems": 12,
      "items": {
        "type": "object",
        "required": ["week_no", "goal", "task", "deliverable", "validation_metric"],
        "properties": {
          "week_no": {"type": "integer"},
          "goal": {"type": "string"},
          "task": {"type": "string"},
          "deliverable": {"type": "string"},
          "validation_metric": {"type": "string"}
        }
      }
    }
  }
}`

var responseSchema = validation.MustCompile[Map](string(llm.OpGenerateMonetizationMap), responseSchemaJSON, paths, weeks)

func paths(m Map) error {
	if validation.Blank(m.PrimaryPath) || validation.Blank(m.BackupPath) {
		return fmt.Errorf("primary_path and backup_path must be non-empty")
	}
	return nil
}

func weeks(m Map) error {
	numbers := make([]int, 0, len(m.Weeks))
	for _, w := range m.Weeks {
		if validation.Blank(w.Goal) || validation.Blank(w.Task) || validation.Blank(w.Deliverable) || validation.Blank(w.ValidationMetric) {
			return fmt.Errorf("week %d has an empty field", w.WeekNo)
		}
		numbers = append(numbers, w.WeekNo)
	}
	if !validation.ExactSequence(numbers, planWeeks) {
		return fmt.Errorf("week_no must cover 1..%d exactly", planWeeks)
	}
	return nil
}
