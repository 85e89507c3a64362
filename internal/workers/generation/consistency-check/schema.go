package consistencycheck

import (
	"fmt"

	"coach-generation/internal/common/validation"
	"coach-generation/internal/llm"
)

const SystemPrompt = `You are checking a creator's draft against their persona constitution.
Use the constitution context and forbidden_words in the request.
Return strict JSON only with this shape:
{
  "deviation_items": ["string", "..."],
  "deviation_reasons": ["string", "..."],
  "suggestions": ["string", "..."],
  "risk_triggered": false,
  "risk_warning": "string"
}
Hard constraints:
- deviation_items, deviation_reasons and suggestions must have the same length, at least 1.
- the reason and suggestion at index i explain deviation_items[i].
- when nothing deviates, return one item "未检测到明显偏离" with reason "内容符合基本规范" and suggestion "继续保持".
- set risk_triggered to true for exaggerated claims, platform-rule marketing, promised returns or forbidden words.
- when risk_triggered is true, risk_warning must be a non-empty explicit warning.
- No markdown, no prose, no extra keys.`

const responseSchemaJSON = `{
  "type": "object",
  "required": ["deviation_items", "deviation_reasons", "suggestions", "risk_triggered"],
  "properties": {
    "deviation_items": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "deviation_reasons": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "suggestions": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "risk_triggered": {"type": "boolean"},
    "risk_warning": {"type": ["string", "null"]}
  }
}`

var responseSchema = validation.MustCompile[Report](string(llm.OpCheckConsistency), responseSchemaJSON,
	alignedLists, riskWarning)

func alignedLists(r Report) error {
	n := len(r.DeviationItems)
	if len(r.DeviationReasons) != n || len(r.Suggestions) != n {
		return fmt.Errorf("deviation_items, deviation_reasons and suggestions must have equal length")
	}
	if !validation.AllNonBlank(r.DeviationItems) || !validation.AllNonBlank(r.DeviationReasons) || !validation.AllNonBlank(r.Suggestions) {
		return fmt.Errorf("deviation entries must be non-empty")
	}
	return nil
}

func riskWarning(r Report) error {
	if r.RiskTriggered && validation.Blank(r.RiskWarning) {
		return fmt.Errorf("risk_warning must be non-empty when risk_triggered is true")
	}
	return nil
}
