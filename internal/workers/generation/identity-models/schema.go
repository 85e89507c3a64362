package identitymodels

import (
	"fmt"

	"coach-generation/internal/common/validation"
	"coach-generation/internal/llm"
)

const SystemPrompt = `You are generating identity model cards for a creator product.
Each request should be handled independently. Do not assume access to previous or future requests.
Return strict JSON only with this shape:
{
  "models": [
    {
      "title": "string",
      "target_audience_pain": "string",
      "content_pillars": ["string", "... 3-5 items"],
      "tone_keywords": ["string", "..."],
      "tone_examples": ["string", "... at least 5 items"],
      "long_term_views": ["string", "... 5-10 items"],
      "differentiation": "string",
      "growth_path_0_3m": "string",
      "growth_path_3_12m": "string",
      "monetization_validation_order": ["string", "... at least 1 item"],
      "risk_boundary": ["string", "..."]
    }
  ]
}
Hard constraints:
- model count must exactly equal requested count.
- when requested count is 1, return exactly one model.
- differentiation must be non-empty.
- tone_examples must contain at least 5 entries.
- long_term_views must contain 5-10 entries.
- risk_boundary must be a JSON array of non-empty strings, never a plain string.
- if only one risk boundary is generated, still return it as an array with one item.
- no markdown, no prose, no extra keys.
- self-check before returning:
  - every models[i].risk_boundary is an array type
  - every item in models[i].risk_boundary is a non-empty string`

const responseSchemaJSON = `{
  "type": "object",
  "required": ["models"],
  "properties": {
    "models": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": [
          "title", "target_audience_pain", "content_pillars", "tone_keywords",
          "tone_examples", "long_term_views", "differentiation",
          "growth_path_0_3m", "growth_path_3_12m",
          "monetization_validation_order", "risk_boundary"
        ],
        "properties": {
          "title": {"type": "string"},
          "target_audience_pain": {"type": "string"},
          "content_pillars": {"type": "array", "minItems": 3, "maxItems": 5, "items": {"type": "string"}},
          "tone_keywords": {"type": "array", "items": {"type": "string"}},
          "tone_examples": {"type": "array", "minItems": 5, "items": {"type": "string"}},
          "long_term_views": {"type": "array", "minItems": 5, "maxItems": 10, "items": {"type": "string"}},
          "differentiation": {"type": "string"},
          "growth_path_0_3m": {"type": "string"},
          "growth_path_3_12m": {"type": "string"},
          "monetization_validation_order": {"type": "array", "minItems": 1, "items": {"type": "string"}},
          "risk_boundary": {"type": "array", "items": {"type": "string", "minLength": 1}}
        }
      }
    }
  }
}`

var responseSchema = validation.MustCompile[Result](string(llm.OpGenerateIdentityModels), responseSchemaJSON, requiredText)

func requiredText(r Result) error {
	for i, m := range r.Models {
		switch {
		case validation.Blank(m.Title):
			return fmt.Errorf("models[%d].title must be non-empty", i)
		case validation.Blank(m.TargetAudiencePain):
			return fmt.Errorf("models[%d].target_audience_pain must be non-empty", i)
		case validation.Blank(m.Differentiation):
			return fmt.Errorf("models[%d].differentiation must be non-empty", i)
		case !validation.AllNonBlank(m.RiskBoundary):
			return fmt.Errorf("models[%d].risk_boundary items must be non-empty strings", i)
		}
	}
	return nil
}

// modelCount pins the number of cards to what the request asked for.
func modelCount(want int) validation.Rule[Result] {
	return func(r Result) error {
		if len(r.Models) != want {
			return fmt.Errorf("expected %d models but got %d", want, len(r.Models))
		}
		return nil
	}
}
