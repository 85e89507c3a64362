package personaconstitution

import (
	"fmt"
	"strings"

	"coach-generation/internal/common/validation"
	"coach-generation/internal/llm"
)

const SystemPrompt = `You are writing a persona constitution for a creator.
Use the identity context and the seed words in the request.
Return strict JSON only with this shape:
{
  "common_words": ["string", "... at least 1 item"],
  "forbidden_words": ["string", "... at least 1 item"],
  "sentence_preferences": ["string", "... at least 3 items"],
  "moat_positions": ["string", "string", "string"],
  "narrative_mainline": "string",
  "growth_arc": "string"
}
Hard constraints:
- forbidden_words must include every word in seed.forbidden_words.
- common_words should include the words in seed.common_words.
- moat_positions must contain exactly 3 non-negotiable stances.
- sentence_preferences describe sentence style, e.g. "用短句，保持简洁", "多用具体案例，少讲道理".
- narrative_mainline is the long-term motivation in one paragraph.
- growth_arc describes stages 0-3 months, 3-6 months and 6-12 months.
- All strings must be non-empty.
- No markdown, no prose, no extra keys.`

const responseSchemaJSON = `{
  "type": "object",
  "required": ["common_words", "forbidden_words", "sentence_preferences", "moat_positions", "narrative_mainline", "growth_arc"],
  "properties": {
    "common_words": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "forbidden_words": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "sentence_preferences": {"type": "array", "minItems": 3, "items": {"type": "string"}},
    "moat_positions": {"type": "array", "minItems": 3, "maxItems": 3, "items": {"type": "string"}},
    "narrative_mainline": {"type": "string"},
    "growth_arc": {"type": "string"}
  }
}`

var responseSchema = validation.MustCompile[Constitution](string(llm.OpGenerateConstitution), responseSchemaJSON, requiredText)

func requiredText(c Constitution) error {
	switch {
	case validation.Blank(c.NarrativeMainline):
		return fmt.Errorf("narrative_mainline must be non-empty")
	case validation.Blank(c.GrowthArc):
		return fmt.Errorf("growth_arc must be non-empty")
	case !validation.AllNonBlank(c.MoatPositions):
		return fmt.Errorf("moat_positions items must be non-empty")
	case validation.CountNonBlank(c.CommonWords) < 1:
		return fmt.Errorf("common_words must contain at least 1 word")
	case validation.CountNonBlank(c.ForbiddenWords) < 1:
		return fmt.Errorf("forbidden_words must contain at least 1 word")
	case validation.CountNonBlank(c.SentencePreferences) < 3:
		return fmt.Errorf("sentence_preferences must contain at least 3 items")
	}
	return nil
}

// keepsSeededForbiddenWords fails when any seeded word is missing from the
// generated forbidden_words. The message names only the count.
func keepsSeededForbiddenWords(seeded []string) validation.Rule[Constitution] {
	return func(c Constitution) error {
		present := make(map[string]bool, len(c.ForbiddenWords))
		for _, w := range c.ForbiddenWords {
			present[strings.TrimSpace(w)] = true
		}
		missing := 0
		for _, w := range seeded {
			if !present[strings.TrimSpace(w)] {
				missing++
			}
		}
		if missing > 0 {
			return fmt.Errorf("forbidden_words is missing %d seeded words", missing)
		}
		return nil
	}
}
