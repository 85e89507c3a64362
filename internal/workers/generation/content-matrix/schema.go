package contentmatrix

import (
	"fmt"

	"coach-generation/internal/common/validation"
	"coach-generation/internal/llm"
)

const (
	minTopics    = 20
	maxTopics    = 50
	minPlatforms = 3
)

const SystemPrompt = `You are generating a creator content matrix.
Return strict JSON only with this shape:
{
  "pillars": [
    {
      "pillar": "string",
      "topics": ["string", "... 20-50 items"],
      "platform_rewrites": {
        "xiaohongshu": ["string", "..."],
        "wechat": ["string", "..."],
        "video_channel": ["string", "..."]
      }
    }
  ]
}
Hard constraints:
- Return 3-5 pillars.
- Each pillar topics length must be 20-50.
- platform_rewrites must include at least 3 platform keys.
- No markdown, no prose, no extra keys.`

const responseSchemaJSON = `{
  "type": "object",
  "required": ["pillars"],
  "properties": {
    "pillars": {
      "type": "array",
      "minItems": 3,
      "maxItems": 5,
      "items": {
        "type": "object",
        "required": ["pillar", "topics", "platform_rewrites"],
        "properties": {
          "pillar": {"type": "string"},
          "topics": {"type": "array", "items": {"type": "string"}},
          "platform_rewrites": {
            "type": "object",
            "minProperties": 3,
            "additionalProperties": {"type": "array", "items": {"type": "string"}}
          }
        }
      }
    }
  }
}`

var responseSchema = validation.MustCompile[Matrix](string(llm.OpGenerateContentMatrix), responseSchemaJSON, pillarRules)

// pillarRules counts only non-blank topics and rewrites.
func pillarRules(m Matrix) error {
	for i, p := range m.Pillars {
		if validation.Blank(p.Pillar) {
			return fmt.Errorf("pillars[%d].pillar must be non-empty", i)
		}
		if n := validation.CountNonBlank(p.Topics); n < minTopics || n > maxTopics {
			return fmt.Errorf("pillars[%d].topics must contain %d-%d items", i, minTopics, maxTopics)
		}
		if len(p.PlatformRewrites) < minPlatforms {
			return fmt.Errorf("pillars[%d].platform_rewrites must contain at least %d platforms", i, minPlatforms)
		}
		for platform, items := range p.PlatformRewrites {
			if validation.Blank(platform) {
				return fmt.Errorf("pillars[%d].platform_rewrites keys must be non-empty", i)
			}
			if validation.CountNonBlank(items) < 1 {
				return fmt.Errorf("pillars[%d].platform_rewrites lists must contain at least 1 item", i)
			}
		}
	}
	return nil
}
