package generation

import "coach-generation/internal/common/validation"

// IdentityContext is the selected identity card a workflow passes along
// with a generation job.
type IdentityContext struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	TargetAudiencePain string   `json:"targetAudiencePain"`
	ContentPillars     []string `json:"contentPillars"`
	Differentiation    string   `json:"differentiation"`
}

// ConstitutionContext is the persona constitution a workflow passes along
// with a generation job.
type ConstitutionContext struct {
	ID                  string   `json:"id"`
	NarrativeMainline   string   `json:"narrativeMainline"`
	SentencePreferences []string `json:"sentencePreferences"`
	ForbiddenWords      []string `json:"forbiddenWords"`
}

// Context carries the upstream artifacts a generation builds on. Either
// part may be absent.
type Context struct {
	Identity     *IdentityContext     `json:"identity"`
	Constitution *ConstitutionContext `json:"constitution"`
}

type IdentityPayload struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	TargetAudiencePain string   `json:"target_audience_pain"`
	ContentPillars     []string `json:"content_pillars"`
	Differentiation    string   `json:"differentiation"`
}

type ConstitutionPayload struct {
	ID                  string   `json:"id"`
	NarrativeMainline   string   `json:"narrative_mainline"`
	SentencePreferences []string `json:"sentence_preferences"`
}

// ContextPayload is the provider-facing form of Context.
type ContextPayload struct {
	Identity     *IdentityPayload     `json:"identity"`
	Constitution *ConstitutionPayload `json:"constitution"`
}

func (c *Context) Payload() ContextPayload {
	var payload ContextPayload
	if c == nil {
		return payload
	}
	if id := c.Identity; id != nil {
		payload.Identity = &IdentityPayload{
			ID:                 id.ID,
			Title:              id.Title,
			TargetAudiencePain: id.TargetAudiencePain,
			ContentPillars:     nonNil(id.ContentPillars),
			Differentiation:    id.Differentiation,
		}
	}
	if co := c.Constitution; co != nil {
		payload.Constitution = &ConstitutionPayload{
			ID:                  co.ID,
			NarrativeMainline:   co.NarrativeMainline,
			SentencePreferences: nonNil(co.SentencePreferences),
		}
	}
	return payload
}

// IdentityID prefers the explicit id and falls back to the context's.
func (c *Context) IdentityID(explicit string) *string {
	if explicit != "" {
		return &explicit
	}
	if c != nil && c.Identity != nil && c.Identity.ID != "" {
		id := c.Identity.ID
		return &id
	}
	return nil
}

// ConstitutionID prefers the explicit id and falls back to the context's.
func (c *Context) ConstitutionID(explicit string) *string {
	if explicit != "" {
		return &explicit
	}
	if c != nil && c.Constitution != nil && c.Constitution.ID != "" {
		id := c.Constitution.ID
		return &id
	}
	return nil
}

// Hints returns h, or an empty object so the payload shape is stable.
func Hints(h map[string]interface{}) map[string]interface{} {
	if h == nil {
		return map[string]interface{}{}
	}
	return h
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// Job input properties shared by the generation workers.

func UserIDProperty() validation.Property {
	return validation.Property{
		Type:        "string",
		Description: "Owner of the generated artifact",
		MinLength:   validation.Int(1),
		MaxLength:   validation.Int(128),
	}
}

func OptionalIDProperty(description string) validation.Property {
	return validation.Property{
		Type:        "string",
		Description: description,
		MaxLength:   validation.Int(128),
	}
}

func ContextProperty() validation.Property {
	return validation.Property{
		Type:        "object",
		Description: "Identity and constitution the generation builds on",
		Properties: map[string]validation.Property{
			"identity":     {Type: "object", Description: "Selected identity card"},
			"constitution": {Type: "object", Description: "Persona constitution"},
		},
	}
}

func HintsProperty() validation.Property {
	return validation.Property{
		Type:        "object",
		Description: "Free-form steering hints forwarded to the provider",
	}
}
