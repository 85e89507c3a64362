package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func consistencyInputSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"userId":  {Type: "string", MinLength: Int(1)},
			"draft":   {Type: "string", MinLength: Int(1)},
			"count":   {Type: "integer", Minimum: Float(1), Maximum: Float(5)},
			"words":   {Type: "array", MaxItems: Int(2), Items: &Property{Type: "string"}},
			"options": {Type: "object", Properties: map[string]Property{"tone": {Type: "string", Enum: []string{"warm", "sharp"}}}},
		},
		Required: []string{"userId", "draft"},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]interface{}
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid",
			input:     map[string]interface{}{"userId": "u1", "draft": "我的内容", "count": float64(3)},
			wantValid: true,
		},
		{
			name:       "missing required",
			input:      map[string]interface{}{"userId": "u1"},
			wantFields: []string{"draft"},
		},
		{
			name:       "explicit null for required",
			input:      map[string]interface{}{"userId": "u1", "draft": nil},
			wantFields: []string{"draft"},
		},
		{
			name:       "integer accepts whole float64 only",
			input:      map[string]interface{}{"userId": "u1", "draft": "x", "count": 2.5},
			wantFields: []string{"count"},
		},
		{
			name:       "range",
			input:      map[string]interface{}{"userId": "u1", "draft": "x", "count": float64(9)},
			wantFields: []string{"count"},
		},
		{
			name:       "blank string counts as empty",
			input:      map[string]interface{}{"userId": "  ", "draft": "x"},
			wantFields: []string{"userId"},
		},
		{
			name:       "array bounds and item types",
			input:      map[string]interface{}{"userId": "u", "draft": "x", "words": []interface{}{"a", 1.0, "c"}},
			wantFields: []string{"words", "words[1]"},
		},
		{
			name:       "nested enum",
			input:      map[string]interface{}{"userId": "u", "draft": "x", "options": map[string]interface{}{"tone": "loud"}},
			wantFields: []string{"options.tone"},
		},
		{
			name:       "extra field",
			input:      map[string]interface{}{"userId": "u", "draft": "x", "unexpected": true},
			wantFields: []string{"unexpected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, consistencyInputSchema())
			assert.Equal(t, tt.wantValid, result.Valid)
			for _, field := range tt.wantFields {
				assert.True(t, result.HasErrors(field), "expected error for %s, got %v", field, result.GetErrorMessages())
			}
		})
	}
}

func TestValidateInput_TypeMessagesDoNotEchoValues(t *testing.T) {
	result := ValidateInput(map[string]interface{}{"userId": "u", "draft": 42.0}, consistencyInputSchema())

	errs := result.GetErrorsForField("draft")
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "expected string, got number", errs[0].Message)
	}
}
