package validation

import (
	"encoding/json"
	"errors"
	"testing"

	svcerrors "coach-generation/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plan struct {
	Days []struct {
		DayNo int    `json:"day_no"`
		Theme string `json:"theme"`
	} `json:"days"`
}

const planSchema = `{
  "type": "object",
  "required": ["days"],
  "properties": {
    "days": {
      "type": "array",
      "minItems": 2,
      "maxItems": 2,
      "items": {
        "type": "object",
        "required": ["day_no", "theme"],
        "properties": {
          "day_no": {"type": "integer"},
          "theme": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

func distinctDays(p plan) error {
	seen := map[int]bool{}
	for _, d := range p.Days {
		if seen[d.DayNo] {
			return errors.New("day_no values must be unique")
		}
		seen[d.DayNo] = true
	}
	return nil
}

func decodeJSON(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestSchemaValidate(t *testing.T) {
	schema := MustCompile[plan]("test_plan", planSchema, distinctDays)

	tests := []struct {
		name      string
		raw       string
		wantErr   string
		wantTheme string
	}{
		{
			name:      "valid",
			raw:       `{"days":[{"day_no":1,"theme":"a"},{"day_no":2,"theme":"b"}]}`,
			wantTheme: "a",
		},
		{
			name:    "missing required array",
			raw:     `{"other":true}`,
			wantErr: "days",
		},
		{
			name:    "wrong count",
			raw:     `{"days":[{"day_no":1,"theme":"a"}]}`,
			wantErr: "days",
		},
		{
			name:    "empty string",
			raw:     `{"days":[{"day_no":1,"theme":""},{"day_no":2,"theme":"b"}]}`,
			wantErr: "theme",
		},
		{
			name:    "business rule",
			raw:     `{"days":[{"day_no":1,"theme":"a"},{"day_no":1,"theme":"b"}]}`,
			wantErr: "day_no values must be unique",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schema.Validate(decodeJSON(t, tt.raw))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantTheme, got.Days[0].Theme)
				return
			}

			require.Error(t, err)
			svcErr, ok := svcerrors.As(err)
			require.True(t, ok)
			assert.Equal(t, svcerrors.ErrCodeSchemaValidationFailed, svcErr.Code)
			assert.Equal(t, "test_plan", svcErr.Operation)
			assert.False(t, svcErr.Retryable)
			assert.Contains(t, svcErr.Message, tt.wantErr)
		})
	}
}

func TestSchemaValidate_DiagnosticNeverEchoesValues(t *testing.T) {
	schema := MustCompile[plan]("test_plan", planSchema)

	_, err := schema.Validate(decodeJSON(t, `{"days":"sk-live-SECRET-TOKEN"}`))

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}

func TestSchemaValidate_NilResponse(t *testing.T) {
	schema := MustCompile[plan]("test_plan", planSchema)

	_, err := schema.Validate(nil)

	assert.True(t, svcerrors.HasCode(err, svcerrors.ErrCodeSchemaValidationFailed))
}

func TestSchemaWithRules_AppendsWithoutMutatingBase(t *testing.T) {
	base := MustCompile[plan]("test_plan", planSchema)
	strict := base.WithRules(func(plan) error { return errors.New("always rejected") })
	raw := decodeJSON(t, `{"days":[{"day_no":1,"theme":"a"},{"day_no":2,"theme":"b"}]}`)

	_, err := base.Validate(raw)
	assert.NoError(t, err)

	_, err = strict.Validate(raw)
	assert.Error(t, err)
}

func TestCompile_RejectsBrokenSchema(t *testing.T) {
	_, err := Compile[plan]("broken", `{"type": 12}`)
	assert.Error(t, err)
}
