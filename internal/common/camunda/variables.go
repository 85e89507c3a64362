package camunda

import (
	"encoding/json"
	"fmt"
	"strings"

	"coach-generation/internal/common/errors"
	"coach-generation/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
)

// DecodeVariables validates job variables against schema and decodes them
// into out. Failures are CLIENT_ERROR, which the workflow gets as a BPMN
// error rather than a retry.
func DecodeVariables(job entities.Job, schema validation.JSONSchema, operation string, out interface{}) error {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return errors.NewClientError(operation, "Failed to parse job variables.", err)
	}

	result := validation.ValidateInput(variables, schema)
	if !result.Valid {
		return errors.NewClientError(operation, "Job input validation failed.",
			fmt.Errorf("%s", strings.Join(result.GetErrorMessages(), "; ")))
	}

	if err := json.Unmarshal([]byte(job.GetVariables()), out); err != nil {
		return errors.NewClientError(operation, "Failed to decode job variables.", err)
	}
	return nil
}

// ToVariables converts a JSON-tagged output struct into job variables.
func ToVariables(output interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	var variables map[string]interface{}
	if err := json.Unmarshal(data, &variables); err != nil {
		return nil, err
	}
	return variables, nil
}
