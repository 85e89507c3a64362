// pkg/registry/schema.go
package registry

// ActivityRegistry is the task catalog handed to process modelers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Version     string                 `json:"version"`
	TaskType    string                 `json:"taskType"`
	Operation   string                 `json:"operation"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	// OutputVariables are the job variables set on completion.
	OutputVariables []string `json:"outputVariables"`
	ErrorCodes      []string `json:"errorCodes"`
	Timeout         string   `json:"timeout"`
	Retries         int      `json:"retries"`
	Degradable      bool     `json:"degradable"`
	Tags            []string `json:"tags"`
}
