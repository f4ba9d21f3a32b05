// pkg/registry/schema.go
package registry

// ActivityRegistry lists the job types this module can work on, for process
// modelers wiring service tasks.
type ActivityRegistry struct {
	Version    string     `json:"version" yaml:"version"`
	Activities []Activity `json:"activities" yaml:"activities"`
}

type Activity struct {
	ID          string                 `json:"id" yaml:"id"`
	DisplayName string                 `json:"displayName" yaml:"displayName"`
	Description string                 `json:"description" yaml:"description"`
	Category    string                 `json:"category" yaml:"category"`
	TaskType    string                 `json:"taskType" yaml:"taskType"`
	InputSchema map[string]interface{} `json:"inputSchema" yaml:"inputSchema"`
	OutputKeys  []string               `json:"outputKeys" yaml:"outputKeys"`
	ErrorCodes  []string               `json:"errorCodes" yaml:"errorCodes"`
	Timeout     string                 `json:"timeout" yaml:"timeout"`
	Retries     int                    `json:"retries" yaml:"retries"`
	Tags        []string               `json:"tags" yaml:"tags"`
}
