// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/validation"
	destinationinfo "trip-planner/internal/workers/travel/destination-info"
	plantrip "trip-planner/internal/workers/travel/plan-trip"
)

const Version = "1.0.0"

// LoadRegistry reads a registry document from path.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Builtin describes the workers compiled into this module. timeouts maps a
// task type to its configured job timeout; missing entries are omitted.
func Builtin(timeouts map[string]time.Duration) *ActivityRegistry {
	timeout := func(taskType string) string {
		if d, ok := timeouts[taskType]; ok && d > 0 {
			return d.String()
		}
		return ""
	}

	return &ActivityRegistry{
		Version: Version,
		Activities: []Activity{
			{
				ID:          plantrip.TaskType,
				DisplayName: "Plan Trip",
				Description: "Asks the planning agent for a trip plan and enriches it with destination info. mode=wiki routes to destination info instead.",
				Category:    "travel",
				TaskType:    plantrip.TaskType,
				InputSchema: validation.InvocationSchema,
				OutputKeys:  []string{"best_trip_recommendation", "raw_context", "error"},
				ErrorCodes: codes(
					apperrors.ErrCodeInvalidInvocation,
					apperrors.ErrCodeAgentRequestFailed,
					apperrors.ErrCodeAgentTimeout,
					apperrors.ErrCodeAgentNotConfigured,
				),
				Timeout: timeout(plantrip.TaskType),
				Tags:    []string{"agent", "llm", "wiki"},
			},
			{
				ID:          destinationinfo.TaskType,
				DisplayName: "Destination Info",
				Description: "Looks up encyclopedia summaries for explicit destinations, or infers them from the prompt and drafts a travel summary.",
				Category:    "travel",
				TaskType:    destinationinfo.TaskType,
				InputSchema: validation.InvocationSchema,
				OutputKeys:  []string{"destinations", "summaries", "extraction", "travel_summary", "error"},
				ErrorCodes: codes(
					apperrors.ErrCodeInvalidInvocation,
					apperrors.ErrCodeLLMRequestFailed,
					apperrors.ErrCodeWikiLookupFailed,
				),
				Timeout: timeout(destinationinfo.TaskType),
				Tags:    []string{"wiki", "llm"},
			},
		},
	}
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	return lo.Find(r.Activities, func(a Activity) bool {
		return a.TaskType == taskType
	})
}

func codes(cs ...apperrors.ErrorCode) []string {
	return lo.Map(cs, func(c apperrors.ErrorCode, _ int) string {
		return string(c)
	})
}
