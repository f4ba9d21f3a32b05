// internal/workers/travel/plan-trip/models.go
package plantrip

import "encoding/json"

// ModeWiki routes an invocation to destination info instead of the agent.
const ModeWiki = "wiki"

// ModeTrip labels invocations answered by the agent.
const ModeTrip = "trip"

type Input struct {
	Prompt       string      `json:"prompt"`
	Query        string      `json:"query,omitempty"`
	Mode         string      `json:"mode,omitempty"`
	Destinations interface{} `json:"destinations,omitempty"`
	Titles       interface{} `json:"titles,omitempty"`
}

// Output is a trip plan, or the agent's error together with everything it
// sent back.
type Output struct {
	BestTripRecommendation string
	RawContext             interface{}
	Error                  interface{}
}

func (o *Output) ToMap() map[string]interface{} {
	if o.Error != nil {
		return map[string]interface{}{
			"error":       o.Error,
			"raw_context": o.RawContext,
		}
	}
	return map[string]interface{}{
		"best_trip_recommendation": o.BestTripRecommendation,
		"raw_context":              o.RawContext,
	}
}

func (o *Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToMap())
}
