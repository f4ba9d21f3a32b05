// internal/workers/travel/destination-info/models.go
package destinationinfo

import "encoding/json"

// Input selects destinations explicitly or asks for them to be inferred from
// the prompt. Titles is accepted in place of Destinations.
type Input struct {
	Prompt       string      `json:"prompt"`
	Query        string      `json:"query,omitempty"`
	Destinations interface{} `json:"destinations,omitempty"`
	Titles       interface{} `json:"titles,omitempty"`
}

// Output is the destination info result. Extraction and TravelSummary are set
// only when destinations were inferred from a prompt.
type Output struct {
	Destinations  []string
	Summaries     []map[string]interface{}
	Extraction    map[string]interface{}
	TravelSummary *string
	Error         string
}

// ToMap renders the result in its wire shape.
func (o *Output) ToMap() map[string]interface{} {
	if o.Error != "" {
		return map[string]interface{}{"error": o.Error}
	}

	destinations := make([]interface{}, len(o.Destinations))
	for i, d := range o.Destinations {
		destinations[i] = d
	}
	summaries := make([]interface{}, len(o.Summaries))
	for i, s := range o.Summaries {
		summaries[i] = s
	}

	out := map[string]interface{}{
		"destinations": destinations,
		"summaries":    summaries,
	}
	if o.Extraction != nil {
		out["extraction"] = o.Extraction
	}
	if o.TravelSummary != nil {
		out["travel_summary"] = *o.TravelSummary
	}
	return out
}

func (o *Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToMap())
}
