package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// InvocationSchema describes the inbound invocation payload. Unknown fields are
// allowed; destinations and titles are left unconstrained because the wiki
// path reports their shape errors itself.
var InvocationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"prompt": map[string]interface{}{"type": []interface{}{"string", "null"}},
		"query":  map[string]interface{}{"type": []interface{}{"string", "null"}},
		"mode":   map[string]interface{}{"type": []interface{}{"string", "null"}},
	},
	"additionalProperties": true,
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validate checks document against a Go-value JSON schema.
func Validate(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

// ValidateInvocation validates an inbound invocation payload. A document the
// validator cannot load is reported as a single invalid result.
func ValidateInvocation(payload interface{}) *ValidationResult {
	result, err := Validate(InvocationSchema, payload)
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "unloadable"}},
		}
	}
	return result
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Error joins all messages into one line.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
