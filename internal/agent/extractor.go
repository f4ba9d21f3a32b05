package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"trip-planner/internal/common/jsonsafe"
)

// textRule recognizes one response shape and pulls the answer text out of it.
type textRule struct {
	name    string
	extract func(payload any) (string, bool)
}

// textRules are tried in order; the first match wins.
var textRules = []textRule{
	{name: "plain string", extract: plainString},
	{name: "answer field", extract: answerField},
	{name: "content items", extract: contentItems},
	{name: "message content", extract: messageContent},
}

var answerFields = []string{"output", "answer", "text"}

// ExtractText returns the best human-readable answer in an agent response.
// Unrecognized shapes fall back to the JSON encoding of the whole payload.
func ExtractText(payload any) string {
	for _, rule := range textRules {
		if text, ok := rule.extract(payload); ok {
			return text
		}
	}
	return encodeFallback(payload)
}

func plainString(payload any) (string, bool) {
	s, ok := payload.(string)
	return s, ok
}

func answerField(payload any) (string, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	for _, key := range answerFields {
		if s, ok := m[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

func contentItems(payload any) (string, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	items, ok := m["content"].([]any)
	if !ok {
		return "", false
	}

	var texts []string
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		// items typed "text" and untyped items carrying text are both kept
		if text, ok := item["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, "\n\n"), true
}

func messageContent(payload any) (string, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	msg := m["message"]
	if !truthy(msg) {
		msg = m["final_message"]
	}
	msgMap, ok := msg.(map[string]any)
	if !ok {
		return "", false
	}
	contents, ok := msgMap["content"].([]any)
	if !ok {
		return "", false
	}
	for _, raw := range contents {
		item, ok := raw.(map[string]any)
		if !ok || item["type"] != "text" {
			continue
		}
		if text, ok := item["text"].(string); ok {
			return text, true
		}
	}
	return "", false
}

func encodeFallback(payload any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jsonsafe.Coerce(payload)); err != nil {
		return fmt.Sprint(payload)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
