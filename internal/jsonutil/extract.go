// Package jsonutil extracts JSON payloads from model-produced text.
//
// Local models routing a tool call on the commentary channel are
// supposed to emit the arguments as a bare JSON object, but in practice
// the payload often arrives wrapped in markdown fences or surrounded by
// commentary. These helpers recover the object without being strict
// about the wrapping.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject returns the JSON object embedded in text.
// It tries, in order: the whole text, the text with markdown code
// fences stripped, and the span between the first '{' and the last '}'.
func ExtractObject(text string) (json.RawMessage, error) {
	candidate := stripFences(text)

	if json.Valid([]byte(candidate)) && strings.HasPrefix(strings.TrimSpace(candidate), "{") {
		return json.RawMessage(candidate), nil
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start >= 0 && end > start {
		span := candidate[start : end+1]
		if json.Valid([]byte(span)) {
			return json.RawMessage(span), nil
		}
	}

	preview := text
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return nil, fmt.Errorf("no JSON object found in %q", preview)
}

// Decode extracts the JSON object in text and unmarshals it into out.
func Decode(text string, out any) error {
	raw, err := ExtractObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshaling extracted JSON: %w", err)
	}
	return nil
}

// stripFences removes a leading ```json (or bare ```) fence and the
// matching trailing fence.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
			break
		}
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}
	return trimmed
}
