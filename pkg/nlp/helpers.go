package nlp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
)

var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> tags and everything in between them from a string.
func RemoveThinkTags(input string) string {
	return thinkTagPattern.ReplaceAllString(input, "")
}

// ExtractJSONFromResponse attempts to extract JSON from LLM responses that may
// contain markdown code blocks or other surrounding text.
func ExtractJSONFromResponse(response string) string {
	response = strings.TrimSpace(response)

	// Check for ```json ... ``` pattern
	if strings.Contains(response, "```json") {
		start := strings.Index(response, "```json")
		end := strings.Index(response[start+7:], "```")
		if end != -1 {
			return strings.TrimSpace(response[start+7 : start+7+end])
		}
	}

	// Check for ``` ... ``` pattern
	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	// Try to find JSON object boundaries
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")
	if jsonStart != -1 && jsonEnd != -1 && jsonEnd > jsonStart {
		return response[jsonStart : jsonEnd+1]
	}

	// Try to find JSON array boundaries
	jsonStart = strings.Index(response, "[")
	jsonEnd = strings.LastIndex(response, "]")
	if jsonStart != -1 && jsonEnd != -1 && jsonEnd > jsonStart {
		return response[jsonStart : jsonEnd+1]
	}

	return response
}

// UnmarshalStructuredResponse parses a model response into target, tolerating
// markdown fences, think tags, and near-JSON output. Repair is attempted only
// after a strict parse fails.
func UnmarshalStructuredResponse(content string, target any) error {
	extracted := ExtractJSONFromResponse(RemoveThinkTags(content))

	if err := json.Unmarshal([]byte(extracted), target); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(extracted)
	if err != nil {
		return NewInferenceError("parse structured response", err)
	}
	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		return NewInferenceError("parse structured response", fmt.Errorf("repaired JSON still invalid: %w", err))
	}

	return nil
}
