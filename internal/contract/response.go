package contract

import (
	"encoding/json"
	"strings"
)

// NoResponsePlaceholder is substituted when the model produced no usable
// assistant text at all.
const NoResponsePlaceholder = "(no response from model)"

// Response is the parsed model reply. AssistantText is always non-empty
// after Normalize; an empty UpdatedUserDescription means "no change".
type Response struct {
	AssistantText          string `json:"assistant_text"`
	UpdatedUserDescription string `json:"updated_user_description"`
}

// Diagnostic wraps a human-readable failure description as a Response, so
// that every backend failure mode still yields something to show the user.
func Diagnostic(text string) Response {
	return Response{AssistantText: text}
}

// Normalize recovers a Response from raw model output. It first tries the
// whole string as JSON, then the first top-level {...} span, and finally
// falls back to treating the raw text itself as the assistant reply.
func Normalize(raw string) Response {
	obj, ok := extractJSONObject(raw)
	if !ok {
		text := strings.TrimSpace(raw)
		if text == "" {
			text = NoResponsePlaceholder
		}
		return Response{AssistantText: text}
	}

	assistantText := strings.TrimSpace(stringField(obj, "assistant_text"))
	if assistantText == "" {
		assistantText = NoResponsePlaceholder
	}
	return Response{
		AssistantText:          assistantText,
		UpdatedUserDescription: strings.TrimSpace(stringField(obj, "updated_user_description")),
	}
}

// extractJSONObject is best-effort: models sometimes wrap the contract JSON
// in extra prose.
func extractJSONObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		return obj, true
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err == nil {
		return obj, true
	}
	return nil, false
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}
